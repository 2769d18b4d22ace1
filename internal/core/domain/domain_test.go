package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestNewProviderErrorKinds(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		message string
		want    ProviderErrorKind
	}{
		{"status 429", http.StatusTooManyRequests, "slow down", ProviderRateLimited},
		{"quota text", http.StatusForbidden, "You exceeded your current quota", ProviderRateLimited},
		{"rate_limit code", 0, "rate_limit_exceeded: try later", ProviderRateLimited},
		{"server error", http.StatusBadGateway, "upstream down", ProviderOther},
		{"network", 0, "connection refused", ProviderOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewProviderError(tc.status, tc.message, nil).Kind; got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyProviderErrorKeepsExisting(t *testing.T) {
	original := NewProviderError(http.StatusTooManyRequests, "limited", nil)
	wrapped := fmt.Errorf("generate: %w", original)
	if got := ClassifyProviderError(wrapped); got != original {
		t.Fatalf("expected the wrapped provider error, got %v", got)
	}

	cause := errors.New("Rate limit reached for model")
	got := ClassifyProviderError(cause)
	if got.Kind != ProviderRateLimited || !errors.Is(got, cause) {
		t.Fatalf("unexpected classification %+v", got)
	}
	if ClassifyProviderError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestParseGenerationMode(t *testing.T) {
	if mode, err := ParseGenerationMode(""); err != nil || mode != ModeMockOnFailure {
		t.Fatalf("empty mode: got %q, %v", mode, err)
	}
	if mode, err := ParseGenerationMode(" MOCK_FORCED "); err != nil || mode != ModeMockForced {
		t.Fatalf("mock_forced: got %q, %v", mode, err)
	}
	if _, err := ParseGenerationMode("sometimes"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestParseContentTypeAliases(t *testing.T) {
	for raw, want := range map[string]ContentType{
		"concepts": ContentConcept,
		"Slides":   ContentStructure,
		"emails":   ContentEmailSequence,
	} {
		got, err := ParseContentType(raw)
		if err != nil || got != want {
			t.Fatalf("ParseContentType(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseContentType("poster"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMentorAdvanceOnlyMovesForward(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := &Mentor{CurrentStage: MentorConceptGeneration}

	if !m.Advance(StageAfterApproval(ContentConcept), now) {
		t.Fatalf("expected advance to structure development")
	}
	if m.CurrentStage != MentorStructureDevelopment || !m.StageStartedAt.Equal(now) {
		t.Fatalf("unexpected mentor state %+v", m)
	}
	if m.Advance(MentorConceptReview, now.Add(time.Hour)) {
		t.Fatalf("advance must not move backwards")
	}
	if got := MentorProduction.Prerequisites(); len(got) != 3 {
		t.Fatalf("production needs all three approvals, got %v", got)
	}
}

func TestStageTransitions(t *testing.T) {
	now := time.Now().UTC()
	s := &Stage{Status: StageStatusPending, SubStage: SubStageInitial}

	s.Transition(SubStageSelfEval, now)
	s.Transition(SubStageImproved, now)
	if s.Status != StageStatusInProgress || s.SubStage != SubStageImproved || s.IterationCount != 2 {
		t.Fatalf("unexpected stage after transitions %+v", s)
	}

	s.Approve(now)
	s.Reopen(now)
	if s.Status != StageStatusInProgress || s.SubStage != SubStageInitial || s.IterationCount != 3 {
		t.Fatalf("unexpected stage after reopen %+v", s)
	}
}

func TestConceptCloneIsIndependent(t *testing.T) {
	score := 7
	original := ConceptRecord{
		Title:           "A",
		StructurePoints: []string{"one"},
		ValueAnchor:     map[string][]string{"core": {"x"}},
		EvaluationScore: &score,
	}
	clone := original.Clone()
	clone.StructurePoints[0] = "changed"
	clone.ValueAnchor["core"][0] = "changed"
	*clone.EvaluationScore = 1

	if original.StructurePoints[0] != "one" || original.ValueAnchor["core"][0] != "x" || *original.EvaluationScore != 7 {
		t.Fatalf("clone shares state with original: %+v", original)
	}
	if clone.Secrets == nil || clone.BonusIdeas == nil || clone.Promises == nil {
		t.Fatalf("clone must be normalized: %+v", clone)
	}
}
