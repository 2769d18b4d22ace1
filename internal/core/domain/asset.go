package domain

import "time"

// ContentState is the generation and review state of one content type on an Asset.
type ContentState struct {
	Overview           string         `json:"overview,omitempty" bson:"overview,omitempty"`
	Original           *ContentBody   `json:"original,omitempty" bson:"original,omitempty"`
	Evaluated          string         `json:"evaluated,omitempty" bson:"evaluated,omitempty"`
	Improved           *ContentBody   `json:"improved,omitempty" bson:"improved,omitempty"`
	TranscriptFeedback string         `json:"transcript_feedback,omitempty" bson:"transcript_feedback,omitempty"`
	Tone               *ToneReport    `json:"tone,omitempty" bson:"tone,omitempty"`
	Version            int            `json:"version" bson:"version"`
	ApprovalStatus     ApprovalStatus `json:"approval_status" bson:"approval_status"`
	AdminNotes         string         `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
	MockFallback       bool           `json:"mock_fallback" bson:"mock_fallback"`
	MockReason         string         `json:"mock_reason,omitempty" bson:"mock_reason,omitempty"`
}

// Latest returns the best available body: improved first, then original.
func (s *ContentState) Latest() *ContentBody {
	if !s.Improved.IsEmpty() {
		return s.Improved
	}
	if !s.Original.IsEmpty() {
		return s.Original
	}
	return nil
}

func newContentState() ContentState {
	return ContentState{Version: 1, ApprovalStatus: ApprovalDraft}
}

// Asset aggregates all generated content for one project iteration of a mentor.
type Asset struct {
	ID              string         `json:"id" bson:"_id"`
	MentorID        string         `json:"mentor_id" bson:"mentor_id"`
	ProjectID       string         `json:"project_id" bson:"project_id"`
	OnboardingDoc   string         `json:"onboarding_doc,omitempty" bson:"onboarding_doc,omitempty"`
	HookAnalysis    string         `json:"hook_analysis,omitempty" bson:"hook_analysis,omitempty"`
	Transcript      string         `json:"transcript,omitempty" bson:"transcript,omitempty"`
	Concept         ContentState   `json:"concept" bson:"concept"`
	Structure       ContentState   `json:"structure" bson:"structure"`
	EmailSequence   ContentState   `json:"email_sequence" bson:"email_sequence"`
	SelectedConcept *ConceptRecord `json:"selected_concept,omitempty" bson:"selected_concept,omitempty"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
}

func NewAsset(id, mentorID, projectID string, now time.Time) *Asset {
	return &Asset{
		ID:            id,
		MentorID:      mentorID,
		ProjectID:     projectID,
		Concept:       newContentState(),
		Structure:     newContentState(),
		EmailSequence: newContentState(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Content returns the mutable state for content type c.
func (a *Asset) Content(c ContentType) *ContentState {
	switch c {
	case ContentStructure:
		return &a.Structure
	case ContentEmailSequence:
		return &a.EmailSequence
	default:
		return &a.Concept
	}
}

// ActiveConcept is the concept downstream generation builds on.
func (a *Asset) ActiveConcept() *ConceptRecord {
	if a.SelectedConcept != nil {
		return a.SelectedConcept
	}
	if latest := a.Concept.Latest(); latest != nil && len(latest.Concepts) > 0 {
		return &latest.Concepts[0]
	}
	return nil
}
