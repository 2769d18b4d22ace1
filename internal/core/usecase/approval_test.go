package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func TestSubmitTwiceChainsHistory(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	ctx := context.Background()
	res, err := f.pipeline.RunChain(ctx, mentorID, domain.ContentConcept, nil)
	if err != nil {
		t.Fatalf("RunChain() error = %v", err)
	}

	first, err := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	second, err := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}

	if first.IterationCount != 1 || first.PreviousVersionID != "" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if second.IterationCount != 2 || second.PreviousVersionID != first.ID {
		t.Fatalf("unexpected second record: %+v", second)
	}
	if first.Status != domain.RecordPending || second.Status != domain.RecordPending {
		t.Fatalf("both submissions should stay pending")
	}

	history, err := f.approvals.History(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID {
		t.Fatalf("expected newest-first history of 2, got %+v", history)
	}

	status, err := f.approvals.Status(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.CurrentStatus != domain.ApprovalPending || status.CanProceed {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSubmitSnapshotIsIsolated(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	ctx := context.Background()
	res, _ := f.pipeline.RunChain(ctx, mentorID, domain.ContentConcept, nil)

	record, err := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want := record.Snapshot.Body.Concepts[0].Title

	if _, err := f.pipeline.RefineWithTranscript(ctx, mentorID, domain.ContentConcept, "change it"); err != nil {
		t.Fatalf("RefineWithTranscript() error = %v", err)
	}
	asset, _ := f.pipeline.GetAsset(ctx, res.AssetID)
	asset.Concept.Improved.Concepts[0].Title = "edited later"

	stored, _ := f.store.GetApproval(ctx, record.ID)
	if stored.Snapshot.Body.Concepts[0].Title != want {
		t.Fatalf("snapshot changed: %q", stored.Snapshot.Body.Concepts[0].Title)
	}
}

func TestSubmitWithoutContentIsPrecondition(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	asset, err := f.pipeline.StartNewAsset(context.Background(), mentorID)
	if err != nil {
		t.Fatalf("StartNewAsset() error = %v", err)
	}
	_, err = f.approvals.Submit(context.Background(), asset.ID, domain.ContentStructure)
	if !domain.IsKind(err, domain.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestReviewVersioning(t *testing.T) {
	tests := []struct {
		action      domain.ReviewAction
		wantVersion int
		wantAsset   domain.ApprovalStatus
		wantRecord  domain.ApprovalRecordStatus
	}{
		{domain.ActionApprove, 1, domain.ApprovalApproved, domain.RecordApproved},
		{domain.ActionReject, 2, domain.ApprovalRevisionRequested, domain.RecordRejected},
		{domain.ActionRequestRevision, 1, domain.ApprovalRevisionRequested, domain.RecordRevisionRequested},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			f := newFixture(t, domain.ModeMockOnFailure, nil)
			mentorID := f.onboard(t)
			ctx := context.Background()
			res, _ := f.pipeline.RunChain(ctx, mentorID, domain.ContentConcept, nil)
			record, err := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}

			reviewed, err := f.approvals.Review(ctx, domain.ReviewRequest{
				ApprovalID:           record.ID,
				Action:               tt.action,
				Notes:                "see notes",
				RevisionInstructions: "shorter hook",
			})
			if err != nil {
				t.Fatalf("Review() error = %v", err)
			}
			if reviewed.Status != tt.wantRecord || reviewed.ReviewedAt == nil {
				t.Fatalf("unexpected record: %+v", reviewed)
			}

			asset, _ := f.pipeline.GetAsset(ctx, res.AssetID)
			if asset.Concept.Version != tt.wantVersion {
				t.Fatalf("expected version %d, got %d", tt.wantVersion, asset.Concept.Version)
			}
			if asset.Concept.ApprovalStatus != tt.wantAsset {
				t.Fatalf("expected asset status %s, got %s", tt.wantAsset, asset.Concept.ApprovalStatus)
			}
			if asset.Concept.AdminNotes != "see notes" {
				t.Fatalf("expected mirrored notes, got %q", asset.Concept.AdminNotes)
			}
			if len(f.observer.reviews) != 1 || f.observer.reviews[0] != tt.action {
				t.Fatalf("unexpected observed reviews: %v", f.observer.reviews)
			}
		})
	}
}

func TestRejectAfterApprovalReopensStage(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	ctx := context.Background()
	res := f.approve(t, mentorID, domain.ContentConcept)

	record, err := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := f.approvals.Review(ctx, domain.ReviewRequest{ApprovalID: record.ID, Action: domain.ActionReject}); err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	stage := f.stage(t, mentorID, domain.ContentConcept)
	if stage.Status != domain.StageStatusInProgress || stage.SubStage != domain.SubStageInitial || stage.IterationCount != 4 {
		t.Fatalf("expected reopened stage at iteration 4, got %+v", stage)
	}
	if record.Version != 1 {
		t.Fatalf("second submission should carry version 1, got %d", record.Version)
	}
	if _, err := f.pipeline.Generate(ctx, mentorID, domain.ContentConcept); err != nil {
		t.Fatalf("Generate() after reopen error = %v", err)
	}
}

func TestReviewTwiceIsPrecondition(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	ctx := context.Background()
	res, _ := f.pipeline.RunChain(ctx, mentorID, domain.ContentConcept, nil)
	record, _ := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)

	req := domain.ReviewRequest{ApprovalID: record.ID, Action: domain.ActionRequestRevision}
	if _, err := f.approvals.Review(ctx, req); err != nil {
		t.Fatalf("first Review() error = %v", err)
	}
	if _, err := f.approvals.Review(ctx, req); !domain.IsKind(err, domain.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
	if _, err := f.approvals.Review(ctx, domain.ReviewRequest{ApprovalID: record.ID, Action: "maybe"}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid action, got %v", err)
	}
	if _, err := f.approvals.Review(ctx, domain.ReviewRequest{ApprovalID: "missing", Action: domain.ActionApprove}); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReviewRetryableAfterAssetSaveFailure(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	ctx := context.Background()
	res, _ := f.pipeline.RunChain(ctx, mentorID, domain.ContentConcept, nil)
	record, err := f.approvals.Submit(ctx, res.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	f.store.saveAssetErr = errors.New("disk full")
	req := domain.ReviewRequest{ApprovalID: record.ID, Action: domain.ActionApprove}
	if _, err := f.approvals.Review(ctx, req); err == nil {
		t.Fatalf("expected review to fail while the asset cannot be saved")
	}
	stored, err := f.store.GetApproval(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetApproval() error = %v", err)
	}
	if stored.Status != domain.RecordPending {
		t.Fatalf("failed review must leave the record pending, got %s", stored.Status)
	}

	f.store.saveAssetErr = nil
	if _, err := f.approvals.Review(ctx, req); err != nil {
		t.Fatalf("retried Review() error = %v", err)
	}
	if st := f.stage(t, mentorID, domain.ContentConcept); st.Status != domain.StageStatusApproved {
		t.Fatalf("expected approved stage after retry, got %s", st.Status)
	}
}

func TestOrderedIDsSortByCreation(t *testing.T) {
	prev := orderedID()
	for i := 0; i < 100; i++ {
		next := orderedID()
		if next <= prev {
			t.Fatalf("expected %s to sort after %s", next, prev)
		}
		prev = next
	}
}

func TestCanProceedEmailSequenceCombinations(t *testing.T) {
	for _, concept := range []bool{false, true} {
		for _, structure := range []bool{false, true} {
			t.Run(fmt.Sprintf("concept=%t/structure=%t", concept, structure), func(t *testing.T) {
				f := newFixture(t, domain.ModeMockOnFailure, nil)
				mentorID := f.onboard(t)
				ctx := context.Background()
				asset, err := f.pipeline.StartNewAsset(ctx, mentorID)
				if err != nil {
					t.Fatalf("StartNewAsset() error = %v", err)
				}
				if concept {
					asset.Concept.ApprovalStatus = domain.ApprovalApproved
				}
				if structure {
					asset.Structure.ApprovalStatus = domain.ApprovalApproved
				}
				if err := f.store.SaveAsset(ctx, asset); err != nil {
					t.Fatalf("SaveAsset() error = %v", err)
				}

				check, err := f.approvals.CanProceed(ctx, mentorID, domain.MentorEmailSequence)
				if err != nil {
					t.Fatalf("CanProceed() error = %v", err)
				}
				want := concept && structure
				if check.CanProceed != want {
					t.Fatalf("expected can_proceed=%t, got %t", want, check.CanProceed)
				}
				wantMissing := 0
				if !concept {
					wantMissing++
				}
				if !structure {
					wantMissing++
				}
				if len(check.MissingApprovals) != wantMissing {
					t.Fatalf("expected %d missing approvals, got %v", wantMissing, check.MissingApprovals)
				}
			})
		}
	}
}

func TestCanProceedWithoutAsset(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	mentorID := f.onboard(t)
	ctx := context.Background()

	check, err := f.approvals.CanProceed(ctx, mentorID, domain.MentorOnboarding)
	if err != nil || !check.CanProceed {
		t.Fatalf("expected onboarding to proceed, got %+v err=%v", check, err)
	}
	check, err = f.approvals.CanProceed(ctx, mentorID, domain.MentorStructureDevelopment)
	if err != nil || check.CanProceed {
		t.Fatalf("expected structure_development blocked, got %+v err=%v", check, err)
	}
	if len(check.MissingApprovals) != 1 || check.MissingApprovals[0] != "Webinar Concept" {
		t.Fatalf("unexpected missing approvals: %v", check.MissingApprovals)
	}
	if _, err := f.approvals.CanProceed(ctx, mentorID, "launch"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid stage, got %v", err)
	}
}

func TestEndToEndConceptApproval(t *testing.T) {
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	ctx := context.Background()

	mentor, err := f.mentors.UpsertProfile(ctx, "user-e2e", domain.MentorProfile{Name: "Ingrid", Niche: "leadership"})
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	if mentor.CurrentStage != domain.MentorOnboarding {
		t.Fatalf("new mentor should be onboarding, got %s", mentor.CurrentStage)
	}
	if _, err := f.mentors.UploadInputs(ctx, mentor.ID, domain.InputUpload{OnboardingDoc: "Leadership for new managers."}); err != nil {
		t.Fatalf("UploadInputs() error = %v", err)
	}

	gen, err := f.pipeline.Generate(ctx, mentor.ID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := f.pipeline.Evaluate(ctx, mentor.ID, domain.ContentConcept); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if _, err := f.pipeline.Improve(ctx, mentor.ID, domain.ContentConcept); err != nil {
		t.Fatalf("Improve() error = %v", err)
	}
	record, err := f.approvals.Submit(ctx, gen.AssetID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := f.approvals.Review(ctx, domain.ReviewRequest{ApprovalID: record.ID, Action: domain.ActionApprove}); err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	got, err := f.mentors.GetMentor(ctx, mentor.ID)
	if err != nil {
		t.Fatalf("GetMentor() error = %v", err)
	}
	if got.CurrentStage != domain.MentorStructureDevelopment {
		t.Fatalf("expected structure_development, got %s", got.CurrentStage)
	}
	check, err := f.approvals.CanProceed(ctx, mentor.ID, domain.MentorStructureDevelopment)
	if err != nil {
		t.Fatalf("CanProceed() error = %v", err)
	}
	if !check.CanProceed {
		t.Fatalf("expected to proceed, missing %v", check.MissingApprovals)
	}
	if st := f.stage(t, mentor.ID, domain.ContentConcept); st.Status != domain.StageStatusApproved {
		t.Fatalf("expected approved concept stage, got %s", st.Status)
	}
}
