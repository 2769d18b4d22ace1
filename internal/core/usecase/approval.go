package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

// ApprovalUseCase gates stage progression on human review and keeps the review history.
type ApprovalUseCase struct {
	assets    ports.AssetRepository
	approvals ports.ApprovalRepository
	mentors   ports.MentorRepository
	projects  ports.ProjectRepository
	observer  ports.PipelineObserver
	logger    *slog.Logger
}

func NewApprovalUseCase(
	assets ports.AssetRepository,
	approvals ports.ApprovalRepository,
	mentors ports.MentorRepository,
	projects ports.ProjectRepository,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *ApprovalUseCase {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalUseCase{
		assets:    assets,
		approvals: approvals,
		mentors:   mentors,
		projects:  projects,
		observer:  observer,
		logger:    logger,
	}
}

// Submit snapshots the latest content of contentType into a new pending record.
// Earlier pending records for the same content type are left in place.
func (uc *ApprovalUseCase) Submit(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalRecord, error) {
	const op = "submit for approval"
	asset, err := uc.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	state := asset.Content(contentType)
	body := state.Latest()
	if body == nil {
		return nil, domain.Precondition(op, "asset %s has no %s content to submit", assetID, contentType)
	}

	prev, err := uc.approvals.LatestApproval(ctx, assetID, contentType)
	if err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get previous approval: %w", err)
	}

	now := time.Now().UTC()
	record := &domain.ApprovalRecord{
		ID:             orderedID(),
		AssetID:        asset.ID,
		MentorID:       asset.MentorID,
		ContentType:    contentType,
		Version:        state.Version,
		IterationCount: 1,
		Snapshot:       domain.ContentSnapshot{Body: body.Clone()},
		Status:         domain.RecordPending,
		SubmittedAt:    now,
	}
	if prev != nil {
		record.IterationCount = prev.IterationCount + 1
		record.PreviousVersionID = prev.ID
	}
	if asset.SelectedConcept != nil {
		selected := asset.SelectedConcept.Clone()
		record.Snapshot.SelectedConcept = &selected
	}
	if err := uc.approvals.CreateApproval(ctx, record); err != nil {
		return nil, fmt.Errorf("create approval: %w", err)
	}

	state.ApprovalStatus = domain.ApprovalPending
	asset.UpdatedAt = now
	if err := uc.assets.SaveAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("save asset: %w", err)
	}
	return record, nil
}

func (uc *ApprovalUseCase) Review(ctx context.Context, req domain.ReviewRequest) (*domain.ApprovalRecord, error) {
	const op = "review approval"
	action, err := domain.ParseReviewAction(string(req.Action))
	if err != nil {
		return nil, err
	}
	record, err := uc.approvals.GetApproval(ctx, req.ApprovalID)
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	if record.Status != domain.RecordPending {
		return nil, domain.Precondition(op, "approval %s was already reviewed (%s)", record.ID, record.Status)
	}
	asset, err := uc.assets.GetAsset(ctx, record.AssetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	stage, err := uc.projects.GetStage(ctx, asset.ProjectID, record.ContentType.StageType())
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}

	now := time.Now().UTC()
	state := asset.Content(record.ContentType)
	record.ReviewedAt = &now
	record.AdminNotes = req.Notes
	record.RevisionInstructions = req.RevisionInstructions
	state.AdminNotes = firstNonBlank(req.Notes, req.RevisionInstructions)

	var mentor *domain.Mentor
	switch action {
	case domain.ActionApprove:
		record.Status = domain.RecordApproved
		state.ApprovalStatus = domain.ApprovalApproved
		stage.Approve(now)
		if mentor, err = uc.advanceMentor(ctx, asset.MentorID, record.ContentType, now); err != nil {
			return nil, err
		}
	case domain.ActionReject:
		record.Status = domain.RecordRejected
		state.ApprovalStatus = domain.ApprovalRevisionRequested
		state.Version++
		stage.Reopen(now)
	case domain.ActionRequestRevision:
		record.Status = domain.RecordRevisionRequested
		state.ApprovalStatus = domain.ApprovalRevisionRequested
	}
	asset.UpdatedAt = now

	// The record is written last: until it leaves pending, a failed review can be retried.
	if err := uc.assets.SaveAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("save asset: %w", err)
	}
	if action != domain.ActionRequestRevision {
		if err := uc.projects.SaveStage(ctx, stage); err != nil {
			return nil, fmt.Errorf("save stage: %w", err)
		}
	}
	if mentor != nil {
		if err := uc.mentors.SaveMentor(ctx, mentor); err != nil {
			return nil, fmt.Errorf("save mentor: %w", err)
		}
	}
	if err := uc.approvals.SaveApproval(ctx, record); err != nil {
		return nil, fmt.Errorf("save approval: %w", err)
	}

	uc.observer.ObserveReview(record.ContentType, action)
	uc.logger.Info("approval_reviewed",
		"approval_id", record.ID,
		"asset_id", asset.ID,
		"content_type", record.ContentType,
		"action", action,
		"version", state.Version,
	)
	return record, nil
}

// advanceMentor returns the mentor when the approval moved it forward, nil otherwise.
func (uc *ApprovalUseCase) advanceMentor(ctx context.Context, mentorID string, contentType domain.ContentType, now time.Time) (*domain.Mentor, error) {
	mentor, err := uc.mentors.GetMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if !mentor.Advance(domain.StageAfterApproval(contentType), now) {
		return nil, nil
	}
	return mentor, nil
}

func (uc *ApprovalUseCase) Status(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalStatusView, error) {
	asset, err := uc.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	state := asset.Content(contentType)
	return &domain.ApprovalStatusView{
		CanProceed:    state.ApprovalStatus == domain.ApprovalApproved,
		CurrentStatus: state.ApprovalStatus,
		Version:       state.Version,
		Notes:         state.AdminNotes,
		Message:       statusMessage(contentType, state.ApprovalStatus),
	}, nil
}

// CanProceed reports whether every prerequisite of target is approved on the mentor's latest asset.
func (uc *ApprovalUseCase) CanProceed(ctx context.Context, mentorID string, target domain.MentorStage) (*domain.ProceedCheck, error) {
	if _, err := domain.ParseMentorStage(string(target)); err != nil {
		return nil, err
	}
	if _, err := uc.mentors.GetMentor(ctx, mentorID); err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}

	required := target.Prerequisites()
	asset, err := uc.assets.LatestAsset(ctx, mentorID)
	if domain.IsKind(err, domain.ErrNotFound) {
		return &domain.ProceedCheck{
			CanProceed:       target == domain.MentorOnboarding,
			MissingApprovals: labels(required),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest asset: %w", err)
	}

	var missing []domain.ContentType
	for _, ct := range required {
		if asset.Content(ct).ApprovalStatus != domain.ApprovalApproved {
			missing = append(missing, ct)
		}
	}
	return &domain.ProceedCheck{
		CanProceed:       len(missing) == 0,
		MissingApprovals: labels(missing),
	}, nil
}

// History lists review records newest first. An empty contentType lists all types.
func (uc *ApprovalUseCase) History(ctx context.Context, assetID string, contentType domain.ContentType) ([]domain.ApprovalRecord, error) {
	if _, err := uc.assets.GetAsset(ctx, assetID); err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	records, err := uc.approvals.ListApprovals(ctx, assetID, contentType)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	return records, nil
}

func statusMessage(contentType domain.ContentType, status domain.ApprovalStatus) string {
	switch status {
	case domain.ApprovalApproved:
		return contentType.Label() + " is approved; the next stage can start"
	case domain.ApprovalPending:
		return contentType.Label() + " is awaiting review"
	case domain.ApprovalRevisionRequested:
		return contentType.Label() + " needs revision"
	default:
		return contentType.Label() + " has not been submitted"
	}
}

func labels(types []domain.ContentType) []string {
	out := make([]string, 0, len(types))
	for _, ct := range types {
		out = append(out, ct.Label())
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
