package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

type MentorUseCase struct {
	mentors  ports.MentorRepository
	projects ports.ProjectRepository
	inputs   ports.InputRepository
	activity ports.ActivityRepository
}

func NewMentorUseCase(
	mentors ports.MentorRepository,
	projects ports.ProjectRepository,
	inputs ports.InputRepository,
	activity ports.ActivityRepository,
) *MentorUseCase {
	return &MentorUseCase{
		mentors:  mentors,
		projects: projects,
		inputs:   inputs,
		activity: activity,
	}
}

func (uc *MentorUseCase) UpsertProfile(ctx context.Context, userID string, profile domain.MentorProfile) (*domain.Mentor, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Invalid("upsert mentor profile", "user id is required")
	}
	now := time.Now().UTC()

	mentor, err := uc.mentors.GetMentorByUser(ctx, userID)
	switch {
	case domain.IsKind(err, domain.ErrNotFound):
		mentor = &domain.Mentor{
			ID:             uuid.NewString(),
			UserID:         userID,
			Profile:        profile,
			CurrentStage:   domain.MentorOnboarding,
			Status:         domain.MentorActive,
			StageStartedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.mentors.CreateMentor(ctx, mentor); err != nil {
			return nil, fmt.Errorf("create mentor: %w", err)
		}
		return mentor, nil
	case err != nil:
		return nil, fmt.Errorf("get mentor by user: %w", err)
	}

	mentor.Profile.Merge(profile)
	mentor.UpdatedAt = now
	if err := uc.mentors.SaveMentor(ctx, mentor); err != nil {
		return nil, fmt.Errorf("save mentor: %w", err)
	}
	return mentor, nil
}

func (uc *MentorUseCase) GetMentor(ctx context.Context, id string) (*domain.Mentor, error) {
	return uc.mentors.GetMentor(ctx, id)
}

func (uc *MentorUseCase) GetMentorByUser(ctx context.Context, userID string) (*domain.Mentor, error) {
	return uc.mentors.GetMentorByUser(ctx, userID)
}

func (uc *MentorUseCase) ListMentors(ctx context.Context, skip, limit int) ([]domain.Mentor, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return uc.mentors.ListMentors(ctx, skip, limit)
}

func (uc *MentorUseCase) DeleteMentor(ctx context.Context, id string) error {
	return uc.mentors.DeleteMentor(ctx, id)
}

// UploadInputs stores source material, creating the mentor's project on first use.
func (uc *MentorUseCase) UploadInputs(ctx context.Context, mentorID string, upload domain.InputUpload) (*domain.InputArtifact, error) {
	if upload.IsEmpty() {
		return nil, domain.Invalid("upload inputs", "at least one of onboarding_doc, hook_analysis, transcript is required")
	}
	mentor, err := uc.mentors.GetMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	now := time.Now().UTC()

	project, err := uc.ensureProject(ctx, mentor, now)
	if err != nil {
		return nil, err
	}

	action := domain.ActivityDocumentsUpdated
	inputs, err := uc.inputs.GetInputs(ctx, mentor.ID)
	switch {
	case domain.IsKind(err, domain.ErrNotFound):
		action = domain.ActivityDocumentsUploaded
		inputs = &domain.InputArtifact{
			ID:        uuid.NewString(),
			MentorID:  mentor.ID,
			ProjectID: project.ID,
			CreatedAt: now,
		}
	case err != nil:
		return nil, fmt.Errorf("get inputs: %w", err)
	}
	mergeInputs(inputs, upload)
	inputs.ProjectID = project.ID
	inputs.UpdatedAt = now
	if err := uc.inputs.SaveInputs(ctx, inputs); err != nil {
		return nil, fmt.Errorf("save inputs: %w", err)
	}
	if err := uc.activity.RecordActivity(ctx, &domain.ActivityEntry{
		ID:          orderedID(),
		MentorID:    mentor.ID,
		Action:      action,
		Stage:       mentor.CurrentStage,
		PerformedBy: domain.PerformedByAdmin,
		Timestamp:   now,
	}); err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}

	if mentor.Advance(domain.MentorConceptGeneration, now) {
		if err := uc.mentors.SaveMentor(ctx, mentor); err != nil {
			return nil, fmt.Errorf("advance mentor stage: %w", err)
		}
	}
	return inputs, nil
}

func (uc *MentorUseCase) GetInputs(ctx context.Context, mentorID string) (*domain.InputArtifact, error) {
	return uc.inputs.GetInputs(ctx, mentorID)
}

// Activity returns the mentor's audit trail, newest first.
func (uc *MentorUseCase) Activity(ctx context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error) {
	if _, err := uc.mentors.GetMentor(ctx, mentorID); err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return uc.activity.ListActivity(ctx, mentorID, limit)
}

func (uc *MentorUseCase) ensureProject(ctx context.Context, mentor *domain.Mentor, now time.Time) (*domain.Project, error) {
	project, err := uc.projects.GetProjectByMentor(ctx, mentor.ID)
	if err == nil {
		return project, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get project: %w", err)
	}

	title := "Project for " + mentor.Profile.Name
	if strings.TrimSpace(mentor.Profile.Name) == "" {
		title = "Project for " + mentor.UserID
	}
	project = &domain.Project{
		ID:           uuid.NewString(),
		MentorID:     mentor.ID,
		Title:        title,
		CurrentStage: domain.ProjectStageInputs,
		Status:       domain.ProjectStatusInProgress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stages := make([]domain.Stage, 0, len(domain.ContentTypes))
	for _, ct := range domain.ContentTypes {
		st := ct.StageType()
		stages = append(stages, domain.Stage{
			ID:         uuid.NewString(),
			ProjectID:  project.ID,
			StageType:  st,
			StageName:  st.DisplayName(),
			StageOrder: st.Order(),
			Status:     domain.StageStatusPending,
			SubStage:   domain.SubStageInitial,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if err := uc.projects.CreateProject(ctx, project, stages); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func mergeInputs(dst *domain.InputArtifact, upload domain.InputUpload) {
	if upload.OnboardingDoc != "" {
		dst.OnboardingDoc = upload.OnboardingDoc
	}
	if upload.HookAnalysis != "" {
		dst.HookAnalysis = upload.HookAnalysis
	}
	if upload.Transcript != "" {
		dst.Transcript = upload.Transcript
	}
}
