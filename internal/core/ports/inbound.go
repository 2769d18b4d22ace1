package ports

import (
	"context"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// MentorService is the inbound contract for mentor profiles and source material.
type MentorService interface {
	UpsertProfile(ctx context.Context, userID string, profile domain.MentorProfile) (*domain.Mentor, error)
	GetMentor(ctx context.Context, id string) (*domain.Mentor, error)
	GetMentorByUser(ctx context.Context, userID string) (*domain.Mentor, error)
	ListMentors(ctx context.Context, skip, limit int) ([]domain.Mentor, error)
	DeleteMentor(ctx context.Context, id string) error
	UploadInputs(ctx context.Context, mentorID string, upload domain.InputUpload) (*domain.InputArtifact, error)
	GetInputs(ctx context.Context, mentorID string) (*domain.InputArtifact, error)
	Activity(ctx context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error)
}

// ContentPipeline drives one content type through generate, evaluate, improve and refine.
type ContentPipeline interface {
	Generate(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.StepResult, error)
	Evaluate(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.StepResult, error)
	Improve(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.StepResult, error)
	RefineWithTranscript(ctx context.Context, mentorID string, contentType domain.ContentType, transcript string) (*domain.StepResult, error)
	// RunChain runs generate, evaluate and improve in order, reporting each finished step.
	RunChain(ctx context.Context, mentorID string, contentType domain.ContentType, onStep func(*domain.StepResult)) (*domain.StepResult, error)
	// GenerateSingleEmail drafts, critiques and rewrites one email without touching the asset.
	GenerateSingleEmail(ctx context.Context, mentorID string, req domain.SingleEmailRequest) (*domain.SingleEmailResult, error)
	StartNewAsset(ctx context.Context, mentorID string) (*domain.Asset, error)
	StageStatus(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.Stage, error)
	SelectConcept(ctx context.Context, assetID string, index int, fromImproved bool) (*domain.ConceptRecord, error)
	GetAsset(ctx context.Context, assetID string) (*domain.Asset, error)
	LatestAsset(ctx context.Context, mentorID string) (*domain.Asset, error)
}

// ApprovalWorkflow gates stage progression on human review.
type ApprovalWorkflow interface {
	Submit(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalRecord, error)
	Review(ctx context.Context, req domain.ReviewRequest) (*domain.ApprovalRecord, error)
	Status(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalStatusView, error)
	CanProceed(ctx context.Context, mentorID string, target domain.MentorStage) (*domain.ProceedCheck, error)
	History(ctx context.Context, assetID string, contentType domain.ContentType) ([]domain.ApprovalRecord, error)
}

// JobScheduler starts background runs and reports their progress.
type JobScheduler interface {
	StartUpload(ctx context.Context, req domain.UploadJobRequest) (*domain.ProcessingJob, error)
	StartGeneration(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.ProcessingJob, error)
	GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error)
}

// JobExecutor runs a previously created job out of band.
type JobExecutor interface {
	Execute(ctx context.Context, jobID string) error
}
