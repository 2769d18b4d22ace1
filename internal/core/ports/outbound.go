package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// MentorRepository persists mentor profiles.
type MentorRepository interface {
	CreateMentor(ctx context.Context, mentor *domain.Mentor) error
	GetMentor(ctx context.Context, id string) (*domain.Mentor, error)
	GetMentorByUser(ctx context.Context, userID string) (*domain.Mentor, error)
	ListMentors(ctx context.Context, skip, limit int) ([]domain.Mentor, error)
	SaveMentor(ctx context.Context, mentor *domain.Mentor) error
	DeleteMentor(ctx context.Context, id string) error
}

// ProjectRepository persists projects together with their stage records.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *domain.Project, stages []domain.Stage) error
	GetProjectByMentor(ctx context.Context, mentorID string) (*domain.Project, error)
	GetStage(ctx context.Context, projectID string, stageType domain.StageType) (*domain.Stage, error)
	SaveStage(ctx context.Context, stage *domain.Stage) error
}

// InputRepository stores the raw material a mentor uploaded.
type InputRepository interface {
	GetInputs(ctx context.Context, mentorID string) (*domain.InputArtifact, error)
	SaveInputs(ctx context.Context, inputs *domain.InputArtifact) error
}

// AssetRepository stores generated content aggregates. Saves replace the whole document.
type AssetRepository interface {
	CreateAsset(ctx context.Context, asset *domain.Asset) error
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	LatestAsset(ctx context.Context, mentorID string) (*domain.Asset, error)
	SaveAsset(ctx context.Context, asset *domain.Asset) error
}

// ApprovalRepository is the append-only review history.
type ApprovalRepository interface {
	CreateApproval(ctx context.Context, record *domain.ApprovalRecord) error
	GetApproval(ctx context.Context, id string) (*domain.ApprovalRecord, error)
	LatestApproval(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalRecord, error)
	ListApprovals(ctx context.Context, assetID string, contentType domain.ContentType) ([]domain.ApprovalRecord, error)
	SaveApproval(ctx context.Context, record *domain.ApprovalRecord) error
}

// ActivityRepository is the append-only audit trail of mentor changes.
type ActivityRepository interface {
	RecordActivity(ctx context.Context, entry *domain.ActivityEntry) error
	ListActivity(ctx context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error)
}

// JobRepository stores background job progress.
type JobRepository interface {
	CreateJob(ctx context.Context, job *domain.ProcessingJob) error
	GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error)
	SaveJob(ctx context.Context, job *domain.ProcessingJob) error
}

// TextGenerator turns a system/user instruction pair into text.
// Failures are returned as *domain.ProviderError.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor extracts plain text from a stored upload.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.StoredFile) (string, error)
}

// JobQueue dispatches background jobs by id.
type JobQueue interface {
	PublishJob(ctx context.Context, jobID string) error
	SubscribeJobs(ctx context.Context, handler func(context.Context, string) error) error
}

// PipelineObserver receives pipeline outcomes for metrics.
type PipelineObserver interface {
	ObserveGeneration(contentType domain.ContentType, step domain.PipelineStep, fallback bool)
	ObserveProviderError(kind domain.ProviderErrorKind)
	ObserveReview(contentType domain.ContentType, action domain.ReviewAction)
	ObserveJob(jobType domain.JobType, status domain.JobStatus, duration time.Duration)
}
