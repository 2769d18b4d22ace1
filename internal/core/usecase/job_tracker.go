package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/webinar-pipeline/internal/core/content"
	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

const (
	maxJobErrorRunes   = 500
	maxJobMessageRunes = 100
)

// ReportFunc records a progress milestone. Progress never moves backwards.
type ReportFunc func(progress int, message string)

// JobWork is the body of a background job. It returns the asset it produced and a final message.
type JobWork func(ctx context.Context, report ReportFunc) (assetID string, message string, err error)

// JobTracker persists the lifecycle of background jobs.
type JobTracker struct {
	repo     ports.JobRepository
	observer ports.PipelineObserver
	logger   *slog.Logger
}

func NewJobTracker(repo ports.JobRepository, observer ports.PipelineObserver, logger *slog.Logger) *JobTracker {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobTracker{repo: repo, observer: observer, logger: logger}
}

func (t *JobTracker) Create(ctx context.Context, jobType domain.JobType, mentorID string, payload domain.JobPayload) (*domain.ProcessingJob, error) {
	now := time.Now().UTC()
	job := &domain.ProcessingJob{
		ID:        uuid.NewString(),
		JobType:   jobType,
		MentorID:  mentorID,
		Status:    domain.JobPending,
		Progress:  0,
		Message:   "Job queued",
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// Run executes work for job and always leaves the job in a terminal state.
func (t *JobTracker) Run(ctx context.Context, job *domain.ProcessingJob, work JobWork) error {
	started := time.Now()
	job.Status = domain.JobProcessing
	t.save(ctx, job)

	report := func(progress int, message string) {
		job.Progress = min(max(job.Progress, progress), 100)
		job.Message = message
		t.save(ctx, job)
	}

	assetID, message, err := runSafely(ctx, work, report)

	// Terminal writes must land even when the caller is shutting down.
	final := context.WithoutCancel(ctx)
	if err != nil {
		msg := err.Error()
		job.Status = domain.JobFailed
		job.Error = content.Truncate(msg, maxJobErrorRunes)
		job.Message = "Processing failed: " + content.Truncate(msg, maxJobMessageRunes)
		t.logger.Error("job_failed",
			"job_id", job.ID,
			"job_type", job.JobType,
			"progress", job.Progress,
			"error", err,
		)
	} else {
		job.Status = domain.JobCompleted
		job.Progress = 100
		job.ResultAssetID = assetID
		job.Message = message
		job.Error = ""
		t.logger.Info("job_completed", "job_id", job.ID, "job_type", job.JobType, "asset_id", assetID)
	}
	t.observer.ObserveJob(job.JobType, job.Status, time.Since(started))

	job.UpdatedAt = time.Now().UTC()
	if saveErr := t.repo.SaveJob(final, job); saveErr != nil {
		return fmt.Errorf("save terminal job state: %w", saveErr)
	}
	return err
}

// Fail marks a job that never started as failed.
func (t *JobTracker) Fail(ctx context.Context, job *domain.ProcessingJob, cause error) {
	job.Status = domain.JobFailed
	job.Error = content.Truncate(cause.Error(), maxJobErrorRunes)
	job.Message = "Processing failed: " + content.Truncate(cause.Error(), maxJobMessageRunes)
	job.UpdatedAt = time.Now().UTC()
	if err := t.repo.SaveJob(context.WithoutCancel(ctx), job); err != nil {
		t.logger.Error("job_save_failed", "job_id", job.ID, "error", err)
	}
}

func (t *JobTracker) save(ctx context.Context, job *domain.ProcessingJob) {
	job.UpdatedAt = time.Now().UTC()
	if err := t.repo.SaveJob(ctx, job); err != nil {
		t.logger.Warn("job_progress_save_failed", "job_id", job.ID, "progress", job.Progress, "error", err)
	}
}

func runSafely(ctx context.Context, work JobWork, report ReportFunc) (assetID, message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return work(ctx, report)
}
