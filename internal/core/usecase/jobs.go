package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

// JobUseCase starts background runs and executes them when the queue delivers them.
type JobUseCase struct {
	tracker   *JobTracker
	jobs      ports.JobRepository
	queue     ports.JobQueue
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	mentors   ports.MentorService
	pipeline  ports.ContentPipeline
	logger    *slog.Logger
}

func NewJobUseCase(
	tracker *JobTracker,
	jobs ports.JobRepository,
	queue ports.JobQueue,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	mentors ports.MentorService,
	pipeline ports.ContentPipeline,
	logger *slog.Logger,
) *JobUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobUseCase{
		tracker:   tracker,
		jobs:      jobs,
		queue:     queue,
		storage:   storage,
		extractor: extractor,
		mentors:   mentors,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// StartUpload stores the uploaded files and queues extraction plus concept generation.
func (uc *JobUseCase) StartUpload(ctx context.Context, req domain.UploadJobRequest) (*domain.ProcessingJob, error) {
	const op = "start upload job"
	if strings.TrimSpace(req.MentorID) == "" {
		return nil, domain.Invalid(op, "mentor_id is required")
	}
	if len(req.Files) == 0 && strings.TrimSpace(req.OnboardingDoc) == "" && strings.TrimSpace(req.HookAnalysis) == "" {
		return nil, domain.Invalid(op, "no files or text supplied")
	}
	if _, err := uc.mentors.GetMentor(ctx, req.MentorID); err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}

	payload := domain.JobPayload{
		OnboardingDoc: req.OnboardingDoc,
		HookAnalysis:  req.HookAnalysis,
	}
	for _, f := range req.Files {
		key := fmt.Sprintf("uploads/%s/%s_%s", req.MentorID, uuid.NewString(), sanitizeFilename(f.Filename))
		if err := uc.storage.Save(ctx, key, f.Body); err != nil {
			return nil, fmt.Errorf("save to object storage: %w", err)
		}
		payload.Files = append(payload.Files, domain.StoredFile{Key: key, Filename: f.Filename, MimeType: f.MimeType})
	}

	job, err := uc.tracker.Create(ctx, domain.JobMultiUpload, req.MentorID, payload)
	if err != nil {
		return nil, err
	}
	if err := uc.dispatch(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (uc *JobUseCase) StartGeneration(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.ProcessingJob, error) {
	if _, err := uc.mentors.GetMentor(ctx, mentorID); err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	job, err := uc.tracker.Create(ctx, domain.JobGeneration, mentorID, domain.JobPayload{ContentType: contentType})
	if err != nil {
		return nil, err
	}
	if err := uc.dispatch(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (uc *JobUseCase) GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	return uc.jobs.GetJob(ctx, id)
}

// Execute runs a queued job. Redelivered jobs that already finished are skipped.
func (uc *JobUseCase) Execute(ctx context.Context, jobID string) error {
	job, err := uc.jobs.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job.Status.Terminal() {
		uc.logger.Info("job_already_finished", "job_id", job.ID, "status", job.Status)
		return nil
	}

	switch job.JobType {
	case domain.JobMultiUpload:
		return uc.tracker.Run(ctx, job, uc.uploadWork(job))
	case domain.JobGeneration:
		return uc.tracker.Run(ctx, job, uc.generationWork(job))
	default:
		err := domain.Invalid("execute job", "unknown job type %q", job.JobType)
		uc.tracker.Fail(ctx, job, err)
		return err
	}
}

func (uc *JobUseCase) dispatch(ctx context.Context, job *domain.ProcessingJob) error {
	if err := uc.queue.PublishJob(ctx, job.ID); err != nil {
		uc.tracker.Fail(ctx, job, err)
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

func (uc *JobUseCase) uploadWork(job *domain.ProcessingJob) JobWork {
	return func(ctx context.Context, report ReportFunc) (string, string, error) {
		report(5, "Starting upload processing")

		parts := make([]string, 0, len(job.Payload.Files)+1)
		if doc := strings.TrimSpace(job.Payload.OnboardingDoc); doc != "" {
			parts = append(parts, doc)
		}
		report(10, "Extracting text from uploaded files")
		for i, f := range job.Payload.Files {
			text, err := uc.extractor.Extract(ctx, f)
			if err != nil {
				return "", "", fmt.Errorf("extract %s: %w", f.Filename, err)
			}
			if text = strings.TrimSpace(text); text != "" {
				parts = append(parts, text)
			}
			report(10+(i+1)*20/len(job.Payload.Files), fmt.Sprintf("Extracted %s", f.Filename))
		}

		report(30, "Saving mentor inputs")
		if _, err := uc.mentors.UploadInputs(ctx, job.MentorID, domain.InputUpload{
			OnboardingDoc: strings.Join(parts, "\n\n"),
			HookAnalysis:  job.Payload.HookAnalysis,
		}); err != nil {
			return "", "", fmt.Errorf("upload inputs: %w", err)
		}

		// An approved concept keeps its asset as the latest one.
		stage, err := uc.pipeline.StageStatus(ctx, job.MentorID, domain.ContentConcept)
		if err != nil {
			return "", "", fmt.Errorf("concept stage: %w", err)
		}
		if stage.Status == domain.StageStatusApproved {
			current, err := uc.pipeline.LatestAsset(ctx, job.MentorID)
			if err != nil {
				return "", "", fmt.Errorf("latest asset: %w", err)
			}
			return current.ID, "Inputs saved; concept already approved, concept generation skipped", nil
		}

		report(50, "Creating webinar asset")
		asset, err := uc.pipeline.StartNewAsset(ctx, job.MentorID)
		if err != nil {
			return "", "", fmt.Errorf("start asset: %w", err)
		}

		report(60, "Generating concepts")
		_, err = uc.pipeline.RunChain(ctx, job.MentorID, domain.ContentConcept, chainReporter(report, domain.ContentConcept))
		if domain.IsKind(err, domain.ErrPreconditionFailed) {
			return asset.ID, "Inputs saved; concept generation skipped: " + err.Error(), nil
		}
		if err != nil {
			return "", "", fmt.Errorf("generate concepts: %w", err)
		}
		return asset.ID, "Processing complete", nil
	}
}

func (uc *JobUseCase) generationWork(job *domain.ProcessingJob) JobWork {
	return func(ctx context.Context, report ReportFunc) (string, string, error) {
		contentType := job.Payload.ContentType
		report(10, "Generating "+contentType.Label())
		res, err := uc.pipeline.RunChain(ctx, job.MentorID, contentType, chainReporter(report, contentType))
		if err != nil {
			return "", "", fmt.Errorf("generate %s: %w", contentType, err)
		}
		msg := contentType.Label() + " ready for review"
		if res.MockFallback {
			msg += " (placeholder content: " + res.MockReason + ")"
		}
		return res.AssetID, msg, nil
	}
}

func chainReporter(report ReportFunc, contentType domain.ContentType) func(*domain.StepResult) {
	return func(res *domain.StepResult) {
		switch res.Step {
		case domain.StepGenerate:
			report(70, "Generated "+contentType.Label())
		case domain.StepEvaluate:
			report(80, "Evaluated "+contentType.Label())
		case domain.StepImprove:
			report(90, "Improved "+contentType.Label())
		}
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "upload.bin"
	}
	return base
}
