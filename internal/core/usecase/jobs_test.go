package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func TestJobTrackerFailureFreezesProgress(t *testing.T) {
	store := newMemStore()
	observer := &observerFake{}
	tracker := NewJobTracker(store, observer, nil)
	ctx := context.Background()

	job, err := tracker.Create(ctx, domain.JobGeneration, "mentor-1", domain.JobPayload{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if job.Status != domain.JobPending || job.Progress != 0 {
		t.Fatalf("unexpected new job: %+v", job)
	}

	longErr := errors.New(strings.Repeat("x", 900))
	runErr := tracker.Run(ctx, job, func(_ context.Context, report ReportFunc) (string, string, error) {
		report(30, "Halfway there")
		report(20, "Late report")
		return "", "", longErr
	})
	if !errors.Is(runErr, longErr) {
		t.Fatalf("expected work error, got %v", runErr)
	}

	stored, _ := store.GetJob(ctx, job.ID)
	if stored.Status != domain.JobFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}
	if stored.Progress != 30 {
		t.Fatalf("expected progress frozen at 30, got %d", stored.Progress)
	}
	if len([]rune(stored.Error)) != maxJobErrorRunes {
		t.Fatalf("expected error truncated to %d runes, got %d", maxJobErrorRunes, len([]rune(stored.Error)))
	}
	if !strings.HasPrefix(stored.Message, "Processing failed: ") {
		t.Fatalf("unexpected message %q", stored.Message)
	}
	if len(observer.jobs) != 1 || observer.jobs[0] != domain.JobFailed {
		t.Fatalf("unexpected observed jobs: %v", observer.jobs)
	}
}

func TestJobTrackerProgressNeverDecreases(t *testing.T) {
	store := newMemStore()
	tracker := NewJobTracker(store, nil, nil)
	ctx := context.Background()
	job, _ := tracker.Create(ctx, domain.JobGeneration, "mentor-1", domain.JobPayload{})

	err := tracker.Run(ctx, job, func(_ context.Context, report ReportFunc) (string, string, error) {
		for _, p := range []int{10, 50, 40, 90} {
			report(p, "step")
		}
		return "asset-1", "done", nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	last := -1
	for _, snap := range store.jobHistory {
		if snap.Progress < last {
			t.Fatalf("progress went backwards: %d after %d", snap.Progress, last)
		}
		last = snap.Progress
	}
	stored, _ := store.GetJob(ctx, job.ID)
	if stored.Status != domain.JobCompleted || stored.Progress != 100 || stored.ResultAssetID != "asset-1" {
		t.Fatalf("unexpected completed job: %+v", stored)
	}
}

func TestJobTrackerRecoversPanic(t *testing.T) {
	store := newMemStore()
	tracker := NewJobTracker(store, nil, nil)
	ctx := context.Background()
	job, _ := tracker.Create(ctx, domain.JobMultiUpload, "mentor-1", domain.JobPayload{})

	err := tracker.Run(ctx, job, func(_ context.Context, report ReportFunc) (string, string, error) {
		report(20, "about to blow up")
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic error, got %v", err)
	}
	stored, _ := store.GetJob(ctx, job.ID)
	if stored.Status != domain.JobFailed || stored.Progress != 20 {
		t.Fatalf("expected failed job at 20, got %+v", stored)
	}
}

func TestJobTrackerTerminalWriteSurvivesCancellation(t *testing.T) {
	store := newMemStore()
	tracker := NewJobTracker(store, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	job, _ := tracker.Create(ctx, domain.JobGeneration, "mentor-1", domain.JobPayload{})

	_ = tracker.Run(ctx, job, func(ctx context.Context, _ ReportFunc) (string, string, error) {
		cancel()
		return "", "", ctx.Err()
	})
	stored, _ := store.GetJob(context.Background(), job.ID)
	if stored.Status != domain.JobFailed {
		t.Fatalf("expected failed job after cancellation, got %s", stored.Status)
	}
}

type jobFixture struct {
	*fixture
	queue   *queueFake
	storage *storageFake
	jobs    *JobUseCase
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	f := newFixture(t, domain.ModeMockOnFailure, nil)
	queue := &queueFake{}
	storage := &storageFake{}
	tracker := NewJobTracker(f.store, f.observer, nil)
	jobs := NewJobUseCase(tracker, f.store, queue, storage, &extractorFake{storage: storage}, f.mentors, f.pipeline, nil)
	return &jobFixture{fixture: f, queue: queue, storage: storage, jobs: jobs}
}

func TestUploadJobRunsConceptChain(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	mentor, _ := f.mentors.UpsertProfile(ctx, "user-upload", domain.MentorProfile{Name: "Nora"})

	job, err := f.jobs.StartUpload(ctx, domain.UploadJobRequest{
		MentorID:     mentor.ID,
		HookAnalysis: "hooks",
		Files: []domain.UploadedFile{
			{Filename: "../../notes file.txt", MimeType: "text/plain", Body: strings.NewReader("I help nurses build a side business.")},
		},
	})
	if err != nil {
		t.Fatalf("StartUpload() error = %v", err)
	}
	if len(f.queue.published) != 1 || f.queue.published[0] != job.ID {
		t.Fatalf("expected job to be published, got %v", f.queue.published)
	}
	for key := range f.storage.files {
		if strings.Contains(key, "..") || !strings.HasSuffix(key, "notes_file.txt") {
			t.Fatalf("unexpected storage key %q", key)
		}
	}

	if err := f.jobs.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	stored, _ := f.jobs.GetJob(ctx, job.ID)
	if stored.Status != domain.JobCompleted || stored.Progress != 100 || stored.ResultAssetID == "" {
		t.Fatalf("unexpected job: %+v", stored)
	}

	inputs, err := f.mentors.GetInputs(ctx, mentor.ID)
	if err != nil {
		t.Fatalf("GetInputs() error = %v", err)
	}
	if !strings.Contains(inputs.OnboardingDoc, "nurses") || inputs.HookAnalysis != "hooks" {
		t.Fatalf("unexpected inputs: %+v", inputs)
	}
	if st := f.stage(t, mentor.ID, domain.ContentConcept); st.SubStage != domain.SubStageImproved {
		t.Fatalf("expected concept chain to finish, got %s", st.SubStage)
	}

	// Redelivery of a finished job is a no-op.
	if err := f.jobs.Execute(ctx, job.ID); err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
}

func TestUploadJobSkipsChainOnApprovedConcept(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	mentorID := f.onboard(t)
	approved := f.approve(t, mentorID, domain.ContentConcept)

	job, err := f.jobs.StartUpload(ctx, domain.UploadJobRequest{MentorID: mentorID, OnboardingDoc: "updated material"})
	if err != nil {
		t.Fatalf("StartUpload() error = %v", err)
	}
	if err := f.jobs.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	stored, _ := f.jobs.GetJob(ctx, job.ID)
	if stored.Status != domain.JobCompleted || !strings.Contains(stored.Message, "skipped") {
		t.Fatalf("expected completed job noting the skip, got %+v", stored)
	}
	if stored.ResultAssetID != approved.AssetID {
		t.Fatalf("expected approved asset %s to stay current, got %s", approved.AssetID, stored.ResultAssetID)
	}

	latest, err := f.pipeline.LatestAsset(ctx, mentorID)
	if err != nil || latest.ID != approved.AssetID {
		t.Fatalf("expected latest asset %s, got %+v, %v", approved.AssetID, latest, err)
	}
	check, err := f.approvals.CanProceed(ctx, mentorID, domain.MentorStructureDevelopment)
	if err != nil {
		t.Fatalf("CanProceed() error = %v", err)
	}
	if !check.CanProceed || len(check.MissingApprovals) != 0 {
		t.Fatalf("expected structure development to stay open, got %+v", check)
	}
	if _, err := f.pipeline.Generate(ctx, mentorID, domain.ContentStructure); err != nil {
		t.Fatalf("Generate(structure) after re-upload error = %v", err)
	}
	inputs, _ := f.mentors.GetInputs(ctx, mentorID)
	if inputs.OnboardingDoc != "updated material" {
		t.Fatalf("expected inputs to be replaced, got %q", inputs.OnboardingDoc)
	}
}

func TestUploadJobExtractionFailure(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	mentor, _ := f.mentors.UpsertProfile(ctx, "user-x", domain.MentorProfile{Name: "X"})
	f.jobs.extractor = &extractorFake{err: errors.New("corrupt pdf")}

	job, err := f.jobs.StartUpload(ctx, domain.UploadJobRequest{
		MentorID: mentor.ID,
		Files:    []domain.UploadedFile{{Filename: "deck.pdf", Body: strings.NewReader("%PDF")}},
	})
	if err != nil {
		t.Fatalf("StartUpload() error = %v", err)
	}
	if err := f.jobs.Execute(ctx, job.ID); err == nil {
		t.Fatalf("expected execution error")
	}
	stored, _ := f.jobs.GetJob(ctx, job.ID)
	if stored.Status != domain.JobFailed || stored.Progress != 10 || !strings.Contains(stored.Error, "corrupt pdf") {
		t.Fatalf("unexpected failed job: %+v", stored)
	}
}

func TestStartUploadValidation(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	if _, err := f.jobs.StartUpload(ctx, domain.UploadJobRequest{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.jobs.StartUpload(ctx, domain.UploadJobRequest{MentorID: "nobody", OnboardingDoc: "x"}); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStartGenerationPublishFailureMarksJobFailed(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	mentorID := f.onboard(t)
	f.queue.err = domain.WrapError(domain.ErrTemporary, "publish", errors.New("nats down"))

	if _, err := f.jobs.StartGeneration(ctx, mentorID, domain.ContentConcept); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	for _, job := range f.store.jobs {
		if job.Status != domain.JobFailed {
			t.Fatalf("expected undispatched job to be failed, got %+v", job)
		}
	}
}

func TestGenerationJobReportsFallback(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	mentorID := f.onboard(t)

	job, err := f.jobs.StartGeneration(ctx, mentorID, domain.ContentConcept)
	if err != nil {
		t.Fatalf("StartGeneration() error = %v", err)
	}
	if err := f.jobs.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	stored, _ := f.jobs.GetJob(ctx, job.ID)
	if stored.Status != domain.JobCompleted || !strings.Contains(stored.Message, reasonNoProvider) {
		t.Fatalf("unexpected job: %+v", stored)
	}
}
