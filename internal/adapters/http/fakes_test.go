package httpadapter

import (
	"context"
	"io"
	"net/http"

	"github.com/kirillkom/webinar-pipeline/internal/config"
	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

type mentorsFake struct {
	err       error
	lastUser  string
	lastSkip  int
	lastLimit int
}

func (f *mentorsFake) UpsertProfile(_ context.Context, userID string, profile domain.MentorProfile) (*domain.Mentor, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Mentor{ID: "m-1", UserID: userID, Profile: profile}, nil
}

func (f *mentorsFake) GetMentor(_ context.Context, id string) (*domain.Mentor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Mentor{ID: id}, nil
}

func (f *mentorsFake) GetMentorByUser(_ context.Context, userID string) (*domain.Mentor, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Mentor{ID: "m-1", UserID: userID}, nil
}

func (f *mentorsFake) ListMentors(_ context.Context, skip, limit int) ([]domain.Mentor, error) {
	f.lastSkip, f.lastLimit = skip, limit
	return []domain.Mentor{{ID: "m-1"}}, f.err
}

func (f *mentorsFake) DeleteMentor(context.Context, string) error { return f.err }

func (f *mentorsFake) UploadInputs(_ context.Context, mentorID string, upload domain.InputUpload) (*domain.InputArtifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.InputArtifact{MentorID: mentorID, OnboardingDoc: upload.OnboardingDoc}, nil
}

func (f *mentorsFake) GetInputs(_ context.Context, mentorID string) (*domain.InputArtifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.InputArtifact{MentorID: mentorID, OnboardingDoc: "doc"}, nil
}

func (f *mentorsFake) Activity(_ context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []domain.ActivityEntry{{ID: "act-1", MentorID: mentorID, Action: domain.ActivityDocumentsUploaded}}, nil
}

type pipelineFake struct {
	err            error
	lastStep       domain.PipelineStep
	lastTranscript string
	lastEmail      domain.SingleEmailRequest
}

func (f *pipelineFake) step(mentorID string, ct domain.ContentType, step domain.PipelineStep) (*domain.StepResult, error) {
	f.lastStep = step
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StepResult{MentorID: mentorID, AssetID: "a-1", ContentType: ct, Step: step, MockFallback: true, MockReason: "mock mode forced"}, nil
}

func (f *pipelineFake) Generate(_ context.Context, m string, ct domain.ContentType) (*domain.StepResult, error) {
	return f.step(m, ct, domain.StepGenerate)
}

func (f *pipelineFake) Evaluate(_ context.Context, m string, ct domain.ContentType) (*domain.StepResult, error) {
	return f.step(m, ct, domain.StepEvaluate)
}

func (f *pipelineFake) Improve(_ context.Context, m string, ct domain.ContentType) (*domain.StepResult, error) {
	return f.step(m, ct, domain.StepImprove)
}

func (f *pipelineFake) RefineWithTranscript(_ context.Context, m string, ct domain.ContentType, transcript string) (*domain.StepResult, error) {
	f.lastTranscript = transcript
	return f.step(m, ct, domain.StepRefine)
}

func (f *pipelineFake) RunChain(_ context.Context, m string, ct domain.ContentType, _ func(*domain.StepResult)) (*domain.StepResult, error) {
	return f.step(m, ct, domain.StepImprove)
}

func (f *pipelineFake) GenerateSingleEmail(_ context.Context, mentorID string, req domain.SingleEmailRequest) (*domain.SingleEmailResult, error) {
	f.lastEmail = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SingleEmailResult{MentorID: mentorID, Draft: "draft", Evaluation: "eval", FinalEmail: "final"}, nil
}

func (f *pipelineFake) StartNewAsset(context.Context, string) (*domain.Asset, error) {
	return &domain.Asset{ID: "a-1"}, f.err
}

func (f *pipelineFake) StageStatus(context.Context, string, domain.ContentType) (*domain.Stage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Stage{ID: "s-1", Status: domain.StageStatusPending}, nil
}

func (f *pipelineFake) SelectConcept(_ context.Context, _ string, index int, _ bool) (*domain.ConceptRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ConceptRecord{Title: "Concept"}, nil
}

func (f *pipelineFake) GetAsset(_ context.Context, id string) (*domain.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Asset{ID: id}, nil
}

func (f *pipelineFake) LatestAsset(_ context.Context, mentorID string) (*domain.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Asset{ID: "a-1", MentorID: mentorID}, nil
}

type approvalsFake struct {
	err        error
	lastReview domain.ReviewRequest
	lastTarget domain.MentorStage
	lastType   domain.ContentType
}

func (f *approvalsFake) Submit(_ context.Context, assetID string, ct domain.ContentType) (*domain.ApprovalRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ApprovalRecord{ID: "ap-1", AssetID: assetID, ContentType: ct, Version: 2, Status: domain.RecordPending}, nil
}

func (f *approvalsFake) Review(_ context.Context, req domain.ReviewRequest) (*domain.ApprovalRecord, error) {
	f.lastReview = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ApprovalRecord{ID: req.ApprovalID, Status: domain.RecordRevisionRequested}, nil
}

func (f *approvalsFake) Status(context.Context, string, domain.ContentType) (*domain.ApprovalStatusView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ApprovalStatusView{CanProceed: true, Message: "approved"}, nil
}

func (f *approvalsFake) CanProceed(_ context.Context, _ string, target domain.MentorStage) (*domain.ProceedCheck, error) {
	f.lastTarget = target
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProceedCheck{CanProceed: false, MissingApprovals: []string{"Webinar Concept"}}, nil
}

func (f *approvalsFake) History(_ context.Context, _ string, ct domain.ContentType) ([]domain.ApprovalRecord, error) {
	f.lastType = ct
	return []domain.ApprovalRecord{{ID: "ap-2"}, {ID: "ap-1"}}, f.err
}

type jobsFake struct {
	err     error
	lastReq domain.UploadJobRequest
	bodies  map[string]string
}

func (f *jobsFake) StartUpload(_ context.Context, req domain.UploadJobRequest) (*domain.ProcessingJob, error) {
	f.lastReq = req
	f.bodies = map[string]string{}
	for _, file := range req.Files {
		raw, _ := io.ReadAll(file.Body)
		f.bodies[file.Filename] = string(raw)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProcessingJob{ID: "job-1", Status: domain.JobPending}, nil
}

func (f *jobsFake) StartGeneration(_ context.Context, mentorID string, _ domain.ContentType) (*domain.ProcessingJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProcessingJob{ID: "job-2", MentorID: mentorID, Status: domain.JobPending}, nil
}

func (f *jobsFake) GetJob(_ context.Context, id string) (*domain.ProcessingJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProcessingJob{
		ID:       id,
		Status:   domain.JobProcessing,
		Progress: 30,
		Payload:  domain.JobPayload{OnboardingDoc: "secret material"},
	}, nil
}

type toneFake struct{}

func (toneFake) Validate(text string) domain.ToneReport {
	return domain.ToneReport{Score: 9, Passed: len(text) > 0}
}

type routerDeps struct {
	mentors   *mentorsFake
	pipeline  *pipelineFake
	approvals *approvalsFake
	jobs      *jobsFake
}

func newTestRouter(cfg config.Config) (http.Handler, *routerDeps) {
	deps := &routerDeps{
		mentors:   &mentorsFake{},
		pipeline:  &pipelineFake{},
		approvals: &approvalsFake{},
		jobs:      &jobsFake{},
	}
	handler := NewRouter(cfg, deps.mentors, deps.pipeline, deps.approvals, deps.jobs, toneFake{}, nil).Handler()
	return handler, deps
}

func newTestHandler(cfg config.Config) http.Handler {
	handler, _ := newTestRouter(cfg)
	return handler
}
