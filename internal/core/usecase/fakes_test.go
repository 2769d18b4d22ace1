package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/content"
	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

// memStore is an in-memory stand-in for every repository port.
// Values are copied on the way in and out so tests observe only persisted state.
type memStore struct {
	mu sync.Mutex

	mentors       map[string]domain.Mentor
	projects      map[string]domain.Project
	stages        map[string]domain.Stage
	inputs        map[string]domain.InputArtifact
	assets        map[string]domain.Asset
	assetOrder    []string
	approvals     map[string]domain.ApprovalRecord
	approvalOrder []string
	jobs          map[string]domain.ProcessingJob
	jobHistory    []domain.ProcessingJob
	activity      []domain.ActivityEntry

	saveAssetErr error
}

func newMemStore() *memStore {
	return &memStore{
		mentors:   map[string]domain.Mentor{},
		projects:  map[string]domain.Project{},
		stages:    map[string]domain.Stage{},
		inputs:    map[string]domain.InputArtifact{},
		assets:    map[string]domain.Asset{},
		approvals: map[string]domain.ApprovalRecord{},
		jobs:      map[string]domain.ProcessingJob{},
	}
}

func deepCopy[T any](t T) T {
	raw, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func (s *memStore) CreateMentor(_ context.Context, m *domain.Mentor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentors[m.ID] = *m
	return nil
}

func (s *memStore) GetMentor(_ context.Context, id string) (*domain.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentors[id]
	if !ok {
		return nil, domain.NotFound("get mentor", "mentor %s", id)
	}
	return &m, nil
}

func (s *memStore) GetMentorByUser(_ context.Context, userID string) (*domain.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mentors {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, domain.NotFound("get mentor by user", "user %s", userID)
}

func (s *memStore) ListMentors(_ context.Context, skip, limit int) ([]domain.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Mentor, 0, len(s.mentors))
	for _, m := range s.mentors {
		out = append(out, m)
	}
	if skip >= len(out) {
		return []domain.Mentor{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) SaveMentor(_ context.Context, m *domain.Mentor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mentors[m.ID]; !ok {
		return domain.NotFound("save mentor", "mentor %s", m.ID)
	}
	s.mentors[m.ID] = *m
	return nil
}

func (s *memStore) DeleteMentor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mentors[id]; !ok {
		return domain.NotFound("delete mentor", "mentor %s", id)
	}
	delete(s.mentors, id)
	return nil
}

func (s *memStore) CreateProject(_ context.Context, p *domain.Project, stages []domain.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = *p
	for _, st := range stages {
		s.stages[st.ID] = st
	}
	return nil
}

func (s *memStore) GetProjectByMentor(_ context.Context, mentorID string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.MentorID == mentorID {
			return &p, nil
		}
	}
	return nil, domain.NotFound("get project", "mentor %s", mentorID)
}

func (s *memStore) GetStage(_ context.Context, projectID string, stageType domain.StageType) (*domain.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stages {
		if st.ProjectID == projectID && st.StageType == stageType {
			return &st, nil
		}
	}
	return nil, domain.NotFound("get stage", "%s/%s", projectID, stageType)
}

func (s *memStore) SaveStage(_ context.Context, st *domain.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[st.ID] = *st
	return nil
}

func (s *memStore) GetInputs(_ context.Context, mentorID string) (*domain.InputArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inputs[mentorID]
	if !ok {
		return nil, domain.NotFound("get inputs", "mentor %s", mentorID)
	}
	return &in, nil
}

func (s *memStore) SaveInputs(_ context.Context, in *domain.InputArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[in.MentorID] = *in
	return nil
}

func (s *memStore) CreateAsset(_ context.Context, a *domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = deepCopy(*a)
	s.assetOrder = append(s.assetOrder, a.ID)
	return nil
}

func (s *memStore) GetAsset(_ context.Context, id string) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, domain.NotFound("get asset", "asset %s", id)
	}
	out := deepCopy(a)
	return &out, nil
}

func (s *memStore) LatestAsset(_ context.Context, mentorID string) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.assetOrder) - 1; i >= 0; i-- {
		if a := s.assets[s.assetOrder[i]]; a.MentorID == mentorID {
			out := deepCopy(a)
			return &out, nil
		}
	}
	return nil, domain.NotFound("latest asset", "mentor %s", mentorID)
}

func (s *memStore) RecordActivity(_ context.Context, e *domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, *e)
	return nil
}

func (s *memStore) ListActivity(_ context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ActivityEntry, 0)
	for i := len(s.activity) - 1; i >= 0 && len(out) < limit; i-- {
		if s.activity[i].MentorID == mentorID {
			out = append(out, s.activity[i])
		}
	}
	return out, nil
}

func (s *memStore) SaveAsset(_ context.Context, a *domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveAssetErr != nil {
		return s.saveAssetErr
	}
	s.assets[a.ID] = deepCopy(*a)
	return nil
}

func (s *memStore) CreateApproval(_ context.Context, r *domain.ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals[r.ID] = deepCopy(*r)
	s.approvalOrder = append(s.approvalOrder, r.ID)
	return nil
}

func (s *memStore) GetApproval(_ context.Context, id string) (*domain.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.approvals[id]
	if !ok {
		return nil, domain.NotFound("get approval", "approval %s", id)
	}
	out := deepCopy(r)
	return &out, nil
}

func (s *memStore) LatestApproval(_ context.Context, assetID string, ct domain.ContentType) (*domain.ApprovalRecord, error) {
	records, _ := s.ListApprovals(context.Background(), assetID, ct)
	if len(records) == 0 {
		return nil, domain.NotFound("latest approval", "asset %s", assetID)
	}
	return &records[0], nil
}

func (s *memStore) ListApprovals(_ context.Context, assetID string, ct domain.ContentType) ([]domain.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ApprovalRecord{}
	for i := len(s.approvalOrder) - 1; i >= 0; i-- {
		r := s.approvals[s.approvalOrder[i]]
		if r.AssetID == assetID && (ct == "" || r.ContentType == ct) {
			out = append(out, deepCopy(r))
		}
	}
	return out, nil
}

func (s *memStore) SaveApproval(_ context.Context, r *domain.ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals[r.ID] = deepCopy(*r)
	return nil
}

func (s *memStore) CreateJob(_ context.Context, j *domain.ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = *j
	s.jobHistory = append(s.jobHistory, *j)
	return nil
}

func (s *memStore) GetJob(_ context.Context, id string) (*domain.ProcessingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.NotFound("get job", "job %s", id)
	}
	return &j, nil
}

func (s *memStore) SaveJob(_ context.Context, j *domain.ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = *j
	s.jobHistory = append(s.jobHistory, *j)
	return nil
}

type generatorFake struct {
	responses []string
	err       error
	calls     int
}

func (f *generatorFake) Generate(context.Context, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	idx := min(f.calls-1, len(f.responses)-1)
	return f.responses[idx], nil
}

type observerFake struct {
	fallbacks      int
	providerErrors []domain.ProviderErrorKind
	reviews        []domain.ReviewAction
	jobs           []domain.JobStatus
}

func (o *observerFake) ObserveGeneration(_ domain.ContentType, _ domain.PipelineStep, fallback bool) {
	if fallback {
		o.fallbacks++
	}
}

func (o *observerFake) ObserveProviderError(kind domain.ProviderErrorKind) {
	o.providerErrors = append(o.providerErrors, kind)
}

func (o *observerFake) ObserveReview(_ domain.ContentType, action domain.ReviewAction) {
	o.reviews = append(o.reviews, action)
}

func (o *observerFake) ObserveJob(_ domain.JobType, status domain.JobStatus, _ time.Duration) {
	o.jobs = append(o.jobs, status)
}

type storageFake struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[key]
	if !ok {
		return nil, domain.NotFound("open", "key %s", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

// extractorFake returns stored bytes as text.
type extractorFake struct {
	storage *storageFake
	err     error
}

func (f *extractorFake) Extract(ctx context.Context, file domain.StoredFile) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	rc, err := f.storage.Open(ctx, file.Key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	return string(raw), err
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishJob(_ context.Context, jobID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, jobID)
	return nil
}

func (f *queueFake) SubscribeJobs(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type fixture struct {
	store     *memStore
	generator *generatorFake
	observer  *observerFake
	mentors   *MentorUseCase
	pipeline  *PipelineUseCase
	approvals *ApprovalUseCase
}

func newFixture(t *testing.T, mode domain.GenerationMode, generator *generatorFake) *fixture {
	t.Helper()
	profile, err := content.DefaultCatalog().Get("")
	if err != nil {
		t.Fatalf("default profile: %v", err)
	}
	store := newMemStore()
	observer := &observerFake{}
	f := &fixture{
		store:     store,
		generator: generator,
		observer:  observer,
		mentors:   NewMentorUseCase(store, store, store, store),
		approvals: NewApprovalUseCase(store, store, store, store, observer, nil),
	}
	var gen ports.TextGenerator
	if generator != nil {
		gen = generator
	}
	f.pipeline = NewPipelineUseCase(store, store, store, store, gen, observer, PipelineOptions{Mode: mode, Profile: profile})
	return f
}

// onboard creates a mentor with onboarding material and returns its id.
func (f *fixture) onboard(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	mentor, err := f.mentors.UpsertProfile(ctx, "user-1", domain.MentorProfile{Name: "Kari", Niche: "fitness"})
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	if _, err := f.mentors.UploadInputs(ctx, mentor.ID, domain.InputUpload{OnboardingDoc: "I coach women over 50 to get strong."}); err != nil {
		t.Fatalf("UploadInputs() error = %v", err)
	}
	return mentor.ID
}

func (f *fixture) stage(t *testing.T, mentorID string, ct domain.ContentType) domain.Stage {
	t.Helper()
	st, err := f.pipeline.StageStatus(context.Background(), mentorID, ct)
	if err != nil {
		t.Fatalf("StageStatus() error = %v", err)
	}
	return *st
}

// approve runs the full chain for ct, then submits and approves it.
func (f *fixture) approve(t *testing.T, mentorID string, ct domain.ContentType) *domain.StepResult {
	t.Helper()
	ctx := context.Background()
	res, err := f.pipeline.RunChain(ctx, mentorID, ct, nil)
	if err != nil {
		t.Fatalf("RunChain(%s) error = %v", ct, err)
	}
	record, err := f.approvals.Submit(ctx, res.AssetID, ct)
	if err != nil {
		t.Fatalf("Submit(%s) error = %v", ct, err)
	}
	if _, err := f.approvals.Review(ctx, domain.ReviewRequest{ApprovalID: record.ID, Action: domain.ActionApprove}); err != nil {
		t.Fatalf("Review(%s) error = %v", ct, err)
	}
	return res
}
