package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/webinar-pipeline/internal/core/content"
	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

const (
	reasonMockForced = "mock mode forced"
	reasonNoProvider = "generation provider not configured"
	maxReasonRunes   = 200
)

type PipelineOptions struct {
	Mode    domain.GenerationMode
	Profile domain.ContentProfile
	Logger  *slog.Logger
}

// PipelineUseCase drives one content type through generate, evaluate, improve and refine.
// Provider failures never surface to the caller; they degrade to fallback content.
type PipelineUseCase struct {
	mentors   ports.MentorRepository
	projects  ports.ProjectRepository
	inputs    ports.InputRepository
	assets    ports.AssetRepository
	generator ports.TextGenerator
	observer  ports.PipelineObserver

	mode    domain.GenerationMode
	prompts *content.PromptBuilder
	tone    *content.ToneValidator
	logger  *slog.Logger
}

func NewPipelineUseCase(
	mentors ports.MentorRepository,
	projects ports.ProjectRepository,
	inputs ports.InputRepository,
	assets ports.AssetRepository,
	generator ports.TextGenerator,
	observer ports.PipelineObserver,
	opts PipelineOptions,
) *PipelineUseCase {
	if opts.Mode == "" {
		opts.Mode = domain.ModeMockOnFailure
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &PipelineUseCase{
		mentors:   mentors,
		projects:  projects,
		inputs:    inputs,
		assets:    assets,
		generator: generator,
		observer:  observer,
		mode:      opts.Mode,
		prompts:   content.NewPromptBuilder(opts.Profile),
		tone:      content.NewToneValidator(opts.Profile.Tone),
		logger:    opts.Logger,
	}
}

type workspace struct {
	mentor  *domain.Mentor
	project *domain.Project
	stage   *domain.Stage
	asset   *domain.Asset
}

type generation struct {
	text     string
	fallback bool
	reason   string
}

func (uc *PipelineUseCase) Generate(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.StepResult, error) {
	const op = "generate content"
	ws, err := uc.load(ctx, op, mentorID, contentType, false)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(op, ws.stage); err != nil {
		return nil, err
	}
	pc, err := uc.promptContext(ctx, op, ws, contentType)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if ws.asset == nil {
		if ws.asset, err = uc.createAsset(ctx, ws.project, pc, now); err != nil {
			return nil, err
		}
	}

	var overview string
	if contentType == domain.ContentEmailSequence {
		if plan := uc.complete(ctx, contentType, domain.StepOverview, uc.prompts.EmailOverview(pc)); !plan.fallback {
			overview = strings.TrimSpace(plan.text)
			pc.EmailOverview = overview
		}
	}

	gen := uc.complete(ctx, contentType, domain.StepGenerate, uc.prompts.Generate(contentType, pc))
	body := content.Fallback(contentType)
	if !gen.fallback {
		body = content.Parse(contentType, gen.text)
	}

	state := ws.asset.Content(contentType)
	state.Overview = overview
	state.Original = body
	state.Evaluated = ""
	state.Improved = nil
	state.TranscriptFeedback = ""
	state.Tone = nil
	markFallback(state, gen)
	ws.stage.Restart(now)

	if err := uc.persist(ctx, ws, now); err != nil {
		return nil, err
	}
	res := result(ws, contentType, domain.StepGenerate, gen)
	res.Content = body
	return res, nil
}

func (uc *PipelineUseCase) Evaluate(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.StepResult, error) {
	const op = "evaluate content"
	ws, err := uc.load(ctx, op, mentorID, contentType, true)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(op, ws.stage); err != nil {
		return nil, err
	}
	state := ws.asset.Content(contentType)
	if state.Original.IsEmpty() {
		return nil, domain.Precondition(op, "no generated %s to evaluate; run generate first", contentType)
	}

	gen := uc.complete(ctx, contentType, domain.StepEvaluate, uc.prompts.Evaluate(contentType, state.Original))
	evaluation := strings.TrimSpace(gen.text)
	if gen.fallback {
		evaluation = content.FallbackEvaluation(contentType)
	}

	now := time.Now().UTC()
	state.Evaluated = evaluation
	markFallback(state, gen)
	ws.stage.Transition(domain.SubStageSelfEval, now)

	if err := uc.persist(ctx, ws, now); err != nil {
		return nil, err
	}
	res := result(ws, contentType, domain.StepEvaluate, gen)
	res.Evaluation = evaluation
	return res, nil
}

func (uc *PipelineUseCase) Improve(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.StepResult, error) {
	const op = "improve content"
	ws, err := uc.load(ctx, op, mentorID, contentType, true)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(op, ws.stage); err != nil {
		return nil, err
	}
	state := ws.asset.Content(contentType)
	if state.Evaluated == "" || state.Original.IsEmpty() {
		return nil, domain.Precondition(op, "no evaluation for %s; run evaluate first", contentType)
	}

	gen := uc.complete(ctx, contentType, domain.StepImprove, uc.prompts.Improve(contentType, state.Original, state.Evaluated))
	improved := state.Original.Clone()
	if !gen.fallback {
		improved = content.Parse(contentType, gen.text)
	}

	now := time.Now().UTC()
	report := uc.tone.ValidateBody(improved)
	state.Improved = improved
	state.Tone = &report
	markFallback(state, gen)
	ws.stage.Transition(domain.SubStageImproved, now)

	if err := uc.persist(ctx, ws, now); err != nil {
		return nil, err
	}
	res := result(ws, contentType, domain.StepImprove, gen)
	res.Content = improved
	res.Tone = &report
	return res, nil
}

func (uc *PipelineUseCase) RefineWithTranscript(
	ctx context.Context,
	mentorID string,
	contentType domain.ContentType,
	transcript string,
) (*domain.StepResult, error) {
	const op = "refine content"
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, domain.Invalid(op, "transcript is required")
	}
	ws, err := uc.load(ctx, op, mentorID, contentType, true)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(op, ws.stage); err != nil {
		return nil, err
	}
	state := ws.asset.Content(contentType)
	prior := state.Latest()
	if prior == nil {
		return nil, domain.Precondition(op, "no %s content to refine", contentType)
	}

	gen := uc.complete(ctx, contentType, domain.StepRefine, uc.prompts.Refine(contentType, prior, transcript))
	refined := prior.Clone()
	if !gen.fallback {
		refined = content.Parse(contentType, gen.text)
	}

	now := time.Now().UTC()
	report := uc.tone.ValidateBody(refined)
	state.Improved = refined
	state.TranscriptFeedback = transcript
	state.Tone = &report
	markFallback(state, gen)
	ws.stage.TranscriptFeedback = transcript
	ws.stage.Transition(domain.SubStageMentorFeedback, now)

	if err := uc.persist(ctx, ws, now); err != nil {
		return nil, err
	}
	res := result(ws, contentType, domain.StepRefine, gen)
	res.Content = refined
	res.Tone = &report
	return res, nil
}

func (uc *PipelineUseCase) RunChain(
	ctx context.Context,
	mentorID string,
	contentType domain.ContentType,
	onStep func(*domain.StepResult),
) (*domain.StepResult, error) {
	steps := []func(context.Context, string, domain.ContentType) (*domain.StepResult, error){
		uc.Generate,
		uc.Evaluate,
		uc.Improve,
	}
	var last *domain.StepResult
	for _, step := range steps {
		res, err := step(ctx, mentorID, contentType)
		if err != nil {
			return last, err
		}
		if onStep != nil {
			onStep(res)
		}
		last = res
	}
	return last, nil
}

// GenerateSingleEmail runs draft, critique and rewrite for one email. A failed step keeps the
// text of the previous one and marks the result as fallback.
func (uc *PipelineUseCase) GenerateSingleEmail(ctx context.Context, mentorID string, req domain.SingleEmailRequest) (*domain.SingleEmailResult, error) {
	const op = "generate single email"
	outline := strings.TrimSpace(req.Outline)
	if outline == "" {
		return nil, domain.Invalid(op, "email_outline is required")
	}
	mentor, err := uc.mentors.GetMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}

	var concept *domain.ConceptRecord
	conceptContext := strings.TrimSpace(req.ConceptContext)
	if conceptContext == "" {
		asset, err := uc.assets.LatestAsset(ctx, mentorID)
		switch {
		case err == nil:
			concept = asset.ActiveConcept()
		case !domain.IsKind(err, domain.ErrNotFound):
			return nil, fmt.Errorf("get latest asset: %w", err)
		}
	}

	ct := domain.ContentEmailSequence
	res := &domain.SingleEmailResult{MentorID: mentor.ID}
	fallback := func(gen generation) {
		if !res.MockFallback {
			res.MockFallback, res.MockReason = true, gen.reason
		}
	}

	draft := uc.complete(ctx, ct, domain.StepGenerate, uc.prompts.SingleEmail(mentor.Profile, outline, conceptContext, concept))
	if draft.fallback {
		fallback(draft)
		res.Draft = content.FallbackSingleEmail(outline)
		res.Evaluation = content.FallbackEvaluation(ct)
		res.FinalEmail = res.Draft
		return res, nil
	}
	res.Draft = strings.TrimSpace(draft.text)

	eval := uc.complete(ctx, ct, domain.StepEvaluate, uc.prompts.EvaluateEmail(res.Draft))
	if eval.fallback {
		fallback(eval)
		res.Evaluation = content.FallbackEvaluation(ct)
		res.FinalEmail = res.Draft
		return res, nil
	}
	res.Evaluation = strings.TrimSpace(eval.text)

	improved := uc.complete(ctx, ct, domain.StepImprove, uc.prompts.ImproveEmail(res.Draft, res.Evaluation))
	if improved.fallback {
		fallback(improved)
		res.FinalEmail = res.Draft
		return res, nil
	}
	res.FinalEmail = strings.TrimSpace(improved.text)
	return res, nil
}

// StartNewAsset opens a fresh asset for the mentor's project, seeded from the current inputs.
func (uc *PipelineUseCase) StartNewAsset(ctx context.Context, mentorID string) (*domain.Asset, error) {
	const op = "start asset"
	project, err := uc.projects.GetProjectByMentor(ctx, mentorID)
	if err != nil {
		return nil, requireUpstream(op, err, "mentor has no project; upload inputs first")
	}
	inputs, err := uc.inputs.GetInputs(ctx, mentorID)
	if err != nil {
		return nil, requireUpstream(op, err, "mentor has no inputs")
	}
	return uc.createAsset(ctx, project, content.PromptContext{
		OnboardingDoc: inputs.OnboardingDoc,
		HookAnalysis:  inputs.HookAnalysis,
	}, time.Now().UTC())
}

func (uc *PipelineUseCase) StageStatus(ctx context.Context, mentorID string, contentType domain.ContentType) (*domain.Stage, error) {
	project, err := uc.projects.GetProjectByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return uc.projects.GetStage(ctx, project.ID, contentType.StageType())
}

func (uc *PipelineUseCase) SelectConcept(ctx context.Context, assetID string, index int, fromImproved bool) (*domain.ConceptRecord, error) {
	const op = "select concept"
	asset, err := uc.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	source := asset.Concept.Original
	if fromImproved && !asset.Concept.Improved.IsEmpty() {
		source = asset.Concept.Improved
	}
	if source.IsEmpty() {
		return nil, domain.Precondition(op, "asset %s has no concepts", assetID)
	}
	if index < 0 || index >= len(source.Concepts) {
		return nil, domain.Invalid(op, "concept index %d out of range [0,%d)", index, len(source.Concepts))
	}

	selected := source.Concepts[index].Clone()
	asset.SelectedConcept = &selected
	asset.UpdatedAt = time.Now().UTC()
	if err := uc.assets.SaveAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("save asset: %w", err)
	}
	return &selected, nil
}

func (uc *PipelineUseCase) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	return uc.assets.GetAsset(ctx, assetID)
}

func (uc *PipelineUseCase) LatestAsset(ctx context.Context, mentorID string) (*domain.Asset, error) {
	return uc.assets.LatestAsset(ctx, mentorID)
}

func (uc *PipelineUseCase) load(ctx context.Context, op, mentorID string, contentType domain.ContentType, needAsset bool) (*workspace, error) {
	mentor, err := uc.mentors.GetMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	project, err := uc.projects.GetProjectByMentor(ctx, mentorID)
	if err != nil {
		return nil, requireUpstream(op, err, "mentor has no project; upload inputs first")
	}
	stage, err := uc.projects.GetStage(ctx, project.ID, contentType.StageType())
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	ws := &workspace{mentor: mentor, project: project, stage: stage}

	asset, err := uc.assets.LatestAsset(ctx, mentorID)
	switch {
	case err == nil:
		ws.asset = asset
	case domain.IsKind(err, domain.ErrNotFound) && !needAsset:
	case domain.IsKind(err, domain.ErrNotFound):
		return nil, domain.Precondition(op, "no generated %s yet; run generate first", contentType)
	default:
		return nil, fmt.Errorf("get latest asset: %w", err)
	}
	return ws, nil
}

// promptContext gathers source material and enforces the upstream approval gate.
func (uc *PipelineUseCase) promptContext(ctx context.Context, op string, ws *workspace, contentType domain.ContentType) (content.PromptContext, error) {
	pc := content.PromptContext{Mentor: ws.mentor.Profile}

	inputs, err := uc.inputs.GetInputs(ctx, ws.mentor.ID)
	switch {
	case err == nil:
		pc.OnboardingDoc = inputs.OnboardingDoc
		pc.HookAnalysis = inputs.HookAnalysis
	case !domain.IsKind(err, domain.ErrNotFound):
		return pc, fmt.Errorf("get inputs: %w", err)
	}

	upstream, ok := contentType.Upstream()
	if !ok {
		if strings.TrimSpace(pc.OnboardingDoc) == "" {
			return pc, domain.Precondition(op, "onboarding material is required before generating %s", contentType)
		}
		return pc, nil
	}

	gate, err := uc.projects.GetStage(ctx, ws.project.ID, upstream.StageType())
	if err != nil {
		return pc, fmt.Errorf("get upstream stage: %w", err)
	}
	if gate.Status != domain.StageStatusApproved || ws.asset == nil {
		return pc, domain.Precondition(op, "%s must be approved before generating %s", upstream.Label(), contentType)
	}

	pc.Concept = ws.asset.ActiveConcept()
	if pc.Concept == nil {
		return pc, domain.Precondition(op, "no saved concept to build %s on", contentType)
	}
	if contentType == domain.ContentEmailSequence {
		slides := ws.asset.Structure.Latest()
		if slides.IsEmpty() {
			return pc, domain.Precondition(op, "no saved slide structure to build %s on", contentType)
		}
		pc.Slides = slides.Slides
	}
	return pc, nil
}

func (uc *PipelineUseCase) createAsset(ctx context.Context, project *domain.Project, pc content.PromptContext, now time.Time) (*domain.Asset, error) {
	asset := domain.NewAsset(orderedID(), project.MentorID, project.ID, now)
	asset.OnboardingDoc = pc.OnboardingDoc
	asset.HookAnalysis = pc.HookAnalysis
	if err := uc.assets.CreateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return asset, nil
}

// complete calls the provider according to the generation mode. It never fails:
// a missing or failing provider yields a fallback outcome.
func (uc *PipelineUseCase) complete(ctx context.Context, contentType domain.ContentType, step domain.PipelineStep, prompt content.Prompt) generation {
	var gen generation
	switch {
	case uc.mode == domain.ModeMockForced, uc.generator == nil:
		gen = generation{fallback: true, reason: reasonNoProvider}
		if uc.mode == domain.ModeMockForced {
			gen.reason = reasonMockForced
		}
		uc.logger.Info("generation_fallback", "content_type", contentType, "step", step, "mode", uc.mode, "reason", gen.reason)
	default:
		text, err := uc.generator.Generate(ctx, prompt.System, prompt.User)
		if err == nil && strings.TrimSpace(text) == "" {
			err = domain.NewProviderError(0, "empty response", nil)
		}
		if err != nil {
			perr := domain.ClassifyProviderError(err)
			uc.observer.ObserveProviderError(perr.Kind)
			gen = generation{
				fallback: true,
				reason:   fmt.Sprintf("provider %s: %s", perr.Kind, content.Truncate(perr.Message, maxReasonRunes)),
			}
			uc.logger.Warn("generation_fallback",
				"content_type", contentType,
				"step", step,
				"provider_error_kind", perr.Kind,
				"status_code", perr.StatusCode,
				"reason", gen.reason,
			)
		} else {
			gen = generation{text: text}
		}
	}
	uc.observer.ObserveGeneration(contentType, step, gen.fallback)
	return gen
}

func (uc *PipelineUseCase) persist(ctx context.Context, ws *workspace, now time.Time) error {
	ws.asset.UpdatedAt = now
	if err := uc.assets.SaveAsset(ctx, ws.asset); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	if err := uc.projects.SaveStage(ctx, ws.stage); err != nil {
		return fmt.Errorf("save stage: %w", err)
	}
	return nil
}

func ensureOpen(op string, stage *domain.Stage) error {
	if stage.Status == domain.StageStatusApproved {
		return domain.Precondition(op, "stage %s is approved; reject it through review to reopen", stage.StageType)
	}
	return nil
}

func requireUpstream(op string, err error, msg string) error {
	if domain.IsKind(err, domain.ErrNotFound) {
		return domain.WrapError(domain.ErrPreconditionFailed, op, fmt.Errorf("%s: %w", msg, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func markFallback(state *domain.ContentState, gen generation) {
	state.MockFallback = gen.fallback
	state.MockReason = gen.reason
}

func result(ws *workspace, contentType domain.ContentType, step domain.PipelineStep, gen generation) *domain.StepResult {
	return &domain.StepResult{
		MentorID:       ws.mentor.ID,
		AssetID:        ws.asset.ID,
		ContentType:    contentType,
		Step:           step,
		SubStage:       ws.stage.SubStage,
		IterationCount: ws.stage.IterationCount,
		MockFallback:   gen.fallback,
		MockReason:     gen.reason,
	}
}

// orderedID returns a time-ordered UUIDv7 so ids created in the same millisecond still sort by creation.
func orderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
