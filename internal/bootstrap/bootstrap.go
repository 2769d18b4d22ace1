package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/webinar-pipeline/internal/config"
	"github.com/kirillkom/webinar-pipeline/internal/core/content"
	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
	"github.com/kirillkom/webinar-pipeline/internal/core/usecase"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/extractor/document"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/llm/openai"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/queue/inproc"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/queue/nats"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/repository/mongodb"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/repository/redis"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/resilience"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/webinar-pipeline/internal/observability/metrics"
)

// store is what either persistence backend provides.
type store interface {
	ports.MentorRepository
	ports.ProjectRepository
	ports.InputRepository
	ports.AssetRepository
	ports.ApprovalRepository
	ports.ActivityRepository
	ports.JobRepository
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.JobQueue
	Mentors   ports.MentorService
	Pipeline  ports.ContentPipeline
	Approvals ports.ApprovalWorkflow
	Jobs      *usecase.JobUseCase
	Tone      *content.ToneValidator

	closers []func()
}

// New wires the application from cfg. A nil registerer leaves pipeline metrics unrecorded.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, registerer prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	mode, err := domain.ParseGenerationMode(string(cfg.GenerationMode))
	if err != nil {
		return nil, err
	}

	catalog, err := content.LoadCatalog(cfg.ContentProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("load content profiles: %w", err)
	}
	profile, err := catalog.Get(cfg.ContentProfile)
	if err != nil {
		return nil, fmt.Errorf("select content profile: %w", err)
	}

	var observer ports.PipelineObserver = usecase.NopObserver{}
	var breakerObserver resilience.StateObserver
	if registerer != nil {
		pipelineMetrics := metrics.NewPipelineMetrics(registerer)
		observer = pipelineMetrics
		breakerObserver = pipelineMetrics.ObserveBreakerState
	}

	primary, err := app.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	jobRepo, err := app.openJobRepository(ctx, cfg, primary)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := app.openQueue(cfg, logger, breakerObserver)
	if err != nil {
		return nil, err
	}

	generator := newGenerator(cfg, mode, logger, breakerObserver)
	if generator == nil {
		logger.Info("llm_disabled", "mode", mode, "provider", cfg.LLMProvider)
	} else {
		logger.Info("llm_enabled", "mode", mode, "provider", cfg.LLMProvider)
	}

	mentorUC := usecase.NewMentorUseCase(primary, primary, primary, primary)
	pipelineUC := usecase.NewPipelineUseCase(primary, primary, primary, primary, generator, observer, usecase.PipelineOptions{
		Mode:    mode,
		Profile: profile,
		Logger:  logger,
	})
	approvalUC := usecase.NewApprovalUseCase(primary, primary, primary, primary, observer, logger)
	tracker := usecase.NewJobTracker(jobRepo, observer, logger)
	jobUC := usecase.NewJobUseCase(
		tracker,
		jobRepo,
		queue,
		storage,
		document.NewExtractor(storage),
		mentorUC,
		pipelineUC,
		logger,
	)

	app.Queue = queue
	app.Mentors = mentorUC
	app.Pipeline = pipelineUC
	app.Approvals = approvalUC
	app.Jobs = jobUC
	app.Tone = content.NewToneValidator(profile.Tone)

	ok = true
	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		s, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		a.closers = append(a.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Close(closeCtx)
		})
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return s, nil
	default:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		s := postgres.NewStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return s, nil
	}
}

func (a *App) openJobRepository(ctx context.Context, cfg config.Config, primary store) (ports.JobRepository, error) {
	if cfg.JobStore != config.JobStoreRedis {
		return primary, nil
	}
	rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return redis.NewJobRepository(rdb, time.Duration(cfg.JobTTLHours)*time.Hour), nil
}

func (a *App) openQueue(cfg config.Config, logger *slog.Logger, observer resilience.StateObserver) (ports.JobQueue, error) {
	timeout := time.Duration(cfg.JobTimeoutSeconds) * time.Second
	if cfg.JobQueue != config.JobQueueNATS {
		return inproc.New(inproc.Options{
			Workers:        cfg.InprocJobWorkers,
			HandlerTimeout: timeout,
			Logger:         logger,
		}), nil
	}
	q, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		HandlerTimeout: timeout,
		ResilienceExecutor: resilience.NewExecutor(
			resilience.PublishConfig(),
			resilience.WithLogger(logger),
			resilience.WithStateObserver(observer),
		),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init job queue: %w", err)
	}
	a.closers = append(a.closers, q.Close)
	return q, nil
}

// newGenerator returns nil when generation is mocked or the provider is unconfigured;
// the pipeline then serves fallback content.
func newGenerator(cfg config.Config, mode domain.GenerationMode, logger *slog.Logger, observer resilience.StateObserver) ports.TextGenerator {
	if mode == domain.ModeMockForced || !cfg.LLMConfigured() {
		return nil
	}
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	executor := resilience.NewExecutor(
		resilience.GenerationConfig(cfg.LLMBreakerEnabled, timeout),
		resilience.WithLogger(logger),
		resilience.WithStateObserver(observer),
	)

	switch cfg.LLMProvider {
	case config.LLMProviderOllama:
		return ollama.New(cfg.OllamaURL, cfg.OllamaGenModel,
			ollama.WithTimeout(timeout),
			ollama.WithExecutor(executor),
		)
	default:
		return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel,
			openai.WithTimeout(timeout),
			openai.WithExecutor(executor),
			openai.WithTemperature(cfg.OpenAITemperature),
		)
	}
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
