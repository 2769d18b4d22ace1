package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/webinar-pipeline/internal/adapters/http"
	"github.com/kirillkom/webinar-pipeline/internal/bootstrap"
	"github.com/kirillkom/webinar-pipeline/internal/config"
	"github.com/kirillkom/webinar-pipeline/internal/observability/logging"
	"github.com/kirillkom/webinar-pipeline/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, serviceName, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, logger, httpMetrics.Registerer())
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	var workers sync.WaitGroup
	if cfg.JobQueue == config.JobQueueInproc {
		workers.Add(1)
		go func() {
			defer workers.Done()
			logger.Info("inproc_workers_started", "workers", cfg.InprocJobWorkers)
			if err := app.Queue.SubscribeJobs(ctx, app.Jobs.Execute); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inproc_workers_stopped", "error", err)
			}
		}()
	}

	router := httpadapter.NewRouter(cfg, app.Mentors, app.Pipeline, app.Approvals, app.Jobs, app.Tone, httpMetrics).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Synchronous pipeline steps wait on the LLM.
		WriteTimeout: time.Duration(cfg.LLMTimeoutSeconds+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", server.Addr, "mode", cfg.GenerationMode, "store", cfg.StoreBackend, "queue", cfg.JobQueue)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
	workers.Wait()
}
