package inproc

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// Queue is a buffered in-process job queue for single-binary deployments.
// Jobs published before SubscribeJobs starts wait in the buffer.
type Queue struct {
	jobs           chan string
	workers        int
	handlerTimeout time.Duration
	logger         *slog.Logger
}

type Options struct {
	Buffer         int
	Workers        int
	HandlerTimeout time.Duration
	Logger         *slog.Logger
}

func New(options Options) *Queue {
	buffer := options.Buffer
	if buffer <= 0 {
		buffer = 64
	}
	workers := options.Workers
	if workers <= 0 {
		workers = 2
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobs:           make(chan string, buffer),
		workers:        workers,
		handlerTimeout: options.HandlerTimeout,
		logger:         logger,
	}
}

// PublishJob enqueues without blocking. A full buffer is a temporary error.
func (q *Queue) PublishJob(ctx context.Context, jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return domain.Invalid("inproc publish", "job id is required")
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrTemporary, "inproc publish", err)
	}
	select {
	case q.jobs <- jobID:
		return nil
	default:
		return domain.Temporary("inproc publish", "job queue is full")
	}
}

// SubscribeJobs runs the worker pool until ctx is done and in-flight jobs return.
func (q *Queue) SubscribeJobs(ctx context.Context, handler func(context.Context, string) error) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case jobID := <-q.jobs:
					q.handle(ctx, worker, jobID, handler)
				}
			}
		}(i)
	}
	wg.Wait()
	return nil
}

func (q *Queue) handle(ctx context.Context, worker int, jobID string, handler func(context.Context, string) error) {
	handlerCtx, cancel := q.handlerContext(ctx)
	defer cancel()

	started := time.Now()
	if err := handler(handlerCtx, jobID); err != nil {
		q.logger.Error("job_handler_failed", "job_id", jobID, "worker", worker, "error", err, "duration_ms", time.Since(started).Milliseconds())
		return
	}
	q.logger.Info("job_handled", "job_id", jobID, "worker", worker, "duration_ms", time.Since(started).Milliseconds())
}

func (q *Queue) handlerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.handlerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.handlerTimeout)
}
