package inproc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func TestQueueDeliversPublishedJobs(t *testing.T) {
	q := New(Options{Buffer: 4, Workers: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.PublishJob(ctx, id); err != nil {
			t.Fatalf("PublishJob(%s) error = %v", id, err)
		}
	}

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		done = make(chan struct{})
	)
	go func() {
		_ = q.SubscribeJobs(ctx, func(_ context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			seen[id] = true
			if len(seen) == 3 {
				close(done)
			}
			if id == "b" {
				return errors.New("handler failure is logged, not fatal")
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for jobs, seen %v", seen)
	}
}

func TestPublishFullBufferIsTemporary(t *testing.T) {
	q := New(Options{Buffer: 1})
	ctx := context.Background()
	if err := q.PublishJob(ctx, "first"); err != nil {
		t.Fatalf("PublishJob() error = %v", err)
	}
	if err := q.PublishJob(ctx, "second"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if err := q.PublishJob(ctx, " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSubscribeReturnsOnCancel(t *testing.T) {
	q := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- q.SubscribeJobs(ctx, func(context.Context, string) error { return nil })
	}()
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("SubscribeJobs() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("SubscribeJobs did not return after cancel")
	}
}
