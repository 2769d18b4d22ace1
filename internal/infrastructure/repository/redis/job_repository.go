package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

const keyPrefix = "webinar:job:"

// JobRepository keeps job progress in Redis with a rolling TTL.
type JobRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, domain.WrapError(domain.ErrTemporary, "redis ping", err)
	}
	return rdb, nil
}

func NewJobRepository(rdb *goredis.Client, ttl time.Duration) *JobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobRepository{rdb: rdb, ttl: ttl}
}

func (r *JobRepository) CreateJob(ctx context.Context, job *domain.ProcessingJob) error {
	raw, err := encodeJob(job)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, jobKey(job.ID), raw, r.ttl).Result()
	if err != nil {
		return wrapRedisError("create job", err)
	}
	if !ok {
		return domain.Precondition("create job", "job %s already exists", job.ID)
	}
	return nil
}

func (r *JobRepository) GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	raw, err := r.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.NotFound("get job", "job %s", id)
		}
		return nil, wrapRedisError("get job", err)
	}
	return decodeJob(raw)
}

// SaveJob only overwrites an existing key, so an expired job is reported as missing.
func (r *JobRepository) SaveJob(ctx context.Context, job *domain.ProcessingJob) error {
	raw, err := encodeJob(job)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetXX(ctx, jobKey(job.ID), raw, r.ttl).Result()
	if err != nil {
		return wrapRedisError("save job", err)
	}
	if !ok {
		return domain.NotFound("save job", "job %s", job.ID)
	}
	return nil
}

func jobKey(id string) string {
	return keyPrefix + id
}

func encodeJob(job *domain.ProcessingJob) ([]byte, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	return raw, nil
}

func decodeJob(raw []byte) (*domain.ProcessingJob, error) {
	var job domain.ProcessingJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

func wrapRedisError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return domain.WrapError(domain.ErrTemporary, op, err)
}
