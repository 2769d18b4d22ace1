package postgres

import (
	"context"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (s *Store) CreateJob(ctx context.Context, job *domain.ProcessingJob) error {
	doc, err := encode("create job", job)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "create job", false, `
INSERT INTO jobs (id, mentor_id, status, doc, updated_at) VALUES ($1,$2,$3,$4,$5)
`, job.ID, job.MentorID, string(job.Status), doc, job.UpdatedAt)
}

func (s *Store) GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	return queryDoc[domain.ProcessingJob](ctx, s.db, "get job", `SELECT doc FROM jobs WHERE id = $1`, id)
}

func (s *Store) SaveJob(ctx context.Context, job *domain.ProcessingJob) error {
	doc, err := encode("save job", job)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "save job", true, `
UPDATE jobs SET status = $2, doc = $3, updated_at = $4 WHERE id = $1
`, job.ID, string(job.Status), doc, job.UpdatedAt)
}
