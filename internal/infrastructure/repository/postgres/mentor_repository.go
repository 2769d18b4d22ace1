package postgres

import (
	"context"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (s *Store) CreateMentor(ctx context.Context, mentor *domain.Mentor) error {
	doc, err := encode("create mentor", mentor)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "create mentor", false, `
INSERT INTO mentors (id, user_id, doc, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
`, mentor.ID, mentor.UserID, doc, mentor.CreatedAt, mentor.UpdatedAt)
}

func (s *Store) GetMentor(ctx context.Context, id string) (*domain.Mentor, error) {
	return queryDoc[domain.Mentor](ctx, s.db, "get mentor", `SELECT doc FROM mentors WHERE id = $1`, id)
}

func (s *Store) GetMentorByUser(ctx context.Context, userID string) (*domain.Mentor, error) {
	return queryDoc[domain.Mentor](ctx, s.db, "get mentor by user", `SELECT doc FROM mentors WHERE user_id = $1`, userID)
}

func (s *Store) ListMentors(ctx context.Context, skip, limit int) ([]domain.Mentor, error) {
	return queryDocs[domain.Mentor](ctx, s.db, "list mentors", `
SELECT doc FROM mentors
ORDER BY created_at DESC
OFFSET $1 LIMIT $2
`, skip, limit)
}

func (s *Store) SaveMentor(ctx context.Context, mentor *domain.Mentor) error {
	doc, err := encode("save mentor", mentor)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "save mentor", true, `
UPDATE mentors SET doc = $2, updated_at = $3 WHERE id = $1
`, mentor.ID, doc, mentor.UpdatedAt)
}

func (s *Store) DeleteMentor(ctx context.Context, id string) error {
	return execDoc(ctx, s.db, "delete mentor", true, `DELETE FROM mentors WHERE id = $1`, id)
}
