package postgres

import (
	"context"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (s *Store) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	doc, err := encode("create asset", asset)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "create asset", false, `
INSERT INTO assets (id, mentor_id, doc, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)
`, asset.ID, asset.MentorID, doc, asset.CreatedAt, asset.UpdatedAt)
}

func (s *Store) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return queryDoc[domain.Asset](ctx, s.db, "get asset", `SELECT doc FROM assets WHERE id = $1`, id)
}

func (s *Store) LatestAsset(ctx context.Context, mentorID string) (*domain.Asset, error) {
	return queryDoc[domain.Asset](ctx, s.db, "latest asset", `
SELECT doc FROM assets WHERE mentor_id = $1 ORDER BY seq DESC LIMIT 1
`, mentorID)
}

// SaveAsset replaces the whole document; concurrent writers are last-writer-wins.
func (s *Store) SaveAsset(ctx context.Context, asset *domain.Asset) error {
	doc, err := encode("save asset", asset)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "save asset", true, `
UPDATE assets SET doc = $2, updated_at = $3 WHERE id = $1
`, asset.ID, doc, asset.UpdatedAt)
}
