package postgres

import (
	"context"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (s *Store) CreateApproval(ctx context.Context, record *domain.ApprovalRecord) error {
	doc, err := encode("create approval", record)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "create approval", false, `
INSERT INTO approvals (id, asset_id, content_type, doc, submitted_at) VALUES ($1,$2,$3,$4,$5)
`, record.ID, record.AssetID, string(record.ContentType), doc, record.SubmittedAt)
}

func (s *Store) GetApproval(ctx context.Context, id string) (*domain.ApprovalRecord, error) {
	return queryDoc[domain.ApprovalRecord](ctx, s.db, "get approval", `SELECT doc FROM approvals WHERE id = $1`, id)
}

func (s *Store) LatestApproval(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalRecord, error) {
	return queryDoc[domain.ApprovalRecord](ctx, s.db, "latest approval", `
SELECT doc FROM approvals WHERE asset_id = $1 AND content_type = $2 ORDER BY seq DESC LIMIT 1
`, assetID, string(contentType))
}

// ListApprovals returns newest first. An empty content type lists every type.
func (s *Store) ListApprovals(ctx context.Context, assetID string, contentType domain.ContentType) ([]domain.ApprovalRecord, error) {
	if contentType == "" {
		return queryDocs[domain.ApprovalRecord](ctx, s.db, "list approvals", `
SELECT doc FROM approvals WHERE asset_id = $1 ORDER BY seq DESC
`, assetID)
	}
	return queryDocs[domain.ApprovalRecord](ctx, s.db, "list approvals", `
SELECT doc FROM approvals WHERE asset_id = $1 AND content_type = $2 ORDER BY seq DESC
`, assetID, string(contentType))
}

func (s *Store) SaveApproval(ctx context.Context, record *domain.ApprovalRecord) error {
	doc, err := encode("save approval", record)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "save approval", true, `UPDATE approvals SET doc = $2 WHERE id = $1`, record.ID, doc)
}
