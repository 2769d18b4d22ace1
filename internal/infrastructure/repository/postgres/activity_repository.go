package postgres

import (
	"context"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (s *Store) RecordActivity(ctx context.Context, entry *domain.ActivityEntry) error {
	doc, err := encode("record activity", entry)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "record activity", false, `
INSERT INTO activity_log (id, mentor_id, doc, created_at) VALUES ($1,$2,$3,$4)
`, entry.ID, entry.MentorID, doc, entry.Timestamp)
}

// ListActivity returns the newest entries first.
func (s *Store) ListActivity(ctx context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error) {
	return queryDocs[domain.ActivityEntry](ctx, s.db, "list activity", `
SELECT doc FROM activity_log
WHERE mentor_id = $1
ORDER BY seq DESC
LIMIT $2
`, mentorID, limit)
}
