package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// CreateProject writes the project and its stages in one transaction.
func (s *Store) CreateProject(ctx context.Context, project *domain.Project, stages []domain.Stage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin project tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	doc, err := encode("create project", project)
	if err != nil {
		return err
	}
	if err := execDoc(ctx, tx, "create project", false, `
INSERT INTO projects (id, mentor_id, doc, created_at) VALUES ($1,$2,$3,$4)
`, project.ID, project.MentorID, doc, project.CreatedAt); err != nil {
		return err
	}
	for i := range stages {
		stageDoc, err := encode("create stage", &stages[i])
		if err != nil {
			return err
		}
		if err := execDoc(ctx, tx, "create stage", false, `
INSERT INTO stages (id, project_id, stage_type, doc, updated_at) VALUES ($1,$2,$3,$4,$5)
`, stages[i].ID, project.ID, string(stages[i].StageType), stageDoc, stages[i].UpdatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit project tx: %w", err)
	}
	return nil
}

func (s *Store) GetProjectByMentor(ctx context.Context, mentorID string) (*domain.Project, error) {
	return queryDoc[domain.Project](ctx, s.db, "get project", `SELECT doc FROM projects WHERE mentor_id = $1`, mentorID)
}

func (s *Store) GetStage(ctx context.Context, projectID string, stageType domain.StageType) (*domain.Stage, error) {
	return queryDoc[domain.Stage](ctx, s.db, "get stage", `
SELECT doc FROM stages WHERE project_id = $1 AND stage_type = $2
`, projectID, string(stageType))
}

func (s *Store) SaveStage(ctx context.Context, stage *domain.Stage) error {
	doc, err := encode("save stage", stage)
	if err != nil {
		return err
	}
	return execDoc(ctx, s.db, "save stage", true, `
UPDATE stages SET doc = $2, updated_at = $3 WHERE id = $1
`, stage.ID, doc, stage.UpdatedAt)
}

func (s *Store) GetInputs(ctx context.Context, mentorID string) (*domain.InputArtifact, error) {
	return queryDoc[domain.InputArtifact](ctx, s.db, "get inputs", `SELECT doc FROM inputs WHERE mentor_id = $1`, mentorID)
}

func (s *Store) SaveInputs(ctx context.Context, inputs *domain.InputArtifact) error {
	doc, err := encode("save inputs", inputs)
	if err != nil {
		return err
	}
	updatedAt := inputs.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return execDoc(ctx, s.db, "save inputs", false, `
INSERT INTO inputs (mentor_id, doc, updated_at) VALUES ($1,$2,$3)
ON CONFLICT (mentor_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
`, inputs.MentorID, doc, updatedAt)
}
