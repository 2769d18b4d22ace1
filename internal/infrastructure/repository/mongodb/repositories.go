package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// BSON dates stop at milliseconds. Ties fall back to the iteration count and to the
// time-ordered ids the use cases assign.
var (
	latestAssetSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	approvalSort    = bson.D{{Key: "submitted_at", Value: -1}, {Key: "iteration_count", Value: -1}, {Key: "_id", Value: -1}}
)

func (s *Store) CreateMentor(ctx context.Context, mentor *domain.Mentor) error {
	return insert(ctx, s.db.Collection(mentorsCollection), "create mentor", mentor)
}

func (s *Store) GetMentor(ctx context.Context, id string) (*domain.Mentor, error) {
	return findOne[domain.Mentor](ctx, s.db.Collection(mentorsCollection), "get mentor", bson.M{"_id": id})
}

func (s *Store) GetMentorByUser(ctx context.Context, userID string) (*domain.Mentor, error) {
	return findOne[domain.Mentor](ctx, s.db.Collection(mentorsCollection), "get mentor by user", bson.M{"user_id": userID})
}

func (s *Store) ListMentors(ctx context.Context, skip, limit int) ([]domain.Mentor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return findMany[domain.Mentor](ctx, s.db.Collection(mentorsCollection), "list mentors", bson.M{}, opts)
}

func (s *Store) SaveMentor(ctx context.Context, mentor *domain.Mentor) error {
	return replace(ctx, s.db.Collection(mentorsCollection), "save mentor", mentor.ID, mentor)
}

func (s *Store) DeleteMentor(ctx context.Context, id string) error {
	result, err := s.db.Collection(mentorsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete mentor: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.NotFound("delete mentor", "id %s", id)
	}
	return nil
}

// CreateProject inserts the project and then its stages. Without a replica set there is no
// transaction, so a failed stage insert leaves the project for the next upload to reuse.
func (s *Store) CreateProject(ctx context.Context, project *domain.Project, stages []domain.Stage) error {
	if err := insert(ctx, s.db.Collection(projectsCollection), "create project", project); err != nil {
		return err
	}
	if len(stages) == 0 {
		return nil
	}
	docs := make([]any, 0, len(stages))
	for i := range stages {
		docs = append(docs, stages[i])
	}
	if _, err := s.db.Collection(stagesCollection).InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.WrapError(domain.ErrPreconditionFailed, "create stages", err)
		}
		return fmt.Errorf("create stages: %w", err)
	}
	return nil
}

func (s *Store) GetProjectByMentor(ctx context.Context, mentorID string) (*domain.Project, error) {
	return findOne[domain.Project](ctx, s.db.Collection(projectsCollection), "get project", bson.M{"mentor_id": mentorID})
}

func (s *Store) GetStage(ctx context.Context, projectID string, stageType domain.StageType) (*domain.Stage, error) {
	return findOne[domain.Stage](ctx, s.db.Collection(stagesCollection), "get stage",
		bson.M{"project_id": projectID, "stage_type": stageType})
}

func (s *Store) SaveStage(ctx context.Context, stage *domain.Stage) error {
	return replace(ctx, s.db.Collection(stagesCollection), "save stage", stage.ID, stage)
}

func (s *Store) GetInputs(ctx context.Context, mentorID string) (*domain.InputArtifact, error) {
	return findOne[domain.InputArtifact](ctx, s.db.Collection(inputsCollection), "get inputs", bson.M{"mentor_id": mentorID})
}

func (s *Store) SaveInputs(ctx context.Context, inputs *domain.InputArtifact) error {
	_, err := s.db.Collection(inputsCollection).ReplaceOne(ctx,
		bson.M{"mentor_id": inputs.MentorID}, inputs, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save inputs: %w", err)
	}
	return nil
}

func (s *Store) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	return insert(ctx, s.db.Collection(assetsCollection), "create asset", asset)
}

func (s *Store) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return findOne[domain.Asset](ctx, s.db.Collection(assetsCollection), "get asset", bson.M{"_id": id})
}

func (s *Store) LatestAsset(ctx context.Context, mentorID string) (*domain.Asset, error) {
	opts := options.FindOne().SetSort(latestAssetSort)
	return findOne[domain.Asset](ctx, s.db.Collection(assetsCollection), "latest asset", bson.M{"mentor_id": mentorID}, opts)
}

func (s *Store) SaveAsset(ctx context.Context, asset *domain.Asset) error {
	return replace(ctx, s.db.Collection(assetsCollection), "save asset", asset.ID, asset)
}

func (s *Store) CreateApproval(ctx context.Context, record *domain.ApprovalRecord) error {
	return insert(ctx, s.db.Collection(approvalsCollection), "create approval", record)
}

func (s *Store) GetApproval(ctx context.Context, id string) (*domain.ApprovalRecord, error) {
	return findOne[domain.ApprovalRecord](ctx, s.db.Collection(approvalsCollection), "get approval", bson.M{"_id": id})
}

func (s *Store) LatestApproval(ctx context.Context, assetID string, contentType domain.ContentType) (*domain.ApprovalRecord, error) {
	opts := options.FindOne().SetSort(approvalSort)
	return findOne[domain.ApprovalRecord](ctx, s.db.Collection(approvalsCollection), "latest approval",
		approvalFilter(assetID, contentType), opts)
}

func (s *Store) ListApprovals(ctx context.Context, assetID string, contentType domain.ContentType) ([]domain.ApprovalRecord, error) {
	opts := options.Find().SetSort(approvalSort)
	return findMany[domain.ApprovalRecord](ctx, s.db.Collection(approvalsCollection), "list approvals",
		approvalFilter(assetID, contentType), opts)
}

func (s *Store) SaveApproval(ctx context.Context, record *domain.ApprovalRecord) error {
	return replace(ctx, s.db.Collection(approvalsCollection), "save approval", record.ID, record)
}

func (s *Store) CreateJob(ctx context.Context, job *domain.ProcessingJob) error {
	return insert(ctx, s.db.Collection(jobsCollection), "create job", job)
}

func (s *Store) GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	return findOne[domain.ProcessingJob](ctx, s.db.Collection(jobsCollection), "get job", bson.M{"_id": id})
}

func (s *Store) SaveJob(ctx context.Context, job *domain.ProcessingJob) error {
	return replace(ctx, s.db.Collection(jobsCollection), "save job", job.ID, job)
}

func (s *Store) RecordActivity(ctx context.Context, entry *domain.ActivityEntry) error {
	return insert(ctx, s.db.Collection(activityCollection), "record activity", entry)
}

func (s *Store) ListActivity(ctx context.Context, mentorID string, limit int) ([]domain.ActivityEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return findMany[domain.ActivityEntry](ctx, s.db.Collection(activityCollection), "list activity", bson.M{"mentor_id": mentorID}, opts)
}

func approvalFilter(assetID string, contentType domain.ContentType) bson.M {
	filter := bson.M{"asset_id": assetID}
	if contentType != "" {
		filter["content_type"] = contentType
	}
	return filter
}
