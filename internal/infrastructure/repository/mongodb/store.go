package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

const (
	mentorsCollection   = "mentors"
	projectsCollection  = "projects"
	stagesCollection    = "stages"
	inputsCollection    = "inputs"
	assetsCollection    = "assets"
	approvalsCollection = "approvals"
	jobsCollection      = "jobs"
	activityCollection  = "activity_log"
)

// Store implements every repository port on one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, domain.WrapError(domain.ErrTemporary, "mongo ping", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// NewWithDatabase wraps an existing database handle.
func NewWithDatabase(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		mentorsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		projectsCollection: {
			{Keys: bson.D{{Key: "mentor_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		stagesCollection: {
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "stage_type", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		inputsCollection: {
			{Keys: bson.D{{Key: "mentor_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		assetsCollection: {
			{Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		},
		activityCollection: {
			{Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}},
		},
		approvalsCollection: {
			{Keys: bson.D{
				{Key: "asset_id", Value: 1},
				{Key: "content_type", Value: 1},
				{Key: "submitted_at", Value: -1},
				{Key: "iteration_count", Value: -1},
			}},
		},
	}
	for name, models := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, op string, filter any, opts ...*options.FindOneOptions) (*T, error) {
	out := new(T)
	if err := coll.FindOne(ctx, filter, opts...).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(op, "no document for %v", filter)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, op string, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, op string, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.WrapError(domain.ErrPreconditionFailed, op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// replace swaps the whole document by _id and reports NotFound when nothing matched.
func replace(ctx context.Context, coll *mongo.Collection, op, id string, doc any) error {
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound(op, "id %s", id)
	}
	return nil
}
