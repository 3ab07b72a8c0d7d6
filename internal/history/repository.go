package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventexport/internal/constants"
	"eventexport/pkg/metrics"
)

const MaxListLimit = 100

type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, workspaceID string, limit int) ([]Record, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection(constants.ExportHistoryCollection),
	}
}

func (r *mongoRepository) Insert(ctx context.Context, rec *Record) error {
	start := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, rec)
	observe("insert_export_history", err, start)
	if err != nil {
		return fmt.Errorf("failed to insert export history: %w", err)
	}
	return nil
}

// ListRecent returns a workspace's newest exports first. limit is clamped to
// [1, MaxListLimit].
func (r *mongoRepository) ListRecent(ctx context.Context, workspaceID string, limit int) ([]Record, error) {
	start := time.Now()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(ClampLimit(limit)))

	cursor, err := r.collection.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		observe("list_export_history", err, start)
		return nil, fmt.Errorf("failed to list export history: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		observe("list_export_history", err, start)
		return nil, fmt.Errorf("failed to decode export history: %w", err)
	}

	observe("list_export_history", nil, start)
	return records, nil
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func observe(operation string, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncDatabaseQuery("mongodb", operation, status)
	metrics.ObserveDatabaseQueryDuration("mongodb", operation, time.Since(start))
}
