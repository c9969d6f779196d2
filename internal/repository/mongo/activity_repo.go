package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollectionName = "activity-logs"

// mongoActivityRepository implements repository.ActivityRepository.
// The collection is append-only; there are deliberately no update or
// delete methods.
type mongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new Activity repository backed by MongoDB.
func NewMongoActivityRepository(db *mongo.Database) repository.ActivityRepository {
	return &mongoActivityRepository{
		collection: db.Collection(activityCollectionName),
	}
}

// Append writes one audit record with a server-side timestamp.
func (r *mongoActivityRepository) Append(ctx context.Context, entry *domain.ActivityLog) error {
	if entry.UserID == "" || entry.Action == "" || entry.ResourceType == "" {
		return errors.New("activity user ID, action, and resource type are required")
	}

	entry.ID = primitive.NewObjectID()
	entry.Timestamp = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// ListByUser returns the user's most recent activity, newest first.
func (r *mongoActivityRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]domain.ActivityLog, error) {
	return r.list(ctx, bson.M{"userId": userID}, limit)
}

// ListRecent returns the most recent activity across all users. Admin use.
func (r *mongoActivityRepository) ListRecent(ctx context.Context, limit int64) ([]domain.ActivityLog, error) {
	return r.list(ctx, bson.M{}, limit)
}

func (r *mongoActivityRepository) list(ctx context.Context, filter bson.M, limit int64) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []domain.ActivityLog
	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureActivityIndexes creates necessary indexes for the activity-logs collection.
func EnsureActivityIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
