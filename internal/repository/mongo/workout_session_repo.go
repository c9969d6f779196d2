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

const workoutSessionCollectionName = "workout-sessions"

// mongoWorkoutSessionRepository implements repository.WorkoutSessionRepository
type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutSessionRepository creates a new WorkoutSession repository backed by MongoDB.
func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(workoutSessionCollectionName),
	}
}

// Create inserts a new logged session.
func (r *mongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.UserID == "" || session.Title == "" {
		return primitive.NilObjectID, errors.New("session user ID and title are required")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.StartTime.IsZero() {
		session.StartTime = now
	}
	session.DeletedAt = nil

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a session by its ID. Soft-deleted documents remain
// retrievable here; only list reads filter them out.
func (r *mongoWorkoutSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByUser returns the user's non-deleted sessions, most recent first.
func (r *mongoWorkoutSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutSession, error) {
	var sessions []domain.WorkoutSession
	filter := bson.M{
		"userId":    userID,
		"deletedAt": bson.M{"$exists": false},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update applies the given fields, scoped to the owning user.
func (r *mongoWorkoutSessionRepository) Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error {
	delete(fields, "userId")
	fields["updatedAt"] = time.Now().UTC()

	filter := bson.M{"_id": id, "userId": userID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete marks the session deleted, scoped to the owning user.
func (r *mongoWorkoutSessionRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, userID string) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": id, "userId": userID, "deletedAt": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"deletedAt": now, "updatedAt": now}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutSessionIndexes creates necessary indexes for the
// workout-sessions collection.
func EnsureWorkoutSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
