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

const progressCollectionName = "progress-entries"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new Progress repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress entry.
func (r *mongoProgressRepository) Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error) {
	if entry.UserID == "" {
		return primitive.NilObjectID, errors.New("progress entry user ID is required")
	}

	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Date.IsZero() {
		entry.Date = now
	}
	entry.DeletedAt = nil

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves an entry by its ID. Soft-deleted documents remain
// retrievable here; only list reads filter them out.
func (r *mongoProgressRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error) {
	var entry domain.ProgressEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByUser returns the user's non-deleted entries, newest date first.
func (r *mongoProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	var entries []domain.ProgressEntry
	filter := bson.M{
		"userId":    userID,
		"deletedAt": bson.M{"$exists": false},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

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

// Update applies the given fields, scoped to the owning user.
func (r *mongoProgressRepository) Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error {
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

// SoftDelete marks the entry deleted, scoped to the owning user.
func (r *mongoProgressRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, userID string) error {
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

// EnsureProgressIndexes creates necessary indexes for the progress-entries collection.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
