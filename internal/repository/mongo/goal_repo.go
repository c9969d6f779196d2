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

const goalCollectionName = "goals"

// mongoGoalRepository implements repository.GoalRepository
type mongoGoalRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalRepository creates a new Goal repository backed by MongoDB.
func NewMongoGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &mongoGoalRepository{
		collection: db.Collection(goalCollectionName),
	}
}

// Create inserts a new goal.
func (r *mongoGoalRepository) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	if goal.UserID == "" || goal.Title == "" {
		return primitive.NilObjectID, errors.New("goal user ID and title are required")
	}

	goal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	if goal.StartDate.IsZero() {
		goal.StartDate = now
	}
	if goal.Status == "" {
		goal.Status = domain.GoalStatusActive
	}

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a goal by its ID.
func (r *mongoGoalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	var goal domain.Goal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// ListByUser returns the user's goals, nearest target date first.
func (r *mongoGoalRepository) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	var goals []domain.Goal
	findOptions := options.Find().SetSort(bson.D{{Key: "targetDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// Update applies the given fields, scoped to the owning user.
func (r *mongoGoalRepository) Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error {
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

// Delete physically removes a goal. Goals carry no history worth keeping,
// so this is the one entity with a hard delete.
func (r *mongoGoalRepository) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureGoalIndexes creates necessary indexes for the goals collection.
func EnsureGoalIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "targetDate", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
