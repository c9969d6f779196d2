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

const workoutPlanCollectionName = "workout-plans"

// mongoWorkoutPlanRepository implements repository.WorkoutPlanRepository
type mongoWorkoutPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutPlanRepository creates a new WorkoutPlan repository backed by MongoDB.
func NewMongoWorkoutPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoWorkoutPlanRepository{
		collection: db.Collection(workoutPlanCollectionName),
	}
}

// Create inserts a new plan. The partial unique index on
// {userId, titleLower} for active plans backs the duplicate-title check;
// a concurrent create that slips past the service-level check surfaces
// here as ErrDuplicateKey.
func (r *mongoWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if plan.UserID == "" || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan user ID and title are required")
	}

	plan.ID = primitive.NewObjectID()
	plan.TitleLower = domain.NormalizeTitle(plan.Title)
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Status == "" {
		plan.Status = domain.PlanStatusActive
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a plan by its ID, regardless of status.
func (r *mongoWorkoutPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ListByUser returns the user's plans with any of the given statuses,
// newest first. With no statuses given it defaults to active plans.
func (r *mongoWorkoutPlanRepository) ListByUser(ctx context.Context, userID string, statuses ...domain.PlanStatus) ([]domain.WorkoutPlan, error) {
	if len(statuses) == 0 {
		statuses = []domain.PlanStatus{domain.PlanStatusActive}
	}

	var plans []domain.WorkoutPlan
	filter := bson.M{
		"userId": userID,
		"status": bson.M{"$in": statuses},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// ActiveTitleExists reports whether another active plan of the user carries
// the same normalized title.
func (r *mongoWorkoutPlanRepository) ActiveTitleExists(ctx context.Context, userID, titleLower string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"userId":     userID,
		"titleLower": titleLower,
		"status":     domain.PlanStatusActive,
	}
	if exclude != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies the given fields. When the title changes the normalized
// form is kept in sync. The owner is never changed here.
func (r *mongoWorkoutPlanRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	delete(fields, "userId")
	if title, ok := fields["title"].(string); ok {
		fields["titleLower"] = domain.NormalizeTitle(title)
	}
	fields["updatedAt"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetStatus transitions the plan lifecycle. The userId in the filter keeps
// one user from touching another's plan.
func (r *mongoWorkoutPlanRepository) SetStatus(ctx context.Context, id primitive.ObjectID, userID string, status domain.PlanStatus) error {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutPlanIndexes creates necessary indexes for the workout-plans
// collection. The partial unique index enforces the one-active-plan-per-title
// invariant at the store level.
func EnsureWorkoutPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "titleLower", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_active_plan_title").
				SetPartialFilterExpression(bson.M{"status": domain.PlanStatusActive}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
