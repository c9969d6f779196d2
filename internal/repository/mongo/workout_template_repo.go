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

const workoutTemplateCollectionName = "workout-templates"

// mongoWorkoutTemplateRepository implements repository.WorkoutTemplateRepository
type mongoWorkoutTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutTemplateRepository creates a new WorkoutTemplate repository backed by MongoDB.
func NewMongoWorkoutTemplateRepository(db *mongo.Database) repository.WorkoutTemplateRepository {
	return &mongoWorkoutTemplateRepository{
		collection: db.Collection(workoutTemplateCollectionName),
	}
}

// Create inserts a new template. Templates are always public.
func (r *mongoWorkoutTemplateRepository) Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if tpl.Title == "" || tpl.CreatedBy == "" {
		return primitive.NilObjectID, errors.New("template title and creator are required")
	}

	tpl.ID = primitive.NewObjectID()
	tpl.IsPublic = true
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if tpl.Status == "" {
		tpl.Status = domain.PlanStatusActive
	}

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a template by its ID.
func (r *mongoWorkoutTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	var tpl domain.WorkoutTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// ListPublic returns all active public templates, newest first.
func (r *mongoWorkoutTemplateRepository) ListPublic(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	var templates []domain.WorkoutTemplate
	filter := bson.M{
		"isPublic": true,
		"status":   domain.PlanStatusActive,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update applies the given fields and stamps updatedAt.
func (r *mongoWorkoutTemplateRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetStatus transitions the template lifecycle.
func (r *mongoWorkoutTemplateRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.PlanStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutTemplateIndexes creates necessary indexes for the
// workout-templates collection.
func EnsureWorkoutTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "isPublic", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
