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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user profile into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.UID == "" || user.Email == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user uid, email, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	user.IsActive = user.Status == domain.UserStatusActive

	result, err := r.collection.InsertOne(ctx, user)
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

// GetByUID retrieves a profile by its auth-assigned identifier.
func (r *mongoUserRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a profile by email.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all non-deleted profiles, newest first.
func (r *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	filter := bson.M{"status": bson.M{"$ne": domain.UserStatusDeleted}}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the given fields to the profile. The uid field itself is
// immutable and must never appear in the update document.
func (r *mongoUserRepository) Update(ctx context.Context, uid string, fields bson.M) error {
	delete(fields, "uid")
	fields["updatedAt"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetLastLogin stamps the last-login time.
func (r *mongoUserRepository) SetLastLogin(ctx context.Context, uid string) error {
	return r.Update(ctx, uid, bson.M{"lastLogin": time.Now().UTC()})
}

// SetRole changes the user's role. Admin-initiated only; the service layer
// enforces that.
func (r *mongoUserRepository) SetRole(ctx context.Context, uid string, role domain.Role) error {
	return r.Update(ctx, uid, bson.M{"role": role})
}

// WatchByUID opens a change stream on the profile document and delivers the
// full document after every update until ctx is cancelled. The channel is
// closed when the stream ends.
func (r *mongoUserRepository) WatchByUID(ctx context.Context, uid string) (<-chan domain.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fullDocument.uid": uid}}},
	}
	streamOptions := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.collection.Watch(ctx, pipeline, streamOptions)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.User)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument domain.User `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("WARN: user watch decode failed: %v", err)
				continue
			}
			select {
			case out <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
