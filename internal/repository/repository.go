package repository

import (
	"context"

	"fittrack/fitness-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound         = RepositoryError("not found")
	ErrDuplicateKey     = RepositoryError("duplicate key")
	ErrUpdateFailed     = RepositoryError("update failed")
	ErrDeleteFailed     = RepositoryError("delete failed")
	ErrWatchUnsupported = RepositoryError("live watch not supported")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, uid string, fields bson.M) error
	SetLastLogin(ctx context.Context, uid string) error
	SetRole(ctx context.Context, uid string, role domain.Role) error
	// WatchByUID streams the profile document every time it changes,
	// until ctx is cancelled. Used by the session bootstrap so admin
	// role changes propagate without re-authentication.
	WatchByUID(ctx context.Context, uid string) (<-chan domain.User, error)
}

// ExerciseRepository defines the interface for the exercise library.
// List reads exclude soft-deleted documents; GetByID does not.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	ListPublic(ctx context.Context) ([]domain.Exercise, error)
	ListAll(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutPlanRepository defines the interface for user workout plans.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error)
	ListByUser(ctx context.Context, userID string, statuses ...domain.PlanStatus) ([]domain.WorkoutPlan, error)
	// ActiveTitleExists reports whether the user already has an active plan
	// with the given normalized title, excluding the given document.
	ActiveTitleExists(ctx context.Context, userID, titleLower string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SetStatus(ctx context.Context, id primitive.ObjectID, userID string, status domain.PlanStatus) error
}

// WorkoutTemplateRepository defines the interface for admin templates.
type WorkoutTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	ListPublic(ctx context.Context) ([]domain.WorkoutTemplate, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.PlanStatus) error
}

// WorkoutSessionRepository defines the interface for logged sessions.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WorkoutSession, error)
	Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error
	SoftDelete(ctx context.Context, id primitive.ObjectID, userID string) error
}

// GoalRepository defines the interface for goals. Goals are hard deleted.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Goal, error)
	Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID, userID string) error
}

// ProgressRepository defines the interface for body progress entries.
type ProgressRepository interface {
	Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ProgressEntry, error)
	Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error
	SoftDelete(ctx context.Context, id primitive.ObjectID, userID string) error
}

// ActivityRepository is append-only: no update or delete operations exist.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLog) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]domain.ActivityLog, error)
	ListRecent(ctx context.Context, limit int64) ([]domain.ActivityLog, error)
}
