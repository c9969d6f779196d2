package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseSet is one performed set inside a logged session.
type ExerciseSet struct {
	Reps      int      `bson:"reps" json:"reps"`
	WeightKg  *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Completed bool     `bson:"completed" json:"completed"`
	Notes     string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// SessionExercise is one exercise performed during a session. ExerciseID
// links back to the library when the exercise came from it; free-form
// entries carry only a name.
type SessionExercise struct {
	ExerciseID *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`
	Name       string              `bson:"name" json:"name"`
	Sets       []ExerciseSet       `bson:"sets" json:"sets"`
}

// WorkoutSession is a concrete logged workout instance.
// Invariant: CompletedAt set implies EndTime and Duration are set.
// Deletion is a soft delete via DeletedAt.
type WorkoutSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Exercises   []SessionExercise  `bson:"exercises" json:"exercises"`
	StartTime   time.Time          `bson:"startTime" json:"startTime"`
	EndTime     *time.Time         `bson:"endTime,omitempty" json:"endTime,omitempty"`
	DurationMin *int               `bson:"duration,omitempty" json:"duration,omitempty"` // Minutes
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}
