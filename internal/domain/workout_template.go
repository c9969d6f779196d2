package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplate is an admin-authored, public plan users can copy from.
// It shares the plan exercise shape and status lifecycle.
type WorkoutTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []PlanExercise     `bson:"exercises" json:"exercises"`
	Difficulty  Difficulty         `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	IsPublic    bool               `bson:"isPublic" json:"isPublic"`
	Status      PlanStatus         `bson:"status" json:"status"`
	CreatedBy   string             `bson:"createdBy" json:"createdBy"` // UID of the creating admin
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
