package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus type for the plan lifecycle.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
	PlanStatusDeleted  PlanStatus = "deleted"
)

// PlanExercise is one prescribed exercise inside a plan or template.
type PlanExercise struct {
	Name        string   `bson:"name" json:"name"`
	Sets        int      `bson:"sets" json:"sets"`
	Reps        int      `bson:"reps" json:"reps"`
	WeightKg    *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	RestSeconds *int     `bson:"rest,omitempty" json:"rest,omitempty"`
	Notes       string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutPlan is a user-authored plan. A user may not have two active
// plans with the same title, compared case-insensitively after trimming;
// TitleLower holds the normalized form backing the unique index.
// Deletion and archiving are status transitions, never physical removal.
type WorkoutPlan struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// TempID marks an optimistic cache entry awaiting store confirmation.
	// Never persisted; empty on every confirmed document.
	TempID      string             `bson:"-" json:"-"`
	UserID      string             `bson:"userId" json:"userId"` // UID of the owning user
	Title       string             `bson:"title" json:"title"`
	TitleLower  string             `bson:"titleLower" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []PlanExercise     `bson:"exercises" json:"exercises"`
	Status      PlanStatus         `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeTitle trims and lowercases a plan title for duplicate comparison.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
