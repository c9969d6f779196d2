package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalStatus type for the goal lifecycle.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// GoalType distinguishes what a goal measures.
type GoalType string

const (
	GoalTypeWeight    GoalType = "weight"     // Target body weight
	GoalTypeStrength  GoalType = "strength"   // Target lift weight
	GoalTypeFrequency GoalType = "frequency"  // Workouts per week
	GoalTypeBodyFat   GoalType = "body_fat"   // Target body fat percentage
	GoalTypeEndurance GoalType = "endurance"  // Duration or distance targets
)

// Goal is a user-set target with a deadline. Goals are hard-deleted.
type Goal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"userId"`
	Title        string             `bson:"title" json:"title"`
	Type         GoalType           `bson:"type" json:"type"`
	TargetValue  float64            `bson:"targetValue" json:"targetValue"`
	CurrentValue float64            `bson:"currentValue" json:"currentValue"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"`
	TargetDate   time.Time          `bson:"targetDate" json:"targetDate"`
	Status       GoalStatus         `bson:"status" json:"status"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
