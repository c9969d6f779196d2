package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Measurements holds optional body measurements, all in centimeters.
type Measurements struct {
	Chest  *float64 `bson:"chest,omitempty" json:"chest,omitempty"`
	Waist  *float64 `bson:"waist,omitempty" json:"waist,omitempty"`
	Hips   *float64 `bson:"hips,omitempty" json:"hips,omitempty"`
	Biceps *float64 `bson:"biceps,omitempty" json:"biceps,omitempty"`
	Thighs *float64 `bson:"thighs,omitempty" json:"thighs,omitempty"`
}

// ProgressEntry is a point-in-time record of body metrics.
// Deletion is a soft delete via DeletedAt.
type ProgressEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"userId"`
	Date         time.Time          `bson:"date" json:"date"`
	WeightKg     *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	BodyFatPct   *float64           `bson:"bodyFat,omitempty" json:"bodyFat,omitempty"`
	Measurements *Measurements      `bson:"measurements,omitempty" json:"measurements,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}
