package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MuscleGroup tags the primary muscles an exercise targets.
type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "chest"
	MuscleBack      MuscleGroup = "back"
	MuscleShoulders MuscleGroup = "shoulders"
	MuscleBiceps    MuscleGroup = "biceps"
	MuscleTriceps   MuscleGroup = "triceps"
	MuscleLegs      MuscleGroup = "legs"
	MuscleGlutes    MuscleGroup = "glutes"
	MuscleCore      MuscleGroup = "core"
	MuscleFullBody  MuscleGroup = "full_body"
	MuscleCardio    MuscleGroup = "cardio"
)

// Equipment tags what an exercise requires.
type Equipment string

const (
	EquipmentNone       Equipment = "none"
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentMachine    Equipment = "machine"
	EquipmentCable      Equipment = "cable"
	EquipmentBands      Equipment = "bands"
	EquipmentBodyweight Equipment = "bodyweight"
)

// Difficulty levels for exercises.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Exercise represents a single exercise definition in the library.
// Exercises visible to regular users have IsPublic set and no DeletedAt
// marker; deletion is a soft delete via DeletedAt.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"` // e.g. "strength", "cardio", "mobility"
	MuscleGroups []MuscleGroup      `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Equipment    []Equipment        `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty   Difficulty         `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Instructions string             `bson:"instructions,omitempty" json:"instructions,omitempty"` // Detailed execution steps
	MediaKey     string             `bson:"mediaKey,omitempty" json:"-"`                          // Object key of the demo video/image in S3
	IsPublic     bool               `bson:"isPublic" json:"isPublic"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"` // UID of the creating admin
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}

// Visible reports whether the exercise should appear in the user-facing library.
func (e *Exercise) Visible() bool {
	return e.IsPublic && e.DeletedAt == nil
}
