package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"
	"fittrack/fitness-tracker/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exerciseResourceType = "exercises"

// ExerciseInput is the payload for creating or updating a library exercise.
type ExerciseInput struct {
	Name         string
	Category     string
	MuscleGroups []domain.MuscleGroup
	Equipment    []domain.Equipment
	Difficulty   domain.Difficulty
	Description  string
	Instructions string
	IsPublic     bool
}

// ExerciseService is the exercise-library mutation gateway. Writes are
// admin-initiated; the user-facing library is the cached public list.
// Deletion is a soft delete: list reads never show deleted exercises,
// direct lookups still resolve them.
type ExerciseService interface {
	CreateExercise(ctx context.Context, adminUID string, input ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetLibrary(ctx context.Context) ([]domain.Exercise, error)
	GetAllExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, adminUID string, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, adminUID string, exerciseID primitive.ObjectID) error
	RequestMediaUpload(ctx context.Context, adminUID string, exerciseID primitive.ObjectID, contentType string) (string, error)
	MediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	activity     ActivityService
	media        storage.FileStorage
	library      *cache.Store[domain.Exercise]
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, activity ActivityService, media storage.FileStorage, library *cache.Store[domain.Exercise]) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		activity:     activity,
		media:        media,
		library:      library,
	}
}

// LibraryCacheKey is the cache descriptor for the public exercise library.
func LibraryCacheKey() cache.Key {
	return cache.NewKey(exerciseResourceType, "public")
}

// CreateExercise adds an exercise to the library and inserts it into the
// cached public list directly.
func (s *exerciseService) CreateExercise(ctx context.Context, adminUID string, input ExerciseInput) (*domain.Exercise, error) {
	if adminUID == "" {
		return nil, ErrNotAuthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}

	exercise := &domain.Exercise{
		Name:         name,
		Category:     input.Category,
		MuscleGroups: input.MuscleGroups,
		Equipment:    input.Equipment,
		Difficulty:   input.Difficulty,
		Description:  input.Description,
		Instructions: input.Instructions,
		IsPublic:     input.IsPublic,
		CreatedBy:    adminUID,
	}

	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	if exercise.IsPublic {
		s.library.Mutate(LibraryCacheKey(), func(current []domain.Exercise) []domain.Exercise {
			return append(current, *exercise)
		})
	}

	s.activity.Record(adminUID, domain.ActionCreate, exerciseResourceType, exercise.ID.Hex(), map[string]any{
		"name": exercise.Name,
	})
	return exercise, nil
}

// GetExerciseByID retrieves a single exercise, soft-deleted or not.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetLibrary returns the public, non-deleted library through the cache.
func (s *exerciseService) GetLibrary(ctx context.Context) ([]domain.Exercise, error) {
	return s.library.Fetch(ctx, LibraryCacheKey(), func(ctx context.Context) ([]domain.Exercise, error) {
		return s.exerciseRepo.ListPublic(ctx)
	})
}

// GetAllExercises returns every non-deleted exercise. Admin view.
func (s *exerciseService) GetAllExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.ListAll(ctx)
}

// UpdateExercise replaces the editable fields of an exercise.
func (s *exerciseService) UpdateExercise(ctx context.Context, adminUID string, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if adminUID == "" {
		return nil, ErrNotAuthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}

	fields := StripNilFields(bson.M{
		"name":         name,
		"category":     input.Category,
		"muscleGroups": input.MuscleGroups,
		"equipment":    input.Equipment,
		"difficulty":   input.Difficulty,
		"description":  input.Description,
		"instructions": input.Instructions,
		"isPublic":     input.IsPublic,
	})
	if err := s.exerciseRepo.Update(ctx, exerciseID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.library.Invalidate(LibraryCacheKey())
	s.activity.Record(adminUID, domain.ActionUpdate, exerciseResourceType, exerciseID.Hex(), nil)

	return s.GetExerciseByID(ctx, exerciseID)
}

// DeleteExercise soft-deletes an exercise and removes it from the cached
// library directly.
func (s *exerciseService) DeleteExercise(ctx context.Context, adminUID string, exerciseID primitive.ObjectID) error {
	if adminUID == "" {
		return ErrNotAuthenticated
	}

	if err := s.exerciseRepo.SoftDelete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.library.Mutate(LibraryCacheKey(), func(current []domain.Exercise) []domain.Exercise {
		remaining := make([]domain.Exercise, 0, len(current))
		for _, ex := range current {
			if ex.ID != exerciseID {
				remaining = append(remaining, ex)
			}
		}
		return remaining
	})

	s.activity.Record(adminUID, domain.ActionDelete, exerciseResourceType, exerciseID.Hex(), nil)
	return nil
}

// RequestMediaUpload returns a presigned PUT URL for the exercise's demo
// media and records the object key on the document.
func (s *exerciseService) RequestMediaUpload(ctx context.Context, adminUID string, exerciseID primitive.ObjectID, contentType string) (string, error) {
	if adminUID == "" {
		return "", ErrNotAuthenticated
	}
	if _, err := s.GetExerciseByID(ctx, exerciseID); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("exercises/%s/%s", exerciseID.Hex(), uuid.NewString())
	url, err := s.media.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", err
	}

	if err := s.exerciseRepo.Update(ctx, exerciseID, bson.M{"mediaKey": objectKey}); err != nil {
		return "", fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}
	return url, nil
}

// MediaDownloadURL returns a presigned GET URL for the exercise's demo media.
func (s *exerciseService) MediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	if exercise.MediaKey == "" {
		return "", ErrNotFound
	}
	return s.media.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, storage.DefaultPresignedURLExpiry)
}
