package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const goalResourceType = "goals"

// GoalInput is the payload for creating a goal.
type GoalInput struct {
	Title        string
	Type         domain.GoalType
	TargetValue  float64
	CurrentValue float64
	StartDate    time.Time
	TargetDate   time.Time
}

// GoalService is the mutation gateway for goals. Goals are the one entity
// with a hard delete; there is no history worth keeping for them.
type GoalService interface {
	CreateGoal(ctx context.Context, userID string, input GoalInput) (*domain.Goal, error)
	GetGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	UpdateProgress(ctx context.Context, userID string, goalID primitive.ObjectID, currentValue float64) (*domain.Goal, error)
	AbandonGoal(ctx context.Context, userID string, goalID primitive.ObjectID) error
	DeleteGoal(ctx context.Context, userID string, goalID primitive.ObjectID) error
}

// goalService implements the GoalService interface.
type goalService struct {
	goalRepo repository.GoalRepository
	activity ActivityService
	goals    *cache.Store[domain.Goal]
}

// NewGoalService creates a new instance of goalService.
func NewGoalService(goalRepo repository.GoalRepository, activity ActivityService, goals *cache.Store[domain.Goal]) GoalService {
	return &goalService{
		goalRepo: goalRepo,
		activity: activity,
		goals:    goals,
	}
}

// GoalCacheKey is the cache descriptor for one user's goals.
func GoalCacheKey(userID string) cache.Key {
	return cache.NewKey(goalResourceType, "user", userID)
}

// CreateGoal validates and stores a new goal.
func (s *goalService) CreateGoal(ctx context.Context, userID string, input GoalInput) (*domain.Goal, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: goal title is required", ErrValidationFailed)
	}
	if input.TargetDate.IsZero() {
		return nil, fmt.Errorf("%w: goal target date is required", ErrValidationFailed)
	}

	goal := &domain.Goal{
		UserID:       userID,
		Title:        title,
		Type:         input.Type,
		TargetValue:  input.TargetValue,
		CurrentValue: input.CurrentValue,
		StartDate:    input.StartDate,
		TargetDate:   input.TargetDate,
		Status:       domain.GoalStatusActive,
	}
	if _, err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.goals.Mutate(GoalCacheKey(userID), func(current []domain.Goal) []domain.Goal {
		return append(current, *goal)
	})

	s.activity.Record(userID, domain.ActionCreate, goalResourceType, goal.ID.Hex(), map[string]any{
		"title": goal.Title,
		"type":  goal.Type,
	})
	return goal, nil
}

// GetGoals returns the user's goals through the cache.
func (s *goalService) GetGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.goals.Fetch(ctx, GoalCacheKey(userID), func(ctx context.Context) ([]domain.Goal, error) {
		return s.goalRepo.ListByUser(ctx, userID)
	})
}

// UpdateProgress moves the goal's current value. Reaching the target
// completes the goal: status and completedAt flip together.
func (s *goalService) UpdateProgress(ctx context.Context, userID string, goalID primitive.ObjectID, currentValue float64) (*domain.Goal, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrNotFound
	}

	fields := bson.M{"currentValue": currentValue}
	completed := goal.Status == domain.GoalStatusActive && currentValue >= goal.TargetValue
	if completed {
		fields["status"] = domain.GoalStatusCompleted
		fields["completedAt"] = time.Now().UTC()
	}

	if err := s.goalRepo.Update(ctx, goalID, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.goals.Invalidate(GoalCacheKey(userID))
	if completed {
		s.activity.Record(userID, domain.ActionComplete, goalResourceType, goalID.Hex(), map[string]any{
			"title": goal.Title,
		})
	} else {
		s.activity.Record(userID, domain.ActionUpdate, goalResourceType, goalID.Hex(), nil)
	}

	return s.goalRepo.GetByID(ctx, goalID)
}

// AbandonGoal marks a goal abandoned without deleting it.
func (s *goalService) AbandonGoal(ctx context.Context, userID string, goalID primitive.ObjectID) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	fields := bson.M{"status": domain.GoalStatusAbandoned}
	if err := s.goalRepo.Update(ctx, goalID, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.goals.Invalidate(GoalCacheKey(userID))
	s.activity.Record(userID, domain.ActionUpdate, goalResourceType, goalID.Hex(), map[string]any{
		"status": domain.GoalStatusAbandoned,
	})
	return nil
}

// DeleteGoal hard-deletes a goal and removes it from the cache directly.
func (s *goalService) DeleteGoal(ctx context.Context, userID string, goalID primitive.ObjectID) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := s.goalRepo.Delete(ctx, goalID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.goals.Mutate(GoalCacheKey(userID), func(current []domain.Goal) []domain.Goal {
		remaining := make([]domain.Goal, 0, len(current))
		for _, g := range current {
			if g.ID != goalID {
				remaining = append(remaining, g)
			}
		}
		return remaining
	})

	s.activity.Record(userID, domain.ActionDelete, goalResourceType, goalID.Hex(), nil)
	return nil
}
