package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const planResourceType = "workout-plans"

// PlanInput is the payload for creating a workout plan.
type PlanInput struct {
	Title       string
	Description string
	Exercises   []domain.PlanExercise
}

// PlanUpdate carries the fields of a plan update; nil fields are left
// untouched.
type PlanUpdate struct {
	Title       *string
	Description *string
	Exercises   *[]domain.PlanExercise
}

// PlanService is the workout-plan mutation gateway. Creates are applied
// to the plan cache optimistically: the caller's list view shows the new
// plan before the store confirms it, and is rolled back to its exact
// prior state if the write fails.
type PlanService interface {
	CreatePlan(ctx context.Context, userID string, input PlanInput) (*domain.WorkoutPlan, error)
	GetPlans(ctx context.Context, userID string) ([]domain.WorkoutPlan, error)
	GetArchivedPlans(ctx context.Context, userID string) ([]domain.WorkoutPlan, error)
	GetPlanByID(ctx context.Context, userID string, planID primitive.ObjectID) (*domain.WorkoutPlan, error)
	UpdatePlan(ctx context.Context, userID string, planID primitive.ObjectID, update PlanUpdate) (*domain.WorkoutPlan, error)
	ArchivePlan(ctx context.Context, userID string, planID primitive.ObjectID) error
	DeletePlan(ctx context.Context, userID string, planID primitive.ObjectID) error
}

// planService implements the PlanService interface.
type planService struct {
	planRepo repository.WorkoutPlanRepository
	activity ActivityService
	plans    *cache.Store[domain.WorkoutPlan]

	// Per-user create serialization. Two concurrent creates with the same
	// title would otherwise both pass the duplicate check before either
	// write commits; the store's partial unique index is the backstop for
	// other instances of the process.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.WorkoutPlanRepository, activity ActivityService, plans *cache.Store[domain.WorkoutPlan]) PlanService {
	return &planService{
		planRepo: planRepo,
		activity: activity,
		plans:    plans,
		locks:    make(map[string]*sync.Mutex),
	}
}

// PlanCacheKey is the cache descriptor for one user's active plans.
func PlanCacheKey(userID string) cache.Key {
	return cache.NewKey(planResourceType, "user", userID)
}

func (s *planService) userLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	return mu
}

// CreatePlan validates the input, checks the duplicate-title invariant,
// optimistically inserts the plan into the user's cached list, and writes
// it to the store. The optimistic entry is always either replaced by the
// confirmed document (matched by its temporary identifier, not by content)
// or rolled back; it is never left behind.
//
// Validation and duplicate failures happen before any cache mutation.
func (s *planService) CreatePlan(ctx context.Context, userID string, input PlanInput) (*domain.WorkoutPlan, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: plan title is required", ErrValidationFailed)
	}

	exercises := filterBlankExercises(input.Exercises)
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: a plan needs at least one exercise", ErrValidationFailed)
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	exists, err := s.planRepo.ActiveTitleExists(ctx, userID, domain.NormalizeTitle(title), primitive.NilObjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	key := PlanCacheKey(userID)
	txn := s.plans.Begin(key)

	tempID := cache.TempID()
	now := time.Now().UTC()
	optimistic := domain.WorkoutPlan{
		TempID:      tempID,
		UserID:      userID,
		Title:       title,
		TitleLower:  domain.NormalizeTitle(title),
		Description: input.Description,
		Exercises:   exercises,
		Status:      domain.PlanStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	txn.Apply(func(current []domain.WorkoutPlan) []domain.WorkoutPlan {
		return append([]domain.WorkoutPlan{optimistic}, current...)
	})

	plan := &domain.WorkoutPlan{
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		Exercises:   exercises,
		Status:      domain.PlanStatusActive,
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		txn.Rollback()
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	txn.Commit(func(current []domain.WorkoutPlan) []domain.WorkoutPlan {
		confirmed := make([]domain.WorkoutPlan, 0, len(current))
		for _, p := range current {
			if p.TempID == tempID {
				confirmed = append(confirmed, *plan)
				continue
			}
			confirmed = append(confirmed, p)
		}
		return confirmed
	})

	s.activity.Record(userID, domain.ActionCreate, planResourceType, plan.ID.Hex(), map[string]any{
		"title": plan.Title,
	})

	return plan, nil
}

// GetPlans returns the user's active plans through the query cache.
func (s *planService) GetPlans(ctx context.Context, userID string) ([]domain.WorkoutPlan, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.plans.Fetch(ctx, PlanCacheKey(userID), func(ctx context.Context) ([]domain.WorkoutPlan, error) {
		return s.planRepo.ListByUser(ctx, userID, domain.PlanStatusActive)
	})
}

// GetArchivedPlans bypasses the cache; the archive view is rarely visited.
func (s *planService) GetArchivedPlans(ctx context.Context, userID string) ([]domain.WorkoutPlan, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.planRepo.ListByUser(ctx, userID, domain.PlanStatusArchived)
}

// GetPlanByID retrieves one plan, enforcing ownership.
func (s *planService) GetPlanByID(ctx context.Context, userID string, planID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		// Ownership failures read as not-found so plan identifiers leak
		// nothing across users.
		return nil, ErrNotFound
	}
	return plan, nil
}

// UpdatePlan applies a partial update. The duplicate-title check runs only
// when the title is part of the payload, excluding the plan being updated.
// Nil-valued fields are stripped before the write.
func (s *planService) UpdatePlan(ctx context.Context, userID string, planID primitive.ObjectID, update PlanUpdate) (*domain.WorkoutPlan, error) {
	existing, err := s.GetPlanByID(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: plan title cannot be empty", ErrValidationFailed)
		}
		if domain.NormalizeTitle(title) != existing.TitleLower {
			exists, err := s.planRepo.ActiveTitleExists(ctx, userID, domain.NormalizeTitle(title), planID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
			}
			if exists {
				return nil, ErrDuplicateTitle
			}
		}
		fields["title"] = title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Exercises != nil {
		exercises := filterBlankExercises(*update.Exercises)
		if len(exercises) == 0 {
			return nil, fmt.Errorf("%w: a plan needs at least one exercise", ErrValidationFailed)
		}
		fields["exercises"] = exercises
	}
	if len(fields) == 0 {
		return existing, nil
	}

	fields = StripNilFields(fields)
	if err := s.planRepo.Update(ctx, planID, fields); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrDuplicateTitle
		default:
			return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
		}
	}

	updated, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	s.plans.Mutate(PlanCacheKey(userID), func(current []domain.WorkoutPlan) []domain.WorkoutPlan {
		for i, p := range current {
			if p.ID == planID {
				current[i] = *updated
			}
		}
		return current
	})

	s.activity.Record(userID, domain.ActionUpdate, planResourceType, planID.Hex(), nil)
	return updated, nil
}

// ArchivePlan transitions the plan to archived. The plan leaves the active
// list optimistically and returns to it if the write fails.
func (s *planService) ArchivePlan(ctx context.Context, userID string, planID primitive.ObjectID) error {
	return s.transition(ctx, userID, planID, domain.PlanStatusArchived, domain.ActionUpdate)
}

// DeletePlan transitions the plan to deleted. No physical removal: history
// stays available for audit and potential recovery.
func (s *planService) DeletePlan(ctx context.Context, userID string, planID primitive.ObjectID) error {
	return s.transition(ctx, userID, planID, domain.PlanStatusDeleted, domain.ActionDelete)
}

func (s *planService) transition(ctx context.Context, userID string, planID primitive.ObjectID, status domain.PlanStatus, action domain.ActivityAction) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	key := PlanCacheKey(userID)
	txn := s.plans.Begin(key)
	txn.Apply(func(current []domain.WorkoutPlan) []domain.WorkoutPlan {
		remaining := make([]domain.WorkoutPlan, 0, len(current))
		for _, p := range current {
			if p.ID != planID {
				remaining = append(remaining, p)
			}
		}
		return remaining
	})

	if err := s.planRepo.SetStatus(ctx, planID, userID, status); err != nil {
		txn.Rollback()
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}
	txn.Commit(func(current []domain.WorkoutPlan) []domain.WorkoutPlan {
		return current
	})

	s.activity.Record(userID, action, planResourceType, planID.Hex(), map[string]any{
		"status": status,
	})
	return nil
}

// filterBlankExercises drops entries whose name is empty after trimming.
func filterBlankExercises(in []domain.PlanExercise) []domain.PlanExercise {
	out := make([]domain.PlanExercise, 0, len(in))
	for _, ex := range in {
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" {
			continue
		}
		out = append(out, ex)
	}
	return out
}
