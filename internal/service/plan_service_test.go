package service

import (
	"context"
	"errors"
	"testing"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakePlanRepo is an in-memory WorkoutPlanRepository. createErr, when set,
// makes the next Create fail, simulating a store rejection after the
// optimistic cache update.
type fakePlanRepo struct {
	plans     map[primitive.ObjectID]*domain.WorkoutPlan
	createErr error
	listCalls int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.WorkoutPlan)}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	for _, p := range r.plans {
		if p.UserID == plan.UserID && p.Status == domain.PlanStatusActive && p.TitleLower == domain.NormalizeTitle(plan.Title) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	plan.ID = primitive.NewObjectID()
	plan.TitleLower = domain.NormalizeTitle(plan.Title)
	stored := *plan
	r.plans[plan.ID] = &stored
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *fakePlanRepo) ListByUser(ctx context.Context, userID string, statuses ...domain.PlanStatus) ([]domain.WorkoutPlan, error) {
	r.listCalls++
	if len(statuses) == 0 {
		statuses = []domain.PlanStatus{domain.PlanStatusActive}
	}
	var out []domain.WorkoutPlan
	for _, p := range r.plans {
		if p.UserID != userID {
			continue
		}
		for _, st := range statuses {
			if p.Status == st {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (r *fakePlanRepo) ActiveTitleExists(ctx context.Context, userID, titleLower string, exclude primitive.ObjectID) (bool, error) {
	for _, p := range r.plans {
		if p.UserID == userID && p.Status == domain.PlanStatusActive && p.TitleLower == titleLower && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	p, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	if title, ok := fields["title"].(string); ok {
		p.Title = title
		p.TitleLower = domain.NormalizeTitle(title)
	}
	if desc, ok := fields["description"].(string); ok {
		p.Description = desc
	}
	if exs, ok := fields["exercises"].([]domain.PlanExercise); ok {
		p.Exercises = exs
	}
	return nil
}

func (r *fakePlanRepo) SetStatus(ctx context.Context, id primitive.ObjectID, userID string, status domain.PlanStatus) error {
	p, ok := r.plans[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	p.Status = status
	return nil
}

// noopActivity satisfies ActivityService for tests that do not assert on
// the audit trail.
type noopActivity struct{}

func (noopActivity) Record(string, domain.ActivityAction, string, string, map[string]any) {}
func (noopActivity) GetUserActivity(context.Context, string, int64) ([]domain.ActivityLog, error) {
	return nil, nil
}
func (noopActivity) GetRecentActivity(context.Context, int64) ([]domain.ActivityLog, error) {
	return nil, nil
}

func newPlanFixture() (*fakePlanRepo, *cache.Store[domain.WorkoutPlan], PlanService) {
	repo := newFakePlanRepo()
	store := cache.NewStore[domain.WorkoutPlan]()
	svc := NewPlanService(repo, noopActivity{}, store)
	return repo, store, svc
}

func planInput(title string) PlanInput {
	return PlanInput{
		Title: title,
		Exercises: []domain.PlanExercise{
			{Name: "Squat", Sets: 5, Reps: 5},
		},
	}
}

func TestCreatePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an authenticated user", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		_, err := svc.CreatePlan(ctx, "", planInput("Leg Day"))
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("rejects a blank title", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		_, err := svc.CreatePlan(ctx, "u1", planInput("   "))
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("rejects a plan with no usable exercises", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		_, err := svc.CreatePlan(ctx, "u1", PlanInput{
			Title:     "Leg Day",
			Exercises: []domain.PlanExercise{{Name: "  "}},
		})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("confirmed create leaves exactly one entry with a real ID", func(t *testing.T) {
		_, store, svc := newPlanFixture()
		_, err := svc.GetPlans(ctx, "u1") // load the (empty) list view
		require.NoError(t, err)

		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		assert.False(t, plan.ID.IsZero())
		assert.Empty(t, plan.TempID)
		assert.Equal(t, "Leg Day", plan.Title)

		cached, ok := store.Peek(PlanCacheKey("u1"))
		require.True(t, ok)
		require.Len(t, cached, 1)
		assert.Equal(t, plan.ID, cached[0].ID)
		assert.Empty(t, cached[0].TempID, "no temporary entry may survive a confirmed create")
	})

	t.Run("new plan is prepended to an existing cached list", func(t *testing.T) {
		_, store, svc := newPlanFixture()

		first, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		_, err = svc.GetPlans(ctx, "u1") // load the list view
		require.NoError(t, err)
		second, err := svc.CreatePlan(ctx, "u1", planInput("Push Day"))
		require.NoError(t, err)

		cached, _ := store.Peek(PlanCacheKey("u1"))
		require.Len(t, cached, 2)
		assert.Equal(t, second.ID, cached[0].ID)
		assert.Equal(t, first.ID, cached[1].ID)
	})

	t.Run("duplicate title fails fast without touching the cache", func(t *testing.T) {
		_, store, svc := newPlanFixture()

		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		_, err = svc.GetPlans(ctx, "u1")
		require.NoError(t, err)
		before, _ := store.Peek(PlanCacheKey("u1"))

		_, err = svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		assert.ErrorIs(t, err, ErrDuplicateTitle)

		after, _ := store.Peek(PlanCacheKey("u1"))
		assert.Equal(t, before, after, "a rejected duplicate must not disturb the cached list")
	})

	t.Run("titles are compared trimmed and case-insensitively", func(t *testing.T) {
		_, _, svc := newPlanFixture()

		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)

		_, err = svc.CreatePlan(ctx, "u1", planInput("  leg day  "))
		assert.ErrorIs(t, err, ErrDuplicateTitle)
	})

	t.Run("same title is allowed for a different user", func(t *testing.T) {
		_, _, svc := newPlanFixture()

		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		_, err = svc.CreatePlan(ctx, "u2", planInput("Leg Day"))
		assert.NoError(t, err)
	})

	t.Run("archived plan frees its title", func(t *testing.T) {
		_, _, svc := newPlanFixture()

		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		require.NoError(t, svc.ArchivePlan(ctx, "u1", plan.ID))

		_, err = svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		assert.NoError(t, err)
	})

	t.Run("failed write restores the exact prior cache state", func(t *testing.T) {
		repo, store, svc := newPlanFixture()

		existing, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		_, err = svc.GetPlans(ctx, "u1")
		require.NoError(t, err)
		before, _ := store.Peek(PlanCacheKey("u1"))

		repo.createErr = errors.New("connection reset")
		_, err = svc.CreatePlan(ctx, "u1", planInput("Push Day"))
		require.ErrorIs(t, err, ErrRemoteWrite)

		after, ok := store.Peek(PlanCacheKey("u1"))
		require.True(t, ok)
		assert.Equal(t, before, after, "rollback must restore content and order exactly")
		require.Len(t, after, 1)
		assert.Equal(t, existing.ID, after[0].ID)
	})

	t.Run("failed write on a cold cache leaves the key unloaded", func(t *testing.T) {
		repo, store, svc := newPlanFixture()
		repo.createErr = errors.New("connection reset")

		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.ErrorIs(t, err, ErrRemoteWrite)

		_, ok := store.Peek(PlanCacheKey("u1"))
		assert.False(t, ok)
	})

	t.Run("store duplicate rejection surfaces as a duplicate title", func(t *testing.T) {
		repo, store, svc := newPlanFixture()
		repo.createErr = repository.ErrDuplicateKey

		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		assert.ErrorIs(t, err, ErrDuplicateTitle)
		_, ok := store.Peek(PlanCacheKey("u1"))
		assert.False(t, ok)
	})
}

func TestGetPlans(t *testing.T) {
	ctx := context.Background()

	t.Run("serves repeat reads from cache", func(t *testing.T) {
		repo, _, svc := newPlanFixture()
		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)

		// The first read loads, the second must not.
		_, err = svc.GetPlans(ctx, "u1")
		require.NoError(t, err)
		loads := repo.listCalls
		_, err = svc.GetPlans(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, loads, repo.listCalls)
	})

	t.Run("excludes archived and deleted plans", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		keep, err := svc.CreatePlan(ctx, "u1", planInput("Keep"))
		require.NoError(t, err)
		archived, err := svc.CreatePlan(ctx, "u1", planInput("Old"))
		require.NoError(t, err)
		deleted, err := svc.CreatePlan(ctx, "u1", planInput("Gone"))
		require.NoError(t, err)

		require.NoError(t, svc.ArchivePlan(ctx, "u1", archived.ID))
		require.NoError(t, svc.DeletePlan(ctx, "u1", deleted.ID))

		plans, err := svc.GetPlans(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, keep.ID, plans[0].ID)

		archivedPlans, err := svc.GetArchivedPlans(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, archivedPlans, 1)
		assert.Equal(t, archived.ID, archivedPlans[0].ID)
	})
}

func TestGetPlanByID(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newPlanFixture()

	plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
	require.NoError(t, err)

	t.Run("resolves an owned plan", func(t *testing.T) {
		got, err := svc.GetPlanByID(ctx, "u1", plan.ID)
		require.NoError(t, err)
		assert.Equal(t, plan.ID, got.ID)
	})

	t.Run("someone else's plan reads as not found", func(t *testing.T) {
		_, err := svc.GetPlanByID(ctx, "u2", plan.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted plans still resolve by ID", func(t *testing.T) {
		require.NoError(t, svc.DeletePlan(ctx, "u1", plan.ID))
		got, err := svc.GetPlanByID(ctx, "u1", plan.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusDeleted, got.Status)
	})
}

func TestUpdatePlan(t *testing.T) {
	ctx := context.Background()

	strPtr := func(s string) *string { return &s }

	t.Run("applies a partial update", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)

		updated, err := svc.UpdatePlan(ctx, "u1", plan.ID, PlanUpdate{Description: strPtr("heavy week")})
		require.NoError(t, err)
		assert.Equal(t, "heavy week", updated.Description)
		assert.Equal(t, "Leg Day", updated.Title, "omitted fields stay untouched")
	})

	t.Run("rejects a title colliding with another active plan", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		_, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		other, err := svc.CreatePlan(ctx, "u1", planInput("Push Day"))
		require.NoError(t, err)

		_, err = svc.UpdatePlan(ctx, "u1", other.ID, PlanUpdate{Title: strPtr(" LEG DAY ")})
		assert.ErrorIs(t, err, ErrDuplicateTitle)
	})

	t.Run("keeping the own title is not a collision", func(t *testing.T) {
		_, _, svc := newPlanFixture()
		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)

		updated, err := svc.UpdatePlan(ctx, "u1", plan.ID, PlanUpdate{Title: strPtr("LEG DAY")})
		require.NoError(t, err)
		assert.Equal(t, "LEG DAY", updated.Title)
	})

	t.Run("updates the cached entry in place", func(t *testing.T) {
		_, store, svc := newPlanFixture()
		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		_, err = svc.GetPlans(ctx, "u1")
		require.NoError(t, err)

		_, err = svc.UpdatePlan(ctx, "u1", plan.ID, PlanUpdate{Description: strPtr("updated")})
		require.NoError(t, err)

		cached, ok := store.Peek(PlanCacheKey("u1"))
		require.True(t, ok)
		require.Len(t, cached, 1)
		assert.Equal(t, "updated", cached[0].Description)
	})
}

func TestPlanTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("archive removes the plan from the cached active list", func(t *testing.T) {
		_, store, svc := newPlanFixture()
		keep, err := svc.CreatePlan(ctx, "u1", planInput("Keep"))
		require.NoError(t, err)
		archive, err := svc.CreatePlan(ctx, "u1", planInput("Old"))
		require.NoError(t, err)
		_, err = svc.GetPlans(ctx, "u1") // load the list view
		require.NoError(t, err)

		require.NoError(t, svc.ArchivePlan(ctx, "u1", archive.ID))

		cached, ok := store.Peek(PlanCacheKey("u1"))
		require.True(t, ok)
		require.Len(t, cached, 1)
		assert.Equal(t, keep.ID, cached[0].ID)
	})

	t.Run("failed transition restores the cached list", func(t *testing.T) {
		_, store, svc := newPlanFixture()
		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)
		_, err = svc.GetPlans(ctx, "u1")
		require.NoError(t, err)
		before, _ := store.Peek(PlanCacheKey("u1"))

		err = svc.ArchivePlan(ctx, "u1", primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)

		after, _ := store.Peek(PlanCacheKey("u1"))
		assert.Equal(t, before, after)
		_ = plan
	})

	t.Run("delete keeps the document readable", func(t *testing.T) {
		repo, _, svc := newPlanFixture()
		plan, err := svc.CreatePlan(ctx, "u1", planInput("Leg Day"))
		require.NoError(t, err)

		require.NoError(t, svc.DeletePlan(ctx, "u1", plan.ID))

		stored, err := repo.GetByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusDeleted, stored.Status)
	})
}
