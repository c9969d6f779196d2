package service

import (
	"context"
	"testing"
	"time"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeGoalRepo is an in-memory GoalRepository.
type fakeGoalRepo struct {
	goals map[primitive.ObjectID]*domain.Goal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[primitive.ObjectID]*domain.Goal)}
}

func (r *fakeGoalRepo) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	goal.ID = primitive.NewObjectID()
	stored := *goal
	r.goals[goal.ID] = &stored
	return goal.ID, nil
}

func (r *fakeGoalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (r *fakeGoalRepo) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGoalRepo) Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error {
	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return repository.ErrNotFound
	}
	if v, ok := fields["currentValue"]; ok {
		g.CurrentValue = v.(float64)
	}
	if v, ok := fields["status"]; ok {
		g.Status = v.(domain.GoalStatus)
	}
	if v, ok := fields["completedAt"]; ok {
		at := v.(time.Time)
		g.CompletedAt = &at
	}
	return nil
}

func (r *fakeGoalRepo) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.goals, id)
	return nil
}

// recordingActivitySvc captures the actions passed to Record, in order.
type recordingActivitySvc struct {
	actions []domain.ActivityAction
}

func (r *recordingActivitySvc) Record(userID string, action domain.ActivityAction, resourceType, resourceID string, meta map[string]any) {
	r.actions = append(r.actions, action)
}

func (r *recordingActivitySvc) GetUserActivity(context.Context, string, int64) ([]domain.ActivityLog, error) {
	return nil, nil
}

func (r *recordingActivitySvc) GetRecentActivity(context.Context, int64) ([]domain.ActivityLog, error) {
	return nil, nil
}

func goalInput(title string, target float64) GoalInput {
	return GoalInput{
		Title:       title,
		Type:        domain.GoalTypeWeight,
		TargetValue: target,
		StartDate:   time.Now().UTC(),
		TargetDate:  time.Now().UTC().AddDate(0, 3, 0),
	}
}

func TestCreateGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a signed-in user", func(t *testing.T) {
		svc := NewGoalService(newFakeGoalRepo(), noopActivity{}, cache.NewStore[domain.Goal]())
		_, err := svc.CreateGoal(ctx, "", goalInput("Cut to 80kg", 80))
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("rejects a blank title", func(t *testing.T) {
		svc := NewGoalService(newFakeGoalRepo(), noopActivity{}, cache.NewStore[domain.Goal]())
		_, err := svc.CreateGoal(ctx, "u1", goalInput("   ", 80))
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("rejects a missing target date", func(t *testing.T) {
		svc := NewGoalService(newFakeGoalRepo(), noopActivity{}, cache.NewStore[domain.Goal]())
		input := goalInput("Cut to 80kg", 80)
		input.TargetDate = time.Time{}
		_, err := svc.CreateGoal(ctx, "u1", input)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("new goal starts active and lands in the warmed cache", func(t *testing.T) {
		repo := newFakeGoalRepo()
		goals := cache.NewStore[domain.Goal]()
		svc := NewGoalService(repo, noopActivity{}, goals)

		_, err := svc.GetGoals(ctx, "u1") // load the (empty) list view
		require.NoError(t, err)

		created, err := svc.CreateGoal(ctx, "u1", goalInput("Cut to 80kg", 80))
		require.NoError(t, err)
		assert.Equal(t, domain.GoalStatusActive, created.Status)
		assert.False(t, created.ID.IsZero())

		cached, ok := goals.Peek(GoalCacheKey("u1"))
		require.True(t, ok)
		require.Len(t, cached, 1)
		assert.Equal(t, created.ID, cached[0].ID)
	})
}

func TestUpdateGoalProgress(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, repo *fakeGoalRepo, svc GoalService, target, current float64) *domain.Goal {
		t.Helper()
		input := goalInput("Squat 140kg", target)
		input.Type = domain.GoalTypeStrength
		input.CurrentValue = current
		goal, err := svc.CreateGoal(ctx, "u1", input)
		require.NoError(t, err)
		return goal
	}

	t.Run("progress below target keeps the goal active", func(t *testing.T) {
		repo := newFakeGoalRepo()
		svc := NewGoalService(repo, noopActivity{}, cache.NewStore[domain.Goal]())
		goal := seed(t, repo, svc, 140, 100)

		updated, err := svc.UpdateProgress(ctx, "u1", goal.ID, 120)
		require.NoError(t, err)
		assert.Equal(t, float64(120), updated.CurrentValue)
		assert.Equal(t, domain.GoalStatusActive, updated.Status)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("reaching the target completes the goal in one step", func(t *testing.T) {
		repo := newFakeGoalRepo()
		svc := NewGoalService(repo, noopActivity{}, cache.NewStore[domain.Goal]())
		goal := seed(t, repo, svc, 140, 135)

		updated, err := svc.UpdateProgress(ctx, "u1", goal.ID, 142.5)
		require.NoError(t, err)
		assert.Equal(t, domain.GoalStatusCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.WithinDuration(t, time.Now().UTC(), *updated.CompletedAt, time.Minute)
	})

	t.Run("completion records an audit entry", func(t *testing.T) {
		repo := newFakeGoalRepo()
		activity := &recordingActivitySvc{}
		svc := NewGoalService(repo, activity, cache.NewStore[domain.Goal]())
		goal := seed(t, repo, svc, 140, 135)

		_, err := svc.UpdateProgress(ctx, "u1", goal.ID, 150)
		require.NoError(t, err)
		require.NotEmpty(t, activity.actions)
		assert.Equal(t, domain.ActionComplete, activity.actions[len(activity.actions)-1])
	})

	t.Run("a completed goal stays completed on further updates", func(t *testing.T) {
		repo := newFakeGoalRepo()
		svc := NewGoalService(repo, noopActivity{}, cache.NewStore[domain.Goal]())
		goal := seed(t, repo, svc, 140, 135)

		_, err := svc.UpdateProgress(ctx, "u1", goal.ID, 145)
		require.NoError(t, err)
		first, err := svc.UpdateProgress(ctx, "u1", goal.ID, 150)
		require.NoError(t, err)
		assert.Equal(t, domain.GoalStatusCompleted, first.Status)

		// CompletedAt keeps the original timestamp.
		stored, err := repo.GetByID(ctx, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(150), stored.CurrentValue)
	})

	t.Run("another user's goal reads as not found", func(t *testing.T) {
		repo := newFakeGoalRepo()
		svc := NewGoalService(repo, noopActivity{}, cache.NewStore[domain.Goal]())
		goal := seed(t, repo, svc, 140, 100)

		_, err := svc.UpdateProgress(ctx, "intruder", goal.ID, 120)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("abandon keeps the document but flips status", func(t *testing.T) {
		repo := newFakeGoalRepo()
		svc := NewGoalService(repo, noopActivity{}, cache.NewStore[domain.Goal]())
		goal, err := svc.CreateGoal(ctx, "u1", goalInput("Run 10k", 10))
		require.NoError(t, err)

		require.NoError(t, svc.AbandonGoal(ctx, "u1", goal.ID))
		stored, err := repo.GetByID(ctx, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.GoalStatusAbandoned, stored.Status)
	})

	t.Run("delete removes the goal from store and warmed cache", func(t *testing.T) {
		repo := newFakeGoalRepo()
		goals := cache.NewStore[domain.Goal]()
		svc := NewGoalService(repo, noopActivity{}, goals)

		_, err := svc.GetGoals(ctx, "u1")
		require.NoError(t, err)
		goal, err := svc.CreateGoal(ctx, "u1", goalInput("Run 10k", 10))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteGoal(ctx, "u1", goal.ID))
		_, err = repo.GetByID(ctx, goal.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		cached, ok := goals.Peek(GoalCacheKey("u1"))
		require.True(t, ok)
		assert.Empty(t, cached)
	})

	t.Run("deleting an unknown goal reads as not found", func(t *testing.T) {
		svc := NewGoalService(newFakeGoalRepo(), noopActivity{}, cache.NewStore[domain.Goal]())
		err := svc.DeleteGoal(ctx, "u1", primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
