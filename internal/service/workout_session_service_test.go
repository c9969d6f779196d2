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

// fakeSessionRepo is an in-memory WorkoutSessionRepository. Soft-deleted
// sessions stay in the map but drop out of ListByUser, mirroring the
// deletedAt filter of the real collection queries.
type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	session.ID = primitive.NewObjectID()
	stored := *session
	r.sessions[session.ID] = &stored
	return session.ID, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	s, ok := r.sessions[id]
	if !ok || s.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (r *fakeSessionRepo) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutSession, error) {
	var out []domain.WorkoutSession
	for _, s := range r.sessions {
		if s.UserID == userID && s.DeletedAt == nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, id primitive.ObjectID, userID string, fields bson.M) error {
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID || s.DeletedAt != nil {
		return repository.ErrNotFound
	}
	if v, ok := fields["exercises"]; ok {
		s.Exercises = v.([]domain.SessionExercise)
	}
	if v, ok := fields["endTime"]; ok {
		at := v.(time.Time)
		s.EndTime = &at
	}
	if v, ok := fields["duration"]; ok {
		minutes := v.(int)
		s.DurationMin = &minutes
	}
	if v, ok := fields["completedAt"]; ok {
		at := v.(time.Time)
		s.CompletedAt = &at
	}
	return nil
}

func (r *fakeSessionRepo) SoftDelete(ctx context.Context, id primitive.ObjectID, userID string) error {
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID || s.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	s.DeletedAt = &now
	return nil
}

func sessionInput(title string, start time.Time) SessionInput {
	return SessionInput{
		Title:     title,
		StartTime: start,
		Exercises: []domain.SessionExercise{
			{Name: "Back Squat", Sets: []domain.ExerciseSet{{Reps: 5, Completed: true}}},
		},
	}
}

func TestLogSession(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a signed-in user", func(t *testing.T) {
		svc := NewWorkoutSessionService(newFakeSessionRepo(), noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		_, err := svc.LogSession(ctx, "", sessionInput("Morning lift", time.Now().UTC()))
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("rejects a blank title", func(t *testing.T) {
		svc := NewWorkoutSessionService(newFakeSessionRepo(), noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		_, err := svc.LogSession(ctx, "u1", sessionInput("  ", time.Now().UTC()))
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("new session is prepended to the warmed history", func(t *testing.T) {
		repo := newFakeSessionRepo()
		sessions := cache.NewStore[domain.WorkoutSession]()
		svc := NewWorkoutSessionService(repo, noopActivity{}, sessions)

		_, err := svc.GetSessions(ctx, "u1") // load the (empty) history view
		require.NoError(t, err)

		first, err := svc.LogSession(ctx, "u1", sessionInput("Morning lift", time.Now().UTC()))
		require.NoError(t, err)
		second, err := svc.LogSession(ctx, "u1", sessionInput("Evening run", time.Now().UTC()))
		require.NoError(t, err)

		cached, ok := sessions.Peek(SessionCacheKey("u1"))
		require.True(t, ok)
		require.Len(t, cached, 2)
		assert.Equal(t, second.ID, cached[0].ID)
		assert.Equal(t, first.ID, cached[1].ID)
	})
}

func TestCompleteSession(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, svc WorkoutSessionService) *domain.WorkoutSession {
		t.Helper()
		session, err := svc.LogSession(ctx, "u1", sessionInput("Morning lift", start))
		require.NoError(t, err)
		return session
	}

	t.Run("sets end time, duration, and completion together", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewWorkoutSessionService(repo, noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		session := seed(t, svc)

		end := start.Add(52 * time.Minute)
		completed, err := svc.CompleteSession(ctx, "u1", session.ID, end)
		require.NoError(t, err)
		require.NotNil(t, completed.EndTime)
		require.NotNil(t, completed.DurationMin)
		require.NotNil(t, completed.CompletedAt)
		assert.True(t, completed.EndTime.Equal(end))
		assert.Equal(t, 52, *completed.DurationMin)
	})

	t.Run("a zero end time defaults to now", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewWorkoutSessionService(repo, noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		session, err := svc.LogSession(ctx, "u1", sessionInput("Morning lift", time.Now().UTC().Add(-30*time.Minute)))
		require.NoError(t, err)

		completed, err := svc.CompleteSession(ctx, "u1", session.ID, time.Time{})
		require.NoError(t, err)
		require.NotNil(t, completed.EndTime)
		assert.WithinDuration(t, time.Now().UTC(), *completed.EndTime, time.Minute)
	})

	t.Run("rejects an end time before the start", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewWorkoutSessionService(repo, noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		session := seed(t, svc)

		_, err := svc.CompleteSession(ctx, "u1", session.ID, start.Add(-time.Minute))
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("completing twice is a no-op", func(t *testing.T) {
		repo := newFakeSessionRepo()
		activity := &recordingActivitySvc{}
		svc := NewWorkoutSessionService(repo, activity, cache.NewStore[domain.WorkoutSession]())
		session := seed(t, svc)

		first, err := svc.CompleteSession(ctx, "u1", session.ID, start.Add(45*time.Minute))
		require.NoError(t, err)
		again, err := svc.CompleteSession(ctx, "u1", session.ID, start.Add(2*time.Hour))
		require.NoError(t, err)

		assert.True(t, again.EndTime.Equal(*first.EndTime))
		assert.Equal(t, *first.DurationMin, *again.DurationMin)
		// One completion audit entry, not two.
		completions := 0
		for _, a := range activity.actions {
			if a == domain.ActionComplete {
				completions++
			}
		}
		assert.Equal(t, 1, completions)
	})

	t.Run("another user's session reads as not found", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewWorkoutSessionService(repo, noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		session := seed(t, svc)

		_, err := svc.CompleteSession(ctx, "intruder", session.ID, start.Add(time.Hour))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateSessionExercises(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the performed sets", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewWorkoutSessionService(repo, noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		session, err := svc.LogSession(ctx, "u1", sessionInput("Morning lift", time.Now().UTC()))
		require.NoError(t, err)

		weight := 102.5
		updated, err := svc.UpdateExercises(ctx, "u1", session.ID, []domain.SessionExercise{
			{Name: "Deadlift", Sets: []domain.ExerciseSet{{Reps: 3, WeightKg: &weight, Completed: true}}},
		})
		require.NoError(t, err)
		require.Len(t, updated.Exercises, 1)
		assert.Equal(t, "Deadlift", updated.Exercises[0].Name)
	})

	t.Run("unknown session reads as not found", func(t *testing.T) {
		svc := NewWorkoutSessionService(newFakeSessionRepo(), noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		_, err := svc.UpdateExercises(ctx, "u1", primitive.NewObjectID(), nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete hides the session but keeps the document", func(t *testing.T) {
		repo := newFakeSessionRepo()
		sessions := cache.NewStore[domain.WorkoutSession]()
		svc := NewWorkoutSessionService(repo, noopActivity{}, sessions)

		_, err := svc.GetSessions(ctx, "u1")
		require.NoError(t, err)
		session, err := svc.LogSession(ctx, "u1", sessionInput("Morning lift", time.Now().UTC()))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteSession(ctx, "u1", session.ID))

		cached, ok := sessions.Peek(SessionCacheKey("u1"))
		require.True(t, ok)
		assert.Empty(t, cached)

		stored := repo.sessions[session.ID]
		require.NotNil(t, stored)
		assert.NotNil(t, stored.DeletedAt)

		listed, err := svc.GetSessions(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("deleting twice reads as not found", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewWorkoutSessionService(repo, noopActivity{}, cache.NewStore[domain.WorkoutSession]())
		session, err := svc.LogSession(ctx, "u1", sessionInput("Morning lift", time.Now().UTC()))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteSession(ctx, "u1", session.ID))
		err = svc.DeleteSession(ctx, "u1", session.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
