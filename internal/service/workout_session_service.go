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

const sessionResourceType = "workout-sessions"

// SessionInput is the payload for logging a workout session.
type SessionInput struct {
	Title     string
	Exercises []domain.SessionExercise
	StartTime time.Time
}

// WorkoutSessionService is the mutation gateway for logged workouts.
type WorkoutSessionService interface {
	LogSession(ctx context.Context, userID string, input SessionInput) (*domain.WorkoutSession, error)
	GetSessions(ctx context.Context, userID string) ([]domain.WorkoutSession, error)
	GetSessionByID(ctx context.Context, userID string, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)
	UpdateExercises(ctx context.Context, userID string, sessionID primitive.ObjectID, exercises []domain.SessionExercise) (*domain.WorkoutSession, error)
	CompleteSession(ctx context.Context, userID string, sessionID primitive.ObjectID, endTime time.Time) (*domain.WorkoutSession, error)
	DeleteSession(ctx context.Context, userID string, sessionID primitive.ObjectID) error
}

// workoutSessionService implements the WorkoutSessionService interface.
type workoutSessionService struct {
	sessionRepo repository.WorkoutSessionRepository
	activity    ActivityService
	sessions    *cache.Store[domain.WorkoutSession]
}

// NewWorkoutSessionService creates a new instance of workoutSessionService.
func NewWorkoutSessionService(sessionRepo repository.WorkoutSessionRepository, activity ActivityService, sessions *cache.Store[domain.WorkoutSession]) WorkoutSessionService {
	return &workoutSessionService{
		sessionRepo: sessionRepo,
		activity:    activity,
		sessions:    sessions,
	}
}

// SessionCacheKey is the cache descriptor for one user's session history.
func SessionCacheKey(userID string) cache.Key {
	return cache.NewKey(sessionResourceType, "user", userID)
}

// LogSession records a new workout session and inserts it into the cached
// history directly.
func (s *workoutSessionService) LogSession(ctx context.Context, userID string, input SessionInput) (*domain.WorkoutSession, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: session title is required", ErrValidationFailed)
	}

	session := &domain.WorkoutSession{
		UserID:    userID,
		Title:     title,
		Exercises: input.Exercises,
		StartTime: input.StartTime,
	}
	if _, err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.sessions.Mutate(SessionCacheKey(userID), func(current []domain.WorkoutSession) []domain.WorkoutSession {
		return append([]domain.WorkoutSession{*session}, current...)
	})

	s.activity.Record(userID, domain.ActionCreate, sessionResourceType, session.ID.Hex(), map[string]any{
		"title": session.Title,
	})
	return session, nil
}

// GetSessions returns the user's non-deleted sessions through the cache.
func (s *workoutSessionService) GetSessions(ctx context.Context, userID string) ([]domain.WorkoutSession, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.sessions.Fetch(ctx, SessionCacheKey(userID), func(ctx context.Context) ([]domain.WorkoutSession, error) {
		return s.sessionRepo.ListByUser(ctx, userID)
	})
}

// GetSessionByID retrieves one session, enforcing ownership.
func (s *workoutSessionService) GetSessionByID(ctx context.Context, userID string, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotFound
	}
	return session, nil
}

// UpdateExercises replaces the performed sets of an in-progress session.
func (s *workoutSessionService) UpdateExercises(ctx context.Context, userID string, sessionID primitive.ObjectID, exercises []domain.SessionExercise) (*domain.WorkoutSession, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	fields := StripNilFields(bson.M{"exercises": exercises})
	if err := s.sessionRepo.Update(ctx, sessionID, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.sessions.Invalidate(SessionCacheKey(userID))
	s.activity.Record(userID, domain.ActionUpdate, sessionResourceType, sessionID.Hex(), nil)
	return s.GetSessionByID(ctx, userID, sessionID)
}

// CompleteSession finishes a workout: endTime, duration, and completedAt
// are set together, keeping the completed-implies-finished invariant.
func (s *workoutSessionService) CompleteSession(ctx context.Context, userID string, sessionID primitive.ObjectID, endTime time.Time) (*domain.WorkoutSession, error) {
	session, err := s.GetSessionByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return session, nil
	}
	if endTime.IsZero() {
		endTime = time.Now().UTC()
	}
	if endTime.Before(session.StartTime) {
		return nil, fmt.Errorf("%w: end time precedes start time", ErrValidationFailed)
	}

	duration := int(endTime.Sub(session.StartTime).Minutes())
	now := time.Now().UTC()
	fields := bson.M{
		"endTime":     endTime,
		"duration":    duration,
		"completedAt": now,
	}
	if err := s.sessionRepo.Update(ctx, sessionID, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.sessions.Invalidate(SessionCacheKey(userID))
	s.activity.Record(userID, domain.ActionComplete, sessionResourceType, sessionID.Hex(), map[string]any{
		"duration": duration,
	})
	return s.GetSessionByID(ctx, userID, sessionID)
}

// DeleteSession soft-deletes a session and removes it from the cached
// history directly.
func (s *workoutSessionService) DeleteSession(ctx context.Context, userID string, sessionID primitive.ObjectID) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := s.sessionRepo.SoftDelete(ctx, sessionID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.sessions.Mutate(SessionCacheKey(userID), func(current []domain.WorkoutSession) []domain.WorkoutSession {
		remaining := make([]domain.WorkoutSession, 0, len(current))
		for _, sess := range current {
			if sess.ID != sessionID {
				remaining = append(remaining, sess)
			}
		}
		return remaining
	})

	s.activity.Record(userID, domain.ActionDelete, sessionResourceType, sessionID.Hex(), nil)
	return nil
}
