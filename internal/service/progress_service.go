package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const progressResourceType = "progress-entries"

// ProgressInput is the payload for recording a progress entry. Optional
// metrics stay nil when absent; nil fields never reach the store.
type ProgressInput struct {
	Date         time.Time
	WeightKg     *float64
	BodyFatPct   *float64
	Measurements *domain.Measurements
	Notes        string
}

// ProgressService is the mutation gateway for body-progress entries.
type ProgressService interface {
	RecordEntry(ctx context.Context, userID string, input ProgressInput) (*domain.ProgressEntry, error)
	GetEntries(ctx context.Context, userID string) ([]domain.ProgressEntry, error)
	UpdateEntry(ctx context.Context, userID string, entryID primitive.ObjectID, input ProgressInput) (*domain.ProgressEntry, error)
	DeleteEntry(ctx context.Context, userID string, entryID primitive.ObjectID) error
}

// progressService implements the ProgressService interface.
type progressService struct {
	progressRepo repository.ProgressRepository
	activity     ActivityService
	entries      *cache.Store[domain.ProgressEntry]
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(progressRepo repository.ProgressRepository, activity ActivityService, entries *cache.Store[domain.ProgressEntry]) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		activity:     activity,
		entries:      entries,
	}
}

// ProgressCacheKey is the cache descriptor for one user's progress history.
func ProgressCacheKey(userID string) cache.Key {
	return cache.NewKey(progressResourceType, "user", userID)
}

// RecordEntry validates and stores a new progress entry, then inserts it
// into the cached history directly.
func (s *progressService) RecordEntry(ctx context.Context, userID string, input ProgressInput) (*domain.ProgressEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if input.WeightKg == nil && input.BodyFatPct == nil && input.Measurements == nil {
		return nil, fmt.Errorf("%w: a progress entry needs at least one metric", ErrValidationFailed)
	}

	entry := &domain.ProgressEntry{
		UserID:       userID,
		Date:         input.Date,
		WeightKg:     input.WeightKg,
		BodyFatPct:   input.BodyFatPct,
		Measurements: input.Measurements,
		Notes:        input.Notes,
	}
	if _, err := s.progressRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.entries.Mutate(ProgressCacheKey(userID), func(current []domain.ProgressEntry) []domain.ProgressEntry {
		return append([]domain.ProgressEntry{*entry}, current...)
	})

	s.activity.Record(userID, domain.ActionCreate, progressResourceType, entry.ID.Hex(), nil)
	return entry, nil
}

// GetEntries returns the user's non-deleted entries through the cache.
func (s *progressService) GetEntries(ctx context.Context, userID string) ([]domain.ProgressEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.entries.Fetch(ctx, ProgressCacheKey(userID), func(ctx context.Context) ([]domain.ProgressEntry, error) {
		return s.progressRepo.ListByUser(ctx, userID)
	})
}

// UpdateEntry applies a partial update; nil metrics are stripped from the
// update document rather than clobbering stored values.
func (s *progressService) UpdateEntry(ctx context.Context, userID string, entryID primitive.ObjectID, input ProgressInput) (*domain.ProgressEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	fields := bson.M{
		"weight":       input.WeightKg,
		"bodyFat":      input.BodyFatPct,
		"measurements": input.Measurements,
	}
	if !input.Date.IsZero() {
		fields["date"] = input.Date
	}
	if input.Notes != "" {
		fields["notes"] = input.Notes
	}

	fields = StripNilFields(fields)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidationFailed)
	}

	if err := s.progressRepo.Update(ctx, entryID, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.entries.Invalidate(ProgressCacheKey(userID))
	s.activity.Record(userID, domain.ActionUpdate, progressResourceType, entryID.Hex(), nil)

	entry, err := s.progressRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry soft-deletes an entry and removes it from the cached history.
func (s *progressService) DeleteEntry(ctx context.Context, userID string, entryID primitive.ObjectID) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := s.progressRepo.SoftDelete(ctx, entryID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.entries.Mutate(ProgressCacheKey(userID), func(current []domain.ProgressEntry) []domain.ProgressEntry {
		remaining := make([]domain.ProgressEntry, 0, len(current))
		for _, e := range current {
			if e.ID != entryID {
				remaining = append(remaining, e)
			}
		}
		return remaining
	})

	s.activity.Record(userID, domain.ActionDelete, progressResourceType, entryID.Hex(), nil)
	return nil
}
