package service

import (
	"context"
	"log"
	"time"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"
)

// Timeout for a single best-effort audit write.
const auditWriteTimeout = 5 * time.Second

// ActivityService records and reads the append-only audit trail.
// Record is fire-and-forget: audit failures are logged and swallowed,
// never surfaced to the user-facing operation that triggered them.
type ActivityService interface {
	Record(userID string, action domain.ActivityAction, resourceType, resourceID string, details map[string]any)
	GetUserActivity(ctx context.Context, userID string, limit int64) ([]domain.ActivityLog, error)
	GetRecentActivity(ctx context.Context, limit int64) ([]domain.ActivityLog, error)
}

// activityService implements the ActivityService interface.
type activityService struct {
	activityRepo repository.ActivityRepository
}

// NewActivityService creates a new instance of activityService.
func NewActivityService(activityRepo repository.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

// Record writes one audit entry in the background with its own timeout
// context, detached from the caller's request lifecycle.
func (s *activityService) Record(userID string, action domain.ActivityAction, resourceType, resourceID string, details map[string]any) {
	if userID == "" || action == "" || resourceType == "" {
		return
	}

	entry := &domain.ActivityLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()
		if err := s.activityRepo.Append(ctx, entry); err != nil {
			log.Printf("WARN: audit record dropped (user=%s action=%s resource=%s): %v",
				userID, action, resourceType, err)
		}
	}()
}

// GetUserActivity returns one user's recent audit trail, newest first.
func (s *activityService) GetUserActivity(ctx context.Context, userID string, limit int64) ([]domain.ActivityLog, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.activityRepo.ListByUser(ctx, userID, limit)
}

// GetRecentActivity returns the most recent audit trail across all users.
func (s *activityService) GetRecentActivity(ctx context.Context, limit int64) ([]domain.ActivityLog, error) {
	return s.activityRepo.ListRecent(ctx, limit)
}
