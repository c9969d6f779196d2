package service

import (
	"context"
	"errors"
	"fmt"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

const userResourceType = "users"

// ProfileUpdate carries the self-service profile fields; nil fields are
// left untouched and never reach the store.
type ProfileUpdate struct {
	FullName *string
	Username *string
	HeightCm *float64
	WeightKg *float64
	Age      *int
	Gender   *string
}

// UserService covers profile self-service and admin user management.
// The uid is immutable; role changes go through SetRole only, which the
// routing layer restricts to admins.
type UserService interface {
	GetProfile(ctx context.Context, uid string) (*domain.User, error)
	UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (*domain.User, error)
	ListUsers(ctx context.Context, adminUID string) ([]domain.User, error)
	SetRole(ctx context.Context, adminUID, uid string, role domain.Role) error
	SetStatus(ctx context.Context, adminUID, uid string, status domain.UserStatus) error
}

// userService implements the UserService interface.
type userService struct {
	userRepo repository.UserRepository
	activity ActivityService
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, activity ActivityService) UserService {
	return &userService{
		userRepo: userRepo,
		activity: activity,
	}
}

// GetProfile returns the profile document for a uid.
func (s *userService) GetProfile(ctx context.Context, uid string) (*domain.User, error) {
	if uid == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies a partial self-service update.
func (s *userService) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (*domain.User, error) {
	if uid == "" {
		return nil, ErrNotAuthenticated
	}

	fields := StripNilFields(bson.M{
		"fullname": update.FullName,
		"username": update.Username,
		"height":   update.HeightCm,
		"weight":   update.WeightKg,
		"age":      update.Age,
		"gender":   update.Gender,
	})
	if len(fields) == 0 {
		return s.GetProfile(ctx, uid)
	}

	if err := s.userRepo.Update(ctx, uid, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.activity.Record(uid, domain.ActionUpdate, userResourceType, uid, nil)
	return s.GetProfile(ctx, uid)
}

// ListUsers returns all non-deleted users. Admin view.
func (s *userService) ListUsers(ctx context.Context, adminUID string) ([]domain.User, error) {
	if adminUID == "" {
		return nil, ErrNotAuthenticated
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// SetRole changes a user's role. The profile watch in the session layer
// picks the change up live, so the affected user does not need to
// re-authenticate.
func (s *userService) SetRole(ctx context.Context, adminUID, uid string, role domain.Role) error {
	if adminUID == "" {
		return ErrNotAuthenticated
	}
	switch role {
	case domain.RoleAdmin, domain.RoleUser, domain.RoleCoach:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}

	if err := s.userRepo.SetRole(ctx, uid, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.activity.Record(adminUID, domain.ActionUpdate, userResourceType, uid, map[string]any{
		"role": role,
	})
	return nil
}

// SetStatus activates, deactivates, or marks a user deleted. User
// documents are never removed; the audit trail references them.
func (s *userService) SetStatus(ctx context.Context, adminUID, uid string, status domain.UserStatus) error {
	if adminUID == "" {
		return ErrNotAuthenticated
	}
	switch status {
	case domain.UserStatusActive, domain.UserStatusInactive, domain.UserStatusDeleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidationFailed, status)
	}

	fields := bson.M{
		"status":   status,
		"isActive": status == domain.UserStatusActive,
	}
	if err := s.userRepo.Update(ctx, uid, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	action := domain.ActionUpdate
	if status == domain.UserStatusDeleted {
		action = domain.ActionDelete
	}
	s.activity.Record(adminUID, action, userResourceType, uid, map[string]any{
		"status": status,
	})
	return nil
}
