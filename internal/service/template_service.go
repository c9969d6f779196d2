package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const templateResourceType = "workout-templates"

// TemplateInput is the payload for creating or updating a template.
type TemplateInput struct {
	Title       string
	Description string
	Exercises   []domain.PlanExercise
	Difficulty  domain.Difficulty
}

// TemplateService is the mutation gateway for admin-authored workout
// templates. Templates are always public; lifecycle is the same status
// transition plans use.
type TemplateService interface {
	CreateTemplate(ctx context.Context, adminUID string, input TemplateInput) (*domain.WorkoutTemplate, error)
	GetTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error)
	GetTemplateByID(ctx context.Context, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error)
	UpdateTemplate(ctx context.Context, adminUID string, templateID primitive.ObjectID, input TemplateInput) (*domain.WorkoutTemplate, error)
	ArchiveTemplate(ctx context.Context, adminUID string, templateID primitive.ObjectID) error
	DeleteTemplate(ctx context.Context, adminUID string, templateID primitive.ObjectID) error
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.WorkoutTemplateRepository
	activity     ActivityService
	templates    *cache.Store[domain.WorkoutTemplate]
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.WorkoutTemplateRepository, activity ActivityService, templates *cache.Store[domain.WorkoutTemplate]) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		activity:     activity,
		templates:    templates,
	}
}

// TemplateCacheKey is the cache descriptor for the public template list.
func TemplateCacheKey() cache.Key {
	return cache.NewKey(templateResourceType, "public")
}

// CreateTemplate validates and stores a new template.
func (s *templateService) CreateTemplate(ctx context.Context, adminUID string, input TemplateInput) (*domain.WorkoutTemplate, error) {
	if adminUID == "" {
		return nil, ErrNotAuthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: template title is required", ErrValidationFailed)
	}
	exercises := filterBlankExercises(input.Exercises)
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: a template needs at least one exercise", ErrValidationFailed)
	}

	tpl := &domain.WorkoutTemplate{
		Title:       title,
		Description: input.Description,
		Exercises:   exercises,
		Difficulty:  input.Difficulty,
		Status:      domain.PlanStatusActive,
		CreatedBy:   adminUID,
	}
	if _, err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.templates.Mutate(TemplateCacheKey(), func(current []domain.WorkoutTemplate) []domain.WorkoutTemplate {
		return append([]domain.WorkoutTemplate{*tpl}, current...)
	})

	s.activity.Record(adminUID, domain.ActionCreate, templateResourceType, tpl.ID.Hex(), map[string]any{
		"title": tpl.Title,
	})
	return tpl, nil
}

// GetTemplates returns the active public templates through the cache.
func (s *templateService) GetTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	return s.templates.Fetch(ctx, TemplateCacheKey(), func(ctx context.Context) ([]domain.WorkoutTemplate, error) {
		return s.templateRepo.ListPublic(ctx)
	})
}

// GetTemplateByID retrieves one template.
func (s *templateService) GetTemplateByID(ctx context.Context, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// UpdateTemplate replaces the editable fields of a template.
func (s *templateService) UpdateTemplate(ctx context.Context, adminUID string, templateID primitive.ObjectID, input TemplateInput) (*domain.WorkoutTemplate, error) {
	if adminUID == "" {
		return nil, ErrNotAuthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: template title is required", ErrValidationFailed)
	}

	fields := StripNilFields(bson.M{
		"title":       title,
		"description": input.Description,
		"exercises":   filterBlankExercises(input.Exercises),
		"difficulty":  input.Difficulty,
	})
	if err := s.templateRepo.Update(ctx, templateID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.templates.Invalidate(TemplateCacheKey())
	s.activity.Record(adminUID, domain.ActionUpdate, templateResourceType, templateID.Hex(), nil)
	return s.GetTemplateByID(ctx, templateID)
}

// ArchiveTemplate retires a template from the public list.
func (s *templateService) ArchiveTemplate(ctx context.Context, adminUID string, templateID primitive.ObjectID) error {
	return s.transition(ctx, adminUID, templateID, domain.PlanStatusArchived, domain.ActionUpdate)
}

// DeleteTemplate transitions the template to deleted; no physical removal.
func (s *templateService) DeleteTemplate(ctx context.Context, adminUID string, templateID primitive.ObjectID) error {
	return s.transition(ctx, adminUID, templateID, domain.PlanStatusDeleted, domain.ActionDelete)
}

func (s *templateService) transition(ctx context.Context, adminUID string, templateID primitive.ObjectID, status domain.PlanStatus, action domain.ActivityAction) error {
	if adminUID == "" {
		return ErrNotAuthenticated
	}

	if err := s.templateRepo.SetStatus(ctx, templateID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrRemoteWrite, err)
	}

	s.templates.Mutate(TemplateCacheKey(), func(current []domain.WorkoutTemplate) []domain.WorkoutTemplate {
		remaining := make([]domain.WorkoutTemplate, 0, len(current))
		for _, tpl := range current {
			if tpl.ID != templateID {
				remaining = append(remaining, tpl)
			}
		}
		return remaining
	})

	s.activity.Record(adminUID, action, templateResourceType, templateID.Hex(), map[string]any{
		"status": status,
	})
	return nil
}
