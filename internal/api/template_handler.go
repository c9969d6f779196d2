package api

import (
	"fmt"
	"net/http"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// TemplateHandler holds the workout template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

type TemplateRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Exercises   []domain.PlanExercise `json:"exercises"`
	Difficulty  domain.Difficulty     `json:"difficulty"`
}

func (r TemplateRequest) toInput() service.TemplateInput {
	return service.TemplateInput{
		Title:       r.Title,
		Description: r.Description,
		Exercises:   r.Exercises,
		Difficulty:  r.Difficulty,
	}
}

// GetTemplates godoc
// @Summary List public workout templates
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutTemplate
// @Router /templates [get]
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	templates, err := h.templateService.GetTemplates(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplateByID godoc
// @Summary Get a workout template
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} domain.WorkoutTemplate
// @Failure 404 {object} gin.H "Not found"
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplateByID(c *gin.Context) {
	templateID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplateByID(c.Request.Context(), templateID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateTemplate godoc
// @Summary Create a workout template (admin)
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body TemplateRequest true "Template details"
// @Success 201 {object} domain.WorkoutTemplate
// @Failure 400 {object} gin.H "Invalid input"
// @Router /admin/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), adminUID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate godoc
// @Summary Update a workout template (admin)
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param template body TemplateRequest true "Template details"
// @Success 200 {object} domain.WorkoutTemplate
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	templateID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), adminUID, templateID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// ArchiveTemplate godoc
// @Summary Archive a workout template (admin)
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204 "Archived"
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/templates/{id}/archive [post]
func (h *TemplateHandler) ArchiveTemplate(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	templateID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.ArchiveTemplate(c.Request.Context(), adminUID, templateID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTemplate godoc
// @Summary Delete a workout template (admin)
// @Description Marks the template deleted. The document is retained.
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	templateID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), adminUID, templateID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
