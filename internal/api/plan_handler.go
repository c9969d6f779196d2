package api

import (
	"errors"
	"fmt"
	"net/http"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the workout plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type CreatePlanRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Exercises   []domain.PlanExercise `json:"exercises"`
}

type UpdatePlanRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Exercises   *[]domain.PlanExercise `json:"exercises"`
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a workout plan
// @Description Creates a new active workout plan owned by the caller. Titles must be unique among the caller's active plans, compared case-insensitively after trimming.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan details"
// @Success 201 {object} domain.WorkoutPlan "Plan created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 409 {object} gin.H "Duplicate title"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, service.PlanInput{
		Title:       req.Title,
		Description: req.Description,
		Exercises:   req.Exercises,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlans godoc
// @Summary List the caller's active workout plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutPlan
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /plans [get]
func (h *PlanHandler) GetPlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	plans, err := h.planService.GetPlans(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetArchivedPlans godoc
// @Summary List the caller's archived workout plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutPlan
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /plans/archived [get]
func (h *PlanHandler) GetArchivedPlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	plans, err := h.planService.GetArchivedPlans(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlanByID godoc
// @Summary Get one of the caller's workout plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} domain.WorkoutPlan
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Not found"
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlanByID(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), userID, planID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// UpdatePlan godoc
// @Summary Update a workout plan
// @Description Applies a partial update. Omitted fields are left untouched. A title change is checked against the caller's other active plans.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body UpdatePlanRequest true "Fields to update"
// @Success 200 {object} domain.WorkoutPlan
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Not found"
// @Failure 409 {object} gin.H "Duplicate title"
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, planID, service.PlanUpdate{
		Title:       req.Title,
		Description: req.Description,
		Exercises:   req.Exercises,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ArchivePlan godoc
// @Summary Archive a workout plan
// @Description Moves an active plan to archived. The title becomes reusable for new plans.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204 "Archived"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Not found"
// @Router /plans/{id}/archive [post]
func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.planService.ArchivePlan(c.Request.Context(), userID, planID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePlan godoc
// @Summary Delete a workout plan
// @Description Marks the plan deleted. The document is retained; it disappears from all list reads.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204 "Deleted"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Not found"
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// handleServiceError maps the shared service error taxonomy to HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateTitle):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRemoteWrite):
		abortWithError(c, http.StatusBadGateway, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
