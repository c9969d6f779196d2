package api

import (
	"fmt"
	"net/http"
	"time"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// GoalHandler holds the goal service dependency.
type GoalHandler struct {
	goalService service.GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

type CreateGoalRequest struct {
	Title        string          `json:"title" binding:"required"`
	Type         domain.GoalType `json:"type" binding:"required"`
	TargetValue  float64         `json:"targetValue" binding:"required"`
	CurrentValue float64         `json:"currentValue"`
	StartDate    time.Time       `json:"startDate"`
	TargetDate   time.Time       `json:"targetDate" binding:"required"`
}

type GoalProgressRequest struct {
	CurrentValue float64 `json:"currentValue" binding:"required"`
}

// CreateGoal godoc
// @Summary Create a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body CreateGoalRequest true "Goal details"
// @Success 201 {object} domain.Goal
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, service.GoalInput{
		Title:        req.Title,
		Type:         req.Type,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		StartDate:    req.StartDate,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// GetGoals godoc
// @Summary List the caller's goals
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Goal
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	goals, err := h.goalService.GetGoals(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// UpdateProgress godoc
// @Summary Update a goal's current value
// @Description An active goal whose current value reaches the target is marked completed.
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param progress body GoalProgressRequest true "New current value"
// @Success 200 {object} domain.Goal
// @Failure 404 {object} gin.H "Not found"
// @Router /goals/{id}/progress [put]
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	goalID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req GoalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	goal, err := h.goalService.UpdateProgress(c.Request.Context(), userID, goalID, req.CurrentValue)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// AbandonGoal godoc
// @Summary Abandon a goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204 "Abandoned"
// @Failure 404 {object} gin.H "Not found"
// @Router /goals/{id}/abandon [post]
func (h *GoalHandler) AbandonGoal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	goalID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.goalService.AbandonGoal(c.Request.Context(), userID, goalID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteGoal godoc
// @Summary Delete a goal permanently
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Not found"
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	goalID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
