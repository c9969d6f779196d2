package api

import (
	"fmt"
	"net/http"
	"time"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler holds the workout session service dependency.
type WorkoutHandler struct {
	sessionService service.WorkoutSessionService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(sessionService service.WorkoutSessionService) *WorkoutHandler {
	return &WorkoutHandler{sessionService: sessionService}
}

// --- Request Structs ---

type LogSessionRequest struct {
	Title     string                   `json:"title" binding:"required"`
	Exercises []domain.SessionExercise `json:"exercises"`
	StartTime time.Time                `json:"startTime" binding:"required"`
}

type UpdateExercisesRequest struct {
	Exercises []domain.SessionExercise `json:"exercises" binding:"required"`
}

type CompleteSessionRequest struct {
	EndTime time.Time `json:"endTime" binding:"required"`
}

// --- Handler Methods ---

// LogSession godoc
// @Summary Log a workout session
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body LogSessionRequest true "Session details"
// @Success 201 {object} domain.WorkoutSession
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /workouts [post]
func (h *WorkoutHandler) LogSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req LogSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.LogSession(c.Request.Context(), userID, service.SessionInput{
		Title:     req.Title,
		Exercises: req.Exercises,
		StartTime: req.StartTime,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSessions godoc
// @Summary List the caller's workout sessions
// @Description Soft-deleted sessions are excluded.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutSession
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /workouts [get]
func (h *WorkoutHandler) GetSessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	sessions, err := h.sessionService.GetSessions(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSessionByID godoc
// @Summary Get one of the caller's workout sessions
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} domain.WorkoutSession
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetSessionByID(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSessionByID(c.Request.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateExercises godoc
// @Summary Replace the exercises of a logged session
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param exercises body UpdateExercisesRequest true "Replacement exercise list"
// @Success 200 {object} domain.WorkoutSession
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id}/exercises [put]
func (h *WorkoutHandler) UpdateExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.UpdateExercises(c.Request.Context(), userID, sessionID, req.Exercises)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CompleteSession godoc
// @Summary Mark a workout session completed
// @Description Sets end time, duration and completion timestamp together. Completing an already completed session is a no-op.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param completion body CompleteSessionRequest true "Completion details"
// @Success 200 {object} domain.WorkoutSession
// @Failure 400 {object} gin.H "End time before start"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) CompleteSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.CompleteSession(c.Request.Context(), userID, sessionID, req.EndTime)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession godoc
// @Summary Soft delete a workout session
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
