package api

import (
	"fmt"
	"net/http"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request/Response Structs ---

type ExerciseRequest struct {
	Name         string               `json:"name" binding:"required"`
	Category     string               `json:"category"`
	MuscleGroups []domain.MuscleGroup `json:"muscleGroups"`
	Equipment    []domain.Equipment   `json:"equipment"`
	Difficulty   domain.Difficulty    `json:"difficulty"`
	Description  string               `json:"description"`
	Instructions string               `json:"instructions"`
	IsPublic     bool                 `json:"isPublic"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaURLResponse struct {
	URL string `json:"url"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:         r.Name,
		Category:     r.Category,
		MuscleGroups: r.MuscleGroups,
		Equipment:    r.Equipment,
		Difficulty:   r.Difficulty,
		Description:  r.Description,
		Instructions: r.Instructions,
		IsPublic:     r.IsPublic,
	}
}

// --- Handler Methods ---

// GetLibrary godoc
// @Summary List the public exercise library
// @Description Returns public exercises that have not been deleted. Served from cache.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Exercise
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [get]
func (h *ExerciseHandler) GetLibrary(c *gin.Context) {
	exercises, err := h.exerciseService.GetLibrary(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExerciseByID godoc
// @Summary Get a single exercise
// @Description Resolves by ID, including soft-deleted exercises still referenced by old sessions.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 404 {object} gin.H "Not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExerciseByID(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// GetMediaURL godoc
// @Summary Get a presigned download URL for an exercise's demo media
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} MediaURLResponse
// @Failure 404 {object} gin.H "Not found or no media"
// @Router /exercises/{id}/media [get]
func (h *ExerciseHandler) GetMediaURL(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.exerciseService.MediaDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MediaURLResponse{URL: url})
}

// CreateExercise godoc
// @Summary Create an exercise (admin)
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /admin/exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), adminUID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// GetAllExercises godoc
// @Summary List every exercise, public and private (admin)
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Exercise
// @Router /admin/exercises [get]
func (h *ExerciseHandler) GetAllExercises(c *gin.Context) {
	exercises, err := h.exerciseService.GetAllExercises(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// UpdateExercise godoc
// @Summary Update an exercise (admin)
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), adminUID, exerciseID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Soft delete an exercise (admin)
// @Description Marks the exercise deleted. Existing session references keep resolving by ID.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), adminUID, exerciseID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestMediaUpload godoc
// @Summary Get a presigned upload URL for an exercise's demo media (admin)
// @Description The client PUTs the media bytes directly to the returned URL with the declared Content-Type header.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param upload body MediaUploadRequest true "Upload details"
// @Success 200 {object} MediaURLResponse
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/exercises/{id}/media [post]
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	url, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), adminUID, exerciseID, req.ContentType)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MediaURLResponse{URL: url})
}
