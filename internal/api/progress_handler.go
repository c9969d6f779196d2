package api

import (
	"fmt"
	"net/http"
	"time"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type ProgressEntryRequest struct {
	Date         time.Time            `json:"date" binding:"required"`
	WeightKg     *float64             `json:"weight"`
	BodyFatPct   *float64             `json:"bodyFat"`
	Measurements *domain.Measurements `json:"measurements"`
	Notes        string               `json:"notes"`
}

func (r ProgressEntryRequest) toInput() service.ProgressInput {
	return service.ProgressInput{
		Date:         r.Date,
		WeightKg:     r.WeightKg,
		BodyFatPct:   r.BodyFatPct,
		Measurements: r.Measurements,
		Notes:        r.Notes,
	}
}

// RecordEntry godoc
// @Summary Record a body-progress entry
// @Description At least one metric (weight, body fat or a measurement) is required.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body ProgressEntryRequest true "Entry details"
// @Success 201 {object} domain.ProgressEntry
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /progress [post]
func (h *ProgressHandler) RecordEntry(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req ProgressEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entry, err := h.progressService.RecordEntry(c.Request.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetEntries godoc
// @Summary List the caller's progress entries
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ProgressEntry
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /progress [get]
func (h *ProgressHandler) GetEntries(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	entries, err := h.progressService.GetEntries(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UpdateEntry godoc
// @Summary Update a progress entry
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param entry body ProgressEntryRequest true "Entry details"
// @Success 200 {object} domain.ProgressEntry
// @Failure 404 {object} gin.H "Not found"
// @Router /progress/{id} [put]
func (h *ProgressHandler) UpdateEntry(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	entryID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req ProgressEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entry, err := h.progressService.UpdateEntry(c.Request.Context(), userID, entryID, req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Soft delete a progress entry
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Not found"
// @Router /progress/{id} [delete]
func (h *ProgressHandler) DeleteEntry(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	entryID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.progressService.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
