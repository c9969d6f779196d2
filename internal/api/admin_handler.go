package api

import (
	"fmt"
	"net/http"
	"strconv"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler covers admin-only user management and audit views.
type AdminHandler struct {
	userService     service.UserService
	activityService service.ActivityService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService service.UserService, activityService service.ActivityService) *AdminHandler {
	return &AdminHandler{userService: userService, activityService: activityService}
}

type SetRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=admin user coach"`
}

type SetStatusRequest struct {
	Status domain.UserStatus `json:"status" binding:"required,oneof=active inactive deleted"`
}

// ListUsers godoc
// @Summary List all user accounts (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), adminUID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = MapUserToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// SetRole godoc
// @Summary Change a user's role (admin)
// @Description The new role propagates to the user's live session via the profile watch.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User UID"
// @Param role body SetRoleRequest true "New role"
// @Success 204 "Role changed"
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/users/{uid}/role [put]
func (h *AdminHandler) SetRole(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.userService.SetRole(c.Request.Context(), adminUID, c.Param("uid"), req.Role); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatus godoc
// @Summary Change a user's account status (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User UID"
// @Param status body SetStatusRequest true "New status"
// @Success 204 "Status changed"
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/users/{uid}/status [put]
func (h *AdminHandler) SetStatus(c *gin.Context) {
	adminUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.userService.SetStatus(c.Request.Context(), adminUID, c.Param("uid"), req.Status); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUserActivity godoc
// @Summary List a user's audit trail (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User UID"
// @Param limit query int false "Max records (default 50)"
// @Success 200 {array} domain.ActivityLog
// @Router /admin/users/{uid}/activity [get]
func (h *AdminHandler) GetUserActivity(c *gin.Context) {
	limit := parseLimitQuery(c)
	logs, err := h.activityService.GetUserActivity(c.Request.Context(), c.Param("uid"), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetRecentActivity godoc
// @Summary List recent audit records across all users (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max records (default 50)"
// @Success 200 {array} domain.ActivityLog
// @Router /admin/activity [get]
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limit := parseLimitQuery(c)
	logs, err := h.activityService.GetRecentActivity(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func parseLimitQuery(c *gin.Context) int64 {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
