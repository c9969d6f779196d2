package api

import (
	"fmt"
	"net/http"

	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateProfileRequest struct {
	FullName *string  `json:"fullname"`
	Username *string  `json:"username"`
	HeightCm *float64 `json:"height"`
	WeightKg *float64 `json:"weight"`
	Age      *int     `json:"age"`
	Gender   *string  `json:"gender"`
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Profile not found"
// @Router /me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), uid)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Applies a partial update. Omitted fields are left untouched.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), uid, service.ProfileUpdate{
		FullName: req.FullName,
		Username: req.Username,
		HeightCm: req.HeightCm,
		WeightKg: req.WeightKg,
		Age:      req.Age,
		Gender:   req.Gender,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}
