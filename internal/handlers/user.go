package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/middleware"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// UserHandler serves user administration
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns users, paginated
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.ToUserDTOs(users), total, params))
}

// GetUser returns a user
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser creates a user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email    string          `json:"email" binding:"required"`
		Password string          `json:"password" binding:"required"`
		FullName string          `json:"full_name"`
		Role     models.UserRole `json:"role"`
		IsActive *bool           `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser patches a user
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Email    *string          `json:"email"`
		Password *string          `json:"password"`
		FullName *string          `json:"full_name"`
		Role     *models.UserRole `json:"role"`
		IsActive *bool            `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, services.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser deletes a user; admins cannot delete themselves
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if current, _ := middleware.GetUserID(c); current == id {
		apierrors.BadRequest(c, "You cannot delete your own account")
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
