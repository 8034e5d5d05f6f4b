package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// ThemeHandler serves themes
type ThemeHandler struct {
	themeService *services.ThemeService
}

func NewThemeHandler(themeService *services.ThemeService) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

// ListThemes returns themes, optionally filtered by ?status=
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	themes, total, err := h.themeService.ListThemes(c.Request.Context(), c.Query("status"), params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(themes, total, params))
}

func (h *ThemeHandler) GetTheme(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	theme, err := h.themeService.GetTheme(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}

func (h *ThemeHandler) CreateTheme(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	theme, err := h.themeService.CreateTheme(c.Request.Context(), services.CreateThemeInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, theme)
}

func (h *ThemeHandler) UpdateTheme(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	theme, err := h.themeService.UpdateTheme(c.Request.Context(), id, services.UpdateThemeInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}

func (h *ThemeHandler) DeleteTheme(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.themeService.DeleteTheme(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TransitionStatus moves every theme from one status to another
func (h *ThemeHandler) TransitionStatus(c *gin.Context) {
	var req struct {
		OldStatus string `json:"old_status" binding:"required"`
		NewStatus string `json:"new_status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	count, err := h.themeService.TransitionStatus(c.Request.Context(), req.OldStatus, req.NewStatus)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated_count": count})
}
