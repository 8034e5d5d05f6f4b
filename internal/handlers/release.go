package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// ReleaseHandler serves releases
type ReleaseHandler struct {
	releaseService *services.ReleaseService
}

func NewReleaseHandler(releaseService *services.ReleaseService) *ReleaseHandler {
	return &ReleaseHandler{releaseService: releaseService}
}

// ListReleases returns releases, optionally filtered by ?status=
func (h *ReleaseHandler) ListReleases(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.ReleaseStatus(c.Query("status"))
	releases, total, err := h.releaseService.ListReleases(c.Request.Context(), status, params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(releases, total, params))
}

func (h *ReleaseHandler) GetRelease(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	release, err := h.releaseService.GetRelease(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, release)
}

func (h *ReleaseHandler) GetReleaseByVersion(c *gin.Context) {
	release, err := h.releaseService.GetReleaseByVersion(c.Request.Context(), c.Param("version"))
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, release)
}

func (h *ReleaseHandler) CreateRelease(c *gin.Context) {
	var req struct {
		Version     string               `json:"version" binding:"required"`
		Title       string               `json:"title"`
		Description string               `json:"description"`
		TargetDate  *time.Time           `json:"target_date"`
		ReleaseDate *time.Time           `json:"release_date"`
		Status      models.ReleaseStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	release, err := h.releaseService.CreateRelease(c.Request.Context(), services.CreateReleaseInput{
		Version:     req.Version,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		ReleaseDate: req.ReleaseDate,
		Status:      req.Status,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, release)
}

// UpdateRelease patches a release; null dates clear them
func (h *ReleaseHandler) UpdateRelease(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Version     *string                 `json:"version"`
		Title       *string                 `json:"title"`
		Description *string                 `json:"description"`
		TargetDate  dto.Optional[time.Time] `json:"target_date"`
		ReleaseDate dto.Optional[time.Time] `json:"release_date"`
		Status      *models.ReleaseStatus   `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	release, err := h.releaseService.UpdateRelease(c.Request.Context(), id, services.UpdateReleaseInput{
		Version:          req.Version,
		Title:            req.Title,
		Description:      req.Description,
		TargetDate:       req.TargetDate.Ptr(),
		ClearTargetDate:  req.TargetDate.Cleared(),
		ReleaseDate:      req.ReleaseDate.Ptr(),
		ClearReleaseDate: req.ReleaseDate.Cleared(),
		Status:           req.Status,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, release)
}

func (h *ReleaseHandler) DeleteRelease(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.releaseService.DeleteRelease(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
