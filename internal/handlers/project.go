package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// ProjectHandler serves projects and their dependency graph
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects supports ?project_type_id=, ?theme_id= and repeated ?status=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	typeID, ok := queryID(c, "project_type_id")
	if !ok {
		return
	}
	themeID, ok := queryID(c, "theme_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), services.ListProjectsInput{
		ProjectTypeID: typeID,
		ThemeID:       themeID,
		Statuses:      c.QueryArray("status"),
		Page:          params,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(projects, total, params))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := h.projectService.GetProject(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req struct {
		Title         string                 `json:"title" binding:"required"`
		Description   string                 `json:"description"`
		ProjectTypeID uint64                 `json:"project_type_id" binding:"required"`
		ThemeID       *uint64                `json:"theme_id"`
		Status        *string                `json:"status"`
		CustomData    map[string]interface{} `json:"custom_data"`
	}
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Title:         req.Title,
		Description:   req.Description,
		ProjectTypeID: req.ProjectTypeID,
		ThemeID:       req.ThemeID,
		Status:        req.Status,
		CustomData:    req.CustomData,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject patches a project; "theme_id": null detaches the theme
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title         *string                `json:"title"`
		Description   *string                `json:"description"`
		Status        *string                `json:"status"`
		ProjectTypeID *uint64                `json:"project_type_id"`
		ThemeID       dto.Optional[uint64]   `json:"theme_id"`
		CustomData    map[string]interface{} `json:"custom_data"`
	}
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), id, services.UpdateProjectInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		ProjectTypeID: req.ProjectTypeID,
		ThemeID:       req.ThemeID.Ptr(),
		ClearTheme:    req.ThemeID.Cleared(),
		CustomData:    req.CustomData,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.DeleteProject(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) AddDependency(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	otherID, ok := parseID(c, "other_id")
	if !ok {
		return
	}
	project, err := h.projectService.AddDependency(c.Request.Context(), id, otherID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) RemoveDependency(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	otherID, ok := parseID(c, "other_id")
	if !ok {
		return
	}
	project, err := h.projectService.RemoveDependency(c.Request.Context(), id, otherID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
