package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// ProjectTypeHandler serves the project type registry
type ProjectTypeHandler struct {
	projectTypeService *services.ProjectTypeService
}

func NewProjectTypeHandler(projectTypeService *services.ProjectTypeService) *ProjectTypeHandler {
	return &ProjectTypeHandler{projectTypeService: projectTypeService}
}

// CreateTypeRequest is the body shared by project and task type creation
type CreateTypeRequest struct {
	Name        string         `json:"name" binding:"required"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
	Workflow    []string       `json:"workflow" binding:"required"`
	Fields      []FieldRequest `json:"fields"`
}

// UpdateTypeRequest is the patch body shared by project and task types
type UpdateTypeRequest struct {
	Name        *string         `json:"name"`
	Slug        *string         `json:"slug"`
	Description *string         `json:"description"`
	Color       *string         `json:"color"`
	Workflow    []string        `json:"workflow"`
	Fields      *[]FieldRequest `json:"fields"`
}

func (r UpdateTypeRequest) fieldInputs() *[]services.FieldInput {
	if r.Fields == nil {
		return nil
	}
	inputs := toFieldInputs(*r.Fields)
	return &inputs
}

func (h *ProjectTypeHandler) ListProjectTypes(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	types, total, err := h.projectTypeService.ListProjectTypes(c.Request.Context(), params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(types, total, params))
}

func (h *ProjectTypeHandler) GetProjectType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	projectType, err := h.projectTypeService.GetProjectType(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectType)
}

func (h *ProjectTypeHandler) CreateProjectType(c *gin.Context) {
	var req CreateTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	projectType, err := h.projectTypeService.CreateProjectType(c.Request.Context(), services.CreateProjectTypeInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		Workflow:    req.Workflow,
		Fields:      toFieldInputs(req.Fields),
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectType)
}

func (h *ProjectTypeHandler) UpdateProjectType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	projectType, err := h.projectTypeService.UpdateProjectType(c.Request.Context(), id, services.UpdateProjectTypeInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		Workflow:    req.Workflow,
		Fields:      req.fieldInputs(),
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectType)
}

func (h *ProjectTypeHandler) DeleteProjectType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.projectTypeService.DeleteProjectType(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectTypeHandler) AddField(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req FieldRequest
	if !bindJSON(c, &req) {
		return
	}

	field, err := h.projectTypeService.AddField(c.Request.Context(), id, req.toInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}

func (h *ProjectTypeHandler) UpdateField(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseID(c, "field_id")
	if !ok {
		return
	}
	var req FieldUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	field, err := h.projectTypeService.UpdateField(c.Request.Context(), id, fieldID, req.toInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

func (h *ProjectTypeHandler) DeleteField(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseID(c, "field_id")
	if !ok {
		return
	}
	if err := h.projectTypeService.DeleteField(c.Request.Context(), id, fieldID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats counts the projects of a type per status
func (h *ProjectTypeHandler) GetStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stats, err := h.projectTypeService.GetStats(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTypeStatsDTO(stats))
}

// Migrate moves every project of the type to another type
func (h *ProjectTypeHandler) Migrate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req MigrateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.projectTypeService.MigrateProjects(c.Request.Context(), id, req.TargetTypeID, req.StatusMappings)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMigrationResultDTO(result))
}
