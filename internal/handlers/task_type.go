package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// TaskTypeHandler serves the task type registries of all teams
type TaskTypeHandler struct {
	taskTypeService *services.TaskTypeService
}

func NewTaskTypeHandler(taskTypeService *services.TaskTypeService) *TaskTypeHandler {
	return &TaskTypeHandler{taskTypeService: taskTypeService}
}

// ListTaskTypes returns task types, optionally limited to ?team_id=
func (h *TaskTypeHandler) ListTaskTypes(c *gin.Context) {
	teamID, ok := queryID(c, "team_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)
	types, total, err := h.taskTypeService.ListTaskTypes(c.Request.Context(), teamID, params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(types, total, params))
}

func (h *TaskTypeHandler) GetTaskType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskType, err := h.taskTypeService.GetTaskType(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskType)
}

func (h *TaskTypeHandler) CreateTaskType(c *gin.Context) {
	var req struct {
		CreateTypeRequest
		TeamID uint64 `json:"team_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	taskType, err := h.taskTypeService.CreateTaskType(c.Request.Context(), services.CreateTaskTypeInput{
		TeamID:      req.TeamID,
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
	c.JSON(http.StatusCreated, taskType)
}

func (h *TaskTypeHandler) UpdateTaskType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	taskType, err := h.taskTypeService.UpdateTaskType(c.Request.Context(), id, services.UpdateTaskTypeInput{
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
	c.JSON(http.StatusOK, taskType)
}

func (h *TaskTypeHandler) DeleteTaskType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.taskTypeService.DeleteTaskType(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskTypeHandler) AddField(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req FieldRequest
	if !bindJSON(c, &req) {
		return
	}

	field, err := h.taskTypeService.AddField(c.Request.Context(), id, req.toInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}

func (h *TaskTypeHandler) UpdateField(c *gin.Context) {
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

	field, err := h.taskTypeService.UpdateField(c.Request.Context(), id, fieldID, req.toInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

func (h *TaskTypeHandler) DeleteField(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseID(c, "field_id")
	if !ok {
		return
	}
	if err := h.taskTypeService.DeleteField(c.Request.Context(), id, fieldID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats counts the tasks of a type per status
func (h *TaskTypeHandler) GetStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stats, err := h.taskTypeService.GetStats(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTypeStatsDTO(stats))
}

// Migrate moves every task of the type to another type
func (h *TaskTypeHandler) Migrate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req MigrateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.taskTypeService.MigrateTasks(c.Request.Context(), id, req.TargetTypeID, req.StatusMappings)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMigrationResultDTO(result))
}
