package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks supports ?team_id=, ?task_type_id=, ?project_id=, ?release_id= and repeated ?status=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var input services.ListTasksInput
	for name, dst := range map[string]*uint64{
		"team_id":      &input.TeamID,
		"task_type_id": &input.TaskTypeID,
		"project_id":   &input.ProjectID,
		"release_id":   &input.ReleaseID,
	} {
		id, ok := queryID(c, name)
		if !ok {
			return
		}
		*dst = id
	}
	input.Statuses = c.QueryArray("status")
	input.Page = utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(tasks, total, input.Page))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetTaskByDisplayID looks a task up by its human id, e.g. CORE-12
func (h *TaskHandler) GetTaskByDisplayID(c *gin.Context) {
	task, err := h.taskService.GetTaskByDisplayID(c.Request.Context(), c.Param("display_id"))
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title       string                 `json:"title" binding:"required"`
		Description string                 `json:"description"`
		TeamID      uint64                 `json:"team_id" binding:"required"`
		TaskTypeID  uint64                 `json:"task_type_id" binding:"required"`
		ProjectID   *uint64                `json:"project_id"`
		ReleaseID   *uint64                `json:"release_id"`
		Status      *string                `json:"status"`
		Estimation  string                 `json:"estimation"`
		CustomData  map[string]interface{} `json:"custom_data"`
	}
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		TeamID:      req.TeamID,
		TaskTypeID:  req.TaskTypeID,
		ProjectID:   req.ProjectID,
		ReleaseID:   req.ReleaseID,
		Status:      req.Status,
		Estimation:  req.Estimation,
		CustomData:  req.CustomData,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask patches a task; null project_id or release_id detaches it
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       *string                `json:"title"`
		Description *string                `json:"description"`
		Status      *string                `json:"status"`
		TeamID      *uint64                `json:"team_id"`
		TaskTypeID  *uint64                `json:"task_type_id"`
		ProjectID   dto.Optional[uint64]   `json:"project_id"`
		ReleaseID   dto.Optional[uint64]   `json:"release_id"`
		Estimation  *string                `json:"estimation"`
		CustomData  map[string]interface{} `json:"custom_data"`
	}
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		TeamID:       req.TeamID,
		TaskTypeID:   req.TaskTypeID,
		ProjectID:    req.ProjectID.Ptr(),
		ClearProject: req.ProjectID.Cleared(),
		ReleaseID:    req.ReleaseID.Ptr(),
		ClearRelease: req.ReleaseID.Cleared(),
		Estimation:   req.Estimation,
		CustomData:   req.CustomData,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) AddDependency(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	otherID, ok := parseID(c, "other_id")
	if !ok {
		return
	}
	task, err := h.taskService.AddDependency(c.Request.Context(), id, otherID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) RemoveDependency(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	otherID, ok := parseID(c, "other_id")
	if !ok {
		return
	}
	task, err := h.taskService.RemoveDependency(c.Request.Context(), id, otherID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GenerateTasks turns free text into unsaved task drafts
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.GenerateTaskDrafts(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToGenerateTasksResponse(drafts))
}
