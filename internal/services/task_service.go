package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAIServiceNotConfigured = &DomainError{Kind: ErrUnavailable, Message: "AI service is not configured"}
	ErrAINoTasksGenerated     = &DomainError{Kind: ErrValidation, Message: "AI did not generate any tasks"}
)

var taskPreloads = []string{"Team", "TaskType", "TaskType.Fields", "Project", "Release", "GitHubLinks"}

// TaskServiceConfig holds the settings of the task service
type TaskServiceConfig struct {
	// DisplayIDPrefix is the prefix of human-facing task ids, e.g. CORE.
	DisplayIDPrefix    string
	StrictCustomFields bool
}

// TaskService handles task business logic
type TaskService struct {
	store     *repository.Store
	log       *zap.Logger
	cfg       TaskServiceConfig
	aiService *AIService
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(store *repository.Store, log *zap.Logger, cfg TaskServiceConfig, aiService *AIService) *TaskService {
	return &TaskService{
		store:     store,
		log:       log,
		cfg:       cfg,
		aiService: aiService,
	}
}

// CreateTaskInput represents input for creating a task.
// A nil Status selects the first status of the task type's workflow.
type CreateTaskInput struct {
	Title       string
	Description string
	TeamID      uint64
	TaskTypeID  uint64
	ProjectID   *uint64
	ReleaseID   *uint64
	Status      *string
	Estimation  string
	CustomData  map[string]interface{}
}

// UpdateTaskInput represents input for updating a task.
// The Clear flags set the nullable references to null; a nil CustomData leaves it unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	TeamID       *uint64
	TaskTypeID   *uint64
	ProjectID    *uint64
	ClearProject bool
	ReleaseID    *uint64
	ClearRelease bool
	Estimation   *string
	CustomData   map[string]interface{}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	TeamID     uint64
	TaskTypeID uint64
	ProjectID  uint64
	ReleaseID  uint64
	Statuses   []string
	Page       utils.PaginationParams
}

// CreateTask creates a task in the default status of its type and assigns its display id
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required", nil)
	}

	var task *models.Task
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Teams.FindByID(input.TeamID); err != nil {
			return lookupError(err, "Team", input.TeamID)
		}
		taskType, err := repos.TaskTypes.FindByID(input.TaskTypeID)
		if err != nil {
			return lookupError(err, "TaskType", input.TaskTypeID)
		}
		if err := ensureTaskRefs(repos, input.ProjectID, input.ReleaseID); err != nil {
			return err
		}

		status := defaultStatus(taskType.Workflow, constants.FallbackTaskStatus)
		if input.Status != nil {
			if status, err = resolveStatus(taskType.Workflow, "", input.Status, constants.FallbackTaskStatus); err != nil {
				return err
			}
		}

		if s.cfg.StrictCustomFields {
			if err := ValidateCustomData(taskType.FieldDefinitions(), input.CustomData); err != nil {
				return err
			}
		}

		n, err := repos.Sequences.Next(s.cfg.DisplayIDPrefix)
		if err != nil {
			return fmt.Errorf("failed to allocate display id: %w", err)
		}

		task = &models.Task{
			DisplayID:   fmt.Sprintf("%s-%d", s.cfg.DisplayIDPrefix, n),
			Title:       title,
			Description: input.Description,
			Status:      status,
			TeamID:      input.TeamID,
			TaskTypeID:  taskType.ID,
			ProjectID:   input.ProjectID,
			ReleaseID:   input.ReleaseID,
			Estimation:  input.Estimation,
			CustomData:  datatypes.JSONMap(input.CustomData),
		}
		if err := repos.Tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, task.ID)
}

// GetTask returns a task with related data and its dependency graph
func (s *TaskService) GetTask(ctx context.Context, id uint64) (*models.Task, error) {
	repos := s.store.Repos(ctx)
	task, err := repos.Tasks.FindByID(id, taskPreloads...)
	if err != nil {
		return nil, lookupError(err, "Task", id)
	}
	return withTaskGraph(repos, task)
}

// GetTaskByDisplayID returns a task by its human-facing id
func (s *TaskService) GetTaskByDisplayID(ctx context.Context, displayID string) (*models.Task, error) {
	repos := s.store.Repos(ctx)
	task, err := repos.Tasks.FindByDisplayID(displayID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundBy("Task", "display_id", displayID)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return withTaskGraph(repos, task)
}

// ListTasks returns tasks matching all given filters, most recently updated first
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.store.Repos(ctx).Tasks.List(repository.TaskFilter{
		TeamID:     input.TeamID,
		TaskTypeID: input.TaskTypeID,
		ProjectID:  input.ProjectID,
		ReleaseID:  input.ReleaseID,
		Statuses:   nonEmpty(input.Statuses),
		Page:       input.Page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTask updates the provided attributes of a task.
// Changed references are checked for existence and status changes are
// checked against the effective type's workflow.
func (s *TaskService) UpdateTask(ctx context.Context, id uint64, input UpdateTaskInput) (*models.Task, error) {
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		task, err := repos.Tasks.FindByID(id)
		if err != nil {
			return lookupError(err, "Task", id)
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return validationError("title cannot be empty", nil)
			}
			task.Title = title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Estimation != nil {
			task.Estimation = *input.Estimation
		}

		if input.TeamID != nil && *input.TeamID != task.TeamID {
			if _, err := repos.Teams.FindByID(*input.TeamID); err != nil {
				return lookupError(err, "Team", *input.TeamID)
			}
			task.TeamID = *input.TeamID
		}

		if input.ClearProject {
			task.ProjectID = nil
		} else if input.ProjectID != nil && !equalID(task.ProjectID, *input.ProjectID) {
			if err := ensureTaskRefs(repos, input.ProjectID, nil); err != nil {
				return err
			}
			task.ProjectID = input.ProjectID
		}

		if input.ClearRelease {
			task.ReleaseID = nil
		} else if input.ReleaseID != nil && !equalID(task.ReleaseID, *input.ReleaseID) {
			if err := ensureTaskRefs(repos, nil, input.ReleaseID); err != nil {
				return err
			}
			task.ReleaseID = input.ReleaseID
		}

		typeChanged := input.TaskTypeID != nil && *input.TaskTypeID != task.TaskTypeID
		if typeChanged || input.Status != nil || (s.cfg.StrictCustomFields && input.CustomData != nil) {
			typeID := task.TaskTypeID
			if typeChanged {
				typeID = *input.TaskTypeID
			}
			taskType, err := repos.TaskTypes.FindByID(typeID)
			if err != nil {
				return lookupError(err, "TaskType", typeID)
			}

			if typeChanged || input.Status != nil {
				status, err := resolveStatus(taskType.Workflow, task.Status, input.Status, constants.FallbackTaskStatus)
				if err != nil {
					return err
				}
				task.Status = status
			}
			task.TaskTypeID = typeID

			// A new type re-checks the stored data against its own fields.
			if s.cfg.StrictCustomFields && (input.CustomData != nil || typeChanged) {
				data := map[string]interface{}(task.CustomData)
				if input.CustomData != nil {
					data = input.CustomData
				}
				if err := ValidateCustomData(taskType.FieldDefinitions(), data); err != nil {
					return err
				}
			}
		}

		if input.CustomData != nil {
			task.CustomData = datatypes.JSONMap(input.CustomData)
		}

		if err := repos.Tasks.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, id)
}

// DeleteTask hard-deletes a task with its links and dependency edges
func (s *TaskService) DeleteTask(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		exists, err := repos.Tasks.Exists(id)
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		if !exists {
			return notFound("Task", id)
		}
		if err := repos.Tasks.Delete(id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// AddDependency records that id depends on dependsOnID. Adding an existing edge is a no-op.
func (s *TaskService) AddDependency(ctx context.Context, id, dependsOnID uint64) (*models.Task, error) {
	if id == dependsOnID {
		return nil, validationError("a task cannot depend on itself", map[string]interface{}{"task_id": id})
	}

	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		for _, tid := range []uint64{id, dependsOnID} {
			exists, err := repos.Tasks.Exists(tid)
			if err != nil {
				return fmt.Errorf("failed to find task: %w", err)
			}
			if !exists {
				return notFound("Task", tid)
			}
		}
		if err := repos.Tasks.AddDependency(id, dependsOnID); err != nil {
			return fmt.Errorf("failed to add dependency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, id)
}

// RemoveDependency removes the edge from id to dependsOnID if it exists
func (s *TaskService) RemoveDependency(ctx context.Context, id, dependsOnID uint64) (*models.Task, error) {
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		exists, err := repos.Tasks.Exists(id)
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		if !exists {
			return notFound("Task", id)
		}
		if err := repos.Tasks.RemoveDependency(id, dependsOnID); err != nil {
			return fmt.Errorf("failed to remove dependency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, id)
}

// GenerateTaskDrafts asks the AI service to extract task drafts from free text.
// Drafts are not persisted.
func (s *TaskService) GenerateTaskDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationError("text is required", nil)
	}

	drafts, err := s.aiService.DraftTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	valid := make([]TaskDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		valid = append(valid, d)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return valid, nil
}

func ensureTaskRefs(repos *repository.Repositories, projectID, releaseID *uint64) error {
	if projectID != nil {
		exists, err := repos.Projects.Exists(*projectID)
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}
		if !exists {
			return notFound("Project", *projectID)
		}
	}
	if releaseID != nil {
		if _, err := repos.Releases.FindByID(*releaseID); err != nil {
			return lookupError(err, "Release", *releaseID)
		}
	}
	return nil
}

func withTaskGraph(repos *repository.Repositories, task *models.Task) (*models.Task, error) {
	var err error
	if task.Dependencies, err = repos.Tasks.Dependencies(task.ID); err != nil {
		return nil, fmt.Errorf("failed to load task dependencies: %w", err)
	}
	if task.Dependents, err = repos.Tasks.Dependents(task.ID); err != nil {
		return nil, fmt.Errorf("failed to load task dependents: %w", err)
	}
	return task, nil
}
