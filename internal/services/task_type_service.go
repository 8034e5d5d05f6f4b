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
	"gorm.io/gorm"
)

// TaskTypeService manages team-scoped task types, their workflows and custom fields,
// and migrates tasks between types.
type TaskTypeService struct {
	store *repository.Store
	log   *zap.Logger
}

// NewTaskTypeService creates a new TaskTypeService
func NewTaskTypeService(store *repository.Store, log *zap.Logger) *TaskTypeService {
	return &TaskTypeService{store: store, log: log}
}

// CreateTaskTypeInput represents input for creating a task type
type CreateTaskTypeInput struct {
	TeamID      uint64
	Name        string
	Slug        string
	Description string
	Color       string
	Workflow    []string
	Fields      []FieldInput
}

// UpdateTaskTypeInput represents input for updating a task type.
// A nil Workflow leaves the workflow unchanged; a non-nil Fields replaces the whole field set.
type UpdateTaskTypeInput struct {
	Name        *string
	Slug        *string
	Description *string
	Color       *string
	Workflow    []string
	Fields      *[]FieldInput
}

// CreateTaskType creates a task type for a team
func (s *TaskTypeService) CreateTaskType(ctx context.Context, input CreateTaskTypeInput) (*models.TaskType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required", nil)
	}
	slug, err := resolveSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}
	workflow, err := normalizeWorkflow(input.Workflow)
	if err != nil {
		return nil, err
	}
	defs, err := buildFieldDefinitions(input.Fields)
	if err != nil {
		return nil, err
	}

	taskType := &models.TaskType{
		TeamID:      input.TeamID,
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Color:       input.Color,
		Workflow:    workflow,
		Fields:      taskTypeFields(defs),
	}

	err = s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Teams.FindByID(input.TeamID); err != nil {
			return lookupError(err, "Team", input.TeamID)
		}
		if err := ensureTaskTypeSlugFree(repos, input.TeamID, slug, 0); err != nil {
			return err
		}
		if err := repos.TaskTypes.Create(taskType); err != nil {
			return fmt.Errorf("failed to create task type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTaskType(ctx, taskType.ID)
}

// GetTaskType returns a task type with its fields
func (s *TaskTypeService) GetTaskType(ctx context.Context, id uint64) (*models.TaskType, error) {
	taskType, err := s.store.Repos(ctx).TaskTypes.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "TaskType", id)
	}
	return taskType, nil
}

// ListTaskTypes returns task types, optionally restricted to one team
func (s *TaskTypeService) ListTaskTypes(ctx context.Context, teamID uint64, page utils.PaginationParams) ([]models.TaskType, int64, error) {
	types, total, err := s.store.Repos(ctx).TaskTypes.List(repository.TaskTypeFilter{TeamID: teamID, Page: page})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list task types: %w", err)
	}
	return types, total, nil
}

// UpdateTaskType overwrites the provided attributes; fields are replaced atomically
func (s *TaskTypeService) UpdateTaskType(ctx context.Context, id uint64, input UpdateTaskTypeInput) (*models.TaskType, error) {
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		taskType, err := repos.TaskTypes.FindByID(id)
		if err != nil {
			return lookupError(err, "TaskType", id)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return validationError("name cannot be empty", nil)
			}
			taskType.Name = name
		}
		if input.Slug != nil {
			slug, err := resolveSlug(*input.Slug, taskType.Name)
			if err != nil {
				return err
			}
			if slug != taskType.Slug {
				if err := ensureTaskTypeSlugFree(repos, taskType.TeamID, slug, id); err != nil {
					return err
				}
				taskType.Slug = slug
			}
		}
		if input.Description != nil {
			taskType.Description = *input.Description
		}
		if input.Color != nil {
			taskType.Color = *input.Color
		}
		if input.Workflow != nil {
			workflow, err := normalizeWorkflow(input.Workflow)
			if err != nil {
				return err
			}
			taskType.Workflow = workflow
		}

		if err := repos.TaskTypes.Update(taskType); err != nil {
			return fmt.Errorf("failed to update task type: %w", err)
		}

		if input.Fields != nil {
			defs, err := buildFieldDefinitions(*input.Fields)
			if err != nil {
				return err
			}
			if err := repos.TaskTypes.ReplaceFields(id, taskTypeFields(defs)); err != nil {
				return fmt.Errorf("failed to replace task type fields: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTaskType(ctx, id)
}

// DeleteTaskType deletes a task type and its fields.
// It fails while tasks still reference the type; migrate them first.
func (s *TaskTypeService) DeleteTaskType(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.TaskTypes.FindByID(id); err != nil {
			return lookupError(err, "TaskType", id)
		}

		count, err := repos.Tasks.CountByType(id)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		if count > 0 {
			return validationError("task type is still used by tasks; migrate them first", map[string]interface{}{
				"task_type_id": id,
				"task_count":   count,
			})
		}

		if err := repos.TaskTypes.Delete(id); err != nil {
			return fmt.Errorf("failed to delete task type: %w", err)
		}
		return nil
	})
}

// AddField appends a custom field to a task type
func (s *TaskTypeService) AddField(ctx context.Context, typeID uint64, input FieldInput) (*models.TaskTypeField, error) {
	var field *models.TaskTypeField
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		taskType, err := repos.TaskTypes.FindByID(typeID)
		if err != nil {
			return lookupError(err, "TaskType", typeID)
		}

		order := len(taskType.Fields)
		if input.Order != nil {
			order = *input.Order
		}
		def, err := buildFieldDefinition(input, order)
		if err != nil {
			return err
		}
		if hasFieldKey(taskType.FieldDefinitions(), def.Key) {
			return alreadyExists("field", "key", def.Key)
		}

		field = &models.TaskTypeField{TaskTypeID: typeID, FieldDefinition: def}
		if err := repos.TaskTypes.CreateField(field); err != nil {
			return fmt.Errorf("failed to create field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

// UpdateField changes the attributes of a task type field
func (s *TaskTypeService) UpdateField(ctx context.Context, typeID, fieldID uint64, input FieldUpdateInput) (*models.TaskTypeField, error) {
	var field *models.TaskTypeField
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		field, err = repos.TaskTypes.FindField(typeID, fieldID)
		if err != nil {
			return lookupError(err, "TaskTypeField", fieldID)
		}
		if err := applyFieldUpdate(&field.FieldDefinition, input); err != nil {
			return err
		}
		if err := repos.TaskTypes.UpdateField(field); err != nil {
			return fmt.Errorf("failed to update field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

// DeleteField removes a field from a task type
func (s *TaskTypeService) DeleteField(ctx context.Context, typeID, fieldID uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.TaskTypes.FindField(typeID, fieldID); err != nil {
			return lookupError(err, "TaskTypeField", fieldID)
		}
		if err := repos.TaskTypes.DeleteField(fieldID); err != nil {
			return fmt.Errorf("failed to delete field: %w", err)
		}
		return nil
	})
}

// GetStats counts the tasks of a type per status
func (s *TaskTypeService) GetStats(ctx context.Context, id uint64) (*TypeStats, error) {
	repos := s.store.Repos(ctx)
	taskType, err := repos.TaskTypes.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "TaskType", id)
	}

	scan := func(fn func([]models.Task) error) error {
		return repos.Tasks.ScanByType(id, fn)
	}
	total, byStatus, err := tallyStatuses[models.Task](scan)
	if err != nil {
		return nil, fmt.Errorf("failed to collect task stats: %w", err)
	}

	return &TypeStats{
		TypeID:        taskType.ID,
		TypeName:      taskType.Name,
		Workflow:      taskType.Workflow,
		TotalItems:    total,
		ItemsByStatus: byStatus,
	}, nil
}

// MigrateTasks moves every task of sourceID to targetID, remapping statuses.
// Statuses without a mapping become the target workflow's default.
func (s *TaskTypeService) MigrateTasks(ctx context.Context, sourceID, targetID uint64, mappings map[string]string) (*MigrationResult, error) {
	if sourceID == targetID {
		return nil, validationError("source and target task types must differ", map[string]interface{}{
			"source_type_id": sourceID,
			"target_type_id": targetID,
		})
	}

	var migrated int
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		target, err := repos.TaskTypes.FindByID(targetID)
		if err != nil {
			return lookupError(err, "TaskType", targetID)
		}
		if err := validateStatusMappings(mappings, target.Workflow); err != nil {
			return err
		}

		scan := func(fn func([]models.Task) error) error {
			return repos.Tasks.ScanByType(sourceID, fn)
		}
		rebind := func(id uint64, status string) error {
			return repos.Tasks.SetTypeAndStatus(id, targetID, status)
		}
		fallback := defaultStatus(target.Workflow, constants.FallbackTaskStatus)

		migrated, err = remapItems[models.Task](scan, mappings, fallback, rebind)
		if err != nil {
			return fmt.Errorf("failed to migrate tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("migrated tasks",
		zap.Uint64("source_type_id", sourceID),
		zap.Uint64("target_type_id", targetID),
		zap.Int("count", migrated),
	)
	return &MigrationResult{SourceTypeID: sourceID, TargetTypeID: targetID, MigratedCount: migrated}, nil
}

func ensureTaskTypeSlugFree(repos *repository.Repositories, teamID uint64, slug string, exceptID uint64) error {
	existing, err := repos.TaskTypes.FindBySlug(teamID, slug)
	if err == nil && existing.ID != exceptID {
		return alreadyExists("TaskType", "slug", slug)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	return nil
}

func taskTypeFields(defs []models.FieldDefinition) []models.TaskTypeField {
	fields := make([]models.TaskTypeField, len(defs))
	for i, def := range defs {
		fields[i] = models.TaskTypeField{FieldDefinition: def}
	}
	return fields
}
