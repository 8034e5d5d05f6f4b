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

// ProjectTypeService manages project types, their workflows and custom fields,
// and migrates projects between types.
type ProjectTypeService struct {
	store *repository.Store
	log   *zap.Logger
}

// NewProjectTypeService creates a new ProjectTypeService
func NewProjectTypeService(store *repository.Store, log *zap.Logger) *ProjectTypeService {
	return &ProjectTypeService{store: store, log: log}
}

// CreateProjectTypeInput represents input for creating a project type
type CreateProjectTypeInput struct {
	Name        string
	Slug        string
	Description string
	Color       string
	Workflow    []string
	Fields      []FieldInput
}

// UpdateProjectTypeInput represents input for updating a project type.
// A nil Workflow leaves the workflow unchanged; a non-nil Fields replaces the whole field set.
type UpdateProjectTypeInput struct {
	Name        *string
	Slug        *string
	Description *string
	Color       *string
	Workflow    []string
	Fields      *[]FieldInput
}

// CreateProjectType creates a project type with its fields
func (s *ProjectTypeService) CreateProjectType(ctx context.Context, input CreateProjectTypeInput) (*models.ProjectType, error) {
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

	projectType := &models.ProjectType{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Color:       input.Color,
		Workflow:    workflow,
		Fields:      projectTypeFields(defs),
	}

	err = s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if err := ensureProjectTypeSlugFree(repos, slug, 0); err != nil {
			return err
		}
		if err := repos.ProjectTypes.Create(projectType); err != nil {
			return fmt.Errorf("failed to create project type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProjectType(ctx, projectType.ID)
}

// GetProjectType returns a project type with its fields
func (s *ProjectTypeService) GetProjectType(ctx context.Context, id uint64) (*models.ProjectType, error) {
	projectType, err := s.store.Repos(ctx).ProjectTypes.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "ProjectType", id)
	}
	return projectType, nil
}

// ListProjectTypes returns project types ordered by name
func (s *ProjectTypeService) ListProjectTypes(ctx context.Context, page utils.PaginationParams) ([]models.ProjectType, int64, error) {
	types, total, err := s.store.Repos(ctx).ProjectTypes.List(page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list project types: %w", err)
	}
	return types, total, nil
}

// UpdateProjectType overwrites the provided attributes; fields are replaced atomically
func (s *ProjectTypeService) UpdateProjectType(ctx context.Context, id uint64, input UpdateProjectTypeInput) (*models.ProjectType, error) {
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		projectType, err := repos.ProjectTypes.FindByID(id)
		if err != nil {
			return lookupError(err, "ProjectType", id)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return validationError("name cannot be empty", nil)
			}
			projectType.Name = name
		}
		if input.Slug != nil {
			slug, err := resolveSlug(*input.Slug, projectType.Name)
			if err != nil {
				return err
			}
			if slug != projectType.Slug {
				if err := ensureProjectTypeSlugFree(repos, slug, id); err != nil {
					return err
				}
				projectType.Slug = slug
			}
		}
		if input.Description != nil {
			projectType.Description = *input.Description
		}
		if input.Color != nil {
			projectType.Color = *input.Color
		}
		if input.Workflow != nil {
			workflow, err := normalizeWorkflow(input.Workflow)
			if err != nil {
				return err
			}
			projectType.Workflow = workflow
		}

		if err := repos.ProjectTypes.Update(projectType); err != nil {
			return fmt.Errorf("failed to update project type: %w", err)
		}

		if input.Fields != nil {
			defs, err := buildFieldDefinitions(*input.Fields)
			if err != nil {
				return err
			}
			if err := repos.ProjectTypes.ReplaceFields(id, projectTypeFields(defs)); err != nil {
				return fmt.Errorf("failed to replace project type fields: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProjectType(ctx, id)
}

// DeleteProjectType deletes a project type and its fields.
// It fails while projects still reference the type; migrate them first.
func (s *ProjectTypeService) DeleteProjectType(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.ProjectTypes.FindByID(id); err != nil {
			return lookupError(err, "ProjectType", id)
		}

		count, err := repos.Projects.CountByType(id)
		if err != nil {
			return fmt.Errorf("failed to count projects: %w", err)
		}
		if count > 0 {
			return validationError("project type is still used by projects; migrate them first", map[string]interface{}{
				"project_type_id": id,
				"project_count":   count,
			})
		}

		if err := repos.ProjectTypes.Delete(id); err != nil {
			return fmt.Errorf("failed to delete project type: %w", err)
		}
		return nil
	})
}

// AddField appends a custom field to a project type
func (s *ProjectTypeService) AddField(ctx context.Context, typeID uint64, input FieldInput) (*models.ProjectTypeField, error) {
	var field *models.ProjectTypeField
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		projectType, err := repos.ProjectTypes.FindByID(typeID)
		if err != nil {
			return lookupError(err, "ProjectType", typeID)
		}

		order := len(projectType.Fields)
		if input.Order != nil {
			order = *input.Order
		}
		def, err := buildFieldDefinition(input, order)
		if err != nil {
			return err
		}
		if hasFieldKey(projectType.FieldDefinitions(), def.Key) {
			return alreadyExists("field", "key", def.Key)
		}

		field = &models.ProjectTypeField{ProjectTypeID: typeID, FieldDefinition: def}
		if err := repos.ProjectTypes.CreateField(field); err != nil {
			return fmt.Errorf("failed to create field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

// UpdateField changes the attributes of a project type field
func (s *ProjectTypeService) UpdateField(ctx context.Context, typeID, fieldID uint64, input FieldUpdateInput) (*models.ProjectTypeField, error) {
	var field *models.ProjectTypeField
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		field, err = repos.ProjectTypes.FindField(typeID, fieldID)
		if err != nil {
			return lookupError(err, "ProjectTypeField", fieldID)
		}
		if err := applyFieldUpdate(&field.FieldDefinition, input); err != nil {
			return err
		}
		if err := repos.ProjectTypes.UpdateField(field); err != nil {
			return fmt.Errorf("failed to update field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

// DeleteField removes a field from a project type
func (s *ProjectTypeService) DeleteField(ctx context.Context, typeID, fieldID uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.ProjectTypes.FindField(typeID, fieldID); err != nil {
			return lookupError(err, "ProjectTypeField", fieldID)
		}
		if err := repos.ProjectTypes.DeleteField(fieldID); err != nil {
			return fmt.Errorf("failed to delete field: %w", err)
		}
		return nil
	})
}

// GetStats counts the projects of a type per status
func (s *ProjectTypeService) GetStats(ctx context.Context, id uint64) (*TypeStats, error) {
	repos := s.store.Repos(ctx)
	projectType, err := repos.ProjectTypes.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "ProjectType", id)
	}

	scan := func(fn func([]models.Project) error) error {
		return repos.Projects.ScanByType(id, fn)
	}
	total, byStatus, err := tallyStatuses[models.Project](scan)
	if err != nil {
		return nil, fmt.Errorf("failed to collect project stats: %w", err)
	}

	return &TypeStats{
		TypeID:        projectType.ID,
		TypeName:      projectType.Name,
		Workflow:      projectType.Workflow,
		TotalItems:    total,
		ItemsByStatus: byStatus,
	}, nil
}

// MigrateProjects moves every project of sourceID to targetID, remapping statuses.
// Statuses without a mapping become the target workflow's default.
func (s *ProjectTypeService) MigrateProjects(ctx context.Context, sourceID, targetID uint64, mappings map[string]string) (*MigrationResult, error) {
	if sourceID == targetID {
		return nil, validationError("source and target project types must differ", map[string]interface{}{
			"source_type_id": sourceID,
			"target_type_id": targetID,
		})
	}

	var migrated int
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		target, err := repos.ProjectTypes.FindByID(targetID)
		if err != nil {
			return lookupError(err, "ProjectType", targetID)
		}
		if err := validateStatusMappings(mappings, target.Workflow); err != nil {
			return err
		}

		scan := func(fn func([]models.Project) error) error {
			return repos.Projects.ScanByType(sourceID, fn)
		}
		rebind := func(id uint64, status string) error {
			return repos.Projects.SetTypeAndStatus(id, targetID, status)
		}
		fallback := defaultStatus(target.Workflow, constants.FallbackProjectStatus)

		migrated, err = remapItems[models.Project](scan, mappings, fallback, rebind)
		if err != nil {
			return fmt.Errorf("failed to migrate projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("migrated projects",
		zap.Uint64("source_type_id", sourceID),
		zap.Uint64("target_type_id", targetID),
		zap.Int("count", migrated),
	)
	return &MigrationResult{SourceTypeID: sourceID, TargetTypeID: targetID, MigratedCount: migrated}, nil
}

func ensureProjectTypeSlugFree(repos *repository.Repositories, slug string, exceptID uint64) error {
	existing, err := repos.ProjectTypes.FindBySlug(slug)
	if err == nil && existing.ID != exceptID {
		return alreadyExists("ProjectType", "slug", slug)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	return nil
}

func projectTypeFields(defs []models.FieldDefinition) []models.ProjectTypeField {
	fields := make([]models.ProjectTypeField, len(defs))
	for i, def := range defs {
		fields[i] = models.ProjectTypeField{FieldDefinition: def}
	}
	return fields
}
