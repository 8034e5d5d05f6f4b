package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var projectPreloads = []string{"ProjectType", "ProjectType.Fields", "Theme"}

// ProjectService handles project business logic
type ProjectService struct {
	store              *repository.Store
	log                *zap.Logger
	strictCustomFields bool
}

// NewProjectService creates a new ProjectService.
// With strictCustomFields, custom data is validated against the project type's fields.
func NewProjectService(store *repository.Store, log *zap.Logger, strictCustomFields bool) *ProjectService {
	return &ProjectService{store: store, log: log, strictCustomFields: strictCustomFields}
}

// CreateProjectInput represents input for creating a project.
// A nil Status selects the first status of the type's workflow.
type CreateProjectInput struct {
	Title         string
	Description   string
	ProjectTypeID uint64
	ThemeID       *uint64
	Status        *string
	CustomData    map[string]interface{}
}

// UpdateProjectInput represents input for updating a project.
// ClearTheme detaches the theme; a nil CustomData leaves it unchanged.
type UpdateProjectInput struct {
	Title         *string
	Description   *string
	Status        *string
	ProjectTypeID *uint64
	ThemeID       *uint64
	ClearTheme    bool
	CustomData    map[string]interface{}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	ProjectTypeID uint64
	ThemeID       uint64
	Statuses      []string
	Page          utils.PaginationParams
}

// CreateProject creates a project in the default status of its type
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required", nil)
	}

	var project *models.Project
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		projectType, err := repos.ProjectTypes.FindByID(input.ProjectTypeID)
		if err != nil {
			return lookupError(err, "ProjectType", input.ProjectTypeID)
		}
		if input.ThemeID != nil {
			if _, err := repos.Themes.FindByID(*input.ThemeID); err != nil {
				return lookupError(err, "Theme", *input.ThemeID)
			}
		}

		status := defaultStatus(projectType.Workflow, constants.FallbackProjectStatus)
		if input.Status != nil {
			if status, err = resolveStatus(projectType.Workflow, "", input.Status, constants.FallbackProjectStatus); err != nil {
				return err
			}
		}

		if s.strictCustomFields {
			if err := ValidateCustomData(projectType.FieldDefinitions(), input.CustomData); err != nil {
				return err
			}
		}

		project = &models.Project{
			Title:         title,
			Description:   input.Description,
			Status:        status,
			ProjectTypeID: projectType.ID,
			ThemeID:       input.ThemeID,
			CustomData:    datatypes.JSONMap(input.CustomData),
		}
		if err := repos.Projects.Create(project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, project.ID)
}

// GetProject returns a project with its type, theme and dependency graph
func (s *ProjectService) GetProject(ctx context.Context, id uint64) (*models.Project, error) {
	return loadProject(s.store.Repos(ctx), id)
}

// ListProjects returns projects matching all given filters
func (s *ProjectService) ListProjects(ctx context.Context, input ListProjectsInput) ([]models.Project, int64, error) {
	projects, total, err := s.store.Repos(ctx).Projects.List(repository.ProjectFilter{
		ProjectTypeID: input.ProjectTypeID,
		ThemeID:       input.ThemeID,
		Statuses:      nonEmpty(input.Statuses),
		Page:          input.Page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProject updates the provided attributes of a project.
// Status changes are checked against the effective type's workflow.
func (s *ProjectService) UpdateProject(ctx context.Context, id uint64, input UpdateProjectInput) (*models.Project, error) {
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		project, err := repos.Projects.FindByID(id)
		if err != nil {
			return lookupError(err, "Project", id)
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return validationError("title cannot be empty", nil)
			}
			project.Title = title
		}
		if input.Description != nil {
			project.Description = *input.Description
		}

		if input.ClearTheme {
			project.ThemeID = nil
		} else if input.ThemeID != nil && !equalID(project.ThemeID, *input.ThemeID) {
			if _, err := repos.Themes.FindByID(*input.ThemeID); err != nil {
				return lookupError(err, "Theme", *input.ThemeID)
			}
			project.ThemeID = input.ThemeID
		}

		typeChanged := input.ProjectTypeID != nil && *input.ProjectTypeID != project.ProjectTypeID
		if typeChanged || input.Status != nil || (s.strictCustomFields && input.CustomData != nil) {
			typeID := project.ProjectTypeID
			if typeChanged {
				typeID = *input.ProjectTypeID
			}
			projectType, err := repos.ProjectTypes.FindByID(typeID)
			if err != nil {
				return lookupError(err, "ProjectType", typeID)
			}

			if typeChanged || input.Status != nil {
				status, err := resolveStatus(projectType.Workflow, project.Status, input.Status, constants.FallbackProjectStatus)
				if err != nil {
					return err
				}
				project.Status = status
			}
			project.ProjectTypeID = typeID

			// A new type re-checks the stored data against its own fields.
			if s.strictCustomFields && (input.CustomData != nil || typeChanged) {
				data := map[string]interface{}(project.CustomData)
				if input.CustomData != nil {
					data = input.CustomData
				}
				if err := ValidateCustomData(projectType.FieldDefinitions(), data); err != nil {
					return err
				}
			}
		}

		if input.CustomData != nil {
			project.CustomData = datatypes.JSONMap(input.CustomData)
		}

		if err := repos.Projects.Update(project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, id)
}

// DeleteProject deletes a project; its tasks are detached, not deleted
func (s *ProjectService) DeleteProject(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		exists, err := repos.Projects.Exists(id)
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}
		if !exists {
			return notFound("Project", id)
		}

		if err := repos.Tasks.ClearProject(id); err != nil {
			return fmt.Errorf("failed to detach tasks: %w", err)
		}
		if err := repos.Projects.Delete(id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

// AddDependency records that id depends on dependsOnID. Adding an existing edge is a no-op.
func (s *ProjectService) AddDependency(ctx context.Context, id, dependsOnID uint64) (*models.Project, error) {
	if id == dependsOnID {
		return nil, validationError("a project cannot depend on itself", map[string]interface{}{"project_id": id})
	}

	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		for _, pid := range []uint64{id, dependsOnID} {
			exists, err := repos.Projects.Exists(pid)
			if err != nil {
				return fmt.Errorf("failed to find project: %w", err)
			}
			if !exists {
				return notFound("Project", pid)
			}
		}
		if err := repos.Projects.AddDependency(id, dependsOnID); err != nil {
			return fmt.Errorf("failed to add dependency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, id)
}

// RemoveDependency removes the edge from id to dependsOnID if it exists
func (s *ProjectService) RemoveDependency(ctx context.Context, id, dependsOnID uint64) (*models.Project, error) {
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		exists, err := repos.Projects.Exists(id)
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}
		if !exists {
			return notFound("Project", id)
		}
		if err := repos.Projects.RemoveDependency(id, dependsOnID); err != nil {
			return fmt.Errorf("failed to remove dependency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, id)
}

func loadProject(repos *repository.Repositories, id uint64) (*models.Project, error) {
	project, err := repos.Projects.FindByID(id, projectPreloads...)
	if err != nil {
		return nil, lookupError(err, "Project", id)
	}

	if project.Dependencies, err = repos.Projects.Dependencies(id); err != nil {
		return nil, fmt.Errorf("failed to load project dependencies: %w", err)
	}
	if project.Dependents, err = repos.Projects.Dependents(id); err != nil {
		return nil, fmt.Errorf("failed to load project dependents: %w", err)
	}
	return project, nil
}

func equalID(current *uint64, next uint64) bool {
	return current != nil && *current == next
}

// nonEmpty drops blank entries so "?status=" does not filter everything out.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
