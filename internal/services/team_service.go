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

// TeamService manages teams, their members and team deletion
type TeamService struct {
	store *repository.Store
	log   *zap.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(store *repository.Store, log *zap.Logger) *TeamService {
	return &TeamService{store: store, log: log}
}

// CreateTeamInput represents input for creating a team
type CreateTeamInput struct {
	Name        string
	Slug        string
	Description string
	Color       string
}

// UpdateTeamInput represents input for updating a team
type UpdateTeamInput struct {
	Name        *string
	Slug        *string
	Description *string
	Color       *string
}

// DeleteTeamInput selects what happens to the team's tasks.
// With DeleteTasks the tasks are removed; otherwise they move to ReassignTasksTo,
// or to the unassigned team when no target is given.
type DeleteTeamInput struct {
	ReassignTasksTo *uint64
	DeleteTasks     bool
}

// DeleteTeamResult reports what happened to the team's tasks
type DeleteTeamResult struct {
	TeamID          uint64
	TasksDeleted    int
	TasksReassigned int
	ReassignedTo    *uint64
}

// TeamStats summarises a team's tasks
type TeamStats struct {
	TeamID           uint64
	TeamName         string
	TaskCount        int
	TaskTypeCount    int64
	IsUnassignedTeam bool
	TasksByStatus    map[string]int
}

// CreateTeam creates a team with a unique slug
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required", nil)
	}
	slug, err := resolveSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Color:       input.Color,
	}

	err = s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if err := ensureTeamSlugFree(repos, slug, 0); err != nil {
			return err
		}
		if err := repos.Teams.Create(team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// GetTeam returns a team with its members
func (s *TeamService) GetTeam(ctx context.Context, id uint64) (*models.Team, error) {
	repos := s.store.Repos(ctx)
	team, err := repos.Teams.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "Team", id)
	}
	if team.Members, err = repos.Teams.ListMembers(id); err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return team, nil
}

// GetTeamBySlug returns a team by slug
func (s *TeamService) GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error) {
	team, err := s.store.Repos(ctx).Teams.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundBy("Team", "slug", slug)
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// ListTeams returns teams ordered by name
func (s *TeamService) ListTeams(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error) {
	teams, total, err := s.store.Repos(ctx).Teams.List(page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

// UpdateTeam updates the provided attributes of a team
func (s *TeamService) UpdateTeam(ctx context.Context, id uint64, input UpdateTeamInput) (*models.Team, error) {
	var team *models.Team
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		team, err = repos.Teams.FindByID(id)
		if err != nil {
			return lookupError(err, "Team", id)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return validationError("name cannot be empty", nil)
			}
			team.Name = name
		}
		if input.Slug != nil {
			slug, err := resolveSlug(*input.Slug, team.Name)
			if err != nil {
				return err
			}
			if slug != team.Slug {
				if team.Slug == constants.UnassignedTeamSlug {
					return validationError("the unassigned team's slug cannot be changed", nil)
				}
				if err := ensureTeamSlugFree(repos, slug, id); err != nil {
					return err
				}
				team.Slug = slug
			}
		}
		if input.Description != nil {
			team.Description = *input.Description
		}
		if input.Color != nil {
			team.Color = *input.Color
		}

		if err := repos.Teams.Update(team); err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam deletes a team after deleting or reassigning its tasks.
// Reassigned tasks take the target team's first task type (lowest id) and that
// type's first workflow status; their previous status is discarded.
func (s *TeamService) DeleteTeam(ctx context.Context, id uint64, input DeleteTeamInput) (*DeleteTeamResult, error) {
	result := &DeleteTeamResult{TeamID: id}

	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		team, err := repos.Teams.FindByID(id)
		if err != nil {
			return lookupError(err, "Team", id)
		}
		if team.Slug == constants.UnassignedTeamSlug {
			return validationError("the unassigned team cannot be deleted", map[string]interface{}{"team_id": id})
		}

		foreign, err := repos.Tasks.CountUsingTeamTypesElsewhere(id)
		if err != nil {
			return fmt.Errorf("failed to check task type usage: %w", err)
		}
		if foreign > 0 {
			return validationError("task types of this team are used by tasks of other teams", map[string]interface{}{
				"team_id":    id,
				"task_count": foreign,
			})
		}

		taskCount, err := repos.Tasks.CountByTeam(id)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}

		if taskCount > 0 {
			if input.DeleteTasks {
				result.TasksDeleted, err = deleteTeamTasks(repos, id)
			} else {
				var target *models.Team
				if target, err = resolveReassignTarget(repos, id, input.ReassignTasksTo); err != nil {
					return err
				}
				result.ReassignedTo = &target.ID
				result.TasksReassigned, err = reassignTeamTasks(repos, id, target.ID)
			}
			if err != nil {
				return err
			}
		}

		if err := repos.TaskTypes.DeleteByTeam(id); err != nil {
			return fmt.Errorf("failed to delete task types: %w", err)
		}
		if err := repos.Teams.DeleteMembers(id); err != nil {
			return fmt.Errorf("failed to delete team members: %w", err)
		}
		if err := repos.Teams.Delete(id); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("deleted team",
		zap.Uint64("team_id", id),
		zap.Int("tasks_deleted", result.TasksDeleted),
		zap.Int("tasks_reassigned", result.TasksReassigned),
	)
	return result, nil
}

func resolveReassignTarget(repos *repository.Repositories, teamID uint64, targetID *uint64) (*models.Team, error) {
	if targetID == nil {
		target, err := repos.Teams.FindBySlug(constants.UnassignedTeamSlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("no reassignment target given and the unassigned team does not exist", nil)
			}
			return nil, fmt.Errorf("failed to find unassigned team: %w", err)
		}
		return target, nil
	}

	if *targetID == teamID {
		return nil, validationError("tasks cannot be reassigned to the team being deleted", map[string]interface{}{"team_id": teamID})
	}
	target, err := repos.Teams.FindByID(*targetID)
	if err != nil {
		return nil, lookupError(err, "Team", *targetID)
	}
	return target, nil
}

func reassignTeamTasks(repos *repository.Repositories, teamID, targetID uint64) (int, error) {
	taskType, err := repos.TaskTypes.FirstByTeam(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, validationError("the target team has no task types", map[string]interface{}{"team_id": targetID})
		}
		return 0, fmt.Errorf("failed to find target task type: %w", err)
	}
	status := defaultStatus(taskType.Workflow, constants.FallbackTaskStatus)

	count := 0
	err = repos.Tasks.ScanByTeam(teamID, func(batch []models.Task) error {
		for _, task := range batch {
			if err := repos.Tasks.Reassign(task.ID, targetID, taskType.ID, status); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reassign tasks: %w", err)
	}
	return count, nil
}

func deleteTeamTasks(repos *repository.Repositories, teamID uint64) (int, error) {
	count := 0
	err := repos.Tasks.ScanByTeam(teamID, func(batch []models.Task) error {
		for _, task := range batch {
			if err := repos.Tasks.Delete(task.ID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return count, nil
}

// AddMember adds a user to a team
func (s *TeamService) AddMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error) {
	var member *models.TeamMember
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Teams.FindByID(teamID); err != nil {
			return lookupError(err, "Team", teamID)
		}
		user, err := repos.Users.FindByID(userID)
		if err != nil {
			return lookupError(err, "User", userID)
		}

		if _, err := repos.Teams.FindMember(teamID, userID); err == nil {
			return validationError("user is already a member of the team", map[string]interface{}{
				"team_id": teamID,
				"user_id": userID,
			})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		member = &models.TeamMember{TeamID: teamID, UserID: userID}
		if err := repos.Teams.AddMember(member); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		member.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes a user from a team
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Teams.FindMember(teamID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationError("user is not a member of the team", map[string]interface{}{
					"team_id": teamID,
					"user_id": userID,
				})
			}
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if err := repos.Teams.RemoveMember(teamID, userID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

// ListMembers lists the members of a team
func (s *TeamService) ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMember, error) {
	repos := s.store.Repos(ctx)
	if _, err := repos.Teams.FindByID(teamID); err != nil {
		return nil, lookupError(err, "Team", teamID)
	}
	members, err := repos.Teams.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// GetStats counts a team's tasks per status
func (s *TeamService) GetStats(ctx context.Context, id uint64) (*TeamStats, error) {
	repos := s.store.Repos(ctx)
	team, err := repos.Teams.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "Team", id)
	}

	typeCount, err := repos.TaskTypes.CountByTeam(id)
	if err != nil {
		return nil, fmt.Errorf("failed to count task types: %w", err)
	}

	scan := func(fn func([]models.Task) error) error {
		return repos.Tasks.ScanByTeam(id, fn)
	}
	total, byStatus, err := tallyStatuses[models.Task](scan)
	if err != nil {
		return nil, fmt.Errorf("failed to collect team stats: %w", err)
	}

	return &TeamStats{
		TeamID:           team.ID,
		TeamName:         team.Name,
		TaskCount:        total,
		TaskTypeCount:    typeCount,
		IsUnassignedTeam: team.Slug == constants.UnassignedTeamSlug,
		TasksByStatus:    byStatus,
	}, nil
}

func ensureTeamSlugFree(repos *repository.Repositories, slug string, exceptID uint64) error {
	existing, err := repos.Teams.FindBySlug(slug)
	if err == nil && existing.ID != exceptID {
		return alreadyExists("Team", "slug", slug)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	return nil
}
