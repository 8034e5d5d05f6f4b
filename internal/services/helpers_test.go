package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/testutil"
	"github.com/yukikurage/corepm/internal/utils"
	"go.uber.org/zap"
)

const testTicketPrefix = "CORE"

type serviceTestEnv struct {
	ctx          context.Context
	store        *repository.Store
	projectTypes *ProjectTypeService
	taskTypes    *TaskTypeService
	projects     *ProjectService
	tasks        *TaskService
	teams        *TeamService
	themes       *ThemeService
	releases     *ReleaseService
	users        *UserService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	store := repository.NewStore(testutil.NewDB(t))
	log := zap.NewNop()

	return serviceTestEnv{
		ctx:          context.Background(),
		store:        store,
		projectTypes: NewProjectTypeService(store, log),
		taskTypes:    NewTaskTypeService(store, log),
		projects:     NewProjectService(store, log, true),
		tasks:        NewTaskService(store, log, TaskServiceConfig{DisplayIDPrefix: testTicketPrefix, StrictCustomFields: true}, nil),
		teams:        NewTeamService(store, log),
		themes:       NewThemeService(store, log),
		releases:     NewReleaseService(store),
		users:        NewUserService(store),
	}
}

func (e serviceTestEnv) createProjectType(t *testing.T, name string, workflow ...string) *models.ProjectType {
	t.Helper()
	pt, err := e.projectTypes.CreateProjectType(e.ctx, CreateProjectTypeInput{Name: name, Workflow: workflow})
	require.NoError(t, err)
	return pt
}

func (e serviceTestEnv) createProject(t *testing.T, typeID uint64, title string, status string) *models.Project {
	t.Helper()
	input := CreateProjectInput{Title: title, ProjectTypeID: typeID}
	if status != "" {
		input.Status = &status
	}
	p, err := e.projects.CreateProject(e.ctx, input)
	require.NoError(t, err)
	return p
}

func (e serviceTestEnv) unassignedTeam(t *testing.T) *models.Team {
	t.Helper()
	team, err := e.teams.GetTeamBySlug(e.ctx, constants.UnassignedTeamSlug)
	require.NoError(t, err)
	return team
}

func (e serviceTestEnv) createTeamWithType(t *testing.T, name string, workflow ...string) (*models.Team, *models.TaskType) {
	t.Helper()
	team, err := e.teams.CreateTeam(e.ctx, CreateTeamInput{Name: name})
	require.NoError(t, err)
	tt, err := e.taskTypes.CreateTaskType(e.ctx, CreateTaskTypeInput{TeamID: team.ID, Name: name + " Task", Workflow: workflow})
	require.NoError(t, err)
	return team, tt
}

func (e serviceTestEnv) createTask(t *testing.T, teamID, typeID uint64, title string, status string) *models.Task {
	t.Helper()
	input := CreateTaskInput{Title: title, TeamID: teamID, TaskTypeID: typeID}
	if status != "" {
		input.Status = &status
	}
	task, err := e.tasks.CreateTask(e.ctx, input)
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

func uint64Ptr(v uint64) *uint64 { return &v }

func intPtr(v int) *int { return &v }

func paginationAll() utils.PaginationParams { return utils.PaginationParams{} }
