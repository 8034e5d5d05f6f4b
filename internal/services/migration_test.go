package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/corepm/internal/models"
)

type MigrationSuite struct {
	suite.Suite
	env    serviceTestEnv
	source *models.ProjectType
	target *models.ProjectType
}

func (s *MigrationSuite) SetupTest() {
	s.env = setupServiceTestEnv(s.T())
	s.source = s.env.createProjectType(s.T(), "Initiative", "Open", "Done")
	s.target = s.env.createProjectType(s.T(), "Program", "Backlog", "Active", "Closed")
}

func (s *MigrationSuite) TestMigrateProjectsRemapsStatuses() {
	open := s.env.createProject(s.T(), s.source.ID, "Website", "Open")
	done := s.env.createProject(s.T(), s.source.ID, "Billing", "Done")

	result, err := s.env.projectTypes.MigrateProjects(s.env.ctx, s.source.ID, s.target.ID, map[string]string{
		"Open": "Backlog",
		"Done": "Closed",
	})
	s.Require().NoError(err)
	s.Equal(2, result.MigratedCount)
	s.Equal(s.source.ID, result.SourceTypeID)
	s.Equal(s.target.ID, result.TargetTypeID)

	got, err := s.env.projects.GetProject(s.env.ctx, open.ID)
	s.Require().NoError(err)
	s.Equal(s.target.ID, got.ProjectTypeID)
	s.Equal("Backlog", got.Status)

	got, err = s.env.projects.GetProject(s.env.ctx, done.ID)
	s.Require().NoError(err)
	s.Equal("Closed", got.Status)

	stats, err := s.env.projectTypes.GetStats(s.env.ctx, s.source.ID)
	s.Require().NoError(err)
	s.Zero(stats.TotalItems)
}

func (s *MigrationSuite) TestUnmappedStatusFallsBackToTargetDefault() {
	p := s.env.createProject(s.T(), s.source.ID, "Website", "Done")

	result, err := s.env.projectTypes.MigrateProjects(s.env.ctx, s.source.ID, s.target.ID, map[string]string{
		"Open": "Active",
	})
	s.Require().NoError(err)
	s.Equal(1, result.MigratedCount)

	got, err := s.env.projects.GetProject(s.env.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Backlog", got.Status)
}

func (s *MigrationSuite) TestSameSourceAndTargetIsRejected() {
	p := s.env.createProject(s.T(), s.source.ID, "Website", "Done")

	_, err := s.env.projectTypes.MigrateProjects(s.env.ctx, s.source.ID, s.source.ID, nil)
	s.Require().ErrorIs(err, ErrValidation)

	got, err := s.env.projects.GetProject(s.env.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Done", got.Status)
}

func (s *MigrationSuite) TestMappingOutsideTargetWorkflowChangesNothing() {
	p := s.env.createProject(s.T(), s.source.ID, "Website", "Open")

	_, err := s.env.projectTypes.MigrateProjects(s.env.ctx, s.source.ID, s.target.ID, map[string]string{
		"Open": "Shipped",
	})
	s.Require().ErrorIs(err, ErrValidation)
	s.Contains(DetailsOf(err)["invalid_statuses"], "Shipped")

	got, err := s.env.projects.GetProject(s.env.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(s.source.ID, got.ProjectTypeID)
	s.Equal("Open", got.Status)
}

func (s *MigrationSuite) TestMissingTargetIsNotFound() {
	_, err := s.env.projectTypes.MigrateProjects(s.env.ctx, s.source.ID, 9999, nil)
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *MigrationSuite) TestEmptySourceMigratesNothing() {
	result, err := s.env.projectTypes.MigrateProjects(s.env.ctx, s.source.ID, s.target.ID, nil)
	s.Require().NoError(err)
	s.Zero(result.MigratedCount)
}

func (s *MigrationSuite) TestMigrateTasksAcrossTeams() {
	team, bugType := s.env.createTeamWithType(s.T(), "Platform", "Todo", "Doing", "Done")
	_, storyType := s.env.createTeamWithType(s.T(), "Product", "Idea", "Building", "Shipped")

	doing := s.env.createTask(s.T(), team.ID, bugType.ID, "Fix login", "Doing")
	todo := s.env.createTask(s.T(), team.ID, bugType.ID, "Fix logout", "Todo")

	result, err := s.env.taskTypes.MigrateTasks(s.env.ctx, bugType.ID, storyType.ID, map[string]string{
		"Doing": "Building",
	})
	s.Require().NoError(err)
	s.Equal(2, result.MigratedCount)

	got, err := s.env.tasks.GetTask(s.env.ctx, doing.ID)
	s.Require().NoError(err)
	s.Equal(storyType.ID, got.TaskTypeID)
	s.Equal("Building", got.Status)

	got, err = s.env.tasks.GetTask(s.env.ctx, todo.ID)
	s.Require().NoError(err)
	s.Equal("Idea", got.Status)
}

func TestMigrationSuite(t *testing.T) {
	suite.Run(t, new(MigrationSuite))
}
