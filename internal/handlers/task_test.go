package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/models"
)

// TaskHandlerTestSuite exercises the task routes end to end
type TaskHandlerTestSuite struct {
	suite.Suite
	env      handlerTestEnv
	team     models.Team
	taskType models.TaskType
}

func (s *TaskHandlerTestSuite) SetupTest() {
	s.env = setupHandlerTestEnv(s.T())
	s.team, s.taskType = s.env.seedTaskType(s.T(), "Platform", "Todo", "Doing", "Done")
}

func (s *TaskHandlerTestSuite) createTask(title string, extra map[string]interface{}) models.Task {
	body := map[string]interface{}{
		"title":        title,
		"team_id":      s.team.ID,
		"task_type_id": s.taskType.ID,
	}
	for k, v := range extra {
		body[k] = v
	}
	w := s.env.request(http.MethodPost, "/api/v1/tasks", body, s.env.userToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Task](s.T(), w)
}

func (s *TaskHandlerTestSuite) TestCreateTaskAssignsDisplayIDAndDefaultStatus() {
	first := s.createTask("First", nil)
	second := s.createTask("Second", nil)

	s.Equal("CORE-1", first.DisplayID)
	s.Equal("CORE-2", second.DisplayID)
	s.Equal("Todo", first.Status)

	w := s.env.request(http.MethodGet, "/api/v1/tasks/by-display-id/CORE-2", nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(second.ID, decode[models.Task](s.T(), w).ID)
}

func (s *TaskHandlerTestSuite) TestCreateTaskRejectsStatusOutsideWorkflow() {
	w := s.env.request(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":        "Bad",
		"team_id":      s.team.ID,
		"task_type_id": s.taskType.ID,
		"status":       "Shipped",
	}, s.env.userToken)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidation, decode[apierrors.APIError](s.T(), w).Code)
}

func (s *TaskHandlerTestSuite) TestCreateTaskRequiresTitle() {
	w := s.env.request(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"team_id":      s.team.ID,
		"task_type_id": s.taskType.ID,
	}, s.env.userToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestGetTaskErrors() {
	s.Equal(http.StatusBadRequest, s.env.request(http.MethodGet, "/api/v1/tasks/abc", nil, s.env.userToken).Code)
	s.Equal(http.StatusNotFound, s.env.request(http.MethodGet, "/api/v1/tasks/999", nil, s.env.userToken).Code)
	s.Equal(http.StatusUnauthorized, s.env.request(http.MethodGet, "/api/v1/tasks", nil, "").Code)
}

func (s *TaskHandlerTestSuite) TestUpdateTaskDistinguishesNullFromAbsent() {
	w := s.env.request(http.MethodPost, "/api/v1/releases", map[string]interface{}{"version": "1.0.0"}, s.env.userToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	release := decode[models.Release](s.T(), w)

	task := s.createTask("Ship it", map[string]interface{}{"release_id": release.ID})
	s.Require().NotNil(task.ReleaseID)

	// Absent release_id leaves it untouched.
	w = s.env.request(http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%d", task.ID), map[string]interface{}{"status": "Doing"}, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Task](s.T(), w)
	s.Equal("Doing", updated.Status)
	s.Require().NotNil(updated.ReleaseID)
	s.Equal(release.ID, *updated.ReleaseID)

	// Explicit null clears it.
	w = s.env.request(http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%d", task.ID), map[string]interface{}{"release_id": nil}, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Nil(decode[models.Task](s.T(), w).ReleaseID)
}

func (s *TaskHandlerTestSuite) TestUpdateTaskRejectsInvalidStatus() {
	task := s.createTask("Task", nil)
	w := s.env.request(http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%d", task.ID), map[string]interface{}{"status": "Nope"}, s.env.userToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestDependencies() {
	a := s.createTask("A", nil)
	b := s.createTask("B", nil)
	path := fmt.Sprintf("/api/v1/tasks/%d/dependencies/%d", a.ID, b.ID)

	w := s.env.request(http.MethodPost, path, nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	withDep := decode[models.Task](s.T(), w)
	s.Require().Len(withDep.Dependencies, 1)
	s.Equal(b.ID, withDep.Dependencies[0].ID)

	self := fmt.Sprintf("/api/v1/tasks/%d/dependencies/%d", a.ID, a.ID)
	s.Equal(http.StatusBadRequest, s.env.request(http.MethodPost, self, nil, s.env.userToken).Code)

	missing := fmt.Sprintf("/api/v1/tasks/%d/dependencies/999", a.ID)
	s.Equal(http.StatusNotFound, s.env.request(http.MethodPost, missing, nil, s.env.userToken).Code)

	w = s.env.request(http.MethodDelete, path, nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Empty(decode[models.Task](s.T(), w).Dependencies)
}

func (s *TaskHandlerTestSuite) TestListTasksFiltersAndPaginates() {
	s.createTask("One", nil)
	s.createTask("Two", map[string]interface{}{"status": "Done"})
	s.createTask("Three", map[string]interface{}{"status": "Done"})

	w := s.env.request(http.MethodGet, "/api/v1/tasks?status=Done&limit=1", nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code)
	page := decode[dto.Page[models.Task]](s.T(), w)
	s.EqualValues(2, page.Total)
	s.Len(page.Items, 1)
	s.Equal(1, page.Limit)

	w = s.env.request(http.MethodGet, "/api/v1/tasks?team_id=abc", nil, s.env.userToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestDeleteTask() {
	task := s.createTask("Gone", nil)
	path := fmt.Sprintf("/api/v1/tasks/%d", task.ID)

	s.Equal(http.StatusNoContent, s.env.request(http.MethodDelete, path, nil, s.env.userToken).Code)
	s.Equal(http.StatusNotFound, s.env.request(http.MethodGet, path, nil, s.env.userToken).Code)
}

func (s *TaskHandlerTestSuite) TestGenerateTasksWithoutAI() {
	w := s.env.request(http.MethodPost, "/api/v1/tasks/generate", map[string]string{"text": "build a thing"}, s.env.userToken)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(apierrors.ErrCodeServiceUnavailable, decode[apierrors.APIError](s.T(), w).Code)
}

func (s *TaskHandlerTestSuite) TestTypeMutationsRequireAdmin() {
	w := s.env.request(http.MethodPost, "/api/v1/task-types", map[string]interface{}{
		"team_id":  s.team.ID,
		"name":     "Bug",
		"workflow": []string{"Open"},
	}, s.env.userToken)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.env.request(http.MethodGet, fmt.Sprintf("/api/v1/task-types?team_id=%d", s.team.ID), nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(1, decode[dto.Page[models.TaskType]](s.T(), w).Total)
}

func (s *TaskHandlerTestSuite) TestMigrateTaskType() {
	task := s.createTask("Moving", map[string]interface{}{"status": "Doing"})

	w := s.env.request(http.MethodPost, "/api/v1/task-types", map[string]interface{}{
		"team_id":  s.team.ID,
		"name":     "Bug",
		"workflow": []string{"Open", "In Progress", "Closed"},
	}, s.env.adminToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	target := decode[models.TaskType](s.T(), w)

	w = s.env.request(http.MethodPost, fmt.Sprintf("/api/v1/task-types/%d/migrate", s.taskType.ID), map[string]interface{}{
		"target_type_id":  target.ID,
		"status_mappings": map[string]string{"Doing": "In Progress"},
	}, s.env.adminToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(1, decode[dto.MigrationResultDTO](s.T(), w).MigratedCount)

	w = s.env.request(http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", task.ID), nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code)
	moved := decode[models.Task](s.T(), w)
	s.Equal(target.ID, moved.TaskTypeID)
	s.Equal("In Progress", moved.Status)

	w = s.env.request(http.MethodGet, fmt.Sprintf("/api/v1/task-types/%d/stats", target.ID), nil, s.env.userToken)
	s.Require().Equal(http.StatusOK, w.Code)
	stats := decode[dto.TypeStatsDTO](s.T(), w)
	s.Equal(1, stats.TotalItems)
	s.Equal(1, stats.ItemsByStatus["In Progress"])
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
