package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/models"
	"go.uber.org/zap"
)

func TestTaskService_DisplayIDsAreNeverReused(t *testing.T) {
	env := setupServiceTestEnv(t)
	team, tt := env.createTeamWithType(t, "Platform", "Todo", "Doing")

	first := env.createTask(t, team.ID, tt.ID, "First", "")
	second := env.createTask(t, team.ID, tt.ID, "Second", "")
	assert.Equal(t, "CORE-1", first.DisplayID)
	assert.Equal(t, "CORE-2", second.DisplayID)
	assert.Equal(t, "Todo", first.Status)

	require.NoError(t, env.tasks.DeleteTask(env.ctx, second.ID))

	third := env.createTask(t, team.ID, tt.ID, "Third", "")
	assert.Equal(t, "CORE-3", third.DisplayID)

	got, err := env.tasks.GetTaskByDisplayID(env.ctx, "CORE-3")
	require.NoError(t, err)
	assert.Equal(t, third.ID, got.ID)

	_, err = env.tasks.GetTaskByDisplayID(env.ctx, "CORE-2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_CreateValidatesReferences(t *testing.T) {
	env := setupServiceTestEnv(t)
	team, tt := env.createTeamWithType(t, "Platform", "Todo")

	_, err := env.tasks.CreateTask(env.ctx, CreateTaskInput{Title: "  ", TeamID: team.ID, TaskTypeID: tt.ID})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.tasks.CreateTask(env.ctx, CreateTaskInput{Title: "A", TeamID: 9999, TaskTypeID: tt.ID})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.tasks.CreateTask(env.ctx, CreateTaskInput{Title: "A", TeamID: team.ID, TaskTypeID: tt.ID, ReleaseID: uint64Ptr(9999)})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.tasks.CreateTask(env.ctx, CreateTaskInput{Title: "A", TeamID: team.ID, TaskTypeID: tt.ID, Status: strPtr("Done")})
	require.ErrorIs(t, err, ErrValidation)
}

func TestTaskService_UpdateTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	team, bug := env.createTeamWithType(t, "Platform", "Todo", "Doing", "Done")
	story, err := env.taskTypes.CreateTaskType(env.ctx, CreateTaskTypeInput{TeamID: team.ID, Name: "Story", Workflow: []string{"Idea", "Doing"}})
	require.NoError(t, err)
	release, err := env.releases.CreateRelease(env.ctx, CreateReleaseInput{Version: "1.0.0"})
	require.NoError(t, err)

	task := env.createTask(t, team.ID, bug.ID, "Fix login", "Done")

	// Done is not in the Story workflow, so the status resets.
	got, err := env.tasks.UpdateTask(env.ctx, task.ID, UpdateTaskInput{TaskTypeID: &story.ID})
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.TaskTypeID)
	assert.Equal(t, "Idea", got.Status)

	got, err = env.tasks.UpdateTask(env.ctx, task.ID, UpdateTaskInput{Status: strPtr("Doing"), ReleaseID: &release.ID})
	require.NoError(t, err)
	assert.Equal(t, "Doing", got.Status)
	require.NotNil(t, got.Release)
	assert.Equal(t, "1.0.0", got.Release.Version)

	_, err = env.tasks.UpdateTask(env.ctx, task.ID, UpdateTaskInput{Status: strPtr("Todo")})
	require.ErrorIs(t, err, ErrValidation)

	got, err = env.tasks.UpdateTask(env.ctx, task.ID, UpdateTaskInput{ClearRelease: true, Title: strPtr("Fix login flow")})
	require.NoError(t, err)
	assert.Nil(t, got.ReleaseID)
	assert.Equal(t, "Fix login flow", got.Title)
}

func TestTaskService_Dependencies(t *testing.T) {
	env := setupServiceTestEnv(t)
	team, tt := env.createTeamWithType(t, "Platform", "Todo")
	a := env.createTask(t, team.ID, tt.ID, "A", "")
	b := env.createTask(t, team.ID, tt.ID, "B", "")

	_, err := env.tasks.AddDependency(env.ctx, a.ID, a.ID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.tasks.AddDependency(env.ctx, a.ID, b.ID)
	require.NoError(t, err)
	got, err := env.tasks.AddDependency(env.ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Dependencies, 1)
	assert.Equal(t, b.DisplayID, got.Dependencies[0].DisplayID)

	// Deleting the prerequisite removes the edge with it.
	require.NoError(t, env.tasks.DeleteTask(env.ctx, b.ID))
	got, err = env.tasks.GetTask(env.ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Dependencies)
}

func TestTaskService_ListTasksFilters(t *testing.T) {
	env := setupServiceTestEnv(t)
	platform, bug := env.createTeamWithType(t, "Platform", "Todo", "Doing")
	product, story := env.createTeamWithType(t, "Product", "Idea")
	env.createTask(t, platform.ID, bug.ID, "A", "Todo")
	env.createTask(t, platform.ID, bug.ID, "B", "Doing")
	env.createTask(t, product.ID, story.ID, "C", "")

	tasks, total, err := env.tasks.ListTasks(env.ctx, ListTasksInput{TeamID: platform.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, tasks, 2)

	tasks, total, err = env.tasks.ListTasks(env.ctx, ListTasksInput{TeamID: platform.ID, Statuses: []string{"Doing"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "B", tasks[0].Title)
}

func TestTaskService_GenerateTaskDrafts(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.tasks.GenerateTaskDrafts(env.ctx, "anything")
	require.ErrorIs(t, err, ErrUnavailable)

	content := "```json\n" + `[{"title":"Write docs","description":"API docs","estimation":"2h"},{"title":"  "}]` + "\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				FinishReason: openai.FinishReasonStop,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
		})
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	withAI := NewTaskService(env.store, zap.NewNop(), TaskServiceConfig{DisplayIDPrefix: testTicketPrefix}, NewAIServiceWithConfig(cfg))

	drafts, err := withAI.GenerateTaskDrafts(context.Background(), "We need docs for the API")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Write docs", drafts[0].Title)
	assert.Equal(t, "2h", drafts[0].Estimation)

	_, err = withAI.GenerateTaskDrafts(context.Background(), "   ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestTaskService_TypeChangeRechecksCustomData(t *testing.T) {
	env := setupServiceTestEnv(t)
	team, plain := env.createTeamWithType(t, "Ops", "Open")
	strict, err := env.taskTypes.CreateTaskType(env.ctx, CreateTaskTypeInput{
		TeamID:   team.ID,
		Name:     "Incident",
		Workflow: []string{"Open"},
		Fields: []FieldInput{
			{Key: "severity", FieldType: models.FieldTypeSelect, Options: []string{"low", "high"}, Required: true},
		},
	})
	require.NoError(t, err)

	task := env.createTask(t, team.ID, plain.ID, "Pager", "")

	_, err = env.tasks.UpdateTask(env.ctx, task.ID, UpdateTaskInput{TaskTypeID: &strict.ID})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "is required", DetailsOf(err)["severity"])

	moved, err := env.tasks.UpdateTask(env.ctx, task.ID, UpdateTaskInput{
		TaskTypeID: &strict.ID,
		CustomData: map[string]interface{}{"severity": "high"},
	})
	require.NoError(t, err)
	assert.Equal(t, strict.ID, moved.TaskTypeID)
}
