package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v82/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/dto"
	"github.com/yukikurage/corepm/internal/models"
)

func TestProjectHandler_ThemeCanBeDetachedWithNull(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/project-types", map[string]interface{}{
		"name":     "Initiative",
		"workflow": []string{"New", "Active"},
	}, env.adminToken)
	requireStatus(t, w, http.StatusCreated)
	projectType := decode[models.ProjectType](t, w)

	w = env.request(http.MethodPost, "/api/v1/themes", map[string]interface{}{"title": "Reliability"}, env.userToken)
	requireStatus(t, w, http.StatusCreated)
	theme := decode[models.Theme](t, w)
	assert.Equal(t, "active", theme.Status)

	w = env.request(http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"title":           "Uptime",
		"project_type_id": projectType.ID,
		"theme_id":        theme.ID,
	}, env.userToken)
	requireStatus(t, w, http.StatusCreated)
	project := decode[models.Project](t, w)
	assert.Equal(t, "New", project.Status)
	require.NotNil(t, project.ThemeID)

	path := fmt.Sprintf("/api/v1/projects/%d", project.ID)
	w = env.request(http.MethodPatch, path, map[string]interface{}{"title": "Uptime 2"}, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.NotNil(t, decode[models.Project](t, w).ThemeID)

	w = env.request(http.MethodPatch, path, map[string]interface{}{"theme_id": nil}, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.Nil(t, decode[models.Project](t, w).ThemeID)

	w = env.request(http.MethodGet, fmt.Sprintf("/api/v1/projects?project_type_id=%d", projectType.ID), nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.EqualValues(t, 1, decode[dto.Page[models.Project]](t, w).Total)
}

func TestProjectTypeHandler_DeleteInUseIsRejected(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/project-types", map[string]interface{}{
		"name":     "Initiative",
		"workflow": []string{"New"},
	}, env.adminToken)
	requireStatus(t, w, http.StatusCreated)
	projectType := decode[models.ProjectType](t, w)

	w = env.request(http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"title":           "Busy",
		"project_type_id": projectType.ID,
	}, env.userToken)
	requireStatus(t, w, http.StatusCreated)

	w = env.request(http.MethodDelete, fmt.Sprintf("/api/v1/project-types/%d", projectType.ID), nil, env.adminToken)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestReleaseHandler_PatchClearsDates(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/releases", map[string]interface{}{
		"version":     "2.0.0",
		"target_date": "2026-12-01T00:00:00Z",
	}, env.userToken)
	requireStatus(t, w, http.StatusCreated)
	release := decode[models.Release](t, w)
	require.NotNil(t, release.TargetDate)
	assert.Equal(t, models.ReleaseStatus("planned"), release.Status)

	path := fmt.Sprintf("/api/v1/releases/%d", release.ID)
	w = env.request(http.MethodPatch, path, map[string]interface{}{"title": "Big one"}, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.NotNil(t, decode[models.Release](t, w).TargetDate)

	w = env.request(http.MethodPatch, path, map[string]interface{}{"target_date": nil}, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.Nil(t, decode[models.Release](t, w).TargetDate)

	w = env.request(http.MethodGet, "/api/v1/releases/by-version/2.0.0", nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, release.ID, decode[models.Release](t, w).ID)

	w = env.request(http.MethodPost, "/api/v1/releases", map[string]interface{}{"version": "2.0.0"}, env.userToken)
	requireStatus(t, w, http.StatusConflict)
}

func TestThemeHandler_TransitionStatus(t *testing.T) {
	env := setupHandlerTestEnv(t)
	for _, title := range []string{"A", "B"} {
		requireStatus(t, env.request(http.MethodPost, "/api/v1/themes", map[string]interface{}{"title": title}, env.userToken), http.StatusCreated)
	}

	w := env.request(http.MethodPost, "/api/v1/themes/transition", map[string]string{
		"old_status": "ACTIVE",
		"new_status": "archived",
	}, env.userToken)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		UpdatedCount int64 `json:"updated_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.UpdatedCount)

	w = env.request(http.MethodGet, "/api/v1/themes?status=archived", nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.EqualValues(t, 2, decode[dto.Page[models.Theme]](t, w).Total)
}

func TestTeamHandler_DeleteReassignsTasks(t *testing.T) {
	env := setupHandlerTestEnv(t)
	team, taskType := env.seedTaskType(t, "Mobile", "Todo", "Done")

	w := env.request(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":        "Orphan",
		"team_id":      team.ID,
		"task_type_id": taskType.ID,
	}, env.userToken)
	requireStatus(t, w, http.StatusCreated)
	task := decode[models.Task](t, w)

	path := fmt.Sprintf("/api/v1/teams/%d", team.ID)
	requireStatus(t, env.request(http.MethodDelete, path, nil, env.userToken), http.StatusForbidden)

	w = env.request(http.MethodDelete, path, nil, env.adminToken)
	requireStatus(t, w, http.StatusOK)
	resp := decode[dto.DeleteTeamResponse](t, w)
	assert.Equal(t, 1, resp.TasksReassigned)
	require.NotNil(t, resp.ReassignedTo)

	w = env.request(http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", task.ID), nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, *resp.ReassignedTo, decode[models.Task](t, w).TeamID)
}

func signedWebhook(t *testing.T, env handlerTestEnv, event string, payload map[string]interface{}, secret string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/github/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(github.EventTypeHeader, event)
	req.Header.Set(github.SHA256SignatureHeader, "sha256="+hex.EncodeToString(mac.Sum(nil)))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func pullRequestPayload(action, title string, merged bool) map[string]interface{} {
	state := "open"
	if action == "closed" {
		state = "closed"
	}
	return map[string]interface{}{
		"action": action,
		"number": 7,
		"pull_request": map[string]interface{}{
			"number":   7,
			"title":    title,
			"state":    state,
			"merged":   merged,
			"html_url": "https://github.com/acme/core/pull/7",
			"head":     map[string]interface{}{"ref": "feature/login", "sha": "abc123"},
		},
		"repository": map[string]interface{}{
			"name":      "core",
			"full_name": "acme/core",
			"owner":     map[string]interface{}{"login": "acme"},
		},
	}
}

func TestGitHubHandler_WebhookLinksAndUpdates(t *testing.T) {
	env := setupHandlerTestEnv(t)
	team, taskType := env.seedTaskType(t, "Web", "Todo", "Done")

	w := env.request(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":        "Login page",
		"team_id":      team.ID,
		"task_type_id": taskType.ID,
	}, env.userToken)
	requireStatus(t, w, http.StatusCreated)
	task := decode[models.Task](t, w)

	w = signedWebhook(t, env, "pull_request", pullRequestPayload("opened", task.DisplayID+": login page", false), testWebhookSecret)
	requireStatus(t, w, http.StatusOK)
	linked := decode[dto.WebhookResponse](t, w)
	assert.Equal(t, "linked", linked.Status)
	require.NotNil(t, linked.TaskID)
	assert.Equal(t, task.ID, *linked.TaskID)

	w = signedWebhook(t, env, "pull_request", pullRequestPayload("closed", task.DisplayID+": login page", true), testWebhookSecret)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "updated", decode[dto.WebhookResponse](t, w).Status)

	w = env.request(http.MethodGet, fmt.Sprintf("/api/v1/github/links?task_id=%d", task.ID), nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	page := decode[dto.Page[models.GitHubLink]](t, w)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].PRStatus)
	assert.Equal(t, models.PRStatusMerged, *page.Items[0].PRStatus)
}

func TestGitHubHandler_WebhookRejectsBadSignature(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := signedWebhook(t, env, "pull_request", pullRequestPayload("opened", "CORE-1", false), "wrong-secret")
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestGitHubHandler_WebhookIgnoresOtherEvents(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := signedWebhook(t, env, "push", map[string]interface{}{"ref": "refs/heads/main"}, testWebhookSecret)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "ignored", decode[dto.WebhookResponse](t, w).Status)
}
