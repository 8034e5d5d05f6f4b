package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/auth"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/testutil"
	"go.uber.org/zap"
)

const (
	testPassword      = "supersecret"
	testWebhookSecret = "hook-secret"
)

type handlerTestEnv struct {
	router     *gin.Engine
	services   Services
	adminToken string
	userToken  string
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewStore(testutil.NewDB(t))
	log := zap.NewNop()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	svc := Services{
		Auth:         services.NewAuthService(store, tokens),
		Users:        services.NewUserService(store),
		Teams:        services.NewTeamService(store, log),
		ProjectTypes: services.NewProjectTypeService(store, log),
		TaskTypes:    services.NewTaskTypeService(store, log),
		Projects:     services.NewProjectService(store, log, false),
		Tasks:        services.NewTaskService(store, log, services.TaskServiceConfig{DisplayIDPrefix: "CORE"}, nil),
		Themes:       services.NewThemeService(store, log),
		Releases:     services.NewReleaseService(store),
		GitHub: services.NewGitHubService(store, log, services.GitHubServiceConfig{
			TicketPrefix:  "CORE",
			WebhookSecret: testWebhookSecret,
		}),
	}

	env := handlerTestEnv{
		router:   NewRouter(log, cookie.NewStore([]byte("secret")), svc),
		services: svc,
	}
	env.createUser(t, "admin@example.com", models.UserRoleAdmin)
	env.createUser(t, "member@example.com", models.UserRoleUser)
	env.adminToken = env.login(t, "admin@example.com")
	env.userToken = env.login(t, "member@example.com")
	return env
}

func (e handlerTestEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user, err := e.services.Users.CreateUser(context.Background(), services.CreateUserInput{
		Email:    email,
		Password: testPassword,
		FullName: "Test User",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (e handlerTestEnv) login(t *testing.T, email string) string {
	t.Helper()
	result, err := e.services.Auth.Login(context.Background(), services.LoginInput{Email: email, Password: testPassword})
	require.NoError(t, err)
	return result.AccessToken
}

// request sends a JSON request; an empty token sends no Authorization header.
func (e handlerTestEnv) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

// seedTaskType creates a team with a task type through the API.
func (e handlerTestEnv) seedTaskType(t *testing.T, teamName string, workflow ...string) (models.Team, models.TaskType) {
	t.Helper()
	w := e.request(http.MethodPost, "/api/v1/teams", map[string]interface{}{"name": teamName}, e.adminToken)
	requireStatus(t, w, http.StatusCreated)
	team := decode[models.Team](t, w)

	w = e.request(http.MethodPost, "/api/v1/task-types", map[string]interface{}{
		"team_id":  team.ID,
		"name":     teamName + " Story",
		"workflow": workflow,
	}, e.adminToken)
	requireStatus(t, w, http.StatusCreated)
	return team, decode[models.TaskType](t, w)
}
