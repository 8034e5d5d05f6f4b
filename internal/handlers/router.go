package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/middleware"
	"github.com/yukikurage/corepm/internal/services"
	"go.uber.org/zap"
)

// Services bundles everything the HTTP layer depends on
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Teams        *services.TeamService
	ProjectTypes *services.ProjectTypeService
	TaskTypes    *services.TaskTypeService
	Projects     *services.ProjectService
	Tasks        *services.TaskService
	Themes       *services.ThemeService
	Releases     *services.ReleaseService
	GitHub       *services.GitHubService
}

// NewRouter builds the gin engine with every route mounted under /api/v1.
func NewRouter(log *zap.Logger, sessionStore sessions.Store, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(svc.Auth, log)
	userHandler := NewUserHandler(svc.Users)
	teamHandler := NewTeamHandler(svc.Teams)
	projectTypeHandler := NewProjectTypeHandler(svc.ProjectTypes)
	taskTypeHandler := NewTaskTypeHandler(svc.TaskTypes)
	projectHandler := NewProjectHandler(svc.Projects)
	taskHandler := NewTaskHandler(svc.Tasks)
	themeHandler := NewThemeHandler(svc.Themes)
	releaseHandler := NewReleaseHandler(svc.Releases)
	githubHandler := NewGitHubHandler(svc.GitHub, log)

	requireAuth := middleware.RequireAuth(svc.Auth)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
	}

	// Signed by GitHub, not by a user session
	api.POST("/github/webhook", githubHandler.Webhook)

	protected := api.Group("")
	protected.Use(requireAuth)

	users := protected.Group("/users")
	users.Use(requireAdmin)
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PATCH("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	teams := protected.Group("/teams")
	{
		teams.GET("", teamHandler.ListTeams)
		teams.POST("", teamHandler.CreateTeam)
		teams.GET("/by-slug/:slug", teamHandler.GetTeamBySlug)
		teams.GET("/:id", teamHandler.GetTeam)
		teams.PATCH("/:id", teamHandler.UpdateTeam)
		teams.DELETE("/:id", requireAdmin, teamHandler.DeleteTeam)
		teams.GET("/:id/stats", teamHandler.GetStats)
		teams.GET("/:id/members", teamHandler.ListMembers)
		teams.POST("/:id/members", teamHandler.AddMember)
		teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)
	}

	projectTypes := protected.Group("/project-types")
	{
		projectTypes.GET("", projectTypeHandler.ListProjectTypes)
		projectTypes.GET("/:id", projectTypeHandler.GetProjectType)
		projectTypes.GET("/:id/stats", projectTypeHandler.GetStats)
		projectTypes.POST("", requireAdmin, projectTypeHandler.CreateProjectType)
		projectTypes.PATCH("/:id", requireAdmin, projectTypeHandler.UpdateProjectType)
		projectTypes.DELETE("/:id", requireAdmin, projectTypeHandler.DeleteProjectType)
		projectTypes.POST("/:id/fields", requireAdmin, projectTypeHandler.AddField)
		projectTypes.PATCH("/:id/fields/:field_id", requireAdmin, projectTypeHandler.UpdateField)
		projectTypes.DELETE("/:id/fields/:field_id", requireAdmin, projectTypeHandler.DeleteField)
		projectTypes.POST("/:id/migrate", requireAdmin, projectTypeHandler.Migrate)
	}

	taskTypes := protected.Group("/task-types")
	{
		taskTypes.GET("", taskTypeHandler.ListTaskTypes)
		taskTypes.GET("/:id", taskTypeHandler.GetTaskType)
		taskTypes.GET("/:id/stats", taskTypeHandler.GetStats)
		taskTypes.POST("", requireAdmin, taskTypeHandler.CreateTaskType)
		taskTypes.PATCH("/:id", requireAdmin, taskTypeHandler.UpdateTaskType)
		taskTypes.DELETE("/:id", requireAdmin, taskTypeHandler.DeleteTaskType)
		taskTypes.POST("/:id/fields", requireAdmin, taskTypeHandler.AddField)
		taskTypes.PATCH("/:id/fields/:field_id", requireAdmin, taskTypeHandler.UpdateField)
		taskTypes.DELETE("/:id/fields/:field_id", requireAdmin, taskTypeHandler.DeleteField)
		taskTypes.POST("/:id/migrate", requireAdmin, taskTypeHandler.Migrate)
	}

	projects := protected.Group("/projects")
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PATCH("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
		projects.POST("/:id/dependencies/:other_id", projectHandler.AddDependency)
		projects.DELETE("/:id/dependencies/:other_id", projectHandler.RemoveDependency)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.POST("/generate", taskHandler.GenerateTasks)
		tasks.GET("/by-display-id/:display_id", taskHandler.GetTaskByDisplayID)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/dependencies/:other_id", taskHandler.AddDependency)
		tasks.DELETE("/:id/dependencies/:other_id", taskHandler.RemoveDependency)
	}

	themes := protected.Group("/themes")
	{
		themes.GET("", themeHandler.ListThemes)
		themes.POST("", themeHandler.CreateTheme)
		themes.POST("/transition", themeHandler.TransitionStatus)
		themes.GET("/:id", themeHandler.GetTheme)
		themes.PATCH("/:id", themeHandler.UpdateTheme)
		themes.DELETE("/:id", themeHandler.DeleteTheme)
	}

	releases := protected.Group("/releases")
	{
		releases.GET("", releaseHandler.ListReleases)
		releases.POST("", releaseHandler.CreateRelease)
		releases.GET("/by-version/:version", releaseHandler.GetReleaseByVersion)
		releases.GET("/:id", releaseHandler.GetRelease)
		releases.PATCH("/:id", releaseHandler.UpdateRelease)
		releases.DELETE("/:id", releaseHandler.DeleteRelease)
	}

	links := protected.Group("/github/links")
	{
		links.GET("", githubHandler.ListLinks)
		links.POST("", githubHandler.CreateLink)
		links.GET("/:id", githubHandler.GetLink)
		links.DELETE("/:id", githubHandler.DeleteLink)
	}

	return r
}
