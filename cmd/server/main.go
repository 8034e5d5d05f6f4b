package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/corepm/internal/auth"
	"github.com/yukikurage/corepm/internal/config"
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/handlers"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "corepm",
		Short:         "Project and task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (env vars override it)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations and start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(configPath, func(app *app) error {
					if err := database.Migrate(app.db, app.log); err != nil {
						return err
					}
					return serve(cmd.Context(), app)
				})
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(_ *cobra.Command, _ []string) error {
				return withApp(configPath, func(app *app) error {
					return database.Migrate(app.db, app.log)
				})
			},
		},
		newSeedAdminCmd(&configPath),
	)
	return root
}

func newSeedAdminCmd(configPath *string) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configPath, func(app *app) error {
				if err := database.Migrate(app.db, app.log); err != nil {
					return err
				}
				user, err := services.NewUserService(app.store).CreateUser(cmd.Context(), services.CreateUserInput{
					Email:    email,
					Password: password,
					FullName: name,
					Role:     models.UserRoleAdmin,
				})
				if err != nil {
					return err
				}
				app.log.Info("admin user created", zap.Uint64("user_id", user.ID), zap.String("email", user.Email))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "admin full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	store *repository.Store
}

func withApp(configPath string, fn func(*app) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	defer sqlDB.Close()

	return fn(&app{cfg: cfg, log: log, db: db, store: repository.NewStore(db)})
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if addr := cfg.RedisAddr(); addr != "" {
		rs, err := redisStore.NewStore(10, "tcp", addr, "", "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func newServices(cfg *config.Config, log *zap.Logger, store *repository.Store) handlers.Services {
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Info("OPENAI_API_KEY not set, task generation disabled")
	}

	return handlers.Services{
		Auth:         services.NewAuthService(store, auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiry)),
		Users:        services.NewUserService(store),
		Teams:        services.NewTeamService(store, log),
		ProjectTypes: services.NewProjectTypeService(store, log),
		TaskTypes:    services.NewTaskTypeService(store, log),
		Projects:     services.NewProjectService(store, log, cfg.StrictCustomFields),
		Tasks: services.NewTaskService(store, log, services.TaskServiceConfig{
			DisplayIDPrefix:    cfg.TaskIDPrefix,
			StrictCustomFields: cfg.StrictCustomFields,
		}, aiService),
		Themes:   services.NewThemeService(store, log),
		Releases: services.NewReleaseService(store),
		GitHub: services.NewGitHubService(store, log, services.GitHubServiceConfig{
			TicketPrefix:  cfg.TaskIDPrefix,
			WebhookSecret: cfg.GitHubWebhookSecret,
		}),
	}
}

func serve(ctx context.Context, app *app) error {
	gin.SetMode(app.cfg.GinMode)

	sessionStore, err := newSessionStore(app.cfg)
	if err != nil {
		return err
	}
	if app.cfg.GitHubWebhookSecret == "" {
		app.log.Warn("GITHUB_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	router := handlers.NewRouter(app.log, sessionStore, newServices(app.cfg, app.log, app.store))
	srv := &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
