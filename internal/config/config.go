package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	HTTPAddr string
	GinMode  string
	LogLevel string

	RedisHost     string
	RedisPort     string
	SessionSecret string

	JWTSecret         string
	AccessTokenExpiry time.Duration

	TaskIDPrefix        string
	GitHubWebhookSecret string
	StrictCustomFields  bool
	OpenAIAPIKey        string
}

// Load reads configuration from defaults, an optional config file and the environment.
// An empty path skips the config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DBDriver:            strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetString("DB_PORT"),
		DBUser:              v.GetString("DB_USER"),
		DBPassword:          v.GetString("DB_PASSWORD"),
		DBName:              v.GetString("DB_NAME"),
		DBSSLMode:           v.GetString("DB_SSLMODE"),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		GinMode:             v.GetString("GIN_MODE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		RedisHost:           v.GetString("REDIS_HOST"),
		RedisPort:           v.GetString("REDIS_PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		AccessTokenExpiry:   time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		TaskIDPrefix:        v.GetString("TASK_ID_PREFIX"),
		GitHubWebhookSecret: v.GetString("GITHUB_WEBHOOK_SECRET"),
		StrictCustomFields:  v.GetBool("STRICT_CUSTOM_FIELDS"),
		OpenAIAPIKey:        v.GetString("OPENAI_API_KEY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "corepm")
	v.SetDefault("DB_PASSWORD", "corepm")
	v.SetDefault("DB_NAME", "corepm")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "corepm.db")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("JWT_SECRET", "default-jwt-secret-change-me")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*7)
	v.SetDefault("TASK_ID_PREFIX", "CORE")
	v.SetDefault("GITHUB_WEBHOOK_SECRET", "")
	v.SetDefault("STRICT_CUSTOM_FIELDS", false)
	v.SetDefault("OPENAI_API_KEY", "")
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TaskIDPrefix == "" {
		return fmt.Errorf("TASK_ID_PREFIX must not be empty")
	}
	if c.AccessTokenExpiry <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// RedisAddr returns host:port of the session store, or "" when redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
