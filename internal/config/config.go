package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pendergraft/mintfactory/internal/validation"
)

// Config holds all configuration for the records server
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	IdleTimeout    int // seconds
	RequestTimeout int // seconds
	MaxBodySizeKB  int
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type     string // "sqlite" or "postgres"
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

// PostgresConfig holds Postgres connection settings
type PostgresConfig struct {
	URL string
}

// SQLiteConfig holds SQLite settings
type SQLiteConfig struct {
	Path string
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	Type string // "none" or "api-key"
	// APIKeys are accepted alongside keys stored in the database.
	APIKeys []string
}

// Enabled reports whether write routes require an API key.
func (a AuthConfig) Enabled() bool {
	return a.Type == "api-key"
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	BurstSize      int
	CleanupMinutes int
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Enabled bool
}

// DeployConfig holds settings for the collection deployment workflow.
type DeployConfig struct {
	SwitchTimeout  time.Duration
	SigningTimeout time.Duration
	MiningTimeout  time.Duration
	StrictChains   bool
	Artifacts      ArtifactsConfig
}

// ArtifactsConfig selects where contract artifacts are loaded from. A
// registry URL takes precedence over the directory.
type ArtifactsConfig struct {
	Dir         string
	RegistryURL string
	Package     string
	Version     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			Host:           getEnv("HOST", "0.0.0.0"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:    getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			RequestTimeout: getEnvInt("SERVER_REQUEST_TIMEOUT", 30),
			MaxBodySizeKB:  getEnvInt("SERVER_MAX_BODY_SIZE_KB", 64),
		},
		Storage: StorageConfig{
			Type: getEnv("STORAGE_TYPE", "sqlite"),
			Postgres: PostgresConfig{
				URL: getEnv("DATABASE_URL", ""),
			},
			SQLite: SQLiteConfig{
				Path: getEnv("SQLITE_PATH", "./data/mintfactory.db"),
			},
		},
		Auth: AuthConfig{
			Type:    getEnv("AUTH_TYPE", "none"),
			APIKeys: getEnvStringSlice("AUTH_API_KEYS", nil),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMin: getEnvInt("RATE_LIMIT_RPM", 300),
			BurstSize:      getEnvInt("RATE_LIMIT_BURST", 50),
			CleanupMinutes: getEnvInt("RATE_LIMIT_CLEANUP_MINUTES", 10),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	// If DATABASE_URL is set, default to postgres
	if cfg.Storage.Postgres.URL != "" && cfg.Storage.Type == "sqlite" {
		cfg.Storage.Type = "postgres"
	}

	switch cfg.Storage.Type {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_TYPE %q", cfg.Storage.Type)
	}
	switch cfg.Auth.Type {
	case "none", "api-key":
	default:
		return nil, fmt.Errorf("unsupported AUTH_TYPE %q", cfg.Auth.Type)
	}

	return cfg, nil
}

// LoadDeploy loads deployment workflow settings from environment variables.
func LoadDeploy() (*DeployConfig, error) {
	cfg := &DeployConfig{
		SwitchTimeout:  getEnvSeconds("DEPLOY_SWITCH_TIMEOUT", 0),
		SigningTimeout: getEnvSeconds("DEPLOY_SIGNING_TIMEOUT", 0),
		MiningTimeout:  getEnvSeconds("DEPLOY_MINING_TIMEOUT", 0),
		StrictChains:   getEnvBool("STRICT_CHAIN_RESOLUTION", false),
		Artifacts: ArtifactsConfig{
			Dir:         getEnv("ARTIFACTS_DIR", "./artifacts"),
			RegistryURL: getEnv("ARTIFACT_REGISTRY_URL", ""),
			Package:     getEnv("ARTIFACT_PACKAGE", "mintfactory-collections"),
			Version:     getEnv("ARTIFACT_VERSION", ""),
		},
	}

	if cfg.Artifacts.RegistryURL != "" {
		if err := validation.ValidatePackageName(cfg.Artifacts.Package); err != nil {
			return nil, fmt.Errorf("ARTIFACT_PACKAGE: %w", err)
		}
		if err := validation.ValidateVersion(cfg.Artifacts.Version); err != nil {
			return nil, fmt.Errorf("ARTIFACT_VERSION: %w", err)
		}
		cfg.Artifacts.Version = validation.NormalizeVersion(cfg.Artifacts.Version)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvSeconds reads a whole number of seconds. Negative values are treated
// as unset.
func getEnvSeconds(key string, defaultValue int) time.Duration {
	n := getEnvInt(key, defaultValue)
	if n < 0 {
		n = defaultValue
	}
	return time.Duration(n) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
