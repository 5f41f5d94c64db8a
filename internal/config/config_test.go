package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "./data/mintfactory.db", cfg.Storage.SQLite.Path)
	assert.False(t, cfg.Auth.Enabled())
	assert.Empty(t, cfg.Auth.APIKeys)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/mf")
	t.Setenv("AUTH_TYPE", "api-key")
	t.Setenv("AUTH_API_KEYS", "one, two ,,")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, []string{"one", "two"}, cfg.Auth.APIKeys)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 300, cfg.RateLimit.RequestsPerMin)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_TYPE", "mysql"},
		{"AUTH_TYPE", "oauth"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDeploy(t *testing.T) {
	t.Setenv("DEPLOY_SWITCH_TIMEOUT", "60")
	t.Setenv("DEPLOY_MINING_TIMEOUT", "-5")
	t.Setenv("STRICT_CHAIN_RESOLUTION", "1")

	cfg, err := LoadDeploy()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.SwitchTimeout)
	assert.Zero(t, cfg.SigningTimeout)
	assert.Zero(t, cfg.MiningTimeout)
	assert.True(t, cfg.StrictChains)
	assert.Empty(t, cfg.Artifacts.RegistryURL)
}

func TestLoadDeploy_Registry(t *testing.T) {
	t.Setenv("ARTIFACT_REGISTRY_URL", "http://localhost:8080")

	t.Run("valid version", func(t *testing.T) {
		t.Setenv("ARTIFACT_VERSION", "v1.2.0")
		cfg, err := LoadDeploy()
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", cfg.Artifacts.Version)
		assert.Equal(t, "mintfactory-collections", cfg.Artifacts.Package)
	})

	t.Run("missing version", func(t *testing.T) {
		_, err := LoadDeploy()
		assert.Error(t, err)
	})

	t.Run("partial version", func(t *testing.T) {
		t.Setenv("ARTIFACT_VERSION", "1.2")
		_, err := LoadDeploy()
		assert.Error(t, err)
	})

	t.Run("bad package", func(t *testing.T) {
		t.Setenv("ARTIFACT_VERSION", "1.0.0")
		t.Setenv("ARTIFACT_PACKAGE", "Bad_Name")
		_, err := LoadDeploy()
		assert.Error(t, err)
	})
}
