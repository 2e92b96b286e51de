package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.AppURL)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLMBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 50, cfg.ScoreChunkSize)
	assert.Equal(t, 100, cfg.FetchLimit)
	assert.Equal(t, time.Hour, cfg.SnapshotFreshness)
	assert.Equal(t, 90, cfg.SnapshotMaxAge)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 10.0, cfg.RateLimitRequests)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("API_PORT", "9090")
	t.Setenv("BASE_URL", "https://api.example.com/")
	t.Setenv("APP_URL", "https://app.example.com/")
	t.Setenv("SCORE_CHUNK_SIZE", "25")
	t.Setenv("BRIEFING_FETCH_LIMIT", "200")
	t.Setenv("SNAPSHOT_FRESHNESS_MINUTES", "30")
	t.Setenv("SNAPSHOT_MAX_AGE_DAYS", "30")
	t.Setenv("LLM_TIMEOUT_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.APIPort)
	// Trailing slashes are stripped from URLs.
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "https://app.example.com", cfg.AppURL)
	assert.Equal(t, 25, cfg.ScoreChunkSize)
	assert.Equal(t, 200, cfg.FetchLimit)
	assert.Equal(t, 30*time.Minute, cfg.SnapshotFreshness)
	assert.Equal(t, 30, cfg.SnapshotMaxAge)
	assert.Equal(t, 2*time.Minute, cfg.LLMTimeout)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("API_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidChunkSize(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SCORE_CHUNK_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SCORE_CHUNK_SIZE")
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://localhost/test",
		APIPort:        70000,
		ScoreChunkSize: 50,
		FetchLimit:     100,
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "APIPort")
}

func TestValidateProduction_RequiresAPIKey(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://localhost/test",
		AppEnv:         "production",
		AllowedOrigins: "http://example.com",
		APIKey:         "",
	}

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY is required")
}

func TestValidateProduction_RequiresAllowedOrigins(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://localhost/test",
		AppEnv:         "production",
		APIKey:         "test-key",
		AllowedOrigins: "",
	}

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOWED_ORIGINS is required")
}

func TestValidateProduction_RejectsWildcardOrigins(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://localhost/test",
		AppEnv:         "production",
		APIKey:         "test-key",
		AllowedOrigins: "*",
		LLMAPIKey:      "sk-test",
	}

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard")
}

func TestValidateProduction_RejectsInsecureDatabase(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://localhost/test?sslmode=disable",
		AppEnv:         "production",
		APIKey:         "test-key",
		AllowedOrigins: "https://app.example.com",
		LLMAPIKey:      "sk-test",
	}

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode=disable")
}

func TestValidateProduction_RequiresLLMKey(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://localhost/test",
		AppEnv:         "production",
		APIKey:         "test-key",
		AllowedOrigins: "https://app.example.com",
	}

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestLinkingEnabled(t *testing.T) {
	cfg := &Config{
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
	}

	assert.True(t, cfg.LinkingEnabled("google"))
	assert.False(t, cfg.LinkingEnabled("microsoft"))
	assert.False(t, cfg.LinkingEnabled("yahoo"))
}
