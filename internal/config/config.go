package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	APIPort int
	BaseURL string
	AppURL  string

	// LLM scoring
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTimeout     time.Duration
	ScoreChunkSize int

	// Briefing
	FetchLimit        int
	SnapshotFreshness time.Duration
	SnapshotMaxAge    int // days

	// OAuth linking
	GoogleClientID        string
	GoogleClientSecret    string
	MicrosoftClientID     string
	MicrosoftClientSecret string

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	// BASE_URL (default derived from API_PORT) - used for OAuth redirect URIs
	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.APIPort)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// APP_URL - frontend origin the OAuth callback redirects back to
	cfg.AppURL = os.Getenv("APP_URL")
	if cfg.AppURL == "" {
		cfg.AppURL = "http://localhost:3000"
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	// LLM_BASE_URL (default: OpenAI)
	cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}

	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")

	// LLM_MODEL (default: gpt-4o-mini)
	cfg.LLMModel = os.Getenv("LLM_MODEL")
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}

	// LLM_TIMEOUT_SECONDS (default: 60)
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LLM_TIMEOUT_SECONDS must be a valid integer: %w", err)
		}
		cfg.LLMTimeout = time.Duration(secs) * time.Second
	} else {
		cfg.LLMTimeout = 60 * time.Second
	}

	// SCORE_CHUNK_SIZE (default: 50) - emails per scoring prompt
	if v := os.Getenv("SCORE_CHUNK_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return nil, fmt.Errorf("SCORE_CHUNK_SIZE must be a positive integer")
		}
		cfg.ScoreChunkSize = size
	} else {
		cfg.ScoreChunkSize = 50
	}

	// BRIEFING_FETCH_LIMIT (default: 100) - per-account message page cap
	if v := os.Getenv("BRIEFING_FETCH_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("BRIEFING_FETCH_LIMIT must be a positive integer")
		}
		cfg.FetchLimit = limit
	} else {
		cfg.FetchLimit = 100
	}

	// SNAPSHOT_FRESHNESS_MINUTES (default: 60) - today's snapshot TTL
	if v := os.Getenv("SNAPSHOT_FRESHNESS_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins < 1 {
			return nil, fmt.Errorf("SNAPSHOT_FRESHNESS_MINUTES must be a positive integer")
		}
		cfg.SnapshotFreshness = time.Duration(mins) * time.Minute
	} else {
		cfg.SnapshotFreshness = time.Hour
	}

	// SNAPSHOT_MAX_AGE_DAYS (default: 90) - history retention window
	if v := os.Getenv("SNAPSHOT_MAX_AGE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("SNAPSHOT_MAX_AGE_DAYS must be a positive integer")
		}
		cfg.SnapshotMaxAge = days
	} else {
		cfg.SnapshotMaxAge = 90
	}

	// OAuth credentials (empty = linking disabled for that provider)
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.MicrosoftClientID = os.Getenv("MICROSOFT_CLIENT_ID")
	cfg.MicrosoftClientSecret = os.Getenv("MICROSOFT_CLIENT_SECRET")

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.ScoreChunkSize < 1 {
		return fmt.Errorf("ScoreChunkSize must be at least 1")
	}
	if c.FetchLimit < 1 {
		return fmt.Errorf("FetchLimit must be at least 1")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required in production")
	}

	return nil
}

// LinkingEnabled reports whether OAuth linking is configured for a provider.
func (c *Config) LinkingEnabled(provider string) bool {
	switch provider {
	case "google":
		return c.GoogleClientID != "" && c.GoogleClientSecret != ""
	case "microsoft":
		return c.MicrosoftClientID != "" && c.MicrosoftClientSecret != ""
	default:
		return false
	}
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("base_url", c.BaseURL),
		slog.String("app_url", c.AppURL),
		slog.String("llm_base_url", c.LLMBaseURL),
		slog.String("llm_model", c.LLMModel),
		slog.Int("score_chunk_size", c.ScoreChunkSize),
		slog.Int("fetch_limit", c.FetchLimit),
		slog.Duration("snapshot_freshness", c.SnapshotFreshness),
		slog.Int("snapshot_max_age_days", c.SnapshotMaxAge),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("llm_api_key_set", c.LLMAPIKey != ""),
		slog.Bool("google_linking", c.LinkingEnabled("google")),
		slog.Bool("microsoft_linking", c.LinkingEnabled("microsoft")),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
