// Package api wires HTTP routes and middleware for the briefing server.
package api

import (
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/handlers"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-briefing-backend/internal/briefing"
	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth/linking"
	"github.com/welldanyogia/webrana-briefing-backend/internal/repository"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB              *gorm.DB
	Config          *config.Config
	BriefingService *briefing.Service
	LinkingService  *linking.Service
	Exchanger       linking.Exchanger
	Logger          *slog.Logger
	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      int      // Requests per second (0 = use env default)
	RateBurst      int      // Burst size for rate limiter
	EnableAuth     bool     // Enable API key authentication
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS - Set environment variable if origins provided in config
	if len(cfg.AllowedOrigins) > 0 {
		os.Setenv("ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	}
	e.Use(middleware.SecureCORS())

	// 4. Rate limiting - use RateLimiterWithConfig if custom values provided
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(float64(cfg.RateLimit), cfg.RateBurst, cfg.Logger))
	} else {
		e.Use(middleware.RateLimiter(cfg.Logger))
	}

	// 5. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	briefingHandler := handlers.NewBriefingHandler(cfg.BriefingService)
	guidanceHandler := handlers.NewGuidanceHandler(accountRepo)
	linkingHandler := handlers.NewLinkingHandler(cfg.Config, cfg.LinkingService, cfg.Exchanger)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// API routes
	api := e.Group("/api")

	// Apply API key authentication if enabled
	// Set API_KEY env var if provided in config
	if cfg.EnableAuth && cfg.APIKey != "" {
		os.Setenv("API_KEY", cfg.APIKey)
	}
	api.Use(middleware.APIKeyAuth(cfg.Logger))

	// Briefing routes
	api.GET("/briefing", briefingHandler.Get, middleware.RequireUser(cfg.Logger))

	// Per-account guidance routes
	accounts := api.Group("/email-accounts", middleware.RequireUser(cfg.Logger))
	accounts.GET("/:id/guidance", guidanceHandler.Get)
	accounts.PUT("/:id/guidance", guidanceHandler.Update)

	// OAuth linking routes (browser-initiated; identity comes from the
	// fronting auth proxy, not the API key)
	oauth := api.Group("/oauth")
	oauth.GET("/:provider/linking/start", linkingHandler.Start)
	oauth.GET("/:provider/linking/callback", linkingHandler.Callback)

	return e
}
