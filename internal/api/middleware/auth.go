// Package middleware provides HTTP middleware for the briefing API.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
)

// userIDHeader carries the authenticated user identity set by the
// fronting auth proxy.
const userIDHeader = "X-User-ID"

// userIDContextKey is the echo context key the user ID is stored under.
const userIDContextKey = "user_id"

// APIKeyAuth validates API key from Authorization header.
// Uses constant-time comparison to prevent timing attacks.
func APIKeyAuth(logger *slog.Logger) echo.MiddlewareFunc {
	validAPIKey := os.Getenv("API_KEY")
	if validAPIKey == "" && logger != nil {
		logger.Warn("API_KEY not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			// Skip auth for health endpoints and the browser-initiated
			// OAuth callback, which cannot carry an API key.
			if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/ready") ||
				strings.HasPrefix(path, "/api/oauth/") {
				return next(c)
			}

			// Skip if API_KEY not configured (development mode)
			if validAPIKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if logger != nil {
					logger.Warn("missing authorization header",
						slog.String("ip", c.RealIP()),
						slog.String("path", path))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			// Extract token from "Bearer <token>" format
			token := strings.TrimPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)

			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(validAPIKey)) != 1 {
				if logger != nil {
					logger.Warn("invalid API key attempt",
						slog.String("ip", c.RealIP()),
						slog.String("path", path))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid API key",
					"code":  "UNAUTHORIZED",
				})
			}

			return next(c)
		}
	}
}

// RequireUser extracts the caller identity from the X-User-ID header
// and rejects requests without one. The header is set by the fronting
// auth proxy after session validation.
func RequireUser(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(userIDHeader))
			if userID == "" {
				if logger != nil {
					logger.Warn("request without user identity",
						slog.String("ip", c.RealIP()),
						slog.String("path", c.Path()))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing user identity",
					"code":  "UNAUTHORIZED",
				})
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user ID stored by RequireUser.
// Returns an empty string when the request carried no identity.
func UserID(c echo.Context) string {
	if id, ok := c.Get(userIDContextKey).(string); ok {
		return id
	}
	return strings.TrimSpace(c.Request().Header.Get(userIDHeader))
}
