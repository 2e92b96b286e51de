package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/response"
	"github.com/welldanyogia/webrana-briefing-backend/internal/repository"
	"github.com/welldanyogia/webrana-briefing-backend/internal/validator"
)

// GuidanceHandler handles per-account briefing guidance requests
type GuidanceHandler struct {
	accounts repository.AccountRepository
}

// NewGuidanceHandler creates a new GuidanceHandler
func NewGuidanceHandler(accounts repository.AccountRepository) *GuidanceHandler {
	return &GuidanceHandler{accounts: accounts}
}

// GuidanceBody is the request and response body for guidance operations.
// A null value means the account falls back to the default guidance.
type GuidanceBody struct {
	BriefingGuidance *string `json:"briefingGuidance"`
}

// Get handles GET /api/email-accounts/:id/guidance
func (h *GuidanceHandler) Get(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthorized(c, "missing user identity")
	}

	guidance, err := h.accounts.GetGuidance(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return response.NotFound(c, "email account not found")
		case errors.Is(err, repository.ErrForbidden):
			return response.Forbidden(c, "email account belongs to another user")
		default:
			return response.InternalError(c, "failed to load guidance")
		}
	}

	return response.Success(c, GuidanceBody{BriefingGuidance: guidance})
}

// Update handles PUT /api/email-accounts/:id/guidance
func (h *GuidanceHandler) Update(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthorized(c, "missing user identity")
	}

	var body GuidanceBody
	if err := c.Bind(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validator.ValidateGuidance(body.BriefingGuidance); err != nil {
		return response.BadRequest(c, "guidance exceeds maximum length")
	}

	err := h.accounts.UpdateGuidance(c.Request().Context(), c.Param("id"), userID, body.BriefingGuidance)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return response.NotFound(c, "email account not found")
		case errors.Is(err, repository.ErrForbidden):
			return response.Forbidden(c, "email account belongs to another user")
		default:
			return response.InternalError(c, "failed to update guidance")
		}
	}

	guidance, err := h.accounts.GetGuidance(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.InternalError(c, "failed to load guidance")
	}

	return response.Success(c, GuidanceBody{BriefingGuidance: guidance})
}
