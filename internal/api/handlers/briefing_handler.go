package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/response"
	"github.com/welldanyogia/webrana-briefing-backend/internal/briefing"
	apperrors "github.com/welldanyogia/webrana-briefing-backend/internal/errors"
)

// BriefingHandler handles briefing HTTP requests
type BriefingHandler struct {
	service *briefing.Service
}

// NewBriefingHandler creates a new BriefingHandler
func NewBriefingHandler(service *briefing.Service) *BriefingHandler {
	return &BriefingHandler{service: service}
}

// Get handles GET /api/briefing.
//
// Without a date parameter it returns a live briefing over the current
// inbox. With date=YYYY-MM-DD it returns the snapshot-backed briefing
// for that UTC day. Date validation failures return 400 with a stable
// errorCode the client branches on.
func (h *BriefingHandler) Get(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthorized(c, "missing user identity")
	}

	result, err := h.service.GetBriefing(c.Request().Context(), userID, c.QueryParam("date"))
	if err != nil {
		if apperrors.IsDateValidation(err) {
			return response.DateError(c, err)
		}
		return response.InternalError(c, "failed to generate briefing")
	}

	return c.JSON(http.StatusOK, result)
}
