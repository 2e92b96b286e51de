package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-briefing-backend/internal/api/response"
	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth/linking"
	"github.com/welldanyogia/webrana-briefing-backend/internal/validator"
)

// stateCookieName holds the encoded state between the start redirect
// and the provider callback.
const stateCookieName = "oauth_linking_state"

// stateCookieTTL bounds how long a started flow stays completable.
const stateCookieTTL = 10 * time.Minute

// LinkingHandler handles the OAuth account-linking endpoints
type LinkingHandler struct {
	cfg       *config.Config
	service   *linking.Service
	exchanger linking.Exchanger
}

// NewLinkingHandler creates a new LinkingHandler
func NewLinkingHandler(cfg *config.Config, service *linking.Service, exchanger linking.Exchanger) *LinkingHandler {
	return &LinkingHandler{cfg: cfg, service: service, exchanger: exchanger}
}

// Start handles GET /api/oauth/:provider/linking/start.
//
// It mints a fresh state (and with it the nonce keying the idempotency
// guard), stores it in an HttpOnly cookie, and redirects the browser to
// the provider's consent page.
func (h *LinkingHandler) Start(c echo.Context) error {
	provider := c.Param("provider")
	if err := validator.ValidateProvider(provider); err != nil {
		return response.BadRequest(c, "unsupported provider")
	}
	if !h.cfg.LinkingEnabled(provider) {
		return response.NotFound(c, fmt.Sprintf("linking is not enabled for provider %q", provider))
	}

	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthorized(c, "missing user identity")
	}

	action := c.QueryParam("action")
	switch action {
	case "":
		action = oauth.ActionLink
	case oauth.ActionLink, oauth.ActionMerge:
	default:
		return response.BadRequest(c, "action must be link or merge")
	}

	state := oauth.NewState(userID, action)
	encoded := state.Encode()

	authURL, err := h.exchanger.AuthorizeURL(provider, encoded)
	if err != nil {
		return response.InternalError(c, "failed to build authorization URL")
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, authURL)
}

// Callback handles GET /api/oauth/:provider/linking/callback.
//
// The outcome is always delivered as a redirect back to the app's
// accounts page; success and error land in query parameters rather than
// response bodies because the caller is a browser mid-redirect.
func (h *LinkingHandler) Callback(c echo.Context) error {
	provider := c.Param("provider")
	if err := validator.ValidateProvider(provider); err != nil {
		return response.BadRequest(c, "unsupported provider")
	}
	if !h.cfg.LinkingEnabled(provider) {
		return response.NotFound(c, fmt.Sprintf("linking is not enabled for provider %q", provider))
	}

	storedState := ""
	if cookie, err := c.Cookie(stateCookieName); err == nil {
		storedState = cookie.Value
	}

	params := linking.CallbackParams{
		Provider:            provider,
		Code:                c.QueryParam("code"),
		UpstreamError:       c.QueryParam("error"),
		UpstreamErrorDesc:   c.QueryParam("error_description"),
		ReceivedState:       c.QueryParam("state"),
		StoredState:         storedState,
		AuthenticatedUserID: middleware.UserID(c),
	}

	outcome := h.service.HandleCallback(c.Request().Context(), params)

	// The state cookie is single-use.
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.Redirect(http.StatusFound, h.redirectURL(outcome))
}

// redirectURL builds the accounts-page URL carrying the outcome.
func (h *LinkingHandler) redirectURL(outcome linking.Outcome) string {
	q := url.Values{}
	if outcome.Failed() {
		q.Set("error", outcome.Error)
		if outcome.ErrorDescription != "" {
			q.Set("error_description", outcome.ErrorDescription)
		}
	} else {
		q.Set("success", outcome.Success)
	}
	return fmt.Sprintf("%s/accounts?%s", h.cfg.AppURL, q.Encode())
}
