package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth/linking"
	"github.com/welldanyogia/webrana-briefing-backend/tests/mocks"
)

// LinkingHandlerTestSuite is the test suite for LinkingHandler's Start
// endpoint. Callback behavior is covered by the linking service tests;
// here we only check the HTTP wiring around it.
type LinkingHandlerTestSuite struct {
	suite.Suite
	echo          *echo.Echo
	handler       *LinkingHandler
	mockExchanger *mocks.MockExchanger
}

// SetupTest runs before each test
func (s *LinkingHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockExchanger = new(mocks.MockExchanger)
	cfg := &config.Config{
		AppURL:             "https://app.example.com",
		GoogleClientID:     "google-client",
		GoogleClientSecret: "google-secret",
	}
	s.handler = NewLinkingHandler(cfg, nil, s.mockExchanger)
}

// TestLinkingHandlerTestSuite runs the test suite
func TestLinkingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LinkingHandlerTestSuite))
}

func (s *LinkingHandlerTestSuite) createContext(target, provider, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.SetParamNames("provider")
	c.SetParamValues(provider)
	return c, rec
}

func (s *LinkingHandlerTestSuite) TestStart_RedirectsToProvider() {
	var capturedState string
	s.mockExchanger.On("AuthorizeURL", "google", mock.MatchedBy(func(state string) bool {
		capturedState = state
		return true
	})).Return("https://accounts.google.com/o/oauth2/auth?state=x", nil)

	c, rec := s.createContext("/api/oauth/google/linking/start", "google", "user-1")

	err := s.handler.Start(c)

	s.NoError(err)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("https://accounts.google.com/o/oauth2/auth?state=x", rec.Header().Get("Location"))

	// The state cookie holds the same encoded state sent to the provider.
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(stateCookieName, cookies[0].Name)
	s.Equal(capturedState, cookies[0].Value)
	s.True(cookies[0].HttpOnly)

	state, perr := oauth.ParseState(capturedState)
	s.NoError(perr)
	s.Equal("user-1", state.UserID)
	s.Equal(oauth.ActionLink, state.Action)
	s.NotEmpty(state.Nonce)
}

func (s *LinkingHandlerTestSuite) TestStart_MergeAction() {
	var capturedState string
	s.mockExchanger.On("AuthorizeURL", "google", mock.MatchedBy(func(state string) bool {
		capturedState = state
		return true
	})).Return("https://accounts.google.com/o/oauth2/auth", nil)

	c, rec := s.createContext("/api/oauth/google/linking/start?action=merge", "google", "user-1")

	err := s.handler.Start(c)

	s.NoError(err)
	s.Equal(http.StatusFound, rec.Code)

	state, perr := oauth.ParseState(capturedState)
	s.NoError(perr)
	s.Equal(oauth.ActionMerge, state.Action)
}

func (s *LinkingHandlerTestSuite) TestStart_InvalidAction_BadRequest() {
	c, rec := s.createContext("/api/oauth/google/linking/start?action=steal", "google", "user-1")

	err := s.handler.Start(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *LinkingHandlerTestSuite) TestStart_UnsupportedProvider_BadRequest() {
	c, rec := s.createContext("/api/oauth/yahoo/linking/start", "yahoo", "user-1")

	err := s.handler.Start(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *LinkingHandlerTestSuite) TestStart_ProviderNotConfigured_NotFound() {
	// Microsoft credentials are absent from the test config.
	c, rec := s.createContext("/api/oauth/microsoft/linking/start", "microsoft", "user-1")

	err := s.handler.Start(c)

	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *LinkingHandlerTestSuite) TestStart_MissingIdentity_Unauthorized() {
	c, rec := s.createContext("/api/oauth/google/linking/start", "google", "")

	err := s.handler.Start(c)

	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func TestRedirectURL(t *testing.T) {
	handler := NewLinkingHandler(&config.Config{AppURL: "https://app.example.com"}, nil, nil)

	t.Run("success outcome", func(t *testing.T) {
		target := handler.redirectURL(linking.Outcome{Success: linking.SuccessAccountLinked})
		parsed, err := url.Parse(target)
		if err != nil {
			t.Fatalf("invalid redirect URL: %v", err)
		}
		if parsed.Path != "/accounts" {
			t.Errorf("expected /accounts path, got %s", parsed.Path)
		}
		if got := parsed.Query().Get("success"); got != "account_created_and_linked" {
			t.Errorf("unexpected success value: %s", got)
		}
	})

	t.Run("error outcome", func(t *testing.T) {
		target := handler.redirectURL(linking.Outcome{
			Error:            linking.ErrCodeUserMismatch,
			ErrorDescription: "Session expired. Please try again.",
		})
		parsed, err := url.Parse(target)
		if err != nil {
			t.Fatalf("invalid redirect URL: %v", err)
		}
		if got := parsed.Query().Get("error"); got != "user_mismatch" {
			t.Errorf("unexpected error value: %s", got)
		}
		if got := parsed.Query().Get("error_description"); got == "" {
			t.Error("expected error_description to be set")
		}
	})
}
