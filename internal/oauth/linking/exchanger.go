package linking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// Profile is the provider identity fetched after a token exchange.
type Profile struct {
	ProviderAccountID string
	Email             string
	Name              string
	Image             *string
}

// Exchanger redeems authorization codes and fetches provider profiles.
// It is an interface so the callback flow can be tested without a live
// authorization server.
type Exchanger interface {
	AuthorizeURL(provider, state string) (string, error)
	Exchange(ctx context.Context, provider, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, provider string, token *oauth2.Token) (*Profile, error)
}

// httpExchanger is the production Exchanger using golang.org/x/oauth2.
type httpExchanger struct {
	cfg *config.Config
}

// NewExchanger creates the default Exchanger.
func NewExchanger(cfg *config.Config) Exchanger {
	return &httpExchanger{cfg: cfg}
}

// oauthConfig builds the oauth2.Config for a provider's linking flow.
func (e *httpExchanger) oauthConfig(provider string) (*oauth2.Config, error) {
	switch provider {
	case models.ProviderGoogle:
		return &oauth2.Config{
			ClientID:     e.cfg.GoogleClientID,
			ClientSecret: e.cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  fmt.Sprintf("%s/api/oauth/google/linking/callback", e.cfg.BaseURL),
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/gmail.readonly",
			},
		}, nil
	case models.ProviderMicrosoft:
		return &oauth2.Config{
			ClientID:     e.cfg.MicrosoftClientID,
			ClientSecret: e.cfg.MicrosoftClientSecret,
			Endpoint:     microsoft.AzureADEndpoint("common"),
			RedirectURL:  fmt.Sprintf("%s/api/oauth/microsoft/linking/callback", e.cfg.BaseURL),
			Scopes: []string{
				"openid", "email", "profile", "offline_access",
				"https://graph.microsoft.com/Mail.Read",
				"https://graph.microsoft.com/User.Read",
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// AuthorizeURL returns the provider's consent page URL for a new
// linking flow. Offline access is requested so a refresh token is
// issued on first consent.
func (e *httpExchanger) AuthorizeURL(provider, state string) (string, error) {
	conf, err := e.oauthConfig(provider)
	if err != nil {
		return "", err
	}
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if provider == models.ProviderGoogle {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", "consent"))
	}
	return conf.AuthCodeURL(state, opts...), nil
}

// Exchange redeems an authorization code for tokens.
func (e *httpExchanger) Exchange(ctx context.Context, provider, code string) (*oauth2.Token, error) {
	conf, err := e.oauthConfig(provider)
	if err != nil {
		return nil, err
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for tokens: %w", err)
	}
	return token, nil
}

// FetchProfile retrieves the provider's identity for the token holder.
func (e *httpExchanger) FetchProfile(ctx context.Context, provider string, token *oauth2.Token) (*Profile, error) {
	conf, err := e.oauthConfig(provider)
	if err != nil {
		return nil, err
	}
	client := conf.Client(ctx, token)
	client.Timeout = 30 * time.Second

	switch provider {
	case models.ProviderGoogle:
		return fetchGoogleProfile(ctx, client)
	case models.ProviderMicrosoft:
		return fetchMicrosoftProfile(ctx, client)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (*Profile, error) {
	body, err := getBody(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("profile missing required email")
	}

	profile := &Profile{
		ProviderAccountID: info.ID,
		Email:             strings.ToLower(strings.TrimSpace(info.Email)),
		Name:              info.Name,
	}
	if profile.ProviderAccountID == "" {
		profile.ProviderAccountID = profile.Email
	}
	if info.Picture != "" {
		profile.Image = &info.Picture
	}
	return profile, nil
}

func fetchMicrosoftProfile(ctx context.Context, client *http.Client) (*Profile, error) {
	body, err := getBody(ctx, client, "https://graph.microsoft.com/v1.0/me")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}

	var info struct {
		ID                string `json:"id"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
		GivenName         string `json:"givenName"`
		Surname           string `json:"surname"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}

	email := info.Mail
	if email == "" {
		email = info.UserPrincipalName
	}
	if email == "" {
		return nil, fmt.Errorf("profile missing required email")
	}

	name := info.DisplayName
	if name == "" {
		name = info.GivenName
	}
	if name == "" {
		name = info.Surname
	}
	if name == "" {
		name = email
	}

	profile := &Profile{
		ProviderAccountID: info.ID,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Name:              name,
	}
	if profile.ProviderAccountID == "" {
		profile.ProviderAccountID = profile.Email
	}
	return profile, nil
}

func getBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}
