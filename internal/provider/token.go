package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// oauthHTTPClient builds an HTTP client that attaches and auto-refreshes
// the account's OAuth token. A refresh rejected by the authorization
// server surfaces through the transport as an *oauth2.RetrieveError whose
// message carries the server's error code (e.g. invalid_grant).
func oauthHTTPClient(ctx context.Context, account *models.EmailAccount, clientID, clientSecret string) (*http.Client, error) {
	if account.RefreshToken == nil || *account.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	var endpoint oauth2.Endpoint
	if account.IsGoogle() {
		endpoint = google.Endpoint
	} else {
		endpoint = microsoft.AzureADEndpoint("common")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: *account.RefreshToken,
	}
	if account.AccessToken != nil {
		token.AccessToken = *account.AccessToken
	}
	if account.TokenExpiresAt != nil {
		token.Expiry = *account.TokenExpiresAt
	} else {
		// Force an immediate refresh when expiry is unknown.
		token.Expiry = time.Now().Add(-time.Minute)
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}
