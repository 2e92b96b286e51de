// Package provider implements per-account email message sources for the
// supported providers (Gmail, Microsoft Graph).
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

// ErrNoRefreshToken indicates the account has no stored refresh token.
// The aggregator recognizes this signature as a credential failure.
var ErrNoRefreshToken = errors.New("no refresh token available")

// ListOptions filters a message listing request.
type ListOptions struct {
	// Query is a provider-specific search expression (Gmail only).
	Query string

	// After and Before bound the received time, inclusive. Zero values
	// mean unbounded.
	After  time.Time
	Before time.Time

	// MaxResults caps the number of messages returned.
	MaxResults int
}

// ListResult is one page of fetched messages.
type ListResult struct {
	Messages []models.ParsedMessage
}

// MessageSource lists messages for one linked account.
type MessageSource interface {
	GetMessagesWithPagination(ctx context.Context, opts ListOptions) (*ListResult, error)
}

// Factory builds a MessageSource for an email account.
type Factory interface {
	SourceFor(account *models.EmailAccount) (MessageSource, error)
}

// factory builds HTTP-backed sources using the configured OAuth clients.
type factory struct {
	cfg *config.Config
}

// NewFactory creates the default provider factory.
func NewFactory(cfg *config.Config) Factory {
	return &factory{cfg: cfg}
}

// SourceFor returns the message source matching the account's provider.
func (f *factory) SourceFor(account *models.EmailAccount) (MessageSource, error) {
	switch account.Provider {
	case models.ProviderGoogle:
		return NewGmailSource(account, f.cfg.GoogleClientID, f.cfg.GoogleClientSecret), nil
	case models.ProviderMicrosoft:
		return NewOutlookSource(account, f.cfg.MicrosoftClientID, f.cfg.MicrosoftClientSecret), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", account.Provider)
	}
}
