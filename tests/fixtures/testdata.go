// Package fixtures provides builders for test data.
package fixtures

import (
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

// AccountBuilder creates test EmailAccount instances with fluent API
type AccountBuilder struct {
	account models.EmailAccount
}

// NewAccountBuilder creates a new AccountBuilder with sensible defaults
func NewAccountBuilder() *AccountBuilder {
	now := time.Now()
	refresh := "refresh-token"
	return &AccountBuilder{
		account: models.EmailAccount{
			ID:                "acct-1",
			UserID:            "user-1",
			Email:             "user@example.com",
			Provider:          models.ProviderGoogle,
			ProviderAccountID: "google-123",
			RefreshToken:      &refresh,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

// WithID sets the account ID
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.account.ID = id
	return b
}

// WithUserID sets the owning user
func (b *AccountBuilder) WithUserID(userID string) *AccountBuilder {
	b.account.UserID = userID
	return b
}

// WithEmail sets the account email address
func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.account.Email = email
	return b
}

// WithProvider sets the provider
func (b *AccountBuilder) WithProvider(provider string) *AccountBuilder {
	b.account.Provider = provider
	return b
}

// WithProviderAccountID sets the provider-side identity
func (b *AccountBuilder) WithProviderAccountID(id string) *AccountBuilder {
	b.account.ProviderAccountID = id
	return b
}

// WithGuidance sets the briefing guidance
func (b *AccountBuilder) WithGuidance(guidance string) *AccountBuilder {
	b.account.BriefingGuidance = &guidance
	return b
}

// WithCreatedAt sets the creation timestamp
func (b *AccountBuilder) WithCreatedAt(t time.Time) *AccountBuilder {
	b.account.CreatedAt = t
	return b
}

// WithoutTokens clears the stored provider tokens
func (b *AccountBuilder) WithoutTokens() *AccountBuilder {
	b.account.AccessToken = nil
	b.account.RefreshToken = nil
	b.account.TokenExpiresAt = nil
	return b
}

// Build returns the built EmailAccount
func (b *AccountBuilder) Build() models.EmailAccount {
	return b.account
}

// BuildPtr returns a pointer to the built EmailAccount
func (b *AccountBuilder) BuildPtr() *models.EmailAccount {
	account := b.account
	return &account
}

// UserBuilder creates test User instances with fluent API
type UserBuilder struct {
	user models.User
}

// NewUserBuilder creates a new UserBuilder with sensible defaults
func NewUserBuilder() *UserBuilder {
	now := time.Now()
	return &UserBuilder{
		user: models.User{
			ID:        "user-1",
			Email:     "user@example.com",
			Name:      "Test User",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithID sets the user ID
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.ID = id
	return b
}

// WithEmail sets the user email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

// WithPremium grants a premium subscription expiring at the given time
func (b *UserBuilder) WithPremium(tier string, expiresAt time.Time) *UserBuilder {
	b.user.PremiumTier = &tier
	b.user.PremiumExpiresAt = &expiresAt
	return b
}

// Build returns the built User
func (b *UserBuilder) Build() models.User {
	return b.user
}

// BuildPtr returns a pointer to the built User
func (b *UserBuilder) BuildPtr() *models.User {
	user := b.user
	return &user
}

// Messages builds n parsed messages with deterministic IDs msg-1..msg-n.
func Messages(n int) []models.ParsedMessage {
	messages := make([]models.ParsedMessage, n)
	for i := range messages {
		messages[i] = models.ParsedMessage{
			ID: fmt.Sprintf("msg-%d", i+1),
			Headers: models.MessageHeaders{
				From:    fmt.Sprintf("sender%d@example.com", i+1),
				Subject: fmt.Sprintf("Subject %d", i+1),
			},
			Snippet:    fmt.Sprintf("Preview of message %d", i+1),
			ReceivedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
	}
	return messages
}
