package models

import (
	"time"
)

// Supported email providers
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

// EmailAccount represents a linked email provider account owned by a user.
// BriefingGuidance holds user-authored scoring instructions for the daily
// briefing; NULL means "use the built-in default guidance".
type EmailAccount struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	UserID            string     `gorm:"not null;size:36;index" json:"user_id"`
	Email             string     `gorm:"not null;size:255;index" json:"email"`
	Provider          string     `gorm:"not null;size:50" json:"provider"`
	ProviderAccountID string     `gorm:"not null;size:255;uniqueIndex:idx_provider_account" json:"provider_account_id"`
	Name              *string    `gorm:"size:255" json:"name"`
	Image             *string    `json:"image"`
	BriefingGuidance  *string    `json:"briefing_guidance"`
	About             *string    `json:"about"`
	AccessToken       *string    `json:"-"`
	RefreshToken      *string    `json:"-"`
	TokenExpiresAt    *time.Time `json:"-"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for EmailAccount
func (EmailAccount) TableName() string {
	return "email_accounts"
}

// IsGoogle reports whether the account belongs to a Google provider.
func (a *EmailAccount) IsGoogle() bool {
	return a.Provider == ProviderGoogle
}

// Guidance returns the user's custom guidance, or empty when unset.
// Whitespace-only guidance counts as unset.
func (a *EmailAccount) Guidance() string {
	if a.BriefingGuidance == nil {
		return ""
	}
	return *a.BriefingGuidance
}

// AccountSummary is the public identity of an account embedded in briefing
// responses.
type AccountSummary struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Provider string  `json:"provider"`
	Name     *string `json:"name"`
	Image    *string `json:"image"`
}

// Summary builds the AccountSummary for this account.
func (a *EmailAccount) Summary() AccountSummary {
	return AccountSummary{
		ID:       a.ID,
		Email:    a.Email,
		Provider: a.Provider,
		Name:     a.Name,
		Image:    a.Image,
	}
}
