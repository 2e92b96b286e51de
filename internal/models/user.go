package models

import (
	"time"
)

// User represents an application user who owns one or more email accounts.
// Premium fields are carried here because an account merge transfers the
// source user's subscription before the source user is deleted.
type User struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Email            string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name             string     `gorm:"size:255" json:"name,omitempty"`
	PremiumTier      *string    `gorm:"size:50" json:"premium_tier,omitempty"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	EmailAccounts []EmailAccount `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"email_accounts,omitempty"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// HasPremium reports whether the user currently holds a premium subscription.
func (u *User) HasPremium() bool {
	if u.PremiumTier == nil || *u.PremiumTier == "" {
		return false
	}
	if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
