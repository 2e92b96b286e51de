package models

import (
	"time"
)

// CacheEntry is a row in the key/value store backing the OAuth linking
// lock and result records. The primary key on Key gives set-if-absent its
// atomicity: a conflicting insert affects zero rows.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for CacheEntry
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired reports whether the entry's TTL has elapsed at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
