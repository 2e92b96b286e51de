// Package cache provides a small key/value store with TTL semantics used
// for the OAuth linking lock and result records.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound indicates the key does not exist or has expired
var ErrNotFound = errors.New("cache key not found")

// Store is a cache with TTL and atomic set-if-absent. SetIfAbsent must be
// a single conditional operation, never check-then-set.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// dbStore implements Store on a cache_entries table. The primary key on
// the key column is the mutual-exclusion primitive: a conflicting insert
// affects zero rows, so acquisition is atomic at the storage layer.
type dbStore struct {
	db *gorm.DB
}

// NewStore creates a database-backed Store
func NewStore(db *gorm.DB) Store {
	return &dbStore{db: db}
}

// Get retrieves a value. Expired entries count as absent.
func (s *dbStore) Get(ctx context.Context, key string) (string, error) {
	var entry models.CacheEntry
	result := s.db.WithContext(ctx).First(&entry, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get cache entry: %w", result.Error)
	}
	if entry.Expired(time.Now()) {
		// Lazy reclamation; the row will be overwritten or re-deleted
		// by the next writer anyway.
		s.db.WithContext(ctx).Delete(&models.CacheEntry{}, "key = ?", key)
		return "", ErrNotFound
	}
	return entry.Value, nil
}

// Set writes a value unconditionally, replacing any existing entry.
func (s *dbStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to set cache entry: %w", result.Error)
	}
	return nil
}

// SetIfAbsent writes the value only when no live entry exists for the key.
// Returns true when this call created the entry. An expired entry is
// cleared first so a crashed holder cannot wedge the key past its TTL.
func (s *dbStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	// Reclaim an expired row if present. Losing a race here is fine:
	// the insert below stays atomic either way.
	s.db.WithContext(ctx).
		Where("key = ? AND expires_at <= ?", key, time.Now()).
		Delete(&models.CacheEntry{})

	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&entry)
	if result.Error != nil {
		return false, fmt.Errorf("failed to set cache entry: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Delete removes a key. Deleting a missing key succeeds.
func (s *dbStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Delete(&models.CacheEntry{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete cache entry: %w", result.Error)
	}
	return nil
}
