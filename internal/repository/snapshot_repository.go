package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository defines the interface for briefing snapshot data access
type SnapshotRepository interface {
	Get(ctx context.Context, userID string, date time.Time) (*models.BriefingSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.BriefingSnapshot) error
}

// snapshotRepository implements SnapshotRepository using GORM
type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new SnapshotRepository instance
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Get retrieves the snapshot for a user and UTC-midnight date
func (r *snapshotRepository) Get(ctx context.Context, userID string, date time.Time) (*models.BriefingSnapshot, error) {
	var snapshot models.BriefingSnapshot
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, normalizeDate(date)).
		First(&snapshot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get briefing snapshot: %w", result.Error)
	}
	return &snapshot, nil
}

// Upsert inserts or replaces the snapshot for (user, date) in a single
// atomic statement. Concurrent regenerations for the same day must not
// race through a separate existence check, so this relies on the
// composite unique index and ON CONFLICT DO UPDATE.
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *models.BriefingSnapshot) error {
	snapshot.Date = normalizeDate(snapshot.Date)
	snapshot.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(snapshot)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert briefing snapshot: %w", result.Error)
	}
	return nil
}

// normalizeDate truncates a timestamp to UTC midnight. Every date that
// keys a snapshot goes through this to avoid timezone-dependent
// duplicates.
func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
