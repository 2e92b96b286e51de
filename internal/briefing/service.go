package briefing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/welldanyogia/webrana-briefing-backend/internal/errors"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"github.com/welldanyogia/webrana-briefing-backend/internal/repository"
	"github.com/welldanyogia/webrana-briefing-backend/internal/validator"
	"gorm.io/datatypes"
)

// Service orchestrates briefing requests: mode detection, history-date
// validation, and the snapshot cache policy in front of the aggregator.
type Service struct {
	aggregator *Aggregator
	snapshots  repository.SnapshotRepository
	freshness  time.Duration
	maxAgeDays int
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a briefing Service.
func NewService(aggregator *Aggregator, snapshots repository.SnapshotRepository, freshness time.Duration, maxAgeDays int, logger *slog.Logger) *Service {
	if freshness <= 0 {
		freshness = time.Hour
	}
	if maxAgeDays <= 0 {
		maxAgeDays = 90
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		aggregator: aggregator,
		snapshots:  snapshots,
		freshness:  freshness,
		maxAgeDays: maxAgeDays,
		logger:     logger,
		now:        time.Now,
	}
}

// GetBriefing serves a briefing request. An empty dateParam selects inbox
// mode (always live, never cached); a date selects history mode, which
// goes through validation and the snapshot cache.
func (s *Service) GetBriefing(ctx context.Context, userID, dateParam string) (*models.BriefingResponse, error) {
	if dateParam == "" {
		return s.aggregator.Generate(ctx, userID, ModeInbox, time.Time{}, time.Time{})
	}
	return s.getHistory(ctx, userID, dateParam)
}

// getHistory validates the requested date and applies the snapshot cache
/// policy: past days are immutable once cached, today's snapshot is
// reusable within the freshness window.
func (s *Service) getHistory(ctx context.Context, userID, dateParam string) (*models.BriefingResponse, error) {
	today := s.now().UTC().Format("2006-01-02")

	// Malformed dates fall back to today rather than being rejected.
	targetDate := dateParam
	if validator.ValidateDate(targetDate) != nil {
		targetDate = today
	} else if _, err := time.Parse("2006-01-02", targetDate); err != nil {
		targetDate = today
	}

	// YYYY-MM-DD compares correctly as a string.
	if targetDate > today {
		return nil, apperrors.ErrFutureDate
	}
	oldest := s.now().UTC().AddDate(0, 0, -s.maxAgeDays).Format("2006-01-02")
	if targetDate < oldest {
		return nil, apperrors.ErrOldDate
	}

	day, err := time.ParseInLocation("2006-01-02", targetDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target date: %w", err)
	}
	startOfDay := day
	endOfDay := day.Add(24*time.Hour - time.Millisecond)
	isToday := targetDate == today

	snapshot, err := s.snapshots.Get(ctx, userID, startOfDay)
	if err == nil {
		if !isToday {
			// Past day: cached snapshots are immutable history.
			return decodeSnapshot(snapshot)
		}
		if s.now().Sub(snapshot.UpdatedAt) < s.freshness {
			return decodeSnapshot(snapshot)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	response, err := s.aggregator.Generate(ctx, userID, ModeHistory, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to encode briefing for snapshot: %w", err)
	}
	if err := s.snapshots.Upsert(ctx, &models.BriefingSnapshot{
		UserID: userID,
		Date:   startOfDay,
		Data:   datatypes.JSON(data),
	}); err != nil {
		// Serving the generated briefing matters more than caching it.
		s.logger.Error("failed to persist briefing snapshot",
			slog.String("user_id", userID),
			slog.String("date", targetDate),
			slog.String("error", err.Error()))
	}

	return response, nil
}

// decodeSnapshot unmarshals a cached briefing.
func decodeSnapshot(snapshot *models.BriefingSnapshot) (*models.BriefingResponse, error) {
	var response models.BriefingResponse
	if err := json.Unmarshal(snapshot.Data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode cached briefing: %w", err)
	}
	return &response, nil
}
