package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SnapshotRepositoryTestSuite is the test suite for SnapshotRepository
type SnapshotRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo SnapshotRepository
}

// SetupSuite runs once before all tests
func (s *SnapshotRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	err = db.AutoMigrate(&models.BriefingSnapshot{})
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewSnapshotRepository(db)
}

// TearDownSuite runs once after all tests
func (s *SnapshotRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data
func (s *SnapshotRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM briefing_snapshots")
}

// TestSnapshotRepositoryTestSuite runs the test suite
func TestSnapshotRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotRepositoryTestSuite))
}

func (s *SnapshotRepositoryTestSuite) TestGet_NotFound() {
	result, err := s.repo.Get(context.Background(), "user-1", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), result)
}

func (s *SnapshotRepositoryTestSuite) TestUpsert_InsertAndGet() {
	snapshot := &models.BriefingSnapshot{
		UserID: "user-1",
		Date:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Data:   datatypes.JSON(`{"emails":[]}`),
	}

	err := s.repo.Upsert(context.Background(), snapshot)

	require.NoError(s.T(), err)
	found, err := s.repo.Get(context.Background(), "user-1", snapshot.Date)
	require.NoError(s.T(), err)
	assert.JSONEq(s.T(), `{"emails":[]}`, string(found.Data))
}

func (s *SnapshotRepositoryTestSuite) TestUpsert_NormalizesDateToUTCMidnight() {
	loc := time.FixedZone("UTC+7", 7*3600)
	snapshot := &models.BriefingSnapshot{
		UserID: "user-1",
		Date:   time.Date(2026, 8, 28, 14, 30, 12, 0, loc),
		Data:   datatypes.JSON(`{"emails":[]}`),
	}

	err := s.repo.Upsert(context.Background(), snapshot)

	require.NoError(s.T(), err)
	// A lookup for any instant within the same UTC day finds it.
	found, err := s.repo.Get(context.Background(), "user-1", time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "user-1", found.UserID)
}

func (s *SnapshotRepositoryTestSuite) TestUpsert_SameDayReplacesData() {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	first := &models.BriefingSnapshot{
		UserID: "user-1",
		Date:   date,
		Data:   datatypes.JSON(`{"version":1}`),
	}
	require.NoError(s.T(), s.repo.Upsert(context.Background(), first))

	second := &models.BriefingSnapshot{
		UserID: "user-1",
		Date:   date,
		Data:   datatypes.JSON(`{"version":2}`),
	}
	err := s.repo.Upsert(context.Background(), second)

	require.NoError(s.T(), err)
	found, err := s.repo.Get(context.Background(), "user-1", date)
	require.NoError(s.T(), err)
	assert.JSONEq(s.T(), `{"version":2}`, string(found.Data))

	// Still exactly one row for the (user, day) pair.
	var count int64
	s.db.Model(&models.BriefingSnapshot{}).Where("user_id = ?", "user-1").Count(&count)
	assert.EqualValues(s.T(), 1, count)
}

func (s *SnapshotRepositoryTestSuite) TestUpsert_DifferentDaysCoexist() {
	for day := 27; day <= 28; day++ {
		snapshot := &models.BriefingSnapshot{
			UserID: "user-1",
			Date:   time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
			Data:   datatypes.JSON(`{}`),
		}
		require.NoError(s.T(), s.repo.Upsert(context.Background(), snapshot))
	}

	var count int64
	s.db.Model(&models.BriefingSnapshot{}).Where("user_id = ?", "user-1").Count(&count)
	assert.EqualValues(s.T(), 2, count)
}

func (s *SnapshotRepositoryTestSuite) TestGet_ScopedByUser() {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	snapshot := &models.BriefingSnapshot{
		UserID: "user-1",
		Date:   date,
		Data:   datatypes.JSON(`{}`),
	}
	require.NoError(s.T(), s.repo.Upsert(context.Background(), snapshot))

	result, err := s.repo.Get(context.Background(), "user-2", date)

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), result)
}
