package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoreTestSuite is the test suite for the database-backed Store
type StoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store Store
}

// SetupSuite runs once before all tests
func (s *StoreTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	err = db.AutoMigrate(&models.CacheEntry{})
	require.NoError(s.T(), err)

	s.db = db
	s.store = NewStore(db)
}

// TearDownSuite runs once after all tests
func (s *StoreTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data
func (s *StoreTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM cache_entries")
}

// TestStoreTestSuite runs the test suite
func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestGet_MissingKey() {
	_, err := s.store.Get(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *StoreTestSuite) TestSetAndGet() {
	err := s.store.Set(context.Background(), "k", "v", time.Minute)
	require.NoError(s.T(), err)

	value, err := s.store.Get(context.Background(), "k")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "v", value)
}

func (s *StoreTestSuite) TestSet_OverwritesExisting() {
	require.NoError(s.T(), s.store.Set(context.Background(), "k", "old", time.Minute))
	require.NoError(s.T(), s.store.Set(context.Background(), "k", "new", time.Minute))

	value, err := s.store.Get(context.Background(), "k")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new", value)
}

func (s *StoreTestSuite) TestGet_ExpiredEntry() {
	require.NoError(s.T(), s.store.Set(context.Background(), "k", "v", -time.Second))

	_, err := s.store.Get(context.Background(), "k")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	// The expired row is reclaimed lazily.
	var count int64
	s.db.Model(&models.CacheEntry{}).Where("key = ?", "k").Count(&count)
	assert.Zero(s.T(), count)
}

func (s *StoreTestSuite) TestSetIfAbsent_NewKey() {
	acquired, err := s.store.SetIfAbsent(context.Background(), "lock", "holder-1", time.Minute)
	require.NoError(s.T(), err)
	assert.True(s.T(), acquired)

	value, err := s.store.Get(context.Background(), "lock")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "holder-1", value)
}

func (s *StoreTestSuite) TestSetIfAbsent_ExistingKey() {
	acquired, err := s.store.SetIfAbsent(context.Background(), "lock", "holder-1", time.Minute)
	require.NoError(s.T(), err)
	require.True(s.T(), acquired)

	acquired, err = s.store.SetIfAbsent(context.Background(), "lock", "holder-2", time.Minute)
	require.NoError(s.T(), err)
	assert.False(s.T(), acquired)

	// The first holder's value survives.
	value, err := s.store.Get(context.Background(), "lock")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "holder-1", value)
}

func (s *StoreTestSuite) TestSetIfAbsent_ReclaimsExpiredEntry() {
	acquired, err := s.store.SetIfAbsent(context.Background(), "lock", "crashed-holder", -time.Second)
	require.NoError(s.T(), err)
	require.True(s.T(), acquired)

	acquired, err = s.store.SetIfAbsent(context.Background(), "lock", "holder-2", time.Minute)
	require.NoError(s.T(), err)
	assert.True(s.T(), acquired)

	value, err := s.store.Get(context.Background(), "lock")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "holder-2", value)
}

func (s *StoreTestSuite) TestDelete() {
	require.NoError(s.T(), s.store.Set(context.Background(), "k", "v", time.Minute))
	require.NoError(s.T(), s.store.Delete(context.Background(), "k"))

	_, err := s.store.Get(context.Background(), "k")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *StoreTestSuite) TestDelete_MissingKeySucceeds() {
	assert.NoError(s.T(), s.store.Delete(context.Background(), "missing"))
}
