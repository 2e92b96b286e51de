// Package mocks provides testify mocks for the briefing backend's
// interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

// MockAccountRepository implements repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// Create creates a new email account
func (m *MockAccountRepository) Create(ctx context.Context, account *models.EmailAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// GetByID retrieves an email account by its ID
func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.EmailAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAccount), args.Error(1)
}

// ListByUser retrieves all accounts of a user in creation order
func (m *MockAccountRepository) ListByUser(ctx context.Context, userID string) ([]models.EmailAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAccount), args.Error(1)
}

// GetByProviderAccountID retrieves an account by provider identity
func (m *MockAccountRepository) GetByProviderAccountID(ctx context.Context, provider, providerAccountID string) (*models.EmailAccount, error) {
	args := m.Called(ctx, provider, providerAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAccount), args.Error(1)
}

// FindByUserAndEmail retrieves an account by owner and address
func (m *MockAccountRepository) FindByUserAndEmail(ctx context.Context, userID, email string) (*models.EmailAccount, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAccount), args.Error(1)
}

// GetGuidance retrieves the briefing guidance of an account
func (m *MockAccountRepository) GetGuidance(ctx context.Context, accountID, userID string) (*string, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// UpdateGuidance updates the briefing guidance of an account
func (m *MockAccountRepository) UpdateGuidance(ctx context.Context, accountID, userID string, guidance *string) error {
	args := m.Called(ctx, accountID, userID, guidance)
	return args.Error(0)
}

// UpdateTokens persists refreshed provider tokens
func (m *MockAccountRepository) UpdateTokens(ctx context.Context, account *models.EmailAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// ClearTokens removes stored provider tokens after a credential failure
func (m *MockAccountRepository) ClearTokens(ctx context.Context, accountID, reason string) error {
	args := m.Called(ctx, accountID, reason)
	return args.Error(0)
}

// ReassignToUser moves a source user's accounts to the target user
func (m *MockAccountRepository) ReassignToUser(ctx context.Context, sourceUserID, targetUserID string, mergedAccountID string, newName, newEmail *string) error {
	args := m.Called(ctx, sourceUserID, targetUserID, mergedAccountID, newName, newEmail)
	return args.Error(0)
}

// MockUserRepository implements repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// TransferPremium moves a premium subscription between users
func (m *MockUserRepository) TransferPremium(ctx context.Context, sourceUserID, targetUserID string) error {
	args := m.Called(ctx, sourceUserID, targetUserID)
	return args.Error(0)
}

// MockSnapshotRepository implements repository.SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

// Get retrieves the snapshot for a user and day
func (m *MockSnapshotRepository) Get(ctx context.Context, userID string, date time.Time) (*models.BriefingSnapshot, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BriefingSnapshot), args.Error(1)
}

// Upsert writes or refreshes the snapshot for the snapshot's user and day
func (m *MockSnapshotRepository) Upsert(ctx context.Context, snapshot *models.BriefingSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}
