package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"github.com/welldanyogia/webrana-briefing-backend/internal/provider"
)

// MockMessageSource implements provider.MessageSource
type MockMessageSource struct {
	mock.Mock
}

// GetMessagesWithPagination fetches one capped page of messages
func (m *MockMessageSource) GetMessagesWithPagination(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ListResult), args.Error(1)
}

// MockFactory implements provider.Factory
type MockFactory struct {
	mock.Mock
}

// SourceFor builds a MessageSource for an account
func (m *MockFactory) SourceFor(account *models.EmailAccount) (provider.MessageSource, error) {
	args := m.Called(account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.MessageSource), args.Error(1)
}
