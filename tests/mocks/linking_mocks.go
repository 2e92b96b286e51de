package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth/linking"
	"golang.org/x/oauth2"
)

// MockExchanger implements linking.Exchanger
type MockExchanger struct {
	mock.Mock
}

// AuthorizeURL returns the consent page URL for a flow
func (m *MockExchanger) AuthorizeURL(provider, state string) (string, error) {
	args := m.Called(provider, state)
	return args.String(0), args.Error(1)
}

// Exchange redeems an authorization code for tokens
func (m *MockExchanger) Exchange(ctx context.Context, provider, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, provider, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

// FetchProfile retrieves the provider identity for a token holder
func (m *MockExchanger) FetchProfile(ctx context.Context, provider string, token *oauth2.Token) (*linking.Profile, error) {
	args := m.Called(ctx, provider, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*linking.Profile), args.Error(1)
}
