package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-briefing-backend/internal/llm"
)

// MockTextGenerator implements llm.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

// GenerateText returns the canned completion for a request
func (m *MockTextGenerator) GenerateText(ctx context.Context, req llm.GenerateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
