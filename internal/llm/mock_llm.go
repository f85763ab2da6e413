package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of Gateway using testify/mock.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Chat(ctx context.Context, system, user string, s Settings) Result {
	args := m.Called(ctx, system, user, s)
	return args.Get(0).(Result)
}
