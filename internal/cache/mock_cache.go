package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFileRef(ctx context.Context, docIdentity string) (string, error) {
	args := m.Called(ctx, docIdentity)
	return args.String(0), args.Error(1)
}

func (m *MockCache) SetFileRef(ctx context.Context, docIdentity, fileID string, ttl time.Duration) error {
	args := m.Called(ctx, docIdentity, fileID, ttl)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, docIdentity string) error {
	args := m.Called(ctx, docIdentity)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
