// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/nutrismart/planner/internal/domain/user"
	"github.com/nutrismart/planner/internal/ports/outbound"
)

// MockModelClient provides a mock implementation of outbound.ModelClient
type MockModelClient struct {
	mock.Mock
}

// NewMockModelClient creates a mock client that reports a fixed provider and model
func NewMockModelClient() *MockModelClient {
	m := &MockModelClient{}
	m.On("Provider").Return("mock").Maybe()
	m.On("Model").Return("mock-model").Maybe()
	return m
}

// Generate records the request and returns the configured completion
func (m *MockModelClient) Generate(ctx context.Context, req outbound.GenerateRequest) (*outbound.Completion, error) {
	args := m.Called(ctx, req)
	if c, ok := args.Get(0).(*outbound.Completion); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// NewChatSession records the seed and returns the configured session
func (m *MockModelClient) NewChatSession(ctx context.Context, cfg outbound.ChatSessionConfig) (outbound.ChatSession, error) {
	args := m.Called(ctx, cfg)
	if s, ok := args.Get(0).(outbound.ChatSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// Provider returns the mocked provider name
func (m *MockModelClient) Provider() string {
	return m.Called().String(0)
}

// Model returns the mocked model name
func (m *MockModelClient) Model() string {
	return m.Called().String(0)
}

// HealthCheck returns the configured error
func (m *MockModelClient) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockChatSession provides a mock implementation of outbound.ChatSession
type MockChatSession struct {
	mock.Mock
}

// Send records the message and returns the configured completion
func (m *MockChatSession) Send(ctx context.Context, message string) (*outbound.Completion, error) {
	args := m.Called(ctx, message)
	if c, ok := args.Get(0).(*outbound.Completion); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentityProvider provides a mock implementation of outbound.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

// UserInfo returns the configured identity
func (m *MockIdentityProvider) UserInfo(ctx context.Context, accessToken string) (*user.Info, error) {
	args := m.Called(ctx, accessToken)
	if info, ok := args.Get(0).(*user.Info); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}

// Revoke returns the configured error
func (m *MockIdentityProvider) Revoke(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

// FailingStore is a KeyValueStore whose every operation returns Err.
// It is useful for exercising storage error paths.
type FailingStore struct {
	Err error

	mu    sync.Mutex
	calls int
}

// Get fails
func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.count()
	return nil, f.Err
}

// Set fails
func (f *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	f.count()
	return f.Err
}

// Delete fails
func (f *FailingStore) Delete(ctx context.Context, key string) error {
	f.count()
	return f.Err
}

// Ping fails
func (f *FailingStore) Ping(ctx context.Context) error {
	return f.Err
}

// Calls returns how many data operations were attempted
func (f *FailingStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FailingStore) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}
