package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/coachflow/types"
)

// MockStore is a configurable memory.Store backed by a slice.
type MockStore struct {
	mu sync.RWMutex

	memories map[string][]types.Memory

	listErr   error
	appendErr error

	listCalls   int
	appendCalls int
}

// NewMockStore creates an empty store.
func NewMockStore() *MockStore {
	return &MockStore{memories: make(map[string][]types.Memory)}
}

// WithMemories seeds the store for a user.
func (m *MockStore) WithMemories(userID string, memories ...types.Memory) *MockStore {
	m.memories[userID] = append(m.memories[userID], memories...)
	return m
}

// WithListError makes ListByUser fail.
func (m *MockStore) WithListError(err error) *MockStore {
	m.listErr = err
	return m
}

// WithAppendError makes Append fail.
func (m *MockStore) WithAppendError(err error) *MockStore {
	m.appendErr = err
	return m
}

// ListByUser implements memory.Store.
func (m *MockStore) ListByUser(ctx context.Context, userID string) ([]types.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Memory, len(m.memories[userID]))
	copy(out, m.memories[userID])
	return out, nil
}

// Append implements memory.Store.
func (m *MockStore) Append(ctx context.Context, mem *types.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.appendErr != nil {
		return m.appendErr
	}
	m.memories[mem.UserID] = append(m.memories[mem.UserID], *mem)
	return nil
}

// ListCalls returns how many times ListByUser was invoked.
func (m *MockStore) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}
