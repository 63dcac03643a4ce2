package mocks

import (
	"context"
	"sync"
)

// MockEmbedder is a configurable embedding.Provider returning a fixed vector.
type MockEmbedder struct {
	mu sync.Mutex

	vector []float64
	err    error

	queryCalls    int
	documentCalls int
}

// NewMockEmbedder creates an embedder that returns the given vector for every
// input.
func NewMockEmbedder(vector []float64) *MockEmbedder {
	return &MockEmbedder{vector: vector}
}

// WithError makes every call fail.
func (m *MockEmbedder) WithError(err error) *MockEmbedder {
	m.err = err
	return m
}

// EmbedQuery implements embedding.Provider.
func (m *MockEmbedder) EmbedQuery(context.Context, string) ([]float64, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(m.vector))
	copy(out, m.vector)
	return out, nil
}

// EmbedDocuments implements embedding.Provider.
func (m *MockEmbedder) EmbedDocuments(_ context.Context, docs []string) ([][]float64, error) {
	m.mu.Lock()
	m.documentCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float64, len(docs))
	for i := range out {
		vec := make([]float64, len(m.vector))
		copy(vec, m.vector)
		out[i] = vec
	}
	return out, nil
}

// Name implements embedding.Provider.
func (m *MockEmbedder) Name() string { return "mock" }

// Dimensions implements embedding.Provider.
func (m *MockEmbedder) Dimensions() int { return len(m.vector) }

// QueryCalls returns how many times EmbedQuery was invoked.
func (m *MockEmbedder) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}
