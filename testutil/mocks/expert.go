// Package mocks provides configurable fakes for the engine's collaborator
// interfaces: experts, embedding providers, memory stores, and recorders.
// Every mock supports error injection and counts its calls.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/coachflow/types"
)

// MockExpert is a configurable ensemble.Expert.
//
// Usage:
//
//	expert := mocks.NewMockExpert(types.ExpertPattern).
//	    WithContent("you keep circling back to this").
//	    WithConfidence(0.8)
type MockExpert struct {
	mu sync.Mutex

	id          types.ExpertID
	content     string
	confidence  float64
	annotations types.Annotations

	// Error/latency injection.
	generateErr error
	delay       time.Duration
	blockOnCtx  bool

	generateCalls int
}

// NewMockExpert creates an expert that answers with a canned response.
func NewMockExpert(id types.ExpertID) *MockExpert {
	return &MockExpert{
		id:         id,
		content:    "mock response from " + string(id),
		confidence: 0.8,
	}
}

// WithContent sets the canned response text.
func (m *MockExpert) WithContent(content string) *MockExpert {
	m.content = content
	return m
}

// WithConfidence sets the self-reported confidence.
func (m *MockExpert) WithConfidence(confidence float64) *MockExpert {
	m.confidence = confidence
	return m
}

// WithAnnotations sets the structured annotations.
func (m *MockExpert) WithAnnotations(ann types.Annotations) *MockExpert {
	m.annotations = ann
	return m
}

// WithError makes Generate fail.
func (m *MockExpert) WithError(err error) *MockExpert {
	m.generateErr = err
	return m
}

// WithDelay makes Generate sleep before answering.
func (m *MockExpert) WithDelay(d time.Duration) *MockExpert {
	m.delay = d
	return m
}

// WithBlock makes Generate hang until the context is canceled, simulating a
// timeout.
func (m *MockExpert) WithBlock() *MockExpert {
	m.blockOnCtx = true
	return m
}

// ID implements ensemble.Expert.
func (m *MockExpert) ID() types.ExpertID { return m.id }

// Generate implements ensemble.Expert.
func (m *MockExpert) Generate(ctx context.Context, _ string, _ *types.RouterContext) (*types.CandidateResponse, error) {
	m.mu.Lock()
	m.generateCalls++
	m.mu.Unlock()

	if m.blockOnCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &types.CandidateResponse{
		ExpertID:    m.id,
		Content:     m.content,
		Confidence:  m.confidence,
		Annotations: m.annotations,
	}, nil
}

// GenerateCalls returns how many times Generate was invoked.
func (m *MockExpert) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}
