// Package memory provides the append-only memory store and the semantic
// retriever. Stores are multi-reader; this engine only appends through the
// external ingestion path and otherwise reads fresh on every call.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/types"
)

// Store is the durable memory collaborator.
type Store interface {
	// ListByUser returns every memory for the user. No memories is a valid
	// empty result, not an error.
	ListByUser(ctx context.Context, userID string) ([]types.Memory, error)

	// Append ingests one memory. The store clamps scalar ranges, fills the
	// ID and CreatedAt when absent, and rejects embeddings whose length
	// disagrees with the configured dimension.
	Append(ctx context.Context, mem *types.Memory) error
}

// normalize validates and defaults a memory before storage. A dimension
// mismatch is a configuration fault: it signals corrupted data and must abort
// rather than silently degrade.
func normalize(mem *types.Memory, dimension int, now func() time.Time) error {
	if mem == nil {
		return types.NewError(types.ErrInvalidRequest, "memory is nil")
	}
	if mem.UserID == "" {
		return types.NewError(types.ErrInvalidRequest, "memory user_id is required")
	}
	if dimension > 0 && len(mem.Embedding) != 0 && len(mem.Embedding) != dimension {
		return types.NewError(types.ErrDimensionMismatch,
			fmt.Sprintf("embedding length %d, want %d", len(mem.Embedding), dimension))
	}

	if mem.ID == "" {
		mem.ID = uuid.New().String()
	}
	if mem.CreatedAt.IsZero() {
		mem.CreatedAt = now()
	}
	if mem.OccurredOn.IsZero() {
		mem.OccurredOn = mem.CreatedAt
	}

	mem.EmotionalResonance = types.ClampScore(mem.EmotionalResonance)
	mem.DepthScore = types.ClampScore(mem.DepthScore)
	mem.Importance = types.ClampUnit(mem.Importance)
	return nil
}

// InMemoryStoreConfig configures the in-memory store.
type InMemoryStoreConfig struct {
	// Dimension, when > 0, validates appended embeddings.
	Dimension int

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// InMemoryStore is the in-process Store implementation, suitable for local
// development, tests, and small deployments.
type InMemoryStore struct {
	mu        sync.RWMutex
	byUser    map[string][]types.Memory
	dimension int
	now       func() time.Time
	logger    *zap.Logger
}

// NewInMemoryStore creates an in-memory store.
func NewInMemoryStore(config InMemoryStoreConfig, logger *zap.Logger) *InMemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &InMemoryStore{
		byUser:    make(map[string][]types.Memory),
		dimension: config.Dimension,
		now:       now,
		logger:    logger.With(zap.String("component", "memory_store_inmemory")),
	}
}

// Append ingests one memory.
func (s *InMemoryStore) Append(ctx context.Context, mem *types.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := normalize(mem, s.dimension, s.now); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *mem
	copied.Embedding = append([]float64(nil), mem.Embedding...)
	s.byUser[mem.UserID] = append(s.byUser[mem.UserID], copied)

	s.logger.Debug("memory appended",
		zap.String("id", copied.ID),
		zap.String("user_id", copied.UserID))
	return nil
}

// ListByUser returns copies of every memory for the user.
func (s *InMemoryStore) ListByUser(ctx context.Context, userID string) ([]types.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byUser[userID]
	out := make([]types.Memory, len(stored))
	for i, m := range stored {
		out[i] = m
		out[i].Embedding = append([]float64(nil), m.Embedding...)
	}
	return out, nil
}
