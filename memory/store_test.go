package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/types"
)

func TestInMemoryStore_AppendAndList(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore(InMemoryStoreConfig{Dimension: 3}, zap.NewNop())
	ctx := context.Background()

	mem := &types.Memory{
		UserID:             "user-1",
		Content:            "I keep putting things off until the deadline",
		Embedding:          []float64{0.1, 0.2, 0.3},
		EmotionalResonance: 6,
		DepthScore:         4,
		Importance:         0.7,
		PatternsMentioned:  []string{"procrastination"},
	}
	require.NoError(t, store.Append(ctx, mem))

	assert.NotEmpty(t, mem.ID, "append fills the ID")
	assert.False(t, mem.CreatedAt.IsZero(), "append fills CreatedAt")

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mem.Content, got[0].Content)

	// Listed memories are copies: mutating them must not affect the store.
	got[0].Embedding[0] = 99
	again, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0.1, again[0].Embedding[0])
}

func TestInMemoryStore_EmptyUserIsNotAnError(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore(InMemoryStoreConfig{}, nil)
	got, err := store.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInMemoryStore_DimensionMismatchIsFatal(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore(InMemoryStoreConfig{Dimension: 4}, nil)
	err := store.Append(context.Background(), &types.Memory{
		UserID:    "user-1",
		Content:   "x",
		Embedding: []float64{1, 2},
	})
	require.Error(t, err)
	assert.True(t, types.IsConfigurationFault(err))
}

func TestInMemoryStore_ClampsScoresOnAppend(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore(InMemoryStoreConfig{}, nil)
	mem := &types.Memory{
		UserID:             "user-1",
		Content:            "x",
		EmotionalResonance: 14,
		DepthScore:         -2,
		Importance:         3.5,
	}
	require.NoError(t, store.Append(context.Background(), mem))

	got, err := store.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got[0].EmotionalResonance)
	assert.Equal(t, 0.0, got[0].DepthScore)
	assert.Equal(t, 1.0, got[0].Importance)
}

func TestInMemoryStore_OccurredOnDefaultsToCreatedAt(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(InMemoryStoreConfig{Now: func() time.Time { return fixed }}, nil)

	mem := &types.Memory{UserID: "user-1", Content: "x"}
	require.NoError(t, store.Append(context.Background(), mem))
	assert.Equal(t, fixed, mem.OccurredOn)
}

func TestInMemoryStore_RejectsMissingUser(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore(InMemoryStoreConfig{}, nil)
	err := store.Append(context.Background(), &types.Memory{Content: "x"})
	assert.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}
