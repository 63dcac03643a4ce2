package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/config"
	"github.com/BaSui01/coachflow/internal/database"
	"github.com/BaSui01/coachflow/types"
)

func newTestGormStore(t *testing.T, dimension int) *GormStore {
	t.Helper()

	cfg := config.DefaultDatabaseConfig()
	cfg.DSN = ":memory:"

	pool, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	store, err := NewGormStore(pool, GormStoreConfig{Dimension: dimension}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestGormStore_RoundTrip(t *testing.T) {
	store := newTestGormStore(t, 3)
	ctx := context.Background()

	occurred := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	mem := &types.Memory{
		UserID:                 "user-1",
		Content:                "I snapped at my partner again after work",
		OccurredOn:             occurred,
		Embedding:              []float64{0.5, 0.1, -0.3},
		EmotionalResonance:     8,
		DepthScore:             6,
		Importance:             0.9,
		PatternsMentioned:      []string{"work stress spillover"},
		BreakthroughIndicators: []string{"named the trigger"},
		ContextTags:            []string{"relationship"},
	}
	require.NoError(t, store.Append(ctx, mem))

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, mem.ID, got[0].ID)
	assert.Equal(t, mem.Content, got[0].Content)
	assert.Equal(t, []float64{0.5, 0.1, -0.3}, got[0].Embedding)
	assert.Equal(t, []string{"work stress spillover"}, got[0].PatternsMentioned)
	assert.Equal(t, []string{"named the trigger"}, got[0].BreakthroughIndicators)
	assert.True(t, occurred.Equal(got[0].OccurredOn))
}

func TestGormStore_ListOrdersByOccurrence(t *testing.T) {
	store := newTestGormStore(t, 0)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{5, 1, 3} {
		require.NoError(t, store.Append(ctx, &types.Memory{
			UserID:     "user-1",
			Content:    "entry",
			OccurredOn: base.AddDate(0, 0, offset),
			Importance: 0.5,
		}))
	}

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].OccurredOn.Before(got[1].OccurredOn))
	assert.True(t, got[1].OccurredOn.Before(got[2].OccurredOn))
}

func TestGormStore_EmptyUser(t *testing.T) {
	store := newTestGormStore(t, 0)

	got, err := store.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGormStore_DimensionMismatch(t *testing.T) {
	store := newTestGormStore(t, 4)

	err := store.Append(context.Background(), &types.Memory{
		UserID:    "user-1",
		Content:   "x",
		Embedding: []float64{1, 2, 3},
	})
	require.Error(t, err)
	assert.True(t, types.IsConfigurationFault(err))
}

func TestGormStore_UserIsolation(t *testing.T) {
	store := newTestGormStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &types.Memory{UserID: "a", Content: "a's memory"}))
	require.NoError(t, store.Append(ctx, &types.Memory{UserID: "b", Content: "b's memory"}))

	got, err := store.ListByUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a's memory", got[0].Content)
}
