package learning

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/coachflow/types"
)

func TestMemoryRecorder_RollingMean(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	ctx := context.Background()
	decision := &types.RoutingDecision{Primary: types.ExpertPattern, Style: types.StyleDirect}

	require.NoError(t, r.RecordOutcome(ctx, "user-1", decision, "helpful", 1.0))
	require.NoError(t, r.RecordOutcome(ctx, "user-1", decision, "less so", 0.5))
	require.NoError(t, r.RecordOutcome(ctx, "user-1", decision, "", 0.6))

	hints := r.Hints("user-1")
	key := types.PairKey(types.ExpertPattern, types.StyleDirect)
	assert.InDelta(t, 0.7, hints.Effectiveness[key], 1e-9)
}

func TestMemoryRecorder_UnknownUser(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	hints := r.Hints("nobody")
	assert.Empty(t, hints.Effectiveness)
	assert.Empty(t, hints.PreferredExperts)
}

func TestMemoryRecorder_InvalidInput(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	ctx := context.Background()

	err := r.RecordOutcome(ctx, "", &types.RoutingDecision{Primary: types.ExpertPattern}, "", 0.5)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	err = r.RecordOutcome(ctx, "user-1", nil, "", 0.5)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestMemoryRecorder_OutcomeClamped(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	decision := &types.RoutingDecision{Primary: types.ExpertSystems, Style: types.StyleExploratory}
	require.NoError(t, r.RecordOutcome(context.Background(), "user-1", decision, "", 7.5))

	key := types.PairKey(types.ExpertSystems, types.StyleExploratory)
	assert.Equal(t, 1.0, r.Hints("user-1").Effectiveness[key])
}

func TestMemoryRecorder_DerivedPreferences(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	ctx := context.Background()

	good := &types.RoutingDecision{Primary: types.ExpertCompassion, Style: types.StyleGentle}
	better := &types.RoutingDecision{Primary: types.ExpertPattern, Style: types.StyleExploratory}
	poor := &types.RoutingDecision{Primary: types.ExpertAccountability, Style: types.StyleChallenging}

	require.NoError(t, r.RecordOutcome(ctx, "user-1", good, "", 0.7))
	require.NoError(t, r.RecordOutcome(ctx, "user-1", better, "", 0.9))
	require.NoError(t, r.RecordOutcome(ctx, "user-1", poor, "", 0.2))

	hints := r.Hints("user-1")
	// Best-first ordering; the low-effectiveness pair stays in the map but
	// never becomes a preference.
	assert.Equal(t, []types.ExpertID{types.ExpertPattern, types.ExpertCompassion}, hints.PreferredExperts)
	assert.Equal(t, []types.ResponseStyle{types.StyleExploratory, types.StyleGentle}, hints.EffectiveStyles)
	assert.Len(t, hints.Effectiveness, 3)
}

func TestMemoryRecorder_UserIsolation(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	decision := &types.RoutingDecision{Primary: types.ExpertPattern, Style: types.StyleDirect}
	require.NoError(t, r.RecordOutcome(context.Background(), "user-1", decision, "", 0.9))

	assert.Empty(t, r.Hints("user-2").Effectiveness)
}

func TestMemoryRecorder_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder(nil)
	decision := &types.RoutingDecision{Primary: types.ExpertGrounding, Style: types.StyleGentle}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.RecordOutcome(context.Background(), "user-1", decision, "", 0.8)
		}()
	}
	wg.Wait()

	key := types.PairKey(types.ExpertGrounding, types.StyleGentle)
	assert.InDelta(t, 0.8, r.Hints("user-1").Effectiveness[key], 1e-9)
}
