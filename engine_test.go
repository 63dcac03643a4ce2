package coachflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/coachflow/learning"
	"github.com/BaSui01/coachflow/memory"
	"github.com/BaSui01/coachflow/testutil/mocks"
	"github.com/BaSui01/coachflow/types"
)

func testClock() time.Time {
	return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
}

func newTestRetriever(t *testing.T, memories ...types.Memory) *memory.Retriever {
	t.Helper()

	store := memory.NewInMemoryStore(memory.InMemoryStoreConfig{Dimension: 2, Now: testClock}, nil)
	for i := range memories {
		mem := memories[i]
		mem.UserID = "user-1"
		require.NoError(t, store.Append(context.Background(), &mem))
	}
	return memory.NewRetriever(store, mocks.NewMockEmbedder([]float64{1, 0}), nil, nil,
		memory.RetrieverConfig{Dimension: 2, Now: testClock}, nil)
}

func newTestEngine(t *testing.T, retriever *memory.Retriever, opts ...Option) *Engine {
	t.Helper()

	base := []Option{
		WithRetriever(retriever),
		WithClock(testClock),
		WithExperts(
			mocks.NewMockExpert(types.ExpertCompassion).WithContent("that sounds heavy, let's slow down").WithConfidence(0.85),
			mocks.NewMockExpert(types.ExpertPattern).WithContent("that sounds heavy, and familiar").WithConfidence(0.8),
			mocks.NewMockExpert(types.ExpertGrounding).WithContent("take one breath first").WithConfidence(0.75),
		),
	}
	eng, err := NewEngine(append(base, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewEngine()
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	_, err = NewEngine(WithRetriever(newTestRetriever(t)))
	require.Error(t, err, "an arbiter or experts are required")
}

func TestProcess_ValidatesRequest(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, newTestRetriever(t))
	ctx := context.Background()

	_, err := eng.Process(ctx, nil)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	_, err = eng.Process(ctx, &Request{Utterance: "hello"})
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	_, err = eng.Process(ctx, &Request{UserID: "user-1"})
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestProcess_EndToEnd(t *testing.T) {
	t.Parallel()

	retriever := newTestRetriever(t,
		types.Memory{
			Content:           "talked about avoiding hard conversations",
			OccurredOn:        testClock().AddDate(0, 0, -3),
			Embedding:         []float64{1, 0},
			DepthScore:        4,
			Importance:        0.7,
			PatternsMentioned: []string{"avoidance"},
		},
	)
	eng := newTestEngine(t, retriever)

	got, err := eng.Process(context.Background(), &Request{
		UserID:    "user-1",
		Utterance: "yeah but that never works for me",
		Stage:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Response)

	// Stage 1 + resistant keeps the compassion expert in front.
	assert.Equal(t, types.ExpertCompassion, got.Process.ExpertsConsulted[0])
	assert.NotEmpty(t, got.Strength)
	assert.GreaterOrEqual(t, got.Metrics.OverallConfidence, 0.0)
	assert.LessOrEqual(t, got.Metrics.OverallConfidence, 1.0)
}

func TestProcess_NewUserEmptyStore(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, newTestRetriever(t))

	got, err := eng.Process(context.Background(), &Request{
		UserID:    "brand-new",
		Utterance: "i wonder where to even start",
		Stage:     1,
	})
	require.NoError(t, err, "an empty memory store is not an error")
	assert.NotNil(t, got.Response)
}

func TestProcess_RecentBreakthroughReachesRouterContext(t *testing.T) {
	t.Parallel()

	capture := &capturingExpert{id: types.ExpertAccountability}

	retriever := newTestRetriever(t,
		types.Memory{
			Content:                "finally saw the whole loop",
			OccurredOn:             testClock().AddDate(0, 0, -5),
			Embedding:              []float64{1, 0},
			DepthScore:             8,
			Importance:             0.9,
			BreakthroughIndicators: []string{"saw the loop"},
		},
		types.Memory{
			Content:    "an ordinary check-in",
			OccurredOn: testClock().AddDate(0, 0, -2),
			Embedding:  []float64{1, 0},
			DepthScore: 4,
			Importance: 0.5,
		},
	)

	eng, err := NewEngine(
		WithRetriever(retriever),
		WithClock(testClock),
		WithExperts(capture),
	)
	require.NoError(t, err)

	_, err = eng.Process(context.Background(), &Request{
		UserID:    "user-1",
		Utterance: "checking in today",
		Stage:     3,
	})
	require.NoError(t, err)
	require.NotNil(t, capture.seen)

	assert.True(t, capture.seen.RecentBreakthrough)
	assert.InDelta(t, 6.0, capture.seen.EngagementDepth, 1e-9, "mean of depth scores 8 and 4")
	assert.Equal(t, types.StateCurious, capture.seen.Readiness)
}

func TestRecordFeedback_ReachesRecorder(t *testing.T) {
	t.Parallel()

	recorder := learning.NewMemoryRecorder(nil)
	eng := newTestEngine(t, newTestRetriever(t), WithRecorder(recorder))

	decision := &types.RoutingDecision{Primary: types.ExpertPattern, Style: types.StyleDirect}
	eng.RecordFeedback("user-1", decision, "that landed", 0.9)

	key := types.PairKey(types.ExpertPattern, types.StyleDirect)
	assert.Eventually(t, func() bool {
		return recorder.Hints("user-1").Effectiveness[key] > 0
	}, time.Second, 10*time.Millisecond)
}

func TestProcess_Deterministic(t *testing.T) {
	t.Parallel()

	retriever := newTestRetriever(t,
		types.Memory{
			Content:    "a stable memory",
			OccurredOn: testClock().AddDate(0, 0, -10),
			Embedding:  []float64{1, 0},
			DepthScore: 5,
			Importance: 0.6,
		},
	)
	eng := newTestEngine(t, retriever)
	req := &Request{UserID: "user-1", Utterance: "i'm ready, what's next", Stage: 2}

	first, err := eng.Process(context.Background(), req)
	require.NoError(t, err)
	second, err := eng.Process(context.Background(), req)
	require.NoError(t, err)

	// Candidate collection order is completion order, so only the
	// order-independent outputs are compared.
	assert.Equal(t, first.Process.Resolution, second.Process.Resolution)
	assert.Equal(t, first.Strength, second.Strength)
	assert.InDelta(t, first.Metrics.OverallConfidence, second.Metrics.OverallConfidence, 1e-9)
}

// capturingExpert snapshots the router context handed to Generate so tests
// can inspect the derived fields.
type capturingExpert struct {
	id   types.ExpertID
	seen *types.RouterContext
}

func (c *capturingExpert) ID() types.ExpertID { return c.id }

func (c *capturingExpert) Generate(_ context.Context, _ string, rctx *types.RouterContext) (*types.CandidateResponse, error) {
	c.seen = rctx
	return &types.CandidateResponse{
		ExpertID:   c.id,
		Content:    "captured",
		Confidence: 0.8,
	}, nil
}
