package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/embedding"
	"github.com/BaSui01/coachflow/internal/cache"
	"github.com/BaSui01/coachflow/internal/metrics"
	"github.com/BaSui01/coachflow/types"
)

// Blended score weights: semantic similarity dominates, importance keeps
// high-signal memories visible when the query embedding degrades to zero.
const (
	similarityWeight = 0.7
	importanceWeight = 0.3

	// recencyWindow is the lookback for the retrieval confidence bonus.
	recencyWindow = 7 * 24 * time.Hour
	recencyBonus  = 0.2
)

// RetrieverConfig configures the retriever.
type RetrieverConfig struct {
	// Dimension, when > 0, validates stored vectors against the deployment's
	// fixed embedding length. A mismatch aborts the retrieval.
	Dimension int

	// CacheTTL bounds how long a retrieval result stays cached. Zero falls
	// back to the cache's default TTL.
	CacheTTL time.Duration

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Retriever ranks a user's memories against a query by blending cosine
// similarity with stored importance. It is a pure read: the only side effect
// is populating the optional cache.
type Retriever struct {
	store    Store
	embedder embedding.Provider
	cache    cache.Cache
	metrics  *metrics.Collector
	config   RetrieverConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewRetriever creates a retriever. The cache and metrics collector are
// optional; nil disables them.
func NewRetriever(store Store, embedder embedding.Provider, c cache.Cache, m *metrics.Collector, config RetrieverConfig, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		cache:    c,
		metrics:  m,
		config:   config,
		now:      now,
		logger:   logger.With(zap.String("component", "memory_retriever")),
	}
}

// Retrieve returns the top maxResults memories for the query, most relevant
// first. An empty store yields a valid result with confidence 0. An embedding
// failure degrades ranking to importance and recency instead of failing.
func (r *Retriever) Retrieve(ctx context.Context, userID, query string, maxResults int) (*types.RetrievalResult, error) {
	start := r.now()

	if maxResults <= 0 {
		maxResults = 5
	}

	cacheKey := cache.Key("retrieval", userID, query, strconv.Itoa(maxResults))
	if r.cache != nil {
		var cached types.RetrievalResult
		if err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			if r.metrics != nil {
				r.metrics.RecordCacheHit()
			}
			return &cached, nil
		} else if !cache.IsCacheMiss(err) {
			r.logger.Warn("retrieval cache read failed", zap.Error(err))
		}
		if r.metrics != nil {
			r.metrics.RecordCacheMiss()
		}
	}

	queryVec, degraded := r.embedQuery(ctx, query)

	memories, err := r.store.ListByUser(ctx, userID)
	if err != nil {
		r.record("error", 0, start)
		return nil, err
	}
	if len(memories) == 0 {
		r.record("empty", 0, start)
		return &types.RetrievalResult{References: []types.MemoryReference{}, Confidence: 0}, nil
	}

	scored := make([]types.MemoryReference, 0, len(memories))
	for _, mem := range memories {
		if r.config.Dimension > 0 && len(mem.Embedding) != 0 && len(mem.Embedding) != r.config.Dimension {
			r.record("error", 0, start)
			return nil, types.NewError(types.ErrDimensionMismatch,
				fmt.Sprintf("memory %s embedding length %d, want %d", mem.ID, len(mem.Embedding), r.config.Dimension))
		}
		score := similarityWeight*CosineSimilarity(queryVec, mem.Embedding) +
			importanceWeight*mem.Importance
		scored = append(scored, types.MemoryReference{Memory: mem, Score: score})
	}

	// Strict total order: blended score descending, ties to the most recent
	// statement.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Memory.OccurredOn.After(scored[j].Memory.OccurredOn)
	})

	if maxResults < len(scored) {
		scored = scored[:maxResults]
	}

	now := r.now()
	for i := range scored {
		scored[i].TimeReference = timeReference(now, scored[i].Memory.OccurredOn, scored[i].Memory.Content)
	}

	result := &types.RetrievalResult{
		References:        scored,
		RecurringPatterns: recurringPatterns(scored),
		Confidence:        r.confidence(now, scored),
		Degraded:          degraded,
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, cacheKey, result, r.config.CacheTTL); err != nil {
			r.logger.Warn("retrieval cache write failed", zap.Error(err))
		}
	}

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	r.record(outcome, len(scored), start)
	return result, nil
}

// embedQuery returns the query vector, substituting a zero vector when the
// provider fails so ranking degrades instead of the call erroring.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float64, bool) {
	if r.embedder == nil {
		return make([]float64, r.config.Dimension), true
	}
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, degrading to importance ranking",
			zap.Error(err))
		return make([]float64, r.config.Dimension), true
	}
	return vec, false
}

func (r *Retriever) confidence(now time.Time, refs []types.MemoryReference) float64 {
	if len(refs) == 0 {
		return 0
	}
	var sum float64
	recent := false
	for _, ref := range refs {
		sum += ref.Memory.Importance
		if now.Sub(ref.Memory.OccurredOn) <= recencyWindow {
			recent = true
		}
	}
	conf := sum / float64(len(refs))
	if recent {
		conf += recencyBonus
	}
	return types.ClampUnit(conf)
}

func (r *Retriever) record(outcome string, results int, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordRetrieval(outcome, results, r.now().Sub(start))
	}
}

// recurringPatterns returns pattern strings mentioned by at least two of the
// returned memories, deduplicated in first-seen order.
func recurringPatterns(refs []types.MemoryReference) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, ref := range refs {
		seen := make(map[string]bool)
		for _, p := range ref.Memory.PatternsMentioned {
			if seen[p] {
				continue
			}
			seen[p] = true
			if counts[p] == 0 {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	out := make([]string, 0)
	for _, p := range order {
		if counts[p] >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// timeReference buckets the statement's age into a human-readable phrase.
func timeReference(now, occurredOn time.Time, content string) string {
	days := int(now.Sub(occurredOn).Hours() / 24)

	var when string
	switch {
	case days <= 0:
		when = "today"
	case days == 1:
		when = "yesterday"
	case days < 7:
		when = fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks == 1 {
			when = "1 week ago"
		} else {
			when = fmt.Sprintf("%d weeks ago", weeks)
		}
	default:
		months := days / 30
		if months == 1 {
			when = "1 month ago"
		} else {
			when = fmt.Sprintf("%d months ago", months)
		}
	}

	return fmt.Sprintf("%s you mentioned: %s", when, snippet(content, 80))
}

func snippet(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}

// CosineSimilarity returns the cosine of the angle between a and b. Vectors
// of different length, empty vectors, and all-zero vectors score 0, never NaN.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
