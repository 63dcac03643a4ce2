// Package learning is the preference-learning write path. The engine reports
// turn outcomes fire-and-forget; the recorder folds them into per-user
// effectiveness hints that the router consumes on later turns.
package learning

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/types"
)

// Recorder receives turn outcomes and serves the learned hints back.
type Recorder interface {
	// RecordOutcome folds one turn's outcome (0-1, higher is better) into
	// the user's history for the decision's primary expert/style pair.
	RecordOutcome(ctx context.Context, userID string, decision *types.RoutingDecision, feedback string, outcome float64) error

	// Hints returns the learned preference hints for the user. Unknown users
	// get empty hints, never an error.
	Hints(userID string) types.PreferenceHints
}

// pairStats is a rolling mean per expert/style pair.
type pairStats struct {
	sum   float64
	count int
}

// MemoryRecorder keeps effectiveness in process memory. It is the default
// recorder for single-node deployments and tests; durable implementations
// satisfy the same interface.
type MemoryRecorder struct {
	mu     sync.RWMutex
	users  map[string]map[string]*pairStats
	logger *zap.Logger
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder(logger *zap.Logger) *MemoryRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryRecorder{
		users:  make(map[string]map[string]*pairStats),
		logger: logger.With(zap.String("component", "preference_recorder")),
	}
}

// RecordOutcome folds the outcome into the rolling mean for the decision's
// primary expert and style.
func (r *MemoryRecorder) RecordOutcome(ctx context.Context, userID string, decision *types.RoutingDecision, feedback string, outcome float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" || decision == nil {
		return types.NewError(types.ErrInvalidRequest, "user id and decision are required")
	}

	key := types.PairKey(decision.Primary, decision.Style)
	outcome = types.ClampUnit(outcome)

	r.mu.Lock()
	pairs := r.users[userID]
	if pairs == nil {
		pairs = make(map[string]*pairStats)
		r.users[userID] = pairs
	}
	stats := pairs[key]
	if stats == nil {
		stats = &pairStats{}
		pairs[key] = stats
	}
	stats.sum += outcome
	stats.count++
	mean := stats.sum / float64(stats.count)
	r.mu.Unlock()

	r.logger.Debug("outcome recorded",
		zap.String("user_id", userID),
		zap.String("pair", key),
		zap.Float64("outcome", outcome),
		zap.Float64("rolling_mean", mean),
		zap.String("feedback", feedback))
	return nil
}

// Hints assembles the user's effectiveness map plus derived preferred-expert
// and effective-style lists, ordered best-first with deterministic ties.
func (r *MemoryRecorder) Hints(userID string) types.PreferenceHints {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pairs := r.users[userID]
	if len(pairs) == 0 {
		return types.PreferenceHints{}
	}

	hints := types.PreferenceHints{Effectiveness: make(map[string]float64, len(pairs))}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		mi := pairs[keys[i]].sum / float64(pairs[keys[i]].count)
		mj := pairs[keys[j]].sum / float64(pairs[keys[j]].count)
		if mi != mj {
			return mi > mj
		}
		return keys[i] < keys[j]
	})

	seenExpert := make(map[types.ExpertID]bool)
	seenStyle := make(map[types.ResponseStyle]bool)
	for _, k := range keys {
		mean := pairs[k].sum / float64(pairs[k].count)
		hints.Effectiveness[k] = mean

		expert, style, ok := splitPairKey(k)
		if !ok || mean < 0.6 {
			continue
		}
		if !seenExpert[expert] {
			seenExpert[expert] = true
			hints.PreferredExperts = append(hints.PreferredExperts, expert)
		}
		if !seenStyle[style] {
			seenStyle[style] = true
			hints.EffectiveStyles = append(hints.EffectiveStyles, style)
		}
	}
	return hints
}

func splitPairKey(key string) (types.ExpertID, types.ResponseStyle, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			expert := types.ExpertID(key[:i])
			if !expert.Valid() {
				return "", "", false
			}
			return expert, types.ResponseStyle(key[i+1:]), true
		}
	}
	return "", "", false
}
