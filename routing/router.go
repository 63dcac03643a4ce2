// Package routing turns a router context and a needs classification into a
// structured routing decision. Decide is pure: static tables, no clock, no
// randomness, so identical inputs always yield identical decisions.
package routing

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/types"
)

// Router is the routing decision engine.
type Router struct {
	logger *zap.Logger
}

// NewRouter creates a router. A nil logger defaults to a no-op logger.
func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{logger: logger.With(zap.String("component", "router"))}
}

// Decide runs the four adjustment steps in order: stage lookup, readiness
// adjustment, needs adjustment, preference validation. It never fails; depth
// is clamped to [1,10] after every step.
func (r *Router) Decide(rctx *types.RouterContext, needs types.NeedsClassification) *types.RoutingDecision {
	stage := clampStage(rctx.Stage)
	profile := stageTable[stage]

	primary := profile.primary
	supporting := append([]types.ExpertID(nil), profile.supporting...)
	depth := types.ClampDepth(profile.depth)

	notes := []string{fmt.Sprintf("stage %d defaults to %s at depth %d", stage, primary, depth)}

	// Readiness adjustment.
	adj, ok := stateTable[rctx.Readiness]
	if !ok {
		adj = stateTable[types.StateCurious]
	}
	depth = types.ClampDepth(depth + adj.depthDelta)
	style := adj.style
	timing := adj.timing
	if adj.extra != "" {
		supporting = append(supporting, adj.extra)
	}
	if adj.depthDelta != 0 {
		notes = append(notes, fmt.Sprintf("%s state shifts depth to %d", rctx.Readiness, depth))
	}

	// Needs adjustment.
	if needs.Urgency > urgencyCritical {
		timing = types.TimingImmediate
		if primary != types.ExpertGrounding {
			supporting = append([]types.ExpertID{primary}, supporting...)
			primary = types.ExpertGrounding
		}
		notes = append(notes, "critical urgency routes to grounding immediately")
	}
	if needs.Complexity > complexityCritical && rctx.EngagementDepth < lowEngagement {
		depth = types.ClampDepth(depth - 2)
		style = types.StyleGentle
		notes = append(notes, fmt.Sprintf("high complexity at low engagement softens depth to %d", depth))
	}
	if needs.SupportRequired > supportCritical {
		supporting = append([]types.ExpertID{types.ExpertCompassion}, supporting...)
		notes = append(notes, "high support need adds compassion")
	}

	supporting = dedupeSupporting(primary, supporting)

	// Preference validation.
	confidence := baseConfidence
	if eff, known := rctx.Hints.Effectiveness[types.PairKey(primary, style)]; known {
		if eff < minEffectiveness {
			if subExpert, subStyle, best, found := bestKnownPair(rctx.Hints.Effectiveness); found {
				notes = append(notes, fmt.Sprintf(
					"%s/%s scored %.2f historically, substituting %s/%s (%.2f)",
					primary, style, eff, subExpert, subStyle, best))
				primary = subExpert
				style = subStyle
				supporting = dedupeSupporting(primary, supporting)
				confidence -= substitutionPenalty
			}
		} else {
			confidence += validatedPairBonus
		}
	}

	decision := &types.RoutingDecision{
		Primary:    primary,
		Supporting: supporting,
		Style:      style,
		DepthLevel: types.ClampDepth(depth),
		Timing:     timing,
		Confidence: types.ClampUnit(confidence),
		Rationale:  strings.Join(notes, "; "),
	}

	r.logger.Debug("routing decided",
		zap.String("user_id", rctx.UserID),
		zap.Int("stage", stage),
		zap.String("readiness", string(rctx.Readiness)),
		zap.String("primary", string(decision.Primary)),
		zap.Int("depth", decision.DepthLevel),
		zap.String("timing", string(decision.Timing)))

	return decision
}

// dedupeSupporting drops duplicates and the primary itself, preserving order,
// and bounds the list to maxSupportingExperts.
func dedupeSupporting(primary types.ExpertID, supporting []types.ExpertID) []types.ExpertID {
	out := make([]types.ExpertID, 0, maxSupportingExperts)
	seen := map[types.ExpertID]bool{primary: true}
	for _, e := range supporting {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
		if len(out) == maxSupportingExperts {
			break
		}
	}
	return out
}

// bestKnownPair returns the highest-effectiveness expert/style pair among the
// hints. Ties break on the lexically smaller key so substitution stays
// deterministic across calls.
func bestKnownPair(effectiveness map[string]float64) (types.ExpertID, types.ResponseStyle, float64, bool) {
	keys := make([]string, 0, len(effectiveness))
	for k := range effectiveness {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		bestExpert types.ExpertID
		bestStyle  types.ResponseStyle
		bestScore  float64
		found      bool
	)
	for _, k := range keys {
		expert, style, ok := parsePairKey(k)
		if !ok {
			continue
		}
		if score := effectiveness[k]; !found || score > bestScore {
			bestExpert, bestStyle, bestScore, found = expert, style, score, true
		}
	}
	return bestExpert, bestStyle, bestScore, found
}

func parsePairKey(key string) (types.ExpertID, types.ResponseStyle, bool) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	expert := types.ExpertID(parts[0])
	if !expert.Valid() {
		return "", "", false
	}
	switch style := types.ResponseStyle(parts[1]); style {
	case types.StyleGentle, types.StyleExploratory, types.StyleDirect,
		types.StyleChallenging, types.StyleCelebratory:
		return expert, style, true
	default:
		return "", "", false
	}
}
