package ensemble

import (
	"context"
	"math"
	"strings"

	"github.com/BaSui01/coachflow/types"
)

// Lexical markers the heuristic validator scans for. Matching is
// case-insensitive substring over the candidate content.
var (
	empathyMarkers = []string{"i hear", "understand", "makes sense", "that's valid", "feel"}
	actionMarkers  = []string{"next step", "try", "practice", "commit", "start with", "this week"}
)

// HeuristicValidator scores candidates with a deterministic rubric built from
// content depth versus stage fit, lexical markers, and annotation richness.
// It never fails except on context cancellation, making it a safe default
// when no model-backed validator is wired in.
type HeuristicValidator struct{}

// NewHeuristicValidator creates the default validator.
func NewHeuristicValidator() *HeuristicValidator {
	return &HeuristicValidator{}
}

// Validate scores the candidate. All five criteria come back clamped to
// [0,10].
func (v *HeuristicValidator) Validate(ctx context.Context, candidate *types.CandidateResponse, rctx *types.RouterContext) (types.ValidationScores, error) {
	if err := ctx.Err(); err != nil {
		return types.ValidationScores{}, err
	}

	content := strings.ToLower(candidate.Content)
	words := len(strings.Fields(content))
	patterns := len(candidate.Annotations.PatternsIdentified)
	leverage := len(candidate.Annotations.LeveragePoints)
	systems := len(candidate.Annotations.SystemConnections)

	// Content depth proxy: longer, more annotated responses read deeper. The
	// stage target is twice the stage ordinal, so stage 5 expects depth 10.
	contentDepth := math.Min(10, float64(words)/25+float64(patterns+leverage+systems))
	stageTarget := float64(rctx.Stage * 2)

	scores := types.ValidationScores{
		StageAppropriateness:  types.ClampScore(10 - math.Abs(contentDepth-stageTarget)),
		EmotionalSensitivity:  types.ClampScore(4 + 1.5*float64(markerCount(content, empathyMarkers))),
		SystemsThinking:       types.ClampScore(3 + 2*float64(systems) + float64(leverage)),
		Actionability:         types.ClampScore(3 + 2*float64(leverage) + float64(markerCount(content, actionMarkers))),
		BreakthroughPotential: types.ClampScore(2 + 2*float64(patterns) + 4*types.ClampUnit(candidate.Confidence)),
	}

	// Fragile states reward brevity; a wall of text is not sensitive.
	if (rctx.Readiness == types.StateOverwhelmed || rctx.Readiness == types.StateResistant) && words > 150 {
		scores.EmotionalSensitivity = types.ClampScore(scores.EmotionalSensitivity - 3)
	}

	return scores, nil
}

func markerCount(content string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(content, m) {
			n++
		}
	}
	return n
}
