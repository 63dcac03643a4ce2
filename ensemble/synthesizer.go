package ensemble

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/BaSui01/coachflow/types"
)

// MergeSynthesizer builds the synthesized candidate mechanically: contents
// are concatenated in candidate order, annotations are the deduplicated union
// of the inputs', and confidence is the maximum of the inputs'. The expert
// attribution follows the highest-confidence input.
type MergeSynthesizer struct{}

// NewMergeSynthesizer creates the default synthesizer.
func NewMergeSynthesizer() *MergeSynthesizer {
	return &MergeSynthesizer{}
}

// Synthesize merges the candidates into one new immutable candidate.
func (s *MergeSynthesizer) Synthesize(ctx context.Context, candidates []types.CandidateResponse, _ *types.RouterContext) (*types.CandidateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, types.NewError(types.ErrNoCandidates, "nothing to synthesize")
	}

	contents := make([]string, 0, len(candidates))
	maxConfidence := 0.0
	lead := candidates[0].ExpertID
	var merged types.Annotations

	for _, c := range candidates {
		if c.Content != "" {
			contents = append(contents, c.Content)
		}
		if c.Confidence > maxConfidence {
			maxConfidence = c.Confidence
			lead = c.ExpertID
		}
		merged.PatternsIdentified = appendUnique(merged.PatternsIdentified, c.Annotations.PatternsIdentified)
		merged.LeveragePoints = appendUnique(merged.LeveragePoints, c.Annotations.LeveragePoints)
		merged.SystemConnections = appendUnique(merged.SystemConnections, c.Annotations.SystemConnections)
	}

	return &types.CandidateResponse{
		ID:          uuid.NewString(),
		ExpertID:    lead,
		Content:     strings.Join(contents, "\n\n"),
		Confidence:  types.ClampUnit(maxConfidence),
		Annotations: merged,
	}, nil
}

func appendUnique(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}
