package ensemble

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/BaSui01/coachflow/types"
)

// dominantMargin is the self-confidence lead one candidate needs over the
// runner-up before its expert is labeled the dominant perspective.
const dominantMargin = 0.1

// LexicalAgreement measures inter-expert agreement without a model: pairwise
// Jaccard similarity over content tokens sets the agreement level, and the
// pattern annotations split into consensus points (claimed by every
// candidate) and conflict points (claimed by exactly one).
type LexicalAgreement struct{}

// NewLexicalAgreement creates the default agreement analyzer.
func NewLexicalAgreement() *LexicalAgreement {
	return &LexicalAgreement{}
}

// Analyze compares the candidate set. Fewer than two candidates trivially
// agree at level 1.0.
func (a *LexicalAgreement) Analyze(ctx context.Context, candidates []types.CandidateResponse) (*types.AgreementReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(candidates) < 2 {
		return &types.AgreementReport{AgreementLevel: 1.0}, nil
	}

	tokenSets := make([]map[string]bool, len(candidates))
	for i, c := range candidates {
		tokenSets[i] = tokenize(c.Content)
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(tokenSets); i++ {
		for j := i + 1; j < len(tokenSets); j++ {
			sum += jaccard(tokenSets[i], tokenSets[j])
			pairs++
		}
	}

	report := &types.AgreementReport{
		AgreementLevel: types.ClampUnit(sum / float64(pairs)),
	}
	report.ConsensusPoints, report.ConflictPoints = splitPatternClaims(candidates)
	report.DominantPerspective = dominantPerspective(candidates)
	return report, nil
}

// splitPatternClaims buckets pattern annotations: patterns every candidate
// names are consensus, patterns exactly one candidate names are conflicts.
func splitPatternClaims(candidates []types.CandidateResponse) (consensus, conflicts []string) {
	claims := make(map[string]map[types.ExpertID]bool)
	for _, c := range candidates {
		for _, p := range c.Annotations.PatternsIdentified {
			if claims[p] == nil {
				claims[p] = make(map[types.ExpertID]bool)
			}
			claims[p][c.ExpertID] = true
		}
	}

	patterns := make([]string, 0, len(claims))
	for p := range claims {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, p := range patterns {
		switch len(claims[p]) {
		case len(candidates):
			consensus = append(consensus, p)
		case 1:
			var only types.ExpertID
			for e := range claims[p] {
				only = e
			}
			conflicts = append(conflicts, fmt.Sprintf("only %s identifies %q", only, p))
		}
	}
	return consensus, conflicts
}

func dominantPerspective(candidates []types.CandidateResponse) string {
	best, second := -1.0, -1.0
	var lead types.ExpertID
	for _, c := range candidates {
		switch {
		case c.Confidence > best:
			second = best
			best = c.Confidence
			lead = c.ExpertID
		case c.Confidence > second:
			second = c.Confidence
		}
	}
	if best-second > dominantMargin {
		return string(lead)
	}
	return ""
}

func tokenize(content string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		tok = strings.Trim(tok, ".,!?;:\"'()")
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
