package ensemble

import (
	"context"

	"github.com/BaSui01/coachflow/types"
)

// Validator scores one candidate against the five validation criteria, each
// 0-10. A validation failure is isolated per candidate: the arbiter records
// it and substitutes neutral mid-scale scores, never escalating.
type Validator interface {
	Validate(ctx context.Context, candidate *types.CandidateResponse, rctx *types.RouterContext) (types.ValidationScores, error)
}

// AgreementAnalyzer computes pairwise agreement across the candidate set. It
// is only consulted when two or more candidates survive dispatch.
type AgreementAnalyzer interface {
	Analyze(ctx context.Context, candidates []types.CandidateResponse) (*types.AgreementReport, error)
}

// Synthesizer merges several candidates into one new candidate. The arbiter
// owns the decision of when to invoke it.
type Synthesizer interface {
	Synthesize(ctx context.Context, candidates []types.CandidateResponse, rctx *types.RouterContext) (*types.CandidateResponse, error)
}
