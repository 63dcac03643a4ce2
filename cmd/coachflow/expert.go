package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/BaSui01/coachflow/types"
)

// demoExpert is a template-backed expert used by the CLI so a turn can run
// without any model backend. Real deployments register their own experts
// through the engine options.
type demoExpert struct {
	id         types.ExpertID
	confidence float64
	template   string
}

func newDemoExpert(id types.ExpertID, confidence float64, template string) *demoExpert {
	return &demoExpert{id: id, confidence: confidence, template: template}
}

func (d *demoExpert) ID() types.ExpertID { return d.id }

func (d *demoExpert) Generate(ctx context.Context, utterance string, rctx *types.RouterContext) (*types.CandidateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &types.CandidateResponse{
		ExpertID:   d.id,
		Content:    fmt.Sprintf(d.template, clip(utterance, 60)),
		Confidence: d.confidence,
	}, nil
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
