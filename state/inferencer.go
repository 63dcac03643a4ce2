// Package state infers the user's short-term readiness posture and classifies
// what an utterance is asking for. Both implementations are deterministic
// lexical rules; callers depend only on the interfaces so a learned model can
// replace either one without touching the routing layer.
package state

import (
	"strings"

	"github.com/BaSui01/coachflow/types"
)

// Inferencer classifies the readiness state of a single utterance. Infer is
// pure and total: it always returns a valid state.
type Inferencer interface {
	Infer(utterance string) types.ReadinessState
}

// LexicalInferencer matches trigger phrases against the lowercased utterance
// in a fixed priority order and returns the first state that matches.
type LexicalInferencer struct {
	rules []readinessRule
}

// NewLexicalInferencer creates an inferencer over the canonical rule table.
func NewLexicalInferencer() *LexicalInferencer {
	return &LexicalInferencer{rules: defaultReadinessRules}
}

// Infer returns the first state whose trigger list matches, or
// DefaultReadiness when nothing does.
func (l *LexicalInferencer) Infer(utterance string) types.ReadinessState {
	lowered := strings.ToLower(utterance)
	for _, rule := range l.rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lowered, trigger) {
				return rule.state
			}
		}
	}
	return DefaultReadiness
}
