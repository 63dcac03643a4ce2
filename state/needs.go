package state

import (
	"strings"

	"github.com/BaSui01/coachflow/types"
)

// NeedsClassifier scores what an utterance is asking for on three 0-10 axes.
// Classify is pure and deterministic.
type NeedsClassifier interface {
	Classify(utterance string) types.NeedsClassification
}

// weightedPhrase contributes its weight once per utterance, regardless of how
// many times the phrase occurs.
type weightedPhrase struct {
	phrase string
	weight int
}

var urgencyPhrases = []weightedPhrase{
	{"emergency", 5},
	{"crisis", 5},
	{"right now", 4},
	{"immediately", 4},
	{"urgent", 4},
	{"can't wait", 4},
	{"asap", 3},
	{"deadline", 3},
	{"before tomorrow", 3},
	{"today", 2},
	{"this week", 1},
}

var supportPhrases = []weightedPhrase{
	{"hopeless", 4},
	{"help me", 3},
	{"alone", 3},
	{"lonely", 3},
	{"scared", 3},
	{"afraid", 3},
	{"struggling", 3},
	{"nobody", 3},
	{"no one understands", 3},
	{"hurt", 2},
	{"lost", 2},
	{"support", 2},
}

// connectives signal multi-clause reasoning; their density drives the
// complexity score.
var connectives = []string{
	"because",
	"therefore",
	"however",
	"although",
	"even though",
	"which means",
	"on the other hand",
	"at the same time",
	"whereas",
	"depends on",
	"connected to",
	"leads to",
}

// LexicalNeedsClassifier derives urgency and support from weighted phrase
// tables and complexity from connective density plus sentence count.
type LexicalNeedsClassifier struct{}

// NewLexicalNeedsClassifier creates a classifier over the canonical tables.
func NewLexicalNeedsClassifier() *LexicalNeedsClassifier {
	return &LexicalNeedsClassifier{}
}

// Classify scores the utterance. All three axes are clamped to [0,10]; an
// empty utterance scores zero on every axis.
func (c *LexicalNeedsClassifier) Classify(utterance string) types.NeedsClassification {
	lowered := strings.ToLower(utterance)

	return types.NeedsClassification{
		Urgency:         clampAxis(phraseScore(lowered, urgencyPhrases)),
		Complexity:      clampAxis(complexityScore(lowered)),
		SupportRequired: clampAxis(phraseScore(lowered, supportPhrases)),
	}
}

func phraseScore(lowered string, table []weightedPhrase) int {
	score := 0
	for _, wp := range table {
		if strings.Contains(lowered, wp.phrase) {
			score += wp.weight
		}
	}
	return score
}

// complexityScore counts each connective occurrence at weight 2 and adds one
// point per sentence beyond the first.
func complexityScore(lowered string) int {
	score := 0
	for _, conn := range connectives {
		score += 2 * strings.Count(lowered, conn)
	}

	sentences := 0
	for _, r := range lowered {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences > 1 {
		score += sentences - 1
	}
	return score
}

func clampAxis(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
