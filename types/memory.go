package types

import "time"

// Memory is an immutable record of one user statement, enriched at ingestion
// time with an embedding and scalar analysis metadata. Memories are never
// mutated after creation; erasure happens through an external path.
type Memory struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`

	// OccurredOn is the date the statement was made, which can predate
	// CreatedAt when statements are imported.
	OccurredOn time.Time `json:"occurred_on"`

	// Embedding has a fixed length per deployment. A length mismatch against
	// the configured dimension is a configuration fault, not missing data.
	Embedding []float64 `json:"embedding,omitempty"`

	// EmotionalResonance and DepthScore are 0-10; Importance is 0-1. All are
	// clamped on append, with mid-scale neutral defaults.
	EmotionalResonance float64 `json:"emotional_resonance"`
	DepthScore         float64 `json:"depth_score"`
	Importance         float64 `json:"importance"`

	PatternsMentioned      []string `json:"patterns_mentioned,omitempty"`
	BreakthroughIndicators []string `json:"breakthrough_indicators,omitempty"`
	ContextTags            []string `json:"context_tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MemoryReference pairs a retrieved memory with a human-readable time
// reference such as "3 days ago you mentioned...".
type MemoryReference struct {
	Memory        Memory  `json:"memory"`
	TimeReference string  `json:"time_reference"`
	Score         float64 `json:"score"`
}

// RetrievalResult is the read-only projection returned by the retriever.
// An empty store yields a valid result with Confidence 0, not an error.
type RetrievalResult struct {
	// References are ordered most-to-least relevant. Ties in the blended
	// score break toward the most recent OccurredOn.
	References []MemoryReference `json:"references"`

	// RecurringPatterns are pattern strings mentioned by at least two of the
	// returned memories, deduplicated in first-seen order.
	RecurringPatterns []string `json:"recurring_patterns,omitempty"`

	// Confidence (0-1) summarizes how reliable this retrieval is: the mean
	// importance of the returned set, with a recency bonus.
	Confidence float64 `json:"confidence"`

	// Degraded marks retrievals where the query embedding failed and ranking
	// fell back to importance and recency only.
	Degraded bool `json:"degraded,omitempty"`
}
