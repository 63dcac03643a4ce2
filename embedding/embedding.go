// Package embedding provides the embedding provider interface consumed by the
// memory retriever, plus an OpenAI-compatible HTTP implementation. Provider
// failures are transient: the retriever substitutes a zero vector and degrades
// to importance/recency ranking rather than failing the turn.
package embedding

import "context"

// Provider generates fixed-dimensionality embeddings.
type Provider interface {
	// EmbedQuery embeds a single query string. The returned vector always
	// has Dimensions() elements.
	EmbedQuery(ctx context.Context, query string) ([]float64, error)

	// EmbedDocuments embeds multiple documents, used by the ingestion path.
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)

	// Name returns the provider name.
	Name() string

	// Dimensions returns the fixed embedding length.
	Dimensions() int
}
