// Package embeddings adapts an Ollama-compatible embeddings endpoint
// to the query/passage-prefixed Embedder contract the core consumes.
package embeddings

import "context"

// Embedder generates fixed-width vector representations for text.
// Queries and passages are embedded with distinct prefixes so an
// asymmetric embedding model can distinguish the two roles.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedPassage(ctx context.Context, text string) ([]float32, error)
	EmbedPassages(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
