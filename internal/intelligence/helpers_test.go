package intelligence

import (
	"context"
	"encoding/json"
	"errors"
)

// failingEmbedder always errors, for exercising skip-and-keep paths.
type failingEmbedder struct{}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedder unavailable")
}
func (failingEmbedder) EmbedPassage(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedder unavailable")
}
func (failingEmbedder) EmbedPassages(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedder unavailable")
}
func (failingEmbedder) Dimensions() int { return 4 }

// llmStub returns a fixed JSON payload from CompleteJSON, for
// exercising the extractor's accepted response shapes.
type llmStub struct {
	available bool
	jsonReply json.RawMessage
}

func (l llmStub) IsAvailable() bool { return l.available }
func (l llmStub) Complete(context.Context, string) (string, error) {
	return "", nil
}
func (l llmStub) CompleteJSON(context.Context, string) (json.RawMessage, error) {
	return l.jsonReply, nil
}
