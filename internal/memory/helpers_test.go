package memory

import (
	"context"
	"encoding/json"
	"errors"
)

// fakeEmbedder returns a fixed-size zero vector for every call.
type fakeEmbedder struct{ dim int }

func (e fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}
func (e fakeEmbedder) EmbedPassage(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}
func (e fakeEmbedder) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}
func (e fakeEmbedder) Dimensions() int { return e.dim }

// fakeLLM is an unavailable-by-default llm.LLM double, scriptable for
// the handful of tests that exercise extraction/narrative.
type fakeLLM struct {
	available  bool
	jsonResult json.RawMessage
	text       string
}

func (f fakeLLM) IsAvailable() bool { return f.available }
func (f fakeLLM) Complete(context.Context, string) (string, error) {
	if !f.available {
		return "", errors.New("model unavailable")
	}
	return f.text, nil
}
func (f fakeLLM) CompleteJSON(context.Context, string) (json.RawMessage, error) {
	return f.jsonResult, nil
}
