// Package llm adapts an Ollama or OpenAI-compatible chat endpoint to
// the LLM collaborator interface the core consumes.
package llm

import (
	"context"
	"encoding/json"

	"github.com/momo-run/momo/internal/apperr"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLM is the language-model collaborator. Implementations classify
// failures into the Unavailable/RateLimited/Auth/Protocol buckets via
// apperr.Kind so callers can react without parsing error strings.
type LLM interface {
	IsAvailable() bool
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (json.RawMessage, error)
}

// CompleteStructured calls CompleteJSON and unmarshals the result
// into T. Go methods cannot carry their own type parameters, so this
// lives as a free function rather than an LLM method, mirroring how
// the original's complete_structured<T> is generic over its caller's
// target type rather than over the trait itself.
func CompleteStructured[T any](ctx context.Context, model LLM, prompt string) (T, error) {
	var out T
	raw, err := model.CompleteJSON(ctx, prompt)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, apperr.LLM("malformed structured response: %v", err)
	}
	return out, nil
}
