// Package profile assembles a per-container narrative and compacted
// fact summary from static and dynamic memories via the LLM
// collaborator.
package profile

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/momo-run/momo/internal/llm"
	"github.com/momo-run/momo/internal/models"
)

// Generator produces narratives and compacted fact summaries. Unlike
// the caller-facing profile assembly (which treats narrative failure
// as best-effort and swallows it), Generator propagates errors so the
// profile-refresh manager can decide, per tag, whether to keep the
// stale cache entry.
type Generator struct {
	model llm.LLM
}

func NewGenerator(model llm.LLM) *Generator {
	return &Generator{model: model}
}

// Narrative renders a third-person summary of the given facts.
func (g *Generator) Narrative(ctx context.Context, facts []models.ProfileFact) (string, error) {
	if len(facts) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f.Content)
		b.WriteByte('\n')
	}
	prompt := "Write a concise third-person paragraph summarizing the following facts about a user. " +
		"Do not invent details not present in the list.\n\nFacts:\n" + b.String()

	return g.model.Complete(ctx, prompt)
}

// CompactFacts groups facts into a small set of labeled buckets
// (e.g. "preferences", "routines") via the LLM, for cheap inclusion
// in a cached profile's summary field.
func (g *Generator) CompactFacts(ctx context.Context, facts []models.ProfileFact) (map[string][]string, error) {
	if len(facts) == 0 {
		return map[string][]string{}, nil
	}
	var b strings.Builder
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f.Content)
		b.WriteByte('\n')
	}
	prompt := "Group the following facts into a small number of labeled categories. " +
		`Respond with only a JSON object mapping category name to an array of fact strings.` +
		"\n\nFacts:\n" + b.String()

	raw, err := g.model.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var out map[string][]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
