// Package intelligence implements the LLM-backed candidate extractor
// and the pure-heuristic contradiction and deduplication passes that
// run over its output before memories are persisted.
package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/momo-run/momo/internal/llm"
	"github.com/momo-run/momo/internal/models"
)

// Extractor turns raw text or a conversation transcript into
// candidate memories via the LLM collaborator. A malformed or
// unavailable response is a normal empty result, never an error —
// extraction failures must not block ingestion.
type Extractor struct {
	model llm.LLM
}

func NewExtractor(model llm.LLM) *Extractor {
	return &Extractor{model: model}
}

type extractedCandidateWire struct {
	Content                string  `json:"content"`
	MemoryType             string  `json:"memoryType"`
	Confidence             float64 `json:"confidence"`
	Context                *string `json:"context,omitempty"`
	PotentialContradiction bool    `json:"potentialContradiction"`
}

// extractedWireEnvelope accepts the two wrapper shapes the model may
// reply with in addition to a bare array.
type extractedWireEnvelope struct {
	Memories        []extractedCandidateWire `json:"memories"`
	Classifications []extractedCandidateWire `json:"classifications"`
}

// parseExtractedWire accepts a bare JSON array of candidates, or an
// object wrapping them under "memories" or "classifications". Returns
// nil only when none of those shapes match.
func parseExtractedWire(raw json.RawMessage) []extractedCandidateWire {
	var envelope extractedWireEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if len(envelope.Memories) > 0 {
			return envelope.Memories
		}
		if len(envelope.Classifications) > 0 {
			return envelope.Classifications
		}
	}

	var bare []extractedCandidateWire
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	return nil
}

func (e *Extractor) Extract(ctx context.Context, text string) models.ExtractionResult {
	return models.ExtractionResult{
		Memories:      e.extractCandidates(ctx, text),
		SourceContent: text,
	}
}

func (e *Extractor) ExtractFromConversation(ctx context.Context, messages []models.ConversationMessage) models.ExtractionResult {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]: %s", m.Role, m.Content)
	}
	source := b.String()
	return models.ExtractionResult{
		Memories:      e.extractCandidates(ctx, source),
		SourceContent: source,
	}
}

func (e *Extractor) extractCandidates(ctx context.Context, text string) []models.ExtractedMemoryCandidate {
	if e.model == nil || !e.model.IsAvailable() {
		return nil
	}

	prompt := extractionPrompt(text)
	raw, err := e.model.CompleteJSON(ctx, prompt)
	if err != nil || len(raw) == 0 {
		return nil
	}

	wire := parseExtractedWire(raw)
	if wire == nil {
		return nil
	}

	out := make([]models.ExtractedMemoryCandidate, 0, len(wire))
	for _, w := range wire {
		content := strings.TrimSpace(w.Content)
		if content == "" {
			continue
		}
		confidence := w.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		out = append(out, models.ExtractedMemoryCandidate{
			Content:                content,
			MemoryType:             w.MemoryType,
			Confidence:             confidence,
			Context:                w.Context,
			PotentialContradiction: w.PotentialContradiction,
		})
	}
	return out
}

func extractionPrompt(text string) string {
	return "Extract durable facts, preferences, or notable events from the text below as a JSON array of objects " +
		`with fields content, memoryType ("fact", "preference", or "episode"), confidence (0 to 1), ` +
		"and optionally context. Respond with only the JSON array.\n\nText:\n" + text
}
