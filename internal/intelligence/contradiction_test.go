package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/storetest"
)

// constEmbedder always returns the same vector. Every stored latest
// memory in the tag comes back as a hit regardless of content because
// the storetest fake's SearchSimilarMemories ignores the vector and
// the threshold.
type constEmbedder struct{ dim int }

func (e constEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}
func (e constEmbedder) EmbedPassage(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}
func (e constEmbedder) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}
func (e constEmbedder) Dimensions() int { return e.dim }

func TestLikelyContradiction_Negation(t *testing.T) {
	// Given: one statement and its negation with high word overlap
	a := "the user likes spicy food"
	b := "the user does not like spicy food"

	// Then: the heuristic flags it
	assert.True(t, likelyContradiction(a, b))
}

func TestLikelyContradiction_Antonym(t *testing.T) {
	assert.True(t, likelyContradiction("the user is awake", "the user is asleep"))
}

func TestLikelyContradiction_Compatible(t *testing.T) {
	// Given: two statements about unrelated facts
	a := "the user lives in Berlin"
	b := "the user enjoys hiking"

	// Then: no contradiction is flagged
	assert.False(t, likelyContradiction(a, b))
}

func TestContradictionDetector_Check_FlagsAgainstExistingMemory(t *testing.T) {
	// Given: a store with one existing memory under a tag
	st := storetest.New()
	existing := models.NewMemory("m1", "the user likes spicy food", "", strPtr("work"), models.MemoryTypeFact)
	require.NoError(t, st.CreateMemory(context.Background(), existing))

	det := NewContradictionDetector(st, constEmbedder{dim: 4}, zap.NewNop())
	candidates := []models.ExtractedMemoryCandidate{
		{Content: "the user does not like spicy food", MemoryType: "fact"},
	}

	// When: checking the candidate against the "work" tag
	out := det.Check(context.Background(), candidates, "work")

	// Then: it is flagged as a potential contradiction
	require.Len(t, out, 1)
	assert.True(t, out[0].PotentialContradiction)
}

func TestContradictionDetector_Check_EmbedFailureSkipsCandidate(t *testing.T) {
	// Given: an embedder that always fails
	st := storetest.New()
	det := NewContradictionDetector(st, failingEmbedder{}, zap.NewNop())
	candidates := []models.ExtractedMemoryCandidate{{Content: "anything"}}

	// When/Then: Check does not panic and leaves the candidate untouched
	out := det.Check(context.Background(), candidates, "work")
	require.Len(t, out, 1)
	assert.False(t, out[0].PotentialContradiction)
}

func strPtr(s string) *string { return &s }
