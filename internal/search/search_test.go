package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/storetest"
)

func floatPtr(f float64) *float64 { return &f }

// constQueryEmbedder returns a fixed-size zero vector for any text,
// so tests can exercise the pipeline without a real embedding model.
type constQueryEmbedder struct{}

func (constQueryEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return make([]float32, 4), nil
}
func (constQueryEmbedder) EmbedPassage(context.Context, string) ([]float32, error) {
	return make([]float32, 4), nil
}
func (constQueryEmbedder) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 4)
	}
	return out, nil
}
func (constQueryEmbedder) Dimensions() int { return 4 }

func TestMergeDeduped_NamespacesIDsByType(t *testing.T) {
	// Given: a document and a memory that happen to share the same raw id
	docs := []Result{{Type: ResultDocument, DocumentID: "shared-id"}}
	mems := []Result{{Type: ResultMemory, MemoryID: "shared-id"}}

	// When
	out := mergeDeduped(docs, mems)

	// Then: both survive since they're keyed by "document:"/"memory:" prefix
	assert.Len(t, out, 2)
}

func TestMergeDeduped_DropsDuplicateWithinType(t *testing.T) {
	docs := []Result{
		{Type: ResultDocument, DocumentID: "d1"},
		{Type: ResultDocument, DocumentID: "d1"},
	}
	out := mergeDeduped(docs, nil)
	assert.Len(t, out, 1)
}

func TestOrderResults_PrefersRerankScoreOverRawScore(t *testing.T) {
	// Given: a low-score result with a high rerank score, and vice versa
	results := []Result{
		{DocumentID: "low-raw-high-rerank", Score: 0.1, RerankScore: floatPtr(0.9)},
		{DocumentID: "high-raw-no-rerank", Score: 0.8},
	}

	// When
	orderResults(results)

	// Then: rerank score wins the ordering
	require.Len(t, results, 2)
	assert.Equal(t, "low-raw-high-rerank", results[0].DocumentID)
}

func TestOrderResults_FallsBackToRawScoreDescending(t *testing.T) {
	results := []Result{
		{DocumentID: "a", Score: 0.2},
		{DocumentID: "b", Score: 0.9},
		{DocumentID: "c", Score: 0.5},
	}
	orderResults(results)
	assert.Equal(t, []string{"b", "c", "a"}, []string{results[0].DocumentID, results[1].DocumentID, results[2].DocumentID})
}

func TestService_Search_RejectsEmptyQuery(t *testing.T) {
	st := storetest.New()
	svc := NewService(st, constQueryEmbedder{}, nil, nil, nil, false, time.Second, zap.NewNop())

	_, err := svc.Search(context.Background(), Request{Query: "   "})
	assert.Error(t, err)
}

func TestService_Search_MemoriesScopeReturnsStoredMemory(t *testing.T) {
	// Given: one memory stored under "work"
	st := storetest.New()
	tag := "work"
	m := models.NewMemory("m1", "likes dark mode", "", &tag, models.MemoryTypeFact)
	require.NoError(t, st.CreateMemory(context.Background(), m))

	svc := NewService(st, constQueryEmbedder{}, nil, nil, nil, false, time.Second, zap.NewNop())

	// When
	results, err := svc.Search(context.Background(), Request{
		Query: "dark mode", Scope: ScopeMemories, ContainerTag: &tag,
	})

	// Then
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ResultMemory, results[0].Type)
	assert.Equal(t, "m1", results[0].MemoryID)
}
