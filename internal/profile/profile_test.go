package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momo-run/momo/internal/models"
)

func TestNarrative_EmptyFactsShortCircuits(t *testing.T) {
	g := NewGenerator(fakeLLM{completeErr: errBoom})

	out, err := g.Narrative(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNarrative_DelegatesToModel(t *testing.T) {
	g := NewGenerator(fakeLLM{completeText: "a tidy paragraph"})
	facts := []models.ProfileFact{{Content: "likes tea"}}

	out, err := g.Narrative(context.Background(), facts)

	require.NoError(t, err)
	assert.Equal(t, "a tidy paragraph", out)
}

func TestNarrative_PropagatesModelError(t *testing.T) {
	// Given: a model that always errors
	g := NewGenerator(fakeLLM{completeErr: errBoom})
	facts := []models.ProfileFact{{Content: "likes tea"}}

	// Then: the error reaches the caller rather than being swallowed here
	_, err := g.Narrative(context.Background(), facts)
	assert.ErrorIs(t, err, errBoom)
}

func TestCompactFacts_EmptyFactsShortCircuits(t *testing.T) {
	g := NewGenerator(fakeLLM{jsonErr: errBoom})

	out, err := g.CompactFacts(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompactFacts_ParsesModelJSON(t *testing.T) {
	g := NewGenerator(fakeLLM{jsonRaw: []byte(`{"preferences":["likes tea"]}`)})
	facts := []models.ProfileFact{{Content: "likes tea"}}

	out, err := g.CompactFacts(context.Background(), facts)

	require.NoError(t, err)
	assert.Equal(t, []string{"likes tea"}, out["preferences"])
}

func TestCompactFacts_MalformedJSONIsAnError(t *testing.T) {
	g := NewGenerator(fakeLLM{jsonRaw: []byte(`not json`)})
	facts := []models.ProfileFact{{Content: "likes tea"}}

	_, err := g.CompactFacts(context.Background(), facts)

	assert.Error(t, err)
}
