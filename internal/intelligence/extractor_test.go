package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCandidates_AcceptsMemoriesWrapper(t *testing.T) {
	// Given: the model replies with the {"memories": [...]} wrapper
	model := llmStub{available: true, jsonReply: []byte(`{"memories":[{"content":"likes tea","memoryType":"preference","confidence":0.8}]}`)}
	e := NewExtractor(model)

	result := e.Extract(context.Background(), "I really like tea")

	require.Len(t, result.Memories, 1)
	assert.Equal(t, "likes tea", result.Memories[0].Content)
}

func TestExtractCandidates_AcceptsClassificationsWrapper(t *testing.T) {
	model := llmStub{available: true, jsonReply: []byte(`{"classifications":[{"content":"lives in Berlin","memoryType":"fact","confidence":0.9}]}`)}
	e := NewExtractor(model)

	result := e.Extract(context.Background(), "I live in Berlin")

	require.Len(t, result.Memories, 1)
	assert.Equal(t, "lives in Berlin", result.Memories[0].Content)
}

func TestExtractCandidates_AcceptsBareArray(t *testing.T) {
	model := llmStub{available: true, jsonReply: []byte(`[{"content":"owns a cat","memoryType":"fact","confidence":0.7}]`)}
	e := NewExtractor(model)

	result := e.Extract(context.Background(), "I own a cat")

	require.Len(t, result.Memories, 1)
	assert.Equal(t, "owns a cat", result.Memories[0].Content)
}

func TestExtractCandidates_UnrecognizedShapeIsEmpty(t *testing.T) {
	model := llmStub{available: true, jsonReply: []byte(`{"unexpected":"shape"}`)}
	e := NewExtractor(model)

	result := e.Extract(context.Background(), "anything")

	assert.Empty(t, result.Memories)
}

func TestExtractCandidates_UnavailableModelIsEmpty(t *testing.T) {
	model := llmStub{available: false}
	e := NewExtractor(model)

	result := e.Extract(context.Background(), "anything")

	assert.Empty(t, result.Memories)
}
