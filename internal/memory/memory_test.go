package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/storetest"
)

func newTestService(st *storetest.Store) *Service {
	return NewService(st, fakeEmbedder{dim: 4}, fakeLLM{available: false}, zap.NewNop())
}

func TestCreate_TrimsAndRejectsEmptyContent(t *testing.T) {
	svc := newTestService(storetest.New())

	_, err := svc.Create(context.Background(), "   ", "work", models.MemoryTypeFact, nil)

	assert.Error(t, err)
}

func TestCreate_PersistsRootMemory(t *testing.T) {
	svc := newTestService(storetest.New())

	m, err := svc.Create(context.Background(), "likes dark mode", "work", models.MemoryTypeFact, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, m.Version)
	assert.True(t, m.IsLatest)
	assert.Equal(t, m.ID, m.RootMemoryID)
}

func TestUpdate_VersionsOldMemoryAndLinksChain(t *testing.T) {
	// Given: an existing memory
	st := storetest.New()
	svc := newTestService(st)
	original, err := svc.Create(context.Background(), "likes tea", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)

	// When: updating it
	updated, err := svc.Update(context.Background(), &original.ID, nil, "work", "likes coffee now", nil, nil)
	require.NoError(t, err)

	// Then: the new row is version 2, rooted/parented at the original
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, original.ID, *updated.ParentMemoryID)
	assert.Equal(t, original.ID, updated.RootMemoryID)
	assert.True(t, updated.IsLatest)

	// And: the old row is flipped to non-latest with an "updates" edge
	old, err := st.GetMemory(context.Background(), original.ID)
	require.NoError(t, err)
	assert.False(t, old.IsLatest)
	assert.Equal(t, models.MemoryRelationUpdates, old.MemoryRelations[updated.ID])
}

func TestUpdate_RejectsForgottenMemory(t *testing.T) {
	st := storetest.New()
	svc := newTestService(st)
	m, err := svc.Create(context.Background(), "likes tea", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)
	_, err = st.ForgetMemory(context.Background(), m.ID, nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), &m.ID, nil, "work", "new content", nil, nil)

	assert.Error(t, err)
}

func TestUpdate_RejectsEmptyContent(t *testing.T) {
	st := storetest.New()
	svc := newTestService(st)
	m, err := svc.Create(context.Background(), "likes tea", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), &m.ID, nil, "work", "  ", nil, nil)

	assert.Error(t, err)
}

func TestForget_RejectsStaticMemory(t *testing.T) {
	st := storetest.New()
	isStatic := true
	svc := newTestService(st)
	m, err := svc.Create(context.Background(), "birthday is in June", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)
	m.IsStatic = isStatic
	require.NoError(t, st.UpdateMemory(context.Background(), m))

	_, err = svc.Forget(context.Background(), &m.ID, nil, "", nil)

	assert.Error(t, err)
}

func TestForget_ResolvesByContentAndTag(t *testing.T) {
	st := storetest.New()
	svc := newTestService(st)
	m, err := svc.Create(context.Background(), "likes tea", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)

	id, err := svc.Forget(context.Background(), nil, &m.Content, "work", nil)

	require.NoError(t, err)
	assert.Equal(t, m.ID, id)
	got, err := st.GetMemory(context.Background(), m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsForgotten)
}

func TestResolve_RequiresIDOrContent(t *testing.T) {
	svc := newTestService(storetest.New())

	_, err := svc.resolve(context.Background(), nil, nil, "work")

	assert.Error(t, err)
}

func TestGetProfile_RequiresContainerTag(t *testing.T) {
	svc := newTestService(storetest.New())

	_, err := svc.GetProfile(context.Background(), models.GetProfileRequest{})

	assert.Error(t, err)
}

func TestGetProfile_AssemblesStaticFacts(t *testing.T) {
	st := storetest.New()
	svc := newTestService(st)
	m, err := svc.Create(context.Background(), "always drinks tea", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)
	m.IsStatic = true
	require.NoError(t, st.UpdateMemory(context.Background(), m))

	profile, err := svc.GetProfile(context.Background(), models.GetProfileRequest{ContainerTag: "work"})

	require.NoError(t, err)
	require.Len(t, profile.StaticFacts, 1)
	assert.Equal(t, 1, profile.TotalMemories)
	assert.Nil(t, profile.Narrative)
}

func TestGetProfile_NarrativeFailureIsSwallowed(t *testing.T) {
	// Given: a generator that will propagate an error from an unavailable model,
	// requested with GenerateNarrative true
	st := storetest.New()
	svc := NewService(st, fakeEmbedder{dim: 4}, fakeLLM{available: false}, zap.NewNop())
	m, err := svc.Create(context.Background(), "always drinks tea", "work", models.MemoryTypeFact, nil)
	require.NoError(t, err)
	m.IsStatic = true
	require.NoError(t, st.UpdateMemory(context.Background(), m))

	// When: requesting a narrative from an unavailable model
	profile, err := svc.GetProfile(context.Background(), models.GetProfileRequest{
		ContainerTag: "work", GenerateNarrative: true,
	})

	// Then: the request still succeeds, just without a narrative
	require.NoError(t, err)
	assert.Nil(t, profile.Narrative)
}

func TestIngestConversation_NoCandidatesIsEmptyResponse(t *testing.T) {
	svc := newTestService(storetest.New())

	resp, err := svc.IngestConversation(context.Background(), []models.ConversationMessage{
		{Role: "user", Content: "hello"},
	}, "work")

	require.NoError(t, err)
	assert.Equal(t, 0, resp.MemoriesExtracted)
}

func TestIngestConversation_ExtractsAndPersistsCandidates(t *testing.T) {
	st := storetest.New()
	model := fakeLLM{
		available:  true,
		jsonResult: []byte(`[{"content":"lives in Berlin","memoryType":"fact","confidence":0.9}]`),
	}
	svc := NewService(st, fakeEmbedder{dim: 4}, model, zap.NewNop())

	resp, err := svc.IngestConversation(context.Background(), []models.ConversationMessage{
		{Role: "user", Content: "I live in Berlin"},
	}, "work")

	require.NoError(t, err)
	assert.Equal(t, 1, resp.MemoriesExtracted)
	require.Len(t, resp.MemoryIDs, 1)

	got, err := st.GetMemory(context.Background(), resp.MemoryIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "lives in Berlin", got.Content)
}
