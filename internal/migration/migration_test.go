package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/storetest"
)

type rejectPrompt struct{}

func (rejectPrompt) Confirm(string) bool { return false }

func TestGuard_Check_InitializesWhenAbsent(t *testing.T) {
	st := storetest.New()
	g := NewGuard(st, rejectPrompt{}, zap.NewNop())

	err := g.Check(context.Background(), 768)

	require.NoError(t, err)
	dim, err := st.GetEmbeddingDimension(context.Background())
	require.NoError(t, err)
	require.NotNil(t, dim)
	assert.Equal(t, 768, *dim)
}

func TestGuard_Check_NoopWhenDimensionMatches(t *testing.T) {
	st := storetest.New()
	require.NoError(t, st.SetEmbeddingDimension(context.Background(), 768))
	g := NewGuard(st, rejectPrompt{}, zap.NewNop())

	err := g.Check(context.Background(), 768)

	assert.NoError(t, err)
}

func TestGuard_Check_MismatchRejectedByOperatorErrors(t *testing.T) {
	st := storetest.New()
	require.NoError(t, st.SetEmbeddingDimension(context.Background(), 768))
	g := NewGuard(st, rejectPrompt{}, zap.NewNop())

	err := g.Check(context.Background(), 1024)

	require.Error(t, err)
	dim, _ := st.GetEmbeddingDimension(context.Background())
	assert.Equal(t, 768, *dim, "dimension must not be overwritten without approval")
}

func TestGuard_Check_MismatchApprovedPersistsNewDimension(t *testing.T) {
	st := storetest.New()
	require.NoError(t, st.SetEmbeddingDimension(context.Background(), 768))
	g := NewGuard(st, AlwaysApprove{}, zap.NewNop())

	err := g.Check(context.Background(), 1024)

	require.NoError(t, err)
	dim, err := st.GetEmbeddingDimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1024, *dim)
}
