package managers

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

func strPtr(s string) *string { return &s }

func TestForgettingManager_RunOnce_ForgetsExpiredMemories(t *testing.T) {
	// Given: one memory past its forget_after and one not yet due
	st := storetest.New()
	past := models.Now().Add(-time.Hour)
	future := models.Now().Add(time.Hour)

	expired := models.NewMemory("expired", "old note", "", strPtr("work"), models.MemoryTypeFact)
	expired.ForgetAfter = &past
	notYet := models.NewMemory("not-yet", "recent note", "", strPtr("work"), models.MemoryTypeFact)
	notYet.ForgetAfter = &future

	require.NoError(t, st.CreateMemory(context.Background(), expired))
	require.NoError(t, st.CreateMemory(context.Background(), notYet))

	mgr := NewForgettingManager(st, time.Minute, zap.NewNop())

	// When
	mgr.RunOnce(context.Background())

	// Then: only the expired one is forgotten
	got, err := st.GetMemory(context.Background(), "expired")
	require.NoError(t, err)
	assert.True(t, got.IsForgotten)

	stillThere, err := st.GetMemory(context.Background(), "not-yet")
	require.NoError(t, err)
	assert.False(t, stillThere.IsForgotten)
}

func TestForgettingManager_RunOnce_SkipsWhenAlreadyRunning(t *testing.T) {
	// Given: a manager whose running lock is already held
	st := storetest.New()
	mgr := NewForgettingManager(st, time.Minute, zap.NewNop())
	require.True(t, mgr.running.TryLock())
	defer mgr.running.Unlock()

	// When/Then: a concurrent RunOnce returns immediately without panicking
	mgr.RunOnce(context.Background())
}
