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

func TestEpisodeDecayManager_RunOnce_SchedulesForgetForStaleEpisode(t *testing.T) {
	// Given: an episode memory not accessed in a long time
	st := storetest.New()
	longAgo := models.Now().Add(-365 * 24 * time.Hour)
	ep := models.NewMemory("ep1", "went hiking", "", strPtr("work"), models.MemoryTypeEpisode)
	ep.LastAccessed = &longAgo
	require.NoError(t, st.CreateMemory(context.Background(), ep))

	mgr := NewEpisodeDecayManager(st, time.Minute, 30, 0.9, 0.5, 10, zap.NewNop())

	// When
	mgr.RunOnce(context.Background())

	// Then: forget_after is scheduled
	got, err := st.GetMemory(context.Background(), "ep1")
	require.NoError(t, err)
	require.NotNil(t, got.ForgetAfter)
	assert.True(t, got.ForgetAfter.After(models.Now()))
}

func TestEpisodeDecayManager_RunOnce_LeavesFreshEpisodeAlone(t *testing.T) {
	// Given: an episode accessed moments ago
	st := storetest.New()
	justNow := models.Now()
	ep := models.NewMemory("ep2", "just happened", "", strPtr("work"), models.MemoryTypeEpisode)
	ep.LastAccessed = &justNow
	require.NoError(t, st.CreateMemory(context.Background(), ep))

	mgr := NewEpisodeDecayManager(st, time.Minute, 30, 0.9, 0.5, 10, zap.NewNop())

	// When
	mgr.RunOnce(context.Background())

	// Then: relevance is still high, no forget scheduled
	got, err := st.GetMemory(context.Background(), "ep2")
	require.NoError(t, err)
	assert.Nil(t, got.ForgetAfter)
}
