// Package managers runs the single-threaded periodic background
// sweeps: auto-forgetting of expired memories, episode relevance
// decay, and profile-cache refresh. Each manager's run_once is
// idempotent and tolerant of partial per-item failure.
package managers

import (
	"context"
	"sync"
	"time"

	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

// ForgettingManager sweeps memories whose forget_after has elapsed.
// RunOnce is also reachable directly from the admin trigger endpoint,
// so a running sweep is guarded against overlapping with the ticker.
type ForgettingManager struct {
	store    store.Store
	interval time.Duration
	running  sync.Mutex
	log      *zap.Logger
}

func NewForgettingManager(st store.Store, interval time.Duration, log *zap.Logger) *ForgettingManager {
	return &ForgettingManager{store: st, interval: interval, log: log}
}

// Run loops RunOnce on the configured interval until ctx is canceled.
func (m *ForgettingManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

func (m *ForgettingManager) RunOnce(ctx context.Context) {
	if !m.running.TryLock() {
		m.log.Info("forgetting sweep: already running, skipping")
		return
	}
	defer m.running.Unlock()

	candidates, err := m.store.GetForgettingCandidates(ctx, models.Now())
	if err != nil {
		m.log.Warn("forgetting sweep: failed to fetch candidates", zap.Error(err))
		return
	}

	reason := "auto-forgotten: expired"
	for _, c := range candidates {
		if _, err := m.store.ForgetMemory(ctx, c.ID, &reason); err != nil {
			m.log.Warn("forgetting sweep: forget failed, continuing", zap.String("memoryId", c.ID), zap.Error(err))
		}
	}
}
