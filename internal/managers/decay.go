package managers

import (
	"context"
	"time"

	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

// EpisodeDecayManager scores each episode memory's relevance and
// schedules a grace-period forget for any that have decayed past the
// configured threshold.
type EpisodeDecayManager struct {
	store         store.Store
	interval      time.Duration
	decayDays     float64
	decayFactor   float64
	threshold     float64
	graceDays     float64
	log           *zap.Logger
}

func NewEpisodeDecayManager(st store.Store, interval time.Duration, decayDays, decayFactor, threshold, graceDays float64, log *zap.Logger) *EpisodeDecayManager {
	return &EpisodeDecayManager{
		store:       st,
		interval:    interval,
		decayDays:   decayDays,
		decayFactor: decayFactor,
		threshold:   threshold,
		graceDays:   graceDays,
		log:         log,
	}
}

func (m *EpisodeDecayManager) Run(ctx context.Context) {
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

func (m *EpisodeDecayManager) RunOnce(ctx context.Context) {
	candidates, err := m.store.GetEpisodeDecayCandidates(ctx)
	if err != nil {
		m.log.Warn("episode decay: failed to fetch candidates", zap.Error(err))
		return
	}

	now := models.Now()
	for _, c := range candidates {
		daysSinceAccess := 0.0
		reference := c.CreatedAt
		if c.LastAccessed != nil {
			reference = *c.LastAccessed
		}
		if d := now.Sub(reference).Hours() / 24; d > 0 {
			daysSinceAccess = d
		}

		relevance := models.EpisodeRelevance(daysSinceAccess, m.decayDays, m.decayFactor)
		if relevance >= m.threshold {
			continue
		}

		forgetAt := now.Add(time.Duration(m.graceDays*24) * time.Hour)
		if _, err := m.store.SetMemoryForgetAfter(ctx, c.ID, forgetAt); err != nil {
			m.log.Warn("episode decay: schedule forget failed, continuing", zap.String("memoryId", c.ID), zap.Error(err))
		}
	}
}
