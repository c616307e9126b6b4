package managers

import (
	"context"
	"time"

	"github.com/momo-run/momo/internal/keylock"
	"github.com/momo-run/momo/internal/llm"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/profile"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

// ProfileRefreshManager keeps each active container tag's cached
// narrative and compacted fact summary current. Refreshes are locked
// per tag so two overlapping RunOnce passes can never both rebuild
// the same tag's cache at once, while unrelated tags still refresh
// independently.
type ProfileRefreshManager struct {
	store     store.Store
	model     llm.LLM
	generator *profile.Generator
	interval  time.Duration
	locks     *keylock.Set
	log       *zap.Logger
}

func NewProfileRefreshManager(st store.Store, model llm.LLM, interval time.Duration, log *zap.Logger) *ProfileRefreshManager {
	return &ProfileRefreshManager{
		store:     st,
		model:     model,
		generator: profile.NewGenerator(model),
		interval:  interval,
		locks:     keylock.NewSet(),
		log:       log,
	}
}

func (m *ProfileRefreshManager) Run(ctx context.Context) {
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

func (m *ProfileRefreshManager) RunOnce(ctx context.Context) {
	if m.model == nil || !m.model.IsAvailable() {
		return
	}

	tags, err := m.store.GetActiveContainerTags(ctx)
	if err != nil {
		m.log.Warn("profile refresh: failed to list active tags", zap.Error(err))
		return
	}

	for _, tag := range tags {
		if err := m.refreshTag(ctx, tag); err != nil {
			m.log.Warn("profile refresh: tag failed, continuing", zap.String("tag", tag), zap.Error(err))
		}
	}
}

func (m *ProfileRefreshManager) refreshTag(ctx context.Context, tag string) error {
	unlock := m.locks.Lock(tag)
	defer unlock()

	maxUpdated, err := m.store.GetMaxMemoryUpdatedAt(ctx, tag)
	if err != nil {
		return err
	}
	if maxUpdated == nil {
		return nil
	}

	cached, err := m.store.GetCachedProfile(ctx, tag)
	stale := err != nil || cached.CachedAt.Before(*maxUpdated)
	if !stale {
		return nil
	}

	memories, err := m.store.ListMemoriesByTag(ctx, tag, nil, false, 200)
	if err != nil {
		return err
	}
	facts := make([]models.ProfileFact, 0, len(memories))
	for _, mem := range memories {
		facts = append(facts, models.ProfileFact{
			ID: mem.ID, Content: mem.Content, MemoryType: mem.MemoryType,
			Confidence: mem.Confidence, UpdatedAt: mem.UpdatedAt,
		})
	}

	narrative, err := m.generator.Narrative(ctx, facts)
	if err != nil {
		return err
	}
	summary, err := m.generator.CompactFacts(ctx, facts)
	if err != nil {
		return err
	}

	return m.store.UpsertCachedProfile(ctx, &models.CachedProfile{
		ContainerTag: tag,
		Narrative:    narrative,
		Summary:      summary,
		CachedAt:     models.Now(),
	})
}
