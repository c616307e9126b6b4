package intelligence

import (
	"context"

	"github.com/momo-run/momo/internal/embeddings"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

// Deduplicator drops candidates that already exist as a
// near-identical memory in the same container, bumping the
// survivor's source_count instead of creating a duplicate row.
type Deduplicator struct {
	store    store.Store
	embedder embeddings.Embedder
	log      *zap.Logger
}

func NewDeduplicator(st store.Store, embedder embeddings.Embedder, log *zap.Logger) *Deduplicator {
	return &Deduplicator{store: st, embedder: embedder, log: log}
}

// Deduplicate returns the subset of candidates with no close
// existing match. Per-candidate embedding/search/update failures are
// logged and the candidate is conservatively kept rather than
// silently dropped on an inconclusive check.
func (d *Deduplicator) Deduplicate(ctx context.Context, candidates []models.ExtractedMemoryCandidate, containerTag string) []models.ExtractedMemoryCandidate {
	survivors := make([]models.ExtractedMemoryCandidate, 0, len(candidates))

	for _, c := range candidates {
		vec, err := d.embedder.EmbedPassage(ctx, c.Content)
		if err != nil {
			d.log.Warn("dedup: embed failed, keeping candidate", zap.Error(err))
			survivors = append(survivors, c)
			continue
		}
		tag := containerTag
		hits, err := d.store.SearchSimilarMemories(ctx, vec, 1, 0.9, &tag, false)
		if err != nil {
			d.log.Warn("dedup: search failed, keeping candidate", zap.Error(err))
			survivors = append(survivors, c)
			continue
		}
		if len(hits) == 0 {
			survivors = append(survivors, c)
			continue
		}

		existing := hits[0]
		if err := d.store.UpdateMemorySourceCount(ctx, existing.ID, existing.SourceCount+1); err != nil {
			d.log.Warn("dedup: source count bump failed, keeping candidate", zap.Error(err))
			survivors = append(survivors, c)
			continue
		}
	}
	return survivors
}
