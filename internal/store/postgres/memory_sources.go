package postgres

import (
	"context"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
)

func (s *Store) CreateMemorySource(ctx context.Context, src *models.MemorySource) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO memory_sources (id, memory_id, document_id, chunk_id, created_at)
VALUES ($1,$2,$3,$4,$5)`, src.ID, src.MemoryID, src.DocumentID, src.ChunkID, src.CreatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}
