package postgres

import (
	"context"
	"strconv"

	"github.com/momo-run/momo/internal/apperr"
)

const embeddingDimensionKey = "embedding_dimension"

// GetEmbeddingDimension reads the dimension recorded the first time
// the service started against this database, letting the migration
// guard detect a mismatch against the configured embedder before any
// vector write happens.
func (s *Store) GetEmbeddingDimension(ctx context.Context) (*int, error) {
	var raw string
	err := s.pool.QueryRow(ctx, `SELECT value FROM momo_meta WHERE key=$1`, embeddingDimensionKey).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, apperr.Storage(err)
	}
	dim, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &dim, nil
}

func (s *Store) SetEmbeddingDimension(ctx context.Context, dim int) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO momo_meta (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value=$2`, embeddingDimensionKey, strconv.Itoa(dim))
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}
