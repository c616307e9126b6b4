package postgres

import (
	"context"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
)

// GetContainerTag reports the document/memory counts under a tag
// plus its LLM document-filter policy. A tag with no explicit policy
// row still resolves — filtering is opt-in, so the zero value (no
// filter, no prompt) is a valid, non-error answer.
func (s *Store) GetContainerTag(ctx context.Context, tag string) (*models.ContainerTag, error) {
	ct := &models.ContainerTag{Tag: tag}

	row := s.pool.QueryRow(ctx, `SELECT should_filter, filter_prompt FROM container_tags WHERE tag=$1`, tag)
	if err := row.Scan(&ct.ShouldFilter, &ct.FilterPrompt); err != nil && !isNoRows(err) {
		return nil, apperr.Storage(err)
	}

	if err := s.pool.QueryRow(ctx, `
SELECT count(*) FROM documents WHERE container_tags @> $1::jsonb`, mustTagArray(tag)).Scan(&ct.DocumentCount); err != nil {
		return nil, apperr.Storage(err)
	}

	if err := s.pool.QueryRow(ctx, `
SELECT count(*) FROM memories WHERE container_tag=$1 AND is_latest=true AND is_forgotten=false`, tag).Scan(&ct.MemoryCount); err != nil {
		return nil, apperr.Storage(err)
	}

	return ct, nil
}
