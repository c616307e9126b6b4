package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
	"github.com/pgvector/pgvector-go"
)

// CreateChunksBatch inserts chunks transactionally, the way the
// teacher's UpsertDocumentChunks deletes-then-inserts within a
// single transaction; this method only inserts since chunk deletion
// and creation are distinct Store operations in the fuller contract.
func (s *Store) CreateChunksBatch(ctx context.Context, chunks []*models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Storage(err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range chunks {
		var embedding any
		if c.Embedding != nil {
			embedding = pgvector.NewVector(c.Embedding)
		}
		batch.Queue(`
INSERT INTO chunks (id, document_id, content, embedded_content, position, token_count, embedding, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			c.ID, c.DocumentID, c.Content, c.EmbeddedContent, c.Position, c.TokenCount, embedding, c.CreatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperr.Storage(err)
		}
	}
	if err := br.Close(); err != nil {
		return apperr.Storage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// UpdateChunkEmbeddingsBatch fills in embeddings computed
// asynchronously after chunking, one update per chunk id.
func (s *Store) UpdateChunkEmbeddingsBatch(ctx context.Context, updates []store.ChunkEmbeddingUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Storage(err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE chunks SET embedding=$2 WHERE id=$1`, u.ChunkID, pgvector.NewVector(u.Embedding))
	}

	br := tx.SendBatch(ctx, batch)
	for range updates {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperr.Storage(err)
		}
	}
	if err := br.Close(); err != nil {
		return apperr.Storage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Store) DeleteChunksByDocumentID(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE document_id=$1`, documentID)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Store) DeleteAllChunks(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks`)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// SearchSimilarChunks runs a cosine-ANN query: score = 1 -
// cosine_distance, ordered descending, results below threshold
// excluded, optionally scoped to a set of container tags on the
// owning document.
func (s *Store) SearchSimilarChunks(ctx context.Context, embedding []float32, limit int, threshold float64, containerTags []string) ([]models.ChunkMatch, error) {
	args := []any{pgvector.NewVector(embedding)}
	where := "TRUE"
	if len(containerTags) > 0 {
		clauses := make([]string, 0, len(containerTags))
		for _, tag := range containerTags {
			frag, err := json.Marshal([]string{tag})
			if err != nil {
				return nil, apperr.Storage(err)
			}
			args = append(args, frag)
			clauses = append(clauses, "d.container_tags @> $"+strconv.Itoa(len(args))+"::jsonb")
		}
		where = "(" + strings.Join(clauses, " OR ") + ")"
	}
	thresholdPos := len(args) + 1
	args = append(args, threshold)
	limitPos := len(args) + 1
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT c.id, c.document_id, c.content, c.embedded_content, c.position, c.token_count, c.created_at,
	1 - (c.embedding <=> $1) AS score, d.title, d.doc_type, d.container_tags
FROM chunks c
JOIN documents d ON d.id = c.document_id
WHERE c.embedding IS NOT NULL AND %s
	AND 1 - (c.embedding <=> $1) >= $%d
ORDER BY c.embedding <=> $1
LIMIT $%d`, where, thresholdPos, limitPos)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.ChunkMatch
	for rows.Next() {
		var m models.ChunkMatch
		var docType string
		var tagsRaw []byte
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.Content, &m.EmbeddedContent, &m.Position,
			&m.TokenCount, &m.CreatedAt, &m.Score, &m.DocumentTitle, &docType, &tagsRaw); err != nil {
			return nil, apperr.Storage(err)
		}
		m.DocumentType = models.DocumentType(docType)
		_ = json.Unmarshal(tagsRaw, &m.ContainerTags)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}
