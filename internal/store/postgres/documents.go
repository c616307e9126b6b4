package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
)

func (s *Store) CreateDocument(ctx context.Context, d *models.Document) error {
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return apperr.Storage(err)
	}
	tags, err := json.Marshal(d.ContainerTags)
	if err != nil {
		return apperr.Storage(err)
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO documents (id, custom_id, connection_id, title, content, summary, url, source,
	doc_type, status, metadata, container_tags, chunk_count, token_count, word_count,
	error_message, should_llm_filter, filter_prompt, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		d.ID, d.CustomID, d.ConnectionID, d.Title, d.Content, d.Summary, d.URL, d.Source,
		string(d.Type), string(d.Status), meta, tags, d.ChunkCount, d.TokenCount, d.WordCount,
		d.ErrorMessage, d.ShouldLLMFilter, d.FilterPrompt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Store) UpdateDocument(ctx context.Context, d *models.Document) error {
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return apperr.Storage(err)
	}
	tags, err := json.Marshal(d.ContainerTags)
	if err != nil {
		return apperr.Storage(err)
	}

	_, err = s.pool.Exec(ctx, `
UPDATE documents SET title=$2, content=$3, summary=$4, url=$5, source=$6, doc_type=$7,
	status=$8, metadata=$9, container_tags=$10, chunk_count=$11, token_count=$12,
	word_count=$13, error_message=$14, should_llm_filter=$15, filter_prompt=$16, updated_at=$17
WHERE id=$1`,
		d.ID, d.Title, d.Content, d.Summary, d.URL, d.Source, string(d.Type),
		string(d.Status), meta, tags, d.ChunkCount, d.TokenCount, d.WordCount,
		d.ErrorMessage, d.ShouldLLMFilter, d.FilterPrompt, d.UpdatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, custom_id, connection_id, title, content, summary, url, source, doc_type, status,
	metadata, container_tags, chunk_count, token_count, word_count, error_message,
	should_llm_filter, filter_prompt, created_at, updated_at
FROM documents WHERE id=$1`, id)

	d := &models.Document{}
	var docType, status string
	var meta, tags []byte
	if err := row.Scan(&d.ID, &d.CustomID, &d.ConnectionID, &d.Title, &d.Content, &d.Summary,
		&d.URL, &d.Source, &docType, &status, &meta, &tags, &d.ChunkCount, &d.TokenCount,
		&d.WordCount, &d.ErrorMessage, &d.ShouldLLMFilter, &d.FilterPrompt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("document %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	d.Type = models.DocumentType(docType)
	d.Status = models.ProcessingStatus(status)
	_ = json.Unmarshal(meta, &d.Metadata)
	_ = json.Unmarshal(tags, &d.ContainerTags)
	return d, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id=$1`, id)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) QueueAllDocumentsForReprocessing(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `UPDATE documents SET status='queued', updated_at=now()`)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// ListDocuments lists documents with a parameterised ANY-match tag
// filter. Container tags are stored as a JSONB array; matching a
// candidate tag uses the containment operator `@>` against a
// single-element JSON array built entirely from bound parameters —
// no tag value is ever concatenated into the query text, satisfying
// the same injection-safety requirement the original's LIKE-based
// filter construction enforces.
func (s *Store) ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentSummary, models.Pagination, error) {
	filter.Clamp()

	where := "TRUE"
	args := []any{}
	if len(filter.ContainerTags) > 0 {
		clauses := make([]string, 0, len(filter.ContainerTags))
		for _, tag := range filter.ContainerTags {
			frag, err := json.Marshal([]string{tag})
			if err != nil {
				return nil, models.Pagination{}, apperr.Storage(err)
			}
			args = append(args, frag)
			clauses = append(clauses, fmt.Sprintf("container_tags @> $%d::jsonb", len(args)))
		}
		where = "(" + strings.Join(clauses, " OR ") + ")"
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM documents WHERE %s`, where)
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, models.Pagination{}, apperr.Storage(err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	listQuery := fmt.Sprintf(`
SELECT id, custom_id, title, doc_type, status, created_at, updated_at, metadata, container_tags
FROM documents WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d`, where, filter.Sort, strings.ToUpper(filter.Order), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, models.Pagination{}, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.DocumentSummary
	for rows.Next() {
		var d models.DocumentSummary
		var docType, status string
		var meta, tags []byte
		if err := rows.Scan(&d.ID, &d.CustomID, &d.Title, &docType, &status, &d.CreatedAt, &d.UpdatedAt, &meta, &tags); err != nil {
			return nil, models.Pagination{}, apperr.Storage(err)
		}
		d.Type = models.DocumentType(docType)
		d.Status = models.ProcessingStatus(status)
		_ = json.Unmarshal(meta, &d.Metadata)
		_ = json.Unmarshal(tags, &d.ContainerTags)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, apperr.Storage(err)
	}

	return out, models.NewPagination(filter.Page, filter.Limit, total), nil
}
