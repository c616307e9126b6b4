package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
	"github.com/pgvector/pgvector-go"
)

const memoryColumns = `id, content, space_id, container_tag, memory_type, version, is_latest,
	parent_memory_id, root_memory_id, memory_relations, source_count, is_inference, is_forgotten,
	is_static, forget_after, forget_reason, last_accessed, confidence, metadata, created_at, updated_at`

func scanMemory(row interface {
	Scan(dest ...any) error
}) (*models.Memory, error) {
	m := &models.Memory{}
	var memType string
	var relations, meta []byte
	if err := row.Scan(&m.ID, &m.Content, &m.SpaceID, &m.ContainerTag, &memType, &m.Version,
		&m.IsLatest, &m.ParentMemoryID, &m.RootMemoryID, &relations, &m.SourceCount,
		&m.IsInference, &m.IsForgotten, &m.IsStatic, &m.ForgetAfter, &m.ForgetReason,
		&m.LastAccessed, &m.Confidence, &meta, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.MemoryType = models.MemoryType(memType)
	if len(relations) > 0 {
		raw := map[string]string{}
		_ = json.Unmarshal(relations, &raw)
		m.MemoryRelations = make(map[string]models.MemoryRelationType, len(raw))
		for k, v := range raw {
			m.MemoryRelations[k] = models.MemoryRelationType(v)
		}
	}
	_ = json.Unmarshal(meta, &m.Metadata)
	return m, nil
}

func (s *Store) CreateMemory(ctx context.Context, m *models.Memory) error {
	relations := map[string]string{}
	for k, v := range m.MemoryRelations {
		relations[k] = string(v)
	}
	relationsJSON, err := json.Marshal(relations)
	if err != nil {
		return apperr.Storage(err)
	}
	metaJSON, err := json.Marshal(m.Metadata)
	if err != nil {
		return apperr.Storage(err)
	}
	var embedding any
	if m.Embedding != nil {
		embedding = pgvector.NewVector(m.Embedding)
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO memories (id, content, space_id, container_tag, memory_type, version, is_latest,
	parent_memory_id, root_memory_id, memory_relations, source_count, is_inference, is_forgotten,
	is_static, forget_after, forget_reason, last_accessed, confidence, metadata, embedding,
	created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		m.ID, m.Content, m.SpaceID, m.ContainerTag, string(m.MemoryType), m.Version, m.IsLatest,
		m.ParentMemoryID, m.RootMemoryID, relationsJSON, m.SourceCount, m.IsInference, m.IsForgotten,
		m.IsStatic, m.ForgetAfter, m.ForgetReason, m.LastAccessed, m.Confidence, metaJSON, embedding,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// UpdateMemory rewrites a full memory row; used by the memory
// service for the is_latest flip and other full-row writes. The dedup
// source-count increment goes through UpdateMemorySourceCount instead.
func (s *Store) UpdateMemory(ctx context.Context, m *models.Memory) error {
	relations := map[string]string{}
	for k, v := range m.MemoryRelations {
		relations[k] = string(v)
	}
	relationsJSON, err := json.Marshal(relations)
	if err != nil {
		return apperr.Storage(err)
	}
	metaJSON, err := json.Marshal(m.Metadata)
	if err != nil {
		return apperr.Storage(err)
	}
	var embedding any
	if m.Embedding != nil {
		embedding = pgvector.NewVector(m.Embedding)
	}

	_, err = s.pool.Exec(ctx, `
UPDATE memories SET content=$2, container_tag=$3, memory_type=$4, version=$5, is_latest=$6,
	parent_memory_id=$7, root_memory_id=$8, memory_relations=$9, source_count=$10,
	is_inference=$11, is_forgotten=$12, is_static=$13, forget_after=$14, forget_reason=$15,
	last_accessed=$16, confidence=$17, metadata=$18, embedding=$19, updated_at=$20
WHERE id=$1`,
		m.ID, m.Content, m.ContainerTag, string(m.MemoryType), m.Version, m.IsLatest,
		m.ParentMemoryID, m.RootMemoryID, relationsJSON, m.SourceCount, m.IsInference,
		m.IsForgotten, m.IsStatic, m.ForgetAfter, m.ForgetReason, m.LastAccessed, m.Confidence,
		metaJSON, embedding, m.UpdatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Store) GetMemory(ctx context.Context, id string) (*models.Memory, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id=$1`, id)
	m, err := scanMemory(row)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("memory %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return m, nil
}

func (s *Store) GetLatestMemoryByContent(ctx context.Context, content, containerTag string) (*models.Memory, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+memoryColumns+` FROM memories
WHERE content=$1 AND container_tag=$2 AND is_latest=true LIMIT 1`, content, containerTag)
	m, err := scanMemory(row)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("memory with content %q not found in tag %q", content, containerTag)
		}
		return nil, apperr.Storage(err)
	}
	return m, nil
}

// ListMemoriesByTag is a plain (non-semantic) listing used by
// profile assembly for static facts and, absent a query, dynamic
// facts: latest, non-forgotten rows in a tag, optionally narrowed to
// a set of memory types and to is_static=true, newest first.
func (s *Store) ListMemoriesByTag(ctx context.Context, containerTag string, memTypes []models.MemoryType, staticOnly bool, limit int) ([]models.Memory, error) {
	where := []string{"container_tag = $1", "is_latest = true", "is_forgotten = false"}
	args := []any{containerTag}

	if len(memTypes) > 0 {
		placeholders := make([]string, 0, len(memTypes))
		for _, t := range memTypes {
			args = append(args, string(t))
			placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
		}
		where = append(where, "memory_type IN ("+strings.Join(placeholders, ",")+")")
	}
	if staticOnly {
		where = append(where, "is_static = true")
	}

	limitPos := len(args) + 1
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM memories WHERE %s ORDER BY updated_at DESC LIMIT $%d`,
		memoryColumns, strings.Join(where, " AND "), limitPos)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func (s *Store) ForgetMemory(ctx context.Context, id string, reason *string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE memories SET is_forgotten=true, forget_reason=$2, updated_at=now()
WHERE id=$1 AND is_static=false`, id, reason)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdateMemorySourceCount(ctx context.Context, id string, count int) error {
	_, err := s.pool.Exec(ctx, `UPDATE memories SET source_count=$2, updated_at=now() WHERE id=$1`, id, count)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Store) SetMemoryForgetAfter(ctx context.Context, id string, when time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE memories SET forget_after=$2, updated_at=now() WHERE id=$1`, id, when)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return int(tag.RowsAffected()), nil
}

// SearchSimilarMemories mirrors SearchSimilarChunks's cosine-ANN
// shape but scoped to the latest, non-forgotten (unless requested)
// rows, optionally of a single container tag (nil means every tag).
func (s *Store) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int, threshold float64, containerTag *string, includeForgotten bool) ([]models.MemoryMatch, error) {
	args := []any{pgvector.NewVector(embedding)}
	where := []string{"embedding IS NOT NULL", "is_latest = true"}
	if !includeForgotten {
		where = append(where, "is_forgotten = false")
	}
	if containerTag != nil {
		args = append(args, *containerTag)
		where = append(where, "container_tag = $"+strconv.Itoa(len(args)))
	}
	thresholdPos := len(args) + 1
	args = append(args, threshold)
	limitPos := len(args) + 1
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT %s, 1 - (embedding <=> $1) AS similarity
FROM memories
WHERE %s AND 1 - (embedding <=> $1) >= $%d
ORDER BY embedding <=> $1
LIMIT $%d`, memoryColumns, strings.Join(where, " AND "), thresholdPos, limitPos)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.MemoryMatch
	for rows.Next() {
		mem, err := scanMemoryWithSimilarity(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, *mem)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func scanMemoryWithSimilarity(rows interface {
	Scan(dest ...any) error
}) (*models.MemoryMatch, error) {
	m := &models.Memory{}
	match := &models.MemoryMatch{}
	var memType string
	var relations, meta []byte
	if err := rows.Scan(&m.ID, &m.Content, &m.SpaceID, &m.ContainerTag, &memType, &m.Version,
		&m.IsLatest, &m.ParentMemoryID, &m.RootMemoryID, &relations, &m.SourceCount,
		&m.IsInference, &m.IsForgotten, &m.IsStatic, &m.ForgetAfter, &m.ForgetReason,
		&m.LastAccessed, &m.Confidence, &meta, &m.CreatedAt, &m.UpdatedAt, &match.Similarity); err != nil {
		return nil, err
	}
	m.MemoryType = models.MemoryType(memType)
	if len(relations) > 0 {
		raw := map[string]string{}
		_ = json.Unmarshal(relations, &raw)
		m.MemoryRelations = make(map[string]models.MemoryRelationType, len(raw))
		for k, v := range raw {
			m.MemoryRelations[k] = models.MemoryRelationType(v)
		}
	}
	_ = json.Unmarshal(meta, &m.Metadata)
	match.Memory = *m
	return match, nil
}

func (s *Store) GetForgettingCandidates(ctx context.Context, now time.Time) ([]*models.Memory, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+memoryColumns+` FROM memories
WHERE is_forgotten=false AND is_static=false AND forget_after IS NOT NULL AND forget_after <= $1`, now)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func (s *Store) GetEpisodeDecayCandidates(ctx context.Context) ([]models.EpisodeDecayCandidate, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, container_tag, last_accessed, created_at FROM memories
WHERE is_forgotten=false AND is_static=false AND is_latest=true AND memory_type='episode'`)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []models.EpisodeDecayCandidate
	for rows.Next() {
		var c models.EpisodeDecayCandidate
		if err := rows.Scan(&c.ID, &c.ContainerTag, &c.LastAccessed, &c.CreatedAt); err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func (s *Store) GetActiveContainerTags(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT container_tag FROM memories
WHERE is_latest=true AND is_forgotten=false AND container_tag IS NOT NULL`)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, apperr.Storage(err)
		}
		out = append(out, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

func (s *Store) GetMaxMemoryUpdatedAt(ctx context.Context, tag string) (*time.Time, error) {
	var t *time.Time
	err := s.pool.QueryRow(ctx, `
SELECT max(updated_at) FROM memories
WHERE container_tag=$1 AND is_latest=true AND is_forgotten=false`, tag).Scan(&t)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return t, nil
}
