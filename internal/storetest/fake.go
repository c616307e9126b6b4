// Package storetest provides an in-memory store.Store double for
// package tests that would otherwise need a live Postgres instance.
package storetest

import (
	"context"
	"sort"
	"time"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
)

// Store is a minimal, non-concurrent-safe in-memory implementation
// of store.Store. Unimplemented document/chunk operations and the
// graph traversals panic on call so a test relying on one fails
// loudly instead of silently succeeding against a no-op; the two
// migration steps (QueueAllDocumentsForReprocessing, DeleteAllChunks)
// are no-ops.
type Store struct {
	Memories  map[string]*models.Memory
	Profiles  map[string]*models.CachedProfile
	Tags      map[string]*models.ContainerTag
	Sources   []*models.MemorySource
	Dimension *int
}

func New() *Store {
	return &Store{
		Memories: make(map[string]*models.Memory),
		Profiles: make(map[string]*models.CachedProfile),
		Tags:     make(map[string]*models.ContainerTag),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) CreateDocument(context.Context, *models.Document) error { panic("not implemented") }
func (s *Store) UpdateDocument(context.Context, *models.Document) error { panic("not implemented") }
func (s *Store) GetDocument(context.Context, string) (*models.Document, error) {
	panic("not implemented")
}
func (s *Store) DeleteDocument(context.Context, string) (bool, error) { panic("not implemented") }
func (s *Store) ListDocuments(context.Context, models.DocumentFilter) ([]models.DocumentSummary, models.Pagination, error) {
	panic("not implemented")
}
func (s *Store) QueueAllDocumentsForReprocessing(context.Context) error { return nil }

func (s *Store) CreateChunksBatch(context.Context, []*models.Chunk) error { panic("not implemented") }
func (s *Store) UpdateChunkEmbeddingsBatch(context.Context, []store.ChunkEmbeddingUpdate) error {
	panic("not implemented")
}
func (s *Store) DeleteChunksByDocumentID(context.Context, string) error { panic("not implemented") }
func (s *Store) DeleteAllChunks(context.Context) error                  { return nil }
func (s *Store) SearchSimilarChunks(context.Context, []float32, int, float64, []string) ([]models.ChunkMatch, error) {
	panic("not implemented")
}

func (s *Store) CreateMemory(_ context.Context, mem *models.Memory) error {
	cp := *mem
	s.Memories[mem.ID] = &cp
	return nil
}

func (s *Store) UpdateMemory(_ context.Context, mem *models.Memory) error {
	if _, ok := s.Memories[mem.ID]; !ok {
		return apperr.NotFound("memory %s not found", mem.ID)
	}
	cp := *mem
	s.Memories[mem.ID] = &cp
	return nil
}

func (s *Store) GetMemory(_ context.Context, id string) (*models.Memory, error) {
	m, ok := s.Memories[id]
	if !ok {
		return nil, apperr.NotFound("memory %s not found", id)
	}
	cp := *m
	return &cp, nil
}

func (s *Store) GetLatestMemoryByContent(_ context.Context, content, containerTag string) (*models.Memory, error) {
	for _, m := range s.Memories {
		if !m.IsLatest || m.Content != content {
			continue
		}
		if m.ContainerTag == nil || *m.ContainerTag != containerTag {
			continue
		}
		cp := *m
		return &cp, nil
	}
	return nil, apperr.NotFound("memory not found")
}

func (s *Store) ListMemoriesByTag(_ context.Context, containerTag string, memTypes []models.MemoryType, staticOnly bool, limit int) ([]models.Memory, error) {
	allowed := make(map[models.MemoryType]bool, len(memTypes))
	for _, t := range memTypes {
		allowed[t] = true
	}
	var out []models.Memory
	for _, m := range s.Memories {
		if !m.IsLatest || m.IsForgotten {
			continue
		}
		if m.ContainerTag == nil || *m.ContainerTag != containerTag {
			continue
		}
		if len(allowed) > 0 && !allowed[m.MemoryType] {
			continue
		}
		if staticOnly && !m.IsStatic {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ForgetMemory(_ context.Context, id string, reason *string) (bool, error) {
	m, ok := s.Memories[id]
	if !ok {
		return false, nil
	}
	if m.IsStatic {
		return false, nil
	}
	m.IsForgotten = true
	m.ForgetReason = reason
	return true, nil
}

func (s *Store) UpdateMemorySourceCount(_ context.Context, id string, count int) error {
	m, ok := s.Memories[id]
	if !ok {
		return apperr.NotFound("memory %s not found", id)
	}
	m.SourceCount = count
	return nil
}

func (s *Store) SearchSimilarMemories(_ context.Context, _ []float32, limit int, _ float64, containerTag *string, includeForgotten bool) ([]models.MemoryMatch, error) {
	var out []models.MemoryMatch
	for _, m := range s.Memories {
		if !m.IsLatest {
			continue
		}
		if m.IsForgotten && !includeForgotten {
			continue
		}
		if containerTag != nil && (m.ContainerTag == nil || *m.ContainerTag != *containerTag) {
			continue
		}
		out = append(out, models.MemoryMatch{Memory: *m, Similarity: 1})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SetMemoryForgetAfter(_ context.Context, id string, when time.Time) (int, error) {
	m, ok := s.Memories[id]
	if !ok {
		return 0, apperr.NotFound("memory %s not found", id)
	}
	m.ForgetAfter = &when
	return 1, nil
}

func (s *Store) GetGraphNeighborhood(context.Context, string, int, int, map[models.GraphEdgeType]bool) (*models.GraphResponse, error) {
	panic("not implemented")
}
func (s *Store) GetContainerGraph(context.Context, string, int) (*models.GraphResponse, error) {
	panic("not implemented")
}

func (s *Store) GetForgettingCandidates(_ context.Context, now time.Time) ([]*models.Memory, error) {
	var out []*models.Memory
	for _, m := range s.Memories {
		if m.IsForgotten || m.ForgetAfter == nil {
			continue
		}
		if m.ForgetAfter.After(now) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) GetEpisodeDecayCandidates(context.Context) ([]models.EpisodeDecayCandidate, error) {
	var out []models.EpisodeDecayCandidate
	for _, m := range s.Memories {
		if m.IsForgotten || m.MemoryType != models.MemoryTypeEpisode {
			continue
		}
		out = append(out, models.EpisodeDecayCandidate{
			ID: m.ID, ContainerTag: m.ContainerTag, LastAccessed: m.LastAccessed, CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) GetActiveContainerTags(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, m := range s.Memories {
		if m.ContainerTag == nil || m.IsForgotten {
			continue
		}
		if !seen[*m.ContainerTag] {
			seen[*m.ContainerTag] = true
			out = append(out, *m.ContainerTag)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) GetMaxMemoryUpdatedAt(_ context.Context, tag string) (*time.Time, error) {
	var max *time.Time
	for _, m := range s.Memories {
		if m.ContainerTag == nil || *m.ContainerTag != tag {
			continue
		}
		if max == nil || m.UpdatedAt.After(*max) {
			t := m.UpdatedAt
			max = &t
		}
	}
	return max, nil
}

func (s *Store) GetCachedProfile(_ context.Context, tag string) (*models.CachedProfile, error) {
	p, ok := s.Profiles[tag]
	if !ok {
		return nil, apperr.NotFound("no cached profile for %s", tag)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpsertCachedProfile(_ context.Context, profile *models.CachedProfile) error {
	cp := *profile
	s.Profiles[profile.ContainerTag] = &cp
	return nil
}

func (s *Store) GetContainerTag(_ context.Context, tag string) (*models.ContainerTag, error) {
	if t, ok := s.Tags[tag]; ok {
		cp := *t
		return &cp, nil
	}
	return &models.ContainerTag{Tag: tag}, nil
}

func (s *Store) CreateMemorySource(_ context.Context, src *models.MemorySource) error {
	s.Sources = append(s.Sources, src)
	return nil
}

func (s *Store) GetEmbeddingDimension(context.Context) (*int, error) {
	return s.Dimension, nil
}

func (s *Store) SetEmbeddingDimension(_ context.Context, dim int) error {
	s.Dimension = &dim
	return nil
}
