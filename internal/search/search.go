package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/embeddings"
	"github.com/momo-run/momo/internal/llm"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/reranker"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

// Scope discriminates which entity classes a search request covers.
type Scope string

const (
	ScopeDocuments Scope = "documents"
	ScopeMemories  Scope = "memories"
	ScopeHybrid    Scope = "hybrid"
)

// Request is the normalized input to Service.Search.
type Request struct {
	Query         string
	Scope         Scope
	ContainerTags []string
	ContainerTag  *string
	Limit         int
	Threshold     float64
	IncludeChunks bool
	Rerank        bool
}

// ResultItemType discriminates the wire-level `type` tag of a result.
type ResultItemType string

const (
	ResultDocument ResultItemType = "document"
	ResultMemory   ResultItemType = "memory"
)

// Result is a single merged, ordered search hit.
type Result struct {
	Type        ResultItemType
	DocumentID  string
	MemoryID    string
	Score       float64
	RerankScore *float64
	Chunks      []models.ChunkMatch
	Summary     *string
	Content     *string
	Metadata    models.Metadata
	Version     int
	UpdatedAt   time.Time
}

// Service runs the pre-processing, retrieval, merge and optional
// rerank pipeline described for the unified search endpoint.
type Service struct {
	store     store.Store
	embedder  embeddings.Embedder
	llm       llm.LLM
	reranker  reranker.Reranker
	cache     *RewriteCache
	log       *zap.Logger

	enableRewrite  bool
	rewriteTimeout time.Duration
}

func NewService(st store.Store, embedder embeddings.Embedder, model llm.LLM, rr reranker.Reranker, cache *RewriteCache, enableRewrite bool, rewriteTimeout time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:          st,
		embedder:       embedder,
		llm:            model,
		reranker:       rr,
		cache:          cache,
		log:            log,
		enableRewrite:  enableRewrite,
		rewriteTimeout: rewriteTimeout,
	}
}

// Search runs the full pipeline for req and returns ordered results.
func (s *Service) Search(ctx context.Context, req Request) ([]Result, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, apperr.Validation("query must not be empty")
	}
	if req.Scope == "" {
		req.Scope = ScopeHybrid
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	effectiveQuery := s.rewrite(ctx, q)

	queryVec, err := s.embedder.EmbedQuery(ctx, effectiveQuery)
	if err != nil {
		return nil, err
	}

	var docResults []Result
	var memResults []Result

	if req.Scope == ScopeDocuments || req.Scope == ScopeHybrid {
		docResults, err = s.searchDocuments(ctx, queryVec, req)
		if err != nil {
			return nil, err
		}
	}
	if req.Scope == ScopeMemories || req.Scope == ScopeHybrid {
		memResults, err = s.searchMemories(ctx, queryVec, req)
		if err != nil {
			return nil, err
		}
	}

	merged := mergeDeduped(docResults, memResults)

	if req.Rerank && s.reranker != nil && s.reranker.IsEnabled() && len(merged) > 0 {
		merged, err = s.applyRerank(ctx, effectiveQuery, merged)
		if err != nil {
			s.log.Warn("rerank failed, falling back to similarity order", zap.Error(err))
		}
	}

	orderResults(merged)
	return merged, nil
}

// rewrite attempts an LLM-backed query rewrite, honoring the
// configured length window, cache, and timeout, and falling back to
// the original query on any failure — the rewrite is an optimization,
// never a requirement for search to function.
func (s *Service) rewrite(ctx context.Context, q string) string {
	if !s.enableRewrite || s.llm == nil || !s.llm.IsAvailable() {
		return q
	}
	if len(q) < 3 || len(q) > 500 {
		return q
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(q); ok {
			return cached
		}
	}

	rctx, cancel := context.WithTimeout(ctx, s.rewriteTimeout)
	defer cancel()

	prompt := "Rewrite the following search query to be more explicit and keyword-rich for semantic retrieval. Respond with only the rewritten query, nothing else.\n\nQuery: " + q
	rewritten, err := s.llm.Complete(rctx, prompt)
	if err != nil {
		return q
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return q
	}
	if s.cache != nil {
		s.cache.Put(q, rewritten)
	}
	return rewritten
}

func (s *Service) searchDocuments(ctx context.Context, queryVec []float32, req Request) ([]Result, error) {
	matches, err := s.retrySearchChunks(ctx, queryVec, req)
	if err != nil {
		return nil, apperr.Internal("document search failed: %v", err)
	}

	byDoc := map[string]*Result{}
	var order []string
	for _, m := range matches {
		r, ok := byDoc[m.DocumentID]
		if !ok {
			documentID := m.DocumentID
			r = &Result{
				Type:       ResultDocument,
				DocumentID: documentID,
				Score:      float64(m.Score),
				UpdatedAt:  m.CreatedAt,
			}
			byDoc[documentID] = r
			order = append(order, documentID)
		}
		if float64(m.Score) > r.Score {
			r.Score = float64(m.Score)
		}
		if req.IncludeChunks {
			r.Chunks = append(r.Chunks, m)
		}
	}

	out := make([]Result, 0, len(order))
	for _, id := range order {
		out = append(out, *byDoc[id])
	}
	return out, nil
}

func (s *Service) searchMemories(ctx context.Context, queryVec []float32, req Request) ([]Result, error) {
	matches, err := s.store.SearchSimilarMemories(ctx, queryVec, req.Limit, req.Threshold, req.ContainerTag, false)
	if err != nil {
		return nil, apperr.Internal("memory search failed: %v", err)
	}

	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		content := m.Content
		out = append(out, Result{
			Type:      ResultMemory,
			MemoryID:  m.ID,
			Score:     float64(m.Similarity),
			Content:   &content,
			Metadata:  m.Metadata,
			Version:   m.Version,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out, nil
}

// retrySearchChunks applies the narrow "database is locked" retry
// policy: transient lock contention is retried with 60/120/180ms
// backoff; any other failure propagates immediately.
func (s *Service) retrySearchChunks(ctx context.Context, queryVec []float32, req Request) ([]models.ChunkMatch, error) {
	backoffs := []time.Duration{60 * time.Millisecond, 120 * time.Millisecond, 180 * time.Millisecond}

	var lastErr error
	for attempt := 0; attempt <= len(backoffs); attempt++ {
		matches, err := s.store.SearchSimilarChunks(ctx, queryVec, req.Limit, req.Threshold, req.ContainerTags)
		if err == nil {
			return matches, nil
		}
		lastErr = err
		if !isLockedError(err) || attempt == len(backoffs) {
			break
		}
		select {
		case <-time.After(backoffs[attempt]):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func isLockedError(err error) bool {
	return strings.Contains(err.Error(), "database is locked")
}

func mergeDeduped(docs, mems []Result) []Result {
	seen := map[string]bool{}
	out := make([]Result, 0, len(docs)+len(mems))
	for _, r := range docs {
		key := "document:" + r.DocumentID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	for _, r := range mems {
		key := "memory:" + r.MemoryID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func (s *Service) applyRerank(ctx context.Context, query string, results []Result) ([]Result, error) {
	texts := make([]string, len(results))
	for i, r := range results {
		switch r.Type {
		case ResultDocument:
			if r.Summary != nil {
				texts[i] = *r.Summary
			} else if len(r.Chunks) > 0 {
				texts[i] = r.Chunks[0].Content
			}
		case ResultMemory:
			if r.Content != nil {
				texts[i] = *r.Content
			}
		}
	}

	scored, err := s.reranker.Rerank(ctx, query, texts, len(results))
	if err != nil {
		return results, err
	}
	for _, sc := range scored {
		if sc.Index < 0 || sc.Index >= len(results) {
			continue
		}
		score := sc.Score
		results[sc.Index].RerankScore = &score
	}
	return results, nil
}

// orderResults sorts by rerank score when present, falling back to
// similarity score, both descending.
func orderResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		av, bv := a.Score, b.Score
		if a.RerankScore != nil {
			av = *a.RerankScore
		}
		if b.RerankScore != nil {
			bv = *b.RerankScore
		}
		return av > bv
	})
}
