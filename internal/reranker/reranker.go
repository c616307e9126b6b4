// Package reranker adapts an HTTP cross-encoder scoring endpoint to
// the Reranker collaborator interface the search service consumes.
package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/momo-run/momo/internal/apperr"
)

// ScoredIndex pairs a candidate's position in the input slice with
// its rerank score.
type ScoredIndex struct {
	Index int
	Score float64
}

// Reranker re-scores a shortlist of candidate texts against a query.
type Reranker interface {
	IsEnabled() bool
	Rerank(ctx context.Context, query string, docs []string, topK int) ([]ScoredIndex, error)
}

// httpReranker calls a single HTTP endpoint that accepts a query and
// a batch of documents and returns per-document scores. Requests are
// serialised through mu, matching the mutex-guarded-model shape the
// embedder adapter uses for its own inference calls.
type httpReranker struct {
	enabled bool
	host    string
	client  *http.Client
	mu      sync.Mutex
}

// New builds a Reranker. When enabled is false or host is empty, IsEnabled reports
// false and Rerank always errors — callers gate on IsEnabled first.
func New(enabled bool, host string, timeout time.Duration) Reranker {
	return &httpReranker{
		enabled: enabled && host != "",
		host:    strings.TrimRight(host, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *httpReranker) IsEnabled() bool { return r.enabled }

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopK      int      `json:"top_k"`
}

type rerankResponseItem struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResponseItem `json:"results"`
}

func (r *httpReranker) Rerank(ctx context.Context, query string, docs []string, topK int) ([]ScoredIndex, error) {
	if !r.enabled {
		return nil, apperr.Reranker("reranker is not enabled")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	body, err := json.Marshal(rerankRequest{Query: query, Documents: docs, TopK: topK})
	if err != nil {
		return nil, apperr.Reranker("marshal rerank request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/rerank", r.host), bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Reranker("build rerank request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperr.Reranker("call rerank endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apperr.Reranker("rerank endpoint returned status %d", resp.StatusCode)
	}

	var payload rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperr.Reranker("decode rerank response: %v", err)
	}

	out := make([]ScoredIndex, 0, len(payload.Results))
	for _, item := range payload.Results {
		out = append(out, ScoredIndex{Index: item.Index, Score: item.Score})
	}
	return out, nil
}
