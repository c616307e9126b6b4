package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/graph"
	"github.com/momo-run/momo/internal/managers"
	"github.com/momo-run/momo/internal/memory"
	"github.com/momo-run/momo/internal/reranker"
	"github.com/momo-run/momo/internal/search"
	"github.com/momo-run/momo/internal/storetest"
)

type noopEmbedder struct{ dim int }

func (e noopEmbedder) EmbedPassage(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}
func (e noopEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}
func (e noopEmbedder) EmbedPassages(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}
func (e noopEmbedder) Dimensions() int { return e.dim }

type noopLLM struct{}

func (noopLLM) IsAvailable() bool { return false }
func (noopLLM) Complete(context.Context, string) (string, error) {
	return "", nil
}
func (noopLLM) CompleteJSON(context.Context, string) (json.RawMessage, error) {
	return nil, nil
}

type noopReranker struct{}

func (noopReranker) IsEnabled() bool { return false }
func (noopReranker) Rerank(context.Context, string, []string, int) ([]reranker.ScoredIndex, error) {
	return nil, nil
}

func newTestServer(t *testing.T, tokens []string) *Server {
	t.Helper()
	st := storetest.New()
	log := zap.NewNop()

	memorySvc := memory.NewService(st, noopEmbedder{dim: 4}, noopLLM{}, log)
	cache, err := search.NewRewriteCache(10)
	require.NoError(t, err)
	searchSvc := search.NewService(st, noopEmbedder{dim: 4}, noopLLM{}, noopReranker{}, cache, false, time.Second, log)
	graphSvc := graph.NewService(st)
	forgettingMgr := managers.NewForgettingManager(st, time.Hour, log)

	return New(memorySvc, searchSvc, graphSvc, forgettingMgr, tokens, log)
}

func TestRouter_HealthzIsUnauthenticated(t *testing.T) {
	srv := newTestServer(t, []string{"secret"})
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedRouteRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, []string{"secret"})
	req := httptest.NewRequest("GET", "/memories/m1", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ProtectedRouteAcceptsValidToken(t *testing.T) {
	srv := newTestServer(t, []string{"secret"})
	req := httptest.NewRequest("GET", "/memories/missing", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	// Passed auth, reached the handler; missing memory surfaces as 404, not 401.
	assert.Equal(t, http.StatusNotFound, w.Code)
}
