package embeddings

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

const (
	queryPrefix   = "query: "
	passagePrefix = "passage: "
)

// ollamaEmbedder talks to Ollama's /api/embeddings endpoint. It holds
// two independent HTTP hosts: one for query embedding, one for
// ingest-side passage embedding, so foreground search latency never
// queues behind background ingestion. Each role (query, ingest) is
// guarded by its own mutex to serialize its requests against a
// single-slot model runtime; when both roles share one host, the two
// roles are not serialized against each other.
type ollamaEmbedder struct {
	queryHost  string
	ingestHost string
	model      string
	dimension  int
	client     *http.Client

	queryMu  sync.Mutex
	ingestMu sync.Mutex
}

// NewOllamaEmbedder constructs an embedder. If ingestHost is empty,
// the query host is reused for ingestion too.
func NewOllamaEmbedder(queryHost, ingestHost, model string, dimension int, timeout time.Duration) Embedder {
	if ingestHost == "" {
		ingestHost = queryHost
	}
	return &ollamaEmbedder{
		queryHost:  strings.TrimRight(queryHost, "/"),
		ingestHost: strings.TrimRight(ingestHost, "/"),
		model:      model,
		dimension:  dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

func (e *ollamaEmbedder) Dimensions() int { return e.dimension }

func (e *ollamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.queryMu.Lock()
	defer e.queryMu.Unlock()
	return e.embedOne(ctx, e.queryHost, queryPrefix+text)
}

func (e *ollamaEmbedder) EmbedPassage(ctx context.Context, text string) ([]float32, error) {
	e.ingestMu.Lock()
	defer e.ingestMu.Unlock()
	return e.embedOne(ctx, e.ingestHost, passagePrefix+text)
}

func (e *ollamaEmbedder) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	e.ingestMu.Lock()
	defer e.ingestMu.Unlock()

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.embedOne(ctx, e.ingestHost, passagePrefix+text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (e *ollamaEmbedder) embedOne(ctx context.Context, host, prompt string) ([]float32, error) {
	url := fmt.Sprintf("%s/api/embeddings", host)

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: prompt})
	if err != nil {
		return nil, apperr.Embedding("marshal embed request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Embedding("build embed request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperr.Embedding("call embeddings endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apperr.Embedding("embeddings endpoint returned status %d", resp.StatusCode)
	}

	var payload ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperr.Embedding("decode embed response: %v", err)
	}

	vec := make([]float32, len(payload.Embedding))
	for i, v := range payload.Embedding {
		vec[i] = float32(v)
	}

	if e.dimension > 0 && len(vec) != e.dimension {
		return nil, apperr.Embedding("embedding dimension mismatch: expected %d, got %d", e.dimension, len(vec))
	}

	return vec, nil
}
