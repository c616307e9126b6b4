package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, s.log, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErr(w, s.log, apperr.Validation("%v", err))
		return
	}

	scope := search.Scope(req.Scope)
	if scope == "" {
		scope = search.ScopeHybrid
	}

	results, err := s.search.Search(r.Context(), search.Request{
		Query:         req.Query,
		Scope:         scope,
		ContainerTags: req.ContainerTags,
		ContainerTag:  req.ContainerTag,
		Limit:         req.Limit,
		Threshold:     req.Threshold,
		IncludeChunks: req.IncludeChunks,
		Rerank:        req.Rerank,
	})
	if err != nil {
		writeErr(w, s.log, err)
		return
	}

	writeData(w, http.StatusOK, toSearchResultsWire(results))
}

type searchResultWire struct {
	Type        string          `json:"type"`
	DocumentID  string          `json:"documentId,omitempty"`
	MemoryID    string          `json:"memoryId,omitempty"`
	Score       float64         `json:"score,omitempty"`
	Similarity  float64         `json:"similarity,omitempty"`
	RerankScore *float64        `json:"rerankScore,omitempty"`
	Version     int             `json:"version,omitempty"`
	Chunks      []models.ChunkMatch `json:"chunks,omitempty"`
	Summary     *string         `json:"summary,omitempty"`
	Content     *string         `json:"content,omitempty"`
	Metadata    models.Metadata `json:"metadata,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

func toSearchResultsWire(results []search.Result) []searchResultWire {
	out := make([]searchResultWire, 0, len(results))
	for _, r := range results {
		item := searchResultWire{
			RerankScore: r.RerankScore,
			Summary:     r.Summary,
			Content:     r.Content,
			Metadata:    r.Metadata,
			Version:     r.Version,
			UpdatedAt:   r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		switch r.Type {
		case search.ResultDocument:
			item.Type = "document"
			item.DocumentID = r.DocumentID
			item.Score = r.Score
			item.Chunks = r.Chunks
		case search.ResultMemory:
			item.Type = "memory"
			item.MemoryID = r.MemoryID
			item.Similarity = r.Score
		}
		out = append(out, item)
	}
	return out
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, s.log, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErr(w, s.log, apperr.Validation("%v", err))
		return
	}

	memType, ok := models.ParseMemoryType(req.MemoryType)
	if !ok {
		memType = models.MemoryTypeFact
	}

	mem, err := s.memory.Create(r.Context(), req.Content, req.ContainerTag, memType, req.Metadata)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusCreated, mem)
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mem, err := s.memory.Get(r.Context(), id)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, mem)
}

func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.UpdateMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, s.log, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErr(w, s.log, apperr.Validation("%v", err))
		return
	}

	mem, err := s.memory.Update(r.Context(), &id, nil, req.ContainerTag, req.Content, req.Metadata, req.IsStatic)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, mem)
}

func (s *Server) handleForgetMemoryByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.ForgetMemoryRequest
	_ = decodeJSON(r, &req)

	forgottenID, err := s.memory.Forget(r.Context(), &id, nil, "", req.Reason)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": forgottenID, "forgotten": true})
}

func (s *Server) handleForgetMemoryByContent(w http.ResponseWriter, r *http.Request) {
	var req models.ForgetMemoryByContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, s.log, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErr(w, s.log, apperr.Validation("%v", err))
		return
	}

	forgottenID, err := s.memory.Forget(r.Context(), nil, &req.Content, req.ContainerTag, req.Reason)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": forgottenID, "forgotten": true})
}

func (s *Server) handleMemoryGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	depth := intQuery(r, "depth", 2)
	maxNodes := intQuery(r, "maxNodes", 50)
	relationTypes := r.URL.Query().Get("relationTypes")

	resp, err := s.graph.Neighborhood(r.Context(), id, depth, maxNodes, relationTypes)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleContainerGraph(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	maxNodes := intQuery(r, "maxNodes", 100)

	resp, err := s.graph.Container(r.Context(), tag, maxNodes)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleComputeProfile(w http.ResponseWriter, r *http.Request) {
	var req models.GetProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, s.log, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErr(w, s.log, apperr.Validation("%v", err))
		return
	}

	profile, err := s.memory.GetProfile(r.Context(), req)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleIngestConversation(w http.ResponseWriter, r *http.Request) {
	var req models.ConversationIngestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, s.log, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErr(w, s.log, apperr.Validation("%v", err))
		return
	}

	resp, err := s.memory.IngestConversation(r.Context(), req.Messages, req.ContainerTag)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleRunForgetting(w http.ResponseWriter, r *http.Request) {
	s.forgetting.RunOnce(r.Context())
	writeData(w, http.StatusOK, map[string]bool{"triggered": true})
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
