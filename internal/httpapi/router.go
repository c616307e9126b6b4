package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/graph"
	"github.com/momo-run/momo/internal/logging"
	"github.com/momo-run/momo/internal/managers"
	"github.com/momo-run/momo/internal/memory"
	"github.com/momo-run/momo/internal/search"
)

// Server wires every external endpoint to the core services behind
// the chi router, bearer-token auth, and the data/error envelope.
type Server struct {
	router http.Handler

	memory     *memory.Service
	search     *search.Service
	graph      *graph.Service
	forgetting *managers.ForgettingManager

	validate *validator.Validate
	log      *zap.Logger
}

// New builds the HTTP server. authTokens must be non-empty — every
// request to a route other than /healthz is rejected otherwise,
// matching the "no first-party auth beyond a bearer gate" non-goal.
func New(memorySvc *memory.Service, searchSvc *search.Service, graphSvc *graph.Service, forgettingMgr *managers.ForgettingManager, authTokens []string, log *zap.Logger) *Server {
	s := &Server{
		memory:     memorySvc,
		search:     searchSvc,
		graph:      graphSvc,
		forgetting: forgettingMgr,
		validate:   validator.New(),
		log:        log,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(logging.Middleware(log))
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/healthz", s.handleHealth)

	mux.Group(func(r chi.Router) {
		r.Use(bearerAuth(authTokens, log))

		r.Post("/search", s.handleSearch)

		r.Post("/memories", s.handleCreateMemory)
		r.Get("/memories/{id}", s.handleGetMemory)
		r.Patch("/memories/{id}", s.handleUpdateMemory)
		r.Delete("/memories/{id}", s.handleForgetMemoryByID)
		r.Post("/memories:forget", s.handleForgetMemoryByContent)
		r.Get("/memories/{id}/graph", s.handleMemoryGraph)

		r.Get("/containers/{tag}/graph", s.handleContainerGraph)

		r.Post("/profile:compute", s.handleComputeProfile)
		r.Post("/conversations:ingest", s.handleIngestConversation)

		r.Post("/admin/forgetting:run", s.handleRunForgetting)
	})

	s.router = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
