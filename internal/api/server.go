package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docchat/internal/chat"
	"github.com/dgallion1/docchat/internal/chunker"
	"github.com/dgallion1/docchat/internal/claude"
	"github.com/dgallion1/docchat/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docchat.
type Server struct {
	router    chi.Router
	sessions  *chat.Store
	assembler *chat.Assembler
	chunks    *chunker.Cache
	claude    *claude.Client
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *chat.Store, assembler *chat.Assembler, chunks *chunker.Cache, cl *claude.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions:  sessions,
		assembler: assembler,
		chunks:    chunks,
		claude:    cl,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}", s.handleGetSession)
		r.Post("/api/sessions/{sessionID}/messages", s.handleAsk)

		r.Get("/api/document", s.handleDocumentInfo)
		r.Get("/api/document/pages/{page}", s.handlePageText)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
