// Package server provides the HTTP API for Kontrakt.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/config"
	"github.com/skriv/kontrakt/internal/keyword"
	"github.com/skriv/kontrakt/internal/pipeline"
	"github.com/skriv/kontrakt/internal/risk"
	"github.com/skriv/kontrakt/internal/storage"
)

// Server is the HTTP server for the Kontrakt API.
type Server struct {
	parser   *pipeline.Parser
	analyzer *risk.Analyzer
	storage  storage.Storage
	clauses  keyword.ClauseIndex
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	parser *pipeline.Parser,
	analyzer *risk.Analyzer,
	store storage.Storage,
	clauses keyword.ClauseIndex,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		parser:   parser,
		analyzer: analyzer,
		storage:  store,
		clauses:  clauses,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(300 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/contracts", s.handleParseContract)
	r.Get("/api/v1/contracts", s.handleListContracts)
	r.Get("/api/v1/contracts/{id}", s.handleGetContract)
	r.Delete("/api/v1/contracts/{id}", s.handleDeleteContract)
	r.Post("/api/v1/risk", s.handleAnalyzeRisk)
	r.Get("/api/v1/clauses/search", s.handleSearchClauses)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
