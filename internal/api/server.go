// Package api provides the HTTP API server and handlers for coverdash.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/coverdash/coverdash-server/internal/service"
	"github.com/coverdash/coverdash-server/internal/validation"
)

const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	searches  *service.SearchService
	exports   *service.ExportService
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(searches *service.SearchService, exports *service.ExportService, validator *validation.Validator, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		searches:  searches,
		exports:   exports,
		validator: validator,
		router:    router,
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Coverdash API", apiVersion)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerSearchRoutes()
	s.registerSessionRoutes()
	s.setupRawRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Blurhash"},
		MaxAge:         300,
	}))
}

// setupRawRoutes registers routes that bypass huma: multipart uploads
// and binary responses.
func (s *Server) setupRawRoutes() {
	s.router.Post("/api/v1/searches/csv", s.handleCSVSearch)
	s.router.Get("/api/v1/sessions/{id}/entries/{index}/image", s.handleEntryImage)
	s.router.Get("/api/v1/sessions/{id}/archive", s.handleArchive)
}
