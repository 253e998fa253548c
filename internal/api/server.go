// Package api exposes the HTTP surface over the core packages (spec
// §6 EXPANSION): tracking CRUD, manual search/download triggers, read
// models over submissions and the library, manual import, a status
// snapshot, and the single-user auth endpoints. Every handler is thin:
// parse request, call the corresponding core method, write the
// response through internal/httputil's envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/periodiq/periodiq/internal/auth"
	"github.com/periodiq/periodiq/internal/config"
	"github.com/periodiq/periodiq/internal/covercleanup"
	"github.com/periodiq/periodiq/internal/importpipeline"
	"github.com/periodiq/periodiq/internal/monitor"
	"github.com/periodiq/periodiq/internal/orchestrator"
	"github.com/periodiq/periodiq/internal/repository"
	"github.com/periodiq/periodiq/internal/scheduler"
)

// Server wires the core packages to HTTP. Built once at the
// composition root and passed by reference (spec §9 Design Notes: no
// package-level singletons).
type Server struct {
	cfg            *config.Config
	tracking       *repository.TrackingRepository
	submissions    *repository.SubmissionRepository
	libraryEntries *repository.LibraryEntryRepository
	orch           *orchestrator.Orchestrator
	pipeline       *importpipeline.Pipeline
	mon            *monitor.Monitor
	cleaner        *covercleanup.Cleaner
	sched          *scheduler.Scheduler
	authMiddleware *auth.Middleware
	authHandler    *auth.Handler
}

// New builds the Server. Every dependency is already constructed by
// the caller (cmd/periodiqd/main.go).
func New(
	cfg *config.Config,
	tracking *repository.TrackingRepository,
	submissions *repository.SubmissionRepository,
	libraryEntries *repository.LibraryEntryRepository,
	orch *orchestrator.Orchestrator,
	pipeline *importpipeline.Pipeline,
	mon *monitor.Monitor,
	cleaner *covercleanup.Cleaner,
	sched *scheduler.Scheduler,
	authMiddleware *auth.Middleware,
	authHandler *auth.Handler,
) *Server {
	return &Server{
		cfg:            cfg,
		tracking:       tracking,
		submissions:    submissions,
		libraryEntries: libraryEntries,
		orch:           orch,
		pipeline:       pipeline,
		mon:            mon,
		cleaner:        cleaner,
		sched:          sched,
		authMiddleware: authMiddleware,
		authHandler:    authHandler,
	}
}

// Router builds the full chi route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", s.authHandler.Router())
		api.Get("/status", s.handleStatus)
		api.Get("/openapi.json", s.handleOpenAPISpec)

		api.Group(func(protected chi.Router) {
			protected.Use(s.authMiddleware.RequireAuth)

			protected.Route("/tracking", func(tr chi.Router) {
				tr.Get("/", s.handleListTracking)
				tr.Post("/", s.handleCreateTracking)
				tr.Patch("/{id}", s.handleUpdateTracking)
				tr.Delete("/{id}", s.handleDeleteTracking)
				tr.Post("/{id}/search", s.handleTrackingSearch)
				tr.Post("/{id}/download", s.handleTrackingDownload)
			})

			protected.Get("/submissions", s.handleListSubmissions)
			protected.Get("/library", s.handleListLibrary)
			protected.Post("/import", s.handleManualImport)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
