// Package statusapi implements the CLI-facing status/control surface
// (§6): a chi-routed HTTP API plus a gorilla/websocket event stream,
// sitting in front of the orchestrator, the pending-action queue, the
// memory store, and the workflow recorder. No teacher equivalent ships
// an HTTP API; the shape is new, but every handler is a thin adapter
// over components built elsewhere in this module.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/os-ghost/core/internal/eventbus"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/orchestrator"
	"github.com/os-ghost/core/internal/policy"
	"github.com/os-ghost/core/internal/queue"
	"github.com/os-ghost/core/internal/rollback"
	"github.com/os-ghost/core/internal/store"
)

// Deps bundles every collaborator a Server's handlers read from or
// write to. An endpoint whose Orchestrator, Queue, Memory or Events is
// nil answers 503. Preview and Policy may be nil: deny then skips the
// preview discard and /status omits the policy fields.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	MCP          orchestrator.MCPHandle
	Queue        *queue.Queue
	Preview      *rollback.PreviewManager
	Memory       *store.Store
	Policy       *policy.Policy
	Events       *eventbus.Bus
}

// Server wires Deps into an HTTP router and an event-streaming
// websocket endpoint.
type Server struct {
	deps Deps

	allowOrigins string
	workflows    *workflowStore
	upgrader     websocket.Upgrader

	metrics *apiMetrics
}

// New builds a Server. allowOrigins is passed straight to rs/cors;
// "*" allows any origin, matching the CLI's local-loopback default use.
func New(deps Deps, allowOrigins string) *Server {
	return &Server{
		deps:         deps,
		allowOrigins: allowOrigins,
		workflows:    newWorkflowStore(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: newAPIMetrics(),
	}
}

// Router builds the chi.Mux serving every §6 endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{s.allowOrigins},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/execute", s.handleExecute)
		r.Get("/agents", s.handleAgents)
		r.Get("/memory", s.handleMemory)
		r.Get("/pending-actions", s.handlePendingActions)
		r.Post("/actions/{id}/approve", s.handleApprove)
		r.Post("/actions/{id}/deny", s.handleDeny)
		r.Get("/workflows", s.handleListWorkflows)
		r.Post("/workflows", s.handleRegisterWorkflow)
		r.Post("/workflows/{id}/execute", s.handleExecuteWorkflow)
		r.Post("/record/start", s.handleRecordStart)
		r.Post("/record/stop", s.handleRecordStop)
	})

	return r
}

// logRequests is the teacher-style access-log middleware: one line per
// request at CategoryAPI, method/path/status/duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		dur := time.Since(start)
		logging.API("%s %s -> %d (%s)", req.Method, req.URL.Path, ww.Status(), dur)
		s.metrics.observe(req.Method, req.URL.Path, ww.Status(), dur)
	})
}

// ListenAndServe starts the HTTP server on addr and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.API("status API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
