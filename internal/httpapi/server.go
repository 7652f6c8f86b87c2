// Package httpapi exposes the task store over a small JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"taskflow/internal/export"
	"taskflow/internal/store"
	"taskflow/internal/task"
)

// PersistErrorHeader carries a storage failure that did not fail the request.
const PersistErrorHeader = "X-Persist-Error"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the taskflow HTTP server.
type Server struct {
	httpServer  *http.Server
	store       *store.Store
	now         func() time.Time
	lang        language.Tag
	log         *slog.Logger
	writeExport func(io.Writer, export.Format, []task.Task, time.Time) error
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the time source used for overdue checks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLanguage sets the collation used for title sorting.
func WithLanguage(tag language.Tag) Option {
	return func(s *Server) { s.lang = tag }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a server for st listening on addr.
func NewServer(st *store.Store, addr string, opts ...Option) *Server {
	s := &Server{
		store:       st,
		now:         time.Now,
		log:         slog.Default(),
		writeExport: export.Write,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/export", s.handleExport)

	// Create and patch bodies may carry a full task; only Draft or Patch
	// fields are read.
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Patch("/", s.handleUpdate)
			r.Delete("/", s.handleDelete)
			r.Post("/toggle", s.handleToggle)
		})
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
// A graceful Shutdown makes it return nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("taskflow api listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
