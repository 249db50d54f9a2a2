// Package debugapi exposes the workspace's exclusion and overlay state over HTTP. Every handler
// runs its workspace access on the main thread through Workspace.Call.
package debugapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"chart-workspace/internal/objects"
	"chart-workspace/internal/overlay"
)

// CallTimeout bounds how long a request waits for the main thread.
const CallTimeout = 5 * time.Second

// Workspace is the slice of the workspace service the API drives. All methods except Call must only
// be invoked from inside a Call.
type Workspace interface {
	Call(ctx context.Context, fn func()) error
	Excluded() []string
	Restore(name string) bool
	RestoreAll()
	Remove(name string) bool
	Overlay() *overlay.State
	Instances() []objects.Info
}

// Config holds server configuration.
type Config struct {
	Addr      string
	Workspace Workspace
	Log       zerolog.Logger
}

// Server is the debug HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	ws     Workspace
	log    zerolog.Logger
}

type mutation struct {
	Name     string   `json:"name,omitempty"`
	Changed  bool     `json:"changed"`
	Excluded []string `json:"excluded"`
}

// New builds the router. The server does not listen until Start.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		ws:     cfg.Workspace,
		log:    cfg.Log.With().Str("component", "debugapi").Logger(),
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)

	s.router.Route("/debug", func(r chi.Router) {
		r.Get("/excluded", s.handleExcluded)
		r.Post("/restore", s.handleRestoreAll)
		r.Post("/restore/{name}", s.handleRestore)
		r.Post("/remove/{name}", s.handleRemove)
		r.Get("/overlay", s.handleOverlay)
		r.Get("/instances", s.handleInstances)
	})

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting debug API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down debug API")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleExcluded(w http.ResponseWriter, r *http.Request) {
	var names []string
	if !s.call(w, r, func() { names = s.ws.Excluded() }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"excluded": names})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	out := mutation{Name: name}
	if !s.call(w, r, func() {
		out.Changed = s.ws.Restore(name)
		out.Excluded = s.ws.Excluded()
	}) {
		return
	}
	s.log.Info().Str("name", name).Bool("changed", out.Changed).Msg("restore")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRestoreAll(w http.ResponseWriter, r *http.Request) {
	out := mutation{Changed: true}
	if !s.call(w, r, func() {
		s.ws.RestoreAll()
		out.Excluded = s.ws.Excluded()
	}) {
		return
	}
	s.log.Info().Msg("restore all")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	out := mutation{Name: name}
	if !s.call(w, r, func() {
		out.Changed = s.ws.Remove(name)
		out.Excluded = s.ws.Excluded()
	}) {
		return
	}
	s.log.Info().Str("name", name).Bool("changed", out.Changed).Msg("remove")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	var st overlay.State
	if !s.call(w, r, func() { st = *s.ws.Overlay() }) {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	var list []objects.Info
	if !s.call(w, r, func() { list = s.ws.Instances() }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]objects.Info{"instances": list})
}

// call runs fn on the main thread. On failure it writes the error response and returns false.
func (s *Server) call(w http.ResponseWriter, r *http.Request, fn func()) bool {
	ctx, cancel := context.WithTimeout(r.Context(), CallTimeout)
	defer cancel()
	if err := s.ws.Call(ctx, fn); err != nil {
		s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("workspace call failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
