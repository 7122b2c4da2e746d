// Package server exposes boards over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /boards/{board}/cards
//	POST   /boards/{board}/cards
//	DELETE /boards/{board}/cards/{card}
//	PUT    /boards/{board}/cards/{card}/position
//	POST   /boards/{board}/cards/{card}/drag
//	GET    /boards/{board}/layout
//	GET    /boards/{board}/layout.svg
//	GET    /boards/{board}/layout.png
//
// The caller identifies itself with the X-Actor-ID header. Only a card's
// owner may move or delete it.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/observability"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
)

// ActorHeader carries the caller's identity.
const ActorHeader = "X-Actor-ID"

// Options configures the server.
type Options struct {
	Layout layout.Options
	Seed   uint64
	View   layout.ViewMode
	Logger *log.Logger
}

// Server serves boards from a card store.
type Server struct {
	store  cardstore.Store
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger

	// passes collapses concurrent identical layout requests.
	passes singleflight.Group
	router chi.Router
}

// New builds a server. A nil runner disables caching.
func New(store cardstore.Store, runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Seed == 0 {
		opts.Seed = layout.DefaultSeed
	}
	if opts.Layout == (layout.Options{}) {
		opts.Layout = layout.DefaultOptions()
	}
	if !opts.View.Valid() {
		opts.View = layout.ModeScattered
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	s := &Server{
		store:  store,
		runner: runner,
		opts:   opts,
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/boards/{board}", func(r chi.Router) {
		r.Use(s.requireBoard)
		r.Get("/cards", s.handleListCards)
		r.Post("/cards", s.handleCreateCard)
		r.Delete("/cards/{card}", s.handleDeleteCard)
		r.Put("/cards/{card}/position", s.handleUpdatePosition)
		r.Post("/cards/{card}/drag", s.handleDrag)
		r.Get("/layout", s.handleLayout)
		r.Get("/layout.svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
		r.Get("/layout.png", s.handleArtifact(pipeline.FormatPNG, "image/png"))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports every request to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d)
	})
}
