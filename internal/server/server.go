package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackdiff/pkg/cache"
	"github.com/matzehuels/stackdiff/pkg/crawl"
	"github.com/matzehuels/stackdiff/pkg/session"
)

// Options configures a [Server].
type Options struct {
	// SessionTTL is how long a comparison stays addressable.
	SessionTTL time.Duration

	// Logger receives request and lifecycle logs. Nil uses log.Default().
	Logger *log.Logger
}

// Server serves the comparison API.
type Server struct {
	crawler *crawl.Crawler
	cache   *cache.RequestCache
	store   session.Store
	ttl     time.Duration
	logger  *log.Logger
	router  chi.Router

	// base is the parent context of every comparison.
	base   context.Context
	cancel context.CancelFunc
}

// New creates a Server. Comparisons started through it use crawler; cache
// is the request cache behind crawler, cleared by DELETE /api/cache.
func New(crawler *crawl.Crawler, c *cache.RequestCache, store session.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	base, cancel := context.WithCancel(context.Background())

	s := &Server{
		crawler: crawler,
		cache:   c,
		store:   store,
		ttl:     opts.SessionTTL,
		logger:  opts.Logger,
		base:    base,
		cancel:  cancel,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/comparisons", s.handleCreate)
		r.Get("/comparisons/{id}", s.handleGet)
		r.Delete("/comparisons/{id}", s.handleDelete)
		r.Delete("/cache", s.handleClearCache)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close cancels every running comparison.
func (s *Server) Close() {
	s.cancel()
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully, cancels running comparisons and waits for their registry
// lookups to settle.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := s.cache.Drain(shutdownCtx); err != nil {
		s.logger.Warn("lookups still in flight at shutdown", "pending", s.cache.Pending())
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
