package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/voyagen/pimplecast/internal/config"
	"github.com/voyagen/pimplecast/internal/playlist"
)

// LivenessPath answers 200 without building a playlist.
const LivenessPath = "/test"

// Builder produces the playlist text with acestream:// addresses.
type Builder interface {
	Build(ctx context.Context) (string, error)
}

// Server serves the playlist over HTTP.
type Server struct {
	builder Builder
	cfg     *config.Config
	router  chi.Router
	logger  zerolog.Logger
	builds  singleflight.Group
}

// New creates a Server and registers routes.
func New(b Builder, cfg *config.Config, logger zerolog.Logger) *Server {
	s := &Server{builder: b, cfg: cfg, router: chi.NewRouter(), logger: logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.withLogging)

	s.router.Get(LivenessPath, s.handleLiveness)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/*", s.handlePlaylist)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handlePlaylist builds the playlist and points its streams at the engine
// named by the raw query string ("host:port").
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	engine := r.URL.RawQuery
	if engine == "" {
		engine = s.cfg.EngineAddr
	}

	// Concurrent requests share one build; it must outlive any single caller.
	ctx := context.WithoutCancel(r.Context())
	v, err, shared := s.builds.Do("playlist", func() (any, error) {
		return s.builder.Build(ctx)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("build playlist")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if shared {
		s.logger.Debug().Msg("playlist build shared")
	}

	data := []byte(playlist.Rewrite(v.(string), engine))
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// withLogging logs each request with method, path, status, size and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
