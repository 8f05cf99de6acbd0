// Package server is the reference coffeematch backend: a chi router over a
// storage.Provider.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/storage"
)

// Options tunes the HTTP surface.
type Options struct {
	// RateLimit is the sustained requests per second allowed per client. Zero disables limiting.
	RateLimit float64
	RateBurst int
	Logger    *zerolog.Logger
}

type Server struct {
	store   storage.Provider
	log     zerolog.Logger
	router  chi.Router
	limiter *ipLimiter
	metrics *metrics
}

func New(store storage.Provider, opts Options) *Server {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		store:   store,
		log:     log,
		metrics: newMetrics(reg),
	}
	if opts.RateLimit > 0 {
		s.limiter = newIPLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.metrics.middleware)
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}

	r.Route(constants.APIPrefix, func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/auth/login", s.login)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.createUser)
			r.Get("/{id}", s.getUser)
			r.Put("/{id}", s.updateUser)
			r.Delete("/{id}", s.deleteUser)
		})

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", s.listVenues)
			r.Post("/", s.createVenue)
			r.Get("/{id}", s.getVenue)
			r.Delete("/{id}", s.deleteVenue)
		})

		r.Route("/timeslots", func(r chi.Router) {
			r.Get("/", s.listSlots)
			r.Post("/", s.createSlot)
			r.Get("/{id}", s.getSlot)
			r.Delete("/{id}", s.deleteSlot)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", s.createMatch)
			r.Get("/received/{userID}", s.listReceived)
			r.Get("/sent/{userID}", s.listSent)
			r.Get("/{id}", s.getMatch)
			r.Put("/{id}", s.updateMatch)
			r.Put("/{id}/respond", s.respondForm)
			r.Delete("/{id}", s.deleteMatch)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", s.listPreferences)
			r.Post("/", s.createPreference)
			r.Delete("/{id}", s.deletePreference)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.limiter != nil {
		go s.limiter.cleanup(ctx, time.Minute, 3*time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}
	s.log.Info().Msg("Server exited")
	return nil
}

// NewLogger builds the server's zerolog logger. Unknown levels fall back to info.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("component", "server").Logger()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Health check failed")
		respondError(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
