package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/collabboard/internal/api/v1"
	"github.com/gosuda/collabboard/internal/api/ws"
	"github.com/gosuda/collabboard/internal/config"
	"github.com/gosuda/collabboard/internal/realtime"
	"github.com/gosuda/collabboard/internal/server/middleware"
)

// Store is the persistence surface the HTTP layer needs.
// *postgres.Store satisfies this interface.
type Store interface {
	v1.DataStore
	Ping(ctx context.Context) error
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      Store
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx is the parent of every
// request context, so canceling it also ends hijacked websocket connections,
// and it bounds the rate limiter sweepers.
func New(ctx context.Context, cfg *config.Config, store Store, authSvc v1.AuthService, resolver middleware.TokenResolver, live *realtime.Router, notifier v1.InviteNotifier) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(log.Logger))
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(live, ws.Options{
		QueueSize:      cfg.Realtime.QueueSize,
		EventRate:      cfg.Realtime.EventRate,
		EventBurst:     cfg.Realtime.EventBurst,
		MaxFrameSize:   cfg.Realtime.MaxFrameSize,
		OriginPatterns: originPatterns(cfg.Server.CORSOrigins),
	})

	s := &Server{
		router: router,
		store:  store,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		},
	}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth and invite redemption, limited per IP.
	// 2. Authenticated group for all other endpoints, limited per user.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

			publicConfig := huma.DefaultConfig("Collabboard Public API", "1.0.0")
			publicConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			publicAPI := humachi.New(r, publicConfig)
			registerPublicRoutes(publicAPI, store, authSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(resolver))
			r.Use(middleware.RateLimitByUser(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

			apiConfig := huma.DefaultConfig("Collabboard API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store, live, notifier, cfg)
		})
	})

	// WebSocket route. Browsers cannot set headers on the upgrade, so Auth
	// also accepts the access_token query parameter.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(resolver))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", s.healthz)

	// Serve the built web client on all unmatched routes. This must be the
	// last route registered so API and websocket routes take priority.
	if cfg.Server.StaticDir != "" {
		router.NotFound(spaFileServer(os.DirFS(cfg.Server.StaticDir)).ServeHTTP)
		log.Info().Str("dir", cfg.Server.StaticDir).Msg("serving web client")
	}

	return s
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("healthz: store unreachable")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server. Hijacked websocket connections
// are not tracked by http.Server; they end when the ctx given to New is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
