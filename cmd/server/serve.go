package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/availability/internal/aggregator"
	"github.com/dennisdiepolder/availability/internal/api"
	"github.com/dennisdiepolder/availability/internal/assets"
	"github.com/dennisdiepolder/availability/internal/auth"
	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/cache"
	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/dennisdiepolder/availability/internal/demo"
	"github.com/dennisdiepolder/availability/internal/intercom"
	"github.com/dennisdiepolder/availability/internal/logging"
	"github.com/dennisdiepolder/availability/internal/metrics"
	"github.com/dennisdiepolder/availability/internal/poller"
	"github.com/dennisdiepolder/availability/internal/storage"
	"github.com/dennisdiepolder/availability/internal/websocket"
	"github.com/dennisdiepolder/availability/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(rosterFile *string) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *rosterFile, open)
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "open the dashboard in a browser once listening")
	return cmd
}

// server holds everything the router needs
type server struct {
	cfg        *config.Config
	hub        *websocket.Hub
	bindings   *bindings.Store
	sources    *cache.Sources
	demo       *demo.Source
	history    storage.Store
	aggregator *aggregator.Aggregator
	auth       *auth.Authenticator
	assets     *assets.Handler
	logger     zerolog.Logger
}

func runServe(ctx context.Context, rosterFile string, open bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFile)

	static, err := loadStatic(rosterFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load roster file")
		return err
	}

	logger.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Int("people", len(static.People)).
		Int("cities", len(static.Cities)).
		Str("demo_mode", string(cfg.DemoMode)).
		Bool("polling", cfg.PollingEnabled()).
		Msg("starting availability server")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, err := storage.NewStore(ctx, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize status history store")
		return err
	}

	s := newServer(cfg, static, history, logger)
	go s.hub.Run()

	if cfg.PollingEnabled() {
		client := intercom.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APIRatePerSecond)
		p := poller.NewPoller(client, s.sources, cfg.Poll, cfg.BreachAfter, logger)
		go func() {
			if err := p.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("poller stopped")
			}
		}()
	}

	if s.demo != nil {
		go s.demo.Start(ctx)
	}
	go s.aggregator.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if open {
		url := "http://localhost:" + cfg.Port + "/"
		if err := browser.OpenURL(url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("failed to open browser")
		}
	}

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("failed to start server")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires every component. The demo source and the feed cache are
// only created when they can be used.
func newServer(cfg *config.Config, static config.Static, history storage.Store, logger zerolog.Logger) *server {
	s := &server{
		cfg:      cfg,
		hub:      websocket.NewHub(logger),
		bindings: bindings.NewStore(),
		history:  history,
		auth:     auth.New(auth.LoadConfig(), logger),
		assets:   assets.New(cfg.StaticDir, cfg.Public, logger),
		logger:   logger,
	}
	if cfg.PollingEnabled() {
		s.sources = cache.NewSources()
	}

	if cfg.DemoMode != config.DemoOff {
		s.demo = demo.NewSource(static.People, static.Cities, static.Layout, time.Now().UnixNano(), logger)
	}

	s.aggregator = aggregator.NewAggregator(aggregator.Options{
		Static:   static,
		Bindings: s.bindings,
		Sources:  s.sources,
		Demo:     s.demo,
		DemoMode: cfg.DemoMode,
		History:  history,
		Hub:      s.hub,

		BreachAfter: cfg.BreachAfter,
	}, logger)

	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(s.cfg.AllowedOrigins))

	// Public routes (no auth required)
	r.Get("/health", assets.Health)
	r.Get("/config.js", s.assets.ConfigJS)
	r.Handle("/metrics", metrics.Get().Handler())

	// Host data-binding pushes
	receiver := bindings.NewReceiver(s.bindings, s.logger)
	r.Route("/internal", func(r chi.Router) {
		r.Post("/bindings/{table}", receiver.HandlePush)
		r.Get("/bindings", receiver.GetStats)
	})

	dashboard := api.NewDashboardHandler(s.aggregator, s.logger)
	agentHistory := api.NewAgentHistoryHandler(s.history, s.logger)
	admin := api.NewAdminHandler(s.bindings, s.sources, s.logger)
	wsHandler := websocket.NewHandler(s.hub, s.cfg, s.logger)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/dashboard", dashboard.GetDashboard)
			r.Get("/roster", dashboard.GetRoster)
			r.Get("/sources", dashboard.GetSources)
			r.With(api.RequireLead).Get("/agents/{name}/history", agentHistory.GetHistory)
			r.With(api.RequireAdmin).Post("/admin/reset", admin.ResetMemory)
		})
	})

	r.NotFound(s.assets.ServeHTTP)
	return r
}
