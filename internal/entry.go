// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/modeler/internal/api"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/metrics"
	"github.com/starford/modeler/internal/modeler"
	"github.com/starford/modeler/internal/sse"
	"github.com/starford/modeler/internal/watch"
)

// NewLogger returns the structured JSON logger configured by cfg.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Open opens the metadata store named by cfg and returns a service over it
// together with a function that closes the store.
func Open(cfg *Config, m *metrics.Metrics, logger *slog.Logger) (*modeler.Service, func(), error) {
	store, err := metastore.OpenSQLite(cfg.Metastore.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init metastore: %w", err)
	}
	svc := modeler.NewService(store, m, logger, cfg.App.Locale)
	return svc, func() { store.Close() }, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := NewLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("metastore_path", cfg.Metastore.Path),
		slog.String("annotations_dir", cfg.Annotations.Dir),
		slog.String("locale", cfg.App.Locale),
		slog.String("log_level", cfg.App.LogLevel.String()))

	m := metrics.New(app.registry)

	svc, closeStore, err := Open(cfg, m, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Load annotation group files.
	if cfg.Annotations.Dir != "" {
		if err := os.MkdirAll(cfg.Annotations.Dir, 0o755); err != nil {
			return fmt.Errorf("create annotations dir: %w", err)
		}
		n, err := watch.Sync(ctx, cfg.Annotations.Dir, svc, logger)
		if err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		} else {
			logger.Info("annotation groups synced", slog.Int("stored", n))
		}
	}

	// SSE broker for group change notifications.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, m, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := svc.Store().List(metastore.KindAnnotationGroup); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"metastore unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	// Start annotation file watcher.
	if cfg.Annotations.Watch {
		g.Go(func() error {
			return watch.Watch(gCtx, cfg.Annotations.Dir, svc, logger, func(kind, group string) {
				logger.Info("annotation group reloaded", slog.String("group", group), slog.String("op", kind))
				broker.PublishGroupEvent(kind, group)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close the broker first so open event streams end.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		stop()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
