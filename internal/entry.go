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
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/semantic"
	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/view"
	"github.com/starford/folio/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger and installs it as default.
func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// NewService loads the content directory and wires the pipeline. liveReload
// adds the reload script to rendered documents.
func NewService(ctx context.Context, cfg *Config, liveReload bool) (*siteservice.Service, error) {
	store, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	site := view.NewSite(store)
	if err := site.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	renderer := view.NewRenderer(view.Options{
		Title:          cfg.App.Title,
		ImageBase:      cfg.Content.ImageBase,
		HighlightStyle: cfg.Render.HighlightStyle,
		LiveReload:     liveReload,
	})
	parser := semantic.NewParser(semantic.WithHardWraps(cfg.Render.HardWraps))
	return siteservice.NewService(site, renderer, parser), nil
}

// Run starts the preview server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("default_mode", cfg.View.DefaultMode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure content directory exists.
	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	svc, err := NewService(ctx, cfg, cfg.Render.LiveReload)
	if err != nil {
		return err
	}
	logger.Info("Sections loaded", slog.Int("count", svc.Site().Len()))

	broker := sse.NewBroker()
	defer broker.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if svc.Site().Len() == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no sections"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", api.NewRouter(svc, cfg.View.Mode(), broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return watch.Watch(gCtx, svc.Site(), watch.Options{Root: cfg.Content.Dir, Logger: logger}, func(slugs []string) {
			logger.Info("Sections reloaded", slog.Any("changed", slugs), slog.Int("count", svc.Site().Len()))
			broker.PublishChange(slugs)
		})
	})

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

		// SSE streams stay open until their clients leave; close them first
		// so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown ends the run group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdio, reloading sections as files change.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	svc, err := NewService(ctx, cfg, false)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.Int("sections", svc.Site().Len()))

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := watch.Watch(wctx, svc.Site(), watch.Options{Root: cfg.Content.Dir, Logger: logger}, nil); err != nil {
			logger.Warn("watcher: disabled", slog.String("error", err.Error()))
		}
	}()

	if err := mcpserver.New(svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
