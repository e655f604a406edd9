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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/tovaren/raido/internal/api"
	"github.com/tovaren/raido/internal/entry"
	"github.com/tovaren/raido/internal/mcpserver"
	"github.com/tovaren/raido/internal/reminder"
	"github.com/tovaren/raido/internal/schema"
	"github.com/tovaren/raido/internal/sse"
	"github.com/tovaren/raido/internal/tabular"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_backend", cfg.Store.Backend),
		slog.Bool("calendar_enabled", cfg.Calendar.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	sch := schema.NewService(store)
	entries := entry.NewService(store, sch)

	dispatcher, err := buildDispatcher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker()

	apiRouter := api.NewRouter(sch, entries, dispatcher, broker,
		cfg.Store.FilterThreshold, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Workbook files can be edited out of band; surface those edits
	// to SSE subscribers.
	if cfg.Store.Backend == BackendWorkbook {
		g.Go(func() error {
			if err := tabular.Watch(gCtx, cfg.Store.WorkbookDir, logger, func(kind, section string) {
				broker.PublishSectionEvent(section)
			}); err != nil {
				logger.Warn("workbook watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP server over stdio using the same store and
// dispatcher wiring as the HTTP application. Logs go to stderr so they
// do not corrupt the stdio protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	sch := schema.NewService(store)
	entries := entry.NewService(store, sch)

	dispatcher, err := buildDispatcher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := mcpserver.New(sch, entries, dispatcher)
	logger.Info("MCP server starting on stdio", slog.String("store_backend", cfg.Store.Backend))
	return srv.ServeStdio()
}

func openStore(ctx context.Context, cfg *Config) (tabular.Store, error) {
	switch cfg.Store.Backend {
	case BackendWorkbook:
		if err := os.MkdirAll(cfg.Store.WorkbookDir, 0o755); err != nil {
			return nil, fmt.Errorf("create workbook dir: %w", err)
		}
		return tabular.NewWorkbook(cfg.Store.WorkbookDir)
	case BackendSheets:
		return tabular.NewSheets(ctx, cfg.Store.CredentialsFile, cfg.Store.SpreadsheetID)
	default:
		if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		return tabular.OpenSQLite(cfg.Store.SQLitePath)
	}
}

func buildDispatcher(ctx context.Context, cfg *Config, logger *slog.Logger) (reminder.Dispatcher, error) {
	if !cfg.Calendar.Enabled() {
		logger.Info("Calendar reminders disabled: no credentials configured")
		return nil, nil
	}
	d, err := reminder.NewGoogleCalendar(ctx, cfg.Calendar.CredentialsFile, cfg.Calendar.CalendarID, cfg.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("init calendar dispatcher: %w", err)
	}
	return d, nil
}
