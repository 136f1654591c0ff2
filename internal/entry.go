// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notegraph/internal/api"
	"github.com/starford/notegraph/internal/interaction"
	"github.com/starford/notegraph/internal/metrics"
	"github.com/starford/notegraph/internal/source"
	"github.com/starford/notegraph/internal/sse"
	"github.com/starford/notegraph/internal/view"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// Structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// openSource opens the configured source. The returned closer is never nil.
func (a *application) openSource() (source.Source, func(), error) {
	src, err := source.Open(a.config.Source.Kind, a.config.Source.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	closeFn := func() {}
	if c, ok := src.(io.Closer); ok {
		closeFn = func() {
			if err := c.Close(); err != nil {
				a.logger.Warn("source close failed", slog.String("error", err.Error()))
			}
		}
	}
	return src, closeFn, nil
}

// reload reads the source and feeds the view.
func (a *application) reload(ctx context.Context, src source.Source, v *view.View) error {
	notes, err := src.Notes(ctx)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	if err := v.Update(notes); err != nil {
		return fmt.Errorf("update view: %w", err)
	}
	a.logger.Info("notes loaded", slog.Int("notes", len(notes)), slog.Int("links", len(v.Links())))
	return nil
}

// watch keeps v in sync with src until ctx is done. Watcher failures are
// logged; the graph keeps serving its last good state.
func (a *application) watch(ctx context.Context, src source.Source, v *view.View) error {
	if !a.config.Source.Watch {
		return nil
	}
	err := source.Watch(ctx, src, a.config.Source.Debounce, a.logger, func() {
		if err := a.reload(ctx, src, v); err != nil {
			a.logger.Error("reload failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		a.logger.Error("watcher failed", slog.String("error", err.Error()))
	}
	return nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_kind", string(cfg.Source.Kind)),
		slog.String("source_path", cfg.Source.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src, closeSource, err := app.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	reg := metrics.NewRegistry()

	// SSE broker.
	broker := sse.NewBroker(cfg.Driver.FrameInterval, sse.WithClientGauge(func(n int) {
		reg.SSEClients.Set(float64(n))
	}))
	defer broker.Close()

	v := view.New(cfg.View(),
		view.WithObserver(reg),
		view.WithSelectionHandler(func(s interaction.Selection) {
			broker.PublishSelection(s)
		}),
	)

	// Initial load.
	if err := app.reload(ctx, src, v); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	driver := view.NewDriver(v, view.FrameSinkFunc(func(s view.Snapshot) {
		broker.PublishFrame(s)
	}), cfg.Driver.FPS, logger)

	apiRouter := api.NewRouter(v, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware(reg))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)
	r.Handle("/metrics", reg.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.watch(gCtx, src, v)
	})

	g.Go(func() error {
		return driver.Run(gCtx)
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
		waitForShutdown(gCtx, logger)

		logger.Info("Shutting down server...")
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

// errShutdown cancels the group context once a shutdown has been requested.
var errShutdown = errors.New("shutdown requested")

func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
