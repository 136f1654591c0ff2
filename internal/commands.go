package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notegraph/internal/index"
	"github.com/starford/notegraph/internal/mcpserver"
	"github.com/starford/notegraph/internal/similarity"
	"github.com/starford/notegraph/internal/source"
	"github.com/starford/notegraph/internal/storage"
	"github.com/starford/notegraph/internal/view"
)

// DefaultMaxTicks bounds a headless layout run.
const DefaultMaxTicks = 1000

// RunLayout loads the source, ticks the layout until it settles or maxTicks
// is reached, and atomically writes the final snapshot as JSON to out.
func RunLayout(ctx context.Context, out string, maxTicks int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if out == "" {
		return fmt.Errorf("output path is required")
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}

	src, closeSource, err := app.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	v := view.New(app.config.View())
	if err := app.reload(ctx, src, v); err != nil {
		return err
	}

	snap := v.Snapshot()
	ticks := 0
	for ; ticks < maxTicks && !v.Settled(); ticks++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap = v.Tick()
	}
	app.logger.Info("layout finished",
		slog.Int("ticks", ticks),
		slog.Bool("settled", snap.Settled),
		slog.Float64("alpha", snap.Alpha))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if err := store.Write(filepath.Base(abs), append(data, '\n')); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// PrintLinks writes the similarity links of the source as JSON.
func PrintLinks(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	src, closeSource, err := app.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	v := view.New(app.config.View())
	if err := app.reload(ctx, src, v); err != nil {
		return err
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v.Links())
}

// ServeMCP serves the graph tools over stdio until ctx is cancelled or stdin
// closes. The layout keeps running in the background so snapshots move.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	src, closeSource, err := app.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	v := view.New(app.config.View())
	if err := app.reload(ctx, src, v); err != nil {
		app.logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	driver := view.NewDriver(v, view.FrameSinkFunc(func(view.Snapshot) {}), app.config.Driver.FPS, app.logger)
	srv := mcpserver.New(v, app.version)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.watch(gCtx, src, v)
	})
	g.Go(func() error {
		return driver.Run(gCtx)
	})
	g.Go(func() error {
		if err := srv.ServeStdio(gCtx); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}

// RunIndex exports the notes and their similarity links to the SQLite
// database at dbPath. With watch set it keeps the export current until ctx
// is cancelled.
func RunIndex(ctx context.Context, dbPath string, watch bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	src, closeSource, err := app.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	db, err := index.Open(dbPath)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	builder := similarity.NewBuilder(app.config.Similarity.Options())
	export := func() error {
		notes, err := src.Notes(ctx)
		if err != nil {
			return fmt.Errorf("load notes: %w", err)
		}
		st, err := db.Sync(ctx, notes, builder.Build(notes), app.logger)
		if err != nil {
			return err
		}
		app.logger.Info("index synced",
			slog.Int("upserted", st.Upserted),
			slog.Int("unchanged", st.Unchanged),
			slog.Int("removed", st.Removed),
			slog.Int("links", st.Links))
		return nil
	}

	if err := export(); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return source.Watch(ctx, src, app.config.Source.Debounce, app.logger, func() {
		if err := export(); err != nil {
			app.logger.Error("index sync failed", slog.String("error", err.Error()))
		}
	})
}
