package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notegraph/internal"
	"github.com/starford/notegraph/internal/source"
	pkgconfig "github.com/starford/notegraph/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if kind := cmd.String("source"); kind != "" {
		cfg.Source.Kind = source.Kind(kind)
	}
	if path := cmd.String("path"); path != "" {
		cfg.Source.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runLayout(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunLayout(ctx, cmd.String("out"), int(cmd.Int("max-ticks")),
		internal.WithConfig(cfg), internal.WithLogger(stderrLogger(cfg)))
}

func runLinks(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.PrintLinks(ctx, internal.WithConfig(cfg), internal.WithLogger(stderrLogger(cfg)))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Stdout carries the protocol.
	return internal.ServeMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogger(stderrLogger(cfg)),
		internal.WithVersion(version))
}

func runIndex(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunIndex(ctx, cmd.String("db"), cmd.Bool("watch"),
		internal.WithConfig(cfg), internal.WithLogger(stderrLogger(cfg)))
}

func stderrLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
}

func main() {
	cmd := &cli.Command{
		Name:    "notegraph",
		Usage:   "Similarity graph of notes with a live force-directed layout",
		Version: version,
		Action:  runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source kind: json, vault or sqlite (overrides config)",
				Sources: cli.EnvVars("NOTEGRAPH_SOURCE"),
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Source path (overrides config)",
				Sources: cli.EnvVars("NOTEGRAPH_SOURCE_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the graph over HTTP with live SSE frames",
				Action: runServe,
			},
			{
				Name:   "layout",
				Usage:  "Run the layout headless and write the settled snapshot",
				Action: runLayout,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file for the snapshot JSON",
						Value:   "layout.json",
					},
					&cli.IntFlag{
						Name:  "max-ticks",
						Usage: "Stop after this many ticks even if not settled",
						Value: internal.DefaultMaxTicks,
					},
				},
			},
			{
				Name:   "links",
				Usage:  "Print the similarity links as JSON",
				Action: runLinks,
			},
			{
				Name:   "index",
				Usage:  "Export notes and similarity links to a SQLite database",
				Action: runIndex,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Usage: "SQLite database to write",
						Value: "notegraph.db",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Keep the export current as the source changes",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve graph tools over MCP on stdio",
				Action: runMCP,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
