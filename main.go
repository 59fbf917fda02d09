package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"manim-server/internal/completion"
	"manim-server/internal/config"
	"manim-server/internal/logger"
	"manim-server/internal/metrics"
	"manim-server/internal/pipeline"
	"manim-server/internal/render"
	"manim-server/internal/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "manim-server",
		Short:        "Turn text prompts into Manim animation videos",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newRenderCommand())
	return root
}

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	invoker  *render.Invoker
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
	store    *store.Store
}

func newApp(ctx context.Context, cfg *config.Config, warnings []string, withHistory bool) (*app, error) {
	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		Output:     os.Stderr,
		JSON:       cfg.LogJSON,
		TimeFormat: "2006-01-02 15:04:05",
	})
	for _, w := range warnings {
		log.Warn(w)
	}

	invoker, err := render.NewInvoker(render.Options{
		ScenesDir:  cfg.ScenesDir,
		Executable: cfg.ManimExecutable,
		Quality:    cfg.RenderQuality,
		Timeout:    cfg.RenderTimeout,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := invoker.Prepare(); err != nil {
		return nil, fmt.Errorf("failed to prepare scenes directory: %w", err)
	}

	client := completion.New(completion.Options{
		APIKey:  cfg.APIKey,
		URL:     cfg.APIURL,
		Model:   cfg.Model,
		Timeout: cfg.CompletionTimeout,
	}, log)

	a := &app{
		cfg:      cfg,
		log:      log,
		invoker:  invoker,
		metrics:  metrics.New(),
		pipeline: pipeline.New(client, invoker, log),
	}
	a.pipeline.WithMetrics(a.metrics)

	if withHistory && cfg.HasDatabase() {
		s, err := store.Open(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.store = s
		a.pipeline.WithRecorder(s)
		log.Info("Render history enabled")
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}
