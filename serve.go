package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"manim-server/internal"
	"manim-server/internal/config"
)

func newServeCommand() *cobra.Command {
	var port, scenesDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, warnings := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("scenes-dir") {
				cfg.ScenesDir = scenesDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, warnings, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", "", "scene and video directory (overrides SCENES_DIR)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	opts := internal.ServerOptions{
		Generator:      a.pipeline,
		Metrics:        a.metrics,
		ScenesDir:      a.invoker.ScenesDir(),
		JWTSecret:      a.cfg.JWTSecret,
		AllowedOrigins: a.cfg.AllowedOrigins,
		Logger:         a.log,
	}
	if a.store != nil {
		opts.History = a.store
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Port),
		Handler:           internal.NewServer(opts).SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		// A request spans a completion call and a render.
		WriteTimeout: a.cfg.CompletionTimeout + a.cfg.RenderTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Animation server starting", "addr", srv.Addr, "scenes_dir", a.invoker.ScenesDir())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
