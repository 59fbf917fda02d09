package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"manim-server/internal/config"
)

func newRenderCommand() *cobra.Command {
	var scenesDir string

	cmd := &cobra.Command{
		Use:   "render [prompt]",
		Short: "Render one prompt and print the video path",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, warnings := config.Load()
			if cmd.Flags().Changed("scenes-dir") {
				cfg.ScenesDir = scenesDir
			}

			a, err := newApp(cmd.Context(), cfg, warnings, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.pipeline.Generate(cmd.Context(), strings.Join(args, " "), "")
			if err != nil {
				a.log.Error(res.Message)
				return err
			}
			if res.UpstreamError != "" {
				a.log.Warn("Rendered the error scene", "reason", res.UpstreamError)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.VideoPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", "", "scene and video directory (overrides SCENES_DIR)")
	return cmd
}
