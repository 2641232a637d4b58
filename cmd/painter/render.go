package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigrr/painter/pkg/render"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	mf := &modelFlags{}
	var (
		width, height int
		out           string
		at            float64
	)

	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Draw one frame of the scene to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			cfg, err := opts.loadConfig(args, mf)
			if err != nil {
				return err
			}
			logger, closeLog, err := opts.newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()

			scene, err := cfg.Build(cmd.Context(), logger)
			if err != nil {
				return err
			}
			newAnimator(cfg, scene).advance(at, cfg.FPS)

			fb := render.NewFramebuffer(width, height)
			pipe := render.NewPipeline(fb)
			pipe.Background = cfg.BackgroundColor()
			if err := pipe.Render(scene); err != nil {
				return err
			}
			if err := fb.SavePNG(out); err != nil {
				return err
			}

			st := pipe.Stats()
			logger.Info("frame written", "path", out,
				"submitted", st.Submitted, "drawn", st.Drawn, "culled", st.Culled, "near", st.NearRejected)
			return nil
		},
	}
	mf.register(cmd)
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 600, "image height")
	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "output PNG path")
	cmd.Flags().Float64Var(&at, "time", 0, "advance mesh spin by this many seconds before drawing")
	return cmd
}
