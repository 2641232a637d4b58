package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/painter/pkg/config"
	"github.com/taigrr/painter/pkg/math3d"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "painter",
		Short: "Software 3D renderer with Loop subdivision",
		Long: `painter subdivides triangle meshes with Loop's scheme and draws them
with a painter's-algorithm software pipeline: no GPU, no depth buffer.

Scenes come from a TOML file (--config) or from a single model given on the
command line. Models may be OBJ or glTF files, OBJ URLs, or built-in shapes
such as builtin:octahedron.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "scene file (TOML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overriding the scene file")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(
		newViewCmd(opts),
		newWindowCmd(opts),
		newRenderCmd(opts),
		newSubdivideCmd(opts),
	)
	return cmd
}

// modelFlags select a single model in place of the scene file's meshes.
type modelFlags struct {
	levels int
	color  string
	fit    float64
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.levels, "levels", "n", 2, "subdivision levels for a model given as an argument")
	cmd.Flags().StringVar(&f.color, "color", "", "flat color for a model given as an argument (#rrggbb)")
	cmd.Flags().Float64Var(&f.fit, "fit", 2, "scale a model given as an argument to this size")
}

// loadConfig reads the scene file, or the defaults when none is given. A
// model argument replaces the scene's meshes with that one model.
func (o *rootOptions) loadConfig(args []string, mf *modelFlags) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if len(args) > 0 && mf != nil {
		spin := [3]float64{0, 30, 0}
		if len(cfg.Meshes) > 0 {
			spin = cfg.Meshes[0].Spin
		}
		cfg.Meshes = []config.Mesh{{
			Name:         args[0],
			Source:       args[0],
			Subdivisions: mf.levels,
			Color:        mf.color,
			Fit:          mf.fit,
			Scale:        [3]float64{1, 1, 1},
			Spin:         spin,
		}}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger. Terminal viewers pass quiet so that
// log lines do not tear the alternate screen; they still log to --log-file.
// The returned func closes the log file, if any.
func (o *rootOptions) newLogger(cfg *config.Config, quiet bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	case quiet:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "painter",
	})
	logger.SetLevel(cfg.Level())
	return logger, closer, nil
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}
