package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/painter/pkg/config"
	"github.com/taigrr/painter/pkg/controls"
	"github.com/taigrr/painter/pkg/render"
)

// cellPointerScale converts a pointer move of one terminal cell into
// controller pointer units.
const cellPointerScale = 20.0

// moveKeys are the controller keys; terminals rarely report key releases, so
// the viewer releases them after every tick and relies on key repeat.
var moveKeys = []string{"w", "a", "s", "d"}

func newViewCmd(opts *rootOptions) *cobra.Command {
	mf := &modelFlags{}
	var watch bool

	cmd := &cobra.Command{
		Use:   "view [model]",
		Short: "Draw the scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(args, mf)
			if err != nil {
				return err
			}
			logger, closeLog, err := opts.newLogger(cfg, true)
			if err != nil {
				return err
			}
			defer closeLog()

			v := &viewer{opts: opts, cfg: cfg, logger: logger, watch: watch && opts.configPath != ""}
			return v.run(cmd.Context())
		},
	}
	mf.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the scene when the --config file changes")
	return cmd
}

// viewer is the terminal frame loop. Input arrives on the terminal's event
// goroutine and is handed to the loop over a channel, so scene state is only
// touched here.
type viewer struct {
	opts   *rootOptions
	cfg    *config.Config
	logger *log.Logger
	watch  bool

	term     *uv.Terminal
	tr       *render.TerminalRenderer
	fb       *render.Framebuffer
	pipe     *render.Pipeline
	scene    *render.Scene
	camera   *render.Camera
	movement *controls.Movement
	anim     *animator

	width, height int
	showHUD       bool
	lastX, lastY  int
	tracking      bool
}

func (v *viewer) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scene, err := v.cfg.Build(ctx, v.logger)
	if err != nil {
		return err
	}
	v.setScene(v.cfg, scene)
	v.camera = scene.Camera()
	v.movement = controls.NewMovement(v.camera)
	v.cfg.ApplyMovement(v.movement)

	var reloads <-chan *config.Config
	if v.watch {
		reloads, err = config.Watch(ctx, v.opts.configPath, v.logger)
		if err != nil {
			return err
		}
	}

	v.term = uv.DefaultTerminal()
	v.width, v.height, err = v.term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := v.term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	v.term.EnterAltScreen()
	v.term.HideCursor()
	v.term.Resize(v.width, v.height)

	// Any-event mouse tracking with SGR coordinates.
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		v.term.ExitAltScreen()
		v.term.ShowCursor()
		v.term.Shutdown(context.Background())
	}()

	v.tr = render.NewTerminalRenderer(v.term, v.width, v.height)
	v.fb = render.NewFramebuffer(v.tr.FramebufferSize())
	v.pipe = render.NewPipeline(v.fb)
	v.pipe.Background = v.cfg.BackgroundColor()

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range v.term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.logger.Info("viewer started", "meshes", len(v.scene.Meshes()), "size", fmt.Sprintf("%dx%d", v.width, v.height))

	targetDuration := time.Second / time.Duration(v.cfg.FPS)
	lastFrame := time.Now()
	fps := newFPSCounter(lastFrame)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-reloads:
			if ok {
				v.reload(ctx, cfg)
				targetDuration = time.Second / time.Duration(v.cfg.FPS)
			} else {
				reloads = nil
			}
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				if v.handle(ev) {
					return nil
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		v.movement.Update()
		for _, k := range moveKeys {
			v.movement.KeyUp(k)
		}
		v.anim.update(dt)

		if err := v.pipe.Render(v.scene); err != nil {
			return err
		}
		v.tr.Render(v.fb)
		fps.tick(now)
		if v.showHUD {
			drawText(v.term, 0, 0, v.width, hudLine(fps.fps, v.pipe.Stats(), v.movement.Enabled()))
		}
		if err := v.tr.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func (v *viewer) setScene(cfg *config.Config, scene *render.Scene) {
	v.cfg = cfg
	v.scene = scene
	v.anim = newAnimator(cfg, scene)
}

// reload swaps in a scene built from cfg. The camera and its controller
// carry over so the view does not jump.
func (v *viewer) reload(ctx context.Context, cfg *config.Config) {
	scene, err := cfg.Build(ctx, v.logger)
	if err != nil {
		v.logger.Warn("scene rebuild failed", "err", err)
		return
	}
	scene.SetCamera(v.camera)
	v.setScene(cfg, scene)
	v.cfg.ApplyMovement(v.movement)
	v.pipe.Background = cfg.BackgroundColor()
	v.logger.SetLevel(cfg.Level())
}

// handle applies one terminal event and reports whether the viewer should quit.
func (v *viewer) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.width, v.height = ev.Width, ev.Height
		v.term.Erase()
		v.term.Resize(v.width, v.height)
		v.tr = render.NewTerminalRenderer(v.term, v.width, v.height)
		v.fb.Resize(v.tr.FramebufferSize())
		v.pipe.Resize()

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("ctrl+c", "q"):
			return true
		case ev.MatchString("escape"):
			if !v.movement.Enabled() {
				return true
			}
			v.movement.SetEnabled(false)
			v.tracking = false
		case ev.MatchString("space"):
			v.anim.kick(1.5)
		case ev.MatchString("r"):
			v.anim.reset()
			c := v.cfg.Camera
			v.camera.SetPosition(vec3(c.Position))
			v.camera.SetRotation(c.Yaw, c.Pitch)
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		default:
			for _, k := range moveKeys {
				if ev.MatchString(k) {
					v.movement.KeyDown(k)
				}
			}
		}

	case uv.KeyReleaseEvent:
		for _, k := range moveKeys {
			if ev.MatchString(k) {
				v.movement.KeyUp(k)
			}
		}

	case uv.MouseClickEvent:
		if !v.movement.Enabled() {
			v.movement.SetEnabled(true)
		}
		v.lastX, v.lastY = ev.X, ev.Y
		v.tracking = true

	case uv.MouseMotionEvent:
		if !v.tracking {
			v.lastX, v.lastY = ev.X, ev.Y
			v.tracking = v.movement.Enabled()
			return false
		}
		dx, dy := ev.X-v.lastX, ev.Y-v.lastY
		v.lastX, v.lastY = ev.X, ev.Y
		v.movement.PointerMove(float64(dx)*cellPointerScale, float64(dy)*cellPointerScale)
	}
	return false
}
