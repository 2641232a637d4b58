package main

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/taigrr/painter/pkg/config"
	"github.com/taigrr/painter/pkg/controls"
	"github.com/taigrr/painter/pkg/render"
	"github.com/taigrr/painter/pkg/render/ebitensurface"
)

var windowKeys = []struct {
	key  ebiten.Key
	name string
}{
	{ebiten.KeyW, "w"},
	{ebiten.KeyA, "a"},
	{ebiten.KeyS, "s"},
	{ebiten.KeyD, "d"},
}

func newWindowCmd(opts *rootOptions) *cobra.Command {
	mf := &modelFlags{}
	var (
		width, height int
		watch         bool
	)

	cmd := &cobra.Command{
		Use:   "window [model]",
		Short: "Draw the scene in a desktop window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(args, mf)
			if err != nil {
				return err
			}
			logger, closeLog, err := opts.newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, err := newGame(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if watch && opts.configPath != "" {
				g.reloads, err = config.Watch(ctx, opts.configPath, logger)
				if err != nil {
					return err
				}
			}

			ebiten.SetWindowSize(width, height)
			ebiten.SetWindowTitle("painter")
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetTPS(cfg.FPS)
			if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
				return err
			}
			return nil
		},
	}
	mf.register(cmd)
	cmd.Flags().IntVar(&width, "width", 1280, "window width")
	cmd.Flags().IntVar(&height, "height", 720, "window height")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the scene when the --config file changes")
	return cmd
}

// game runs the pipeline inside ebiten. Clicking captures the cursor and
// enables first-person movement; Escape releases it, or quits when released.
type game struct {
	ctx     context.Context
	cfg     *config.Config
	logger  *log.Logger
	reloads <-chan *config.Config

	scene    *render.Scene
	camera   *render.Camera
	surface  *ebitensurface.Surface
	pipe     *render.Pipeline
	movement *controls.Movement
	anim     *animator

	width, height int
	lastX, lastY  int
	showHUD       bool
}

func newGame(ctx context.Context, cfg *config.Config, logger *log.Logger) (*game, error) {
	scene, err := cfg.Build(ctx, logger)
	if err != nil {
		return nil, err
	}

	surface := ebitensurface.New(nil)
	g := &game{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger,
		scene:   scene,
		camera:  scene.Camera(),
		surface: surface,
		pipe:    render.NewPipeline(surface),
		anim:    newAnimator(cfg, scene),
	}
	g.pipe.Background = cfg.BackgroundColor()
	g.movement = controls.NewMovement(g.camera)
	cfg.ApplyMovement(g.movement)
	return g, nil
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	case cfg, ok := <-g.reloads:
		if ok {
			g.reload(cfg)
		} else {
			g.reloads = nil
		}
	default:
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && !g.movement.Enabled() {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		g.movement.SetEnabled(true)
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if !g.movement.Enabled() {
			return ebiten.Termination
		}
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
		g.movement.SetEnabled(false)
	}

	if g.movement.Enabled() {
		x, y := ebiten.CursorPosition()
		g.movement.PointerMove(float64(x-g.lastX), float64(y-g.lastY))
		g.lastX, g.lastY = x, y

		for _, k := range windowKeys {
			if ebiten.IsKeyPressed(k.key) {
				g.movement.KeyDown(k.name)
			} else {
				g.movement.KeyUp(k.name)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.anim.kick(1.5)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.anim.reset()
		c := g.cfg.Camera
		g.camera.SetPosition(vec3(c.Position))
		g.camera.SetRotation(c.Yaw, c.Pitch)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		g.showHUD = !g.showHUD
	}

	g.movement.Update()
	g.anim.update(1 / float64(ebiten.TPS()))
	return nil
}

func (g *game) reload(cfg *config.Config) {
	scene, err := cfg.Build(g.ctx, g.logger)
	if err != nil {
		g.logger.Warn("scene rebuild failed", "err", err)
		return
	}
	scene.SetCamera(g.camera)
	g.cfg = cfg
	g.scene = scene
	g.anim = newAnimator(cfg, scene)
	cfg.ApplyMovement(g.movement)
	g.pipe.Background = cfg.BackgroundColor()
	g.logger.SetLevel(cfg.Level())
	ebiten.SetTPS(cfg.FPS)
}

func (g *game) Draw(screen *ebiten.Image) {
	g.surface.SetTarget(screen)
	if w, h := g.surface.Size(); w != g.width || h != g.height {
		g.width, g.height = w, h
		g.pipe.Resize()
	}

	if err := g.pipe.Render(g.scene); err != nil {
		g.logger.Error("render", "err", err)
		return
	}
	if g.showHUD {
		ebitenutil.DebugPrint(screen, hudLine(ebiten.ActualFPS(), g.pipe.Stats(), g.movement.Enabled()))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
