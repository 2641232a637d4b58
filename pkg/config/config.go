// Package config loads painter scene files.
//
// A scene file is TOML:
//
//	log_level  = "info"
//	background = "#1e1e28"
//	fps        = 30
//	strict     = false
//
//	[camera]
//	position = [0, 0, 5]
//	yaw      = 0
//	pitch    = 0
//
//	[movement]
//	speed       = 0.3
//	sensitivity = 0.15
//	max_pitch   = 89
//
//	[[mesh]]
//	name         = "blob"
//	source       = "builtin:octahedron" # or a .obj/.gltf/.glb path, or an http(s) .obj URL
//	subdivisions = 2
//	color        = "#868686"
//	fit          = 2
//	position     = [0, 0, 0]
//	rotation     = [0, 0, 0]
//	scale        = [1, 1, 1]
//	spin         = [0, 30, 0]
//
//	[[light]]
//	position  = [0, 0, 10]
//	color     = "#ffffff"
//	intensity = 1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/painter/pkg/controls"
	"github.com/taigrr/painter/pkg/render"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// MaxSubdivisions bounds subdivision levels; each level quadruples the
// triangle count.
const MaxSubdivisions = 6

// Config is a complete scene description.
type Config struct {
	LogLevel   string `toml:"log_level"`
	Background string `toml:"background"`
	FPS        int    `toml:"fps"`
	Strict     bool   `toml:"strict"`

	Camera   Camera   `toml:"camera"`
	Movement Movement `toml:"movement"`
	Meshes   []Mesh   `toml:"mesh"`
	Lights   []Light  `toml:"light"`
}

// Camera places the scene camera. Angles are in degrees.
type Camera struct {
	Position [3]float64 `toml:"position"`
	Yaw      float64    `toml:"yaw"`
	Pitch    float64    `toml:"pitch"`
}

// Movement tunes the first-person controller.
type Movement struct {
	Speed       float64 `toml:"speed"`
	Sensitivity float64 `toml:"sensitivity"`
	MaxPitch    float64 `toml:"max_pitch"`
}

// Mesh describes one model in the scene.
type Mesh struct {
	Name         string `toml:"name"`
	Source       string `toml:"source"`
	Subdivisions int    `toml:"subdivisions"`
	// Color overrides every triangle's color when set.
	Color string `toml:"color"`
	// Fit recenters the model and scales its largest extent to this size
	// when positive.
	Fit      float64    `toml:"fit"`
	Position [3]float64 `toml:"position"`
	Rotation [3]float64 `toml:"rotation"`
	Scale    [3]float64 `toml:"scale"`
	// Spin is the auto-rotation rate in degrees per second used by the viewers.
	Spin [3]float64 `toml:"spin"`
}

// Light describes a point light.
type Light struct {
	Position  [3]float64 `toml:"position"`
	Color     string     `toml:"color"`
	Intensity float64    `toml:"intensity"`
}

// Default returns the built-in scene: a subdivided octahedron lit from the
// camera side.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		FPS:      30,
		Camera: Camera{
			Position: [3]float64{0, 0, 5},
		},
		Movement: Movement{
			Speed:       controls.DefaultSpeed,
			Sensitivity: controls.DefaultSensitivity,
			MaxPitch:    controls.DefaultMaxPitch,
		},
		Meshes: []Mesh{{
			Name:         "octahedron",
			Source:       "builtin:octahedron",
			Subdivisions: 2,
			Fit:          2,
			Scale:        [3]float64{1, 1, 1},
			Spin:         [3]float64{0, 30, 0},
		}},
		Lights: []Light{{
			Position:  [3]float64{0, 0, 10},
			Color:     "#ffffff",
			Intensity: 1,
		}},
	}
}

// Load reads and validates a scene file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a scene document. Top-level settings missing
// from the document keep their defaults; the mesh and light lists are taken
// from the document only. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Meshes = nil
	cfg.Lights = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	for i := range cfg.Meshes {
		if cfg.Meshes[i].Scale == [3]float64{} {
			cfg.Meshes[i].Scale = [3]float64{1, 1, 1}
		}
	}
	for i := range cfg.Lights {
		if cfg.Lights[i].Color == "" {
			cfg.Lights[i].Color = "#ffffff"
		}
		if cfg.Lights[i].Intensity == 0 {
			cfg.Lights[i].Intensity = 1
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem in the config, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		add("log_level: %v", err)
	}
	if c.Background != "" {
		if _, err := render.ParseHexColor(c.Background); err != nil {
			add("background: %v", err)
		}
	}
	if c.FPS < 1 || c.FPS > 240 {
		add("fps: %d out of range 1..240", c.FPS)
	}

	if c.Movement.Speed <= 0 {
		add("movement.speed must be positive")
	}
	if c.Movement.Sensitivity <= 0 {
		add("movement.sensitivity must be positive")
	}
	if c.Movement.MaxPitch <= 0 || c.Movement.MaxPitch >= 90 {
		add("movement.max_pitch: %v out of range (0, 90)", c.Movement.MaxPitch)
	}

	for i, m := range c.Meshes {
		if m.Source == "" {
			add("mesh[%d]: source is required", i)
		}
		if m.Subdivisions < 0 || m.Subdivisions > MaxSubdivisions {
			add("mesh[%d]: subdivisions %d out of range 0..%d", i, m.Subdivisions, MaxSubdivisions)
		}
		if m.Color != "" {
			if _, err := render.ParseHexColor(m.Color); err != nil {
				add("mesh[%d].color: %v", i, err)
			}
		}
		if m.Fit < 0 {
			add("mesh[%d]: fit must not be negative", i)
		}
		if m.Scale[0] == 0 || m.Scale[1] == 0 || m.Scale[2] == 0 {
			add("mesh[%d]: scale components must be non-zero", i)
		}
	}

	for i, l := range c.Lights {
		if _, err := render.ParseHexColor(l.Color); err != nil {
			add("light[%d].color: %v", i, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Level returns the configured log level, or info if it does not parse.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// BackgroundColor returns the parsed background; empty means transparent.
func (c *Config) BackgroundColor() render.Color {
	if c.Background == "" {
		return render.Color{}
	}
	bg, err := render.ParseHexColor(c.Background)
	if err != nil {
		return render.Color{}
	}
	return bg
}

// ApplyMovement copies the movement tuning onto m.
func (c *Config) ApplyMovement(m *controls.Movement) {
	m.Speed = c.Movement.Speed
	m.Sensitivity = c.Movement.Sensitivity
	m.MaxPitch = c.Movement.MaxPitch
}
