// Package controls turns key and pointer input into first-person camera motion.
package controls

import (
	"math"
	"strings"
	"sync"

	"github.com/taigrr/painter/pkg/render"
)

// Defaults for a new Movement.
const (
	DefaultSpeed       = 0.3  // world units per Update
	DefaultSensitivity = 0.15 // degrees per pointer unit
	DefaultMaxPitch    = 89.0 // degrees
)

// Movement drives a camera from input. Input methods may be called from any
// goroutine; the camera is only touched by Update, which belongs on the
// render loop. Input is ignored while the controller is disabled.
//
// Keys: w/s move along the view direction, a/d strafe left/right in the
// horizontal plane.
type Movement struct {
	Speed       float64
	Sensitivity float64
	MaxPitch    float64

	camera *render.Camera

	mu      sync.Mutex
	enabled bool
	keys    map[string]bool
	look    [][2]float64
}

// NewMovement creates a disabled controller for cam with default tuning.
func NewMovement(cam *render.Camera) *Movement {
	return &Movement{
		Speed:       DefaultSpeed,
		Sensitivity: DefaultSensitivity,
		MaxPitch:    DefaultMaxPitch,
		camera:      cam,
		keys:        make(map[string]bool),
	}
}

// SetEnabled turns input handling on or off. Disabling releases all keys.
func (m *Movement) SetEnabled(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = on
	if !on {
		clear(m.keys)
		m.look = m.look[:0]
	}
}

// Enabled reports whether input is being handled.
func (m *Movement) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// KeyDown records a key press. Names are case-insensitive.
func (m *Movement) KeyDown(name string) {
	m.setKey(name, true)
}

// KeyUp records a key release.
func (m *Movement) KeyUp(name string) {
	m.setKey(name, false)
}

func (m *Movement) setKey(name string, down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.keys[strings.ToLower(name)] = down
}

// Pressed reports whether a key is currently held.
func (m *Movement) Pressed(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[strings.ToLower(name)]
}

// PointerMove queues a relative pointer motion. Positive dx turns right,
// positive dy (screen down) looks down.
func (m *Movement) PointerMove(dx, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.look = append(m.look, [2]float64{dx, dy})
}

// Update applies queued pointer motion and held keys to the camera. Call it
// once per tick.
func (m *Movement) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}

	cam := m.camera
	for _, d := range m.look {
		cam.Yaw += d[0] * m.Sensitivity
		cam.Pitch -= d[1] * m.Sensitivity
		cam.Pitch = math.Max(-m.MaxPitch, math.Min(m.MaxPitch, cam.Pitch))
	}
	m.look = m.look[:0]

	if m.keys["w"] {
		cam.MoveForward(m.Speed)
	}
	if m.keys["s"] {
		cam.MoveForward(-m.Speed)
	}
	if m.keys["d"] {
		cam.Strafe(-m.Speed)
	}
	if m.keys["a"] {
		cam.Strafe(m.Speed)
	}
}
