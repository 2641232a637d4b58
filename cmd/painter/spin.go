package main

import (
	"math/rand/v2"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/painter/pkg/config"
	"github.com/taigrr/painter/pkg/math3d"
	"github.com/taigrr/painter/pkg/render"
)

// spinAxis turns at a steady rate plus an impulse velocity that a spring
// pulls back to zero.
type spinAxis struct {
	Angle    float64 // degrees
	Rate     float64 // degrees per second
	Velocity float64 // extra degrees per frame from impulses

	velSpring harmonica.Spring
	velAccel  float64
}

func newSpinAxis(fps int, rate float64) spinAxis {
	return spinAxis{
		Rate: rate,
		// Frequency 4, damping 1: critically damped, no overshoot.
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (a *spinAxis) update(dt float64) {
	a.Angle += a.Rate*dt + a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// spinner animates one mesh's rotation on top of its configured rotation.
type spinner struct {
	mesh *render.Mesh
	base math3d.Vec3
	axes [3]spinAxis
	fps  int
	rate [3]float64
}

func newSpinner(fps int, m *render.Mesh, rate [3]float64) *spinner {
	s := &spinner{mesh: m, base: m.Rotation(), fps: fps, rate: rate}
	s.reset()
	return s
}

func (s *spinner) reset() {
	for i := range s.axes {
		s.axes[i] = newSpinAxis(s.fps, s.rate[i])
	}
	s.mesh.SetRotation(s.base)
}

func (s *spinner) update(dt float64) {
	for i := range s.axes {
		s.axes[i].update(dt)
	}
	s.mesh.SetRotation(s.base.Add(math3d.V3(s.axes[0].Angle, s.axes[1].Angle, s.axes[2].Angle)))
}

func (s *spinner) impulse(x, y, z float64) {
	s.axes[0].Velocity += x
	s.axes[1].Velocity += y
	s.axes[2].Velocity += z
}

// animator spins every mesh of a scene built from cfg.
type animator struct {
	spinners []*spinner
}

// newAnimator pairs the scene's meshes with cfg.Meshes; Build adds them in
// the same order.
func newAnimator(cfg *config.Config, scene *render.Scene) *animator {
	a := &animator{}
	for i, m := range scene.Meshes() {
		if i >= len(cfg.Meshes) {
			break
		}
		a.spinners = append(a.spinners, newSpinner(cfg.FPS, m, cfg.Meshes[i].Spin))
	}
	return a
}

// update advances every spinner by dt seconds, clamped to 0.1 so a stalled
// frame does not jump the model.
func (a *animator) update(dt float64) {
	dt = min(dt, 0.1)
	for _, s := range a.spinners {
		s.update(dt)
	}
}

// kick applies a random impulse of up to ±scale degrees per frame per axis.
func (a *animator) kick(scale float64) {
	for _, s := range a.spinners {
		s.impulse(
			(rand.Float64()-0.5)*2*scale,
			(rand.Float64()-0.5)*2*scale,
			(rand.Float64()-0.5)*2*scale,
		)
	}
}

func (a *animator) reset() {
	for _, s := range a.spinners {
		s.reset()
	}
}

// advance moves every spinner forward by t seconds in fixed frame steps.
func (a *animator) advance(t float64, fps int) {
	if t <= 0 || fps <= 0 {
		return
	}
	step := 1 / float64(fps)
	for ; t > step/2; t -= step {
		a.update(step)
	}
}
