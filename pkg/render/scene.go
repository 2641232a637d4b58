package render

import (
	"slices"

	"github.com/google/uuid"

	"github.com/taigrr/painter/pkg/math3d"
)

// Light is a point light. Intensity is carried for callers but does not
// enter the shading formula; brightness comes from the angle to the light.
type Light struct {
	Position  math3d.Vec3
	Color     Color
	Intensity float64
}

// NewLight creates a light with intensity 1.
func NewLight(pos math3d.Vec3, c Color) *Light {
	return &Light{Position: pos, Color: c, Intensity: 1}
}

// Scene holds the meshes and lights to draw and the camera to draw them from.
// A scene is not safe for concurrent use; mutate it between frames.
type Scene struct {
	meshes []*Mesh
	lights []*Light
	camera *Camera
}

// NewScene creates an empty scene with no camera.
func NewScene() *Scene {
	return &Scene{}
}

// AddMesh adds a mesh to the scene.
func (s *Scene) AddMesh(m *Mesh) {
	s.meshes = append(s.meshes, m)
}

// RemoveMesh removes the mesh with the given ID and reports whether it was found.
func (s *Scene) RemoveMesh(id uuid.UUID) bool {
	i := slices.IndexFunc(s.meshes, func(m *Mesh) bool { return m.ID == id })
	if i < 0 {
		return false
	}
	s.meshes = slices.Delete(s.meshes, i, i+1)
	return true
}

// Mesh returns the mesh with the given ID, or nil.
func (s *Scene) Mesh(id uuid.UUID) *Mesh {
	for _, m := range s.meshes {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Meshes returns the scene's meshes.
func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// AddLight adds a light to the scene.
func (s *Scene) AddLight(l *Light) {
	s.lights = append(s.lights, l)
}

// Lights returns the scene's lights.
func (s *Scene) Lights() []*Light {
	return s.lights
}

// ClearLights removes every light.
func (s *Scene) ClearLights() {
	s.lights = nil
}

// SetCamera sets the camera.
func (s *Scene) SetCamera(c *Camera) {
	s.camera = c
}

// Camera returns the camera, or nil if none was set.
func (s *Scene) Camera() *Camera {
	return s.camera
}
