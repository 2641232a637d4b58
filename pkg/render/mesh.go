package render

import (
	"github.com/google/uuid"

	"github.com/taigrr/painter/pkg/math3d"
	"github.com/taigrr/painter/pkg/models"
)

// Mesh places a packet's triangles in the world. The model matrix is
// T(position) * Rz * Ry * Rx * S(scale), with rotations in degrees, and is
// recomputed by every setter.
type Mesh struct {
	ID   uuid.UUID
	Name string

	triangles []models.Triangle
	position  math3d.Vec3
	rotation  math3d.Vec3
	scale     math3d.Vec3
	model     math3d.Mat4
}

// NewMesh creates a mesh at the origin with no rotation and unit scale.
func NewMesh(name string, p *models.Packet) *Mesh {
	m := &Mesh{
		ID:    uuid.New(),
		Name:  name,
		scale: math3d.V3(1, 1, 1),
	}
	m.SetPacket(p)
	return m
}

// SetPacket replaces the triangles drawn for this mesh, keeping its transform.
func (m *Mesh) SetPacket(p *models.Packet) {
	if p == nil {
		m.triangles = nil
	} else {
		m.triangles = p.Triangles()
	}
	m.UpdateModel()
}

// Triangles returns the mesh triangles in model space.
func (m *Mesh) Triangles() []models.Triangle {
	return m.triangles
}

// Position returns the translation.
func (m *Mesh) Position() math3d.Vec3 { return m.position }

// PositionX returns the X translation.
func (m *Mesh) PositionX() float64 { return m.position.X }

// PositionY returns the Y translation.
func (m *Mesh) PositionY() float64 { return m.position.Y }

// PositionZ returns the Z translation.
func (m *Mesh) PositionZ() float64 { return m.position.Z }

// SetPosition sets the translation.
func (m *Mesh) SetPosition(v math3d.Vec3) {
	m.position = v
	m.UpdateModel()
}

// SetPositionX sets the X translation.
func (m *Mesh) SetPositionX(x float64) {
	m.position.X = x
	m.UpdateModel()
}

// SetPositionY sets the Y translation.
func (m *Mesh) SetPositionY(y float64) {
	m.position.Y = y
	m.UpdateModel()
}

// SetPositionZ sets the Z translation.
func (m *Mesh) SetPositionZ(z float64) {
	m.position.Z = z
	m.UpdateModel()
}

// Rotation returns the Euler angles in degrees.
func (m *Mesh) Rotation() math3d.Vec3 { return m.rotation }

// RotationX returns the X rotation in degrees.
func (m *Mesh) RotationX() float64 { return m.rotation.X }

// RotationY returns the Y rotation in degrees.
func (m *Mesh) RotationY() float64 { return m.rotation.Y }

// RotationZ returns the Z rotation in degrees.
func (m *Mesh) RotationZ() float64 { return m.rotation.Z }

// SetRotation sets the Euler angles in degrees.
func (m *Mesh) SetRotation(deg math3d.Vec3) {
	m.rotation = deg
	m.UpdateModel()
}

// SetRotationX sets the X rotation in degrees.
func (m *Mesh) SetRotationX(deg float64) {
	m.rotation.X = deg
	m.UpdateModel()
}

// SetRotationY sets the Y rotation in degrees.
func (m *Mesh) SetRotationY(deg float64) {
	m.rotation.Y = deg
	m.UpdateModel()
}

// SetRotationZ sets the Z rotation in degrees.
func (m *Mesh) SetRotationZ(deg float64) {
	m.rotation.Z = deg
	m.UpdateModel()
}

// Scale returns the per-axis scale.
func (m *Mesh) Scale() math3d.Vec3 { return m.scale }

// ScaleX returns the X scale.
func (m *Mesh) ScaleX() float64 { return m.scale.X }

// ScaleY returns the Y scale.
func (m *Mesh) ScaleY() float64 { return m.scale.Y }

// ScaleZ returns the Z scale.
func (m *Mesh) ScaleZ() float64 { return m.scale.Z }

// SetScale sets the per-axis scale.
func (m *Mesh) SetScale(s math3d.Vec3) {
	m.scale = s
	m.UpdateModel()
}

// SetScaleX sets the X scale.
func (m *Mesh) SetScaleX(x float64) {
	m.scale.X = x
	m.UpdateModel()
}

// SetScaleY sets the Y scale.
func (m *Mesh) SetScaleY(y float64) {
	m.scale.Y = y
	m.UpdateModel()
}

// SetScaleZ sets the Z scale.
func (m *Mesh) SetScaleZ(z float64) {
	m.scale.Z = z
	m.UpdateModel()
}

// UpdateModel recomputes the model matrix.
func (m *Mesh) UpdateModel() {
	m.model = math3d.Chain(
		math3d.Translate(m.position),
		math3d.RotateZ(m.rotation.Z),
		math3d.RotateY(m.rotation.Y),
		math3d.RotateX(m.rotation.X),
		math3d.Scale(m.scale),
	)
}

// ModelMatrix returns the model matrix.
func (m *Mesh) ModelMatrix() math3d.Mat4 {
	return m.model
}
