package render

import (
	"math"

	"github.com/taigrr/painter/pkg/math3d"
)

// Camera is a first-person camera: a position plus yaw and pitch in degrees.
// Yaw 0, pitch 0 looks down -Z. Pitch of exactly ±90 makes the basis
// degenerate; callers that take free-form input should clamp it (see
// controls.Movement).
type Camera struct {
	Position math3d.Vec3
	Yaw      float64
	Pitch    float64

	view math3d.Mat4
}

// NewCamera creates a camera at pos with the given yaw and pitch (degrees).
func NewCamera(pos math3d.Vec3, yaw, pitch float64) *Camera {
	c := &Camera{Position: pos, Yaw: yaw, Pitch: pitch}
	c.UpdateView()
	return c
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
}

// SetRotation sets yaw and pitch in degrees.
func (c *Camera) SetRotation(yaw, pitch float64) {
	c.Yaw = yaw
	c.Pitch = pitch
}

// Vectors returns the normalized forward, right and up directions.
func (c *Camera) Vectors() (forward, right, up math3d.Vec3) {
	yaw := math3d.Radians(c.Yaw)
	pitch := math3d.Radians(c.Pitch)

	forward = math3d.V3(
		math.Cos(pitch)*math.Sin(yaw),
		math.Sin(pitch),
		-math.Cos(pitch)*math.Cos(yaw),
	).Normalize()
	right = forward.Cross(math3d.Up()).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// UpdateView recomputes the view matrix from the current position and angles.
func (c *Camera) UpdateView() {
	f, r, u := c.Vectors()
	p := c.Position
	c.view = math3d.Mat4{
		{r.X, r.Y, r.Z, -r.Dot(p)},
		{u.X, u.Y, u.Z, -u.Dot(p)},
		{-f.X, -f.Y, -f.Z, f.Dot(p)},
		{0, 0, 0, 1},
	}
}

// ViewMatrix returns the view matrix as of the last UpdateView.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return c.view
}

// MoveForward moves the camera along its forward vector (or backward if negative).
func (c *Camera) MoveForward(distance float64) {
	f, _, _ := c.Vectors()
	c.Position = c.Position.Add(f.Scale(distance))
}

// Strafe moves the camera sideways in the horizontal plane; positive is to
// the camera's left.
func (c *Camera) Strafe(distance float64) {
	f, _, _ := c.Vectors()
	side := math3d.V3(f.Z, 0, -f.X)
	c.Position = c.Position.Add(side.Scale(distance))
}
