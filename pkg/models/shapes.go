package models

import (
	"fmt"
	"math"
	"strings"
)

// BuiltinPrefix marks a model source that names a built-in shape, such as
// "builtin:cube".
const BuiltinPrefix = "builtin:"

// Builtin returns a fresh packet for a built-in shape name: tetrahedron,
// octahedron or cube. The name may carry BuiltinPrefix.
func Builtin(name string) (*Packet, error) {
	switch strings.TrimPrefix(name, BuiltinPrefix) {
	case "tetrahedron":
		return Tetrahedron(), nil
	case "octahedron":
		return Octahedron(), nil
	case "cube":
		return Cube(), nil
	default:
		return nil, fmt.Errorf("unknown builtin shape %q", name)
	}
}

// IsBuiltin reports whether src names a built-in shape.
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, BuiltinPrefix)
}

// All built-in shapes are closed, centered on the origin and wound
// counter-clockwise when seen from outside.

// Tetrahedron returns a regular tetrahedron inscribed in the unit sphere.
func Tetrahedron() *Packet {
	s := 1 / math.Sqrt(3)
	a := NewVertex(s, s, s)
	b := NewVertex(s, -s, -s)
	c := NewVertex(-s, s, -s)
	d := NewVertex(-s, -s, s)
	return mustPacket(
		NewTriangle(a, c, d),
		NewTriangle(a, d, b),
		NewTriangle(a, b, c),
		NewTriangle(b, d, c),
	)
}

// Octahedron returns the octahedron with vertices on the unit axes.
func Octahedron() *Packet {
	px := NewVertex(1, 0, 0)
	nx := NewVertex(-1, 0, 0)
	py := NewVertex(0, 1, 0)
	ny := NewVertex(0, -1, 0)
	pz := NewVertex(0, 0, 1)
	nz := NewVertex(0, 0, -1)
	return mustPacket(
		NewTriangle(px, py, pz),
		NewTriangle(py, nx, pz),
		NewTriangle(nx, ny, pz),
		NewTriangle(ny, px, pz),
		NewTriangle(py, px, nz),
		NewTriangle(nx, py, nz),
		NewTriangle(ny, nx, nz),
		NewTriangle(px, ny, nz),
	)
}

// Cube returns an axis-aligned cube with edge length 2.
func Cube() *Packet {
	var v [8]*Vertex
	for i := range v {
		x, y, z := -1.0, -1.0, -1.0
		if i&1 != 0 {
			x = 1
		}
		if i&2 != 0 {
			y = 1
		}
		if i&4 != 0 {
			z = 1
		}
		v[i] = NewVertex(x, y, z)
	}

	// Quads listed counter-clockwise from outside.
	quads := [6][4]int{
		{0, 2, 3, 1}, // -z
		{4, 5, 7, 6}, // +z
		{0, 1, 5, 4}, // -y
		{2, 6, 7, 3}, // +y
		{0, 4, 6, 2}, // -x
		{1, 3, 7, 5}, // +x
	}
	tris := make([]Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris,
			NewTriangle(v[q[0]], v[q[1]], v[q[2]]),
			NewTriangle(v[q[0]], v[q[2]], v[q[3]]),
		)
	}
	return mustPacket(tris...)
}

func mustPacket(tris ...Triangle) *Packet {
	p, err := NewPacket(tris)
	if err != nil {
		panic(err)
	}
	return p
}

// Fit moves and scales the packet's vertices in place so the bounding box
// is centered on the origin and its largest extent equals size. A packet
// with zero extent is only centered.
func (p *Packet) Fit(size float64) {
	lo, hi := p.Bounds()
	center := lo.Add(hi).Scale(0.5)
	ext := hi.Sub(lo)
	maxDim := math.Max(ext.X, math.Max(ext.Y, ext.Z))

	k := 1.0
	if maxDim > 0 {
		k = size / maxDim
	}
	for _, v := range p.vertices {
		pos := v.Position.Vec3().Sub(center).Scale(k)
		v.Position.X, v.Position.Y, v.Position.Z = pos.X, pos.Y, pos.Z
	}
}
