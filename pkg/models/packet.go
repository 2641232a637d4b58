// Package models provides mesh topology and model loading for painter.
package models

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"github.com/taigrr/painter/pkg/math3d"
)

// ErrMalformedGeometry is returned when a triangle is missing a vertex.
var ErrMalformedGeometry = errors.New("malformed geometry")

// MalformedGeometryError names the triangle and corner that failed validation.
type MalformedGeometryError struct {
	Triangle int
	Corner   int
}

func (e *MalformedGeometryError) Error() string {
	return fmt.Sprintf("malformed geometry: triangle %d has no vertex at corner %d", e.Triangle, e.Corner)
}

func (e *MalformedGeometryError) Unwrap() error {
	return ErrMalformedGeometry
}

// DefaultColor is the flat color given to triangles that do not specify one.
var DefaultColor = color.RGBA{0x86, 0x86, 0x86, 0xff}

// Vertex is a homogeneous position shared by any number of triangles.
// Vertices are compared by pointer: two triangles share a corner only if they
// reference the same *Vertex.
type Vertex struct {
	Position math3d.Vec4
}

// NewVertex creates a vertex at (x, y, z) with w=1.
func NewVertex(x, y, z float64) *Vertex {
	return &Vertex{Position: math3d.Point(x, y, z)}
}

// VertexID identifies a distinct vertex within one Packet.
type VertexID int

// Triangle is three vertices in winding order plus a flat color.
type Triangle struct {
	V     [3]*Vertex
	Color color.RGBA
}

// NewTriangle creates a triangle with the default color.
func NewTriangle(a, b, c *Vertex) Triangle {
	return Triangle{V: [3]*Vertex{a, b, c}, Color: DefaultColor}
}

// Packet owns a triangle list and the topology derived from it: a flattened
// corner list, a vertex arena indexed by VertexID and an adjacency table.
// The topology is only valid for the triangle list it was built from; use
// SetTriangles to replace the triangles.
type Packet struct {
	triangles []Triangle
	corners   []*Vertex
	vertices  []*Vertex
	ids       map[*Vertex]VertexID
	neighbors []map[VertexID]struct{}
}

// NewPacket builds a packet from the given triangles.
func NewPacket(triangles []Triangle) (*Packet, error) {
	p := &Packet{}
	if err := p.SetTriangles(triangles); err != nil {
		return nil, err
	}
	return p, nil
}

// SetTriangles replaces the triangle list and rebuilds vertices and adjacency.
// On error the packet keeps its previous triangles and topology.
func (p *Packet) SetTriangles(triangles []Triangle) error {
	for i, tri := range triangles {
		for c, v := range tri.V {
			if v == nil {
				return &MalformedGeometryError{Triangle: i, Corner: c}
			}
		}
	}

	tris := slices.Clone(triangles)
	corners := make([]*Vertex, 0, len(tris)*3)
	ids := make(map[*Vertex]VertexID)
	var vertices []*Vertex
	var neighbors []map[VertexID]struct{}

	for _, tri := range tris {
		for _, v := range tri.V {
			if _, ok := ids[v]; !ok {
				ids[v] = VertexID(len(vertices))
				vertices = append(vertices, v)
				neighbors = append(neighbors, make(map[VertexID]struct{}))
			}
			corners = append(corners, v)
		}
	}

	for _, tri := range tris {
		for i := range 3 {
			for j := range 3 {
				if i == j {
					continue
				}
				neighbors[ids[tri.V[i]]][ids[tri.V[j]]] = struct{}{}
			}
		}
	}

	p.triangles = tris
	p.corners = corners
	p.vertices = vertices
	p.ids = ids
	p.neighbors = neighbors
	return nil
}

// Triangles returns a copy of the triangle list.
func (p *Packet) Triangles() []Triangle {
	return slices.Clone(p.triangles)
}

// TriangleCount returns the number of triangles.
func (p *Packet) TriangleCount() int {
	return len(p.triangles)
}

// Corners returns one vertex per triangle corner, so shared vertices repeat.
func (p *Packet) Corners() []*Vertex {
	return slices.Clone(p.corners)
}

// Vertices returns the distinct vertices in VertexID order.
func (p *Packet) Vertices() []*Vertex {
	return slices.Clone(p.vertices)
}

// VertexCount returns the number of distinct vertices.
func (p *Packet) VertexCount() int {
	return len(p.vertices)
}

// ID returns the identity of v within this packet.
func (p *Packet) ID(v *Vertex) (VertexID, bool) {
	id, ok := p.ids[v]
	return id, ok
}

// Vertex returns the vertex with the given identity.
func (p *Packet) Vertex(id VertexID) *Vertex {
	return p.vertices[id]
}

// Neighbors returns the identities adjacent to id in ascending order.
func (p *Packet) Neighbors(id VertexID) []VertexID {
	out := make([]VertexID, 0, len(p.neighbors[id]))
	for n := range p.neighbors[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Valence returns the number of distinct neighbors of id.
func (p *Packet) Valence(id VertexID) int {
	return len(p.neighbors[id])
}

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty packet has zero bounds.
func (p *Packet) Bounds() (min, max math3d.Vec3) {
	if len(p.vertices) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}

	min = p.vertices[0].Position.Vec3()
	max = min
	for _, v := range p.vertices[1:] {
		min = min.Min(v.Position.Vec3())
		max = max.Max(v.Position.Vec3())
	}
	return min, max
}
