// Package subdiv implements Loop subdivision over models.Packet.
//
// One step splits every triangle into four: each edge gets a new vertex
// weighted toward its two opposite corners, and every original vertex is
// pulled toward the average of its neighbors.
package subdiv

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/taigrr/painter/pkg/math3d"
	"github.com/taigrr/painter/pkg/models"
)

var (
	// ErrDegenerateEdge is returned when an edge endpoint has no identity in
	// the packet being subdivided.
	ErrDegenerateEdge = errors.New("degenerate edge")

	// ErrNonManifoldEdge is returned by a strict engine when an edge has more
	// than two opposite vertices.
	ErrNonManifoldEdge = errors.New("non-manifold edge")
)

// Engine subdivides packets. The zero value is ready to use.
type Engine struct {
	// Strict rejects non-manifold edges instead of using the first two
	// opposite vertices in triangle order.
	Strict bool

	// Logger receives non-manifold warnings and per-level summaries. May be nil.
	Logger *log.Logger
}

type edgeKey struct {
	lo, hi models.VertexID
}

func (e *Engine) key(p *models.Packet, a, b *models.Vertex) (edgeKey, error) {
	ia, okA := p.ID(a)
	ib, okB := p.ID(b)
	if a == nil || b == nil || !okA || !okB {
		return edgeKey{}, ErrDegenerateEdge
	}
	if ia > ib {
		ia, ib = ib, ia
	}
	return edgeKey{ia, ib}, nil
}

// Subdivide performs one Loop subdivision step and returns a new packet with
// four times as many triangles. The input packet is not modified.
func (e *Engine) Subdivide(p *models.Packet) (*models.Packet, error) {
	if p == nil {
		return nil, fmt.Errorf("subdivide: nil packet: %w", models.ErrMalformedGeometry)
	}

	tris := p.Triangles()
	opposite, err := e.opposites(p, tris)
	if err != nil {
		return nil, fmt.Errorf("subdivide: %w", err)
	}

	edges := make(map[edgeKey]*models.Vertex, len(opposite))
	for _, tri := range tris {
		for i := range 3 {
			a, b := tri.V[i], tri.V[(i+1)%3]
			k, _ := e.key(p, a, b)
			if _, ok := edges[k]; ok {
				continue
			}

			opp := opposite[k]
			if k.lo == k.hi {
				opp = selfOpposites(tris, a)
			}
			pos, err := e.edgePoint(k, a, b, opp)
			if err != nil {
				return nil, fmt.Errorf("subdivide: %w", err)
			}
			edges[k] = &models.Vertex{Position: pos}
		}
	}

	moved := make([]*models.Vertex, p.VertexCount())
	for id := range moved {
		moved[id] = &models.Vertex{Position: reposition(p, models.VertexID(id))}
	}

	out := make([]models.Triangle, 0, len(tris)*4)
	for _, tri := range tris {
		var ev [3]*models.Vertex
		var nv [3]*models.Vertex
		for i := range 3 {
			k, _ := e.key(p, tri.V[i], tri.V[(i+1)%3])
			ev[i] = edges[k]
			id, _ := p.ID(tri.V[i])
			nv[i] = moved[id]
		}

		out = append(out,
			models.Triangle{V: [3]*models.Vertex{nv[0], ev[0], ev[2]}, Color: tri.Color},
			models.Triangle{V: [3]*models.Vertex{nv[1], ev[1], ev[0]}, Color: tri.Color},
			models.Triangle{V: [3]*models.Vertex{nv[2], ev[2], ev[1]}, Color: tri.Color},
			models.Triangle{V: [3]*models.Vertex{ev[0], ev[1], ev[2]}, Color: tri.Color},
		)
	}

	return models.NewPacket(out)
}

// opposites collects, for every edge, the corners of the triangles sharing
// it that are not its endpoints, in triangle order. Each triangle counts once
// per edge even when it repeats a vertex.
func (e *Engine) opposites(p *models.Packet, tris []models.Triangle) (map[edgeKey][]*models.Vertex, error) {
	opp := make(map[edgeKey][]*models.Vertex, len(tris)*3/2)
	for _, t := range tris {
		var seen [3]edgeKey
		n := 0
		for i := range 3 {
			a, b := t.V[i], t.V[(i+1)%3]
			k, err := e.key(p, a, b)
			if err != nil {
				return nil, err
			}
			if k.lo == k.hi || slices.Contains(seen[:n], k) {
				continue
			}
			seen[n] = k
			n++

			for _, v := range t.V {
				if v != a && v != b {
					opp[k] = append(opp[k], v)
				}
			}
		}
	}
	return opp, nil
}

// selfOpposites handles the degenerate edge from a vertex to itself: every
// corner other than v in any triangle touching v.
func selfOpposites(tris []models.Triangle, v *models.Vertex) []*models.Vertex {
	var opp []*models.Vertex
	for _, t := range tris {
		if !contains(t, v) {
			continue
		}
		for _, c := range t.V {
			if c != v {
				opp = append(opp, c)
			}
		}
	}
	return opp
}

// edgePoint places the new vertex for edge a-b from its opposite corners.
func (e *Engine) edgePoint(k edgeKey, a, b *models.Vertex, opposite []*models.Vertex) (math3d.Vec4, error) {
	switch {
	case len(opposite) < 2:
		return a.Position.Add(b.Position).Scale(0.5), nil
	case len(opposite) > 2:
		if e.Strict {
			return math3d.Vec4{}, fmt.Errorf("%w: vertices %d-%d have %d opposite vertices",
				ErrNonManifoldEdge, k.lo, k.hi, len(opposite))
		}
		if e.Logger != nil {
			e.Logger.Warn("non-manifold edge, using first two opposite vertices",
				"a", k.lo, "b", k.hi, "opposites", len(opposite))
		}
	}

	ends := a.Position.Add(b.Position).Scale(3.0 / 8.0)
	wings := opposite[0].Position.Add(opposite[1].Position).Scale(1.0 / 8.0)
	return ends.Add(wings), nil
}

// reposition applies the Loop vertex rule to the vertex with the given id.
func reposition(p *models.Packet, id models.VertexID) math3d.Vec4 {
	n := p.Valence(id)
	beta := Beta(n)

	var sum math3d.Vec4
	for _, nb := range p.Neighbors(id) {
		sum = sum.Add(p.Vertex(nb).Position)
	}
	return p.Vertex(id).Position.Scale(1 - float64(n)*beta).Add(sum.Scale(beta))
}

// Beta returns the Loop neighbor weight for a vertex of valence n:
// 3/16 for n == 3, otherwise 3/(8n).
func Beta(n int) float64 {
	if n == 3 {
		return 3.0 / 16.0
	}
	return 3.0 / (8.0 * float64(n))
}

func contains(t models.Triangle, v *models.Vertex) bool {
	return t.V[0] == v || t.V[1] == v || t.V[2] == v
}

// SubdivideN applies levels subdivision steps, checking ctx between levels.
// Zero levels returns p unchanged.
func (e *Engine) SubdivideN(ctx context.Context, p *models.Packet, levels int) (*models.Packet, error) {
	if levels < 0 {
		return nil, fmt.Errorf("subdivide: negative level count %d", levels)
	}

	for level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := e.Subdivide(p)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level+1, err)
		}
		if e.Logger != nil {
			e.Logger.Debug("subdivided", "level", level+1,
				"triangles", next.TriangleCount(), "vertices", next.VertexCount())
		}
		p = next
	}
	return p, nil
}

// Subdivide performs one step with a default engine.
func Subdivide(p *models.Packet) (*models.Packet, error) {
	var e Engine
	return e.Subdivide(p)
}

// SubdivideN performs levels steps with a default engine.
func SubdivideN(ctx context.Context, p *models.Packet, levels int) (*models.Packet, error) {
	var e Engine
	return e.SubdivideN(ctx, p, levels)
}
