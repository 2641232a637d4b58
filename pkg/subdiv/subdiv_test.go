package subdiv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/taigrr/painter/pkg/math3d"
	"github.com/taigrr/painter/pkg/models"
)

const epsilon = 1e-12

func approxVec4(a, b math3d.Vec4) bool {
	return math.Abs(a.X-b.X) <= epsilon && math.Abs(a.Y-b.Y) <= epsilon &&
		math.Abs(a.Z-b.Z) <= epsilon && math.Abs(a.W-b.W) <= epsilon
}

// tetrahedron returns a closed mesh where every vertex has valence 3 and
// every edge has exactly two opposite vertices.
func tetrahedron(t *testing.T) (*models.Packet, [4]*models.Vertex) {
	t.Helper()
	v := [4]*models.Vertex{
		models.NewVertex(0, 0, 0),
		models.NewVertex(1, 0, 0),
		models.NewVertex(0, 1, 0),
		models.NewVertex(0, 0, 1),
	}
	a, b, c, d := v[0], v[1], v[2], v[3]
	p, err := models.NewPacket([]models.Triangle{
		models.NewTriangle(a, c, b),
		models.NewTriangle(a, b, d),
		models.NewTriangle(a, d, c),
		models.NewTriangle(b, c, d),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p, v
}

func octahedron(t *testing.T) *models.Packet {
	t.Helper()
	px := models.NewVertex(1, 0, 0)
	nx := models.NewVertex(-1, 0, 0)
	py := models.NewVertex(0, 1, 0)
	ny := models.NewVertex(0, -1, 0)
	pz := models.NewVertex(0, 0, 1)
	nz := models.NewVertex(0, 0, -1)
	p, err := models.NewPacket([]models.Triangle{
		models.NewTriangle(px, py, pz),
		models.NewTriangle(py, nx, pz),
		models.NewTriangle(nx, ny, pz),
		models.NewTriangle(ny, px, pz),
		models.NewTriangle(py, px, nz),
		models.NewTriangle(nx, py, nz),
		models.NewTriangle(ny, nx, nz),
		models.NewTriangle(px, ny, nz),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBeta(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{2, 3.0 / 16},
		{3, 3.0 / 16},
		{4, 3.0 / 32},
		{6, 1.0 / 16},
	}
	for _, tc := range tests {
		if got := Beta(tc.n); math.Abs(got-tc.want) > epsilon {
			t.Errorf("Beta(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestSubdivideGrowth(t *testing.T) {
	tests := []struct {
		name      string
		packet    func(*testing.T) *models.Packet
		levels    int
		wantTris  int
		wantVerts int
	}{
		{"tetrahedron once", func(t *testing.T) *models.Packet { p, _ := tetrahedron(t); return p }, 1, 16, 10},
		{"tetrahedron twice", func(t *testing.T) *models.Packet { p, _ := tetrahedron(t); return p }, 2, 64, 34},
		{"octahedron once", octahedron, 1, 32, 18},
		{"octahedron twice", octahedron, 2, 128, 66},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SubdivideN(context.Background(), tc.packet(t), tc.levels)
			if err != nil {
				t.Fatalf("SubdivideN: %v", err)
			}
			if got.TriangleCount() != tc.wantTris {
				t.Errorf("TriangleCount = %d, want %d", got.TriangleCount(), tc.wantTris)
			}
			// Edge points are shared, so a closed mesh gains one vertex per edge.
			if got.VertexCount() != tc.wantVerts {
				t.Errorf("VertexCount = %d, want %d", got.VertexCount(), tc.wantVerts)
			}
		})
	}
}

func TestSubdivideInteriorEdgeAndVertexRule(t *testing.T) {
	p, v := tetrahedron(t)
	out, err := Subdivide(p)
	if err != nil {
		t.Fatal(err)
	}

	// First input triangle is (a, c, b), so the first output triangle is
	// (a', edge(a,c), edge(b,a)).
	first := out.Triangles()[0]

	// a has valence 3: (1 - 9/16)·a + 3/16·(b + c + d).
	wantA := math3d.V4(3.0/16, 3.0/16, 3.0/16, 1)
	if !approxVec4(first.V[0].Position, wantA) {
		t.Errorf("a' = %v, want %v", first.V[0].Position, wantA)
	}

	// edge(a,b) has opposites c and d: 3/8·(a + b) + 1/8·(c + d).
	wantAB := math3d.V4(3.0/8, 1.0/8, 1.0/8, 1)
	if !approxVec4(first.V[2].Position, wantAB) {
		t.Errorf("edge(a,b) = %v, want %v", first.V[2].Position, wantAB)
	}

	// edge(a,c) has opposites b and d.
	wantAC := math3d.V4(1.0/8, 3.0/8, 1.0/8, 1)
	if !approxVec4(first.V[1].Position, wantAC) {
		t.Errorf("edge(a,c) = %v, want %v", first.V[1].Position, wantAC)
	}

	// Input untouched.
	if v[0].Position != math3d.Point(0, 0, 0) {
		t.Errorf("input vertex moved to %v", v[0].Position)
	}
}

func TestSubdivideValenceSixVertexRule(t *testing.T) {
	level1, err := Subdivide(octahedron(t))
	if err != nil {
		t.Fatal(err)
	}

	// The edge point of px-py lands at 3/8·(px + py) + 1/8·(pz + nz).
	var id models.VertexID = -1
	for i, v := range level1.Vertices() {
		if approxVec4(v.Position, math3d.Point(3.0/8, 3.0/8, 0)) {
			id = models.VertexID(i)
		}
	}
	if id < 0 {
		t.Fatal("edge point of px-py not found")
	}
	if n := level1.Valence(id); n != 6 {
		t.Fatalf("valence = %d, want 6", n)
	}

	// Neighbors px', py' at 5/8 and four edge points at 3/8 sum to
	// (11/8, 11/8, 0); with beta 1/16: 10/16·E + 1/16·sum.
	want := math3d.Point(41.0/128, 41.0/128, 0)
	if got := reposition(level1, id); !approxVec4(got, want) {
		t.Errorf("reposition = %v, want %v", got, want)
	}

	level2, err := Subdivide(level1)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, v := range level2.Vertices() {
		if approxVec4(v.Position, want) {
			found = true
		}
	}
	if !found {
		t.Errorf("no level 2 vertex at %v", want)
	}
}

func TestSubdivideBoundaryUsesMidpoint(t *testing.T) {
	a := models.NewVertex(0, 0, 0)
	b := models.NewVertex(1, 0, 0)
	c := models.NewVertex(0, 1, 0)
	p, err := models.NewPacket([]models.Triangle{models.NewTriangle(a, b, c)})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Subdivide(p)
	if err != nil {
		t.Fatal(err)
	}
	tris := out.Triangles()
	if len(tris) != 4 {
		t.Fatalf("got %d triangles, want 4", len(tris))
	}

	e0, e1, e2 := tris[3].V[0], tris[3].V[1], tris[3].V[2]
	tests := []struct {
		name string
		got  *models.Vertex
		want math3d.Vec4
	}{
		{"edge(a,b)", e0, math3d.Point(0.5, 0, 0)},
		{"edge(b,c)", e1, math3d.Point(0.5, 0.5, 0)},
		{"edge(c,a)", e2, math3d.Point(0, 0.5, 0)},
		// valence 2: (1 - 6/16)·a + 3/16·(b + c)
		{"a'", tris[0].V[0], math3d.Point(3.0/16, 3.0/16, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !approxVec4(tc.got.Position, tc.want) {
				t.Errorf("got %v, want %v", tc.got.Position, tc.want)
			}
		})
	}
}

func TestSubdivideLayoutSharesEdgeVertices(t *testing.T) {
	a := models.NewVertex(0, 0, 0)
	b := models.NewVertex(1, 0, 0)
	c := models.NewVertex(0, 1, 0)
	p, err := models.NewPacket([]models.Triangle{models.NewTriangle(a, b, c)})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Subdivide(p)
	if err != nil {
		t.Fatal(err)
	}
	tris := out.Triangles()
	e0, e1, e2 := tris[3].V[0], tris[3].V[1], tris[3].V[2]

	want := [3][3]*models.Vertex{
		{tris[0].V[0], e0, e2},
		{tris[1].V[0], e1, e0},
		{tris[2].V[0], e2, e1},
	}
	for i, w := range want {
		if tris[i].V != w {
			t.Errorf("triangle %d corners do not follow the (v', e, e) layout", i)
		}
	}
}

func TestSubdivideSharedEdgeBetweenTriangles(t *testing.T) {
	a := models.NewVertex(0, 0, 0)
	b := models.NewVertex(1, 0, 0)
	c := models.NewVertex(1, 1, 0)
	d := models.NewVertex(0, 1, 0)
	p, err := models.NewPacket([]models.Triangle{
		models.NewTriangle(a, b, c),
		models.NewTriangle(a, c, d),
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Subdivide(p)
	if err != nil {
		t.Fatal(err)
	}
	tris := out.Triangles()

	// edge(c,a) is e2 of the first triangle and e0 of the second.
	if tris[3].V[2] != tris[7].V[0] {
		t.Error("triangles sharing an edge should share its edge vertex")
	}
	// Interior diagonal: 3/8·(a + c) + 1/8·(b + d).
	want := math3d.Point(0.5, 0.5, 0)
	if !approxVec4(tris[3].V[2].Position, want) {
		t.Errorf("diagonal point = %v, want %v", tris[3].V[2].Position, want)
	}
}

func TestSubdividePreservesColor(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	a := models.NewVertex(0, 0, 0)
	b := models.NewVertex(1, 0, 0)
	c := models.NewVertex(0, 1, 0)
	p, err := models.NewPacket([]models.Triangle{{V: [3]*models.Vertex{a, b, c}, Color: red}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Subdivide(p)
	if err != nil {
		t.Fatal(err)
	}
	for i, tri := range out.Triangles() {
		if tri.Color != red {
			t.Errorf("triangle %d color = %v, want %v", i, tri.Color, red)
		}
	}
}

func nonManifold(t *testing.T) *models.Packet {
	t.Helper()
	a := models.NewVertex(0, 0, 0)
	b := models.NewVertex(1, 0, 0)
	c := models.NewVertex(0, 1, 0)
	d := models.NewVertex(0, -1, 0)
	e := models.NewVertex(0, 0, 1)
	p, err := models.NewPacket([]models.Triangle{
		models.NewTriangle(a, b, c),
		models.NewTriangle(b, a, d),
		models.NewTriangle(a, b, e),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNonManifoldDefaultUsesFirstTwo(t *testing.T) {
	var buf bytes.Buffer
	e := Engine{Logger: log.New(&buf)}

	out, err := e.Subdivide(nonManifold(t))
	if err != nil {
		t.Fatalf("Subdivide: %v", err)
	}

	// edge(a,b) is e0 of the first triangle: 3/8·(a + b) + 1/8·(c + d).
	got := out.Triangles()[3].V[0].Position
	want := math3d.Point(3.0/8, 0, 0)
	if !approxVec4(got, want) {
		t.Errorf("edge(a,b) = %v, want %v", got, want)
	}
	if !strings.Contains(buf.String(), "non-manifold") {
		t.Errorf("expected a non-manifold warning, log was %q", buf.String())
	}
}

func TestNonManifoldStrict(t *testing.T) {
	e := Engine{Strict: true}
	_, err := e.Subdivide(nonManifold(t))
	if !errors.Is(err, ErrNonManifoldEdge) {
		t.Errorf("err = %v, want ErrNonManifoldEdge", err)
	}
}

func TestStrictAcceptsManifold(t *testing.T) {
	p, _ := tetrahedron(t)
	e := Engine{Strict: true}
	if _, err := e.Subdivide(p); err != nil {
		t.Errorf("strict engine rejected a closed manifold: %v", err)
	}
}

// scanOpposites is the direct definition: corners of every triangle holding
// both endpoints, in triangle order.
func scanOpposites(tris []models.Triangle, a, b *models.Vertex) []*models.Vertex {
	var opp []*models.Vertex
	for _, t := range tris {
		if !contains(t, a) || !contains(t, b) {
			continue
		}
		for _, v := range t.V {
			if v != a && v != b {
				opp = append(opp, v)
			}
		}
	}
	return opp
}

func TestOppositesMatchTriangleScan(t *testing.T) {
	a := models.NewVertex(0, 0, 0)
	b := models.NewVertex(1, 0, 0)
	c := models.NewVertex(0, 1, 0)
	repeated, err := models.NewPacket([]models.Triangle{
		models.NewTriangle(a, a, b),
		models.NewTriangle(a, b, c),
		models.NewTriangle(c, b, a),
	})
	if err != nil {
		t.Fatal(err)
	}
	level2, err := SubdivideN(context.Background(), octahedron(t), 2)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    *models.Packet
	}{
		{"octahedron level 2", level2},
		{"non-manifold", nonManifold(t)},
		{"repeated vertex", repeated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var e Engine
			tris := tc.p.Triangles()
			opp, err := e.opposites(tc.p, tris)
			if err != nil {
				t.Fatal(err)
			}
			for _, tri := range tris {
				for i := range 3 {
					x, y := tri.V[i], tri.V[(i+1)%3]
					if x == y {
						continue
					}
					k, _ := e.key(tc.p, x, y)
					want := scanOpposites(tris, x, y)
					if !slices.Equal(opp[k], want) {
						t.Fatalf("edge %d-%d: opposites %v, want %v", k.lo, k.hi, opp[k], want)
					}
				}
			}
		})
	}
}

func TestSubdivideNil(t *testing.T) {
	if _, err := Subdivide(nil); !errors.Is(err, models.ErrMalformedGeometry) {
		t.Errorf("err = %v, want ErrMalformedGeometry", err)
	}
}

func TestSubdivideNLevels(t *testing.T) {
	p, _ := tetrahedron(t)

	same, err := SubdivideN(context.Background(), p, 0)
	if err != nil || same != p {
		t.Errorf("zero levels should return the input packet, got %p, %v", same, err)
	}

	if _, err := SubdivideN(context.Background(), p, -1); err == nil {
		t.Error("expected error for negative levels")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := SubdivideN(ctx, p, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSubdivideEmpty(t *testing.T) {
	p, err := models.NewPacket(nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Subdivide(p)
	if err != nil {
		t.Fatal(err)
	}
	if out.TriangleCount() != 0 {
		t.Errorf("TriangleCount = %d, want 0", out.TriangleCount())
	}
}

func BenchmarkSubdivide(b *testing.B) {
	for _, levels := range []int{2, 4, 5} {
		b.Run(fmt.Sprintf("from-level=%d", levels), func(b *testing.B) {
			p, err := SubdivideN(b.Context(), models.Octahedron(), levels)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportMetric(float64(p.TriangleCount()), "input-tris")
			for b.Loop() {
				if _, err := Subdivide(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
