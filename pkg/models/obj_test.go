package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/painter/pkg/math3d"
)

const cubeOBJ = `# unit cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 2 3 7 6
f 3 4 8 7
f 4 1 5 8
`

func TestParseOBJCube(t *testing.T) {
	p, err := ParseOBJ(strings.NewReader(cubeOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if p.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", p.TriangleCount())
	}
	if p.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8 shared vertices", p.VertexCount())
	}
	for i, tri := range p.Triangles() {
		if tri.Color != DefaultColor {
			t.Errorf("triangle %d color = %v, want default", i, tri.Color)
		}
	}
}

func TestParseOBJFanTriangulation(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v -1 1 0
f 1 2 3 4 5
`
	p, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	tris := p.Triangles()
	if len(tris) != 3 {
		t.Fatalf("got %d triangles, want 3", len(tris))
	}
	first := tris[0].V[0]
	for i, tri := range tris {
		if tri.V[0] != first {
			t.Errorf("triangle %d does not fan from the first corner", i)
		}
	}
	if tris[2].V[2].Position.X != -1 {
		t.Errorf("last fan triangle should end at vertex 5, got %v", tris[2].V[2].Position)
	}
}

func TestParseOBJIndexForms(t *testing.T) {
	tests := []struct {
		name string
		face string
	}{
		{"plain", "f 1 2 3"},
		{"texture", "f 1/1 2/2 3/3"},
		{"normal only", "f 1//1 2//2 3//3"},
		{"full", "f 1/1/1 2/2/2 3/3/3"},
		{"negative", "f -3 -2 -1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := "v 0 0 0\nv 1 0 0\nv 0 1 0\n" + tc.face + "\n"
			p, err := ParseOBJ(strings.NewReader(src))
			if err != nil {
				t.Fatalf("ParseOBJ: %v", err)
			}
			tri := p.Triangles()[0]
			if tri.V[0].Position.X != 0 || tri.V[1].Position.X != 1 || tri.V[2].Position.Y != 1 {
				t.Errorf("corners resolved to %v %v %v", tri.V[0].Position, tri.V[1].Position, tri.V[2].Position)
			}
		})
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"index past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"negative past start", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 1 2\n"},
		{"forward reference", "v 0 0 0\nf 1 2 3\nv 1 0 0\nv 0 1 0\n"},
		{"bad number", "v 0 zero 0\n"},
		{"short vertex", "v 0 0\n"},
		{"two corner face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"garbage index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a b c\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tc.src))
			if !errors.Is(err, ErrInvalidOBJ) {
				t.Errorf("err = %v, want ErrInvalidOBJ", err)
			}
		})
	}
}

func TestParseOBJIgnoresOtherRecords(t *testing.T) {
	src := `mtllib cube.mtl
o thing
vn 0 0 1
vt 0 0
v 0 0 0
v 1 0 0
v 0 1 0
usemtl grey
s off
f 1 2 3
`
	p, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if p.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", p.TriangleCount())
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	if err := os.WriteFile(path, []byte(cubeOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadOBJ(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if p.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", p.TriangleCount())
	}
}

func TestLoadOBJURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cube.obj" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, cubeOBJ)
	}))
	defer srv.Close()

	p, err := LoadOBJ(context.Background(), srv.URL+"/cube.obj")
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if p.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", p.TriangleCount())
	}

	if _, err := LoadOBJ(context.Background(), srv.URL+"/missing.obj"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestLoadOBJCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadOBJ(ctx, "whatever.obj"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadOBJMissingFile(t *testing.T) {
	if _, err := LoadOBJ(context.Background(), "/nonexistent/model.obj"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load(context.Background(), "model.stl"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	src := Octahedron()

	var buf strings.Builder
	if err := WriteOBJ(&buf, src); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "v 1 0 0\n") {
		t.Errorf("first record = %q, want the first vertex", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	got, err := ParseOBJ(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if got.TriangleCount() != src.TriangleCount() || got.VertexCount() != src.VertexCount() {
		t.Fatalf("round trip counts = %d/%d, want %d/%d",
			got.TriangleCount(), got.VertexCount(), src.TriangleCount(), src.VertexCount())
	}
	want := src.Triangles()
	for i, tri := range got.Triangles() {
		for j := range 3 {
			if tri.V[j].Position != want[i].V[j].Position {
				t.Errorf("triangle %d corner %d = %v, want %v", i, j, tri.V[j].Position, want[i].V[j].Position)
			}
		}
	}
}

func TestWriteOBJDividesW(t *testing.T) {
	v := &Vertex{Position: math3d.V4(2, 4, 6, 2)}
	p, err := NewPacket([]Triangle{NewTriangle(v, NewVertex(0, 0, 0), NewVertex(1, 0, 0))})
	if err != nil {
		t.Fatal(err)
	}
	var buf strings.Builder
	if err := WriteOBJ(&buf, p); err != nil {
		t.Fatal(err)
	}
	if line := strings.SplitN(buf.String(), "\n", 2)[0]; line != "v 1 2 3" {
		t.Errorf("first record = %q, want %q", line, "v 1 2 3")
	}
}

func TestLoadBuiltin(t *testing.T) {
	p, err := Load(context.Background(), "builtin:tetrahedron")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.TriangleCount() != 4 {
		t.Errorf("TriangleCount = %d, want 4", p.TriangleCount())
	}
}
