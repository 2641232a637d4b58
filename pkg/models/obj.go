package models

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidOBJ is returned for OBJ input that cannot be turned into triangles.
var ErrInvalidOBJ = errors.New("invalid obj")

// maxOBJLine bounds a single OBJ line; large exports put long face lists on one line.
const maxOBJLine = 1 << 20

// ParseOBJ reads Wavefront OBJ geometry. Only "v" and "f" records are used.
// Faces with more than three corners are fan-triangulated from their first
// corner. Face indices may be negative (relative to the end of the vertex
// list) and may carry /vt/vn suffixes, which are ignored.
func ParseOBJ(r io.Reader) (*Packet, error) {
	var (
		verts []*Vertex
		tris  []Triangle
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxOBJLine)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrInvalidOBJ, line)
			}
			var xyz [3]float64
			for i := range 3 {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				xyz[i] = f
			}
			verts = append(verts, NewVertex(xyz[0], xyz[1], xyz[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidOBJ, line)
			}
			face := make([]*Vertex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				v, err := resolveOBJIndex(tok, verts)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				face = append(face, v)
			}
			for i := 1; i+1 < len(face); i++ {
				tris = append(tris, NewTriangle(face[0], face[i], face[i+1]))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	return NewPacket(tris)
}

func resolveOBJIndex(tok string, verts []*Vertex) (*Vertex, error) {
	idxStr, _, _ := strings.Cut(tok, "/")
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return nil, fmt.Errorf("bad index %q", tok)
	}

	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += len(verts)
	default:
		return nil, fmt.Errorf("index 0 is not valid")
	}

	if idx < 0 || idx >= len(verts) {
		return nil, fmt.Errorf("index %s out of range (%d vertices defined)", idxStr, len(verts))
	}
	return verts[idx], nil
}

// LoadOBJ loads an OBJ model from a file path or an http(s) URL.
func LoadOBJ(ctx context.Context, src string) (*Packet, error) {
	rc, err := openSource(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	p, err := ParseOBJ(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return p, nil
}

// Load resolves a model source: a built-in shape name ("builtin:cube"), or
// a path or URL whose extension picks the loader (.obj, .gltf or .glb).
// glTF models must be local files.
func Load(ctx context.Context, src string) (*Packet, error) {
	if IsBuiltin(src) {
		return Builtin(src)
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".obj":
		return LoadOBJ(ctx, src)
	case ".gltf", ".glb":
		if isRemote(src) {
			return nil, fmt.Errorf("load %s: remote glTF is not supported", src)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return LoadGLTF(src)
	default:
		return nil, fmt.Errorf("load %s: unknown model format %q", src, filepath.Ext(src))
	}
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func openSource(ctx context.Context, src string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !isRemote(src) {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open model: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch model %s: %s", src, resp.Status)
	}
	return resp.Body, nil
}

// WriteOBJ writes the packet as OBJ: one "v" record per distinct vertex in
// ID order, then one "f" record per triangle. Homogeneous positions are
// divided by w when w is not 0 or 1. Colors are not written.
func WriteOBJ(w io.Writer, p *Packet) error {
	bw := bufio.NewWriter(w)
	for _, v := range p.Vertices() {
		pos := v.Position
		if pos.W != 0 && pos.W != 1 {
			pos = pos.Scale(1 / pos.W)
		}
		fmt.Fprintf(bw, "v %s %s %s\n", formatOBJFloat(pos.X), formatOBJFloat(pos.Y), formatOBJFloat(pos.Z))
	}
	for _, t := range p.Triangles() {
		var idx [3]VertexID
		for i, v := range t.V {
			idx[i], _ = p.ID(v)
		}
		fmt.Fprintf(bw, "f %d %d %d\n", idx[0]+1, idx[1]+1, idx[2]+1)
	}
	return bw.Flush()
}

func formatOBJFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
