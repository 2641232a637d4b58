package models

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/painter/pkg/math3d"
)

// LoadGLTF loads every triangle primitive of a .gltf or .glb file into one
// packet. Vertices are shared within a primitive by index. Triangles take
// the base color factor of their primitive's material, or DefaultColor.
// Node transforms are not applied.
func LoadGLTF(path string) (*Packet, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var tris []Triangle
	for _, m := range doc.Meshes {
		got, err := readMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		tris = append(tris, got...)
	}

	return NewPacket(tris)
}

func readMesh(doc *gltf.Document, m *gltf.Mesh) ([]Triangle, error) {
	var tris []Triangle
	for _, prim := range m.Primitives {
		// Lines and points have no faces to paint.
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		verts := make([]*Vertex, len(positions))
		for i, p := range positions {
			verts[i] = NewVertex(p.X, p.Y, p.Z)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		col := materialColor(doc, prim.Material)
		for i := 0; i+2 < len(indices); i += 3 {
			var tri Triangle
			for c := range 3 {
				idx := indices[i+c]
				if idx < 0 || idx >= len(verts) {
					return nil, fmt.Errorf("index %d out of range (%d vertices)", idx, len(verts))
				}
				tri.V[c] = verts[idx]
			}
			tri.Color = col
			tris = append(tris, tri)
		}
	}
	return tris, nil
}

func materialColor(doc *gltf.Document, idx *int) color.RGBA {
	if idx == nil || *idx < 0 || *idx >= len(doc.Materials) {
		return DefaultColor
	}
	pbr := doc.Materials[*idx].PBRMetallicRoughness
	if pbr == nil {
		return DefaultColor
	}
	f := pbr.BaseColorFactorOrDefault()
	return color.RGBA{
		R: unitToByte(float64(f[0])),
		G: unitToByte(float64(f[1])),
		B: unitToByte(float64(f[2])),
		A: 0xff,
	}
}

func unitToByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d does not exist", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v / %v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		off := i * stride
		result[i] = math3d.V3(
			float64(readFloat32(data[off:])),
			float64(readFloat32(data[off+4:])),
			float64(readFloat32(data[off+8:])),
		)
	}
	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d does not exist", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		off := i * stride
		switch size {
		case 1:
			result[i] = int(data[off])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return result, nil
}

// accessorBytes returns the buffer slice starting at the accessor's first
// element and the stride between elements. The slice is checked to hold
// every element.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d does not exist", *accessor.BufferView)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d does not exist", bufferView.Buffer)
	}
	// gltf.Open resolves embedded, data URI and relative file buffers.
	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bufferView.ByteOffset + accessor.ByteOffset
	if start < 0 || start > len(bufData) {
		return nil, 0, fmt.Errorf("accessor starts outside the buffer (%d > %d)", start, len(bufData))
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(bufData) {
			return nil, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(bufData))
		}
	}
	return bufData[start:], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
