// Package ebitensurface adapts an ebiten image to render.Surface so the
// pipeline can paint into a desktop window.
package ebitensurface

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/taigrr/painter/pkg/math3d"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// Surface paints onto an ebiten image. Set the target each frame from
// Game.Draw before rendering.
type Surface struct {
	target *ebiten.Image

	vs []ebiten.Vertex
	is []uint16
}

// New creates a surface drawing onto target. target may be nil until the
// first SetTarget.
func New(target *ebiten.Image) *Surface {
	return &Surface{target: target}
}

// SetTarget changes the image drawn onto.
func (s *Surface) SetTarget(target *ebiten.Image) {
	s.target = target
}

// Size implements render.Surface.
func (s *Surface) Size() (int, int) {
	if s.target == nil {
		return 0, 0
	}
	b := s.target.Bounds()
	return b.Dx(), b.Dy()
}

// Clear implements render.Surface.
func (s *Surface) Clear(c color.RGBA) {
	s.target.Fill(c)
}

// FillPolygon implements render.Surface. The polygon is fanned from its
// first point, which is exact for the convex polygons the pipeline draws.
func (s *Surface) FillPolygon(pts []math3d.Vec2, c color.RGBA) {
	if len(pts) < 3 {
		return
	}

	s.vs = s.vs[:0]
	for _, p := range pts {
		s.vs = append(s.vs, ebiten.Vertex{
			DstX: float32(p.X),
			DstY: float32(p.Y),
			SrcX: 1,
			SrcY: 1,
		})
	}
	s.is = fanIndices(s.is[:0], len(pts))
	s.draw(c)
}

// StrokePolygon implements render.Surface.
func (s *Surface) StrokePolygon(pts []math3d.Vec2, width float64, c color.RGBA) {
	if len(pts) < 2 || width <= 0 {
		return
	}

	var path vector.Path
	path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	op := &vector.StrokeOptions{Width: float32(width)}
	s.vs, s.is = path.AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], op)
	for i := range s.vs {
		s.vs[i].SrcX = 1
		s.vs[i].SrcY = 1
	}
	s.draw(c)
}

func (s *Surface) draw(c color.RGBA) {
	r, g, b, a := colorScale(c)
	for i := range s.vs {
		s.vs[i].ColorR = r
		s.vs[i].ColorG = g
		s.vs[i].ColorB = b
		s.vs[i].ColorA = a
	}
	s.target.DrawTriangles(s.vs, s.is, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// fanIndices appends triangle-fan indices for an n-gon to dst.
func fanIndices(dst []uint16, n int) []uint16 {
	for i := 2; i < n; i++ {
		dst = append(dst, 0, uint16(i-1), uint16(i))
	}
	return dst
}

// colorScale converts c to the 0..1 vertex color components ebiten expects.
func colorScale(c color.RGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}
