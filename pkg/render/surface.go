package render

import "github.com/taigrr/painter/pkg/math3d"

// Surface is a 2D pixel target the pipeline paints onto. Polygon points are
// in pixels with the origin at the top-left corner.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// Clear fills the whole surface with c.
	Clear(c Color)

	// FillPolygon fills the closed polygon through pts.
	FillPolygon(pts []math3d.Vec2, c Color)

	// StrokePolygon draws the closed outline through pts with the given line width.
	StrokePolygon(pts []math3d.Vec2, width float64, c Color)
}
