package render

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"github.com/taigrr/painter/pkg/math3d"
	"github.com/taigrr/painter/pkg/models"
)

// ErrNoCamera is returned when rendering a scene that has no camera.
var ErrNoCamera = errors.New("scene has no camera")

// Projection parameters.
const (
	FieldOfView = 60.0 // degrees, vertical
	NearPlane   = 0.1
	FarPlane    = 1000.0
)

const (
	// nearLimit rejects any triangle with a view-space vertex in front of it.
	nearLimit      = -0.1
	minIntensity   = 0.1
	minStrokeWidth = 0.2
	strokeFactor   = 0.1
)

// FrameStats counts what happened to the triangles of the last frame.
type FrameStats struct {
	Submitted    int // Triangles across all meshes
	NearRejected int // Dropped for crossing the near limit
	Culled       int // Dropped as back-facing
	Drawn        int // Painted onto the surface
}

// Pipeline paints scenes onto a Surface with the painter's algorithm:
// triangles are transformed to view space, filtered, sorted far to near and
// drawn in that order. There is no depth buffer.
type Pipeline struct {
	// Background is the color the surface is cleared to each frame. The zero
	// value is transparent.
	Background Color

	surface    Surface
	projection math3d.Mat4
	stats      FrameStats
}

// drawItem is a triangle that survived culling, in view space.
type drawItem struct {
	tri    models.Triangle
	view   [3]math3d.Vec3
	normal math3d.Vec3
	depth  float64
}

// NewPipeline creates a pipeline for s. The projection uses the surface's
// aspect ratio at this point; call Resize after the surface changes size.
func NewPipeline(s Surface) *Pipeline {
	p := &Pipeline{surface: s}
	p.Resize()
	return p
}

// Resize rebuilds the projection matrix from the surface's current size.
func (p *Pipeline) Resize() {
	w, h := p.surface.Size()
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	p.projection = math3d.Perspective(math3d.Radians(FieldOfView), aspect, NearPlane, FarPlane)
}

// Projection returns the projection matrix.
func (p *Pipeline) Projection() math3d.Mat4 {
	return p.projection
}

// Surface returns the surface the pipeline draws on.
func (p *Pipeline) Surface() Surface {
	return p.surface
}

// Stats returns the statistics of the last Render call.
func (p *Pipeline) Stats() FrameStats {
	return p.stats
}

// Render draws one frame of scene. It returns ErrNoCamera, without touching
// the surface, if the scene has no camera.
func (p *Pipeline) Render(scene *Scene) error {
	cam := scene.Camera()
	if cam == nil {
		return ErrNoCamera
	}

	p.stats = FrameStats{}
	p.surface.Clear(p.Background)
	cam.UpdateView()
	view := cam.ViewMatrix()

	var items []drawItem
	for _, m := range scene.Meshes() {
		m.UpdateModel()
		modelView := view.Mul(m.ModelMatrix())

		for _, tri := range m.Triangles() {
			p.stats.Submitted++

			var v [3]math3d.Vec3
			for i, vert := range tri.V {
				v[i] = modelView.MulVec4(vert.Position).Vec3()
			}

			if nearRejected(v) {
				p.stats.NearRejected++
				continue
			}

			n := faceNormal(v)
			if backFacing(n, v[0]) {
				p.stats.Culled++
				continue
			}

			items = append(items, drawItem{
				tri:    tri,
				view:   v,
				normal: n,
				depth:  (v[0].Z + v[1].Z + v[2].Z) / 3,
			})
		}
	}

	sortByDepth(items)

	w, h := p.surface.Size()
	pts := make([]math3d.Vec2, 3)
	for _, it := range items {
		for i, v := range it.view {
			pts[i] = project(p.projection, v, w, h)
		}
		c := lightColor(it.tri.Color, it.view[0], it.normal, scene.Lights())
		p.surface.FillPolygon(pts, c)
		p.surface.StrokePolygon(pts, strokeWidth(pts), c)
		p.stats.Drawn++
	}
	return nil
}

// nearRejected reports whether any vertex lies in front of the near limit.
// Triangles are dropped whole; there is no clipping.
func nearRejected(v [3]math3d.Vec3) bool {
	return v[0].Z > nearLimit || v[1].Z > nearLimit || v[2].Z > nearLimit
}

func faceNormal(v [3]math3d.Vec3) math3d.Vec3 {
	return math3d.Normalize(math3d.Cross(v[1].Sub(v[0]), v[2].Sub(v[0])))
}

// backFacing reports whether a face with normal n at view-space point v0
// points away from the camera at the origin.
func backFacing(n, v0 math3d.Vec3) bool {
	return math3d.Dot(n, math3d.Normalize(v0)) > 0
}

// sortByDepth orders items farthest first (most negative mean z). Ties keep
// submission order.
func sortByDepth(items []drawItem) {
	slices.SortStableFunc(items, func(a, b drawItem) int {
		return cmp.Compare(a.depth, b.depth)
	})
}

// project maps a view-space point to pixel coordinates with y down.
func project(proj math3d.Mat4, v math3d.Vec3, w, h int) math3d.Vec2 {
	ndc := proj.MulVec4(math3d.V4FromV3(v, 1)).PerspectiveDivide()
	return math3d.V2(
		(ndc.X+1)*0.5*float64(w),
		(1-ndc.Y)*0.5*float64(h),
	)
}

// lightColor shades base for a face with normal n whose first view-space
// vertex is v0. Light positions are used as given, without the view
// transform. Each light replaces the previous result rather than adding to
// it, so with several lights only the last one counts.
func lightColor(base Color, v0, n math3d.Vec3, lights []*Light) Color {
	c := base
	for _, l := range lights {
		dir := math3d.Normalize(l.Position.Sub(v0))
		intensity := math.Max(minIntensity, math3d.Dot(dir, n))
		if math.IsNaN(intensity) {
			// degenerate face or light sitting on v0
			intensity = minIntensity
		}
		c = Shade(base, l.Color, intensity)
	}
	return c
}

// strokeWidth scales the outline with the first edge's projected length.
func strokeWidth(pts []math3d.Vec2) float64 {
	return math.Max(minStrokeWidth, strokeFactor*pts[0].Sub(pts[1]).Len())
}
