// Package render implements painter's flat-shaded, sort-based software
// renderer: scene description, camera, lighting and the pipeline that paints
// triangles back to front onto a Surface.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/vector"

	"github.com/taigrr/painter/pkg/math3d"
)

// Framebuffer is an in-memory RGBA Surface. Polygons are scan converted with
// anti-aliased coverage. It can be saved as PNG or drawn to a terminal.
type Framebuffer struct {
	Width  int
	Height int

	img *image.RGBA
	ras *vector.Rasterizer
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
// For terminal output the height should be 2x the terminal rows, since each
// cell shows two pixels with a half-block.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		ras:    vector.NewRasterizer(width, height),
	}
}

// Resize reallocates the pixel buffer if the dimensions changed.
func (fb *Framebuffer) Resize(width, height int) {
	if width == fb.Width && height == fb.Height {
		return
	}
	fb.Width, fb.Height = width, height
	fb.img = image.NewRGBA(image.Rect(0, 0, width, height))
	fb.ras.Reset(width, height)
}

// Size implements Surface.
func (fb *Framebuffer) Size() (int, int) {
	return fb.Width, fb.Height
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	pix := fb.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.img.SetRGBA(x, y, c)
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.img.RGBAAt(x, y)
}

// FillPolygon implements Surface. Only the polygon's bounding box, clipped
// to the framebuffer, is rasterized.
func (fb *Framebuffer) FillPolygon(pts []math3d.Vec2, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	box := polygonBounds(pts).Intersect(fb.img.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	fb.ras.Reset(box.Dx(), box.Dy())
	fb.ras.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		fb.ras.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	fb.ras.ClosePath()
	fb.ras.Draw(fb.img, box, image.NewUniform(c), image.Point{})
}

// polygonBounds returns the smallest pixel rectangle covering pts.
func polygonBounds(pts []math3d.Vec2) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return image.Rectangle{}
	}
	// Clamp before converting so far-off vertices cannot overflow int.
	const lim = 1 << 30
	clamp := func(v float64) float64 { return math.Max(-lim, math.Min(lim, v)) }
	return image.Rect(
		int(math.Floor(clamp(minX))), int(math.Floor(clamp(minY))),
		int(math.Ceil(clamp(maxX))), int(math.Ceil(clamp(maxY))),
	)
}

// StrokePolygon implements Surface. Each edge is filled as a quad of the
// given width centered on the edge.
func (fb *Framebuffer) StrokePolygon(pts []math3d.Vec2, width float64, c color.RGBA) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	half := width / 2
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		d := q.Sub(p)
		l := d.Len()
		if l == 0 {
			continue
		}
		nx, ny := -d.Y/l*half, d.X/l*half
		fb.FillPolygon([]math3d.Vec2{
			math3d.V2(p.X+nx, p.Y+ny),
			math3d.V2(q.X+nx, q.Y+ny),
			math3d.V2(q.X-nx, q.Y-ny),
			math3d.V2(p.X-nx, p.Y-ny),
		}, c)
	}
}

// ToImage returns the framebuffer's backing image. The image is reused by
// later draws; copy it to keep a snapshot.
func (fb *Framebuffer) ToImage() *image.RGBA {
	return fb.img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, fb.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
