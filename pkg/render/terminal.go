package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalRenderer presents framebuffers on a terminal using half-block cells.
type TerminalRenderer struct {
	term          *uv.Terminal
	width, height int
}

// NewTerminalRenderer creates a renderer for a terminal of width x height cells.
func NewTerminalRenderer(term *uv.Terminal, width, height int) *TerminalRenderer {
	return &TerminalRenderer{term: term, width: width, height: height}
}

// FramebufferSize returns the pixel size that fills the terminal.
func (r *TerminalRenderer) FramebufferSize() (int, int) {
	return r.width, r.height * 2
}

// Render draws fb into the terminal's cell buffer.
func (r *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(r.term, uv.Rectangle(image.Rect(0, 0, r.width, r.height)))
}

// Flush writes pending cell changes to the terminal.
func (r *TerminalRenderer) Flush() error {
	return r.term.Display()
}

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell is an upper half block with the top pixel as foreground
// and the bottom pixel as background, so the framebuffer height should be
// 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to color.Color, mapping transparent to nil
// so the terminal default shows through.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
