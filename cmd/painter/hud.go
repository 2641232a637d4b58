package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/painter/pkg/render"
)

// fpsCounter averages frame rate over one-second windows.
type fpsCounter struct {
	fps    float64
	frames int
	since  time.Time
}

func newFPSCounter(now time.Time) *fpsCounter {
	return &fpsCounter{since: now}
}

// tick counts a frame finished at now.
func (c *fpsCounter) tick(now time.Time) {
	c.frames++
	elapsed := now.Sub(c.since)
	if elapsed >= time.Second {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.since = now
	}
}

var (
	hudFg = color.RGBA{0xff, 0xff, 0xff, 0xff}
	hudBg = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// hudLine summarizes the last frame for the terminal overlay.
func hudLine(fps float64, st render.FrameStats, moving bool) string {
	mode := "orbit"
	if moving {
		mode = "move"
	}
	return fmt.Sprintf(" %.0f fps | %d tris | %d drawn | %d culled | %d near | %s ",
		fps, st.Submitted, st.Drawn, st.Culled, st.NearRejected, mode)
}

// drawText writes s on row y starting at column x, clipped to width.
func drawText(scr uv.Screen, x, y, width int, s string) {
	for _, r := range s {
		if x >= width {
			return
		}
		scr.SetCell(x, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: hudFg, Bg: hudBg},
		})
		x++
	}
}
