package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// Shade modulates base by a light color scaled by intensity. Each channel is
// floor(base * light * intensity / 255), clamped to [0, 255]. The result is
// opaque.
func Shade(base, light Color, intensity float64) Color {
	ch := func(b, l uint8) uint8 {
		v := math.Floor(float64(b) * float64(l) * intensity / 255)
		return uint8(math.Max(0, math.Min(255, v)))
	}
	return Color{
		R: ch(base.R, light.R),
		G: ch(base.G, light.G),
		B: ch(base.B, light.B),
		A: 255,
	}
}

// ParseHexColor parses a "#rrggbb" string.
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}

// HexColor formats c as a lowercase "#rrggbb" string. Alpha is dropped.
func HexColor(c Color) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// MultiplyHexColor is Shade over "#rrggbb" strings.
func MultiplyHexColor(base, light string, intensity float64) (string, error) {
	b, err := ParseHexColor(base)
	if err != nil {
		return "", err
	}
	l, err := ParseHexColor(light)
	if err != nil {
		return "", err
	}
	return HexColor(Shade(b, l, intensity)), nil
}
