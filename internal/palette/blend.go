package palette

import (
	"github.com/lucasb-eyer/go-colorful"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// Blend interpolates in RGB from white toward color. A factor of 0 yields
// white and 1 yields color; factors outside [0, 1] are clamped. Colors that
// cannot be parsed are returned unchanged.
func Blend(color string, factor float64) string {
	c, err := colorful.Hex(color)
	if err != nil {
		return color
	}
	factor = clamp01(factor)
	return white.BlendRgb(c, factor).Clamped().Hex()
}

// RGB255 returns the 8-bit channels of a hex color, or false if it cannot be
// parsed.
func RGB255(color string) (r, g, b uint8, ok bool) {
	c, err := colorful.Hex(color)
	if err != nil {
		return 0, 0, 0, false
	}
	r, g, b = c.RGB255()
	return r, g, b, true
}

func clamp01(f float64) float64 {
	switch {
	case f != f: // NaN
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
