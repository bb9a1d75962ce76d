package scene

import (
	"github.com/mattn/go-runewidth"
)

// Measurer reports the rendered width of a label in pixels.
type Measurer interface {
	Width(text string) float64
}

// DefaultGlyphWidth is the average glyph advance assumed by EstimateMeasurer.
const DefaultGlyphWidth = 7.0

// EstimateMeasurer approximates text width from display cells, so wide
// (CJK) characters count double. It is used when no real text measurement
// surface is available.
type EstimateMeasurer struct {
	GlyphWidth float64
}

// Width returns the estimated width of text.
func (m EstimateMeasurer) Width(text string) float64 {
	gw := m.GlyphWidth
	if gw <= 0 {
		gw = DefaultGlyphWidth
	}
	return float64(runewidth.StringWidth(text)) * gw
}

// placeLabel returns label offsets relative to a node so the text does not
// cover it. Nodes left of center get the label on their right, others on
// their left. Nodes in the top half get it below, others above.
func placeLabel(x, y, width, canvasW, canvasH float64) (dx float64, dy string) {
	if x < canvasW/2 {
		dx = LabelGap
	} else {
		dx = -width - LabelGap
	}
	if y < canvasH/2 {
		dy = LabelBelow
	} else {
		dy = LabelAbove
	}
	return dx, dy
}
