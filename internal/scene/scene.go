// Package scene turns the graph and its layout into a declarative
// description of shapes and attributes, and applies that description to an
// abstract drawing surface.
package scene

import (
	"slices"

	"github.com/matsen/bizgraph/internal/palette"
)

// Geometry and styling constants.
const (
	NodeRadius      = 22.0
	NodeStroke      = "#FFF"
	NodeStrokeWidth = 3.0
	PatternSize     = 45.0

	LabelGap = 12.0 // horizontal gap between node center and label

	LegendPitch     = 20.0
	LegendSwatch    = 10.0
	LegendBarHeight = 2.0
	LegendBarOffset = 4.0
	LegendTextX     = 14.0
	LegendTextDY    = 9.0
	FullScreenText  = "Full Screen"
	FullScreenInset = 60.0 // distance of the full-screen link from the right edge
	FullScreenDY    = 20.0
)

// Vertical label offsets in em.
const (
	LabelBelow = "0.65em"
	LabelAbove = "0em"
)

// Scene is a complete description of one frame.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Generation changes on every full restyle.
	Generation int `json:"generation"`
	// Frame counts repositions since the scene was created.
	Frame int `json:"frame"`

	Patterns []Pattern   `json:"patterns"`
	Links    []LinkShape `json:"links"`
	Nodes    []NodeShape `json:"nodes"`
	Labels   []Label     `json:"labels"`
	Legend   Legend      `json:"legend"`
}

// Pattern is an image fill for a node with a photo.
type Pattern struct {
	ID   string  `json:"id"`
	Href string  `json:"href"`
	Size float64 `json:"size"`
}

// LinkShape is a curved path between two nodes.
type LinkShape struct {
	ID       string `json:"id"`
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	Stroke   string `json:"stroke"`
	Tooltip  string `json:"tooltip"`
	D        string `json:"d"`
}

// NodeShape is a filled circle.
type NodeShape struct {
	ID          string  `json:"id"`
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Tooltip     string  `json:"tooltip"`
}

// Label is the clickable text next to a node.
type Label struct {
	NodeID  string  `json:"node"`
	Text    string  `json:"text"`
	Href    string  `json:"href"`
	Target  string  `json:"target"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	DX      float64 `json:"dx"`
	DY      string  `json:"dy"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// Legend is the color key plus the full-view link.
type Legend struct {
	Entries    []LegendEntry `json:"entries"`
	FullScreen FullScreen    `json:"full_screen"`
}

// LegendEntry is one swatch and its text.
type LegendEntry struct {
	Kind   palette.Kind `json:"kind"`
	Label  string       `json:"label"`
	Color  string       `json:"color"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	TextX  float64      `json:"text_x"`
	TextY  float64      `json:"text_y"`
}

// FullScreen is the link that opens the full view.
type FullScreen struct {
	Text string  `json:"text"`
	Href string  `json:"href"`
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return nil
	}
	c := *s
	c.Patterns = slices.Clone(s.Patterns)
	c.Links = slices.Clone(s.Links)
	c.Nodes = slices.Clone(s.Nodes)
	c.Labels = slices.Clone(s.Labels)
	c.Legend.Entries = slices.Clone(s.Legend.Entries)
	return &c
}
