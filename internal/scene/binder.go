package scene

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/matsen/bizgraph/internal/graph"
	"github.com/matsen/bizgraph/internal/palette"
)

// Sizer reports the drawable bounds of the target surface.
type Sizer interface {
	Size() (width, height float64)
}

// Options configures a Binder.
type Options struct {
	// FullURL is the target of the legend's full-screen link.
	FullURL string
	// Measurer measures label widths; EstimateMeasurer is used when nil.
	Measurer Measurer
}

// Binder keeps a Scene in step with a graph.Store. Render performs a full
// restyle when the store has changed since the last call and otherwise only
// moves existing shapes. A Binder is not safe for concurrent use.
type Binder struct {
	colors   *palette.Assigner
	sizer    Sizer
	fullURL  string
	measurer Measurer

	scene   *Scene
	version int
	styled  bool

	// Data bound at the last restyle, index-aligned with the scene shapes.
	nodes []*graph.Node
	links []*graph.Link
}

// NewBinder returns a Binder that resolves colors through colors.
func NewBinder(colors *palette.Assigner, sizer Sizer, opts Options) *Binder {
	m := opts.Measurer
	if m == nil {
		m = EstimateMeasurer{}
	}
	return &Binder{
		colors:   colors,
		sizer:    sizer,
		fullURL:  SafeHref(opts.FullURL),
		measurer: m,
		scene:    &Scene{},
	}
}

// Render brings the scene up to date with store and the current node
// positions, and returns it. The returned scene is owned by the Binder.
func (b *Binder) Render(store *graph.Store) *Scene {
	if !b.styled || store.Version() != b.version {
		b.Restyle(store)
	}
	b.Reposition()
	return b.scene
}

// Scene returns the current scene.
func (b *Binder) Scene() *Scene {
	return b.scene
}

// Restyle tears down every shape and rebuilds them from the store, then
// rebuilds the legend. New types are assigned colors here.
func (b *Binder) Restyle(store *graph.Store) {
	w, h := b.size()
	b.nodes = store.Nodes()
	b.links = store.Links()
	b.version = store.Version()
	b.styled = true

	s := &Scene{
		Width:      w,
		Height:     h,
		Generation: b.scene.Generation + 1,
		Patterns:   []Pattern{},
		Links:      make([]LinkShape, 0, len(b.links)),
		Nodes:      make([]NodeShape, 0, len(b.nodes)),
		Labels:     make([]Label, 0, len(b.nodes)),
	}

	// Links are styled before nodes, so relationship types claim palette
	// slots first within a batch.
	for _, l := range b.links {
		s.Links = append(s.Links, LinkShape{
			ID:       l.ID,
			SourceID: l.Source.ID,
			TargetID: l.Target.ID,
			Stroke:   palette.Blend(b.colors.LinkColor(l.Relationship), l.DecayedRelevance/100),
			Tooltip:  l.Relationship,
		})
	}

	for _, n := range b.nodes {
		fill := palette.Blend(b.colors.NodeColor(n.Type), n.DecayedRelevance/100)
		if photo := SafeHref(n.PhotoURL); photo != "" {
			id := PatternID(n.ID)
			s.Patterns = append(s.Patterns, Pattern{ID: id, Href: photo, Size: PatternSize})
			fill = "url(#" + id + ") " + fill
		}
		s.Nodes = append(s.Nodes, NodeShape{
			ID:          n.ID,
			R:           NodeRadius,
			Fill:        fill,
			Stroke:      NodeStroke,
			StrokeWidth: NodeStrokeWidth,
			Tooltip:     n.Description,
		})
		s.Labels = append(s.Labels, Label{
			NodeID:  n.ID,
			Text:    n.Label,
			Href:    SafeHref(n.URL),
			Target:  "_blank",
			Width:   b.measurer.Width(n.Label),
			Opacity: n.DecayedRelevance / 100,
		})
	}

	s.Legend = b.buildLegend(w)
	b.scene = s
}

func (b *Binder) buildLegend(w float64) Legend {
	entries := b.colors.Legend()
	legend := Legend{
		Entries: make([]LegendEntry, 0, len(entries)),
		FullScreen: FullScreen{
			Text: FullScreenText,
			Href: b.fullURL,
			DX:   w - FullScreenInset,
			DY:   FullScreenDY,
		},
	}
	for i, e := range entries {
		row := float64(i) * LegendPitch
		le := LegendEntry{
			Kind:   e.Kind,
			Label:  e.Label,
			Color:  e.Color,
			X:      0,
			Y:      row,
			Width:  LegendSwatch,
			Height: LegendSwatch,
			TextX:  LegendTextX,
			TextY:  row + LegendTextDY,
		}
		if e.Kind == palette.KindStroke {
			le.Y = row + LegendBarOffset
			le.Height = LegendBarHeight
		}
		legend.Entries = append(legend.Entries, le)
	}
	return legend
}

// Reposition moves links, nodes and labels to the current node positions
// without recreating them. A change in canvas size is picked up here so
// label placement and the full-screen link follow a resize.
func (b *Binder) Reposition() {
	s := b.scene
	if w, h := b.size(); w != s.Width || h != s.Height {
		s.Width, s.Height = w, h
		s.Legend.FullScreen.DX = w - FullScreenInset
	}
	for i, l := range b.links {
		s.Links[i].D = ArcPath(l.Source.X, l.Source.Y, l.Target.X, l.Target.Y)
	}
	for i, n := range b.nodes {
		s.Nodes[i].CX, s.Nodes[i].CY = n.X, n.Y

		lb := &s.Labels[i]
		lb.X, lb.Y = n.X, n.Y
		lb.DX, lb.DY = placeLabel(n.X, n.Y, lb.Width, s.Width, s.Height)
	}
	s.Frame++
}

func (b *Binder) size() (float64, float64) {
	if b.sizer == nil {
		return 0, 0
	}
	return b.sizer.Size()
}

// SafeHref returns raw, trimmed, if it is an absolute http or https URL and
// "" otherwise. Links from the data source pass through it before reaching
// the page.
func SafeHref(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw
	}
	return ""
}

// PatternID is the id of the image pattern for a node.
func PatternID(nodeID string) string {
	return "photo-" + nodeID
}

// ArcPath returns an SVG path drawing a single circular arc from (sx, sy)
// to (tx, ty) with a radius equal to their distance.
func ArcPath(sx, sy, tx, ty float64) string {
	dx, dy := tx-sx, ty-sy
	dr := math.Sqrt(dx*dx + dy*dy)

	var sb strings.Builder
	sb.WriteString("M")
	sb.WriteString(FormatNumber(sx))
	sb.WriteString(",")
	sb.WriteString(FormatNumber(sy))
	sb.WriteString("A")
	sb.WriteString(FormatNumber(dr))
	sb.WriteString(",")
	sb.WriteString(FormatNumber(dr))
	sb.WriteString(" 0 0,1 ")
	sb.WriteString(FormatNumber(tx))
	sb.WriteString(",")
	sb.WriteString(FormatNumber(ty))
	return sb.String()
}

// FormatNumber renders a coordinate with at most two decimals.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
