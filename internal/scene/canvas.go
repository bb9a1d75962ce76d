package scene

import (
	"strconv"
)

// Shape collection classes.
const (
	ClassPattern      = "pattern"
	ClassLink         = "link"
	ClassNode         = "node"
	ClassLabel        = "label"
	ClassLegendSwatch = "legend-swatch"
	ClassLegendText   = "legend-text"
	ClassFullScreen   = "full-screen"
)

// Classes lists every collection in drawing order.
var Classes = []string{
	ClassPattern,
	ClassLink,
	ClassNode,
	ClassLabel,
	ClassLegendSwatch,
	ClassLegendText,
	ClassFullScreen,
}

// Canvas is a drawing surface holding named collections of shapes, each
// shape bound to a data id.
type Canvas interface {
	Size() (width, height float64)
	Clear(class string)
	Create(class string, ids []string)
	SetAttr(class, id, name, value string)
	SetText(class, id, text string)
	SetTooltip(class, id, text string)
	SetLink(class, id, href, target string)
}

// Apply updates canvas from prev to next. When prev is nil or the scenes
// belong to different generations every collection is recreated; otherwise
// only attributes whose values differ are set.
func Apply(c Canvas, prev, next *Scene) {
	if next == nil {
		return
	}
	if prev == nil || prev.Generation != next.Generation || !sameShape(prev, next) {
		rebuild(c, next)
		return
	}

	for i, l := range next.Links {
		if prev.Links[i].D != l.D {
			c.SetAttr(ClassLink, l.ID, "d", l.D)
		}
	}
	for i, n := range next.Nodes {
		if prev.Nodes[i].CX != n.CX || prev.Nodes[i].CY != n.CY {
			c.SetAttr(ClassNode, n.ID, "transform", translate(n.CX, n.CY))
		}
	}
	for i, lb := range next.Labels {
		p := prev.Labels[i]
		if p.X != lb.X || p.Y != lb.Y {
			c.SetAttr(ClassLabel, lb.NodeID, "transform", translate(lb.X, lb.Y))
		}
		if p.DX != lb.DX {
			c.SetAttr(ClassLabel, lb.NodeID, "dx", FormatNumber(lb.DX))
		}
		if p.DY != lb.DY {
			c.SetAttr(ClassLabel, lb.NodeID, "dy", lb.DY)
		}
	}
	if fs := next.Legend.FullScreen; prev.Legend.FullScreen.DX != fs.DX {
		c.SetAttr(ClassFullScreen, fullScreenID, "dx", FormatNumber(fs.DX))
	}
}

func sameShape(a, b *Scene) bool {
	return len(a.Links) == len(b.Links) &&
		len(a.Nodes) == len(b.Nodes) &&
		len(a.Labels) == len(b.Labels)
}

func rebuild(c Canvas, s *Scene) {
	for _, class := range Classes {
		c.Clear(class)
	}

	ids := make([]string, len(s.Patterns))
	for i, p := range s.Patterns {
		ids[i] = p.ID
	}
	c.Create(ClassPattern, ids)
	for _, p := range s.Patterns {
		size := FormatNumber(p.Size)
		c.SetAttr(ClassPattern, p.ID, "width", size)
		c.SetAttr(ClassPattern, p.ID, "height", size)
		c.SetLink(ClassPattern, p.ID, p.Href, "")
	}

	ids = make([]string, len(s.Links))
	for i, l := range s.Links {
		ids[i] = l.ID
	}
	c.Create(ClassLink, ids)
	for _, l := range s.Links {
		c.SetAttr(ClassLink, l.ID, "stroke", l.Stroke)
		c.SetAttr(ClassLink, l.ID, "d", l.D)
		c.SetTooltip(ClassLink, l.ID, l.Tooltip)
	}

	ids = make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	c.Create(ClassNode, ids)
	for _, n := range s.Nodes {
		c.SetAttr(ClassNode, n.ID, "r", FormatNumber(n.R))
		c.SetAttr(ClassNode, n.ID, "fill", n.Fill)
		c.SetAttr(ClassNode, n.ID, "stroke", n.Stroke)
		c.SetAttr(ClassNode, n.ID, "stroke-width", FormatNumber(n.StrokeWidth))
		c.SetAttr(ClassNode, n.ID, "transform", translate(n.CX, n.CY))
		c.SetTooltip(ClassNode, n.ID, n.Tooltip)
	}

	ids = make([]string, len(s.Labels))
	for i, lb := range s.Labels {
		ids[i] = lb.NodeID
	}
	c.Create(ClassLabel, ids)
	for _, lb := range s.Labels {
		c.SetText(ClassLabel, lb.NodeID, lb.Text)
		c.SetLink(ClassLabel, lb.NodeID, lb.Href, lb.Target)
		c.SetAttr(ClassLabel, lb.NodeID, "opacity", FormatNumber(lb.Opacity))
		c.SetAttr(ClassLabel, lb.NodeID, "transform", translate(lb.X, lb.Y))
		c.SetAttr(ClassLabel, lb.NodeID, "dx", FormatNumber(lb.DX))
		c.SetAttr(ClassLabel, lb.NodeID, "dy", lb.DY)
	}

	ids = make([]string, len(s.Legend.Entries))
	for i := range s.Legend.Entries {
		ids[i] = legendID(i)
	}
	c.Create(ClassLegendSwatch, ids)
	c.Create(ClassLegendText, ids)
	for i, e := range s.Legend.Entries {
		id := ids[i]
		c.SetAttr(ClassLegendSwatch, id, "x", FormatNumber(e.X))
		c.SetAttr(ClassLegendSwatch, id, "y", FormatNumber(e.Y))
		c.SetAttr(ClassLegendSwatch, id, "width", FormatNumber(e.Width))
		c.SetAttr(ClassLegendSwatch, id, "height", FormatNumber(e.Height))
		c.SetAttr(ClassLegendSwatch, id, "fill", e.Color)
		c.SetAttr(ClassLegendText, id, "x", FormatNumber(e.TextX))
		c.SetAttr(ClassLegendText, id, "y", FormatNumber(e.TextY))
		c.SetText(ClassLegendText, id, e.Label)
	}

	fs := s.Legend.FullScreen
	c.Create(ClassFullScreen, []string{fullScreenID})
	c.SetText(ClassFullScreen, fullScreenID, fs.Text)
	c.SetLink(ClassFullScreen, fullScreenID, fs.Href, "_blank")
	c.SetAttr(ClassFullScreen, fullScreenID, "dx", FormatNumber(fs.DX))
	c.SetAttr(ClassFullScreen, fullScreenID, "dy", FormatNumber(fs.DY))
}

const fullScreenID = "full-screen"

func legendID(i int) string {
	return "legend-" + strconv.Itoa(i)
}

func translate(x, y float64) string {
	return "translate(" + FormatNumber(x) + "," + FormatNumber(y) + ")"
}
