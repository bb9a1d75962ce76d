package scene

import (
	"testing"

	"github.com/matsen/bizgraph/internal/graph"
	"github.com/matsen/bizgraph/internal/palette"
)

type call struct {
	op, class, id, name, value string
}

type recordingCanvas struct {
	w, h  float64
	calls []call
}

func (r *recordingCanvas) Size() (float64, float64) { return r.w, r.h }
func (r *recordingCanvas) Clear(class string) {
	r.calls = append(r.calls, call{op: "clear", class: class})
}
func (r *recordingCanvas) Create(class string, ids []string) {
	for _, id := range ids {
		r.calls = append(r.calls, call{op: "create", class: class, id: id})
	}
}
func (r *recordingCanvas) SetAttr(class, id, name, value string) {
	r.calls = append(r.calls, call{op: "attr", class: class, id: id, name: name, value: value})
}
func (r *recordingCanvas) SetText(class, id, text string) {
	r.calls = append(r.calls, call{op: "text", class: class, id: id, value: text})
}
func (r *recordingCanvas) SetTooltip(class, id, text string) {
	r.calls = append(r.calls, call{op: "tooltip", class: class, id: id, value: text})
}
func (r *recordingCanvas) SetLink(class, id, href, target string) {
	r.calls = append(r.calls, call{op: "link", class: class, id: id, name: target, value: href})
}

func (r *recordingCanvas) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (r *recordingCanvas) find(op, class, id, name string) (call, bool) {
	for _, c := range r.calls {
		if c.op == op && c.class == class && c.id == id && c.name == name {
			return c, true
		}
	}
	return call{}, false
}

func TestApply_FullRebuild(t *testing.T) {
	store := scenarioStore()
	b := newTestBinder(palette.NewAssigner())
	s := b.Render(store)

	c := &recordingCanvas{w: 800, h: 600}
	Apply(c, nil, s)

	if got := c.count("clear"); got != len(Classes) {
		t.Errorf("cleared %d collections, want %d", got, len(Classes))
	}
	// 1 pattern, 1 link, 2 nodes, 2 labels, 3 swatches, 3 texts, 1 full-screen
	if got := c.count("create"); got != 13 {
		t.Errorf("created %d shapes, want 13", got)
	}
	if fill, ok := c.find("attr", ClassNode, "n2", "fill"); !ok || fill.value != s.Nodes[1].Fill {
		t.Errorf("photo node fill = %+v", fill)
	}
	if l, ok := c.find("link", ClassLabel, "n1", "_blank"); !ok || l.value != "https://crm/n1" {
		t.Errorf("label link = %+v", l)
	}
	if tip, ok := c.find("tooltip", ClassLink, "l1", ""); !ok || tip.value != "Owns" {
		t.Errorf("link tooltip = %+v", tip)
	}
	if fs, ok := c.find("link", ClassFullScreen, "full-screen", "_blank"); !ok || fs.value != "https://crm/full" {
		t.Errorf("full screen link = %+v", fs)
	}
	if txt, ok := c.find("text", ClassLegendText, legendID(2), ""); !ok || txt.value != "Owns" {
		t.Errorf("legend text = %+v", txt)
	}
}

func TestApply_IncrementalMovesOnly(t *testing.T) {
	store := scenarioStore()
	b := newTestBinder(palette.NewAssigner())
	prev := b.Render(store).Clone()

	n1, _ := store.Node("n1")
	n1.X, n1.Y = 50, 60
	next := b.Render(store)

	c := &recordingCanvas{w: 800, h: 600}
	Apply(c, prev, next)

	if c.count("clear") != 0 || c.count("create") != 0 {
		t.Fatal("position change recreated shapes")
	}
	if got, ok := c.find("attr", ClassNode, "n1", "transform"); !ok || got.value != "translate(50,60)" {
		t.Errorf("node transform = %+v", got)
	}
	if _, ok := c.find("attr", ClassNode, "n2", "transform"); ok {
		t.Error("unmoved node was updated")
	}
	if _, ok := c.find("attr", ClassLink, "l1", "d"); !ok {
		t.Error("link path attached to moved node not updated")
	}
	if _, ok := c.find("attr", ClassNode, "n1", "fill"); ok {
		t.Error("styling reapplied on a position-only update")
	}
}

func TestApply_NewGenerationRebuilds(t *testing.T) {
	store := scenarioStore()
	b := newTestBinder(palette.NewAssigner())
	prev := b.Render(store).Clone()

	store.Merge(&graph.Batch{Nodes: []graph.Node{{ID: "n3", Type: "Case"}}})
	next := b.Render(store)

	c := &recordingCanvas{w: 800, h: 600}
	Apply(c, prev, next)
	if c.count("clear") != len(Classes) {
		t.Error("new generation did not rebuild")
	}
	if _, ok := c.find("create", ClassNode, "n3", ""); !ok {
		t.Error("new node not created")
	}
}

func TestApply_NilNext(t *testing.T) {
	c := &recordingCanvas{}
	Apply(c, nil, nil)
	if len(c.calls) != 0 {
		t.Errorf("nil scene produced %d calls", len(c.calls))
	}
}

func TestApply_ResizeMovesFullScreenLink(t *testing.T) {
	store := scenarioStore()
	size := &resizableSize{800, 600}
	b := NewBinder(palette.NewAssigner(), size, Options{FullURL: "https://crm/full"})
	prev := b.Render(store).Clone()

	size.w = 1200
	next := b.Render(store)

	c := &recordingCanvas{w: 1200, h: 600}
	Apply(c, prev, next)
	if c.count("create") != 0 {
		t.Fatal("resize recreated shapes")
	}
	if got, ok := c.find("attr", ClassFullScreen, fullScreenID, "dx"); !ok || got.value != "1140" {
		t.Errorf("full screen dx update = %+v", got)
	}
}
