// Package svg implements a retained scene.Canvas that serializes to a
// standalone SVG document.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sync"

	"github.com/matsen/bizgraph/internal/scene"
)

type attr struct {
	name, value string
}

type element struct {
	id      string
	attrs   []attr
	text    string
	tooltip string
	href    string
	target  string
}

func (e *element) set(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].name == name {
			e.attrs[i].value = value
			return
		}
	}
	e.attrs = append(e.attrs, attr{name, value})
}

func (e *element) get(name string) string {
	for _, a := range e.attrs {
		if a.name == name {
			return a.value
		}
	}
	return ""
}

type collection struct {
	elems []*element
	index map[string]*element
}

// Document is an in-memory SVG drawing. Shapes are kept per collection in
// creation order. Calls on an unknown class or id are ignored. Only patterns
// carry an XML id; other shapes record their data id in data-id.
type Document struct {
	mu          sync.Mutex
	width       float64
	height      float64
	collections map[string]*collection
}

var _ scene.Canvas = (*Document)(nil)

// New returns an empty document of the given size.
func New(width, height float64) *Document {
	d := &Document{
		width:       width,
		height:      height,
		collections: make(map[string]*collection, len(scene.Classes)),
	}
	for _, class := range scene.Classes {
		d.collections[class] = &collection{index: make(map[string]*element)}
	}
	return d
}

// Size implements scene.Canvas and layout.Sizer.
func (d *Document) Size() (float64, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// Resize changes the document bounds. Existing shapes are kept.
func (d *Document) Resize(width, height float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
}

// Clear removes every shape in class.
func (d *Document) Clear(class string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.collections[class]; ok {
		c.elems = nil
		c.index = make(map[string]*element)
	}
}

// Create appends one shape per id to class. Ids already present are skipped.
func (d *Document) Create(class string, ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[class]
	if !ok {
		return
	}
	for _, id := range ids {
		if _, dup := c.index[id]; dup {
			continue
		}
		e := &element{id: id}
		c.elems = append(c.elems, e)
		c.index[id] = e
	}
}

func (d *Document) element(class, id string) *element {
	c, ok := d.collections[class]
	if !ok {
		return nil
	}
	return c.index[id]
}

// SetAttr sets a presentation attribute on a shape.
func (d *Document) SetAttr(class, id, name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e := d.element(class, id); e != nil {
		e.set(name, value)
	}
}

// SetText sets the text content of a shape.
func (d *Document) SetText(class, id, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e := d.element(class, id); e != nil {
		e.text = text
	}
}

// SetTooltip sets the hover text of a shape.
func (d *Document) SetTooltip(class, id, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e := d.element(class, id); e != nil {
		e.tooltip = text
	}
}

// SetLink makes a shape a hyperlink.
func (d *Document) SetLink(class, id, href, target string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e := d.element(class, id); e != nil {
		e.href, e.target = href, target
	}
}

// Len returns the number of shapes in class.
func (d *Document) Len(class string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.collections[class]; ok {
		return len(c.elems)
	}
	return 0
}

// Attr returns an attribute of a shape, or "" when unset.
func (d *Document) Attr(class, id, name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e := d.element(class, id); e != nil {
		return e.get(name)
	}
	return ""
}

// WriteTo serializes the document as SVG.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	var buf bytes.Buffer
	d.encode(&buf)
	d.mu.Unlock()

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("writing svg: %w", err)
	}
	return int64(n), nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	d.WriteTo(&buf) //nolint:errcheck // bytes.Buffer writes do not fail
	return buf.Bytes()
}

// Render draws s onto a new document sized to the scene.
func Render(s *scene.Scene) *Document {
	d := New(s.Width, s.Height)
	scene.Apply(d, nil, s)
	return d
}

func (d *Document) encode(b *bytes.Buffer) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s">`,
		scene.FormatNumber(d.width), scene.FormatNumber(d.height))
	b.WriteByte('\n')

	if pats := d.collections[scene.ClassPattern].elems; len(pats) > 0 {
		b.WriteString("<defs>\n")
		for _, e := range pats {
			w, h := e.get("width"), e.get("height")
			b.WriteString(`<pattern id="`)
			escape(b, e.id)
			b.WriteString(`" x="0" y="0" patternUnits="objectBoundingBox" width="`)
			escape(b, w)
			b.WriteString(`" height="`)
			escape(b, h)
			b.WriteString(`"><image x="0" y="0" width="`)
			escape(b, w)
			b.WriteString(`" height="`)
			escape(b, h)
			b.WriteString(`" xlink:href="`)
			escape(b, e.href)
			b.WriteString(`"/></pattern>` + "\n")
		}
		b.WriteString("</defs>\n")
	}

	for _, e := range d.collections[scene.ClassLink].elems {
		b.WriteString(`<path class="link" fill="none"`)
		writeAttrs(b, e)
		b.WriteString(">")
		writeTitle(b, e.tooltip)
		b.WriteString("</path>\n")
	}

	for _, e := range d.collections[scene.ClassNode].elems {
		b.WriteString(`<circle class="node"`)
		writeAttrs(b, e)
		b.WriteString(">")
		writeTitle(b, e.tooltip)
		b.WriteString("</circle>\n")
	}

	for _, e := range d.collections[scene.ClassLabel].elems {
		openLink(b, e)
		b.WriteString(`<text class="label"`)
		writeAttrs(b, e)
		b.WriteString(">")
		escape(b, e.text)
		b.WriteString("</text>")
		closeLink(b, e)
		b.WriteByte('\n')
	}

	swatches := d.collections[scene.ClassLegendSwatch]
	texts := d.collections[scene.ClassLegendText]
	fs := d.collections[scene.ClassFullScreen]
	if len(swatches.elems)+len(texts.elems)+len(fs.elems) > 0 {
		b.WriteString(`<g class="legend">` + "\n")
		for _, e := range swatches.elems {
			b.WriteString(`<rect class="legend-swatch"`)
			writeAttrs(b, e)
			b.WriteString("/>\n")
		}
		for _, e := range texts.elems {
			b.WriteString(`<text class="legend-text"`)
			writeAttrs(b, e)
			b.WriteString(">")
			escape(b, e.text)
			b.WriteString("</text>\n")
		}
		for _, e := range fs.elems {
			openLink(b, e)
			b.WriteString(`<text class="full-screen"`)
			writeAttrs(b, e)
			b.WriteString(">")
			escape(b, e.text)
			b.WriteString("</text>")
			closeLink(b, e)
			b.WriteByte('\n')
		}
		b.WriteString("</g>\n")
	}

	b.WriteString("</svg>\n")
}

func writeAttrs(b *bytes.Buffer, e *element) {
	if e.id != "" {
		b.WriteString(` data-id="`)
		escape(b, e.id)
		b.WriteByte('"')
	}
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString(`="`)
		escape(b, a.value)
		b.WriteByte('"')
	}
}

func writeTitle(b *bytes.Buffer, text string) {
	if text == "" {
		return
	}
	b.WriteString("<title>")
	escape(b, text)
	b.WriteString("</title>")
}

func openLink(b *bytes.Buffer, e *element) {
	if e.href == "" {
		return
	}
	b.WriteString(`<a xlink:href="`)
	escape(b, e.href)
	b.WriteByte('"')
	if e.target != "" {
		b.WriteString(` target="`)
		escape(b, e.target)
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func closeLink(b *bytes.Buffer, e *element) {
	if e.href != "" {
		b.WriteString("</a>")
	}
}

func escape(b *bytes.Buffer, s string) {
	xml.EscapeText(b, []byte(s)) //nolint:errcheck // bytes.Buffer writes do not fail
}
