// Package palette assigns stable display colors to entity and relationship
// types and records the assignments for the legend.
package palette

import (
	"maps"
	"slices"
)

// Kind distinguishes legend entries for node types from relationship types.
type Kind string

const (
	KindNode   Kind = "node"
	KindStroke Kind = "stroke"
)

// category20 is the 20-color categorical palette used for any type without
// a brand color.
var category20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// brandColors maps the well-known business entity types to fixed colors.
var brandColors = map[string]string{
	"Account":     "#236fbd",
	"Contact":     "#56458c",
	"Opportunity": "#e5c130",
	"User":        "#1797c0",
	"Case":        "#b7a752",
}

// Category20 returns a copy of the categorical palette in assignment order.
func Category20() []string {
	return slices.Clone(category20)
}

// BrandColors returns a copy of the fixed entity type colors.
func BrandColors() map[string]string {
	return maps.Clone(brandColors)
}

// Entry is one legend row.
type Entry struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Assigner hands out colors for node and link types. Assignments are never
// reassigned or removed. An Assigner is not safe for concurrent use.
type Assigner struct {
	nodes     map[string]string
	nodeOrder []string

	strokes     map[string]string
	strokeOrder []string

	// counter is shared by both namespaces.
	counter int
}

// NewAssigner returns an empty Assigner.
func NewAssigner() *Assigner {
	return &Assigner{
		nodes:   make(map[string]string),
		strokes: make(map[string]string),
	}
}

// NodeColor returns the color for a node type, assigning one on first use.
func (a *Assigner) NodeColor(typ string) string {
	if c, ok := a.nodes[typ]; ok {
		return c
	}

	c, ok := brandColors[typ]
	if !ok {
		c = a.next()
	}
	a.nodes[typ] = c
	a.nodeOrder = append(a.nodeOrder, typ)
	return c
}

// LinkColor returns the color for a relationship type, assigning one on
// first use.
func (a *Assigner) LinkColor(typ string) string {
	if c, ok := a.strokes[typ]; ok {
		return c
	}

	c := a.next()
	a.strokes[typ] = c
	a.strokeOrder = append(a.strokeOrder, typ)
	return c
}

func (a *Assigner) next() string {
	c := category20[a.counter%len(category20)]
	a.counter++
	return c
}

// Legend returns node entries followed by stroke entries, each in the order
// the types were first seen.
func (a *Assigner) Legend() []Entry {
	entries := make([]Entry, 0, len(a.nodeOrder)+len(a.strokeOrder))
	for _, typ := range a.nodeOrder {
		entries = append(entries, Entry{Kind: KindNode, Label: typ, Color: a.nodes[typ]})
	}
	for _, typ := range a.strokeOrder {
		entries = append(entries, Entry{Kind: KindStroke, Label: typ, Color: a.strokes[typ]})
	}
	return entries
}

// Len returns the number of assigned labels across both namespaces.
func (a *Assigner) Len() int {
	return len(a.nodeOrder) + len(a.strokeOrder)
}
