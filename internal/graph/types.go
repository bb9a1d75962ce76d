// Package graph holds the deduplicated, append-only business entity graph
// and the merge algorithm for incoming batches.
package graph

// Node is a business entity (account, contact, opportunity, ...).
type Node struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Label            string  `json:"label"`
	URL              string  `json:"url"`
	Description      string  `json:"description"`
	DecayedRelevance float64 `json:"decayedRelevance"`
	PhotoURL         string  `json:"photoUrl,omitempty"`

	// Layout-assigned position. Only the layout engine writes these.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Link is a directed relationship between two nodes.
type Link struct {
	ID           string `json:"id"`
	FromID       string `json:"fromId"`
	ToID         string `json:"toId"`
	Relationship string `json:"relationship"`

	// DecayedRelevance is derived at merge time from the endpoints.
	DecayedRelevance float64 `json:"decayedRelevance"`

	// Source and Target reference nodes owned by the Store.
	Source *Node `json:"-"`
	Target *Node `json:"-"`
}

// Batch is one payload of nodes and links from the data source.
type Batch struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Drop reasons for links whose endpoints cannot be resolved.
const (
	ReasonMissingSource = "missing_source"
	ReasonMissingTarget = "missing_target"
	ReasonMissingBoth   = "missing_both"
)

// DroppedLink describes a link rejected during a merge.
type DroppedLink struct {
	ID     string `json:"id"`
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	Reason string `json:"reason"`
}

// MergeResult reports what a merge added.
type MergeResult struct {
	AddedNodes []*Node
	AddedLinks []*Link
	Dropped    []DroppedLink
}

// Changed reports whether the merge added anything.
func (r MergeResult) Changed() bool {
	return len(r.AddedNodes) > 0 || len(r.AddedLinks) > 0
}

// Stats summarizes the contents of a Store.
type Stats struct {
	Nodes     int            `json:"nodes"`
	Links     int            `json:"links"`
	NodeTypes map[string]int `json:"node_types"`
	LinkTypes map[string]int `json:"link_types"`
	Version   int            `json:"version"`
}
