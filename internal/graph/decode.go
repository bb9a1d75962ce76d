package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// wireNode accepts both the canonical field names and the spellings used by
// the original data source (typ, desc, dat.SmallPhotoURL).
type wireNode struct {
	ID               string   `json:"id"`
	Type             *string  `json:"type"`
	Typ              string   `json:"typ"`
	Label            string   `json:"label"`
	URL              string   `json:"url"`
	Description      *string  `json:"description"`
	Desc             string   `json:"desc"`
	DecayedRelevance float64  `json:"decayedRelevance"`
	PhotoURL         *string  `json:"photoUrl"`
	Dat              *wireDat `json:"dat"`
}

type wireDat struct {
	SmallPhotoURL string `json:"SmallPhotoURL"`
}

// UnmarshalJSON decodes a node from either wire spelling. Canonical names
// win when both are present. Positions are never read from the wire.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*n = Node{
		ID:               w.ID,
		Type:             w.Typ,
		Label:            w.Label,
		URL:              w.URL,
		Description:      w.Desc,
		DecayedRelevance: w.DecayedRelevance,
	}
	if w.Type != nil {
		n.Type = *w.Type
	}
	if w.Description != nil {
		n.Description = *w.Description
	}
	if w.Dat != nil {
		n.PhotoURL = w.Dat.SmallPhotoURL
	}
	if w.PhotoURL != nil {
		n.PhotoURL = *w.PhotoURL
	}
	return nil
}

// DecodeBatch parses a JSON batch of the form {"nodes": [...], "links": [...]}.
// Missing arrays decode as empty.
func DecodeBatch(r io.Reader) (*Batch, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	if b.Nodes == nil {
		b.Nodes = []Node{}
	}
	if b.Links == nil {
		b.Links = []Link{}
	}
	return &b, nil
}
