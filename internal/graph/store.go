package graph

// Store is the in-memory graph. Nodes and links keep insertion order and are
// indexed by id; an id is stored at most once. A Store is not safe for
// concurrent use.
type Store struct {
	nodes   []*Node
	links   []*Link
	nodeMap map[string]*Node
	linkMap map[string]*Link
	version int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		nodeMap: make(map[string]*Node),
		linkMap: make(map[string]*Link),
	}
}

// Merge adds the unknown nodes and links of a batch.
//
// All nodes are indexed before any link is resolved, so a link may refer to
// a node introduced in the same batch. Known ids are left untouched. Links
// whose endpoints cannot be resolved are dropped and reported, never
// retried.
func (s *Store) Merge(b *Batch) MergeResult {
	var res MergeResult
	if b == nil {
		return res
	}

	for i := range b.Nodes {
		in := b.Nodes[i]
		if _, ok := s.nodeMap[in.ID]; ok {
			continue
		}
		n := &in
		s.nodes = append(s.nodes, n)
		s.nodeMap[n.ID] = n
		res.AddedNodes = append(res.AddedNodes, n)
	}

	for i := range b.Links {
		in := b.Links[i]
		if _, ok := s.linkMap[in.ID]; ok {
			continue
		}

		source, target := s.nodeMap[in.FromID], s.nodeMap[in.ToID]
		if source == nil || target == nil {
			res.Dropped = append(res.Dropped, DroppedLink{
				ID:     in.ID,
				FromID: in.FromID,
				ToID:   in.ToID,
				Reason: dropReason(source != nil, target != nil),
			})
			continue
		}

		l := &in
		l.Source = source
		l.Target = target
		l.DecayedRelevance = (source.DecayedRelevance + target.DecayedRelevance) / 2
		s.links = append(s.links, l)
		s.linkMap[l.ID] = l
		res.AddedLinks = append(res.AddedLinks, l)
	}

	if res.Changed() {
		s.version++
	}
	return res
}

func dropReason(sourceOK, targetOK bool) string {
	switch {
	case !sourceOK && !targetOK:
		return ReasonMissingBoth
	case !sourceOK:
		return ReasonMissingSource
	default:
		return ReasonMissingTarget
	}
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (s *Store) Nodes() []*Node {
	return s.nodes
}

// Links returns the links in insertion order. The slice must not be modified.
func (s *Store) Links() []*Link {
	return s.links
}

// Node looks up a node by id.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodeMap[id]
	return n, ok
}

// Link looks up a link by id.
func (s *Store) Link(id string) (*Link, bool) {
	l, ok := s.linkMap[id]
	return l, ok
}

// Len returns the number of nodes and links.
func (s *Store) Len() (nodes, links int) {
	return len(s.nodes), len(s.links)
}

// Version increments once per merge that added nodes or links.
func (s *Store) Version() int {
	return s.version
}

// Stats returns counts by type.
func (s *Store) Stats() Stats {
	st := Stats{
		Nodes:     len(s.nodes),
		Links:     len(s.links),
		NodeTypes: make(map[string]int),
		LinkTypes: make(map[string]int),
		Version:   s.version,
	}
	for _, n := range s.nodes {
		st.NodeTypes[n.Type]++
	}
	for _, l := range s.links {
		st.LinkTypes[l.Relationship]++
	}
	return st
}
