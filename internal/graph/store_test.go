package graph

import (
	"reflect"
	"testing"
)

func scenarioBatch() *Batch {
	return &Batch{
		Nodes: []Node{
			{ID: "n1", Type: "Account", Label: "Acme", DecayedRelevance: 80},
			{ID: "n2", Type: "Contact", Label: "Jane", DecayedRelevance: 40},
		},
		Links: []Link{
			{ID: "l1", FromID: "n1", ToID: "n2", Relationship: "Owns"},
		},
	}
}

// snapshot flattens store contents for comparison.
func snapshot(s *Store) (nodes []Node, links []Link, version int) {
	for _, n := range s.Nodes() {
		nodes = append(nodes, *n)
	}
	for _, l := range s.Links() {
		c := *l
		c.Source, c.Target = nil, nil
		links = append(links, c)
	}
	return nodes, links, s.Version()
}

func TestMerge_Scenario(t *testing.T) {
	s := NewStore()
	res := s.Merge(scenarioBatch())

	if len(res.AddedNodes) != 2 || len(res.AddedLinks) != 1 {
		t.Fatalf("added %d nodes, %d links; want 2, 1", len(res.AddedNodes), len(res.AddedLinks))
	}
	nodes, links := s.Len()
	if nodes != 2 || links != 1 {
		t.Fatalf("store has %d nodes, %d links; want 2, 1", nodes, links)
	}

	l, ok := s.Link("l1")
	if !ok {
		t.Fatal("link l1 not indexed")
	}
	if l.DecayedRelevance != 60 {
		t.Errorf("link relevance = %v, want 60", l.DecayedRelevance)
	}
	n1, _ := s.Node("n1")
	n2, _ := s.Node("n2")
	if l.Source != n1 || l.Target != n2 {
		t.Error("link endpoints do not reference stored nodes")
	}
	if s.Version() != 1 {
		t.Errorf("Version() = %d, want 1", s.Version())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	s := NewStore()
	s.Merge(scenarioBatch())
	wantNodes, wantLinks, wantVersion := snapshot(s)

	res := s.Merge(scenarioBatch())
	if res.Changed() {
		t.Errorf("second merge reported changes: %+v", res)
	}

	gotNodes, gotLinks, gotVersion := snapshot(s)
	if !reflect.DeepEqual(gotNodes, wantNodes) {
		t.Errorf("nodes changed after re-merge:\n got %+v\nwant %+v", gotNodes, wantNodes)
	}
	if !reflect.DeepEqual(gotLinks, wantLinks) {
		t.Errorf("links changed after re-merge:\n got %+v\nwant %+v", gotLinks, wantLinks)
	}
	if gotVersion != wantVersion {
		t.Errorf("version = %d after no-op merge, want %d", gotVersion, wantVersion)
	}
}

func TestMerge_DanglingLinks(t *testing.T) {
	tests := []struct {
		name       string
		link       Link
		wantReason string
	}{
		{
			name:       "unknown target",
			link:       Link{ID: "l2", FromID: "n1", ToID: "n3", Relationship: "Owns"},
			wantReason: ReasonMissingTarget,
		},
		{
			name:       "unknown source",
			link:       Link{ID: "l2", FromID: "n9", ToID: "n1", Relationship: "Owns"},
			wantReason: ReasonMissingSource,
		},
		{
			name:       "both unknown",
			link:       Link{ID: "l2", FromID: "n8", ToID: "n9", Relationship: "Owns"},
			wantReason: ReasonMissingBoth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Merge(scenarioBatch())

			res := s.Merge(&Batch{Links: []Link{tt.link}})

			if _, links := s.Len(); links != 1 {
				t.Errorf("link count = %d, want 1", links)
			}
			if len(res.Dropped) != 1 {
				t.Fatalf("got %d dropped links, want 1", len(res.Dropped))
			}
			if res.Dropped[0].Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", res.Dropped[0].Reason, tt.wantReason)
			}
			if _, ok := s.Link("l2"); ok {
				t.Error("dangling link was indexed")
			}
		})
	}
}

func TestMerge_DroppedLinkNotRetried(t *testing.T) {
	s := NewStore()
	s.Merge(&Batch{
		Nodes: []Node{{ID: "n1", DecayedRelevance: 10}},
		Links: []Link{{ID: "l1", FromID: "n1", ToID: "n2"}},
	})

	// The missing node arrives later without the link
	s.Merge(&Batch{Nodes: []Node{{ID: "n2", DecayedRelevance: 30}}})
	if _, ok := s.Link("l1"); ok {
		t.Fatal("dropped link was added without being resent")
	}

	// Resending the link now succeeds
	res := s.Merge(&Batch{Links: []Link{{ID: "l1", FromID: "n1", ToID: "n2"}}})
	if len(res.AddedLinks) != 1 {
		t.Fatalf("resent link not added")
	}
	if res.AddedLinks[0].DecayedRelevance != 20 {
		t.Errorf("relevance = %v, want 20", res.AddedLinks[0].DecayedRelevance)
	}
}

func TestMerge_LinkToNodeInSameBatch(t *testing.T) {
	s := NewStore()
	// Link listed before its nodes are declared in the batch
	b := &Batch{
		Links: []Link{{ID: "l1", FromID: "a", ToID: "b"}},
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
	}
	res := s.Merge(b)
	if len(res.AddedLinks) != 1 || len(res.Dropped) != 0 {
		t.Errorf("added %d links, dropped %d; want 1, 0", len(res.AddedLinks), len(res.Dropped))
	}
}

func TestMerge_FirstSeenFieldsWin(t *testing.T) {
	s := NewStore()
	s.Merge(&Batch{Nodes: []Node{{ID: "n1", Label: "first", DecayedRelevance: 10}}})
	s.Merge(&Batch{Nodes: []Node{{ID: "n1", Label: "second", DecayedRelevance: 90}}})

	n, _ := s.Node("n1")
	if n.Label != "first" {
		t.Errorf("Label = %q, want %q", n.Label, "first")
	}
	if n.DecayedRelevance != 10 {
		t.Errorf("DecayedRelevance = %v, want 10", n.DecayedRelevance)
	}

	// Duplicates inside a single batch behave the same way
	s2 := NewStore()
	s2.Merge(&Batch{Nodes: []Node{{ID: "x", Label: "one"}, {ID: "x", Label: "two"}}})
	if nodes, _ := s2.Len(); nodes != 1 {
		t.Errorf("duplicate ids in one batch produced %d nodes", nodes)
	}
	if n, _ := s2.Node("x"); n.Label != "one" {
		t.Errorf("Label = %q, want %q", n.Label, "one")
	}
}

func TestMerge_SuppliedLinkRelevanceIgnored(t *testing.T) {
	s := NewStore()
	b := scenarioBatch()
	b.Links[0].DecayedRelevance = 5
	s.Merge(b)

	l, _ := s.Link("l1")
	if l.DecayedRelevance != 60 {
		t.Errorf("relevance = %v, want derived 60", l.DecayedRelevance)
	}
}

func TestMerge_RelevanceIsExactMean(t *testing.T) {
	s := NewStore()
	s.Merge(&Batch{
		Nodes: []Node{{ID: "a", DecayedRelevance: 33.3}, {ID: "b", DecayedRelevance: 71.9}},
		Links: []Link{{ID: "ab", FromID: "a", ToID: "b"}},
	})
	l, _ := s.Link("ab")
	if want := (33.3 + 71.9) / 2; l.DecayedRelevance != want {
		t.Errorf("relevance = %v, want %v", l.DecayedRelevance, want)
	}
}

func TestMerge_PreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Merge(&Batch{Nodes: []Node{{ID: "c"}, {ID: "a"}}})
	s.Merge(&Batch{Nodes: []Node{{ID: "b"}, {ID: "a"}}})

	var got []string
	for _, n := range s.Nodes() {
		got = append(got, n.ID)
	}
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMerge_NilBatch(t *testing.T) {
	s := NewStore()
	if res := s.Merge(nil); res.Changed() {
		t.Error("nil batch reported changes")
	}
}

func TestStats(t *testing.T) {
	s := NewStore()
	s.Merge(scenarioBatch())

	st := s.Stats()
	if st.Nodes != 2 || st.Links != 1 {
		t.Errorf("Stats counts = %d/%d, want 2/1", st.Nodes, st.Links)
	}
	if st.NodeTypes["Account"] != 1 || st.NodeTypes["Contact"] != 1 {
		t.Errorf("NodeTypes = %v", st.NodeTypes)
	}
	if st.LinkTypes["Owns"] != 1 {
		t.Errorf("LinkTypes = %v", st.LinkTypes)
	}
}
