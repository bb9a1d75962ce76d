package layout

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matsen/bizgraph/internal/graph"
)

func randomBodies(n int, seed uint64) []*body {
	rng := rand.New(rand.NewPCG(seed, seed))
	bodies := make([]*body, n)
	for i := range bodies {
		node := &graph.Node{X: rng.Float64() * 500, Y: rng.Float64() * 500}
		bodies[i] = &body{node: node, px: node.X, py: node.Y}
	}
	return bodies
}

// exactRepulsion is the O(n^2) reference for the quadtree.
func exactRepulsion(bodies []*body, k float64) [][2]float64 {
	out := make([][2]float64, len(bodies))
	for i, b := range bodies {
		px, py := b.px, b.py
		for j, o := range bodies {
			if i == j {
				continue
			}
			dx, dy := o.node.X-b.node.X, o.node.Y-b.node.Y
			dn := dx*dx + dy*dy
			px -= dx * k / dn
			py -= dy * k / dn
		}
		out[i] = [2]float64{px, py}
	}
	return out
}

func TestQuadtree_ExactWhenThetaZero(t *testing.T) {
	bodies := randomBodies(40, 7)
	const k = -30.0
	want := exactRepulsion(bodies, k)

	root := buildQuadtree(bodies)
	root.accumulate(k, rand.New(rand.NewPCG(1, 1)))
	for _, b := range bodies {
		root.repulse(b, 0)
	}

	for i, b := range bodies {
		if math.Abs(b.px-want[i][0]) > 1e-9 || math.Abs(b.py-want[i][1]) > 1e-9 {
			t.Fatalf("body %d: got (%v, %v), want (%v, %v)", i, b.px, b.py, want[i][0], want[i][1])
		}
	}
}

func TestQuadtree_ApproximationIsClose(t *testing.T) {
	bodies := randomBodies(200, 11)
	const k = -30.0
	want := exactRepulsion(bodies, k)

	root := buildQuadtree(bodies)
	root.accumulate(k, rand.New(rand.NewPCG(1, 1)))
	for _, b := range bodies {
		root.repulse(b, DefaultTheta*DefaultTheta)
	}

	var errSum, magSum float64
	for i, b := range bodies {
		ex, ey := want[i][0]-b.node.X, want[i][1]-b.node.Y
		gx, gy := b.px-b.node.X, b.py-b.node.Y
		errSum += math.Hypot(ex-gx, ey-gy)
		magSum += math.Hypot(ex, ey)
	}
	if rel := errSum / magSum; rel > 0.15 {
		t.Errorf("Barnes-Hut relative error %.3f exceeds 0.15", rel)
	}
}

func TestQuadtree_AggregateCharge(t *testing.T) {
	bodies := randomBodies(10, 3)
	root := buildQuadtree(bodies)
	root.accumulate(-2, rand.New(rand.NewPCG(1, 1)))

	if root.charge != -20 {
		t.Errorf("root charge = %v, want -20", root.charge)
	}

	var cx, cy float64
	for _, b := range bodies {
		cx += b.node.X
		cy += b.node.Y
	}
	cx /= 10
	cy /= 10
	if math.Abs(root.cx-cx) > 1e-9 || math.Abs(root.cy-cy) > 1e-9 {
		t.Errorf("root center = (%v, %v), want (%v, %v)", root.cx, root.cy, cx, cy)
	}
}

func TestQuadtree_CoincidentPointsJittered(t *testing.T) {
	a := &body{node: &graph.Node{X: 50, Y: 50}}
	b := &body{node: &graph.Node{X: 50, Y: 50}}
	root := buildQuadtree([]*body{a, b})
	root.accumulate(-1, rand.New(rand.NewPCG(5, 5)))

	if a.node.X == b.node.X && a.node.Y == b.node.Y {
		t.Error("coincident points were not separated")
	}
}

func TestQuadtree_Empty(t *testing.T) {
	if buildQuadtree(nil) != nil {
		t.Error("empty input should produce no tree")
	}
}
