package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matsen/bizgraph/internal/graph"
)

// State is the run state of a Simulation.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Sizer reports the current drawable bounds.
type Sizer interface {
	Size() (width, height float64)
}

// Size is a fixed Sizer.
type Size struct {
	Width, Height float64
}

// Size returns the fixed bounds.
func (s Size) Size() (float64, float64) {
	return s.Width, s.Height
}

// Tick is passed to tick callbacks after each simulation step.
type Tick struct {
	Seq   int
	Alpha float64
	Nodes []*graph.Node
}

// body carries the per-node integration state the graph does not own.
type body struct {
	node   *graph.Node
	px, py float64
	weight float64
}

type spring struct {
	source, target *body
	distance       float64
	strength       float64
}

// Simulation is a force-directed layout. It is not safe for concurrent use:
// Seed, Start, Stop and Tick must all be called from one goroutine.
type Simulation struct {
	params Params
	sizer  Sizer
	width  float64
	height float64

	nodes   []*graph.Node
	bodies  []*body
	springs []spring

	// known survives reseeding so laid-out nodes keep their positions.
	known map[*graph.Node]*body

	state     State
	alpha     float64
	seq       int
	callbacks []func(Tick)
	rng       *rand.Rand
}

// New returns an idle Simulation sized by sizer.
func New(params Params, sizer Sizer) *Simulation {
	if params.LinkDistance == nil {
		params.LinkDistance = LinkDistance
	}
	if params.LinkStrength == nil {
		params.LinkStrength = LinkStrength
	}
	s := &Simulation{
		params: params,
		sizer:  sizer,
		known:  make(map[*graph.Node]*body),
		rng:    rand.New(rand.NewPCG(params.RandSeed, params.RandSeed^0x9e3779b97f4a7c15)),
	}
	s.readBounds()
	return s
}

func (s *Simulation) readBounds() {
	if s.sizer != nil {
		s.width, s.height = s.sizer.Size()
	}
}

// Seed replaces the node and link sets and re-reads the bounds. Nodes that
// were laid out before keep their positions; new nodes start at a placed
// neighbour's position, or at a random point inside the bounds. Links whose
// endpoints are not in nodes are ignored. Seed does not change the state.
func (s *Simulation) Seed(nodes []*graph.Node, links []*graph.Link) {
	s.readBounds()

	s.nodes = append(s.nodes[:0:0], nodes...)
	s.bodies = make([]*body, len(nodes))
	index := make(map[*graph.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	neighbors := make([][]int, len(nodes))
	degree := make([]float64, len(nodes))
	type pair struct{ s, t int }
	var ends []pair
	var kept []*graph.Link
	for _, l := range links {
		si, sok := index[l.Source]
		ti, tok := index[l.Target]
		if !sok || !tok {
			continue
		}
		ends = append(ends, pair{si, ti})
		kept = append(kept, l)
		degree[si]++
		degree[ti]++
		neighbors[si] = append(neighbors[si], ti)
		neighbors[ti] = append(neighbors[ti], si)
	}

	for i, n := range nodes {
		b, ok := s.known[n]
		if !ok {
			s.place(n, neighbors[i])
			b = &body{node: n, px: n.X, py: n.Y}
			s.known[n] = b
		}
		b.weight = degree[i]
		s.bodies[i] = b
	}

	s.springs = make([]spring, len(kept))
	for i, l := range kept {
		s.springs[i] = spring{
			source:   s.bodies[ends[i].s],
			target:   s.bodies[ends[i].t],
			distance: s.params.LinkDistance(l),
			strength: s.params.LinkStrength(l),
		}
	}
}

func (s *Simulation) place(n *graph.Node, neighbors []int) {
	for _, j := range neighbors {
		if nb, ok := s.known[s.nodes[j]]; ok {
			n.X, n.Y = nb.node.X, nb.node.Y
			return
		}
	}
	n.X = s.rng.Float64() * s.width
	n.Y = s.rng.Float64() * s.height
}

// Start sets alpha to its initial value and moves to Running.
func (s *Simulation) Start() {
	s.alpha = s.params.InitialAlpha
	s.state = Running
}

// Stop moves to Idle. Positions are kept.
func (s *Simulation) Stop() {
	s.alpha = 0
	s.state = Idle
}

// OnTick registers a callback invoked after every step.
func (s *Simulation) OnTick(fn func(Tick)) {
	s.callbacks = append(s.callbacks, fn)
}

// Resize changes the bounds used until the next Seed.
func (s *Simulation) Resize(width, height float64) {
	s.width, s.height = width, height
}

// Bounds returns the current width and height.
func (s *Simulation) Bounds() (float64, float64) {
	return s.width, s.height
}

// State returns the run state.
func (s *Simulation) State() State {
	return s.state
}

// Alpha returns the current cooling factor.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Energy returns the sum of squared per-tick displacements, a proxy for
// kinetic energy.
func (s *Simulation) Energy() float64 {
	var e float64
	for _, b := range s.bodies {
		dx, dy := b.node.X-b.px, b.node.Y-b.py
		e += dx*dx + dy*dy
	}
	return e
}

// Tick advances the simulation one step and notifies callbacks. It returns
// false without doing anything when the simulation is idle.
func (s *Simulation) Tick() bool {
	if s.state != Running {
		return false
	}

	s.alpha *= s.params.AlphaDecay
	if s.alpha < s.params.AlphaMin {
		s.alpha = s.params.AlphaMin
	}

	s.applySprings()
	s.applyGravity()
	s.applyCharge()
	s.integrate()

	s.seq++
	t := Tick{Seq: s.seq, Alpha: s.alpha, Nodes: s.nodes}
	for _, fn := range s.callbacks {
		fn(t)
	}
	return true
}

// applySprings pulls or pushes linked nodes toward the link's rest length.
// The displacement is split by degree so well-connected nodes move less.
func (s *Simulation) applySprings() {
	for _, sp := range s.springs {
		src, tgt := sp.source.node, sp.target.node
		x, y := tgt.X-src.X, tgt.Y-src.Y
		l := x*x + y*y
		if l == 0 {
			continue
		}
		l = math.Sqrt(l)
		l = s.alpha * sp.strength * (l - sp.distance) / l
		x *= l
		y *= l

		k := sp.source.weight / (sp.target.weight + sp.source.weight)
		tgt.X -= x * k
		tgt.Y -= y * k
		k = 1 - k
		src.X += x * k
		src.Y += y * k
	}
}

func (s *Simulation) applyGravity() {
	k := s.alpha * s.params.Gravity
	if k == 0 {
		return
	}
	cx, cy := s.width/2, s.height/2
	for _, b := range s.bodies {
		b.node.X += (cx - b.node.X) * k
		b.node.Y += (cy - b.node.Y) * k
	}
}

func (s *Simulation) applyCharge() {
	if s.params.Charge == 0 || len(s.bodies) < 2 {
		return
	}
	root := buildQuadtree(s.bodies)
	root.accumulate(s.alpha*s.params.Charge, s.rng)
	theta2 := s.params.Theta * s.params.Theta
	for _, b := range s.bodies {
		root.repulse(b, theta2)
	}
}

// integrate is a position Verlet step with friction.
func (s *Simulation) integrate() {
	f := s.params.Friction
	for _, b := range s.bodies {
		x, y := b.node.X, b.node.Y
		b.node.X = x + (x-b.px)*f
		b.node.Y = y + (y-b.py)*f
		b.px, b.py = x, y
	}
}
