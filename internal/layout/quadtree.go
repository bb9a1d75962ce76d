package layout

import (
	"math"
	"math/rand/v2"
)

// maxQuadDepth bounds subdivision for points that are very close together.
const maxQuadDepth = 32

// coincident is the Manhattan distance below which two points share a leaf.
const coincident = 0.01

// quad is a Barnes-Hut quadtree cell. Leaves hold one point or a bucket of
// coincident points; internal cells hold up to four children.
type quad struct {
	x1, y1, x2, y2 float64
	leaf           bool
	children       [4]*quad
	points         []*body

	// Aggregate charge and its weighted center, set by accumulate.
	charge float64
	cx, cy float64
}

// buildQuadtree indexes bodies in a square cell covering all of them.
func buildQuadtree(bodies []*body) *quad {
	if len(bodies) == 0 {
		return nil
	}

	x1, y1 := math.Inf(1), math.Inf(1)
	x2, y2 := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		x1 = math.Min(x1, b.node.X)
		y1 = math.Min(y1, b.node.Y)
		x2 = math.Max(x2, b.node.X)
		y2 = math.Max(y2, b.node.Y)
	}
	if dx, dy := x2-x1, y2-y1; dx > dy {
		y2 = y1 + dx
	} else {
		x2 = x1 + dy
	}

	root := &quad{x1: x1, y1: y1, x2: x2, y2: y2, leaf: true}
	for _, b := range bodies {
		root.insert(b, 0)
	}
	return root
}

func (q *quad) insert(b *body, depth int) {
	if !q.leaf {
		q.insertChild(b, depth)
		return
	}

	if len(q.points) == 0 || depth >= maxQuadDepth {
		q.points = append(q.points, b)
		return
	}

	first := q.points[0]
	if math.Abs(first.node.X-b.node.X)+math.Abs(first.node.Y-b.node.Y) < coincident {
		q.points = append(q.points, b)
		return
	}

	existing := q.points
	q.points = nil
	q.leaf = false
	for _, e := range existing {
		q.insertChild(e, depth)
	}
	q.insertChild(b, depth)
}

func (q *quad) insertChild(b *body, depth int) {
	sx, sy := (q.x1+q.x2)/2, (q.y1+q.y2)/2

	i := 0
	x1, y1, x2, y2 := q.x1, q.y1, sx, sy
	if b.node.X >= sx {
		i |= 1
		x1, x2 = sx, q.x2
	}
	if b.node.Y >= sy {
		i |= 2
		y1, y2 = sy, q.y2
	}

	if q.children[i] == nil {
		q.children[i] = &quad{x1: x1, y1: y1, x2: x2, y2: y2, leaf: true}
	}
	q.children[i].insert(b, depth+1)
}

// accumulate computes aggregate charges bottom-up. Coincident points are
// jittered apart so they repel on later ticks.
func (q *quad) accumulate(k float64, rng *rand.Rand) {
	var cx, cy float64
	q.charge = 0

	if q.leaf {
		for i, b := range q.points {
			if i > 0 {
				b.node.X += rng.Float64() - 0.5
				b.node.Y += rng.Float64() - 0.5
			}
			q.charge += k
			cx += k * b.node.X
			cy += k * b.node.Y
		}
	} else {
		for _, c := range q.children {
			if c == nil {
				continue
			}
			c.accumulate(k, rng)
			q.charge += c.charge
			cx += c.charge * c.cx
			cy += c.charge * c.cy
		}
	}

	if q.charge != 0 {
		q.cx = cx / q.charge
		q.cy = cy / q.charge
	}
}

// repulse applies the charge of every other body to b's previous position.
// Cells far enough away relative to their size are treated as one body.
func (q *quad) repulse(b *body, theta2 float64) {
	if q.charge == 0 {
		return
	}

	if q.leaf {
		for _, o := range q.points {
			if o == b {
				continue
			}
			dx, dy := o.node.X-b.node.X, o.node.Y-b.node.Y
			if dn := dx*dx + dy*dy; dn > 0 {
				k := q.charge / float64(len(q.points)) / dn
				b.px -= dx * k
				b.py -= dy * k
			}
		}
		return
	}

	dx, dy := q.cx-b.node.X, q.cy-b.node.Y
	dw := q.x2 - q.x1
	dn := dx*dx + dy*dy
	if dn > 0 && dw*dw < theta2*dn {
		k := q.charge / dn
		b.px -= dx * k
		b.py -= dy * k
		return
	}

	for _, c := range q.children {
		if c != nil {
			c.repulse(b, theta2)
		}
	}
}
