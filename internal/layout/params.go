// Package layout computes node positions with an iterative force-directed
// simulation: gravity toward the center, pairwise charge, and a spring per
// link whose rest length and stiffness come from the link's relevance.
package layout

import "github.com/matsen/bizgraph/internal/graph"

// Default physical parameters.
const (
	DefaultGravity      = 0.05
	DefaultCharge       = -300.0
	DefaultFriction     = 0.9
	DefaultTheta        = 0.8
	DefaultInitialAlpha = 0.1
	DefaultAlphaDecay   = 0.99
	DefaultAlphaMin     = 0.005
)

// Params configures a Simulation.
type Params struct {
	Gravity  float64 // pull toward the center of the bounds
	Charge   float64 // pairwise charge; negative repels
	Friction float64 // fraction of velocity kept per tick
	Theta    float64 // Barnes-Hut accuracy; 0 computes every pair exactly

	InitialAlpha float64 // alpha set by Start
	AlphaDecay   float64 // alpha multiplier per tick
	AlphaMin     float64 // alpha never cools below this while running

	LinkDistance func(*graph.Link) float64
	LinkStrength func(*graph.Link) float64

	// RandSeed seeds initial placement and jitter.
	RandSeed uint64
}

// DefaultParams returns the standard parameters.
func DefaultParams() Params {
	return Params{
		Gravity:      DefaultGravity,
		Charge:       DefaultCharge,
		Friction:     DefaultFriction,
		Theta:        DefaultTheta,
		InitialAlpha: DefaultInitialAlpha,
		AlphaDecay:   DefaultAlphaDecay,
		AlphaMin:     DefaultAlphaMin,
		LinkDistance: LinkDistance,
		LinkStrength: LinkStrength,
		RandSeed:     1,
	}
}

// LinkDistance is the rest length of a link: more relevant links are
// shorter. The result is not clamped and turns negative above a relevance
// of 166.7.
func LinkDistance(l *graph.Link) float64 {
	return 250.0 - l.DecayedRelevance*1.5
}

// LinkStrength is the stiffness of a link.
func LinkStrength(l *graph.Link) float64 {
	return l.DecayedRelevance / 100.0
}
