// Package sim implements the force-directed layout engine: pairwise
// repulsion, spring attraction along edges, and semi-implicit Euler
// integration, with an optional zone-based approximation for large graphs.
//
// A Simulation owns its graph between steps. Each Step computes every force
// from a frozen snapshot of positions, then commits new positions and
// velocities wholesale, so observers never see a half-updated state.
package sim

import (
	"math"

	"github.com/kineograph/kineograph/pkg/geom"
)

// PairCache holds the distance and bearing of every unordered node pair,
// recomputed once per step and shared by the repulsion and attraction passes.
// Both slices are flat upper-triangle half-matrices without the diagonal,
// sized n*(n-1)/2 and reused across steps.
type PairCache struct {
	n         int
	distances []float64
	thetas    []float64
}

// NewPairCache allocates buffers for n nodes.
func NewPairCache(n int) *PairCache {
	size := n * (n - 1) / 2
	return &PairCache{
		n:         n,
		distances: make([]float64, size),
		thetas:    make([]float64, size),
	}
}

// pairIndex maps an ordered pair i < j to its flat upper-triangle slot.
// Row i starts at i*n - i*(i+1)/2 - i and holds the n-1-i entries for
// columns i+1..n-1.
func pairIndex(i, j, n int) int {
	return i*n + j - (i+1)*(i+2)/2
}

// Rebuild recomputes every pair's distance and bearing from the given
// position snapshot. len(positions) must equal the cache's node count.
func (c *PairCache) Rebuild(positions []geom.Vector2D) {
	for i := 0; i < c.n; i++ {
		for j := i + 1; j < c.n; j++ {
			idx := pairIndex(i, j, c.n)
			delta := positions[j].Sub(positions[i])
			c.distances[idx] = delta.Magnitude()
			c.thetas[idx] = normalizeAngle(delta.Angle())
		}
	}
}

// Distance returns the cached distance between nodes i and j.
// Distance is symmetric in its arguments.
func (c *PairCache) Distance(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return c.distances[pairIndex(i, j, c.n)]
}

// Theta returns the cached bearing from node i to node j in [0, 2π).
// Only the i < j bearing is stored; the reverse bearing is derived by
// rotating half a turn, so Theta(j, i) == Theta(i, j) + π mod 2π exactly.
func (c *PairCache) Theta(i, j int) float64 {
	if i == j {
		return 0
	}
	if i < j {
		return c.thetas[pairIndex(i, j, c.n)]
	}
	return normalizeAngle(c.thetas[pairIndex(j, i, c.n)] + math.Pi)
}

// normalizeAngle maps an angle in radians to [0, 2π).
func normalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}
