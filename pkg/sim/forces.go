package sim

import (
	"sync"

	"github.com/kineograph/kineograph/pkg/geom"
)

// minDistance floors any cached distance used as a divisor. Coincident nodes
// therefore feel a large but finite repulsion of k·m1·m2/minDistance² instead
// of dividing by zero. Attraction uses the raw distance since it vanishes at
// zero rather than diverging.
const minDistance = 1e-5

// accumulateForces fills s.forces from the frozen position snapshot.
// Repulsion runs pairwise in serial exact mode and per-node otherwise;
// attraction is always exact over the edge list.
func (s *Simulation) accumulateForces(positions []geom.Vector2D) {
	for i := range s.forces {
		s.forces[i] = geom.Vector2D{}
	}

	switch {
	case s.opts.Parallel:
		s.repulsionParallel(positions)
	case s.opts.Mode == ModeZoned:
		for i := range positions {
			s.forces[i] = s.forces[i].Add(s.repulsionAt(i, positions))
		}
	default:
		s.repulsionPairwise()
	}

	s.accumulateAttraction()
}

// repulsionPairwise visits each unordered pair once and applies the force to
// both endpoints with opposite signs.
func (s *Simulation) repulsionPairwise() {
	n := len(s.forces)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := s.cache.Distance(i, j)
			if d < minDistance {
				d = minDistance
			}
			mag := s.opts.Repulsion * s.masses[i] * s.masses[j] / (d * d)
			f := geom.FromRTheta(mag, s.cache.Theta(i, j))
			s.forces[i] = s.forces[i].Sub(f)
			s.forces[j] = s.forces[j].Add(f)
		}
	}
}

// repulsionAt returns the total repulsive force on node i. It reads only the
// snapshot and the step's caches, and touches no shared output, so it is safe
// to call from multiple goroutines for distinct i.
func (s *Simulation) repulsionAt(i int, positions []geom.Vector2D) geom.Vector2D {
	if s.opts.Mode == ModeZoned {
		return s.zonedRepulsionAt(i, positions)
	}

	var total geom.Vector2D
	for j := range positions {
		if j == i {
			continue
		}
		d := s.cache.Distance(i, j)
		if d < minDistance {
			d = minDistance
		}
		mag := s.opts.Repulsion * s.masses[i] * s.masses[j] / (d * d)
		total = total.Sub(geom.FromRTheta(mag, s.cache.Theta(i, j)))
	}
	return total
}

// zonedRepulsionAt computes node i's repulsion under the zone approximation:
// exact pairs within its own zone, four minor-zone aggregates per adjacent
// zone, and one whole-zone aggregate per non-adjacent zone.
func (s *Simulation) zonedRepulsionAt(i int, positions []geom.Vector2D) geom.Vector2D {
	var total geom.Vector2D
	home := s.zones.NodeZone(i)

	for _, j := range s.zones.ZoneNodes(home) {
		if j == i {
			continue
		}
		d := s.cache.Distance(i, j)
		if d < minDistance {
			d = minDistance
		}
		mag := s.opts.Repulsion * s.masses[i] * s.masses[j] / (d * d)
		total = total.Sub(geom.FromRTheta(mag, s.cache.Theta(i, j)))
	}

	for zone := 0; zone < NumZones; zone++ {
		if zone == home {
			continue
		}
		if ZonesAdjacent(home, zone) {
			for minor := 0; minor < NumMinorZones; minor++ {
				total = total.Add(s.aggregateRepulsion(i, positions[i], s.zones.MinorAggregate(zone, minor)))
			}
		} else {
			total = total.Add(s.aggregateRepulsion(i, positions[i], s.zones.ZoneAggregate(zone)))
		}
	}
	return total
}

// aggregateRepulsion returns the repulsion node i feels from a collapsed
// point mass. Empty aggregates contribute nothing.
func (s *Simulation) aggregateRepulsion(i int, pos geom.Vector2D, agg Aggregate) geom.Vector2D {
	if agg.Mass == 0 {
		return geom.Vector2D{}
	}
	delta := agg.Centroid.Sub(pos)
	d := delta.Magnitude()
	if d < minDistance {
		d = minDistance
	}
	mag := s.opts.Repulsion * s.masses[i] * agg.Mass / (d * d)
	return geom.FromRTheta(mag, normalizeAngle(delta.Angle())).Neg()
}

// repulsionParallel fans node indices out over a fixed worker pool. Each
// worker writes only its own nodes' force slots, so no synchronization beyond
// the completion barrier is needed.
func (s *Simulation) repulsionParallel(positions []geom.Vector2D) {
	workers := s.opts.Workers
	n := len(positions)
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				s.forces[i] = s.forces[i].Add(s.repulsionAt(i, positions))
			}
		}(w)
	}
	wg.Wait()
}

// accumulateAttraction applies the spring force of every edge to both
// endpoints. The magnitude grows linearly with distance and edge weight.
func (s *Simulation) accumulateAttraction() {
	for _, e := range s.graph.Edges {
		d := s.cache.Distance(e.Node1, e.Node2)
		mag := s.opts.Attraction * e.Weight * d
		f := geom.FromRTheta(mag, s.cache.Theta(e.Node1, e.Node2))
		s.forces[e.Node1] = s.forces[e.Node1].Add(f)
		s.forces[e.Node2] = s.forces[e.Node2].Sub(f)
	}
}
