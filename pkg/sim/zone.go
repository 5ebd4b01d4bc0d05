package sim

import "github.com/kineograph/kineograph/pkg/geom"

// The zoned approximation partitions the bounding box of the current
// positions into a static 3×3 grid of major zones, numbered row-major:
//
//	+---+---+---+
//	| 0 | 1 | 2 |
//	+---+---+---+
//	| 3 | 4 | 5 |
//	+---+---+---+
//	| 6 | 7 | 8 |
//	+---+---+---+
//
// For a node's repulsion, pairs inside its own zone are computed exactly,
// adjacent zones contribute through four 2×2 minor-zone aggregates each, and
// non-adjacent zones contribute through a single whole-zone aggregate. Two
// zones are adjacent when they share a side or a corner, so the center zone
// is adjacent to all eight others and corner zones to exactly three.

const (
	// NumZones is the number of major zones in the 3×3 partition.
	NumZones = 9

	// NumMinorZones is the number of 2×2 minor zones inside each major zone,
	// numbered row-major 0..3.
	NumMinorZones = 4
)

// zoneAdjacency[a][b] reports whether major zones a and b share a side or a
// corner. The relation is symmetric and irreflexive.
var zoneAdjacency [NumZones][NumZones]bool

func init() {
	for a := 0; a < NumZones; a++ {
		for b := 0; b < NumZones; b++ {
			if a == b {
				continue
			}
			dr := a/3 - b/3
			dc := a%3 - b%3
			if dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1 {
				zoneAdjacency[a][b] = true
			}
		}
	}
}

// ZonesAdjacent reports whether two major zones share a side or a corner.
// A zone is never adjacent to itself.
func ZonesAdjacent(a, b int) bool {
	return zoneAdjacency[a][b]
}

// Aggregate is a group of nodes collapsed to a single point mass at their
// mass-weighted centroid. A zero Mass means the group is empty and must be
// skipped by force accumulation.
type Aggregate struct {
	Mass     float64
	Centroid geom.Vector2D
}

// add folds one node into the aggregate, keeping the centroid mass-weighted.
func (a *Aggregate) add(pos geom.Vector2D, mass float64) {
	total := a.Mass + mass
	a.Centroid = a.Centroid.Scale(a.Mass / total).Add(pos.Scale(mass / total))
	a.Mass = total
}

// ZoneIndex assigns every node to a major and minor zone and maintains the
// per-zone aggregates. It is rebuilt from each step's position snapshot and
// its buffers are reused across steps.
type ZoneIndex struct {
	min      geom.Vector2D
	cell     geom.Vector2D
	nodeZone []int
	zones    [NumZones][]int
	zoneAgg  [NumZones]Aggregate
	minorAgg [NumZones][NumMinorZones]Aggregate
}

// NewZoneIndex allocates an index for n nodes.
func NewZoneIndex(n int) *ZoneIndex {
	return &ZoneIndex{nodeZone: make([]int, n)}
}

// Rebuild recomputes zone assignments and aggregates from the given position
// snapshot and effective masses. The grid covers the snapshot's bounding box;
// a degenerate axis (all nodes collinear) falls back to a unit span so every
// node still lands in a valid cell.
func (z *ZoneIndex) Rebuild(positions []geom.Vector2D, masses []float64) {
	z.min, z.cell = gridGeometry(positions)
	for i := range z.zones {
		z.zones[i] = z.zones[i][:0]
		z.zoneAgg[i] = Aggregate{}
		for m := range z.minorAgg[i] {
			z.minorAgg[i][m] = Aggregate{}
		}
	}

	for i, p := range positions {
		zone, minor := z.locate(p)
		z.nodeZone[i] = zone
		z.zones[zone] = append(z.zones[zone], i)
		z.zoneAgg[zone].add(p, masses[i])
		z.minorAgg[zone][minor].add(p, masses[i])
	}
}

// NodeZone returns the major zone of node i as of the last Rebuild.
func (z *ZoneIndex) NodeZone(i int) int { return z.nodeZone[i] }

// ZoneNodes returns the node indices assigned to the given major zone.
// The returned slice is owned by the index and valid until the next Rebuild.
func (z *ZoneIndex) ZoneNodes(zone int) []int { return z.zones[zone] }

// ZoneAggregate returns the whole-zone point-mass aggregate.
func (z *ZoneIndex) ZoneAggregate(zone int) Aggregate { return z.zoneAgg[zone] }

// MinorAggregate returns the point-mass aggregate of one 2×2 minor zone.
func (z *ZoneIndex) MinorAggregate(zone, minor int) Aggregate {
	return z.minorAgg[zone][minor]
}

// locate maps a position to its (major, minor) zone pair.
func (z *ZoneIndex) locate(p geom.Vector2D) (zone, minor int) {
	fx := (p.X - z.min.X) / z.cell.X
	fy := (p.Y - z.min.Y) / z.cell.Y
	col := clampCell(int(fx), 2)
	row := clampCell(int(fy), 2)

	// Position within the major cell decides the 2×2 minor cell.
	mcol := clampCell(int((fx-float64(col))*2), 1)
	mrow := clampCell(int((fy-float64(row))*2), 1)

	return row*3 + col, mrow*2 + mcol
}

// gridGeometry returns the grid origin and major-cell size for a snapshot.
func gridGeometry(positions []geom.Vector2D) (min, cell geom.Vector2D) {
	if len(positions) == 0 {
		return geom.Vector2D{}, geom.FromXY(1, 1)
	}
	min = positions[0]
	max := positions[0]
	for _, p := range positions[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	span := max.Sub(min)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	return min, span.Scale(1.0 / 3.0)
}

func clampCell(idx, max int) int {
	if idx < 0 {
		return 0
	}
	if idx > max {
		return max
	}
	return idx
}
