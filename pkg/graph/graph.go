// Package graph defines the node/edge data model consumed by the force
// simulation. Nodes are addressed by their position in the node slice; edges
// reference nodes by those indices. The index of a node is its identity for
// the lifetime of a simulation, so callers must not reorder the node slice
// while a simulation holds it.
package graph

import (
	"errors"
	"fmt"

	"github.com/kineograph/kineograph/pkg/geom"
)

var (
	// ErrEdgeIndexOutOfRange is returned by [Graph.Validate] and [New] when an
	// edge references a node index outside the node slice.
	ErrEdgeIndexOutOfRange = errors.New("edge references node index out of range")

	// ErrNonPositiveWeight is returned by [Graph.Validate] and [New] when an
	// edge weight is zero or negative. Edge weights drive both attraction and
	// derived node mass, so they must be strictly positive.
	ErrNonPositiveWeight = errors.New("edge weight must be positive")

	// ErrSelfLoop is returned by [Graph.Validate] and [New] when an edge
	// connects a node to itself. A self-loop has no defined spring length.
	ErrSelfLoop = errors.New("edge connects node to itself")

	// ErrDegenerateMass is returned by [Graph.Masses] when a node's effective
	// mass is zero or negative, e.g. an isolated node under [MassDerived].
	// Integrating such a node would divide by zero.
	ErrDegenerateMass = errors.New("node has non-positive mass")
)

// Node is a point mass in the layout. Position and Velocity are updated by
// the simulation every step; Radius is a display hint that the force math
// never reads. Mass is only consulted under [MassFixed]; under
// [MassDerived] the effective mass is recomputed from incident edge weights.
type Node struct {
	Position geom.Vector2D `json:"position" bson:"position"`
	Velocity geom.Vector2D `json:"velocity" bson:"velocity"`
	Mass     float64       `json:"mass" bson:"mass"`
	Radius   float64       `json:"radius,omitempty" bson:"radius,omitempty"`
	Label    string        `json:"label,omitempty" bson:"label,omitempty"`
}

// Edge is an undirected spring between two nodes, referenced by index into
// the graph's node slice. Weight scales the attractive force and contributes
// to derived mass; it must be strictly positive.
type Edge struct {
	Node1  int     `json:"node1" bson:"node1"`
	Node2  int     `json:"node2" bson:"node2"`
	Weight float64 `json:"weight" bson:"weight"`
}

// HasNode reports whether the edge touches the given node index.
func (e Edge) HasNode(idx int) bool {
	return e.Node1 == idx || e.Node2 == idx
}

// Other returns the opposite endpoint of the edge relative to idx.
// The result is unspecified if the edge does not touch idx.
func (e Edge) Other(idx int) int {
	if e.Node1 == idx {
		return e.Node2
	}
	return e.Node1
}

// MassPolicy selects how a node's effective mass is determined.
// The two policies produce different dynamics, so the choice is an explicit
// part of the graph rather than a per-call flag.
type MassPolicy int

const (
	// MassDerived recomputes each node's mass as the sum of the weights of
	// its incident edges. Hub nodes become heavy and therefore sluggish,
	// which keeps well-connected clusters stable. This is the default.
	MassDerived MassPolicy = iota

	// MassFixed uses the Mass field supplied on each node as-is.
	MassFixed
)

// String returns the policy name for logs and error messages.
func (p MassPolicy) String() string {
	switch p {
	case MassDerived:
		return "derived"
	case MassFixed:
		return "fixed"
	default:
		return fmt.Sprintf("MassPolicy(%d)", int(p))
	}
}

// Graph is an index-addressed node and edge list. The zero value is an empty
// graph with the MassDerived policy. Graph is not safe for concurrent
// mutation; a simulation takes ownership of it between steps.
type Graph struct {
	Nodes      []Node     `json:"nodes" bson:"nodes"`
	Edges      []Edge     `json:"edges" bson:"edges"`
	MassPolicy MassPolicy `json:"mass_policy,omitempty" bson:"mass_policy,omitempty"`
}

// New builds a validated graph from nodes and edges.
// It returns the first validation error encountered, wrapping
// ErrEdgeIndexOutOfRange, ErrNonPositiveWeight, or ErrSelfLoop.
func New(nodes []Node, edges []Edge, policy MassPolicy) (*Graph, error) {
	g := &Graph{Nodes: nodes, Edges: edges, MassPolicy: policy}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// AddNode appends a node and returns its index.
func (g *Graph) AddNode(n Node) int {
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

// AddEdge appends an edge after validating it against the current nodes.
func (g *Graph) AddEdge(e Edge) error {
	if err := g.validateEdge(e); err != nil {
		return err
	}
	g.Edges = append(g.Edges, e)
	return nil
}

// SetWeight updates the weight of the edge at edgeIdx.
// The weight must remain strictly positive.
func (g *Graph) SetWeight(edgeIdx int, weight float64) error {
	if edgeIdx < 0 || edgeIdx >= len(g.Edges) {
		return fmt.Errorf("edge index %d out of range [0, %d)", edgeIdx, len(g.Edges))
	}
	if weight <= 0 {
		return fmt.Errorf("%w: %g", ErrNonPositiveWeight, weight)
	}
	g.Edges[edgeIdx].Weight = weight
	return nil
}

// Validate checks every edge for index range, self-loops, and positive
// weight. A graph that fails Validate must not be handed to a simulation.
func (g *Graph) Validate() error {
	for i, e := range g.Edges {
		if err := g.validateEdge(e); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return nil
}

func (g *Graph) validateEdge(e Edge) error {
	n := len(g.Nodes)
	if e.Node1 < 0 || e.Node1 >= n || e.Node2 < 0 || e.Node2 >= n {
		return fmt.Errorf("%w: (%d, %d) with %d nodes", ErrEdgeIndexOutOfRange, e.Node1, e.Node2, n)
	}
	if e.Node1 == e.Node2 {
		return fmt.Errorf("%w: node %d", ErrSelfLoop, e.Node1)
	}
	if e.Weight <= 0 {
		return fmt.Errorf("%w: %g", ErrNonPositiveWeight, e.Weight)
	}
	return nil
}

// Masses returns the effective mass of every node under the graph's mass
// policy. Under MassDerived each mass is the sum of incident edge weights,
// recomputed from the current weights so host-side SetWeight calls are
// reflected. Returns ErrDegenerateMass if any node ends up with mass ≤ 0.
func (g *Graph) Masses() ([]float64, error) {
	masses := make([]float64, len(g.Nodes))

	switch g.MassPolicy {
	case MassFixed:
		for i, n := range g.Nodes {
			masses[i] = n.Mass
		}
	default: // MassDerived
		for _, e := range g.Edges {
			masses[e.Node1] += e.Weight
			masses[e.Node2] += e.Weight
		}
	}

	for i, m := range masses {
		if m <= 0 {
			return nil, fmt.Errorf("%w: node %d (mass %g, policy %s)", ErrDegenerateMass, i, m, g.MassPolicy)
		}
	}
	return masses, nil
}

// Positions returns a copy of all node positions in index order.
func (g *Graph) Positions() []geom.Vector2D {
	positions := make([]geom.Vector2D, len(g.Nodes))
	for i, n := range g.Nodes {
		positions[i] = n.Position
	}
	return positions
}

// IncidentEdges returns the indices of all edges touching the given node.
func (g *Graph) IncidentEdges(nodeIdx int) []int {
	var out []int
	for i, e := range g.Edges {
		if e.HasNode(nodeIdx) {
			out = append(out, i)
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of all node positions.
// An empty graph returns two zero vectors.
func (g *Graph) Bounds() (min, max geom.Vector2D) {
	if len(g.Nodes) == 0 {
		return geom.Vector2D{}, geom.Vector2D{}
	}
	min = g.Nodes[0].Position
	max = g.Nodes[0].Position
	for _, n := range g.Nodes[1:] {
		if n.Position.X < min.X {
			min.X = n.Position.X
		}
		if n.Position.Y < min.Y {
			min.Y = n.Position.Y
		}
		if n.Position.X > max.X {
			max.X = n.Position.X
		}
		if n.Position.Y > max.Y {
			max.Y = n.Position.Y
		}
	}
	return min, max
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes:      make([]Node, len(g.Nodes)),
		Edges:      make([]Edge, len(g.Edges)),
		MassPolicy: g.MassPolicy,
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}
