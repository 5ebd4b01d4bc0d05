package graph

import (
	"math/rand"

	"github.com/kineograph/kineograph/pkg/geom"
)

// Generators for demo and benchmark graphs. Positions are drawn uniformly
// from [-1, 1)² and edge weights from [0.5, 1.5); all randomness flows
// through the caller-supplied seed so runs are reproducible.

// FullyConnected builds a complete graph on n nodes with random positions
// and random edge weights.
func FullyConnected(n int, seed int64) *Graph {
	rng := rand.New(rand.NewSource(seed))
	g := &Graph{Nodes: randomNodes(n, rng)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.Edges = append(g.Edges, Edge{Node1: i, Node2: j, Weight: randomWeight(rng)})
		}
	}
	return g
}

// Ring builds a cycle on n nodes with random positions and random edge
// weights. A ring needs at least 3 nodes; smaller n yields a path.
func Ring(n int, seed int64) *Graph {
	rng := rand.New(rand.NewSource(seed))
	g := &Graph{Nodes: randomNodes(n, rng)}
	for i := 0; i+1 < n; i++ {
		g.Edges = append(g.Edges, Edge{Node1: i, Node2: i + 1, Weight: randomWeight(rng)})
	}
	if n >= 3 {
		g.Edges = append(g.Edges, Edge{Node1: n - 1, Node2: 0, Weight: randomWeight(rng)})
	}
	return g
}

func randomNodes(n int, rng *rand.Rand) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{
			Position: geom.FromXY(rng.Float64()*2-1, rng.Float64()*2-1),
			Mass:     1,
		}
	}
	return nodes
}

func randomWeight(rng *rand.Rand) float64 {
	return rng.Float64() + 0.5
}
