package layout

import (
	"testing"

	"github.com/kineograph/kineograph/pkg/geom"
	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/sim"
)

func settledLayout(t *testing.T) *Layout {
	t.Helper()
	g := &graph.Graph{
		Nodes: []graph.Node{
			{Position: geom.FromXY(0, 0), Label: "a"},
			{Position: geom.FromXY(1, 0)},
			{Position: geom.FromXY(0, 1)},
		},
		Edges: []graph.Edge{
			{Node1: 0, Node2: 1, Weight: 1},
			{Node1: 1, Node2: 2, Weight: 1},
			{Node1: 2, Node2: 0, Weight: 1},
		},
	}
	s, err := sim.New(g, sim.Options{})
	if err != nil {
		t.Fatalf("sim.New() error = %v", err)
	}
	if err := s.Step(0.5); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	l, err := FromSimulation(s, 0.5)
	if err != nil {
		t.Fatalf("FromSimulation() error = %v", err)
	}
	return l
}

func TestFromSimulation(t *testing.T) {
	l := settledLayout(t)

	if len(l.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(l.Points))
	}
	if len(l.Edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(l.Edges))
	}
	if l.Points[0].Label != "a" {
		t.Errorf("label = %q, want a", l.Points[0].Label)
	}
	// Triangle with unit weights yields derived mass 2 per node.
	for i, p := range l.Points {
		if p.Mass != 2 {
			t.Errorf("point %d mass = %v, want 2", i, p.Mass)
		}
	}
	if l.Stats.Steps != 1 || l.Stats.TimeStep != 0.5 {
		t.Errorf("stats = %+v, want 1 step of 0.5", l.Stats)
	}
	if l.Min.X > l.Max.X || l.Min.Y > l.Max.Y {
		t.Errorf("bounds inverted: %v, %v", l.Min, l.Max)
	}
}

func TestNormalizeFitsFrame(t *testing.T) {
	l := settledLayout(t)
	orig := l.Points[0].Position
	n := l.Normalize(800, 600, 20)

	for i, p := range n.Points {
		if p.Position.X < 20-1e-9 || p.Position.X > 780+1e-9 ||
			p.Position.Y < 20-1e-9 || p.Position.Y > 580+1e-9 {
			t.Errorf("point %d at %v outside margins", i, p.Position)
		}
	}
	if n.Max != geom.FromXY(800, 600) {
		t.Errorf("frame max = %v, want {800 600}", n.Max)
	}
	// Original layout is untouched.
	if l.Points[0].Position != orig {
		t.Error("Normalize mutated the original layout")
	}
}

func TestNormalizeCoincidentNodes(t *testing.T) {
	l := &Layout{
		Points: []Point{
			{Index: 0, Position: geom.FromXY(5, 5), Mass: 1},
			{Index: 1, Position: geom.FromXY(5, 5), Mass: 1},
		},
		Min: geom.FromXY(5, 5),
		Max: geom.FromXY(5, 5),
	}
	n := l.Normalize(100, 100, 10)
	for i, p := range n.Points {
		if p.Position != geom.FromXY(50, 50) {
			t.Errorf("point %d at %v, want centered {50 50}", i, p.Position)
		}
	}
}

func TestLayoutJSONRoundTrip(t *testing.T) {
	l := settledLayout(t)
	data, err := Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got.Points) != len(l.Points) || got.Stats != l.Stats {
		t.Errorf("round trip mismatch: %+v", got.Stats)
	}
}
