package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kineograph/kineograph/pkg/geom"
	"github.com/kineograph/kineograph/pkg/graph"
)

// triangleGraph is the canonical convergence scenario: three unit-weight
// edges between nodes at (0,0), (1,0), (0,1).
func triangleGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{Position: geom.FromXY(0, 0)},
			{Position: geom.FromXY(1, 0)},
			{Position: geom.FromXY(0, 1)},
		},
		Edges: []graph.Edge{
			{Node1: 0, Node2: 1, Weight: 1},
			{Node1: 1, Node2: 2, Weight: 1},
			{Node1: 2, Node2: 0, Weight: 1},
		},
	}
}

func fixedMassGraph(positions []geom.Vector2D, masses []float64) *graph.Graph {
	g := &graph.Graph{MassPolicy: graph.MassFixed}
	for i, p := range positions {
		g.AddNode(graph.Node{Position: p, Mass: masses[i]})
	}
	return g
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if o.Repulsion != 1 || o.Attraction != 1 {
		t.Errorf("constants = %v, %v, want 1, 1", o.Repulsion, o.Attraction)
	}
	if o.Mode != ModeExact {
		t.Errorf("mode = %q, want exact", o.Mode)
	}
	if o.Damping != 0.5 {
		t.Errorf("damping = %v, want 0.5", o.Damping)
	}
	if o.Workers <= 0 {
		t.Errorf("workers = %d, want > 0", o.Workers)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"bad mode", Options{Mode: "barnes-hut"}, ErrInvalidMode},
		{"negative repulsion", Options{Repulsion: -1}, ErrNonPositiveConstant},
		{"negative attraction", Options{Attraction: -2}, ErrNonPositiveConstant},
		{"damping too high", Options{Damping: 1}, ErrInvalidDamping},
		{"negative damping", Options{Damping: -0.1}, ErrInvalidDamping},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsInvalidGraph(t *testing.T) {
	g := &graph.Graph{
		Nodes: make([]graph.Node, 2),
		Edges: []graph.Edge{{Node1: 0, Node2: 5, Weight: 1}},
	}
	if _, err := New(g, Options{}); !errors.Is(err, graph.ErrEdgeIndexOutOfRange) {
		t.Fatalf("New() error = %v, want ErrEdgeIndexOutOfRange", err)
	}
}

func TestNewRejectsDegenerateMass(t *testing.T) {
	// An isolated node has no incident edges, so its derived mass is zero.
	g := &graph.Graph{Nodes: make([]graph.Node, 1)}
	if _, err := New(g, Options{}); !errors.Is(err, graph.ErrDegenerateMass) {
		t.Fatalf("New() error = %v, want ErrDegenerateMass", err)
	}
}

func TestStepRejectsNonPositiveDt(t *testing.T) {
	s, err := New(triangleGraph(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Step(0); !errors.Is(err, ErrNonPositiveTimeStep) {
		t.Errorf("Step(0) error = %v, want ErrNonPositiveTimeStep", err)
	}
	if err := s.Step(-1); !errors.Is(err, ErrNonPositiveTimeStep) {
		t.Errorf("Step(-1) error = %v, want ErrNonPositiveTimeStep", err)
	}
}

func TestNewtonThirdLaw(t *testing.T) {
	g := fixedMassGraph(
		[]geom.Vector2D{geom.FromXY(0, 0), geom.FromXY(2, 1)},
		[]float64{2, 3},
	)
	s, err := New(g, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Step(1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	forces := s.Forces()
	if forces[0].Add(forces[1]) != (geom.Vector2D{}) {
		t.Errorf("forces do not cancel: %v + %v", forces[0], forces[1])
	}
}

func TestNetForceSumsToZero(t *testing.T) {
	s, err := New(graph.FullyConnected(12, 3), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Step(0.1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	var sum geom.Vector2D
	for _, f := range s.Forces() {
		sum = sum.Add(f)
	}
	if sum.Magnitude() > 1e-9 {
		t.Errorf("net force sum magnitude = %v, want ≈ 0", sum.Magnitude())
	}
}

func TestEquilateralConvergence(t *testing.T) {
	s, err := New(triangleGraph(), Options{Repulsion: 1, Attraction: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Run(context.Background(), 100, 1); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	g := s.Graph()
	d01 := g.Nodes[0].Position.Distance(g.Nodes[1].Position)
	d12 := g.Nodes[1].Position.Distance(g.Nodes[2].Position)
	d20 := g.Nodes[2].Position.Distance(g.Nodes[0].Position)

	max := math.Max(d01, math.Max(d12, d20))
	min := math.Min(d01, math.Min(d12, d20))
	if max-min > 1e-5 {
		t.Errorf("pairwise distances %v, %v, %v not equilateral (spread %v)", d01, d12, d20, max-min)
	}

	// Equilibrium balances k·m1·m2/d² against k·w·d, so d³ = 4 here.
	want := math.Cbrt(4)
	if math.Abs(d01-want) > 1e-5 {
		t.Errorf("side length = %v, want %v", d01, want)
	}
}

func TestIdempotentAtEquilibrium(t *testing.T) {
	g := fixedMassGraph([]geom.Vector2D{geom.FromXY(3, 7)}, []float64{1})
	s, err := New(g, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Step(1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	if got := s.Graph().Nodes[0].Position; got != geom.FromXY(3, 7) {
		t.Errorf("position moved to %v, want {3 7}", got)
	}
	if got := s.Forces()[0]; got != (geom.Vector2D{}) {
		t.Errorf("net force = %v, want zero", got)
	}
}

func TestClampedSingularity(t *testing.T) {
	// Two coincident nodes repel with the clamped magnitude k·m1·m2/ε².
	g := fixedMassGraph(
		[]geom.Vector2D{geom.FromXY(1, 1), geom.FromXY(1, 1)},
		[]float64{2, 3},
	)
	s, err := New(g, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Step(1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	want := 2 * 3 / (minDistance * minDistance)
	for i, f := range s.Forces() {
		mag := f.Magnitude()
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			t.Fatalf("force %d = %v, not finite", i, f)
		}
		if math.Abs(mag-want) > want*1e-12 {
			t.Errorf("force %d magnitude = %v, want %v", i, mag, want)
		}
	}
}

func TestZonedReducesToExactOnePerZone(t *testing.T) {
	// One node per major zone: every aggregate collapses to a single real
	// node, so zoned repulsion must match exact repulsion.
	var positions []geom.Vector2D
	var masses []float64
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			positions = append(positions, geom.FromXY(float64(col)*2+0.5, float64(row)*2+0.7))
			masses = append(masses, float64(row*3+col+1))
		}
	}

	exact, err := New(fixedMassGraph(positions, masses), Options{Mode: ModeExact})
	if err != nil {
		t.Fatalf("New(exact) error = %v", err)
	}
	zoned, err := New(fixedMassGraph(positions, masses), Options{Mode: ModeZoned})
	if err != nil {
		t.Fatalf("New(zoned) error = %v", err)
	}

	if err := exact.Step(1); err != nil {
		t.Fatalf("exact Step() error = %v", err)
	}
	if err := zoned.Step(1); err != nil {
		t.Fatalf("zoned Step() error = %v", err)
	}

	ef, zf := exact.Forces(), zoned.Forces()
	for i := range ef {
		if ef[i].Sub(zf[i]).Magnitude() > 1e-9 {
			t.Errorf("node %d: exact force %v, zoned force %v", i, ef[i], zf[i])
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	g := graph.FullyConnected(25, 11)
	serial, err := New(g.Clone(), Options{})
	if err != nil {
		t.Fatalf("New(serial) error = %v", err)
	}
	parallel, err := New(g.Clone(), Options{Parallel: true, Workers: 4})
	if err != nil {
		t.Fatalf("New(parallel) error = %v", err)
	}

	for step := 0; step < 5; step++ {
		if err := serial.Step(0.1); err != nil {
			t.Fatalf("serial Step() error = %v", err)
		}
		if err := parallel.Step(0.1); err != nil {
			t.Fatalf("parallel Step() error = %v", err)
		}
	}

	sn, pn := serial.Graph().Nodes, parallel.Graph().Nodes
	for i := range sn {
		if sn[i].Position.Distance(pn[i].Position) > 1e-6 {
			t.Errorf("node %d: serial %v, parallel %v", i, sn[i].Position, pn[i].Position)
		}
	}
}

func TestStepReflectsEdgeWeightMutation(t *testing.T) {
	g := triangleGraph()
	s, err := New(g, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Step(0.1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	// Heavier edges raise derived masses; the next step must see them.
	if err := g.SetWeight(0, 5); err != nil {
		t.Fatalf("SetWeight() error = %v", err)
	}
	if err := s.Step(0.1); err != nil {
		t.Fatalf("Step() after mutation error = %v", err)
	}
}

func TestRunHonorsContext(t *testing.T) {
	s, err := New(triangleGraph(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, 10, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if s.Steps() != 0 {
		t.Errorf("Steps() = %d, want 0", s.Steps())
	}
}

func TestStepsCounter(t *testing.T) {
	s, err := New(triangleGraph(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Run(context.Background(), 3, 0.5); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.Steps() != 3 {
		t.Errorf("Steps() = %d, want 3", s.Steps())
	}
}
