package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/kineograph/kineograph/pkg/geom"
	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/observability"
)

var (
	// ErrInvalidMode is returned when Options.Mode is not a known force mode.
	ErrInvalidMode = errors.New("invalid force mode")

	// ErrNonPositiveConstant is returned when a force constant is zero or
	// negative.
	ErrNonPositiveConstant = errors.New("force constant must be positive")

	// ErrNonPositiveTimeStep is returned by Step and Run when dt ≤ 0.
	ErrNonPositiveTimeStep = errors.New("time step must be positive")

	// ErrInvalidDamping is returned when Options.Damping is outside [0, 1).
	ErrInvalidDamping = errors.New("damping must be in [0, 1)")
)

// Mode selects how repulsion is accumulated.
type Mode string

const (
	// ModeExact computes every node pair. O(n²) per step.
	ModeExact Mode = "exact"

	// ModeZoned approximates far-away nodes by zone aggregates. Same-zone
	// pairs stay exact, adjacent zones collapse to minor-zone point masses,
	// non-adjacent zones to a single point mass.
	ModeZoned Mode = "zoned"
)

// Options configures a simulation.
type Options struct {
	// Repulsion scales the pairwise push k·m1·m2/d². Defaults to 1.
	Repulsion float64

	// Attraction scales the spring pull k·w·d along edges. Defaults to 1.
	Attraction float64

	// Damping is the fraction of velocity removed after each integration,
	// in [0, 1). Zero selects the default of 0.5, which settles the system
	// at dt = 1 without overshoot. Set a tiny positive value to get
	// effectively undamped motion.
	Damping float64

	// Mode selects exact or zoned repulsion. Defaults to ModeExact.
	Mode Mode

	// Parallel fans repulsion out over a worker pool.
	Parallel bool

	// Workers is the pool size when Parallel is set. Defaults to NumCPU.
	Workers int

	// Hooks receives step lifecycle events. Defaults to the global registry.
	Hooks observability.SimulationHooks
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// inconsistent values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Repulsion == 0 {
		o.Repulsion = 1
	}
	if o.Attraction == 0 {
		o.Attraction = 1
	}
	if o.Repulsion < 0 || o.Attraction < 0 {
		return fmt.Errorf("%w: repulsion %g, attraction %g", ErrNonPositiveConstant, o.Repulsion, o.Attraction)
	}
	if o.Damping == 0 {
		o.Damping = 0.5
	}
	if o.Damping < 0 || o.Damping >= 1 {
		return fmt.Errorf("%w: %g", ErrInvalidDamping, o.Damping)
	}
	if o.Mode == "" {
		o.Mode = ModeExact
	}
	if o.Mode != ModeExact && o.Mode != ModeZoned {
		return fmt.Errorf("%w: %q", ErrInvalidMode, o.Mode)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Hooks == nil {
		o.Hooks = observability.Simulation()
	}
	return nil
}

// Simulation drives the force layout of one graph. It owns the graph between
// steps and is not safe for concurrent use; Step must not be called
// reentrantly.
type Simulation struct {
	graph *graph.Graph
	opts  Options

	cache  *PairCache
	zones  *ZoneIndex
	masses []float64
	forces []geom.Vector2D
	newPos []geom.Vector2D
	newVel []geom.Vector2D

	steps int
}

// New validates the graph and options and allocates all per-step buffers.
// Graphs whose mass policy yields a non-positive mass for any node are
// rejected here, before the first step.
func New(g *graph.Graph, opts Options) (*Simulation, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate graph: %w", err)
	}
	if _, err := g.Masses(); err != nil {
		return nil, err
	}

	n := g.NodeCount()
	return &Simulation{
		graph:  g,
		opts:   opts,
		cache:  NewPairCache(n),
		zones:  NewZoneIndex(n),
		masses: make([]float64, n),
		forces: make([]geom.Vector2D, n),
		newPos: make([]geom.Vector2D, n),
		newVel: make([]geom.Vector2D, n),
	}, nil
}

// Graph returns the simulation's graph. Mutating node positions or
// velocities between steps is allowed; mutating the node or edge slices
// themselves invalidates the simulation's buffers.
func (s *Simulation) Graph() *graph.Graph { return s.graph }

// Steps returns the number of completed steps.
func (s *Simulation) Steps() int { return s.steps }

// Options returns the validated options the simulation runs with.
func (s *Simulation) Options() Options { return s.opts }

// Forces returns a copy of the net force per node computed by the most
// recent Step. Before the first step every entry is zero.
func (s *Simulation) Forces() []geom.Vector2D {
	out := make([]geom.Vector2D, len(s.forces))
	copy(out, s.forces)
	return out
}

// Step advances the simulation by dt. All forces are computed from a frozen
// snapshot of positions; new positions and velocities are committed only
// after every node has been integrated, so a step either applies in full or,
// on error, not at all.
func (s *Simulation) Step(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: %g", ErrNonPositiveTimeStep, dt)
	}

	positions := s.graph.Positions()

	masses, err := s.graph.Masses()
	if err != nil {
		return err
	}
	copy(s.masses, masses)

	s.cache.Rebuild(positions)
	if s.opts.Mode == ModeZoned {
		s.zones.Rebuild(positions, s.masses)
	}

	s.accumulateForces(positions)

	velocities := make([]geom.Vector2D, len(positions))
	for i, n := range s.graph.Nodes {
		velocities[i] = n.Velocity
	}
	integrate(positions, velocities, s.forces, s.masses, dt, s.opts.Damping, s.newPos, s.newVel)

	for i := range s.graph.Nodes {
		s.graph.Nodes[i].Position = s.newPos[i]
		s.graph.Nodes[i].Velocity = s.newVel[i]
	}
	s.steps++
	s.opts.Hooks.OnStep(s.steps, dt)
	return nil
}

// Run advances the simulation by steps increments of dt, stopping early if
// the context is cancelled.
func (s *Simulation) Run(ctx context.Context, steps int, dt float64) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(dt); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}
