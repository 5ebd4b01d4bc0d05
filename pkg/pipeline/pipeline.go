// Package pipeline provides the core layout pipeline for Kineograph.
//
// This package implements the complete load → simulate → render pipeline
// used by the CLI, the HTTP API, and the live TUI. Centralizing it keeps
// behavior consistent across all entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a graph from a JSON file or generate a demo graph
//  2. Simulate: Run the force simulation for a fixed number of steps
//  3. Render: Emit the layout in various formats (JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "graph.json",
//	    Steps:   300,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kineograph/kineograph/pkg/cache"
	"github.com/kineograph/kineograph/pkg/layout"
	"github.com/kineograph/kineograph/pkg/sim"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultSteps is the number of simulation steps for a one-shot layout.
	// Enough for small and medium graphs to settle with default damping.
	DefaultSteps = 300

	// DefaultTimeStep is the integration time step.
	DefaultTimeStep = 1.0

	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultMargin is the default frame margin in pixels.
	DefaultMargin = 20.0

	// DefaultDemoNodes is the node count for generated demo graphs.
	DefaultDemoNodes = 12

	// DefaultSeed is the default random seed for demo graphs.
	DefaultSeed = int64(42)
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Source is a graph JSON path; Demo generates a fully
	// connected random graph instead.
	Source    string `json:"source,omitempty"`
	Demo      bool   `json:"demo,omitempty"`
	DemoNodes int    `json:"demo_nodes,omitempty"`
	Seed      int64  `json:"seed,omitempty"`

	// Simulation options.
	Steps      int     `json:"steps,omitempty"`
	TimeStep   float64 `json:"time_step,omitempty"`
	Repulsion  float64 `json:"repulsion,omitempty"`
	Attraction float64 `json:"attraction,omitempty"`
	Damping    float64 `json:"damping,omitempty"`
	Mode       string  `json:"mode,omitempty"`
	Parallel   bool    `json:"parallel,omitempty"`

	// Frame options.
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Margin    float64 `json:"margin,omitempty"`
	Normalize bool    `json:"normalize,omitempty"`

	// Render options.
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" bson:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content hash of the loaded graph.
	GraphHash string

	// Layout contains the settled node placements.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	LoadTime     time.Duration
	SimulateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.DemoNodes == 0 {
		o.DemoNodes = DefaultDemoNodes
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}

	if o.Steps == 0 {
		o.Steps = DefaultSteps
	}
	if o.Steps < 0 {
		return fmt.Errorf("steps must be positive, got %d", o.Steps)
	}
	if o.TimeStep == 0 {
		o.TimeStep = DefaultTimeStep
	}
	if o.TimeStep < 0 {
		return fmt.Errorf("time step must be positive, got %g", o.TimeStep)
	}

	// Delegate the physics parameters to the simulation's own validation.
	simOpts := o.SimOptions()
	if err := simOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Repulsion = simOpts.Repulsion
	o.Attraction = simOpts.Attraction
	o.Damping = simOpts.Damping
	o.Mode = string(simOpts.Mode)

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = 1
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// SimOptions converts the pipeline options into simulation options.
func (o *Options) SimOptions() sim.Options {
	return sim.Options{
		Repulsion:  o.Repulsion,
		Attraction: o.Attraction,
		Damping:    o.Damping,
		Mode:       sim.Mode(o.Mode),
		Parallel:   o.Parallel,
	}
}

// LayoutKeyOpts returns cache key options for the simulate stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:       o.Mode,
		Steps:      o.Steps,
		TimeStep:   o.TimeStep,
		Repulsion:  o.Repulsion,
		Attraction: o.Attraction,
		Damping:    o.Damping,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Scale:    o.Scale,
		Detailed: o.Detailed,
	}
}
