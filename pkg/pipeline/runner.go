package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kineograph/kineograph/pkg/cache"
	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/layout"
	"github.com/kineograph/kineograph/pkg/observability"
	"github.com/kineograph/kineograph/pkg/render"
	"github.com/kineograph/kineograph/pkg/sim"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → simulate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)
	g, err := r.Load(ctx, opts)
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, nodeCount(g), time.Since(loadStart), err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	if graphData, err := graph.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("loaded graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Simulate
	simStart := time.Now()
	observability.Pipeline().OnSimulateStart(ctx, opts.Mode, g.NodeCount(), opts.Steps)
	l, layoutHit, err := r.SimulateWithCacheInfo(ctx, g, opts)
	observability.Pipeline().OnSimulateComplete(ctx, opts.Mode, time.Since(simStart), err)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	result.Layout = l
	result.Stats.SimulateTime = time.Since(simStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"steps", opts.Steps,
		"mode", opts.Mode,
		"duration", result.Stats.SimulateTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the graph from the configured source or generates a demo graph.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Graph, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Demo {
		return graph.FullyConnected(opts.DemoNodes, opts.Seed), nil
	}
	if opts.Source == "" {
		return nil, fmt.Errorf("source or demo is required")
	}
	return graph.ReadFile(opts.Source)
}

// SimulateWithCacheInfo runs the simulation with layout caching and reports
// whether the layout came from cache.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*layout.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	graphData, err := graph.Marshal(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "layout")
			if cached, err := layout.Unmarshal(data); err == nil {
				return cached, true, nil
			}
			// Corrupt entry, fall through to recompute
		} else {
			observability.Cache().OnCacheMiss(ctx, "layout")
		}
	}

	l, err := r.Simulate(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := layout.Marshal(l); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return l, false, nil
}

// Simulate runs the configured number of steps on a clone of g and captures
// the result as a layout. The caller's graph is left untouched.
func (r *Runner) Simulate(ctx context.Context, g *graph.Graph, opts Options) (*layout.Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s, err := sim.New(g.Clone(), opts.SimOptions())
	if err != nil {
		return nil, err
	}
	if err := s.Run(ctx, opts.Steps, opts.TimeStep); err != nil {
		return nil, err
	}

	l, err := layout.FromSimulation(s, opts.TimeStep)
	if err != nil {
		return nil, err
	}
	if opts.Normalize {
		l = l.Normalize(opts.Width, opts.Height, opts.Margin)
	}
	return l, nil
}

// RenderWithCacheInfo renders all requested formats with per-artifact
// caching and reports whether everything came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := layout.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := r.renderFormats(ctx, l, layoutData, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

func (r *Runner) renderFormats(ctx context.Context, l *layout.Layout, layoutJSON []byte, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	renderOpts := render.Options{Detailed: opts.Detailed, Scale: opts.Scale}

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			out[format] = layoutJSON
		case FormatDOT:
			out[format] = []byte(render.ToDOT(l, renderOpts))
		case FormatSVG:
			data, err := render.RenderSVG(ctx, render.ToDOT(l, renderOpts))
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			out[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(ctx, render.ToDOT(l, renderOpts))
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			out[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func nodeCount(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}
