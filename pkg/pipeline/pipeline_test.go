package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kineograph/kineograph/pkg/cache"
	"github.com/kineograph/kineograph/pkg/geom"
	"github.com/kineograph/kineograph/pkg/graph"
)

func demoOptions(formats ...string) Options {
	if len(formats) == 0 {
		formats = []string{FormatJSON}
	}
	return Options{
		Demo:      true,
		DemoNodes: 6,
		Steps:     20,
		Formats:   formats,
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"json", "dot", "svg", "png"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", f, err)
		}
	}
	if err := ValidateFormat("pdf"); err == nil {
		t.Error("ValidateFormat(pdf) = nil, want error")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Demo: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Steps != DefaultSteps {
		t.Errorf("Steps = %d, want %d", opts.Steps, DefaultSteps)
	}
	if opts.TimeStep != DefaultTimeStep {
		t.Errorf("TimeStep = %g, want %g", opts.TimeStep, DefaultTimeStep)
	}
	if opts.DemoNodes != DefaultDemoNodes {
		t.Errorf("DemoNodes = %d, want %d", opts.DemoNodes, DefaultDemoNodes)
	}
	if opts.Repulsion != 1 || opts.Attraction != 1 || opts.Damping != 0.5 {
		t.Errorf("physics defaults = %g/%g/%g", opts.Repulsion, opts.Attraction, opts.Damping)
	}
	if opts.Mode != "exact" {
		t.Errorf("Mode = %q, want exact", opts.Mode)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative steps", Options{Demo: true, Steps: -1}},
		{"negative time step", Options{Demo: true, TimeStep: -0.5}},
		{"bad mode", Options{Demo: true, Mode: "octree"}},
		{"bad damping", Options{Demo: true, Damping: 1.5}},
		{"bad format", Options{Demo: true, Formats: []string{"pdf"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() = nil, want error")
			}
		})
	}
}

func TestExecuteDemo(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), demoOptions(FormatJSON, FormatDOT))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.GraphHash == "" {
		t.Error("GraphHash is empty")
	}
	if result.Stats.NodeCount != 6 {
		t.Errorf("NodeCount = %d, want 6", result.Stats.NodeCount)
	}
	if result.Layout == nil || len(result.Layout.Points) != 6 {
		t.Fatalf("Layout missing or wrong size: %+v", result.Layout)
	}
	if _, ok := result.Artifacts[FormatJSON]; !ok {
		t.Error("missing json artifact")
	}
	dot, ok := result.Artifacts[FormatDOT]
	if !ok {
		t.Fatal("missing dot artifact")
	}
	if !strings.Contains(string(dot), "graph G {") {
		t.Errorf("dot artifact does not look like DOT: %s", dot)
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v, want all misses with null cache", result.CacheInfo)
	}
}

func TestExecuteFromFile(t *testing.T) {
	g, err := graph.New(
		[]graph.Node{{Position: geom.Vector2D{X: 0, Y: 0}}, {Position: geom.Vector2D{X: 1, Y: 0}}, {Position: geom.Vector2D{X: 0, Y: 1}}},
		[]graph.Edge{{Node1: 0, Node2: 1, Weight: 1}, {Node1: 1, Node2: 2, Weight: 1}, {Node1: 0, Node2: 2, Weight: 1}},
		graph.MassDerived,
	)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graph.WriteFile(g, path); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Source:  path,
		Steps:   10,
		Formats: []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 3 {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestLoadRequiresSourceOrDemo(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	if _, err := runner.Load(context.Background(), Options{}); err == nil {
		t.Error("Load() without source or demo = nil, want error")
	}
}

func TestExecuteMissingSource(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		Source:  filepath.Join(t.TempDir(), "nope.json"),
		Formats: []string{FormatJSON},
	})
	if err == nil {
		t.Error("Execute() with missing source = nil, want error")
	}
}

func TestLayoutCacheHitOnSecondRun(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	opts := demoOptions(FormatJSON, FormatDOT)

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first run reported a layout cache hit")
	}

	second, err := runner.Execute(ctx, demoOptions(FormatJSON, FormatDOT))
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run missed the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the artifact cache")
	}

	for i, p := range second.Layout.Points {
		if p.Position != first.Layout.Points[i].Position {
			t.Errorf("point %d position differs between runs", i)
		}
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	if _, err := runner.Execute(ctx, demoOptions()); err != nil {
		t.Fatalf("warm-up Execute() error = %v", err)
	}

	opts := demoOptions()
	opts.Refresh = true
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("refresh run reported a layout cache hit")
	}
}

func TestDifferentOptionsMissCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	if _, err := runner.Execute(ctx, demoOptions()); err != nil {
		t.Fatalf("warm-up Execute() error = %v", err)
	}

	opts := demoOptions()
	opts.Repulsion = 2
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("run with different repulsion hit the layout cache")
	}
}

func TestSimulateLeavesInputGraphUntouched(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	opts := demoOptions()
	g, err := runner.Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	before := g.Nodes[0].Position

	if _, err := runner.Simulate(context.Background(), g, opts); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if g.Nodes[0].Position != before {
		t.Error("Simulate mutated the caller's graph")
	}
}

func TestNormalizeOption(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	opts := demoOptions()
	opts.Normalize = true
	opts.Width = 100
	opts.Height = 100
	opts.Margin = 10

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for i, p := range result.Layout.Points {
		if p.Position.X < 10-1e-9 || p.Position.X > 90+1e-9 ||
			p.Position.Y < 10-1e-9 || p.Position.Y > 90+1e-9 {
			t.Errorf("point %d at %+v outside frame margins", i, p.Position)
		}
	}
}
