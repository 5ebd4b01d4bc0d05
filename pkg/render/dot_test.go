package render

import (
	"strings"
	"testing"

	"github.com/kineograph/kineograph/pkg/geom"
	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/layout"
)

func sampleLayout() *layout.Layout {
	return &layout.Layout{
		Points: []layout.Point{
			{Index: 0, Label: "hub", Position: geom.FromXY(0, 0), Mass: 2},
			{Index: 1, Position: geom.FromXY(1.5, -2), Mass: 1},
		},
		Edges: []graph.Edge{{Node1: 0, Node2: 1, Weight: 0.75}},
		Min:   geom.FromXY(0, -2),
		Max:   geom.FromXY(1.5, 0),
	}
}

func TestToDOTPinsPositions(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{})

	if !strings.Contains(dot, "layout=neato") {
		t.Error("missing neato engine directive")
	}
	if !strings.Contains(dot, `pos="0,0!"`) {
		t.Error("node 0 position not pinned")
	}
	if !strings.Contains(dot, `pos="1.5,-2!"`) {
		t.Error("node 1 position not pinned")
	}
	if !strings.Contains(dot, `label="hub"`) {
		t.Error("node label missing")
	}
	if !strings.Contains(dot, "n0 -- n1 [weight=0.75]") {
		t.Error("edge missing or wrong weight")
	}
}

func TestToDOTScale(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{Scale: 2})
	if !strings.Contains(dot, `pos="3,-4!"`) {
		t.Errorf("scaled position missing:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{Detailed: true})
	if !strings.Contains(dot, "mass: 2") {
		t.Error("detailed label missing mass")
	}
	// Unlabeled nodes fall back to their index.
	if !strings.Contains(dot, `label="1\nmass: 1"`) {
		t.Errorf("index fallback label missing:\n%s", dot)
	}
}
