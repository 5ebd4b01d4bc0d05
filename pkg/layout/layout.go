// Package layout converts a settled simulation into a serializable result
// and maps simulation coordinates onto a target frame for rendering.
package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kineograph/kineograph/pkg/geom"
	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/sim"
)

// Point is one node's final placement.
type Point struct {
	Index    int           `json:"index" bson:"index"`
	Label    string        `json:"label,omitempty" bson:"label,omitempty"`
	Position geom.Vector2D `json:"position" bson:"position"`
	Mass     float64       `json:"mass" bson:"mass"`
	Radius   float64       `json:"radius,omitempty" bson:"radius,omitempty"`
}

// Stats records how the layout was produced.
type Stats struct {
	Steps      int     `json:"steps" bson:"steps"`
	TimeStep   float64 `json:"time_step" bson:"time_step"`
	Mode       string  `json:"mode" bson:"mode"`
	Repulsion  float64 `json:"repulsion" bson:"repulsion"`
	Attraction float64 `json:"attraction" bson:"attraction"`
}

// Layout is the serializable result of a simulation run: final node
// placements, the edges that shaped them, the bounding box, and run stats.
type Layout struct {
	Points []Point       `json:"points" bson:"points"`
	Edges  []graph.Edge  `json:"edges" bson:"edges"`
	Min    geom.Vector2D `json:"min" bson:"min"`
	Max    geom.Vector2D `json:"max" bson:"max"`
	Stats  Stats         `json:"stats" bson:"stats"`
}

// FromSimulation captures the current state of a simulation as a Layout.
// The stats record the simulation's configuration and completed step count.
func FromSimulation(s *sim.Simulation, dt float64) (*Layout, error) {
	opts := s.Options()
	g := s.Graph()
	masses, err := g.Masses()
	if err != nil {
		return nil, fmt.Errorf("layout masses: %w", err)
	}

	min, max := g.Bounds()
	l := &Layout{
		Points: make([]Point, g.NodeCount()),
		Edges:  append([]graph.Edge(nil), g.Edges...),
		Min:    min,
		Max:    max,
		Stats: Stats{
			Steps:      s.Steps(),
			TimeStep:   dt,
			Mode:       string(opts.Mode),
			Repulsion:  opts.Repulsion,
			Attraction: opts.Attraction,
		},
	}
	for i, n := range g.Nodes {
		l.Points[i] = Point{
			Index:    i,
			Label:    n.Label,
			Position: n.Position,
			Mass:     masses[i],
			Radius:   n.Radius,
		}
	}
	return l, nil
}

// Normalize returns a copy with all positions mapped into a width×height
// frame with the given margin, preserving aspect ratio. A layout whose nodes
// all coincide is centered in the frame.
func (l *Layout) Normalize(width, height, margin float64) *Layout {
	out := &Layout{
		Points: make([]Point, len(l.Points)),
		Edges:  append([]graph.Edge(nil), l.Edges...),
		Min:    geom.FromXY(0, 0),
		Max:    geom.FromXY(width, height),
		Stats:  l.Stats,
	}
	copy(out.Points, l.Points)

	span := l.Max.Sub(l.Min)
	innerW := width - 2*margin
	innerH := height - 2*margin

	scale := 0.0
	if span.X > 0 && innerW/span.X > 0 {
		scale = innerW / span.X
	}
	if span.Y > 0 {
		sy := innerH / span.Y
		if scale == 0 || sy < scale {
			scale = sy
		}
	}

	center := l.Min.Add(span.Scale(0.5))
	frameCenter := geom.FromXY(width/2, height/2)
	for i, p := range out.Points {
		offset := p.Position.Sub(center).Scale(scale)
		out.Points[i].Position = frameCenter.Add(offset)
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Layout.
func Unmarshal(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	return &l, nil
}

// WriteFile writes a Layout to a JSON file with 0644 permissions.
func WriteFile(l *Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
