// Package render turns a computed layout into Graphviz DOT and rasterized
// images. Node positions are pinned, so Graphviz draws the force layout
// as-is instead of running its own placement.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kineograph/kineograph/pkg/layout"
)

// Options configures DOT emission.
type Options struct {
	// Detailed includes index and mass in node labels.
	// When false, only the label (or index) is shown.
	Detailed bool

	// Scale multiplies layout coordinates into Graphviz inches.
	// Defaults to 1 when zero.
	Scale float64
}

// ToDOT converts a layout to Graphviz DOT with pinned node positions.
// The resulting string can be rendered with [RenderSVG] or [RenderPNG], or
// any external Graphviz using the neato engine (pinned positions require it).
func ToDOT(l *layout.Layout, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, p := range l.Points {
		attrs := fmtAttrs(p, opts.Detailed, scale)
		fmt.Fprintf(&buf, "  n%d [%s];\n", p.Index, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  n%d -- n%d [weight=%g];\n", e.Node1, e.Node2, e.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(p layout.Point, detailed bool, scale float64) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(p, detailed)),
		fmt.Sprintf("pos=\"%g,%g!\"", p.Position.X*scale, p.Position.Y*scale),
	}
	if p.Radius > 0 {
		attrs = append(attrs, fmt.Sprintf("width=%g", p.Radius*scale))
	}
	return attrs
}

func fmtLabel(p layout.Point, detailed bool) string {
	label := p.Label
	if label == "" {
		label = fmt.Sprintf("%d", p.Index)
	}
	if detailed {
		label = fmt.Sprintf("%s\nmass: %g", label, p.Mass)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
