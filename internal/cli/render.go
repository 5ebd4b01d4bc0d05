package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kineograph/kineograph/pkg/layout"
	"github.com/kineograph/kineograph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string
	formats  []string
	detailed bool
	scale    float64
	noCache  bool
}

// renderCommand creates the render command, which turns a previously saved
// layout JSON into DOT, SVG, or PNG without re-running the simulation.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 1}

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a saved layout without re-simulating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node masses in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "coordinate scale for DOT output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	l, err := layout.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pOpts := pipeline.Options{
		Formats:  opts.formats,
		Detailed: opts.detailed,
		Scale:    opts.scale,
		Logger:   c.Logger,
	}

	track := newProgress(c.Logger)
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, l, pOpts)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	printSuccess("Layout rendered")
	printStats(len(l.Points), len(l.Edges), cached)

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := fmt.Sprintf("%s.%s", base, format)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
