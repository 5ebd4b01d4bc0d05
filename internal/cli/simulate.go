package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kineograph/kineograph/pkg/pipeline"
	"github.com/kineograph/kineograph/pkg/sim"
)

// simulateOpts holds the command-line flags for the simulate command.
type simulateOpts struct {
	output    string  // output file path (or base path for multiple formats)
	demo      bool    // generate a demo graph instead of reading a file
	demoNodes int     // node count for demo graphs
	seed      int64   // random seed for demo graphs
	noCache   bool    // disable the layout cache
	refresh   bool    // recompute even when a cached layout exists
	detailed  bool    // show node masses in rendered labels
	scale     float64 // coordinate scale factor for DOT output
	normalize bool    // fit the layout into the output frame
	width     float64 // frame width in pixels
	height    float64 // frame height in pixels
	margin    float64 // frame margin in pixels

	pipeline pipeline.Options // simulation parameters seeded from config
}

// simulateCommand creates the simulate command, the main entry point for
// one-shot layout computation.
func (c *CLI) simulateCommand() *cobra.Command {
	var formatsStr string
	opts := simulateOpts{
		normalize: true,
		width:     pipeline.DefaultWidth,
		height:    pipeline.DefaultHeight,
		margin:    pipeline.DefaultMargin,
		scale:     1,
		pipeline:  c.pipelineDefaults(),
	}

	cmd := &cobra.Command{
		Use:   "simulate [file]",
		Short: "Compute a force-directed layout and render it",
		Long: `Simulate runs the force simulation on a graph until it settles, then
renders the resulting layout. With --demo a random fully connected graph is
generated instead of reading a file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" && !opts.demo {
				return fmt.Errorf("either a graph file or --demo is required")
			}
			opts.pipeline.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.pipeline.Formats); err != nil {
				return err
			}
			if err := validateMode(opts.pipeline.Mode); err != nil {
				return err
			}
			return c.runSimulate(cmd.Context(), input, &opts)
		},
	}

	p := &opts.pipeline
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "generate a random demo graph")
	cmd.Flags().IntVar(&opts.demoNodes, "nodes", pipeline.DefaultDemoNodes, "node count for --demo")
	cmd.Flags().Int64Var(&opts.seed, "seed", pipeline.DefaultSeed, "random seed for --demo")
	cmd.Flags().IntVar(&p.Steps, "steps", p.Steps, "number of simulation steps")
	cmd.Flags().Float64Var(&p.TimeStep, "dt", p.TimeStep, "integration time step")
	cmd.Flags().Float64Var(&p.Repulsion, "repulsion", p.Repulsion, "repulsion constant")
	cmd.Flags().Float64Var(&p.Attraction, "attraction", p.Attraction, "attraction constant")
	cmd.Flags().Float64Var(&p.Damping, "damping", p.Damping, "velocity damping in [0,1)")
	cmd.Flags().StringVar(&p.Mode, "mode", p.Mode, "repulsion mode: exact (default), zoned")
	cmd.Flags().BoolVar(&p.Parallel, "parallel", p.Parallel, "compute repulsion on all CPUs")
	cmd.Flags().BoolVar(&opts.normalize, "normalize", opts.normalize, "fit the layout into the output frame")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().Float64Var(&opts.margin, "margin", opts.margin, "frame margin")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node masses in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "coordinate scale for DOT output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached layout exists")

	return cmd
}

// runSimulate executes the pipeline and writes one file per format.
func (c *CLI) runSimulate(ctx context.Context, input string, opts *simulateOpts) error {
	logger := c.Logger

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pOpts := opts.pipeline
	pOpts.Source = input
	pOpts.Demo = opts.demo
	pOpts.DemoNodes = opts.demoNodes
	pOpts.Seed = opts.seed
	pOpts.Normalize = opts.normalize
	pOpts.Width = opts.width
	pOpts.Height = opts.height
	pOpts.Margin = opts.margin
	pOpts.Detailed = opts.detailed
	pOpts.Scale = opts.scale
	pOpts.Refresh = opts.refresh
	pOpts.Logger = logger

	spinner := newSpinnerWithContext(ctx, "Simulating layout")
	spinner.Start()

	track := newProgress(logger)
	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Simulation failed: %v", err))
		return err
	}
	spinner.Stop()
	track.done(fmt.Sprintf("Settled %d nodes over %d steps", result.Stats.NodeCount, pOpts.Steps))

	printSuccess("Layout computed")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)

	base := basePath(opts.output, input)
	for _, format := range pOpts.Formats {
		path := fmt.Sprintf("%s.%s", base, format)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if !opts.demo && len(pOpts.Formats) == 1 && pOpts.Formats[0] == pipeline.FormatJSON {
		printNextStep("Render it", fmt.Sprintf("kineograph simulate %s -f svg", input))
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// Demo runs without an explicit output default to "layout".
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "layout"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// validateMode checks the --mode flag early so errors surface before the
// spinner starts.
func validateMode(mode string) error {
	switch sim.Mode(mode) {
	case sim.ModeExact, sim.ModeZoned, "":
		return nil
	default:
		return fmt.Errorf("invalid mode: %s (must be 'exact' or 'zoned')", mode)
	}
}
