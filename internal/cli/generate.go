package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/pipeline"
)

// generateCommand creates the generate command for writing random test
// graphs to disk.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		nodes    int
		seed     int64
		topology string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random graph file",
		Long: `Generate writes a random weighted graph as JSON, suitable as input for
the simulate and watch commands. Node positions are uniform in [-1,1] and
edge weights are uniform in [0.5,1.5].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var g *graph.Graph
			switch topology {
			case "full":
				g = graph.FullyConnected(nodes, seed)
			case "ring":
				g = graph.Ring(nodes, seed)
			default:
				return fmt.Errorf("invalid topology: %s (must be 'full' or 'ring')", topology)
			}

			if err := graph.WriteFile(g, output); err != nil {
				return err
			}
			printSuccess("Generated %s graph", topology)
			printStats(g.NodeCount(), g.EdgeCount(), false)
			printFile(output)
			printNextStep("Lay it out", fmt.Sprintf("kineograph simulate %s", output))
			return nil
		},
	}

	cmd.Flags().IntVarP(&nodes, "nodes", "n", pipeline.DefaultDemoNodes, "number of nodes")
	cmd.Flags().Int64Var(&seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().StringVarP(&topology, "topology", "t", "full", "graph topology: full (default), ring")
	cmd.Flags().StringVarP(&output, "output", "o", "graph.json", "output file")

	return cmd
}
