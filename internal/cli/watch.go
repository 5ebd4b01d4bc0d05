package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kineograph/kineograph/pkg/graph"
	"github.com/kineograph/kineograph/pkg/pipeline"
	"github.com/kineograph/kineograph/pkg/sim"
)

// watchCommand creates the watch command, a live terminal preview of the
// simulation settling.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		demo      bool
		demoNodes int
		seed      int64
	)
	opts := c.pipelineDefaults()

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch the simulation settle live in the terminal",
		Long: `Watch runs the force simulation step by step and draws the node
positions in the terminal as they move. Press space to pause, r to restart,
and q to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateMode(opts.Mode); err != nil {
				return err
			}

			var g *graph.Graph
			if len(args) > 0 {
				var err error
				g, err = graph.ReadFile(args[0])
				if err != nil {
					return err
				}
			} else if demo {
				g = graph.FullyConnected(demoNodes, seed)
			} else {
				return fmt.Errorf("either a graph file or --demo is required")
			}

			model, err := newWatchModel(g, opts)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if wm, ok := final.(*watchModel); ok && wm.err != nil {
				return wm.err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "generate a random demo graph")
	cmd.Flags().IntVar(&demoNodes, "nodes", pipeline.DefaultDemoNodes, "node count for --demo")
	cmd.Flags().Int64Var(&seed, "seed", pipeline.DefaultSeed, "random seed for --demo")
	cmd.Flags().Float64Var(&opts.TimeStep, "dt", opts.TimeStep, "integration time step")
	cmd.Flags().Float64Var(&opts.Repulsion, "repulsion", opts.Repulsion, "repulsion constant")
	cmd.Flags().Float64Var(&opts.Attraction, "attraction", opts.Attraction, "attraction constant")
	cmd.Flags().Float64Var(&opts.Damping, "damping", opts.Damping, "velocity damping in [0,1)")
	cmd.Flags().StringVar(&opts.Mode, "mode", opts.Mode, "repulsion mode: exact (default), zoned")

	return cmd
}

// frameInterval is the delay between simulation steps in the live view.
const frameInterval = 50 * time.Millisecond

// tickMsg drives one simulation step.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// watchModel is the bubbletea model for the live simulation view.
type watchModel struct {
	source *graph.Graph // pristine copy used for restarts
	sim    *sim.Simulation
	opts   pipeline.Options

	width  int
	height int
	paused bool
	err    error
}

func newWatchModel(g *graph.Graph, opts pipeline.Options) (*watchModel, error) {
	s, err := sim.New(g.Clone(), opts.SimOptions())
	if err != nil {
		return nil, err
	}
	return &watchModel{
		source: g,
		sim:    s,
		opts:   opts,
		width:  80,
		height: 24,
	}, nil
}

func (m *watchModel) Init() tea.Cmd {
	return tick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused {
				return m, tick()
			}
		case "r":
			s, err := sim.New(m.source.Clone(), m.opts.SimOptions())
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.sim = s
			if m.paused {
				m.paused = false
				return m, tick()
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if m.paused {
			return m, nil
		}
		if err := m.sim.Step(m.opts.TimeStep); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m *watchModel) View() string {
	var b strings.Builder

	status := "running"
	if m.paused {
		status = "paused"
	}
	b.WriteString(StyleTitle.Render("Kineograph"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  step %d · %s · dt %g · %s", m.sim.Steps(), m.opts.Mode, m.opts.TimeStep, status)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  r restart  q quit"))
	b.WriteString("\n")

	canvasH := m.height - 4
	if canvasH < 4 {
		canvasH = 4
	}
	canvasW := m.width
	if canvasW < 10 {
		canvasW = 10
	}
	b.WriteString(m.renderCanvas(canvasW, canvasH))

	return b.String()
}

// renderCanvas projects node positions onto a character grid. Both axes are
// scaled independently; terminal cells are roughly twice as tall as wide, so
// a uniform scale would look squashed anyway.
func (m *watchModel) renderCanvas(w, h int) string {
	g := m.sim.Graph()
	min, max := g.Bounds()
	spanX := max.X - min.X
	spanY := max.Y - min.Y
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = make([]rune, w)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	for _, n := range g.Nodes {
		col := int((n.Position.X - min.X) / spanX * float64(w-1))
		row := int((n.Position.Y - min.Y) / spanY * float64(h-1))
		grid[row][col] = '●'
	}

	dot := lipgloss.NewStyle().Foreground(colorCyan)
	var b strings.Builder
	for _, line := range grid {
		raw := strings.TrimRight(string(line), " ")
		if strings.ContainsRune(raw, '●') {
			raw = strings.ReplaceAll(raw, "●", dot.Render("●"))
		}
		b.WriteString(raw)
		b.WriteString("\n")
	}
	return b.String()
}
