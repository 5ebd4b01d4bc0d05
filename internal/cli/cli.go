// Package cli implements the kineograph command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kineograph/kineograph/pkg/buildinfo"
	"github.com/kineograph/kineograph/pkg/cache"
	"github.com/kineograph/kineograph/pkg/config"
	"github.com/kineograph/kineograph/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "kineograph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger. Configuration is
// loaded from kineograph.toml in the working directory if present; flags
// override file values.
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := config.LoadDefault()
	c := &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}
	if err != nil {
		c.Logger.Warn("config load failed, using defaults", "err", err)
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "kineograph",
		Short:        "Kineograph lays out graphs with force-directed simulation",
		Long:         `Kineograph is a CLI tool for computing 2D force-directed layouts of weighted graphs, with exact and zone-approximated repulsion, live terminal preview, and SVG/PNG export.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. The cache backend comes
// from configuration; noCache forces the null cache regardless.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/kineograph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// pipelineDefaults seeds pipeline options from the configuration file.
func (c *CLI) pipelineDefaults() pipeline.Options {
	simCfg := c.Config.Simulation
	return pipeline.Options{
		Steps:      simCfg.Steps,
		TimeStep:   simCfg.TimeStep,
		Repulsion:  simCfg.Repulsion,
		Attraction: simCfg.Attraction,
		Damping:    simCfg.Damping,
		Mode:       simCfg.Mode,
		Parallel:   simCfg.Parallel,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
