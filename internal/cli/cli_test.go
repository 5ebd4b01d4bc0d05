package cli

import (
	"io"
	"path/filepath"
	"reflect"
	"testing"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	// Run in a temp dir so a stray kineograph.toml doesn't leak in.
	t.Chdir(t.TempDir())
	return New(io.Discard, LogInfo)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := testCLI(t).RootCommand()

	want := map[string]bool{
		"simulate":   false,
		"render":     false,
		"generate":   false,
		"watch":      false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"json", []string{"json"}},
		{"svg,png,dot", []string{"svg", "png", "dot"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output string
		input  string
		want   string
	}{
		{"", "graph.json", "graph"},
		{"", "", "layout"},
		{"out.svg", "graph.json", "out"},
		{"out", "graph.json", "out"},
		{"dir/out.png", "graph.json", "dir/out"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestValidateMode(t *testing.T) {
	for _, mode := range []string{"", "exact", "zoned"} {
		if err := validateMode(mode); err != nil {
			t.Errorf("validateMode(%q) = %v, want nil", mode, err)
		}
	}
	if err := validateMode("octree"); err == nil {
		t.Error("validateMode(octree) = nil, want error")
	}
}

func TestCacheDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if got != filepath.Join(dir, appName) {
		t.Errorf("cacheDir() = %q, want %q", got, filepath.Join(dir, appName))
	}
}

func TestPipelineDefaultsFromConfig(t *testing.T) {
	c := testCLI(t)
	opts := c.pipelineDefaults()
	if opts.Steps != 300 || opts.TimeStep != 1 || opts.Damping != 0.5 {
		t.Errorf("pipelineDefaults() = %+v", opts)
	}
	if opts.Mode != "exact" {
		t.Errorf("Mode = %q, want exact", opts.Mode)
	}
}
