package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kineograph.toml")
	content := `
[simulation]
repulsion = 2.5
mode = "zoned"
steps = 50

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Simulation.Repulsion != 2.5 || cfg.Simulation.Mode != "zoned" || cfg.Simulation.Steps != 50 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	// Unset values keep defaults.
	if cfg.Simulation.Attraction != 1 || cfg.Simulation.Damping != 0.5 {
		t.Errorf("defaults lost: %+v", cfg.Simulation)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want default :8080", cfg.Server.Addr)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[simulation\nrepulsion="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of malformed file succeeded, want error")
	}
}
