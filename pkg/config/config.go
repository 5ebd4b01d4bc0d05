// Package config loads optional kineograph.toml files. Flags always override
// file values; the file only supplies defaults for repeated invocations.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the config file searched for in the working directory.
const DefaultFileName = "kineograph.toml"

// Simulation holds default simulation parameters.
type Simulation struct {
	Repulsion  float64 `toml:"repulsion"`
	Attraction float64 `toml:"attraction"`
	Damping    float64 `toml:"damping"`
	Mode       string  `toml:"mode"`
	Steps      int     `toml:"steps"`
	TimeStep   float64 `toml:"time_step"`
	Parallel   bool    `toml:"parallel"`
}

// Cache holds cache backend settings.
type Cache struct {
	// Backend selects "file", "redis", or "none". Empty means file.
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`
	// RedisAddr is the host:port of the Redis backend.
	RedisAddr string `toml:"redis_addr"`
	// RedisPassword authenticates against Redis if set.
	RedisPassword string `toml:"redis_password"`
	// RedisDB selects the Redis database index.
	RedisDB int `toml:"redis_db"`
}

// Server holds HTTP API settings.
type Server struct {
	Addr     string `toml:"addr"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// Config is the full file layout.
type Config struct {
	Simulation Simulation `toml:"simulation"`
	Cache      Cache      `toml:"cache"`
	Server     Server     `toml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Simulation: Simulation{
			Repulsion:  1,
			Attraction: 1,
			Damping:    0.5,
			Mode:       "exact",
			Steps:      300,
			TimeStep:   1,
		},
		Cache:  Cache{Backend: "file"},
		Server: Server{Addr: ":8080", MongoDB: "kineograph"},
	}
}

// Load reads a config file and overlays it on the defaults.
// A missing file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads kineograph.toml from the working directory if present.
func LoadDefault() (Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Default(), err
	}
	return Load(filepath.Join(wd, DefaultFileName))
}
