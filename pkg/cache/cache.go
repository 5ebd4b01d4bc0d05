// Package cache provides content-addressed caching for layout pipeline
// results. Keys are derived from graph content and simulation parameters, so
// identical requests hit the cache regardless of where they originate.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Layouts are pure functions of their
// inputs, so they could live forever; the TTLs bound disk usage.
const (
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by the file, Redis, and null
// implementations.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// LayoutKeyOpts captures every simulation parameter that changes the layout
// result. Two runs with equal graph hash and equal opts are interchangeable.
type LayoutKeyOpts struct {
	Mode       string
	Steps      int
	TimeStep   float64
	Repulsion  float64
	Attraction float64
	Damping    float64
}

// ArtifactKeyOpts captures every render parameter that changes the output
// bytes.
type ArtifactKeyOpts struct {
	Format   string
	Scale    float64
	Detailed bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// GraphKey generates a key for a parsed, validated graph.
	GraphKey(source string, massPolicy string) string

	// LayoutKey generates a key for a simulated layout.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a stage prefix plus a SHA-256
// hash of the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a parsed, validated graph.
func (k *DefaultKeyer) GraphKey(source string, massPolicy string) string {
	return hashKey("graph", source, massPolicy)
}

// LayoutKey generates a key for a simulated layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
