// Package config handles wavesim configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/wavesim/internal/logger"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/medium"
	"github.com/Faultbox/wavesim/pkg/octree"
	"github.com/Faultbox/wavesim/pkg/scene"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config holds all wavesim settings.
type Config struct {
	Scene      scene.Scene      `yaml:"scene"`
	Medium     MediumConfig     `yaml:"medium"`
	Octree     OctreeConfig     `yaml:"octree"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// MediumConfig holds decomposition settings.
type MediumConfig struct {
	GridSize math.Vec3 `yaml:"grid_size"`
	// Boundary is the simulated volume; nil uses the mesh bounding box.
	Boundary      *math.AABB `yaml:"boundary"`
	Method        string     `yaml:"method"`
	Seed          int64      `yaml:"seed"`
	MaxPartitions int        `yaml:"max_partitions"`
	MaxCells      int        `yaml:"max_cells"`
	Verify        bool       `yaml:"verify"`
}

// OctreeConfig holds spatial index settings. A zero smallest subdivision
// uses the medium grid size.
type OctreeConfig struct {
	SmallestSubdivision math.Vec3 `yaml:"smallest_subdivision"`
	MaxDepth            int       `yaml:"max_depth"`
}

// ResolutionConfig holds simulation cell sizing settings.
type ResolutionConfig struct {
	MaxFrequency  float64 `yaml:"max_frequency"`
	CellTolerance float64 `yaml:"cell_tolerance"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"` // console or json
	File   logger.FileConfig `yaml:"file"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	// Textfile, if set, receives the Prometheus metrics after a run.
	Textfile string `yaml:"textfile"`
}

// Default returns a Config with sensible default values: a solid half-metre
// cube in a 3 m room sampled with a 1 m grid.
func Default() *Config {
	room := math.NewAABB(math.Splat(-1), math.Splat(2))
	return &Config{
		Scene: scene.Scene{
			Name: "cube",
			Shapes: []scene.Shape{{
				Kind:   scene.Box,
				Center: math.Splat(0.5),
				Size:   math.Splat(0.5),
			}},
			Cells: scene.DefaultCells,
		},
		Medium: MediumConfig{
			GridSize: math.Splat(1),
			Boundary: &room,
			Method:   medium.Systematic.String(),
			Verify:   true,
		},
		Resolution: ResolutionConfig{
			MaxFrequency:  1000,
			CellTolerance: 0.1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	g := c.Medium.GridSize
	if !(g.X > 0 && g.Y > 0 && g.Z > 0) {
		add("medium.grid_size must be positive, got %v", g)
	}
	if b := c.Medium.Boundary; b != nil && !b.Min.Less(b.Max) {
		add("medium.boundary must have volume, got %v", *b)
	}
	if _, err := medium.ParseMethod(c.Medium.Method); err != nil {
		add("medium.method: %v", err)
	}
	if c.Medium.MaxPartitions < 0 {
		add("medium.max_partitions must not be negative")
	}
	if c.Octree.MaxDepth < 0 {
		add("octree.max_depth must not be negative")
	}
	if !(c.Resolution.MaxFrequency > 0) {
		add("resolution.max_frequency must be positive, got %v", c.Resolution.MaxFrequency)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level: %v", err)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		add("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return errs
}

// OctreeOptions returns the octree build settings.
func (c *Config) OctreeOptions(log *zap.Logger) octree.Config {
	smallest := c.Octree.SmallestSubdivision
	if smallest == (math.Vec3{}) {
		smallest = c.Medium.GridSize
	}
	return octree.Config{
		SmallestSubdivision: smallest,
		MaxDepth:            c.Octree.MaxDepth,
		Logger:              log,
	}
}

// MediumOptions returns the decomposition settings using tree as the
// spatial index, and the medium definition, which is nil when no boundary
// is configured.
func (c *Config) MediumOptions(log *zap.Logger, tree *octree.Octree) (medium.Config, *medium.Definition, error) {
	method, err := medium.ParseMethod(c.Medium.Method)
	if err != nil {
		return medium.Config{}, nil, err
	}
	cfg := medium.Config{
		Method:        method,
		Seed:          c.Medium.Seed,
		MaxPartitions: c.Medium.MaxPartitions,
		MaxCells:      c.Medium.MaxCells,
		Verify:        c.Medium.Verify,
		Octree:        tree,
		Logger:        log,
	}
	var def *medium.Definition
	if c.Medium.Boundary != nil {
		def = &medium.Definition{Boundary: *c.Medium.Boundary}
	}
	return cfg, def, nil
}

// LoggerOptions returns the logger settings. The caller picks the console
// writer.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level: c.Logging.Level,
		JSON:  c.Logging.Format == "json",
		File:  c.Logging.File,
	}
}
