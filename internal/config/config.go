// Package config handles the surfer configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/akmonengine/sticky"
	"github.com/akmonengine/sticky/collider"
	"github.com/go-gl/mathgl/mgl64"
)

// Shapes that can be generated when no glTF scene is given.
const (
	ShapeSphere = "sphere"
	ShapeBox    = "box"
	ShapePlane  = "plane"
)

// Config holds all surfer settings.
type Config struct {
	Surface    sticky.Config    `yaml:"surface"`
	Gravity    sticky.Gravity   `yaml:"gravity"`
	Simulation SimulationConfig `yaml:"simulation"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds the frame loop and collision world settings.
type SimulationConfig struct {
	Dt       float64 `yaml:"dt"`
	Steps    int     `yaml:"steps"`
	Workers  int     `yaml:"workers"`
	LogEvery int     `yaml:"log_every"` // steps between position reports, 0 disables

	CellSize float64 `yaml:"cell_size"`
	NumCells int     `yaml:"num_cells"`

	Bodies      int     `yaml:"bodies"`
	SpawnHeight float64 `yaml:"spawn_height"` // above the scene bounds
	Speed       float64 `yaml:"speed"`        // surface speed given on first attach
}

// SceneConfig selects the collision geometry.
type SceneConfig struct {
	GLTF  string  `yaml:"gltf"`  // .gltf or .glb path, overrides Shape
	Shape string  `yaml:"shape"` // sphere, box or plane
	Size  float64 `yaml:"size"`  // radius, half extent or plane width
	Flat  bool    `yaml:"flat"`  // drop shared vertex normals
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	gravity := sticky.NewGravity()
	gravity.Constant = mgl64.Vec3{0, -9.81, 0}

	return &Config{
		Surface: sticky.DefaultConfig(),
		Gravity: *gravity,
		Simulation: SimulationConfig{
			Dt:          1.0 / 60.0,
			Steps:       600,
			Workers:     sticky.DEFAULT_WORKERS,
			LogEvery:    60,
			CellSize:    collider.DEFAULT_CELL_SIZE,
			NumCells:    collider.DEFAULT_NUM_CELLS,
			Bodies:      4,
			SpawnHeight: 1,
			Speed:       3,
		},
		Scene: SceneConfig{
			Shape: ShapeSphere,
			Size:  5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the surfer cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Simulation.Dt <= 0 {
		errs = append(errs, fmt.Errorf("simulation.dt must be positive, got %v", c.Simulation.Dt))
	}
	if c.Simulation.Steps < 0 {
		errs = append(errs, fmt.Errorf("simulation.steps must not be negative, got %d", c.Simulation.Steps))
	}
	if c.Simulation.Bodies < 0 {
		errs = append(errs, fmt.Errorf("simulation.bodies must not be negative, got %d", c.Simulation.Bodies))
	}
	if c.Scene.GLTF == "" {
		switch c.Scene.Shape {
		case ShapeSphere, ShapeBox, ShapePlane:
		default:
			errs = append(errs, fmt.Errorf("scene.shape %q is not one of sphere, box, plane", c.Scene.Shape))
		}
		if c.Scene.Size <= 0 {
			errs = append(errs, fmt.Errorf("scene.size must be positive, got %v", c.Scene.Size))
		}
	}

	return errors.Join(errs...)
}
