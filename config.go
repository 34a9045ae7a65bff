package sticky

import (
	"github.com/akmonengine/sticky/surface"
)

const (
	DEFAULT_DRAG               = 0.0022
	DEFAULT_FLUSH_PROBE_HEIGHT = 0.01
	DEFAULT_MAX_CROSSINGS      = 32
	DEFAULT_GROUND_BACK_OFFSET = 0.2
	DEFAULT_GROUND_EXTRA_REACH = 0.4
)

// Config tunes how a body tracks a surface.
type Config struct {
	// Mask selects the layers a body can stick to.
	Mask surface.LayerMask `yaml:"mask"`
	// Drag is the quadratic drag coefficient applied every attached tick:
	// velocity loses |v|² * Drag along -v.
	Drag float64 `yaml:"drag"`
	// FlushProbeHeight lifts the direct crossing probe off the surface.
	FlushProbeHeight float64 `yaml:"flush_probe_height"`
	// MaxCrossings bounds the triangle crossings resolved in a single tick.
	MaxCrossings int `yaml:"max_crossings"`
	// Probes are the border sweep configurations, tried in order.
	Probes []surface.Probe `yaml:"probes"`
	// ProbeNudge lifts sweep rays off the current plane.
	ProbeNudge float64 `yaml:"probe_nudge"`

	Grounding GroundingConfig `yaml:"grounding"`
}

// GroundingConfig shapes the ray cast along the last movement of an airborne body.
type GroundingConfig struct {
	// BackOffset moves the ray origin back along the movement.
	BackOffset float64 `yaml:"back_offset"`
	// ExtraReach is added to the length of the movement.
	ExtraReach float64 `yaml:"extra_reach"`
}

func DefaultConfig() Config {
	return Config{
		Mask:             surface.AllLayers,
		Drag:             DEFAULT_DRAG,
		FlushProbeHeight: DEFAULT_FLUSH_PROBE_HEIGHT,
		MaxCrossings:     DEFAULT_MAX_CROSSINGS,
		Probes:           surface.DefaultProbes(),
		ProbeNudge:       surface.DefaultNudge,
		Grounding: GroundingConfig{
			BackOffset: DEFAULT_GROUND_BACK_OFFSET,
			ExtraReach: DEFAULT_GROUND_EXTRA_REACH,
		},
	}
}

// normalized replaces unusable values with their defaults
func (c Config) normalized() Config {
	if c.Drag < 0 {
		c.Drag = 0
	}
	if c.FlushProbeHeight <= 0 {
		c.FlushProbeHeight = DEFAULT_FLUSH_PROBE_HEIGHT
	}
	if c.MaxCrossings <= 0 {
		c.MaxCrossings = DEFAULT_MAX_CROSSINGS
	}
	if len(c.Probes) == 0 {
		c.Probes = surface.DefaultProbes()
	}
	if c.ProbeNudge <= 0 {
		c.ProbeNudge = surface.DefaultNudge
	}
	if c.Grounding.BackOffset < 0 {
		c.Grounding.BackOffset = DEFAULT_GROUND_BACK_OFFSET
	}
	if c.Grounding.ExtraReach < 0 {
		c.Grounding.ExtraReach = DEFAULT_GROUND_EXTRA_REACH
	}
	return c
}
