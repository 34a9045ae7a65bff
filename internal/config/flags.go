package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagGLTF    = flag.String("gltf", "", "Load the scene from a .gltf or .glb file")
	flagShape   = flag.String("shape", "", "Procedural scene: sphere, box or plane")
	flagFlat    = flag.Bool("flat", false, "Use flat-shaded normals")
	flagSteps   = flag.Int("steps", 0, "Number of simulation steps")
	flagWorkers = flag.Int("workers", 0, "Worker goroutines per step")
	flagBodies  = flag.Int("bodies", -1, "Number of sticky bodies")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagGLTF != "" {
		cfg.Scene.GLTF = *flagGLTF
	}
	if *flagShape != "" {
		cfg.Scene.GLTF = ""
		cfg.Scene.Shape = *flagShape
	}
	if *flagFlat {
		cfg.Scene.Flat = true
	}
	if *flagSteps > 0 {
		cfg.Simulation.Steps = *flagSteps
	}
	if *flagWorkers > 0 {
		cfg.Simulation.Workers = *flagWorkers
	}
	if *flagBodies >= 0 {
		cfg.Simulation.Bodies = *flagBodies
	}
}
