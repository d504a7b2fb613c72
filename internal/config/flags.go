package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagHeightmap  = flag.String("heightmap", "", "Path to elevation raster")
	flagTess       = flag.Int("tess", 0, "Tessellation factor (>= 1)")
	flagBackend    = flag.String("backend", "", "Compute backend: portable, accelerated, device")
	flagScale      = flag.Float64("scale", 0, "Vertical elevation scale")
	flagWorkers    = flag.Int("workers", 0, "Worker count for the accelerated backend")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
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
	if *flagHeightmap != "" {
		cfg.Data.Heightmap = *flagHeightmap
	}
	if *flagTess > 0 {
		cfg.Terrain.TessellationFactor = *flagTess
	}
	if *flagBackend != "" {
		cfg.Terrain.Backend = *flagBackend
	}
	if *flagScale > 0 {
		cfg.Terrain.VerticalScale = float32(*flagScale)
	}
	if *flagWorkers > 0 {
		cfg.Terrain.Workers = *flagWorkers
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
}
