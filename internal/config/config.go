// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// TerrainConfig holds mesh generation settings. These values are snapshotted
// into an immutable build configuration on every rebuild; nothing reads them
// mid-build.
type TerrainConfig struct {
	TessellationFactor int     `yaml:"tessellation_factor"`
	Backend            string  `yaml:"backend"` // portable, accelerated, device
	VerticalScale      float32 `yaml:"vertical_scale"`
	Workers            int     `yaml:"workers"` // accelerated backend; 0 = all cores
}

// DataConfig holds input file paths.
type DataConfig struct {
	Heightmap string `yaml:"heightmap"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Terrain: TerrainConfig{
			TessellationFactor: 1,
			Backend:            "portable",
			VerticalScale:      0.3,
			Workers:            0,
		},
		Data: DataConfig{
			Heightmap: "heightmap.png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
