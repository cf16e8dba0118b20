// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Encode  EncodeConfig  `yaml:"encode"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig selects the post-processing applied to imported scenes.
type ImportConfig struct {
	Triangulate bool `yaml:"triangulate"` // Fan-split polygons
	GenNormals  bool `yaml:"gen_normals"` // Generate missing normals
	FlipUVs     bool `yaml:"flip_uvs"`    // V = 1 - V
}

// EncodeConfig holds encoder settings.
type EncodeConfig struct {
	Workers int `yaml:"workers"` // Meshes encoded concurrently (1 = sequential)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the converter's standard settings.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Triangulate: true,
			GenNormals:  true,
			FlipUVs:     true,
		},
		Encode: EncodeConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
