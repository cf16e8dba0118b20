package config

import "flag"

// Flags holds CLI overrides registered on a flag set.
type Flags struct {
	Config       *string
	Debug        *bool
	Workers      *int
	LogFile      *string
	NoGenNormals *bool
	NoFlipUVs    *bool
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:       fs.String("config", "", "Path to config file"),
		Debug:        fs.Bool("debug", false, "Enable debug logging"),
		Workers:      fs.Int("workers", 0, "Meshes encoded concurrently"),
		LogFile:      fs.String("log-file", "", "Also write logs to this file"),
		NoGenNormals: fs.Bool("no-gen-normals", false, "Do not generate missing normals"),
		NoFlipUVs:    fs.Bool("no-flip-uvs", false, "Keep texture coordinates as imported"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.Workers > 0 {
		cfg.Encode.Workers = *f.Workers
	}
	if *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if *f.NoGenNormals {
		cfg.Import.GenNormals = false
	}
	if *f.NoFlipUVs {
		cfg.Import.FlipUVs = false
	}
}
