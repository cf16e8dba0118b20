package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Import.Triangulate {
		t.Error("expected triangulate to be true by default")
	}
	if !cfg.Import.GenNormals {
		t.Error("expected gen_normals to be true by default")
	}
	if !cfg.Import.FlipUVs {
		t.Error("expected flip_uvs to be true by default")
	}
	if cfg.Encode.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", cfg.Encode.Workers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cmodel.yaml")

	yamlContent := `
import:
  gen_normals: false
  flip_uvs: false

encode:
  workers: 8

logging:
  level: "debug"
  log_file: "cmodelc.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Import.Triangulate {
		t.Error("expected triangulate to keep its default")
	}
	if cfg.Import.GenNormals {
		t.Error("expected gen_normals to be false")
	}
	if cfg.Import.FlipUVs {
		t.Error("expected flip_uvs to be false")
	}
	if cfg.Encode.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Encode.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "cmodelc.log" {
		t.Errorf("expected log file 'cmodelc.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
encode:
  workers: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/cmodel.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "cmodel.yaml"), []byte("encode:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find cmodel.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "workers flag",
			args: []string{"-workers", "6"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Encode.Workers != 6 {
					t.Errorf("expected 6 workers, got %d", cfg.Encode.Workers)
				}
			},
		},
		{
			name: "import switches",
			args: []string{"-no-gen-normals", "-no-flip-uvs"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.GenNormals || cfg.Import.FlipUVs {
					t.Error("expected normals generation and UV flip to be disabled")
				}
				if !cfg.Import.Triangulate {
					t.Error("triangulate should not be affected")
				}
			},
		},
		{
			name: "log file flag",
			args: []string{"-log-file", "out.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file out.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet(tt.name, flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			cfg := Default()
			flags.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cmodel.yaml")

	yamlContent := `
encode:
  workers: 3
logging:
  level: "warn"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("priority", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-workers", "5"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Workers from the flag, level from the file.
	if cfg.Encode.Workers != 5 {
		t.Errorf("expected 5 workers from flag, got %d", cfg.Encode.Workers)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn from file, got %s", cfg.Logging.Level)
	}
}

func TestLoadClampsWorkers(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cmodel.yaml")
	if err := os.WriteFile(configPath, []byte("encode:\n  workers: -2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("clamp", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Encode.Workers != 1 {
		t.Errorf("expected workers clamped to 1, got %d", cfg.Encode.Workers)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cmodel.yaml")

	cfg := Default()
	cfg.Encode.Workers = 4
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := &Config{}
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Encode.Workers != 4 || !loaded.Import.FlipUVs {
		t.Errorf("unexpected round trip: %+v", loaded)
	}
}
