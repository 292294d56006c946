package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Distribution != "uniform" {
		t.Errorf("expected distribution uniform, got %s", cfg.Distribution)
	}
	if cfg.Particles <= 0 {
		t.Error("particles should be positive")
	}
	if cfg.NCrit < 1 {
		t.Error("n_crit should be at least 1")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero particles", func(c *Config) { c.Particles = 0 }, false},
		{"negative particles", func(c *Config) { c.Particles = -5 }, false},
		{"zero n_crit", func(c *Config) { c.NCrit = 0 }, false},
		{"zero probes", func(c *Config) { c.Probes = 0 }, false},
		{"near probe distance", func(c *Config) { c.ProbeDistance = 0.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Distribution = "plummer"
	cfg.Particles = 777
	cfg.NCrit = 17
	cfg.Seed = 99
	cfg.Parallel = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("octants")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.NCrit != 1 || cfg.Particles != 8 {
		t.Errorf("octants preset: got %+v", cfg)
	}

	// returned preset is a copy, not the shared table entry
	cfg.Particles = 1234
	if Presets["octants"].Particles == 1234 {
		t.Error("mutating a preset copy changed the table")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s does not validate: %v", name, err)
		}
	}
}
