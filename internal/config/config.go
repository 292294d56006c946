package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles     = 1000
	DefaultNCrit         = 10
	DefaultProbes        = 16
	DefaultProbeDistance = 10.0
)

type Config struct {
	Distribution  string  `yaml:"distribution"`
	Particles     int     `yaml:"particles"`
	NCrit         int     `yaml:"n_crit"`
	Seed          int64   `yaml:"seed"`
	Workers       int     `yaml:"workers"`
	Parallel      bool    `yaml:"parallel"`
	Probes        int     `yaml:"probes"`
	ProbeDistance float64 `yaml:"probe_distance"`
}

func DefaultConfig() *Config {
	return &Config{
		Distribution:  "uniform",
		Particles:     DefaultParticles,
		NCrit:         DefaultNCrit,
		Probes:        DefaultProbes,
		ProbeDistance: DefaultProbeDistance,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the sweep cannot run against.
func (c *Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("particles must be positive, got %d", c.Particles)
	}
	if c.NCrit < 1 {
		return fmt.Errorf("n_crit must be at least 1, got %d", c.NCrit)
	}
	if c.Probes < 1 {
		return fmt.Errorf("probes must be positive, got %d", c.Probes)
	}
	if c.ProbeDistance < 3 {
		return fmt.Errorf("probe_distance must be at least 3 root radii, got %f", c.ProbeDistance)
	}
	return nil
}
