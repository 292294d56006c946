package config

var Presets = map[string]*Config{
	"octants": {
		Distribution: "octants", Particles: 8, NCrit: 1,
		Probes: DefaultProbes, ProbeDistance: DefaultProbeDistance,
	},
	"uniform-small": {
		Distribution: "uniform", Particles: 100, NCrit: 10, Seed: 1,
		Probes: DefaultProbes, ProbeDistance: DefaultProbeDistance,
	},
	"cluster": {
		Distribution: "plummer", Particles: 5000, NCrit: 32, Seed: 1,
		Probes: DefaultProbes, ProbeDistance: DefaultProbeDistance,
	},
	"stress": {
		Distribution: "uniform", Particles: 100000, NCrit: 64, Seed: 1,
		Parallel: true, Probes: 8, ProbeDistance: DefaultProbeDistance,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	copied := *cfg
	return &copied
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
