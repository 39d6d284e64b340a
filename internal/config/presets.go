package config

import "sort"

func preset(scene string, duration float64, count int, tweak func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Scene = scene
	cfg.Duration = duration
	cfg.Count = count
	if tweak != nil {
		tweak(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"drop": {
		"single": preset("drop", 5, 1, nil),
		"shower": preset("drop", 10, 40, nil),
		"zero_g": preset("drop", 5, 10, func(c *Config) { c.Physics.UseGravity = false }),
	},
	"stack": {
		"tower":  preset("stack", 10, 8, nil),
		"sloppy": preset("stack", 10, 8, func(c *Config) { c.Physics.Iterations = 2 }),
		"tall":   preset("stack", 15, 16, nil),
	},
	"bridge": {
		"rope":  preset("bridge", 10, 10, nil),
		"stiff": preset("bridge", 10, 10, func(c *Config) { c.Physics.Iterations = 40 }),
		"long":  preset("bridge", 15, 30, nil),
	},
	"pool": {
		"break":  preset("pool", 8, 15, func(c *Config) { c.Physics.UseGravity = false }),
		"gravel": preset("pool", 8, 60, nil),
	},
	"random": {
		"sparse":    preset("random", 10, 50, nil),
		"dense":     preset("random", 10, 300, nil),
		"brute":     preset("random", 10, 300, func(c *Config) { c.Physics.UseBroadPhase = false }),
		"shuffled":  preset("random", 10, 100, func(c *Config) { c.Shuffle = ShuffleConfig{Objects: true, Constraints: true} }),
		"low_ideal": preset("random", 10, 100, func(c *Config) { c.Physics.IdealHz = 30 }),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, name string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
