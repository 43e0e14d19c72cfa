package config

import (
	"sort"

	"github.com/san-kum/blobsim/internal/sim"
)

var Presets = map[string]map[string]*Config{
	VariantPair: {
		"default": preset(VariantPair, func(p *sim.Params) {}),
		"wobbly": preset(VariantPair, func(p *sim.Params) {
			p.Damping = 0.3
			p.PairStiffness = 0.5
			p.PairDamping = 0.05
		}),
		"stiff": preset(VariantPair, func(p *sim.Params) {
			p.Stiffness = 2.0
			p.Damping = 1.2
			p.CalmThreshold = 0.3
		}),
		"far": preset(VariantPair, func(p *sim.Params) {
			p.Initial = []sim.Vec{{-0.75, 0.4}, {0.75, -0.4}}
		}),
	},
	VariantQuad: {
		"default": preset(VariantQuad, func(p *sim.Params) {}),
		"loose": preset(VariantQuad, func(p *sim.Params) {
			p.Stiffness = 0.5
			p.Damping = 1.0
			p.Restitution = 0.8
		}),
		"snappy": preset(VariantQuad, func(p *sim.Params) {
			p.Stiffness = 1.6
			p.NearDamping.AtRadius = 4.0
			p.CalmThreshold = 0.25
		}),
	},
}

func preset(variant string, tune func(*sim.Params)) *Config {
	cfg, err := DefaultConfig(variant)
	if err != nil {
		panic(err)
	}
	tune(&cfg.Physics)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(variant, name string) *Config {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	cfg, ok := variantPresets[name]
	if !ok {
		return nil
	}
	return cfg.clone()
}

func ListPresets(variant string) []string {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variantPresets))
	for name := range variantPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
