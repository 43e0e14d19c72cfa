package config

import (
	"fmt"
	"os"

	"github.com/san-kum/blobsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	VariantPair = "pair"
	VariantQuad = "quad"
)

const (
	DefaultTickHz         = 60
	DefaultTheme          = "lagoon"
	DefaultDataDir        = "data"
	DefaultListen         = "127.0.0.1:8080"
	DefaultBroadcastEvery = 2
	DefaultLogLevel       = "info"
)

var Variants = []string{VariantPair, VariantQuad}

type Config struct {
	Variant string     `yaml:"variant"`
	Physics sim.Params `yaml:"physics"`
	Host    HostConfig `yaml:"host"`
}

type HostConfig struct {
	TickHz         int    `yaml:"tick_hz"`
	Theme          string `yaml:"theme"`
	DataDir        string `yaml:"data_dir"`
	Listen         string `yaml:"listen"`
	BroadcastEvery int    `yaml:"broadcast_every"`
	LogLevel       string `yaml:"log_level"`
}

// ParamsFor returns the built-in physics of a variant.
func ParamsFor(variant string) (sim.Params, error) {
	switch variant {
	case VariantPair, "":
		return sim.PairParams(), nil
	case VariantQuad:
		return sim.QuadParams(), nil
	}
	return sim.Params{}, fmt.Errorf("unknown variant %q (want %s or %s)", variant, VariantPair, VariantQuad)
}

func DefaultConfig(variant string) (*Config, error) {
	p, err := ParamsFor(variant)
	if err != nil {
		return nil, err
	}
	if variant == "" {
		variant = VariantPair
	}
	return &Config{
		Variant: variant,
		Physics: p,
		Host: HostConfig{
			TickHz:         DefaultTickHz,
			Theme:          DefaultTheme,
			DataDir:        DefaultDataDir,
			Listen:         DefaultListen,
			BroadcastEvery: DefaultBroadcastEvery,
			LogLevel:       DefaultLogLevel,
		},
	}, nil
}

// Load reads a YAML file. Fields the file leaves out keep the defaults of
// the variant it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var head struct {
		Variant string `yaml:"variant"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg, err := DefaultConfig(head.Variant)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
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

// Params returns a copy of the physics safe to hand to sim.New.
func (c *Config) Params() sim.Params {
	p := c.Physics
	p.Initial = append([]sim.Vec(nil), c.Physics.Initial...)
	return p
}

func (c *Config) Validate() error {
	if _, err := ParamsFor(c.Variant); err != nil {
		return err
	}
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	if c.Host.TickHz <= 0 {
		return fmt.Errorf("host.tick_hz must be positive, got %d", c.Host.TickHz)
	}
	if c.Host.BroadcastEvery <= 0 {
		return fmt.Errorf("host.broadcast_every must be positive, got %d", c.Host.BroadcastEvery)
	}
	return nil
}

func (c *Config) clone() *Config {
	cp := *c
	cp.Physics = c.Params()
	return &cp
}
