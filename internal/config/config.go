// Package config loads and defaults the YAML run configuration, reading
// and unmarshaling a single YAML file path given on the command line.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ballsim/internal/sim"
)

// RunConfig is the YAML shape of a run-configuration file.
type RunConfig struct {
	NDim            int       `yaml:"ndim"`
	NumBalls        int       `yaml:"num_balls"`
	BallRadius      float64   `yaml:"ball_radius"`
	DomainSize      []float64 `yaml:"domain_size"`
	SimulationTime  float64   `yaml:"simulation_time"`
	Gravity         bool      `yaml:"gravity"`
	BallRestitution float64   `yaml:"ball_restitution"`
	WallRestitution float64   `yaml:"wall_restitution"`
	OutputRate      float64   `yaml:"output_rate"`
	OutputDir       string    `yaml:"output_dir"`
	RandomSeed      *int64    `yaml:"random_seed"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Live struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"live"`
}

// applyDefaults fills in ball_restitution=1, wall_restitution=1,
// output_rate=1, random_seed=100, and output_dir="out" where unset.
func (c *RunConfig) applyDefaults() {
	if c.BallRestitution == 0 {
		c.BallRestitution = 1
	}
	if c.WallRestitution == 0 {
		c.WallRestitution = 1
	}
	if c.OutputRate == 0 {
		c.OutputRate = 1
	}
	if c.RandomSeed == nil {
		defaultSeed := int64(100)
		c.RandomSeed = &defaultSeed
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
}

// Load reads path as YAML and returns a defaulted RunConfig.
func Load(path string) (*RunConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// ToSimConfig narrows a RunConfig down to the fields the kernel needs.
func (c *RunConfig) ToSimConfig() sim.Config {
	return sim.Config{
		NDim:            c.NDim,
		NumBalls:        c.NumBalls,
		BallRadius:      c.BallRadius,
		DomainSize:      c.DomainSize,
		SimulationTime:  c.SimulationTime,
		Gravity:         c.Gravity,
		BallRestitution: c.BallRestitution,
		WallRestitution: c.WallRestitution,
		OutputRate:      c.OutputRate,
		RandomSeed:      *c.RandomSeed,
	}
}
