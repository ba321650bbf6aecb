// Package config loads run configurations for the sturm command.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/sturm/eigen"
	"github.com/katalvlaran/sturm/equation"
	"github.com/katalvlaran/sturm/ode"
)

// Problem kinds.
const (
	KindSturmLiouville = "sturm_liouville"
	KindHarmonic       = "harmonic"
)

// ErrUnknownProblem indicates a problem kind other than the known ones.
var ErrUnknownProblem = errors.New("config: unknown problem kind")

// Config is the on-disk run configuration.
type Config struct {
	Problem    ProblemConfig    `yaml:"problem"`
	Search     SearchConfig     `yaml:"search"`
	Integrator IntegratorConfig `yaml:"integrator"`
	Output     OutputConfig     `yaml:"output"`
}

// ProblemConfig selects the operator.
type ProblemConfig struct {
	Kind   string  `yaml:"kind"`   // sturm_liouville, harmonic
	M      float64 `yaml:"m"`      // sturm_liouville parameter
	Length float64 `yaml:"length"` // harmonic interval length
	Count  int     `yaml:"count"`  // eigenvalues to find
}

// SearchConfig mirrors eigen.Options.
type SearchConfig struct {
	Margin        float64 `yaml:"margin"`
	GridPoints    int     `yaml:"grid_points"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxBisections int     `yaml:"max_bisections"`
	MaxExpansions int     `yaml:"max_expansions"`
	MaxRetries    int     `yaml:"max_retries"`
	Step          float64 `yaml:"step"`
	RetryGrowth   float64 `yaml:"retry_growth"`
	Seed          float64 `yaml:"seed"`
	SeedOffset    float64 `yaml:"seed_offset"`
	InitialSlope  float64 `yaml:"initial_slope"`
	Parallel      int     `yaml:"parallel"`
}

// IntegratorConfig mirrors ode.Options.
type IntegratorConfig struct {
	RelTol   float64 `yaml:"rel_tol"`
	AbsTol   float64 `yaml:"abs_tol"`
	MaxSteps int     `yaml:"max_steps"`
}

// OutputConfig controls reporting.
type OutputConfig struct {
	Plot    string `yaml:"plot"`    // image path; empty disables plotting
	Verbose bool   `yaml:"verbose"` // debug logging
}

// Default returns the configuration of the original problem: m = 1, three
// eigenvalues, library defaults everywhere else.
func Default() *Config {
	o := eigen.DefaultOptions()

	return &Config{
		Problem: ProblemConfig{Kind: KindSturmLiouville, M: 1, Length: math.Pi, Count: 3},
		Search: SearchConfig{
			Margin:        o.Margin,
			GridPoints:    o.GridPoints,
			Tolerance:     o.Tolerance,
			MaxBisections: o.MaxBisections,
			MaxExpansions: o.MaxExpansions,
			MaxRetries:    o.MaxRetries,
			Step:          o.Step,
			RetryGrowth:   o.RetryGrowth,
			Seed:          o.InitialSeed,
			SeedOffset:    o.SeedOffset,
			InitialSlope:  o.InitialSlope,
			Parallel:      o.ParallelProbes,
		},
		Integrator: IntegratorConfig{
			RelTol:   o.Integrator.RelTol,
			AbsTol:   o.Integrator.AbsTol,
			MaxSteps: o.Integrator.MaxSteps,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes c as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// System builds the configured operator.
func (c *Config) System() (equation.System, error) {
	switch c.Problem.Kind {
	case KindSturmLiouville, "":
		sys, err := equation.NewSturmLiouville(c.Problem.M)
		if err != nil {
			return nil, err
		}
		return sys, nil
	case KindHarmonic:
		sys, err := equation.NewHarmonic(c.Problem.Length)
		if err != nil {
			return nil, err
		}
		return sys, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProblem, c.Problem.Kind)
	}
}

// Options converts the search and integrator sections to solver options.
// Range checks are left to eigen.New.
func (c *Config) Options() []eigen.Option {
	s := c.Search

	return []eigen.Option{
		eigen.WithMargin(s.Margin),
		eigen.WithGridPoints(s.GridPoints),
		eigen.WithTolerance(s.Tolerance),
		eigen.WithMaxBisections(s.MaxBisections),
		eigen.WithMaxExpansions(s.MaxExpansions),
		eigen.WithMaxRetries(s.MaxRetries),
		eigen.WithStep(s.Step),
		eigen.WithRetryGrowth(s.RetryGrowth),
		eigen.WithInitialSeed(s.Seed),
		eigen.WithSeedOffset(s.SeedOffset),
		eigen.WithInitialSlope(s.InitialSlope),
		eigen.WithParallelProbes(s.Parallel),
		eigen.WithIntegrator(ode.Options{
			RelTol:   c.Integrator.RelTol,
			AbsTol:   c.Integrator.AbsTol,
			MaxSteps: c.Integrator.MaxSteps,
		}),
	}
}
