package ode

import (
	"fmt"
	"math"
)

// Defaults.
const (
	// DefaultRelTol is the relative local error tolerance.
	DefaultRelTol = 1e-6

	// DefaultAbsTol is the absolute local error tolerance.
	DefaultAbsTol = 1e-9

	// DefaultMaxSteps bounds accepted plus rejected steps per pass.
	DefaultMaxSteps = 1_000_000

	// DefaultMaxMagnitude is the divergence bound on |u| and |u′|.
	DefaultMaxMagnitude = 1e100
)

// Options configures an Integrator.
//
// Fields:
//   - RelTol, AbsTol — local error tolerances (RelTol > 0, AbsTol ≥ 0).
//   - MaxSteps       — budget of step attempts per pass.
//   - InitialStep    — first trial step; 0 selects it automatically.
//   - MaxStep        — upper bound on the step; 0 means the whole interval.
//   - MaxMagnitude   — divergence bound on the state.
//
// Zero-valued RelTol, AbsTol, MaxSteps and MaxMagnitude take the defaults.
type Options struct {
	RelTol       float64
	AbsTol       float64
	MaxSteps     int
	InitialStep  float64
	MaxStep      float64
	MaxMagnitude float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		RelTol:       DefaultRelTol,
		AbsTol:       DefaultAbsTol,
		MaxSteps:     DefaultMaxSteps,
		MaxMagnitude: DefaultMaxMagnitude,
	}
}

// normalize fills zero values with defaults.
func (o *Options) normalize() {
	if o.RelTol == 0 {
		o.RelTol = DefaultRelTol
	}
	if o.AbsTol == 0 {
		o.AbsTol = DefaultAbsTol
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.MaxMagnitude == 0 {
		o.MaxMagnitude = DefaultMaxMagnitude
	}
}

// Validate reports the first invalid field, wrapped in ErrBadOptions.
func (o Options) Validate() error {
	switch {
	case !finitePositive(o.RelTol):
		return fmt.Errorf("%w: RelTol=%g must be finite and > 0", ErrBadOptions, o.RelTol)
	case math.IsNaN(o.AbsTol) || math.IsInf(o.AbsTol, 0) || o.AbsTol < 0:
		return fmt.Errorf("%w: AbsTol=%g must be finite and ≥ 0", ErrBadOptions, o.AbsTol)
	case o.MaxSteps < 1:
		return fmt.Errorf("%w: MaxSteps=%d must be ≥ 1", ErrBadOptions, o.MaxSteps)
	case math.IsNaN(o.InitialStep) || math.IsInf(o.InitialStep, 0) || o.InitialStep < 0:
		return fmt.Errorf("%w: InitialStep=%g must be finite and ≥ 0", ErrBadOptions, o.InitialStep)
	case math.IsNaN(o.MaxStep) || math.IsInf(o.MaxStep, 0) || o.MaxStep < 0:
		return fmt.Errorf("%w: MaxStep=%g must be finite and ≥ 0", ErrBadOptions, o.MaxStep)
	case !finitePositive(o.MaxMagnitude):
		return fmt.Errorf("%w: MaxMagnitude=%g must be finite and > 0", ErrBadOptions, o.MaxMagnitude)
	}

	return nil
}

func finitePositive(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 }
