package eigen

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/sturm/normalize"
	"github.com/katalvlaran/sturm/ode"
	"github.com/katalvlaran/sturm/root"
)

// Error taxonomy. The first three alias the sentinels of the packages that
// raise them so errors.Is works across layers.
var (
	// ErrIntegrationFailure: the integrator could not reach the far end.
	ErrIntegrationFailure = ode.ErrIntegrationFailure

	// ErrBracketNotFound: no sign change within the expansion budget.
	ErrBracketNotFound = root.ErrBracketNotFound

	// ErrNormalizationFailure: an eigenfunction norm was near zero.
	ErrNormalizationFailure = normalize.ErrNormalizationFailure

	// ErrNotConverged: bisection ran out of iterations.
	ErrNotConverged = root.ErrNotConverged

	// ErrConfiguration: invalid construction parameters. Matched by every
	// *ConfigError.
	ErrConfiguration = errors.New("eigen: invalid configuration")

	// ErrBadCount: a negative number of eigenvalues was requested.
	ErrBadCount = errors.New("eigen: requested count must be ≥ 0")
)

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("eigen: invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// SequenceError reports a FindEigenvalues call that stopped early.
type SequenceError struct {
	Run       string // run id, as stamped on trace events
	Slot      int    // 1-based slot that failed
	Found     int    // eigenvalues converged before the failure
	Requested int
	Err       error // underlying failure
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("eigen: slot %d of %d failed with %d eigenvalue(s) found: %v",
		e.Slot, e.Requested, e.Found, e.Err)
}

func (e *SequenceError) Unwrap() error { return e.Err }

// Phase is the state of a sequence search.
type Phase int

const (
	// Searching: a slot's bracket search or bisection is running.
	Searching Phase = iota
	// Converged: the current slot produced an eigenvalue.
	Converged
	// Exhausted: every requested slot converged (terminal success).
	Exhausted
	// Failed: a slot could not be completed (terminal).
	Failed
)

var phaseNames = [...]string{
	Searching: "searching",
	Converged: "converged",
	Exhausted: "exhausted",
	Failed:    "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}

	return phaseNames[p]
}

// Estimate is a converged eigenvalue.
type Estimate struct {
	Lambda     float64
	Iterations int // bisection iterations; 0 when a probe hit the root
}

// Mode is one eigenvalue with its normalized eigenfunction sampled on
// Result.X.
type Mode struct {
	Index      int // 1-based position in the ascending sequence
	Lambda     float64
	Iterations int
	Retries    int       // bracket retries spent on this slot
	U          []float64 // normalized u
	Slope      []float64 // u′ scaled by the same factor
	Scale      float64   // 1/‖u‖ applied to the raw trajectory
}

// Result of FindEigenvalues.
type Result struct {
	Run       string
	Requested int
	Phase     Phase     // Exhausted or Failed
	X         []float64 // sample grid shared by all modes
	Modes     []Mode    // ascending by Lambda
}

// Eigenvalues returns the λ of every mode in order.
func (r Result) Eigenvalues() []float64 {
	out := make([]float64, len(r.Modes))
	for i, m := range r.Modes {
		out[i] = m.Lambda
	}

	return out
}

// Complete reports whether every requested mode was found.
func (r Result) Complete() bool { return r.Phase == Exhausted && len(r.Modes) == r.Requested }
