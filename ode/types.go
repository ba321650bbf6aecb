package ode

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/sturm/equation"
)

var (
	// ErrIntegrationFailure is matched by every failure of an integration
	// pass; the residual for that λ is undefined.
	ErrIntegrationFailure = errors.New("ode: integration failed")

	// ErrStepBudget indicates that MaxSteps attempts were spent before
	// reaching the end of the interval.
	ErrStepBudget = errors.New("ode: step budget exhausted")

	// ErrStepUnderflow indicates that the error control pushed the step
	// below 16 ulp of the current abscissa.
	ErrStepUnderflow = errors.New("ode: step size underflow")

	// ErrNonFinite indicates NaN/±Inf in the state or |state| above
	// MaxMagnitude.
	ErrNonFinite = errors.New("ode: state diverged")

	// ErrBadOptions is returned by New for invalid tolerances or budgets.
	ErrBadOptions = errors.New("ode: invalid options")

	// ErrBadInterval is returned when x1 ≤ x0 or either end is not finite.
	ErrBadInterval = errors.New("ode: invalid integration interval")

	// ErrBadInitialState is returned when the initial state is not finite.
	ErrBadInitialState = errors.New("ode: invalid initial state")

	// ErrBadGrid is returned when the sample grid is unsorted or leaves
	// [x0, x1].
	ErrBadGrid = errors.New("ode: invalid sample grid")
)

// Failure describes where an integration pass gave up.
// It matches ErrIntegrationFailure and Err via errors.Is.
type Failure struct {
	Lambda float64 // trial eigenvalue of the pass
	X      float64 // abscissa of the last accepted point
	Step   int     // accepted steps before failing
	Err    error   // concrete cause
}

func (f *Failure) Error() string {
	return fmt.Sprintf("ode: integration failed at x=%g (λ=%g, step %d): %v", f.X, f.Lambda, f.Step, f.Err)
}

// Unwrap exposes both the umbrella sentinel and the cause.
func (f *Failure) Unwrap() []error { return []error{ErrIntegrationFailure, f.Err} }

// Stats counts the work of one integration pass.
type Stats struct {
	Steps       int // accepted steps
	Rejected    int // rejected trial steps
	Evaluations int // calls to System.Derive
}

// Result is the outcome of one integration pass.
type Result struct {
	// Terminal is the state at x1.
	Terminal equation.State

	// X holds the requested sample abscissas (nil when no grid was given)
	// and Y the state at each of them.
	X []float64
	Y []equation.State

	Stats Stats
}

// U returns the solution samples u(X[i]).
func (r Result) U() []float64 {
	out := make([]float64, len(r.Y))
	for i, s := range r.Y {
		out[i] = s[0]
	}

	return out
}

// Slopes returns the derivative samples u′(X[i]).
func (r Result) Slopes() []float64 {
	out := make([]float64, len(r.Y))
	for i, s := range r.Y {
		out[i] = s[1]
	}

	return out
}
