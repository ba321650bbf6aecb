package equation

import (
	"errors"
	"math"
)

var (
	// ErrSingularCoefficient indicates that a coefficient denominator came
	// within the guard floor of zero, i.e. x sits on a singular endpoint.
	ErrSingularCoefficient = errors.New("equation: coefficient denominator vanishes")

	// ErrBadParameter indicates an operator parameter that does not yield
	// real, finite coefficients (NaN, ±Inf, non-positive length).
	ErrBadParameter = errors.New("equation: invalid operator parameter")
)

// denominatorFloor is the magnitude below which sin x or cos x is treated
// as an exact zero of a coefficient denominator.
const denominatorFloor = 1e-12

// State is the pair (u, u′) at one abscissa.
type State [2]float64

// U returns the solution value.
func (s State) U() float64 { return s[0] }

// Slope returns the first derivative.
func (s State) Slope() float64 { return s[1] }

// IsFinite reports whether both components are finite.
func (s State) IsFinite() bool {
	return !math.IsNaN(s[0]) && !math.IsInf(s[0], 0) &&
		!math.IsNaN(s[1]) && !math.IsInf(s[1], 0)
}

// System is a second-order linear operator in first-order form.
//
// Contracts:
//   - Derive must not retain or mutate shared state; λ is a parameter.
//   - Derive returns an error (never a sentinel number) when a coefficient
//     cannot be evaluated at x.
//   - Interval returns the open interval (lo, hi) the problem is posed on;
//     both endpoints may be singular.
type System interface {
	Derive(x float64, y State, lambda float64) (State, error)
	Interval() (lo, hi float64)
}

// Func adapts a plain derivative function to System. It is handy for
// quick experiments and for tests that need to inject failures.
type Func struct {
	Lo, Hi float64
	F      func(x float64, y State, lambda float64) (State, error)
}

// Derive calls F.
func (f Func) Derive(x float64, y State, lambda float64) (State, error) {
	return f.F(x, y, lambda)
}

// Interval returns (Lo, Hi).
func (f Func) Interval() (float64, float64) { return f.Lo, f.Hi }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
