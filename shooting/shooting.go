package shooting

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/sturm/equation"
	"github.com/katalvlaran/sturm/ode"
)

var (
	// ErrBadMargin indicates a margin that is not positive or not small
	// against the interval (see MaxMarginFraction).
	ErrBadMargin = errors.New("shooting: invalid boundary margin")

	// ErrBadSlope indicates an initial slope that is zero or not finite.
	ErrBadSlope = errors.New("shooting: invalid initial slope")

	// ErrBadGridSize indicates a sample grid with fewer than two points.
	ErrBadGridSize = errors.New("shooting: grid needs at least two points")

	// ErrNilDependency indicates a nil system or integrator.
	ErrNilDependency = errors.New("shooting: nil system or integrator")
)

// DefaultSlope is u′ at the left end.
const DefaultSlope = 1.0

// Domain is the working interval [Start, End].
type Domain struct {
	Start, End float64
}

// Width returns End − Start.
func (d Domain) Width() float64 { return d.End - d.Start }

// MaxMarginFraction bounds ε relative to the width of the interval: the
// margin must stay below a quarter of it on each side.
const MaxMarginFraction = 0.25

// NewDomain shrinks the interval of sys by margin on both sides.
//
// Errors:
//   - ErrNilDependency for a nil system.
//   - ErrBadMargin unless 0 < ε < MaxMarginFraction·(b − a).
func NewDomain(sys equation.System, margin float64) (Domain, error) {
	if sys == nil {
		return Domain{}, ErrNilDependency
	}
	if math.IsNaN(margin) || math.IsInf(margin, 0) || margin <= 0 {
		return Domain{}, fmt.Errorf("%w: ε=%g must be > 0", ErrBadMargin, margin)
	}
	lo, hi := sys.Interval()
	if limit := MaxMarginFraction * (hi - lo); !(margin < limit) {
		return Domain{}, fmt.Errorf("%w: ε=%g must be < %g on (%g, %g)", ErrBadMargin, margin, limit, lo, hi)
	}
	d := Domain{Start: lo + margin, End: hi - margin}

	return d, nil
}

// Grid returns n evenly spaced points spanning d, both ends included
// exactly.
func (d Domain) Grid(n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: n=%d", ErrBadGridSize, n)
	}
	xs := floats.Span(make([]float64, n), d.Start, d.End)
	xs[0], xs[n-1] = d.Start, d.End

	return xs, nil
}

// Evaluator computes residuals and trajectories for one system.
type Evaluator struct {
	sys   equation.System
	in    *ode.Integrator
	dom   Domain
	slope float64

	calls atomic.Int64
}

// NewEvaluator binds sys, the integrator and the domain.
//
// Errors:
//   - ErrNilDependency for a nil system or integrator.
//   - ErrBadSlope when slope is zero, NaN or ±Inf.
func NewEvaluator(sys equation.System, in *ode.Integrator, dom Domain, slope float64) (*Evaluator, error) {
	if sys == nil || in == nil {
		return nil, ErrNilDependency
	}
	if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		return nil, fmt.Errorf("%w: %g", ErrBadSlope, slope)
	}

	return &Evaluator{sys: sys, in: in, dom: dom, slope: slope}, nil
}

// Domain returns the working interval.
func (e *Evaluator) Domain() Domain { return e.dom }

// Calls returns the number of integrations started so far.
func (e *Evaluator) Calls() int64 { return e.calls.Load() }

// Residual returns u(End) for the trial value λ.
//
// Errors:
//   - errors matching ode.ErrIntegrationFailure when the solution cannot
//     be carried to End; no value is returned in that case.
func (e *Evaluator) Residual(lambda float64) (float64, error) {
	res, err := e.integrate(lambda, nil)
	if err != nil {
		return 0, err
	}

	return res.Terminal.U(), nil
}

// Trajectory integrates for λ and samples the state on grid, which must
// lie inside the domain.
func (e *Evaluator) Trajectory(lambda float64, grid []float64) (ode.Result, error) {
	return e.integrate(lambda, grid)
}

func (e *Evaluator) integrate(lambda float64, grid []float64) (ode.Result, error) {
	e.calls.Add(1)

	return e.in.Integrate(e.sys, lambda, e.dom.Start, e.dom.End, equation.State{0, e.slope}, grid)
}
