package root

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sturm/trace"
)

// interior holds the fractions of the bracket tried in order when the
// midpoint (and then its neighbours) cannot be evaluated.
var interior = [...]float64{0.5, 0.375, 0.625, 0.25, 0.75}

// Bisect narrows br until its width is at most Tol.
//
// Steps:
//  1. Validate options and bracket; an exact bracket is returned as is.
//  2. If the bracket is already narrower than Tol return its midpoint with
//     zero iterations.
//  3. Each iteration evaluates the midpoint, keeps the half whose ends
//     still differ in sign and stops once hi − lo ≤ Tol.
//
// A recoverable failure at the midpoint (see Skip) moves the probe to the
// next interior fraction; the bracket then shrinks by less than half for
// that iteration but keeps the sign invariant. A residual within ZeroTol
// ends the search at that point.
//
// Errors:
//   - ErrBadInput for invalid options or bracket.
//   - ErrInvalidBracket when the ends share a sign.
//   - ErrNotConverged with the last estimate when MaxIter runs out.
//   - the evaluation error when no interior point can be evaluated.
//
// Complexity: O(log2(width/Tol)) evaluations when nothing is skipped.
func Bisect(f Func, br Bracket, opts BisectOptions) (Estimate, error) {
	// 1) Validate.
	if err := checkBisectOptions(f, br, opts); err != nil {
		return Estimate{}, err
	}
	switch {
	case br.Exact():
		return Estimate{Root: br.Lo, Lo: br.Lo, Hi: br.Hi}, nil
	case math.Abs(br.FLo) <= opts.ZeroTol:
		return Estimate{Root: br.Lo, Lo: br.Lo, Hi: br.Hi}, nil
	case math.Abs(br.FHi) <= opts.ZeroTol:
		return Estimate{Root: br.Hi, Lo: br.Lo, Hi: br.Hi}, nil
	case !opposite(br.FLo, br.FHi):
		return Estimate{}, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrInvalidBracket, br.Lo, br.FLo, br.Hi, br.FHi)
	}

	lo, hi, flo := br.Lo, br.Hi, br.FLo
	estimate := func(it int) Estimate {
		return Estimate{Root: lo + (hi-lo)/2, Iterations: it, Lo: lo, Hi: hi}
	}

	// 2) Already narrow enough.
	if hi-lo <= opts.Tol {
		return estimate(0), nil
	}

	// 3) Bisection loop.
	for it := 1; it <= opts.MaxIter; it++ {
		x, fx, err := probeInside(f, lo, hi, opts)
		if err != nil {
			return estimate(it - 1), err
		}
		if math.Abs(fx) <= opts.ZeroTol {
			trace.Emit(opts.Observer, trace.Event{
				Kind: trace.BisectionStep, Lambda: x, Residual: fx, Lo: lo, Hi: hi, Iteration: it,
			})

			return Estimate{Root: x, Iterations: it, Lo: lo, Hi: hi}, nil
		}
		if opposite(flo, fx) {
			hi = x
		} else {
			lo, flo = x, fx
		}
		trace.Emit(opts.Observer, trace.Event{
			Kind: trace.BisectionStep, Lambda: x, Residual: fx, Lo: lo, Hi: hi, Iteration: it,
		})
		if hi-lo <= opts.Tol {
			return estimate(it), nil
		}
	}

	return estimate(opts.MaxIter), fmt.Errorf("%w: width %g > %g after %d iterations",
		ErrNotConverged, hi-lo, opts.Tol, opts.MaxIter)
}

// probeInside evaluates f at the first interior fraction of [lo, hi] that
// does not fail with a skippable error.
func probeInside(f Func, lo, hi float64, opts BisectOptions) (float64, float64, error) {
	var last error
	for _, t := range interior {
		x := lo + (hi-lo)*t
		fx, err := f(x)
		if err == nil && !finite(fx) {
			err = fmt.Errorf("%w: f(%g) = %g", ErrNonFiniteValue, x, fx)
		}
		if err == nil {
			return x, fx, nil
		}
		if !skippable(opts.Skip, err) {
			return x, 0, err
		}
		trace.Emit(opts.Observer, trace.Event{Kind: trace.ProbeSkipped, Lambda: x, Lo: lo, Hi: hi, Err: err})
		last = err
	}

	return 0, 0, fmt.Errorf("root: no evaluable point in [%g, %g]: %w", lo, hi, last)
}

func checkBisectOptions(f Func, br Bracket, o BisectOptions) error {
	switch {
	case f == nil:
		return fmt.Errorf("%w: nil function", ErrBadInput)
	case !finite(o.Tol) || o.Tol <= 0:
		return fmt.Errorf("%w: Tol=%g must be finite and > 0", ErrBadInput, o.Tol)
	case o.MaxIter < 1:
		return fmt.Errorf("%w: MaxIter=%d must be ≥ 1", ErrBadInput, o.MaxIter)
	case !finite(o.ZeroTol) || o.ZeroTol < 0:
		return fmt.Errorf("%w: ZeroTol=%g must be finite and ≥ 0", ErrBadInput, o.ZeroTol)
	case !finite(br.Lo) || !finite(br.Hi) || br.Lo > br.Hi:
		return fmt.Errorf("%w: bracket [%g, %g]", ErrBadInput, br.Lo, br.Hi)
	case !finite(br.FLo) || !finite(br.FHi):
		return fmt.Errorf("%w: bracket residuals %g, %g", ErrBadInput, br.FLo, br.FHi)
	}

	return nil
}
