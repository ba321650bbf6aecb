package eigen

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/sturm/equation"
	"github.com/katalvlaran/sturm/ode"
	"github.com/katalvlaran/sturm/root"
	"github.com/katalvlaran/sturm/shooting"
	"github.com/katalvlaran/sturm/trace"
)

// Solver holds one validated configuration. It carries no search state.
type Solver struct {
	sys  equation.System
	opts Options
	dom  shooting.Domain
	grid []float64
	eval *shooting.Evaluator
	obs  trace.Observer
}

// New validates the configuration and prepares the solver. No integration
// is performed.
//
// Errors:
//   - *ConfigError (matching ErrConfiguration) naming the first invalid
//     parameter.
func New(sys equation.System, opts ...Option) (*Solver, error) {
	// 1) Resolve options over defaults.
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// 2) Validate scalar parameters.
	if sys == nil {
		return nil, &ConfigError{Field: "system", Value: nil, Reason: "must not be nil"}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	// 3) Derived state: domain, grid, integrator, evaluator.
	dom, err := shooting.NewDomain(sys, o.Margin)
	if err != nil {
		return nil, &ConfigError{Field: "margin", Value: o.Margin, Reason: err.Error()}
	}
	grid, err := dom.Grid(o.GridPoints)
	if err != nil {
		return nil, &ConfigError{Field: "grid_points", Value: o.GridPoints, Reason: err.Error()}
	}
	in, err := ode.New(o.Integrator)
	if err != nil {
		return nil, &ConfigError{Field: "integrator", Value: o.Integrator, Reason: err.Error()}
	}
	eval, err := shooting.NewEvaluator(sys, in, dom, o.InitialSlope)
	if err != nil {
		return nil, &ConfigError{Field: "initial_slope", Value: o.InitialSlope, Reason: err.Error()}
	}
	o.Integrator = in.Options()

	obs := o.Observer
	if o.Logger != nil {
		obs = trace.Multi(obs, trace.NewZap(o.Logger))
	}

	return &Solver{sys: sys, opts: o, dom: dom, grid: grid, eval: eval, obs: obs}, nil
}

// Options returns the resolved configuration.
func (s *Solver) Options() Options { return s.opts }

// Domain returns the working interval [a+ε, b−ε].
func (s *Solver) Domain() shooting.Domain { return s.dom }

// Grid returns a copy of the sample grid.
func (s *Solver) Grid() []float64 { return append([]float64(nil), s.grid...) }

// Integrations returns how many integrations the solver has started.
func (s *Solver) Integrations() int64 { return s.eval.Calls() }

// Residual returns u(b−ε) for λ.
func (s *Solver) Residual(lambda float64) (float64, error) { return s.eval.Residual(lambda) }

// FindEigenvalue searches for one eigenvalue starting at seed, with no
// lower floor.
//
// Errors:
//   - ErrBracketNotFound once MaxRetries retries are spent.
//   - ErrNotConverged, ErrIntegrationFailure or root.ErrBadInput (for a
//     non-finite seed) from the search.
func (s *Solver) FindEigenvalue(seed float64) (Estimate, error) {
	est, _, err := s.locate(seed, math.Inf(-1), s.obs)

	return est, err
}

// locate runs bracket + bisection with retries on a missing bracket and
// returns the estimate and the number of retries used.
func (s *Solver) locate(seed, floor float64, obs trace.Observer) (Estimate, int, error) {
	step := s.opts.Step
	for attempt := 0; ; attempt++ {
		// 1) Bracket.
		br, err := root.Expand(s.eval.Residual, seed, s.bracketOptions(step, floor, obs))
		if err != nil {
			if !errors.Is(err, root.ErrBracketNotFound) || attempt >= s.opts.MaxRetries {
				return Estimate{}, attempt, err
			}
			step *= s.opts.RetryGrowth
			trace.Emit(obs, trace.Event{Kind: trace.Retry, Lambda: seed, Iteration: attempt + 1, Step: step, Err: err})
			continue
		}

		// 2) Bisection.
		r, err := root.Bisect(s.eval.Residual, br, s.bisectOptions(obs))
		est := Estimate{Lambda: r.Root, Iterations: r.Iterations}
		if err != nil {
			return est, attempt, err
		}
		trace.Emit(obs, trace.Event{
			Kind:      trace.Converged,
			Lambda:    est.Lambda,
			Lo:        r.Lo,
			Hi:        r.Hi,
			Iteration: est.Iterations,
		})

		return est, attempt, nil
	}
}

func (s *Solver) bracketOptions(step, floor float64, obs trace.Observer) root.BracketOptions {
	return root.BracketOptions{
		Step:          step,
		MaxExpansions: s.opts.MaxExpansions,
		ZeroTol:       s.opts.ZeroTolerance,
		Floor:         floor,
		Skip:          recoverable,
		Parallel:      s.opts.ParallelProbes,
		Observer:      obs,
	}
}

func (s *Solver) bisectOptions(obs trace.Observer) root.BisectOptions {
	return root.BisectOptions{
		Tol:      s.opts.Tolerance,
		MaxIter:  s.opts.MaxBisections,
		ZeroTol:  s.opts.ZeroTolerance,
		Skip:     recoverable,
		Observer: obs,
	}
}

// recoverable marks probe points that are left out of a search: the
// residual is undefined there, never zero.
func recoverable(err error) bool { return errors.Is(err, ode.ErrIntegrationFailure) }

func (o Options) validate() error {
	bad := func(field string, v any, reason string) error {
		return &ConfigError{Field: field, Value: v, Reason: reason}
	}
	switch {
	case !positive(o.Margin):
		return bad("margin", o.Margin, "must be finite and > 0")
	case o.GridPoints < 2:
		return bad("grid_points", o.GridPoints, "must be ≥ 2")
	case !positive(o.Tolerance):
		return bad("tolerance", o.Tolerance, "must be finite and > 0")
	case o.MaxBisections < 1:
		return bad("max_bisections", o.MaxBisections, "must be ≥ 1")
	case o.MaxExpansions < 1:
		return bad("max_expansions", o.MaxExpansions, "must be ≥ 1")
	case o.MaxRetries < 0:
		return bad("max_retries", o.MaxRetries, "must be ≥ 0")
	case !positive(o.Step):
		return bad("step", o.Step, "must be finite and > 0")
	case !finite(o.RetryGrowth) || o.RetryGrowth < 1:
		return bad("retry_growth", o.RetryGrowth, "must be finite and ≥ 1")
	case !finite(o.InitialSeed):
		return bad("seed", o.InitialSeed, "must be finite")
	case !positive(o.SeedOffset):
		return bad("seed_offset", o.SeedOffset, "must be finite and > 0")
	case !finite(o.ZeroTolerance) || o.ZeroTolerance < 0:
		return bad("zero_tolerance", o.ZeroTolerance, "must be finite and ≥ 0")
	case !finite(o.NormFloor) || o.NormFloor < 0:
		return bad("norm_floor", o.NormFloor, "must be finite and ≥ 0")
	case o.ParallelProbes < 0:
		return bad("parallel", o.ParallelProbes, "must be ≥ 0")
	}

	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }

// String summarizes the configuration for logs.
func (s *Solver) String() string {
	return fmt.Sprintf("eigen.Solver{domain=[%g, %g] grid=%d tol=%g}", s.dom.Start, s.dom.End, s.opts.GridPoints, s.opts.Tolerance)
}
