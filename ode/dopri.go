package ode

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sturm/equation"
)

// Dormand–Prince 5(4) tableau.
const (
	c2, c3, c4, c5 = 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9

	a21 = 1.0 / 5

	a31, a32 = 3.0 / 40, 9.0 / 40

	a41, a42, a43 = 44.0 / 45, -56.0 / 15, 32.0 / 9

	a51, a52, a53, a54 = 19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729

	a61, a62, a63, a64, a65 = 9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656

	// fifth-order weights (b2 = b7 = 0)
	b1, b3, b4, b5, b6 = 35.0 / 384, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84

	// b − b̂ (e2 = 0)
	e1, e3, e4, e5, e6, e7 = 71.0 / 57600, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40
)

// Step-size controller.
const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 5.0
	ulpGuard  = 16
)

// Integrator is an adaptive Dormand–Prince integrator.
type Integrator struct {
	opts Options
}

// New validates opts (zero fields take defaults) and returns an Integrator.
//
// Errors:
//   - ErrBadOptions for invalid tolerances or budgets.
func New(opts Options) (*Integrator, error) {
	opts.normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Integrator{opts: opts}, nil
}

// Options returns the effective options.
func (in *Integrator) Options() Options { return in.opts }

// Integrate advances sys from (x0, y0) to x1 for the fixed parameter lambda.
//
// If grid is non-empty it must be non-decreasing inside [x0, x1]; steps are
// shortened to land exactly on every grid abscissa and the state there is
// returned in Result.Y (Result.X aliases grid).
//
// Steps:
//  1. Validate interval, initial state and grid.
//  2. Evaluate f(x0, y0); pick the initial step.
//  3. Repeat until x = x1:
//     a. Fail with ErrStepBudget / ErrStepUnderflow when budgets run out.
//     b. Clamp the step to the next grid point or x1.
//     c. Trial step; reject (shrink) on error > 1 or non-finite values.
//     d. Accept: advance, check the divergence bound, record samples, grow.
//
// Errors:
//   - ErrBadInterval, ErrBadInitialState, ErrBadGrid for invalid input.
//   - *Failure (matching ErrIntegrationFailure) wrapping ErrStepBudget,
//     ErrStepUnderflow, ErrNonFinite or the error returned by sys.
//
// Complexity:
//
//	Time:   O(steps) derivative evaluations, 6 per trial step.
//	Memory: O(len(grid)).
func (in *Integrator) Integrate(
	sys equation.System,
	lambda, x0, x1 float64,
	y0 equation.State,
	grid []float64,
) (Result, error) {
	// 1) Validate input.
	if math.IsNaN(x0) || math.IsInf(x0, 0) || math.IsNaN(x1) || math.IsInf(x1, 0) || x1 <= x0 {
		return Result{}, fmt.Errorf("%w: [%g, %g]", ErrBadInterval, x0, x1)
	}
	if !y0.IsFinite() {
		return Result{}, fmt.Errorf("%w: %v", ErrBadInitialState, y0)
	}
	if err := checkGrid(grid, x0, x1); err != nil {
		return Result{}, err
	}

	var (
		res  = Result{}
		x    = x0
		y    = y0
		gi   int
		fail = func(cause error) (Result, error) {
			return res, &Failure{Lambda: lambda, X: x, Step: res.Stats.Steps, Err: cause}
		}
	)
	if len(grid) > 0 {
		res.X = grid
		res.Y = make([]equation.State, 0, len(grid))
	}
	for gi < len(grid) && grid[gi] <= x {
		res.Y = append(res.Y, y)
		gi++
	}

	// 2) First derivative and initial step.
	f, err := sys.Derive(x, y, lambda)
	res.Stats.Evaluations++
	if err != nil {
		return fail(err)
	}
	span := x1 - x0
	maxStep := in.opts.MaxStep
	if maxStep == 0 || maxStep > span {
		maxStep = span
	}
	h := in.opts.InitialStep
	if h == 0 {
		h, err = in.initialStep(sys, lambda, x, y, f, maxStep, &res.Stats)
		if err != nil {
			return fail(err)
		}
	}
	h = math.Min(h, maxStep)

	// 3) Main loop.
	var rejectedLast, nonFiniteLast bool
	for x < x1 {
		// 3a) Budgets.
		if res.Stats.Steps+res.Stats.Rejected >= in.opts.MaxSteps {
			return fail(ErrStepBudget)
		}
		if h < ulpGuard*ulp(x) {
			if nonFiniteLast {
				return fail(ErrNonFinite)
			}
			return fail(ErrStepUnderflow)
		}

		// 3b) Land on the next grid point or the end of the interval.
		target := x1
		if gi < len(grid) && grid[gi] < target {
			target = grid[gi]
		}
		step, clamped := h, false
		if x+step >= target {
			step, clamped = target-x, true
		}

		// 3c) Trial step.
		yNew, fNew, errNorm, err := in.trial(sys, lambda, x, y, f, step)
		res.Stats.Evaluations += 6
		if err != nil {
			return fail(err)
		}
		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) || !yNew.IsFinite() {
			res.Stats.Rejected++
			rejectedLast, nonFiniteLast = true, true
			h = step * minFactor
			continue
		}
		nonFiniteLast = false
		if errNorm > 1 {
			res.Stats.Rejected++
			rejectedLast = true
			h = step * math.Max(minFactor, safety*math.Pow(errNorm, -0.2))
			continue
		}

		// 3d) Accept.
		res.Stats.Steps++
		if clamped {
			x = target
		} else {
			x += step
		}
		y, f = yNew, fNew
		if math.Abs(y[0]) > in.opts.MaxMagnitude || math.Abs(y[1]) > in.opts.MaxMagnitude {
			return fail(ErrNonFinite)
		}
		for gi < len(grid) && grid[gi] <= x {
			res.Y = append(res.Y, y)
			gi++
		}

		factor := maxFactor
		if errNorm > 0 {
			factor = math.Min(maxFactor, safety*math.Pow(errNorm, -0.2))
		}
		if rejectedLast {
			factor = math.Min(factor, 1)
		}
		rejectedLast = false
		next := step * factor
		if clamped {
			// A short landing step says nothing about the natural scale.
			next = math.Max(next, h)
		}
		h = math.Min(next, maxStep)
	}

	res.Terminal = y

	return res, nil
}

// Stage nodes and coefficient rows; the last row holds the fifth-order
// weights, so stage 6 yields the new state itself.
var (
	nodes   = [6]float64{c2, c3, c4, c5, 1, 1}
	tableau = [6][]float64{
		{a21},
		{a31, a32},
		{a41, a42, a43},
		{a51, a52, a53, a54},
		{a61, a62, a63, a64, a65},
		{b1, 0, b3, b4, b5, b6},
	}
	errWeights = []float64{e1, 0, e3, e4, e5, e6, e7}
)

// trial performs one Dormand–Prince step of size h from (x, y) with
// k1 = f(x, y) and returns the fifth-order state, f at the new point (the
// next k1) and the scaled RMS error estimate.
func (in *Integrator) trial(
	sys equation.System,
	lambda, x float64,
	y, k1 equation.State,
	h float64,
) (equation.State, equation.State, float64, error) {
	var (
		k    [7]equation.State
		yNew equation.State
		err  error
	)
	k[0] = k1
	for s := range tableau {
		ys := combine(y, h, tableau[s], k[:s+1])
		if s == len(tableau)-1 {
			yNew = ys
		}
		if k[s+1], err = sys.Derive(x+nodes[s]*h, ys, lambda); err != nil {
			return y, k1, 0, err
		}
	}
	est := combine(equation.State{}, h, errWeights, k[:])

	var sum float64
	for i := range est {
		sc := in.opts.AbsTol + in.opts.RelTol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
		r := est[i] / sc
		sum += r * r
	}

	return yNew, k[6], math.Sqrt(sum / float64(len(est))), nil
}

// initialStep estimates a first step following Hairer, Nørsett & Wanner,
// "Solving ODEs I", II.4.
func (in *Integrator) initialStep(
	sys equation.System,
	lambda, x float64,
	y, f equation.State,
	maxStep float64,
	stats *Stats,
) (float64, error) {
	var d0, d1 float64
	sc := equation.State{}
	for i := range y {
		sc[i] = in.opts.AbsTol + in.opts.RelTol*math.Abs(y[i])
		d0 += (y[i] / sc[i]) * (y[i] / sc[i])
		d1 += (f[i] / sc[i]) * (f[i] / sc[i])
	}
	d0, d1 = math.Sqrt(d0/2), math.Sqrt(d1/2)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, maxStep)

	f1, err := sys.Derive(x+h0, equation.State{y[0] + h0*f[0], y[1] + h0*f[1]}, lambda)
	stats.Evaluations++
	if err != nil {
		return 0, err
	}
	var d2 float64
	for i := range y {
		r := (f1[i] - f[i]) / sc[i]
		d2 += r * r
	}
	d2 = math.Sqrt(d2/2) / h0

	var h1 float64
	if m := math.Max(d1, d2); m <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/m, 0.2)
	}

	return math.Min(math.Min(100*h0, h1), maxStep), nil
}

// combine returns y + h·Σ w[i]·k[i].
func combine(y equation.State, h float64, w []float64, k []equation.State) equation.State {
	var acc equation.State
	for i, wi := range w {
		acc[0] += wi * k[i][0]
		acc[1] += wi * k[i][1]
	}

	return equation.State{y[0] + h*acc[0], y[1] + h*acc[1]}
}

// checkGrid validates the optional sample grid.
func checkGrid(grid []float64, x0, x1 float64) error {
	for i, g := range grid {
		if math.IsNaN(g) || g < x0 || g > x1 {
			return fmt.Errorf("%w: grid[%d]=%g outside [%g, %g]", ErrBadGrid, i, g, x0, x1)
		}
		if i > 0 && g < grid[i-1] {
			return fmt.Errorf("%w: grid[%d]=%g < grid[%d]=%g", ErrBadGrid, i, g, i-1, grid[i-1])
		}
	}

	return nil
}

// ulp returns the spacing of float64 values at x.
func ulp(x float64) float64 {
	x = math.Abs(x)

	return math.Nextafter(x, math.Inf(1)) - x
}
