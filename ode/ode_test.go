package ode_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/sturm/equation"
	"github.com/katalvlaran/sturm/ode"
)

// oscillator is u″ = −λu with u(0)=0, u′(0)=1 ⇒ u = sin(√λ x)/√λ.
func oscillator(t *testing.T) *equation.Harmonic {
	t.Helper()
	h, err := equation.NewHarmonic(100)
	require.NoError(t, err)

	return h
}

func newIntegrator(t *testing.T, opts ode.Options) *ode.Integrator {
	t.Helper()
	in, err := ode.New(opts)
	require.NoError(t, err)

	return in
}

// TestIntegrate_HarmonicTerminal compares the terminal state with the
// closed form at two tolerance levels.
func TestIntegrate_HarmonicTerminal(t *testing.T) {
	sys := oscillator(t)

	cases := []struct {
		name   string
		rtol   float64
		within float64
	}{
		{"default", ode.DefaultRelTol, 1e-4},
		{"tight", 1e-10, 1e-8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := ode.DefaultOptions()
			opts.RelTol = tc.rtol
			opts.AbsTol = tc.rtol * 1e-3
			in := newIntegrator(t, opts)

			res, err := in.Integrate(sys, 4, 0, math.Pi, equation.State{0, 1}, nil)
			require.NoError(t, err)
			// √λ = 2: u(π) = sin(2π)/2 = 0, u′(π) = cos(2π) = 1.
			assert.InDelta(t, 0.0, res.Terminal.U(), tc.within)
			assert.InDelta(t, 1.0, res.Terminal.Slope(), tc.within)
			assert.Nil(t, res.X)
			assert.Empty(t, res.Y)
		})
	}
}

// TestIntegrate_GridSamples checks that samples land exactly on the grid
// and follow the analytic solution.
func TestIntegrate_GridSamples(t *testing.T) {
	sys := oscillator(t)
	in := newIntegrator(t, ode.DefaultOptions())

	grid := floats.Span(make([]float64, 21), 0, 2*math.Pi)
	grid[len(grid)-1] = 2 * math.Pi
	res, err := in.Integrate(sys, 1, 0, 2*math.Pi, equation.State{0, 1}, grid)
	require.NoError(t, err)
	require.Len(t, res.Y, len(grid))
	assert.Equal(t, grid, res.X)
	assert.Equal(t, equation.State{0, 1}, res.Y[0], "first sample is the initial state")

	want := make([]float64, len(grid))
	for i, x := range grid {
		want[i] = math.Sin(x)
	}
	if diff := cmp.Diff(want, res.U(), cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Fatalf("u samples mismatch (-want +got):\n%s", diff)
	}
	for i, x := range grid {
		assert.InDelta(t, math.Cos(x), res.Slopes()[i], 1e-5)
	}
	assert.Equal(t, res.Y[len(res.Y)-1], res.Terminal)
}

// TestIntegrate_InteriorGrid records only the requested abscissas.
func TestIntegrate_InteriorGrid(t *testing.T) {
	sys := oscillator(t)
	in := newIntegrator(t, ode.DefaultOptions())

	grid := []float64{0.5, 0.5, 1.0}
	res, err := in.Integrate(sys, 1, 0, 2, equation.State{0, 1}, grid)
	require.NoError(t, err)
	require.Len(t, res.Y, 3)
	assert.Equal(t, res.Y[0], res.Y[1], "duplicate abscissas share one state")
	assert.InDelta(t, math.Sin(1), res.Y[2].U(), 1e-5)
	assert.InDelta(t, math.Sin(2), res.Terminal.U(), 1e-5)
}

// TestIntegrate_EvaluationAccounting verifies FSAL bookkeeping: one
// evaluation at x0, one for the initial-step estimate, six per trial.
func TestIntegrate_EvaluationAccounting(t *testing.T) {
	sys := oscillator(t)
	in := newIntegrator(t, ode.DefaultOptions())

	res, err := in.Integrate(sys, 9, 0, 10, equation.State{0, 1}, nil)
	require.NoError(t, err)
	st := res.Stats
	assert.Positive(t, st.Steps)
	assert.Equal(t, 2+6*(st.Steps+st.Rejected), st.Evaluations)

	opts := ode.DefaultOptions()
	opts.InitialStep = 1e-3
	res, err = newIntegrator(t, opts).Integrate(sys, 9, 0, 10, equation.State{0, 1}, nil)
	require.NoError(t, err)
	st = res.Stats
	assert.Equal(t, 1+6*(st.Steps+st.Rejected), st.Evaluations)
}

// TestIntegrate_Deterministic runs the same pass twice.
func TestIntegrate_Deterministic(t *testing.T) {
	sys := oscillator(t)
	in := newIntegrator(t, ode.DefaultOptions())
	grid := floats.Span(make([]float64, 50), 0, 5)
	grid[len(grid)-1] = 5

	a, err := in.Integrate(sys, 2.5, 0, 5, equation.State{0, 1}, grid)
	require.NoError(t, err)
	b, err := in.Integrate(sys, 2.5, 0, 5, equation.State{0, 1}, grid)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("non-deterministic integration (-a +b):\n%s", diff)
	}
}

// TestIntegrate_Divergence checks the divergence bound on a finite-time
// blow-up u′ = u², u(0) = 1 (singular at x = 1).
func TestIntegrate_Divergence(t *testing.T) {
	blowUp := equation.Func{Lo: 0, Hi: 2, F: func(_ float64, y equation.State, _ float64) (equation.State, error) {
		return equation.State{y[0] * y[0], 0}, nil
	}}

	opts := ode.DefaultOptions()
	opts.MaxMagnitude = 1e6
	_, err := newIntegrator(t, opts).Integrate(blowUp, 0, 0, 2, equation.State{1, 0}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ode.ErrIntegrationFailure)
	assert.ErrorIs(t, err, ode.ErrNonFinite)

	var f *ode.Failure
	require.True(t, errors.As(err, &f))
	assert.Less(t, f.X, 1.0)
	assert.Greater(t, f.X, 0.99)

	// Without a tight bound the step collapses before the pole.
	_, err = newIntegrator(t, ode.DefaultOptions()).Integrate(blowUp, 0, 0, 2, equation.State{1, 0}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ode.ErrIntegrationFailure)
	assert.True(t, errors.Is(err, ode.ErrStepUnderflow) || errors.Is(err, ode.ErrNonFinite), "got %v", err)
}

// TestIntegrate_StepBudget exhausts a tiny step budget.
func TestIntegrate_StepBudget(t *testing.T) {
	opts := ode.DefaultOptions()
	opts.MaxSteps = 5
	_, err := newIntegrator(t, opts).Integrate(oscillator(t), 1, 0, 100, equation.State{0, 1}, nil)
	assert.ErrorIs(t, err, ode.ErrIntegrationFailure)
	assert.ErrorIs(t, err, ode.ErrStepBudget)
}

// TestIntegrate_SystemError propagates errors raised by Derive.
func TestIntegrate_SystemError(t *testing.T) {
	boom := errors.New("boom")
	sys := equation.Func{Lo: 0, Hi: 3, F: func(x float64, y equation.State, _ float64) (equation.State, error) {
		if x > 1 {
			return equation.State{}, boom
		}
		return equation.State{y[1], -y[0]}, nil
	}}

	_, err := newIntegrator(t, ode.DefaultOptions()).Integrate(sys, 7, 0, 3, equation.State{0, 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ode.ErrIntegrationFailure)

	var f *ode.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, 7.0, f.Lambda)
	assert.LessOrEqual(t, f.X, 1.0)
	assert.Contains(t, f.Error(), "λ=7")
}

// TestIntegrate_NonFiniteDerivative rejects steps producing NaN until the
// step collapses, then reports ErrNonFinite.
func TestIntegrate_NonFiniteDerivative(t *testing.T) {
	sys := equation.Func{Lo: 0, Hi: 1, F: func(x float64, y equation.State, _ float64) (equation.State, error) {
		if x > 0.5 {
			return equation.State{math.NaN(), 0}, nil
		}
		return equation.State{1, 0}, nil
	}}

	_, err := newIntegrator(t, ode.DefaultOptions()).Integrate(sys, 0, 0, 1, equation.State{0, 0}, nil)
	assert.ErrorIs(t, err, ode.ErrIntegrationFailure)
	assert.ErrorIs(t, err, ode.ErrNonFinite)
}

// TestIntegrate_BadInput covers interval, state and grid validation.
func TestIntegrate_BadInput(t *testing.T) {
	sys := oscillator(t)
	in := newIntegrator(t, ode.DefaultOptions())
	y0 := equation.State{0, 1}

	_, err := in.Integrate(sys, 1, 1, 1, y0, nil)
	assert.ErrorIs(t, err, ode.ErrBadInterval)
	_, err = in.Integrate(sys, 1, 2, 1, y0, nil)
	assert.ErrorIs(t, err, ode.ErrBadInterval)
	_, err = in.Integrate(sys, 1, 0, math.Inf(1), y0, nil)
	assert.ErrorIs(t, err, ode.ErrBadInterval)

	_, err = in.Integrate(sys, 1, 0, 1, equation.State{math.NaN(), 0}, nil)
	assert.ErrorIs(t, err, ode.ErrBadInitialState)

	_, err = in.Integrate(sys, 1, 0, 1, y0, []float64{0.5, 0.2})
	assert.ErrorIs(t, err, ode.ErrBadGrid)
	_, err = in.Integrate(sys, 1, 0, 1, y0, []float64{-0.1, 0.5})
	assert.ErrorIs(t, err, ode.ErrBadGrid)
	_, err = in.Integrate(sys, 1, 0, 1, y0, []float64{0.5, 1.5})
	assert.ErrorIs(t, err, ode.ErrBadGrid)
}

// TestNew_Options covers defaults and validation.
func TestNew_Options(t *testing.T) {
	in, err := ode.New(ode.Options{})
	require.NoError(t, err)
	assert.Equal(t, ode.DefaultOptions(), in.Options(), "zero options take defaults")

	bad := []ode.Options{
		{RelTol: -1},
		{RelTol: math.NaN()},
		{AbsTol: -1},
		{MaxSteps: -3},
		{InitialStep: -1},
		{MaxStep: math.Inf(1)},
		{MaxMagnitude: -1},
	}
	for _, o := range bad {
		_, err := ode.New(o)
		assert.ErrorIs(t, err, ode.ErrBadOptions, "%+v", o)
	}
}

// TestIntegrate_MaxStep bounds the step from above.
func TestIntegrate_MaxStep(t *testing.T) {
	opts := ode.DefaultOptions()
	opts.MaxStep = 0.01
	res, err := newIntegrator(t, opts).Integrate(oscillator(t), 0, 0, 1, equation.State{0, 1}, nil)
	require.NoError(t, err)
	// λ = 0 ⇒ u = x exactly; the step count is set by MaxStep alone.
	assert.InDelta(t, 1.0, res.Terminal.U(), 1e-12)
	assert.GreaterOrEqual(t, res.Stats.Steps, 100)
}
