package eigen_test

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/sturm/eigen"
	"github.com/katalvlaran/sturm/equation"
	"github.com/katalvlaran/sturm/ode"
	"github.com/katalvlaran/sturm/root"
	"github.com/katalvlaran/sturm/trace"
)

func harmonic(t *testing.T) *equation.Harmonic {
	t.Helper()
	sys, err := equation.NewHarmonic(math.Pi)
	require.NoError(t, err)
	return sys
}

// counting wraps the harmonic operator and counts Derive calls.
func counting(calls *atomic.Int64) equation.Func {
	return equation.Func{Lo: 0, Hi: math.Pi, F: func(_ float64, y equation.State, lambda float64) (equation.State, error) {
		calls.Add(1)
		return equation.State{y[1], -lambda * y[0]}, nil
	}}
}

func TestNew_ConfigurationError(t *testing.T) {
	cases := []struct {
		name  string
		field string
		opt   eigen.Option
	}{
		{"zero margin", "margin", eigen.WithMargin(0)},
		{"negative margin", "margin", eigen.WithMargin(-1e-4)},
		{"nan margin", "margin", eigen.WithMargin(math.NaN())},
		{"margin too wide", "margin", eigen.WithMargin(2)},
		{"margin not small", "margin", eigen.WithMargin(1)},
		{"one grid point", "grid_points", eigen.WithGridPoints(1)},
		{"zero tolerance", "tolerance", eigen.WithTolerance(0)},
		{"negative tolerance", "tolerance", eigen.WithTolerance(-1e-6)},
		{"no bisections", "max_bisections", eigen.WithMaxBisections(0)},
		{"no expansions", "max_expansions", eigen.WithMaxExpansions(0)},
		{"negative retries", "max_retries", eigen.WithMaxRetries(-1)},
		{"zero step", "step", eigen.WithStep(0)},
		{"shrinking growth", "retry_growth", eigen.WithRetryGrowth(0.5)},
		{"inf seed", "seed", eigen.WithInitialSeed(math.Inf(1))},
		{"zero offset", "seed_offset", eigen.WithSeedOffset(0)},
		{"negative zero tolerance", "zero_tolerance", eigen.WithZeroTolerance(-1)},
		{"negative floor", "norm_floor", eigen.WithNormFloor(-1)},
		{"zero slope", "initial_slope", eigen.WithInitialSlope(0)},
		{"negative parallel", "parallel", eigen.WithParallelProbes(-2)},
		{"bad integrator", "integrator", eigen.WithIntegrator(ode.Options{RelTol: -1})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int64
			s, err := eigen.New(counting(&calls), tc.opt)
			require.ErrorIs(t, err, eigen.ErrConfiguration)
			assert.Nil(t, s)

			var ce *eigen.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.field, ce.Field)
			assert.Zero(t, calls.Load(), "construction must not integrate")
		})
	}

	_, err := eigen.New(nil)
	require.ErrorIs(t, err, eigen.ErrConfiguration)
}

func TestNew_Defaults(t *testing.T) {
	s, err := eigen.New(harmonic(t))
	require.NoError(t, err)

	o := s.Options()
	assert.Equal(t, 1e-4, o.Margin)
	assert.Equal(t, 1000, o.GridPoints)
	assert.Equal(t, 1e-6, o.Tolerance)
	assert.Equal(t, ode.DefaultRelTol, o.Integrator.RelTol)
	assert.Equal(t, 1e-4, s.Domain().Start)
	assert.InDelta(t, math.Pi-1e-4, s.Domain().End, 1e-15)

	grid := s.Grid()
	grid[0] = 42
	assert.Equal(t, 1e-4, s.Grid()[0], "Grid must return a copy")
}

// TestFindEigenvalues_PartialOnFailure limits the ladder so the second
// slot cannot find a bracket: probes 1.15 … 2.65 all lie between λ₁ and
// λ₂ and the floor λ₁ blocks the downward ladder.
func TestFindEigenvalues_PartialOnFailure(t *testing.T) {
	rec := &trace.Recorder{}
	s, err := eigen.New(harmonic(t),
		eigen.WithMaxExpansions(5),
		eigen.WithMaxRetries(0),
		eigen.WithObserver(rec),
	)
	require.NoError(t, err)

	res, err := s.FindEigenvalues(4)
	require.Error(t, err)
	require.ErrorIs(t, err, eigen.ErrBracketNotFound)

	var se *eigen.SequenceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Slot)
	assert.Equal(t, 1, se.Found)
	assert.Equal(t, 4, se.Requested)
	assert.Equal(t, res.Run, se.Run)

	assert.Equal(t, eigen.Failed, res.Phase)
	assert.False(t, res.Complete())
	require.Len(t, res.Modes, 1)
	assert.Less(t, len(res.Modes), res.Requested)
	assert.InDelta(t, math.Pow(math.Pi/(math.Pi-2e-4), 2), res.Modes[0].Lambda, 1e-5)
	assert.NotEmpty(t, res.Modes[0].U)

	failed := rec.Filter(trace.SlotFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Slot)
	for _, e := range rec.Filter(trace.ProbeEvaluated) {
		if e.Slot == 2 {
			assert.Greater(t, e.Lambda, res.Modes[0].Lambda)
		}
	}
}

// TestFindEigenvalues_Retry lets the second slot succeed on its first
// retry with Δ = 0.2, whose ladder reaches 4.25 > λ₂.
func TestFindEigenvalues_Retry(t *testing.T) {
	rec := &trace.Recorder{}
	s, err := eigen.New(harmonic(t),
		eigen.WithMaxExpansions(5),
		eigen.WithMaxRetries(1),
		eigen.WithObserver(rec),
	)
	require.NoError(t, err)

	res, err := s.FindEigenvalues(2)
	require.NoError(t, err)
	require.Len(t, res.Modes, 2)
	assert.Equal(t, 0, res.Modes[0].Retries)
	assert.Equal(t, 1, res.Modes[1].Retries)
	assert.InDelta(t, 4*math.Pow(math.Pi/(math.Pi-2e-4), 2), res.Modes[1].Lambda, 1e-4)

	retries := rec.Filter(trace.Retry)
	require.Len(t, retries, 1)
	assert.Equal(t, 2, retries[0].Slot)
	assert.Equal(t, 0.2, retries[0].Step)
	assert.ErrorIs(t, retries[0].Err, eigen.ErrBracketNotFound)

	// The third slot needs Δ ≥ 0.4 and fails after its only retry.
	res, err = s.FindEigenvalues(3)
	require.ErrorIs(t, err, eigen.ErrBracketNotFound)
	assert.Len(t, res.Modes, 2)
}

// TestFindEigenvalues_IntegrationAlwaysFails skips every probe, so no
// bracket can form and no residual is ever invented.
func TestFindEigenvalues_IntegrationAlwaysFails(t *testing.T) {
	errPole := errors.New("pole")
	sys := equation.Func{Lo: 0, Hi: 1, F: func(float64, equation.State, float64) (equation.State, error) {
		return equation.State{}, errPole
	}}
	rec := &trace.Recorder{}
	s, err := eigen.New(sys, eigen.WithMaxExpansions(3), eigen.WithMaxRetries(1), eigen.WithObserver(rec))
	require.NoError(t, err)

	res, err := s.FindEigenvalues(2)
	require.ErrorIs(t, err, eigen.ErrBracketNotFound)
	assert.Equal(t, eigen.Failed, res.Phase)
	assert.Empty(t, res.Modes)
	assert.Empty(t, rec.Filter(trace.ProbeEvaluated))

	skipped := rec.Filter(trace.ProbeSkipped)
	require.NotEmpty(t, skipped)
	assert.ErrorIs(t, skipped[0].Err, eigen.ErrIntegrationFailure)
	assert.ErrorIs(t, skipped[0].Err, errPole)
}

// TestFindEigenvalues_NormalizationFailure sets a floor no eigenfunction
// reaches; the search succeeds but materialization fails.
func TestFindEigenvalues_NormalizationFailure(t *testing.T) {
	s, err := eigen.New(harmonic(t), eigen.WithNormFloor(1e6))
	require.NoError(t, err)

	res, err := s.FindEigenvalues(2)
	require.ErrorIs(t, err, eigen.ErrNormalizationFailure)

	var se *eigen.SequenceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Slot)
	assert.Equal(t, 2, se.Found)
	assert.Equal(t, eigen.Failed, res.Phase)
	assert.Empty(t, res.Modes)
}

func TestFindEigenvalue_BadSeed(t *testing.T) {
	s, err := eigen.New(harmonic(t))
	require.NoError(t, err)

	_, err = s.FindEigenvalue(math.NaN())
	require.ErrorIs(t, err, root.ErrBadInput)
}

func TestFindEigenvalue_NotConverged(t *testing.T) {
	s, err := eigen.New(harmonic(t), eigen.WithMaxBisections(5))
	require.NoError(t, err)

	est, err := s.FindEigenvalue(eigen.DefaultInitialSeed)
	require.ErrorIs(t, err, eigen.ErrNotConverged)
	assert.Equal(t, 5, est.Iterations)
	assert.InDelta(t, 1.0, est.Lambda, 0.8/32)
}

// TestParallelProbes compares sequential and concurrent ladders.
func TestParallelProbes(t *testing.T) {
	defer goleak.VerifyNone(t)

	seq, err := eigen.New(harmonic(t))
	require.NoError(t, err)
	par, err := eigen.New(harmonic(t), eigen.WithParallelProbes(4))
	require.NoError(t, err)

	a, err := seq.FindEigenvalues(3)
	require.NoError(t, err)
	b, err := par.FindEigenvalues(3)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a.Eigenvalues(), b.Eigenvalues()))
}

// TestWithLogger routes events through zap.
func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := eigen.New(harmonic(t), eigen.WithLogger(zap.New(core)))
	require.NoError(t, err)

	res, err := s.FindEigenvalues(1)
	require.NoError(t, err)

	conv := logs.FilterMessage("eigen: converged").All()
	require.Len(t, conv, 1)
	assert.Equal(t, zapcore.InfoLevel, conv[0].Level)
	assert.Equal(t, res.Run, conv[0].ContextMap()["run"])
	assert.Equal(t, 1, logs.FilterMessage("eigen: materialized").Len())
	assert.NotZero(t, logs.FilterMessage("eigen: bisection_step").Len())
}

// TestInitialSlopeScalesOnlyRawTrajectory: the normalized mode does not
// depend on u′(a), only the reported scale does.
func TestInitialSlopeScalesOnlyRawTrajectory(t *testing.T) {
	one, err := eigen.New(harmonic(t), eigen.WithGridPoints(200))
	require.NoError(t, err)
	two, err := eigen.New(harmonic(t), eigen.WithGridPoints(200), eigen.WithInitialSlope(2))
	require.NoError(t, err)

	a, err := one.FindEigenvalues(1)
	require.NoError(t, err)
	b, err := two.FindEigenvalues(1)
	require.NoError(t, err)

	assert.InDelta(t, a.Modes[0].Lambda, b.Modes[0].Lambda, 1e-5)
	assert.InDelta(t, a.Modes[0].Scale/2, b.Modes[0].Scale, 1e-5)
	assert.InDeltaSlice(t, a.Modes[0].U, b.Modes[0].U, 1e-4)
}

// TestSturmLiouville runs the singular operator with m = 1.
func TestSturmLiouville(t *testing.T) {
	if testing.Short() {
		t.Skip("singular operator: slow")
	}
	sys, err := equation.NewSturmLiouville(1)
	require.NoError(t, err)
	rec := &trace.Recorder{}
	s, err := eigen.New(sys, eigen.WithObserver(rec))
	require.NoError(t, err)

	res, err := s.FindEigenvalues(2)
	require.NoError(t, err)
	require.Equal(t, eigen.Exhausted, res.Phase)
	require.Len(t, res.Modes, 2)

	l1, l2 := res.Modes[0].Lambda, res.Modes[1].Lambda
	assert.Greater(t, l1, 0.0)
	assert.Less(t, l1, l2)
	for _, m := range res.Modes {
		assert.False(t, math.IsNaN(m.Scale) || math.IsInf(m.Scale, 0))
	}

	// The first sign change appears near zero, well before λ reaches 1.
	var first *trace.Event
	for _, ev := range rec.Events() {
		if ev.Kind == trace.BracketFound && ev.Slot == 1 {
			first = &ev
			break
		}
	}
	require.NotNil(t, first, "slot 1 never bracketed")
	assert.Less(t, first.Hi, 1.0)
	assert.LessOrEqual(t, first.Lo, l1)
	assert.GreaterOrEqual(t, first.Hi, l1)
}
