package eigen

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/sturm/normalize"
	"github.com/katalvlaran/sturm/ode"
	"github.com/katalvlaran/sturm/root"
	"github.com/katalvlaran/sturm/shooting"
	"github.com/katalvlaran/sturm/trace"
)

// Defaults.
const (
	DefaultMargin        = 1e-4
	DefaultGridPoints    = 1000
	DefaultTolerance     = root.DefaultTol
	DefaultMaxBisections = root.DefaultMaxIter
	DefaultMaxExpansions = root.DefaultMaxExpansions
	DefaultMaxRetries    = 3
	DefaultStep          = root.DefaultStep
	DefaultRetryGrowth   = 2.0
	DefaultInitialSeed   = 1e-3
	DefaultSeedOffset    = 0.05
	DefaultZeroTolerance = root.DefaultZeroTol
	DefaultNormFloor     = normalize.DefaultFloor
)

// Options configures a Solver.
//
// Margin         – ε cut from both ends of the operator's interval (> 0).
// GridPoints     – samples per materialized eigenfunction (≥ 2).
// Tolerance      – bisection stops when the bracket is this narrow (> 0).
// MaxBisections  – bisection iteration budget (≥ 1).
// MaxExpansions  – probes per direction in one bracket search (≥ 1).
// MaxRetries     – extra bracket searches per slot after BracketNotFound (≥ 0).
// Step           – first expansion step Δ (> 0).
// RetryGrowth    – Δ multiplier between retries (≥ 1).
// InitialSeed    – seed of the first slot.
// SeedOffset     – later seeds start at λₖ₋₁ + SeedOffset (> 0).
// ZeroTolerance  – |residual| at or below which a probe is a root (≥ 0).
// NormFloor      – norms at or below fail normalization (≥ 0).
// InitialSlope   – u′ at the left end (≠ 0).
// ParallelProbes – workers per probe ladder; ≤ 1 probes sequentially.
// Integrator     – adaptive integrator settings.
// Observer       – receives trace events; nil drops them.
// Logger         – if set, events are also logged through it.
type Options struct {
	Margin         float64
	GridPoints     int
	Tolerance      float64
	MaxBisections  int
	MaxExpansions  int
	MaxRetries     int
	Step           float64
	RetryGrowth    float64
	InitialSeed    float64
	SeedOffset     float64
	ZeroTolerance  float64
	NormFloor      float64
	InitialSlope   float64
	ParallelProbes int
	Integrator     ode.Options
	Observer       trace.Observer
	Logger         *zap.Logger
}

// Option represents a functional option for configuring a Solver.
type Option func(*Options)

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Margin:        DefaultMargin,
		GridPoints:    DefaultGridPoints,
		Tolerance:     DefaultTolerance,
		MaxBisections: DefaultMaxBisections,
		MaxExpansions: DefaultMaxExpansions,
		MaxRetries:    DefaultMaxRetries,
		Step:          DefaultStep,
		RetryGrowth:   DefaultRetryGrowth,
		InitialSeed:   DefaultInitialSeed,
		SeedOffset:    DefaultSeedOffset,
		ZeroTolerance: DefaultZeroTolerance,
		NormFloor:     DefaultNormFloor,
		InitialSlope:  shooting.DefaultSlope,
		Integrator:    ode.DefaultOptions(),
	}
}

// WithMargin sets the boundary margin ε.
func WithMargin(eps float64) Option { return func(o *Options) { o.Margin = eps } }

// WithGridPoints sets the trajectory sample count.
func WithGridPoints(n int) Option { return func(o *Options) { o.GridPoints = n } }

// WithTolerance sets the bisection width tolerance.
func WithTolerance(tol float64) Option { return func(o *Options) { o.Tolerance = tol } }

// WithMaxBisections sets the bisection iteration budget.
func WithMaxBisections(n int) Option { return func(o *Options) { o.MaxBisections = n } }

// WithMaxExpansions sets the number of probes per ladder direction.
func WithMaxExpansions(n int) Option { return func(o *Options) { o.MaxExpansions = n } }

// WithMaxRetries sets how many times a slot's bracket search is retried.
func WithMaxRetries(n int) Option { return func(o *Options) { o.MaxRetries = n } }

// WithStep sets the initial expansion step Δ.
func WithStep(step float64) Option { return func(o *Options) { o.Step = step } }

// WithRetryGrowth sets the factor applied to Δ on every retry.
func WithRetryGrowth(g float64) Option { return func(o *Options) { o.RetryGrowth = g } }

// WithInitialSeed sets the seed of the first slot.
func WithInitialSeed(seed float64) Option { return func(o *Options) { o.InitialSeed = seed } }

// WithSeedOffset sets the distance between a found eigenvalue and the
// next slot's seed.
func WithSeedOffset(off float64) Option { return func(o *Options) { o.SeedOffset = off } }

// WithZeroTolerance sets the residual magnitude accepted as an exact root.
func WithZeroTolerance(tol float64) Option { return func(o *Options) { o.ZeroTolerance = tol } }

// WithNormFloor sets the smallest acceptable eigenfunction norm.
func WithNormFloor(floor float64) Option { return func(o *Options) { o.NormFloor = floor } }

// WithInitialSlope sets u′ at the left end of the domain.
func WithInitialSlope(slope float64) Option { return func(o *Options) { o.InitialSlope = slope } }

// WithParallelProbes evaluates each probe ladder in waves of n concurrent
// probes. The result is identical to sequential probing.
func WithParallelProbes(n int) Option { return func(o *Options) { o.ParallelProbes = n } }

// WithIntegrator replaces the integrator settings; zero fields take the
// ode defaults.
func WithIntegrator(opts ode.Options) Option { return func(o *Options) { o.Integrator = opts } }

// WithObserver installs an event observer.
func WithObserver(obs trace.Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithLogger logs every event through log (see trace.NewZap).
func WithLogger(log *zap.Logger) Option { return func(o *Options) { o.Logger = log } }
