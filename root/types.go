package root

import (
	"errors"
	"math"

	"github.com/katalvlaran/sturm/trace"
)

var (
	// ErrBracketNotFound indicates that the expansion budget ran out
	// without a sign change.
	ErrBracketNotFound = errors.New("root: no sign change within expansion budget")

	// ErrInvalidBracket indicates a bracket whose ends share a sign.
	ErrInvalidBracket = errors.New("root: bracket ends do not differ in sign")

	// ErrNotConverged indicates that bisection used MaxIter iterations
	// without reaching Tol.
	ErrNotConverged = errors.New("root: bisection did not converge")

	// ErrNonFiniteValue indicates that Func returned NaN or ±Inf without
	// an error.
	ErrNonFiniteValue = errors.New("root: function value is not finite")

	// ErrBadInput indicates invalid options, seed or bracket.
	ErrBadInput = errors.New("root: invalid input")
)

// Func is the scalar function whose sign changes are searched.
type Func func(x float64) (float64, error)

// Bracket is an interval [Lo, Hi] with residuals of opposite sign at its
// ends. Lo == Hi marks an exact root found while probing.
type Bracket struct {
	Lo, Hi   float64
	FLo, FHi float64
}

// Exact reports whether the bracket collapsed onto a probed root.
func (b Bracket) Exact() bool { return b.Lo == b.Hi }

// Width returns Hi − Lo.
func (b Bracket) Width() float64 { return b.Hi - b.Lo }

// Estimate is the outcome of a bisection.
type Estimate struct {
	// Root is the midpoint of the final bracket (or the exact root).
	Root float64

	// Iterations counts midpoint evaluations that updated the bracket.
	Iterations int

	// Lo and Hi are the final bracket.
	Lo, Hi float64
}

// Defaults.
const (
	DefaultStep          = 0.1
	DefaultMaxExpansions = 20
	DefaultZeroTol       = 1e-12
	DefaultTol           = 1e-6
	DefaultMaxIter       = 100
)

// BracketOptions configures Expand.
//
// Fields:
//   - Step          — initial Δ (> 0).
//   - MaxExpansions — probes per direction (≥ 1).
//   - ZeroTol       — |f| ≤ ZeroTol accepts a probe as a root (≥ 0).
//   - Floor         — probes must be strictly above Floor; −Inf disables.
//   - Skip          — reports whether an evaluation error is recoverable;
//     nil makes every error fatal.
//   - Parallel      — > 1 evaluates each ladder in waves of that many
//     concurrent probes.
//   - Observer      — receives ProbeEvaluated/ProbeSkipped/BracketFound.
type BracketOptions struct {
	Step          float64
	MaxExpansions int
	ZeroTol       float64
	Floor         float64
	Skip          func(error) bool
	Parallel      int
	Observer      trace.Observer
}

// DefaultBracketOptions returns the documented defaults (no floor).
func DefaultBracketOptions() BracketOptions {
	return BracketOptions{
		Step:          DefaultStep,
		MaxExpansions: DefaultMaxExpansions,
		ZeroTol:       DefaultZeroTol,
		Floor:         math.Inf(-1),
	}
}

// BisectOptions configures Bisect.
//
// Fields:
//   - Tol      — absolute bracket width at which bisection stops (> 0).
//   - MaxIter  — iteration budget (≥ 1).
//   - ZeroTol  — |f(mid)| ≤ ZeroTol ends the search at mid (≥ 0).
//   - Skip     — recoverable-error predicate, as for BracketOptions.
//   - Observer — receives BisectionStep and ProbeSkipped.
type BisectOptions struct {
	Tol      float64
	MaxIter  int
	ZeroTol  float64
	Skip     func(error) bool
	Observer trace.Observer
}

// DefaultBisectOptions returns the documented defaults.
func DefaultBisectOptions() BisectOptions {
	return BisectOptions{
		Tol:     DefaultTol,
		MaxIter: DefaultMaxIter,
		ZeroTol: DefaultZeroTol,
	}
}

// opposite reports whether a and b lie on different sides of zero.
func opposite(a, b float64) bool { return math.Signbit(a) != math.Signbit(b) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func skippable(skip func(error) bool, err error) bool { return skip != nil && skip(err) }
