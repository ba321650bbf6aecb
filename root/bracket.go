package root

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/sturm/trace"
)

// probe is one evaluation of f; err != nil marks a missing value.
type probe struct {
	x, f float64
	err  error
}

// Expand searches outward from seed for a sign change of f.
//
// Steps:
//  1. Validate options and seed (seed must lie above Floor).
//  2. Evaluate f(seed); a zero residual is returned as an exact bracket.
//  3. Scan the upward ladder seed + Δ·2^k, k = 0..MaxExpansions−1,
//     comparing each good probe with the previous good one.
//  4. If no sign change, scan the downward ladder seed − Δ·2^k the same
//     way, stopping at the first point ≤ Floor.
//
// Probes whose evaluation fails with a Skip-able error are left out of the
// comparison chain; other errors abort the search.
//
// With Parallel > 1 each ladder is evaluated in waves of Parallel points.
// A wave is scanned in order before the next one starts, so the result
// equals the sequential one and at most Parallel−1 extra points are
// evaluated past the one that ends the search.
//
// Errors:
//   - ErrBadInput for invalid options or seed.
//   - ErrBracketNotFound when both ladders are exhausted.
//   - any non-skippable error returned by f, or ErrNonFiniteValue.
//
// Complexity: at most 2·MaxExpansions + 1 evaluations of f.
func Expand(f Func, seed float64, opts BracketOptions) (Bracket, error) {
	// 1) Validate.
	if err := checkBracketOptions(f, seed, opts); err != nil {
		return Bracket{}, err
	}
	s := &scanner{f: f, opts: opts}

	// 2) Seed probe.
	origin := s.eval(seed)
	if br, done, err := s.consider(probe{err: errNoPrevious}, origin); done || err != nil {
		return br, err
	}

	// 3) Upward ladder.
	up := make([]float64, 0, opts.MaxExpansions)
	for k := 0; k < opts.MaxExpansions; k++ {
		up = append(up, seed+opts.Step*math.Ldexp(1, k))
	}
	if br, ok, err := s.ladder(origin, up); ok || err != nil {
		return br, err
	}

	// 4) Downward ladder, strictly above Floor.
	down := make([]float64, 0, opts.MaxExpansions)
	for k := 0; k < opts.MaxExpansions; k++ {
		x := seed - opts.Step*math.Ldexp(1, k)
		if x <= opts.Floor {
			break
		}
		down = append(down, x)
	}
	if br, ok, err := s.ladder(origin, down); ok || err != nil {
		return br, err
	}

	trace.Emit(opts.Observer, trace.Event{
		Kind:      trace.BracketExhausted,
		Lambda:    seed,
		Step:      opts.Step,
		Iteration: opts.MaxExpansions,
	})

	return Bracket{}, fmt.Errorf("%w: seed=%g step=%g expansions=%d", ErrBracketNotFound, seed, opts.Step, opts.MaxExpansions)
}

// errNoPrevious marks the absent predecessor of the seed probe.
var errNoPrevious = errors.New("root: no previous probe")

// scanner evaluates and compares probes for one Expand call.
type scanner struct {
	f    Func
	opts BracketOptions
}

func (s *scanner) eval(x float64) probe {
	fx, err := s.f(x)
	if err == nil && !finite(fx) {
		err = fmt.Errorf("%w: f(%g) = %g", ErrNonFiniteValue, x, fx)
	}

	return probe{x: x, f: fx, err: err}
}

// ladder scans points in order, starting the comparison chain at origin.
func (s *scanner) ladder(origin probe, points []float64) (Bracket, bool, error) {
	wave := 1
	if s.opts.Parallel > 1 {
		wave = s.opts.Parallel
	}

	prev := origin
	for start := 0; start < len(points); start += wave {
		end := min(start+wave, len(points))
		for _, p := range s.batch(points[start:end]) {
			br, done, err := s.consider(prev, p)
			if done || err != nil {
				return br, true, err
			}
			if p.err == nil {
				prev = p
			}
		}
	}

	return Bracket{}, false, nil
}

// consider reports p to the observer and decides whether (prev, p) ends
// the search: p is a root, or p and prev straddle a sign change.
func (s *scanner) consider(prev, p probe) (Bracket, bool, error) {
	if p.err != nil {
		if !skippable(s.opts.Skip, p.err) {
			return Bracket{}, true, p.err
		}
		trace.Emit(s.opts.Observer, trace.Event{Kind: trace.ProbeSkipped, Lambda: p.x, Err: p.err})

		return Bracket{}, false, nil
	}
	trace.Emit(s.opts.Observer, trace.Event{Kind: trace.ProbeEvaluated, Lambda: p.x, Residual: p.f})

	var br Bracket
	switch {
	case math.Abs(p.f) <= s.opts.ZeroTol:
		br = Bracket{Lo: p.x, Hi: p.x, FLo: p.f, FHi: p.f}
	case prev.err == nil && opposite(prev.f, p.f):
		br = Bracket{Lo: prev.x, Hi: p.x, FLo: prev.f, FHi: p.f}
		if br.Lo > br.Hi {
			br = Bracket{Lo: p.x, Hi: prev.x, FLo: p.f, FHi: prev.f}
		}
	default:
		return Bracket{}, false, nil
	}
	trace.Emit(s.opts.Observer, trace.Event{
		Kind:     trace.BracketFound,
		Lambda:   p.x,
		Residual: p.f,
		Lo:       br.Lo,
		Hi:       br.Hi,
	})

	return br, true, nil
}

// batch evaluates points, concurrently when there is more than one.
func (s *scanner) batch(points []float64) []probe {
	results := make([]probe, len(points))
	if len(points) == 1 {
		results[0] = s.eval(points[0])

		return results
	}
	var g errgroup.Group
	for i, x := range points {
		g.Go(func() error {
			results[i] = s.eval(x)
			return nil
		})
	}
	_ = g.Wait() // workers never fail; errors live in results

	return results
}

func checkBracketOptions(f Func, seed float64, o BracketOptions) error {
	switch {
	case f == nil:
		return fmt.Errorf("%w: nil function", ErrBadInput)
	case !finite(seed):
		return fmt.Errorf("%w: seed=%g", ErrBadInput, seed)
	case !finite(o.Step) || o.Step <= 0:
		return fmt.Errorf("%w: step=%g must be finite and > 0", ErrBadInput, o.Step)
	case o.MaxExpansions < 1:
		return fmt.Errorf("%w: MaxExpansions=%d must be ≥ 1", ErrBadInput, o.MaxExpansions)
	case !finite(o.ZeroTol) || o.ZeroTol < 0:
		return fmt.Errorf("%w: ZeroTol=%g must be finite and ≥ 0", ErrBadInput, o.ZeroTol)
	case math.IsNaN(o.Floor) || seed <= o.Floor:
		return fmt.Errorf("%w: seed=%g must lie above floor=%g", ErrBadInput, seed, o.Floor)
	}

	return nil
}
