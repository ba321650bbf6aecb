package eigen

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/sturm/normalize"
	"github.com/katalvlaran/sturm/trace"
)

// search is the state threaded through one FindEigenvalues call.
type search struct {
	run   string
	slot  int // 1-based slot being searched
	phase Phase
	found []slotResult
}

type slotResult struct {
	est     Estimate
	retries int
}

// seed returns the seed and exclusive lower floor of the current slot.
func (st *search) seed(o Options) (seed, floor float64) {
	if len(st.found) == 0 {
		return o.InitialSeed, math.Inf(-1)
	}
	last := st.found[len(st.found)-1].est.Lambda

	return last + o.SeedOffset, last
}

func (st *search) converge(est Estimate, retries int) {
	st.found = append(st.found, slotResult{est: est, retries: retries})
	st.phase = Converged
	st.slot++
}

// FindEigenvalues returns the first n eigenvalues above InitialSeed in
// ascending order, each with its normalized eigenfunction.
//
// Steps:
//  1. n == 0 returns an empty Exhausted result without any integration.
//  2. For slot k = 1..n: search from the slot seed; on success record
//     λₖ and move on; on failure stop with phase Failed.
//  3. Integrate once more at every recorded λ on the sample grid and
//     normalize the trajectory.
//
// Errors:
//   - ErrBadCount for n < 0.
//   - *SequenceError wrapping the failure of the slot that stopped the
//     search (ErrBracketNotFound after retries, ErrIntegrationFailure,
//     ErrNotConverged, ErrNormalizationFailure). The returned Result then
//     has phase Failed and holds the modes completed so far.
//
// Complexity: O(n·(retries+1)·(2·MaxExpansions + MaxBisections))
// integrations in the worst case.
func (s *Solver) FindEigenvalues(n int) (Result, error) {
	if n < 0 {
		return Result{}, fmt.Errorf("%w: n=%d", ErrBadCount, n)
	}
	st := &search{run: uuid.NewString(), slot: 1, phase: Searching}
	res := Result{Run: st.run, Requested: n, X: s.Grid()}

	// 1) Nothing to do.
	if n == 0 {
		st.phase = Exhausted
		res.Phase = st.phase
		return res, nil
	}

	// 2) Sequential slot searches; each seed depends on the previous λ.
	for st.slot <= n {
		st.phase = Searching
		obs := trace.Stamp(s.obs, st.run, st.slot)
		seed, floor := st.seed(s.opts)
		est, retries, err := s.locate(seed, floor, obs)
		if err != nil {
			st.phase = Failed
			trace.Emit(obs, trace.Event{Kind: trace.SlotFailed, Lambda: seed, Iteration: retries, Err: err})
			modes, merr := s.materialize(st)
			res.Phase, res.Modes = st.phase, modes
			if merr != nil {
				err = errors.Join(err, merr)
			}

			return res, &SequenceError{Run: st.run, Slot: st.slot, Found: len(st.found), Requested: n, Err: err}
		}
		st.converge(est, retries)
	}

	// 3) Trajectories.
	st.phase = Exhausted
	modes, err := s.materialize(st)
	res.Modes = modes
	if err != nil {
		st.phase = Failed
		res.Phase = st.phase
		return res, &SequenceError{Run: st.run, Slot: len(modes) + 1, Found: len(st.found), Requested: n, Err: err}
	}
	res.Phase = st.phase

	return res, nil
}

// materialize integrates every found eigenvalue on the grid and
// normalizes it. It stops at the first failure and returns the modes
// completed before it.
func (s *Solver) materialize(st *search) ([]Mode, error) {
	modes := make([]Mode, 0, len(st.found))
	for i, f := range st.found {
		obs := trace.Stamp(s.obs, st.run, i+1)
		m, err := s.mode(i+1, f)
		if err != nil {
			return modes, fmt.Errorf("mode %d (λ=%g): %w", i+1, f.est.Lambda, err)
		}
		trace.Emit(obs, trace.Event{Kind: trace.Materialized, Lambda: m.Lambda, Scale: m.Scale})
		modes = append(modes, m)
	}

	return modes, nil
}

func (s *Solver) mode(index int, f slotResult) (Mode, error) {
	traj, err := s.eval.Trajectory(f.est.Lambda, s.grid)
	if err != nil {
		return Mode{}, err
	}
	us, scale, err := normalize.Normalize(s.grid, traj.U(), s.opts.NormFloor)
	if err != nil {
		return Mode{}, err
	}
	slopes := traj.Slopes()
	floats.Scale(scale, slopes)

	return Mode{
		Index:      index,
		Lambda:     f.est.Lambda,
		Iterations: f.est.Iterations,
		Retries:    f.retries,
		U:          us,
		Slope:      slopes,
		Scale:      scale,
	}, nil
}
