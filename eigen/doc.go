// Package eigen finds eigenvalues and normalized eigenfunctions of a
// Sturm–Liouville problem by the shooting method.
//
// 🚀 Pipeline
//
//	Solver ─▶ root.Expand ─▶ root.Bisect ─▶ shooting.Evaluator ─▶ ode.Integrator ─▶ equation.System
//
//	For each slot k = 1..N the solver seeds a bracket search (the first
//	at InitialSeed, later ones at λₖ₋₁ + SeedOffset and never at or below
//	λₖ₋₁), refines the bracket by bisection and records λₖ. Once every
//	slot has converged each eigenvalue is integrated once more on the
//	sample grid and normalized to unit L² norm.
//
// ✨ Phases
//
//	Searching(k) ─▶ Converged(k) ─▶ … ─▶ Exhausted
//	      │
//	      └──▶ Failed (partial result + *SequenceError)
//
//	A missing bracket is retried with the expansion step multiplied by
//	RetryGrowth, at most MaxRetries times; every other failure is fatal
//	to the whole call. A failed call still returns the modes found so far.
//
// ⚙️ Usage:
//
//	sys, _ := equation.NewSturmLiouville(1)
//	s, err := eigen.New(sys, eigen.WithTolerance(1e-8), eigen.WithLogger(log))
//	if err != nil {
//	  // errors.Is(err, eigen.ErrConfiguration)
//	}
//	res, err := s.FindEigenvalues(3)
//	var se *eigen.SequenceError
//	if errors.As(err, &se) {
//	  // res.Modes holds se.Found modes
//	}
//
// Closely spaced eigenvalues (closer than the probe ladder spacing) may be
// stepped over: completeness of the returned list is not certified.
//
// A Solver is immutable after New and safe for concurrent use.
package eigen
