// Package root locates sign changes of a scalar function and refines them
// by bisection. It knows nothing about differential equations: the
// function is any Func, and recoverable evaluation failures are identified
// by a caller-supplied Skip predicate.
//
// 🚀 Bracketing (Expand)
//
//	Starting at a seed x₀ with step Δ the ladder
//	  x₀, x₀+Δ, x₀+2Δ, x₀+4Δ, …
//	is scanned until two consecutive good probes have opposite signs. If
//	the upward ladder is exhausted the downward ladder x₀−Δ, x₀−2Δ, … is
//	scanned the same way, never at or below Floor. A probe within ZeroTol
//	of zero is a root by itself.
//
// 🚀 Bisection (Bisect)
//
//	The bracket is halved at its midpoint, keeping the half whose ends
//	differ in sign, until its width is ≤ Tol. A midpoint that cannot be
//	evaluated is perturbed inside the bracket; an exact zero ends the
//	search at once.
//
// ⚙️ Usage:
//
//	br, err := root.Expand(f, 0.1, root.DefaultBracketOptions())
//	if errors.Is(err, root.ErrBracketNotFound) {
//	  // retry with a larger step
//	}
//	est, err := root.Bisect(f, br, root.DefaultBisectOptions())
//
// Evaluation failures are never turned into numbers: a skipped probe is
// simply absent from the ladder.
package root
