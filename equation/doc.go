// Package equation defines the differential operators the shooting solver
// works on, written as first-order systems in the state (u, u′).
//
// 🚀 What is a System?
//
//	A System maps (x, state, λ) to the derivative of the state. The
//	second-order equation is solved algebraically for u″, so every
//	implementation returns (u′, u″) and never stores λ.
//
// ✨ Provided systems:
//   - SturmLiouville — the singular trigonometric operator on (0, π/2)
//     with an integer or real parameter m.
//   - Harmonic       — u″ = −λu on (0, L); spectrum (kπ/L)², used as a
//     reference problem with a known answer.
//   - Func           — adapter turning a plain function into a System.
//
// ⚙️ Usage:
//
//	sys, err := equation.NewSturmLiouville(1)
//	if err != nil {
//	  // ErrBadParameter
//	}
//	dy, err := sys.Derive(0.3, equation.State{0, 1}, 2.5)
//
// Systems are pure: concurrent calls with different λ are safe.
package equation
