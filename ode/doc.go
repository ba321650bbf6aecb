// Package ode integrates parameterized first-order systems with an
// explicit adaptive Runge–Kutta method.
//
// 🚀 Method
//
//	Dormand–Prince 5(4): seven stages, first-same-as-last, the fifth-order
//	solution is propagated and the embedded fourth-order solution supplies
//	the local error estimate. A step is accepted when the RMS of
//	err_i / (AbsTol + RelTol·max|y_i|) is ≤ 1; the next step is scaled by
//	0.9·err^(−1/5), clamped to [0.2, 5].
//
// ✨ Key features:
//   - automatic initial step (Hairer/Nørsett/Wanner estimate)
//   - optional sample grid: steps land exactly on every grid abscissa
//   - hard budgets: MaxSteps attempts, a minimum step of 16 ulp(x), and a
//     divergence bound MaxMagnitude on |u|, |u′|
//   - typed failures: every failure is a *Failure matching
//     ErrIntegrationFailure plus the concrete cause
//
// ⚙️ Usage:
//
//	in, err := ode.New(ode.DefaultOptions())
//	res, err := in.Integrate(sys, lambda, x0, x1, equation.State{0, 1}, grid)
//	if errors.Is(err, ode.ErrIntegrationFailure) {
//	  // residual undefined for this λ
//	}
//	fmt.Println(res.Terminal.U(), res.Stats.Steps)
//
// An Integrator holds only its options; it is safe for concurrent use.
package ode
