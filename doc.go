// Package sturm computes eigenvalues and eigenfunctions of singular
// Sturm–Liouville problems by the shooting method.
//
// 🚀 What is in the box?
//
//	A small pipeline of focused packages, leaf first:
//		• equation  — the operators as first-order systems in (u, u′)
//		• ode       — adaptive Dormand–Prince 5(4) integrator
//		• shooting  — λ ↦ u(b−ε), the shooting residual
//		• root      — bracket expansion and bisection on any scalar function
//		• normalize — trapezoidal L² normalization
//		• eigen     — sequential multi-eigenvalue search and the public API
//		• trace     — structured event stream (Recorder, zap adapter)
//
// ✨ Why shooting?
//
//   - Works directly on the singular operator; the boundary conditions are
//     applied a margin ε inside the endpoints.
//   - Every failure is typed: an integration that blows up is a missing
//     residual, never a zero.
//   - Deterministic: the same configuration always returns the same
//     eigenvalues, with or without concurrent probing.
//
// Quick example:
//
//	sys, _ := equation.NewSturmLiouville(1)
//	s, err := eigen.New(sys)
//	if err != nil {
//	  log.Fatal(err)
//	}
//	res, err := s.FindEigenvalues(3)
//	for _, m := range res.Modes {
//	  fmt.Println(m.Index, m.Lambda)
//	}
//
// The sturm command (cmd/sturm) drives the same pipeline from YAML
// configuration and flags and can plot the eigenfunctions.
//
//	go install github.com/katalvlaran/sturm/cmd/sturm@latest
package sturm
