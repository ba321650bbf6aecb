// Package shooting turns an eigenvalue problem into a scalar residual.
//
// For a trial λ the system is integrated from the left end of the working
// Domain with u = 0 and u′ = slope; the residual is u at the right end.
// Eigenvalues are the zeros of λ ↦ residual(λ).
//
// The Domain stays a margin ε away from the ends of the operator's
// interval, where its coefficients are singular; the boundary conditions
// are applied at a+ε and b−ε.
//
// Evaluators are safe for concurrent use: every call integrates from
// scratch and shares no mutable state apart from an atomic call counter.
package shooting
