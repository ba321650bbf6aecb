// Package trace is the observational side channel of the eigenvalue
// search: a stream of structured events (probe evaluated, bracket found,
// bisection step, eigenvalue converged, …) delivered to a caller-supplied
// Observer.
//
// The numerical packages never format text; they only emit events.
// Observers decide what to do with them:
//
//   - Recorder keeps every event in memory (tests, post-mortems).
//   - NewZap logs events through a *zap.Logger.
//   - Multi fans one stream out to several observers.
//
// Events are observations only: dropping them never changes a result.
package trace
