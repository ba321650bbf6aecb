package equation

import (
	"fmt"
	"math"
)

// SturmLiouville is the singular operator
//
//	p(x)·u″ + q(x)·u′ + (r(x) − λ)·u = 0,   x ∈ (0, π/2)
//
// with
//
//	p = −½·cos⁴x
//	q = −½·cos³x·cos2x / sin x
//	r = m²·cos²x / (2·sin²x) − cos x / sin x
//
// so that u″ = (−q·u′ − (r − λ)·u) / p.
//
// q and r blow up as x → 0 and p vanishes as x → π/2. Under ρ = tan x the
// operator becomes the radial part of the two-dimensional Coulomb problem
// −(1/ρ)(ρu′)′ + (m²/ρ² − 2/ρ)u = 2λu, so the bound spectrum is
// λ = −1/(2(n + |m| + ½)²) and, once the right end is cut at π/2 − ε,
// the positive spectrum is a dense ladder with spacing ≈ √(2λ)·π·ε.
type SturmLiouville struct {
	m float64
}

// NewSturmLiouville returns the operator for parameter m.
//
// Errors:
//   - ErrBadParameter if m is NaN or ±Inf.
func NewSturmLiouville(m float64) (*SturmLiouville, error) {
	if !isFinite(m) {
		return nil, fmt.Errorf("%w: m=%g", ErrBadParameter, m)
	}

	return &SturmLiouville{m: m}, nil
}

// M returns the operator parameter.
func (s *SturmLiouville) M() float64 { return s.m }

// Interval returns (0, π/2).
func (s *SturmLiouville) Interval() (float64, float64) { return 0, math.Pi / 2 }

// Coefficients evaluates p, q and r at x.
//
// Errors:
//   - ErrSingularCoefficient when |sin x| or |cos x| is below the guard
//     floor (x on, or numerically on, an endpoint).
func (s *SturmLiouville) Coefficients(x float64) (p, q, r float64, err error) {
	sinX, cosX := math.Sincos(x)
	if math.Abs(sinX) < denominatorFloor || math.Abs(cosX) < denominatorFloor {
		return 0, 0, 0, fmt.Errorf("%w: x=%g", ErrSingularCoefficient, x)
	}
	cos2X := math.Cos(2 * x)
	cos2 := cosX * cosX

	p = -0.5 * cos2 * cos2
	q = -0.5 * cos2 * cosX * cos2X / sinX
	r = s.m*s.m*cos2/(2*sinX*sinX) - cosX/sinX

	return p, q, r, nil
}

// Derive returns (u′, u″) at x for the trial eigenvalue lambda.
func (s *SturmLiouville) Derive(x float64, y State, lambda float64) (State, error) {
	p, q, r, err := s.Coefficients(x)
	if err != nil {
		return State{}, err
	}
	u, du := y[0], y[1]

	return State{du, (-q*du - (r-lambda)*u) / p}, nil
}
