package equation

import (
	"fmt"
	"math"
)

// Harmonic is u″ = −λu on (0, L). With u(a) = 0 on a sub-interval
// [a, b] the Dirichlet eigenvalues are (kπ/(b−a))², k = 1, 2, …
type Harmonic struct {
	length float64
}

// NewHarmonic returns the operator on (0, length).
//
// Errors:
//   - ErrBadParameter if length is not a positive finite number.
func NewHarmonic(length float64) (*Harmonic, error) {
	if !isFinite(length) || length <= 0 {
		return nil, fmt.Errorf("%w: length=%g", ErrBadParameter, length)
	}

	return &Harmonic{length: length}, nil
}

// Interval returns (0, L).
func (h *Harmonic) Interval() (float64, float64) { return 0, h.length }

// Derive returns (u′, −λu).
func (h *Harmonic) Derive(_ float64, y State, lambda float64) (State, error) {
	return State{y[1], -lambda * y[0]}, nil
}

// Eigenvalue returns the k-th (1-based) Dirichlet eigenvalue on
// [margin, L − margin].
func (h *Harmonic) Eigenvalue(k int, margin float64) float64 {
	w := float64(k) * math.Pi / (h.length - 2*margin)

	return w * w
}
