package normalize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

var (
	// ErrNormalizationFailure indicates a norm that is not finite or not
	// above the floor.
	ErrNormalizationFailure = errors.New("normalize: cannot normalize trajectory")

	// ErrLengthMismatch indicates grid and values of different length.
	ErrLengthMismatch = errors.New("normalize: grid and values differ in length")

	// ErrTooFewSamples indicates fewer than two samples.
	ErrTooFewSamples = errors.New("normalize: need at least two samples")

	// ErrUnsortedGrid indicates a grid that is not strictly increasing or
	// contains non-finite abscissas.
	ErrUnsortedGrid = errors.New("normalize: grid must be finite and strictly increasing")
)

// DefaultFloor is the smallest norm accepted by Normalize.
const DefaultFloor = 1e-12

// L2Norm returns √(∫u²dx) by the trapezoidal rule on xs.
//
// Errors:
//   - ErrLengthMismatch, ErrTooFewSamples, ErrUnsortedGrid for bad input.
//   - ErrNormalizationFailure if the result is NaN or ±Inf.
func L2Norm(xs, us []float64) (float64, error) {
	// 1) Validate the grid before handing it to gonum, which panics.
	if err := checkGrid(xs, us); err != nil {
		return 0, err
	}

	// 2) Integrate u².
	sq := make([]float64, len(us))
	floats.MulTo(sq, us, us)
	norm := math.Sqrt(integrate.Trapezoidal(xs, sq))
	if math.IsNaN(norm) || math.IsInf(norm, 0) {
		return 0, fmt.Errorf("%w: norm=%g", ErrNormalizationFailure, norm)
	}

	return norm, nil
}

// Normalize returns us/‖us‖ as a new slice together with the applied
// scale 1/‖us‖. us is not modified.
//
// Errors:
//   - as L2Norm;
//   - ErrNormalizationFailure when ‖us‖ ≤ floor.
func Normalize(xs, us []float64, floor float64) ([]float64, float64, error) {
	norm, err := L2Norm(xs, us)
	if err != nil {
		return nil, 0, err
	}
	if !(norm > floor) {
		return nil, 0, fmt.Errorf("%w: norm=%g ≤ floor=%g", ErrNormalizationFailure, norm, floor)
	}

	scale := 1 / norm
	out := append([]float64(nil), us...)
	floats.Scale(scale, out)

	return out, scale, nil
}

func checkGrid(xs, us []float64) error {
	if len(xs) != len(us) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(xs), len(us))
	}
	if len(xs) < 2 {
		return fmt.Errorf("%w: %d", ErrTooFewSamples, len(xs))
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) || (i > 0 && x <= xs[i-1]) {
			return fmt.Errorf("%w: x[%d]=%g", ErrUnsortedGrid, i, x)
		}
	}

	return nil
}
