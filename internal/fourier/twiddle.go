// Package fourier provides the in-memory Fourier primitives consumed by the
// out-of-core engine: twiddle-factor generation, a radix-2 transform kernel
// for chunks that fit in memory, and a direct DFT used for verification.
package fourier

import (
	"math"

	apperrors "github.com/moble/daft/internal/errors"
)

// Twiddles computes the complex exponential coefficients for a radix-2 stage
// of size n:
//
//	W[k] = exp(-2*pi*i * k / n)  for k in [0, n)
//
// The second half satisfies W[k+n/2] = -W[k]; it is materialized so that a
// recombination step can index the full vector directly. Coefficients are
// computed in double precision.
//
// Parameters:
//   - n: The stage size; must be even and at least 2.
//
// Returns:
//   - []complex128: The n twiddle coefficients.
//   - error: An InvalidSizeError if n is odd or less than 2.
func Twiddles(n int) ([]complex128, error) {
	if n < 2 || n%2 != 0 {
		return nil, apperrors.InvalidSizeError{Size: n}
	}
	w := make([]complex128, n)
	half := n / 2
	for k := 0; k < half; k++ {
		theta := -2 * math.Pi * float64(k) / float64(n)
		w[k] = complex(math.Cos(theta), math.Sin(theta))
		w[k+half] = -w[k]
	}
	return w, nil
}

// Conjugate returns the element-wise complex conjugate of w in a new slice.
// Conjugated twiddles turn a forward stage into an inverse stage.
func Conjugate(w []complex128) []complex128 {
	out := make([]complex128, len(w))
	for i, v := range w {
		out[i] = complex(real(v), -imag(v))
	}
	return out
}
