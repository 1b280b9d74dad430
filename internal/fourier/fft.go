package fourier

import (
	"math"
	"math/bits"

	apperrors "github.com/moble/daft/internal/errors"
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Transform computes the in-place radix-2 FFT of x using the standard DFT
// convention X[k] = sum_n x[n]*exp(-2*pi*i*k*n/N). When inverse is true the
// conjugate transform is computed WITHOUT the 1/N scaling; callers that need
// a true inverse apply the scaling once at the top level.
//
// Parameters:
//   - x: The samples to transform, modified in place.
//   - inverse: Whether to run the conjugate (unscaled inverse) transform.
//
// Returns:
//   - error: An UnsupportedLengthError if len(x) is not a power of two.
func Transform(x []complex128, inverse bool) error {
	n := len(x)
	if n == 0 || !IsPowerOfTwo(n) {
		return apperrors.UnsupportedLengthError{Length: n, Axis: 0}
	}
	if n == 1 {
		return nil
	}

	// Bit-reversal permutation.
	shift := bits.UintSize - uint(bits.Len(uint(n-1)))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse(uint(i)) >> shift)
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	// Iterative butterflies, stage size doubling each pass.
	for m := 2; m <= n; m <<= 1 {
		theta := sign * 2 * math.Pi / float64(m)
		wm := complex(math.Cos(theta), math.Sin(theta))
		for base := 0; base < n; base += m {
			w := complex(1, 0)
			for j := 0; j < m/2; j++ {
				t := w * x[base+j+m/2]
				u := x[base+j]
				x[base+j] = u + t
				x[base+j+m/2] = u - t
				w *= wm
			}
		}
	}
	return nil
}

// TransformAxis applies the radix-2 transform along the middle axis of a
// contiguous buffer shaped outer x n x inner, treating every (outer, inner)
// pair as an independent batch lane. The buffer is modified in place.
//
// Parameters:
//   - data: The contiguous samples, of length outer*n*inner.
//   - outer: The product of batch dimensions before the axis.
//   - n: The transform length; must be a power of two.
//   - inner: The product of batch dimensions after the axis.
//   - inverse: Whether to run the conjugate (unscaled inverse) transform.
//
// Returns:
//   - error: An UnsupportedLengthError if n is not a power of two, or a
//     ShapeMismatchError if the buffer length disagrees with the shape.
func TransformAxis(data []complex128, outer, n, inner int, inverse bool) error {
	if len(data) != outer*n*inner {
		return apperrors.ShapeMismatchError{EvenLen: len(data), OddLen: outer * n * inner}
	}
	if inner == 1 {
		for o := 0; o < outer; o++ {
			if err := Transform(data[o*n:(o+1)*n], inverse); err != nil {
				return err
			}
		}
		return nil
	}

	lane := make([]complex128, n)
	for o := 0; o < outer; o++ {
		base := o * n * inner
		for i := 0; i < inner; i++ {
			for k := 0; k < n; k++ {
				lane[k] = data[base+k*inner+i]
			}
			if err := Transform(lane, inverse); err != nil {
				return err
			}
			for k := 0; k < n; k++ {
				data[base+k*inner+i] = lane[k]
			}
		}
	}
	return nil
}

// DirectDFT computes the DFT of x by the O(n^2) definition. It supports any
// length and is used for verification and testing, never in the hot path.
func DirectDFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			theta := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			sum += x[j] * complex(math.Cos(theta), math.Sin(theta))
		}
		out[k] = sum
	}
	return out
}
