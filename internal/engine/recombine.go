package engine

import (
	apperrors "github.com/moble/daft/internal/errors"
)

// Combine merges two half-length transform results into one full-length
// result using the standard radix-2 butterfly:
//
//	full[k]     = even[k] + W[k]     * odd[k]
//	full[k+n/2] = even[k] + W[k+n/2] * odd[k]   (W[k+n/2] = -W[k])
//
// Both inputs are contiguous buffers shaped outer x n/2 x inner; the twiddle
// multiplication broadcasts across the batch dimensions. A fresh output
// buffer is always allocated, since the inputs may still be referenced by the
// cache.
//
// Parameters:
//   - evenRes: Transform of the even-indexed sub-series.
//   - oddRes: Transform of the odd-indexed sub-series.
//   - twiddles: The n twiddle coefficients for this stage.
//   - inner: The product of batch dimensions after the axis.
//
// Returns:
//   - []complex128: The combined full-length result, shaped outer x n x inner.
//   - error: A ShapeMismatchError if the halves disagree with each other or
//     with the twiddle vector.
func Combine(evenRes, oddRes, twiddles []complex128, inner int) ([]complex128, error) {
	if len(evenRes) != len(oddRes) {
		return nil, apperrors.ShapeMismatchError{EvenLen: len(evenRes), OddLen: len(oddRes)}
	}
	n := len(twiddles)
	half := n / 2
	if half == 0 || inner <= 0 || len(evenRes)%(half*inner) != 0 {
		return nil, apperrors.ShapeMismatchError{EvenLen: len(evenRes), OddLen: half * inner}
	}
	outer := len(evenRes) / (half * inner)

	full := make([]complex128, outer*n*inner)
	for o := 0; o < outer; o++ {
		srcBase := o * half * inner
		dstBase := o * n * inner
		for k := 0; k < half; k++ {
			w1 := twiddles[k]
			w2 := twiddles[k+half]
			src := srcBase + k*inner
			lo := dstBase + k*inner
			hi := dstBase + (k+half)*inner
			for i := 0; i < inner; i++ {
				e := evenRes[src+i]
				d := oddRes[src+i]
				full[lo+i] = e + w1*d
				full[hi+i] = e + w2*d
			}
		}
	}
	return full, nil
}

// combineRange computes only the output positions [lo, hi) along the axis of
// the butterfly above, shaped outer x (hi-lo) x inner. It lets the
// materializer stream the root node to a sink chunk by chunk without ever
// allocating the full-length result.
func combineRange(evenRes, oddRes, twiddles []complex128, inner, lo, hi int) ([]complex128, error) {
	if len(evenRes) != len(oddRes) {
		return nil, apperrors.ShapeMismatchError{EvenLen: len(evenRes), OddLen: len(oddRes)}
	}
	n := len(twiddles)
	half := n / 2
	if half == 0 || inner <= 0 || len(evenRes)%(half*inner) != 0 {
		return nil, apperrors.ShapeMismatchError{EvenLen: len(evenRes), OddLen: half * inner}
	}
	if lo < 0 || hi > n || lo > hi {
		return nil, apperrors.ShapeMismatchError{EvenLen: lo, OddLen: hi}
	}
	outer := len(evenRes) / (half * inner)

	span := hi - lo
	out := make([]complex128, outer*span*inner)
	for o := 0; o < outer; o++ {
		srcBase := o * half * inner
		dstBase := o * span * inner
		for k := lo; k < hi; k++ {
			idx := k
			if idx >= half {
				idx -= half
			}
			w := twiddles[k]
			src := srcBase + idx*inner
			dst := dstBase + (k-lo)*inner
			for i := 0; i < inner; i++ {
				out[dst+i] = evenRes[src+i] + w*oddRes[src+i]
			}
		}
	}
	return out, nil
}
