// Package chunked provides the chunked-series abstraction consumed by the
// out-of-core transform engine. A Series is a metadata-only view over a flat
// complex buffer: it selects a strided range of positions along one designated
// axis and partitions that range into contiguous chunks. All view operations
// (rechunking, strided slicing) manipulate shape and chunk metadata only; the
// underlying samples are touched only when a view is materialized.
package chunked

import (
	apperrors "github.com/moble/daft/internal/errors"
)

// Series is a read-only view over a flat complex128 buffer, logically shaped
// as outer x length x inner where outer and inner are the products of the
// batch dimensions before and after the transform axis. Along the axis the
// view selects positions start, start+step, start+2*step, ... of the root
// buffer, and carries a chunk grid whose sizes sum to the view length.
//
// Views share the root buffer and never mutate it.
type Series struct {
	data []complex128

	shape []int // logical shape of this view
	axis  int   // transform axis, normalized to [0, len(shape))

	outer int // product of dims before axis
	inner int // product of dims after axis

	axisFull int // root buffer extent along the axis
	start    int // first selected root position along the axis
	step     int // stride between selected root positions

	chunks []int // chunk sizes along the axis; sum equals Length()
}

// FromBuffer wraps a flat buffer in a Series view chunked along the given
// axis. The axis may be negative (counted from the end, numpy style). The
// buffer is interpreted in row-major order with the given shape.
//
// Parameters:
//   - data: The flat sample buffer, of length prod(shape).
//   - shape: The logical array shape.
//   - axis: The transform axis (negative values count from the end).
//   - chunkSize: The chunk extent along the axis (values > length are clamped).
//
// Returns:
//   - *Series: The chunked view.
//   - error: A ConfigError if shape, axis, or chunk size are invalid.
func FromBuffer(data []complex128, shape []int, axis, chunkSize int) (*Series, error) {
	if len(shape) == 0 {
		return nil, apperrors.NewConfigError("series shape must have at least one dimension")
	}
	total := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, apperrors.NewConfigError("series dimensions must be positive, got %v", shape)
		}
		total *= d
	}
	if total != len(data) {
		return nil, apperrors.NewConfigError("buffer length %d does not match shape %v", len(data), shape)
	}
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return nil, apperrors.NewConfigError("axis out of range for %d-dimensional series", len(shape))
	}
	if chunkSize <= 0 {
		return nil, apperrors.NewConfigError("chunk size must be positive, got %d", chunkSize)
	}

	outer, inner := 1, 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	s := &Series{
		data:     data,
		shape:    append([]int(nil), shape...),
		axis:     axis,
		outer:    outer,
		inner:    inner,
		axisFull: shape[axis],
		start:    0,
		step:     1,
		chunks:   uniformChunks(shape[axis], chunkSize),
	}
	return s, nil
}

// uniformChunks builds a chunk grid of the given size over n elements, with a
// possibly smaller trailing chunk.
func uniformChunks(n, chunkSize int) []int {
	if chunkSize > n {
		chunkSize = n
	}
	chunks := make([]int, 0, (n+chunkSize-1)/chunkSize)
	for rem := n; rem > 0; rem -= chunkSize {
		c := chunkSize
		if rem < c {
			c = rem
		}
		chunks = append(chunks, c)
	}
	return chunks
}

// Length returns the view's extent along the transform axis.
func (s *Series) Length() int { return s.shape[s.axis] }

// Axis returns the transform axis index.
func (s *Series) Axis() int { return s.axis }

// Shape returns a copy of the view's logical shape.
func (s *Series) Shape() []int { return append([]int(nil), s.shape...) }

// Batch returns the outer and inner batch extents surrounding the axis.
func (s *Series) Batch() (outer, inner int) { return s.outer, s.inner }

// Start returns the first selected root position along the axis.
func (s *Series) Start() int { return s.start }

// Step returns the stride between selected root positions along the axis.
func (s *Series) Step() int { return s.step }

// ChunkCount returns the number of chunks along the transform axis. This is
// the sole signal the decomposition engine uses to decide between recursion
// and the in-memory base case.
func (s *Series) ChunkCount() int { return len(s.chunks) }

// Chunks returns a copy of the chunk sizes along the transform axis.
func (s *Series) Chunks() []int { return append([]int(nil), s.chunks...) }

// Size returns the total number of samples addressed by the view.
func (s *Series) Size() int { return s.outer * s.Length() * s.inner }

// Rechunk returns a view identical to s but with a fresh uniform chunk grid
// of the given size along the transform axis. Pure metadata operation.
func (s *Series) Rechunk(chunkSize int) *Series {
	out := *s
	out.shape = append([]int(nil), s.shape...)
	out.chunks = uniformChunks(s.Length(), chunkSize)
	return &out
}

// Slice returns the sub-view selecting positions start, start+step, ... below
// stop along the transform axis, relative to s. The chunk grid of the result
// is derived from s's grid the way a chunked-array library would: each
// existing chunk contributes as many elements as the slice selects from it,
// and empty contributions are dropped. Strided slicing therefore changes the
// effective chunk boundaries, which is why chunk counts must always be read
// from the resulting view.
//
// Parameters:
//   - start: First selected index (inclusive), in view coordinates.
//   - stop: Upper bound (exclusive), in view coordinates.
//   - step: Stride between selected indices; must be positive.
//
// Returns:
//   - *Series: The sliced metadata-only view.
//   - error: A ConfigError if the bounds are invalid.
func (s *Series) Slice(start, stop, step int) (*Series, error) {
	if step <= 0 {
		return nil, apperrors.NewConfigError("slice step must be positive, got %d", step)
	}
	if start < 0 || stop > s.Length() || start > stop {
		return nil, apperrors.NewConfigError("slice [%d:%d] out of range for length %d", start, stop, s.Length())
	}

	newLen := 0
	if stop > start {
		newLen = (stop - start + step - 1) / step
	}

	out := *s
	out.shape = append([]int(nil), s.shape...)
	out.shape[s.axis] = newLen
	out.start = s.start + start*s.step
	out.step = s.step * step
	out.chunks = sliceChunks(s.chunks, start, stop, step)
	return &out, nil
}

// sliceChunks derives the chunk grid of a strided slice from the parent grid.
func sliceChunks(chunks []int, start, stop, step int) []int {
	out := make([]int, 0, len(chunks))
	lo := 0
	for _, c := range chunks {
		hi := lo + c
		// First selected index at or beyond lo, clamped by stop.
		first := start
		if first < lo {
			first += ((lo - start + step - 1) / step) * step
		}
		last := hi
		if stop < last {
			last = stop
		}
		if first < last {
			out = append(out, (last-first+step-1)/step)
		}
		lo = hi
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}

// Materialize copies the samples addressed by the view into a fresh
// contiguous buffer ordered as outer x length x inner. This is the only
// Series operation that reads array contents.
func (s *Series) Materialize() []complex128 {
	n := s.Length()
	out := make([]complex128, s.outer*n*s.inner)
	rowFull := s.axisFull * s.inner
	idx := 0
	for o := 0; o < s.outer; o++ {
		base := o * rowFull
		for k := 0; k < n; k++ {
			src := base + (s.start+k*s.step)*s.inner
			copy(out[idx:idx+s.inner], s.data[src:src+s.inner])
			idx += s.inner
		}
	}
	return out
}

// Concat materializes the given views and joins them along their common
// transform axis into a new root Series. All parts must agree on shape
// outside the axis. The resulting chunk grid is the concatenation of the
// parts' grids.
//
// Parameters:
//   - parts: The views to join, in order.
//
// Returns:
//   - *Series: A freshly backed Series covering all parts.
//   - error: A ConfigError if the parts are empty or incompatible.
func Concat(parts []*Series) (*Series, error) {
	if len(parts) == 0 {
		return nil, apperrors.NewConfigError("concat requires at least one part")
	}
	first := parts[0]
	totalLen := 0
	for _, p := range parts {
		if p.axis != first.axis || p.outer != first.outer || p.inner != first.inner {
			return nil, apperrors.NewConfigError("concat parts disagree outside the transform axis")
		}
		totalLen += p.Length()
	}

	shape := first.Shape()
	shape[first.axis] = totalLen
	data := make([]complex128, first.outer*totalLen*first.inner)

	// Assemble outer-major: for each outer index, lay the parts' axis ranges
	// end to end.
	bufs := make([][]complex128, len(parts))
	for i, p := range parts {
		bufs[i] = p.Materialize()
	}
	rowOut := totalLen * first.inner
	for o := 0; o < first.outer; o++ {
		offset := o * rowOut
		for i, p := range parts {
			block := p.Length() * p.inner
			copy(data[offset:offset+block], bufs[i][o*block:(o+1)*block])
			offset += block
		}
	}

	chunks := make([]int, 0)
	for _, p := range parts {
		chunks = append(chunks, p.chunks...)
	}

	return &Series{
		data:     data,
		shape:    shape,
		axis:     first.axis,
		outer:    first.outer,
		inner:    first.inner,
		axisFull: totalLen,
		start:    0,
		step:     1,
		chunks:   chunks,
	}, nil
}
