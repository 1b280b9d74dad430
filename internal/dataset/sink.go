package dataset

import (
	"encoding/binary"
	"math"
	"os"
	"sort"
	"sync"

	apperrors "github.com/moble/daft/internal/errors"
)

// FileSink streams transform output chunks into a dataset file. Chunks are
// addressed by their offset along the transform axis and land at absolute
// file positions, so a re-write of the same offset with the same data is a
// no-op at the byte level. The sink never buffers chunk payloads.
type FileSink struct {
	path string
	name string
	axis int

	mu        sync.Mutex
	file      *os.File
	headerLen int64
	outer     int
	n         int
	inner     int
}

// NewFileSink creates a sink that will write the dataset under the given
// name, transformed along the given axis of the declared shape. The file is
// not touched until Create is called.
//
// Parameters:
//   - path: Destination file.
//   - name: Dataset name stored in the header.
//   - axis: The transform axis of the shape that Create will declare.
//
// Returns:
//   - *FileSink: The sink, ready for Create.
func NewFileSink(path, name string, axis int) *FileSink {
	return &FileSink{path: path, name: name, axis: axis}
}

// Create declares the dataset shape: it writes the header and preallocates
// the payload region. It must be called exactly once before WriteChunk.
func (s *FileSink) Create(shape []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	axis := s.axis
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return apperrors.NewConfigError("sink axis out of range for shape %v", shape)
	}

	h := Header{DType: DTypeComplex128, Name: s.name, Shape: shape}

	f, err := os.Create(s.path)
	if err != nil {
		return apperrors.WrapError(err, "creating output dataset %s", s.path)
	}
	if err := writeHeader(f, h); err != nil {
		f.Close()
		return apperrors.WrapError(err, "writing header of %s", s.path)
	}
	if err := f.Truncate(h.size() + int64(h.Samples())*16); err != nil {
		f.Close()
		return apperrors.WrapError(err, "preallocating %s", s.path)
	}

	s.file = f
	s.headerLen = h.size()
	s.outer, s.inner = 1, 1
	for i := 0; i < axis; i++ {
		s.outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		s.inner *= shape[i]
	}
	s.n = shape[axis]
	return nil
}

// WriteChunk stores one outer x span x inner block covering axis positions
// [offset, offset+span). Each outer row lands at its own absolute file
// position; a chunk is fully written before WriteChunk returns.
func (s *FileSink) WriteChunk(chunk []complex128, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return apperrors.NewConfigError("sink used before Create")
	}
	if s.outer*s.inner == 0 || len(chunk)%(s.outer*s.inner) != 0 {
		return apperrors.NewConfigError("chunk length %d does not tile shape", len(chunk))
	}
	span := len(chunk) / (s.outer * s.inner)
	if offset < 0 || int(offset)+span > s.n {
		return apperrors.NewConfigError("chunk [%d:%d) out of range for axis length %d", offset, int(offset)+span, s.n)
	}

	row := make([]byte, span*s.inner*16)
	for o := 0; o < s.outer; o++ {
		src := chunk[o*span*s.inner : (o+1)*span*s.inner]
		for i, v := range src {
			binary.LittleEndian.PutUint64(row[i*16:], math.Float64bits(real(v)))
			binary.LittleEndian.PutUint64(row[i*16+8:], math.Float64bits(imag(v)))
		}
		pos := s.headerLen + int64(o*s.n*s.inner+int(offset)*s.inner)*16
		if _, err := s.file.WriteAt(row, pos); err != nil {
			return apperrors.WrapError(err, "writing chunk at offset %d of %s", offset, s.path)
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// MemorySink collects output chunks in memory. It mirrors FileSink's
// contract and is used by tests and the verification mode.
type MemorySink struct {
	mu      sync.Mutex
	shape   []int
	axis    int
	outer   int
	n       int
	inner   int
	data    []complex128
	written map[int64]int // offset -> span, for chunk accounting
}

// NewMemorySink creates a memory sink for the given transform axis.
func NewMemorySink(axis int) *MemorySink {
	return &MemorySink{axis: axis, written: make(map[int64]int)}
}

// Create declares the output shape and allocates the backing buffer.
func (s *MemorySink) Create(shape []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	axis := s.axis
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return apperrors.NewConfigError("sink axis out of range for shape %v", shape)
	}
	s.shape = append([]int(nil), shape...)
	s.outer, s.inner = 1, 1
	for i := 0; i < axis; i++ {
		s.outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		s.inner *= shape[i]
	}
	s.n = shape[axis]
	s.data = make([]complex128, s.outer*s.n*s.inner)
	return nil
}

// WriteChunk stores one outer x span x inner block at the given axis offset.
func (s *MemorySink) WriteChunk(chunk []complex128, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return apperrors.NewConfigError("sink used before Create")
	}
	if s.outer*s.inner == 0 || len(chunk)%(s.outer*s.inner) != 0 {
		return apperrors.NewConfigError("chunk length %d does not tile shape", len(chunk))
	}
	span := len(chunk) / (s.outer * s.inner)
	if offset < 0 || int(offset)+span > s.n {
		return apperrors.NewConfigError("chunk [%d:%d) out of range for axis length %d", offset, int(offset)+span, s.n)
	}

	for o := 0; o < s.outer; o++ {
		src := chunk[o*span*s.inner : (o+1)*span*s.inner]
		dst := o*s.n*s.inner + int(offset)*s.inner
		copy(s.data[dst:dst+len(src)], src)
	}
	s.written[offset] = span
	return nil
}

// Data returns the assembled output buffer.
func (s *MemorySink) Data() []complex128 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Offsets returns the sorted axis offsets that received chunks.
func (s *MemorySink) Offsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	offsets := make([]int64, 0, len(s.written))
	for off := range s.written {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

// Complete reports whether the written chunks tile the whole axis with no
// gaps or overlaps.
func (s *MemorySink) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	covered := 0
	for _, span := range s.written {
		covered += span
	}
	return s.data != nil && covered == s.n
}
