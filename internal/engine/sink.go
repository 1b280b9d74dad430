package engine

// Sink is the streaming destination for finished top-level output chunks.
// Implementations must make WriteChunk idempotent by offset: re-writing the
// same offset with the same data is safe. The engine guarantees that a chunk
// is written only after all of its numeric inputs are finalized, and that
// distinct chunks address disjoint ranges, so no write ordering is required.
type Sink interface {
	// Create declares the output dataset's shape before any chunk is written.
	Create(shape []int) error
	// WriteChunk stores one contiguous output block covering positions
	// [offset, offset+span) along the transform axis. The chunk is ordered
	// outer x span x inner like every engine buffer.
	WriteChunk(chunk []complex128, offset int64) error
}
