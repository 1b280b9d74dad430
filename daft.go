// Package daft computes the discrete Fourier transform of series too large
// to fit in working memory. The radix-2 Cooley-Tukey decomposition is applied
// recursively until a sub-problem spans a single chunk, which is transformed
// in memory; the halves are then recombined with twiddle factors through a
// lazy task graph materialized against a bounded LRU cache, optionally
// streaming finished output chunks to a persistent sink.
//
// The package-level functions are convenience entry points; the pieces they
// wire together (chunked views, the decomposition engine, the cache, the
// dataset sinks) live under internal/ and are driven by the daft CLI.
package daft

import (
	"context"

	"github.com/moble/daft/internal/cache"
	"github.com/moble/daft/internal/chunked"
	"github.com/moble/daft/internal/engine"
	"github.com/moble/daft/internal/logging"
)

// Transform builds the lazy task graph for the series without performing any
// numeric work. The buffer is interpreted row-major with the given shape and
// transformed along axis (negative axes count from the end).
//
// Parameters:
//   - data: The flat sample buffer; it is only ever read.
//   - shape: The logical series shape; prod(shape) must equal len(data).
//   - axis: The transform axis.
//   - chunkSize: The chunk extent along the axis, the unit of in-memory work.
//
// Returns:
//   - *engine.Graph: The lazy task graph, ready for materialization.
//   - error: UnsupportedLengthError when the axis length is not a power of
//     two, or a ConfigError on bad geometry.
func Transform(data []complex128, shape []int, axis, chunkSize int) (*engine.Graph, error) {
	series, err := chunked.FromBuffer(data, shape, axis, chunkSize)
	if err != nil {
		return nil, err
	}
	eng := &engine.Engine{ChunkSize: chunkSize, Logger: logging.Nop()}
	return eng.Decompose(series)
}

// Compute builds the graph and materializes it with a fresh bounded cache of
// the given byte budget, returning the fully resident result ordered along
// the flattened view (outer x n x inner). Use ComputeToStorage when the
// result itself does not fit in memory.
//
// Parameters:
//   - ctx: Context for cancellation.
//   - data, shape, axis, chunkSize: As for Transform.
//   - memoryBudget: Soft cache budget in bytes for intermediate results.
//
// Returns:
//   - []complex128: The transform of the series.
//   - error: Any decomposition or materialization error.
func Compute(ctx context.Context, data []complex128, shape []int, axis, chunkSize int, memoryBudget int64) ([]complex128, error) {
	g, err := Transform(data, shape, axis, chunkSize)
	if err != nil {
		return nil, err
	}
	c := cache.NewBounded(memoryBudget, logging.Nop())
	return g.Materialize(ctx, c, engine.MaterializeOptions{})
}

// ComputeToStorage builds the graph and materializes it straight into sink:
// each finished top-level output chunk is written as soon as it is computed
// and the full result is never held resident.
//
// Parameters:
//   - ctx: Context for cancellation.
//   - data, shape, axis, chunkSize: As for Transform.
//   - memoryBudget: Soft cache budget in bytes for intermediate results.
//   - sink: Destination for the streamed output chunks.
//
// Returns:
//   - error: Any decomposition, materialization, or sink error.
func ComputeToStorage(ctx context.Context, data []complex128, shape []int, axis, chunkSize int, memoryBudget int64, sink engine.Sink) error {
	g, err := Transform(data, shape, axis, chunkSize)
	if err != nil {
		return err
	}
	c := cache.NewBounded(memoryBudget, logging.Nop())
	_, err = g.Materialize(ctx, c, engine.MaterializeOptions{Sink: sink})
	return err
}
