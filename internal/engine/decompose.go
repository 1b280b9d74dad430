package engine

import (
	"github.com/rs/zerolog"

	"github.com/moble/daft/internal/chunked"
	apperrors "github.com/moble/daft/internal/errors"
	"github.com/moble/daft/internal/fourier"
)

// Engine is the recursive decomposition controller. It decides, for each
// sub-view, whether to recurse into even/odd halves or to emit an in-memory
// base case, and it assembles the resulting lazy task graph.
type Engine struct {
	// ChunkSize is the chunk extent along the transform axis; sub-views are
	// rechunked to this size before their chunk count is inspected.
	ChunkSize int
	// Inverse selects the conjugate (inverse) transform. The 1/N scaling is
	// applied once during materialization, never inside the graph.
	Inverse bool
	// Logger receives a structural summary of each built graph.
	Logger zerolog.Logger
}

// Decompose builds the lazy task graph for the given series. No numeric work
// is performed and no array contents are read; the call fails fast with an
// UnsupportedLengthError when the length along the transform axis is not a
// power of two.
//
// Parameters:
//   - series: The chunked input view; the engine only reads it.
//
// Returns:
//   - *Graph: The lazy task graph, ready for materialization.
//   - error: An UnsupportedLengthError or InvalidSizeError on bad geometry.
func (e *Engine) Decompose(series *chunked.Series) (*Graph, error) {
	n := series.Length()
	if !fourier.IsPowerOfTwo(n) {
		return nil, apperrors.UnsupportedLengthError{Length: n, Axis: series.Axis()}
	}

	root, count, err := e.decompose(series)
	if err != nil {
		return nil, err
	}

	outer, inner := series.Batch()
	g := &Graph{
		root:      root,
		n:         n,
		chunkSize: e.ChunkSize,
		shape:     series.Shape(),
		axis:      series.Axis(),
		outer:     outer,
		inner:     inner,
		inverse:   e.Inverse,
		nodes:     count,
	}

	e.Logger.Debug().
		Int("n", n).
		Int("chunk_size", e.ChunkSize).
		Int("nodes", count).
		Bool("inverse", e.Inverse).
		Msg("built decomposition graph")

	return g, nil
}

// decompose recursively splits the view until a sub-view spans a single
// chunk. The chunk count is re-derived from the freshly rechunked view at
// every level: stride-2 slicing changes the effective chunk boundaries, so a
// count inherited from the parent would be wrong.
func (e *Engine) decompose(view *chunked.Series) (TaskNode, int, error) {
	view = view.Rechunk(e.ChunkSize)

	if view.ChunkCount() == 1 {
		return &baseCase{view: view, key: nodeKey(view, e.Inverse)}, 1, nil
	}

	n := view.Length()
	evenView, err := view.Slice(0, n, 2)
	if err != nil {
		return nil, 0, err
	}
	oddView, err := view.Slice(1, n, 2)
	if err != nil {
		return nil, 0, err
	}

	evenNode, evenCount, err := e.decompose(evenView)
	if err != nil {
		return nil, 0, err
	}
	oddNode, oddCount, err := e.decompose(oddView)
	if err != nil {
		return nil, 0, err
	}

	twiddles, err := fourier.Twiddles(n)
	if err != nil {
		return nil, 0, err
	}
	if e.Inverse {
		twiddles = fourier.Conjugate(twiddles)
	}

	node := &recombine{
		even:     evenNode,
		odd:      oddNode,
		twiddles: twiddles,
		n:        n,
		key:      nodeKey(view, e.Inverse),
	}
	return node, evenCount + oddCount + 1, nil
}
