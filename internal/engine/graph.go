package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/moble/daft/internal/cache"
	"github.com/moble/daft/internal/fourier"
)

// Graph is the lazy task graph produced by decomposition. It records what to
// compute without computing anything; Materialize interprets it against a
// supplied cache and optional sink. A graph is immutable and may be
// materialized any number of times, concurrently or not.
type Graph struct {
	root      TaskNode
	n         int
	chunkSize int
	shape     []int
	axis      int
	outer     int
	inner     int
	inverse   bool
	nodes     int
}

// Root returns the root task node.
func (g *Graph) Root() TaskNode { return g.root }

// Length returns the transform length along the axis.
func (g *Graph) Length() int { return g.n }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return g.nodes }

// Shape returns a copy of the output shape.
func (g *Graph) Shape() []int { return append([]int(nil), g.shape...) }

// Axis returns the resolved (non-negative) transform axis.
func (g *Graph) Axis() int { return g.axis }

// ChunkSize returns the chunk extent used for decomposition.
func (g *Graph) ChunkSize() int { return g.chunkSize }

// Inverse reports whether the graph computes the inverse transform.
func (g *Graph) Inverse() bool { return g.inverse }

// Batch returns the flattened batch extents before and after the axis.
func (g *Graph) Batch() (outer, inner int) { return g.outer, g.inner }

// MaterializeStats counts the numeric work one Materialize call performed.
// Fields are updated atomically so parallel workers can share an instance;
// read them only after Materialize returns.
type MaterializeStats struct {
	// BaseCases is the number of in-memory base-case transforms executed.
	BaseCases int64
	// Recombinations is the number of butterfly combine steps executed.
	Recombinations int64
	// CacheHits is the number of nodes resolved from the cache without
	// recomputation.
	CacheHits int64
	// ChunksWritten is the number of output chunks streamed to the sink.
	ChunksWritten int64
}

// MaterializeOptions controls one materialization pass.
type MaterializeOptions struct {
	// Sink, when non-nil, receives finished top-level output chunks as soon
	// as they are computed; the full result is then never held resident.
	Sink Sink
	// Workers bounds the number of goroutines materializing independent
	// sibling subtrees. Values below 2 mean strictly sequential.
	Workers int
	// Observers receive progress updates as graph nodes resolve.
	Observers []ProgressObserver
	// Stats, when non-nil, accumulates work counters for this pass.
	Stats *MaterializeStats
}

// materialization carries the per-pass state shared across workers.
type materialization struct {
	graph *Graph
	cache *cache.Bounded
	opts  MaterializeOptions
	done  atomic.Int64
}

// Materialize executes the graph: a post-order traversal that resolves every
// node from the cache or computes it (base cases through the in-memory FFT
// primitive, internal nodes through the butterfly combine), inserting results
// into the cache as it goes. Sibling subtrees may be dispatched to parallel
// workers; both always complete before their parent combines.
//
// Cancellation is cooperative and checked at every node boundary and before
// every sink write: on cancellation no partial chunk reaches the sink and the
// cache is left valid.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines.
//   - c: The bounded cache holding intermediate chunk results.
//
// Returns:
//   - []complex128: The full transform result, ordered outer x n x inner.
//     Nil when a sink was supplied: chunks are streamed instead.
//   - error: The first error encountered; context errors are propagated
//     unchanged.
func (g *Graph) Materialize(ctx context.Context, c *cache.Bounded, opts MaterializeOptions) ([]complex128, error) {
	m := &materialization{graph: g, cache: c, opts: opts}

	if opts.Sink != nil {
		return nil, m.materializeToSink(ctx)
	}

	res, err := m.eval(ctx, g.root, 0)
	if err != nil {
		return nil, err
	}
	return g.finalize(res), nil
}

// finalize produces the caller-owned output buffer, applying the 1/N inverse
// scaling when needed. The cached buffer is never mutated.
func (g *Graph) finalize(res []complex128) []complex128 {
	out := make([]complex128, len(res))
	copy(out, res)
	if g.inverse {
		scale := complex(1/float64(g.n), 0)
		for i := range out {
			out[i] *= scale
		}
	}
	return out
}

// materializeToSink streams the root result to the sink one top-level chunk
// at a time. The root's children are resolved through the normal cached path;
// the root itself is computed range by range so the full-length result is
// never allocated.
func (m *materialization) materializeToSink(ctx context.Context) error {
	g := m.graph
	if err := m.opts.Sink.Create(g.Shape()); err != nil {
		return err
	}

	writeChunk := func(chunk []complex128, lo int) error {
		if g.inverse {
			scale := complex(1/float64(g.n), 0)
			for i := range chunk {
				chunk[i] *= scale
			}
		}
		if err := m.opts.Sink.WriteChunk(chunk, int64(lo)); err != nil {
			return err
		}
		if m.opts.Stats != nil {
			atomic.AddInt64(&m.opts.Stats.ChunksWritten, 1)
		}
		sinkChunksTotal.Inc()
		sinkBytesTotal.Add(float64(len(chunk) * 16))
		return nil
	}

	switch root := g.root.(type) {
	case *recombine:
		evenRes, oddRes, err := m.evalChildren(ctx, root, 0)
		if err != nil {
			return err
		}
		for lo := 0; lo < g.n; lo += g.chunkSize {
			hi := lo + g.chunkSize
			if hi > g.n {
				hi = g.n
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			chunk, err := combineRange(evenRes, oddRes, root.twiddles, g.inner, lo, hi)
			if err != nil {
				return err
			}
			if err := writeChunk(chunk, lo); err != nil {
				return err
			}
		}
		if m.opts.Stats != nil {
			atomic.AddInt64(&m.opts.Stats.Recombinations, 1)
		}
		recombinationsTotal.Inc()
		m.advance()
		return nil

	case *baseCase:
		// Degenerate graph: the whole series fits one chunk.
		res, err := m.eval(ctx, root, 0)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := make([]complex128, len(res))
		copy(chunk, res)
		return writeChunk(chunk, 0)

	default:
		return nil
	}
}

// eval resolves one node: cache hit, or post-order computation followed by a
// cache insert. depth tracks recursion for the parallel dispatch heuristic.
func (m *materialization) eval(ctx context.Context, node TaskNode, depth int) ([]complex128, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if v, ok := m.cache.Get(node.Key()); ok {
		if m.opts.Stats != nil {
			atomic.AddInt64(&m.opts.Stats.CacheHits, 1)
		}
		m.advance()
		return v, nil
	}

	var result []complex128
	switch n := node.(type) {
	case *baseCase:
		values := n.view.Materialize()
		outer, inner := n.view.Batch()
		if err := fourier.TransformAxis(values, outer, n.view.Length(), inner, m.graph.inverse); err != nil {
			return nil, err
		}
		if m.opts.Stats != nil {
			atomic.AddInt64(&m.opts.Stats.BaseCases, 1)
		}
		baseCasesTotal.Inc()
		result = values

	case *recombine:
		evenRes, oddRes, err := m.evalChildren(ctx, n, depth)
		if err != nil {
			return nil, err
		}
		result, err = Combine(evenRes, oddRes, n.twiddles, m.graph.inner)
		if err != nil {
			return nil, err
		}
		if m.opts.Stats != nil {
			atomic.AddInt64(&m.opts.Stats.Recombinations, 1)
		}
		recombinationsTotal.Inc()
	}

	m.cache.Put(node.Key(), result)
	m.advance()
	return result, nil
}

// evalChildren resolves both halves of a recombination node, in parallel when
// the worker budget allows it at this depth. Both branches complete before
// the caller combines them: errgroup.Wait is the join barrier.
func (m *materialization) evalChildren(ctx context.Context, n *recombine, depth int) ([]complex128, []complex128, error) {
	if m.opts.Workers > 1 && 1<<depth < m.opts.Workers {
		var evenRes, oddRes []complex128
		grp, gctx := errgroup.WithContext(ctx)
		grp.Go(func() error {
			var err error
			evenRes, err = m.eval(gctx, n.even, depth+1)
			return err
		})
		grp.Go(func() error {
			var err error
			oddRes, err = m.eval(gctx, n.odd, depth+1)
			return err
		})
		if err := grp.Wait(); err != nil {
			return nil, nil, err
		}
		return evenRes, oddRes, nil
	}

	evenRes, err := m.eval(ctx, n.even, depth+1)
	if err != nil {
		return nil, nil, err
	}
	oddRes, err := m.eval(ctx, n.odd, depth+1)
	if err != nil {
		return nil, nil, err
	}
	return evenRes, oddRes, nil
}

// advance bumps the resolved-node counter and notifies observers.
func (m *materialization) advance() {
	done := m.done.Add(1)
	if len(m.opts.Observers) == 0 {
		return
	}
	progress := float64(done) / float64(m.graph.nodes)
	for _, obs := range m.opts.Observers {
		obs.Update(progress)
	}
}
