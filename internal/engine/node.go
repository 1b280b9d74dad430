// Package engine implements the out-of-core radix-2 Cooley-Tukey transform:
// the recursive even/odd decomposition policy, the lazy task graph it
// produces, the twiddle-factor recombination step, and the materialization
// pass that walks the graph against a bounded cache and an optional streaming
// output sink.
//
// Decomposition is purely structural: building a graph touches shape and
// chunk metadata only, so planning stays cheap even for series far larger
// than memory. All numeric work happens during materialization.
package engine

import (
	"fmt"

	"github.com/moble/daft/internal/chunked"
)

// TaskNode is one node of the lazy task graph: either a base-case leaf whose
// chunk fits in memory, or a recombination of two half-length sub-transforms.
// Nodes are immutable once constructed and are identified by a deterministic
// key derived from their view's position and stride, which the materializer
// uses for cache lookups.
type TaskNode interface {
	// Key returns the deterministic cache key of this node's result.
	Key() string
	// Length returns the transform length this node produces along the axis.
	Length() int
}

// baseCase is a leaf node wrapping a single-chunk view. Executing it invokes
// the in-memory FFT primitive directly; it is the only point where numeric
// work happens without further recursion.
type baseCase struct {
	view *chunked.Series
	key  string
}

func (b *baseCase) Key() string { return b.key }
func (b *baseCase) Length() int { return b.view.Length() }

// recombine is an internal node merging the transforms of the even- and
// odd-indexed sub-views of its span using precomputed twiddle factors.
type recombine struct {
	even, odd TaskNode
	twiddles  []complex128
	n         int
	key       string
}

func (r *recombine) Key() string { return r.key }
func (r *recombine) Length() int { return r.n }

// nodeKey derives the deterministic cache key for the node covering the given
// view. Two views with identical length, start, and stride over the same root
// buffer denote the same mathematical sub-transform, so their results are
// interchangeable; the direction tag keeps forward and inverse results apart
// when a cache is shared between transforms.
func nodeKey(view *chunked.Series, inverse bool) string {
	dir := "fwd"
	if inverse {
		dir = "inv"
	}
	return fmt.Sprintf("%s:len=%d:start=%d:step=%d", dir, view.Length(), view.Start(), view.Step())
}
