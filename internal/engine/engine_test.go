package engine

import (
	"context"
	"errors"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moble/daft/internal/cache"
	"github.com/moble/daft/internal/chunked"
	"github.com/moble/daft/internal/dataset"
	apperrors "github.com/moble/daft/internal/errors"
	"github.com/moble/daft/internal/fourier"
)

func randomSignal(n int, seed int64) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	return x
}

func buildGraph(t *testing.T, data []complex128, shape []int, axis, chunkSize int, inverse bool) *Graph {
	t.Helper()
	series, err := chunked.FromBuffer(data, shape, axis, chunkSize)
	if err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}
	eng := &Engine{ChunkSize: chunkSize, Inverse: inverse, Logger: zerolog.Nop()}
	g, err := eng.Decompose(series)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	return g
}

func materialize(t *testing.T, g *Graph, budget int64, opts MaterializeOptions) []complex128 {
	t.Helper()
	c := cache.NewBounded(budget, zerolog.Nop())
	res, err := g.Materialize(context.Background(), c, opts)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	return res
}

func assertSpectraEqual(t *testing.T, got, want []complex128, n int, context string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length mismatch: got %d, want %d", context, len(got), len(want))
	}
	tol := 1e-9 * float64(n)
	for k := range want {
		if cmplx.Abs(got[k]-want[k]) > tol {
			t.Fatalf("%s: position %d: got %v, want %v", context, k, got[k], want[k])
		}
	}
}

func TestMaterializeMatchesDirectDFT(t *testing.T) {
	t.Parallel()
	cases := []struct {
		n          int
		chunkSizes []int
	}{
		{2, []int{2}},
		{4, []int{2, 4}},
		{16, []int{2, 4, 16}},
		{1024, []int{2, 128, 256, 1024}},
	}
	for _, tc := range cases {
		x := randomSignal(tc.n, int64(tc.n))
		want := fourier.DirectDFT(x)
		for _, cs := range tc.chunkSizes {
			g := buildGraph(t, x, []int{tc.n}, 0, cs, false)
			got := materialize(t, g, 1<<24, MaterializeOptions{})
			assertSpectraEqual(t, got, want, tc.n, "n/chunk combination")
		}
	}
}

func TestGraphStructure(t *testing.T) {
	t.Parallel()

	t.Run("SingleChunkIsOneBaseCase", func(t *testing.T) {
		t.Parallel()
		g := buildGraph(t, randomSignal(16, 1), []int{16}, 0, 16, false)
		if g.NodeCount() != 1 {
			t.Errorf("NodeCount = %d, want 1", g.NodeCount())
		}
		if _, ok := g.Root().(*baseCase); !ok {
			t.Errorf("root is %T, want base case", g.Root())
		}
	})

	t.Run("HalvingLevels", func(t *testing.T) {
		t.Parallel()
		// n=16, chunk=4: levels 16 (4 chunks), 8 (2 chunks), 4 (1 chunk).
		// 4 base cases + 3 recombinations.
		g := buildGraph(t, randomSignal(16, 2), []int{16}, 0, 4, false)
		if g.NodeCount() != 7 {
			t.Errorf("NodeCount = %d, want 7", g.NodeCount())
		}
		root, ok := g.Root().(*recombine)
		if !ok {
			t.Fatalf("root is %T, want recombination", g.Root())
		}
		if root.Length() != 16 {
			t.Errorf("root length = %d, want 16", root.Length())
		}
		if len(root.twiddles) != 16 {
			t.Errorf("root twiddles = %d, want 16", len(root.twiddles))
		}
	})

	t.Run("DecompositionDoesNoNumericWork", func(t *testing.T) {
		t.Parallel()
		// NaN samples must not disturb graph construction.
		data := make([]complex128, 64)
		nan := cmplx.NaN()
		for i := range data {
			data[i] = nan
		}
		g := buildGraph(t, data, []int{64}, 0, 8, false)
		if g.NodeCount() == 0 {
			t.Error("expected a populated graph")
		}
	})
}

func TestNonPowerOfTwoFailsBeforeAnyWork(t *testing.T) {
	t.Parallel()
	series, err := chunked.FromBuffer(randomSignal(100, 3), []int{100}, 0, 16)
	if err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}
	eng := &Engine{ChunkSize: 16, Logger: zerolog.Nop()}
	g, err := eng.Decompose(series)
	if g != nil {
		t.Error("expected no graph for unsupported length")
	}
	var lengthErr apperrors.UnsupportedLengthError
	if !errors.As(err, &lengthErr) {
		t.Fatalf("got %v, want UnsupportedLengthError", err)
	}
	if lengthErr.Length != 100 {
		t.Errorf("Length = %d, want 100", lengthErr.Length)
	}
	if !apperrors.IsDecompositionError(err) {
		t.Error("UnsupportedLengthError must classify as a decomposition error")
	}
}

func TestBatchTransformAlongMiddleAxis(t *testing.T) {
	t.Parallel()
	outer, n, inner := 3, 16, 2
	data := randomSignal(outer*n*inner, 5)
	g := buildGraph(t, data, []int{outer, n, inner}, 1, 4, false)
	got := materialize(t, g, 1<<20, MaterializeOptions{})

	lane := make([]complex128, n)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			for k := 0; k < n; k++ {
				lane[k] = data[(o*n+k)*inner+i]
			}
			want := fourier.DirectDFT(lane)
			for k := 0; k < n; k++ {
				if cmplx.Abs(got[(o*n+k)*inner+i]-want[k]) > 1e-9*float64(n) {
					t.Fatalf("lane (%d,%d) bin %d: got %v, want %v", o, i, k, got[(o*n+k)*inner+i], want[k])
				}
			}
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	t.Parallel()
	n := 256
	x := randomSignal(n, 9)

	fwd := buildGraph(t, x, []int{n}, 0, 32, false)
	spectrum := materialize(t, fwd, 1<<20, MaterializeOptions{})

	inv := buildGraph(t, spectrum, []int{n}, 0, 32, true)
	back := materialize(t, inv, 1<<20, MaterializeOptions{})

	assertSpectraEqual(t, back, x, n, "inverse round trip")
}

func TestRepeatedMaterializationHitsCache(t *testing.T) {
	t.Parallel()
	n := 64
	g := buildGraph(t, randomSignal(n, 13), []int{n}, 0, 8, false)
	c := cache.NewBounded(1<<20, zerolog.Nop())

	first := &MaterializeStats{}
	res1, err := g.Materialize(context.Background(), c, MaterializeOptions{Stats: first})
	if err != nil {
		t.Fatalf("first Materialize: %v", err)
	}
	if first.BaseCases == 0 || first.Recombinations == 0 {
		t.Fatalf("first pass did no work: %+v", first)
	}

	second := &MaterializeStats{}
	res2, err := g.Materialize(context.Background(), c, MaterializeOptions{Stats: second})
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}

	// The root is cached, so the second pass resolves in one hit with zero
	// recomputation.
	if second.BaseCases != 0 || second.Recombinations != 0 {
		t.Errorf("second pass recomputed: %+v", second)
	}
	if second.CacheHits != 1 {
		t.Errorf("second pass CacheHits = %d, want 1", second.CacheHits)
	}
	assertSpectraEqual(t, res2, res1, n, "repeated materialization")
}

func TestTinyBudgetStillProducesCorrectResult(t *testing.T) {
	t.Parallel()
	n := 64
	x := randomSignal(n, 17)
	want := fourier.DirectDFT(x)

	g := buildGraph(t, x, []int{n}, 0, 8, false)
	c := cache.NewBounded(64, zerolog.Nop()) // fits a fraction of one chunk
	got, err := g.Materialize(context.Background(), c, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	assertSpectraEqual(t, got, want, n, "tiny budget")
	if c.Stats().Evictions == 0 {
		t.Error("expected evictions under a tiny budget")
	}
}

func TestParallelWorkersMatchSequential(t *testing.T) {
	t.Parallel()
	n := 512
	x := randomSignal(n, 19)
	g := buildGraph(t, x, []int{n}, 0, 32, false)

	sequential := materialize(t, g, 1<<22, MaterializeOptions{})
	parallel := materialize(t, g, 1<<22, MaterializeOptions{Workers: 4})
	assertSpectraEqual(t, parallel, sequential, n, "worker parity")
}

func TestSinkStreamingMatchesInMemory(t *testing.T) {
	t.Parallel()
	n := 1024
	x := randomSignal(n, 23)
	g := buildGraph(t, x, []int{n}, 0, 256, false)

	want := materialize(t, g, 1<<24, MaterializeOptions{})

	sink := dataset.NewMemorySink(0)
	stats := &MaterializeStats{}
	c := cache.NewBounded(1<<24, zerolog.Nop())
	res, err := g.Materialize(context.Background(), c, MaterializeOptions{Sink: sink, Stats: stats})
	if err != nil {
		t.Fatalf("Materialize to sink: %v", err)
	}
	if res != nil {
		t.Error("sink materialization must not return a resident result")
	}
	if !sink.Complete() {
		t.Fatal("sink did not receive a complete tiling of the axis")
	}
	if stats.ChunksWritten != 4 {
		t.Errorf("ChunksWritten = %d, want 4", stats.ChunksWritten)
	}
	offsets := sink.Offsets()
	wantOffsets := []int64{0, 256, 512, 768}
	if len(offsets) != len(wantOffsets) {
		t.Fatalf("Offsets = %v, want %v", offsets, wantOffsets)
	}
	for i := range wantOffsets {
		if offsets[i] != wantOffsets[i] {
			t.Fatalf("Offsets = %v, want %v", offsets, wantOffsets)
		}
	}
	assertSpectraEqual(t, sink.Data(), want, n, "streamed result")
}

func TestSinkSingleChunkGraph(t *testing.T) {
	t.Parallel()
	n := 8
	x := randomSignal(n, 29)
	want := fourier.DirectDFT(x)

	g := buildGraph(t, x, []int{n}, 0, 8, false)
	sink := dataset.NewMemorySink(0)
	c := cache.NewBounded(1<<16, zerolog.Nop())
	if _, err := g.Materialize(context.Background(), c, MaterializeOptions{Sink: sink}); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !sink.Complete() {
		t.Fatal("sink incomplete for degenerate single-chunk graph")
	}
	assertSpectraEqual(t, sink.Data(), want, n, "degenerate sink")
}

func TestSinkInverseScaling(t *testing.T) {
	t.Parallel()
	n := 64
	x := randomSignal(n, 31)

	fwd := buildGraph(t, x, []int{n}, 0, 8, false)
	spectrum := materialize(t, fwd, 1<<20, MaterializeOptions{})

	inv := buildGraph(t, spectrum, []int{n}, 0, 8, true)
	sink := dataset.NewMemorySink(0)
	c := cache.NewBounded(1<<20, zerolog.Nop())
	if _, err := inv.Materialize(context.Background(), c, MaterializeOptions{Sink: sink}); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	assertSpectraEqual(t, sink.Data(), x, n, "streamed inverse")
}

// cancellingSink cancels the run after its first successful write, then
// counts any writes that still arrive.
type cancellingSink struct {
	inner  *dataset.MemorySink
	cancel context.CancelFunc
	writes int
}

func (s *cancellingSink) Create(shape []int) error {
	return s.inner.Create(shape)
}

func (s *cancellingSink) WriteChunk(chunk []complex128, offset int64) error {
	if err := s.inner.WriteChunk(chunk, offset); err != nil {
		return err
	}
	s.writes++
	s.cancel()
	return nil
}

func TestCancellationLeavesOnlyCompleteChunks(t *testing.T) {
	t.Parallel()
	n := 1024
	g := buildGraph(t, randomSignal(n, 37), []int{n}, 0, 256, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &cancellingSink{inner: dataset.NewMemorySink(0), cancel: cancel}
	c := cache.NewBounded(1<<24, zerolog.Nop())

	_, err := g.Materialize(ctx, c, MaterializeOptions{Sink: sink})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if sink.writes != 1 {
		t.Errorf("writes after cancellation = %d, want 1", sink.writes)
	}
	if sink.inner.Complete() {
		t.Error("sink must not be complete after cancellation")
	}
	// Every chunk that did land is whole.
	for _, off := range sink.inner.Offsets() {
		if off%256 != 0 {
			t.Errorf("partial chunk written at offset %d", off)
		}
	}
}

func TestCancellationBeforeStart(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, randomSignal(64, 41), []int{64}, 0, 8, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := cache.NewBounded(1<<20, zerolog.Nop())
	stats := &MaterializeStats{}
	_, err := g.Materialize(ctx, c, MaterializeOptions{Stats: stats})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if stats.BaseCases != 0 {
		t.Errorf("BaseCases = %d after pre-canceled run, want 0", stats.BaseCases)
	}
}

func TestObserversSeeCompletion(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, randomSignal(64, 43), []int{64}, 0, 8, false)

	ch := make(chan ProgressUpdate, g.NodeCount()+1)
	c := cache.NewBounded(1<<20, zerolog.Nop())
	if _, err := g.Materialize(context.Background(), c, MaterializeOptions{
		Observers: []ProgressObserver{NewChannelObserver(ch)},
	}); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	close(ch)

	var last float64
	count := 0
	for u := range ch {
		if u.Value < last {
			t.Errorf("progress went backwards: %f after %f", u.Value, last)
		}
		last = u.Value
		count++
	}
	if count != g.NodeCount() {
		t.Errorf("received %d updates, want %d", count, g.NodeCount())
	}
	if last != 1.0 {
		t.Errorf("final progress = %f, want 1.0", last)
	}
}

func TestForwardAndInverseKeysDiffer(t *testing.T) {
	t.Parallel()
	x := randomSignal(64, 47)
	fwd := buildGraph(t, x, []int{64}, 0, 8, false)
	inv := buildGraph(t, x, []int{64}, 0, 8, true)
	if fwd.Root().Key() == inv.Root().Key() {
		t.Error("forward and inverse graphs must not share cache keys")
	}
	// Rebuilding the same graph yields identical keys: determinism is what
	// makes cross-run cache reuse possible.
	again := buildGraph(t, x, []int{64}, 0, 8, false)
	if fwd.Root().Key() != again.Root().Key() {
		t.Error("identical decompositions must produce identical keys")
	}
}
