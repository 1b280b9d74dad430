package daft

import (
	"context"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/moble/daft/internal/dataset"
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

func TestTransformIsLazy(t *testing.T) {
	t.Parallel()
	g, err := Transform(randomSignal(1024, 1), []int{1024}, 0, 128)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	// 8 chunks: 8 base cases and 7 recombinations.
	if g.NodeCount() != 15 {
		t.Errorf("NodeCount = %d, want 15", g.NodeCount())
	}
	if g.Length() != 1024 {
		t.Errorf("Length = %d, want 1024", g.Length())
	}
}

func TestComputeMatchesDirectDFT(t *testing.T) {
	t.Parallel()
	x := randomSignal(256, 2)
	want := fourier.DirectDFT(x)

	got, err := Compute(context.Background(), x, []int{256}, 0, 32, 1<<20)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for k := range want {
		if cmplx.Abs(got[k]-want[k]) > 1e-9*256 {
			t.Fatalf("bin %d: got %v, want %v", k, got[k], want[k])
		}
	}
}

func TestComputeRejectsBadLength(t *testing.T) {
	t.Parallel()
	if _, err := Compute(context.Background(), randomSignal(100, 3), []int{100}, 0, 16, 1<<20); err == nil {
		t.Error("expected error for non-power-of-two length")
	}
}

func TestComputeToStorage(t *testing.T) {
	t.Parallel()
	x := randomSignal(512, 4)
	want, err := Compute(context.Background(), x, []int{512}, 0, 64, 1<<22)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	sink := dataset.NewMemorySink(0)
	if err := ComputeToStorage(context.Background(), x, []int{512}, 0, 64, 1<<22, sink); err != nil {
		t.Fatalf("ComputeToStorage: %v", err)
	}
	if !sink.Complete() {
		t.Fatal("sink did not receive the whole axis")
	}
	got := sink.Data()
	for k := range want {
		if cmplx.Abs(got[k]-want[k]) > 1e-9*512 {
			t.Fatalf("bin %d: got %v, want %v", k, got[k], want[k])
		}
	}
}
