package chunked

import (
	"errors"
	"testing"

	apperrors "github.com/moble/daft/internal/errors"
)

func sequence(n int) []complex128 {
	data := make([]complex128, n)
	for i := range data {
		data[i] = complex(float64(i), 0)
	}
	return data
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalComplex(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFromBuffer(t *testing.T) {
	t.Parallel()

	t.Run("UniformChunkGrid", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(10), []int{10}, 0, 4)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		if got := s.Chunks(); !equalInts(got, []int{4, 4, 2}) {
			t.Errorf("Chunks = %v, want [4 4 2]", got)
		}
		if s.ChunkCount() != 3 {
			t.Errorf("ChunkCount = %d, want 3", s.ChunkCount())
		}
	})

	t.Run("NegativeAxis", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(24), []int{3, 4, 2}, -2, 2)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		if s.Axis() != 1 {
			t.Errorf("Axis = %d, want 1", s.Axis())
		}
		outer, inner := s.Batch()
		if outer != 3 || inner != 2 {
			t.Errorf("Batch = (%d, %d), want (3, 2)", outer, inner)
		}
		if s.Length() != 4 {
			t.Errorf("Length = %d, want 4", s.Length())
		}
	})

	t.Run("OversizedChunkClamped", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(8), []int{8}, 0, 100)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		if s.ChunkCount() != 1 {
			t.Errorf("ChunkCount = %d, want 1", s.ChunkCount())
		}
	})

	t.Run("Validation", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name      string
			data      []complex128
			shape     []int
			axis      int
			chunkSize int
		}{
			{"EmptyShape", sequence(4), nil, 0, 2},
			{"LengthMismatch", sequence(4), []int{5}, 0, 2},
			{"AxisOutOfRange", sequence(4), []int{4}, 2, 2},
			{"NegativeAxisOutOfRange", sequence(4), []int{4}, -2, 2},
			{"ZeroChunk", sequence(4), []int{4}, 0, 0},
			{"ZeroDim", sequence(0), []int{0}, 0, 2},
		}
		for _, tc := range cases {
			_, err := FromBuffer(tc.data, tc.shape, tc.axis, tc.chunkSize)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("%s: got %v, want ConfigError", tc.name, err)
			}
		}
	})
}

func TestRechunk(t *testing.T) {
	t.Parallel()
	s, err := FromBuffer(sequence(16), []int{16}, 0, 16)
	if err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}
	r := s.Rechunk(4)
	if r.ChunkCount() != 4 {
		t.Errorf("ChunkCount = %d, want 4", r.ChunkCount())
	}
	if s.ChunkCount() != 1 {
		t.Errorf("original mutated: ChunkCount = %d, want 1", s.ChunkCount())
	}
	if r.Length() != 16 || r.Start() != 0 || r.Step() != 1 {
		t.Errorf("Rechunk changed view geometry: len=%d start=%d step=%d", r.Length(), r.Start(), r.Step())
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	t.Run("EvenOddGeometry", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(16), []int{16}, 0, 4)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}

		even, err := s.Slice(0, 16, 2)
		if err != nil {
			t.Fatalf("Slice even: %v", err)
		}
		if even.Length() != 8 || even.Start() != 0 || even.Step() != 2 {
			t.Errorf("even view: len=%d start=%d step=%d, want 8/0/2", even.Length(), even.Start(), even.Step())
		}

		odd, err := s.Slice(1, 16, 2)
		if err != nil {
			t.Fatalf("Slice odd: %v", err)
		}
		if odd.Length() != 8 || odd.Start() != 1 || odd.Step() != 2 {
			t.Errorf("odd view: len=%d start=%d step=%d, want 8/1/2", odd.Length(), odd.Start(), odd.Step())
		}
	})

	t.Run("NestedSliceComposesStrides", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(16), []int{16}, 0, 4)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		odd, err := s.Slice(1, 16, 2)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		oddOdd, err := odd.Slice(1, 8, 2)
		if err != nil {
			t.Fatalf("nested Slice: %v", err)
		}
		// Positions 3, 7, 11, 15 of the root buffer.
		if oddOdd.Start() != 3 || oddOdd.Step() != 4 || oddOdd.Length() != 4 {
			t.Errorf("nested view: start=%d step=%d len=%d, want 3/4/4", oddOdd.Start(), oddOdd.Step(), oddOdd.Length())
		}
		want := []complex128{3, 7, 11, 15}
		if got := oddOdd.Materialize(); !equalComplex(got, want) {
			t.Errorf("Materialize = %v, want %v", got, want)
		}
	})

	t.Run("ChunkGridDerivedPerParentChunk", func(t *testing.T) {
		t.Parallel()
		// Grid [4 4 2] sliced with step 2 from 0: each parent chunk
		// contributes ceil(selected)/1 elements: 2, 2, 1.
		s, err := FromBuffer(sequence(10), []int{10}, 0, 4)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		even, err := s.Slice(0, 10, 2)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		if got := even.Chunks(); !equalInts(got, []int{2, 2, 1}) {
			t.Errorf("even Chunks = %v, want [2 2 1]", got)
		}
		odd, err := s.Slice(1, 10, 2)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		if got := odd.Chunks(); !equalInts(got, []int{2, 2, 1}) {
			t.Errorf("odd Chunks = %v, want [2 2 1]", got)
		}
	})

	t.Run("Bounds", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(8), []int{8}, 0, 4)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		if _, err := s.Slice(0, 9, 1); err == nil {
			t.Error("expected error for stop beyond length")
		}
		if _, err := s.Slice(-1, 8, 1); err == nil {
			t.Error("expected error for negative start")
		}
		if _, err := s.Slice(0, 8, 0); err == nil {
			t.Error("expected error for zero step")
		}
	})
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	t.Run("IdentityView", func(t *testing.T) {
		t.Parallel()
		data := sequence(6)
		s, err := FromBuffer(data, []int{6}, 0, 3)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		if got := s.Materialize(); !equalComplex(got, data) {
			t.Errorf("Materialize = %v, want %v", got, data)
		}
	})

	t.Run("BatchedStridedView", func(t *testing.T) {
		t.Parallel()
		// Shape [2, 4, 2], axis 1. Odd slice selects axis positions 1, 3.
		s, err := FromBuffer(sequence(16), []int{2, 4, 2}, 1, 2)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		odd, err := s.Slice(1, 4, 2)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		want := []complex128{2, 3, 6, 7, 10, 11, 14, 15}
		if got := odd.Materialize(); !equalComplex(got, want) {
			t.Errorf("Materialize = %v, want %v", got, want)
		}
	})

	t.Run("DoesNotAliasRoot", func(t *testing.T) {
		t.Parallel()
		data := sequence(4)
		s, err := FromBuffer(data, []int{4}, 0, 2)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		out := s.Materialize()
		out[0] = 99
		if data[0] != 0 {
			t.Error("Materialize aliases the root buffer")
		}
	})
}

func TestConcat(t *testing.T) {
	t.Parallel()

	t.Run("JoinsAlongAxis", func(t *testing.T) {
		t.Parallel()
		s, err := FromBuffer(sequence(8), []int{8}, 0, 2)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		a, err := s.Slice(0, 4, 1)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		b, err := s.Slice(4, 8, 1)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		joined, err := Concat([]*Series{a, b})
		if err != nil {
			t.Fatalf("Concat: %v", err)
		}
		if got := joined.Materialize(); !equalComplex(got, sequence(8)) {
			t.Errorf("Materialize = %v, want 0..7", got)
		}
	})

	t.Run("RejectsMismatchedParts", func(t *testing.T) {
		t.Parallel()
		a, err := FromBuffer(sequence(8), []int{2, 4}, 1, 2)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		b, err := FromBuffer(sequence(12), []int{3, 4}, 1, 2)
		if err != nil {
			t.Fatalf("FromBuffer: %v", err)
		}
		if _, err := Concat([]*Series{a, b}); err == nil {
			t.Error("expected error for mismatched batch shapes")
		}
		if _, err := Concat(nil); err == nil {
			t.Error("expected error for empty parts")
		}
	})
}
