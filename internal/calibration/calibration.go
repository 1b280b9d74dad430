// Package calibration derives sensible default resource parameters for the
// current machine: the chunk size used as the in-memory base-case budget and
// the soft byte budget handed to the intermediate-result cache. Explicit
// flag or environment overrides always win; calibration only fills gaps.
package calibration

import (
	"runtime"
)

const (
	// DefaultChunkSize is the fallback chunk extent along the transform
	// axis, in samples. 2^16 complex128 samples is 1 MiB per batch lane, a
	// comfortable base-case size on anything modern.
	DefaultChunkSize = 1 << 16

	// fallbackMemoryBudget is used when the machine's memory cannot be
	// inspected.
	fallbackMemoryBudget = int64(1) << 30

	// budgetDivisor caps the default cache budget to a fraction of total
	// RAM so a transform does not starve the rest of the system.
	budgetDivisor = 8
)

// EstimateMemoryBudget returns a default soft cache budget in bytes, derived
// from the machine's total memory when the platform exposes it and a 1 GiB
// fallback otherwise.
func EstimateMemoryBudget() int64 {
	if total, ok := totalSystemMemory(); ok && total > 0 {
		return int64(total) / budgetDivisor
	}
	return fallbackMemoryBudget
}

// EstimateChunkSize returns a default chunk size (in samples along the
// transform axis) that keeps a handful of chunks per worker inside the given
// memory budget, clamped to a power of two no smaller than 2.
//
// Parameters:
//   - memoryBudget: The soft cache budget in bytes.
//
// Returns:
//   - int: A power-of-two chunk size.
func EstimateChunkSize(memoryBudget int64) int {
	workers := int64(runtime.NumCPU())
	if workers < 1 {
		workers = 1
	}
	// Aim for roughly four resident chunks per worker, 16 bytes per sample.
	target := memoryBudget / (workers * 4 * 16)
	if target < 2 {
		return 2
	}
	size := 2
	for int64(size) <= target/2 && size < DefaultChunkSize {
		size <<= 1
	}
	return size
}
