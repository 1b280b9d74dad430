//go:build !linux

package calibration

// totalSystemMemory is unavailable on this platform; callers fall back to a
// conservative default budget.
func totalSystemMemory() (uint64, bool) {
	return 0, false
}
