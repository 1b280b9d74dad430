//go:build linux

package calibration

import "golang.org/x/sys/unix"

// totalSystemMemory reports the machine's total RAM in bytes via sysinfo.
func totalSystemMemory() (uint64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	return uint64(info.Totalram) * uint64(info.Unit), true
}
