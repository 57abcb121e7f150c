package util

import "runtime"

const (
	minWorkers = 4
	maxWorkers = 32
)

// DefaultWorkers is the number of files analyzed concurrently when the
// config leaves lint.workers unset: twice the CPU count, clamped to
// [4, 32]. Parsing runs in cgo, so a worker blocked there leaves its CPU
// to another worker. The parser pools are sized to match.
func DefaultWorkers() int {
	n := runtime.NumCPU() * 2
	return min(max(n, minWorkers), maxWorkers)
}

// Workers returns configured when it is positive, else DefaultWorkers.
func Workers(configured int) int {
	if configured > 0 {
		return configured
	}
	return DefaultWorkers()
}
