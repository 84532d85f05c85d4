package util

import "runtime"

// WorkerCount returns the default size of the worker pool used for parallel
// per-file and per-folder operations: all available processing units minus
// one, never less than one.
func WorkerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}
