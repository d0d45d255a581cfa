// Package striate configuration constants
package striate

import "runtime"

// Reduction parameters
const (
	// ReductionCapacity is the size of the per-block shared buffer used by
	// the tree reduction. Reductions over more elements fold the excess into
	// the buffer before the tree phase; row sums above it go two-level.
	ReductionCapacity = 256

	// MaxReductionExtent bounds the reduction axis of the max, argmax and
	// column-sum kernels. Row sums are not bounded.
	MaxReductionExtent = 2048

	// MaxSameCountLength bounds the vectors SameCount compares. The count
	// is summed in float32, which holds every integer up to 2^24 exactly.
	MaxSameCountLength = 1 << 24
)

// Thread and block dimensions
const (
	// TileDim is the side of the 2-D tiles used by elementwise kernels.
	TileDim = 32

	// Default block size for 1-D kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024
)

// Memory pool parameters
const (
	// Memory alignment for allocations
	MemoryAlignment = 64
)

// Option configures a Context.
type Option func(*config)

type config struct {
	workers  int
	recorder Recorder
}

func defaultConfig() config {
	return config{
		workers:  runtime.NumCPU(),
		recorder: discardRecorder{},
	}
}

// WithWorkers sets the number of goroutines blocks are spread across.
// Values below 1 keep the default of runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRecorder routes per-operation timings to r.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		if r != nil {
			c.recorder = r
		}
	}
}
