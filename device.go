package striate

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/klog/v2"
)

// Device represents a compute device. Here it is the host CPU with its
// cores and detected vector extensions.
type Device struct {
	ID         int      // Unique device identifier
	Name       string   // Human-readable device name
	NumCores   int      // Number of CPU cores
	MaxThreads int      // Maximum concurrent threads
	Features   []string // Detected instruction set extensions
}

// Context represents an execution context for kernel dispatches.
// It owns the stream kernels are serialised on, the memory pool scratch
// buffers come from, the workers blocks run on and the timing recorder.
// A Context must be created before any operation and should be
// destroyed when no longer needed.
type Context struct {
	device    *Device
	stream    *Stream
	memory    *MemoryPool
	workers   *WorkerPool
	recorder  Recorder
	destroyed atomic.Bool
}

// Stream represents an ordered sequence of operations. Tasks submitted to
// a stream run one at a time, in submission order.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
}

// Dim3 represents 3D dimensions for grid and block configurations.
// This matches CUDA's dim3 structure for kernel launch parameters.
// Zero Y or Z components are treated as 1.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a thread's position within the execution hierarchy.
// It provides the same indexing semantics as CUDA's built-in variables:
// blockIdx, threadIdx, blockDim, and gridDim.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// KernelFunc is the body of a kernel executed once per thread.
type KernelFunc func(tid ThreadID)

var streamIDs int32

// NewContext creates an execution context on the host CPU.
func NewContext(opts ...Option) *Context {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := &Context{
		device: &Device{
			ID:         0,
			Name:       "CPU",
			NumCores:   runtime.NumCPU(),
			MaxThreads: cfg.workers,
			Features:   detectFeatures(),
		},
		stream:   newStream(int(atomic.AddInt32(&streamIDs, 1))),
		memory:   NewMemoryPool(),
		workers:  NewWorkerPool(cfg.workers),
		recorder: cfg.recorder,
	}
	klog.V(2).Infof("striate: context created with %d workers, features %v", cfg.workers, ctx.device.Features)
	return ctx
}

// Device returns the device the context executes on.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// Memory returns the context's memory pool.
func (ctx *Context) Memory() *MemoryPool {
	return ctx.memory
}

// Destroy drains the stream and stops the workers. Operations on a
// destroyed context fail with ErrContextDestroyed.
func (ctx *Context) Destroy() {
	if !ctx.destroyed.CompareAndSwap(false, true) {
		return
	}
	ctx.stream.close()
	ctx.workers.Close()
	if allocated, _ := ctx.memory.GetStats(); allocated > 0 {
		klog.Warningf("striate: context destroyed with %d bytes still allocated", allocated)
	}
}

// Synchronize waits for every submitted operation to complete.
func (ctx *Context) Synchronize() error {
	if ctx.destroyed.Load() {
		return ErrContextDestroyed
	}
	ctx.stream.Synchronize()
	return nil
}

// track starts timing op; the returned func reports the elapsed time.
func (ctx *Context) track(op string) func() {
	start := time.Now()
	return func() {
		ctx.recorder.Record(op, time.Since(start))
	}
}

// Stream methods

func newStream(id int) *Stream {
	s := &Stream{
		id:    id,
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	go s.worker()
	return s
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.idle.Broadcast()
		}
		s.mu.Unlock()
	}
	close(s.done)
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.idle.Wait()
	}
}

// Submit adds a task to the stream
func (s *Stream) Submit(task func()) {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.tasks <- task
}

// Run submits task and waits for that task alone. Tasks submitted by
// other goroutines in the meantime are not waited for.
func (s *Stream) Run(task func()) {
	done := make(chan struct{})
	s.Submit(func() {
		defer close(done)
		task()
	})
	<-done
}

func (s *Stream) close() {
	close(s.tasks)
	<-s.done
}

// Helper functions

// GlobalX returns the global X index
func (tid ThreadID) GlobalX() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalY returns the global Y index
func (tid ThreadID) GlobalY() int {
	return tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	n := d.normalize()
	return n.X * n.Y * n.Z
}

func (d Dim3) normalize() Dim3 {
	if d.Y == 0 {
		d.Y = 1
	}
	if d.Z == 0 {
		d.Z = 1
	}
	return d
}
