package striate

import (
	"fmt"
	"sync"
	"unsafe"

	"k8s.io/klog/v2"
)

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and memory fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	ptr  unsafe.Pointer
	size int
	used bool
}

// DevicePtr represents a pointer to device memory. Use the typed views
// (Float32, Int32) to access the underlying data.
type DevicePtr struct {
	ptr  unsafe.Pointer
	size int
}

// NewMemoryPool creates a new memory pool for efficient memory management.
// The pool tracks allocations and provides statistics on memory usage.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Allocate allocates size bytes from the pool, aligned to MemoryAlignment.
// Reused blocks are not cleared.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true
			mp.track(int64(alloc.size))
			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	buf := make([]byte, alignedSize)
	ptr := unsafe.Pointer(&buf[0])
	mp.allocated[uintptr(ptr)] = &allocation{
		ptr:  ptr,
		size: alignedSize,
		used: true,
	}
	mp.track(int64(alignedSize))
	return DevicePtr{ptr: ptr, size: size}, nil
}

func (mp *MemoryPool) track(n int64) {
	mp.totalAlloc += n
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// Float32 returns a float32 slice view of the device memory.
func (d DevicePtr) Float32() []float32 {
	return viewOf[float32](d)
}

// Int32 returns an int32 slice view of the device memory.
func (d DevicePtr) Int32() []int32 {
	return viewOf[int32](d)
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}

func viewOf[T Element](d DevicePtr) []T {
	var zero T
	n := d.size / int(unsafe.Sizeof(zero))
	if d.ptr == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(d.ptr), n)
}

// Alloc allocates a zeroed, densely packed rows×cols matrix from the
// context's pool. Release it with Release.
func Alloc[T Element](ctx *Context, rows, cols int) (Matrix[T], error) {
	if rows < 1 || cols < 1 {
		return Matrix[T]{}, NewInvalidArgError("Alloc", fmt.Sprintf("invalid shape %dx%d", rows, cols))
	}
	var zero T
	ptr, err := ctx.memory.Allocate(rows * cols * int(unsafe.Sizeof(zero)))
	if err != nil {
		return Matrix[T]{}, err
	}
	data := viewOf[T](ptr)[:rows*cols]
	clear(data)
	klog.V(4).Infof("striate: allocated %dx%d matrix (%d bytes)", rows, cols, ptr.size)
	return Matrix[T]{Data: data, Rows: rows, Cols: cols, Stride: cols, base: ptr}, nil
}

// Release returns a matrix obtained from Alloc to the pool. Views of it
// must not be used afterwards.
func Release[T Element](ctx *Context, m Matrix[T]) error {
	if m.base.ptr == nil {
		return NewInvalidArgError("Release", "matrix does not own a pool allocation")
	}
	return ctx.memory.Free(m.base)
}

// NewDense allocates a zeroed rows×cols float32 matrix from the pool.
func (ctx *Context) NewDense(rows, cols int) (Dense, error) {
	return Alloc[float32](ctx, rows, cols)
}

// NewIndices allocates a zeroed rows×cols index matrix from the pool.
func (ctx *Context) NewIndices(rows, cols int) (IndexVector, error) {
	return Alloc[int32](ctx, rows, cols)
}
