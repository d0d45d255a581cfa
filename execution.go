package striate

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Block is the cooperative view of one thread block. Its threads run
// phase by phase: every call to Threads executes the phase for all
// threads of the block, and returning from it is the block barrier.
// Shared memory is whatever the BlockFunc declares locally.
type Block struct {
	Idx  Dim3 // Block index within the grid
	Dim  Dim3 // Dimensions of the block
	Grid Dim3 // Dimensions of the grid
}

// BlockFunc is the body of a kernel executed once per block.
type BlockFunc func(b *Block)

// Threads runs fn for every thread of the block, in linear thread order.
func (b *Block) Threads(fn KernelFunc) {
	n := b.Dim.Size()
	for t := 0; t < n; t++ {
		fn(ThreadID{
			BlockIdx:  b.Idx,
			ThreadIdx: linearTo3D(t, b.Dim),
			BlockDim:  b.Dim,
			GridDim:   b.Grid,
		})
	}
}

// launch dispatches a per-thread kernel.
func (ctx *Context) launch(op string, grid, block Dim3, fn KernelFunc) error {
	return ctx.launchBlocks(op, grid, block, func(b *Block) {
		b.Threads(fn)
	})
}

// launchBlocks validates the launch geometry, submits the dispatch to the
// context's stream and waits for it. A kernel panic surfaces as an
// execution error.
func (ctx *Context) launchBlocks(op string, grid, block Dim3, fn BlockFunc) error {
	if ctx.destroyed.Load() {
		return ErrContextDestroyed
	}
	grid, block = grid.normalize(), block.normalize()
	if block.X < 1 || block.Y < 1 || block.Z < 1 || block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgError(op, fmt.Sprintf("block %v must have between 1 and %d threads", block, MaxThreadsPerBlock))
	}
	if grid.X < 0 || grid.Y < 0 || grid.Z < 0 {
		return NewInvalidArgError(op, fmt.Sprintf("negative grid %v", grid))
	}
	if grid.Size() == 0 {
		return nil
	}
	klog.V(3).Infof("striate: launch %s grid=%v block=%v", op, grid, block)

	var err error
	ctx.stream.Run(func() {
		err = ctx.execute(op, grid, block, fn)
	})
	return err
}

// execute implements the core kernel execution logic: each worker
// processes a contiguous range of blocks to maximize cache reuse.
func (ctx *Context) execute(op string, grid, block Dim3, fn BlockFunc) error {
	gridSize := grid.Size()
	numWorkers := min(ctx.workers.workers, gridSize)
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	var (
		wg    sync.WaitGroup
		once  sync.Once
		fault error
	)
	for w := 0; w < numWorkers; w++ {
		start := w * blocksPerWorker
		end := min(start+blocksPerWorker, gridSize)
		if start >= end {
			continue
		}
		wg.Add(1)
		ctx.workers.Submit(func() {
			defer wg.Done()
			blockID := start
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() {
						fault = NewExecutionError(op,
							fmt.Sprintf("fault in block %v", linearTo3D(blockID, grid)),
							errors.Errorf("%v", r))
					})
				}
			}()
			b := Block{Dim: block, Grid: grid}
			for ; blockID < end; blockID++ {
				b.Idx = linearTo3D(blockID, grid)
				fn(&b)
			}
		})
	}
	wg.Wait()
	return fault
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}

// blocksFor is the number of base-sized blocks needed to cover n.
func blocksFor(n, base int) int {
	return (n + base - 1) / base
}

// tiled returns the 2-D launch geometry covering a rows×cols matrix with
// TileDim×TileDim blocks; X runs along columns.
func tiled(rows, cols int) (grid, block Dim3) {
	return Dim3{X: blocksFor(cols, TileDim), Y: blocksFor(rows, TileDim), Z: 1},
		Dim3{X: TileDim, Y: TileDim, Z: 1}
}

// forEachCell launches one thread per cell of a rows×cols matrix.
func (ctx *Context) forEachCell(op string, rows, cols int, fn func(i, j int)) error {
	grid, block := tiled(rows, cols)
	return ctx.launch(op, grid, block, func(tid ThreadID) {
		j, i := tid.GlobalX(), tid.GlobalY()
		if i < rows && j < cols {
			fn(i, j)
		}
	})
}

// forEachIndex launches one thread per element of a length-n sequence.
func (ctx *Context) forEachIndex(op string, n int, fn func(k int)) error {
	grid := Dim3{X: blocksFor(n, DefaultBlockSize), Y: 1, Z: 1}
	block := Dim3{X: DefaultBlockSize, Y: 1, Z: 1}
	return ctx.launch(op, grid, block, func(tid ThreadID) {
		if k := tid.GlobalX(); k < n {
			fn(k)
		}
	})
}

// WorkerPool manages a pool of worker goroutines for kernel execution
type WorkerPool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		workers: workers,
		tasks:   make(chan func(), workers*2),
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Submit adds a task to the pool
func (wp *WorkerPool) Submit(task func()) {
	wp.tasks <- task
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	close(wp.tasks)
	wp.wg.Wait()
}
