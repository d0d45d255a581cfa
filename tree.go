package striate

// treeReduce folds the n elements produced by load into one value using
// the block's threads and a ReductionCapacity-sized shared buffer:
//
//  1. threads t < min(n, C) load element t;
//  2. when n > C, thread t folds elements t+C, t+2C, ... into buffer[t];
//  3. the buffer is halved with half = ceil(total/2) until one value is
//     left, so an odd total carries its unpaired element up a round.
//
// The block must have at least min(n, C) threads along X. An empty
// sequence yields the zero value of T.
func treeReduce[T any](b *Block, n int, load func(k int) T, fold func(acc, x T) T) T {
	var buffer [ReductionCapacity]T

	total := min(n, ReductionCapacity)
	b.Threads(func(tid ThreadID) {
		if t := tid.ThreadIdx.X; t < total {
			buffer[t] = load(t)
		}
	})

	if n > ReductionCapacity {
		b.Threads(func(tid ThreadID) {
			t := tid.ThreadIdx.X
			if t >= ReductionCapacity {
				return
			}
			for k := t + ReductionCapacity; k < n; k += ReductionCapacity {
				buffer[t] = fold(buffer[t], load(k))
			}
		})
	}

	for total > 1 {
		half := (total + 1) >> 1
		b.Threads(func(tid ThreadID) {
			if t := tid.ThreadIdx.X; t < half && t+half < total {
				buffer[t] = fold(buffer[t], buffer[t+half])
			}
		})
		total = half
	}
	return buffer[0]
}

// reduceLines launches one block per line (row or column) of a matrix and
// stores each line's reduction with store. extent is the line length.
func reduceLines[T any](ctx *Context, op string, lines, extent int,
	load func(line, k int) T, fold func(acc, x T) T, store func(line int, v T)) error {
	grid := Dim3{X: lines, Y: 1, Z: 1}
	block := Dim3{X: max(1, min(extent, ReductionCapacity)), Y: 1, Z: 1}
	return ctx.launchBlocks(op, grid, block, func(b *Block) {
		line := b.Idx.X
		v := treeReduce(b, extent, func(k int) T { return load(line, k) }, fold)
		store(line, v)
	})
}

// argSlot is the shared-buffer element of the argmax reductions.
type argSlot struct {
	val float32
	idx int32
}

func foldMax(acc, x float32) float32 {
	if acc < x {
		return x
	}
	return acc
}

func foldSum(acc, x float32) float32 {
	return acc + x
}

// foldArgmax keeps the larger value; equal values keep the lower index,
// whatever side of the tree they come from.
func foldArgmax(acc, x argSlot) argSlot {
	if acc.val < x.val || (acc.val == x.val && x.idx < acc.idx) {
		return x
	}
	return acc
}
