package striate

import "k8s.io/klog/v2"

// RowSum accumulates the sum of each row of mat into vec:
//
//	vec[i] = alpha*vec[i] + beta*sum(mat[i, :])
//
// With alpha == 0 the prior contents of vec are not read. Rows of any
// length are supported: above ReductionCapacity columns the rows are
// summed in chunks into a scratch matrix which is then row-summed again.
func (ctx *Context) RowSum(mat, vec Dense, alpha, beta float32) error {
	const op = "RowSum"
	defer ctx.track(op)()
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := checkVector(op, "output", vec, mat.Rows, "one per matrix row"); err != nil {
		return err
	}
	return ctx.rowSum(mat, vec, alpha, beta)
}

func (ctx *Context) rowSum(mat, vec Dense, alpha, beta float32) (err error) {
	if mat.Rows == 0 {
		return nil
	}
	if mat.Cols <= ReductionCapacity {
		return reduceLines(ctx, "RowSum", mat.Rows, mat.Cols,
			func(r, k int) float32 { return mat.At(r, k) },
			foldSum,
			func(r int, s float32) { vec.SetElem(r, accumulate(alpha, vec.Elem(r), beta, s)) })
	}

	chunks := blocksFor(mat.Cols, ReductionCapacity)
	scratch, err := ctx.NewDense(mat.Rows, chunks)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := Release(ctx, scratch); err == nil {
			err = rerr
		}
	}()
	klog.V(2).Infof("striate: RowSum %dx%d reduces through %dx%d scratch", mat.Rows, mat.Cols, mat.Rows, chunks)

	grid := Dim3{X: chunks, Y: mat.Rows, Z: 1}
	block := Dim3{X: ReductionCapacity, Y: 1, Z: 1}
	err = ctx.launchBlocks("RowSum", grid, block, func(b *Block) {
		r, chunk := b.Idx.Y, b.Idx.X
		c0 := chunk * ReductionCapacity
		n := min(ReductionCapacity, mat.Cols-c0)
		s := treeReduce(b, n, func(k int) float32 { return mat.At(r, c0+k) }, foldSum)
		scratch.Set(r, chunk, s)
	})
	if err != nil {
		return err
	}
	return ctx.rowSum(scratch, vec, alpha, beta)
}

// ColSum accumulates the sum of each column of mat into vec:
//
//	vec[j] = alpha*vec[j] + beta*sum(mat[:, j])
//
// Unlike RowSum it is single level: columns longer than
// MaxReductionExtent fail with a capacity error.
func (ctx *Context) ColSum(mat, vec Dense, alpha, beta float32) error {
	const op = "ColSum"
	defer ctx.track(op)()
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := checkVector(op, "output", vec, mat.Cols, "one per matrix column"); err != nil {
		return err
	}
	if err := checkExtent(op, mat.Rows); err != nil {
		return err
	}
	return reduceLines(ctx, op, mat.Cols, mat.Rows,
		func(c, k int) float32 { return mat.At(k, c) },
		foldSum,
		func(c int, s float32) { vec.SetElem(c, accumulate(alpha, vec.Elem(c), beta, s)) })
}

func accumulate(alpha, prior, beta, v float32) float32 {
	if alpha == 0 {
		return beta * v
	}
	return alpha*prior + beta*v
}
