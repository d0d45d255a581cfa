package striate

// Max and argmax reductions along rows and columns. Each output element is
// produced by one block running the tree reduction over its line; the
// reduction axis is bounded by MaxReductionExtent.

// RowMax stores the maximum of each row of mat into vec, which must be a
// vector of length mat.Rows.
func (ctx *Context) RowMax(mat, vec Dense) error {
	const op = "RowMax"
	defer ctx.track(op)()
	if err := checkReduction(op, mat, vec, mat.Rows, mat.Cols, "rows"); err != nil {
		return err
	}
	return reduceLines(ctx, op, mat.Rows, mat.Cols,
		func(r, k int) float32 { return mat.At(r, k) },
		foldMax,
		func(r int, v float32) { vec.SetElem(r, v) })
}

// ColMax stores the maximum of each column of mat into vec, which must be
// a vector of length mat.Cols.
func (ctx *Context) ColMax(mat, vec Dense) error {
	const op = "ColMax"
	defer ctx.track(op)()
	if err := checkReduction(op, mat, vec, mat.Cols, mat.Rows, "columns"); err != nil {
		return err
	}
	return reduceLines(ctx, op, mat.Cols, mat.Rows,
		func(c, k int) float32 { return mat.At(k, c) },
		foldMax,
		func(c int, v float32) { vec.SetElem(c, v) })
}

// RowArgmax stores, for each row of mat, the column index of its maximum.
// Ties resolve to the lowest index.
func (ctx *Context) RowArgmax(mat Dense, idx IndexVector) error {
	const op = "RowArgmax"
	defer ctx.track(op)()
	if err := checkReduction(op, mat, idx, mat.Rows, mat.Cols, "rows"); err != nil {
		return err
	}
	return reduceLines(ctx, op, mat.Rows, mat.Cols,
		func(r, k int) argSlot { return argSlot{val: mat.At(r, k), idx: int32(k)} },
		foldArgmax,
		func(r int, v argSlot) { idx.SetElem(r, v.idx) })
}

// ColArgmax stores, for each column of mat, the row index of its maximum.
// Ties resolve to the lowest index.
func (ctx *Context) ColArgmax(mat Dense, idx IndexVector) error {
	const op = "ColArgmax"
	defer ctx.track(op)()
	if err := checkReduction(op, mat, idx, mat.Cols, mat.Rows, "columns"); err != nil {
		return err
	}
	return reduceLines(ctx, op, mat.Cols, mat.Rows,
		func(c, k int) argSlot { return argSlot{val: mat.At(k, c), idx: int32(k)} },
		foldArgmax,
		func(c int, v argSlot) { idx.SetElem(c, v.idx) })
}

// checkReduction validates a max/argmax reduction producing lines values
// from lines of length extent.
func checkReduction[T Element](op string, mat Dense, out Matrix[T], lines, extent int, axis string) error {
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := checkVector(op, "output", out, lines, "one per matrix "+axis); err != nil {
		return err
	}
	if extent == 0 && lines > 0 {
		return NewShapeError(op, "cannot reduce an empty axis of a %dx%d matrix", mat.Rows, mat.Cols)
	}
	return checkExtent(op, extent)
}
