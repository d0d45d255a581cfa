package striate

// Broadcast kernels apply a per-row or per-column vector across a matrix,
// one thread per cell on 32×32 tiles. dst may be mat itself.

// AddVecToRows computes dst[i, j] = alpha*vec[i] + beta*mat[i, j].
func (ctx *Context) AddVecToRows(mat, vec, dst Dense, alpha, beta float32) error {
	const op = "AddVecToRows"
	defer ctx.track(op)()
	if err := checkBroadcast(op, mat, vec, dst, mat.Rows, "one per matrix row"); err != nil {
		return err
	}
	return ctx.forEachCell(op, mat.Rows, mat.Cols, func(i, j int) {
		dst.Set(i, j, alpha*vec.Elem(i)+beta*mat.At(i, j))
	})
}

// AddVecToCols computes dst[i, j] = alpha*vec[j] + beta*mat[i, j].
func (ctx *Context) AddVecToCols(mat, vec, dst Dense, alpha, beta float32) error {
	const op = "AddVecToCols"
	defer ctx.track(op)()
	if err := checkBroadcast(op, mat, vec, dst, mat.Cols, "one per matrix column"); err != nil {
		return err
	}
	return ctx.forEachCell(op, mat.Rows, mat.Cols, func(i, j int) {
		dst.Set(i, j, alpha*vec.Elem(j)+beta*mat.At(i, j))
	})
}

// DivVecToRows computes dst[i, j] = mat[i, j] / vec[i]. Zero divisors
// produce ±Inf or NaN.
func (ctx *Context) DivVecToRows(mat, vec, dst Dense) error {
	const op = "DivVecToRows"
	defer ctx.track(op)()
	if err := checkBroadcast(op, mat, vec, dst, mat.Rows, "one per matrix row"); err != nil {
		return err
	}
	return ctx.forEachCell(op, mat.Rows, mat.Cols, func(i, j int) {
		dst.Set(i, j, mat.At(i, j)/vec.Elem(i))
	})
}

// DivVecToCols computes dst[i, j] = mat[i, j] / vec[j]. Zero divisors
// produce ±Inf or NaN.
func (ctx *Context) DivVecToCols(mat, vec, dst Dense) error {
	const op = "DivVecToCols"
	defer ctx.track(op)()
	if err := checkBroadcast(op, mat, vec, dst, mat.Cols, "one per matrix column"); err != nil {
		return err
	}
	return ctx.forEachCell(op, mat.Rows, mat.Cols, func(i, j int) {
		dst.Set(i, j, mat.At(i, j)/vec.Elem(j))
	})
}

func checkBroadcast(op string, mat, vec, dst Dense, n int, axis string) error {
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := checkVector(op, "vector", vec, n, axis); err != nil {
		return err
	}
	return checkSameShape(op, "destination", mat, dst)
}
