package striate

// Transpose writes the transpose of src into dst, which must be
// src.Cols×src.Rows and must not overlap src in memory. Each matrix is
// addressed with its own leading dimension.
func (ctx *Context) Transpose(src, dst Dense) error {
	const op = "Transpose"
	defer ctx.track(op)()
	if err := src.Validate(); err != nil {
		return err
	}
	if err := dst.Validate(); err != nil {
		return err
	}
	if dst.Rows != src.Cols || dst.Cols != src.Rows {
		return NewShapeError(op, "destination is %dx%d, want %dx%d", dst.Rows, dst.Cols, src.Cols, src.Rows)
	}
	if src.overlaps(dst) {
		return NewInvalidArgError(op, "destination overlaps source")
	}
	return ctx.forEachCell(op, src.Rows, src.Cols, func(i, j int) {
		dst.Set(j, i, src.At(i, j))
	})
}

// Transposed allocates a src.Cols×src.Rows matrix from the pool and
// transposes src into it. Release the result when done.
func (ctx *Context) Transposed(src Dense) (Dense, error) {
	dst, err := ctx.NewDense(src.Cols, src.Rows)
	if err != nil {
		return Dense{}, err
	}
	if err := ctx.Transpose(src, dst); err != nil {
		_ = Release(ctx, dst)
		return Dense{}, err
	}
	return dst, nil
}
