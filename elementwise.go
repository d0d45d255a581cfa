package striate

// ReluForward computes out = max(in, 0) elementwise; NaN maps to 0. out
// may be in.
func (ctx *Context) ReluForward(in, out Dense) error {
	const op = "ReluForward"
	defer ctx.track(op)()
	if err := in.Validate(); err != nil {
		return err
	}
	if err := checkSameShape(op, "output", in, out); err != nil {
		return err
	}
	return ctx.forEachCell(op, in.Rows, in.Cols, func(i, j int) {
		var v float32
		if x := in.At(i, j); x > 0 {
			v = x
		}
		out.Set(i, j, v)
	})
}

// ReluBackward masks the upstream gradient in place with the derivative
// of the activation, grad *= (output > 0), and copies the result into
// outGrad.
func (ctx *Context) ReluBackward(grad, output, outGrad Dense) error {
	const op = "ReluBackward"
	defer ctx.track(op)()
	if err := grad.Validate(); err != nil {
		return err
	}
	if err := checkSameShape(op, "activation output", grad, output); err != nil {
		return err
	}
	if err := checkSameShape(op, "gradient copy", grad, outGrad); err != nil {
		return err
	}
	return ctx.forEachCell(op, grad.Rows, grad.Cols, func(i, j int) {
		var mask float32
		if output.At(i, j) > 0 {
			mask = 1
		}
		g := grad.At(i, j) * mask
		grad.Set(i, j, g)
		outGrad.Set(i, j, g)
	})
}

// Combine computes dst = alpha*src + beta*v. All three must share a shape;
// dst may alias either input.
func (ctx *Context) Combine(src, v, dst Dense, alpha, beta float32) error {
	const op = "Combine"
	defer ctx.track(op)()
	if err := src.Validate(); err != nil {
		return err
	}
	if err := checkSameShape(op, "operand", src, v); err != nil {
		return err
	}
	if err := checkSameShape(op, "destination", src, dst); err != nil {
		return err
	}
	return ctx.forEachCell(op, src.Rows, src.Cols, func(i, j int) {
		dst.Set(i, j, alpha*src.At(i, j)+beta*v.At(i, j))
	})
}

// Copy copies src into dst, honouring the leading dimension of each.
func (ctx *Context) Copy(src, dst Dense) error {
	const op = "Copy"
	defer ctx.track(op)()
	if err := src.Validate(); err != nil {
		return err
	}
	if err := checkSameShape(op, "destination", src, dst); err != nil {
		return err
	}
	return ctx.forEachCell(op, src.Rows, src.Cols, func(i, j int) {
		dst.Set(i, j, src.At(i, j))
	})
}

// Apply stores fn(src) into dst elementwise. fn runs concurrently and
// must not keep state.
func (ctx *Context) Apply(src, dst Dense, fn func(float32) float32) error {
	const op = "Apply"
	defer ctx.track(op)()
	if err := src.Validate(); err != nil {
		return err
	}
	if err := checkSameShape(op, "destination", src, dst); err != nil {
		return err
	}
	return ctx.forEachCell(op, src.Rows, src.Cols, func(i, j int) {
		dst.Set(i, j, fn(src.At(i, j)))
	})
}
