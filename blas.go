package striate

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Dot computes c = alpha*op(a)*op(b) + beta*c, where op transposes its
// operand when the matching flag is set. General matrix multiplication is
// delegated to gonum's BLAS; the views are passed with their leading
// dimensions so sub-matrices need no copy. An empty inner dimension
// leaves c = beta*c.
func (ctx *Context) Dot(a, b, c Dense, transA, transB bool, alpha, beta float32) error {
	const op = "Dot"
	defer ctx.track(op)()
	for _, m := range []Dense{a, b, c} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	m, k := a.Rows, a.Cols
	if transA {
		m, k = k, m
	}
	kb, n := b.Rows, b.Cols
	if transB {
		kb, n = n, kb
	}
	if k != kb {
		return NewShapeError(op, "inner dimensions differ: %d and %d", k, kb)
	}
	if c.Rows != m || c.Cols != n {
		return NewShapeError(op, "output is %dx%d, want %dx%d", c.Rows, c.Cols, m, n)
	}
	if m == 0 || n == 0 {
		return nil
	}
	if k == 0 {
		return ctx.forEachCell(op, m, n, func(i, j int) {
			if beta == 0 {
				c.Set(i, j, 0)
			} else {
				c.Set(i, j, beta*c.At(i, j))
			}
		})
	}
	return ctx.runHost(op, func() {
		blas32.Gemm(transpose(transA), transpose(transB), alpha, general(a), general(b), beta, general(c))
	})
}

func transpose(t bool) blas.Transpose {
	if t {
		return blas.Trans
	}
	return blas.NoTrans
}

func general(m Dense) blas32.General {
	return blas32.General{
		Rows:   m.Rows,
		Cols:   m.Cols,
		Stride: m.Stride,
		Data:   m.Data[:(m.Rows-1)*m.Stride+m.Cols],
	}
}

// runHost runs fn on the context's stream, ordered with kernel dispatches.
// A panic is reported as an execution error.
func (ctx *Context) runHost(op string, fn func()) error {
	if ctx.destroyed.Load() {
		return ErrContextDestroyed
	}
	var err error
	ctx.stream.Run(func() {
		defer func() {
			if r := recover(); r != nil {
				err = NewExecutionError(op, fmt.Sprintf("host call panicked: %v", r), errors.Errorf("%v", r))
			}
		}()
		fn()
	})
	return err
}
