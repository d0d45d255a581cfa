package striate

import (
	"fmt"
	"math"
)

// SoftmaxGrad computes the softmax cross-entropy gradient for predictions
// laid out with classes on rows and samples on columns:
//
//	grad[i, j] = 1 - mat[i, j]  if i == labels[j]
//	grad[i, j] =   - mat[i, j]  otherwise
//
// labels holds one class index per column. grad may be mat.
func (ctx *Context) SoftmaxGrad(mat Dense, labels IndexVector, grad Dense) error {
	const op = "SoftmaxGrad"
	defer ctx.track(op)()
	if err := checkLabelled(op, mat, labels, grad, mat.Cols, "one per matrix column"); err != nil {
		return err
	}
	return ctx.forEachCell(op, mat.Rows, mat.Cols, func(i, j int) {
		softmaxCell(mat, grad, i, j, int(labels.Elem(j)) == i)
	})
}

// SoftmaxGradRows is SoftmaxGrad for samples on rows and classes on
// columns; labels holds one class index per row.
func (ctx *Context) SoftmaxGradRows(mat Dense, labels IndexVector, grad Dense) error {
	const op = "SoftmaxGradRows"
	defer ctx.track(op)()
	if err := checkLabelled(op, mat, labels, grad, mat.Rows, "one per matrix row"); err != nil {
		return err
	}
	return ctx.forEachCell(op, mat.Rows, mat.Cols, func(i, j int) {
		softmaxCell(mat, grad, i, j, int(labels.Elem(i)) == j)
	})
}

func softmaxCell(mat, grad Dense, i, j int, target bool) {
	if target {
		grad.Set(i, j, 1-mat.At(i, j))
	} else {
		grad.Set(i, j, -mat.At(i, j))
	}
}

// LogLossRows extracts the per-sample log loss from probabilities laid out
// with samples on rows: cost[i] = -log(mat[i, labels[i]]). A label outside
// the class range faults the dispatch.
func (ctx *Context) LogLossRows(mat Dense, labels IndexVector, cost Dense) error {
	const op = "LogLossRows"
	defer ctx.track(op)()
	if err := checkLoss(op, mat, labels, cost, mat.Rows, "one per matrix row"); err != nil {
		return err
	}
	return ctx.forEachIndex(op, mat.Rows, func(i int) {
		c := classIndex(labels.Elem(i), mat.Cols)
		cost.SetElem(i, negLog(mat.At(i, c)))
	})
}

// LogLossCols extracts the per-sample log loss from probabilities laid out
// with samples on columns: cost[j] = -log(mat[labels[j], j]).
func (ctx *Context) LogLossCols(mat Dense, labels IndexVector, cost Dense) error {
	const op = "LogLossCols"
	defer ctx.track(op)()
	if err := checkLoss(op, mat, labels, cost, mat.Cols, "one per matrix column"); err != nil {
		return err
	}
	return ctx.forEachIndex(op, mat.Cols, func(j int) {
		c := classIndex(labels.Elem(j), mat.Rows)
		cost.SetElem(j, negLog(mat.At(c, j)))
	})
}

// SameCount returns the number of positions at which vectors a and b hold
// equal values. The comparison is written as a 0/1 vector which is then
// summed with RowSum, so vectors longer than MaxSameCountLength fail with
// a capacity error.
func SameCount[T Element](ctx *Context, a, b Matrix[T]) (count int, err error) {
	const op = "SameCount"
	defer ctx.track(op)()
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if !a.IsVector() {
		return 0, NewShapeError(op, "operand is %dx%d, want a vector", a.Rows, a.Cols)
	}
	n := a.Len()
	if err := checkVector(op, "second operand", b, n, "same length as the first"); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if n > MaxSameCountLength {
		return 0, NewCapacityError(op, n, MaxSameCountLength)
	}

	same, err := ctx.NewDense(1, n)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rerr := Release(ctx, same); err == nil {
			err = rerr
		}
	}()
	total, err := ctx.NewDense(1, 1)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rerr := Release(ctx, total); err == nil {
			err = rerr
		}
	}()

	err = ctx.forEachIndex(op, n, func(k int) {
		if a.Elem(k) == b.Elem(k) {
			same.Set(0, k, 1)
		} else {
			same.Set(0, k, 0)
		}
	})
	if err != nil {
		return 0, err
	}
	if err = ctx.rowSum(same, total, 0, 1); err != nil {
		return 0, err
	}
	return int(total.At(0, 0)), nil
}

func checkLabelled(op string, mat Dense, labels IndexVector, out Dense, n int, axis string) error {
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := checkVector(op, "labels", labels, n, axis); err != nil {
		return err
	}
	return checkSameShape(op, "gradient", mat, out)
}

func checkLoss(op string, mat Dense, labels IndexVector, cost Dense, n int, axis string) error {
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := checkVector(op, "labels", labels, n, axis); err != nil {
		return err
	}
	return checkVector(op, "cost", cost, n, axis)
}

func classIndex(label int32, classes int) int {
	if label < 0 || int(label) >= classes {
		panic(fmt.Sprintf("label %d out of range [0, %d)", label, classes))
	}
	return int(label)
}

func negLog(p float32) float32 {
	return -float32(math.Log(float64(p)))
}
