package striate

import (
	"fmt"
	"unsafe"
)

// Element is the set of value types a Matrix can hold.
type Element interface {
	~float32 | ~int32
}

// Matrix is a non-owning, row-major view of a dense matrix. Element (i, j)
// lives at Data[i*Stride+j]; Stride is the leading dimension and may exceed
// Cols when the view is a sub-matrix of a larger allocation.
type Matrix[T Element] struct {
	Data   []T
	Rows   int
	Cols   int
	Stride int

	// base is set only on matrices handed out by Alloc.
	base DevicePtr
}

// Dense is a float32 matrix, the operand type of every kernel.
type Dense = Matrix[float32]

// IndexVector holds class indices: argmax outputs and labels.
type IndexVector = Matrix[int32]

// FromSlice wraps a packed row-major slice as a rows×cols matrix.
func FromSlice[T Element](rows, cols int, data []T) (Matrix[T], error) {
	return FromSliceStride(rows, cols, cols, data)
}

// FromSliceStride wraps data as a rows×cols matrix with the given leading
// dimension.
func FromSliceStride[T Element](rows, cols, stride int, data []T) (Matrix[T], error) {
	m := Matrix[T]{Data: data, Rows: rows, Cols: cols, Stride: stride}
	return m, m.Validate()
}

// Validate checks the view's invariants: non-negative dimensions,
// Stride >= Cols and enough backing data for the last row.
func (m Matrix[T]) Validate() error {
	switch {
	case m.Rows < 0 || m.Cols < 0:
		return NewInvalidArgError("Matrix", fmt.Sprintf("negative shape %dx%d", m.Rows, m.Cols))
	case m.Stride < m.Cols:
		return NewInvalidArgError("Matrix", fmt.Sprintf("leading dimension %d smaller than %d columns", m.Stride, m.Cols))
	case m.Rows > 0 && m.Cols > 0 && (m.Rows-1)*m.Stride+m.Cols > len(m.Data):
		return NewInvalidArgError("Matrix", fmt.Sprintf("%dx%d view with stride %d needs %d elements, have %d",
			m.Rows, m.Cols, m.Stride, (m.Rows-1)*m.Stride+m.Cols, len(m.Data)))
	}
	return nil
}

// Dims returns the number of rows and columns.
func (m Matrix[T]) Dims() (rows, cols int) {
	return m.Rows, m.Cols
}

// Offset maps (i, j) to its position in Data.
func (m Matrix[T]) Offset(i, j int) int {
	return i*m.Stride + j
}

// At returns element (i, j).
func (m Matrix[T]) At(i, j int) T {
	return m.Data[i*m.Stride+j]
}

// Set stores v at (i, j).
func (m Matrix[T]) Set(i, j int, v T) {
	m.Data[i*m.Stride+j] = v
}

// View returns the rows×cols sub-matrix starting at (i, j). It shares
// storage and leading dimension with m.
func (m Matrix[T]) View(i, j, rows, cols int) Matrix[T] {
	if i < 0 || j < 0 || rows < 0 || cols < 0 || i+rows > m.Rows || j+cols > m.Cols {
		panic(fmt.Sprintf("striate: view [%d:%d, %d:%d] out of range for %dx%d matrix",
			i, i+rows, j, j+cols, m.Rows, m.Cols))
	}
	if rows == 0 || cols == 0 {
		return Matrix[T]{Rows: rows, Cols: cols, Stride: m.Stride}
	}
	start := m.Offset(i, j)
	end := start + (rows-1)*m.Stride + cols
	return Matrix[T]{Data: m.Data[start:end:end], Rows: rows, Cols: cols, Stride: m.Stride}
}

// IsVector reports whether one of the dimensions is 1.
func (m Matrix[T]) IsVector() bool {
	return m.Rows == 1 || m.Cols == 1
}

// Len is the length of a vector: its non-unit dimension.
func (m Matrix[T]) Len() int {
	if m.Rows == 1 {
		return m.Cols
	}
	return m.Rows
}

func (m Matrix[T]) vecOffset(k int) int {
	if m.Rows == 1 {
		return k
	}
	return k * m.Stride
}

// Elem returns element k of a vector, row or column.
func (m Matrix[T]) Elem(k int) T {
	return m.Data[m.vecOffset(k)]
}

// SetElem stores v at element k of a vector.
func (m Matrix[T]) SetElem(k int, v T) {
	m.Data[m.vecOffset(k)] = v
}

// ToSlice copies the matrix into a packed row-major slice.
func (m Matrix[T]) ToSlice() []T {
	out := make([]T, 0, m.Rows*m.Cols)
	for i := 0; i < m.Rows; i++ {
		out = append(out, m.Data[i*m.Stride:i*m.Stride+m.Cols]...)
	}
	return out
}

// overlaps reports whether the memory spans of m and o intersect. Views
// interleaved in the same rows count as overlapping.
func (m Matrix[T]) overlaps(o Matrix[T]) bool {
	mLo, mHi, ok := m.span()
	if !ok {
		return false
	}
	oLo, oHi, ok := o.span()
	return ok && mLo < oHi && oLo < mHi
}

// span is the half-open address range from the first to past the last
// element of the view.
func (m Matrix[T]) span() (lo, hi uintptr, ok bool) {
	if m.Rows == 0 || m.Cols == 0 || len(m.Data) == 0 {
		return 0, 0, false
	}
	var zero T
	n := (m.Rows-1)*m.Stride + m.Cols
	lo = uintptr(unsafe.Pointer(&m.Data[0]))
	return lo, lo + uintptr(n)*unsafe.Sizeof(zero), true
}

// Argument checks. All of them run before anything is dispatched.

func checkVector[T Element](op, name string, v Matrix[T], n int, axis string) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if !v.IsVector() || v.Len() != n {
		return NewShapeError(op, "%s is %dx%d, want a vector of length %d (%s)", name, v.Rows, v.Cols, n, axis)
	}
	return nil
}

func checkSameShape[A, B Element](op, name string, want Matrix[A], got Matrix[B]) error {
	if err := got.Validate(); err != nil {
		return err
	}
	if want.Rows != got.Rows || want.Cols != got.Cols {
		return NewShapeError(op, "%s is %dx%d, want %dx%d", name, got.Rows, got.Cols, want.Rows, want.Cols)
	}
	return nil
}

// checkExtent enforces the bounded reduction axis of max, argmax and
// column-sum kernels.
func checkExtent(op string, n int) error {
	if n > MaxReductionExtent {
		return NewCapacityError(op, n, MaxReductionExtent)
	}
	return nil
}
