package striate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestContext returns a context destroyed at the end of the test.
func newTestContext(t testing.TB, opts ...Option) *Context {
	t.Helper()
	ctx := NewContext(opts...)
	t.Cleanup(ctx.Destroy)
	return ctx
}

// denseOf wraps packed row-major values.
func denseOf(t testing.TB, rows, cols int, values ...float32) Dense {
	t.Helper()
	m, err := FromSlice(rows, cols, values)
	require.NoError(t, err)
	return m
}

func indicesOf(t testing.TB, values ...int32) IndexVector {
	t.Helper()
	m, err := FromSlice(1, len(values), values)
	require.NoError(t, err)
	return m
}

// paddedDense returns a rows×cols view with leading dimension cols+pad
// whose padding holds NaN, so kernels ignoring the stride show up.
func paddedDense(rng *rand.Rand, rows, cols, pad int) Dense {
	stride := cols + pad
	data := make([]float32, rows*stride)
	for i := range data {
		if i%stride >= cols {
			data[i] = float32(math.NaN())
		} else {
			data[i] = rng.Float32()*2 - 1
		}
	}
	return Dense{Data: data, Rows: rows, Cols: cols, Stride: stride}
}

func zerosDense(rows, cols int) Dense {
	return Dense{Data: make([]float32, rows*cols), Rows: rows, Cols: cols, Stride: cols}
}

func zerosIndex(n int) IndexVector {
	return IndexVector{Data: make([]int32, n), Rows: 1, Cols: n, Stride: n}
}

func requireNear(t testing.TB, want []float32, got Dense, tol ToleranceConfig) {
	t.Helper()
	expected, err := FromSlice(got.Rows, got.Cols, want)
	require.NoError(t, err)
	require.NoError(t, CompareDense(expected, got, tol))
}
