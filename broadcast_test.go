package striate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVecToRows(t *testing.T) {
	ctx := newTestContext(t)
	rng := rand.New(rand.NewSource(17))
	mat := paddedDense(rng, 40, 37, 3)
	vec := paddedDense(rng, 40, 1, 2)

	t.Run("BroadcastOnly", func(t *testing.T) {
		dst := zerosDense(40, 37)
		require.NoError(t, ctx.AddVecToRows(mat, vec, dst, 1, 0))
		for i := 0; i < dst.Rows; i++ {
			for j := 0; j < dst.Cols; j++ {
				require.Equal(t, vec.Elem(i), dst.At(i, j))
			}
		}
	})

	t.Run("Identity", func(t *testing.T) {
		dst := zerosDense(40, 37)
		require.NoError(t, ctx.AddVecToRows(mat, vec, dst, 0, 1))
		assert.Equal(t, mat.ToSlice(), dst.ToSlice())
	})

	t.Run("InPlace", func(t *testing.T) {
		m := denseOf(t, 2, 2, 1, 2, 3, 4)
		v := denseOf(t, 2, 1, 10, 20)
		require.NoError(t, ctx.AddVecToRows(m, v, m, 1, 2))
		assert.Equal(t, []float32{12, 14, 26, 28}, m.ToSlice())
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		err := ctx.AddVecToRows(mat, zerosDense(1, 37), zerosDense(40, 37), 1, 1)
		assert.True(t, IsShapeMismatch(err), "got %v", err)
		err = ctx.AddVecToRows(mat, vec, zerosDense(37, 40), 1, 1)
		assert.True(t, IsShapeMismatch(err), "got %v", err)
	})
}

func TestAddVecToCols(t *testing.T) {
	ctx := newTestContext(t)
	m := denseOf(t, 2, 3, 1, 2, 3, 4, 5, 6)
	v := denseOf(t, 1, 3, 1, 0, -1)
	dst := zerosDense(2, 3)
	require.NoError(t, ctx.AddVecToCols(m, v, dst, -1, 1))
	assert.Equal(t, []float32{0, 2, 4, 3, 5, 7}, dst.ToSlice())

	err := ctx.AddVecToCols(m, zerosDense(2, 1), dst, 1, 1)
	assert.True(t, IsShapeMismatch(err), "got %v", err)
}

func TestDivVec(t *testing.T) {
	ctx := newTestContext(t)

	t.Run("Rows", func(t *testing.T) {
		m := denseOf(t, 2, 2, 2, 4, 9, 3)
		v := denseOf(t, 2, 1, 2, 3)
		require.NoError(t, ctx.DivVecToRows(m, v, m))
		assert.Equal(t, []float32{1, 2, 3, 1}, m.ToSlice())
	})

	t.Run("Cols", func(t *testing.T) {
		m := denseOf(t, 2, 2, 2, 4, 9, 3)
		v := denseOf(t, 1, 2, 2, 4)
		dst := zerosDense(2, 2)
		require.NoError(t, ctx.DivVecToCols(m, v, dst))
		assert.Equal(t, []float32{1, 1, 4.5, 0.75}, dst.ToSlice())
	})

	t.Run("ZeroDivisor", func(t *testing.T) {
		m := denseOf(t, 1, 3, 1, -1, 0)
		v := denseOf(t, 1, 1, 0)
		require.NoError(t, ctx.DivVecToRows(m, v, m))
		assert.True(t, math.IsInf(float64(m.At(0, 0)), 1))
		assert.True(t, math.IsInf(float64(m.At(0, 1)), -1))
		assert.True(t, math.IsNaN(float64(m.At(0, 2))))
	})
}
