package striate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positiveDense(rng *rand.Rand, rows, cols int) Dense {
	m := zerosDense(rows, cols)
	for i := range m.Data {
		m.Data[i] = rng.Float32()
	}
	return m
}

func referenceRowSums(m Dense) []float32 {
	out := make([]float32, m.Rows)
	for i := 0; i < m.Rows; i++ {
		var s float64
		for j := 0; j < m.Cols; j++ {
			s += float64(m.At(i, j))
		}
		out[i] = float32(s)
	}
	return out
}

func TestRowSumAccumulates(t *testing.T) {
	ctx := newTestContext(t)
	mat := denseOf(t, 2, 3, 1, 2, 3, 4, 5, 6)

	cases := []struct {
		name        string
		prior       []float32
		alpha, beta float32
		want        []float32
	}{
		{"overwrite", []float32{100, 100}, 0, 1, []float32{6, 15}},
		{"accumulate", []float32{1, 2}, 1, 1, []float32{7, 17}},
		{"scaled", []float32{10, -4}, 0.5, 2, []float32{17, 28}},
		{"negated", []float32{0, 0}, 1, -1, []float32{-6, -15}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vec := denseOf(t, 2, 1, tc.prior...)
			require.NoError(t, ctx.RowSum(mat, vec, tc.alpha, tc.beta))
			assert.Equal(t, tc.want, vec.ToSlice())
		})
	}
}

func TestRowSumIgnoresPriorWhenAlphaZero(t *testing.T) {
	ctx := newTestContext(t)
	mat := denseOf(t, 1, 2, 1, 2)
	vec := denseOf(t, 1, 1, float32(math.NaN()))
	require.NoError(t, ctx.RowSum(mat, vec, 0, 1))
	assert.Equal(t, float32(3), vec.Elem(0))
}

func TestRowSumIntegralExact(t *testing.T) {
	ctx := newTestContext(t)
	for _, cols := range []int{1, 5, 256, 257, 3*ReductionCapacity + 7} {
		mat := zerosDense(3, cols)
		for i := 0; i < 3; i++ {
			for j := 0; j < cols; j++ {
				mat.Set(i, j, float32((i+j)%17))
			}
		}
		vec := zerosDense(3, 1)
		require.NoError(t, ctx.RowSum(mat, vec, 0, 1))
		assert.Equal(t, referenceRowSums(mat), vec.ToSlice(), "cols=%d", cols)
	}
}

func TestRowSumTwoLevel(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	timer := NewTimer()
	ctx := newTestContext(t, WithRecorder(timer))

	mat := positiveDense(rng, 4, 3*ReductionCapacity+7)
	prior := []float32{1, 2, 3, 4}
	vec := denseOf(t, 1, 4, prior...)
	require.NoError(t, ctx.RowSum(mat, vec, 2, 0.5))

	want := referenceRowSums(mat)
	for i := range want {
		want[i] = 2*prior[i] + 0.5*want[i]
	}
	requireNear(t, want, vec, RelaxedTolerance())

	allocated, peak := ctx.Memory().GetStats()
	assert.Zero(t, allocated, "scratch must be released")
	assert.Positive(t, peak)
	assert.Equal(t, 1, timer.Count("RowSum"))
}

func TestRowSumThreeLevel(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	ctx := newTestContext(t)

	mat := positiveDense(rng, 1, ReductionCapacity*ReductionCapacity+5)
	vec := zerosDense(1, 1)
	require.NoError(t, ctx.RowSum(mat, vec, 0, 1))
	requireNear(t, referenceRowSums(mat), vec, RelaxedTolerance())
}

func TestRowSumStridedView(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	ctx := newTestContext(t)

	for _, cols := range []int{10, 700} {
		mat := paddedDense(rng, 3, cols, 5)
		vec := zerosDense(3, 1)
		require.NoError(t, ctx.RowSum(mat, vec, 0, 1))
		requireNear(t, referenceRowSums(mat), vec, RelaxedTolerance())
	}
}

func TestColSum(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	ctx := newTestContext(t)

	t.Run("Scenario", func(t *testing.T) {
		mat := denseOf(t, 2, 3, 1, 2, 3, 4, 5, 6)
		vec := denseOf(t, 1, 3, 1, 1, 1)
		require.NoError(t, ctx.ColSum(mat, vec, 1, 1))
		assert.Equal(t, []float32{6, 8, 10}, vec.ToSlice())
	})

	t.Run("StridedFold", func(t *testing.T) {
		for _, rows := range []int{255, 256, 257, 1500, MaxReductionExtent} {
			mat := paddedDense(rng, rows, 4, 1)
			vec := zerosDense(1, 4)
			require.NoError(t, ctx.ColSum(mat, vec, 0, 1))

			want := make([]float32, 4)
			for j := range want {
				var s float64
				for i := 0; i < rows; i++ {
					s += float64(mat.At(i, j))
				}
				want[j] = float32(s)
			}
			requireNear(t, want, vec, ToleranceConfig{AbsTol: 1e-3, RelTol: 1e-3})
		}
	})

	t.Run("CapacityExceeded", func(t *testing.T) {
		err := ctx.ColSum(zerosDense(MaxReductionExtent+1, 2), zerosDense(1, 2), 0, 1)
		assert.True(t, IsCapacityExceeded(err), "got %v", err)
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		err := ctx.ColSum(zerosDense(3, 2), zerosDense(1, 3), 0, 1)
		assert.True(t, IsShapeMismatch(err), "got %v", err)
		err = ctx.RowSum(zerosDense(3, 2), zerosDense(1, 2), 0, 1)
		assert.True(t, IsShapeMismatch(err), "got %v", err)
	})
}
