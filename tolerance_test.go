package striate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32NearEqual(t *testing.T) {
	ulpOnly := ToleranceConfig{ULPTol: 4}
	tests := []struct {
		name     string
		a, b     float32
		tol      ToleranceConfig
		expected bool
	}{
		{"Exact_Equal", 1.0, 1.0, DefaultTolerance(), true},
		{"Within_AbsTol", 1e-8, 2e-8, DefaultTolerance(), true},
		{"Outside_AbsTol", 1e-6, 2e-6, DefaultTolerance(), false},
		{"Within_RelTol", 1000.0, 1000.005, DefaultTolerance(), true},
		{"Outside_RelTol", 1000.0, 1000.5, DefaultTolerance(), false},
		{"Both_Zero", 0.0, float32(math.Copysign(0, -1)), DefaultTolerance(), true},
		{"Both_NaN", float32(math.NaN()), float32(math.NaN()), DefaultTolerance(), true},
		{"NaN_Not_Checked", float32(math.NaN()), float32(math.NaN()), ToleranceConfig{}, false},
		{"NaN_Against_Value", float32(math.NaN()), 1, DefaultTolerance(), false},
		{"Both_PosInf", float32(math.Inf(1)), float32(math.Inf(1)), DefaultTolerance(), true},
		{"Mixed_Inf", float32(math.Inf(1)), float32(math.Inf(-1)), DefaultTolerance(), false},
		{"Inf_Against_Max", float32(math.Inf(1)), math.MaxFloat32, RelaxedTolerance(), false},
		{"Within_ULP", 1.0, math.Float32frombits(math.Float32bits(1.0) + 2), ulpOnly, true},
		{"Outside_ULP", 1.0, math.Float32frombits(math.Float32bits(1.0) + 5), ulpOnly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Float32NearEqual(tt.a, tt.b, tt.tol)
			if result != tt.expected {
				t.Errorf("Float32NearEqual(%v, %v) = %v, want %v",
					tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestFloat32ULPDiff(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float32
		expected int
	}{
		{"Same_Value", 1.0, 1.0, 0},
		{"Adjacent_Values", 1.0, math.Float32frombits(math.Float32bits(1.0) + 1), 1},
		{"Two_ULPs_Reversed", math.Float32frombits(math.Float32bits(1.0) + 2), 1.0, 2},
		{"Different_Signs", 1.0, -1.0, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Float32ULPDiff(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Float32ULPDiff(%v, %v) = %v, want %v",
					tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestCompareDense(t *testing.T) {
	expected := denseOf(t, 2, 3, 1, 2, 3, 4, 5, 6)

	// Same values behind a wider leading dimension.
	got, err := FromSliceStride(2, 3, 4, []float32{1, 2, 3, -1, 4, 5, 6})
	require.NoError(t, err)
	assert.NoError(t, CompareDense(expected, got, DefaultTolerance()))

	got.Set(0, 1, 2.5)
	got.Set(1, 2, 9)
	err = CompareDense(expected, got, DefaultTolerance())
	var mm *Mismatch
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, 0, mm.Row)
	assert.Equal(t, 1, mm.Col)
	assert.Equal(t, 2, mm.NumMismatches)
	assert.Equal(t, float32(3), mm.MaxAbsError)

	err = CompareDense(expected, zerosDense(3, 2), DefaultTolerance())
	assert.True(t, IsShapeMismatch(err))
}

func TestTolerancePresets(t *testing.T) {
	def, relaxed := DefaultTolerance(), RelaxedTolerance()
	assert.Less(t, def.AbsTol, relaxed.AbsTol)
	assert.Less(t, def.RelTol, relaxed.RelTol)
	assert.Less(t, def.ULPTol, relaxed.ULPTol)
	assert.True(t, def.CheckNaN)
	assert.True(t, relaxed.CheckNaN)
}
