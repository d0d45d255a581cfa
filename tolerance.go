// Package striate tolerance-based verification for floating-point comparisons
package striate

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float32

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float32

	// ULPTol is the maximum allowed difference in ULPs (Units in Last Place)
	ULPTol int

	// CheckNaN makes two NaNs compare equal
	CheckNaN bool
}

// DefaultTolerance suits single kernels with a handful of roundings.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-7,
		RelTol:   1e-5,
		ULPTol:   4,
		CheckNaN: true,
	}
}

// RelaxedTolerance suits long accumulations, where summation order
// differs from a sequential reference.
func RelaxedTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-5,
		RelTol:   1e-3,
		ULPTol:   16,
		CheckNaN: true,
	}
}

// Float32NearEqual checks if two float32 values are equal within tolerance.
// Infinities compare equal only to themselves.
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	if a == b {
		return true
	}
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return tol.CheckNaN && math.IsNaN(float64(a)) && math.IsNaN(float64(b))
	}
	if math.IsInf(float64(a), 0) || math.IsInf(float64(b), 0) {
		return false
	}

	diff := math.Abs(float64(a) - float64(b))
	if diff <= float64(tol.AbsTol) {
		return true
	}
	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if diff <= larger*float64(tol.RelTol) {
		return true
	}
	return tol.ULPTol > 0 && Float32ULPDiff(a, b) <= tol.ULPTol
}

// Float32ULPDiff computes the difference in ULPs between two float32 values.
// Values of different sign report math.MaxInt32.
func Float32ULPDiff(a, b float32) int {
	aBits := math.Float32bits(a)
	bBits := math.Float32bits(b)
	if (aBits^bBits)&0x80000000 != 0 {
		return math.MaxInt32
	}
	if aBits > bBits {
		return int(aBits - bBits)
	}
	return int(bBits - aBits)
}

// Mismatch describes the first element where two matrices differ.
type Mismatch struct {
	Row, Col      int
	Expected, Got float32
	NumMismatches int
	MaxAbsError   float32
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%d elements differ; first at (%d, %d): expected %g, got %g (max abs error %g)",
		m.NumMismatches, m.Row, m.Col, m.Expected, m.Got, m.MaxAbsError)
}

// CompareDense compares two matrices of equal shape element by element,
// each addressed with its own leading dimension. It returns nil when all
// elements are within tolerance.
func CompareDense(expected, got Dense, tol ToleranceConfig) error {
	if expected.Rows != got.Rows || expected.Cols != got.Cols {
		return NewShapeError("CompareDense", "shapes differ: %dx%d and %dx%d",
			expected.Rows, expected.Cols, got.Rows, got.Cols)
	}
	var mm *Mismatch
	for i := 0; i < expected.Rows; i++ {
		for j := 0; j < expected.Cols; j++ {
			e, g := expected.At(i, j), got.At(i, j)
			if Float32NearEqual(e, g, tol) {
				continue
			}
			if mm == nil {
				mm = &Mismatch{Row: i, Col: j, Expected: e, Got: g}
			}
			mm.NumMismatches++
			if d := float32(math.Abs(float64(e) - float64(g))); d > mm.MaxAbsError {
				mm.MaxAbsError = d
			}
		}
	}
	if mm == nil {
		return nil
	}
	return mm
}
