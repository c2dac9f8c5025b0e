package errors

import (
	"fmt"
	"math"
)

// CheckFinite returns a ValueError naming the first NaN or Inf in values.
func CheckFinite(op string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewValueError(op, fmt.Sprintf("non-finite value %g at index %d", v, i))
		}
	}
	return nil
}

// CheckMatrixFinite returns a ValueError naming the first NaN or Inf entry
// of an rows-by-cols matrix.
func CheckMatrixFinite(op string, m interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewValueError(op, fmt.Sprintf("non-finite value %g at (%d, %d)", v, i, j))
			}
		}
	}
	return nil
}
