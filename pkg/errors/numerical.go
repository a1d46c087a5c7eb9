package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, collectUnstable(values, i), i)
		}
	}
	return nil
}

// CheckFloat32s is CheckNumericalStability for single-precision buffers.
// A finite float64 that overflowed during narrowing shows up here as Inf.
func CheckFloat32s(operation string, values []float32) error {
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			unstable := make([]float64, 0, 10)
			for _, w := range values[i:] {
				g := float64(w)
				if math.IsNaN(g) || math.IsInf(g, 0) {
					unstable = append(unstable, g)
					if len(unstable) >= 10 {
						break
					}
				}
			}
			return NewNumericalInstabilityError(operation, unstable, i)
		}
	}
	return nil
}

// CheckMatrix checks all values in a matrix for numerical instability.
func CheckMatrix(operation string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewNumericalInstabilityError(operation, []float64{v}, i*cols+j)
			}
		}
	}
	return nil
}

// collectUnstable gathers at most 10 non-finite values starting at from,
// to keep the error message bounded.
func collectUnstable(values []float64, from int) []float64 {
	unstable := make([]float64, 0, 10)
	for _, v := range values[from:] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	return unstable
}
