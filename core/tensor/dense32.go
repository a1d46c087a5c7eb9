// Package tensor provides a row-major single-precision matrix that plugs into
// gonum's mat.Matrix interface, plus the explicit float64→float32 narrowing
// used wherever double-precision data enters a float32 path.
package tensor

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/YuminosukeSato/pcaffine/core/parallel"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"
)

// Dense32 is a dense row-major float32 matrix. Rows are contiguous; the
// stride always equals the column count.
//
// Dense32 implements mat.Matrix, so it can be handed to any code that takes
// gonum matrices. At widens to float64 on every call; use RawRow or
// General for bulk access.
type Dense32 struct {
	rows, cols int
	data       []float32
}

var _ mat.Matrix = (*Dense32)(nil)

// NewDense32 creates an r×c matrix backed by data. If data is nil a zeroed
// backing slice is allocated; otherwise len(data) must equal r*c.
// Zero rows are allowed, zero columns are not.
func NewDense32(r, c int, data []float32) *Dense32 {
	if r < 0 || c <= 0 {
		panic(fmt.Sprintf("tensor: invalid shape %d×%d", r, c))
	}
	if data == nil {
		data = make([]float32, r*c)
	}
	if len(data) != r*c {
		panic(mat.ErrShape)
	}
	return &Dense32{rows: r, cols: c, data: data}
}

// Dims returns the number of rows and columns.
func (m *Dense32) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns element (i, j) widened to float64.
func (m *Dense32) At(i, j int) float64 {
	return float64(m.At32(i, j))
}

// At32 returns element (i, j).
func (m *Dense32) At32(i, j int) float32 {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	if uint(j) >= uint(m.cols) {
		panic(mat.ErrColAccess)
	}
	return m.data[i*m.cols+j]
}

// Set32 sets element (i, j).
func (m *Dense32) Set32(i, j int, v float32) {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	if uint(j) >= uint(m.cols) {
		panic(mat.ErrColAccess)
	}
	m.data[i*m.cols+j] = v
}

// T returns the implicit transpose.
func (m *Dense32) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// RawRow returns row i. The slice shares storage with m.
func (m *Dense32) RawRow(i int) []float32 {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// RawData returns the backing slice in row-major order. It shares storage with m.
func (m *Dense32) RawData() []float32 {
	return m.data
}

// General returns a blas32 view of m sharing its storage.
func (m *Dense32) General() blas32.General {
	return blas32.General{
		Rows:   m.rows,
		Cols:   m.cols,
		Stride: m.cols,
		Data:   m.data,
	}
}

// RowSlice returns rows [i, k) as a Dense32 sharing storage with m.
func (m *Dense32) RowSlice(i, k int) *Dense32 {
	if i < 0 || k > m.rows || i > k {
		panic(mat.ErrIndexOutOfRange)
	}
	return &Dense32{rows: k - i, cols: m.cols, data: m.data[i*m.cols : k*m.cols : k*m.cols]}
}

// Clone returns a deep copy of m.
func (m *Dense32) Clone() *Dense32 {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return &Dense32{rows: m.rows, cols: m.cols, data: data}
}

// Widen copies m into a new float64 matrix. Widening is exact.
func (m *Dense32) Widen() *mat.Dense {
	if m.rows == 0 {
		panic(mat.ErrZeroLength)
	}
	out := make([]float64, len(m.data))
	parallel.ParallelizeWithThreshold(m.rows, parallel.DefaultThreshold, func(start, end int) {
		lo, hi := start*m.cols, end*m.cols
		for i, v := range m.data[lo:hi] {
			out[lo+i] = float64(v)
		}
	})
	return mat.NewDense(m.rows, m.cols, out)
}

// Narrow converts any gonum matrix to single precision. A *Dense32 is
// returned as is, without copying. Values whose magnitude exceeds the
// float32 range become ±Inf; when that happens a DataConversionWarning is
// raised through errors.Warn.
func Narrow(a mat.Matrix) *Dense32 {
	if d, ok := a.(*Dense32); ok {
		return d
	}
	r, c := a.Dims()
	out := NewDense32(r, c, nil)

	var overflows atomic.Int64
	if dense, ok := a.(*mat.Dense); ok {
		raw := dense.RawMatrix()
		parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
			n := 0
			for i := start; i < end; i++ {
				n += NarrowSlice(out.data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
			}
			overflows.Add(int64(n))
		})
	} else {
		parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
			n := 0
			for i := start; i < end; i++ {
				row := out.data[i*c : (i+1)*c]
				for j := range row {
					row[j] = narrow(a.At(i, j), &n)
				}
			}
			overflows.Add(int64(n))
		})
	}
	if n := overflows.Load(); n > 0 {
		errors.Warn(errors.NewDataConversionWarning("float64", "float32",
			fmt.Sprintf("%d values overflow the float32 range", n)))
	}
	return out
}

// NarrowSlice narrows src into dst element by element and returns how many
// finite values overflowed to ±Inf. dst and src must have equal length.
func NarrowSlice(dst []float32, src []float64) int {
	if len(dst) != len(src) {
		panic(mat.ErrShape)
	}
	n := 0
	for i, v := range src {
		dst[i] = narrow(v, &n)
	}
	return n
}

func narrow(v float64, overflows *int) float32 {
	f := float32(v)
	if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
		*overflows++
	}
	return f
}
