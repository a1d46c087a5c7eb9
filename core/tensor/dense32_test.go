package tensor

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDense32ImplementsMatrix(t *testing.T) {
	m := NewDense32(2, 3, []float32{
		1, 2, 3,
		4, 5, 6,
	})

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, 2.0, m.T().At(1, 0))

	// gonum accepts Dense32 wherever a mat.Matrix is expected.
	var sum mat.Dense
	sum.Add(m, m)
	assert.Equal(t, 12.0, sum.At(1, 2))

	assert.Panics(t, func() { m.At(2, 0) })
	assert.Panics(t, func() { m.At(0, 3) })
}

func TestNewDense32Shape(t *testing.T) {
	assert.Panics(t, func() { NewDense32(2, 2, []float32{1, 2, 3}) })
	assert.Panics(t, func() { NewDense32(1, 0, nil) })

	empty := NewDense32(0, 4, nil)
	r, c := empty.Dims()
	assert.Equal(t, 0, r)
	assert.Equal(t, 4, c)
}

func TestRowSliceSharesStorage(t *testing.T) {
	m := NewDense32(4, 2, []float32{0, 1, 2, 3, 4, 5, 6, 7})
	s := m.RowSlice(1, 3)

	r, _ := s.Dims()
	require.Equal(t, 2, r)
	assert.Equal(t, []float32{2, 3}, s.RawRow(0))

	s.Set32(0, 0, 42)
	assert.Equal(t, float32(42), m.At32(1, 0))

	g := m.General()
	assert.Equal(t, 2, g.Stride)
	assert.Len(t, g.Data, 8)
}

func TestNarrowFromDense(t *testing.T) {
	src := mat.NewDense(2, 2, []float64{1.5, -2.25, 1.0 / 3.0, 7})
	got := Narrow(src)

	assert.Equal(t, float32(1.5), got.At32(0, 0))
	assert.Equal(t, float32(-2.25), got.At32(0, 1))
	assert.Equal(t, float32(1.0/3.0), got.At32(1, 0))

	// A strided view exercises the RawMatrix stride path.
	big := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	view := big.Slice(1, 3, 1, 3)
	narrowed := Narrow(view)
	assert.Equal(t, []float32{5, 6, 8, 9}, narrowed.RawData())
}

func TestNarrowIsIdentityForDense32(t *testing.T) {
	m := NewDense32(1, 2, []float32{1, 2})
	assert.Same(t, m, Narrow(m))
}

func TestNarrowOverflowWarns(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	src := mat.NewDense(1, 3, []float64{1, math.MaxFloat64, math.Inf(1)})
	got := Narrow(src)

	assert.True(t, math.IsInf(got.At(0, 1), 1))
	require.Len(t, warnings, 1, "only the finite overflow counts")
	assert.Contains(t, warnings[0].Error(), "1 values overflow")
}

type panicAt struct{ rows, cols int }

func (m panicAt) Dims() (int, int) { return m.rows, m.cols }
func (m panicAt) At(int, int) float64 { panic("unreadable element") }
func (m panicAt) T() mat.Matrix { return mat.Transpose{Matrix: m} }

func TestNarrowPanicReachesCaller(t *testing.T) {
	// DefaultThreshold を超える行数ではワーカー上で At が呼ばれる
	err := errors.SafeExecute("tensor.Narrow", func() error {
		Narrow(panicAt{rows: 10000, cols: 3})
		return nil
	})
	require.Error(t, err)

	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "tensor.Narrow", panicErr.Operation)
	assert.Equal(t, "unreadable element", panicErr.PanicValue)
}

func TestWidenRoundTrip(t *testing.T) {
	m := NewDense32(2, 2, []float32{0.1, 0.2, 0.3, 0.4})
	w := m.Widen()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, float64(m.At32(i, j)), w.At(i, j))
		}
	}
	assert.Equal(t, m.RawData(), Narrow(w).RawData())
}
