// Package affine holds a trained single-precision affine transform
// y = x·A^T + b and applies it to batches of row vectors.
//
// The transform is the hand-off format between the converter and any engine
// that executes it: A is [d_out×d_in] row-major, b has length d_out, and the
// centering mean of the source model is kept alongside for engines that store
// it next to the projection matrix.
package affine

import (
	"fmt"

	"github.com/YuminosukeSato/pcaffine/core/model"
	"github.com/YuminosukeSato/pcaffine/core/parallel"
	"github.com/YuminosukeSato/pcaffine/core/tensor"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"
)

const modelName = "affine.Transform"

// Transform is an immutable affine map y = x·A^T + b in float32.
//
// The zero value is not trained; use New.
type Transform struct {
	model.BaseEstimator

	dIn, dOut int
	a         *tensor.Dense32 // d_out × d_in
	b         []float32       // d_out
	mean      []float32       // d_in
}

var (
	_ model.Transformer = (*Transform)(nil)
	_ model.Shaped      = (*Transform)(nil)
)

// New builds a trained transform from row-major A, bias b and the source
// mean. All slices are copied. A nil mean is stored as zeros.
func New(dIn, dOut int, a, b, mean []float32) (*Transform, error) {
	const op = "affine.New"

	if dIn <= 0 || dOut <= 0 {
		return nil, errors.NewValueError(op, fmt.Sprintf("dimensions must be positive, got d_in=%d d_out=%d", dIn, dOut))
	}
	if len(a) != dOut*dIn {
		return nil, errors.NewDimensionError(op, dOut*dIn, len(a), 1)
	}
	if len(b) != dOut {
		return nil, errors.NewDimensionError(op, dOut, len(b), 1)
	}
	if mean == nil {
		mean = make([]float32, dIn)
	}
	if len(mean) != dIn {
		return nil, errors.NewDimensionError(op, dIn, len(mean), 1)
	}

	t := &Transform{
		dIn:  dIn,
		dOut: dOut,
		a:    tensor.NewDense32(dOut, dIn, append([]float32(nil), a...)),
		b:    append([]float32(nil), b...),
		mean: append([]float32(nil), mean...),
	}
	t.SetFitted()
	return t, nil
}

// DIn returns the input dimension.
func (t *Transform) DIn() int { return t.dIn }

// DOut returns the output dimension.
func (t *Transform) DOut() int { return t.dOut }

// NFeatures is DIn.
func (t *Transform) NFeatures() int { return t.dIn }

// NComponents is DOut.
func (t *Transform) NComponents() int { return t.dOut }

// IsTrained reports whether t was built by New. Always true for such values.
func (t *Transform) IsTrained() bool { return t.IsFitted() }

// A returns a copy of the [d_out×d_in] matrix.
func (t *Transform) A() *tensor.Dense32 {
	if t.a == nil {
		return nil
	}
	return t.a.Clone()
}

// Bias returns a copy of b.
func (t *Transform) Bias() []float32 {
	return append([]float32(nil), t.b...)
}

// Mean returns a copy of the source model's centering mean.
func (t *Transform) Mean() []float32 {
	return append([]float32(nil), t.mean...)
}

func (t *Transform) String() string {
	return fmt.Sprintf("affine.Transform(d_in=%d, d_out=%d)", t.dIn, t.dOut)
}

// Apply computes X·A^T + b for every row of X.
//
// X is narrowed to float32 unless it already is a *tensor.Dense32, in which
// case it is used in place. The output is pre-filled with b and completed by a
// single GEMM call, so the whole batch is one BLAS operation.
func (t *Transform) Apply(X mat.Matrix) (*tensor.Dense32, error) {
	if err := t.CheckFitted(modelName, "Apply"); err != nil {
		return nil, err
	}
	n, c := X.Dims()
	if c != t.dIn {
		return nil, errors.NewDimensionError("affine.Apply", t.dIn, c, 1)
	}

	y := tensor.NewDense32(n, t.dOut, nil)
	if n == 0 {
		return y, nil
	}
	x := tensor.Narrow(X)

	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			copy(y.RawRow(i), t.b)
		}
	})

	// Y = 1·X·A^T + 1·Y
	blas32.Gemm(blas.NoTrans, blas.Trans, 1, x.General(), t.a.General(), 1, y.General())
	return y, nil
}

// ApplyFloat32 applies t to a flat row-major batch. len(x) must be a
// multiple of d_in. x is only read.
func (t *Transform) ApplyFloat32(x []float32) ([]float32, error) {
	if err := t.CheckFitted(modelName, "ApplyFloat32"); err != nil {
		return nil, err
	}
	if len(x)%t.dIn != 0 {
		return nil, errors.NewValueError("affine.ApplyFloat32",
			fmt.Sprintf("batch length %d is not a multiple of d_in=%d", len(x), t.dIn))
	}
	y, err := t.Apply(tensor.NewDense32(len(x)/t.dIn, t.dIn, x))
	if err != nil {
		return nil, err
	}
	return y.RawData(), nil
}

// Transform is Apply returning a mat.Matrix.
func (t *Transform) Transform(X mat.Matrix) (mat.Matrix, error) {
	y, err := t.Apply(X)
	if err != nil {
		return nil, err
	}
	return y, nil
}
