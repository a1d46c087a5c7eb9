// Package convert folds a fitted PCA model into a single float32 affine
// transform y = x·A^T + b.
//
// For an unwhitened model A is the component matrix and b = -(mean·A^T), so
// x·A^T + b == (x - mean)·components^T. Under whitening each row of A is
// first divided by the standard deviation of its component, and the bias is
// folded from that scaled A. All parameters are narrowed to float32 when they
// are copied into the transform; the bias is then computed in float32.
package convert

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/pcaffine/affine"
	"github.com/YuminosukeSato/pcaffine/decomposition"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// FromPCA converts a fitted PCA model into an equivalent affine transform.
//
// The model is validated first; any malformed input, and any parameter that
// overflows float32 after scaling, is reported as an InvalidModelError. The
// model is never modified. Repeated calls on the same model return
// bit-identical transforms.
func FromPCA(pca decomposition.PCAModel) (*affine.Transform, error) {
	const op = "convert.FromPCA"

	if pca == nil {
		return nil, errors.NewInvalidModelError(op, "model is nil", nil)
	}
	if err := pca.Validate(); err != nil {
		return nil, err
	}

	var (
		base  *decomposition.Unwhitened
		scale []float64
	)
	switch m := pca.(type) {
	case *decomposition.Unwhitened:
		base = m
	case *decomposition.Whitened:
		base = &m.Unwhitened
		scale = make([]float64, len(m.ExplainedVariance))
		for i, v := range m.ExplainedVariance {
			scale[i] = math.Sqrt(v)
		}
	default:
		return nil, errors.NewInvalidModelError(op, fmt.Sprintf("unsupported model type %T", pca), nil)
	}

	dOut, dIn := base.Components.Dims()

	// A: narrowed at the copy. The whitening division is done in float64,
	// like the source model's own transform, and rounded once.
	a := make([]float32, dOut*dIn)
	row := make([]float64, dIn)
	for i := 0; i < dOut; i++ {
		for k := range row {
			row[k] = base.Components.At(i, k)
		}
		if scale != nil {
			for k := range row {
				row[k] /= scale[i]
			}
		}
		for k, v := range row {
			a[i*dIn+k] = float32(v)
		}
	}
	if err := errors.CheckFloat32s("components", a); err != nil {
		return nil, errors.NewInvalidModelError(op, "scaled components overflow float32", err)
	}

	mean := make([]float32, dIn)
	for k, v := range base.MeanVec {
		mean[k] = float32(v)
	}
	if err := errors.CheckFloat32s("mean", mean); err != nil {
		return nil, errors.NewInvalidModelError(op, "mean overflows float32", err)
	}

	b := foldBias(dIn, dOut, a, mean)
	if err := errors.CheckFloat32s("bias", b); err != nil {
		return nil, errors.NewInvalidModelError(op, "folded bias overflows float32", err)
	}

	t, err := affine.New(dIn, dOut, a, b, mean)
	if err != nil {
		return nil, errors.NewInvalidModelError(op, "inconsistent transform shape", err)
	}
	return t, nil
}

// foldBias returns b = -(mean·A^T) computed in float32 from the final A.
func foldBias(dIn, dOut int, a, mean []float32) []float32 {
	b := make([]float32, dOut)
	blas32.Gemv(blas.NoTrans, -1,
		blas32.General{Rows: dOut, Cols: dIn, Stride: dIn, Data: a},
		blas32.Vector{N: dIn, Inc: 1, Data: mean},
		0,
		blas32.Vector{N: dOut, Inc: 1, Data: b},
	)
	return b
}
