package convert

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/pcaffine/affine"
	"github.com/YuminosukeSato/pcaffine/core/tensor"
	"github.com/YuminosukeSato/pcaffine/decomposition"
	"github.com/YuminosukeSato/pcaffine/internal/synth"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromPCAShape(t *testing.T) {
	tests := []struct {
		dIn, dOut int
		whiten    bool
	}{
		{1, 1, false},
		{5, 5, true},
		{64, 8, false},
		{64, 8, true},
		{784, 32, false},
	}

	for _, tt := range tests {
		pca, err := synth.RandomModel(tt.dIn, tt.dOut, tt.whiten, 11)
		require.NoError(t, err)

		tr, err := FromPCA(pca)
		require.NoError(t, err)

		r, c := tr.A().Dims()
		assert.Equal(t, tt.dOut, r)
		assert.Equal(t, tt.dIn, c)
		assert.Len(t, tr.Bias(), tt.dOut)
		assert.Len(t, tr.Mean(), tt.dIn)
		assert.Equal(t, tt.dIn, tr.DIn())
		assert.Equal(t, tt.dOut, tr.DOut())
		assert.True(t, tr.IsTrained())
	}
}

func TestFromPCAEquivalence(t *testing.T) {
	const dIn, dOut, n = 64, 12, 500
	X := synth.RandomNormal(n, dIn, 3)

	for _, whiten := range []bool{false, true} {
		pca, err := synth.RandomModel(dIn, dOut, whiten, 5)
		require.NoError(t, err)

		tr, err := FromPCA(pca)
		require.NoError(t, err)

		want, err := pca.Transform(X)
		require.NoError(t, err)
		got, err := tr.Apply(X)
		require.NoError(t, err)

		for i := 0; i < n; i++ {
			for j := 0; j < dOut; j++ {
				require.InDelta(t, want.At(i, j), got.At(i, j), 1e-5,
					"whiten=%v at (%d, %d)", whiten, i, j)
			}
		}
	}
}

func TestFromPCAWhitenedRows(t *testing.T) {
	pca, err := decomposition.FromAttributes(
		[][]float64{{0.6, 0.8}, {-0.8, 0.6}},
		[]float64{1, -1},
		[]float64{4, 0.25},
		true,
	)
	require.NoError(t, err)

	tr, err := FromPCA(pca)
	require.NoError(t, err)

	// A[i,:] = components[i,:] / sqrt(var[i])
	assert.InDeltaSlice(t, []float32{0.3, 0.4, -1.6, 1.2}, tr.A().RawData(), 1e-7)
	// b = -(mean · A^T)
	assert.InDeltaSlice(t, []float32{0.1, 2.8}, tr.Bias(), 1e-6)
	assert.Equal(t, []float32{1, -1}, tr.Mean())
}

func TestFromPCADeterministic(t *testing.T) {
	for _, whiten := range []bool{false, true} {
		pca, err := synth.RandomModel(100, 20, whiten, 77)
		require.NoError(t, err)

		t1, err := FromPCA(pca)
		require.NoError(t, err)
		t2, err := FromPCA(pca)
		require.NoError(t, err)

		assert.Equal(t, bits(t1.A().RawData()), bits(t2.A().RawData()))
		assert.Equal(t, bits(t1.Bias()), bits(t2.Bias()))
	}
}

func TestFromPCADoesNotMutateModel(t *testing.T) {
	pca, err := synth.RandomModel(10, 3, true, 1)
	require.NoError(t, err)
	before, err := decomposition.Attributes(pca)
	require.NoError(t, err)

	_, err = FromPCA(pca)
	require.NoError(t, err)

	after, err := decomposition.Attributes(pca)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFromPCARejectsInvalidModels(t *testing.T) {
	comps := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0})
	valid := decomposition.Unwhitened{Components: comps, MeanVec: []float64{0, 0, 0}}

	tests := []struct {
		name string
		pca  decomposition.PCAModel
	}{
		{"nil model", nil},
		{"typed nil unwhitened", (*decomposition.Unwhitened)(nil)},
		{"typed nil whitened", (*decomposition.Whitened)(nil)},
		{"zero variance", &decomposition.Whitened{Unwhitened: valid, ExplainedVariance: []float64{1, 0}}},
		{"negative variance", &decomposition.Whitened{Unwhitened: valid, ExplainedVariance: []float64{-2, 1}}},
		{"mean length", &decomposition.Unwhitened{Components: comps, MeanVec: []float64{0, 0}}},
		{"variance length", &decomposition.Whitened{Unwhitened: valid, ExplainedVariance: []float64{1}}},
		{"more components than features", &decomposition.Unwhitened{
			Components: mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1}),
			MeanVec:    []float64{0, 0},
		}},
		{"variance underflows scale", &decomposition.Whitened{Unwhitened: valid, ExplainedVariance: []float64{1e-300, 1}}},
		{"mean overflows float32", &decomposition.Unwhitened{Components: comps, MeanVec: []float64{1e300, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				tr  *affine.Transform
				err error
			)
			require.NotPanics(t, func() { tr, err = FromPCA(tt.pca) })
			require.Error(t, err)
			assert.Nil(t, tr)

			var invalid *errors.InvalidModelError
			assert.True(t, errors.As(err, &invalid), "got %T: %v", err, err)
		})
	}
}

// 784→32 で主成分が単位行列の先頭 32 行、平均 0 の場合は A が厳密に一致し b は 0
func TestFromPCAIdentityScenario(t *testing.T) {
	const dIn, dOut = 784, 32

	comps := make([][]float64, dOut)
	for i := range comps {
		comps[i] = make([]float64, dIn)
		comps[i][i] = 1
	}
	pca, err := decomposition.FromAttributes(comps, make([]float64, dIn), nil, false)
	require.NoError(t, err)

	tr, err := FromPCA(pca)
	require.NoError(t, err)

	A := tr.A()
	for i := 0; i < dOut; i++ {
		for k := 0; k < dIn; k++ {
			want := float32(0)
			if i == k {
				want = 1
			}
			require.Equal(t, want, A.At32(i, k))
		}
	}
	assert.Equal(t, make([]float32, dOut), tr.Bias())

	x := make([]float32, dIn)
	x[0] = 1
	y, err := tr.ApplyFloat32(x)
	require.NoError(t, err)
	require.Len(t, y, dOut)
	assert.Equal(t, float32(1), y[0])
	for i := 1; i < dOut; i++ {
		assert.Zero(t, y[i])
	}

	Y, err := tr.Apply(tensor.NewDense32(1, dIn, x))
	require.NoError(t, err)
	assert.Equal(t, y, Y.RawData())
}

func bits(v []float32) []uint32 {
	out := make([]uint32, len(v))
	for i, f := range v {
		out[i] = math.Float32bits(f)
	}
	return out
}
