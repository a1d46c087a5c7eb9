// Package synth generates seeded synthetic inputs: orthonormal PCA models,
// low-rank "training" data, Gaussian benchmark batches, and a PCA fitted on
// data with gonum/stat standing in for an external fitting library.
//
// Every generator is deterministic in its seed.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/pcaffine/core/parallel"
	"github.com/YuminosukeSato/pcaffine/core/tensor"
	"github.com/YuminosukeSato/pcaffine/decomposition"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// pcgStream is the second PCG word; seed is the first.
	pcgStream = 0x385ab5285169b1ac

	// normalBlockRows rows of RandomNormal share one generator, so output
	// does not depend on GOMAXPROCS.
	normalBlockRows = 4096
)

// GaussianMatrix returns a rows×cols matrix of standard normal draws.
func GaussianMatrix(rows, cols int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, pcgStream))
	z := make([]float64, rows*cols)
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, z)
}

// Orthonormal returns a dOut×dIn matrix with orthonormal rows, taken from
// the Q factor of a Gaussian matrix. dOut must not exceed dIn.
func Orthonormal(dIn, dOut int, seed uint64) *mat.Dense {
	z := GaussianMatrix(dIn, dOut, seed)
	var qr mat.QR
	qr.Factorize(z)

	var q mat.Dense
	qr.QTo(&q)

	var c mat.Dense
	c.CloneFrom(q.Slice(0, dIn, 0, dOut).T())
	return &c
}

// RandomModel returns a valid PCA model with orthonormal components, a
// Gaussian mean scaled by 0.5 and explained variances decreasing linearly
// from 4 to 0.5.
func RandomModel(dIn, dOut int, whiten bool, seed uint64) (decomposition.PCAModel, error) {
	if dOut <= 0 || dOut > dIn {
		return nil, errors.NewValidationError("n_components", "must be in [1, n_features]", dOut)
	}
	comps := Orthonormal(dIn, dOut, seed)

	rng := rand.New(rand.NewPCG(seed+1, pcgStream))
	mean := make([]float64, dIn)
	for i := range mean {
		mean[i] = 0.5 * rng.NormFloat64()
	}

	variance := make([]float64, dOut)
	for i := range variance {
		variance[i] = 4
		if dOut > 1 {
			variance[i] -= 3.5 * float64(i) / float64(dOut-1)
		}
	}

	return decomposition.FromAttributes(rows(comps), mean, variance, whiten)
}

// LowRank returns rows×cols data concentrated near a rank-dimensional
// subspace: Z·W/sqrt(rank) plus small isotropic noise and a per-column offset.
func LowRank(rows, cols, rank int, seed uint64) *mat.Dense {
	z := GaussianMatrix(rows, rank, seed)
	w := GaussianMatrix(rank, cols, seed+1)

	var x mat.Dense
	x.Mul(z, w)
	x.Scale(1/math.Sqrt(float64(rank)), &x)

	rng := rand.New(rand.NewPCG(seed+2, pcgStream))
	offset := make([]float64, cols)
	for j := range offset {
		offset[j] = rng.Float64()
	}
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		for j := range row {
			row[j] += offset[j] + 0.05*rng.NormFloat64()
		}
	}
	return &x
}

// RandomNormal returns a rows×cols float32 batch of standard normal draws.
// Generation is split in fixed row blocks, each with its own generator, and
// the blocks are filled concurrently.
func RandomNormal(rows, cols int, seed uint64) *tensor.Dense32 {
	out := tensor.NewDense32(rows, cols, nil)
	data := out.RawData()
	blocks := (rows + normalBlockRows - 1) / normalBlockRows

	parallel.ParallelizeWithThreshold(blocks, 1, func(start, end int) {
		for blk := start; blk < end; blk++ {
			rng := rand.New(rand.NewPCG(seed, pcgStream^uint64(blk)))
			lo := blk * normalBlockRows * cols
			hi := min((blk+1)*normalBlockRows, rows) * cols
			for i := lo; i < hi; i++ {
				data[i] = float32(rng.NormFloat64())
			}
		}
	})
	return out
}

// FitPCA fits a PCA with nComponents components on x using gonum/stat,
// the same way a fitting library would hand over its attributes:
// components_ are the leading principal directions, mean_ the column means
// and explained_variance_ the variances of the projected scores.
func FitPCA(x mat.Matrix, nComponents int, whiten bool) (decomposition.PCAModel, error) {
	n, d := x.Dims()
	if nComponents <= 0 || nComponents > min(n, d) {
		return nil, errors.NewValidationError("n_components", "must be in [1, min(n_samples, n_features)]", nComponents)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("synth: principal component analysis failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	var comps mat.Dense
	comps.CloneFrom(vecs.Slice(0, d, 0, nComponents).T())

	mean := make([]float64, d)
	col := make([]float64, n)
	for j := range mean {
		mat.Col(col, j, x)
		mean[j] = stat.Mean(col, nil)
	}

	return decomposition.FromAttributes(rows(&comps), mean, vars[:nComponents], whiten)
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = m.RawRowView(i)
	}
	return out
}
