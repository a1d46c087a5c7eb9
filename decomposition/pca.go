// Package decomposition は学習済みPCAモデルの表現と、その元の射影（基準となる
// float64 の変換）を提供します。
//
// PCAModel は閉じた直和型で、白色化なしの *Unwhitened と白色化ありの *Whitened の
// 二つの実装だけを持ちます。白色化のパラメータ（explained_variance）は *Whitened に
// のみ存在し、フラグによって条件付きで現れるフィールドはありません。
package decomposition

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/pcaffine/core/model"
	"github.com/YuminosukeSato/pcaffine/core/tensor"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// transformBlockRows は基準射影で一度に float64 へ展開する行数
const transformBlockRows = 8192

// PCAModel は学習済みPCAモデル
type PCAModel interface {
	model.Transformer
	model.Shaped

	// Mean は中心化に使う平均ベクトル（長さ d_in）のコピーを返す
	Mean() []float64

	// IsWhitened は白色化ありのモデルかどうかを返す
	IsWhitened() bool

	// Validate はパラメータの形状と値を検証する
	Validate() error

	fmt.Stringer

	isPCAModel()
}

var (
	_ PCAModel = (*Unwhitened)(nil)
	_ PCAModel = (*Whitened)(nil)
)

// Unwhitened は白色化なしのPCAモデル
type Unwhitened struct {
	// Components は主成分（d_out×d_in、各行が一つの主成分方向）
	Components *mat.Dense

	// MeanVec は学習データの平均（長さ d_in）
	MeanVec []float64
}

// Whitened は白色化ありのPCAモデル。射影後の各列を sqrt(ExplainedVariance[j]) で割る。
type Whitened struct {
	Unwhitened

	// ExplainedVariance は各主成分の分散（長さ d_out、全要素が正）
	ExplainedVariance []float64
}

func (*Unwhitened) isPCAModel() {}

// NComponents は出力次元 d_out を返す
func (m *Unwhitened) NComponents() int {
	if m == nil || m.Components == nil || m.Components.IsEmpty() {
		return 0
	}
	r, _ := m.Components.Dims()
	return r
}

// NFeatures は入力次元 d_in を返す
func (m *Unwhitened) NFeatures() int {
	if m == nil || m.Components == nil || m.Components.IsEmpty() {
		return 0
	}
	_, c := m.Components.Dims()
	return c
}

// Mean は平均ベクトルのコピーを返す
func (m *Unwhitened) Mean() []float64 {
	out := make([]float64, len(m.MeanVec))
	copy(out, m.MeanVec)
	return out
}

// IsWhitened は常に false
func (*Unwhitened) IsWhitened() bool { return false }

func (m *Unwhitened) String() string {
	return fmt.Sprintf("PCA(n_components=%d, n_features=%d)", m.NComponents(), m.NFeatures())
}

// Validate はモデルの整合性を検証する
//
// 以下の場合に InvalidModelError を返す:
//   - モデルが nil、または components が空
//   - d_out > d_in
//   - len(mean) != d_in
//   - components または mean に NaN/Inf が含まれる
func (m *Unwhitened) Validate() error {
	const op = "PCA.Validate"

	if m == nil {
		return errors.NewInvalidModelError(op, "model is nil", nil)
	}
	if m.Components == nil || m.Components.IsEmpty() {
		return errors.NewInvalidModelError(op, "components are empty", errors.ErrEmptyData)
	}
	dOut, dIn := m.Components.Dims()
	if dOut > dIn {
		return errors.NewInvalidModelError(op, "more components than features",
			errors.NewValidationError("n_components", fmt.Sprintf("must be <= n_features (%d)", dIn), dOut))
	}
	if len(m.MeanVec) != dIn {
		return errors.NewInvalidModelError(op, "mean length does not match n_features",
			errors.NewDimensionError(op, dIn, len(m.MeanVec), 1))
	}
	if err := errors.CheckMatrix("components", m.Components, dOut, dIn); err != nil {
		return errors.NewInvalidModelError(op, "components contain NaN or Inf", err)
	}
	if err := errors.CheckNumericalStability("mean", m.MeanVec); err != nil {
		return errors.NewInvalidModelError(op, "mean contains NaN or Inf", err)
	}
	return nil
}

// Transform は元のモデルと同じ射影 (X - mean)·components^T を float64 で計算する
//
// パラメータ:
//   - X: 入力データ (n_samples × d_in)。*tensor.Dense32 も受け付ける
//
// 戻り値:
//   - mat.Matrix: 射影結果 (n_samples × d_out) の *mat.Dense
//   - error: モデルが不正な場合は InvalidModelError、列数が d_in と異なる場合は DimensionError
func (m *Unwhitened) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m.project("PCA.Transform", X, nil)
}

// IsWhitened は常に true
func (*Whitened) IsWhitened() bool { return true }

func (m *Whitened) String() string {
	return fmt.Sprintf("PCA(n_components=%d, n_features=%d, whiten=true)", m.NComponents(), m.NFeatures())
}

// Variance は explained_variance のコピーを返す
func (m *Whitened) Variance() []float64 {
	out := make([]float64, len(m.ExplainedVariance))
	copy(out, m.ExplainedVariance)
	return out
}

// Validate は Unwhitened の検証に加えて、explained_variance の長さと正値性を検証する
func (m *Whitened) Validate() error {
	const op = "PCA.Validate"

	if m == nil {
		return errors.NewInvalidModelError(op, "model is nil", nil)
	}
	if err := m.Unwhitened.Validate(); err != nil {
		return err
	}
	dOut := m.NComponents()
	if len(m.ExplainedVariance) != dOut {
		return errors.NewInvalidModelError(op, "explained_variance length does not match n_components",
			errors.NewDimensionError(op, dOut, len(m.ExplainedVariance), 1))
	}
	if err := errors.CheckNumericalStability("explained_variance", m.ExplainedVariance); err != nil {
		return errors.NewInvalidModelError(op, "explained_variance contains NaN or Inf", err)
	}
	for i, v := range m.ExplainedVariance {
		if v <= 0 {
			return errors.NewInvalidModelError(op, "whitening requires positive explained_variance",
				errors.Wrapf(errors.ErrNonPositiveVariance, "explained_variance[%d] = %g", i, v))
		}
	}
	return nil
}

// Transform は ((X - mean)·components^T) / sqrt(explained_variance) を float64 で計算する
func (m *Whitened) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	scale := make([]float64, len(m.ExplainedVariance))
	for j, v := range m.ExplainedVariance {
		scale[j] = math.Sqrt(v)
	}
	return m.project("PCA.Transform", X, scale)
}

// project は行ブロックごとに中心化と射影を行う。
// float32 の巨大なバッチでも入力全体の float64 コピーを作らない。
// scale が nil でなければ列 j を scale[j] で割る。
// モデルは検証済みであること。
func (m *Unwhitened) project(op string, X mat.Matrix, scale []float64) (mat.Matrix, error) {
	dOut, dIn := m.Components.Dims()

	n, c := X.Dims()
	if c != dIn {
		return nil, errors.NewDimensionError(op, dIn, c, 1)
	}
	if n == 0 {
		return nil, errors.NewValueError(op, "input has no rows")
	}

	out := mat.NewDense(n, dOut, nil)
	bs := min(n, transformBlockRows)
	centered := mat.NewDense(bs, dIn, nil)

	for lo := 0; lo < n; lo += bs {
		hi := min(lo+bs, n)
		block := centered
		if hi-lo < bs {
			block = centered.Slice(0, hi-lo, 0, dIn).(*mat.Dense)
		}
		for i := lo; i < hi; i++ {
			row := block.RawRowView(i - lo)
			readRow(row, X, i)
			floats.Sub(row, m.MeanVec)
		}

		dst := out.Slice(lo, hi, 0, dOut).(*mat.Dense)
		dst.Mul(block, m.Components.T())

		if scale != nil {
			for i := 0; i < hi-lo; i++ {
				floats.Div(dst.RawRowView(i), scale)
			}
		}
	}
	return out, nil
}

// readRow は X の i 行目を float64 として dst に書き込む
func readRow(dst []float64, X mat.Matrix, i int) {
	switch x := X.(type) {
	case *tensor.Dense32:
		for j, v := range x.RawRow(i) {
			dst[j] = float64(v)
		}
	case mat.RawRowViewer:
		copy(dst, x.RawRowView(i))
	default:
		for j := range dst {
			dst[j] = X.At(i, j)
		}
	}
}

// FromAttributes は学習済みPCAの属性から PCAModel を構築し、検証する
//
// パラメータ:
//   - components: d_out 行、各行の長さ d_in の主成分
//   - mean: 長さ d_in の平均
//   - explainedVariance: 長さ d_out の分散。whiten が false の場合は無視される
//   - whiten: 白色化の有無
//
// 戻り値:
//   - PCAModel: whiten に応じて *Unwhitened または *Whitened
//   - error: 属性が不正な場合は InvalidModelError
//
// 使用例:
//
//	pca, err := decomposition.FromAttributes(components, mean, variance, true)
//	Y, err := pca.Transform(X)
func FromAttributes(components [][]float64, mean, explainedVariance []float64, whiten bool) (PCAModel, error) {
	const op = "PCA.FromAttributes"

	if len(components) == 0 || len(components[0]) == 0 {
		return nil, errors.NewInvalidModelError(op, "components are empty", errors.ErrEmptyData)
	}
	dOut, dIn := len(components), len(components[0])
	data := make([]float64, 0, dOut*dIn)
	for i, row := range components {
		if len(row) != dIn {
			return nil, errors.NewInvalidModelError(op, fmt.Sprintf("components row %d is ragged", i),
				errors.NewDimensionError(op, dIn, len(row), 1))
		}
		data = append(data, row...)
	}

	base := Unwhitened{
		Components: mat.NewDense(dOut, dIn, data),
		MeanVec:    append([]float64(nil), mean...),
	}

	var pca PCAModel
	if whiten {
		pca = &Whitened{
			Unwhitened:        base,
			ExplainedVariance: append([]float64(nil), explainedVariance...),
		}
	} else {
		pca = &base
	}

	if err := pca.Validate(); err != nil {
		return nil, err
	}
	return pca, nil
}
