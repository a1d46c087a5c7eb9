// Package metrics は二つの射影結果の要素ごとの乖離を測る指標を提供します。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/pcaffine/core/parallel"
	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// blockRows は部分集計の単位。ブロック順に合算するので結果はスレッド数に依存しない
const blockRows = 2048

// Deviation は actual と desired の要素ごとの差 |actual - desired| の要約
type Deviation struct {
	// Max は最大絶対偏差。Row, Col はその位置（同値の場合は行優先で最初の位置）
	Max      float64
	Row, Col int

	// Mean は平均絶対偏差
	Mean float64

	// RMS は偏差の二乗平均平方根
	RMS float64

	// Violations は |actual - desired| > atol + rtol*|desired| となった要素数
	Violations int

	// FirstViolationRow, FirstViolationCol は行優先で最初の違反位置（違反がなければ -1）
	FirstViolationRow, FirstViolationCol int
}

// Close は全要素が許容誤差内かどうかを返す
func (d *Deviation) Close() bool {
	return d.Violations == 0
}

type partial struct {
	max        float64
	row, col   int
	sum, sumSq float64
	violations int
	vRow, vCol int
}

// Compare は actual と desired を要素ごとに比較する
//
// 判定は numpy.testing.assert_allclose と同じく
// |actual - desired| <= atol + rtol*|desired|。両方 NaN の要素は一致とみなす。
//
// パラメータ:
//   - actual, desired: 同じ形状の行列
//   - atol: 絶対許容誤差
//   - rtol: 相対許容誤差（desired の大きさに比例）
//
// 戻り値:
//   - *Deviation: 乖離の要約
//   - error: 形状が異なる、または空の場合
func Compare(actual, desired mat.Matrix, atol, rtol float64) (*Deviation, error) {
	r, c := actual.Dims()
	rd, cd := desired.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError("metrics.Compare", "empty matrix")
	}
	if r != rd {
		return nil, errors.NewDimensionError("metrics.Compare", r, rd, 0)
	}
	if c != cd {
		return nil, errors.NewDimensionError("metrics.Compare", c, cd, 1)
	}
	if atol < 0 || rtol < 0 {
		return nil, errors.NewValidationError("tolerance", "must be non-negative", math.Min(atol, rtol))
	}

	blocks := (r + blockRows - 1) / blockRows
	parts := make([]partial, blocks)

	parallel.ParallelizeWithThreshold(blocks, 1, func(start, end int) {
		for b := start; b < end; b++ {
			p := partial{row: -1, col: -1, vRow: -1, vCol: -1}
			for i := b * blockRows; i < min((b+1)*blockRows, r); i++ {
				for j := 0; j < c; j++ {
					x, y := actual.At(i, j), desired.At(i, j)
					var diff float64
					switch {
					case math.IsNaN(x) && math.IsNaN(y), math.IsInf(x, 0) && x == y:
						// 一致
					default:
						diff = math.Abs(x - y)
						if math.IsNaN(diff) {
							diff = math.Inf(1)
						}
						if !(diff <= atol+rtol*math.Abs(y)) {
							if p.violations == 0 {
								p.vRow, p.vCol = i, j
							}
							p.violations++
						}
					}
					if diff > p.max || p.row < 0 {
						p.max, p.row, p.col = diff, i, j
					}
					p.sum += diff
					p.sumSq += diff * diff
				}
			}
			parts[b] = p
		}
	})

	d := &Deviation{Row: -1, Col: -1, FirstViolationRow: -1, FirstViolationCol: -1}
	var sum, sumSq float64
	for _, p := range parts {
		if p.max > d.Max || d.Row < 0 {
			d.Max, d.Row, d.Col = p.max, p.row, p.col
		}
		sum += p.sum
		sumSq += p.sumSq
		if p.violations > 0 && d.Violations == 0 {
			d.FirstViolationRow, d.FirstViolationCol = p.vRow, p.vCol
		}
		d.Violations += p.violations
	}
	n := float64(r * c)
	d.Mean = sum / n
	d.RMS = math.Sqrt(sumSq / n)
	return d, nil
}

// MaxAbsDeviation は最大絶対偏差とその位置を返す
func MaxAbsDeviation(actual, desired mat.Matrix) (float64, int, int, error) {
	d, err := Compare(actual, desired, 0, 0)
	if err != nil {
		return 0, -1, -1, err
	}
	return d.Max, d.Row, d.Col, nil
}

// MeanAbsDeviation は平均絶対偏差を返す
func MeanAbsDeviation(actual, desired mat.Matrix) (float64, error) {
	d, err := Compare(actual, desired, 0, 0)
	if err != nil {
		return 0, err
	}
	return d.Mean, nil
}

// AllClose は全要素が |actual - desired| <= atol + rtol*|desired| を満たすかを返す
func AllClose(actual, desired mat.Matrix, atol, rtol float64) (bool, error) {
	d, err := Compare(actual, desired, atol, rtol)
	if err != nil {
		return false, err
	}
	return d.Close(), nil
}
