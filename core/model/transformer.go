package model

import "gonum.org/v1/gonum/mat"

// Transformer はデータ変換のインターフェース。
// 元のPCAモデルと変換後のアフィン変換の両方が実装し、同じ入力に対して
// 同じ出力（許容誤差内）を返すことが期待される。
type Transformer interface {
	// Transform は n×d_in の行列を n×d_out の行列へ写す
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Shaped は入出力次元を公開する変換。
type Shaped interface {
	// NFeatures は入力次元 d_in を返す
	NFeatures() int
	// NComponents は出力次元 d_out を返す
	NComponents() int
}
