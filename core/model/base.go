// Package model はアフィン変換と元のPCAモデルが共有する最小限の抽象を提供します。
package model

import "github.com/YuminosukeSato/pcaffine/pkg/errors"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted は未構築の状態（ゼロ値）
	NotFitted EstimatorState = iota
	// Fitted はパラメータが揃い、適用可能な状態
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not fitted"
}

// BaseEstimator は学習状態を持つ型に埋め込む構造体。
// ゼロ値は NotFitted なので、コンストラクタを経由しない値は適用時に拒否される。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// State は現在の状態を返す
func (e *BaseEstimator) State() EstimatorState {
	return e.state
}

// CheckFitted は未学習なら NotFittedError を返す。
// name はエラーメッセージに出すモデル名、method は呼び出されたメソッド名。
func (e *BaseEstimator) CheckFitted(name, method string) error {
	if e.state != Fitted {
		return errors.NewNotFittedError(name, method)
	}
	return nil
}
