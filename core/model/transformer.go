package model

import "gonum.org/v1/gonum/mat"

// Transformer はカテゴリカラムを数値ベクトルに変換するエンコーダーの
// インターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(values []string) error

	// Transform は文字列値を数値ベクトルに変換する
	Transform(values []string) (*mat.VecDense, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(values []string) (*mat.VecDense, error)
}
