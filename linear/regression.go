// Package linear provides concrete base estimators used as building blocks
// for the stacking meta-regressors: an ordinary least squares regressor and
// a gradient-descent logistic classifier. Both satisfy the core/model
// interfaces and register themselves for gob so fitted stacks serialize.
package linear

import (
	"encoding/gob"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/metrics"
	"github.com/YuminosukeSato/skstack/pkg/errors"
)

func init() {
	gob.Register(&LinearRegression{})
	gob.Register(&LogisticRegression{})
}

// LinearRegression は最小二乗法による線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator

	// Weights は学習された係数
	// gobでシリアライズできるようスライスで保持する
	Weights []float64

	// Intercept は学習された切片
	Intercept float64

	// NFeatures は特徴量の数
	NFeatures int

	fitIntercept bool
	ridge        float64
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		fitIntercept: true,
		// スタッキングで生じる共線的な特徴量（確率列の和は常に1）でも
		// 正規方程式が解けるよう、微小なリッジ項を入れる
		ridge: 1e-6,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 (XᵀX + λI)w = Xᵀy による最小二乗解を使用
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// 切片項のために X に 1 の列を追加
	cols := c
	if lr.fitIntercept {
		cols = c + 1
	}
	Xb := mat.NewDense(r, cols, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			Xb.Set(i, j, X.At(i, j))
		}
		if lr.fitIntercept {
			Xb.Set(i, c, 1.0)
		}
	}

	// A = XᵀX + λI, b = Xᵀy
	A := mat.NewDense(cols, cols, nil)
	A.Mul(Xb.T(), Xb)
	for j := 0; j < cols; j++ {
		A.Set(j, j, A.At(j, j)+lr.ridge)
	}
	bvec := mat.NewDense(cols, 1, nil)
	bvec.Mul(Xb.T(), y)

	var w mat.Dense
	if err := w.Solve(A, bvec); err != nil {
		// mat.Conditionは悪条件の警告であり、解は計算されている
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return errors.NewModelError("LinearRegression.Fit", "normal equations solve failed", err)
		}
	}

	lr.Weights = make([]float64, c)
	for j := 0; j < c; j++ {
		lr.Weights[j] = w.At(j, 0)
	}
	if lr.fitIntercept {
		lr.Intercept = w.At(c, 0)
	} else {
		lr.Intercept = 0
	}

	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	pred := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		v := lr.Intercept
		for j := 0; j < c; j++ {
			v += X.At(i, j) * lr.Weights[j]
		}
		pred.Set(i, 0, v)
	}

	return pred, nil
}

// Score はモデルの決定係数R²を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetParams はモデルのハイパーパラメータを取得する
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"ridge":         lr.ridge,
	}
}
