package linear

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/pkg/errors"
)

// LogisticRegression implements logistic regression for classification.
// Binary problems use a single sigmoid model; multiclass problems fall back
// to one-vs-rest with sum-normalized probabilities. Training is plain batch
// gradient descent with a decaying learning rate, which is enough for the
// propensity models the stacking regressors build internally.
type LogisticRegression struct {
	model.BaseEstimator

	// Coef holds learned coefficients, one row per class (a single row for
	// binary problems).
	Coef [][]float64

	// Intercepts holds learned intercept terms, one per coefficient row.
	Intercepts []float64

	// ClassLabels are the sorted unique class labels seen during fitting.
	ClassLabels []int

	// NFeatures is the number of features seen during fitting.
	NFeatures int

	maxIter      int
	tol          float64
	learningRate float64
	fitIntercept bool
}

// NewLogisticRegression creates a new LogisticRegression classifier.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	lr := &LogisticRegression{
		maxIter:      200,
		tol:          1e-4,
		learningRate: 1.0,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit trains the classifier. y must be a column vector of integer-valued
// class labels.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}

	lr.extractClasses(y)
	lr.NFeatures = nFeatures

	nClasses := len(lr.ClassLabels)
	if nClasses < 2 {
		return errors.NewValueError("LogisticRegression.Fit", "y contains a single class; at least two classes are required")
	}

	if nClasses == 2 {
		lr.Coef = make([][]float64, 1)
		lr.Coef[0] = make([]float64, nFeatures)
		lr.Intercepts = make([]float64, 1)

		// Positive class is the larger label.
		lr.fitBinary(X, y, lr.ClassLabels[1], 0)
	} else {
		lr.Coef = make([][]float64, nClasses)
		lr.Intercepts = make([]float64, nClasses)
		for idx, class := range lr.ClassLabels {
			lr.Coef[idx] = make([]float64, nFeatures)
			lr.fitBinary(X, y, class, idx)
		}
	}

	lr.SetFitted()
	return nil
}

// extractClasses identifies unique class labels in sorted order, warning if
// non-integer labels had to be truncated.
func (lr *LogisticRegression) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	truncated := false
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) {
			truncated = true
		}
		classMap[int(v)] = true
	}
	if truncated {
		errors.Warn(errors.NewDataConversionWarning("float64", "int", "non-integer class labels were truncated"))
	}

	lr.ClassLabels = make([]int, 0, len(classMap))
	for class := range classMap {
		lr.ClassLabels = append(lr.ClassLabels, class)
	}
	sort.Ints(lr.ClassLabels)
}

// fitBinary runs gradient descent for one positive class, writing into
// coefficient row rowIdx.
func (lr *LogisticRegression) fitBinary(X, y mat.Matrix, positiveClass, rowIdx int) {
	nSamples, nFeatures := X.Dims()
	weights := lr.Coef[rowIdx]
	intercept := &lr.Intercepts[rowIdx]

	target := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == positiveClass {
			target[i] = 1.0
		}
	}

	gradWeights := make([]float64, nFeatures)
	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := *intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - target[i]
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] /= float64(nSamples)
		}
		gradIntercept /= float64(nSamples)

		rate := lr.learningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= rate * gradWeights[j]
		}
		if lr.fitIntercept {
			*intercept -= rate * gradIntercept
		}

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			break
		}
	}
}

// Predict returns the most probable class label for each sample.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}

	nSamples, nClasses := proba.Dims()
	pred := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		best, bestP := 0, proba.At(i, 0)
		for k := 1; k < nClasses; k++ {
			if proba.At(i, k) > bestP {
				best, bestP = k, proba.At(i, k)
			}
		}
		pred.Set(i, 0, float64(lr.ClassLabels[best]))
	}

	return pred, nil
}

// PredictProba returns probability estimates, one column per class in the
// order reported by Classes.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.NFeatures, nFeatures, 1)
	}

	nClasses := len(lr.ClassLabels)
	proba := mat.NewDense(nSamples, nClasses, nil)

	if nClasses == 2 {
		for i := 0; i < nSamples; i++ {
			z := lr.Intercepts[0]
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.Coef[0][j]
			}
			p := sigmoid(z)
			proba.Set(i, 0, 1.0-p)
			proba.Set(i, 1, p)
		}
		return proba, nil
	}

	// One-vs-rest: per-class sigmoid scores normalized to sum to one.
	for i := 0; i < nSamples; i++ {
		sum := 0.0
		scores := make([]float64, nClasses)
		for k := 0; k < nClasses; k++ {
			z := lr.Intercepts[k]
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.Coef[k][j]
			}
			scores[k] = sigmoid(z)
			sum += scores[k]
		}
		if sum == 0 {
			sum = 1
		}
		for k := 0; k < nClasses; k++ {
			proba.Set(i, k, scores[k]/sum)
		}
	}

	return proba, nil
}

// Classes returns the unique class labels seen during fitting.
func (lr *LogisticRegression) Classes() []int {
	out := make([]int, len(lr.ClassLabels))
	copy(out, lr.ClassLabels)
	return out
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"learning_rate": lr.learningRate,
		"fit_intercept": lr.fitIntercept,
	}
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
