// Package model provides the estimator contracts shared by every component
// in skstack. Meta-estimators in the meta package are polymorphic over these
// interfaces, so any third-party model that satisfies them can be stacked.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces a regression model must satisfy to be
// usable as a stacked or final estimator.
type Regressor interface {
	Estimator
}

// Classifier is the interface a classification model must satisfy to produce
// stacking features. PredictProba output has one column per class, in the
// order reported by Classes.
type Classifier interface {
	Estimator

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// ClassifierFactory creates a fresh, unfitted classifier. It plays the role
// of scikit-learn's clone(): meta-estimators call it once per fold so fold
// models never share state.
type ClassifierFactory func() Classifier

// RegressorFactory creates a fresh, unfitted regressor.
type RegressorFactory func() Regressor

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
