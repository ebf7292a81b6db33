// Package skstack provides supplementary meta-estimators and encoders for
// scikit-learn-style machine learning pipelines in Go.
//
// The library is a thin layer of compositional estimators: stacking
// meta-regressors that feed out-of-fold predictions of wrapped models into a
// final regressor, and lookup-table encoders for categorical columns. All
// components conform to the same fit/predict/transform contract over gonum
// matrices, so they compose with each other and with any estimator that
// satisfies the interfaces in core/model.
//
// # Components
//
//   - meta.QuantileStackRegressor: bins the target into quantile classes,
//     trains a classifier out-of-fold and stacks its class probabilities as
//     extra features for a final regressor.
//   - meta.MultiStackRegressor: additionally stacks out-of-fold predictions
//     of an arbitrary list of auxiliary regressors.
//   - meta.BaselineProportionalRegressor: learns per-group mean baselines
//     and regresses on the proportional residual.
//   - preprocessing.LookupEncoder: maps a categorical column through a fixed
//     table with a default for unseen keys.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/skstack/core/model"
//	    "github.com/YuminosukeSato/skstack/linear"
//	    "github.com/YuminosukeSato/skstack/meta"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(100, 4, nil) // training features
//	    y := mat.NewDense(100, 1, nil) // training target
//
//	    reg, err := meta.NewQuantileStackRegressor(
//	        func() model.Classifier { return linear.NewLogisticRegression() },
//	        func() model.Regressor { return linear.NewLinearRegression() },
//	        []float64{0, 50, 100, 200},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := reg.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(pred.At(0, 0))
//	}
//
// Fitted estimators serialize with encoding/gob through core/model.SaveModel
// and LoadModel, so a trained stack can be stored as part of a larger
// pipeline artifact.
package skstack
