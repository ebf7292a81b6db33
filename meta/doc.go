// Package meta provides stacking meta-regressors: estimators that train
// wrapped classifiers and regressors out-of-fold and feed their predictions
// as additional features into a final regressor.
//
// All fold models are trained with an internal k-fold split so the stacked
// features are out-of-sample, which avoids target leakage into the final
// regressor. At prediction time the fold models are averaged, matching the
// behaviour of the fit-time ensemble.
package meta
