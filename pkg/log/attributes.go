package log

// Standard attribute keys for ML operation logging. Using shared keys keeps
// log output queryable across estimators.
const (
	// ModelNameKey identifies the estimator emitting the message.
	ModelNameKey = "model"

	// OperationKey names the operation in progress ("fit", "predict", "transform").
	OperationKey = "operation"

	// SamplesKey is the number of samples in the input data.
	SamplesKey = "n_samples"

	// FeaturesKey is the number of feature columns in the input data.
	FeaturesKey = "n_features"

	// ClassesKey is the number of target classes.
	ClassesKey = "n_classes"

	// FoldsKey is the number of cross-validation folds.
	FoldsKey = "n_folds"

	// StackedFeaturesKey is the number of stacking columns appended to X.
	StackedFeaturesKey = "n_stacked_features"

	// DurationMsKey is the elapsed wall time of an operation in milliseconds.
	DurationMsKey = "duration_ms"

	// ErrKey is the key under which error values are logged.
	ErrKey = "error"
)
