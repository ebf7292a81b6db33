package meta

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/metrics"
	"github.com/YuminosukeSato/skstack/pkg/errors"
	"github.com/YuminosukeSato/skstack/pkg/log"
)

// stackConfig holds the cross-validation settings shared by the stacking
// meta-regressors.
type stackConfig struct {
	nFolds  int
	shuffle bool
	seed    int64
}

func defaultStackConfig() stackConfig {
	return stackConfig{nFolds: 5}
}

// StackOption configures the internal cross-validation of a stacking
// meta-regressor.
type StackOption func(*stackConfig)

// WithStackFolds sets the number of internal cross-validation folds used to
// generate out-of-fold stacking features. Values below 2 fall back to the
// default of 5.
func WithStackFolds(nFolds int) StackOption {
	return func(c *stackConfig) {
		c.nFolds = nFolds
	}
}

// WithStackShuffle sets whether samples are shuffled before folding.
func WithStackShuffle(shuffle bool) StackOption {
	return func(c *stackConfig) {
		c.shuffle = shuffle
	}
}

// WithStackSeed sets the random seed used when shuffling is enabled.
func WithStackSeed(seed int64) StackOption {
	return func(c *stackConfig) {
		c.seed = seed
	}
}

// QuantileStackRegressor is a meta-regressor that bins the training target
// into quantile classes defined by cut points, trains a classifier to predict
// bin membership out-of-fold, and feeds the classifier's class probabilities
// as additional features into a final regressor.
//
// The classifier factory plays the role of scikit-learn's clone(): one fresh
// classifier is trained per fold, and inference averages the fold models'
// probabilities.
type QuantileStackRegressor struct {
	model.BaseEstimator

	// Cuts are the ordered quantile bin boundaries over the target. k+1 cuts
	// define k classes; target values outside the outer cuts clamp into the
	// boundary bins.
	Cuts []float64

	// NFolds is the number of internal cross-validation folds.
	NFolds int

	// Shuffle controls whether samples are shuffled before folding.
	Shuffle bool

	// RandomSeed seeds the shuffle.
	RandomSeed int64

	// FoldClassifiers holds the per-fold bin classifiers after fitting.
	FoldClassifiers []model.Classifier

	// FinalRegressor is the regressor trained on the stacked features.
	FinalRegressor model.Regressor

	// NFeatures is the number of original feature columns seen during fit.
	NFeatures int

	// NClasses is the number of quantile bins (len(Cuts)-1).
	NClasses int

	newClassifier model.ClassifierFactory
	newRegressor  model.RegressorFactory
	logger        log.Logger
}

// NewQuantileStackRegressor creates a quantile stacking meta-regressor.
// newClassifier and newRegressor produce fresh unfitted estimators; cuts must
// hold at least three strictly increasing boundaries (two or more bins).
func NewQuantileStackRegressor(newClassifier model.ClassifierFactory, newRegressor model.RegressorFactory, cuts []float64, opts ...StackOption) (*QuantileStackRegressor, error) {
	if newClassifier == nil {
		return nil, errors.NewValidationError("classifier", "classifier factory must not be nil", nil)
	}
	if newRegressor == nil {
		return nil, errors.NewValidationError("regressor", "regressor factory must not be nil", nil)
	}
	if err := validateCuts(cuts); err != nil {
		return nil, err
	}

	cfg := defaultStackConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.nFolds < 2 {
		cfg.nFolds = 5
	}

	return &QuantileStackRegressor{
		Cuts:          append([]float64(nil), cuts...),
		NFolds:        cfg.nFolds,
		Shuffle:       cfg.shuffle,
		RandomSeed:    cfg.seed,
		newClassifier: newClassifier,
		newRegressor:  newRegressor,
		logger:        log.GetLoggerWithName("QuantileStackRegressor"),
	}, nil
}

// validateCuts checks that cuts define at least two strictly increasing bins.
func validateCuts(cuts []float64) error {
	if len(cuts) < 3 {
		return errors.NewValidationError("cuts", "at least 3 boundaries (2 bins) are required", cuts)
	}
	for i := 1; i < len(cuts); i++ {
		if cuts[i] <= cuts[i-1] {
			return errors.NewValidationError("cuts", "boundaries must be strictly increasing", cuts)
		}
	}
	return nil
}

// binIndex maps a target value to its quantile bin. Values below the first
// boundary or at or above the last clamp into the boundary bins.
func binIndex(cuts []float64, v float64) int {
	k := len(cuts) - 1
	for i := 1; i < k; i++ {
		if v < cuts[i] {
			return i - 1
		}
	}
	return k - 1
}

// binTargets converts the target column into a class label column, warning
// for every bin that receives no samples.
func binTargets(cuts []float64, y mat.Matrix) *mat.Dense {
	rows, _ := y.Dims()
	k := len(cuts) - 1
	counts := make([]int, k)

	classes := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		bin := binIndex(cuts, y.At(i, 0))
		counts[bin]++
		classes.Set(i, 0, float64(bin))
	}

	for bin, count := range counts {
		if count == 0 {
			errors.Warn(errors.NewEmptyBinWarning(bin, cuts[bin], cuts[bin+1]))
		}
	}

	return classes
}

// Fit trains the bin classifiers out-of-fold and the final regressor on the
// original features concatenated with the out-of-fold class probabilities.
func (q *QuantileStackRegressor) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := validateFitInputs("QuantileStackRegressor.Fit", X, y, q.NFolds)
	if err != nil {
		return err
	}

	classes := binTargets(q.Cuts, y)
	k := len(q.Cuts) - 1

	folds := NewKFold(q.NFolds, q.Shuffle, q.RandomSeed).Split(nSamples)

	q.FoldClassifiers = make([]model.Classifier, len(folds))
	oofProba := mat.NewDense(nSamples, k, nil)

	for f, fold := range folds {
		clf := q.newClassifier()
		trainX := takeRows(X, fold.TrainIndices)
		trainC := takeRows(classes, fold.TrainIndices)

		if err := clf.Fit(trainX, trainC); err != nil {
			return errors.Wrapf(err, "QuantileStackRegressor.Fit: fold %d classifier", f)
		}
		q.FoldClassifiers[f] = clf

		testX := takeRows(X, fold.TestIndices)
		proba, err := clf.PredictProba(testX)
		if err != nil {
			return errors.Wrapf(err, "QuantileStackRegressor.Fit: fold %d classifier probabilities", f)
		}

		if err := scatterProba(oofProba, proba, clf.Classes(), fold.TestIndices, k); err != nil {
			return err
		}
	}

	stacked := hstack(X, oofProba)
	reg := q.newRegressor()
	if err := reg.Fit(stacked, y); err != nil {
		return errors.Wrap(err, "QuantileStackRegressor.Fit: final regressor")
	}

	q.FinalRegressor = reg
	q.NFeatures = nFeatures
	q.NClasses = k
	q.SetFitted()

	q.log().Debug("fit completed",
		log.OperationKey, "fit",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, k,
		log.FoldsKey, q.NFolds,
	)
	return nil
}

// log returns the estimator's logger, restoring it after deserialization.
func (q *QuantileStackRegressor) log() log.Logger {
	if q.logger == nil {
		q.logger = log.GetLoggerWithName("QuantileStackRegressor")
	}
	return q.logger
}

// Predict appends the fold-averaged class probabilities to X in fit-time
// column order and runs the final regressor.
func (q *QuantileStackRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !q.IsFitted() {
		return nil, errors.NewNotFittedError("QuantileStackRegressor", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != q.NFeatures {
		return nil, errors.NewDimensionError("QuantileStackRegressor.Predict", q.NFeatures, nFeatures, 1)
	}

	proba, err := averageProba(q.FoldClassifiers, X, nSamples, q.NClasses)
	if err != nil {
		return nil, errors.Wrap(err, "QuantileStackRegressor.Predict")
	}

	return q.FinalRegressor.Predict(hstack(X, proba))
}

// Score returns the coefficient of determination R² of the prediction.
func (q *QuantileStackRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := q.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetParams returns the meta-regressor's hyperparameters.
func (q *QuantileStackRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"cuts":        append([]float64(nil), q.Cuts...),
		"n_folds":     q.NFolds,
		"shuffle":     q.Shuffle,
		"random_seed": q.RandomSeed,
	}
}

// validateFitInputs performs the shared fit-time checks of the stacking
// regressors and returns the input dimensions.
func validateFitInputs(op string, X, y mat.Matrix, nFolds int) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return 0, 0, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, errors.NewValueError(op, "y must be a column vector")
	}
	if nSamples < nFolds {
		return 0, 0, errors.NewValidationError("n_folds", "more folds than samples", nFolds)
	}
	return nSamples, nFeatures, nil
}

// scatterProba writes a fold's probability block into the out-of-fold matrix,
// aligning the classifier's class order onto the k bin columns. A classifier
// trained on a fold that misses some bins reports fewer classes; the missing
// columns stay zero.
func scatterProba(dst *mat.Dense, proba mat.Matrix, classLabels []int, rowIndices []int, k int) error {
	pRows, pCols := proba.Dims()
	if pRows != len(rowIndices) {
		return errors.NewDimensionError("scatterProba", len(rowIndices), pRows, 0)
	}
	if pCols != len(classLabels) {
		return errors.NewDimensionError("scatterProba", len(classLabels), pCols, 1)
	}

	for c, label := range classLabels {
		if label < 0 || label >= k {
			return errors.NewValueError("scatterProba", "classifier reported a class label outside the bin range")
		}
		for i, row := range rowIndices {
			dst.Set(row, label, proba.At(i, c))
		}
	}
	return nil
}

// averageProba averages the bin probabilities of the fold classifiers over X.
func averageProba(classifiers []model.Classifier, X mat.Matrix, nSamples, k int) (*mat.Dense, error) {
	sum := mat.NewDense(nSamples, k, nil)
	for f, clf := range classifiers {
		proba, err := clf.PredictProba(X)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d classifier probabilities", f)
		}

		labels := clf.Classes()
		_, pCols := proba.Dims()
		if pCols != len(labels) {
			return nil, errors.NewDimensionError("averageProba", len(labels), pCols, 1)
		}
		for c, label := range labels {
			if label < 0 || label >= k {
				return nil, errors.NewValueError("averageProba", "classifier reported a class label outside the bin range")
			}
			for i := 0; i < nSamples; i++ {
				sum.Set(i, label, sum.At(i, label)+proba.At(i, c))
			}
		}
	}

	scale := 1.0 / float64(len(classifiers))
	sum.Scale(scale, sum)
	return sum, nil
}
