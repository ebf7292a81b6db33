package meta

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/metrics"
	"github.com/YuminosukeSato/skstack/pkg/errors"
	"github.com/YuminosukeSato/skstack/pkg/log"
)

// MultiStackRegressor extends the quantile stacking scheme with an arbitrary
// list of auxiliary regressors. Each auxiliary regressor is fitted per fold
// and its out-of-fold predictions are appended as extra features after the
// classifier's probability columns, in list order. The stacked feature count
// is therefore len(Cuts)-1 + len(regressorList).
//
// Any auxiliary regressor failing to fit aborts the whole fit.
type MultiStackRegressor struct {
	model.BaseEstimator

	// Cuts are the ordered quantile bin boundaries over the target.
	Cuts []float64

	// NFolds is the number of internal cross-validation folds.
	NFolds int

	// Shuffle controls whether samples are shuffled before folding.
	Shuffle bool

	// RandomSeed seeds the shuffle.
	RandomSeed int64

	// FoldClassifiers holds the per-fold bin classifiers after fitting.
	FoldClassifiers []model.Classifier

	// FoldRegressors holds the fitted auxiliary regressors, indexed by
	// auxiliary position then fold.
	FoldRegressors [][]model.Regressor

	// FinalRegressor is the regressor trained on the stacked features.
	FinalRegressor model.Regressor

	// NFeatures is the number of original feature columns seen during fit.
	NFeatures int

	// NClasses is the number of quantile bins (len(Cuts)-1).
	NClasses int

	newClassifier model.ClassifierFactory
	newRegressor  model.RegressorFactory
	regressorList []model.RegressorFactory
	logger        log.Logger
}

// NewMultiStackRegressor creates a multi-stacking meta-regressor.
// regressorList holds factories for the auxiliary regressors whose
// out-of-fold predictions are stacked after the bin probabilities; it may be
// empty, in which case the model degenerates to quantile stacking alone.
func NewMultiStackRegressor(newClassifier model.ClassifierFactory, regressorList []model.RegressorFactory, newRegressor model.RegressorFactory, cuts []float64, opts ...StackOption) (*MultiStackRegressor, error) {
	if newClassifier == nil {
		return nil, errors.NewValidationError("classifier", "classifier factory must not be nil", nil)
	}
	if newRegressor == nil {
		return nil, errors.NewValidationError("regressor", "regressor factory must not be nil", nil)
	}
	for i, factory := range regressorList {
		if factory == nil {
			return nil, errors.NewValidationError("regressor_list", "factory must not be nil", i)
		}
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

	return &MultiStackRegressor{
		Cuts:          append([]float64(nil), cuts...),
		NFolds:        cfg.nFolds,
		Shuffle:       cfg.shuffle,
		RandomSeed:    cfg.seed,
		newClassifier: newClassifier,
		newRegressor:  newRegressor,
		regressorList: append([]model.RegressorFactory(nil), regressorList...),
		logger:        log.GetLoggerWithName("MultiStackRegressor"),
	}, nil
}

// log returns the estimator's logger, restoring it after deserialization.
func (m *MultiStackRegressor) log() log.Logger {
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("MultiStackRegressor")
	}
	return m.logger
}

// StackedFeatureCount returns the number of stacking columns appended to X:
// one probability column per quantile bin plus one prediction column per
// auxiliary regressor.
func (m *MultiStackRegressor) StackedFeatureCount() int {
	return len(m.Cuts) - 1 + len(m.FoldRegressors)
}

// Fit trains the bin classifiers and auxiliary regressors out-of-fold, then
// the final regressor on [X | bin probabilities | auxiliary predictions].
func (m *MultiStackRegressor) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := validateFitInputs("MultiStackRegressor.Fit", X, y, m.NFolds)
	if err != nil {
		return err
	}

	classes := binTargets(m.Cuts, y)
	k := len(m.Cuts) - 1
	nAux := len(m.regressorList)

	folds := NewKFold(m.NFolds, m.Shuffle, m.RandomSeed).Split(nSamples)

	m.FoldClassifiers = make([]model.Classifier, len(folds))
	m.FoldRegressors = make([][]model.Regressor, nAux)
	for a := range m.FoldRegressors {
		m.FoldRegressors[a] = make([]model.Regressor, len(folds))
	}

	oofProba := mat.NewDense(nSamples, k, nil)
	var oofAux *mat.Dense
	if nAux > 0 {
		oofAux = mat.NewDense(nSamples, nAux, nil)
	}

	for f, fold := range folds {
		trainX := takeRows(X, fold.TrainIndices)
		trainY := takeRows(y, fold.TrainIndices)
		trainC := takeRows(classes, fold.TrainIndices)
		testX := takeRows(X, fold.TestIndices)

		clf := m.newClassifier()
		if err := clf.Fit(trainX, trainC); err != nil {
			return errors.Wrapf(err, "MultiStackRegressor.Fit: fold %d classifier", f)
		}
		m.FoldClassifiers[f] = clf

		proba, err := clf.PredictProba(testX)
		if err != nil {
			return errors.Wrapf(err, "MultiStackRegressor.Fit: fold %d classifier probabilities", f)
		}
		if err := scatterProba(oofProba, proba, clf.Classes(), fold.TestIndices, k); err != nil {
			return err
		}

		for a, factory := range m.regressorList {
			aux := factory()
			if err := aux.Fit(trainX, trainY); err != nil {
				return errors.Wrapf(err, "MultiStackRegressor.Fit: fold %d auxiliary regressor %d", f, a)
			}
			m.FoldRegressors[a][f] = aux

			pred, err := aux.Predict(testX)
			if err != nil {
				return errors.Wrapf(err, "MultiStackRegressor.Fit: fold %d auxiliary regressor %d predictions", f, a)
			}
			for i, row := range fold.TestIndices {
				oofAux.Set(row, a, pred.At(i, 0))
			}
		}
	}

	var stacked *mat.Dense
	if nAux > 0 {
		stacked = hstack(X, oofProba, oofAux)
	} else {
		stacked = hstack(X, oofProba)
	}

	reg := m.newRegressor()
	if err := reg.Fit(stacked, y); err != nil {
		return errors.Wrap(err, "MultiStackRegressor.Fit: final regressor")
	}

	m.FinalRegressor = reg
	m.NFeatures = nFeatures
	m.NClasses = k
	m.SetFitted()

	m.log().Debug("fit completed",
		log.OperationKey, "fit",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, k,
		log.FoldsKey, m.NFolds,
		log.StackedFeaturesKey, k+nAux,
	)
	return nil
}

// Predict reproduces the fit-time feature augmentation order: X, then the
// fold-averaged bin probabilities, then the fold-averaged auxiliary
// predictions in list order, and runs the final regressor.
func (m *MultiStackRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MultiStackRegressor", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != m.NFeatures {
		return nil, errors.NewDimensionError("MultiStackRegressor.Predict", m.NFeatures, nFeatures, 1)
	}

	proba, err := averageProba(m.FoldClassifiers, X, nSamples, m.NClasses)
	if err != nil {
		return nil, errors.Wrap(err, "MultiStackRegressor.Predict")
	}

	nAux := len(m.FoldRegressors)
	if nAux == 0 {
		return m.FinalRegressor.Predict(hstack(X, proba))
	}

	auxPred := mat.NewDense(nSamples, nAux, nil)
	for a, foldModels := range m.FoldRegressors {
		for f, aux := range foldModels {
			pred, err := aux.Predict(X)
			if err != nil {
				return nil, errors.Wrapf(err, "MultiStackRegressor.Predict: fold %d auxiliary regressor %d", f, a)
			}
			for i := 0; i < nSamples; i++ {
				auxPred.Set(i, a, auxPred.At(i, a)+pred.At(i, 0))
			}
		}
		for i := 0; i < nSamples; i++ {
			auxPred.Set(i, a, auxPred.At(i, a)/float64(len(foldModels)))
		}
	}

	return m.FinalRegressor.Predict(hstack(X, proba, auxPred))
}

// Score returns the coefficient of determination R² of the prediction.
func (m *MultiStackRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetParams returns the meta-regressor's hyperparameters.
func (m *MultiStackRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"cuts":             append([]float64(nil), m.Cuts...),
		"n_folds":          m.NFolds,
		"shuffle":          m.Shuffle,
		"random_seed":      m.RandomSeed,
		"n_aux_regressors": len(m.regressorList),
	}
}
