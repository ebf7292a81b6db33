package meta

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/metrics"
	"github.com/YuminosukeSato/skstack/pkg/errors"
	"github.com/YuminosukeSato/skstack/pkg/log"
)

// BaselineProportionalRegressor is a meta-regressor that learns the target
// as a proportional difference relative to a per-group mean baseline. The
// groups are defined by the values of a subset of feature columns; a lookup
// table from group key to mean target is built during fit. Groups unseen at
// prediction time fall back to the global mean baseline.
//
// The wrapped regressor is trained on the relative target (y-b)/b and its
// prediction p is inverted to p*b+b.
type BaselineProportionalRegressor struct {
	model.BaseEstimator

	// BaselineCols are the indices of the feature columns that define the
	// baseline groups.
	BaselineCols []int

	// Lookup maps a group key to the group's mean target.
	Lookup map[string]float64

	// Default is the global mean target, used for unseen groups.
	Default float64

	// Regressor is the fitted wrapped regressor.
	Regressor model.Regressor

	// NFeatures is the number of feature columns seen during fit.
	NFeatures int

	newRegressor model.RegressorFactory
	logger       log.Logger
}

// NewBaselineProportionalRegressor creates a baseline proportional
// meta-regressor over the given feature columns.
func NewBaselineProportionalRegressor(baselineCols []int, newRegressor model.RegressorFactory) (*BaselineProportionalRegressor, error) {
	if len(baselineCols) == 0 {
		return nil, errors.NewValidationError("baseline_columns", "at least one baseline column is required", baselineCols)
	}
	for _, col := range baselineCols {
		if col < 0 {
			return nil, errors.NewValidationError("baseline_columns", "column index must be non-negative", col)
		}
	}
	if newRegressor == nil {
		return nil, errors.NewValidationError("regressor", "regressor factory must not be nil", nil)
	}

	return &BaselineProportionalRegressor{
		BaselineCols: append([]int(nil), baselineCols...),
		newRegressor: newRegressor,
		logger:       log.GetLoggerWithName("BaselineProportionalRegressor"),
	}, nil
}

// log returns the estimator's logger, restoring it after deserialization.
func (b *BaselineProportionalRegressor) log() log.Logger {
	if b.logger == nil {
		b.logger = log.GetLoggerWithName("BaselineProportionalRegressor")
	}
	return b.logger
}

// groupKey builds the lookup key for one row from the baseline columns.
func (b *BaselineProportionalRegressor) groupKey(X mat.Matrix, row int) string {
	parts := make([]string, len(b.BaselineCols))
	for i, col := range b.BaselineCols {
		parts[i] = strconv.FormatFloat(X.At(row, col), 'g', -1, 64)
	}
	return strings.Join(parts, "|")
}

// baselines returns the per-row baseline values for X, falling back to
// Default for unseen groups.
func (b *BaselineProportionalRegressor) baselines(X mat.Matrix) []float64 {
	rows, _ := X.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if v, ok := b.Lookup[b.groupKey(X, i)]; ok {
			out[i] = v
		} else {
			out[i] = b.Default
		}
	}
	return out
}

// Fit builds the per-group baseline lookup table and trains the wrapped
// regressor on the proportional residual (y-b)/b.
func (b *BaselineProportionalRegressor) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("BaselineProportionalRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("BaselineProportionalRegressor.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("BaselineProportionalRegressor.Fit", "y must be a column vector")
	}
	for _, col := range b.BaselineCols {
		if col >= nFeatures {
			return errors.NewValueError("BaselineProportionalRegressor.Fit", "baseline column index out of range")
		}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	total := 0.0
	for i := 0; i < nSamples; i++ {
		key := b.groupKey(X, i)
		sums[key] += y.At(i, 0)
		counts[key]++
		total += y.At(i, 0)
	}

	b.Lookup = make(map[string]float64, len(sums))
	for key, sum := range sums {
		b.Lookup[key] = sum / float64(counts[key])
	}
	b.Default = total / float64(nSamples)

	baseline := b.baselines(X)
	relative := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if baseline[i] == 0 {
			return errors.NewValueError("BaselineProportionalRegressor.Fit", "group baseline is zero; the relative target is undefined")
		}
		relative.Set(i, 0, (y.At(i, 0)-baseline[i])/baseline[i])
	}

	reg := b.newRegressor()
	if err := reg.Fit(X, relative); err != nil {
		return errors.Wrap(err, "BaselineProportionalRegressor.Fit: regressor")
	}

	b.Regressor = reg
	b.NFeatures = nFeatures
	b.SetFitted()

	b.log().Debug("fit completed",
		log.OperationKey, "fit",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"n_groups", len(b.Lookup),
	)
	return nil
}

// Predict looks up the per-row baselines and inverts the wrapped regressor's
// relative prediction to the original scale.
func (b *BaselineProportionalRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !b.IsFitted() {
		return nil, errors.NewNotFittedError("BaselineProportionalRegressor", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != b.NFeatures {
		return nil, errors.NewDimensionError("BaselineProportionalRegressor.Predict", b.NFeatures, nFeatures, 1)
	}

	relative, err := b.Regressor.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "BaselineProportionalRegressor.Predict: regressor")
	}

	baseline := b.baselines(X)
	pred := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		pred.Set(i, 0, relative.At(i, 0)*baseline[i]+baseline[i])
	}

	return pred, nil
}

// Score returns the coefficient of determination R² of the prediction.
func (b *BaselineProportionalRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := b.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetParams returns the meta-regressor's hyperparameters.
func (b *BaselineProportionalRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"baseline_columns": append([]int(nil), b.BaselineCols...),
	}
}
