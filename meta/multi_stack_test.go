package meta

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/linear"
	"github.com/YuminosukeSato/skstack/pkg/errors"
)

// recordingRegressor wraps a least squares regressor and records the feature
// count it was fitted with. Used to observe the stacked design matrix.
type recordingRegressor struct {
	*linear.LinearRegression
	fittedCols *int
}

func (r *recordingRegressor) Fit(X, y mat.Matrix) error {
	_, c := X.Dims()
	*r.fittedCols = c
	return r.LinearRegression.Fit(X, y)
}

func TestNewMultiStackRegressor_Validation(t *testing.T) {
	if _, err := NewMultiStackRegressor(newTestClassifier, nil, newTestRegressor, []float64{0, 100, 50}); err == nil {
		t.Error("expected error for non-increasing cuts")
	}
	if _, err := NewMultiStackRegressor(nil, nil, newTestRegressor, []float64{0, 50, 100}); err == nil {
		t.Error("expected error for nil classifier factory")
	}
	if _, err := NewMultiStackRegressor(newTestClassifier, nil, nil, []float64{0, 50, 100}); err == nil {
		t.Error("expected error for nil final regressor factory")
	}
	if _, err := NewMultiStackRegressor(newTestClassifier,
		[]model.RegressorFactory{newTestRegressor, nil}, newTestRegressor, []float64{0, 50, 100}); err == nil {
		t.Error("expected error for nil factory inside regressor list")
	}
}

// TestMultiStackRegressor_StackedFeatureCount verifies the stacked feature
// count is the probability column count plus the auxiliary regressor count.
func TestMultiStackRegressor_StackedFeatureCount(t *testing.T) {
	X, y := makeLinearData(60)
	cuts := []float64{0, 40, 80, 130} // 3 bins
	list := []model.RegressorFactory{newTestRegressor, newTestRegressor}

	fittedCols := 0
	finalFactory := func() model.Regressor {
		return &recordingRegressor{LinearRegression: linear.NewLinearRegression(), fittedCols: &fittedCols}
	}

	reg, err := NewMultiStackRegressor(newTestClassifier, list, finalFactory, cuts)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	k := len(cuts) - 1
	wantStacked := k + len(list)
	if got := reg.StackedFeatureCount(); got != wantStacked {
		t.Errorf("StackedFeatureCount() = %d, want %d", got, wantStacked)
	}

	_, nFeatures := X.Dims()
	if fittedCols != nFeatures+wantStacked {
		t.Errorf("final regressor saw %d columns, want %d original + %d stacked",
			fittedCols, nFeatures, wantStacked)
	}
}

func TestMultiStackRegressor_FitPredict(t *testing.T) {
	X, y := makeLinearData(60)

	reg, err := NewMultiStackRegressor(
		newTestClassifier,
		[]model.RegressorFactory{newTestRegressor},
		newTestRegressor,
		[]float64{0, 40, 80, 130},
	)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	pred, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	r, c := pred.Dims()
	if r != 60 || c != 1 {
		t.Fatalf("prediction shape = (%d, %d), want (60, 1)", r, c)
	}

	r2, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if r2 < 0.99 {
		t.Errorf("training R² = %v, want >= 0.99", r2)
	}
}

// TestMultiStackRegressor_EmptyRegressorList verifies the degenerate case
// behaves like plain quantile stacking.
func TestMultiStackRegressor_EmptyRegressorList(t *testing.T) {
	X, y := makeLinearData(40)

	reg, err := NewMultiStackRegressor(newTestClassifier, nil, newTestRegressor, []float64{0, 40, 130}, WithStackFolds(4))
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if got := reg.StackedFeatureCount(); got != 2 {
		t.Errorf("StackedFeatureCount() = %d, want 2", got)
	}

	pred, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if r, _ := pred.Dims(); r != 40 {
		t.Errorf("prediction rows = %d, want 40", r)
	}
}

// failingRegressor aborts every fit.
type failingRegressor struct {
	model.BaseEstimator
}

var errRegressorBroken = errors.New("auxiliary regressor exploded")

func (f *failingRegressor) Fit(X, y mat.Matrix) error                { return errRegressorBroken }
func (f *failingRegressor) Predict(X mat.Matrix) (mat.Matrix, error) { return nil, errRegressorBroken }

// TestMultiStackRegressor_AuxiliaryFailureAborts verifies any auxiliary
// regressor failure aborts the whole fit. Targets alternate between the two
// bins so every fold's training split sees both classes and the fit reaches
// the auxiliary regressors.
func TestMultiStackRegressor_AuxiliaryFailureAborts(t *testing.T) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		if i%2 == 0 {
			y.Set(i, 0, 5) // bin 0
		} else {
			y.Set(i, 0, 30) // bin 1
		}
	}

	reg, err := NewMultiStackRegressor(
		newTestClassifier,
		[]model.RegressorFactory{
			newTestRegressor,
			func() model.Regressor { return &failingRegressor{} },
		},
		newTestRegressor,
		[]float64{0, 20, 45},
		WithStackFolds(2),
	)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	err = reg.Fit(X, y)
	if err == nil {
		t.Fatal("expected auxiliary fit failure to abort the fit")
	}
	if !errors.Is(err, errRegressorBroken) {
		t.Errorf("expected cause to remain reachable, got: %v", err)
	}
	if reg.IsFitted() {
		t.Error("model must not be marked fitted after an aborted fit")
	}
}

func TestMultiStackRegressor_NotFitted(t *testing.T) {
	reg, err := NewMultiStackRegressor(newTestClassifier, nil, newTestRegressor, []float64{0, 50, 100})
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	_, err = reg.Predict(mat.NewDense(2, 2, nil))
	if err == nil {
		t.Fatal("expected NotFittedError")
	}
	var nfErr *errors.NotFittedError
	if !errors.As(err, &nfErr) {
		t.Errorf("expected *NotFittedError, got %T: %v", err, err)
	}
}
