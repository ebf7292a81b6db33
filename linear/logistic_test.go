package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/pkg/errors"
)

// separableBinaryData builds a linearly separable two-class problem: class 0
// below x=10, class 3 above. Non-contiguous labels exercise label handling.
func separableBinaryData() (*mat.Dense, *mat.Dense) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		if i >= 10 {
			y.Set(i, 0, 3)
		}
	}
	return X, y
}

func TestLogisticRegression_Binary(t *testing.T) {
	X, y := separableBinaryData()

	clf := NewLogisticRegression()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	classes := clf.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 3 {
		t.Fatalf("Classes() = %v, want [0 3]", classes)
	}

	acc, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if acc < 0.9 {
		t.Errorf("accuracy = %v, want >= 0.9 on separable data", acc)
	}
}

// TestLogisticRegression_ProbaRowsSumToOne checks both the binary and the
// one-vs-rest paths normalize probabilities.
func TestLogisticRegression_ProbaRowsSumToOne(t *testing.T) {
	cases := []struct {
		name     string
		nClasses int
	}{
		{"binary", 2},
		{"multiclass", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := 30
			X := mat.NewDense(n, 1, nil)
			y := mat.NewDense(n, 1, nil)
			for i := 0; i < n; i++ {
				X.Set(i, 0, float64(i))
				y.Set(i, 0, float64(i*tc.nClasses/n))
			}

			clf := NewLogisticRegression()
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}

			proba, err := clf.PredictProba(X)
			if err != nil {
				t.Fatalf("predict proba failed: %v", err)
			}
			rows, cols := proba.Dims()
			if cols != tc.nClasses {
				t.Fatalf("proba has %d columns, want %d", cols, tc.nClasses)
			}
			for i := 0; i < rows; i++ {
				sum := 0.0
				for k := 0; k < cols; k++ {
					p := proba.At(i, k)
					if p < 0 || p > 1 {
						t.Fatalf("proba[%d][%d] = %v out of [0,1]", i, k, p)
					}
					sum += p
				}
				if math.Abs(sum-1) > 1e-9 {
					t.Fatalf("row %d probabilities sum to %v, want 1", i, sum)
				}
			}
		})
	}
}

func TestLogisticRegression_Multiclass(t *testing.T) {
	// Three well separated clusters on a line.
	n := 30
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.Set(i, 0, float64(i/10))
	}

	clf := NewLogisticRegression(WithLRMaxIter(500))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	classes := clf.Classes()
	if len(classes) != 3 {
		t.Fatalf("Classes() = %v, want 3 labels", classes)
	}

	acc, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if acc < 0.8 {
		t.Errorf("accuracy = %v, want >= 0.8 on separated clusters", acc)
	}
}

// TestLogisticRegression_NonIntegerLabelsWarn verifies fractional class
// labels are truncated with a DataConversionWarning rather than silently.
func TestLogisticRegression_NonIntegerLabelsWarn(t *testing.T) {
	var captured []error
	errors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	errors.SetZerologWarnFunc(nil)
	defer errors.SetWarningHandler(func(error) {})

	X := mat.NewDense(6, 1, []float64{0, 1, 2, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0.5, 0.5, 0.5, 1.5, 1.5, 1.5})

	clf := NewLogisticRegression()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	classes := clf.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Errorf("Classes() = %v, want truncated labels [0 1]", classes)
	}

	found := false
	for _, w := range captured {
		var dcw *errors.DataConversionWarning
		if errors.As(w, &dcw) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected DataConversionWarning, captured: %v", captured)
	}
}

func TestLogisticRegression_SingleClass(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	y := mat.NewDense(5, 1, []float64{1, 1, 1, 1, 1})

	clf := NewLogisticRegression()
	err := clf.Fit(X, y)
	if err == nil {
		t.Fatal("expected error for single-class target")
	}
	var vErr *errors.ValueError
	if !errors.As(err, &vErr) {
		t.Errorf("expected *ValueError, got %T: %v", err, err)
	}
}

func TestLogisticRegression_NotFitted(t *testing.T) {
	clf := NewLogisticRegression()
	_, err := clf.PredictProba(mat.NewDense(2, 1, nil))
	if err == nil {
		t.Fatal("expected NotFittedError")
	}
	var nfErr *errors.NotFittedError
	if !errors.As(err, &nfErr) {
		t.Errorf("expected *NotFittedError, got %T: %v", err, err)
	}
}

func TestLogisticRegression_ClassesReturnsCopy(t *testing.T) {
	X, y := separableBinaryData()

	clf := NewLogisticRegression()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	classes := clf.Classes()
	classes[0] = 99
	if clf.Classes()[0] == 99 {
		t.Error("Classes() must return a copy")
	}
}
