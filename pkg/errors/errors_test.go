package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("QuantileStackRegressor", "Predict")

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Fatalf("expected *NotFittedError, got %T", err)
	}
	if nfErr.ModelName != "QuantileStackRegressor" || nfErr.Method != "Predict" {
		t.Errorf("unexpected fields: %+v", nfErr)
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("message %q should mention the unfitted state", err.Error())
	}
}

func TestDimensionError_AxisNames(t *testing.T) {
	rowErr := NewDimensionError("Fit", 10, 8, 0)
	if !strings.Contains(rowErr.Error(), "rows") {
		t.Errorf("axis 0 message %q should mention rows", rowErr.Error())
	}

	colErr := NewDimensionError("Predict", 3, 5, 1)
	if !strings.Contains(colErr.Error(), "features") {
		t.Errorf("axis 1 message %q should mention features", colErr.Error())
	}

	var dErr *DimensionError
	if !As(colErr, &dErr) {
		t.Fatalf("expected *DimensionError, got %T", colErr)
	}
	if dErr.Expected != 3 || dErr.Got != 5 {
		t.Errorf("unexpected fields: %+v", dErr)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("cuts", "must be strictly increasing", []float64{0, 100, 50})

	var vErr *ValidationError
	if !As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if vErr.ParamName != "cuts" {
		t.Errorf("ParamName = %q, want cuts", vErr.ParamName)
	}
	if !strings.Contains(err.Error(), "strictly increasing") {
		t.Errorf("message %q should carry the reason", err.Error())
	}
}

func TestModelError_Unwrap(t *testing.T) {
	cause := New("solver blew up")
	err := NewModelError("LinearRegression.Fit", "normal equations solve failed", cause)

	if !Is(err, cause) {
		t.Error("wrapped cause must stay reachable via Is")
	}

	var mErr *ModelError
	if !As(err, &mErr) {
		t.Fatalf("expected *ModelError, got %T", err)
	}
	if mErr.Unwrap() != cause {
		t.Error("Unwrap must return the original cause")
	}
}

func TestWrap_PreservesSentinel(t *testing.T) {
	err := Wrap(ErrEmptyData, "loading dataset")
	if !Is(err, ErrEmptyData) {
		t.Error("sentinel must stay reachable after Wrap")
	}
	if !strings.Contains(err.Error(), "loading dataset") {
		t.Errorf("message %q should carry the wrap context", err.Error())
	}
}

func TestEmptyBinWarning_Message(t *testing.T) {
	w := NewEmptyBinWarning(2, 100, 200)
	msg := w.Error()
	if !strings.Contains(msg, "bin 2") {
		t.Errorf("message %q should name the bin", msg)
	}
	if !strings.Contains(msg, "no training samples") {
		t.Errorf("message %q should state the cause", msg)
	}
}

// TestWarn_HandlerRouting verifies warnings reach a custom handler and that
// a registered zerolog func takes precedence over it.
func TestWarn_HandlerRouting(t *testing.T) {
	defer SetWarningHandler(func(error) {})
	defer SetZerologWarnFunc(nil)

	var viaHandler, viaZerolog []error
	SetWarningHandler(func(w error) { viaHandler = append(viaHandler, w) })
	SetZerologWarnFunc(nil)

	w := NewEmptyBinWarning(0, 0, 10)
	Warn(w)
	if len(viaHandler) != 1 || viaHandler[0] != w {
		t.Fatalf("handler received %v, want the warning once", viaHandler)
	}

	SetZerologWarnFunc(func(warning error) { viaZerolog = append(viaZerolog, warning) })
	Warn(w)
	if len(viaZerolog) != 1 {
		t.Errorf("zerolog func received %v, want the warning once", viaZerolog)
	}
	if len(viaHandler) != 1 {
		t.Error("handler must not fire when a zerolog func is registered")
	}
}
