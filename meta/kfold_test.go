package meta

import (
	"testing"
)

// TestKFold_Split_Partition verifies every index lands in exactly one test set.
func TestKFold_Split_Partition(t *testing.T) {
	cases := []struct {
		name     string
		nSamples int
		nSplits  int
		shuffle  bool
	}{
		{"even split", 20, 5, false},
		{"uneven split", 23, 5, false},
		{"two folds", 10, 2, false},
		{"shuffled", 17, 4, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kf := NewKFold(tc.nSplits, tc.shuffle, 42)
			folds := kf.Split(tc.nSamples)

			if len(folds) != tc.nSplits {
				t.Fatalf("expected %d folds, got %d", tc.nSplits, len(folds))
			}

			seen := make(map[int]int)
			for f, fold := range folds {
				for _, idx := range fold.TestIndices {
					seen[idx]++
				}

				// Train and test must be disjoint and cover all samples.
				if len(fold.TrainIndices)+len(fold.TestIndices) != tc.nSamples {
					t.Errorf("fold %d: train+test = %d, want %d",
						f, len(fold.TrainIndices)+len(fold.TestIndices), tc.nSamples)
				}
				inTest := make(map[int]bool)
				for _, idx := range fold.TestIndices {
					inTest[idx] = true
				}
				for _, idx := range fold.TrainIndices {
					if inTest[idx] {
						t.Errorf("fold %d: index %d in both train and test", f, idx)
					}
				}
			}

			if len(seen) != tc.nSamples {
				t.Fatalf("test sets cover %d indices, want %d", len(seen), tc.nSamples)
			}
			for idx, count := range seen {
				if count != 1 {
					t.Errorf("index %d appears in %d test sets, want 1", idx, count)
				}
			}
		})
	}
}

// TestKFold_Split_FoldSizes verifies fold sizes differ by at most one.
func TestKFold_Split_FoldSizes(t *testing.T) {
	kf := NewKFold(5, false, 0)
	folds := kf.Split(23)

	minSize, maxSize := 23, 0
	for _, fold := range folds {
		n := len(fold.TestIndices)
		if n < minSize {
			minSize = n
		}
		if n > maxSize {
			maxSize = n
		}
	}

	if maxSize-minSize > 1 {
		t.Errorf("fold sizes range from %d to %d; want difference <= 1", minSize, maxSize)
	}
}

// TestNewKFold_DefaultSplits verifies invalid fold counts fall back to 5.
func TestNewKFold_DefaultSplits(t *testing.T) {
	if got := NewKFold(0, false, 0).GetNSplits(); got != 5 {
		t.Errorf("expected default 5 splits, got %d", got)
	}
	if got := NewKFold(1, false, 0).GetNSplits(); got != 5 {
		t.Errorf("expected default 5 splits, got %d", got)
	}
}

// TestKFold_Split_ShuffleDeterministic verifies the same seed reproduces the
// same folds.
func TestKFold_Split_ShuffleDeterministic(t *testing.T) {
	a := NewKFold(4, true, 7).Split(16)
	b := NewKFold(4, true, 7).Split(16)

	for f := range a {
		if len(a[f].TestIndices) != len(b[f].TestIndices) {
			t.Fatalf("fold %d: test sizes differ", f)
		}
		for i := range a[f].TestIndices {
			if a[f].TestIndices[i] != b[f].TestIndices[i] {
				t.Fatalf("fold %d: test indices differ at %d", f, i)
			}
		}
	}
}
