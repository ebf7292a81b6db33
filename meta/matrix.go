package meta

import (
	"gonum.org/v1/gonum/mat"
)

// takeRows extracts the given rows of X into a new dense matrix.
func takeRows(X mat.Matrix, indices []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, X.At(idx, j))
		}
	}
	return out
}

// hstack concatenates matrices column-wise. All inputs must share the same
// row count.
func hstack(ms ...mat.Matrix) *mat.Dense {
	rows, _ := ms[0].Dims()
	total := 0
	for _, m := range ms {
		_, c := m.Dims()
		total += c
	}

	out := mat.NewDense(rows, total, nil)
	offset := 0
	for _, m := range ms {
		_, c := m.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, offset+j, m.At(i, j))
			}
		}
		offset += c
	}
	return out
}
