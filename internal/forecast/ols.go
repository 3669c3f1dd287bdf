package forecast

import (
	"fmt"
	"math"
)

// fitOLS solves the ordinary least squares problem min ||Xb - y||² for a
// design matrix of feature rows with an implicit leading intercept column.
// It forms the normal equations X'Xb = X'y and solves them by Gaussian
// elimination with partial pivoting.
func fitOLS(rows [][]float64, targets []float64) ([]float64, error) {
	n := len(rows)
	if n == 0 || n != len(targets) {
		return nil, fmt.Errorf("design matrix has %d rows for %d targets", n, len(targets))
	}
	width := len(rows[0]) + 1 // intercept plus regressors

	xtx := make([][]float64, width)
	for i := range xtx {
		xtx[i] = make([]float64, width)
	}
	xty := make([]float64, width)

	row := make([]float64, width)
	for r := 0; r < n; r++ {
		if len(rows[r]) != width-1 {
			return nil, fmt.Errorf("row %d has %d features, want %d", r, len(rows[r]), width-1)
		}
		row[0] = 1
		copy(row[1:], rows[r])

		for i := 0; i < width; i++ {
			for j := i; j < width; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * targets[r]
		}
	}
	// Mirror the upper triangle.
	for i := 1; i < width; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	coeffs, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}
	return coeffs, nil
}

// solveLinearSystem solves Ab = y in place using Gaussian elimination with
// partial pivoting. A singular system indicates degenerate regressors.
func solveLinearSystem(a [][]float64, y []float64) ([]float64, error) {
	n := len(a)

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		y[col], y[pivot] = y[pivot], y[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			y[r] -= factor * y[col]
		}
	}

	b := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := y[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * b[c]
		}
		b[r] = sum / a[r][r]
	}

	return b, nil
}

// dot applies fitted coefficients to a feature vector, including the
// intercept term.
func dot(coeffs, features []float64) float64 {
	v := coeffs[0]
	for i, f := range features {
		v += coeffs[i+1] * f
	}
	return v
}
