// Package linalg holds the dense linear-algebra kernels behind the partial
// correlation and regression engines: general square inversion through LU
// factorization with partial pivoting, and a Householder QR least-squares
// solver. Singular or numerically degenerate systems fail with no result.
package linalg

import (
	"math"

	"gridstat/internal/errors"
)

// pivotTolerance is the relative threshold under which a pivot is treated as
// zero and the matrix as singular.
const pivotTolerance = 1e-12

// Invert returns the inverse of a general real square matrix via LU
// decomposition with partial pivoting. The input is left untouched.
func Invert(a [][]float64) ([][]float64, error) {
	n := len(a)
	if n == 0 {
		return nil, errors.EmptyInput("matrix inversion")
	}
	for i := range a {
		if len(a[i]) != n {
			return nil, errors.DimensionMismatch("matrix must be square")
		}
	}

	lu := make([][]float64, n)
	scale := 0.0
	for i := range a {
		lu[i] = make([]float64, n)
		copy(lu[i], a[i])
		for _, v := range a[i] {
			if abs := math.Abs(v); abs > scale {
				scale = abs
			}
		}
	}
	if scale == 0 {
		return nil, errors.SingularMatrix("zero matrix is not invertible")
	}
	tol := pivotTolerance * scale

	// Decompose in place; perm tracks the row order after pivoting.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for k := 0; k < n; k++ {
		pivot := k
		for i := k + 1; i < n; i++ {
			if math.Abs(lu[i][k]) > math.Abs(lu[pivot][k]) {
				pivot = i
			}
		}
		if math.Abs(lu[pivot][k]) < tol {
			return nil, errors.SingularMatrix("zero pivot during LU factorization")
		}
		if pivot != k {
			lu[pivot], lu[k] = lu[k], lu[pivot]
			perm[pivot], perm[k] = perm[k], perm[pivot]
		}
		for i := k + 1; i < n; i++ {
			factor := lu[i][k] / lu[k][k]
			lu[i][k] = factor
			for j := k + 1; j < n; j++ {
				lu[i][j] -= factor * lu[k][j]
			}
		}
	}

	// Solve A·x = e_col for each unit vector to assemble the inverse.
	inv := make([][]float64, n)
	for i := range inv {
		inv[i] = make([]float64, n)
	}
	y := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := 0; i < n; i++ {
			b := 0.0
			if perm[i] == col {
				b = 1.0
			}
			sum := b
			for j := 0; j < i; j++ {
				sum -= lu[i][j] * y[j]
			}
			y[i] = sum
		}
		for i := n - 1; i >= 0; i-- {
			sum := y[i]
			for j := i + 1; j < n; j++ {
				sum -= lu[i][j] * inv[j][col]
			}
			inv[i][col] = sum / lu[i][i]
		}
	}
	return inv, nil
}

// SolveLeastSquares solves min ||y - X·beta|| by Householder QR. The design
// matrix is factored in place and must not be reused by the caller; y is left
// untouched. Rank deficiency surfaces as a singular-matrix failure.
func SolveLeastSquares(design [][]float64, y []float64) ([]float64, error) {
	m := len(design)
	if m == 0 {
		return nil, errors.EmptyInput("least squares")
	}
	p := len(design[0])
	if p == 0 {
		return nil, errors.EmptyInput("least squares")
	}
	for i := range design {
		if len(design[i]) != p {
			return nil, errors.DimensionMismatch("design matrix rows have uneven length")
		}
	}
	if len(y) != m {
		return nil, errors.DimensionMismatch("target vector length does not match design rows")
	}
	if m < p {
		return nil, errors.InsufficientDF("fewer cases than parameters")
	}

	rhs := make([]float64, m)
	copy(rhs, y)

	scale := 0.0
	for i := range design {
		for _, v := range design[i] {
			if abs := math.Abs(v); abs > scale {
				scale = abs
			}
		}
	}
	tol := pivotTolerance * scale

	// Householder reflections, one per column; the reflector vectors overwrite
	// the subdiagonal of the factored columns, R's diagonal lives in rdiag.
	rdiag := make([]float64, p)
	for k := 0; k < p; k++ {
		sum := 0.0
		for i := k; i < m; i++ {
			sum += design[i][k] * design[i][k]
		}
		norm := math.Sqrt(sum)
		if norm <= tol {
			return nil, errors.SingularMatrix("rank-deficient design matrix")
		}
		if design[k][k] < 0 {
			norm = -norm
		}
		design[k][k] += norm
		beta := design[k][k] * norm
		rdiag[k] = -norm

		for j := k + 1; j < p; j++ {
			s := 0.0
			for i := k; i < m; i++ {
				s += design[i][k] * design[i][j]
			}
			s /= beta
			for i := k; i < m; i++ {
				design[i][j] -= s * design[i][k]
			}
		}
		s := 0.0
		for i := k; i < m; i++ {
			s += design[i][k] * rhs[i]
		}
		s /= beta
		for i := k; i < m; i++ {
			rhs[i] -= s * design[i][k]
		}
	}

	// Back-substitute R·beta = Qᵀy.
	coeffs := make([]float64, p)
	for j := p - 1; j >= 0; j-- {
		sum := rhs[j]
		for l := j + 1; l < p; l++ {
			sum -= design[j][l] * coeffs[l]
		}
		if math.Abs(rdiag[j]) <= tol {
			return nil, errors.SingularMatrix("rank-deficient design matrix")
		}
		coeffs[j] = sum / rdiag[j]
	}
	return coeffs, nil
}

// MatVec multiplies a dense matrix by a vector
func MatVec(a [][]float64, x []float64) ([]float64, error) {
	out := make([]float64, len(a))
	for i := range a {
		if len(a[i]) != len(x) {
			return nil, errors.DimensionMismatch("matrix-vector dimensions do not match")
		}
		sum := 0.0
		for j, v := range a[i] {
			sum += v * x[j]
		}
		out[i] = sum
	}
	return out, nil
}

// CrossProduct returns XᵀX for a dense design matrix
func CrossProduct(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	p := len(x[0])
	out := make([][]float64, p)
	for i := range out {
		out[i] = make([]float64, p)
	}
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sum := 0.0
			for r := range x {
				sum += x[r][i] * x[r][j]
			}
			out[i][j] = sum
			out[j][i] = sum
		}
	}
	return out
}
