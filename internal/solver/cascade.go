// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package solver implements the single-stamp kernel fit and its cascading
// linear solver, spec.md §4.D: the hot core of a single candidate's fit.
package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Method names the linear solve method that produced a Solve result.
type Method string

const (
	MethodCholeskyLDLT Method = "cholesky_ldlt"
	MethodCholeskyLLT  Method = "cholesky_llt"
	MethodLU           Method = "lu"
	MethodEigenPinv    Method = "eigen_pinv"
)

const singularTolerance = 1e-12

// Solve runs the cascading linear solver of spec.md §4.D.Solver against the
// symmetric system Mx = B, trying each method in turn and returning the
// first that succeeds.
func Solve(M *mat.Dense, B []float64) ([]float64, Method, error) {
	n, nc := M.Dims()
	if n != nc {
		return nil, "", types.NewNumericalError("normal equations matrix is not square", map[string]interface{}{"rows": n, "cols": nc})
	}
	if len(B) != n {
		return nil, "", types.NewNumericalError("right-hand side length does not match M", map[string]interface{}{"n": n, "lenB": len(B)})
	}

	if x, ok := solveLDLT(M, B); ok {
		return x, MethodCholeskyLDLT, nil
	}
	if x, ok := solveCholeskyLLT(M, B); ok {
		return x, MethodCholeskyLLT, nil
	}
	if x, ok := solveLU(M, B); ok {
		return x, MethodLU, nil
	}
	x, err := solveEigenPinv(M, B)
	if err != nil {
		return nil, "", err
	}
	return x, MethodEigenPinv, nil
}

// solveLDLT performs an unpivoted Cholesky LDLᵀ decomposition of M and
// solves Ly=B, Dz=y, Lᵀx=z. It reports failure (rather than an error) on
// a NaN pivot or one whose magnitude is below singularTolerance (negative
// pivots are accepted), so the caller falls through to the next method in
// the cascade.
func solveLDLT(M *mat.Dense, B []float64) ([]float64, bool) {
	n, _ := M.Dims()
	L := mat.NewDense(n, n, nil)
	D := make([]float64, n)

	for j := 0; j < n; j++ {
		sum := M.At(j, j)
		for k := 0; k < j; k++ {
			sum -= L.At(j, k) * L.At(j, k) * D[k]
		}
		D[j] = sum
		if math.IsNaN(D[j]) || math.Abs(D[j]) < singularTolerance {
			return nil, false
		}
		L.Set(j, j, 1)
		for i := j + 1; i < n; i++ {
			s := M.At(i, j)
			for k := 0; k < j; k++ {
				s -= L.At(i, k) * L.At(j, k) * D[k]
			}
			L.Set(i, j, s/D[j])
		}
	}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		s := B[i]
		for k := 0; k < i; k++ {
			s -= L.At(i, k) * y[k]
		}
		y[i] = s
	}
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = y[i] / D[i]
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := z[i]
		for k := i + 1; k < n; k++ {
			s -= L.At(k, i) * x[k]
		}
		x[i] = s
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return x, true
}

func solveCholeskyLLT(M *mat.Dense, B []float64) ([]float64, bool) {
	n, _ := M.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, M.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, false
	}
	x := mat.NewVecDense(n, nil)
	b := mat.NewVecDense(n, B)
	if err := chol.SolveVecTo(x, b); err != nil {
		return nil, false
	}
	return vecData(x), true
}

func solveLU(M *mat.Dense, B []float64) ([]float64, bool) {
	n, _ := M.Dims()
	var lu mat.LU
	lu.Factorize(M)
	if lu.Cond() > 1/singularTolerance {
		return nil, false
	}
	x := mat.NewVecDense(n, nil)
	b := mat.NewVecDense(n, B)
	if err := lu.SolveVecTo(x, false, b); err != nil {
		return nil, false
	}
	for _, v := range vecData(x) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return vecData(x), true
}

// solveEigenPinv is the last-resort method: Moore-Penrose pseudo-inverse
// via symmetric eigendecomposition. It fails if the decomposition fails
// to converge or if the resulting solution contains NaN.
func solveEigenPinv(M *mat.Dense, B []float64) ([]float64, error) {
	n, _ := M.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, M.At(i, j))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, types.NewSolveError("eigendecomposition failed to converge in pseudo-inverse fallback", mat.Trace(sym))
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	x := make([]float64, n)
	for k, lambda := range values {
		if math.Abs(lambda) < singularTolerance {
			continue
		}
		var dot float64
		for i := 0; i < n; i++ {
			dot += vectors.At(i, k) * B[i]
		}
		coef := dot / lambda
		for i := 0; i < n; i++ {
			x[i] += vectors.At(i, k) * coef
		}
	}
	for _, v := range x {
		if math.IsNaN(v) {
			return nil, types.NewSolveError("pseudo-inverse solution contains NaN", mat.Trace(sym))
		}
	}
	return x, nil
}

// Uncertainty implements spec.md §4.D's per-coefficient standard
// deviation: Cov = MᵀM, E² = Cov⁻¹ via Cholesky, stddev = sqrt(diag(E²)).
func Uncertainty(M *mat.Dense) ([]float64, error) {
	n, _ := M.Dims()
	var cov mat.Dense
	cov.Mul(M.T(), M)

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, cov.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, types.NewSolveError("uncertainty covariance is not positive definite", mat.Trace(sym))
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, types.NewSolveError(fmt.Sprintf("uncertainty inverse failed: %v", err), mat.Trace(sym))
	}
	stddev := make([]float64, n)
	for i := 0; i < n; i++ {
		d := inv.At(i, i)
		if math.IsNaN(d) || d < 0 {
			return nil, types.NewSolveError("uncertainty diagonal is negative or NaN", mat.Trace(sym))
		}
		stddev[i] = math.Sqrt(d)
	}
	return stddev, nil
}

func vecData(v *mat.VecDense) []float64 {
	n := v.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = v.AtVec(i)
	}
	return out
}
