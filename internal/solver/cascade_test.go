// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package solver

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolveWellConditionedSystemUsesLDLT(t *testing.T) {
	M := mat.NewDense(2, 2, []float64{4, 1, 1, 3})
	B := []float64{1, 2}
	x, method, err := Solve(M, B)
	if err != nil {
		t.Fatal(err)
	}
	if method != MethodCholeskyLDLT {
		t.Errorf("method = %v, want %v", method, MethodCholeskyLDLT)
	}
	// verify Mx ~= B
	r0 := M.At(0, 0)*x[0] + M.At(0, 1)*x[1]
	r1 := M.At(1, 0)*x[0] + M.At(1, 1)*x[1]
	if math.Abs(r0-B[0]) > 1e-9 || math.Abs(r1-B[1]) > 1e-9 {
		t.Errorf("Mx = [%v %v], want %v", r0, r1, B)
	}
}

func TestSolveSingularSystemFallsBackToPinv(t *testing.T) {
	// a rank-deficient 2x2 matrix forces LDLT/LLT/LU to fail.
	M := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	B := []float64{2, 2}
	x, method, err := Solve(M, B)
	if err != nil {
		t.Fatal(err)
	}
	if method != MethodEigenPinv {
		t.Errorf("method = %v, want %v for singular system", method, MethodEigenPinv)
	}
	if x == nil {
		t.Fatal("expected a solution from the pseudo-inverse fallback")
	}
}

func TestSolveRejectsNonSquareMatrix(t *testing.T) {
	M := mat.NewDense(2, 3, nil)
	if _, _, err := Solve(M, []float64{1, 2}); err == nil {
		t.Fatal("expected error for non-square M")
	}
}

func TestSolveRejectsMismatchedRHS(t *testing.T) {
	M := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if _, _, err := Solve(M, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for mismatched B length")
	}
}

func TestUncertaintyOnIdentityIsOnes(t *testing.T) {
	M := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	std, err := Uncertainty(M)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range std {
		if math.Abs(v-1.0) > 1e-9 {
			t.Errorf("std[%d] = %v, want 1", i, v)
		}
	}
}

func TestUncertaintyRejectsSingularMatrix(t *testing.T) {
	M := mat.NewDense(2, 2, []float64{0, 0, 0, 0})
	if _, err := Uncertainty(M); err == nil {
		t.Fatal("expected error for singular covariance")
	}
}
