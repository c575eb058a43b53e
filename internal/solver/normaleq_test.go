// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package solver

import (
	"math"
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func TestBuildNormalEquationsRejectsEmptyBasis(t *testing.T) {
	template := imaging.NewPlane(0, 0, 10, 10)
	science := imaging.NewPlane(0, 0, 10, 10)
	variance := imaging.ConstantVariancePlane(template, 1.0)
	if _, err := BuildNormalEquations(nil, template, science, variance); err == nil {
		t.Fatal("expected error for empty basis")
	}
}

func TestBuildNormalEquationsRejectsTooSmallStamp(t *testing.T) {
	ks := []types.Kernel{types.NewGaussianKernel(9, 9, 2.0, 2.0)}
	template := imaging.NewPlane(0, 0, 5, 5)
	science := imaging.NewPlane(0, 0, 5, 5)
	variance := imaging.ConstantVariancePlane(template, 1.0)
	if _, err := BuildNormalEquations(ks, template, science, variance); err == nil {
		t.Fatal("expected error for a stamp smaller than the basis kernel")
	}
}

func TestBuildNormalEquationsIsSymmetric(t *testing.T) {
	ks := []types.Kernel{
		types.NewDeltaFunctionKernel(3, 3, 1, 1, 0, 0),
		types.NewDeltaFunctionKernel(3, 3, 1, 1, 2, 2),
	}
	template := imaging.NewPlane(0, 0, 11, 11)
	for row := 0; row < 11; row++ {
		for col := 0; col < 11; col++ {
			template.Set(col, row, float64(col+row))
		}
	}
	science := template
	variance := imaging.ConstantVariancePlane(template, 4.0)

	ne, err := BuildNormalEquations(ks, template, science, variance)
	if err != nil {
		t.Fatal(err)
	}
	ncols := ne.NBasis + 1
	for i := 0; i < ncols; i++ {
		for j := 0; j < ncols; j++ {
			if math.Abs(ne.M[i][j]-ne.M[j][i]) > 1e-9 {
				t.Fatalf("M not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestBuildNormalEquationsZeroVarianceYieldsZeroWeight(t *testing.T) {
	ks := []types.Kernel{types.NewDeltaFunctionKernel(3, 3, 1, 1, 1, 1)}
	template := imaging.NewPlane(0, 0, 9, 9)
	science := imaging.NewPlane(0, 0, 9, 9)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			template.Set(col, row, 5.0)
			science.Set(col, row, 5.0)
		}
	}
	variance := imaging.NewPlane(0, 0, 9, 9) // all zero: pixels excluded by weight
	ne, err := BuildNormalEquations(ks, template, science, variance)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range ne.B {
		if v != 0 {
			t.Errorf("B[%d] = %v, want 0 when every pixel has zero variance weight", i, v)
		}
	}
}
