// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package solver

import (
	"math"
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/internal/regularization"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func TestFitSingleKernelRecoversIdentityTransform(t *testing.T) {
	template := imaging.NewPlane(0, 0, 21, 21)
	for row := 0; row < 21; row++ {
		for col := 0; col < 21; col++ {
			v := 10.0
			if col >= 9 && col <= 11 && row >= 9 && row <= 11 {
				v = 100.0
			}
			template.Set(col, row, v)
		}
	}
	// science = template + constant background, no PSF change.
	science := imaging.NewPlane(0, 0, 21, 21)
	for row := 0; row < 21; row++ {
		for col := 0; col < 21; col++ {
			science.Set(col, row, template.At(col, row)+25.0)
		}
	}
	variance := imaging.ConstantVariancePlane(template, 1.0)

	ks, err := basisForTest()
	if err != nil {
		t.Fatal(err)
	}
	fit, err := FitSingleKernel(ks, template, science, variance, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fit.Background-25.0) > 0.5 {
		t.Errorf("Background = %v, want ~25", fit.Background)
	}
	if math.Abs(fit.Kernel.Sum()-1.0) > 0.1 {
		t.Errorf("Kernel sum = %v, want ~1 (identity transform)", fit.Kernel.Sum())
	}
	if fit.Chi2 < 0 {
		t.Errorf("Chi2 = %v, want >= 0", fit.Chi2)
	}
}

func TestFitSingleKernelAppliesRegularization(t *testing.T) {
	template := imaging.NewPlane(0, 0, 15, 15)
	for row := 0; row < 15; row++ {
		for col := 0; col < 15; col++ {
			template.Set(col, row, float64((col*row)%7))
		}
	}
	science := template
	variance := imaging.ConstantVariancePlane(template, 1.0)
	ks, err := basisForTest()
	if err != nil {
		t.Fatal(err)
	}
	H, err := regularization.Build(3, 3, 1, regularization.Central, regularization.Unwrapped)
	if err != nil {
		t.Fatal(err)
	}
	fit, err := FitSingleKernel(ks, template, science, variance, H, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if fit.Lambda <= 0 {
		t.Errorf("Lambda = %v, want > 0 when regularization is applied", fit.Lambda)
	}
}

func TestFitSingleKernelRejectsMismatchedRegularizationDims(t *testing.T) {
	template := imaging.NewPlane(0, 0, 15, 15)
	science := template
	variance := imaging.ConstantVariancePlane(template, 1.0)
	ks, err := basisForTest()
	if err != nil {
		t.Fatal(err)
	}
	H, err := regularization.Build(5, 5, 1, regularization.Central, regularization.Unwrapped)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FitSingleKernel(ks, template, science, variance, H, 1e-3); err == nil {
		t.Fatal("expected error for mismatched regularization dimensions")
	}
}

func basisForTest() ([]types.Kernel, error) {
	ks := make([]types.Kernel, 9)
	idx := 0
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			ks[idx] = types.NewDeltaFunctionKernel(3, 3, 1, 1, i, j)
			idx++
		}
	}
	return ks, nil
}
