// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package visitors

import (
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func flatBasis() []types.Kernel {
	ks := make([]types.Kernel, 9)
	idx := 0
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			ks[idx] = types.NewDeltaFunctionKernel(3, 3, 1, 1, i, j)
			idx++
		}
	}
	return ks
}

func goodCandidate(id int) *candidate.KernelCandidate {
	template := imaging.NewPlane(0, 0, 11, 11)
	for row := 0; row < 11; row++ {
		for col := 0; col < 11; col++ {
			template.Set(col, row, float64((col+row)%5)+10)
		}
	}
	variance := imaging.ConstantVariancePlane(template, 1.0)
	return candidate.New(id, 5, 5, template, variance, template, variance, 100.0)
}

func TestBuildSingleKernelVisitorMarksGood(t *testing.T) {
	c := goodCandidate(1)
	v := &BuildSingleKernelVisitor{
		Basis: flatBasis(), Config: types.DefaultConfig(), SetCandidateKernel: true,
	}
	if err := v.ProcessCandidate(c); err != nil {
		t.Fatal(err)
	}
	if c.Status() != candidate.StatusGood {
		t.Errorf("Status() = %v, want StatusGood", c.Status())
	}
}

func TestBuildSingleKernelVisitorSkipsAlreadyBuilt(t *testing.T) {
	c := goodCandidate(1)
	c.MarkBad()
	v := &BuildSingleKernelVisitor{
		Basis: flatBasis(), Config: types.DefaultConfig(), SetCandidateKernel: true, SkipBuilt: true,
	}
	if err := v.ProcessCandidate(c); err != nil {
		t.Fatal(err)
	}
	if c.Status() != candidate.StatusBad {
		t.Errorf("Status() = %v, want StatusBad (SkipBuilt should leave already-classified candidates alone)", c.Status())
	}
}

func TestBuildSingleKernelVisitorConstantWeighting(t *testing.T) {
	c := goodCandidate(1)
	v := &BuildSingleKernelVisitor{
		Basis: flatBasis(), Config: types.DefaultConfig(), SetCandidateKernel: true, ConstantWeighting: true,
	}
	plane := v.weightPlane(c)
	x0, y0, w, h := plane.Bounds()
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			if plane.At(col, row) != 1 {
				t.Fatalf("constant weighting plane should be all-ones, got %v at (%d,%d)", plane.At(col, row), col, row)
			}
		}
	}
	_ = x0
}

func TestBuildSingleKernelVisitorSumWeighting(t *testing.T) {
	c := goodCandidate(1)
	v := &BuildSingleKernelVisitor{Basis: flatBasis(), Config: types.DefaultConfig()}
	plane := v.weightPlane(c)
	x0, y0, _, _ := plane.Bounds()
	if plane.At(x0, y0) != c.ScienceVar.At(x0, y0)+c.TemplateVar.At(x0, y0) {
		t.Error("default weighting should be the elementwise sum of science and template variance")
	}
}
