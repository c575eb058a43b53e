// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package types

import (
	"math"
	"testing"
)

func TestDeltaFunctionKernelRender(t *testing.T) {
	k := NewDeltaFunctionKernel(5, 5, 2, 2, 1, 3)
	img := k.Render(0, 0)
	for idx, v := range img {
		want := 0.0
		if idx == 3*5+1 {
			want = 1.0
		}
		if v != want {
			t.Fatalf("pixel %d = %v, want %v", idx, v, want)
		}
	}
}

func TestGaussianKernelNormalizesToUnitSum(t *testing.T) {
	k := NewGaussianKernel(15, 15, 2.0, 2.0)
	img := k.Render(0, 0)
	var sum float64
	for _, v := range img {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("kernel sum = %v, want 1", sum)
	}
	w, h, cx, cy := k.Dims()
	if w != 15 || h != 15 || cx != 7 || cy != 7 {
		t.Errorf("Dims() = %d,%d,%d,%d", w, h, cx, cy)
	}
}

func TestGaussianKernelPeaksAtCenter(t *testing.T) {
	k := NewGaussianKernel(11, 11, 1.5, 1.5)
	img := k.Render(0, 0)
	center := img[5*11+5]
	for idx, v := range img {
		if idx == 5*11+5 {
			continue
		}
		if v > center {
			t.Fatalf("pixel %d (%v) exceeds center value %v", idx, v, center)
		}
	}
}

func TestLinearCombinationKernelSum(t *testing.T) {
	basis := []Kernel{
		NewDeltaFunctionKernel(3, 3, 1, 1, 0, 0),
		NewDeltaFunctionKernel(3, 3, 1, 1, 2, 2),
	}
	lc := NewLinearCombinationKernel(basis, []float64{2.0, 3.0})
	if got := lc.Sum(); got != 5.0 {
		t.Errorf("Sum() = %v, want 5", got)
	}
	img := lc.Render(0, 0)
	if img[0] != 2.0 {
		t.Errorf("img[0] = %v, want 2", img[0])
	}
	if img[len(img)-1] != 3.0 {
		t.Errorf("img[last] = %v, want 3", img[len(img)-1])
	}
}

func TestLinearCombinationKernelEmptyBasis(t *testing.T) {
	lc := NewLinearCombinationKernel(nil, nil)
	w, h, cx, cy := lc.Dims()
	if w != 0 || h != 0 || cx != 0 || cy != 0 {
		t.Errorf("Dims() on empty basis = %d,%d,%d,%d, want zeros", w, h, cx, cy)
	}
	if lc.Render(0, 0) != nil {
		t.Error("Render() on empty basis should return nil")
	}
}

func TestSpatiallyVaryingKernelAt(t *testing.T) {
	basis := []Kernel{
		NewDeltaFunctionKernel(3, 3, 1, 1, 0, 0),
		NewDeltaFunctionKernel(3, 3, 1, 1, 2, 2),
	}
	polyBasis, err := NewSpatialBasis(SpatialPolynomial, 0, BBox{})
	if err != nil {
		t.Fatal(err)
	}
	f0 := NewSpatialFunction(polyBasis)
	f0.SetParams([]float64{1.5})
	f1 := NewSpatialFunction(polyBasis)
	f1.SetParams([]float64{0.5})

	sv := NewSpatiallyVaryingKernel(basis, []*SpatialFunction{f0, f1}, false)
	lc := sv.At(10, 20)
	if lc.Coeffs[0] != 1.5 || lc.Coeffs[1] != 0.5 {
		t.Errorf("At() coeffs = %v, want [1.5 0.5]", lc.Coeffs)
	}
	w, h, _, _ := sv.Dims()
	if w != 3 || h != 3 {
		t.Errorf("Dims() = %d,%d, want 3,3", w, h)
	}
}
