// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package pca

import (
	"math"
	"testing"
)

func TestAddRejectsWrongLength(t *testing.T) {
	p := New(3, 3)
	if err := p.Add([]float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for mismatched image length")
	}
}

func TestMeanOfIdenticalImagesIsThatImage(t *testing.T) {
	p := New(2, 2)
	img := []float64{1, 2, 3, 4}
	_ = p.Add(img)
	_ = p.Add(img)
	mean := p.Mean()
	for i, v := range mean {
		if v != img[i] {
			t.Errorf("mean[%d] = %v, want %v", i, v, img[i])
		}
	}
	if p.Count() != 2 {
		t.Errorf("Count() = %d, want 2", p.Count())
	}
}

func TestAnalyzeRejectsEmptyCollection(t *testing.T) {
	p := New(3, 3)
	if _, _, err := p.Analyze(0); err == nil {
		t.Fatal("expected error analyzing an empty collector")
	}
}

func TestAnalyzeReturnsMeanPlusEigenImages(t *testing.T) {
	p := New(2, 2)
	_ = p.Add([]float64{1, 0, 0, 0})
	_ = p.Add([]float64{0, 1, 0, 0})
	_ = p.Add([]float64{0, 0, 1, 0})
	basis, eigenvalues, err := p.Analyze(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(basis) != 3 { // mean + 2 requested components
		t.Fatalf("len(basis) = %d, want 3", len(basis))
	}
	if len(eigenvalues) != 2 {
		t.Fatalf("len(eigenvalues) = %d, want 2", len(eigenvalues))
	}
	w, h, _, _ := basis[0].Dims()
	if w != 2 || h != 2 {
		t.Errorf("basis kernel dims = %d,%d, want 2,2", w, h)
	}
}

func TestAnalyzeEigenImagesAreUnitScaled(t *testing.T) {
	p := New(2, 2)
	_ = p.Add([]float64{1, 0, 0, 0})
	_ = p.Add([]float64{0, 5, 0, 0})
	_ = p.Add([]float64{0, 0, -3, 0})
	basis, _, err := p.Analyze(0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(basis); i++ {
		img := basis[i].Render(0, 0)
		var extreme float64
		for _, v := range img {
			if math.Abs(v) > extreme {
				extreme = math.Abs(v)
			}
		}
		if math.Abs(extreme-1.0) > 1e-9 {
			t.Errorf("eigen-image %d extreme value = %v, want 1", i, extreme)
		}
	}
}
