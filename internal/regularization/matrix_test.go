// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package regularization

import (
	"math"
	"testing"
)

func TestBuildRejectsInvalidDims(t *testing.T) {
	if _, err := Build(0, 5, 1, Central, Unwrapped); err == nil {
		t.Fatal("expected error for kernelCols=0")
	}
	if _, err := Build(5, 5, 3, Central, Unwrapped); err == nil {
		t.Fatal("expected error for order=3")
	}
}

func TestBuildReturnsSymmetricMatrix(t *testing.T) {
	H, err := Build(5, 5, 1, Central, Unwrapped)
	if err != nil {
		t.Fatal(err)
	}
	r, c := H.Dims()
	if r != 26 || c != 26 {
		t.Fatalf("Dims() = %d,%d, want 26,26 (5*5+1)", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(H.At(i, j)-H.At(j, i)) > 1e-9 {
				t.Fatalf("H not symmetric at (%d,%d): %v vs %v", i, j, H.At(i, j), H.At(j, i))
			}
		}
	}
}

func TestBuildBackgroundRowAndColumnAreZero(t *testing.T) {
	H, err := Build(4, 4, 1, Central, Unwrapped)
	if err != nil {
		t.Fatal(err)
	}
	n := 16
	for i := 0; i <= n; i++ {
		if H.At(n, i) != 0 || H.At(i, n) != 0 {
			t.Fatalf("background row/col index %d should be all zero, got H[%d,%d]=%v H[%d,%d]=%v",
				n, n, i, H.At(n, i), i, n, H.At(i, n))
		}
	}
}

func TestBuildWrappedBoundaryRowsSumToZero(t *testing.T) {
	H, err := Build(5, 5, 1, Central, Wrapped)
	if err != nil {
		t.Fatal(err)
	}
	r, c := H.Dims()
	for i := 0; i < r; i++ {
		var sum float64
		for j := 0; j < c; j++ {
			sum += H.At(i, j)
		}
		if math.Abs(sum) > 1e-9 {
			t.Fatalf("wrapped-boundary H row %d sums to %v, want 0", i, sum)
		}
	}
}

func TestBuildPositiveSemiDefinite(t *testing.T) {
	H, err := Build(4, 4, 0, Forward, Unwrapped)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := H.Dims()
	// x^T H x >= 0 for an arbitrary probe vector, since H = L^T L.
	x := make([]float64, r)
	for i := range x {
		x[i] = float64(i%3) - 1.0
	}
	var quad float64
	for i := 0; i < r; i++ {
		var rowDot float64
		for j := 0; j < r; j++ {
			rowDot += H.At(i, j) * x[j]
		}
		quad += x[i] * rowDot
	}
	if quad < -1e-9 {
		t.Errorf("x^T H x = %v, want >= 0 (H must be PSD)", quad)
	}
}

func TestOrderTaperedFallsBackNearEdges(t *testing.T) {
	// a 1x1 grid has no room for any full stencil; OrderTapered
	// must still produce a valid (all-zero) H rather than failing.
	H, err := Build(1, 1, 2, Central, OrderTapered)
	if err != nil {
		t.Fatal(err)
	}
	r, c := H.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("Dims() = %d,%d, want 2,2", r, c)
	}
}
