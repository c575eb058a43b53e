// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package imaging

import (
	"math"
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func TestConvolveWithDeltaKernelIsIdentity(t *testing.T) {
	in := NewPlane(0, 0, 9, 9)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			in.Set(col, row, float64(row*9+col))
		}
	}
	out := NewPlane(0, 0, 9, 9)
	k := types.NewDeltaFunctionKernel(3, 3, 1, 1, 1, 1)
	Convolve(out, in, k, false)
	for row := 2; row < 7; row++ {
		for col := 2; col < 7; col++ {
			if out.At(col, row) != in.At(col, row) {
				t.Fatalf("delta convolution mismatch at (%d,%d): got %v want %v",
					col, row, out.At(col, row), in.At(col, row))
			}
		}
	}
}

func TestConvolvePreservesConstantPlane(t *testing.T) {
	in := NewPlane(0, 0, 11, 11)
	for i := range in.data {
		in.data[i] = 7.0
	}
	out := NewPlane(0, 0, 11, 11)
	k := types.NewGaussianKernel(5, 5, 1.5, 1.5)
	Convolve(out, in, k, true)
	for row := 0; row < 11; row++ {
		for col := 0; col < 11; col++ {
			if math.Abs(out.At(col, row)-7.0) > 1e-9 {
				t.Fatalf("convolving a constant plane with a normalized kernel should preserve it, got %v at (%d,%d)",
					out.At(col, row), col, row)
			}
		}
	}
}

func TestConvolveNormalizesKernel(t *testing.T) {
	in := NewPlane(0, 0, 5, 5)
	in.Set(2, 2, 10.0)
	out := NewPlane(0, 0, 5, 5)
	// an unnormalized delta kernel with value 2 at its center; with
	// doNormalize the effective weight must be 1.
	k := &scaledDelta{v: 2.0}
	Convolve(out, in, k, true)
	if math.Abs(out.At(2, 2)-10.0) > 1e-9 {
		t.Errorf("normalized convolution of scaled delta = %v, want 10", out.At(2, 2))
	}
}

// scaledDelta is a single-pixel kernel with a configurable weight, used to
// exercise Convolve's doNormalize path independent of types.Kernel's own
// normalization behavior.
type scaledDelta struct{ v float64 }

func (s *scaledDelta) Dims() (w, h, cx, cy int) { return 1, 1, 0, 0 }
func (s *scaledDelta) Render(dx, dy float64) []float64 {
	return []float64{s.v}
}

func TestInteriorShrinksForLargerKernel(t *testing.T) {
	ix0, iy0, iw, ih := Interior(0, 0, 20, 20, 5, 5, 2, 2)
	if ix0 != 2 || iy0 != 2 || iw != 16 || ih != 16 {
		t.Errorf("Interior() = %d,%d,%d,%d, want 2,2,16,16", ix0, iy0, iw, ih)
	}
}

func TestInteriorClampsToZeroWhenKernelTooLarge(t *testing.T) {
	_, _, iw, ih := Interior(0, 0, 4, 4, 9, 9, 4, 4)
	if iw != 0 || ih != 0 {
		t.Errorf("Interior() width/height = %d,%d, want 0,0 when kernel exceeds image", iw, ih)
	}
}
