// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package imaging

import "github.com/DominiqueFouchez/ip-diffim/pkg/types"

// Convolve implements the external convolution contract of spec.md §9:
// pixel (i,j) of K⊛T equals sum_{u,v} K(u,v) * T(i+u-ctrX, j+v-ctrY).
// Out-of-bounds template pixels are clamped to the nearest edge pixel
// (the host's boundary policy may differ; the solver only ever reads the
// interior region that is unaffected by this choice, per spec.md §4.D
// step 1 and §9's "core math uses only interior pixels" note).
//
// If doNormalize is true, the kernel pixels are rescaled so they sum to 1
// before being applied.
func Convolve(out, in *Plane, k types.Kernel, doNormalize bool) {
	w, h, ctrX, ctrY := k.Dims()
	kpix := k.Render(0, 0)
	if doNormalize {
		var sum float64
		for _, v := range kpix {
			sum += v
		}
		if sum != 0 {
			scaled := make([]float64, len(kpix))
			for i, v := range kpix {
				scaled[i] = v / sum
			}
			kpix = scaled
		}
	}

	ox0, oy0, ow, oh := out.Bounds()
	ix0, iy0, iw, ih := in.Bounds()

	for row := oy0; row < oy0+oh; row++ {
		for col := ox0; col < ox0+ow; col++ {
			var acc float64
			for v := 0; v < h; v++ {
				ty := row + v - ctrY
				ty = clamp(ty, iy0, iy0+ih-1)
				for u := 0; u < w; u++ {
					tx := col + u - ctrX
					tx = clamp(tx, ix0, ix0+iw-1)
					acc += kpix[v*w+u] * in.At(tx, ty)
				}
			}
			out.Set(col, row, acc)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Interior returns the sub-rectangle of an image unaffected by the
// boundary policy when convolved with a kernel of the given dimensions
// (spec.md §4.D step 1): skip ctrX/ctrY pixels on the left/top and
// width-ctrX-1 / height-ctrY-1 pixels on the right/bottom.
func Interior(x0, y0, width, height, kw, kh, ctrX, ctrY int) (ix0, iy0, iw, ih int) {
	left, top := ctrX, ctrY
	right, bottom := kw-ctrX-1, kh-ctrY-1
	ix0 = x0 + left
	iy0 = y0 + top
	iw = width - left - right
	ih = height - top - bottom
	if iw < 0 {
		iw = 0
	}
	if ih < 0 {
		ih = 0
	}
	return
}
