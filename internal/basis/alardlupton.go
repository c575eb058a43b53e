// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package basis

import (
	"fmt"
	"math"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// AlardLupton builds a sums-of-Gaussians x polynomial-modulation basis of
// size (2*halfWidth+1)^2 (spec.md §4.A), then renormalizes it in place:
// the first kernel is scaled to unit sum; every other kernel is
// normalized to unit sum, has the (already-normalized) first kernel
// subtracted, and is rescaled so its self inner product is 1.
//
// len(sigmas) must equal len(degrees); fails with a DomainError if
// halfWidth<1, and a ConfigError if the lists disagree in length.
func AlardLupton(halfWidth int, sigmas []float64, degrees []int) ([]types.Kernel, error) {
	if halfWidth < 1 {
		return nil, types.NewDomainError(fmt.Sprintf("alard-lupton basis requires halfWidth >= 1, got %d", halfWidth))
	}
	if len(sigmas) != len(degrees) {
		return nil, types.NewConfigError(fmt.Sprintf("alard-lupton sigma list length %d != degree list length %d", len(sigmas), len(degrees)), nil)
	}
	if len(sigmas) == 0 {
		return nil, types.NewConfigError("alard-lupton basis requires at least one gaussian", nil)
	}

	size := 2*halfWidth + 1
	ctr := halfWidth

	var kernels []*types.FixedKernel
	for gi, sigma := range sigmas {
		deg := degrees[gi]
		if sigma <= 0 {
			return nil, types.NewConfigError(fmt.Sprintf("alard-lupton gaussian %d has non-positive sigma %v", gi, sigma), nil)
		}
		for total := 0; total <= deg; total++ {
			for j := 0; j <= total; j++ {
				k := total - j
				pixels := make([]float64, size*size)
				for row := 0; row < size; row++ {
					y := float64(row-ctr) / float64(halfWidth)
					for col := 0; col < size; col++ {
						x := float64(col-ctr) / float64(halfWidth)
						g := math.Exp(-0.5 * (float64(col-ctr)*float64(col-ctr) + float64(row-ctr)*float64(row-ctr)) / (sigma * sigma))
						pixels[row*size+col] = g * ipow(x, j) * ipow(y, k)
					}
				}
				kernels = append(kernels, types.NewFixedKernel(size, size, ctr, ctr, pixels))
			}
		}
	}

	renormalize(kernels)

	out := make([]types.Kernel, len(kernels))
	for i, k := range kernels {
		out[i] = k
	}
	return out, nil
}

func ipow(x float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}

// renormalize applies spec.md §4.A's Alard-Lupton/PCA renormalization
// rule in place: sum(B0)=1, sum(Bi)=0 and <Bi,Bi>=1 for i>0.
func renormalize(kernels []*types.FixedKernel) {
	if len(kernels) == 0 {
		return
	}
	scaleToUnitSum(kernels[0])
	b0 := kernels[0]
	for i := 1; i < len(kernels); i++ {
		k := kernels[i]
		scaleToUnitSum(k)
		for p := range k.Pixels {
			k.Pixels[p] -= b0.Pixels[p]
		}
		normalizeInnerProduct(k)
	}
}

func scaleToUnitSum(k *types.FixedKernel) {
	sum := k.Sum()
	if sum == 0 {
		return
	}
	for i := range k.Pixels {
		k.Pixels[i] /= sum
	}
}

func normalizeInnerProduct(k *types.FixedKernel) {
	var ip float64
	for _, v := range k.Pixels {
		ip += v * v
	}
	if ip == 0 {
		return
	}
	scale := 1.0 / math.Sqrt(ip)
	for i := range k.Pixels {
		k.Pixels[i] *= scale
	}
}
