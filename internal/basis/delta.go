// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package basis implements the kernel basis generators of spec.md §4.A:
// an ordered sequence of same-shaped kernel images that any fit kernel is
// expressed as a linear combination of.
package basis

import (
	"fmt"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// DeltaFunction builds a basis of width*height delta-function kernels,
// the k-th kernel carrying a unit impulse at the k-th pixel in row-major
// order, centered at (width/2, height/2).
func DeltaFunction(width, height int) ([]types.Kernel, error) {
	if width < 1 || height < 1 {
		return nil, types.NewDomainError(fmt.Sprintf("delta-function basis requires width,height >= 1, got %dx%d", width, height))
	}
	ctrX, ctrY := width/2, height/2
	out := make([]types.Kernel, 0, width*height)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			out = append(out, types.NewDeltaFunctionKernel(width, height, ctrX, ctrY, i, j))
		}
	}
	return out, nil
}
