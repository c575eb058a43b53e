// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package solver

import (
	"fmt"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Interior describes the usable interior region of a stamp pair, in
// absolute image coordinates (spec.md §4.D step 1).
type Interior struct {
	X0, Y0, W, H int
}

// NormalEquations holds the M, B system built by BuildNormalEquations,
// plus the interior region and basis size it was built over.
type NormalEquations struct {
	M        [][]float64 // (n_b+1) x (n_b+1), symmetric
	B        []float64   // n_b+1
	Interior Interior
	NBasis   int
}

// BuildNormalEquations implements spec.md §4.D steps 1-4: restrict to the
// basis kernel's interior, convolve each basis image against the template,
// assemble the design matrix C (last column all-ones for background), and
// form the variance-weighted normal equations M = CᵀWC, B = CᵀWs.
func BuildNormalEquations(basisKernels []types.Kernel, template, science, variance *imaging.Plane) (*NormalEquations, error) {
	if len(basisKernels) == 0 {
		return nil, types.NewDomainError("normal equations require a non-empty kernel basis")
	}
	kw, kh, ctrX, ctrY := basisKernels[0].Dims()
	tx0, ty0, tw, th := template.Bounds()
	ix0, iy0, iw, ih := imaging.Interior(tx0, ty0, tw, th, kw, kh, ctrX, ctrY)
	if iw <= 0 || ih <= 0 {
		return nil, types.NewDomainError(fmt.Sprintf("stamp %dx%d is too small for basis kernel %dx%d", tw, th, kw, kh))
	}

	nb := len(basisKernels)

	convolved := make([]*imaging.Plane, nb)
	for i, k := range basisKernels {
		out := imaging.NewPlane(tx0, ty0, tw, th)
		imaging.Convolve(out, template, k, false)
		convolved[i] = out
	}

	ncols := nb + 1
	M := make([][]float64, ncols)
	for i := range M {
		M[i] = make([]float64, ncols)
	}
	B := make([]float64, ncols)

	row := make([]float64, ncols)
	for y := iy0; y < iy0+ih; y++ {
		for x := ix0; x < ix0+iw; x++ {
			v := variance.At(x, y)
			var w float64
			if v > 0 {
				w = 1.0 / v
			}
			s := science.At(x, y)
			for i := 0; i < nb; i++ {
				row[i] = convolved[i].At(x, y)
			}
			row[nb] = 1.0
			for i := 0; i < ncols; i++ {
				wi := row[i] * w
				B[i] += wi * s
				for j := i; j < ncols; j++ {
					M[i][j] += wi * row[j]
				}
			}
		}
	}
	for i := 0; i < ncols; i++ {
		for j := i + 1; j < ncols; j++ {
			M[j][i] = M[i][j]
		}
	}

	return &NormalEquations{
		M:        M,
		B:        B,
		Interior: Interior{ix0, iy0, iw, ih},
		NBasis:   nb,
	}, nil
}
