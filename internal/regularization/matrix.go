// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package regularization builds the finite-difference smoothness matrix H
// of spec.md §4.B: a symmetric positive semi-definite (n_pix+1)^2 matrix
// added to the single-kernel normal equations as a Tikhonov penalty.
package regularization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Order selects the finite-difference stencil: order n uses the
// (n+2)-point stencil approximating the (n+1)-th derivative
// (spec.md §4.B: 0, 1, or 2).
type Order int

// Stencil selects where the finite-difference neighbors are taken from
// relative to the pixel being differenced.
type Stencil string

const (
	Forward Stencil = "forward"
	Central Stencil = "central"
)

// Boundary selects how edge pixels, whose full stencil footprint would
// fall outside the kernel grid, are handled.
type Boundary string

const (
	// Unwrapped drops the out-of-range stencil terms for edge pixels.
	Unwrapped Boundary = "unwrapped"
	// Wrapped treats the kernel grid as toroidal.
	Wrapped Boundary = "wrapped"
	// OrderTapered falls back to a lower derivative order near edges,
	// using whichever order's full footprint fits.
	OrderTapered Boundary = "order-tapered"
)

// stencilCoeffs returns the (order+2)-point alternating-binomial finite
// difference coefficients approximating the (order+1)-th derivative —
// e.g. order=0 -> [1,-1], order=1 -> [1,-2,1], order=2 -> [1,-3,3,-1] —
// and the integer offsets (relative to the pixel) each coefficient
// applies at, for the given stencil placement. Every returned
// coefficient list sums to zero by construction (binomial theorem at
// x=-1), which is what makes every row of H sum to zero under a wrapped
// boundary (spec.md §8 invariant 4).
func stencilCoeffs(order int, stencil Stencil) (coeffs []float64, offsets []int) {
	n := order + 2
	coeffs = make([]float64, n)
	c := 1.0
	for k := 0; k < n; k++ {
		if k > 0 {
			c = c * float64(n-k) / float64(k) * -1
		}
		coeffs[k] = c
	}
	offsets = make([]int, n)
	switch stencil {
	case Central:
		lo := -(n - 1) / 2
		for k := 0; k < n; k++ {
			offsets[k] = lo + k
		}
	default: // Forward
		for k := 0; k < n; k++ {
			offsets[k] = k
		}
	}
	return coeffs, offsets
}

// Build constructs H = L^T L for a kernelCols x kernelRows kernel grid.
// L has one row per (pixel, direction) pair for which a usable stencil
// exists; the trailing row/column of H (index n_pix) is the unused
// background term and is always zero.
func Build(kernelCols, kernelRows int, order Order, stencil Stencil, boundary Boundary) (*mat.Dense, error) {
	if kernelCols < 1 || kernelRows < 1 {
		return nil, types.NewDomainError(fmt.Sprintf("regularization grid requires kernelCols,kernelRows >= 1, got %dx%d", kernelCols, kernelRows))
	}
	if order < 0 || order > 2 {
		return nil, types.NewConfigError(fmt.Sprintf("regularization order must be 0, 1, or 2, got %d", order), nil)
	}

	nPix := kernelCols * kernelRows
	size := nPix + 1

	var rows [][]float64 // each a dense row of length size

	addRow := func(pixIndices []int, coeffs []float64) {
		row := make([]float64, size)
		for i, idx := range pixIndices {
			row[idx] += coeffs[i]
		}
		rows = append(rows, row)
	}

	indexOf := func(col, row int) int { return row*kernelCols + col }

	for row := 0; row < kernelRows; row++ {
		for col := 0; col < kernelCols; col++ {
			if xIdx, xCoef, ok := buildAxisStencil(col, kernelCols, int(order), stencil, boundary); ok {
				pix := make([]int, len(xIdx))
				for i, off := range xIdx {
					pix[i] = indexOf(wrapOrClamp(col+off, kernelCols, boundary), row)
				}
				addRow(pix, xCoef)
			}
			if yIdx, yCoef, ok := buildAxisStencil(row, kernelRows, int(order), stencil, boundary); ok {
				pix := make([]int, len(yIdx))
				for i, off := range yIdx {
					pix[i] = indexOf(col, wrapOrClamp(row+off, kernelRows, boundary))
				}
				addRow(pix, yCoef)
			}
		}
	}

	H := mat.NewDense(size, size, nil)
	if len(rows) == 0 {
		return H, nil
	}

	L := mat.NewDense(len(rows), size, nil)
	for i, r := range rows {
		L.SetRow(i, r)
	}

	H.Mul(L.T(), L)
	return H, nil
}

// buildAxisStencil returns the per-point offsets and coefficients to use
// for differencing the axis coordinate `pos` (0-based) in a dimension of
// size `dim`, honoring the boundary policy. ok is false when no usable
// stencil exists at all (happens under OrderTapered when even the
// two-point order-0 stencil does not fit, i.e. on a 1-pixel dimension).
func buildAxisStencil(pos, dim, order int, stencil Stencil, boundary Boundary) (offsets []int, coeffs []float64, ok bool) {
	switch boundary {
	case Wrapped:
		c, o := stencilCoeffs(order, stencil)
		return o, c, true
	case OrderTapered:
		for o := order; o >= 0; o-- {
			c, off := stencilCoeffs(o, stencil)
			if fitsUnwrapped(pos, dim, off) {
				return off, c, true
			}
			// Try the mirrored (reversed-offset) placement, covering the
			// case where e.g. a forward stencil doesn't fit at the right
			// edge but its mirror does.
			mo := mirror(off)
			if fitsUnwrapped(pos, dim, mo) {
				return mo, c, true
			}
		}
		return nil, nil, false
	default: // Unwrapped
		c, off := stencilCoeffs(order, stencil)
		var keptOff []int
		var keptCoef []float64
		for i, o := range off {
			if pos+o >= 0 && pos+o < dim {
				keptOff = append(keptOff, o)
				keptCoef = append(keptCoef, c[i])
			}
		}
		if len(keptOff) == 0 {
			return nil, nil, false
		}
		return keptOff, keptCoef, true
	}
}

func fitsUnwrapped(pos, dim int, offsets []int) bool {
	for _, o := range offsets {
		if pos+o < 0 || pos+o >= dim {
			return false
		}
	}
	return true
}

func mirror(offsets []int) []int {
	out := make([]int, len(offsets))
	for i, o := range offsets {
		out[i] = -o
	}
	return out
}

func wrapOrClamp(v, dim int, boundary Boundary) int {
	if boundary == Wrapped {
		v %= dim
		if v < 0 {
			v += dim
		}
		return v
	}
	if v < 0 {
		return 0
	}
	if v >= dim {
		return dim - 1
	}
	return v
}
