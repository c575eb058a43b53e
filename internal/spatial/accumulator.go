// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package spatial implements the global spatial kernel/background solver
// of spec.md §4.I: per-candidate normal equations re-weighted by
// spatial-polynomial outer products and summed into one global system.
package spatial

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/solver"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Accumulator builds the global normal equations of spec.md §4.I across
// many candidates, then solves them into a SpatiallyVaryingKernel plus a
// spatial background function.
type Accumulator struct {
	nBasis        int
	kernelBasis   types.SpatialBasis
	bgBasis       types.SpatialBasis
	constantFirst bool

	nKt, nBt, nParams int
	M                 [][]float64
	B                 []float64
}

// NewAccumulator sizes the global system per spec.md §8 invariant 5:
// `1 + (n_basis-1)*n_kt + n_bt` parameters when constantFirst, else
// `n_basis*n_kt + n_bt`.
func NewAccumulator(nBasis int, kernelBasis, bgBasis types.SpatialBasis, constantFirst bool) (*Accumulator, error) {
	if nBasis < 1 {
		return nil, types.NewDomainError("spatial accumulator requires at least one basis kernel")
	}
	nKt := kernelBasis.NTerms()
	nBt := bgBasis.NTerms()
	var nParams int
	if constantFirst {
		nParams = 1 + (nBasis-1)*nKt + nBt
	} else {
		nParams = nBasis*nKt + nBt
	}
	M := make([][]float64, nParams)
	for i := range M {
		M[i] = make([]float64, nParams)
	}
	return &Accumulator{
		nBasis: nBasis, kernelBasis: kernelBasis, bgBasis: bgBasis, constantFirst: constantFirst,
		nKt: nKt, nBt: nBt, nParams: nParams,
		M: M, B: make([]float64, nParams),
	}, nil
}

// blockVector returns the per-basis spatial term vector used for basis
// index i: a single-element [1] when this is the constant-first basis
// (i==0 under constantFirst), else the full kernel spatial basis terms.
func (a *Accumulator) blockVector(i int, pk []float64) []float64 {
	if a.constantFirst && i == 0 {
		return []float64{1}
	}
	return pk
}

func (a *Accumulator) offset(i int) int {
	if a.constantFirst {
		if i == 0 {
			return 0
		}
		return 1 + (i-1)*a.nKt
	}
	return i * a.nKt
}

func (a *Accumulator) bgOffset() int {
	if a.constantFirst {
		return 1 + (a.nBasis-1)*a.nKt
	}
	return a.nBasis * a.nKt
}

// Add folds one candidate's (M, B) into the global system, weighted by
// spatial-polynomial outer products evaluated at the candidate's center
// (spec.md §4.I "Per-candidate contribution").
func (a *Accumulator) Add(c *candidate.KernelCandidate) error {
	if c.M == nil || c.B == nil {
		return types.NewDomainError(fmt.Sprintf("candidate %d has no normal equations to accumulate", c.ID))
	}
	n := a.nBasis
	qr, qc := c.M.Dims()
	if qr != n+1 || qc != n+1 {
		return types.NewDomainError(fmt.Sprintf("candidate %d M is %dx%d, want %dx%d", c.ID, qr, qc, n+1, n+1))
	}

	pk := a.kernelBasis.Terms(c.CenterX, c.CenterY)
	pb := a.bgBasis.Terms(c.CenterX, c.CenterY)

	vectors := make([][]float64, n)
	for i := 0; i < n; i++ {
		vectors[i] = a.blockVector(i, pk)
	}

	for i := 0; i < n; i++ {
		vi := vectors[i]
		oi := a.offset(i)
		for j := 0; j < n; j++ {
			vj := vectors[j]
			oj := a.offset(j)
			qij := c.M.At(i, j)
			addOuter(a.M, oi, oj, vi, vj, qij)
		}
		qiBg := c.M.At(i, n)
		addOuter(a.M, oi, a.bgOffset(), vi, pb, qiBg)
		addOuter(a.M, a.bgOffset(), oi, pb, vi, qiBg)

		addScaled(a.B, oi, vi, c.B[i])
	}
	qBgBg := c.M.At(n, n)
	addOuter(a.M, a.bgOffset(), a.bgOffset(), pb, pb, qBgBg)
	addScaled(a.B, a.bgOffset(), pb, c.B[n])

	return nil
}

func addOuter(M [][]float64, rowOff, colOff int, v, w []float64, scale float64) {
	for i, vi := range v {
		row := M[rowOff+i]
		for j, wj := range w {
			row[colOff+j] += scale * vi * wj
		}
	}
}

func addScaled(B []float64, off int, v []float64, scale float64) {
	for i, vi := range v {
		B[off+i] += scale * vi
	}
}

// Solution is the global fit result: a spatially varying kernel and a
// separate spatial background function.
type Solution struct {
	Kernel     *types.SpatiallyVaryingKernel
	Background *types.SpatialFunction
	Method     solver.Method
}

// Solve runs the cascading linear solver against the accumulated global
// system and unpacks the solution into per-basis spatial functions and a
// background spatial function.
func (a *Accumulator) Solve(basisKernels []types.Kernel) (*Solution, error) {
	M := mat.NewDense(a.nParams, a.nParams, nil)
	for i, row := range a.M {
		M.SetRow(i, row)
	}
	x, method, err := solver.Solve(M, a.B)
	if err != nil {
		return nil, err
	}

	coeffs := make([]*types.SpatialFunction, a.nBasis)
	for i := 0; i < a.nBasis; i++ {
		if a.constantFirst && i == 0 {
			constBasis, _ := types.NewSpatialBasis(types.SpatialPolynomial, 0, types.BBox{})
			fn := types.NewSpatialFunction(constBasis)
			fn.SetParams([]float64{x[a.offset(i)]})
			coeffs[i] = fn
			continue
		}
		fn := types.NewSpatialFunction(a.kernelBasis)
		fn.SetParams(append([]float64(nil), x[a.offset(i):a.offset(i)+a.nKt]...))
		coeffs[i] = fn
	}

	bg := types.NewSpatialFunction(a.bgBasis)
	bg.SetParams(append([]float64(nil), x[a.bgOffset():a.bgOffset()+a.nBt]...))

	spatialKernel := types.NewSpatiallyVaryingKernel(basisKernels, coeffs, a.constantFirst)

	return &Solution{Kernel: spatialKernel, Background: bg, Method: method}, nil
}
