// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Fit is the solved single-stamp kernel fit of spec.md §4.D: a basis
// linear combination plus a scalar background, the normal equations that
// produced it, the method that solved them, and residual diagnostics.
type Fit struct {
	Coefficients []float64 // length n_b+1; [n_b] is the background term
	Kernel       *types.LinearCombinationKernel
	Background   float64
	M            *mat.Dense
	B            []float64
	Method       Method
	Interior     Interior
	Chi2         float64
	ResidualMean float64
	Lambda       float64 // 0 if regularization was not applied
}

// FitSingleKernel runs the full algorithm of spec.md §4.D: build the
// variance-weighted normal equations, optionally fold in a Tikhonov
// regularization term scaled by trace(M)/trace(H), solve via the
// cascading linear solver, and compute residual diagnostics.
//
// H may be nil, in which case regularization is skipped entirely (design
// note in spec.md §4.D: "when not regularizing, skip this step").
func FitSingleKernel(basisKernels []types.Kernel, template, science, variance *imaging.Plane, H *mat.Dense, lambdaScaling float64) (*Fit, error) {
	ne, err := BuildNormalEquations(basisKernels, template, science, variance)
	if err != nil {
		return nil, err
	}

	ncols := ne.NBasis + 1
	M := mat.NewDense(ncols, ncols, nil)
	for i := 0; i < ncols; i++ {
		M.SetRow(i, ne.M[i])
	}
	B := append([]float64(nil), ne.B...)

	var lambda float64
	if H != nil {
		hr, hc := H.Dims()
		if hr != ncols || hc != ncols {
			return nil, types.NewDomainError("regularization matrix dimensions do not match basis size")
		}
		traceM := mat.Trace(M)
		traceH := mat.Trace(H)
		if traceH == 0 {
			return nil, types.NewNumericalError("regularization matrix has zero trace", map[string]interface{}{"traceH": traceH})
		}
		lambda = traceM / traceH * lambdaScaling

		var mtm mat.Dense
		mtm.Mul(M.T(), M)
		var lambdaH mat.Dense
		lambdaH.Scale(lambda, H)
		var regularized mat.Dense
		regularized.Add(&mtm, &lambdaH)

		bVec := mat.NewVecDense(ncols, B)
		var newB mat.VecDense
		newB.MulVec(M.T(), bVec)

		M = &regularized
		B = vecData(&newB)
	}

	x, method, err := Solve(M, B)
	if err != nil {
		return nil, err
	}

	basisPart := x[:ne.NBasis]
	kernel := types.NewLinearCombinationKernel(basisKernels, append([]float64(nil), basisPart...))
	background := x[ne.NBasis]

	chi2, residualMean := residualDiagnostics(basisKernels, template, science, variance, ne.Interior, kernel, background)

	return &Fit{
		Coefficients: x,
		Kernel:       kernel,
		Background:   background,
		M:            M,
		B:            B,
		Method:       method,
		Interior:     ne.Interior,
		Chi2:         chi2,
		ResidualMean: residualMean,
		Lambda:       lambda,
	}, nil
}

func residualDiagnostics(basisKernels []types.Kernel, template, science, variance *imaging.Plane, interior Interior, kernel *types.LinearCombinationKernel, background float64) (chi2, residualMean float64) {
	out := imaging.NewPlane(interior.X0, interior.Y0, interior.W, interior.H)
	imaging.Convolve(out, template, kernel, false)

	var sumAbs float64
	n := 0
	for y := interior.Y0; y < interior.Y0+interior.H; y++ {
		for x := interior.X0; x < interior.X0+interior.W; x++ {
			model := out.At(x, y) + background
			resid := science.At(x, y) - model
			v := variance.At(x, y)
			if v > 0 {
				chi2 += resid * resid / v
			}
			sumAbs += math.Abs(resid)
			n++
		}
	}
	if n > 0 {
		residualMean = sumAbs / float64(n)
	}
	return chi2, residualMean
}
