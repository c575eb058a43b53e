// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package visitors

import (
	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// BuildSingleKernelVisitor implements spec.md §4.G.2: fit each current
// candidate against Basis, classify it, and optionally iterate once
// using the first-pass residual variance as the weight.
type BuildSingleKernelVisitor struct {
	Basis              []types.Kernel
	H                  *mat.Dense
	LambdaScaling      float64
	Config             *types.Config
	SkipBuilt          bool
	SetCandidateKernel bool
	ConstantWeighting  bool
	IterateOnce        bool
}

func (v *BuildSingleKernelVisitor) ProcessCandidate(c *candidate.KernelCandidate) error {
	if v.SkipBuilt && c.Status() != candidate.StatusUnknown {
		return nil
	}

	variance := v.weightPlane(c)
	if err := c.Build(v.Basis, variance, v.H, v.LambdaScaling, v.Config, v.SetCandidateKernel); err != nil {
		return err
	}
	if !v.IterateOnce || c.Status() != candidate.StatusGood {
		return nil
	}

	diff, err := c.DifferenceImage(nil, 0)
	if err != nil {
		return nil
	}
	reweighted := varianceFromResidual(diff)
	return c.Build(v.Basis, reweighted, v.H, v.LambdaScaling, v.Config, v.SetCandidateKernel)
}

// weightPlane implements spec.md §4.G.2's variance-source choice:
// constant weighting (all-ones) or the variance plane of MS-MT, which
// under independence is the elementwise sum of the two stamps' own
// variance planes.
func (v *BuildSingleKernelVisitor) weightPlane(c *candidate.KernelCandidate) *imaging.Plane {
	x0, y0, w, h := c.Template.Bounds()
	out := imaging.NewPlane(x0, y0, w, h)
	if v.ConstantWeighting {
		for row := y0; row < y0+h; row++ {
			for col := x0; col < x0+w; col++ {
				out.Set(col, row, 1)
			}
		}
		return out
	}
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			out.Set(col, row, c.ScienceVar.At(col, row)+c.TemplateVar.At(col, row))
		}
	}
	return out
}

// varianceFromResidual builds a constant-valued variance plane from a
// residual image's own sample variance, the re-weighting step of
// spec.md §4.G.2's single iteration.
func varianceFromResidual(diff *imaging.Plane) *imaging.Plane {
	x0, y0, w, h := diff.Bounds()
	values := make([]float64, 0, w*h)
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			values = append(values, diff.At(col, row))
		}
	}
	variance := imaging.Variance(values)
	out := imaging.NewPlane(x0, y0, w, h)
	if variance <= 0 {
		variance = 1
	}
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			out.Set(col, row, variance)
		}
	}
	return out
}
