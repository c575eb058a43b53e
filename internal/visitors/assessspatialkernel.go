// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package visitors

import (
	"math"

	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// AssessSpatialKernelVisitor implements spec.md §4.G.5: evaluate the
// fitted spatial kernel and background at each candidate's center, form
// the difference image, and classify GOOD/BAD by the same residual
// limits as BuildSingleKernelVisitor.
type AssessSpatialKernelVisitor struct {
	SpatialKernel *types.SpatiallyVaryingKernel
	Background    *types.SpatialFunction
	Config        *types.Config

	NGood     int
	NRejected int
}

func (v *AssessSpatialKernelVisitor) ProcessCandidate(c *candidate.KernelCandidate) error {
	local := v.SpatialKernel.At(c.CenterX, c.CenterY)
	bg := v.Background.Eval(c.CenterX, c.CenterY)

	diff, err := c.DifferenceImage(local, bg)
	if err != nil {
		c.MarkBad()
		v.NRejected++
		return nil
	}

	mean, rms := imaging.PlaneResidualStats(diff)
	if math.IsNaN(mean) || math.IsNaN(rms) {
		c.MarkBad()
		v.NRejected++
		return nil
	}
	if v.Config.Rejection.SpatialKernelClipping &&
		(mean > v.Config.Rejection.CandidateResidualMeanMax ||
			rms > v.Config.Rejection.CandidateResidualStdMax) {
		c.MarkBad()
		v.NRejected++
		return nil
	}

	v.NGood++
	return nil
}

func (v *AssessSpatialKernelVisitor) Reset() {
	v.NGood = 0
	v.NRejected = 0
}
