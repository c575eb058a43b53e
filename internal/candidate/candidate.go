// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package candidate implements the KernelCandidate state machine of
// spec.md §4.E: the unit of work a visitor mutates as it walks the
// spatial cell grid.
package candidate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/internal/solver"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Status is a candidate's position in the UNKNOWN -> GOOD/BAD state
// machine of spec.md §4.E.
type Status int

const (
	StatusUnknown Status = iota
	StatusGood
	StatusBad
)

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "GOOD"
	case StatusBad:
		return "BAD"
	default:
		return "UNKNOWN"
	}
}

// KernelCandidate owns one stamp pair and the fit history for it.
type KernelCandidate struct {
	ID               int
	CenterX, CenterY float64
	Rating           float64

	Template    *imaging.Plane
	TemplateVar *imaging.Plane
	Science     *imaging.Plane
	ScienceVar  *imaging.Plane

	status Status

	Kernel     *types.LinearCombinationKernel
	Background float64
	M          *mat.Dense
	B          []float64
	Chi2       float64
	Method     solver.Method

	lastFit *solver.Fit
}

// New creates a candidate in StatusUnknown from a stamp pair.
func New(id int, cx, cy float64, template, templateVar, science, scienceVar *imaging.Plane, rating float64) *KernelCandidate {
	return &KernelCandidate{
		ID: id, CenterX: cx, CenterY: cy, Rating: rating,
		Template: template, TemplateVar: templateVar,
		Science: science, ScienceVar: scienceVar,
		status: StatusUnknown,
	}
}

func (c *KernelCandidate) Status() Status { return c.status }

// Build runs spec.md §4.D on this candidate's stamps against the given
// basis, weighting by the supplied variance plane, then classifies the
// result against the configured residual limits (spec.md §4.G.2):
// BAD on solver failure, NaN residuals, or when the absolute mean
// residual or rms exceeds the configured maxima; GOOD otherwise.
//
// setKernel controls whether the fitted kernel/background overwrite the
// candidate's current solution or only its M/B (used when fitting a PCA
// basis derived from this candidate's own delta-function solution,
// spec.md §4.G.2 "setCandidateKernel(false)").
func (c *KernelCandidate) Build(basisKernels []types.Kernel, variance *imaging.Plane, H *mat.Dense, lambdaScaling float64, cfg *types.Config, setKernel bool) error {
	fit, err := solver.FitSingleKernel(basisKernels, c.Template, c.Science, variance, H, lambdaScaling)
	if err != nil {
		c.status = StatusBad
		return err
	}
	c.M = fit.M
	c.B = fit.B
	c.Chi2 = fit.Chi2
	c.Method = fit.Method
	c.lastFit = fit

	if setKernel {
		c.Kernel = fit.Kernel
		c.Background = fit.Background
	}

	diff, diffErr := c.DifferenceImage(fit.Kernel, fit.Background)
	if diffErr != nil {
		c.status = StatusBad
		return nil
	}
	mean, rms := imaging.PlaneResidualStats(diff)
	if math.IsNaN(mean) || math.IsNaN(rms) {
		c.status = StatusBad
		return nil
	}
	if cfg.Rejection.SingleKernelClipping &&
		(mean > cfg.Rejection.CandidateResidualMeanMax || rms > cfg.Rejection.CandidateResidualStdMax) {
		c.status = StatusBad
		return nil
	}
	if c.status != StatusBad {
		c.status = StatusGood
	}
	return nil
}

// MarkBad forces the candidate into the terminal BAD state, used by
// visitors (e.g. KernelSumVisitor's REJECT mode) that classify
// candidates on criteria outside Build.
func (c *KernelCandidate) MarkBad() { c.status = StatusBad }

// DifferenceImage computes MS - (k ⊛ MT + background) over this
// candidate's stamp, using the given kernel and background instead of
// the candidate's own current solution when provided.
func (c *KernelCandidate) DifferenceImage(k types.Kernel, background float64) (*imaging.Plane, error) {
	if k == nil {
		k = c.Kernel
		background = c.Background
	}
	if k == nil {
		return nil, types.NewDomainError(fmt.Sprintf("candidate %d has no kernel to difference against", c.ID))
	}
	x0, y0, w, h := c.Template.Bounds()
	conv := imaging.NewPlane(x0, y0, w, h)
	imaging.Convolve(conv, c.Template, k, false)
	diff := imaging.NewPlane(x0, y0, w, h)
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			diff.Set(col, row, c.Science.At(col, row)-(conv.At(col, row)+background))
		}
	}
	return diff, nil
}

// KernelSum returns the current kernel's pixel sum, rendered at the
// candidate's own center (zero shift for a fixed/linear-combination
// kernel).
func (c *KernelCandidate) KernelSum() float64 {
	if c.Kernel == nil {
		return 0
	}
	var sum float64
	for _, v := range c.Kernel.Render(0, 0) {
		sum += v
	}
	return sum
}
