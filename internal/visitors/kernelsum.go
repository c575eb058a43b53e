// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package visitors implements the cell-grid visitors of spec.md §4.G,
// the control plane that expresses iteration over the spatial cell grid
// without the caller knowing the grid's structure.
package visitors

import (
	"math"

	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
)

// KernelSumMode selects a KernelSumVisitor's pass.
type KernelSumMode int

const (
	// KernelSumAggregate collects every GOOD candidate's kernel sum.
	KernelSumAggregate KernelSumMode = iota
	// KernelSumReject marks BAD any candidate whose kernel sum deviates
	// from the aggregated mean by more than MaxKsumSigma standard
	// deviations.
	KernelSumReject
)

// KernelSumVisitor implements spec.md §4.G.1.
type KernelSumVisitor struct {
	Mode         KernelSumMode
	MaxKsumSigma float64
	ClipEnabled  bool

	sums        []float64
	Mean        float64
	Stddev      float64
}

// NewKernelSumVisitor constructs an aggregation-mode visitor; flip Mode
// to KernelSumReject (after calling Finalize) for the rejection pass.
func NewKernelSumVisitor(maxKsumSigma float64, clipEnabled bool) *KernelSumVisitor {
	return &KernelSumVisitor{Mode: KernelSumAggregate, MaxKsumSigma: maxKsumSigma, ClipEnabled: clipEnabled}
}

func (v *KernelSumVisitor) ProcessCandidate(c *candidate.KernelCandidate) error {
	if c.Status() != candidate.StatusGood {
		return nil
	}
	switch v.Mode {
	case KernelSumAggregate:
		v.sums = append(v.sums, c.KernelSum())
	case KernelSumReject:
		if !v.ClipEnabled || v.Stddev <= 0 {
			return nil
		}
		if math.Abs(c.KernelSum()-v.Mean) > v.MaxKsumSigma*v.Stddev {
			c.MarkBad()
		}
	}
	return nil
}

// Reset clears the aggregated sums for a fresh pass.
func (v *KernelSumVisitor) Reset() {
	v.sums = nil
	v.Mean = 0
	v.Stddev = 0
}

// Finalize computes the clipped mean/stddev of the aggregated kernel
// sums (spec.md §4.G.1: "After aggregation, compute clipped mean and
// stddev"), ready for a subsequent KernelSumReject pass.
func (v *KernelSumVisitor) Finalize() {
	v.Mean, v.Stddev = imaging.ClippedMeanStdDev(v.sums, 3.0, 5)
}
