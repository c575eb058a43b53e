// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package visitors

import (
	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/spatial"
)

// BuildSpatialKernelVisitor implements spec.md §4.G.4: fold every GOOD
// candidate's (M, B) into the global spatial accumulator.
type BuildSpatialKernelVisitor struct {
	Accumulator *spatial.Accumulator
	NProcessed  int
}

func (v *BuildSpatialKernelVisitor) ProcessCandidate(c *candidate.KernelCandidate) error {
	if c.Status() != candidate.StatusGood {
		return nil
	}
	if err := v.Accumulator.Add(c); err != nil {
		return err
	}
	v.NProcessed++
	return nil
}

func (v *BuildSpatialKernelVisitor) Reset() {
	v.NProcessed = 0
}
