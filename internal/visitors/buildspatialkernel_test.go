// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package visitors

import (
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/internal/spatial"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func basis0() types.SpatialBasis {
	b, _ := types.NewSpatialBasis(types.SpatialPolynomial, 0, types.BBox{})
	return b
}

func TestBuildSpatialKernelVisitorSkipsNonGood(t *testing.T) {
	acc, err := spatial.NewAccumulator(1, basis0(), basis0(), false)
	if err != nil {
		t.Fatal(err)
	}
	v := &BuildSpatialKernelVisitor{Accumulator: acc}
	c := goodCandidate(1)
	c.MarkBad()
	if err := v.ProcessCandidate(c); err != nil {
		t.Fatal(err)
	}
	if v.NProcessed != 0 {
		t.Errorf("NProcessed = %d, want 0 for a BAD candidate", v.NProcessed)
	}
}

func TestBuildSpatialKernelVisitorProcessesGood(t *testing.T) {
	acc, err := spatial.NewAccumulator(9, basis0(), basis0(), false)
	if err != nil {
		t.Fatal(err)
	}
	v := &BuildSpatialKernelVisitor{Accumulator: acc}
	c := goodCandidate(1)
	sv := &BuildSingleKernelVisitor{Basis: flatBasis(), Config: types.DefaultConfig(), SetCandidateKernel: true}
	if err := sv.ProcessCandidate(c); err != nil {
		t.Fatal(err)
	}
	if err := v.ProcessCandidate(c); err != nil {
		t.Fatal(err)
	}
	if v.NProcessed != 1 {
		t.Errorf("NProcessed = %d, want 1", v.NProcessed)
	}
}

func TestBuildSpatialKernelVisitorReset(t *testing.T) {
	acc, _ := spatial.NewAccumulator(1, basis0(), basis0(), false)
	v := &BuildSpatialKernelVisitor{Accumulator: acc, NProcessed: 5}
	v.Reset()
	if v.NProcessed != 0 {
		t.Error("Reset() should zero NProcessed")
	}
}
