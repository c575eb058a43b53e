// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package visitors

import (
	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/pca"
)

// KernelPcaVisitor implements spec.md §4.G.3: collect each GOOD
// candidate's kernel image, normalized to unit sum, into an ImagePca
// collector with equal weight.
type KernelPcaVisitor struct {
	Collector *pca.ImagePca
}

func NewKernelPcaVisitor(width, height int) *KernelPcaVisitor {
	return &KernelPcaVisitor{Collector: pca.New(width, height)}
}

func (v *KernelPcaVisitor) ProcessCandidate(c *candidate.KernelCandidate) error {
	if c.Status() != candidate.StatusGood || c.Kernel == nil {
		return nil
	}
	img := c.Kernel.Render(0, 0)
	var sum float64
	for _, p := range img {
		sum += p
	}
	if sum != 0 {
		for i := range img {
			img[i] /= sum
		}
	}
	return v.Collector.Add(img)
}
