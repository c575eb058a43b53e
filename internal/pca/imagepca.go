// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package pca implements the kernel-image PCA reduction of spec.md §4.H:
// collect a GOOD candidate's normalized kernel images, mean-subtract, and
// eigen-decompose to produce a compact new basis.
package pca

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// ImagePca collects equal-weight kernel images and reduces them to a
// mean image plus a ranked set of eigen-images.
type ImagePca struct {
	width, height int
	images        [][]float64
}

// New creates an empty collector for width x height kernel images.
func New(width, height int) *ImagePca {
	return &ImagePca{width: width, height: height}
}

// Add appends a flattened, unit-sum-normalized kernel image to the
// collection. Fails if its length doesn't match width*height.
func (p *ImagePca) Add(img []float64) error {
	if len(img) != p.width*p.height {
		return types.NewDomainError(fmt.Sprintf("pca image has %d pixels, want %d", len(img), p.width*p.height))
	}
	p.images = append(p.images, append([]float64(nil), img...))
	return nil
}

// Count reports how many images have been added.
func (p *ImagePca) Count() int { return len(p.images) }

// Mean returns the pixel-wise mean of the collected images.
func (p *ImagePca) Mean() []float64 {
	n := p.width * p.height
	mean := make([]float64, n)
	for _, img := range p.images {
		for i, v := range img {
			mean[i] += v
		}
	}
	if len(p.images) > 0 {
		for i := range mean {
			mean[i] /= float64(len(p.images))
		}
	}
	return mean
}

// Analyze mean-subtracts the collection, runs SVD on the residuals to
// obtain ranked eigen-images of the pixel-space covariance, and returns
// the new basis {mean, e1, ..., ek} with k = min(nEigenComponents,
// available) (nEigenComponents <= 0 means all). Each eigen-image is
// rescaled so its more extreme of |min| and |max| equals 1 (spec.md
// §4.H); the mean image is left at its natural amplitude, since it
// carries the basis's overall flux normalization.
func (p *ImagePca) Analyze(nEigenComponents int) ([]types.Kernel, []float64, error) {
	n := len(p.images)
	if n == 0 {
		return nil, nil, types.NewNoCandidatesError("pca collector has no images to analyze")
	}
	m := p.width * p.height
	mean := p.Mean()

	X := mat.NewDense(n, m, nil)
	for i, img := range p.images {
		row := make([]float64, m)
		for j, v := range img {
			row[j] = v - mean[j]
		}
		X.SetRow(i, row)
	}

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, nil, types.NewNumericalError("pca svd factorization failed", map[string]interface{}{"nImages": n, "nPix": m})
	}
	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)

	available := len(values)
	k := available
	if nEigenComponents > 0 && nEigenComponents < available {
		k = nEigenComponents
	}

	basis := make([]types.Kernel, 0, k+1)
	eigenvalues := make([]float64, 0, k)
	ctrX, ctrY := p.width/2, p.height/2
	basis = append(basis, types.NewFixedKernel(p.width, p.height, ctrX, ctrY, mean))

	for i := 0; i < k; i++ {
		img := make([]float64, m)
		for j := 0; j < m; j++ {
			img[j] = v.At(j, i)
		}
		rescaleExtreme(img)
		basis = append(basis, types.NewFixedKernel(p.width, p.height, ctrX, ctrY, img))
		eigenvalues = append(eigenvalues, (values[i]*values[i])/float64(maxInt(n-1, 1)))
	}

	return basis, eigenvalues, nil
}

func rescaleExtreme(img []float64) {
	var min, max float64
	for i, v := range img {
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}
	extreme := math.Abs(min)
	if math.Abs(max) > extreme {
		extreme = math.Abs(max)
	}
	if extreme == 0 {
		return
	}
	for i := range img {
		img[i] /= extreme
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
