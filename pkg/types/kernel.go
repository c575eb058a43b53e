// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package types

import "math"

// Kernel is a callable convolution operator that can be rendered to an
// Image at any sub-pixel offset. Width/height are always odd; ctrX/ctrY
// mark the pixel that sits at the kernel's nominal center.
type Kernel interface {
	Dims() (width, height, ctrX, ctrY int)
	// Render writes the kernel image, shifted by the sub-pixel offset
	// (dx,dy) in [-0.5,0.5), into a width*height row-major buffer.
	Render(dx, dy float64) []float64
}

// FixedKernel is a Kernel backed by a fixed image.
type FixedKernel struct {
	Width, Height, CtrX, CtrY int
	Pixels                    []float64 // row-major, length Width*Height
}

// NewFixedKernel builds a FixedKernel from a row-major pixel buffer.
func NewFixedKernel(width, height, ctrX, ctrY int, pixels []float64) *FixedKernel {
	return &FixedKernel{Width: width, Height: height, CtrX: ctrX, CtrY: ctrY, Pixels: pixels}
}

// Dims implements Kernel.
func (k *FixedKernel) Dims() (width, height, ctrX, ctrY int) {
	return k.Width, k.Height, k.CtrX, k.CtrY
}

// Render implements Kernel. FixedKernel ignores sub-pixel shifting and
// returns a copy of its pixels — callers that need true sub-pixel
// resampling should use GaussianKernel.
func (k *FixedKernel) Render(dx, dy float64) []float64 {
	out := make([]float64, len(k.Pixels))
	copy(out, k.Pixels)
	return out
}

// Sum returns the sum of the kernel's pixel values.
func (k *FixedKernel) Sum() float64 {
	var s float64
	for _, v := range k.Pixels {
		s += v
	}
	return s
}

// DeltaFunctionKernel is 1 at pixel (i,j) and 0 elsewhere.
type DeltaFunctionKernel struct {
	Width, Height, CtrX, CtrY int
	I, J                      int
}

// NewDeltaFunctionKernel builds a delta-function kernel with the
// impulse at (i,j) in a width x height grid centered at (ctrX,ctrY).
func NewDeltaFunctionKernel(width, height, ctrX, ctrY, i, j int) *DeltaFunctionKernel {
	return &DeltaFunctionKernel{Width: width, Height: height, CtrX: ctrX, CtrY: ctrY, I: i, J: j}
}

// Dims implements Kernel.
func (k *DeltaFunctionKernel) Dims() (width, height, ctrX, ctrY int) {
	return k.Width, k.Height, k.CtrX, k.CtrY
}

// Render implements Kernel.
func (k *DeltaFunctionKernel) Render(dx, dy float64) []float64 {
	out := make([]float64, k.Width*k.Height)
	out[k.J*k.Width+k.I] = 1.0
	return out
}

// GaussianKernel is an analytic 2-D Gaussian kernel.
type GaussianKernel struct {
	Width, Height, CtrX, CtrY int
	SigmaX, SigmaY            float64
}

// NewGaussianKernel builds an analytic Gaussian kernel of the given size
// and widths, centered on the grid.
func NewGaussianKernel(width, height int, sigmaX, sigmaY float64) *GaussianKernel {
	return &GaussianKernel{
		Width: width, Height: height,
		CtrX: width / 2, CtrY: height / 2,
		SigmaX: sigmaX, SigmaY: sigmaY,
	}
}

// Dims implements Kernel.
func (k *GaussianKernel) Dims() (width, height, ctrX, ctrY int) {
	return k.Width, k.Height, k.CtrX, k.CtrY
}

// Render implements Kernel, evaluating the Gaussian at the shifted grid.
func (k *GaussianKernel) Render(dx, dy float64) []float64 {
	out := make([]float64, k.Width*k.Height)
	var sum float64
	for j := 0; j < k.Height; j++ {
		y := float64(j-k.CtrY) - dy
		for i := 0; i < k.Width; i++ {
			x := float64(i-k.CtrX) - dx
			v := math.Exp(-0.5*(x*x/(k.SigmaX*k.SigmaX)+y*y/(k.SigmaY*k.SigmaY)))
			out[j*k.Width+i] = v
			sum += v
		}
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}

// LinearCombinationKernel is K = sum_i coeff_i * basis_i.
type LinearCombinationKernel struct {
	Basis  []Kernel
	Coeffs []float64
}

// NewLinearCombinationKernel builds a kernel as a linear combination of a
// fixed basis with the given coefficients (len(coeffs) must equal
// len(basis)).
func NewLinearCombinationKernel(basis []Kernel, coeffs []float64) *LinearCombinationKernel {
	return &LinearCombinationKernel{Basis: basis, Coeffs: coeffs}
}

// Dims implements Kernel, taking dimensions from the first basis kernel.
func (k *LinearCombinationKernel) Dims() (width, height, ctrX, ctrY int) {
	if len(k.Basis) == 0 {
		return 0, 0, 0, 0
	}
	return k.Basis[0].Dims()
}

// Render implements Kernel by summing the rendered basis images scaled
// by their coefficients.
func (k *LinearCombinationKernel) Render(dx, dy float64) []float64 {
	if len(k.Basis) == 0 {
		return nil
	}
	w, h, _, _ := k.Basis[0].Dims()
	out := make([]float64, w*h)
	for i, b := range k.Basis {
		img := b.Render(dx, dy)
		c := k.Coeffs[i]
		for p, v := range img {
			out[p] += c * v
		}
	}
	return out
}

// Sum returns the sum of the rendered (unshifted) kernel pixels.
func (k *LinearCombinationKernel) Sum() float64 {
	img := k.Render(0, 0)
	var s float64
	for _, v := range img {
		s += v
	}
	return s
}

// SpatiallyVaryingKernel is a LinearCombinationKernel whose per-basis
// coefficients are themselves spatial functions of image position,
// evaluated on demand via At.
type SpatiallyVaryingKernel struct {
	Basis           []Kernel
	SpatialCoeffs   []*SpatialFunction // one per basis image
	ConstantFirst   bool               // if true, SpatialCoeffs[0] is a constant (NTerms()==1)
}

// NewSpatiallyVaryingKernel builds a spatially varying kernel from a
// basis and one spatial function per basis image.
func NewSpatiallyVaryingKernel(basis []Kernel, coeffs []*SpatialFunction, constantFirst bool) *SpatiallyVaryingKernel {
	return &SpatiallyVaryingKernel{Basis: basis, SpatialCoeffs: coeffs, ConstantFirst: constantFirst}
}

// At evaluates the spatial functions at (x,y) and returns the resulting
// fixed LinearCombinationKernel.
func (k *SpatiallyVaryingKernel) At(x, y float64) *LinearCombinationKernel {
	coeffs := make([]float64, len(k.Basis))
	for i, f := range k.SpatialCoeffs {
		coeffs[i] = f.Eval(x, y)
	}
	return NewLinearCombinationKernel(k.Basis, coeffs)
}

// Dims implements Kernel, taking dimensions from the first basis kernel.
func (k *SpatiallyVaryingKernel) Dims() (width, height, ctrX, ctrY int) {
	if len(k.Basis) == 0 {
		return 0, 0, 0, 0
	}
	return k.Basis[0].Dims()
}
