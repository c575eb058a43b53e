// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package imaging

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// StarFieldTemplate is a deterministic synthetic template image: a flat
// sky plus a fixed, non-random arrangement of point-like Gaussian
// sources, used to build the end-to-end test scenes of spec.md §8
// (E1-E4). Positions and fluxes are fixed so tests are reproducible
// without seeding a PRNG.
type StarFieldTemplate struct {
	Width, Height int
	Sky           float64
	SourceSigma   float64
	Positions     [][2]float64
	Fluxes        []float64
}

// DefaultStarField lays out a deterministic grid of point sources across
// a width x height field.
func DefaultStarField(width, height int) *StarFieldTemplate {
	var positions [][2]float64
	var fluxes []float64
	rows, cols := 4, 4
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			x := float64(c) * float64(width) / float64(cols+1)
			y := float64(r) * float64(height) / float64(rows+1)
			positions = append(positions, [2]float64{x, y})
			fluxes = append(fluxes, 500.0+100.0*float64(r*cols+c))
		}
	}
	return &StarFieldTemplate{
		Width: width, Height: height, Sky: 50.0, SourceSigma: 1.2,
		Positions: positions, Fluxes: fluxes,
	}
}

// Render draws the star field into a noise-free Plane of the given size,
// origin (0,0).
func (s *StarFieldTemplate) Render() *Plane {
	p := NewPlane(0, 0, s.Width, s.Height)
	dist := distuv.Normal{Mu: 0, Sigma: s.SourceSigma}
	norm := dist.Prob(0) * dist.Prob(0) // peak of the separable 2D gaussian
	for row := 0; row < s.Height; row++ {
		for col := 0; col < s.Width; col++ {
			v := s.Sky
			for i, pos := range s.Positions {
				dx := float64(col) - pos[0]
				dy := float64(row) - pos[1]
				g := dist.Prob(dx) * dist.Prob(dy) / norm
				v += s.Fluxes[i] * g
			}
			p.Set(col, row, v)
		}
	}
	return p
}

// ApplyPSFAndBackground convolves src with an analytic Gaussian of the
// given widths and adds a constant background, producing the "science"
// half of an end-to-end scene (spec.md §8 E1).
func ApplyPSFAndBackground(src *Plane, sigmaX, sigmaY, background float64) *Plane {
	size := int(math.Ceil(8*math.Max(sigmaX, sigmaY))) | 1
	if size < 7 {
		size = 7
	}
	k := types.NewGaussianKernel(size, size, sigmaX, sigmaY)
	x0, y0, w, h := src.Bounds()
	out := NewPlane(x0, y0, w, h)
	Convolve(out, src, k, true)
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			out.Set(col, row, out.At(col, row)+background)
		}
	}
	return out
}

// ScaleAndShift returns dst = src*scale + shift, used for the E2
// identical-PSF scaled/shifted scenario.
func ScaleAndShift(src *Plane, scale, shift float64) *Plane {
	x0, y0, w, h := src.Bounds()
	out := NewPlane(x0, y0, w, h)
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			out.Set(col, row, src.At(col, row)*scale+shift)
		}
	}
	return out
}

// ConstantVariancePlane returns a Plane filled with a constant value, the
// same shape as ref, useful as a variance plane for synthetic scenes.
func ConstantVariancePlane(ref *Plane, value float64) *Plane {
	x0, y0, w, h := ref.Bounds()
	out := NewPlane(x0, y0, w, h)
	for i := range out.data {
		out.data[i] = value
	}
	return out
}
