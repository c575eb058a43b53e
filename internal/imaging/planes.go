// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package imaging provides a minimal in-memory implementation of the
// consumed interfaces of spec.md §6 — Image/MaskedImage planes, discrete
// convolution, threshold-based footprint detection, and clipped
// statistics — so the solver in internal/solver, internal/candidate, and
// internal/pipeline is runnable and testable without a host FITS stack.
package imaging

import (
	"fmt"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Plane is a dense row-major float64 image with an integer origin.
// It implements types.Image.
type Plane struct {
	x0, y0        int
	width, height int
	data          []float64
}

// NewPlane allocates a zeroed plane of the given size at the given origin.
func NewPlane(x0, y0, width, height int) *Plane {
	return &Plane{x0: x0, y0: y0, width: width, height: height, data: make([]float64, width*height)}
}

// NewPlaneFromData wraps a pre-filled row-major buffer as a Plane.
// len(data) must equal width*height.
func NewPlaneFromData(x0, y0, width, height int, data []float64) *Plane {
	if len(data) != width*height {
		panic(fmt.Sprintf("imaging: data length %d != %d*%d", len(data), width, height))
	}
	return &Plane{x0: x0, y0: y0, width: width, height: height, data: data}
}

// Bounds implements types.Image.
func (p *Plane) Bounds() (x0, y0, width, height int) { return p.x0, p.y0, p.width, p.height }

func (p *Plane) index(col, row int) int {
	i, j := col-p.x0, row-p.y0
	if i < 0 || i >= p.width || j < 0 || j >= p.height {
		panic(fmt.Sprintf("imaging: (%d,%d) out of bounds for plane origin (%d,%d) size %dx%d", col, row, p.x0, p.y0, p.width, p.height))
	}
	return j*p.width + i
}

// At implements types.Image.
func (p *Plane) At(col, row int) float64 { return p.data[p.index(col, row)] }

// Set implements types.Image.
func (p *Plane) Set(col, row int, v float64) { p.data[p.index(col, row)] = v }

// Data returns the underlying row-major buffer (no copy).
func (p *Plane) Data() []float64 { return p.data }

// Contains reports whether (col,row) lies within the plane.
func (p *Plane) Contains(col, row int) bool {
	i, j := col-p.x0, row-p.y0
	return i >= 0 && i < p.width && j >= 0 && j < p.height
}

// SubPlane extracts the rectangle [x0,x0+w) x [y0,y0+h) as a new Plane.
// Fails (panics) if the rectangle is not fully contained.
func (p *Plane) SubPlane(x0, y0, w, h int) *Plane {
	out := NewPlane(x0, y0, w, h)
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			out.Set(col, row, p.At(col, row))
		}
	}
	return out
}

var _ types.Image = (*Plane)(nil)

// MaskBitPlane is a dense row-major uint32 bitmask plane implementing
// types.MaskPlane.
type MaskBitPlane struct {
	x0, y0        int
	width, height int
	data          []uint32
}

// NewMaskBitPlane allocates a zeroed mask plane.
func NewMaskBitPlane(x0, y0, width, height int) *MaskBitPlane {
	return &MaskBitPlane{x0: x0, y0: y0, width: width, height: height, data: make([]uint32, width*height)}
}

// Bounds implements types.MaskPlane.
func (m *MaskBitPlane) Bounds() (x0, y0, width, height int) { return m.x0, m.y0, m.width, m.height }

func (m *MaskBitPlane) index(col, row int) int {
	i, j := col-m.x0, row-m.y0
	if i < 0 || i >= m.width || j < 0 || j >= m.height {
		panic(fmt.Sprintf("imaging: mask (%d,%d) out of bounds", col, row))
	}
	return j*m.width + i
}

// Bits implements types.MaskPlane.
func (m *MaskBitPlane) Bits(col, row int) uint32 { return m.data[m.index(col, row)] }

// SetBits implements types.MaskPlane.
func (m *MaskBitPlane) SetBits(col, row int, bits uint32) { m.data[m.index(col, row)] = bits }

// OrBits implements types.MaskPlane.
func (m *MaskBitPlane) OrBits(col, row int, bits uint32) {
	idx := m.index(col, row)
	m.data[idx] |= bits
}

// ClearBits implements types.MaskPlane.
func (m *MaskBitPlane) ClearBits(col, row int, bits uint32) {
	idx := m.index(col, row)
	m.data[idx] &^= bits
}

// AnySet implements types.MaskPlane.
func (m *MaskBitPlane) AnySet(x0, y0, w, h int, bits uint32) bool {
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			if !m.contains(col, row) {
				continue
			}
			if m.Bits(col, row)&bits != 0 {
				return true
			}
		}
	}
	return false
}

func (m *MaskBitPlane) contains(col, row int) bool {
	i, j := col-m.x0, row-m.y0
	return i >= 0 && i < m.width && j >= 0 && j < m.height
}

var _ types.MaskPlane = (*MaskBitPlane)(nil)

// Masked couples an intensity, variance, and mask plane over the same
// footprint, implementing types.MaskedImage.
type Masked struct {
	intensity *Plane
	variance  *Plane
	mask      *MaskBitPlane
}

// NewMasked builds a Masked image from three co-located planes.
func NewMasked(intensity, variance *Plane, mask *MaskBitPlane) *Masked {
	return &Masked{intensity: intensity, variance: variance, mask: mask}
}

// Intensity implements types.MaskedImage.
func (m *Masked) Intensity() types.Image { return m.intensity }

// Variance implements types.MaskedImage.
func (m *Masked) Variance() types.Image { return m.variance }

// Mask implements types.MaskedImage.
func (m *Masked) Mask() types.MaskPlane { return m.mask }

// IntensityPlane returns the concrete intensity Plane (for internal callers
// that need direct pixel access without the interface's bounds checks).
func (m *Masked) IntensityPlane() *Plane { return m.intensity }

// VariancePlane returns the concrete variance Plane.
func (m *Masked) VariancePlane() *Plane { return m.variance }

// MaskPlaneOf returns the concrete mask plane.
func (m *Masked) MaskPlaneOf() *MaskBitPlane { return m.mask }

var _ types.MaskedImage = (*Masked)(nil)
