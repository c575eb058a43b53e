// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package types

// Image is the minimal 2-D pixel-access contract consumed by the solver.
// Implementations carry an integer origin (x0,y0) so that sub-images
// ("stamps") windowed out of a larger image keep their absolute pixel
// coordinates; (col,row) below are always absolute image coordinates, not
// offsets from the origin.
type Image interface {
	// Bounds returns the origin and size of the image.
	Bounds() (x0, y0, width, height int)
	// At returns the pixel value at absolute coordinates (col,row).
	At(col, row int) float64
	// Set assigns the pixel value at absolute coordinates (col,row).
	Set(col, row int, v float64)
}

// MaskPlane is a bit-per-pixel companion plane. Bit meanings are assigned
// by the caller; the extractor reserves "diffimStampCandidate" and
// "diffimStampUsed" (spec.md §9).
type MaskPlane interface {
	Bounds() (x0, y0, width, height int)
	Bits(col, row int) uint32
	SetBits(col, row int, bits uint32)
	OrBits(col, row int, bits uint32)
	ClearBits(col, row int, bits uint32)
	// AnySet reports whether any of the given bits is set anywhere within
	// the rectangle [x0,x0+w) x [y0,y0+h).
	AnySet(x0, y0, w, h int, bits uint32) bool
}

// MaskedImage couples an intensity plane, a variance plane, and a mask
// plane over the same footprint.
type MaskedImage interface {
	Intensity() Image
	Variance() Image
	Mask() MaskPlane
}

// Mask bit reservations (spec.md §9).
const (
	MaskStampCandidate uint32 = 1 << iota
	MaskStampUsed
	MaskBad
)
