// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package imaging

import "math"

// Footprint is a rectangular bounding box around a detected source,
// grown to the stamp size, spec.md §3 "Footprint / Stamp".
type Footprint struct {
	X0, Y0, W, H     int     // grown bounding box, absolute image coords
	NPix             int     // raw detected pixel count, pre-growth
	CenterX, CenterY float64 // centroid of the raw detection
	Rating           float64 // template-image flux within the raw detection
}

// DetectFootprints runs a simple 4-connected flood-fill threshold
// detection over the template plane, the stand-in for the "external
// detection" of spec.md §4.C.
func DetectFootprints(template *Plane, threshold float64) []Footprint {
	x0, y0, w, h := template.Bounds()
	visited := make([]bool, w*h)
	var out []Footprint

	idx := func(col, row int) int { return (row-y0)*w + (col - x0) }

	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			if visited[idx(col, row)] || template.At(col, row) < threshold {
				continue
			}
			// Depth-first flood fill with an explicit stack.
			stack := []([2]int){{col, row}}
			visited[idx(col, row)] = true
			minX, minY, maxX, maxY := col, row, col, row
			var npix int
			var sumX, sumY, flux float64
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p[0], p[1]
				npix++
				v := template.At(px, py)
				sumX += float64(px) * v
				sumY += float64(py) * v
				flux += v
				if px < minX {
					minX = px
				}
				if px > maxX {
					maxX = px
				}
				if py < minY {
					minY = py
				}
				if py > maxY {
					maxY = py
				}
				neighbors := [4][2]int{{px - 1, py}, {px + 1, py}, {px, py - 1}, {px, py + 1}}
				for _, n := range neighbors {
					nx, ny := n[0], n[1]
					if nx < x0 || nx >= x0+w || ny < y0 || ny >= y0+h {
						continue
					}
					ni := idx(nx, ny)
					if visited[ni] || template.At(nx, ny) < threshold {
						continue
					}
					visited[ni] = true
					stack = append(stack, [2]int{nx, ny})
				}
			}
			cx, cy := float64(col), float64(row)
			if flux > 0 {
				cx, cy = sumX/flux, sumY/flux
			}
			out = append(out, Footprint{
				X0: minX, Y0: minY, W: maxX - minX + 1, H: maxY - minY + 1,
				NPix: npix, CenterX: cx, CenterY: cy, Rating: flux,
			})
		}
	}
	return out
}

// GrowAndFilter grows each footprint's bounding box by growPix on every
// side, discards footprints whose pixel count falls outside
// [npixMin,npixMax], whose grown box extends past the image edges, or
// whose grown box touches any set bit of badBits in either mask — and
// marks the surviving footprints' grown region with MaskStampCandidate in
// both masks.
func GrowAndFilter(fps []Footprint, growPix int, npixMin, npixMax int,
	imgX0, imgY0, imgW, imgH int, templateMask, scienceMask *MaskBitPlane, badBits uint32) []Footprint {
	var out []Footprint
	for _, fp := range fps {
		if fp.NPix < npixMin || fp.NPix > npixMax {
			continue
		}
		gx0 := fp.X0 - growPix
		gy0 := fp.Y0 - growPix
		gw := fp.W + 2*growPix
		gh := fp.H + 2*growPix
		if gx0 < imgX0 || gy0 < imgY0 || gx0+gw > imgX0+imgW || gy0+gh > imgY0+imgH {
			continue
		}
		if templateMask != nil && templateMask.AnySet(gx0, gy0, gw, gh, badBits) {
			continue
		}
		if scienceMask != nil && scienceMask.AnySet(gx0, gy0, gw, gh, badBits) {
			continue
		}
		grown := fp
		grown.X0, grown.Y0, grown.W, grown.H = gx0, gy0, gw, gh
		if templateMask != nil {
			markStampCandidate(templateMask, gx0, gy0, gw, gh)
		}
		if scienceMask != nil {
			markStampCandidate(scienceMask, gx0, gy0, gw, gh)
		}
		out = append(out, grown)
	}
	return out
}

func markStampCandidate(m *MaskBitPlane, x0, y0, w, h int) {
	mx0, my0, mw, mh := m.Bounds()
	for row := y0; row < y0+h; row++ {
		if row < my0 || row >= my0+mh {
			continue
		}
		for col := x0; col < x0+w; col++ {
			if col < mx0 || col >= mx0+mw {
				continue
			}
			m.OrBits(col, row, maskStampCandidateBit)
		}
	}
}

const maskStampCandidateBit uint32 = 1

// GrowPixels converts the fpGrowKsize config scaling factor into an
// integer pixel growth, spec.md §4.C: "grow by fpGrowKsize ·
// max(kernelCols, kernelRows) pixels".
func GrowPixels(fpGrowKsize float64, kernelCols, kernelRows int) int {
	maxK := kernelCols
	if kernelRows > maxK {
		maxK = kernelRows
	}
	return int(math.Round(fpGrowKsize * float64(maxK)))
}
