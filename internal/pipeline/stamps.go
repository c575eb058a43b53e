// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package pipeline composes the full driver loop of spec.md §4.J: stamp
// extraction, the per-iteration visitor sequence, and the spatial solve.
package pipeline

import (
	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// ExtractCandidates runs spec.md §4.C: detect footprints on the
// template at a chosen threshold, filter and grow them, and lower the
// threshold (down to detThresholdMin) until at least minCleanFp survive.
// Fails with a NoCandidates error if none remain even at the floor.
func ExtractCandidates(template, templateVar, science, scienceVar *imaging.Plane, templateMask, scienceMask *imaging.MaskBitPlane, cfg *types.Config) ([]*candidate.KernelCandidate, error) {
	tx0, ty0, tw, th := template.Bounds()
	grow := imaging.GrowPixels(cfg.Stamp.FpGrowKsize, cfg.Basis.KernelCols, cfg.Basis.KernelRows)

	cur := cfg.Stamp.DetThreshold
	var grown []imaging.Footprint
	for {
		thresh := effectiveThreshold(template, cur, cfg.Stamp.DetThresholdType)
		fps := imaging.DetectFootprints(template, thresh)
		grown = imaging.GrowAndFilter(fps, grow, cfg.Stamp.FpNpixMin, cfg.Stamp.FpNpixMax,
			tx0, ty0, tw, th, templateMask, scienceMask, types.MaskBad)
		if len(grown) >= cfg.Stamp.MinCleanFp || cur <= cfg.Stamp.DetThresholdMin {
			break
		}
		next := cur * cfg.Stamp.DetThresholdScaling
		if next < cfg.Stamp.DetThresholdMin {
			next = cfg.Stamp.DetThresholdMin
		}
		if next == cur {
			break
		}
		cur = next
	}
	if len(grown) == 0 {
		return nil, types.NewNoCandidatesError("stamp extractor found no clean footprints down to detThresholdMin")
	}

	candidates := make([]*candidate.KernelCandidate, len(grown))
	for i, fp := range grown {
		tStamp := template.SubPlane(fp.X0, fp.Y0, fp.W, fp.H)
		tVar := templateVar.SubPlane(fp.X0, fp.Y0, fp.W, fp.H)
		sStamp := science.SubPlane(fp.X0, fp.Y0, fp.W, fp.H)
		sVar := scienceVar.SubPlane(fp.X0, fp.Y0, fp.W, fp.H)
		candidates[i] = candidate.New(i, fp.CenterX, fp.CenterY, tStamp, tVar, sStamp, sVar, fp.Rating)
	}
	return candidates, nil
}

// effectiveThreshold converts the configured detThreshold value into raw
// intensity units per spec.md §6's detThresholdType key.
func effectiveThreshold(template *imaging.Plane, value float64, kind types.DetThresholdType) float64 {
	switch kind {
	case types.DetThresholdStdev:
		mean, std := clippedStats(template)
		return mean + value*std
	case types.DetThresholdVariance:
		mean, std := clippedStats(template)
		return mean + value*std*std
	default:
		return value
	}
}

func clippedStats(p *imaging.Plane) (mean, stddev float64) {
	x0, y0, w, h := p.Bounds()
	values := make([]float64, 0, w*h)
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			values = append(values, p.At(col, row))
		}
	}
	return imaging.ClippedMeanStdDev(values, 3.0, 5)
}
