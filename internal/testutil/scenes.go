// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package testutil builds the deterministic synthetic template/science
// scenes used by the end-to-end test scenarios of spec.md §8 (E1, E2,
// E4) and by the CLI's `fit --scene` flag, grounded on the teacher's
// pkg/testutil/helpers.go createTestMatrix-style fixture builders.
package testutil

import (
	"fmt"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Scene bundles the four planes a pipeline run needs: the template and
// science intensity planes plus their per-pixel variance planes.
type Scene struct {
	Template    *imaging.Plane
	TemplateVar *imaging.Plane
	Science     *imaging.Plane
	ScienceVar  *imaging.Plane
}

const (
	defaultSceneWidth  = 128
	defaultSceneHeight = 128
	defaultVariance    = 25.0
)

// BuildScene dispatches on name to one of the three named builders,
// mirroring the `--scene gaussian|identical|gradient` CLI flag.
func BuildScene(name string) (*Scene, error) {
	switch name {
	case "", "gaussian":
		return GaussianScene(defaultSceneWidth, defaultSceneHeight), nil
	case "identical":
		return IdenticalScene(defaultSceneWidth, defaultSceneHeight), nil
	case "gradient":
		return GradientScene(defaultSceneWidth, defaultSceneHeight), nil
	default:
		return nil, types.NewConfigError(fmt.Sprintf("unknown scene %q", name), nil)
	}
}

// GaussianScene builds the spec.md §8 E1 scenario: a star field
// convolved with a fixed, spatially-constant Gaussian PSF plus a
// constant background, matching the template's native resolution.
func GaussianScene(width, height int) *Scene {
	template := imaging.DefaultStarField(width, height).Render()
	science := imaging.ApplyPSFAndBackground(template, 2.0, 2.0, 120.0)
	return &Scene{
		Template:    template,
		TemplateVar: imaging.ConstantVariancePlane(template, defaultVariance),
		Science:     science,
		ScienceVar:  imaging.ConstantVariancePlane(science, defaultVariance),
	}
}

// IdenticalScene builds the spec.md §8 E2 scenario: science is template
// under an identical PSF (no convolution needed), only scaled and
// shifted — the fitted kernel should collapse to a near-delta function
// with a near-constant background.
func IdenticalScene(width, height int) *Scene {
	template := imaging.DefaultStarField(width, height).Render()
	science := imaging.ScaleAndShift(template, 1.05, 30.0)
	return &Scene{
		Template:    template,
		TemplateVar: imaging.ConstantVariancePlane(template, defaultVariance),
		Science:     science,
		ScienceVar:  imaging.ConstantVariancePlane(science, defaultVariance),
	}
}

// GradientScene builds the spec.md §8 E4 scenario: the PSF width varies
// across the field (sharper in the upper-left, broader in the
// lower-right), exercising the spatial kernel solve rather than a
// single constant kernel. Built by convolving each quadrant of the
// template with its own Gaussian width and stitching the quadrants back
// together, since internal/imaging's Convolve is a single-PSF operator.
func GradientScene(width, height int) *Scene {
	template := imaging.DefaultStarField(width, height).Render()
	science := imaging.NewPlane(0, 0, width, height)

	halfW, halfH := width/2, height/2
	quadrants := []struct {
		x0, y0, w, h int
		sigma        float64
	}{
		{0, 0, halfW, halfH, 1.0},
		{halfW, 0, width - halfW, halfH, 1.6},
		{0, halfH, halfW, height - halfH, 2.2},
		{halfW, halfH, width - halfW, height - halfH, 2.8},
	}
	for _, q := range quadrants {
		stamp := template.SubPlane(q.x0, q.y0, q.w, q.h)
		convolved := imaging.ApplyPSFAndBackground(stamp, q.sigma, q.sigma, 80.0)
		for row := q.y0; row < q.y0+q.h; row++ {
			for col := q.x0; col < q.x0+q.w; col++ {
				science.Set(col, row, convolved.At(col, row))
			}
		}
	}

	return &Scene{
		Template:    template,
		TemplateVar: imaging.ConstantVariancePlane(template, defaultVariance),
		Science:     science,
		ScienceVar:  imaging.ConstantVariancePlane(science, defaultVariance),
	}
}
