// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package pipeline

import (
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func blankScene(w, h int) (template, templateVar, science, scienceVar *imaging.Plane) {
	template = imaging.NewPlane(0, 0, w, h)
	science = imaging.NewPlane(0, 0, w, h)
	templateVar = imaging.ConstantVariancePlane(template, 25.0)
	scienceVar = imaging.ConstantVariancePlane(template, 25.0)
	return
}

func TestExtractCandidatesFindsSources(t *testing.T) {
	template, templateVar, science, scienceVar := blankScene(60, 60)
	for _, c := range [][2]int{{15, 15}, {45, 45}} {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				template.Set(c[0]+dx, c[1]+dy, 200.0)
				science.Set(c[0]+dx, c[1]+dy, 200.0)
			}
		}
	}
	cfg := types.DefaultConfig()
	cfg.Stamp.DetThreshold = 100.0
	cfg.Stamp.DetThresholdType = types.DetThresholdValue
	cfg.Stamp.DetThresholdMin = 100.0
	cfg.Stamp.FpNpixMin = 1
	cfg.Stamp.FpGrowKsize = 0
	cfg.Stamp.MinCleanFp = 1

	cands, err := ExtractCandidates(template, templateVar, science, scienceVar, nil, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 2 {
		t.Fatalf("len(cands) = %d, want 2", len(cands))
	}
}

func TestExtractCandidatesErrorsWhenNoneSurvive(t *testing.T) {
	template, templateVar, science, scienceVar := blankScene(30, 30)
	cfg := types.DefaultConfig()
	cfg.Stamp.DetThreshold = 1e6
	cfg.Stamp.DetThresholdType = types.DetThresholdValue
	cfg.Stamp.DetThresholdMin = 1e6
	cfg.Stamp.MinCleanFp = 1

	if _, err := ExtractCandidates(template, templateVar, science, scienceVar, nil, nil, cfg); err == nil {
		t.Fatal("expected NoCandidates error when nothing crosses threshold")
	}
}

func TestEffectiveThresholdValueModePassesThrough(t *testing.T) {
	p := imaging.NewPlane(0, 0, 5, 5)
	if got := effectiveThreshold(p, 42.0, types.DetThresholdValue); got != 42.0 {
		t.Errorf("effectiveThreshold(value) = %v, want 42", got)
	}
}

func TestEffectiveThresholdStdevModeUsesCippedStats(t *testing.T) {
	p := imaging.NewPlane(0, 0, 10, 10)
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			p.Set(col, row, 50.0)
		}
	}
	got := effectiveThreshold(p, 2.0, types.DetThresholdStdev)
	if got != 50.0 { // stddev of a constant plane is 0.
		t.Errorf("effectiveThreshold(stdev) on constant plane = %v, want 50", got)
	}
}
