// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package imaging

import "testing"

func TestDetectFootprintsFindsIsolatedBlob(t *testing.T) {
	p := NewPlane(0, 0, 20, 20)
	for row := 8; row <= 11; row++ {
		for col := 8; col <= 11; col++ {
			p.Set(col, row, 100.0)
		}
	}
	fps := DetectFootprints(p, 50.0)
	if len(fps) != 1 {
		t.Fatalf("len(fps) = %d, want 1", len(fps))
	}
	fp := fps[0]
	if fp.NPix != 16 {
		t.Errorf("NPix = %d, want 16", fp.NPix)
	}
	if fp.X0 != 8 || fp.Y0 != 8 || fp.W != 4 || fp.H != 4 {
		t.Errorf("bbox = %d,%d,%d,%d, want 8,8,4,4", fp.X0, fp.Y0, fp.W, fp.H)
	}
}

func TestDetectFootprintsSeparatesDisjointBlobs(t *testing.T) {
	p := NewPlane(0, 0, 20, 20)
	p.Set(2, 2, 100.0)
	p.Set(15, 15, 100.0)
	fps := DetectFootprints(p, 50.0)
	if len(fps) != 2 {
		t.Fatalf("len(fps) = %d, want 2", len(fps))
	}
}

func TestGrowAndFilterRejectsOutOfRange(t *testing.T) {
	fps := []Footprint{
		{X0: 5, Y0: 5, W: 2, H: 2, NPix: 1},   // too small
		{X0: 5, Y0: 5, W: 2, H: 2, NPix: 1000}, // too large
		{X0: 5, Y0: 5, W: 2, H: 2, NPix: 10},  // ok
	}
	out := GrowAndFilter(fps, 0, 5, 100, 0, 0, 20, 20, nil, nil, 0)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].NPix != 10 {
		t.Errorf("surviving footprint NPix = %d, want 10", out[0].NPix)
	}
}

func TestGrowAndFilterRejectsOffImage(t *testing.T) {
	fps := []Footprint{{X0: 0, Y0: 0, W: 2, H: 2, NPix: 10}}
	out := GrowAndFilter(fps, 5, 1, 100, 0, 0, 20, 20, nil, nil, 0)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0 (grown box extends past image edge)", len(out))
	}
}

func TestGrowAndFilterRejectsBadMaskBits(t *testing.T) {
	fps := []Footprint{{X0: 5, Y0: 5, W: 2, H: 2, NPix: 10}}
	badMask := NewMaskBitPlane(0, 0, 20, 20)
	badMask.SetBits(6, 6, 0x8)
	out := GrowAndFilter(fps, 0, 1, 100, 0, 0, 20, 20, badMask, nil, 0x8)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0 (bad bits overlap)", len(out))
	}
}

func TestGrowAndFilterMarksStampCandidate(t *testing.T) {
	fps := []Footprint{{X0: 5, Y0: 5, W: 2, H: 2, NPix: 10}}
	tmask := NewMaskBitPlane(0, 0, 20, 20)
	out := GrowAndFilter(fps, 1, 1, 100, 0, 0, 20, 20, tmask, nil, 0)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if tmask.Bits(5, 5)&maskStampCandidateBit == 0 {
		t.Error("template mask should have MaskStampCandidate bit set within grown region")
	}
}

func TestGrowPixels(t *testing.T) {
	if got := GrowPixels(1.0, 19, 19); got != 19 {
		t.Errorf("GrowPixels(1.0,19,19) = %d, want 19", got)
	}
	if got := GrowPixels(0.5, 10, 20); got != 10 {
		t.Errorf("GrowPixels(0.5,10,20) = %d, want 10", got)
	}
}
