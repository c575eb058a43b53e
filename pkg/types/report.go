// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package types

// FitReport is a JSON-marshallable snapshot of one candidate's fit
// diagnostics at pipeline completion.
type FitReport struct {
	ID           int     `json:"id"`
	CenterX      float64 `json:"centerX"`
	CenterY      float64 `json:"centerY"`
	Rating       float64 `json:"rating"`
	KernelSum    float64 `json:"kernelSum"`
	Background   float64 `json:"background"`
	Chi2         float64 `json:"chi2"`
	Status       string  `json:"status"`
	SolverMethod string  `json:"solverMethod"`

	// Debug artifacts (spec.md §6: "in debug mode, per-candidate rendered
	// kernel images and difference images"), populated only when
	// DriverConfig.Debug is set.
	KernelImage  []float64 `json:"kernelImage,omitempty"`
	KernelWidth  int       `json:"kernelWidth,omitempty"`
	KernelHeight int       `json:"kernelHeight,omitempty"`
	DiffImage    []float64 `json:"diffImage,omitempty"`
	DiffWidth    int       `json:"diffWidth,omitempty"`
	DiffHeight   int       `json:"diffHeight,omitempty"`
}

// PipelineReport is the produced artifact of a full driver run
// (spec.md §4.J / §6 "Produced artifacts").
type PipelineReport struct {
	Iterations           int     `json:"iterations"`
	RejectedPerIteration []int   `json:"rejectedPerIteration"`
	NKernelTerms         int     `json:"nKernelTerms"`
	NBackgroundTerms     int     `json:"nBackgroundTerms"`
	UsedPcaBasis         bool    `json:"usedPcaBasis"`
	SpatialSolverMethod  string  `json:"spatialSolverMethod"`
	Candidates           []FitReport `json:"candidates"`
}
