// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/DominiqueFouchez/ip-diffim/internal/basis"
	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/internal/cellgrid"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/internal/regularization"
	"github.com/DominiqueFouchez/ip-diffim/internal/spatial"
	"github.com/DominiqueFouchez/ip-diffim/internal/visitors"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// cellGridDivisions is the fixed cell-grid partitioning used across a
// run. spec.md §4.F leaves the grid's own sizing to the host; this
// module follows the common LSST default of a 3x3 layout.
const cellGridDivisions = 3

// Options configures one driver run.
type Options struct {
	Config  *types.Config
	Workers int // worker-pool size for BuildSingleKernel passes; <1 means 1 (sequential)
}

// Result is the outcome of a complete pipeline run (spec.md §4.J).
type Result struct {
	Spatial *spatial.Solution
	Report  *types.PipelineReport
}

// Run composes the full pipeline driver of spec.md §4.J: stamp
// extraction, the per-iteration visitor sequence (single-kernel build,
// kernel-sum clipping, optional PCA re-basis, spatial assembly and
// solve, spatial assessment), iterating until a pass produces zero
// rejections or maxSpatialIterations is exhausted.
func Run(template, templateVar, science, scienceVar *imaging.Plane, templateMask, scienceMask *imaging.MaskBitPlane, opts Options) (*Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	candidates, err := ExtractCandidates(template, templateVar, science, scienceVar, templateMask, scienceMask, cfg)
	if err != nil {
		return nil, err
	}

	tx0, ty0, tw, th := template.Bounds()
	bbox := types.BBox{X0: float64(tx0), Y0: float64(ty0), X1: float64(tx0 + tw), Y1: float64(ty0 + th)}
	grid, err := cellgrid.New(bbox, cellGridDivisions, cellGridDivisions)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		grid.AddCandidate(c)
	}

	currentBasis, err := initialBasis(cfg)
	if err != nil {
		return nil, err
	}
	constantFirst := cfg.Basis.KernelBasisSet == types.BasisAlardLupton

	var H *mat.Dense
	if cfg.Rejection.UseRegularization {
		H, err = regularization.Build(cfg.Basis.KernelCols, cfg.Basis.KernelRows, regularization.Order(1), regularization.Central, regularization.Wrapped)
		if err != nil {
			return nil, err
		}
	}

	kernelBasis, err := types.NewSpatialBasis(cfg.Spatial.SpatialKernelType, cfg.Spatial.SpatialKernelOrder, cfg.Spatial.BBox)
	if err != nil {
		return nil, err
	}
	bgBasis, err := types.NewSpatialBasis(cfg.Spatial.SpatialBgType, cfg.EffectiveSpatialBgOrder(), cfg.Spatial.BBox)
	if err != nil {
		return nil, err
	}

	var rejectedPerIteration []int
	var spatialSolution *spatial.Solution
	usedPca := false
	iterations := 0

	for iter := 1; iter <= cfg.Driver.MaxSpatialIterations; iter++ {
		iterations = iter

		buildVisitor := &visitors.BuildSingleKernelVisitor{
			Basis: currentBasis, H: H, LambdaScaling: cfg.Rejection.RegularizationScaling,
			Config: cfg, SetCandidateKernel: true,
			ConstantWeighting: cfg.Rejection.ConstantVarianceWeighting,
			IterateOnce:       cfg.Rejection.IterateSingleKernel,
		}
		if err := runUntilStable(grid, buildVisitor, cfg.Driver.NStarPerCell, opts.Workers); err != nil {
			return nil, err
		}

		ksum := visitors.NewKernelSumVisitor(cfg.Rejection.MaxKsumSigma, cfg.Rejection.KernelSumClipping)
		grid.Reset(ksum)
		if err := grid.VisitCandidates(ksum, cfg.Driver.NStarPerCell); err != nil {
			return nil, err
		}
		ksum.Finalize()
		ksum.Mode = visitors.KernelSumReject
		if err := grid.VisitCandidates(ksum, cfg.Driver.NStarPerCell); err != nil {
			return nil, err
		}

		if cfg.Basis.UsePcaForSpatialKernel {
			w, h2, _, _ := currentBasis[0].Dims()
			pcaVisitor := visitors.NewKernelPcaVisitor(w, h2)
			if err := grid.VisitCandidates(pcaVisitor, cfg.Driver.NStarPerCell); err != nil {
				return nil, err
			}
			if pcaVisitor.Collector.Count() > 0 {
				pcaBasis, _, err := pcaVisitor.Collector.Analyze(cfg.Basis.NEigenComponents)
				if err != nil {
					return nil, err
				}
				currentBasis = pcaBasis
				constantFirst = true
				usedPca = true

				rebuildVisitor := &visitors.BuildSingleKernelVisitor{
					Basis: currentBasis, H: nil, LambdaScaling: 0,
					Config: cfg, SetCandidateKernel: false,
					ConstantWeighting: cfg.Rejection.ConstantVarianceWeighting,
					IterateOnce:       false,
				}
				if err := runUntilStable(grid, rebuildVisitor, cfg.Driver.NStarPerCell, opts.Workers); err != nil {
					return nil, err
				}
			}
		}

		accum, err := spatial.NewAccumulator(len(currentBasis), kernelBasis, bgBasis, constantFirst)
		if err != nil {
			return nil, err
		}
		spatialVisitor := &visitors.BuildSpatialKernelVisitor{Accumulator: accum}
		if err := grid.VisitCandidates(spatialVisitor, cfg.Driver.NStarPerCell); err != nil {
			return nil, err
		}
		spatialSolution, err = accum.Solve(currentBasis)
		if err != nil {
			return nil, err
		}

		assess := &visitors.AssessSpatialKernelVisitor{
			SpatialKernel: spatialSolution.Kernel, Background: spatialSolution.Background, Config: cfg,
		}
		if err := grid.VisitCandidates(assess, cfg.Driver.NStarPerCell); err != nil {
			return nil, err
		}
		rejectedPerIteration = append(rejectedPerIteration, assess.NRejected)
		if assess.NRejected == 0 {
			break
		}
	}

	report := &types.PipelineReport{
		Iterations:           iterations,
		RejectedPerIteration: rejectedPerIteration,
		NKernelTerms:         kernelBasis.NTerms(),
		NBackgroundTerms:     bgBasis.NTerms(),
		UsedPcaBasis:         usedPca,
	}
	if spatialSolution != nil {
		report.SpatialSolverMethod = string(spatialSolution.Method)
	}
	for _, c := range grid.Candidates() {
		fr := types.FitReport{
			ID: c.ID, CenterX: c.CenterX, CenterY: c.CenterY, Rating: c.Rating,
			KernelSum: c.KernelSum(), Background: c.Background, Chi2: c.Chi2,
			Status: c.Status().String(), SolverMethod: string(c.Method),
		}
		if cfg.Driver.Debug {
			captureDebugArtifacts(&fr, c, spatialSolution)
		}
		report.Candidates = append(report.Candidates, fr)
	}

	return &Result{Spatial: spatialSolution, Report: report}, nil
}

// runUntilStable repeats a BuildSingleKernel-style pass — using the
// worker pool when opts.Workers > 1 — until a pass rejects no
// previously-viable candidate, implementing spec.md §4.J's
// "repeat: visit BuildSingleKernel; until nRejected == 0".
func runUntilStable(grid *cellgrid.SpatialCellSet, v *visitors.BuildSingleKernelVisitor, maxPerCell, workers int) error {
	for {
		before := countBad(grid)
		var err error
		if workers > 1 {
			err = grid.VisitCandidatesConcurrent(v, maxPerCell, workers)
		} else {
			err = grid.VisitCandidates(v, maxPerCell)
		}
		if err != nil {
			return err
		}
		after := countBad(grid)
		if after == before {
			return nil
		}
	}
}

func countBad(grid *cellgrid.SpatialCellSet) int {
	n := 0
	for _, c := range grid.Candidates() {
		if c.Status() == candidate.StatusBad {
			n++
		}
	}
	return n
}

// captureDebugArtifacts renders the candidate's final kernel (evaluated
// at its own center from the completed spatial solution, falling back
// to the candidate's own single-kernel fit if no spatial solution was
// reached) and the resulting difference image into fr, for
// DriverConfig.Debug's "per-candidate rendered kernel images and
// difference images" artifact.
func captureDebugArtifacts(fr *types.FitReport, c *candidate.KernelCandidate, spatialSolution *spatial.Solution) {
	var k types.Kernel
	var bg float64
	if spatialSolution != nil {
		k = spatialSolution.Kernel.At(c.CenterX, c.CenterY)
		bg = spatialSolution.Background.Eval(c.CenterX, c.CenterY)
	} else {
		k = c.Kernel
		bg = c.Background
	}
	if k == nil {
		return
	}
	kw, kh, _, _ := k.Dims()
	fr.KernelImage = k.Render(0, 0)
	fr.KernelWidth = kw
	fr.KernelHeight = kh

	diff, err := c.DifferenceImage(k, bg)
	if err != nil {
		return
	}
	_, _, dw, dh := diff.Bounds()
	fr.DiffImage = diff.Data()
	fr.DiffWidth = dw
	fr.DiffHeight = dh
}

func initialBasis(cfg *types.Config) ([]types.Kernel, error) {
	switch cfg.Basis.KernelBasisSet {
	case types.BasisDeltaFunction:
		return basis.DeltaFunction(cfg.Basis.KernelCols, cfg.Basis.KernelRows)
	default:
		return basis.AlardLupton(cfg.Basis.AlardLuptonHalfWidth, cfg.Basis.AlardLuptonSigmas, cfg.Basis.AlardLuptonDegrees)
	}
}
