// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package cellgrid implements the spatial cell grid of spec.md §4.F: the
// reference implementation of the "external contract" that lets visitors
// walk candidates without knowing the grid's internal structure.
package cellgrid

import (
	"sort"
	"sync"

	"github.com/DominiqueFouchez/ip-diffim/internal/candidate"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

// Visitor processes one candidate at a time. Implementations mutate the
// candidate (its kernel, background, status, M/B) — spec.md §4.G.
type Visitor interface {
	ProcessCandidate(c *candidate.KernelCandidate) error
}

// Resetter is implemented by visitors that carry accumulated state
// between passes (e.g. KernelSumVisitor's running mean/stddev).
type Resetter interface {
	Reset()
}

// cell holds the candidates whose center falls within its bounds,
// ordered by descending rating — the order visitCandidates walks them
// in, since the best-rated candidate in a cell is tried first.
type cell struct {
	bbox       types.BBox
	candidates []*candidate.KernelCandidate
	cursor     int
}

// SpatialCellSet partitions an image's bounding box into an nx x ny grid
// of cells and assigns candidates to the cell containing their center.
type SpatialCellSet struct {
	bbox types.BBox
	nx   int
	ny   int
	cells []*cell
}

// New creates an empty nx x ny cell grid spanning bbox.
func New(bbox types.BBox, nx, ny int) (*SpatialCellSet, error) {
	if nx < 1 || ny < 1 {
		return nil, types.NewDomainError("spatial cell grid requires nx,ny >= 1")
	}
	cells := make([]*cell, nx*ny)
	w := (bbox.X1 - bbox.X0) / float64(nx)
	h := (bbox.Y1 - bbox.Y0) / float64(ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			cells[j*nx+i] = &cell{bbox: types.BBox{
				X0: bbox.X0 + float64(i)*w,
				Y0: bbox.Y0 + float64(j)*h,
				X1: bbox.X0 + float64(i+1)*w,
				Y1: bbox.Y0 + float64(j+1)*h,
			}}
		}
	}
	return &SpatialCellSet{bbox: bbox, nx: nx, ny: ny, cells: cells}, nil
}

// AddCandidate places c into the cell containing (c.CenterX, c.CenterY),
// clamped to the grid edges, keeping the cell's candidate list sorted by
// descending rating.
func (s *SpatialCellSet) AddCandidate(c *candidate.KernelCandidate) {
	i := s.colIndex(c.CenterX)
	j := s.rowIndex(c.CenterY)
	cl := s.cells[j*s.nx+i]
	cl.candidates = append(cl.candidates, c)
	sort.SliceStable(cl.candidates, func(a, b int) bool {
		return cl.candidates[a].Rating > cl.candidates[b].Rating
	})
}

func (s *SpatialCellSet) colIndex(x float64) int {
	w := (s.bbox.X1 - s.bbox.X0) / float64(s.nx)
	i := int((x - s.bbox.X0) / w)
	return clampInt(i, 0, s.nx-1)
}

func (s *SpatialCellSet) rowIndex(y float64) int {
	h := (s.bbox.Y1 - s.bbox.Y0) / float64(s.ny)
	j := int((y - s.bbox.Y0) / h)
	return clampInt(j, 0, s.ny-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Reset invokes visitor.Reset() (if implemented) and, per spec.md §4.F,
// rewinds nothing about the grid itself — replacement of BAD candidates
// is sticky across passes.
func (s *SpatialCellSet) Reset(visitor Visitor) {
	if r, ok := visitor.(Resetter); ok {
		r.Reset()
	}
}

// VisitCandidates walks every cell, calling visitor.ProcessCandidate on
// at most maxPerCell currently-considered candidates per cell. A cell
// permanently skips candidates that are BAD as of the start of the
// cell's turn, advancing its internal cursor to the next-best candidate
// by rating (spec.md §4.F).
func (s *SpatialCellSet) VisitCandidates(visitor Visitor, maxPerCell int) error {
	for _, cl := range s.cells {
		for cl.cursor < len(cl.candidates) && cl.candidates[cl.cursor].Status() == candidate.StatusBad {
			cl.cursor++
		}
		end := cl.cursor + maxPerCell
		if end > len(cl.candidates) {
			end = len(cl.candidates)
		}
		for i := cl.cursor; i < end; i++ {
			if cl.candidates[i].Status() == candidate.StatusBad {
				continue
			}
			if err := visitor.ProcessCandidate(cl.candidates[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// VisitCandidatesConcurrent selects the same per-cell candidate set as
// VisitCandidates but dispatches processCandidate calls across a bounded
// pool of `workers` goroutines, since each call only mutates the
// candidate it was given (spec.md §5's parallelization note for the
// single-kernel build step). Returns the first error observed, if any.
func (s *SpatialCellSet) VisitCandidatesConcurrent(visitor Visitor, maxPerCell, workers int) error {
	if workers < 1 {
		workers = 1
	}

	var targets []*candidate.KernelCandidate
	for _, cl := range s.cells {
		for cl.cursor < len(cl.candidates) && cl.candidates[cl.cursor].Status() == candidate.StatusBad {
			cl.cursor++
		}
		end := cl.cursor + maxPerCell
		if end > len(cl.candidates) {
			end = len(cl.candidates)
		}
		for i := cl.cursor; i < end; i++ {
			if cl.candidates[i].Status() == candidate.StatusBad {
				continue
			}
			targets = append(targets, cl.candidates[i])
		}
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	errCh := make(chan error, len(targets))
	for _, c := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *candidate.KernelCandidate) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := visitor.ProcessCandidate(c); err != nil {
				errCh <- err
			}
		}(c)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		return err
	}
	return nil
}

// Candidates returns every candidate currently held by the grid,
// regardless of status or cursor position — used by visitors that need
// a full-pass view (e.g. PCA collection, spatial assembly).
func (s *SpatialCellSet) Candidates() []*candidate.KernelCandidate {
	var out []*candidate.KernelCandidate
	for _, cl := range s.cells {
		out = append(out, cl.candidates...)
	}
	return out
}

// NumCandidates reports the total number of candidates held across all
// cells.
func (s *SpatialCellSet) NumCandidates() int {
	n := 0
	for _, cl := range s.cells {
		n += len(cl.candidates)
	}
	return n
}
