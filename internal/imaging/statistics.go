// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package imaging

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ClippedMeanStdDev computes an iteratively sigma-clipped mean and
// standard deviation, mirroring the teacher's use of gonum/stat for
// descriptive statistics (internal/core/statistics.go). Values further
// than nSigma*stddev from the running mean are dropped each round; the
// loop stops after maxIter rounds or once nothing more is clipped.
func ClippedMeanStdDev(values []float64, nSigma float64, maxIter int) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sample := append([]float64(nil), values...)
	mean = stat.Mean(sample, nil)
	stddev = stat.StdDev(sample, nil)

	for iter := 0; iter < maxIter; iter++ {
		if stddev == 0 {
			break
		}
		kept := sample[:0:0]
		for _, v := range sample {
			if math.Abs(v-mean) <= nSigma*stddev {
				kept = append(kept, v)
			}
		}
		if len(kept) == len(sample) || len(kept) < 2 {
			break
		}
		sample = kept
		mean = stat.Mean(sample, nil)
		stddev = stat.StdDev(sample, nil)
	}
	return mean, stddev
}

// Variance returns the population-style variance of values (divisor N,
// matching spec.md invariant 3's "variance of the difference image").
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// RMS returns the root-mean-square of values.
func RMS(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(values)))
}

// PlaneResidualStats returns the mean absolute value and the true rms
// of a difference image's pixels (spec.md §4.G.2/§4.G.5's "same residual
// limits"): both BuildSingleKernelVisitor and AssessSpatialKernelVisitor
// compare against the same unweighted rms(diffim), not a variance-weighted
// chi-squared.
func PlaneResidualStats(p *Plane) (mean, rms float64) {
	x0, y0, w, h := p.Bounds()
	n := w * h
	if n == 0 {
		return 0, 0
	}
	var sumAbs, sumSq float64
	for row := y0; row < y0+h; row++ {
		for col := x0; col < x0+w; col++ {
			d := p.At(col, row)
			sumAbs += math.Abs(d)
			sumSq += d * d
		}
	}
	return sumAbs / float64(n), math.Sqrt(sumSq / float64(n))
}
