// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package types

import "fmt"

// KernelBasisSet selects the starting kernel basis (spec.md §6,
// kernelBasisSet).
type KernelBasisSet string

const (
	// BasisDeltaFunction enumerates one kernel per pixel.
	BasisDeltaFunction KernelBasisSet = "delta-function"
	// BasisAlardLupton enumerates sums-of-Gaussians x polynomial modulations.
	BasisAlardLupton KernelBasisSet = "alard-lupton"
)

// DetThresholdType selects how the stamp extractor's detection threshold
// is interpreted.
type DetThresholdType string

const (
	DetThresholdValue  DetThresholdType = "value"
	DetThresholdStdev  DetThresholdType = "stdev"
	DetThresholdVariance DetThresholdType = "variance"
)

// BasisConfig configures the starting kernel basis (spec.md §4.A).
type BasisConfig struct {
	KernelCols int `json:"kernelCols"`
	KernelRows int `json:"kernelRows"`

	KernelBasisSet KernelBasisSet `json:"kernelBasisSet"`

	// Alard-Lupton parameters (used when KernelBasisSet == BasisAlardLupton).
	AlardLuptonSigmas       []float64 `json:"alardLuptonSigmas,omitempty"`
	AlardLuptonDegrees      []int     `json:"alardLuptonDegrees,omitempty"`
	AlardLuptonHalfWidth    int       `json:"alardLuptonHalfWidth,omitempty"`

	UsePcaForSpatialKernel bool `json:"usePcaForSpatialKernel"`
	NEigenComponents       int  `json:"nEigenComponents"`
}

// SpatialConfig configures the spatial kernel/background fit (spec.md §4.I).
type SpatialConfig struct {
	SpatialKernelOrder int                 `json:"spatialKernelOrder"`
	SpatialBgOrder     int                 `json:"spatialBgOrder"`
	SpatialKernelType  SpatialFunctionKind `json:"spatialKernelType"`
	SpatialBgType      SpatialFunctionKind `json:"spatialBgType"`
	FitForBackground   bool                `json:"fitForBackground"`
	BBox               BBox                `json:"bbox"`
}

// RejectionConfig configures the residual/outlier rejection stages
// (spec.md §4.G, §6).
type RejectionConfig struct {
	ConstantVarianceWeighting bool `json:"constantVarianceWeighting"`
	IterateSingleKernel       bool `json:"iterateSingleKernel"`

	SingleKernelClipping  bool `json:"singleKernelClipping"`
	SpatialKernelClipping bool `json:"spatialKernelClipping"`
	KernelSumClipping     bool `json:"kernelSumClipping"`

	CandidateResidualMeanMax float64 `json:"candidateResidualMeanMax"`
	CandidateResidualStdMax  float64 `json:"candidateResidualStdMax"`
	MaxKsumSigma             float64 `json:"maxKsumSigma"`

	RegularizationScaling float64 `json:"regularizationScaling"`
	UseRegularization     bool    `json:"useRegularization"`
}

// StampConfig configures candidate stamp extraction (spec.md §4.C).
type StampConfig struct {
	FpNpixMin          int              `json:"fpNpixMin"`
	FpNpixMax          int              `json:"fpNpixMax"`
	FpGrowKsize        float64          `json:"fpGrowKsize"`
	DetThreshold       float64          `json:"detThreshold"`
	DetThresholdScaling float64         `json:"detThresholdScaling"`
	DetThresholdMin    float64          `json:"detThresholdMin"`
	DetThresholdType   DetThresholdType `json:"detThresholdType"`
	MinCleanFp         int              `json:"minCleanFp"`
}

// DriverConfig configures the top-level pipeline iteration (spec.md §4.J).
type DriverConfig struct {
	MaxSpatialIterations int  `json:"maxSpatialIterations"`
	NStarPerCell         int  `json:"nStarPerCell"`
	Debug                bool `json:"debug"`
}

// Config is the complete set of recognized configuration keys (spec.md §6).
type Config struct {
	Basis     BasisConfig     `json:"basis"`
	Spatial   SpatialConfig   `json:"spatial"`
	Rejection RejectionConfig `json:"rejection"`
	Stamp     StampConfig     `json:"stamp"`
	Driver    DriverConfig    `json:"driver"`
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() *Config {
	return &Config{
		Basis: BasisConfig{
			KernelCols:           19,
			KernelRows:           19,
			KernelBasisSet:       BasisAlardLupton,
			AlardLuptonSigmas:    []float64{0.7, 1.5, 3.0},
			AlardLuptonDegrees:   []int{6, 4, 2},
			AlardLuptonHalfWidth: 9,
			UsePcaForSpatialKernel: true,
			NEigenComponents:     0,
		},
		Spatial: SpatialConfig{
			SpatialKernelOrder: 2,
			SpatialBgOrder:     1,
			SpatialKernelType:  SpatialPolynomial,
			SpatialBgType:      SpatialPolynomial,
			FitForBackground:   true,
		},
		Rejection: RejectionConfig{
			ConstantVarianceWeighting: false,
			IterateSingleKernel:       true,
			SingleKernelClipping:      true,
			SpatialKernelClipping:     true,
			KernelSumClipping:         true,
			CandidateResidualMeanMax:  0.25,
			CandidateResidualStdMax:   1.5,
			MaxKsumSigma:              3.0,
			RegularizationScaling:     1e-3,
			UseRegularization:         false,
		},
		Stamp: StampConfig{
			FpNpixMin:           5,
			FpNpixMax:           500,
			FpGrowKsize:         1.0,
			DetThreshold:        10.0,
			DetThresholdScaling: 0.75,
			DetThresholdMin:     2.0,
			DetThresholdType:    DetThresholdStdev,
			MinCleanFp:          10,
		},
		Driver: DriverConfig{
			MaxSpatialIterations: 3,
			NStarPerCell:         3,
			Debug:                false,
		},
	}
}

// Validate checks the configuration for internal consistency, returning a
// *DiffimError{Kind: ErrConfig} describing the first problem found.
func (c *Config) Validate() error {
	if c.Basis.KernelCols < 1 || c.Basis.KernelRows < 1 {
		return NewConfigError("kernelCols and kernelRows must be >= 1", nil)
	}
	switch c.Basis.KernelBasisSet {
	case BasisDeltaFunction, BasisAlardLupton:
	default:
		return NewConfigError(fmt.Sprintf("unknown kernelBasisSet %q", c.Basis.KernelBasisSet), nil)
	}
	if c.Basis.KernelBasisSet == BasisAlardLupton {
		if c.Basis.AlardLuptonHalfWidth < 1 {
			return NewConfigError("alardLuptonHalfWidth must be >= 1", nil)
		}
		if len(c.Basis.AlardLuptonSigmas) != len(c.Basis.AlardLuptonDegrees) {
			return NewConfigError("alardLuptonSigmas and alardLuptonDegrees must have equal length", nil)
		}
		if len(c.Basis.AlardLuptonSigmas) == 0 {
			return NewConfigError("alard-lupton basis requires at least one gaussian", nil)
		}
	}
	if c.Spatial.SpatialKernelOrder < 0 || c.Spatial.SpatialBgOrder < 0 {
		return NewConfigError("spatialKernelOrder and spatialBgOrder must be >= 0", nil)
	}
	switch c.Spatial.SpatialKernelType {
	case SpatialPolynomial, SpatialChebyshev1, "":
	default:
		return NewConfigError(fmt.Sprintf("unknown spatialKernelType %q", c.Spatial.SpatialKernelType), nil)
	}
	switch c.Spatial.SpatialBgType {
	case SpatialPolynomial, SpatialChebyshev1, "":
	default:
		return NewConfigError(fmt.Sprintf("unknown spatialBgType %q", c.Spatial.SpatialBgType), nil)
	}
	if c.Stamp.FpNpixMin > c.Stamp.FpNpixMax {
		return NewConfigError("fpNpixMin must be <= fpNpixMax", nil)
	}
	if c.Stamp.FpGrowKsize < 0 {
		return NewConfigError("fpGrowKsize must be >= 0", nil)
	}
	if c.Stamp.DetThresholdMin > c.Stamp.DetThreshold {
		return NewConfigError("detThresholdMin must be <= detThreshold", nil)
	}
	if c.Stamp.MinCleanFp < 1 {
		return NewConfigError("minCleanFp must be >= 1", nil)
	}
	if c.Driver.MaxSpatialIterations < 1 {
		return NewConfigError("maxSpatialIterations must be >= 1", nil)
	}
	if c.Driver.NStarPerCell < 1 {
		return NewConfigError("nStarPerCell must be >= 1", nil)
	}
	if !c.Rejection.ConstantVarianceWeighting && c.Rejection.MaxKsumSigma <= 0 && c.Rejection.KernelSumClipping {
		return NewConfigError("maxKsumSigma must be > 0 when kernelSumClipping is enabled", nil)
	}
	return nil
}

// EffectiveSpatialBgOrder applies the fitForBackground=false open-question
// resolution (spec.md §9): when background fitting is disabled, the
// background spatial basis always has exactly one constant term,
// regardless of the configured order. The coefficient of that term is
// still fitted; it is not held at zero.
func (c *Config) EffectiveSpatialBgOrder() int {
	if !c.Spatial.FitForBackground {
		return 0
	}
	return c.Spatial.SpatialBgOrder
}
