// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package types

import "fmt"

// SpatialFunctionKind identifies a spatial-function family.
type SpatialFunctionKind string

const (
	// SpatialPolynomial is a 2-D polynomial of order N over image
	// coordinates: terms are every monomial x^j*y^k with j+k<=N.
	SpatialPolynomial SpatialFunctionKind = "polynomial"
	// SpatialChebyshev1 is a 2-D Chebyshev polynomial of order N over a
	// bounding box, coordinates rescaled to [-1,1] before evaluation.
	SpatialChebyshev1 SpatialFunctionKind = "chebyshev1"
)

// BBox is the bounding box a Chebyshev spatial basis rescales against.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// SpatialBasis enumerates the ordered term functions of a spatial
// function family. NTerms() == (N+1)(N+2)/2 for order N.
type SpatialBasis interface {
	Kind() SpatialFunctionKind
	Order() int
	NTerms() int
	// Terms evaluates every term function at (x,y), in a fixed order.
	Terms(x, y float64) []float64
}

// NewSpatialBasis constructs a SpatialBasis for the given kind/order/bbox.
// bbox is ignored for SpatialPolynomial.
func NewSpatialBasis(kind SpatialFunctionKind, order int, bbox BBox) (SpatialBasis, error) {
	switch kind {
	case SpatialPolynomial, "":
		return &polynomialBasis{order: order}, nil
	case SpatialChebyshev1:
		return &chebyshevBasis{order: order, bbox: bbox}, nil
	default:
		return nil, NewConfigError(fmt.Sprintf("unknown spatial function kind %q", kind), nil)
	}
}

// NTermsForOrder returns (N+1)(N+2)/2, the term count of a 2-D polynomial
// or Chebyshev spatial basis of order N.
func NTermsForOrder(order int) int {
	return (order + 1) * (order + 2) / 2
}

type polynomialBasis struct{ order int }

func (b *polynomialBasis) Kind() SpatialFunctionKind { return SpatialPolynomial }
func (b *polynomialBasis) Order() int                { return b.order }
func (b *polynomialBasis) NTerms() int                { return NTermsForOrder(b.order) }

func (b *polynomialBasis) Terms(x, y float64) []float64 {
	out := make([]float64, 0, b.NTerms())
	for total := 0; total <= b.order; total++ {
		for j := total; j >= 0; j-- {
			k := total - j
			out = append(out, ipow(x, j)*ipow(y, k))
		}
	}
	return out
}

type chebyshevBasis struct {
	order int
	bbox  BBox
}

func (b *chebyshevBasis) Kind() SpatialFunctionKind { return SpatialChebyshev1 }
func (b *chebyshevBasis) Order() int                { return b.order }
func (b *chebyshevBasis) NTerms() int                { return NTermsForOrder(b.order) }

func (b *chebyshevBasis) Terms(x, y float64) []float64 {
	xr := rescale(x, b.bbox.X0, b.bbox.X1)
	yr := rescale(y, b.bbox.Y0, b.bbox.Y1)
	tx := chebyshevValues(xr, b.order)
	ty := chebyshevValues(yr, b.order)
	out := make([]float64, 0, b.NTerms())
	for total := 0; total <= b.order; total++ {
		for j := 0; j <= total; j++ {
			k := total - j
			out = append(out, tx[j]*ty[k])
		}
	}
	return out
}

// rescale maps x from [lo,hi] to [-1,1]; a degenerate box maps everything
// to 0.
func rescale(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return 2*(x-lo)/(hi-lo) - 1
}

// chebyshevValues returns T_0(x)..T_n(x) via the recurrence
// T_0=1, T_1=x, T_k = 2x*T_{k-1} - T_{k-2}.
func chebyshevValues(x float64, n int) []float64 {
	t := make([]float64, n+1)
	if n >= 0 {
		t[0] = 1
	}
	if n >= 1 {
		t[1] = x
	}
	for k := 2; k <= n; k++ {
		t[k] = 2*x*t[k-1] - t[k-2]
	}
	return t
}

func ipow(x float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}

// SpatialFunction pairs a SpatialBasis with fitted coefficients,
// evaluating to a scalar at any image position.
type SpatialFunction struct {
	Basis  SpatialBasis
	Params []float64
}

// NewSpatialFunction builds a SpatialFunction with zeroed parameters.
func NewSpatialFunction(basis SpatialBasis) *SpatialFunction {
	return &SpatialFunction{Basis: basis, Params: make([]float64, basis.NTerms())}
}

// Eval evaluates sum_i Params[i] * term_i(x,y).
func (f *SpatialFunction) Eval(x, y float64) float64 {
	terms := f.Basis.Terms(x, y)
	var s float64
	for i, t := range terms {
		s += f.Params[i] * t
	}
	return s
}

// SetParams replaces the function's parameter vector. len(params) must
// equal f.Basis.NTerms().
func (f *SpatialFunction) SetParams(params []float64) {
	f.Params = params
}
