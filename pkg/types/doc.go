// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package types provides the core data structures and interfaces shared
// across the difference-imaging kernel solver: the image/kernel/spatial
// function primitives consumed from the host environment, the domain
// configuration, and the structured error type.
//
// # Core Types
//
// The package defines several essential types:
//
//   - Image / MaskedImage: minimal in-memory image planes with an integer
//     origin, consumed by the solver and produced by internal/imaging.
//   - Kernel: a renderable convolution operator — fixed image, analytic
//     (Gaussian), delta-function, or a linear combination of a basis,
//     optionally with per-basis spatial functions.
//   - SpatialFunction: a 2-D scalar function (polynomial or Chebyshev)
//     used to interpolate a coefficient across the image.
//   - Config: the recognized configuration keys of the pipeline.
//
// # Error Handling
//
// DiffimError carries one of the failure kinds from the spec's error
// taxonomy (config, domain, solve, numerical, no-candidates, external),
// plus optional numeric context for diagnostics.
//
// # Thread Safety
//
// Types in this package are not thread-safe. A Config, KernelBasis, or
// RegularizationMatrix is read-only once constructed and may be shared
// across goroutines; Image/MaskedImage values should not be mutated
// concurrently.
package types
