// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package security guards the paths diffimctl accepts from the
// command line (plane files, config files, report output files)
// against traversal and system-directory writes before the CLI
// touches the filesystem.
//
// # Path Security
//
// File path operations include:
//   - path traversal detection and prevention
//   - system directory write protection
//   - platform-specific validation (Windows reserved names, etc.)
//
// # Usage
//
// Input validation:
//
//	err := security.ValidateInputPath(filePath)
//
// Output validation:
//
//	err := security.ValidateOutputPath(filePath)
package security
