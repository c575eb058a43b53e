// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package cliapp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/pkg/security"
)

// loadPlane reads a plain-text plane file: a "width height" header line
// followed by width*height whitespace-separated float64 values in
// row-major order. This is the module's minimal stand-in for the host's
// FITS/PGM image format (spec.md §6's "Image[T]" consumed interface).
func loadPlane(path string) (*imaging.Plane, error) {
	if err := security.ValidateInputPath(path); err != nil {
		return nil, fmt.Errorf("refusing to read %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	scanner.Split(bufio.ScanWords)

	readInt := func(what string) (int, error) {
		if !scanner.Scan() {
			return 0, fmt.Errorf("%s: expected %s: %w", path, what, scanner.Err())
		}
		return strconv.Atoi(scanner.Text())
	}

	width, err := readInt("width")
	if err != nil {
		return nil, err
	}
	height, err := readInt("height")
	if err != nil {
		return nil, err
	}

	data := make([]float64, width*height)
	for i := range data {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%s: expected %d values, ran out after %d", path, width*height, i)
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid value at index %d: %w", path, i, err)
		}
		data[i] = v
	}
	return imaging.NewPlaneFromData(0, 0, width, height, data), nil
}
