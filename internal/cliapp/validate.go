// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DominiqueFouchez/ip-diffim/internal/config"
	"github.com/DominiqueFouchez/ip-diffim/pkg/security"
	"github.com/DominiqueFouchez/ip-diffim/pkg/validation"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.json>",
		Short: "Validate a configuration file against the embedded schema",
		Long: `Validate checks a configuration file for:
  - conformance to the embedded JSON Schema (well-formed keys, types,
    enum values)
  - semantic consistency (e.g. fpNpixMin <= fpNpixMax, known basis sets)

Example:
  diffimctl validate config.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
	return cmd
}

func runValidate(path string) error {
	if err := security.ValidateInputPath(path); err != nil {
		return fmt.Errorf("refusing to read %s: %w", path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := validation.ValidateConfig(raw); err != nil {
		return fmt.Errorf("schema validation failed:\n%w", err)
	}
	fmt.Println("schema validation passed")

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	fmt.Println("semantic validation passed")
	fmt.Printf("kernel basis: %s (%dx%d)\n", cfg.Basis.KernelBasisSet, cfg.Basis.KernelCols, cfg.Basis.KernelRows)
	fmt.Printf("spatial kernel order: %d, background order: %d\n", cfg.Spatial.SpatialKernelOrder, cfg.Spatial.SpatialBgOrder)
	return nil
}
