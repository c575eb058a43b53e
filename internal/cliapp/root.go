// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package cliapp wires the diffimctl command-line tool: the fit,
// validate, and version subcommands, grounded on the teacher's
// internal/cobra factory-function command style (NewXCommand() returning
// a configured *cobra.Command, composed under one root).
package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root diffimctl command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "diffimctl",
		Short: "Difference-imaging PSF-matching kernel solver",
		Long: `diffimctl runs the PSF-matching kernel solver described in spec.md:
given a template and a science image it fits a convolution kernel (and a
spatially-varying background) such that K * T + b approximates S, using
a spatial-cell candidate grid, a cascading linear solver, and an
optional PCA re-basis.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newFitCommand(),
		newValidateCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI, printing any returned error to stderr and
// exiting non-zero.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
