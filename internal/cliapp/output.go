// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package cliapp

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func writeReportJSON(w io.Writer, report *types.PipelineReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func writeReportTable(w io.Writer, report *types.PipelineReport) error {
	fmt.Fprintf(w, "Iterations:          %d\n", report.Iterations)
	fmt.Fprintf(w, "Rejected per iter:   %v\n", report.RejectedPerIteration)
	fmt.Fprintf(w, "Kernel terms:        %d\n", report.NKernelTerms)
	fmt.Fprintf(w, "Background terms:    %d\n", report.NBackgroundTerms)
	fmt.Fprintf(w, "Used PCA basis:      %t\n", report.UsedPcaBasis)
	fmt.Fprintf(w, "Spatial solver:      %s\n", report.SpatialSolverMethod)

	fmt.Fprintln(w, "\nCandidates:")
	fmt.Fprintln(w, "----------------------------------------------------------------------------------")
	fmt.Fprintf(w, "%-5s%-10s%-10s%-10s%-12s%-12s%-12s%-10s%-10s\n",
		"ID", "CenterX", "CenterY", "Rating", "KernelSum", "Background", "Chi2", "Status", "Solver")
	fmt.Fprintln(w, "----------------------------------------------------------------------------------")
	for _, c := range report.Candidates {
		fmt.Fprintf(w, "%-5d%-10.2f%-10.2f%-10.3f%-12.4f%-12.4f%-12.4f%-10s%-10s\n",
			c.ID, c.CenterX, c.CenterY, c.Rating, c.KernelSum, c.Background, c.Chi2, c.Status, c.SolverMethod)
	}
	return nil
}

func writeReportCSV(w io.Writer, report *types.PipelineReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "centerX", "centerY", "rating", "kernelSum", "background", "chi2", "status", "solverMethod"}); err != nil {
		return err
	}
	for _, c := range report.Candidates {
		row := []string{
			strconv.Itoa(c.ID),
			strconv.FormatFloat(c.CenterX, 'f', 4, 64),
			strconv.FormatFloat(c.CenterY, 'f', 4, 64),
			strconv.FormatFloat(c.Rating, 'f', 4, 64),
			strconv.FormatFloat(c.KernelSum, 'f', 6, 64),
			strconv.FormatFloat(c.Background, 'f', 6, 64),
			strconv.FormatFloat(c.Chi2, 'f', 6, 64),
			c.Status,
			c.SolverMethod,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
