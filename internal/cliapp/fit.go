// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DominiqueFouchez/ip-diffim/internal/config"
	"github.com/DominiqueFouchez/ip-diffim/internal/imaging"
	"github.com/DominiqueFouchez/ip-diffim/internal/pipeline"
	"github.com/DominiqueFouchez/ip-diffim/internal/testutil"
	"github.com/DominiqueFouchez/ip-diffim/pkg/security"
)

// fitOptions holds the fit subcommand's flags.
type fitOptions struct {
	Scene        string
	TemplateFile string
	ScienceFile  string
	Variance     float64
	ConfigFile   string
	Format       string
	OutputFile   string
	Workers      int
	Verbose      bool
	Debug        bool
}

func newFitCommand() *cobra.Command {
	opts := &fitOptions{}

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Run the PSF-matching kernel solver",
		Long: `Fit runs the full pipeline (stamp extraction, per-iteration
single-kernel/kernel-sum/spatial-kernel build, assessment) against either
a synthetic built-in scene or user-supplied template/science planes, and
prints the resulting PipelineReport.

Examples:
  # Run against the built-in Gaussian-PSF scene
  diffimctl fit --scene gaussian

  # Run against a spatially-varying PSF scene, printing JSON
  diffimctl fit --scene gradient --format json

  # Run against user-supplied planes with a custom config
  diffimctl fit --template-file t.plane --science-file s.plane --config cfg.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Scene, "scene", "gaussian", "built-in synthetic scene: gaussian, identical, or gradient")
	cmd.Flags().StringVar(&opts.TemplateFile, "template-file", "", "template plane file (overrides --scene)")
	cmd.Flags().StringVar(&opts.ScienceFile, "science-file", "", "science plane file (requires --template-file)")
	cmd.Flags().Float64Var(&opts.Variance, "variance", 25.0, "constant variance assumed for user-supplied planes")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "configuration file (default: documented defaults)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "output format: table, json, or csv")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "worker-pool size for the single-kernel build pass")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print per-iteration progress to stderr")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "capture per-candidate rendered kernel and difference images in the report")

	return cmd
}

func runFit(opts *fitOptions) error {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return err
	}
	if opts.Debug {
		cfg.Driver.Debug = true
	}

	template, templateVar, science, scienceVar, err := loadScene(opts)
	if err != nil {
		return err
	}

	tx0, ty0, tw, th := template.Bounds()
	templateMask := imaging.NewMaskBitPlane(tx0, ty0, tw, th)
	sx0, sy0, sw, sh := science.Bounds()
	scienceMask := imaging.NewMaskBitPlane(sx0, sy0, sw, sh)

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "running pipeline: basis=%s maxSpatialIterations=%d workers=%d\n",
			cfg.Basis.KernelBasisSet, cfg.Driver.MaxSpatialIterations, opts.Workers)
	}

	result, err := pipeline.Run(template, templateVar, science, scienceVar, templateMask, scienceMask,
		pipeline.Options{Config: cfg, Workers: opts.Workers})
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	out := os.Stdout
	if opts.OutputFile != "" {
		if err := security.ValidateOutputPath(opts.OutputFile); err != nil {
			return fmt.Errorf("refusing to write %s: %w", opts.OutputFile, err)
		}
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch opts.Format {
	case "json":
		return writeReportJSON(out, result.Report)
	case "csv":
		return writeReportCSV(out, result.Report)
	default:
		return writeReportTable(out, result.Report)
	}
}

func loadScene(opts *fitOptions) (template, templateVar, science, scienceVar *imaging.Plane, err error) {
	if opts.TemplateFile != "" {
		if opts.ScienceFile == "" {
			return nil, nil, nil, nil, fmt.Errorf("--science-file is required when --template-file is given")
		}
		template, err = loadPlane(opts.TemplateFile)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		science, err = loadPlane(opts.ScienceFile)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		templateVar = imaging.ConstantVariancePlane(template, opts.Variance)
		scienceVar = imaging.ConstantVariancePlane(science, opts.Variance)
		return template, templateVar, science, scienceVar, nil
	}

	scene, err := testutil.BuildScene(opts.Scene)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return scene.Template, scene.TemplateVar, scene.Science, scene.ScienceVar, nil
}
