package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/processor"
	"github.com/r3d91ll/spectra/pkg/spinner"
)

func newProcessCmd() *cobra.Command {
	var (
		outDir    string
		targetMin float64
		targetMax float64
		targetInt float64
	)
	cmd := &cobra.Command{
		Use:   "process [files...]",
		Short: "Send measurement files to the processor and save the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			files, err := loadInputs(args, cfg.Upload.MaxBytes)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return serrors.Upload(serrors.ErrUploadNoFiles, "no CSV files in input")
			}

			var bounds processor.Bounds
			flags := cmd.Flags()
			if flags.Changed("target-min") {
				bounds.Min = &targetMin
			}
			if flags.Changed("target-max") {
				bounds.Max = &targetMax
			}
			if flags.Changed("target-interval") {
				bounds.Interval = &targetInt
			}
			bounds = bounds.Merge(processor.Bounds{
				Min:      cfg.Processor.TargetMin,
				Max:      cfg.Processor.TargetMax,
				Interval: cfg.Processor.TargetInterval,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			proc := processor.New(processor.Config{
				URL:              cfg.Processor.URL,
				Timeout:          cfg.Processor.Timeout,
				MaxResponseBytes: cfg.Upload.MaxBytes,
			})
			spin := spinner.NewWithConfig(spinner.Config{
				Message: fmt.Sprintf("Processing %d file(s) at %s", len(files), proc.URL()),
				Writer:  cmd.ErrOrStderr(),
			})
			spin.Start()
			out, err := proc.Process(ctx, files, bounds)
			if err != nil {
				spin.Fail("Processing failed")
				return err
			}

			spin.Update("Writing results")
			if err := os.MkdirAll(outDir, 0755); err != nil {
				spin.Fail("")
				return serrors.IOWrap(err, serrors.ErrIOWriteFailed, "failed to create output directory").
					WithContext("path", outDir)
			}
			for _, f := range out {
				path := filepath.Join(outDir, filepath.Base(f.Name))
				if err := os.WriteFile(path, f.Data, 0644); err != nil {
					spin.Fail("")
					return serrors.IOWrap(err, serrors.ErrIOWriteFailed, "failed to write result").
						WithContext("path", path)
				}
			}
			spin.Success(fmt.Sprintf("Wrote %d result(s) to %s", len(out), outDir))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "results", "Output directory")
	cmd.Flags().Float64Var(&targetMin, "target-min", 0, "Lower target bound")
	cmd.Flags().Float64Var(&targetMax, "target-max", 0, "Upper target bound")
	cmd.Flags().Float64Var(&targetInt, "target-interval", 0, "Target interval")
	return cmd
}
