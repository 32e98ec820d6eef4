package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/resumeforge/internal/config"
	"github.com/dgallion1/resumeforge/internal/pipeline"
	"github.com/dgallion1/resumeforge/internal/resume"
)

var errAllFailed = errors.New("no document converted")

func newConvertCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		offline   bool
		outDir    string
		verifyFit bool
	)

	cmd := &cobra.Command{
		Use:   "convert [flags] FILE...",
		Short: "Convert resume files to PDF in a local directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			cfg := config.Load()
			cfg.StoreBackend = "fs"
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			if offline {
				cfg.EnrichProvider = "offline"
			}
			if verifyFit {
				cfg.RenderVerifyFit = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return convert(ctx, a.processor, cfg.OutputDir, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the generative model and use locally recognized fields only")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default OUTPUT_DIR)")
	cmd.Flags().BoolVar(&verifyFit, "verify-fit", false, "probe every prefix to check that page counts never decrease")
	return cmd
}

// convert runs the batch and prints one line per input, in argument order.
func convert(ctx context.Context, proc *pipeline.Processor, outDir string, paths []string, w io.Writer) error {
	lines := make([]string, len(paths))
	var jobs []*pipeline.Job
	var index []int

	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			lines[i] = fmt.Sprintf("%s\terror\t%s: %v", path, resume.KindInternal, err)
			continue
		}
		jobs = append(jobs, pipeline.NewJob(filepath.Base(path), data))
		index = append(index, i)
	}

	converted := 0
	for k, o := range proc.RunBatch(ctx, jobs) {
		path := paths[index[k]]
		if o.Err != nil {
			f := pipeline.NewFailure(o.FileName, o.Err)
			lines[index[k]] = fmt.Sprintf("%s\terror\t%s: %s", path, f.Error.Kind, f.Error.Detail)
			continue
		}
		converted++
		r := o.Result
		lines[index[k]] = fmt.Sprintf("%s\t%s\t%d pages, %d/%d entries on first page",
			path, filepath.Join(outDir, r.ID+".pdf"), r.Pages, r.Plan.Fitting, r.Plan.Total)
	}

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if converted == 0 {
		return errAllFailed
	}
	return nil
}
