// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/occurrence-etl/internal/catalog"
	"github.com/pdiddy/occurrence-etl/internal/pipeline"
	"github.com/pdiddy/occurrence-etl/internal/store"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [dataset...]",
	Short: "Extract, clean and write datasets as JSON Lines",
	Long: `Run processes each named dataset: it reads the tab-separated source file,
keeps the dataset's columns, drops rows with missing values, and replaces the
JSON Lines output. Use --all to process the whole catalog.

Each run is recorded in the SQLite store unless --no-history is given. The
command exits non-zero if any dataset fails.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("all", false, "process every dataset in the catalog")
	runCmd.Flags().Int("jobs", 1, "number of datasets to process concurrently")
	runCmd.Flags().Bool("no-history", false, "do not record runs in the store")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	jobs, _ := cmd.Flags().GetInt("jobs")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	datasets, err := selectDatasets(cfg, args, all)
	if err != nil {
		return err
	}

	var recorder pipeline.Recorder
	if !noHistory {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			logger.Warn().Err(err).Msg("run history disabled")
		} else {
			defer st.Close()
			recorder = st
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := pipeline.NewConsole(os.Stdout)
	pipelines := make([]*pipeline.Pipeline, 0, len(datasets))
	for _, ds := range datasets {
		var progress io.Writer = os.Stdout
		if len(datasets) > 1 {
			progress = console.For(ds.Name)
		}
		opts := []pipeline.Option{pipeline.WithProgress(progress), pipeline.WithLogger(logger)}
		if recorder != nil {
			opts = append(opts, pipeline.WithRecorder(recorder))
		}
		p, err := pipeline.New(ds, opts...)
		if err != nil {
			return err
		}
		pipelines = append(pipelines, p)
	}

	result, err := pipeline.RunAll(ctx, pipelines, jobs)
	if len(result.Results) > 1 {
		fmt.Fprintf(os.Stdout, "\n%d succeeded, %d failed\n", result.Succeeded(), result.Failed())
	}
	for _, r := range result.Results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", r.Err)
		}
	}
	if err != nil && len(result.Results) > 0 {
		return fmt.Errorf("%d dataset(s) failed", result.Failed())
	}
	return err
}

// selectDatasets resolves the catalog and picks the datasets named in args,
// or all of them.
func selectDatasets(cfg types.Config, args []string, all bool) ([]types.DatasetConfig, error) {
	datasets, err := catalog.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("name datasets or use --all, not both")
		}
		return datasets, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("name a dataset or use --all (known: %s)", strings.Join(catalog.Names(datasets), ", "))
	}
	return catalog.Select(datasets, args)
}
