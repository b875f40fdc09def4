// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/occurrence-etl/internal/store"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent pipeline runs",
	Long: `Runs lists the pipeline runs recorded in the SQLite store, most recent
first, with row counts and the stage and class of any failure.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().String("dataset", "", "only show runs of this dataset")
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	runsCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	dataset, _ := cmd.Flags().GetString("dataset")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(context.Background(), store.RunQuery{Dataset: dataset, Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	renderRuns(os.Stdout, runs)
	return nil
}

func renderRuns(w io.Writer, runs []types.RunSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Dataset", "State", "Extracted", "Transformed", "Duration", "Error"})
	table.SetAutoWrapText(false)

	for _, r := range runs {
		errText := ""
		if r.State == types.StateFailed {
			errText = fmt.Sprintf("%s in %s", r.ErrorKind, r.FailedStage)
		}
		duration := "-"
		if r.State.Terminal() {
			duration = r.Duration().Round(time.Millisecond).String()
		}
		table.Append([]string{
			r.StartedAt.Local().Format(time.DateTime),
			r.Dataset,
			string(r.State),
			strconv.Itoa(r.ExtractedRows),
			strconv.Itoa(r.TransformedRows),
			duration,
			errText,
		})
	}
	table.Render()
}
