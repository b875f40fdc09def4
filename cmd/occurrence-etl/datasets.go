// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/occurrence-etl/internal/catalog"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the dataset catalog",
	Long: `Datasets prints the resolved catalog: each dataset's source file,
destination, kept columns, and cleaning policy. With --yaml it prints the
catalog as a datasets: block that can be pasted into occurrence-etl.yaml
and edited.`,
	RunE: runDatasets,
}

func init() {
	datasetsCmd.Flags().Bool("yaml", false, "print the catalog as a config file fragment")

	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	asYAML, _ := cmd.Flags().GetBool("yaml")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if asYAML {
		data, err := catalog.MarshalYAML(catalog.Configured(cfg))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	datasets, err := catalog.Resolve(cfg)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	renderDatasets(os.Stdout, datasets)
	return nil
}

func renderDatasets(w io.Writer, datasets []types.DatasetConfig) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Source", "Destination", "Columns", "Policy"})
	table.SetAutoWrapText(false)

	for _, ds := range datasets {
		policy := string(ds.Cleaning.Policy)
		if ds.Cleaning.Policy == types.PolicyRequire {
			policy += " " + strings.Join(ds.Cleaning.Required, ",")
		}
		table.Append([]string{
			ds.Name,
			ds.SourcePath,
			ds.OutputPath,
			strings.Join(ds.Columns, ", "),
			policy,
		})
	}
	table.Render()
}
