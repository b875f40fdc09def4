// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the dataset catalog: which occurrence files exist,
// which columns each keeps, and where their outputs go.
package catalog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/occurrence-etl/internal/transform"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

const outputExt = ".json"

// Defaults returns the built-in catalog: the CMLRE survey export and the
// marine mammal sightings export.
func Defaults() []types.DatasetConfig {
	return []types.DatasetConfig{
		{
			Name:   "dataset1",
			Subdir: "CMLRE dataset",
			Columns: types.ColumnSpec{
				"id", "individualCount", "maximumDepthInMeters", "decimalLatitude",
				"decimalLongitude", "dateIdentified", "scientificName",
			},
		},
		{
			Name:   "dataset3",
			Subdir: "MammalSightings",
			Columns: types.ColumnSpec{
				"id", "individualCount", "eventDate", "maximumDepthInMeters",
				"decimalLatitude", "decimalLongitude", "scientificName",
			},
		},
	}
}

// Configured returns the catalog from cfg, or the built-in one when cfg
// declares no datasets.
func Configured(cfg types.Config) []types.DatasetConfig {
	if len(cfg.Datasets) > 0 {
		return cfg.Datasets
	}
	return Defaults()
}

// Resolve fills defaults and source/destination paths for every dataset
// in the configured catalog and validates the result.
func Resolve(cfg types.Config) ([]types.DatasetConfig, error) {
	in := Configured(cfg)
	out := make([]types.DatasetConfig, len(in))
	for i, ds := range in {
		ds.Columns = append(types.ColumnSpec(nil), ds.Columns...)
		if ds.Subdir == "" {
			ds.Subdir = ds.Name
		}
		if ds.SourceFile == "" {
			ds.SourceFile = types.DefaultSourceFile
		}
		if ds.OutputFile == "" {
			ds.OutputFile = ds.Name + outputExt
		}
		if ds.Cleaning.Policy == "" {
			ds.Cleaning.Policy = types.PolicyDropMissing
		}
		if ds.SourcePath == "" {
			ds.SourcePath = filepath.Join(cfg.RawDir, ds.Subdir, ds.SourceFile)
		}
		if ds.OutputPath == "" {
			ds.OutputPath = filepath.Join(cfg.ProcessedDir, ds.Subdir, ds.OutputFile)
		}
		out[i] = ds
	}

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks names, column lists, cleaning policies, and that no two
// datasets share a destination.
func Validate(datasets []types.DatasetConfig) error {
	if len(datasets) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	names := make(map[string]bool, len(datasets))
	dests := make(map[string]string, len(datasets))
	for i, ds := range datasets {
		if ds.Name == "" {
			return fmt.Errorf("dataset %d: name is required", i+1)
		}
		if strings.ContainsAny(ds.Name, `/\`) {
			return fmt.Errorf("dataset %s: name must not contain path separators", ds.Name)
		}
		if names[ds.Name] {
			return fmt.Errorf("dataset %s: declared more than once", ds.Name)
		}
		names[ds.Name] = true

		if len(ds.Columns) == 0 {
			return fmt.Errorf("dataset %s: no columns selected", ds.Name)
		}
		cols := make(map[string]bool, len(ds.Columns))
		for _, c := range ds.Columns {
			if c == "" {
				return fmt.Errorf("dataset %s: empty column name", ds.Name)
			}
			if cols[c] {
				return fmt.Errorf("dataset %s: column %q selected twice", ds.Name, c)
			}
			cols[c] = true
		}

		if _, err := transform.PredicateFor(ds.Columns, ds.Cleaning); err != nil {
			return fmt.Errorf("dataset %s: %w", ds.Name, err)
		}

		if ds.OutputPath != "" {
			dest := filepath.Clean(ds.OutputPath)
			if other, ok := dests[dest]; ok {
				return fmt.Errorf("datasets %s and %s both write %s", other, ds.Name, dest)
			}
			dests[dest] = ds.Name
		}
	}
	return nil
}

// Select returns the datasets named, in the order given. An empty names
// list selects nothing.
func Select(datasets []types.DatasetConfig, names []string) ([]types.DatasetConfig, error) {
	byName := make(map[string]types.DatasetConfig, len(datasets))
	for _, ds := range datasets {
		byName[ds.Name] = ds
	}

	out := make([]types.DatasetConfig, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		ds, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q (known: %s)", n, strings.Join(Names(datasets), ", "))
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, ds)
	}
	return out, nil
}

// Names returns the sorted dataset names.
func Names(datasets []types.DatasetConfig) []string {
	names := make([]string, len(datasets))
	for i, ds := range datasets {
		names[i] = ds.Name
	}
	sort.Strings(names)
	return names
}

// MarshalYAML renders datasets as a config file fragment with a top-level
// datasets key, suitable for pasting into occurrence-etl.yaml.
func MarshalYAML(datasets []types.DatasetConfig) ([]byte, error) {
	doc := struct {
		Datasets []types.DatasetConfig `yaml:"datasets"`
	}{Datasets: datasets}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}
	return data, nil
}
