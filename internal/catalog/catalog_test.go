// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

func TestResolveDefaults(t *testing.T) {
	cfg := types.Config{RawDir: "data/raw", ProcessedDir: "data/processed"}

	got, err := Resolve(cfg)
	require.NoError(t, err)
	require.Len(t, got, 2)

	d1 := got[0]
	assert.Equal(t, "dataset1", d1.Name)
	assert.Equal(t, filepath.Join("data/raw", "CMLRE dataset", "occurrence.txt"), d1.SourcePath)
	assert.Equal(t, filepath.Join("data/processed", "CMLRE dataset", "dataset1.json"), d1.OutputPath)
	assert.Equal(t, types.PolicyDropMissing, d1.Cleaning.Policy)
	assert.Contains(t, d1.Columns, "dateIdentified")

	d3 := got[1]
	assert.Equal(t, filepath.Join("data/processed", "MammalSightings", "dataset3.json"), d3.OutputPath)
	assert.Contains(t, d3.Columns, "eventDate")
	assert.NotContains(t, d3.Columns, "dateIdentified")
}

func TestResolveDoesNotMutateDefaults(t *testing.T) {
	got, err := Resolve(types.Config{RawDir: "r", ProcessedDir: "p"})
	require.NoError(t, err)
	got[0].Columns[0] = "changed"

	assert.Equal(t, "id", Defaults()[0].Columns[0])
}

func TestResolveConfiguredCatalog(t *testing.T) {
	cfg := types.Config{
		RawDir:       "/raw",
		ProcessedDir: "/out",
		Datasets: []types.DatasetConfig{
			{
				Name:       "turtles",
				SourceFile: "occurrence.txt.gz",
				Columns:    types.ColumnSpec{"id", "scientificName"},
				Cleaning:   types.CleaningConfig{Policy: types.PolicyRequire, Required: []string{"id"}},
			},
			{
				Name:       "override",
				Columns:    types.ColumnSpec{"id"},
				SourcePath: "/elsewhere/in.tsv",
				OutputPath: "/elsewhere/out.json",
			},
		},
	}

	got, err := Resolve(cfg)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "/raw/turtles/occurrence.txt.gz", got[0].SourcePath)
	assert.Equal(t, "/out/turtles/turtles.json", got[0].OutputPath)
	assert.Equal(t, "/elsewhere/in.tsv", got[1].SourcePath)
	assert.Equal(t, "/elsewhere/out.json", got[1].OutputPath)
}

func TestValidate(t *testing.T) {
	cols := types.ColumnSpec{"id", "scientificName"}

	tests := []struct {
		name     string
		datasets []types.DatasetConfig
		errMsg   string
	}{
		{"empty catalog", nil, "catalog is empty"},
		{"missing name", []types.DatasetConfig{{Columns: cols}}, "name is required"},
		{"path in name", []types.DatasetConfig{{Name: "a/b", Columns: cols}}, "path separators"},
		{
			"duplicate name",
			[]types.DatasetConfig{{Name: "a", Columns: cols, OutputPath: "x"}, {Name: "a", Columns: cols, OutputPath: "y"}},
			"declared more than once",
		},
		{"no columns", []types.DatasetConfig{{Name: "a"}}, "no columns selected"},
		{"duplicate column", []types.DatasetConfig{{Name: "a", Columns: types.ColumnSpec{"id", "id"}}}, "selected twice"},
		{
			"bad required column",
			[]types.DatasetConfig{{Name: "a", Columns: cols, Cleaning: types.CleaningConfig{Policy: types.PolicyRequire, Required: []string{"eventDate"}}}},
			"not among the selected columns",
		},
		{
			"shared destination",
			[]types.DatasetConfig{
				{Name: "a", Columns: cols, OutputPath: "/out/x.json"},
				{Name: "b", Columns: cols, OutputPath: "/out/../out/x.json"},
			},
			"both write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.datasets)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSelect(t *testing.T) {
	all := Defaults()

	got, err := Select(all, []string{"dataset3", "dataset1", "dataset3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dataset3", got[0].Name)
	assert.Equal(t, "dataset1", got[1].Name)

	_, err = Select(all, []string{"dataset2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known: dataset1, dataset3")
}

func TestMarshalYAML(t *testing.T) {
	data, err := MarshalYAML(Defaults())
	require.NoError(t, err)

	var doc struct {
		Datasets []types.DatasetConfig `yaml:"datasets"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, Defaults(), doc.Datasets)
	assert.Contains(t, string(data), "subdir: CMLRE dataset")
}
