// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ":8080"},
		{"5000", ":5000"},
		{":9000", ":9000"},
		{"127.0.0.1:8081", "127.0.0.1:8081"},
		{" 7000 ", ":7000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAddr(tt.in), "input %q", tt.in)
	}
}

func TestSelectDatasets(t *testing.T) {
	cfg := types.Config{RawDir: "raw", ProcessedDir: "out"}

	all, err := selectDatasets(cfg, nil, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := selectDatasets(cfg, []string{"dataset3"}, false)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "dataset3", one[0].Name)

	_, err = selectDatasets(cfg, nil, false)
	assert.ErrorContains(t, err, "known: dataset1, dataset3")

	_, err = selectDatasets(cfg, []string{"dataset1"}, true)
	assert.ErrorContains(t, err, "not both")

	_, err = selectDatasets(cfg, []string{"dataset2"}, false)
	assert.ErrorContains(t, err, "unknown dataset")
}

func TestRenderDatasets(t *testing.T) {
	var buf bytes.Buffer
	renderDatasets(&buf, []types.DatasetConfig{{
		Name:       "turtles",
		SourcePath: "raw/turtles/occurrence.txt",
		OutputPath: "out/turtles/turtles.json",
		Columns:    types.ColumnSpec{"id", "scientificName"},
		Cleaning:   types.CleaningConfig{Policy: types.PolicyRequire, Required: []string{"id"}},
	}})

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "turtles")
	assert.Contains(t, out, "id, scientificName")
	assert.Contains(t, out, "require id")
}

func TestRenderRuns(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	renderRuns(&buf, []types.RunSummary{
		{
			Dataset: "dataset1", StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
			State: types.StateDone, ExtractedRows: 4, TransformedRows: 3,
		},
		{
			Dataset: "dataset3", StartedAt: start, FinishedAt: start,
			State: types.StateFailed, FailedStage: types.StateTransforming, ErrorKind: types.ErrorKindSchema,
		},
		{
			Dataset: "interrupted", StartedAt: start, State: types.StateLoading,
			ExtractedRows: 12,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "schema in transforming")
	assert.Contains(t, out, "dataset3")
	assert.Regexp(t, `interrupted\s*\|\s*loading\s*\|\s*12\s*\|\s*0\s*\|\s*-\s*\|`, out)
}

func TestOpenRecordStoreRejectsUnknownBackend(t *testing.T) {
	_, _, err := openRecordStore(context.Background(), types.StoreConfig{}, "redis")
	assert.ErrorContains(t, err, `unknown store "redis"`)
}

func TestOpenRecordStoreSQLite(t *testing.T) {
	rs, closeStore, err := openRecordStore(context.Background(),
		types.StoreConfig{Path: t.TempDir() + "/occurrence.db"}, backendSQLite)
	require.NoError(t, err)
	defer closeStore()

	n, err := rs.ReplaceRecords(context.Background(), "dataset1", []types.Document{types.Document(`{"id":1}`)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := rs.Datasets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.DatasetCount{{Name: "dataset1", Records: 1}}, counts)
}
