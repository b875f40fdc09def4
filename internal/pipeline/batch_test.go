// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

func TestRunAll(t *testing.T) {
	good1 := testDataset(t, "dataset1", occurrenceTSV)
	good2 := testDataset(t, "dataset3", occurrenceTSV)
	bad := testDataset(t, "broken", "id\n1\n")

	console := NewConsole(&bytes.Buffer{})
	var pipelines []*Pipeline
	for _, ds := range []types.DatasetConfig{good1, bad, good2} {
		p, err := New(ds, WithProgress(console.For(ds.Name)))
		require.NoError(t, err)
		pipelines = append(pipelines, p)
	}

	result, err := RunAll(context.Background(), pipelines, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSchema))

	assert.Equal(t, 2, result.Succeeded())
	assert.Equal(t, 1, result.Failed())
	require.Len(t, result.Results, 3)
	assert.Equal(t, "dataset1", result.Results[0].Summary.Dataset)
	assert.Equal(t, types.StateFailed, result.Results[1].Summary.State)
	assert.Equal(t, "dataset3", result.Results[2].Summary.Dataset)

	for _, ds := range []types.DatasetConfig{good1, good2} {
		_, err := os.Stat(ds.OutputPath)
		assert.NoError(t, err)
	}
}

func TestRunAllRejectsSharedDestination(t *testing.T) {
	a := testDataset(t, "dataset1", occurrenceTSV)
	b := testDataset(t, "dataset3", occurrenceTSV)
	b.OutputPath = a.OutputPath + "/."

	pa, err := New(a)
	require.NoError(t, err)
	pb, err := New(b)
	require.NoError(t, err)

	_, err = RunAll(context.Background(), []*Pipeline{pa, pb}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both write")
	assert.Equal(t, types.StateIdle, pa.State(), "nothing runs when destinations collide")
}

func TestConsolePrefixesLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	_, err := c.For("dataset1").Write([]byte("Extracting...\n"))
	require.NoError(t, err)
	_, err = c.For("dataset3").Write([]byte("Loading...\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"[dataset1] Extracting...", "[dataset3] Loading..."},
		strings.Split(strings.TrimSpace(buf.String()), "\n"))
}
