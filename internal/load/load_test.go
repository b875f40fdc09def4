// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package load

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

func cleanedTable() *types.Table {
	return &types.Table{
		Columns: []string{"id", "individualCount", "decimalLatitude", "scientificName"},
		Rows: []types.Row{
			{
				"id":              types.IntValue(1),
				"individualCount": types.IntValue(5),
				"decimalLatitude": types.FloatValue(12.1),
				"scientificName":  types.StringValue("Labeo rohita"),
			},
			{
				"id":              types.IntValue(2),
				"individualCount": types.IntValue(3),
				"decimalLatitude": types.FloatValue(-8.5),
				"scientificName":  types.StringValue("Sardinella <longiceps> & co"),
			},
		},
	}
}

// valueOf converts a scalar decoded with UseNumber back into a cell.
func valueOf(t *testing.T, x any) types.Value {
	t.Helper()
	switch v := x.(type) {
	case nil:
		return types.NullValue()
	case string:
		return types.StringValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return types.IntValue(i)
		}
		f, err := v.Float64()
		require.NoError(t, err)
		return types.FloatValue(f)
	}
	t.Fatalf("unexpected cell type %T", x)
	return types.Value{}
}

// readJSONLines parses a JSON Lines file back into a Table.
func readJSONLines(t *testing.T, path string, columns []string) *types.Table {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out := &types.Table{Columns: columns}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		dec := json.NewDecoder(strings.NewReader(sc.Text()))
		dec.UseNumber()
		var obj map[string]any
		require.NoError(t, dec.Decode(&obj))
		require.Len(t, obj, len(columns))

		row := make(types.Row, len(obj))
		for k, raw := range obj {
			row[k] = valueOf(t, raw)
		}
		out.Rows = append(out.Rows, row)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestLoadRoundTrip(t *testing.T) {
	in := cleanedTable()
	dest := filepath.Join(t.TempDir(), "processed", "CMLRE dataset", "dataset1.json")

	require.NoError(t, Load(in, dest))

	got := readJSONLines(t, dest, in.Columns)
	assert.Equal(t, in, got)
}

func TestLoadKeyOrderAndFormat(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Load(cleanedTable(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	want := `{"id":1,"individualCount":5,"decimalLatitude":12.1,"scientificName":"Labeo rohita"}` + "\n" +
		`{"id":2,"individualCount":3,"decimalLatitude":-8.5,"scientificName":"Sardinella <longiceps> & co"}` + "\n"
	assert.Equal(t, want, string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoadIdempotent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, Load(cleanedTable(), dest))
	first, err := os.ReadFile(dest)
	require.NoError(t, err)

	require.NoError(t, Load(cleanedTable(), dest))
	second, err := os.ReadFile(dest)
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-running must overwrite, not append")
}

func TestLoadOverwritesLargerFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(dest, bytes.Repeat([]byte("stale\n"), 100), 0o644))

	require.NoError(t, Load(cleanedTable(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestLoadEmptyTable(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "out.json")
	empty := &types.Table{Columns: []string{"id"}}

	require.NoError(t, Load(empty, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLoadNullCell(t *testing.T) {
	var buf bytes.Buffer
	tbl := &types.Table{
		Columns: []string{"id", "eventDate"},
		Rows:    []types.Row{{"id": types.StringValue("a")}},
	}
	require.NoError(t, Write(&buf, tbl))
	assert.Equal(t, `{"id":"a","eventDate":null}`+"\n", buf.String())
}

func TestLoadFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	// A directory at the destination path makes the final rename fail.
	dest := filepath.Join(dir, "out.json")
	require.NoError(t, os.Mkdir(dest, 0o755))

	err := Load(cleanedTable(), dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDestinationAccess))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file %s left behind", e.Name())
	}
}

func TestLoadUncreatableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := Load(cleanedTable(), filepath.Join(blocker, "sub", "out.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDestinationAccess))
	assert.Contains(t, err.Error(), "creating directory")
}
