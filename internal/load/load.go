// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package load writes cleaned tables as JSON Lines files.
package load

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// Load writes t to dest as JSON Lines, one object per row with keys in
// column order. The parent directory is created if needed. Output goes to
// a temp file that is renamed over dest on success, so an existing file is
// replaced whole and a failed write leaves no partial file behind. All
// failures wrap types.ErrDestinationAccess.
func Load(t *types.Table, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w: %w", dir, types.ErrDestinationAccess, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".load-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w: %w", types.ErrDestinationAccess, err)
	}
	tmpPath := tmpFile.Name()

	bw := bufio.NewWriter(tmpFile)
	writeErr := Write(bw, t)
	if writeErr == nil {
		writeErr = bw.Flush()
	}
	if writeErr == nil {
		writeErr = tmpFile.Chmod(0o644)
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w: %w", dest, types.ErrDestinationAccess, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w: %w", types.ErrDestinationAccess, closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w: %w", types.ErrDestinationAccess, err)
	}
	return nil
}

// Write encodes every row of t to w as one JSON object per line.
func Write(w io.Writer, t *types.Table) error {
	var line bytes.Buffer
	for i, row := range t.Rows {
		line.Reset()
		if err := encodeRow(&line, t.Columns, row); err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
		if _, err := w.Write(line.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// encodeRow appends {"col":value,...}\n to buf. Absent cells encode as null.
func encodeRow(buf *bytes.Buffer, columns []string, row types.Row) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, c := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeScalar(buf, enc, c); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeScalar(buf, enc, row[c]); err != nil {
			return fmt.Errorf("column %s: %w", c, err)
		}
	}
	buf.WriteString("}\n")
	return nil
}

// encodeScalar writes v without the newline json.Encoder appends.
func encodeScalar(buf *bytes.Buffer, enc *json.Encoder, v any) error {
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
