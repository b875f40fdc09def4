// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seed imports a dataset's JSON Lines output into a record store,
// replacing whatever the store held for that dataset.
package seed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// Target is a store that can replace a dataset's records.
type Target interface {
	ReplaceRecords(ctx context.Context, dataset string, docs []types.Document) (int, error)
}

// ReadJSONLines reads path as JSON Lines. Blank lines are skipped. Every
// other line must be a JSON object; the first that is not aborts the read.
func ReadJSONLines(path string) ([]types.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, types.ErrSourceAccess, err)
	}
	defer f.Close()

	docs, err := readJSONLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return docs, nil
}

func readJSONLines(r io.Reader) ([]types.Document, error) {
	br := bufio.NewReader(r)
	var docs []types.Document
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("line %d: %w: %w", lineNo, types.ErrSourceAccess, err)
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 {
			if !gjson.ValidBytes(trimmed) || !gjson.ParseBytes(trimmed).IsObject() {
				return nil, fmt.Errorf("line %d: %w: not a JSON object", lineNo, types.ErrSourceAccess)
			}
			docs = append(docs, types.Document(trimmed))
		}

		if errors.Is(err, io.EOF) {
			return docs, nil
		}
	}
}

// Seed replaces the records of dataset in target with the contents of
// the JSON Lines file at path and returns the number imported. The file
// is fully read and validated before target is touched. Progress goes to
// w.
func Seed(ctx context.Context, target Target, dataset, path string, w io.Writer) (int, error) {
	fmt.Fprintf(w, "Reading %s...\n", path)
	docs, err := ReadJSONLines(path)
	if err != nil {
		return 0, fmt.Errorf("seeding %s: %w", dataset, err)
	}
	if len(docs) == 0 {
		fmt.Fprintf(w, "warning: %s has no records; clearing %s\n", path, dataset)
	}

	n, err := target.ReplaceRecords(ctx, dataset, docs)
	if err != nil {
		return 0, fmt.Errorf("seeding %s: %w: %w", dataset, types.ErrDestinationAccess, err)
	}
	fmt.Fprintf(w, "Inserted %d records into %s\n", n, dataset)
	return n, nil
}
