// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract reads tab-separated occurrence files into a Table.
// Values are typed permissively per column: a column whose present cells
// all parse as base-10 integers becomes integer, else floating point if
// they all parse as finite floats, else text. Missing-value tokens become
// null regardless of column type.
package extract

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/pgzip"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

const (
	delimiter = '\t'
	gzipExt   = ".gz"
	utf8BOM   = "\ufeff"
)

// missingTokens are the cell texts read as null, matching the defaults of
// common dataframe readers so exported nulls round-trip.
var missingTokens = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"None":     {},
	"<NA>":     {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"1.#IND":   {},
	"1.#QNAN":  {},
}

// IsMissingToken reports whether cell text is read as null.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

// Extract reads the whole file at path into a Table. Paths ending in .gz
// are decompressed first. All failures wrap types.ErrSourceAccess.
func Extract(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, types.ErrSourceAccess, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), gzipExt) {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream %s: %w: %w", path, types.ErrSourceAccess, err)
		}
		defer gz.Close()
		r = gz
	}

	t, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// Read parses tab-separated text with a header row from r.
func Read(r io.Reader) (*types.Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", types.ErrSourceAccess)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing header: %w", types.ErrSourceAccess, err)
	}
	if err := checkUTF8(cr, header); err != nil {
		return nil, err
	}
	columns, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrSourceAccess, err)
		}
		if err := checkUTF8(cr, rec); err != nil {
			return nil, err
		}
		if len(rec) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d",
				types.ErrSourceAccess, line, len(columns), len(rec))
		}
		records = append(records, rec)
	}

	kinds := inferKinds(len(columns), records)
	rows := make([]types.Row, len(records))
	for i, rec := range records {
		row := make(types.Row, len(columns))
		for j, col := range columns {
			if j >= len(rec) {
				row[col] = types.NullValue()
				continue
			}
			row[col] = convert(rec[j], kinds[j])
		}
		rows[i] = row
	}

	return &types.Table{Columns: columns, Rows: rows}, nil
}

// checkUTF8 rejects a record holding bytes that are not valid UTF-8.
func checkUTF8(cr *csv.Reader, rec []string) error {
	for i, field := range rec {
		if !utf8.ValidString(field) {
			line, col := cr.FieldPos(i)
			return fmt.Errorf("%w: line %d, column %d: invalid UTF-8", types.ErrSourceAccess, line, col)
		}
	}
	return nil
}

func parseHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if name == "" {
			return nil, fmt.Errorf("%w: header column %d is empty", types.ErrSourceAccess, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate header column %q", types.ErrSourceAccess, name)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns, nil
}

func inferKinds(n int, records [][]string) []types.ValueKind {
	kinds := make([]types.ValueKind, n)
	for j := range kinds {
		allInt, allFloat, seen := true, true, false
		for _, rec := range records {
			if j >= len(rec) || IsMissingToken(rec[j]) {
				continue
			}
			seen = true
			if allInt && !isInt(rec[j]) {
				allInt = false
			}
			if allFloat && !isFloat(rec[j]) {
				allFloat = false
			}
			if !allInt && !allFloat {
				break
			}
		}
		switch {
		case !seen:
			kinds[j] = types.KindString
		case allInt:
			kinds[j] = types.KindInt
		case allFloat:
			kinds[j] = types.KindFloat
		default:
			kinds[j] = types.KindString
		}
	}
	return kinds
}

func convert(cell string, kind types.ValueKind) types.Value {
	if IsMissingToken(cell) {
		return types.NullValue()
	}
	switch kind {
	case types.KindInt:
		i, _ := strconv.ParseInt(cell, 10, 64)
		return types.IntValue(i)
	case types.KindFloat:
		f, _ := strconv.ParseFloat(cell, 64)
		return types.FloatValue(f)
	}
	return types.StringValue(cell)
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}
