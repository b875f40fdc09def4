// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies the dynamic type held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is a single table cell. Only the field matching Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

// NullValue returns a missing cell.
func NullValue() Value { return Value{Kind: KindNull} }

// StringValue returns a text cell.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue returns an integer cell.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue returns a floating point cell.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// IsMissing reports whether the cell is null or an empty string.
func (v Value) IsMissing() bool {
	return v.Kind == KindNull || (v.Kind == KindString && v.Str == "")
}

// String renders the cell as text; null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
	return ""
}

// MarshalJSON encodes the cell as a JSON null, string or number. Floats
// always carry a fraction or exponent so they decode back as floats; text
// is not HTML-escaped.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v.Str); err != nil {
			return nil, err
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	case KindInt:
		return strconv.AppendInt(nil, v.Int, 10), nil
	case KindFloat:
		b, err := json.Marshal(v.Float)
		if err != nil {
			return nil, err
		}
		if !bytes.ContainsAny(b, ".eE") {
			b = append(b, ".0"...)
		}
		return b, nil
	}
	return []byte("null"), nil
}

// Row maps column names to cells.
type Row map[string]Value

// Table is an ordered collection of rows with named columns.
type Table struct {
	// Columns lists column names in source order.
	Columns []string

	// Rows holds the data rows in source order.
	Rows []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
