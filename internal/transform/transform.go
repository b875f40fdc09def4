// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform projects a Table onto a dataset's Column Selection Spec
// and drops rows rejected by the dataset's row-validity predicate.
package transform

import (
	"fmt"
	"strings"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// RowPredicate reports whether a projected row is kept.
type RowPredicate func(row types.Row) bool

// RequireColumns keeps rows with a non-missing value in every named column.
func RequireColumns(columns ...string) RowPredicate {
	cols := append([]string(nil), columns...)
	return func(row types.Row) bool {
		for _, c := range cols {
			v, ok := row[c]
			if !ok || v.IsMissing() {
				return false
			}
		}
		return true
	}
}

// DropMissing keeps rows with no missing value in any column of spec.
func DropMissing(spec types.ColumnSpec) RowPredicate {
	return RequireColumns(spec...)
}

// PredicateFor builds the predicate named by a dataset's cleaning config.
func PredicateFor(spec types.ColumnSpec, cfg types.CleaningConfig) (RowPredicate, error) {
	switch cfg.Policy {
	case "", types.PolicyDropMissing:
		return DropMissing(spec), nil
	case types.PolicyRequire:
		if len(cfg.Required) == 0 {
			return nil, fmt.Errorf("cleaning policy %q needs at least one required column", cfg.Policy)
		}
		for _, c := range cfg.Required {
			if !spec.Contains(c) {
				return nil, fmt.Errorf("required column %q is not among the selected columns", c)
			}
		}
		return RequireColumns(cfg.Required...), nil
	}
	return nil, fmt.Errorf("unknown cleaning policy %q: use %s or %s",
		cfg.Policy, types.PolicyDropMissing, types.PolicyRequire)
}

// MissingColumnsError reports spec columns absent from the source table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: source table lacks column(s) %s",
		types.ErrSchema, strings.Join(e.Columns, ", "))
}

// Unwrap lets errors.Is match types.ErrSchema.
func (e *MissingColumnsError) Unwrap() error { return types.ErrSchema }

// Transform returns a new Table holding exactly the columns of spec, in
// spec order, and only the rows accepted by keep. A nil keep means
// DropMissing(spec). The input table is not modified.
func Transform(t *types.Table, spec types.ColumnSpec, keep RowPredicate) (*types.Table, error) {
	if len(spec) == 0 {
		return nil, fmt.Errorf("%w: empty column selection", types.ErrSchema)
	}

	var missing []string
	for _, c := range spec {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	if keep == nil {
		keep = DropMissing(spec)
	}

	out := &types.Table{
		Columns: append([]string(nil), spec...),
		Rows:    make([]types.Row, 0, t.Len()),
	}
	for _, row := range t.Rows {
		projected := make(types.Row, len(spec))
		for _, c := range spec {
			v, ok := row[c]
			if !ok {
				v = types.NullValue()
			}
			projected[c] = v
		}
		if keep(projected) {
			out.Rows = append(out.Rows, projected)
		}
	}
	return out, nil
}
