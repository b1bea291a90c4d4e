// Package tabular filters, sorts and reshapes in-memory result sets.
// Every function returns a new ResultSet and leaves its input untouched.
package tabular

import (
	"fmt"
	"strings"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Coerce builds a typed ResultSet from raw string cells. A column whose non-empty
// cells all parse as numbers becomes numeric; failing that, a column whose
// non-empty cells all parse as dates becomes a date column; anything else stays text.
func Coerce(header []string, rows [][]string) domain.ResultSet {
	columns := uniqueColumns(header)
	kinds := make([]domain.ValueKind, len(columns))
	for c := range columns {
		kinds[c] = columnKind(rows, c)
	}

	out := make([]domain.Row, len(rows))
	for r, raw := range rows {
		row := make(domain.Row, len(columns))
		for c := range columns {
			cell := ""
			if c < len(raw) {
				cell = strings.TrimSpace(raw[c])
			}
			row[c] = typedValue(cell, kinds[c])
		}
		out[r] = row
	}
	return domain.ResultSet{Columns: columns, Rows: out}
}

func columnKind(rows [][]string, c int) domain.ValueKind {
	cells := make([]string, 0, len(rows))
	for _, raw := range rows {
		if c < len(raw) {
			if cell := strings.TrimSpace(raw[c]); cell != "" {
				cells = append(cells, cell)
			}
		}
	}
	if len(cells) == 0 {
		return domain.KindText
	}
	if all(cells, func(s string) bool { _, ok := parseNumber(s); return ok }) {
		return domain.KindNumber
	}
	if all(cells, func(s string) bool { _, err := domain.ParseDate(s); return err == nil }) {
		return domain.KindDate
	}
	return domain.KindText
}

func all(cells []string, pred func(string) bool) bool {
	for _, c := range cells {
		if !pred(c) {
			return false
		}
	}
	return true
}

func typedValue(cell string, kind domain.ValueKind) domain.Value {
	if cell == "" {
		return domain.EmptyValue()
	}
	switch kind {
	case domain.KindNumber:
		if d, ok := parseNumber(cell); ok {
			return domain.NumberValue(cell, d)
		}
	case domain.KindDate:
		if d, err := domain.ParseDate(cell); err == nil {
			return domain.DateValue(cell, d)
		}
	}
	return domain.TextValue(cell)
}

func parseNumber(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// uniqueColumns names blank headers and disambiguates duplicates.
func uniqueColumns(header []string) []string {
	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header)) // next suffix to try per base name
	out := make([]string, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = fmt.Sprintf("Column %d", i+1)
		}
		name := base
		for n := max(next[base], 2); used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
			next[base] = n + 1
		}
		used[name] = true
		out[i] = name
	}
	return out
}
