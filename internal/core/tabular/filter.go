package tabular

import (
	"strings"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

type predicate func(domain.Value) bool

// Filter keeps the rows that satisfy every non-empty filter. Empty filters and
// filters naming columns that are not in the result set impose no constraint.
func Filter(rs domain.ResultSet, filters map[string]domain.ColumnFilter) domain.ResultSet {
	type check struct {
		idx  int
		pass predicate
	}
	var checks []check
	for column, f := range filters {
		if f.IsEmpty() {
			continue
		}
		idx := rs.ColumnIndex(column)
		if idx < 0 {
			continue
		}
		if p := predicateFor(f); p != nil {
			checks = append(checks, check{idx: idx, pass: p})
		}
	}

	out := domain.ResultSet{Columns: copyColumns(rs.Columns), Rows: make([]domain.Row, 0, len(rs.Rows))}
	for _, row := range rs.Rows {
		keep := true
		for _, c := range checks {
			if !c.pass(row.At(c.idx)) {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func predicateFor(f domain.ColumnFilter) predicate {
	switch f.Kind {
	case domain.FilterNumeric:
		return numericRange(f.Min, f.Max)
	case domain.FilterDate:
		return dateRange(f.From, f.To)
	case domain.FilterCategory:
		return memberOf(f.Values)
	case domain.FilterText:
		return containsFold(f.Contains)
	default:
		return nil
	}
}

// numericRange excludes values that are not numbers.
func numericRange(minV, maxV *float64) predicate {
	var lo, hi *decimal.Decimal
	if minV != nil {
		d := decimal.NewFromFloat(*minV)
		lo = &d
	}
	if maxV != nil {
		d := decimal.NewFromFloat(*maxV)
		hi = &d
	}
	return func(v domain.Value) bool {
		n, ok := asNumber(v)
		if !ok {
			return false
		}
		if lo != nil && n.LessThan(*lo) {
			return false
		}
		if hi != nil && n.GreaterThan(*hi) {
			return false
		}
		return true
	}
}

// dateRange compares calendar dates only; values that are not dates are excluded.
func dateRange(from, to *domain.Date) predicate {
	return func(v domain.Value) bool {
		d, ok := asDate(v)
		if !ok {
			return false
		}
		if from != nil && d.Compare(domain.DateOf(from.Time)) < 0 {
			return false
		}
		if to != nil && d.Compare(domain.DateOf(to.Time)) > 0 {
			return false
		}
		return true
	}
}

func memberOf(values []string) predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return func(v domain.Value) bool {
		_, ok := set[v.Raw]
		return ok
	}
}

func containsFold(needle string) predicate {
	needle = strings.ToLower(needle)
	return func(v domain.Value) bool {
		return strings.Contains(strings.ToLower(v.Raw), needle)
	}
}

func asNumber(v domain.Value) (decimal.Decimal, bool) {
	switch v.Kind {
	case domain.KindNumber:
		return v.Number, true
	case domain.KindText:
		return parseNumber(strings.TrimSpace(v.Raw))
	default:
		return decimal.Decimal{}, false
	}
}

func asDate(v domain.Value) (domain.Date, bool) {
	switch v.Kind {
	case domain.KindDate:
		return v.Date, true
	case domain.KindText:
		d, err := domain.ParseDate(v.Raw)
		return d, err == nil
	default:
		return domain.Date{}, false
	}
}

func copyColumns(cols []string) []string {
	return append([]string{}, cols...)
}
