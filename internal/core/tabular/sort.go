package tabular

import (
	"slices"
	"strings"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// Sort orders rows by a single column. The sort is stable in both directions and
// empty cells always sort last. An empty or unknown key returns the rows in their
// original order.
func Sort(rs domain.ResultSet, key string, ascending bool) domain.ResultSet {
	out := domain.ResultSet{Columns: copyColumns(rs.Columns), Rows: slices.Clone(rs.Rows)}
	if out.Rows == nil {
		out.Rows = []domain.Row{}
	}
	idx := rs.ColumnIndex(key)
	if key == "" || idx < 0 {
		return out
	}
	slices.SortStableFunc(out.Rows, func(a, b domain.Row) int {
		va, vb := a.At(idx), b.At(idx)
		ea, eb := va.Kind == domain.KindEmpty, vb.Kind == domain.KindEmpty
		switch {
		case ea && eb:
			return 0
		case ea:
			return 1
		case eb:
			return -1
		}
		c := compareValues(va, vb)
		if !ascending {
			c = -c
		}
		return c
	})
	return out
}

// kindRank orders mixed columns: numbers, then dates, then text.
func kindRank(k domain.ValueKind) int {
	switch k {
	case domain.KindNumber:
		return 0
	case domain.KindDate:
		return 1
	default:
		return 2
	}
}

func compareValues(a, b domain.Value) int {
	if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case domain.KindNumber:
		return a.Number.Cmp(b.Number)
	case domain.KindDate:
		return a.Date.Compare(b.Date)
	default:
		return strings.Compare(a.Raw, b.Raw)
	}
}
