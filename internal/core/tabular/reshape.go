package tabular

import (
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// Limit keeps the first n rows. n <= 0 means no cap.
func Limit(rs domain.ResultSet, n int) domain.ResultSet {
	rows := rs.Rows
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return domain.ResultSet{Columns: copyColumns(rs.Columns), Rows: append([]domain.Row{}, rows...)}
}

// Project keeps the listed columns in the listed order. Unknown and repeated names
// are skipped; an empty list keeps every column.
func Project(rs domain.ResultSet, columns []string) domain.ResultSet {
	if len(columns) == 0 {
		return domain.ResultSet{Columns: copyColumns(rs.Columns), Rows: append([]domain.Row{}, rs.Rows...)}
	}
	var names []string
	var idxs []int
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		idx := rs.ColumnIndex(c)
		if idx < 0 || seen[c] {
			continue
		}
		seen[c] = true
		names = append(names, c)
		idxs = append(idxs, idx)
	}
	if names == nil {
		// none of the requested columns exist, show everything rather than nothing
		return Project(rs, nil)
	}

	rows := make([]domain.Row, len(rs.Rows))
	for i, row := range rs.Rows {
		projected := make(domain.Row, len(idxs))
		for j, idx := range idxs {
			projected[j] = row.At(idx)
		}
		rows[i] = projected
	}
	return domain.ResultSet{Columns: names, Rows: rows}
}

// Apply runs the whole pipeline a page uses: filter, sort, cap, then select columns.
func Apply(rs domain.ResultSet, s domain.PageSettings) domain.ResultSet {
	out := Filter(rs, s.Filters)
	out = Sort(out, s.SortBy, s.SortAscending)
	out = Limit(out, s.MaxRows)
	return Project(out, s.SelectedColumns)
}
