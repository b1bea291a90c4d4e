package tabular

import (
	"slices"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// CategoryThreshold is the distinct-value count below which a text column is
// offered as a categorical (multi-select) filter.
const CategoryThreshold = 10

// ColumnInfo describes a column so that a client can build filter controls for it.
type ColumnInfo struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	FilterKind domain.FilterKind `json:"filter_kind"`
	Min        *domain.Value     `json:"min,omitempty"`
	Max        *domain.Value     `json:"max,omitempty"`
	Options    []string          `json:"options,omitempty"`
}

// Describe reports the kind, bounds and (for categorical columns) the options of every column.
func Describe(rs domain.ResultSet) []ColumnInfo {
	infos := make([]ColumnInfo, len(rs.Columns))
	for idx, name := range rs.Columns {
		infos[idx] = describeColumn(rs, idx, name)
	}
	return infos
}

func describeColumn(rs domain.ResultSet, idx int, name string) ColumnInfo {
	info := ColumnInfo{Name: name}
	kind := domain.KindEmpty
	mixed := false
	distinct := map[string]struct{}{}
	var lo, hi *domain.Value

	for _, row := range rs.Rows {
		v := row.At(idx)
		if v.Kind == domain.KindEmpty {
			continue
		}
		distinct[v.Raw] = struct{}{}
		if kind == domain.KindEmpty {
			kind = v.Kind
		} else if kind != v.Kind {
			mixed = true
		}
		if lo == nil || compareValues(v, *lo) < 0 {
			lo = &v
		}
		if hi == nil || compareValues(v, *hi) > 0 {
			hi = &v
		}
	}
	if mixed {
		kind = domain.KindText
	}
	info.Kind = kind.String()

	switch kind {
	case domain.KindNumber:
		info.FilterKind = domain.FilterNumeric
		info.Min, info.Max = lo, hi
	case domain.KindDate:
		info.FilterKind = domain.FilterDate
		info.Min, info.Max = lo, hi
	default:
		if len(distinct) > 0 && len(distinct) < CategoryThreshold {
			info.FilterKind = domain.FilterCategory
			info.Options = make([]string, 0, len(distinct))
			for v := range distinct {
				info.Options = append(info.Options, v)
			}
			slices.Sort(info.Options)
		} else {
			info.FilterKind = domain.FilterText
		}
	}
	return info
}
