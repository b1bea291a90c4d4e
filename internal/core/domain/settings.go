package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FilterKind selects the semantics of a ColumnFilter.
type FilterKind string

const (
	FilterNumeric  FilterKind = "numeric"
	FilterDate     FilterKind = "date"
	FilterCategory FilterKind = "category"
	FilterText     FilterKind = "text"
)

// ColumnFilter is the filter for a single column. Which fields matter depends on Kind.
type ColumnFilter struct {
	Kind FilterKind `json:"kind" validate:"required,oneof=numeric date category text"`

	// numeric: inclusive range, either bound may be absent
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// date: inclusive range over the date portion
	From *Date `json:"from,omitempty"`
	To   *Date `json:"to,omitempty"`

	// category: selected members
	Values []string `json:"values,omitempty"`

	// text: case-insensitive substring
	Contains string `json:"contains,omitempty"`
}

// IsEmpty reports whether the filter imposes no constraint at all.
func (f ColumnFilter) IsEmpty() bool {
	switch f.Kind {
	case FilterNumeric:
		return f.Min == nil && f.Max == nil
	case FilterDate:
		return f.From == nil && f.To == nil
	case FilterCategory:
		for _, v := range f.Values {
			if v != "" {
				return false
			}
		}
		return true
	case FilterText:
		return strings.TrimSpace(f.Contains) == ""
	default:
		return true
	}
}

// PageSettings is the display configuration of one (user, page) pair.
// Every field has a page-specific default, see package defaults.
type PageSettings struct {
	SpreadsheetID   string                  `json:"spreadsheet_id" validate:"required"`
	SheetName       string                  `json:"sheet_name" validate:"required"`
	StartCol        string                  `json:"start_col" validate:"required,column"`
	EndCol          string                  `json:"end_col" validate:"required,column"`
	StartRow        int                     `json:"start_row" validate:"min=1"`
	EndRow          int                     `json:"end_row" validate:"gtefield=StartRow"`
	SortBy          string                  `json:"sort_by"`
	SortAscending   bool                    `json:"sort_ascending"`
	SelectedColumns []string                `json:"selected_columns"`
	Filters         map[string]ColumnFilter `json:"filters" validate:"dive"`
	MaxRows         int                     `json:"max_rows" validate:"min=0"`
}

var columnLabelRe = regexp.MustCompile(`^[A-Z]{1,3}$`)

// IsColumnLabel reports whether s is a spreadsheet column label such as "A" or "AW".
func IsColumnLabel(s string) bool {
	return columnLabelRe.MatchString(s)
}

// Normalize upper-cases column labels, trims identifiers and replaces nil collections
// with empty ones so that stored and loaded records compare equal.
func (s *PageSettings) Normalize() {
	s.SpreadsheetID = strings.TrimSpace(s.SpreadsheetID)
	s.SheetName = strings.TrimSpace(s.SheetName)
	s.StartCol = strings.ToUpper(strings.TrimSpace(s.StartCol))
	s.EndCol = strings.ToUpper(strings.TrimSpace(s.EndCol))
	s.SortBy = strings.TrimSpace(s.SortBy)
	if s.SelectedColumns == nil {
		s.SelectedColumns = []string{}
	}
	if s.Filters == nil {
		s.Filters = map[string]ColumnFilter{}
	}
}

// Clone returns a deep copy.
func (s PageSettings) Clone() PageSettings {
	out := s
	out.SelectedColumns = append([]string{}, s.SelectedColumns...)
	out.Filters = make(map[string]ColumnFilter, len(s.Filters))
	for col, f := range s.Filters {
		if f.Values != nil {
			f.Values = append([]string{}, f.Values...)
		}
		f.Min, f.Max = clonePtr(f.Min), clonePtr(f.Max)
		f.From, f.To = clonePtr(f.From), clonePtr(f.To)
		out.Filters[col] = f
	}
	return out
}

// Patch returns a copy of s with every field present in the JSON object data
// replaced. A present "filters" key replaces the whole filter map.
func (s PageSettings) Patch(data []byte) (PageSettings, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return s, err
	}
	out := s.Clone()
	if _, ok := present["filters"]; ok {
		out.Filters = nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return s, err
	}
	out.Normalize()
	return out, nil
}

// RangeA1 renders the settings' bounds in A1 notation, e.g. 'ALERTS'!A1:D1000.
func (s PageSettings) RangeA1() string {
	sheet := strings.ReplaceAll(s.SheetName, "'", "''")
	return fmt.Sprintf("'%s'!%s%d:%s%d", sheet, s.StartCol, s.StartRow, s.EndCol, s.EndRow)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
