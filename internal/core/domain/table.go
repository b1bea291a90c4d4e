package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ValueKind is the semantic type of a cell.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Value is a single cell. Raw always holds the text the data source returned.
type Value struct {
	Kind   ValueKind
	Raw    string
	Number decimal.Decimal
	Date   Date
}

func EmptyValue() Value { return Value{Kind: KindEmpty} }

func TextValue(s string) Value {
	if s == "" {
		return EmptyValue()
	}
	return Value{Kind: KindText, Raw: s}
}

func NumberValue(raw string, d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Raw: raw, Number: d}
}

func DateValue(raw string, d Date) Value {
	return Value{Kind: KindDate, Raw: raw, Date: d}
}

func (v Value) String() string { return v.Raw }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return []byte(v.Number.String()), nil
	case KindDate:
		return v.Date.MarshalJSON()
	case KindText:
		return json.Marshal(v.Raw)
	default:
		return []byte("null"), nil
	}
}

// Row is an ordered sequence of cells aligned with ResultSet.Columns.
type Row []Value

// ResultSet is an ordered, immutable table. Transforms build new ResultSets
// that may share Row values with their input but never modify them.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// ColumnIndex returns the position of the named column or -1.
func (rs ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (rs ResultSet) Len() int { return len(rs.Rows) }

// Cell returns the value of the named column in row i.
func (rs ResultSet) Cell(i int, column string) (Value, bool) {
	idx := rs.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(rs.Rows) {
		return Value{}, false
	}
	return rs.Rows[i].At(idx), true
}

// At returns the cell at idx, or an empty value when the row is short.
func (r Row) At(idx int) Value {
	if idx < 0 || idx >= len(r) {
		return EmptyValue()
	}
	return r[idx]
}
