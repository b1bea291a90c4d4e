// Package defaults is the single source of truth for default page settings.
// Every load path merges stored values over Resolve, so a field added here is
// backfilled for existing records automatically.
package defaults

import (
	"sync/atomic"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// Known page identifiers.
const (
	PageAlerts   = "alerts"
	PageSignals  = "signals"
	PageSettings = "settings"
	PageViewer   = "viewer"
)

// FallbackSpreadsheetID is used until SetSpreadsheetID is called.
const FallbackSpreadsheetID = "116XDr6Kziy_LSCx_xrMpq4TNXIEJLbVw2lIHBk1McC8"

var spreadsheetID atomic.Value

func init() {
	spreadsheetID.Store(FallbackSpreadsheetID)
}

// SetSpreadsheetID overrides the default data source for every page. Call it at
// startup, before serving requests. An empty id is ignored.
func SetSpreadsheetID(id string) {
	if id != "" {
		spreadsheetID.Store(id)
	}
}

type pageDefaults struct {
	sheetName string
	startCol  string
	endCol    string
}

var pages = map[string]pageDefaults{
	PageAlerts:  {sheetName: "ALERTS", startCol: "A", endCol: "D"},
	PageSignals: {sheetName: "Dashboard-ETFs-Sort", startCol: "A", endCol: "AW"},
}

var generic = pageDefaults{sheetName: "Sheet1", startCol: "A", endCol: "Z"}

// Resolve returns a fresh copy of the default settings for pageID.
// Unknown pages get the generic defaults.
func Resolve(pageID string) domain.PageSettings {
	p, ok := pages[pageID]
	if !ok {
		p = generic
	}
	return domain.PageSettings{
		SpreadsheetID:   spreadsheetID.Load().(string),
		SheetName:       p.sheetName,
		StartCol:        p.startCol,
		EndCol:          p.endCol,
		StartRow:        1,
		EndRow:          1000,
		SortBy:          "",
		SortAscending:   true,
		SelectedColumns: []string{},
		Filters:         map[string]domain.ColumnFilter{},
		MaxRows:         0,
	}
}

// KnownPages lists the pages that carry their own data-source defaults.
func KnownPages() []string {
	return []string{PageAlerts, PageSignals}
}
