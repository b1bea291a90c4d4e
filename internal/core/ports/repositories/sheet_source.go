package repositories

import "context"

// SheetSource reads raw cell values from a spreadsheet backend.
type SheetSource interface {
	// SheetTitles lists the tab names of a spreadsheet.
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)

	// ReadRange returns the cells of an A1 range, row by row. Trailing empty
	// cells may be omitted by the backend.
	ReadRange(ctx context.Context, spreadsheetID, rangeA1 string) ([][]string, error)
}
