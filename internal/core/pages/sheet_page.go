package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/tabular"
)

// sheetPage shows one spreadsheet range through the filter/sort pipeline.
type sheetPage struct {
	id       string
	title    string
	settings portssvc.SettingsSvcFacade
	sheets   portssvc.SheetSvcFacade
}

func newSheetPage(id, title string, settings portssvc.SettingsSvcFacade, sheets portssvc.SheetSvcFacade) *sheetPage {
	return &sheetPage{id: id, title: title, settings: settings, sheets: sheets}
}

func (p *sheetPage) ID() string    { return p.id }
func (p *sheetPage) Title() string { return p.title }

func (p *sheetPage) Render(ctx context.Context, rc *RenderContext) (*View, error) {
	view := &View{PageID: p.id, Title: p.title, ReadOnly: rc.UserID == "", Messages: []Message{}}

	settings, err := p.resolveSettings(ctx, rc, view)
	if err != nil {
		return nil, err
	}
	view.Settings = &settings

	if settings.SpreadsheetID == "" || settings.SheetName == "" {
		view.addMessage(LevelInfo, "Please enter a Spreadsheet ID and sheet name to begin.")
		return view, nil
	}

	rs, meta, err := p.sheets.Fetch(ctx, settings)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuth) {
			return nil, err
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			view.addMessage(LevelError, fmt.Sprintf("Sheet %q was not found in the spreadsheet.", settings.SheetName))
		} else {
			view.addMessage(LevelError, "Error loading data: "+err.Error())
		}
		view.addMessage(LevelInfo, "Please verify your spreadsheet ID and range settings.")
		rs, meta = p.sheets.SampleData(ctx)
		meta.Range = settings.RangeA1()
	}
	if meta.Sample {
		view.addMessage(LevelWarning, "Showing sample data.")
	}

	if rs.Len() == 0 {
		view.addMessage(LevelWarning, "No data found in the specified range. Please check your range settings.")
	} else if !meta.Sample {
		view.addMessage(LevelSuccess, "Data loaded successfully!")
	}

	filtered := tabular.Filter(rs, settings.Filters)
	shown := tabular.Project(tabular.Limit(tabular.Sort(filtered, settings.SortBy, settings.SortAscending), settings.MaxRows), settings.SelectedColumns)

	view.Columns = tabular.Describe(rs)
	view.Data = &shown
	view.Info = &DataInfo{
		TotalRows:     rs.Len(),
		TotalColumns:  len(rs.Columns),
		FilteredRows:  filtered.Len(),
		DisplayedRows: shown.Len(),
		Range:         meta.Range,
		Source:        meta,
	}
	return view, nil
}

// resolveSettings prefers unsaved overrides, then the stored record. Load
// failures degrade to the defaults the settings service already returned.
func (p *sheetPage) resolveSettings(ctx context.Context, rc *RenderContext, view *View) (domain.PageSettings, error) {
	if rc.Overrides != nil {
		preview := rc.Overrides.Clone()
		if err := p.settings.ValidateSettings(&preview); err != nil {
			return domain.PageSettings{}, err
		}
		view.addMessage(LevelInfo, "Previewing unsaved settings.")
		return preview, nil
	}

	settings, err := p.settings.LoadSettings(ctx, rc.UserID, p.id)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrAuth), errors.Is(err, apperrors.ErrPermissionDenied):
		return domain.PageSettings{}, err
	case errors.Is(err, apperrors.ErrCorruptRecord):
		view.addMessage(LevelWarning, "Saved settings could not be read; showing defaults.")
	case errors.Is(err, apperrors.ErrStorage):
		view.addMessage(LevelWarning, "Settings storage is unavailable; showing defaults.")
	default:
		view.addMessage(LevelWarning, "Failed to load settings; showing defaults.")
	}
	return settings, nil
}
