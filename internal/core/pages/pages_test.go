package pages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/sheet_dashboard/internal/adapters/sheets"
	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/core/pages"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/services"
	"github.com/SscSPs/sheet_dashboard/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type failingSource struct{ err error }

func (f failingSource) SheetTitles(context.Context, string) ([]string, error) { return nil, f.err }
func (f failingSource) ReadRange(context.Context, string, string) ([][]string, error) {
	return nil, f.err
}

type PagesTestSuite struct {
	suite.Suite
	settings portssvc.SettingsSvcFacade
	registry *pages.Registry
	ctx      context.Context
}

func (s *PagesTestSuite) SetupTest() {
	s.settings = services.NewSettingsService(memory.NewSettingsRepository())
	s.registry = pages.NewRegistry(s.settings, services.NewSheetService(nil, sheets.NewSampleSource()))
	s.ctx = context.Background()
}

func TestPagesTestSuite(t *testing.T) {
	suite.Run(t, new(PagesTestSuite))
}

func (s *PagesTestSuite) render(id string, rc *pages.RenderContext) *pages.View {
	page, err := s.registry.Lookup(id)
	s.Require().NoError(err)
	view, err := page.Render(s.ctx, rc)
	s.Require().NoError(err)
	return view
}

func (s *PagesTestSuite) TestList() {
	ids := []string{}
	for _, p := range s.registry.List() {
		ids = append(ids, p.ID)
	}
	s.Equal([]string{defaults.PageAlerts, defaults.PageSignals, defaults.PageViewer, defaults.PageSettings}, ids)
}

func (s *PagesTestSuite) TestLookupUnknown() {
	_, err := s.registry.Lookup("nope")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PagesTestSuite) TestAnonymousAlertsUseDefaults() {
	view := s.render(defaults.PageAlerts, &pages.RenderContext{})
	s.True(view.ReadOnly)
	s.Equal(defaults.Resolve(defaults.PageAlerts), *view.Settings)
	s.Equal(30, view.Info.TotalRows)
	s.Equal(30, view.Info.FilteredRows)
	s.True(view.Info.Source.Sample)
	s.Len(view.Columns, 5)
}

func (s *PagesTestSuite) TestSavedSettingsDriveThePipeline() {
	stored := defaults.Resolve(defaults.PageAlerts)
	stored.Filters = map[string]domain.ColumnFilter{
		"Region": {Kind: domain.FilterCategory, Values: []string{"North"}},
	}
	stored.SortBy = "Sales"
	stored.SortAscending = false
	stored.MaxRows = 3
	stored.SelectedColumns = []string{"Sales", "Region"}
	s.Require().NoError(s.settings.SaveSettings(s.ctx, "user-1", defaults.PageAlerts, stored))

	view := s.render(defaults.PageAlerts, &pages.RenderContext{UserID: "user-1"})
	s.False(view.ReadOnly)
	s.Equal(30, view.Info.TotalRows)
	s.Equal(8, view.Info.FilteredRows, "every fourth sample row is North")
	s.Equal(3, view.Info.DisplayedRows)
	s.Equal([]string{"Sales", "Region"}, view.Data.Columns)

	prev := view.Data.Rows[0].At(0).Number
	for _, row := range view.Data.Rows[1:] {
		s.True(row.At(0).Number.LessThanOrEqual(prev))
		s.Equal("North", row.At(1).Raw)
		prev = row.At(0).Number
	}
}

func (s *PagesTestSuite) TestPreviewOverridesWithoutSaving() {
	preview := defaults.Resolve(defaults.PageSignals)
	preview.MaxRows = 5
	view := s.render(defaults.PageSignals, &pages.RenderContext{UserID: "user-1", Overrides: &preview})
	s.Equal(5, view.Info.DisplayedRows)

	stored, err := s.settings.LoadSettings(s.ctx, "user-1", defaults.PageSignals)
	s.NoError(err)
	s.Equal(0, stored.MaxRows)
}

func (s *PagesTestSuite) TestPreviewRejectsInvalidOverrides() {
	preview := defaults.Resolve(defaults.PageSignals)
	preview.StartRow = 0
	page, err := s.registry.Lookup(defaults.PageSignals)
	s.Require().NoError(err)
	_, err = page.Render(s.ctx, &pages.RenderContext{Overrides: &preview})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PagesTestSuite) TestSettingsPage() {
	view := s.render(defaults.PageSettings, &pages.RenderContext{})
	s.True(view.ReadOnly)
	s.Contains(view.Pages, defaults.PageAlerts)
	s.Contains(view.Pages, defaults.PageSignals)
	s.Nil(view.Data)
}

func TestSheetPage_FetchFailureFallsBackToSample(t *testing.T) {
	settings := services.NewSettingsService(memory.NewSettingsRepository())
	sheetSvc := services.NewSheetService(failingSource{err: errors.New("dial tcp: connection refused")}, sheets.NewSampleSource())
	registry := pages.NewRegistry(settings, sheetSvc)

	page, err := registry.Lookup(defaults.PageAlerts)
	require.NoError(t, err)
	view, err := page.Render(context.Background(), &pages.RenderContext{UserID: "user-1"})
	require.NoError(t, err)

	assert.True(t, view.Info.Source.Sample)
	assert.Equal(t, 30, view.Info.TotalRows)
	levels := []pages.MessageLevel{}
	for _, m := range view.Messages {
		levels = append(levels, m.Level)
	}
	assert.Contains(t, levels, pages.LevelError)
	assert.Contains(t, levels, pages.LevelWarning)
}

func TestSheetPage_MissingSheetMessage(t *testing.T) {
	settings := services.NewSettingsService(memory.NewSettingsRepository())
	sheetSvc := services.NewSheetService(failingSource{err: apperrors.ErrNotFound}, nil)
	registry := pages.NewRegistry(settings, sheetSvc)

	page, err := registry.Lookup(defaults.PageViewer)
	require.NoError(t, err)
	view, err := page.Render(context.Background(), &pages.RenderContext{})
	require.NoError(t, err)

	assert.Equal(t, 0, view.Info.TotalRows)
	require.NotEmpty(t, view.Messages)
	assert.Equal(t, pages.LevelError, view.Messages[0].Level)
	assert.Contains(t, view.Messages[0].Text, "Sheet1")
}

func TestSheetPage_CorruptSettingsWarns(t *testing.T) {
	repo := memory.NewSettingsRepository()
	require.NoError(t, repo.UpsertSettings(context.Background(), "user-1", defaults.PageAlerts, []byte("{broken")))
	settings := services.NewSettingsService(repo)
	registry := pages.NewRegistry(settings, services.NewSheetService(nil, sheets.NewSampleSource()))

	page, _ := registry.Lookup(defaults.PageAlerts)
	view, err := page.Render(context.Background(), &pages.RenderContext{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, defaults.Resolve(defaults.PageAlerts), *view.Settings)
	assert.Equal(t, pages.LevelWarning, view.Messages[0].Level)
}
