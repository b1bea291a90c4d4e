package pages

import (
	"context"
	"errors"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
)

// settingsPage lists the effective settings of every data page.
type settingsPage struct {
	settings portssvc.SettingsSvcFacade
}

func newSettingsPage(settings portssvc.SettingsSvcFacade) *settingsPage {
	return &settingsPage{settings: settings}
}

func (p *settingsPage) ID() string    { return defaults.PageSettings }
func (p *settingsPage) Title() string { return "Settings" }

func (p *settingsPage) Render(ctx context.Context, rc *RenderContext) (*View, error) {
	view := &View{PageID: p.ID(), Title: p.Title(), ReadOnly: rc.UserID == "", Messages: []Message{}}
	if view.ReadOnly {
		view.addMessage(LevelInfo, "Log in to save your settings.")
	}

	all, err := p.settings.LoadAllSettings(ctx, rc.UserID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrAuth), errors.Is(err, apperrors.ErrPermissionDenied):
		return nil, err
	case errors.Is(err, apperrors.ErrStorage):
		view.addMessage(LevelWarning, "Settings storage is unavailable; showing defaults.")
	default:
		view.addMessage(LevelWarning, "Some saved settings could not be read; showing defaults for those pages.")
	}
	view.Pages = all
	return view, nil
}
