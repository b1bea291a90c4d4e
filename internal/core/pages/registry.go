package pages

import (
	"fmt"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
)

// Summary names a page for navigation.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Registry resolves pages by id.
type Registry struct {
	pages map[string]Page
	order []string
}

// NewRegistry registers the dashboard's pages in navigation order.
func NewRegistry(settings portssvc.SettingsSvcFacade, sheets portssvc.SheetSvcFacade) *Registry {
	r := &Registry{pages: map[string]Page{}}
	r.register(newSheetPage(defaults.PageAlerts, "Alerts", settings, sheets))
	r.register(newSheetPage(defaults.PageSignals, "Signals", settings, sheets))
	r.register(newSheetPage(defaults.PageViewer, "Data Viewer", settings, sheets))
	r.register(newSettingsPage(settings))
	return r
}

func (r *Registry) register(p Page) {
	if _, dup := r.pages[p.ID()]; dup {
		panic(fmt.Sprintf("page %q registered twice", p.ID()))
	}
	r.pages[p.ID()] = p
	r.order = append(r.order, p.ID())
}

// Lookup returns apperrors.ErrNotFound for unknown ids.
func (r *Registry) Lookup(id string) (Page, error) {
	p, ok := r.pages[id]
	if !ok {
		return nil, fmt.Errorf("page %q: %w", id, apperrors.ErrNotFound)
	}
	return p, nil
}

func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Summary{ID: id, Title: r.pages[id].Title()})
	}
	return out
}
