package dto

import "github.com/SscSPs/sheet_dashboard/internal/core/domain"

// SettingsResponse is the effective settings of one page. Warning is set when
// the settings are defaults served because the stored record was unusable.
type SettingsResponse struct {
	PageID   string              `json:"page_id"`
	Settings domain.PageSettings `json:"settings"`
	ReadOnly bool                `json:"read_only"`
	Warning  string              `json:"warning,omitempty"`
}

// AllSettingsResponse maps every data page to its effective settings.
type AllSettingsResponse struct {
	Pages    map[string]domain.PageSettings `json:"pages"`
	ReadOnly bool                           `json:"read_only"`
	Warning  string                         `json:"warning,omitempty"`
}
