// Package pages is the static registry of dashboard pages. Each page turns a
// request (who is asking, which unsaved overrides to preview) into a View that
// the presentation layer renders as it likes.
package pages

import (
	"context"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/core/tabular"
)

// MessageLevel is the severity of a user-visible message.
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelSuccess MessageLevel = "success"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// Message is shown next to the page content. Recoverable failures become
// messages instead of errors.
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}

// DataInfo summarises the fetched data before and after the pipeline ran.
type DataInfo struct {
	TotalRows     int              `json:"total_rows"`
	TotalColumns  int              `json:"total_columns"`
	FilteredRows  int              `json:"filtered_rows"`
	DisplayedRows int              `json:"displayed_rows"`
	Range         string           `json:"range"`
	Source        domain.FetchMeta `json:"source"`
}

// View is the rendered state of one page.
type View struct {
	PageID   string                         `json:"page_id"`
	Title    string                         `json:"title"`
	ReadOnly bool                           `json:"read_only"`
	Settings *domain.PageSettings           `json:"settings,omitempty"`
	Columns  []tabular.ColumnInfo           `json:"columns,omitempty"`
	Data     *domain.ResultSet              `json:"data,omitempty"`
	Info     *DataInfo                      `json:"info,omitempty"`
	Pages    map[string]domain.PageSettings `json:"pages,omitempty"`
	Messages []Message                      `json:"messages"`
}

func (v *View) addMessage(level MessageLevel, text string) {
	v.Messages = append(v.Messages, Message{Level: level, Text: text})
}

// RenderContext carries the request-scoped inputs of a render.
type RenderContext struct {
	// UserID is empty for anonymous visitors.
	UserID string
	// Overrides, when set, replaces the stored settings for this render only.
	Overrides *domain.PageSettings
}

// Page is implemented by every entry in the registry.
type Page interface {
	ID() string
	Title() string
	Render(ctx context.Context, rc *RenderContext) (*View, error)
}
