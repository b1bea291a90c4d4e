// Package sheets adapts the Google Sheets v4 API to the SheetSource port.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client reads spreadsheet values with a service-account identity.
type Client struct {
	svc *sheetsapi.Service
}

var _ portsrepo.SheetSource = (*Client)(nil)

// NewClient builds a read-only Sheets client from a service-account JSON bundle.
func NewClient(ctx context.Context, credentialsJSON []byte) (*Client, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("invalid google credentials: %w", err)
	}
	svc, err := sheetsapi.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// SheetTitles lists the tab names of a spreadsheet.
func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, "spreadsheet "+spreadsheetID)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// ReadRange returns formatted cell values, row by row.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rangeA1 string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rangeA1).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, rangeA1)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out, nil
}

// classify maps API failures onto the error taxonomy.
func classify(err error, what string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
		case http.StatusForbidden:
			return fmt.Errorf("%s is not shared with the service account: %w: %w", what, apperrors.ErrFetch, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", what, apperrors.ErrFetch, err)
}
