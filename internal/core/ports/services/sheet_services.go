package services

import (
	"context"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
)

// SheetSvcFacade fetches typed result sets from the configured data source.
type SheetSvcFacade interface {
	// Fetch reads the range described by settings, possibly from cache.
	Fetch(ctx context.Context, settings domain.PageSettings) (domain.ResultSet, domain.FetchMeta, error)

	// SampleData returns the built-in demo table used as a fallback.
	SampleData(ctx context.Context) (domain.ResultSet, domain.FetchMeta)

	// Invalidate drops every cached result.
	Invalidate(ctx context.Context)
}
