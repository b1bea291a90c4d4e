package dto

import "github.com/SscSPs/sheet_dashboard/internal/core/pages"

// ListPagesResponse wraps the navigation entries.
type ListPagesResponse struct {
	Pages []pages.Summary `json:"pages"`
}

// RefreshResponse confirms a cache invalidation.
type RefreshResponse struct {
	Message string `json:"message"`
}
