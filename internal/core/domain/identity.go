package domain

import "time"

// Identity is the authenticated principal extracted from a bearer token or session.
type Identity struct {
	UserID    string
	Username  string
	SessionID string
	ExpiresAt time.Time
}

// FetchMeta describes where a result set came from.
type FetchMeta struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Range         string    `json:"range"`
	Sample        bool      `json:"sample"`
	Cached        bool      `json:"cached"`
	FetchedAt     time.Time `json:"fetched_at"`
}
