package store

import "time"

// Session is a logical grouping of captures mapped to a single remote page.
// Contents is a rolling window of the most recent captures; ContentCount is
// the unbounded lifetime total for the session.
type Session struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CreatedAt    time.Time      `json:"created_at"`
	RemotePageID string         `json:"remote_page_id,omitempty"`
	Contents     []ContentEntry `json:"contents"`
	ContentCount int            `json:"content_count"`
}

// ContentEntry is one captured item inside a session's rolling context.
type ContentEntry struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}
