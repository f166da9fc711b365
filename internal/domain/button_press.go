package domain

import (
	"context"
	"time"
)

// RecentPressLimit is how many presses a summary carries.
const RecentPressLimit = 5

// TimestampLayout is the ISO-8601 form used for every timestamp this service
// writes or reports: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ButtonPress is one record of the append-only buttonPresses collection.
// PressedAt is written by this service; CreatedAt is the store's own insert
// timestamp and is nil when the store did not provide a usable one.
type ButtonPress struct {
	ID        string
	PressedAt *string
	CreatedAt *time.Time
}

// PressEntry is the summary view of a single press.
type PressEntry struct {
	ID        string  `json:"id"`
	PressedAt *string `json:"pressedAt"`
	CreatedAt *string `json:"createdAt"`
}

// NewPressEntry converts a stored press into its summary form.
func NewPressEntry(p ButtonPress) PressEntry {
	entry := PressEntry{ID: p.ID, PressedAt: p.PressedAt}
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		s := FormatTimestamp(*p.CreatedAt)
		entry.CreatedAt = &s
	}
	return entry
}

// PressSummary pairs the tally of the whole collection with the most recent
// presses, newest first. Total is not len(Entries).
type PressSummary struct {
	Total   int          `json:"total"`
	Entries []PressEntry `json:"entries"`
}

// ButtonPressRepository is the storage side of the buttonPresses collection.
type ButtonPressRepository interface {
	// Insert appends one press. A failed insert leaves no document behind.
	Insert(ctx context.Context, pressedAt string) error
	// Count returns the number of presses in the collection.
	Count(ctx context.Context) (int, error)
	// Recent returns at most limit presses, most recently inserted first.
	Recent(ctx context.Context, limit int) ([]ButtonPress, error)
}
