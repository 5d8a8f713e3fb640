package game

import (
	"context"
	"time"
)

// Repository persists canonical game records plus per-day fetch
// coverage. It is the only shared mutable state in the ingestion core.
//
// Coverage is tracked per day so that a day with no games is
// distinguishable from a day that was never fetched: an empty result
// from a provider is a valid success and must not look like a miss.
type Repository interface {
	// GetWindow returns the cached records inside the window, or
	// ok=false when the snapshot does not cover every day of the
	// window or when the oldest covering fetch exceeds maxAge.
	// Partial coverage is a full miss for the whole window.
	GetWindow(ctx context.Context, window Window, maxAge time.Duration) ([]Game, bool, error)
	// PutWindow upserts the records and marks every day of the window
	// as covered at fetchedAt. A primary-sourced record always
	// replaces a fallback-sourced one for the same ID; a
	// fallback-sourced record never replaces a primary-sourced one.
	PutWindow(ctx context.Context, window Window, items []Game, fetchedAt time.Time) error
	// InvalidateWindow drops the coverage markers and game rows for
	// the window so the next GetWindow misses regardless of age.
	InvalidateWindow(ctx context.Context, window Window) error
}
