package standings

import "context"

// Repository persists one snapshot per season.
type Repository interface {
	GetBySeason(ctx context.Context, season string) (Snapshot, bool, error)
	Upsert(ctx context.Context, snapshot Snapshot) error
}
