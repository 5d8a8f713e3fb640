package memory

import (
	"context"
	"sync"

	"github.com/minac/nba-game-recommender/internal/domain/standings"
)

type StandingsRepository struct {
	mu       sync.RWMutex
	bySeason map[string]standings.Snapshot
}

func NewStandingsRepository() *StandingsRepository {
	return &StandingsRepository{
		bySeason: make(map[string]standings.Snapshot),
	}
}

func (r *StandingsRepository) GetBySeason(_ context.Context, season string) (standings.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.bySeason[season]
	if !ok {
		return standings.Snapshot{}, false, nil
	}

	out := snapshot
	out.Teams = append([]standings.TeamRecord(nil), snapshot.Teams...)
	return out, true, nil
}

func (r *StandingsRepository) Upsert(_ context.Context, snapshot standings.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := snapshot
	stored.Teams = append([]standings.TeamRecord(nil), snapshot.Teams...)
	r.bySeason[snapshot.Season] = stored
	return nil
}
