package memory

import (
	"context"
	"sync"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
)

// GameRepository is the in-memory game store used in dev mode and in
// tests. It mirrors the postgres semantics: per-day coverage markers,
// and primary records never overwritten by fallback ones.
type GameRepository struct {
	mu       sync.RWMutex
	items    map[string]game.Game
	coverage map[string]time.Time
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		items:    make(map[string]game.Game),
		coverage: make(map[string]time.Time),
	}
}

func (r *GameRepository) GetWindow(_ context.Context, window game.Window, maxAge time.Duration) ([]game.Game, bool, error) {
	cutoff := time.Now().Add(-maxAge)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, day := range window.Days() {
		fetchedAt, ok := r.coverage[dayKey(day)]
		if !ok || fetchedAt.Before(cutoff) {
			return nil, false, nil
		}
	}

	out := make([]game.Game, 0, len(r.items))
	for _, item := range r.items {
		if window.Contains(item.Date) {
			out = append(out, item)
		}
	}
	game.SortStable(out)
	return out, true, nil
}

func (r *GameRepository) PutWindow(_ context.Context, window game.Window, items []game.Game, fetchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.FetchedAt = fetchedAt
		existing, ok := r.items[item.ID]
		if ok && existing.Source == game.SourcePrimary && item.Source != game.SourcePrimary {
			continue
		}
		r.items[item.ID] = item
	}
	for _, day := range window.Days() {
		r.coverage[dayKey(day)] = fetchedAt
	}
	return nil
}

func (r *GameRepository) InvalidateWindow(_ context.Context, window game.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, day := range window.Days() {
		delete(r.coverage, dayKey(day))
	}
	for key, item := range r.items {
		if window.Contains(item.Date) {
			delete(r.items, key)
		}
	}
	return nil
}

func dayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}
