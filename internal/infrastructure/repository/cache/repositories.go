package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/standings"
	basecache "github.com/minac/nba-game-recommender/internal/platform/cache"
)

// GameRepository memoizes window reads over a slower backing store.
// Every write drops all memoized windows so a refresh is visible on
// the next read. The memo TTL should stay well below the freshness
// maxAge passed to GetWindow; the store only shortcuts repeated reads
// of unchanged rows, it does not extend their lifetime.
type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) GetWindow(ctx context.Context, window game.Window, maxAge time.Duration) ([]game.Game, bool, error) {
	key := "games:window:" + window.String() + ":" + strconv.FormatInt(int64(maxAge/time.Second), 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, ok, err := r.next.GetWindow(ctx, window, maxAge)
		if err != nil {
			return nil, err
		}
		return cachedGameWindow{items: append([]game.Game(nil), items...), ok: ok}, nil
	})
	if err != nil {
		return nil, false, err
	}

	cached, _ := v.(cachedGameWindow)
	return append([]game.Game(nil), cached.items...), cached.ok, nil
}

func (r *GameRepository) PutWindow(ctx context.Context, window game.Window, items []game.Game, fetchedAt time.Time) error {
	if err := r.next.PutWindow(ctx, window, items, fetchedAt); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "games:window:")
	return nil
}

func (r *GameRepository) InvalidateWindow(ctx context.Context, window game.Window) error {
	if err := r.next.InvalidateWindow(ctx, window); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "games:window:")
	return nil
}

type cachedGameWindow struct {
	items []game.Game
	ok    bool
}

// StandingsRepository memoizes per-season snapshot reads.
type StandingsRepository struct {
	next  standings.Repository
	cache *basecache.Store
}

func NewStandingsRepository(next standings.Repository, cache *basecache.Store) *StandingsRepository {
	return &StandingsRepository{next: next, cache: cache}
}

func (r *StandingsRepository) GetBySeason(ctx context.Context, season string) (standings.Snapshot, bool, error) {
	key := "standings:season:" + season
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		snapshot, exists, err := r.next.GetBySeason(ctx, season)
		if err != nil {
			return nil, err
		}
		return cachedSnapshot{value: snapshot, exists: exists}, nil
	})
	if err != nil {
		return standings.Snapshot{}, false, err
	}

	cached, _ := v.(cachedSnapshot)
	return cached.value, cached.exists, nil
}

func (r *StandingsRepository) Upsert(ctx context.Context, snapshot standings.Snapshot) error {
	if err := r.next.Upsert(ctx, snapshot); err != nil {
		return err
	}
	r.cache.Delete(ctx, "standings:season:"+snapshot.Season)
	return nil
}

type cachedSnapshot struct {
	value  standings.Snapshot
	exists bool
}
