package usecase

import (
	"context"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/standings"
)

// GameProvider fetches finished games for a date window from one
// upstream source. Implementations return a *SourceFailure when the
// upstream call fails, classified as timeout or error.
type GameProvider interface {
	Source() string
	FetchGames(ctx context.Context, window game.Window) ([]game.Game, error)
}

// StandingsProvider fetches the current league standings snapshot.
type StandingsProvider interface {
	FetchStandings(ctx context.Context, season string) (standings.Snapshot, error)
}

// BuzzProvider estimates public excitement for a single game on a
// bounded integer scale. Failures must never surface to callers of the
// recommendation flow; the scorer degrades missing buzz to zero.
type BuzzProvider interface {
	ScoreBuzz(ctx context.Context, games []game.Game) (map[string]int, error)
}
