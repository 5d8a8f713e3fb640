package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	qb "github.com/minac/nba-game-recommender/internal/platform/querybuilder"
)

// GameRepository persists canonical games plus a per-day coverage
// marker. Coverage is what distinguishes "fetched and empty" from
// "never fetched": a window counts as a hit only when every day in it
// carries a fresh coverage row.
type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetWindow(ctx context.Context, window game.Window, maxAge time.Duration) ([]game.Game, bool, error) {
	days := window.Days()
	cutoff := time.Now().UTC().Add(-maxAge)

	coverageQuery, coverageArgs, err := qb.Select("COUNT(*)").From("game_fetch_coverage").
		Where(
			qb.Gte("covered_day", window.Start),
			qb.Lte("covered_day", window.End),
			qb.Gte("fetched_at", cutoff),
		).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build coverage count query: %w", err)
	}

	var covered int
	if err := r.db.GetContext(ctx, &covered, coverageQuery, coverageArgs...); err != nil {
		if !isRetryablePreparedStatementError(err) {
			return nil, false, fmt.Errorf("count covered days: %w", err)
		}
		if err := r.db.GetContext(ctx, &covered, coverageQuery, coverageArgs...); err != nil {
			return nil, false, fmt.Errorf("count covered days retry: %w", err)
		}
	}
	if covered < len(days) {
		return nil, false, nil
	}

	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Gte("game_date", window.Start),
			qb.Lte("game_date", window.End),
		).
		OrderBy("game_date", "game_key").
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build select games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, false, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapGameRow(row))
	}
	return out, true, nil
}

func (r *GameRepository) PutWindow(ctx context.Context, window game.Window, items []game.Game, fetchedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx put window: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := gameInsertModel{
			GameKey:       item.ID,
			GameDate:      item.Date,
			HomeTeam:      item.HomeTeam,
			AwayTeam:      item.AwayTeam,
			HomeScore:     item.HomeScore,
			AwayScore:     item.AwayScore,
			LeadChanges:   item.LeadChanges,
			StarPlayerIDs: pq.StringArray(item.StarPlayerIDs),
			Source:        item.Source,
			FetchedAt:     fetchedAt,
		}
		// A fallback record never overwrites a primary one for the
		// same real-world game.
		query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (game_key)
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    lead_changes = EXCLUDED.lead_changes,
    star_player_ids = EXCLUDED.star_player_ids,
    source = EXCLUDED.source,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = NOW()
WHERE games.source = 'fallback' OR EXCLUDED.source = 'primary'`)
		if err != nil {
			return fmt.Errorf("build upsert game query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert game key=%s: %w", item.ID, err)
		}
	}

	for _, day := range window.Days() {
		query, args, err := qb.InsertModel("game_fetch_coverage", coverageInsertModel{
			CoveredDay: day,
			FetchedAt:  fetchedAt,
		}, `ON CONFLICT (covered_day)
DO UPDATE SET fetched_at = EXCLUDED.fetched_at`)
		if err != nil {
			return fmt.Errorf("build upsert coverage query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert coverage day=%s: %w", day.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put window tx: %w", err)
	}
	return nil
}

func (r *GameRepository) InvalidateWindow(ctx context.Context, window game.Window) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx invalidate window: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	coverageQuery, coverageArgs, err := qb.DeleteFrom("game_fetch_coverage").
		Where(
			qb.Gte("covered_day", window.Start),
			qb.Lte("covered_day", window.End),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete coverage query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, coverageQuery, coverageArgs...); err != nil {
		return fmt.Errorf("delete coverage: %w", err)
	}

	gamesQuery, gamesArgs, err := qb.DeleteFrom("games").
		Where(
			qb.Gte("game_date", window.Start),
			qb.Lte("game_date", window.End),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete games query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, gamesQuery, gamesArgs...); err != nil {
		return fmt.Errorf("delete games: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invalidate window tx: %w", err)
	}
	return nil
}

func mapGameRow(row gameTableModel) game.Game {
	out := game.Game{
		ID:            row.GameKey,
		Date:          row.GameDate.UTC(),
		HomeTeam:      row.HomeTeam,
		AwayTeam:      row.AwayTeam,
		LeadChanges:   row.LeadChanges,
		StarPlayerIDs: []string(row.StarPlayerIDs),
		Source:        row.Source,
		FetchedAt:     row.FetchedAt,
	}
	if row.HomeScore.Valid && row.AwayScore.Valid {
		homeScore := int(row.HomeScore.Int64)
		awayScore := int(row.AwayScore.Int64)
		out.HomeScore = &homeScore
		out.AwayScore = &awayScore
	}
	return out
}
