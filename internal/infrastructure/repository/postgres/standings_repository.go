package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minac/nba-game-recommender/internal/domain/standings"
	qb "github.com/minac/nba-game-recommender/internal/platform/querybuilder"
)

type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

func (r *StandingsRepository) GetBySeason(ctx context.Context, season string) (standings.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(qb.Eq("season", season)).
		OrderBy("rank", "team_abbr").
		ToSQL()
	if err != nil {
		return standings.Snapshot{}, false, fmt.Errorf("build select standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if !isRetryablePreparedStatementError(err) {
			return standings.Snapshot{}, false, fmt.Errorf("select standings: %w", err)
		}
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return standings.Snapshot{}, false, fmt.Errorf("select standings retry: %w", err)
		}
	}
	if len(rows) == 0 {
		return standings.Snapshot{}, false, nil
	}

	out := standings.Snapshot{
		Season:    season,
		Teams:     make([]standings.TeamRecord, 0, len(rows)),
		FetchedAt: rows[0].FetchedAt,
	}
	for _, row := range rows {
		out.Teams = append(out.Teams, standings.TeamRecord{
			TeamAbbr: row.TeamAbbr,
			TeamName: row.TeamName,
			Rank:     row.Rank,
			Wins:     row.Wins,
			Losses:   row.Losses,
		})
		if row.FetchedAt.Before(out.FetchedAt) {
			out.FetchedAt = row.FetchedAt
		}
	}
	return out, true, nil
}

func (r *StandingsRepository) Upsert(ctx context.Context, snapshot standings.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.DeleteFrom("standings").
		Where(qb.Eq("season", snapshot.Season)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear standings: %w", err)
	}

	for _, team := range snapshot.Teams {
		query, args, err := qb.InsertModel("standings", standingInsertModel{
			Season:    snapshot.Season,
			TeamAbbr:  team.TeamAbbr,
			TeamName:  team.TeamName,
			Rank:      team.Rank,
			Wins:      team.Wins,
			Losses:    team.Losses,
			FetchedAt: snapshot.FetchedAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert standing team=%s: %w", team.TeamAbbr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert standings tx: %w", err)
	}
	return nil
}
