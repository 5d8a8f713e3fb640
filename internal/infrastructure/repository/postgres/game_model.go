package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type gameTableModel struct {
	ID            int64          `db:"id"`
	GameKey       string         `db:"game_key"`
	GameDate      time.Time      `db:"game_date"`
	HomeTeam      string         `db:"home_team"`
	AwayTeam      string         `db:"away_team"`
	HomeScore     sql.NullInt64  `db:"home_score"`
	AwayScore     sql.NullInt64  `db:"away_score"`
	LeadChanges   int            `db:"lead_changes"`
	StarPlayerIDs pq.StringArray `db:"star_player_ids"`
	Source        string         `db:"source"`
	FetchedAt     time.Time      `db:"fetched_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type gameInsertModel struct {
	GameKey       string         `db:"game_key"`
	GameDate      time.Time      `db:"game_date"`
	HomeTeam      string         `db:"home_team"`
	AwayTeam      string         `db:"away_team"`
	HomeScore     *int           `db:"home_score"`
	AwayScore     *int           `db:"away_score"`
	LeadChanges   int            `db:"lead_changes"`
	StarPlayerIDs pq.StringArray `db:"star_player_ids"`
	Source        string         `db:"source"`
	FetchedAt     time.Time      `db:"fetched_at"`
}

type coverageInsertModel struct {
	CoveredDay time.Time `db:"covered_day"`
	FetchedAt  time.Time `db:"fetched_at"`
}
