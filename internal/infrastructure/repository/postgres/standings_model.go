package postgres

import "time"

type standingTableModel struct {
	ID        int64     `db:"id"`
	Season    string    `db:"season"`
	TeamAbbr  string    `db:"team_abbr"`
	TeamName  string    `db:"team_name"`
	Rank      int       `db:"rank"`
	Wins      int       `db:"wins"`
	Losses    int       `db:"losses"`
	FetchedAt time.Time `db:"fetched_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type standingInsertModel struct {
	Season    string    `db:"season"`
	TeamAbbr  string    `db:"team_abbr"`
	TeamName  string    `db:"team_name"`
	Rank      int       `db:"rank"`
	Wins      int       `db:"wins"`
	Losses    int       `db:"losses"`
	FetchedAt time.Time `db:"fetched_at"`
}
