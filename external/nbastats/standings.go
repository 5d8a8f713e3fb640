package nbastats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/standings"
)

// FetchStandings loads the league table and ranks it by win percentage
// across both conferences.
func (c *Client) FetchStandings(ctx context.Context, season string) (standings.Snapshot, error) {
	var envelope statsEnvelope
	err := c.doJSON(ctx, "/leaguestandingsv3", map[string]string{
		"LeagueID":   "00",
		"Season":     season,
		"SeasonType": "Regular Season",
	}, &envelope)
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("fetch standings season=%s: %w", season, err)
	}

	set, ok := envelope.findSet("Standings")
	if !ok {
		return standings.Snapshot{}, fmt.Errorf("standings response missing Standings result set")
	}

	type ranked struct {
		record standings.TeamRecord
		winPct float64
	}
	teams := make([]ranked, 0, 30)
	for _, row := range set.rows() {
		name := strings.TrimSpace(row.str("TeamCity") + " " + row.str("TeamName"))
		abbr := strings.ToUpper(row.str("TeamAbbreviation"))
		if abbr == "" {
			abbr = game.AbbrForTeam(name)
		}
		if abbr == "" {
			continue
		}
		teams = append(teams, ranked{
			record: standings.TeamRecord{
				TeamAbbr: abbr,
				TeamName: name,
				Wins:     row.intVal("WINS"),
				Losses:   row.intVal("LOSSES"),
			},
			winPct: row.floatVal("WinPCT"),
		})
	}
	if len(teams) == 0 {
		return standings.Snapshot{}, fmt.Errorf("standings response contained no teams")
	}

	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].winPct != teams[j].winPct {
			return teams[i].winPct > teams[j].winPct
		}
		if teams[i].record.Wins != teams[j].record.Wins {
			return teams[i].record.Wins > teams[j].record.Wins
		}
		return teams[i].record.TeamAbbr < teams[j].record.TeamAbbr
	})

	out := standings.Snapshot{
		Season:    season,
		Teams:     make([]standings.TeamRecord, 0, len(teams)),
		FetchedAt: time.Now().UTC(),
	}
	for i, team := range teams {
		team.record.Rank = i + 1
		out.Teams = append(out.Teams, team.record)
	}
	return out, nil
}
