package nbastats

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/usecase"
)

const gameStatusFinal = 3

func (c *Client) Source() string { return game.SourcePrimary }

// FetchGames loads every game inside window from the scoreboard feed.
// Final games are enriched with the real lead-change count from play by
// play and with the star players who appear among the league scoring
// leaders. Enrichment failures degrade the single game; a scoreboard
// failure fails the whole attempt so partial windows are never stored.
func (c *Client) FetchGames(ctx context.Context, window game.Window) ([]game.Game, error) {
	out := make([]game.Game, 0, 32)
	leaders := c.leagueLeaders(ctx, seasonFor(window.End))

	for _, day := range window.Days() {
		rows, err := c.fetchScoreboard(ctx, day)
		if err != nil {
			return nil, c.classify(fmt.Errorf("fetch scoreboard %s: %w", day.Format("2006-01-02"), err))
		}

		for _, row := range rows {
			if row.item.Played() {
				c.enrichFinalGame(ctx, &row.item, row.nativeID, leaders)
			}
			out = append(out, row.item)
		}
	}

	return out, nil
}

// scoreboardRow pairs the canonical record with the provider's native
// game id, which the detail endpoints key on.
type scoreboardRow struct {
	item     game.Game
	nativeID string
}

func (c *Client) fetchScoreboard(ctx context.Context, day time.Time) ([]scoreboardRow, error) {
	var envelope statsEnvelope
	err := c.doJSON(ctx, "/scoreboardv2", map[string]string{
		"GameDate":  day.Format("01/02/2006"),
		"LeagueID":  "00",
		"DayOffset": "0",
	}, &envelope)
	if err != nil {
		return nil, err
	}

	headerSet, ok := envelope.findSet("GameHeader")
	if !ok {
		return nil, fmt.Errorf("scoreboard response missing GameHeader result set")
	}
	lineSet, _ := envelope.findSet("LineScore")

	type line struct {
		abbr   string
		points int
		scored bool
	}
	linesByGameTeam := make(map[string]line, 32)
	for _, row := range lineSet.rows() {
		gameID := row.str("GAME_ID")
		teamID := row.int64Val("TEAM_ID")
		if gameID == "" || teamID <= 0 {
			continue
		}
		points, scored := row.hasInt("PTS")
		abbr := row.str("TEAM_ABBREVIATION")
		if abbr == "" {
			abbr = game.AbbrForTeam(strings.TrimSpace(row.str("TEAM_CITY_NAME") + " " + row.str("TEAM_NAME")))
		}
		linesByGameTeam[gameID+":"+strconv.FormatInt(teamID, 10)] = line{
			abbr:   strings.ToUpper(abbr),
			points: points,
			scored: scored,
		}
	}

	out := make([]scoreboardRow, 0, len(headerSet.RowSet))
	for _, row := range headerSet.rows() {
		gameID := row.str("GAME_ID")
		homeTeamID := row.int64Val("HOME_TEAM_ID")
		awayTeamID := row.int64Val("VISITOR_TEAM_ID")
		if gameID == "" || homeTeamID <= 0 || awayTeamID <= 0 {
			continue
		}

		home := linesByGameTeam[gameID+":"+strconv.FormatInt(homeTeamID, 10)]
		away := linesByGameTeam[gameID+":"+strconv.FormatInt(awayTeamID, 10)]
		if home.abbr == "" || away.abbr == "" {
			c.logger.WarnContext(ctx, "skipping scoreboard row without line scores",
				"game_id", gameID,
				"date", day.Format("2006-01-02"),
			)
			continue
		}

		item := game.Game{
			ID:        game.Key(day, home.abbr, away.abbr),
			Date:      day,
			HomeTeam:  home.abbr,
			AwayTeam:  away.abbr,
			Source:    game.SourcePrimary,
			FetchedAt: time.Now().UTC(),
		}
		if row.intVal("GAME_STATUS_ID") == gameStatusFinal && home.scored && away.scored {
			homeScore := home.points
			awayScore := away.points
			item.HomeScore = &homeScore
			item.AwayScore = &awayScore
		}
		out = append(out, scoreboardRow{item: item, nativeID: gameID})
	}

	return out, nil
}

func (c *Client) enrichFinalGame(ctx context.Context, item *game.Game, nativeID string, leaders map[string]struct{}) {
	if nativeID == "" {
		return
	}

	leadChanges, err := c.fetchLeadChanges(ctx, nativeID)
	if err != nil {
		margin, _ := item.Margin()
		item.LeadChanges = game.EstimateLeadChanges(margin)
		c.logger.WarnContext(ctx, "play-by-play unavailable, estimating lead changes",
			"game_id", nativeID,
			"estimate", item.LeadChanges,
			"error", err,
		)
	} else {
		item.LeadChanges = leadChanges
	}

	if len(leaders) == 0 {
		return
	}
	stars, err := c.fetchStarPlayers(ctx, nativeID, leaders)
	if err != nil {
		c.logger.WarnContext(ctx, "box score unavailable, scoring without star players",
			"game_id", nativeID,
			"error", err,
		)
		return
	}
	item.StarPlayerIDs = stars
}

func (c *Client) fetchLeadChanges(ctx context.Context, nativeID string) (int, error) {
	var envelope statsEnvelope
	err := c.doJSON(ctx, "/playbyplayv2", map[string]string{
		"GameID":      nativeID,
		"StartPeriod": "1",
		"EndPeriod":   "14",
	}, &envelope)
	if err != nil {
		return 0, err
	}

	set, ok := envelope.findSet("PlayByPlay")
	if !ok {
		return 0, fmt.Errorf("play-by-play response missing PlayByPlay result set")
	}

	leadChanges := 0
	lastSign := 0
	for _, row := range set.rows() {
		margin := strings.TrimSpace(row.str("SCOREMARGIN"))
		if margin == "" || strings.EqualFold(margin, "TIE") {
			continue
		}
		value, err := strconv.Atoi(margin)
		if err != nil || value == 0 {
			continue
		}
		sign := 1
		if value < 0 {
			sign = -1
		}
		if lastSign != 0 && sign != lastSign {
			leadChanges++
		}
		lastSign = sign
	}
	return leadChanges, nil
}

func (c *Client) fetchStarPlayers(ctx context.Context, nativeID string, leaders map[string]struct{}) ([]string, error) {
	var envelope statsEnvelope
	err := c.doJSON(ctx, "/boxscoretraditionalv2", map[string]string{
		"GameID":      nativeID,
		"StartPeriod": "1",
		"EndPeriod":   "14",
	}, &envelope)
	if err != nil {
		return nil, err
	}

	set, ok := envelope.findSet("PlayerStats")
	if !ok {
		return nil, fmt.Errorf("box score response missing PlayerStats result set")
	}

	stars := make([]string, 0, 4)
	for _, row := range set.rows() {
		playerID := row.str("PLAYER_ID")
		if playerID == "" {
			continue
		}
		if _, ok := leaders[playerID]; ok {
			stars = append(stars, playerID)
		}
	}
	return stars, nil
}

// leagueLeaders returns the top scorers' player ids, memoized for the
// leaders TTL. A failed fetch logs and yields no stars; it never fails
// the game fetch.
func (c *Client) leagueLeaders(ctx context.Context, season string) map[string]struct{} {
	value, err := c.leadersMemo.GetOrLoad(ctx, "leaders:"+season, func(ctx context.Context) (any, error) {
		var envelope statsEnvelope
		err := c.doJSON(ctx, "/leagueleaders", map[string]string{
			"LeagueID":     "00",
			"PerMode":      "PerGame",
			"Scope":        "S",
			"Season":       season,
			"SeasonType":   "Regular Season",
			"StatCategory": "PTS",
		}, &envelope)
		if err != nil {
			return nil, err
		}

		set, ok := envelope.findSet("LeagueLeaders")
		if !ok {
			return nil, fmt.Errorf("leaders response missing result set")
		}

		leaders := make(map[string]struct{}, c.leadersTopN)
		for _, row := range set.rows() {
			if len(leaders) >= c.leadersTopN {
				break
			}
			playerID := row.str("PLAYER_ID")
			if playerID == "" {
				continue
			}
			leaders[playerID] = struct{}{}
		}
		return leaders, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "league leaders unavailable, scoring without star players",
			"season", season,
			"error", err,
		)
		return nil
	}

	leaders, ok := value.(map[string]struct{})
	if !ok {
		return nil
	}
	return leaders
}

func (c *Client) classify(err error) *usecase.SourceFailure {
	kind := usecase.FailureError
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = usecase.FailureTimeout
	}
	return &usecase.SourceFailure{Source: game.SourcePrimary, Kind: kind, Err: err}
}

// seasonFor derives the season label for a date; a season spans October
// through the following June.
func seasonFor(date time.Time) string {
	date = date.UTC()
	year := date.Year()
	if date.Month() < time.October {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
