package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
)

func intPtr(v int) *int { return &v }

func playedGame(id string, date time.Time, home, away string, homeScore, awayScore int) game.Game {
	return game.Game{
		ID:        id,
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: intPtr(homeScore),
		AwayScore: intPtr(awayScore),
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	weights := DefaultWeights()
	weights.FavoriteTeam = "GSW"
	topTeams := map[string]struct{}{"BOS": {}, "OKC": {}}

	t.Run("all criteria stack", func(t *testing.T) {
		t.Parallel()

		g := playedGame("g1", date, "BOS", "OKC", 120, 118)
		g.LeadChanges = 20
		g.StarPlayerIDs = []string{"p1", "p2"}

		got := Score(g, topTeams, 55, weights)
		want := map[string]int{
			CriterionTopTeam:     20, // both in top five
			CriterionCloseness:   26, // 30 - 2*2
			CriterionHighTotal:   10, // 238 points
			CriterionLeadChanges: 15, // capped at 15
			CriterionStarPower:   10,
			CriterionFavorite:    0,
			CriterionBuzz:        40, // clamped
		}
		if !reflect.DeepEqual(got.Points, want) {
			t.Errorf("Points = %v, want %v", got.Points, want)
		}
		if got.Total != 121 {
			t.Errorf("Total = %d, want 121", got.Total)
		}
	})

	t.Run("blowout earns no closeness", func(t *testing.T) {
		t.Parallel()

		g := playedGame("g2", date, "LAL", "DET", 130, 95)
		got := Score(g, topTeams, 0, weights)
		if got.Points[CriterionCloseness] != 0 {
			t.Errorf("closeness = %d, want 0 for margin 35", got.Points[CriterionCloseness])
		}
	})

	t.Run("high total threshold is inclusive", func(t *testing.T) {
		t.Parallel()

		at := Score(playedGame("g3", date, "IND", "ATL", 111, 109), topTeams, 0, weights)
		if at.Points[CriterionHighTotal] != 10 {
			t.Errorf("high_total at 220 = %d, want 10", at.Points[CriterionHighTotal])
		}
		below := Score(playedGame("g4", date, "IND", "ATL", 110, 109), topTeams, 0, weights)
		if below.Points[CriterionHighTotal] != 0 {
			t.Errorf("high_total at 219 = %d, want 0", below.Points[CriterionHighTotal])
		}
	})

	t.Run("favorite team matches either side case-insensitively", func(t *testing.T) {
		t.Parallel()

		g := playedGame("g5", date, "DEN", "GSW", 105, 104)
		got := Score(g, topTeams, 0, weights)
		if got.Points[CriterionFavorite] != 15 {
			t.Errorf("favorite_team = %d, want 15", got.Points[CriterionFavorite])
		}
	})

	t.Run("negative buzz clamps to zero", func(t *testing.T) {
		t.Parallel()

		got := Score(playedGame("g6", date, "MIA", "ORL", 99, 98), topTeams, -7, weights)
		if got.Points[CriterionBuzz] != 0 {
			t.Errorf("buzz = %d, want 0", got.Points[CriterionBuzz])
		}
	})

	t.Run("unplayed game scores no closeness or total bonus", func(t *testing.T) {
		t.Parallel()

		g := game.Game{ID: "g7", Date: date, HomeTeam: "BOS", AwayTeam: "NYK"}
		got := Score(g, topTeams, 0, weights)
		if got.Points[CriterionCloseness] != 0 || got.Points[CriterionHighTotal] != 0 {
			t.Errorf("unplayed game scored %v", got.Points)
		}
		if got.Points[CriterionTopTeam] != 10 {
			t.Errorf("top_team = %d, want 10", got.Points[CriterionTopTeam])
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		t.Parallel()

		g := playedGame("g8", date, "BOS", "GSW", 118, 115)
		g.LeadChanges = 7
		g.StarPlayerIDs = []string{"p9"}
		first := Score(g, topTeams, 12, weights)
		second := Score(g, topTeams, 12, weights)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("score is not deterministic: %v vs %v", first, second)
		}
	})
}

func TestRank(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	items := []ScoredGame{
		{Game: playedGame("a", day1, "BOS", "NYK", 110, 100), Breakdown: Breakdown{Total: 50}},
		{Game: playedGame("b", day1, "MIA", "ORL", 101, 100), Breakdown: Breakdown{Total: 80}},
		{Game: playedGame("c", day1, "DEN", "MIN", 120, 115), Breakdown: Breakdown{Total: 80}},
		{Game: playedGame("d", day2, "LAL", "PHX", 108, 107), Breakdown: Breakdown{Total: 80}},
	}

	Rank(items)

	// Equal totals break on closer margin first, then the newer game.
	wantOrder := []string{"d", "b", "c", "a"}
	for i, want := range wantOrder {
		if items[i].Game.ID != want {
			t.Fatalf("rank[%d] = %s, want %s (full order %v)", i, items[i].Game.ID, want, ids(items))
		}
	}
}

func ids(items []ScoredGame) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Game.ID
	}
	return out
}
