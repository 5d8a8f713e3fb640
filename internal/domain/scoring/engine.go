package scoring

import (
	"sort"
	"strings"

	"github.com/minac/nba-game-recommender/internal/domain/game"
)

// ScoredGame pairs a game with its criterion breakdown.
type ScoredGame struct {
	Game      game.Game
	Breakdown Breakdown
}

// Score computes the engagement breakdown for one game. The same
// inputs always yield the same breakdown; buzz is clamped into
// [0, BuzzMax] and every criterion appears in the result, zero or not.
func Score(g game.Game, topTeams map[string]struct{}, buzz int, w Weights) Breakdown {
	points := map[string]int{
		CriterionTopTeam:     w.PerTopTeamPoints * countTopTeams(g, topTeams),
		CriterionCloseness:   0,
		CriterionHighTotal:   0,
		CriterionLeadChanges: w.PerLeadChange * capInt(g.LeadChanges, w.LeadChangeCap),
		CriterionStarPower:   w.PerStarPoints * len(g.StarPlayerIDs),
		CriterionFavorite:    0,
		CriterionBuzz:        clampInt(buzz, 0, w.BuzzMax),
	}

	if margin, ok := g.Margin(); ok {
		closeness := w.ClosenessMax - 2*margin
		if closeness < 0 {
			closeness = 0
		}
		points[CriterionCloseness] = closeness

		if g.TotalPoints() >= w.HighTotalThresh {
			points[CriterionHighTotal] = w.HighTotalPoints
		}
	}

	if w.FavoriteTeam != "" && g.HasTeam(w.FavoriteTeam) {
		points[CriterionFavorite] = w.FavoritePoints
	}

	total := 0
	for _, v := range points {
		total += v
	}
	return Breakdown{Points: points, Total: total}
}

// Rank orders scored games best first: total descending, then the
// closer game, then the more recent one, then id for full determinism.
func Rank(items []ScoredGame) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Breakdown.Total != items[j].Breakdown.Total {
			return items[i].Breakdown.Total > items[j].Breakdown.Total
		}
		mi := marginOrMax(items[i].Game)
		mj := marginOrMax(items[j].Game)
		if mi != mj {
			return mi < mj
		}
		if !items[i].Game.Date.Equal(items[j].Game.Date) {
			return items[i].Game.Date.After(items[j].Game.Date)
		}
		return items[i].Game.ID < items[j].Game.ID
	})
}

func countTopTeams(g game.Game, topTeams map[string]struct{}) int {
	count := 0
	if _, ok := topTeams[strings.ToUpper(g.HomeTeam)]; ok {
		count++
	}
	if _, ok := topTeams[strings.ToUpper(g.AwayTeam)]; ok {
		count++
	}
	return count
}

func marginOrMax(g game.Game) int {
	if margin, ok := g.Margin(); ok {
		return margin
	}
	return int(^uint(0) >> 1)
}

func capInt(v, cap int) int {
	if v > cap {
		return cap
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
