package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/scoring"
	"github.com/minac/nba-game-recommender/internal/domain/standings"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

type stubBuzzProvider struct {
	scores map[string]int
	err    error
	calls  int
}

func (s *stubBuzzProvider) ScoreBuzz(_ context.Context, _ []game.Game) (map[string]int, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
}

func snapshotWith(topAbbrs ...string) standings.Snapshot {
	teams := make([]standings.TeamRecord, 0, len(topAbbrs))
	for i, abbr := range topAbbrs {
		teams = append(teams, standings.TeamRecord{TeamAbbr: abbr, Rank: i + 1, Wins: 50 - i, Losses: 10 + i})
	}
	return standings.Snapshot{Season: "2025-26", Teams: teams, FetchedAt: fixedNow()}
}

func newTestRecommend(repo *stubGameRepo, standingsProvider StandingsProvider, buzz BuzzProvider, weights scoring.Weights) *RecommendService {
	ingest := newTestIngest(repo, &stubGameProvider{source: game.SourcePrimary}, nil, false)

	var standingsSvc *StandingsService
	if standingsProvider != nil {
		standingsSvc = NewStandingsService(standingsProvider, nil, 12*time.Hour, logging.NewNop())
	}

	svc := NewRecommendService(ingest, standingsSvc, buzz, weights, "2025-26", logging.NewNop())
	svc.now = fixedNow
	return svc
}

func TestRecommendService_BestGame(t *testing.T) {
	t.Parallel()

	weights := scoring.DefaultWeights()

	t.Run("ranks close top-team game first", func(t *testing.T) {
		t.Parallel()

		blowout := testGame("blowout", "LAL", "DET", 130, 95)
		thriller := testGame("thriller", "BOS", "OKC", 121, 119)
		thriller.LeadChanges = 12
		repo := &stubGameRepo{cached: []game.Game{blowout, thriller}, covered: true}
		provider := &stubStandingsProvider{snapshot: snapshotWith("BOS", "OKC", "DEN", "CLE", "NYK")}

		got, err := newTestRecommend(repo, provider, nil, weights).BestGame(context.Background(), 7, "")
		if err != nil {
			t.Fatalf("BestGame error: %v", err)
		}
		if got.Best.Game.ID != "thriller" {
			t.Errorf("best = %q, want thriller", got.Best.Game.ID)
		}
		if got.Source != SourceCache {
			t.Errorf("Source = %q, want %q", got.Source, SourceCache)
		}
		if got.Best.Breakdown.Points[scoring.CriterionTopTeam] != 2*weights.PerTopTeamPoints {
			t.Errorf("top_team = %d, want %d", got.Best.Breakdown.Points[scoring.CriterionTopTeam], 2*weights.PerTopTeamPoints)
		}
		if len(got.Ranked) != 2 {
			t.Errorf("ranked %d games, want 2", len(got.Ranked))
		}
	})

	t.Run("rejects out-of-range days", func(t *testing.T) {
		t.Parallel()

		repo := &stubGameRepo{covered: true}
		svc := newTestRecommend(repo, nil, nil, weights)
		for _, days := range []int{0, -1, MaxWindowDays + 1} {
			if _, err := svc.BestGame(context.Background(), days, ""); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("days=%d: err = %v, want ErrInvalidInput", days, err)
			}
		}
	})

	t.Run("no finished games is not found", func(t *testing.T) {
		t.Parallel()

		scheduled := game.Game{ID: "future", Date: fixedNow(), HomeTeam: "BOS", AwayTeam: "NYK"}
		repo := &stubGameRepo{cached: []game.Game{scheduled}, covered: true}

		_, err := newTestRecommend(repo, nil, nil, weights).BestGame(context.Background(), 7, "")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("buzz failure degrades to zero", func(t *testing.T) {
		t.Parallel()

		repo := &stubGameRepo{cached: []game.Game{testGame("g1", "MIA", "ORL", 99, 98)}, covered: true}
		buzz := &stubBuzzProvider{err: fmt.Errorf("upstream 429")}

		got, err := newTestRecommend(repo, nil, buzz, weights).BestGame(context.Background(), 7, "")
		if err != nil {
			t.Fatalf("BestGame error: %v", err)
		}
		if buzz.calls != 1 {
			t.Errorf("buzz calls = %d, want 1", buzz.calls)
		}
		if got.Best.Breakdown.Points[scoring.CriterionBuzz] != 0 {
			t.Errorf("buzz = %d, want 0", got.Best.Breakdown.Points[scoring.CriterionBuzz])
		}
	})

	t.Run("buzz scores are applied per game", func(t *testing.T) {
		t.Parallel()

		quiet := testGame("quiet", "IND", "ATL", 105, 95)
		loud := testGame("loud", "NYK", "CHI", 115, 105)
		repo := &stubGameRepo{cached: []game.Game{quiet, loud}, covered: true}
		buzz := &stubBuzzProvider{scores: map[string]int{"loud": 35}}

		got, err := newTestRecommend(repo, nil, buzz, weights).BestGame(context.Background(), 7, "")
		if err != nil {
			t.Fatalf("BestGame error: %v", err)
		}
		if got.Best.Game.ID != "loud" {
			t.Errorf("best = %q, want loud", got.Best.Game.ID)
		}
		if got.Best.Breakdown.Points[scoring.CriterionBuzz] != 35 {
			t.Errorf("buzz = %d, want 35", got.Best.Breakdown.Points[scoring.CriterionBuzz])
		}
	})

	t.Run("standings failure drops top-team bonus only", func(t *testing.T) {
		t.Parallel()

		repo := &stubGameRepo{cached: []game.Game{testGame("g1", "BOS", "OKC", 110, 109)}, covered: true}
		provider := &stubStandingsProvider{err: fmt.Errorf("status 502")}

		got, err := newTestRecommend(repo, provider, nil, weights).BestGame(context.Background(), 7, "")
		if err != nil {
			t.Fatalf("BestGame error: %v", err)
		}
		if got.Best.Breakdown.Points[scoring.CriterionTopTeam] != 0 {
			t.Errorf("top_team = %d, want 0 without standings", got.Best.Breakdown.Points[scoring.CriterionTopTeam])
		}
		if got.Best.Breakdown.Points[scoring.CriterionCloseness] == 0 {
			t.Error("closeness dropped alongside standings failure")
		}
	})

	t.Run("favorite override beats configured favorite", func(t *testing.T) {
		t.Parallel()

		favWeights := weights
		favWeights.FavoriteTeam = "BOS"
		g := testGame("g1", "GSW", "SAC", 110, 109)
		repo := &stubGameRepo{cached: []game.Game{g}, covered: true}

		got, err := newTestRecommend(repo, nil, nil, favWeights).BestGame(context.Background(), 7, "gsw")
		if err != nil {
			t.Fatalf("BestGame error: %v", err)
		}
		if got.Best.Breakdown.Points[scoring.CriterionFavorite] != favWeights.FavoritePoints {
			t.Errorf("favorite_team = %d, want %d", got.Best.Breakdown.Points[scoring.CriterionFavorite], favWeights.FavoritePoints)
		}
	})

	t.Run("identical inputs produce identical rankings", func(t *testing.T) {
		t.Parallel()

		games := []game.Game{
			testGame("a", "BOS", "NYK", 110, 100),
			testGame("b", "MIA", "ORL", 101, 100),
			testGame("c", "DEN", "MIN", 120, 115),
		}
		provider := &stubStandingsProvider{snapshot: snapshotWith("BOS", "DEN", "OKC", "CLE", "NYK")}

		first, err := newTestRecommend(&stubGameRepo{cached: games, covered: true}, provider, nil, weights).
			BestGame(context.Background(), 7, "")
		if err != nil {
			t.Fatalf("first BestGame error: %v", err)
		}
		second, err := newTestRecommend(&stubGameRepo{cached: games, covered: true}, provider, nil, weights).
			BestGame(context.Background(), 7, "")
		if err != nil {
			t.Fatalf("second BestGame error: %v", err)
		}
		for i := range first.Ranked {
			if first.Ranked[i].Game.ID != second.Ranked[i].Game.ID ||
				first.Ranked[i].Breakdown.Total != second.Ranked[i].Breakdown.Total {
				t.Fatalf("ranking differs at %d: %+v vs %+v", i, first.Ranked[i], second.Ranked[i])
			}
		}
	})
}

func TestRecommendService_ListGames(t *testing.T) {
	t.Parallel()

	later := testGame("later", "BOS", "NYK", 104, 100)
	later.Date = time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	earlier := testGame("earlier", "MIA", "ORL", 99, 98)
	earlier.Date = time.Date(2026, time.February, 25, 0, 0, 0, 0, time.UTC)
	repo := &stubGameRepo{cached: []game.Game{later, earlier}, covered: true}

	got, err := newTestRecommend(repo, nil, nil, scoring.DefaultWeights()).ListGames(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListGames error: %v", err)
	}
	if len(got.Games) != 2 || got.Games[0].ID != "earlier" || got.Games[1].ID != "later" {
		t.Errorf("games not in stable date order: %+v", got.Games)
	}

	if _, err := newTestRecommend(repo, nil, nil, scoring.DefaultWeights()).ListGames(context.Background(), 31); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("days=31: err = %v, want ErrInvalidInput", err)
	}
}
