package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/scoring"
	"github.com/minac/nba-game-recommender/internal/domain/standings"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

// MaxWindowDays bounds the lookback window a caller may request.
const MaxWindowDays = 30

// Recommendation is the ranked outcome for one window. Ranked always
// contains at least one game and Best is its head.
type Recommendation struct {
	Window   game.Window
	Source   string
	TopTeams []string
	Best     scoring.ScoredGame
	Ranked   []scoring.ScoredGame
}

// RecommendService combines the ingested games, the standings table and
// optional buzz estimates into a deterministic engagement ranking.
type RecommendService struct {
	ingest       *IngestService
	standingsSvc *StandingsService
	buzz         BuzzProvider
	weights      scoring.Weights
	season       string
	logger       *logging.Logger
	now          func() time.Time
}

func NewRecommendService(
	ingest *IngestService,
	standingsSvc *StandingsService,
	buzz BuzzProvider,
	weights scoring.Weights,
	season string,
	logger *logging.Logger,
) *RecommendService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RecommendService{
		ingest:       ingest,
		standingsSvc: standingsSvc,
		buzz:         buzz,
		weights:      weights,
		season:       strings.TrimSpace(season),
		logger:       logger,
		now:          time.Now,
	}
}

// BestGame ranks the finished games from the last days days and returns
// the most engaging one. favoriteTeam, when non-empty, overrides the
// configured favorite for this request only.
func (s *RecommendService) BestGame(ctx context.Context, days int, favoriteTeam string) (Recommendation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecommendService.BestGame")
	defer span.End()

	if days < 1 || days > MaxWindowDays {
		return Recommendation{}, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, MaxWindowDays)
	}
	if s.ingest == nil {
		return Recommendation{}, fmt.Errorf("%w: ingest service is required", ErrDependencyUnavailable)
	}

	window, err := game.LastNDays(s.now(), days)
	if err != nil {
		return Recommendation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		fetched      FetchResult
		fetchErr     error
		snapshot     standings.Snapshot
		standingsErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		fetched, fetchErr = s.ingest.GetGames(ctx, window)
	})
	if s.standingsSvc != nil {
		wg.Go(func() {
			snapshot, standingsErr = s.standingsSvc.GetSnapshot(ctx, s.season)
		})
	}
	wg.Wait()

	if fetchErr != nil {
		return Recommendation{}, fetchErr
	}
	if standingsErr != nil {
		// The ranking still works without the table; the top-team
		// criterion scores zero for every game.
		s.logger.WarnContext(ctx, "standings unavailable, scoring without top-team bonus",
			"season", s.season,
			"error", standingsErr,
		)
		snapshot = standings.Snapshot{}
	}

	played := make([]game.Game, 0, len(fetched.Games))
	for _, g := range fetched.Games {
		if g.Played() {
			played = append(played, g)
		}
	}
	if len(played) == 0 {
		return Recommendation{}, fmt.Errorf("%w: no finished games between %s", ErrNotFound, window.String())
	}
	game.SortStable(played)

	weights := s.weights
	if override := strings.ToUpper(strings.TrimSpace(favoriteTeam)); override != "" {
		weights.FavoriteTeam = override
	}

	topTeams := snapshot.TopTeams(weights.TopTeamK)
	buzzScores := s.buzzScores(ctx, played)

	ranked := make([]scoring.ScoredGame, 0, len(played))
	for _, g := range played {
		ranked = append(ranked, scoring.ScoredGame{
			Game:      g,
			Breakdown: scoring.Score(g, topTeams, buzzScores[g.ID], weights),
		})
	}
	scoring.Rank(ranked)

	return Recommendation{
		Window:   window,
		Source:   fetched.Source,
		TopTeams: sortedKeys(topTeams),
		Best:     ranked[0],
		Ranked:   ranked,
	}, nil
}

// ListGames returns all games from the last days days, finished or
// not, in stable order.
func (s *RecommendService) ListGames(ctx context.Context, days int) (FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecommendService.ListGames")
	defer span.End()

	if days < 1 || days > MaxWindowDays {
		return FetchResult{}, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, MaxWindowDays)
	}
	if s.ingest == nil {
		return FetchResult{}, fmt.Errorf("%w: ingest service is required", ErrDependencyUnavailable)
	}

	window, err := game.LastNDays(s.now(), days)
	if err != nil {
		return FetchResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fetched, err := s.ingest.GetGames(ctx, window)
	if err != nil {
		return FetchResult{}, err
	}
	game.SortStable(fetched.Games)
	return fetched, nil
}

// Weights exposes the configured scoring weights for the config endpoint.
func (s *RecommendService) Weights() scoring.Weights { return s.weights }

// buzzScores asks the buzz provider to rate the played games. Any
// failure degrades to zero buzz for every game; it never fails the
// recommendation.
func (s *RecommendService) buzzScores(ctx context.Context, played []game.Game) map[string]int {
	if s.buzz == nil || len(played) == 0 {
		return nil
	}

	scores, err := s.buzz.ScoreBuzz(ctx, played)
	if err != nil {
		s.logger.WarnContext(ctx, "buzz scoring failed, using zero buzz",
			"games", len(played),
			"error", err,
		)
		return nil
	}
	return scores
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
