package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/standings"
	"github.com/minac/nba-game-recommender/internal/platform/cache"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

// StandingsService serves the ranked league table, refreshing it from
// the upstream provider on its own cadence. A stale snapshot is better
// than none: when the provider fails and the store still has teams, the
// stale snapshot is served with a warning.
type StandingsService struct {
	provider StandingsProvider
	repo     standings.Repository
	memo     *cache.Store
	ttl      time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

func NewStandingsService(
	provider StandingsProvider,
	repo standings.Repository,
	ttl time.Duration,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &StandingsService{
		provider: provider,
		repo:     repo,
		memo:     cache.NewStore(ttl),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// GetSnapshot returns the standings for season, fetching from the
// provider only when the stored snapshot is missing or older than the
// configured TTL. Concurrent refreshes for the same season collapse to
// a single upstream call.
func (s *StandingsService) GetSnapshot(ctx context.Context, season string) (standings.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetSnapshot")
	defer span.End()

	season = strings.TrimSpace(season)
	if season == "" {
		return standings.Snapshot{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.provider == nil {
		return standings.Snapshot{}, fmt.Errorf("%w: standings provider is not configured", ErrDependencyUnavailable)
	}

	value, err := s.memo.GetOrLoad(ctx, "standings:"+season, func(ctx context.Context) (any, error) {
		return s.load(ctx, season)
	})
	if err != nil {
		return standings.Snapshot{}, err
	}

	snapshot, ok := value.(standings.Snapshot)
	if !ok {
		return standings.Snapshot{}, fmt.Errorf("unexpected standings cache value %T", value)
	}
	return snapshot, nil
}

// Refresh forces an upstream fetch for season regardless of snapshot age.
func (s *StandingsService) Refresh(ctx context.Context, season string) (standings.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Refresh")
	defer span.End()

	season = strings.TrimSpace(season)
	if season == "" {
		return standings.Snapshot{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.provider == nil {
		return standings.Snapshot{}, fmt.Errorf("%w: standings provider is not configured", ErrDependencyUnavailable)
	}

	s.memo.Delete(ctx, "standings:"+season)
	snapshot, err := s.fetch(ctx, season)
	if err != nil {
		return standings.Snapshot{}, err
	}
	s.memo.Set(ctx, "standings:"+season, snapshot)
	return snapshot, nil
}

func (s *StandingsService) load(ctx context.Context, season string) (standings.Snapshot, error) {
	if s.repo != nil {
		stored, found, err := s.repo.GetBySeason(ctx, season)
		if err != nil {
			s.logger.WarnContext(ctx, "standings store read failed", "season", season, "error", err)
		} else if found && s.now().Sub(stored.FetchedAt) < s.ttl {
			return stored, nil
		}

		snapshot, fetchErr := s.fetch(ctx, season)
		if fetchErr != nil {
			if found && len(stored.Teams) > 0 {
				s.logger.WarnContext(ctx, "standings refresh failed, serving stale snapshot",
					"season", season,
					"fetched_at", stored.FetchedAt,
					"error", fetchErr,
				)
				return stored, nil
			}
			return standings.Snapshot{}, fetchErr
		}
		return snapshot, nil
	}

	return s.fetch(ctx, season)
}

func (s *StandingsService) fetch(ctx context.Context, season string) (standings.Snapshot, error) {
	snapshot, err := s.provider.FetchStandings(ctx, season)
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("fetch standings season=%s: %w", season, err)
	}
	snapshot.Season = season
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = s.now()
	}

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, snapshot); err != nil {
			s.logger.WarnContext(ctx, "persisting standings snapshot failed", "season", season, "error", err)
		}
	}
	return snapshot, nil
}
