package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

// SourceCache marks results served from the local store without any
// upstream call.
const SourceCache = "cache"

type IngestConfig struct {
	FallbackEnabled bool
	CacheMaxAge     time.Duration
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
}

// FetchResult carries the games for a window together with the source
// that ultimately served them.
type FetchResult struct {
	Games  []game.Game
	Source string
}

// IngestService resolves a date window of games through a fixed
// escalation chain: local store, then the primary source, then the
// fallback source. Each source is attempted at most once per request.
type IngestService struct {
	gameRepo game.Repository
	primary  GameProvider
	fallback GameProvider
	cfg      IngestConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewIngestService(
	gameRepo game.Repository,
	primary GameProvider,
	fallback GameProvider,
	cfg IngestConfig,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = 6 * time.Hour
	}

	return &IngestService{
		gameRepo: gameRepo,
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// GetGames returns the finished games inside window. A fresh, fully
// covered window is served from the store; otherwise the primary source
// is tried, then the fallback. When neither produces games the store is
// left untouched and a *BothSourcesUnavailable is returned.
func (s *IngestService) GetGames(ctx context.Context, window game.Window) (FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.GetGames")
	defer span.End()

	if s.gameRepo == nil || s.primary == nil {
		return FetchResult{}, fmt.Errorf("%w: game store and primary source are required", ErrDependencyUnavailable)
	}

	cached, ok, err := s.gameRepo.GetWindow(ctx, window, s.cfg.CacheMaxAge)
	if err != nil {
		s.logger.WarnContext(ctx, "game store read failed, treating window as a miss",
			"window", window.String(),
			"error", err,
		)
	} else if ok {
		return FetchResult{Games: cached, Source: SourceCache}, nil
	}

	games, primaryFailure := s.attempt(ctx, s.primary, window, s.cfg.PrimaryTimeout)
	if primaryFailure == nil {
		s.persist(ctx, window, games)
		return FetchResult{Games: games, Source: s.primary.Source()}, nil
	}
	s.logger.WarnContext(ctx, "primary source attempt failed",
		"window", window.String(),
		"kind", string(primaryFailure.Kind),
		"error", primaryFailure.Err,
	)

	if !s.cfg.FallbackEnabled || s.fallback == nil {
		return FetchResult{}, &BothSourcesUnavailable{
			PrimaryCause:    primaryFailure,
			FallbackSkipped: true,
		}
	}

	games, fallbackFailure := s.attempt(ctx, s.fallback, window, s.cfg.FallbackTimeout)
	if fallbackFailure == nil {
		s.persist(ctx, window, games)
		return FetchResult{Games: games, Source: s.fallback.Source()}, nil
	}
	s.logger.WarnContext(ctx, "fallback source attempt failed",
		"window", window.String(),
		"kind", string(fallbackFailure.Kind),
		"error", fallbackFailure.Err,
	)

	return FetchResult{}, &BothSourcesUnavailable{
		PrimaryCause:  primaryFailure,
		FallbackCause: fallbackFailure,
	}
}

// Refresh drops the stored window and re-resolves it through the
// source chain.
func (s *IngestService) Refresh(ctx context.Context, window game.Window) (FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Refresh")
	defer span.End()

	if s.gameRepo == nil {
		return FetchResult{}, fmt.Errorf("%w: game store is required", ErrDependencyUnavailable)
	}
	if err := s.gameRepo.InvalidateWindow(ctx, window); err != nil {
		return FetchResult{}, fmt.Errorf("invalidate window %s: %w", window.String(), err)
	}

	return s.GetGames(ctx, window)
}

// attempt runs a single bounded fetch against one source and always
// reports failures as *SourceFailure.
func (s *IngestService) attempt(ctx context.Context, provider GameProvider, window game.Window, timeout time.Duration) ([]game.Game, *SourceFailure) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	games, err := provider.FetchGames(ctx, window)
	if err == nil {
		return games, nil
	}

	var failure *SourceFailure
	if errors.As(err, &failure) {
		return nil, failure
	}
	kind := FailureError
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = FailureTimeout
	}
	return nil, &SourceFailure{Source: provider.Source(), Kind: kind, Err: err}
}

// persist stores a fetched window best-effort; the caller already holds
// the games, so a storage error only degrades future cache hits.
func (s *IngestService) persist(ctx context.Context, window game.Window, games []game.Game) {
	if err := s.gameRepo.PutWindow(ctx, window, games, s.now()); err != nil {
		s.logger.WarnContext(ctx, "persisting fetched window failed",
			"window", window.String(),
			"games", len(games),
			"error", err,
		)
	}
}
