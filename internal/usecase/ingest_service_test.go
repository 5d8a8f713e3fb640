package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

func testWindow(t *testing.T) game.Window {
	t.Helper()
	window, err := game.NewWindow(
		time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return window
}

func testGame(id, home, away string, homeScore, awayScore int) game.Game {
	return game.Game{
		ID:        id,
		Date:      time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: &homeScore,
		AwayScore: &awayScore,
	}
}

type stubGameRepo struct {
	cached    []game.Game
	covered   bool
	getErr    error
	putErr    error
	putCalls  int
	putGames  []game.Game
	dropCalls int
}

func (s *stubGameRepo) GetWindow(_ context.Context, _ game.Window, _ time.Duration) ([]game.Game, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.cached, s.covered, nil
}

func (s *stubGameRepo) PutWindow(_ context.Context, _ game.Window, items []game.Game, _ time.Time) error {
	s.putCalls++
	s.putGames = append([]game.Game(nil), items...)
	return s.putErr
}

func (s *stubGameRepo) InvalidateWindow(_ context.Context, _ game.Window) error {
	s.dropCalls++
	s.covered = false
	return nil
}

type stubGameProvider struct {
	source string
	games  []game.Game
	err    error
	calls  int
}

func (s *stubGameProvider) Source() string { return s.source }

func (s *stubGameProvider) FetchGames(_ context.Context, _ game.Window) ([]game.Game, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.games, nil
}

func newTestIngest(repo *stubGameRepo, primary, fallback *stubGameProvider, fallbackEnabled bool) *IngestService {
	return NewIngestService(repo, primary, fallback, IngestConfig{
		FallbackEnabled: fallbackEnabled,
		CacheMaxAge:     6 * time.Hour,
	}, logging.NewNop())
}

func TestIngestService_GetGames_CacheHitSkipsProviders(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{
		cached:  []game.Game{testGame("g1", "BOS", "NYK", 110, 108)},
		covered: true,
	}
	primary := &stubGameProvider{source: game.SourcePrimary}
	fallback := &stubGameProvider{source: game.SourceFallback}

	got, err := newTestIngest(repo, primary, fallback, true).GetGames(context.Background(), testWindow(t))
	if err != nil {
		t.Fatalf("GetGames error: %v", err)
	}
	if got.Source != SourceCache {
		t.Errorf("Source = %q, want %q", got.Source, SourceCache)
	}
	if len(got.Games) != 1 || got.Games[0].ID != "g1" {
		t.Errorf("unexpected games: %+v", got.Games)
	}
	if primary.calls != 0 || fallback.calls != 0 {
		t.Errorf("providers called on cache hit: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestIngestService_GetGames_PrimarySuccessPersists(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		games:  []game.Game{testGame("g1", "DEN", "MIN", 121, 119)},
	}
	fallback := &stubGameProvider{source: game.SourceFallback}

	got, err := newTestIngest(repo, primary, fallback, true).GetGames(context.Background(), testWindow(t))
	if err != nil {
		t.Fatalf("GetGames error: %v", err)
	}
	if got.Source != game.SourcePrimary {
		t.Errorf("Source = %q, want %q", got.Source, game.SourcePrimary)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times on primary success", fallback.calls)
	}
	if repo.putCalls != 1 || len(repo.putGames) != 1 {
		t.Errorf("expected one persisted window with one game, got calls=%d games=%d", repo.putCalls, len(repo.putGames))
	}
}

func TestIngestService_GetGames_PrimaryTimeoutFallsBackOnce(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		err:    &SourceFailure{Source: game.SourcePrimary, Kind: FailureTimeout, Err: context.DeadlineExceeded},
	}
	fallback := &stubGameProvider{
		source: game.SourceFallback,
		games:  []game.Game{testGame("g1", "MIA", "ORL", 100, 98)},
	}

	got, err := newTestIngest(repo, primary, fallback, true).GetGames(context.Background(), testWindow(t))
	if err != nil {
		t.Fatalf("GetGames error: %v", err)
	}
	if got.Source != game.SourceFallback {
		t.Errorf("Source = %q, want %q", got.Source, game.SourceFallback)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("each source must be attempted exactly once: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
	if repo.putCalls != 1 {
		t.Errorf("putCalls = %d, want 1", repo.putCalls)
	}
}

func TestIngestService_GetGames_FallbackDisabledFailsFast(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		err:    &SourceFailure{Source: game.SourcePrimary, Kind: FailureError, Err: fmt.Errorf("status 500")},
	}
	fallback := &stubGameProvider{source: game.SourceFallback}

	_, err := newTestIngest(repo, primary, fallback, false).GetGames(context.Background(), testWindow(t))

	var both *BothSourcesUnavailable
	if !errors.As(err, &both) {
		t.Fatalf("expected *BothSourcesUnavailable, got %v", err)
	}
	if !both.FallbackSkipped || both.FallbackCause != nil {
		t.Errorf("expected skipped fallback, got %+v", both)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times while disabled", fallback.calls)
	}
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Errorf("error does not unwrap to ErrDependencyUnavailable")
	}
}

func TestIngestService_GetGames_BothFailLeaveStoreUntouched(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		err:    &SourceFailure{Source: game.SourcePrimary, Kind: FailureTimeout, Err: context.DeadlineExceeded},
	}
	fallback := &stubGameProvider{
		source: game.SourceFallback,
		err:    &SourceFailure{Source: game.SourceFallback, Kind: FailureError, Err: fmt.Errorf("status 503")},
	}

	_, err := newTestIngest(repo, primary, fallback, true).GetGames(context.Background(), testWindow(t))

	var both *BothSourcesUnavailable
	if !errors.As(err, &both) {
		t.Fatalf("expected *BothSourcesUnavailable, got %v", err)
	}
	if both.PrimaryCause == nil || both.PrimaryCause.Kind != FailureTimeout {
		t.Errorf("primary cause = %+v, want timeout", both.PrimaryCause)
	}
	if both.FallbackCause == nil || both.FallbackCause.Kind != FailureError {
		t.Errorf("fallback cause = %+v, want error", both.FallbackCause)
	}
	if repo.putCalls != 0 {
		t.Errorf("store written %d times after double failure", repo.putCalls)
	}
}

func TestIngestService_GetGames_StoreReadErrorTreatedAsMiss(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{getErr: fmt.Errorf("connection refused")}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		games:  []game.Game{testGame("g1", "PHI", "TOR", 112, 110)},
	}

	got, err := newTestIngest(repo, primary, nil, false).GetGames(context.Background(), testWindow(t))
	if err != nil {
		t.Fatalf("GetGames error: %v", err)
	}
	if got.Source != game.SourcePrimary || primary.calls != 1 {
		t.Errorf("expected a primary fetch after store read error, got source=%q calls=%d", got.Source, primary.calls)
	}
}

func TestIngestService_GetGames_ClassifiesPlainErrors(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		err:    context.DeadlineExceeded,
	}

	_, err := newTestIngest(repo, primary, nil, false).GetGames(context.Background(), testWindow(t))

	var both *BothSourcesUnavailable
	if !errors.As(err, &both) {
		t.Fatalf("expected *BothSourcesUnavailable, got %v", err)
	}
	if both.PrimaryCause.Kind != FailureTimeout {
		t.Errorf("deadline error classified as %q, want %q", both.PrimaryCause.Kind, FailureTimeout)
	}
}

func TestIngestService_Refresh_InvalidatesBeforeFetching(t *testing.T) {
	t.Parallel()

	repo := &stubGameRepo{
		cached:  []game.Game{testGame("stale", "BOS", "NYK", 90, 80)},
		covered: true,
	}
	primary := &stubGameProvider{
		source: game.SourcePrimary,
		games:  []game.Game{testGame("fresh", "BOS", "NYK", 110, 108)},
	}

	got, err := newTestIngest(repo, primary, nil, false).Refresh(context.Background(), testWindow(t))
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if repo.dropCalls != 1 {
		t.Errorf("dropCalls = %d, want 1", repo.dropCalls)
	}
	if got.Source != game.SourcePrimary || len(got.Games) != 1 || got.Games[0].ID != "fresh" {
		t.Errorf("unexpected refresh result: source=%q games=%+v", got.Source, got.Games)
	}
}
