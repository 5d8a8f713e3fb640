package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/standings"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

type stubStandingsProvider struct {
	snapshot standings.Snapshot
	err      error
	calls    int
}

func (s *stubStandingsProvider) FetchStandings(_ context.Context, _ string) (standings.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return standings.Snapshot{}, s.err
	}
	return s.snapshot, nil
}

type stubStandingsRepo struct {
	bySeason map[string]standings.Snapshot
	upserts  int
}

func (s *stubStandingsRepo) GetBySeason(_ context.Context, season string) (standings.Snapshot, bool, error) {
	snapshot, ok := s.bySeason[season]
	return snapshot, ok, nil
}

func (s *stubStandingsRepo) Upsert(_ context.Context, snapshot standings.Snapshot) error {
	s.upserts++
	if s.bySeason == nil {
		s.bySeason = make(map[string]standings.Snapshot)
	}
	s.bySeason[snapshot.Season] = snapshot
	return nil
}

func TestStandingsService_GetSnapshot_FreshStoreSkipsProvider(t *testing.T) {
	t.Parallel()

	stored := snapshotWith("BOS", "OKC")
	stored.FetchedAt = fixedNow().Add(-time.Hour)
	repo := &stubStandingsRepo{bySeason: map[string]standings.Snapshot{"2025-26": stored}}
	provider := &stubStandingsProvider{}

	svc := NewStandingsService(provider, repo, 12*time.Hour, logging.NewNop())
	svc.now = fixedNow

	got, err := svc.GetSnapshot(context.Background(), "2025-26")
	if err != nil {
		t.Fatalf("GetSnapshot error: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times with a fresh stored snapshot", provider.calls)
	}
	if len(got.Teams) != 2 {
		t.Errorf("got %d teams, want 2", len(got.Teams))
	}
}

func TestStandingsService_GetSnapshot_StaleStoreRefreshes(t *testing.T) {
	t.Parallel()

	stale := snapshotWith("BOS")
	stale.FetchedAt = fixedNow().Add(-24 * time.Hour)
	repo := &stubStandingsRepo{bySeason: map[string]standings.Snapshot{"2025-26": stale}}
	provider := &stubStandingsProvider{snapshot: snapshotWith("BOS", "OKC", "DEN")}

	svc := NewStandingsService(provider, repo, 12*time.Hour, logging.NewNop())
	svc.now = fixedNow

	got, err := svc.GetSnapshot(context.Background(), "2025-26")
	if err != nil {
		t.Fatalf("GetSnapshot error: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if len(got.Teams) != 3 {
		t.Errorf("got %d teams, want refreshed 3", len(got.Teams))
	}
	if repo.upserts != 1 {
		t.Errorf("upserts = %d, want 1", repo.upserts)
	}
}

func TestStandingsService_GetSnapshot_ServesStaleOnProviderFailure(t *testing.T) {
	t.Parallel()

	stale := snapshotWith("BOS", "OKC")
	stale.FetchedAt = fixedNow().Add(-48 * time.Hour)
	repo := &stubStandingsRepo{bySeason: map[string]standings.Snapshot{"2025-26": stale}}
	provider := &stubStandingsProvider{err: fmt.Errorf("status 502")}

	svc := NewStandingsService(provider, repo, 12*time.Hour, logging.NewNop())
	svc.now = fixedNow

	got, err := svc.GetSnapshot(context.Background(), "2025-26")
	if err != nil {
		t.Fatalf("GetSnapshot error: %v", err)
	}
	if len(got.Teams) != 2 {
		t.Errorf("expected the stale snapshot, got %+v", got)
	}
}

func TestStandingsService_GetSnapshot_FailsWithoutAnySnapshot(t *testing.T) {
	t.Parallel()

	provider := &stubStandingsProvider{err: fmt.Errorf("status 502")}
	svc := NewStandingsService(provider, &stubStandingsRepo{}, 12*time.Hour, logging.NewNop())
	svc.now = fixedNow

	if _, err := svc.GetSnapshot(context.Background(), "2025-26"); err == nil {
		t.Fatal("expected an error with no stored snapshot and a failing provider")
	}
}

func TestStandingsService_GetSnapshot_RequiresSeason(t *testing.T) {
	t.Parallel()

	svc := NewStandingsService(&stubStandingsProvider{}, nil, 12*time.Hour, logging.NewNop())
	if _, err := svc.GetSnapshot(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestStandingsService_Refresh_ForcesFetch(t *testing.T) {
	t.Parallel()

	fresh := snapshotWith("BOS", "OKC")
	fresh.FetchedAt = fixedNow().Add(-time.Minute)
	repo := &stubStandingsRepo{bySeason: map[string]standings.Snapshot{"2025-26": fresh}}
	provider := &stubStandingsProvider{snapshot: snapshotWith("OKC", "BOS", "DEN")}

	svc := NewStandingsService(provider, repo, 12*time.Hour, logging.NewNop())
	svc.now = fixedNow

	got, err := svc.Refresh(context.Background(), "2025-26")
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 even with a fresh snapshot", provider.calls)
	}
	if len(got.Teams) != 3 {
		t.Errorf("got %d teams, want 3", len(got.Teams))
	}
}
