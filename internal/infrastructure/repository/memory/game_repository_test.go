package memory

import (
	"context"
	"testing"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
)

func window(t *testing.T, start, end string) game.Window {
	t.Helper()
	parse := func(v string) time.Time {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			t.Fatalf("parse %q: %v", v, err)
		}
		return parsed
	}
	w, err := game.NewWindow(parse(start), parse(end))
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return w
}

func finalGame(id string, date string, source string, homeScore, awayScore int) game.Game {
	parsed, _ := time.Parse("2006-01-02", date)
	return game.Game{
		ID:        id,
		Date:      parsed,
		HomeTeam:  "BOS",
		AwayTeam:  "NYK",
		HomeScore: &homeScore,
		AwayScore: &awayScore,
		Source:    source,
	}
}

func TestGameRepository_GetWindow_MissUntilEveryDayCovered(t *testing.T) {
	t.Parallel()

	repo := NewGameRepository()
	ctx := context.Background()
	full := window(t, "2026-03-01", "2026-03-03")
	partial := window(t, "2026-03-01", "2026-03-02")

	if err := repo.PutWindow(ctx, partial, nil, time.Now()); err != nil {
		t.Fatalf("PutWindow: %v", err)
	}

	if _, ok, err := repo.GetWindow(ctx, full, time.Hour); err != nil || ok {
		t.Fatalf("partially covered window reported as hit (ok=%t err=%v)", ok, err)
	}
	if _, ok, err := repo.GetWindow(ctx, partial, time.Hour); err != nil || !ok {
		t.Fatalf("fully covered window reported as miss (ok=%t err=%v)", ok, err)
	}
}

func TestGameRepository_GetWindow_EmptyDayIsStillAHit(t *testing.T) {
	t.Parallel()

	repo := NewGameRepository()
	ctx := context.Background()
	w := window(t, "2026-03-01", "2026-03-01")

	if err := repo.PutWindow(ctx, w, nil, time.Now()); err != nil {
		t.Fatalf("PutWindow: %v", err)
	}

	games, ok, err := repo.GetWindow(ctx, w, time.Hour)
	if err != nil || !ok {
		t.Fatalf("covered empty day reported as miss (ok=%t err=%v)", ok, err)
	}
	if len(games) != 0 {
		t.Errorf("expected no games, got %d", len(games))
	}
}

func TestGameRepository_GetWindow_StaleCoverageIsAMiss(t *testing.T) {
	t.Parallel()

	repo := NewGameRepository()
	ctx := context.Background()
	w := window(t, "2026-03-01", "2026-03-01")

	if err := repo.PutWindow(ctx, w, nil, time.Now().Add(-2*time.Hour)); err != nil {
		t.Fatalf("PutWindow: %v", err)
	}

	if _, ok, _ := repo.GetWindow(ctx, w, time.Hour); ok {
		t.Fatal("stale coverage reported as hit")
	}
	if _, ok, _ := repo.GetWindow(ctx, w, 3*time.Hour); !ok {
		t.Fatal("coverage within max age reported as miss")
	}
}

func TestGameRepository_PutWindow_PrimaryBeatsFallback(t *testing.T) {
	t.Parallel()

	repo := NewGameRepository()
	ctx := context.Background()
	w := window(t, "2026-03-01", "2026-03-01")
	key := "2026-03-01:NYK:BOS"

	if err := repo.PutWindow(ctx, w, []game.Game{finalGame(key, "2026-03-01", game.SourcePrimary, 112, 110)}, time.Now()); err != nil {
		t.Fatalf("PutWindow primary: %v", err)
	}
	if err := repo.PutWindow(ctx, w, []game.Game{finalGame(key, "2026-03-01", game.SourceFallback, 99, 98)}, time.Now()); err != nil {
		t.Fatalf("PutWindow fallback: %v", err)
	}

	games, ok, err := repo.GetWindow(ctx, w, time.Hour)
	if err != nil || !ok || len(games) != 1 {
		t.Fatalf("GetWindow: ok=%t err=%v games=%d", ok, err, len(games))
	}
	if games[0].Source != game.SourcePrimary || *games[0].HomeScore != 112 {
		t.Errorf("fallback overwrote primary: %+v", games[0])
	}

}

func TestGameRepository_PutWindow_PrimaryUpgradesFallback(t *testing.T) {
	t.Parallel()

	repo := NewGameRepository()
	ctx := context.Background()
	w := window(t, "2026-03-01", "2026-03-01")
	key := "2026-03-01:NYK:BOS"

	if err := repo.PutWindow(ctx, w, []game.Game{finalGame(key, "2026-03-01", game.SourceFallback, 99, 98)}, time.Now()); err != nil {
		t.Fatalf("PutWindow fallback: %v", err)
	}
	if err := repo.PutWindow(ctx, w, []game.Game{finalGame(key, "2026-03-01", game.SourcePrimary, 112, 110)}, time.Now()); err != nil {
		t.Fatalf("PutWindow primary: %v", err)
	}

	games, _, _ := repo.GetWindow(ctx, w, time.Hour)
	if len(games) != 1 || games[0].Source != game.SourcePrimary || *games[0].HomeScore != 112 {
		t.Errorf("primary did not replace fallback: %+v", games)
	}
}

func TestGameRepository_InvalidateWindow(t *testing.T) {
	t.Parallel()

	repo := NewGameRepository()
	ctx := context.Background()
	w := window(t, "2026-03-01", "2026-03-02")

	items := []game.Game{finalGame("2026-03-01:NYK:BOS", "2026-03-01", game.SourcePrimary, 112, 110)}
	if err := repo.PutWindow(ctx, w, items, time.Now()); err != nil {
		t.Fatalf("PutWindow: %v", err)
	}
	if err := repo.InvalidateWindow(ctx, w); err != nil {
		t.Fatalf("InvalidateWindow: %v", err)
	}

	if _, ok, _ := repo.GetWindow(ctx, w, time.Hour); ok {
		t.Fatal("invalidated window reported as hit")
	}
}
