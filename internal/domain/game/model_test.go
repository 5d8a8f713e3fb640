package game

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestGame_Margin(t *testing.T) {
	t.Parallel()

	t.Run("played game", func(t *testing.T) {
		g := Game{HomeScore: intPtr(100), AwayScore: intPtr(98)}
		margin, ok := g.Margin()
		if !ok {
			t.Fatal("expected margin for played game")
		}
		if margin != 2 {
			t.Fatalf("unexpected margin: got=%d want=2", margin)
		}
	})

	t.Run("away blowout is positive", func(t *testing.T) {
		g := Game{HomeScore: intPtr(90), AwayScore: intPtr(120)}
		margin, _ := g.Margin()
		if margin != 30 {
			t.Fatalf("unexpected margin: got=%d want=30", margin)
		}
	})

	t.Run("unplayed game has no margin", func(t *testing.T) {
		g := Game{HomeScore: intPtr(100)}
		if _, ok := g.Margin(); ok {
			t.Fatal("expected no margin without both scores")
		}
	})
}

func TestKey_StableAcrossSources(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.March, 4, 19, 30, 0, 0, time.UTC)
	a := Key(date, "lal", "BOS")
	b := Key(date.Add(3*time.Hour), "LAL", " bos ")
	if a != b {
		t.Fatalf("keys differ for same real-world game: %q vs %q", a, b)
	}
	if a != "2026-03-04:BOS:LAL" {
		t.Fatalf("unexpected key shape: %q", a)
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.February, 10, 15, 4, 5, 0, time.UTC)

	t.Run("last n days is inclusive", func(t *testing.T) {
		w, err := LastNDays(now, 7)
		if err != nil {
			t.Fatalf("last n days: %v", err)
		}
		if got := len(w.Days()); got != 7 {
			t.Fatalf("unexpected day count: got=%d want=7", got)
		}
		if !w.End.Equal(time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected window end: %s", w.End)
		}
		if !w.Contains(now.AddDate(0, 0, -6)) {
			t.Fatal("expected oldest day inside window")
		}
		if w.Contains(now.AddDate(0, 0, -7)) {
			t.Fatal("expected day before window to be outside")
		}
	})

	t.Run("rejects zero days", func(t *testing.T) {
		if _, err := LastNDays(now, 0); err == nil {
			t.Fatal("expected error for zero days")
		}
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		if _, err := NewWindow(now, now.AddDate(0, 0, -1)); err == nil {
			t.Fatal("expected error for end before start")
		}
	})
}
