package game

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// Game is the canonical record for one played or scheduled game,
// normalized regardless of which provider produced it.
type Game struct {
	ID            string
	Date          time.Time
	HomeTeam      string
	AwayTeam      string
	HomeScore     *int
	AwayScore     *int
	LeadChanges   int
	StarPlayerIDs []string
	Source        string
	FetchedAt     time.Time
}

// Played reports whether both final scores are present.
func (g Game) Played() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Margin returns abs(home-away). The second return is false for
// games without both scores.
func (g Game) Margin() (int, bool) {
	if !g.Played() {
		return 0, false
	}
	margin := *g.HomeScore - *g.AwayScore
	if margin < 0 {
		margin = -margin
	}
	return margin, true
}

// TotalPoints returns home+away, zero for unplayed games.
func (g Game) TotalPoints() int {
	if !g.Played() {
		return 0
	}
	return *g.HomeScore + *g.AwayScore
}

func (g Game) HasTeam(abbr string) bool {
	if strings.TrimSpace(abbr) == "" {
		return false
	}
	return strings.EqualFold(g.HomeTeam, abbr) || strings.EqualFold(g.AwayTeam, abbr)
}

// Key builds a provider-independent identifier so records for the same
// real-world game collide across sources with differing native IDs.
func Key(date time.Time, homeTeam, awayTeam string) string {
	return fmt.Sprintf("%s:%s:%s",
		date.UTC().Format("2006-01-02"),
		strings.ToUpper(strings.TrimSpace(awayTeam)),
		strings.ToUpper(strings.TrimSpace(homeTeam)),
	)
}

// Window is an inclusive date range, normalized to UTC day boundaries.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) (Window, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("window bounds must be set")
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("window end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return Window{Start: start, End: end}, nil
}

// LastNDays builds the window covering the n days ending at now, inclusive.
func LastNDays(now time.Time, n int) (Window, error) {
	if n < 1 {
		return Window{}, fmt.Errorf("days must be greater than zero")
	}
	end := truncateDay(now)
	return NewWindow(end.AddDate(0, 0, -(n-1)), end)
}

func (w Window) Contains(date time.Time) bool {
	day := truncateDay(date)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Days lists every day in the window in ascending order.
func (w Window) Days() []time.Time {
	out := make([]time.Time, 0, int(w.End.Sub(w.Start).Hours()/24)+1)
	for day := w.Start; !day.After(w.End); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

func (w Window) String() string {
	return w.Start.Format("2006-01-02") + ".." + w.End.Format("2006-01-02")
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SortStable orders games by date ascending then id for reproducible output.
func SortStable(items []Game) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
}
