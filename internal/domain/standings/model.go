package standings

import (
	"sort"
	"strings"
	"time"
)

// TeamRecord is one ranked team inside a snapshot.
type TeamRecord struct {
	TeamAbbr string
	TeamName string
	Rank     int
	Wins     int
	Losses   int
}

// Snapshot is the ranked league table for one season, refreshed on its
// own cadence independent of per-game fetches.
type Snapshot struct {
	Season    string
	Teams     []TeamRecord
	FetchedAt time.Time
}

// TopTeams returns the abbreviations of the best k teams by rank.
func (s Snapshot) TopTeams(k int) map[string]struct{} {
	out := make(map[string]struct{}, k)
	if k <= 0 {
		return out
	}

	teams := append([]TeamRecord(nil), s.Teams...)
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Rank < teams[j].Rank })
	for _, team := range teams {
		if len(out) >= k {
			break
		}
		abbr := strings.ToUpper(strings.TrimSpace(team.TeamAbbr))
		if abbr == "" {
			continue
		}
		out[abbr] = struct{}{}
	}
	return out
}

// IsTopTeam reports whether abbr ranks inside the best k teams.
func (s Snapshot) IsTopTeam(abbr string, k int) bool {
	_, ok := s.TopTeams(k)[strings.ToUpper(strings.TrimSpace(abbr))]
	return ok
}
