package scoring

// Criterion names used as keys inside a Breakdown.
const (
	CriterionTopTeam     = "top_team"
	CriterionCloseness   = "closeness"
	CriterionHighTotal   = "high_total"
	CriterionLeadChanges = "lead_changes"
	CriterionStarPower   = "star_power"
	CriterionFavorite    = "favorite_team"
	CriterionBuzz        = "buzz"
)

// Breakdown maps criterion name to awarded points plus the total. It
// is purely derived and recomputable from a canonical game record, a
// standings snapshot and the configured weights.
type Breakdown struct {
	Points map[string]int
	Total  int
}

// Weights is the static scoring configuration. Weights are not
// learned; they come from service configuration.
type Weights struct {
	TopTeamK         int
	PerTopTeamPoints int
	ClosenessMax     int
	HighTotalThresh  int
	HighTotalPoints  int
	PerLeadChange    int
	LeadChangeCap    int
	PerStarPoints    int
	FavoriteTeam     string
	FavoritePoints   int
	BuzzMax          int
}

// DefaultWeights mirrors the service defaults.
func DefaultWeights() Weights {
	return Weights{
		TopTeamK:         5,
		PerTopTeamPoints: 10,
		ClosenessMax:     30,
		HighTotalThresh:  220,
		HighTotalPoints:  10,
		PerLeadChange:    1,
		LeadChangeCap:    15,
		PerStarPoints:    5,
		FavoritePoints:   15,
		BuzzMax:          40,
	}
}
