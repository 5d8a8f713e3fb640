package game

// EstimateLeadChanges approximates how often the lead flipped from the
// final margin alone, for sources without play-by-play data. Closer
// games get higher estimates; the function is pure and total over
// non-negative margins.
func EstimateLeadChanges(margin int) int {
	switch {
	case margin <= 3:
		return 15
	case margin <= 5:
		return 10
	case margin <= 10:
		return 5
	case margin <= 15:
		return 2
	default:
		return 0
	}
}
