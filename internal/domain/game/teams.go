package game

import "strings"

// abbrByTeamName maps full franchise names to their tricode. Providers
// disagree on identifiers, so normalization goes through the name.
var abbrByTeamName = map[string]string{
	"atlanta hawks":          "ATL",
	"boston celtics":         "BOS",
	"brooklyn nets":          "BKN",
	"charlotte hornets":      "CHA",
	"chicago bulls":          "CHI",
	"cleveland cavaliers":    "CLE",
	"dallas mavericks":       "DAL",
	"denver nuggets":         "DEN",
	"detroit pistons":        "DET",
	"golden state warriors":  "GSW",
	"houston rockets":        "HOU",
	"indiana pacers":         "IND",
	"la clippers":            "LAC",
	"los angeles clippers":   "LAC",
	"los angeles lakers":     "LAL",
	"memphis grizzlies":      "MEM",
	"miami heat":             "MIA",
	"milwaukee bucks":        "MIL",
	"minnesota timberwolves": "MIN",
	"new orleans pelicans":   "NOP",
	"new york knicks":        "NYK",
	"oklahoma city thunder":  "OKC",
	"orlando magic":          "ORL",
	"philadelphia 76ers":     "PHI",
	"phoenix suns":           "PHX",
	"portland trail blazers": "POR",
	"sacramento kings":       "SAC",
	"san antonio spurs":      "SAS",
	"toronto raptors":        "TOR",
	"utah jazz":              "UTA",
	"washington wizards":     "WAS",
}

// AbbrForTeam resolves a team identifier, full name or tricode, to the
// canonical uppercase tricode. Unknown names fall back to the trimmed
// uppercase input so records stay joinable even for expansion teams.
func AbbrForTeam(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if abbr, ok := abbrByTeamName[strings.ToLower(trimmed)]; ok {
		return abbr
	}
	return strings.ToUpper(trimmed)
}
