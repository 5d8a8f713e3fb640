package httpapi

import (
	"context"
	"time"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/scoring"
	"github.com/minac/nba-game-recommender/internal/usecase"
)

type gameDTO struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	HomeTeam    string   `json:"homeTeam"`
	AwayTeam    string   `json:"awayTeam"`
	HomeScore   *int     `json:"homeScore"`
	AwayScore   *int     `json:"awayScore"`
	LeadChanges int      `json:"leadChanges"`
	StarPlayers []string `json:"starPlayerIds"`
	Source      string   `json:"source"`
}

type breakdownDTO struct {
	Points map[string]int `json:"points"`
	Total  int            `json:"total"`
}

type scoredGameDTO struct {
	Game  gameDTO      `json:"game"`
	Score breakdownDTO `json:"score"`
}

type recommendationDTO struct {
	WindowStart string          `json:"windowStart"`
	WindowEnd   string          `json:"windowEnd"`
	Source      string          `json:"source"`
	TopTeams    []string        `json:"topTeams"`
	Best        scoredGameDTO   `json:"best"`
	Ranked      []scoredGameDTO `json:"ranked"`
}

type gamesResponseDTO struct {
	Days   int       `json:"days"`
	Source string    `json:"source"`
	Games  []gameDTO `json:"games"`
}

type weightsDTO struct {
	TopTeamK         int    `json:"topTeamK"`
	PerTopTeamPoints int    `json:"perTopTeamPoints"`
	ClosenessMax     int    `json:"closenessMax"`
	HighTotalThresh  int    `json:"highTotalThreshold"`
	HighTotalPoints  int    `json:"highTotalPoints"`
	PerLeadChange    int    `json:"perLeadChange"`
	LeadChangeCap    int    `json:"leadChangeCap"`
	PerStarPoints    int    `json:"perStarPoints"`
	FavoriteTeam     string `json:"favoriteTeam"`
	FavoritePoints   int    `json:"favoritePoints"`
	BuzzMax          int    `json:"buzzMax"`
}

type configDTO struct {
	Season        string     `json:"season"`
	MaxWindowDays int        `json:"maxWindowDays"`
	Weights       weightsDTO `json:"weights"`
}

type refreshResponseDTO struct {
	Days               int    `json:"days"`
	Source             string `json:"source"`
	Games              int    `json:"games"`
	StandingsRefreshed bool   `json:"standingsRefreshed"`
}

func gameToDTO(ctx context.Context, v game.Game) gameDTO {
	ctx, span := startSpan(ctx, "httpapi.gameToDTO")
	defer span.End()

	return gameDTO{
		ID:          v.ID,
		Date:        v.Date.UTC().Format(time.DateOnly),
		HomeTeam:    v.HomeTeam,
		AwayTeam:    v.AwayTeam,
		HomeScore:   v.HomeScore,
		AwayScore:   v.AwayScore,
		LeadChanges: v.LeadChanges,
		StarPlayers: append([]string(nil), v.StarPlayerIDs...),
		Source:      v.Source,
	}
}

func scoredGameToDTO(ctx context.Context, v scoring.ScoredGame) scoredGameDTO {
	ctx, span := startSpan(ctx, "httpapi.scoredGameToDTO")
	defer span.End()

	points := make(map[string]int, len(v.Breakdown.Points))
	for criterion, awarded := range v.Breakdown.Points {
		points[criterion] = awarded
	}

	return scoredGameDTO{
		Game: gameToDTO(ctx, v.Game),
		Score: breakdownDTO{
			Points: points,
			Total:  v.Breakdown.Total,
		},
	}
}

func recommendationToDTO(ctx context.Context, v usecase.Recommendation) recommendationDTO {
	ctx, span := startSpan(ctx, "httpapi.recommendationToDTO")
	defer span.End()

	ranked := make([]scoredGameDTO, 0, len(v.Ranked))
	for _, item := range v.Ranked {
		ranked = append(ranked, scoredGameToDTO(ctx, item))
	}

	return recommendationDTO{
		WindowStart: v.Window.Start.UTC().Format(time.DateOnly),
		WindowEnd:   v.Window.End.UTC().Format(time.DateOnly),
		Source:      v.Source,
		TopTeams:    append([]string(nil), v.TopTeams...),
		Best:        scoredGameToDTO(ctx, v.Best),
		Ranked:      ranked,
	}
}

func weightsToDTO(ctx context.Context, v scoring.Weights) weightsDTO {
	ctx, span := startSpan(ctx, "httpapi.weightsToDTO")
	defer span.End()

	return weightsDTO{
		TopTeamK:         v.TopTeamK,
		PerTopTeamPoints: v.PerTopTeamPoints,
		ClosenessMax:     v.ClosenessMax,
		HighTotalThresh:  v.HighTotalThresh,
		HighTotalPoints:  v.HighTotalPoints,
		PerLeadChange:    v.PerLeadChange,
		LeadChangeCap:    v.LeadChangeCap,
		PerStarPoints:    v.PerStarPoints,
		FavoriteTeam:     v.FavoriteTeam,
		FavoritePoints:   v.FavoritePoints,
		BuzzMax:          v.BuzzMax,
	}
}
