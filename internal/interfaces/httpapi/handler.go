package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
	"github.com/minac/nba-game-recommender/internal/usecase"
)

const defaultWindowDays = 1

type Handler struct {
	recommendService *usecase.RecommendService
	ingestService    *usecase.IngestService
	standingsService *usecase.StandingsService
	season           string
	logger           *logging.Logger
	validator        *validator.Validate
	now              func() time.Time
}

func NewHandler(
	recommendService *usecase.RecommendService,
	ingestService *usecase.IngestService,
	standingsService *usecase.StandingsService,
	season string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		recommendService: recommendService,
		ingestService:    ingestService,
		standingsService: standingsService,
		season:           strings.TrimSpace(season),
		logger:           logger,
		validator:        validator.New(),
		now:              time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) BestGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BestGame")
	defer span.End()

	req, err := parseWindowQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	recommendation, err := h.recommendService.BestGame(ctx, req.Days, req.Team)
	if err != nil {
		h.logger.WarnContext(ctx, "best game failed", "days", req.Days, "team", req.Team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recommendationToDTO(ctx, recommendation))
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	req, err := parseWindowQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fetched, err := h.recommendService.ListGames(ctx, req.Days)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "days", req.Days, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := fetched.Games
	if req.Team != "" {
		abbr := strings.ToUpper(req.Team)
		filtered := make([]game.Game, 0, len(items))
		for _, g := range items {
			if g.HasTeam(abbr) {
				filtered = append(filtered, g)
			}
		}
		items = filtered
	}

	games := make([]gameDTO, 0, len(items))
	for _, g := range items {
		games = append(games, gameToDTO(ctx, g))
	}

	writeSuccess(ctx, w, http.StatusOK, gamesResponseDTO{
		Days:   req.Days,
		Source: fetched.Source,
		Games:  games,
	})
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetConfig")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, configDTO{
		Season:        h.season,
		MaxWindowDays: usecase.MaxWindowDays,
		Weights:       weightsToDTO(ctx, h.recommendService.Weights()),
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Refresh")
	defer span.End()

	req := refreshRequest{Days: defaultWindowDays}
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if req.Days == 0 {
		req.Days = defaultWindowDays
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	window, err := game.LastNDays(h.now(), req.Days)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	fetched, err := h.ingestService.Refresh(ctx, window)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh failed", "window", window.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	standingsRefreshed := false
	if h.standingsService != nil {
		if _, err := h.standingsService.Refresh(ctx, h.season); err != nil {
			h.logger.WarnContext(ctx, "standings refresh failed", "season", h.season, "error", err)
		} else {
			standingsRefreshed = true
		}
	}

	writeSuccess(ctx, w, http.StatusOK, refreshResponseDTO{
		Days:               req.Days,
		Source:             fetched.Source,
		Games:              len(fetched.Games),
		StandingsRefreshed: standingsRefreshed,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type windowQueryRequest struct {
	Days int    `validate:"min=1,max=30"`
	Team string `validate:"omitempty,alpha,min=2,max=3"`
}

type refreshRequest struct {
	Days int `json:"days" validate:"min=1,max=30"`
}

func parseWindowQuery(r *http.Request) (windowQueryRequest, error) {
	req := windowQueryRequest{
		Days: defaultWindowDays,
		Team: strings.TrimSpace(r.URL.Query().Get("team")),
	}

	rawDays := strings.TrimSpace(r.URL.Query().Get("days"))
	if rawDays == "" {
		return req, nil
	}

	days, err := strconv.Atoi(rawDays)
	if err != nil {
		return windowQueryRequest{}, fmt.Errorf("%w: days must be an integer", usecase.ErrInvalidInput)
	}
	req.Days = days
	return req, nil
}
