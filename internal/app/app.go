package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/minac/nba-game-recommender/external/balldontlie"
	"github.com/minac/nba-game-recommender/external/buzz"
	"github.com/minac/nba-game-recommender/external/nbastats"
	"github.com/minac/nba-game-recommender/internal/config"
	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/domain/scoring"
	"github.com/minac/nba-game-recommender/internal/domain/standings"
	"github.com/minac/nba-game-recommender/internal/infrastructure/repository/cache"
	"github.com/minac/nba-game-recommender/internal/infrastructure/repository/memory"
	"github.com/minac/nba-game-recommender/internal/infrastructure/repository/postgres"
	"github.com/minac/nba-game-recommender/internal/interfaces/httpapi"
	basecache "github.com/minac/nba-game-recommender/internal/platform/cache"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
	"github.com/minac/nba-game-recommender/internal/platform/resilience"
	"github.com/minac/nba-game-recommender/internal/usecase"
)

// NewHTTPServer wires stores, provider clients and services into the
// API server. The returned cleanup closes the DB handle when one was
// opened; it is a no-op for the in-memory store.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	svcLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(svcLogger)

	var (
		gameRepo      game.Repository
		standingsRepo standings.Repository
		cleanup       = func() error { return nil }
	)

	if useMemoryStore(cfg.DBURL) {
		logger.Info("using in-memory store", "db_url", cfg.DBURL)
		gameRepo = memory.NewGameRepository()
		standingsRepo = memory.NewStandingsRepository()
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = db.Close
		gameRepo = postgres.NewGameRepository(db)
		standingsRepo = postgres.NewStandingsRepository(db)
		logger.Info("connected to postgres", "database", dbNameFromURL(cfg.DBURL))

		if cfg.RepoCacheEnabled {
			store := basecache.NewStore(cfg.RepoCacheTTL)
			gameRepo = cache.NewGameRepository(gameRepo, store)
			standingsRepo = cache.NewStandingsRepository(standingsRepo, store)
		}
	}

	primary := nbastats.NewClient(nbastats.ClientConfig{
		BaseURL:     cfg.PrimaryBaseURL,
		Timeout:     cfg.PrimaryTimeout,
		LeadersTopN: cfg.LeadersTopN,
		Logger:      svcLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PrimaryCircuitEnabled,
			FailureThreshold: cfg.PrimaryCircuitFailureCount,
			OpenTimeout:      cfg.PrimaryCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PrimaryCircuitHalfOpenReq,
		},
	})

	var fallback usecase.GameProvider
	if cfg.FallbackEnabled {
		fallback = balldontlie.NewClient(balldontlie.ClientConfig{
			BaseURL:      cfg.FallbackBaseURL,
			APIKey:       cfg.FallbackAPIKey,
			Timeout:      cfg.FallbackTimeout,
			FetchWorkers: cfg.FallbackFetchWorkers,
			Logger:       svcLogger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FallbackCircuitEnabled,
				FailureThreshold: cfg.FallbackCircuitFailureCount,
				OpenTimeout:      cfg.FallbackCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FallbackCircuitHalfOpenReq,
			},
		})
	}

	var buzzProvider usecase.BuzzProvider
	if cfg.BuzzEnabled {
		buzzProvider = buzz.NewClient(buzz.ClientConfig{
			BaseURL:  cfg.BuzzBaseURL,
			APIKey:   cfg.BuzzAPIKey,
			Model:    cfg.BuzzModel,
			MaxScore: cfg.BuzzMax,
			Timeout:  cfg.BuzzTimeout,
			Logger:   svcLogger,
		})
	}

	ingestSvc := usecase.NewIngestService(gameRepo, primary, fallback, usecase.IngestConfig{
		FallbackEnabled: cfg.FallbackEnabled,
		CacheMaxAge:     cfg.CacheMaxAge,
		PrimaryTimeout:  cfg.PrimaryTimeout,
		FallbackTimeout: cfg.FallbackTimeout,
	}, svcLogger)
	standingsSvc := usecase.NewStandingsService(primary, standingsRepo, cfg.StandingsTTL, svcLogger)
	recommendSvc := usecase.NewRecommendService(ingestSvc, standingsSvc, buzzProvider, scoringWeights(cfg), cfg.Season, svcLogger)

	handler := httpapi.NewHandler(recommendSvc, ingestSvc, standingsSvc, cfg.Season, svcLogger)
	router := httpapi.NewRouter(handler, svcLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalRefreshToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func useMemoryStore(dbURL string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(dbURL))
	return trimmed == "" || trimmed == "memory"
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinaryResult)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func scoringWeights(cfg config.Config) scoring.Weights {
	return scoring.Weights{
		TopTeamK:         cfg.TopTeamK,
		PerTopTeamPoints: cfg.PerTopTeamPoints,
		ClosenessMax:     cfg.ClosenessMax,
		HighTotalThresh:  cfg.HighTotalThreshold,
		HighTotalPoints:  cfg.HighTotalPoints,
		PerLeadChange:    cfg.PerLeadChange,
		LeadChangeCap:    cfg.LeadChangeCap,
		PerStarPoints:    cfg.PerStarPoints,
		FavoriteTeam:     cfg.FavoriteTeam,
		FavoritePoints:   cfg.FavoritePoints,
		BuzzMax:          cfg.BuzzMax,
	}
}
