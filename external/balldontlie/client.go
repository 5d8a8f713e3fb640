package balldontlie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	ants "github.com/panjf2000/ants/v2"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
	"github.com/minac/nba-game-recommender/internal/platform/resilience"
	"github.com/minac/nba-game-recommender/internal/usecase"
)

const (
	defaultBaseURL    = "https://api.balldontlie.io/v1"
	statusFinal       = "Final"
	perPage           = 100
	responseSizeLimit = 4 << 20
)

var errTransient = crerr.New("balldontlie transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	FetchWorkers   int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the fallback game source. The free feed has no play-by-play
// or box scores, so lead changes are estimated from the final margin
// and no star players are attached.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	fetchWorkers   int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	fetchWorkers := cfg.FetchWorkers
	if fetchWorkers < 1 {
		fetchWorkers = 4
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     cfg.MaxRetries,
		fetchWorkers:   fetchWorkers,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Source() string { return game.SourceFallback }

// FetchGames loads every day in window concurrently through a bounded
// worker pool. Any day failing fails the whole attempt; a partially
// fetched window must never be stored as covered.
func (c *Client) FetchGames(ctx context.Context, window game.Window) ([]game.Game, error) {
	days := window.Days()

	pool, err := ants.NewPool(c.fetchWorkers)
	if err != nil {
		return nil, c.classify(fmt.Errorf("create fetch pool: %w", err))
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		out      = make([]game.Game, 0, 32)
	)
	for _, day := range days {
		day := day
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			games, dayErr := c.fetchDay(ctx, day)
			mu.Lock()
			defer mu.Unlock()
			if dayErr != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch games %s: %w", day.Format("2006-01-02"), dayErr)
				}
				return
			}
			out = append(out, games...)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit fetch task: %w", submitErr)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, c.classify(firstErr)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type teamPayload struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

type gamePayload struct {
	ID               int64       `json:"id"`
	Date             string      `json:"date"`
	Status           string      `json:"status"`
	HomeTeamScore    int         `json:"home_team_score"`
	VisitorTeamScore int         `json:"visitor_team_score"`
	HomeTeam         teamPayload `json:"home_team"`
	VisitorTeam      teamPayload `json:"visitor_team"`
}

type gamesEnvelope struct {
	Data []gamePayload `json:"data"`
	Meta struct {
		NextCursor *int64 `json:"next_cursor"`
	} `json:"meta"`
}

func (c *Client) fetchDay(ctx context.Context, day time.Time) ([]game.Game, error) {
	out := make([]game.Game, 0, 16)
	var cursor *int64
	for {
		query := url.Values{}
		query.Set("dates[]", day.Format("2006-01-02"))
		query.Set("per_page", fmt.Sprintf("%d", perPage))
		if cursor != nil {
			query.Set("cursor", fmt.Sprintf("%d", *cursor))
		}

		var envelope gamesEnvelope
		if err := c.doJSON(ctx, "/games", query, &envelope); err != nil {
			return nil, err
		}

		for _, item := range envelope.Data {
			mapped, ok := c.mapGame(item, day)
			if !ok {
				continue
			}
			out = append(out, mapped)
		}

		if envelope.Meta.NextCursor == nil {
			return out, nil
		}
		cursor = envelope.Meta.NextCursor
	}
}

func (c *Client) mapGame(item gamePayload, day time.Time) (game.Game, bool) {
	homeAbbr := strings.ToUpper(strings.TrimSpace(item.HomeTeam.Abbreviation))
	if homeAbbr == "" {
		homeAbbr = game.AbbrForTeam(item.HomeTeam.FullName)
	}
	awayAbbr := strings.ToUpper(strings.TrimSpace(item.VisitorTeam.Abbreviation))
	if awayAbbr == "" {
		awayAbbr = game.AbbrForTeam(item.VisitorTeam.FullName)
	}
	if homeAbbr == "" || awayAbbr == "" {
		return game.Game{}, false
	}

	mapped := game.Game{
		ID:        game.Key(day, homeAbbr, awayAbbr),
		Date:      day,
		HomeTeam:  homeAbbr,
		AwayTeam:  awayAbbr,
		Source:    game.SourceFallback,
		FetchedAt: time.Now().UTC(),
	}
	if strings.EqualFold(strings.TrimSpace(item.Status), statusFinal) {
		homeScore := item.HomeTeamScore
		awayScore := item.VisitorTeamScore
		mapped.HomeScore = &homeScore
		mapped.AwayScore = &awayScore
		if margin, ok := mapped.Margin(); ok {
			mapped.LeadChanges = game.EstimateLeadChanges(margin)
		}
	}
	return mapped, true
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "balldontlie circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: balldontlie is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode balldontlie payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("authorization", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %w", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, responseSizeLimit))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: balldontlie status=%d", errTransient, resp.StatusCode)
			} else {
				return nil, fmt.Errorf("balldontlie status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("balldontlie request failed")
	}
	c.logger.WarnContext(ctx, "balldontlie request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) classify(err error) *usecase.SourceFailure {
	kind := usecase.FailureError
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = usecase.FailureTimeout
	}
	return &usecase.SourceFailure{Source: game.SourceFallback, Kind: kind, Err: err}
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
