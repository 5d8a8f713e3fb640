package buzz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/minac/nba-game-recommender/internal/domain/game"
	basecache "github.com/minac/nba-game-recommender/internal/platform/cache"
	"github.com/minac/nba-game-recommender/internal/platform/logging"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-5"
	apiVersion       = "2023-06-01"
	maxResponseBytes = 1 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
	MaxScore   int
	Timeout    time.Duration
	CacheTTL   time.Duration
	Logger     *logging.Logger
}

// Client estimates public buzz per game by asking a language model to
// rate matchups on a bounded integer scale. Callers must treat every
// error as zero buzz; this signal only ever adds points.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxScore   int
	cache      *basecache.Store
	logger     *logging.Logger
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
		httpClient.Timeout = 60 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxScore := cfg.MaxScore
	if maxScore <= 0 {
		maxScore = 40
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		maxScore:   maxScore,
		cache:      basecache.NewStore(cacheTTL),
		logger:     logger,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ScoreBuzz rates each game in [0, MaxScore]. Games the model skips map
// to zero; out-of-range values are clamped. Results are memoized
// per game set so repeated rankings of the same window reuse one
// upstream call.
func (c *Client) ScoreBuzz(ctx context.Context, games []game.Game) (map[string]int, error) {
	if len(games) == 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("buzz api key is not configured")
	}

	v, err := c.cache.GetOrLoad(ctx, buzzCacheKey(games), func(ctx context.Context) (any, error) {
		return c.scoreBuzz(ctx, games)
	})
	if err != nil {
		return nil, err
	}

	scores, _ := v.(map[string]int)
	out := make(map[string]int, len(scores))
	for id, value := range scores {
		out[id] = value
	}
	return out, nil
}

func buzzCacheKey(games []game.Game) string {
	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	sort.Strings(ids)
	return "buzz:" + strings.Join(ids, ",")
}

func (c *Client) scoreBuzz(ctx context.Context, games []game.Game) (map[string]int, error) {
	body, err := sonic.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages:  []message{{Role: "user", Content: c.buildPrompt(games)}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode buzz request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build buzz request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send buzz request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read buzz response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("buzz status=%d", resp.StatusCode)
	}

	var decoded messagesResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode buzz response: %w", err)
	}

	text := ""
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	payload := extractJSON(text)
	if payload == "" {
		return nil, fmt.Errorf("buzz response contained no JSON object")
	}

	scores := make(map[string]float64, len(games))
	if err := sonic.Unmarshal([]byte(payload), &scores); err != nil {
		return nil, fmt.Errorf("decode buzz scores: %w", err)
	}

	out := make(map[string]int, len(games))
	for _, g := range games {
		value := int(scores[g.ID])
		if value < 0 {
			value = 0
		}
		if value > c.maxScore {
			value = c.maxScore
		}
		out[g.ID] = value
	}
	return out, nil
}

func (c *Client) buildPrompt(games []game.Game) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rate the public excitement around each of these NBA games on an integer scale from 0 to %d, ", c.maxScore)
	sb.WriteString("considering rivalry, star matchups and stakes. ")
	sb.WriteString("Respond with only a JSON object mapping game id to score.\n\n")
	for _, g := range games {
		if g.Played() {
			fmt.Fprintf(&sb, "%s: %s %d @ %s %d on %s\n",
				g.ID, g.AwayTeam, *g.AwayScore, g.HomeTeam, *g.HomeScore, g.Date.Format("2006-01-02"))
			continue
		}
		fmt.Fprintf(&sb, "%s: %s @ %s on %s\n", g.ID, g.AwayTeam, g.HomeTeam, g.Date.Format("2006-01-02"))
	}
	return sb.String()
}

// extractJSON pulls the JSON object out of a model reply, tolerating
// markdown code fences and surrounding prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if start := strings.Index(text, "```"); start >= 0 {
		rest := text[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last <= first {
		return ""
	}
	return text[first : last+1]
}
