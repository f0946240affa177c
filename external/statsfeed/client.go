// Package statsfeed talks to the external NFL data provider. It is the only
// implementation of the stats feed port the sync job consumes.
package statsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/domain/stats"
	"github.com/gridironhq/gridiron/internal/platform/logging"
	"github.com/gridironhq/gridiron/internal/platform/resilience"
	"github.com/gridironhq/gridiron/internal/usecase"
)

const (
	defaultBaseURL     = "https://feed.gridiron.example.com/v1"
	defaultTimeout     = 20 * time.Second
	maxResponseBytes   = 6 << 20
	defaultMaxRetries  = 2
	retryBackoffPerTry = time.Second
)

var errFeedTransient = crerr.New("stats feed transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

var _ usecase.StatsFeed = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// FetchWeekSchedule returns the provider's game list for one season week.
func (c *Client) FetchWeekSchedule(ctx context.Context, season, week int) ([]schedule.Game, error) {
	if season <= 0 || week <= 0 {
		return nil, crerr.Newf("season and week must be greater than zero, got season=%d week=%d", season, week)
	}

	path := fmt.Sprintf("/seasons/%d/weeks/%d/games", season, week)
	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, crerr.Wrapf(err, "fetch week schedule season=%d week=%d", season, week)
	}

	games := make([]schedule.Game, 0, len(envelope.Games))
	for _, item := range envelope.Games {
		game, err := item.toGame(season, week)
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed feed game", "game_id", item.GameID, "error", err)
			continue
		}
		games = append(games, game)
	}

	return games, nil
}

// FetchGameStats returns the raw stat lines of one finished game.
func (c *Client) FetchGameStats(ctx context.Context, gameID string) (usecase.FeedGameStats, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return usecase.FeedGameStats{}, crerr.New("game id is required")
	}

	path := "/games/" + url.PathEscape(gameID) + "/stats"
	var envelope gameStatsEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.FeedGameStats{}, crerr.Wrapf(err, "fetch game stats game=%s", gameID)
	}

	out := usecase.FeedGameStats{
		PlayerLines:  make([]stats.PlayerLine, 0, len(envelope.PlayerLines)),
		DefenseLines: make([]stats.TeamDefenseLine, 0, len(envelope.DefenseLines)),
	}
	for _, line := range envelope.PlayerLines {
		out.PlayerLines = append(out.PlayerLines, line.toLine(gameID))
	}
	for _, line := range envelope.DefenseLines {
		out.DefenseLines = append(out.DefenseLines, line.toLine(gameID))
	}

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	fullURL := c.buildURL(path, query)

	out, err, _ := c.flight.Do(path, func() (any, error) {
		if !c.circuitEnabled {
			return c.executeRequest(ctx, fullURL)
		}

		var raw []byte
		var permErr error
		err := c.breaker.Do(func() error {
			body, reqErr := c.executeRequest(ctx, fullURL)
			if reqErr != nil {
				if stderrors.Is(reqErr, errFeedTransient) {
					return reqErr
				}
				// Non-transient provider answers must not trip the breaker.
				permErr = reqErr
				return nil
			}
			raw = body
			return nil
		})
		if err != nil {
			if stderrors.Is(err, resilience.ErrCircuitOpen) {
				c.logger.WarnContext(ctx, "stats feed circuit breaker rejected request", "state", c.breaker.State())
				return nil, fmt.Errorf("%w: stats feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
			}
			return nil, err
		}
		if permErr != nil {
			return nil, permErr
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return crerr.Newf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode feed payload")
	}

	return nil
}

func (c *Client) buildURL(path string, query map[string]string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	if encoded := values.Encode(); encoded != "" {
		_ = buf.WriteByte('?')
		_, _ = buf.WriteString(encoded)
	}

	return buf.String()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.doOnce(fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !stderrors.Is(err, errFeedTransient) {
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * retryBackoffPerTry
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "stats feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errFeedTransient, err)
	}

	status := resp.StatusCode()
	body := resp.Body()
	if len(body) > maxResponseBytes {
		return nil, crerr.Newf("feed response exceeds %d bytes", maxResponseBytes)
	}

	if status >= 200 && status < 300 {
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}

	if isRetryableStatus(status) {
		return nil, fmt.Errorf("%w: feed status=%d body=%s", errFeedTransient, status, abbreviateBody(body))
	}
	return nil, crerr.Newf("feed status=%d body=%s", status, abbreviateBody(body))
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const max = 512
	text := strings.TrimSpace(string(raw))
	if len(text) <= max {
		return text
	}
	return text[:max] + "...(truncated)"
}

type scheduleEnvelope struct {
	Games []feedGame `json:"games"`
}

type feedGame struct {
	GameID     string `json:"gameId"`
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	KickoffAt  string `json:"kickoffAt"`
	Status     string `json:"status"`
}

func (g feedGame) toGame(season, week int) (schedule.Game, error) {
	if strings.TrimSpace(g.GameID) == "" {
		return schedule.Game{}, crerr.New("game id is empty")
	}
	if g.HomeTeamID == "" || g.AwayTeamID == "" {
		return schedule.Game{}, crerr.Newf("game %s is missing team ids", g.GameID)
	}

	var kickoff time.Time
	if strings.TrimSpace(g.KickoffAt) != "" {
		parsed, err := time.Parse(time.RFC3339, g.KickoffAt)
		if err != nil {
			return schedule.Game{}, crerr.Wrapf(err, "parse kickoff %q for game %s", g.KickoffAt, g.GameID)
		}
		kickoff = parsed.UTC()
	}

	return schedule.Game{
		GameID:     strings.TrimSpace(g.GameID),
		Season:     season,
		Week:       week,
		HomeTeamID: g.HomeTeamID,
		AwayTeamID: g.AwayTeamID,
		KickoffAt:  kickoff,
		Status:     schedule.NormalizeStatus(g.Status),
	}, nil
}

type gameStatsEnvelope struct {
	Season       int               `json:"season"`
	Week         int               `json:"week"`
	PlayerLines  []feedPlayerLine  `json:"playerLines"`
	DefenseLines []feedDefenseLine `json:"defenseLines"`
}

type feedPlayerLine struct {
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`

	PassingYards  int `json:"passingYards"`
	PassingTDs    int `json:"passingTds"`
	Interceptions int `json:"interceptionsThrown"`
	RushingYards  int `json:"rushingYards"`
	RushingTDs    int `json:"rushingTds"`
	ReceivingYard int `json:"receivingYards"`
	ReceivingTDs  int `json:"receivingTds"`
	TwoPointConvs int `json:"twoPointConversions"`
	FumblesLost   int `json:"fumblesLost"`
	ExtraPointsMd int `json:"extraPointsMade"`
	FieldGoalsMd  int `json:"fieldGoalsMade"`
	KickReturnTDs int `json:"kickReturnTds"`
	PuntReturnTDs int `json:"puntReturnTds"`
	FumReturnTDs  int `json:"fumbleReturnTds"`
}

func (l feedPlayerLine) toLine(gameID string) stats.PlayerLine {
	return stats.PlayerLine{
		PlayerID:      strings.TrimSpace(l.PlayerID),
		GameID:        gameID,
		TeamID:        strings.TrimSpace(l.TeamID),
		PassingYards:  l.PassingYards,
		PassingTDs:    l.PassingTDs,
		Interceptions: l.Interceptions,
		RushingYards:  l.RushingYards,
		RushingTDs:    l.RushingTDs,
		ReceivingYard: l.ReceivingYard,
		ReceivingTDs:  l.ReceivingTDs,
		TwoPointConvs: l.TwoPointConvs,
		FumblesLost:   l.FumblesLost,
		ExtraPointsMd: l.ExtraPointsMd,
		FieldGoalsMd:  l.FieldGoalsMd,
		KickReturnTDs: l.KickReturnTDs,
		PuntReturnTDs: l.PuntReturnTDs,
		FumReturnTDs:  l.FumReturnTDs,
	}
}

type feedDefenseLine struct {
	TeamID string `json:"teamId"`

	PointsAllowed    int `json:"pointsAllowed"`
	Sacks            int `json:"sacks"`
	InterceptionsMd  int `json:"interceptionsMade"`
	FumblesRecovered int `json:"fumblesRecovered"`
	Safeties         int `json:"safeties"`
	DefensiveTDs     int `json:"defensiveTds"`
	XPReturns        int `json:"xpReturns"`
}

func (l feedDefenseLine) toLine(gameID string) stats.TeamDefenseLine {
	return stats.TeamDefenseLine{
		TeamID:           strings.TrimSpace(l.TeamID),
		GameID:           gameID,
		PointsAllowed:    l.PointsAllowed,
		Sacks:            l.Sacks,
		InterceptionsMd:  l.InterceptionsMd,
		FumblesRecovered: l.FumblesRecovered,
		Safeties:         l.Safeties,
		DefensiveTDs:     l.DefensiveTDs,
		XPReturns:        l.XPReturns,
	}
}
