// Package account verifies bearer tokens against the account service's
// introspection endpoint.
package account

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/gridironhq/gridiron/internal/domain/user"
	"github.com/gridironhq/gridiron/internal/platform/logging"
	"github.com/gridironhq/gridiron/internal/platform/resilience"
	"github.com/gridironhq/gridiron/internal/usecase"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultCacheTTL        = 60 * time.Second
	defaultCacheMaxEntries = 10000
)

var errAccountTransient = crerr.New("account service transient failure")

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	IntrospectPath  string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	introspectURL  string
	logger         *logging.Logger
	cache          *principalCache
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
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
		httpClient.Timeout = defaultTimeout
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	cacheMaxEntries := cfg.CacheMaxEntries
	if cacheMaxEntries <= 0 {
		cacheMaxEntries = defaultCacheMaxEntries
	}

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		logger:         logger,
		cache:          newPrincipalCache(cacheTTL, cacheMaxEntries),
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// VerifyAccessToken resolves a bearer token to a principal. Verified tokens
// are cached by hash, so a burst of requests from one session hits the
// account service once per TTL window.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := hashToken(token)
	if principal, ok := c.cache.Get(cacheKey); ok {
		return principal, nil
	}

	principal, err := c.introspect(ctx, token)
	if err != nil {
		return user.Principal{}, err
	}

	c.cache.Set(cacheKey, principal)
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	if c.circuitEnabled {
		var principal user.Principal
		var permErr error
		err := c.breaker.Do(func() error {
			p, reqErr := c.doIntrospect(ctx, token)
			if reqErr != nil {
				if stderrors.Is(reqErr, errAccountTransient) {
					return reqErr
				}
				permErr = reqErr
				return nil
			}
			principal = p
			return nil
		})
		if err != nil {
			if stderrors.Is(err, resilience.ErrCircuitOpen) {
				c.logger.WarnContext(ctx, "account circuit breaker rejected request", "state", c.breaker.State())
				return user.Principal{}, fmt.Errorf("%w: account service is temporarily unavailable", usecase.ErrDependencyUnavailable)
			}
			return user.Principal{}, err
		}
		if permErr != nil {
			return user.Principal{}, permErr
		}
		return principal, nil
	}

	return c.doIntrospect(ctx, token)
}

func (c *Client) doIntrospect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection: %v", errAccountTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errAccountTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "account introspection non-200", "status_code", resp.StatusCode)
		if isTransientStatus(resp.StatusCode) {
			return user.Principal{}, fmt.Errorf("%w: introspection status=%d", errAccountTransient, resp.StatusCode)
		}
		return user.Principal{}, crerr.Newf("account introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

func isTransientStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
