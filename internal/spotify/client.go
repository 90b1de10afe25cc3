package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/shared"
	"golang.org/x/time/rate"
)

// TokenManager keeps an account's access token usable. [*auth.Manager] implements it.
type TokenManager interface {
	EnsureValid(ctx context.Context, acc *auth.Account) error
	Refresh(ctx context.Context, acc *auth.Account) error
}

// Response is a successful API response with its body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL           string
	HTTPClient        *http.Client
	Tokens            TokenManager
	RequestsPerSecond float64
	DefaultRetryAfter time.Duration
	Sleep             func(ctx context.Context, d time.Duration) error
	Logger            *log.Logger
}

// Client sends authorized requests to the Web API, one at a time.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	tokens            TokenManager
	limiter           *rate.Limiter
	defaultRetryAfter time.Duration
	sleep             func(ctx context.Context, d time.Duration) error
	logger            *log.Logger
}

// NewClient creates a Client. A zero RequestsPerSecond disables pacing.
func NewClient(opts ClientOpts) *Client {
	defaults := shared.DefaultSettings()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.Spotify.APIURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaults.Client.Timeout()}
	}
	if opts.DefaultRetryAfter <= 0 {
		opts.DefaultRetryAfter = defaults.Client.DefaultRetryAfter()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:           opts.BaseURL,
		httpClient:        opts.HTTPClient,
		tokens:            opts.Tokens,
		limiter:           limiter,
		defaultRetryAfter: opts.DefaultRetryAfter,
		sleep:             opts.Sleep,
		logger:            opts.Logger,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call sends method endpoint on behalf of acc. endpoint is relative to the API base unless it
// is an absolute URL (as found in paging "next" links). body may be nil.
func (c *Client) Call(ctx context.Context, method, endpoint string, acc *auth.Account, body Body) (*Response, error) {
	target := c.resolve(endpoint)
	reauthorized := false

	for {
		if c.tokens != nil {
			if err := c.tokens.EnsureValid(ctx, acc); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, method, target, acc, body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.Status >= 200 && resp.Status < 300:
			return resp, nil
		case resp.Status == http.StatusUnauthorized:
			if reauthorized || c.tokens == nil {
				return nil, c.statusError(resp, acc, shared.ErrUnauthorized)
			}
			reauthorized = true
			c.logger.Debug("access token rejected, refreshing", "endpoint", endpoint)
			if err := c.tokens.Refresh(ctx, acc); err != nil {
				return nil, err
			}
		case resp.Status == http.StatusForbidden:
			return nil, c.statusError(resp, acc, shared.ErrForbidden)
		case resp.Status == http.StatusLocked || resp.Status == http.StatusTooManyRequests:
			wait := c.retryAfter(resp.Header)
			c.logger.Warn("rate limited, waiting", "status", resp.Status, "retry_after", wait, "endpoint", endpoint)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		case resp.Status >= 400 && resp.Status < 500:
			return nil, c.statusError(resp, acc, shared.ErrClientStatus)
		case resp.Status >= 500 && resp.Status < 600:
			return nil, c.statusError(resp, acc, shared.ErrServerStatus)
		default:
			return nil, c.statusError(resp, acc, shared.ErrUnknownStatus)
		}
	}
}

// CallJSON is [Client.Call] for endpoints that answer with JSON.
func (c *Client) CallJSON(ctx context.Context, method, endpoint string, acc *auth.Account, body Body) (json.RawMessage, error) {
	resp, err := c.Call(ctx, method, endpoint, acc, body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrInvalidJSON, method, endpoint)
	}
	return json.RawMessage(resp.Body), nil
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + strings.TrimPrefix(endpoint, "/")
}

func (c *Client) do(ctx context.Context, method, target string, acc *auth.Account, body Body) (*Response, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		r, ct, err := body.encode()
		if err != nil {
			return nil, err
		}
		reader, contentType = r, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+acc.AccessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", shared.ErrAPIRequest, err)
	}
	c.logger.Debug("api call", "method", method, "url", target, "status", resp.StatusCode, "took", time.Since(start))

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs < 0 {
		return c.defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

func (c *Client) statusError(resp *Response, acc *auth.Account, kind error) *APIError {
	account := acc.UserID
	if account == "" {
		account = "(unknown id)"
	}
	return &APIError{Status: resp.Status, Body: strings.TrimSpace(string(resp.Body)), Account: account, Err: kind}
}
