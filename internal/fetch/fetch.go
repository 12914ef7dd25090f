// Package fetch retrieves competitor product pages and storefront product
// JSON with browser-like request headers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/donaldgifford/competitor-price-matcher/internal/httputil"
	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const defaultMaxBodyBytes = 3 << 20

// StatusError is returned for a non-2xx response that survived retries.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.Code)
}

// Fetcher retrieves one URL as extractor content.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, kind extract.Kind) (extract.Content, error)
}

// Client implements Fetcher over net/http.
type Client struct {
	client       *http.Client
	userAgent    string
	maxRetries   int
	maxBodyBytes int64
	budget       *pacing.Budget
	nowFunc      func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxRetries sets how many times 429 and 5xx responses are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithMaxBodyBytes caps how much of each body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithBudget injects the shared pacing budget.
func WithBudget(b *pacing.Budget) Option {
	return func(c *Client) {
		c.budget = b
	}
}

// WithNowFunc overrides the clock used for cache-busting probes.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = f
	}
}

// NewClient creates a page fetcher.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client:       &http.Client{Timeout: 20 * time.Second},
		userAgent:    DefaultUserAgent,
		maxRetries:   3,
		maxBodyBytes: defaultMaxBodyBytes,
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements Fetcher. A 403 or 406 gets one more attempt with a
// cache-busting probe parameter, since some storefront CDNs reject the first
// request of a session.
func (c *Client) Fetch(ctx context.Context, rawURL string, kind extract.Kind) (extract.Content, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	resp, err := c.do(ctx, rawURL, kind)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(kind.String(), "error").Inc()
		return extract.Content{}, err
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotAcceptable {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		metrics.FetchRetriesTotal.Inc()

		resp, err = c.do(ctx, c.probeURL(rawURL), kind)
		if err != nil {
			metrics.FetchRequestsTotal.WithLabelValues(kind.String(), "error").Inc()
			return extract.Content{}, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FetchRequestsTotal.WithLabelValues(kind.String(), "http_"+strconv.Itoa(resp.StatusCode)).Inc()
		return extract.Content{}, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(kind.String(), "error").Inc()
		return extract.Content{}, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	metrics.FetchRequestsTotal.WithLabelValues(kind.String(), "ok").Inc()
	return extract.Content{
		Kind:   kind,
		URL:    rawURL,
		Header: resp.Header,
		Body:   body,
	}, nil
}

func (c *Client) do(ctx context.Context, rawURL string, kind extract.Kind) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	c.setHeaders(req, kind)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries, c.waitBudget, func(int, int) {
		metrics.FetchRetriesTotal.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	return resp, nil
}

// waitBudget takes one unit of the pacing budget before every attempt.
func (c *Client) waitBudget(ctx context.Context) error {
	if c.budget == nil {
		return nil
	}
	if err := c.budget.Wait(ctx); err != nil {
		if errors.Is(err, pacing.ErrDailyLimitReached) {
			metrics.PacingDailyLimitHits.Inc()
		}
		return fmt.Errorf("fetch budget: %w", err)
	}
	metrics.PacingDailyUsage.Set(float64(c.budget.DailyCount()))
	return nil
}

func (c *Client) setHeaders(req *http.Request, kind extract.Kind) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if kind == extract.KindStorefrontJSON {
		req.Header.Set("Accept", "application/json, text/javascript, */*;q=0.1")
		return
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// probeURL appends a timestamp parameter so intermediaries treat the retry
// as a fresh request.
func (c *Client) probeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("probe", strconv.FormatInt(c.nowFunc().Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
