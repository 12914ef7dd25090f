// Package search provides the web search API client, abstracted behind an
// interface for testability.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/competitor-price-matcher/internal/httputil"
	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
)

const (
	defaultEndpoint = "https://serpapi.com/search.json"
	defaultEngine   = "google"
	defaultNum      = 10

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 4 << 20
)

// Engines understood by the search extractor.
const (
	EngineGoogle         = "google"
	EngineGoogleShopping = "google_shopping"
)

// ErrMissingAPIKey is returned when no API key is configured. It is a
// systemic error: every query would fail the same way.
var ErrMissingAPIKey = errors.New("search API key is not configured")

// Searcher runs a query and returns the raw search response.
type Searcher interface {
	Search(ctx context.Context, query string) (extract.Content, error)
}

// Client implements Searcher against a SerpAPI-compatible endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	engine     string
	gl         string
	hl         string
	num        int
	maxRetries int
	client     *http.Client
	budget     *pacing.Budget
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the default search endpoint.
func WithEndpoint(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.endpoint = u
		}
	}
}

// WithEngine selects the search engine (EngineGoogle or EngineGoogleShopping).
func WithEngine(engine string) Option {
	return func(c *Client) {
		if engine != "" {
			c.engine = engine
		}
	}
}

// WithLocale sets the country and interface language parameters.
func WithLocale(gl, hl string) Option {
	return func(c *Client) {
		c.gl = gl
		c.hl = hl
	}
}

// WithNum sets the number of results requested per query.
func WithNum(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.num = n
		}
	}
}

// WithMaxRetries sets how many times 429 and 5xx responses are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithBudget injects the shared pacing budget. When set, every Search call
// goes through Wait first.
func WithBudget(b *pacing.Budget) Option {
	return func(c *Client) {
		c.budget = b
	}
}

// NewClient creates a new search client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		engine:     defaultEngine,
		gl:         "us",
		hl:         "en",
		num:        defaultNum,
		maxRetries: 3,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Error string `json:"error"`
}

// Search implements Searcher.
func (c *Client) Search(ctx context.Context, query string) (extract.Content, error) {
	if c.apiKey == "" {
		return extract.Content{}, ErrMissingAPIKey
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(query, true), http.NoBody)
	if err != nil {
		return extract.Content{}, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries, c.waitBudget, nil)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return extract.Content{}, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return extract.Content{}, fmt.Errorf("reading search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.SearchRequestsTotal.WithLabelValues("http_" + strconv.Itoa(resp.StatusCode)).Inc()
		if resp.StatusCode == http.StatusUnauthorized {
			return extract.Content{}, fmt.Errorf("search API rejected key (status 401): %w", ErrMissingAPIKey)
		}
		return extract.Content{}, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, truncate(body, 200))
	}

	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" && !isEmptyResults(apiErr.Error) {
		metrics.SearchRequestsTotal.WithLabelValues("api_error").Inc()
		return extract.Content{}, fmt.Errorf("search API error: %s", apiErr.Error)
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	return extract.Content{
		Kind:   extract.KindSearchResults,
		URL:    c.buildURL(query, false),
		Header: resp.Header,
		Body:   body,
	}, nil
}

// waitBudget takes one unit of the pacing budget. It runs before every
// HTTP attempt, retries included.
func (c *Client) waitBudget(ctx context.Context) error {
	if c.budget == nil {
		return nil
	}
	if err := c.budget.Wait(ctx); err != nil {
		if errors.Is(err, pacing.ErrDailyLimitReached) {
			metrics.PacingDailyLimitHits.Inc()
		}
		return fmt.Errorf("search budget: %w", err)
	}
	metrics.PacingDailyUsage.Set(float64(c.budget.DailyCount()))
	return nil
}

// isEmptyResults recognizes the "no results" message, which is a valid
// empty answer rather than a failure.
func isEmptyResults(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "hasn't returned any results")
}

func (c *Client) buildURL(query string, withKey bool) string {
	params := url.Values{}
	params.Set("engine", c.engine)
	params.Set("q", query)
	if c.gl != "" {
		params.Set("gl", c.gl)
	}
	if c.hl != "" {
		params.Set("hl", c.hl)
	}
	params.Set("num", strconv.Itoa(c.num))
	if withKey {
		params.Set("api_key", c.apiKey)
	}
	return c.endpoint + "?" + params.Encode()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
