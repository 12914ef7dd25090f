// Package catalog pages through the seller's own product catalog on a
// Shopify-style Admin GraphQL API and turns variants into targets.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/donaldgifford/competitor-price-matcher/internal/httputil"
	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const (
	defaultPageSize = 150
	defaultMaxPages = 50
	defaultVersion  = "2024-07"
)

// ErrMissingToken is returned when the catalog is used without an access token.
var ErrMissingToken = errors.New("catalog access token is not configured")

const productsQuery = `query($cursor: String, $first: Int!) {
  products(first: $first, after: $cursor) {
    pageInfo { hasNextPage }
    edges {
      cursor
      node {
        id
        title
        handle
        vendor
        variants(first: 50) {
          nodes { id title sku barcode price }
        }
      }
    }
  }
}`

// Page is one page of catalog targets.
type Page struct {
	Targets    []domain.TargetProduct
	NextCursor string
	HasMore    bool
	Cost       pacing.CostHint
}

// Pager fetches one catalog page starting after cursor.
type Pager interface {
	Page(ctx context.Context, cursor string) (*Page, error)
}

// Client implements Pager against the Admin GraphQL endpoint.
type Client struct {
	endpoint   string
	token      string
	pageSize   int
	maxPages   int
	maxRetries int
	client     *http.Client
	budget     *pacing.Budget
	log        *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint derived from the shop name.
func WithEndpoint(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.endpoint = u
		}
	}
}

// WithPageSize sets how many products are requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages caps how many pages ListTargets walks.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithBudget injects the shared pacing budget. Cost hints from every page
// are reported to it.
func WithBudget(b *pacing.Budget) Option {
	return func(c *Client) {
		c.budget = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a catalog client for shop (the myshopify.com
// subdomain).
func NewClient(shop, token string, opts ...Option) *Client {
	c := &Client{
		endpoint:   fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/graphql.json", shop, defaultVersion),
		token:      token,
		pageSize:   defaultPageSize,
		maxPages:   defaultMaxPages,
		maxRetries: 3,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlResponse struct {
	Data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Edges []struct {
				Cursor string      `json:"cursor"`
				Node   productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Extensions struct {
		Cost struct {
			RequestedQueryCost float64 `json:"requestedQueryCost"`
			ThrottleStatus     struct {
				CurrentlyAvailable float64 `json:"currentlyAvailable"`
				RestoreRate        float64 `json:"restoreRate"`
			} `json:"throttleStatus"`
		} `json:"cost"`
	} `json:"extensions"`
}

type productNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	Vendor   string `json:"vendor"`
	Variants struct {
		Nodes []variantNode `json:"nodes"`
	} `json:"variants"`
}

type variantNode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	SKU     string `json:"sku"`
	Barcode string `json:"barcode"`
	Price   string `json:"price"`
}

// Page implements Pager.
func (c *Client) Page(ctx context.Context, cursor string) (*Page, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	vars := map[string]any{"first": c.pageSize, "cursor": nil}
	if cursor != "" {
		vars["cursor"] = cursor
	}
	payload, err := json.Marshal(gqlRequest{Query: productsQuery, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries, c.waitBudget, nil)
	if err != nil {
		return nil, fmt.Errorf("executing catalog request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("catalog rejected token (status %d): %w", resp.StatusCode, ErrMissingToken)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog API error (status %d): %s", resp.StatusCode, string(body))
	}

	var gr gqlResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}

	hint := pacing.CostHint{
		Requested:   gr.Extensions.Cost.RequestedQueryCost,
		Available:   gr.Extensions.Cost.ThrottleStatus.CurrentlyAvailable,
		RestoreRate: gr.Extensions.Cost.ThrottleStatus.RestoreRate,
	}
	metrics.CatalogCostAvailable.Set(hint.Available)
	if c.budget != nil && hint.Requested > 0 {
		c.budget.Observe(hint)
	}

	if len(gr.Errors) > 0 {
		msgs := make([]string, 0, len(gr.Errors))
		for _, e := range gr.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("catalog query errors: %s", strings.Join(msgs, "; "))
	}

	page := &Page{
		HasMore: gr.Data.Products.PageInfo.HasNextPage,
		Cost:    hint,
	}
	for _, edge := range gr.Data.Products.Edges {
		page.NextCursor = edge.Cursor
		page.Targets = append(page.Targets, toTargets(&edge.Node)...)
	}
	if page.NextCursor == "" {
		page.HasMore = false
	}
	return page, nil
}

func (c *Client) waitBudget(ctx context.Context) error {
	if c.budget == nil {
		return nil
	}
	if err := c.budget.Wait(ctx); err != nil {
		return fmt.Errorf("catalog budget: %w", err)
	}
	return nil
}

// ListTargets walks every page until the catalog reports no more results
// or the page cap is hit.
func (c *Client) ListTargets(ctx context.Context) ([]domain.TargetProduct, error) {
	var (
		targets []domain.TargetProduct
		cursor  string
	)
	for page := range c.maxPages {
		p, err := c.Page(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("catalog page %d: %w", page, err)
		}
		targets = append(targets, p.Targets...)
		if !p.HasMore {
			return targets, nil
		}
		cursor = p.NextCursor
	}
	c.log.Warn("catalog page cap reached", "max_pages", c.maxPages, "targets", len(targets))
	return targets, nil
}

// toTargets converts one product node into a target per variant.
func toTargets(p *productNode) []domain.TargetProduct {
	out := make([]domain.TargetProduct, 0, len(p.Variants.Nodes))
	for _, v := range p.Variants.Nodes {
		name := p.Title
		if v.Title != "" && v.Title != "Default Title" {
			name += " " + v.Title
		}
		t := domain.TargetProduct{
			ID:      gidTail(v.ID),
			Name:    name,
			Brand:   p.Vendor,
			GTIN:    strings.TrimSpace(v.Barcode),
			MPN:     strings.TrimSpace(v.SKU),
			Enabled: true,
		}
		if price, ok := normalize.ParseMoney(v.Price); ok {
			t.ReferencePrice = &price
		}
		out = append(out, t)
	}
	return out
}

// gidTail returns the numeric tail of a global ID such as
// gid://shopify/ProductVariant/123.
func gidTail(gid string) string {
	if i := strings.LastIndexByte(gid, '/'); i >= 0 {
		return gid[i+1:]
	}
	return gid
}
