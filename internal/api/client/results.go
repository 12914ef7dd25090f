package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// ResultsParams holds optional filters for ListResults.
type ResultsParams struct {
	Status string
	Scope  string
	Target string
	Limit  int
}

// ResultsResponse is the latest-results payload.
type ResultsResponse struct {
	Results []domain.ResultRow `json:"results"`
	Count   int                `json:"count"`
}

// ListResults returns the latest result per (target, scope).
func (c *Client) ListResults(ctx context.Context, p *ResultsParams) (*ResultsResponse, error) {
	q := url.Values{}
	if p != nil {
		if p.Status != "" {
			q.Set("status", p.Status)
		}
		if p.Scope != "" {
			q.Set("scope", p.Scope)
		}
		if p.Target != "" {
			q.Set("target", p.Target)
		}
		if p.Limit > 0 {
			q.Set("limit", strconv.Itoa(p.Limit))
		}
	}

	path := "/api/v1/results"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ResultsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
