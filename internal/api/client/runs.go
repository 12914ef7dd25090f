package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// TriggerRun starts a batch run and waits for it. The server answers 409
// while another run is in flight.
func (c *Client) TriggerRun(ctx context.Context) (*domain.Run, error) {
	var run domain.Run
	if err := c.post(ctx, "/api/v1/runs", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first. A zero limit uses the server
// default.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	path := "/api/v1/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var runs []domain.Run
	if err := c.get(ctx, path, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns a single run by ID.
func (c *Client) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	var run domain.Run
	if err := c.get(ctx, "/api/v1/runs/"+url.PathEscape(id), &run); err != nil {
		return nil, err
	}
	return &run, nil
}
