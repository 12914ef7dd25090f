package client

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// targetRequest contains only the fields the API accepts for an upsert.
type targetRequest struct {
	ID             string           `json:"id"`
	Name           string           `json:"name,omitempty"`
	Brand          string           `json:"brand,omitempty"`
	GTIN           string           `json:"gtin,omitempty"`
	MPN            string           `json:"mpn,omitempty"`
	ReferencePrice *decimal.Decimal `json:"reference_price,omitempty"`
	Enabled        *bool            `json:"enabled,omitempty"`
}

func newTargetRequest(t *domain.TargetProduct) targetRequest {
	enabled := t.Enabled
	return targetRequest{
		ID:             t.ID,
		Name:           t.Name,
		Brand:          t.Brand,
		GTIN:           t.GTIN,
		MPN:            t.MPN,
		ReferencePrice: t.ReferencePrice,
		Enabled:        &enabled,
	}
}

// ListTargets returns targets, optionally only the enabled ones.
func (c *Client) ListTargets(ctx context.Context, enabledOnly bool) ([]domain.TargetProduct, error) {
	path := "/api/v1/targets"
	if enabledOnly {
		path += "?enabled=true"
	}

	var targets []domain.TargetProduct
	if err := c.get(ctx, path, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// GetTarget returns a single target by ID.
func (c *Client) GetTarget(ctx context.Context, id string) (*domain.TargetProduct, error) {
	var t domain.TargetProduct
	if err := c.get(ctx, "/api/v1/targets/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertTarget creates or replaces a target and returns the stored copy.
func (c *Client) UpsertTarget(ctx context.Context, t *domain.TargetProduct) (*domain.TargetProduct, error) {
	var saved domain.TargetProduct
	if err := c.post(ctx, "/api/v1/targets", newTargetRequest(t), &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteTarget deletes a target by ID.
func (c *Client) DeleteTarget(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/targets/"+url.PathEscape(id), nil)
}
