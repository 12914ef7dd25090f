package client

import (
	"context"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

type scopeRequest struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Mode    string   `json:"mode"`
	Domains []string `json:"domains,omitempty"`
	Deny    []string `json:"deny,omitempty"`
}

type resolveRequest struct {
	Target targetRequest  `json:"target"`
	Scopes []scopeRequest `json:"scopes,omitempty"`
}

// ResolveResponse maps scope IDs to their result for one target.
type ResolveResponse struct {
	TargetID string                        `json:"target_id"`
	Results  map[string]domain.MatchResult `json:"results"`
}

// Resolve resolves a target without persisting anything. Nil scopes use
// the server's configured scopes.
func (c *Client) Resolve(
	ctx context.Context,
	t *domain.TargetProduct,
	scopes []domain.CompetitorScope,
) (*ResolveResponse, error) {
	req := resolveRequest{Target: newTargetRequest(t)}
	for i := range scopes {
		s := &scopes[i]
		req.Scopes = append(req.Scopes, scopeRequest{
			ID:      s.ID,
			Name:    s.Name,
			Mode:    string(s.Mode),
			Domains: s.Domains,
			Deny:    s.Deny,
		})
	}

	var resp ResolveResponse
	if err := c.post(ctx, "/api/v1/resolve", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
