package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/competitor-price-matcher/internal/engine"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Resolver resolves one target against a set of scopes. An empty scope
// list means the configured scopes.
type Resolver interface {
	Resolve(
		ctx context.Context,
		target *domain.TargetProduct,
		scopes []domain.CompetitorScope,
	) (map[string]domain.MatchResult, error)
}

// ResolveHandler serves ad-hoc resolution of a single target.
type ResolveHandler struct {
	resolver Resolver
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(r Resolver) *ResolveHandler {
	return &ResolveHandler{resolver: r}
}

// ScopeBody is a competitor scope supplied with a request.
type ScopeBody struct {
	ID      string   `json:"id"                minLength:"1"`
	Name    string   `json:"name,omitempty"`
	Mode    string   `json:"mode"              enum:"specific,wildcard"`
	Domains []string `json:"domains,omitempty" doc:"Exactly one domain for specific scopes"`
	Deny    []string `json:"deny,omitempty"    doc:"Domains excluded from a wildcard scope"`
}

// Scope converts the body into a domain scope.
func (b *ScopeBody) Scope() domain.CompetitorScope {
	s := domain.CompetitorScope{
		ID:      b.ID,
		Name:    b.Name,
		Mode:    domain.ScopeMode(strings.ToLower(b.Mode)),
		Domains: b.Domains,
		Deny:    b.Deny,
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	return s
}

// ResolveInput is the request body for resolving a target.
type ResolveInput struct {
	Body struct {
		Target TargetBody  `json:"target"`
		Scopes []ScopeBody `json:"scopes,omitempty" doc:"Scopes to resolve in; defaults to the configured scopes"`
	}
}

// ResolveOutput maps scope IDs to their match result.
type ResolveOutput struct {
	Body struct {
		TargetID string                        `json:"target_id"`
		Results  map[string]domain.MatchResult `json:"results"`
	}
}

// Resolve runs the tiered search for one target without persisting
// anything.
func (h *ResolveHandler) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	target := input.Body.Target.Target()

	scopes := make([]domain.CompetitorScope, 0, len(input.Body.Scopes))
	seen := make(map[string]bool, len(input.Body.Scopes))
	for i := range input.Body.Scopes {
		s := input.Body.Scopes[i].Scope()
		if err := s.Validate(); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		if seen[s.ID] {
			return nil, huma.Error422UnprocessableEntity("duplicate scope id " + s.ID)
		}
		seen[s.ID] = true
		scopes = append(scopes, s)
	}

	results, err := h.resolver.Resolve(ctx, &target, scopes)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return nil, huma.Error503ServiceUnavailable("resolution cancelled")
	case engine.IsSystemic(err):
		return nil, huma.Error503ServiceUnavailable("search unavailable: " + err.Error())
	default:
		return nil, huma.Error500InternalServerError("resolving target: " + err.Error())
	}

	resp := &ResolveOutput{}
	resp.Body.TargetID = target.ID
	resp.Body.Results = results
	return resp, nil
}

// RegisterResolveRoutes registers the resolve endpoint with the Huma API.
func RegisterResolveRoutes(api huma.API, h *ResolveHandler) {
	registerSchemas(api)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-target",
		Method:      http.MethodPost,
		Path:        "/api/v1/resolve",
		Summary:     "Resolve one target",
		Description: "Searches each scope tier by tier and returns one result per scope. " +
			"Per-scope failures are reported in the results; only quota, credential " +
			"or cancellation errors fail the request.",
		Tags:   []string{"resolve"},
		Errors: []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, h.Resolve)
}
