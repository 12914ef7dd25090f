package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// ResultsHandler serves the latest result per (target, scope).
type ResultsHandler struct {
	store store.Store
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(s store.Store) *ResultsHandler {
	return &ResultsHandler{store: s}
}

// ListResultsInput filters latest results.
type ListResultsInput struct {
	Status string `query:"status" doc:"Filter by match status" enum:"MATCHED,NOT_FOUND,AMBIGUOUS_SKIPPED,ERROR,"`
	Scope  string `query:"scope"  doc:"Filter by scope ID"`
	Target string `query:"target" doc:"Filter by target ID"`
	Limit  int    `query:"limit"  doc:"Number of rows (default 100)" minimum:"0" maximum:"5000"`
}

// ListResultsOutput is the response body for latest results.
type ListResultsOutput struct {
	Body struct {
		Results []domain.ResultRow `json:"results"`
		Count   int                `json:"count"`
	}
}

// List returns the newest row per (target, scope) matching the filters.
func (h *ResultsHandler) List(ctx context.Context, input *ListResultsInput) (*ListResultsOutput, error) {
	q := &store.ResultQuery{Limit: input.Limit}
	if input.Status != "" {
		status := domain.MatchStatus(input.Status)
		q.Status = &status
	}
	if input.Scope != "" {
		q.ScopeID = &input.Scope
	}
	if input.Target != "" {
		q.TargetID = &input.Target
	}

	rows, err := h.store.LatestResults(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing results: " + err.Error())
	}
	if rows == nil {
		rows = []domain.ResultRow{}
	}

	resp := &ListResultsOutput{}
	resp.Body.Results = rows
	resp.Body.Count = len(rows)
	return resp, nil
}

// RegisterResultRoutes registers result endpoints with the Huma API.
func RegisterResultRoutes(api huma.API, h *ResultsHandler) {
	registerSchemas(api)

	huma.Register(api, huma.Operation{
		OperationID: "list-results",
		Method:      http.MethodGet,
		Path:        "/api/v1/results",
		Summary:     "List latest results",
		Description: "Returns the most recent observation for each target and scope.",
		Tags:        []string{"results"},
	}, h.List)
}
