package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// TargetsHandler manages the targets table.
type TargetsHandler struct {
	store store.Store
}

// NewTargetsHandler creates a new TargetsHandler.
func NewTargetsHandler(s store.Store) *TargetsHandler {
	return &TargetsHandler{store: s}
}

// TargetBody is the writable part of a target.
type TargetBody struct {
	ID             string           `json:"id"                        minLength:"1" doc:"Stable target identifier, usually the seller SKU"`
	Name           string           `json:"name,omitempty"            doc:"Product name"`
	Brand          string           `json:"brand,omitempty"           doc:"Brand or manufacturer"`
	GTIN           string           `json:"gtin,omitempty"            doc:"GTIN, UPC or EAN"`
	MPN            string           `json:"mpn,omitempty"             doc:"Manufacturer part number"`
	ReferencePrice *decimal.Decimal `json:"reference_price,omitempty" doc:"Our current price, as a decimal string"`
	Enabled        *bool            `json:"enabled,omitempty"         doc:"Include in batch runs (default true)"`
}

// Target converts the body into a domain target.
func (b *TargetBody) Target() domain.TargetProduct {
	t := domain.TargetProduct{
		ID:             b.ID,
		Name:           b.Name,
		Brand:          b.Brand,
		GTIN:           b.GTIN,
		MPN:            b.MPN,
		ReferencePrice: b.ReferencePrice,
		Enabled:        true,
	}
	if b.Enabled != nil {
		t.Enabled = *b.Enabled
	}
	return t
}

// ListTargetsInput filters the target list.
type ListTargetsInput struct {
	Enabled bool `query:"enabled" doc:"Only return enabled targets"`
}

// ListTargetsOutput is the response body for listing targets.
type ListTargetsOutput struct {
	Body []domain.TargetProduct
}

// TargetIDInput addresses a single target.
type TargetIDInput struct {
	ID string `path:"id" doc:"Target ID"`
}

// TargetOutput is the response body for a single target.
type TargetOutput struct {
	Body domain.TargetProduct
}

// UpsertTargetInput is the request body for creating or replacing a target.
type UpsertTargetInput struct {
	Body TargetBody
}

// List returns all targets, optionally only the enabled ones.
func (h *TargetsHandler) List(ctx context.Context, input *ListTargetsInput) (*ListTargetsOutput, error) {
	targets, err := h.store.ListTargets(ctx, input.Enabled)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing targets: " + err.Error())
	}
	if targets == nil {
		targets = []domain.TargetProduct{}
	}
	return &ListTargetsOutput{Body: targets}, nil
}

// Get returns a single target.
func (h *TargetsHandler) Get(ctx context.Context, input *TargetIDInput) (*TargetOutput, error) {
	t, err := h.store.GetTarget(ctx, input.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, huma.Error404NotFound("target not found")
	case err != nil:
		return nil, huma.Error500InternalServerError("getting target: " + err.Error())
	}
	return &TargetOutput{Body: *t}, nil
}

// Upsert creates the target or replaces the one with the same ID.
func (h *TargetsHandler) Upsert(ctx context.Context, input *UpsertTargetInput) (*TargetOutput, error) {
	t := input.Body.Target()
	if !t.HasIdentity() {
		return nil, huma.Error422UnprocessableEntity("target needs at least one of gtin, mpn or name")
	}
	if t.ReferencePrice != nil && !t.ReferencePrice.IsPositive() {
		return nil, huma.Error422UnprocessableEntity("reference_price must be positive")
	}

	if err := h.store.UpsertTarget(ctx, &t); err != nil {
		return nil, huma.Error500InternalServerError("saving target: " + err.Error())
	}
	return &TargetOutput{Body: t}, nil
}

// Delete removes a target. Its past results are kept until pruned.
func (h *TargetsHandler) Delete(ctx context.Context, input *TargetIDInput) (*struct{}, error) {
	err := h.store.DeleteTarget(ctx, input.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, huma.Error404NotFound("target not found")
	case err != nil:
		return nil, huma.Error500InternalServerError("deleting target: " + err.Error())
	}
	return nil, nil
}

// RegisterTargetRoutes registers target endpoints with the Huma API.
func RegisterTargetRoutes(api huma.API, h *TargetsHandler) {
	registerSchemas(api)

	huma.Register(api, huma.Operation{
		OperationID: "list-targets",
		Method:      http.MethodGet,
		Path:        "/api/v1/targets",
		Summary:     "List targets",
		Tags:        []string{"targets"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-target",
		Method:      http.MethodGet,
		Path:        "/api/v1/targets/{id}",
		Summary:     "Get a target by ID",
		Tags:        []string{"targets"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "upsert-target",
		Method:      http.MethodPost,
		Path:        "/api/v1/targets",
		Summary:     "Create or replace a target",
		Description: "Targets are keyed by ID; posting an existing ID replaces its identity and reference price.",
		Tags:        []string{"targets"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.Upsert)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-target",
		Method:        http.MethodDelete,
		Path:          "/api/v1/targets/{id}",
		Summary:       "Delete a target",
		Tags:          []string{"targets"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.Delete)
}
