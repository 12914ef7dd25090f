package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/competitor-price-matcher/internal/engine"
	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// TriggerAPI labels runs started through the API.
const TriggerAPI = "api"

const defaultRunsLimit = 20

// BatchTrigger starts a batch run unless one is already in flight.
type BatchTrigger interface {
	Trigger(ctx context.Context, trigger string) (*domain.Run, error)
}

// RunsHandler triggers batch runs and reports their history.
type RunsHandler struct {
	trigger BatchTrigger
	store   store.Store
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(t BatchTrigger, s store.Store) *RunsHandler {
	return &RunsHandler{trigger: t, store: s}
}

// RunOutput is the response body for a single run.
type RunOutput struct {
	Body domain.Run
}

// ListRunsInput bounds the run history.
type ListRunsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"500" doc:"Number of runs (default 20)"`
}

// ListRunsOutput is the response body for the run history.
type ListRunsOutput struct {
	Body []domain.Run
}

// GetRunInput addresses a single run.
type GetRunInput struct {
	ID string `path:"id" doc:"Run ID"`
}

// Create runs a batch synchronously. A run that completed as failed is
// still returned with 200 so callers can read its error text.
func (h *RunsHandler) Create(ctx context.Context, _ *struct{}) (*RunOutput, error) {
	run, err := h.trigger.Trigger(ctx, TriggerAPI)
	switch {
	case errors.Is(err, engine.ErrBatchRunning):
		return nil, huma.Error409Conflict("a batch run is already in progress")
	case run == nil && err != nil:
		return nil, huma.Error500InternalServerError("batch run failed: " + err.Error())
	case run == nil:
		return nil, huma.Error500InternalServerError("batch run returned no run")
	}
	return &RunOutput{Body: *run}, nil
}

// List returns recent runs, newest first.
func (h *RunsHandler) List(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultRunsLimit
	}

	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing runs: " + err.Error())
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	return &ListRunsOutput{Body: runs}, nil
}

// Get returns a single run.
func (h *RunsHandler) Get(ctx context.Context, input *GetRunInput) (*RunOutput, error) {
	run, err := h.store.GetRun(ctx, input.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, huma.Error404NotFound("run not found")
	case err != nil:
		return nil, huma.Error500InternalServerError("getting run: " + err.Error())
	}
	return &RunOutput{Body: *run}, nil
}

// RegisterRunRoutes registers batch run endpoints with the Huma API.
func RegisterRunRoutes(api huma.API, h *RunsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/runs",
		Summary:     "Trigger a batch run",
		Description: "Resolves every enabled target against every configured scope, " +
			"saves the results and notifies on changes. Blocks until the run completes.",
		Tags:   []string{"runs"},
		Errors: []int{http.StatusConflict, http.StatusInternalServerError},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "list-runs",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs",
		Summary:     "List batch runs",
		Tags:        []string{"runs"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-run",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs/{id}",
		Summary:     "Get a batch run",
		Tags:        []string{"runs"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)
}
