package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/internal/api/handlers"
	"github.com/donaldgifford/competitor-price-matcher/internal/engine"
	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	storeMocks "github.com/donaldgifford/competitor-price-matcher/internal/store/mocks"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// fakeTrigger is a test double for BatchTrigger.
type fakeTrigger struct {
	run     *domain.Run
	err     error
	trigger string
}

func (f *fakeTrigger) Trigger(_ context.Context, trigger string) (*domain.Run, error) {
	f.trigger = trigger
	return f.run, f.err
}

func newRunsAPI(t *testing.T, trig *fakeTrigger, setup func(*storeMocks.MockStore)) humatest.TestAPI {
	t.Helper()

	ms := storeMocks.NewMockStore(t)
	if setup != nil {
		setup(ms)
	}
	_, api := humatest.New(t)
	handlers.RegisterRunRoutes(api, handlers.NewRunsHandler(trig, ms))
	return api
}

func sampleRun(status string) *domain.Run {
	done := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	return &domain.Run{
		ID:          "run-1",
		Trigger:     handlers.TriggerAPI,
		Status:      status,
		StartedAt:   done.Add(-5 * time.Minute),
		CompletedAt: &done,
		Targets:     12,
		Matched:     9,
		Changes:     2,
	}
}

func TestRunsHandler_Create(t *testing.T) {
	t.Parallel()

	failed := sampleRun(domain.RunFailed)
	failed.ErrorText = "daily request limit reached"

	tests := []struct {
		name       string
		trig       *fakeTrigger
		wantStatus int
		wantBody   string
	}{
		{
			name:       "completed run",
			trig:       &fakeTrigger{run: sampleRun(domain.RunSucceeded)},
			wantStatus: http.StatusOK,
			wantBody:   `"changes":2`,
		},
		{
			name:       "failed run is still returned",
			trig:       &fakeTrigger{run: failed, err: errors.New("daily request limit reached")},
			wantStatus: http.StatusOK,
			wantBody:   `"error_text":"daily request limit reached"`,
		},
		{
			name:       "run already in progress",
			trig:       &fakeTrigger{err: engine.ErrBatchRunning},
			wantStatus: http.StatusConflict,
			wantBody:   "already in progress",
		},
		{
			name:       "run never started",
			trig:       &fakeTrigger{err: errors.New("listing targets: db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "batch run failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := newRunsAPI(t, tt.trig, nil).Post("/api/v1/runs")
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Body.String(), tt.wantBody)
			assert.Equal(t, handlers.TriggerAPI, tt.trig.trigger)
		})
	}
}

func TestRunsHandler_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantLimit  int
		runs       []domain.Run
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "default limit",
			path:       "/api/v1/runs",
			wantLimit:  20,
			runs:       []domain.Run{*sampleRun(domain.RunSucceeded)},
			wantStatus: http.StatusOK,
			wantBody:   `"id":"run-1"`,
		},
		{
			name:       "custom limit and empty history",
			path:       "/api/v1/runs?limit=5",
			wantLimit:  5,
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "store error",
			path:       "/api/v1/runs",
			wantLimit:  20,
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "listing runs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newRunsAPI(t, &fakeTrigger{}, func(m *storeMocks.MockStore) {
				m.EXPECT().ListRuns(mock.Anything, tt.wantLimit).Return(tt.runs, tt.err).Once()
			})

			resp := api.Get(tt.path)
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}

func TestRunsHandler_ListRejectsLargeLimit(t *testing.T) {
	t.Parallel()

	resp := newRunsAPI(t, &fakeTrigger{}, nil).Get("/api/v1/runs?limit=100000")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestRunsHandler_Get(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		run        *domain.Run
		err        error
		wantStatus int
	}{
		{name: "found", run: sampleRun(domain.RunSucceeded), wantStatus: http.StatusOK},
		{name: "not found", err: fmt.Errorf("run run-1: %w", store.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "store error", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newRunsAPI(t, &fakeTrigger{}, func(m *storeMocks.MockStore) {
				m.EXPECT().GetRun(mock.Anything, "run-1").Return(tt.run, tt.err).Once()
			})

			resp := api.Get("/api/v1/runs/run-1")
			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}
