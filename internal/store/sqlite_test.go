package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

var _ Store = (*SQLiteStore)(nil)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "cpm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTarget(id string) *domain.TargetProduct {
	ref := decimal.RequireFromString("599.99")
	return &domain.TargetProduct{
		ID:             id,
		Name:           "Edge 1050",
		Brand:          "Garmin",
		GTIN:           "753759315389",
		MPN:            "010-02890-00",
		ReferencePrice: &ref,
		Enabled:        true,
	}
}

func testRow(targetID, scopeID string, status domain.MatchStatus, price string, at time.Time) domain.ResultRow {
	row := domain.ResultRow{
		RunID:      "run-1",
		TargetID:   targetID,
		TargetName: "Edge 1050",
		ScopeID:    scopeID,
		Status:     status,
		MatchedBy:  domain.TierNone,
		CheckedAt:  at,
	}
	if price != "" {
		p := decimal.RequireFromString(price)
		row.MatchPrice = &p
		row.MatchedBy = domain.TierGTIN
		row.MatchSource = "examplestore.com"
		row.Origin = domain.OriginPageSchema
	}
	return row
}

func TestSQLiteStore_Ping(t *testing.T) {
	t.Parallel()

	s := newSQLiteStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestSQLiteStore_Targets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLiteStore(t)

	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	target := testTarget("t1")
	require.NoError(t, s.UpsertTarget(ctx, target))
	assert.Equal(t, created, target.CreatedAt)

	got, err := s.GetTarget(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Edge 1050", got.Name)
	assert.Equal(t, "753759315389", got.GTIN)
	require.NotNil(t, got.ReferencePrice)
	assert.True(t, got.ReferencePrice.Equal(decimal.RequireFromString("599.99")))
	assert.True(t, got.Enabled)

	// Upsert keeps created_at and moves updated_at.
	updated := created.Add(time.Hour)
	s.now = func() time.Time { return updated }
	target.Name = "Edge 1050 Bundle"
	target.ReferencePrice = nil
	require.NoError(t, s.UpsertTarget(ctx, target))
	assert.Equal(t, created, target.CreatedAt)
	assert.Equal(t, updated, target.UpdatedAt)

	got, err = s.GetTarget(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Edge 1050 Bundle", got.Name)
	assert.Nil(t, got.ReferencePrice)

	disabled := testTarget("t2")
	disabled.Enabled = false
	require.NoError(t, s.UpsertTarget(ctx, disabled))

	all, err := s.ListTargets(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := s.ListTargets(ctx, true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "t1", enabled[0].ID)

	require.NoError(t, s.DeleteTarget(ctx, "t2"))
	require.ErrorIs(t, s.DeleteTarget(ctx, "t2"), ErrNotFound)

	_, err = s.GetTarget(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_LatestResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLiteStore(t)

	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	require.NoError(t, s.SaveResults(ctx, []domain.ResultRow{
		testRow("t1", "examplestore", domain.StatusMatched, "549.99", day1),
		testRow("t1", "market", domain.StatusNotFound, "", day1),
		testRow("t2", "examplestore", domain.StatusError, "", day1),
	}))
	require.NoError(t, s.SaveResults(ctx, []domain.ResultRow{
		testRow("t1", "examplestore", domain.StatusMatched, "529.99", day2),
	}))

	latest, err := s.LatestResults(ctx, nil)
	require.NoError(t, err)
	require.Len(t, latest, 3)

	assert.Equal(t, "t1", latest[0].TargetID)
	assert.Equal(t, "examplestore", latest[0].ScopeID)
	require.NotNil(t, latest[0].MatchPrice)
	assert.Equal(t, "529.99", latest[0].MatchPrice.StringFixed(2))
	assert.Equal(t, day2, latest[0].CheckedAt)
	assert.Equal(t, domain.TierGTIN, latest[0].MatchedBy)
	assert.Equal(t, domain.OriginPageSchema, latest[0].Origin)
	assert.NotEmpty(t, latest[0].ID)

	assert.Equal(t, "market", latest[1].ScopeID)
	assert.Nil(t, latest[1].MatchPrice)

	status := domain.StatusError
	filtered, err := s.LatestResults(ctx, &ResultQuery{Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "t2", filtered[0].TargetID)

	byScope, err := s.LatestResults(ctx, &ResultQuery{ScopeID: ptr("examplestore"), TargetID: ptr("t1")})
	require.NoError(t, err)
	require.Len(t, byScope, 1)

	pruned, err := s.PruneResults(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)

	latest, err = s.LatestResults(ctx, nil)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, day2, latest[0].CheckedAt)
}

func TestSQLiteStore_SaveResults_Empty(t *testing.T) {
	t.Parallel()

	s := newSQLiteStore(t)
	require.NoError(t, s.SaveResults(context.Background(), nil))
}

func TestSQLiteStore_Runs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLiteStore(t)

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	first := &domain.Run{Trigger: "schedule", Targets: 3}
	require.NoError(t, s.CreateRun(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, domain.RunRunning, first.Status)
	assert.Equal(t, start, first.StartedAt)

	got, err := s.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, 3, got.Targets)

	s.now = func() time.Time { return start.Add(time.Minute) }
	first.Status = domain.RunSucceeded
	first.Matched = 2
	first.Changes = 1
	require.NoError(t, s.CompleteRun(ctx, first))
	require.NotNil(t, first.CompletedAt)

	got, err = s.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, start.Add(time.Minute), *got.CompletedAt)
	assert.Equal(t, 2, got.Matched)
	assert.Equal(t, 1, got.Changes)

	second := &domain.Run{Trigger: "manual"}
	require.NoError(t, s.CreateRun(ctx, second))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)

	runs, err = s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = s.GetRun(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.CompleteRun(ctx, &domain.Run{ID: "missing"}), ErrNotFound)
}

func TestSQLiteStore_LatestResults_ExcludeStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLiteStore(t)

	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	require.NoError(t, s.SaveResults(ctx, []domain.ResultRow{
		testRow("t1", "examplestore", domain.StatusMatched, "549.99", day1),
	}))
	require.NoError(t, s.SaveResults(ctx, []domain.ResultRow{
		testRow("t1", "examplestore", domain.StatusError, "", day2),
		testRow("t2", "examplestore", domain.StatusError, "", day2),
	}))

	latest, err := s.LatestResults(ctx, &ResultQuery{TargetID: ptr("t1")})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, domain.StatusError, latest[0].Status)

	baseline, err := s.LatestResults(ctx, &ResultQuery{
		TargetID:      ptr("t1"),
		ExcludeStatus: ptr(domain.StatusError),
	})
	require.NoError(t, err)
	require.Len(t, baseline, 1)
	assert.Equal(t, domain.StatusMatched, baseline[0].Status)
	assert.Equal(t, day1, baseline[0].CheckedAt)
	require.NotNil(t, baseline[0].MatchPrice)
	assert.Equal(t, "549.99", baseline[0].MatchPrice.StringFixed(2))

	onlyErrors, err := s.LatestResults(ctx, &ResultQuery{
		TargetID:      ptr("t2"),
		ExcludeStatus: ptr(domain.StatusError),
	})
	require.NoError(t, err)
	assert.Empty(t, onlyErrors)
}
