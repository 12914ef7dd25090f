// Package store defines the datastore abstraction for the price matcher.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running database.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines all data access operations. Results are the persistence
// sink for batch runs: every run appends its rows, readers see the latest
// row per (target, scope), and old rows are pruned by retention.
type Store interface {
	Ping(ctx context.Context) error

	// Targets
	UpsertTarget(ctx context.Context, t *domain.TargetProduct) error
	GetTarget(ctx context.Context, id string) (*domain.TargetProduct, error)
	ListTargets(ctx context.Context, enabledOnly bool) ([]domain.TargetProduct, error)
	DeleteTarget(ctx context.Context, id string) error

	// Results
	SaveResults(ctx context.Context, rows []domain.ResultRow) error
	LatestResults(ctx context.Context, q *ResultQuery) ([]domain.ResultRow, error)
	PruneResults(ctx context.Context, olderThan time.Time) (int64, error)

	// Runs
	CreateRun(ctx context.Context, r *domain.Run) error
	CompleteRun(ctx context.Context, r *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
}
