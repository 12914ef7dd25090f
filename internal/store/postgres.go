package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if !strings.Contains(connString, "pool_max_conns") {
		cfg.MaxConns = defaultPoolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// UpsertTarget inserts or replaces a target by ID.
func (s *PostgresStore) UpsertTarget(ctx context.Context, t *domain.TargetProduct) error {
	args := pgx.NamedArgs{
		"id":              t.ID,
		"name":            t.Name,
		"brand":           t.Brand,
		"gtin":            t.GTIN,
		"mpn":             t.MPN,
		"reference_price": nullDecimal(t.ReferencePrice),
		"enabled":         t.Enabled,
	}

	if err := s.pool.QueryRow(ctx, queryUpsertTarget, args).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("upserting target %s: %w", t.ID, err)
	}
	return nil
}

// GetTarget retrieves a target by ID.
func (s *PostgresStore) GetTarget(ctx context.Context, id string) (*domain.TargetProduct, error) {
	t := &domain.TargetProduct{}
	err := scanTarget(s.pool.QueryRow(ctx, queryGetTarget, id), t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting target %s: %w", id, err)
	}
	return t, nil
}

// ListTargets returns all targets, optionally only enabled ones.
func (s *PostgresStore) ListTargets(ctx context.Context, enabledOnly bool) ([]domain.TargetProduct, error) {
	query := queryListTargets
	if enabledOnly {
		query = queryListEnabledTargets
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying targets: %w", err)
	}
	defer rows.Close()

	var targets []domain.TargetProduct
	for rows.Next() {
		var t domain.TargetProduct
		if err := scanTarget(rows, &t); err != nil {
			return nil, fmt.Errorf("scanning target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// DeleteTarget removes a target. Stored results for it are kept until
// retention prunes them.
func (s *PostgresStore) DeleteTarget(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteTarget, id)
	if err != nil {
		return fmt.Errorf("deleting target %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveResults appends result rows in a single transaction.
func (s *PostgresStore) SaveResults(ctx context.Context, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range rows {
		batch.Queue(queryInsertResult, resultArgs(&rows[i]))
	}

	br := tx.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("inserting result %d (%s/%s): %w", i, rows[i].TargetID, rows[i].ScopeID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing result batch: %w", err)
	}

	return tx.Commit(ctx)
}

// LatestResults returns the newest row per (target, scope) matching q.
func (s *PostgresStore) LatestResults(ctx context.Context, q *ResultQuery) ([]domain.ResultRow, error) {
	if q == nil {
		q = &ResultQuery{}
	}
	sql, args := q.ToSQL()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []domain.ResultRow
	for rows.Next() {
		var r domain.ResultRow
		if err := scanResult(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneResults deletes rows checked before olderThan and returns how many
// were removed.
func (s *PostgresStore) PruneResults(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryPruneResults, olderThan)
	if err != nil {
		return 0, fmt.Errorf("pruning results: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateRun records the start of a batch run, filling in ID and StartedAt.
func (s *PostgresStore) CreateRun(ctx context.Context, r *domain.Run) error {
	if r.Status == "" {
		r.Status = domain.RunRunning
	}
	if err := s.pool.QueryRow(ctx, queryCreateRun, r.Trigger, r.Status, r.Targets).Scan(&r.ID, &r.StartedAt); err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

// CompleteRun stores the final status and counters of a run.
func (s *PostgresStore) CompleteRun(ctx context.Context, r *domain.Run) error {
	var completed time.Time
	err := s.pool.QueryRow(ctx, queryCompleteRun,
		r.ID, r.Status, r.Targets, r.Matched, r.Changes, r.ErrorText,
	).Scan(&completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("run %s: %w", r.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("completing run %s: %w", r.ID, err)
	}
	r.CompletedAt = &completed
	return nil
}

// GetRun retrieves a run by ID.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	r := &domain.Run{}
	err := scanRun(s.pool.QueryRow(ctx, queryGetRun, id), r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.pool.Query(ctx, queryListRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := scanRun(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func resultArgs(r *domain.ResultRow) pgx.NamedArgs {
	return pgx.NamedArgs{
		"run_id":          r.RunID,
		"target_id":       r.TargetID,
		"target_name":     r.TargetName,
		"brand":           r.Brand,
		"gtin":            r.GTIN,
		"mpn":             r.MPN,
		"reference_price": nullDecimal(r.ReferencePrice),
		"scope_id":        r.ScopeID,
		"status":          string(r.Status),
		"matched_by":      string(r.MatchedBy),
		"match_source":    r.MatchSource,
		"match_url":       r.MatchURL,
		"match_title":     r.MatchTitle,
		"match_price":     nullDecimal(r.MatchPrice),
		"origin":          string(r.Origin),
		"price_diff":      nullDecimal(r.PriceDiff),
		"error_text":      r.ErrorText,
		"checked_at":      r.CheckedAt,
	}
}

// scannable abstracts pgx.Row, pgx.Rows and *sql.Row(s) for reuse.
type scannable interface {
	Scan(dest ...any) error
}

func scanTarget(row scannable, t *domain.TargetProduct) error {
	var ref decimal.NullDecimal
	if err := row.Scan(
		&t.ID, &t.Name, &t.Brand, &t.GTIN, &t.MPN, &ref,
		&t.Enabled, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return err
	}
	t.ReferencePrice = decimalPtr(ref)
	return nil
}

func scanResult(row scannable, r *domain.ResultRow) error {
	var (
		ref, price, diff          decimal.NullDecimal
		status, matchedBy, origin string
	)
	if err := row.Scan(
		&r.ID, &r.RunID, &r.TargetID, &r.TargetName, &r.Brand, &r.GTIN, &r.MPN, &ref,
		&r.ScopeID, &status, &matchedBy, &r.MatchSource, &r.MatchURL, &r.MatchTitle, &price,
		&origin, &diff, &r.ErrorText, &r.CheckedAt,
	); err != nil {
		return err
	}
	r.Status = domain.MatchStatus(status)
	r.MatchedBy = domain.Tier(matchedBy)
	r.Origin = domain.Origin(origin)
	r.ReferencePrice = decimalPtr(ref)
	r.MatchPrice = decimalPtr(price)
	r.PriceDiff = decimalPtr(diff)
	return nil
}

func scanRun(row scannable, r *domain.Run) error {
	return row.Scan(
		&r.ID, &r.Trigger, &r.Status, &r.StartedAt, &r.CompletedAt,
		&r.Targets, &r.Matched, &r.Changes, &r.ErrorText,
	)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
