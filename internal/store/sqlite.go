package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// sqliteTimeLayout is fixed width so text comparison orders timestamps.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	sqliteUpsertTarget = `
		INSERT INTO targets (id, name, brand, gtin, mpn, reference_price, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			gtin = excluded.gtin,
			mpn = excluded.mpn,
			reference_price = excluded.reference_price,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`

	sqliteTargetColumns = `id, name, brand, gtin, mpn, reference_price, enabled, created_at, updated_at`

	sqliteInsertResult = `
		INSERT INTO results (
			id, run_id, target_id, target_name, brand, gtin, mpn, reference_price,
			scope_id, status, matched_by, match_source, match_url, match_title, match_price,
			origin, price_diff, error_text, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteRunColumns = `id, trigger, status, started_at, completed_at, targets, matched, changes, error_text`
)

// SQLiteStore implements Store on a local SQLite file. It backs single-node
// and CLI runs where a Postgres server is not available.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path and
// applies the schema. Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for stmt := range strings.SplitSeq(sqliteSchema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying sqlite schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertTarget inserts or replaces a target by ID.
func (s *SQLiteStore) UpsertTarget(ctx context.Context, t *domain.TargetProduct) error {
	now := sqliteTime(s.now())
	if _, err := s.db.ExecContext(ctx, sqliteUpsertTarget,
		t.ID, t.Name, t.Brand, t.GTIN, t.MPN, nullDecimal(t.ReferencePrice), t.Enabled, now, now,
	); err != nil {
		return fmt.Errorf("upserting target %s: %w", t.ID, err)
	}

	stored, err := s.GetTarget(ctx, t.ID)
	if err != nil {
		return err
	}
	t.CreatedAt, t.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	return nil
}

// GetTarget retrieves a target by ID.
func (s *SQLiteStore) GetTarget(ctx context.Context, id string) (*domain.TargetProduct, error) {
	t := &domain.TargetProduct{}
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteTargetColumns+` FROM targets WHERE id = ?`, id)
	err := sqliteScanTarget(row, t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting target %s: %w", id, err)
	}
	return t, nil
}

// ListTargets returns all targets, optionally only enabled ones.
func (s *SQLiteStore) ListTargets(ctx context.Context, enabledOnly bool) ([]domain.TargetProduct, error) {
	query := `SELECT ` + sqliteTargetColumns + ` FROM targets`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying targets: %w", err)
	}
	defer rows.Close()

	var targets []domain.TargetProduct
	for rows.Next() {
		var t domain.TargetProduct
		if err := sqliteScanTarget(rows, &t); err != nil {
			return nil, fmt.Errorf("scanning target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// DeleteTarget removes a target.
func (s *SQLiteStore) DeleteTarget(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting target %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveResults appends result rows in a single transaction.
func (s *SQLiteStore) SaveResults(ctx context.Context, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, sqliteInsertResult)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		r := &rows[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.RunID, r.TargetID, r.TargetName, r.Brand, r.GTIN, r.MPN, nullDecimal(r.ReferencePrice),
			r.ScopeID, string(r.Status), string(r.MatchedBy), r.MatchSource, r.MatchURL, r.MatchTitle,
			nullDecimal(r.MatchPrice), string(r.Origin), nullDecimal(r.PriceDiff), r.ErrorText,
			sqliteTime(r.CheckedAt),
		); err != nil {
			return fmt.Errorf("inserting result %d (%s/%s): %w", i, r.TargetID, r.ScopeID, err)
		}
	}

	return tx.Commit()
}

// LatestResults returns the newest row per (target, scope) matching q.
func (s *SQLiteStore) LatestResults(ctx context.Context, q *ResultQuery) ([]domain.ResultRow, error) {
	if q == nil {
		q = &ResultQuery{}
	}
	query, args := q.toSQL(questionPlaceholder)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []domain.ResultRow
	for rows.Next() {
		var r domain.ResultRow
		if err := sqliteScanResult(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneResults deletes rows checked before olderThan.
func (s *SQLiteStore) PruneResults(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE checked_at < ?`, sqliteTime(olderThan))
	if err != nil {
		return 0, fmt.Errorf("pruning results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning results: %w", err)
	}
	return n, nil
}

// CreateRun records the start of a batch run, filling in ID and StartedAt.
func (s *SQLiteStore) CreateRun(ctx context.Context, r *domain.Run) error {
	if r.Status == "" {
		r.Status = domain.RunRunning
	}
	r.ID = uuid.NewString()
	r.StartedAt = s.now().UTC()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, trigger, status, started_at, targets) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Trigger, r.Status, sqliteTime(r.StartedAt), r.Targets,
	); err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

// CompleteRun stores the final status and counters of a run.
func (s *SQLiteStore) CompleteRun(ctx context.Context, r *domain.Run) error {
	completed := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, completed_at = ?, targets = ?, matched = ?, changes = ?, error_text = ?
		WHERE id = ?`,
		r.Status, sqliteTime(completed), r.Targets, r.Matched, r.Changes, r.ErrorText, r.ID,
	)
	if err != nil {
		return fmt.Errorf("completing run %s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", r.ID, ErrNotFound)
	}
	r.CompletedAt = &completed
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	r := &domain.Run{}
	err := sqliteScanRun(s.db.QueryRowContext(ctx, `SELECT `+sqliteRunColumns+` FROM runs WHERE id = ?`, id), r)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := sqliteScanRun(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// textTime scans the fixed-width text timestamps written by sqliteTime.
type textTime struct {
	dst  *time.Time
	null **time.Time
}

func (tt textTime) Scan(v any) error {
	var s string
	switch v := v.(type) {
	case nil:
		if tt.null != nil {
			*tt.null = nil
			return nil
		}
		return errors.New("unexpected NULL timestamp")
	case time.Time:
		return tt.set(v.UTC())
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", v)
	}

	parsed, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return tt.set(parsed)
}

func (tt textTime) set(t time.Time) error {
	if tt.null != nil {
		*tt.null = &t
		return nil
	}
	*tt.dst = t
	return nil
}

func sqliteScanTarget(row scannable, t *domain.TargetProduct) error {
	var ref decimal.NullDecimal
	if err := row.Scan(
		&t.ID, &t.Name, &t.Brand, &t.GTIN, &t.MPN, &ref, &t.Enabled,
		textTime{dst: &t.CreatedAt}, textTime{dst: &t.UpdatedAt},
	); err != nil {
		return err
	}
	t.ReferencePrice = decimalPtr(ref)
	return nil
}

func sqliteScanResult(row scannable, r *domain.ResultRow) error {
	var (
		ref, price, diff          decimal.NullDecimal
		status, matchedBy, origin string
	)
	if err := row.Scan(
		&r.ID, &r.RunID, &r.TargetID, &r.TargetName, &r.Brand, &r.GTIN, &r.MPN, &ref,
		&r.ScopeID, &status, &matchedBy, &r.MatchSource, &r.MatchURL, &r.MatchTitle, &price,
		&origin, &diff, &r.ErrorText, textTime{dst: &r.CheckedAt},
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

func sqliteScanRun(row scannable, r *domain.Run) error {
	return row.Scan(
		&r.ID, &r.Trigger, &r.Status, textTime{dst: &r.StartedAt}, textTime{null: &r.CompletedAt},
		&r.Targets, &r.Matched, &r.Changes, &r.ErrorText,
	)
}
