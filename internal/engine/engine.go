package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	"github.com/donaldgifford/competitor-price-matcher/internal/notify"
	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const (
	defaultConcurrency = 1
	defaultRetention   = 30 * 24 * time.Hour
	notifyTimeout      = 15 * time.Second
)

// TargetSource supplies the targets of a batch run.
type TargetSource interface {
	ListTargets(ctx context.Context) ([]domain.TargetProduct, error)
}

// TargetSourceFunc adapts a function to TargetSource.
type TargetSourceFunc func(ctx context.Context) ([]domain.TargetProduct, error)

// ListTargets implements TargetSource.
func (f TargetSourceFunc) ListTargets(ctx context.Context) ([]domain.TargetProduct, error) {
	return f(ctx)
}

// ResultSink receives the rows of each batch run.
type ResultSink interface {
	SaveResults(ctx context.Context, rows []domain.ResultRow) error
}

// Engine runs batches: load targets, resolve them, persist and compare the
// results, and announce changes.
type Engine struct {
	store    store.Store
	resolver TargetResolver
	notifier notify.Notifier
	scopes   []domain.CompetitorScope
	source   TargetSource
	sinks    []ResultSink
	log      *slog.Logger

	concurrency int
	retention   time.Duration
	link        string
	now         func() time.Time
}

// NewEngine creates a new Engine with injected dependencies. Targets come
// from the store's enabled targets unless WithTargetSource says otherwise.
func NewEngine(
	s store.Store,
	r TargetResolver,
	n notify.Notifier,
	scopes []domain.CompetitorScope,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:       s,
		resolver:    r,
		notifier:    n,
		scopes:      scopes,
		log:         slog.Default(),
		concurrency: defaultConcurrency,
		retention:   defaultRetention,
		now:         time.Now,
	}
	eng.source = TargetSourceFunc(func(ctx context.Context) ([]domain.TargetProduct, error) {
		return s.ListTargets(ctx, true)
	})
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTargetSource replaces the store as the source of batch targets.
func WithTargetSource(src TargetSource) EngineOption {
	return func(e *Engine) {
		e.source = src
	}
}

// WithResultSink adds a sink that receives every run's rows after the store.
func WithResultSink(sink ResultSink) EngineOption {
	return func(e *Engine) {
		e.sinks = append(e.sinks, sink)
	}
}

// WithConcurrency sets how many targets are resolved at once.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithRetention sets how long result rows are kept.
func WithRetention(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.retention = d
		}
	}
}

// WithReportLink sets the link included in change notifications.
func WithReportLink(link string) EngineOption {
	return func(e *Engine) {
		e.link = link
	}
}

// WithNowFunc overrides the clock used for retention.
func WithNowFunc(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// Scopes returns the configured competitor scopes.
func (eng *Engine) Scopes() []domain.CompetitorScope {
	return eng.scopes
}

// Resolve resolves a single target against scopes, falling back to the
// configured scopes when none are given.
func (eng *Engine) Resolve(
	ctx context.Context,
	target *domain.TargetProduct,
	scopes []domain.CompetitorScope,
) (map[string]domain.MatchResult, error) {
	if len(scopes) == 0 {
		scopes = eng.scopes
	}
	return eng.resolver.Resolve(ctx, target, scopes)
}

// RunBatch executes one batch run and records it. Per-target outcomes never
// fail the run; a systemic error aborts it after saving what was resolved.
func (eng *Engine) RunBatch(ctx context.Context, trigger string) (*domain.Run, error) {
	start := time.Now()
	defer func() {
		metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	targets, err := eng.source.ListTargets(ctx)
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues(domain.RunFailed).Inc()
		return nil, fmt.Errorf("listing targets: %w", err)
	}

	run := &domain.Run{Trigger: trigger, Targets: len(targets)}
	if err := eng.store.CreateRun(ctx, run); err != nil {
		metrics.BatchRunsTotal.WithLabelValues(domain.RunFailed).Inc()
		return nil, fmt.Errorf("creating run: %w", err)
	}
	eng.log.Info("batch run started", "run", run.ID, "trigger", trigger, "targets", len(targets))

	rows, runErr := eng.resolveAll(ctx, run.ID, targets)

	// Bookkeeping must survive a cancelled batch.
	bctx := context.WithoutCancel(ctx)

	changes := eng.countChanges(bctx, rows)
	if err := eng.saveResults(bctx, rows); err != nil {
		runErr = errors.Join(runErr, err)
	}

	for i := range rows {
		if rows[i].Status == domain.StatusMatched {
			run.Matched++
		}
	}
	run.Changes = changes
	run.Status = domain.RunSucceeded
	if runErr != nil {
		run.Status = domain.RunFailed
		run.ErrorText = runErr.Error()
	}

	if runErr == nil && changes > 0 {
		eng.notifyChanges(bctx, run)
	}

	if err := eng.store.CompleteRun(bctx, run); err != nil {
		eng.log.Error("completing run failed", "run", run.ID, "error", err)
	}

	metrics.BatchRunsTotal.WithLabelValues(run.Status).Inc()
	metrics.BatchChanges.Set(float64(changes))
	eng.log.Info("batch run finished",
		"run", run.ID,
		"status", run.Status,
		"targets", run.Targets,
		"matched", run.Matched,
		"changes", run.Changes,
		"duration", time.Since(start),
	)

	return run, runErr
}

// resolveAll resolves every target with a bounded worker pool and returns
// rows in target order, then scope order. The first systemic error stops
// the remaining work.
func (eng *Engine) resolveAll(
	ctx context.Context,
	runID string,
	targets []domain.TargetProduct,
) ([]domain.ResultRow, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	perTarget := make([][]domain.ResultRow, len(targets))
	indexCh := make(chan int)
	var wg sync.WaitGroup

	workers := min(eng.concurrency, max(len(targets), 1))
	for range workers {
		wg.Go(func() {
			for idx := range indexCh {
				t := &targets[idx]
				results, err := eng.resolver.Resolve(ctx, t, eng.scopes)
				if err != nil {
					cancel(err)
					return
				}
				perTarget[idx] = eng.rowsFor(runID, t, results)
			}
		})
	}

Loop:
	for i := range targets {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	var rows []domain.ResultRow
	for _, r := range perTarget {
		rows = append(rows, r...)
	}

	if err := context.Cause(ctx); err != nil {
		return rows, fmt.Errorf("batch aborted: %w", err)
	}
	return rows, nil
}

func (eng *Engine) rowsFor(runID string, t *domain.TargetProduct, results map[string]domain.MatchResult) []domain.ResultRow {
	rows := make([]domain.ResultRow, 0, len(eng.scopes))
	for i := range eng.scopes {
		res, ok := results[eng.scopes[i].ID]
		if !ok {
			continue
		}
		rows = append(rows, domain.NewResultRow(runID, t, &res))
	}
	return rows
}

// countChanges compares rows against the latest stored non-ERROR row per
// (target, scope). ERROR rows are neither compared nor used as a baseline.
// Targets whose history cannot be read are skipped.
func (eng *Engine) countChanges(ctx context.Context, rows []domain.ResultRow) int {
	history := make(map[string]map[string]*domain.ResultRow)
	changes := 0
	excluded := domain.StatusError

	for i := range rows {
		row := &rows[i]
		if row.Status == domain.StatusError {
			continue
		}

		prev, ok := history[row.TargetID]
		if !ok {
			latest, err := eng.store.LatestResults(ctx, &store.ResultQuery{
				TargetID:      &row.TargetID,
				ExcludeStatus: &excluded,
			})
			if err != nil {
				eng.log.Warn("reading previous results failed", "target", row.TargetID, "error", err)
				history[row.TargetID] = nil
				continue
			}
			prev = make(map[string]*domain.ResultRow, len(latest))
			for j := range latest {
				prev[latest[j].ScopeID] = &latest[j]
			}
			history[row.TargetID] = prev
		}
		if prev == nil {
			continue
		}

		if row.ChangedFrom(prev[row.ScopeID]) {
			changes++
		}
	}
	return changes
}

func (eng *Engine) saveResults(ctx context.Context, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}
	var errs []error
	if err := eng.store.SaveResults(ctx, rows); err != nil {
		errs = append(errs, fmt.Errorf("saving results: %w", err))
	}
	for _, sink := range eng.sinks {
		if err := sink.SaveResults(ctx, rows); err != nil {
			errs = append(errs, fmt.Errorf("writing result sink: %w", err))
		}
	}
	return errors.Join(errs...)
}

// notifyChanges is fire-and-forget: failures are logged and counted.
func (eng *Engine) notifyChanges(ctx context.Context, run *domain.Run) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	summary := domain.ChangeSummary{
		RunID:   run.ID,
		Changes: run.Changes,
		Matched: run.Matched,
		Targets: run.Targets,
		Link:    eng.link,
	}
	if err := eng.notifier.NotifyChanges(ctx, summary); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		eng.log.Error("change notification failed", "run", run.ID, "error", err)
		return
	}
	metrics.NotificationsSentTotal.Inc()
}

// Prune removes result rows older than the retention window.
func (eng *Engine) Prune(ctx context.Context) (int64, error) {
	cutoff := eng.now().Add(-eng.retention)
	n, err := eng.store.PruneResults(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning results: %w", err)
	}
	metrics.ResultsPrunedTotal.Add(float64(n))
	eng.log.Info("pruned results", "rows", n, "cutoff", cutoff)
	return n, nil
}
