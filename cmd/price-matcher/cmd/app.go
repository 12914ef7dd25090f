package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/donaldgifford/competitor-price-matcher/internal/catalog"
	"github.com/donaldgifford/competitor-price-matcher/internal/config"
	"github.com/donaldgifford/competitor-price-matcher/internal/engine"
	"github.com/donaldgifford/competitor-price-matcher/internal/fetch"
	"github.com/donaldgifford/competitor-price-matcher/internal/notify"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/internal/search"
	"github.com/donaldgifford/competitor-price-matcher/internal/sheet"
	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	"github.com/donaldgifford/competitor-price-matcher/pkg/logger"
	"github.com/donaldgifford/competitor-price-matcher/pkg/match"
)

const tracerName = "github.com/donaldgifford/competitor-price-matcher"

// app holds the components shared by the server and the one-shot commands.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  store.Store
	budget *pacing.Budget
	engine *engine.Engine
	close  func()
}

// loadConfig reads the config file and builds the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}

// openStore connects the configured results store. Opening applies the
// schema for SQLite; Postgres schema changes go through migrate.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.Store.Postgres.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return pg, pg.Close, nil
	default:
		lite, err := store.NewSQLiteStore(ctx, cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return lite, func() { _ = lite.Close() }, nil
	}
}

// newMatching builds the query builder and matcher from the matching
// section of the config.
func newMatching(m *config.MatchingConfig) (*match.QueryBuilder, *match.Matcher) {
	queries := match.NewQueryBuilder(
		match.WithTiers(m.DomainTiers()...),
		match.WithQueryStopwords(m.Stopwords),
	)
	matcher := match.NewMatcher(
		match.WithFloor(decimal.NewFromFloat(m.PriceFloor)),
		match.WithMinKeywords(m.MinKeywords),
		match.WithStopwords(m.Stopwords),
	)
	return queries, matcher
}

// newApp wires store, outbound clients, resolver and engine from cfg.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	budget := pacing.NewBudget(cfg.Pacing.RequestsPerMinute, cfg.Pacing.DailyLimit,
		pacing.WithBurst(cfg.Pacing.Burst),
		pacing.WithCostThreshold(cfg.Pacing.CostThreshold, cfg.Pacing.CostPause),
	)

	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}

	searcher := search.NewClient(cfg.Search.APIKey,
		search.WithEndpoint(cfg.Search.Endpoint),
		search.WithEngine(cfg.Search.Engine),
		search.WithLocale(cfg.Search.Country, cfg.Search.Language),
		search.WithNum(cfg.Search.Num),
		search.WithMaxRetries(cfg.Search.MaxRetries),
		search.WithHTTPClient(httpClient),
		search.WithBudget(budget),
	)

	fetcher := fetch.NewClient(
		fetch.WithHTTPClient(httpClient),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithMaxRetries(cfg.Fetch.MaxRetries),
		fetch.WithMaxBodyBytes(cfg.Fetch.MaxBodyBytes),
		fetch.WithBudget(budget),
	)

	queries, matcher := newMatching(&cfg.Matching)
	resolver := engine.NewResolver(searcher, fetcher,
		engine.WithQueryBuilder(queries),
		engine.WithMatcher(matcher),
		engine.WithMaxPageFetches(cfg.Fetch.MaxPageFetches),
		engine.WithTracer(otel.Tracer(tracerName)),
		engine.WithResolverLogger(log.With("component", "resolver")),
	)

	opts := []engine.EngineOption{
		engine.WithLogger(log.With("component", "engine")),
		engine.WithConcurrency(cfg.Schedule.Concurrency),
		engine.WithRetention(cfg.Schedule.Retention),
		engine.WithReportLink(cfg.Notifications.ReportLink),
	}
	if src := targetSource(cfg, budget, log); src != nil {
		opts = append(opts, engine.WithTargetSource(src))
	}
	if cfg.Output.SheetPath != "" {
		opts = append(opts, engine.WithResultSink(sheet.FileSink{Path: cfg.Output.SheetPath}))
	}

	eng := engine.NewEngine(st, resolver, buildNotifier(&cfg.Notifications, log), cfg.Scopes, opts...)

	return &app{
		cfg:    cfg,
		log:    log,
		store:  st,
		budget: budget,
		engine: eng,
		close:  closeStore,
	}, nil
}

// targetSource returns the configured batch target source, or nil for the
// store's own targets table.
func targetSource(cfg *config.Config, budget *pacing.Budget, log *slog.Logger) engine.TargetSource {
	switch cfg.Targets.Source {
	case config.SourceSheet:
		return sheet.FileSource{Path: cfg.Targets.SheetPath}
	case config.SourceCatalog:
		return catalog.NewClient(cfg.Catalog.Shop, cfg.Catalog.Token,
			catalog.WithEndpoint(cfg.Catalog.Endpoint),
			catalog.WithPageSize(cfg.Catalog.PageSize),
			catalog.WithMaxPages(cfg.Catalog.MaxPages),
			catalog.WithBudget(budget),
			catalog.WithLogger(log.With("component", "catalog")),
		)
	default:
		return nil
	}
}

// buildNotifier fans out to every enabled webhook, or logs and discards
// when none is enabled.
func buildNotifier(cfg *config.NotificationsConfig, log *slog.Logger) notify.Notifier {
	var backends notify.MultiNotifier
	if cfg.Discord.Enabled {
		backends = append(backends, notify.NewDiscordNotifier(cfg.Discord.WebhookURL))
	}
	if cfg.Slack.Enabled {
		backends = append(backends, notify.NewSlackNotifier(cfg.Slack.WebhookURL))
	}

	switch len(backends) {
	case 0:
		return notify.NewNoOpNotifier(log)
	case 1:
		return backends[0]
	default:
		return backends
	}
}
