package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/competitor-price-matcher/internal/catalog"
	"github.com/donaldgifford/competitor-price-matcher/internal/fetch"
	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	"github.com/donaldgifford/competitor-price-matcher/internal/pacing"
	"github.com/donaldgifford/competitor-price-matcher/internal/search"
	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
	"github.com/donaldgifford/competitor-price-matcher/pkg/match"
	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const (
	defaultMaxPageFetches = 3
	tracerName            = "github.com/donaldgifford/competitor-price-matcher/internal/engine"
)

// TargetResolver resolves one target against a set of scopes.
type TargetResolver interface {
	Resolve(ctx context.Context, target *domain.TargetProduct, scopes []domain.CompetitorScope) (map[string]domain.MatchResult, error)
}

// IsSystemic reports whether err must abort a whole batch rather than fail
// a single tier: missing credentials, an exhausted daily budget, or a
// cancelled context.
func IsSystemic(err error) bool {
	return errors.Is(err, search.ErrMissingAPIKey) ||
		errors.Is(err, catalog.ErrMissingToken) ||
		errors.Is(err, pacing.ErrDailyLimitReached) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Resolver walks query tiers for each scope, gathers offers from search
// results and fetched pages, and lets the matcher pick a winner.
type Resolver struct {
	searcher search.Searcher
	fetcher  fetch.Fetcher
	queries  *match.QueryBuilder
	matcher  *match.Matcher

	maxPageFetches int
	now            func() time.Time
	tracer         trace.Tracer
	log            *slog.Logger
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithQueryBuilder replaces the default all-tier query builder.
func WithQueryBuilder(b *match.QueryBuilder) ResolverOption {
	return func(r *Resolver) {
		r.queries = b
	}
}

// WithMatcher replaces the default matcher.
func WithMatcher(m *match.Matcher) ResolverOption {
	return func(r *Resolver) {
		r.matcher = m
	}
}

// WithMaxPageFetches caps how many result pages are fetched per tier.
// Zero disables page fetching entirely.
func WithMaxPageFetches(n int) ResolverOption {
	return func(r *Resolver) {
		if n >= 0 {
			r.maxPageFetches = n
		}
	}
}

// WithResolverClock overrides the time source for CheckedAt.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithTracer sets the tracer used for resolve and tier spans.
func WithTracer(t trace.Tracer) ResolverOption {
	return func(r *Resolver) {
		r.tracer = t
	}
}

// WithResolverLogger sets a custom logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver creates a Resolver. A nil fetcher limits evidence to search
// results.
func NewResolver(s search.Searcher, f fetch.Fetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		searcher:       s,
		fetcher:        f,
		queries:        match.NewQueryBuilder(),
		matcher:        match.NewMatcher(),
		maxPageFetches: defaultMaxPageFetches,
		now:            time.Now,
		tracer:         otel.Tracer(tracerName),
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces exactly one result per scope, keyed by scope ID. Only
// systemic errors are returned; everything else is folded into results.
func (r *Resolver) Resolve(
	ctx context.Context,
	target *domain.TargetProduct,
	scopes []domain.CompetitorScope,
) (map[string]domain.MatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := r.tracer.Start(ctx, "engine.Resolve", trace.WithAttributes(
		attribute.String("target.id", target.ID),
		attribute.Int("scopes", len(scopes)),
	))
	defer span.End()

	results := make(map[string]domain.MatchResult, len(scopes))
	for i := range scopes {
		scope := &scopes[i]
		res, err := r.resolveScope(ctx, target, scope)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("resolving %s in scope %s: %w", target.ID, scope.ID, err)
		}
		metrics.ResolutionsTotal.WithLabelValues(string(res.Status), string(res.MatchedBy)).Inc()
		results[scope.ID] = res
	}
	return results, nil
}

func (r *Resolver) resolveScope(
	ctx context.Context,
	target *domain.TargetProduct,
	scope *domain.CompetitorScope,
) (domain.MatchResult, error) {
	if !target.HasIdentity() {
		r.log.Debug("target has no identity, skipping", "target", target.ID, "scope", scope.ID)
		return domain.NewUnmatched(target, scope.ID, domain.StatusAmbiguousSkipped, r.now().UTC()), nil
	}

	queries := r.queries.Build(target, scope)

	var (
		failed  int
		lastErr error
	)
	for _, q := range queries {
		offers, err := r.runTier(ctx, scope, q)
		if err != nil {
			if IsSystemic(err) {
				return domain.MatchResult{}, err
			}
			failed++
			lastErr = err
			metrics.TierFailuresTotal.WithLabelValues(string(q.Tier)).Inc()
			r.log.Warn("tier failed",
				"target", target.ID,
				"scope", scope.ID,
				"tier", q.Tier,
				"error", err,
			)
			continue
		}

		r.countRejections(target, scope, offers)
		if winner, ok := r.matcher.Select(target, scope, offers); ok {
			r.log.Debug("matched",
				"target", target.ID,
				"scope", scope.ID,
				"tier", q.Tier,
				"source", winner.SourceDomain,
				"price", winner.Price.StringFixed(2),
			)
			return domain.NewMatched(target, scope.ID, *winner, q.Tier, r.now().UTC()), nil
		}
	}

	if failed > 0 && failed == len(queries) {
		res := domain.NewUnmatched(target, scope.ID, domain.StatusError, r.now().UTC())
		res.Error = lastErr.Error()
		return res, nil
	}
	return domain.NewUnmatched(target, scope.ID, domain.StatusNotFound, r.now().UTC()), nil
}

// runTier issues one query and collects the offers from its results and
// the pages they link to, search offers first. A tier fails when the search
// fails, or when it found nothing and a page fetch failed.
func (r *Resolver) runTier(ctx context.Context, scope *domain.CompetitorScope, q match.Query) ([]domain.Offer, error) {
	ctx, span := r.tracer.Start(ctx, "engine.tier", trace.WithAttributes(
		attribute.String("scope.id", scope.ID),
		attribute.String("tier", string(q.Tier)),
	))
	defer span.End()

	content, err := r.searcher.Search(ctx, q.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("search %s: %w", q.Tier, err)
	}

	offers := extract.SearchExtractor{}.Extract(content)
	countOffers(offers)
	var fetchErr error

	if r.fetcher != nil && r.maxPageFetches > 0 {
		seen := make(map[string]bool)
		for _, link := range extract.ResultLinks(content) {
			if len(seen) >= r.maxPageFetches {
				break
			}
			host := normalize.Domain(link)
			if !scope.Allows(host) {
				continue
			}
			site := normalize.Registrable(host)
			if seen[site] {
				continue
			}
			seen[site] = true

			pageOffers, err := r.fetchPage(ctx, link)
			if err != nil {
				if IsSystemic(err) {
					return nil, err
				}
				fetchErr = err
				r.log.Debug("page fetch failed", "url", link, "error", err)
				continue
			}
			offers = append(offers, pageOffers...)
		}
	}

	span.SetAttributes(attribute.Int("offers", len(offers)))
	if len(offers) == 0 && fetchErr != nil {
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("fetch %s: %w", q.Tier, fetchErr)
	}
	return offers, nil
}

// fetchPage extracts offers from one result page, following the storefront
// product JSON when the page looks like a storefront.
func (r *Resolver) fetchPage(ctx context.Context, link string) ([]domain.Offer, error) {
	page, err := r.fetcher.Fetch(ctx, link, extract.KindHTML)
	if err != nil {
		return nil, err
	}

	platform := extract.DetectPlatform(page.URL, page.Header, page.Body)
	metrics.PlatformDetectedTotal.WithLabelValues(platform.String()).Inc()

	groups := make([][]domain.Offer, 0, 2)
	if platform == extract.PlatformStorefrontJSON {
		if productURL, ok := extract.StorefrontProductURL(page.URL, page.Body); ok {
			product, err := r.fetcher.Fetch(ctx, productURL, extract.KindStorefrontJSON)
			switch {
			case err == nil:
				groups = append(groups, extract.PlatformExtractor{}.Extract(product))
			case IsSystemic(err):
				return nil, err
			default:
				r.log.Debug("storefront product fetch failed", "url", productURL, "error", err)
			}
		}
	}
	groups = append(groups, extract.Run(page, extract.ForPlatform(platform)...))

	offers := extract.Pool(groups...)
	countOffers(offers)
	return offers, nil
}

func countOffers(offers []domain.Offer) {
	for i := range offers {
		metrics.OffersExtractedTotal.WithLabelValues(string(offers[i].Origin)).Inc()
	}
}

func (r *Resolver) countRejections(target *domain.TargetProduct, scope *domain.CompetitorScope, offers []domain.Offer) {
	for i := range offers {
		if d := r.matcher.Gate(target, scope, &offers[i]); !d.Accepted {
			metrics.GateRejectionsTotal.WithLabelValues(string(d.Reason)).Inc()
		}
	}
}
