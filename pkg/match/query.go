// Package match builds tiered search queries for a target product and
// gates and ranks the offers those queries turn up.
package match

import (
	"strings"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// AllTiers lists the query tiers from most to least specific.
var AllTiers = []domain.Tier{domain.TierGTIN, domain.TierBrandMPN, domain.TierMPN, domain.TierBrandName}

// Query is one search query and the tier it belongs to.
type Query struct {
	Tier domain.Tier
	Text string
}

// QueryBuilder produces the ordered query list for a target.
type QueryBuilder struct {
	tiers map[domain.Tier]bool
	stop  map[string]bool
}

// QueryOption configures a QueryBuilder.
type QueryOption func(*QueryBuilder)

// WithTiers restricts the builder to the given tiers. Order is always most
// to least specific regardless of argument order.
func WithTiers(tiers ...domain.Tier) QueryOption {
	return func(b *QueryBuilder) {
		if len(tiers) == 0 {
			return
		}
		b.tiers = make(map[domain.Tier]bool, len(tiers))
		for _, t := range tiers {
			b.tiers[t] = true
		}
	}
}

// WithQueryStopwords replaces the filler words removed from names. A nil
// slice keeps the defaults.
func WithQueryStopwords(words []string) QueryOption {
	return func(b *QueryBuilder) {
		if words == nil {
			return
		}
		b.stop = stopset(words)
	}
}

// NewQueryBuilder creates a QueryBuilder with every tier enabled.
func NewQueryBuilder(opts ...QueryOption) *QueryBuilder {
	b := &QueryBuilder{stop: stopset(DefaultStopwords)}
	WithTiers(AllTiers...)(b)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewQueryBuilder()

// BuildQueries builds the queries for target within scope using every tier.
func BuildQueries(target *domain.TargetProduct, scope *domain.CompetitorScope) []Query {
	return defaultBuilder.Build(target, scope)
}

// Build returns the queries for target within scope, most specific first.
func (b *QueryBuilder) Build(target *domain.TargetProduct, scope *domain.CompetitorScope) []Query {
	gtin := strings.TrimSpace(target.GTIN)
	mpn := strings.TrimSpace(target.MPN)
	brand := strings.TrimSpace(target.Brand)
	name := strings.TrimSpace(target.Name)
	site := SiteClause(scope)

	var qs []Query
	add := func(tier domain.Tier, text string) {
		if site != "" {
			text += " " + site
		}
		qs = append(qs, Query{Tier: tier, Text: text})
	}

	if b.tiers[domain.TierGTIN] && gtin != "" {
		add(domain.TierGTIN, `"`+gtin+`"`)
	}
	if b.tiers[domain.TierBrandMPN] && brand != "" && mpn != "" {
		for _, v := range MPNVariants(mpn) {
			add(domain.TierBrandMPN, brand+` "`+v+`"`)
		}
	}
	if b.tiers[domain.TierMPN] && mpn != "" {
		for _, v := range MPNVariants(mpn) {
			add(domain.TierMPN, `"`+v+`"`)
		}
	}
	if b.tiers[domain.TierBrandName] && brand != "" && name != "" {
		if cleaned := cleanName(name, brand, b.stop); cleaned != "" {
			add(domain.TierBrandName, brand+" "+cleaned)
		}
	}
	return qs
}

// MPNVariants returns the distinct spellings of an MPN worth searching:
// as given, without spaces, without hyphens, and fully normalized.
func MPNVariants(mpn string) []string {
	mpn = strings.TrimSpace(mpn)
	candidates := []string{
		mpn,
		strings.ReplaceAll(mpn, " ", ""),
		strings.ReplaceAll(mpn, "-", ""),
		normalize.NormalizeIdentifier(mpn),
	}
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SiteClause renders the scope as a search restriction: an OR of site:
// terms for allowed domains, or -site: exclusions for a wildcard deny set.
func SiteClause(scope *domain.CompetitorScope) string {
	if scope == nil {
		return ""
	}
	if scope.IsWildcard() {
		parts := make([]string, 0, len(scope.Deny))
		for _, d := range scope.Deny {
			if d = strings.TrimSpace(d); d != "" {
				parts = append(parts, "-site:"+d)
			}
		}
		return strings.Join(parts, " ")
	}
	parts := make([]string, 0, len(scope.Domains))
	for _, d := range scope.Domains {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, "site:"+d)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
