package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestTargetProduct_HasIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target domain.TargetProduct
		want   bool
	}{
		{name: "gtin only", target: domain.TargetProduct{GTIN: "753759315389"}, want: true},
		{name: "mpn only", target: domain.TargetProduct{MPN: "010-02890-00"}, want: true},
		{name: "name only", target: domain.TargetProduct{Name: "Edge 1050"}, want: true},
		{name: "brand only", target: domain.TargetProduct{Brand: "Garmin"}, want: false},
		{name: "empty", target: domain.TargetProduct{}, want: false},
		{name: "whitespace name", target: domain.TargetProduct{Name: "   "}, want: false},
		{name: "whitespace everywhere", target: domain.TargetProduct{GTIN: " ", MPN: "\t", Name: "\n "}, want: false},
		{name: "padded name", target: domain.TargetProduct{Name: "  Edge 1050 "}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.target.HasIdentity())
		})
	}
}

func TestOrigin_Rank(t *testing.T) {
	t.Parallel()

	assert.Greater(t, domain.OriginPlatformAPI.Rank(), domain.OriginPageSchema.Rank())
	assert.Greater(t, domain.OriginPageSchema.Rank(), domain.OriginSearchStructured.Rank())
	assert.Greater(t, domain.OriginSearchStructured.Rank(), domain.OriginRegexFallback.Rank())
	assert.Zero(t, domain.Origin("bogus").Rank())
}

func TestCompetitorScope_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scope   domain.CompetitorScope
		wantErr error
	}{
		{
			name:  "specific with one domain",
			scope: domain.CompetitorScope{ID: "ex", Mode: domain.ScopeSpecific, Domains: []string{"examplestore.com"}},
		},
		{
			name:  "wildcard with deny set",
			scope: domain.CompetitorScope{ID: "market", Mode: domain.ScopeWildcard, Deny: []string{"ebay.com"}},
		},
		{
			name:    "missing id",
			scope:   domain.CompetitorScope{Mode: domain.ScopeWildcard},
			wantErr: domain.ErrScopeID,
		},
		{
			name:    "specific with two domains",
			scope:   domain.CompetitorScope{ID: "x", Mode: domain.ScopeSpecific, Domains: []string{"a.com", "b.com"}},
			wantErr: domain.ErrScopeSpecific,
		},
		{
			name:    "wildcard with allowed domains",
			scope:   domain.CompetitorScope{ID: "x", Mode: domain.ScopeWildcard, Domains: []string{"a.com"}},
			wantErr: domain.ErrScopeWildcard,
		},
		{
			name:    "unknown mode",
			scope:   domain.CompetitorScope{ID: "x", Mode: "both"},
			wantErr: domain.ErrScopeMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.scope.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewMatched_PriceDiff(t *testing.T) {
	t.Parallel()

	target := &domain.TargetProduct{ID: "t1", Name: "Edge 1050", ReferencePrice: dec("599.99")}
	offer := domain.NewOffer("Garmin Edge 1050", "examplestore.com", decimal.RequireFromString("549.99"),
		"", domain.OriginSearchStructured, "https://examplestore.com/p/1")

	r := domain.NewMatched(target, "ex", offer, domain.TierBrandMPN, time.Now())

	assert.Equal(t, domain.StatusMatched, r.Status)
	assert.Equal(t, domain.TierBrandMPN, r.MatchedBy)
	require.NotNil(t, r.PriceDiff)
	assert.Equal(t, "-50.00", r.PriceDiff.StringFixed(2))
	assert.Equal(t, "USD", r.Offer.Currency)
}

func TestNewMatched_NoReference(t *testing.T) {
	t.Parallel()

	target := &domain.TargetProduct{ID: "t1", Name: "Edge 1050"}
	offer := domain.NewOffer("Edge", "a.com", decimal.NewFromInt(10), "CAD", domain.OriginPageSchema, "u")

	r := domain.NewMatched(target, "s", offer, domain.TierGTIN, time.Now())
	assert.Nil(t, r.PriceDiff)
	assert.Equal(t, "CAD", r.Offer.Currency)
}

func TestResultRow_ChangedFrom(t *testing.T) {
	t.Parallel()

	matched := domain.ResultRow{Status: domain.StatusMatched, MatchPrice: dec("100")}

	tests := []struct {
		name string
		cur  domain.ResultRow
		prev *domain.ResultRow
		want bool
	}{
		{name: "first match counts", cur: matched, prev: nil, want: true},
		{name: "first not found does not", cur: domain.ResultRow{Status: domain.StatusNotFound}, want: false},
		{name: "same price", cur: matched, prev: &domain.ResultRow{Status: domain.StatusMatched, MatchPrice: dec("100.00")}, want: false},
		{name: "price moved", cur: matched, prev: &domain.ResultRow{Status: domain.StatusMatched, MatchPrice: dec("95")}, want: true},
		{name: "status flipped", cur: domain.ResultRow{Status: domain.StatusNotFound}, prev: &matched, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cur.ChangedFrom(tt.prev))
		})
	}
}

func TestCompetitorScope_Allows(t *testing.T) {
	t.Parallel()

	specific := domain.CompetitorScope{ID: "ex", Mode: domain.ScopeSpecific, Domains: []string{"examplestore.com"}}
	wildcard := domain.CompetitorScope{ID: "mk", Mode: domain.ScopeWildcard, Deny: []string{"ebay.com", "amazon.com"}}

	tests := []struct {
		name  string
		scope domain.CompetitorScope
		host  string
		want  bool
	}{
		{name: "specific exact", scope: specific, host: "examplestore.com", want: true},
		{name: "specific www", scope: specific, host: "www.examplestore.com", want: true},
		{name: "specific subdomain", scope: specific, host: "shop.examplestore.com", want: true},
		{name: "specific other", scope: specific, host: "otherstore.com", want: false},
		{name: "specific lookalike", scope: specific, host: "notexamplestore.com", want: false},
		{name: "wildcard open", scope: wildcard, host: "bikeshop.com", want: true},
		{name: "wildcard denied", scope: wildcard, host: "www.ebay.com", want: false},
		{name: "wildcard denied subdomain", scope: wildcard, host: "smile.amazon.com", want: false},
		{name: "empty host", scope: wildcard, host: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.scope.Allows(tt.host))
		})
	}
}
