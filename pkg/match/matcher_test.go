package match_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
	"github.com/donaldgifford/competitor-price-matcher/pkg/match"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ref(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

func edge1050() *domain.TargetProduct {
	return &domain.TargetProduct{
		ID:             "edge-1050",
		Name:           "Edge 1050",
		Brand:          "Garmin",
		MPN:            "010-02890-00",
		ReferencePrice: ref("599.99"),
	}
}

func TestMatcher_Gate(t *testing.T) {
	t.Parallel()

	m := match.NewMatcher()

	tests := []struct {
		name   string
		target *domain.TargetProduct
		scope  *domain.CompetitorScope
		offer  domain.Offer
		want   match.Decision
	}{
		{
			name:   "brand and keywords",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin Edge 1050 GPS Computer", "examplestore.com", price("549.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Accepted: true},
		},
		{
			name:   "brand and mpn in title",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin 010-02890-00 cycling computer", "examplestore.com", price("549.99"), "", domain.OriginPageSchema, "u"),
			want:   match.Decision{Accepted: true},
		},
		{
			name:   "brand and raw identifier",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin cycling computer", "examplestore.com", price("549.99"), "", domain.OriginPageSchema, "u", "010 02890 00"),
			want:   match.Decision{Accepted: true},
		},
		{
			name:   "wrong domain",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin Edge 1050", "otherstore.com", price("549.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Reason: match.ReasonDomain},
		},
		{
			name:   "denied domain in wildcard",
			target: edge1050(),
			scope:  market,
			offer:  domain.NewOffer("Garmin Edge 1050", "ebay.com", price("549.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Reason: match.ReasonDomain},
		},
		{
			name:   "brand missing from title",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Edge 1050 mount 010-02890-00", "examplestore.com", price("549.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Reason: match.ReasonIdentity},
		},
		{
			name:   "brand but only one keyword",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin Edge 840", "examplestore.com", price("399.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Reason: match.ReasonIdentity},
		},
		{
			name:   "no brand passes on mpn alone",
			target: &domain.TargetProduct{Name: "Ultegra rear derailleur", MPN: "RD-R8100"},
			scope:  market,
			offer:  domain.NewOffer("Shimano Ultegra RD-R8100-SGS", "bikeshop.com", price("139.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Accepted: true},
		},
		{
			name:   "no brand and no mpn match",
			target: &domain.TargetProduct{Name: "Ultegra rear derailleur", MPN: "RD-R8100"},
			scope:  market,
			offer:  domain.NewOffer("Shimano Ultegra rear derailleur", "bikeshop.com", price("139.99"), "", domain.OriginSearchStructured, "u"),
			want:   match.Decision{Reason: match.ReasonIdentity},
		},
		{
			name:   "gtin identifier equality",
			target: &domain.TargetProduct{Name: "Edge 1050", GTIN: "753759315389"},
			scope:  market,
			offer:  domain.NewOffer("Bike computer", "bikeshop.com", price("549.99"), "", domain.OriginPageSchema, "u", "0753759315389"),
			want:   match.Decision{Accepted: true},
		},
		{
			name:   "implausible accessory price",
			target: &domain.TargetProduct{Name: "Edge 1050", Brand: "Garmin", MPN: "010-02890-00", ReferencePrice: ref("1300")},
			scope:  market,
			offer:  domain.NewOffer("Garmin Edge 1050 010-02890-00", "bikeshop.com", price("20"), "", domain.OriginPlatformAPI, "u", "010-02890-00"),
			want:   match.Decision{Reason: match.ReasonPrice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := m.Gate(tt.target, tt.scope, &tt.offer)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, m.Gate(tt.target, tt.scope, &tt.offer), "gate must be deterministic")
		})
	}
}

func TestMatcher_Gate_RepeatedPassesAgree(t *testing.T) {
	t.Parallel()

	m := match.NewMatcher()
	ultegra := &domain.TargetProduct{Name: "Ultegra rear derailleur", MPN: "RD-R8100"}

	pairs := []struct {
		name   string
		target *domain.TargetProduct
		scope  *domain.CompetitorScope
		offer  domain.Offer
	}{
		{
			name:   "accepted keywords",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin Edge 1050 GPS Computer", "examplestore.com", price("549.99"), "", domain.OriginSearchStructured, "u"),
		},
		{
			name:   "rejected domain",
			target: edge1050(),
			scope:  exampleStore,
			offer:  domain.NewOffer("Garmin Edge 1050", "otherstore.com", price("549.99"), "", domain.OriginSearchStructured, "u"),
		},
		{
			name:   "accepted mpn",
			target: ultegra,
			scope:  market,
			offer:  domain.NewOffer("Shimano Ultegra RD-R8100-SGS", "bikeshop.com", price("139.99"), "", domain.OriginSearchStructured, "u"),
		},
		{
			name:   "rejected identity",
			target: ultegra,
			scope:  market,
			offer:  domain.NewOffer("Shimano Ultegra rear derailleur", "bikeshop.com", price("139.99"), "", domain.OriginSearchStructured, "u"),
		},
		{
			name:   "rejected price",
			target: &domain.TargetProduct{Name: "Edge 1050", Brand: "Garmin", MPN: "010-02890-00", ReferencePrice: ref("1300")},
			scope:  market,
			offer:  domain.NewOffer("Garmin Edge 1050 010-02890-00", "bikeshop.com", price("20"), "", domain.OriginPlatformAPI, "u", "010-02890-00"),
		},
	}

	first := make([]match.Decision, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		first[i] = m.Gate(p.target, p.scope, &p.offer)
	}

	// Second pass in reverse so no decision depends on what the matcher saw before.
	for i := len(pairs) - 1; i >= 0; i-- {
		p := &pairs[i]
		before := p.offer
		got := m.Gate(p.target, p.scope, &p.offer)
		assert.Equal(t, first[i], got, p.name)
		assert.Equal(t, before, p.offer, "%s: gate must not modify the offer", p.name)
	}
}

func TestMatcher_WithStopwordsNilKeepsDefaults(t *testing.T) {
	t.Parallel()

	target := &domain.TargetProduct{Name: "Zipp Front Wheel 303 S", Brand: "Zipp"}
	offer := domain.NewOffer("Zipp 303 S Carbon Tubeless Disc", "bikeshop.com", price("1299"), "", domain.OriginPageSchema, "u")

	got := match.NewMatcher(match.WithStopwords(nil)).Gate(target, market, &offer)
	assert.Equal(t, match.NewMatcher().Gate(target, market, &offer), got)
	assert.True(t, got.Accepted)

	// An empty, non-nil list drops every stopword so "front" and "wheel" become required keywords.
	strict := match.NewMatcher(match.WithStopwords([]string{}), match.WithMinKeywords(4))
	assert.False(t, strict.Gate(target, market, &offer).Accepted)
}

func TestMatcher_WithMinKeywords(t *testing.T) {
	t.Parallel()

	strict := match.NewMatcher(match.WithMinKeywords(3))
	target := &domain.TargetProduct{Name: "Edge 1050 Bundle", Brand: "Garmin"}
	offer := domain.NewOffer("Garmin Edge 1050", "a.com", price("600"), "", domain.OriginSearchStructured, "u")

	assert.False(t, strict.Gate(target, market, &offer).Accepted)
	assert.True(t, match.NewMatcher().Gate(target, market, &offer).Accepted)
}

func TestMatcher_Select_WildcardLowestPrice(t *testing.T) {
	t.Parallel()

	target := &domain.TargetProduct{Name: "Edge 1050", Brand: "Garmin"}
	offers := []domain.Offer{
		domain.NewOffer("Garmin Edge 1050", "a.com", price("500"), "", domain.OriginSearchStructured, "ua"),
		domain.NewOffer("Garmin Edge 1050", "b.com", price("420"), "", domain.OriginSearchStructured, "ub"),
		domain.NewOffer("Garmin Edge 1050", "c.com", price("610"), "", domain.OriginSearchStructured, "uc"),
	}

	got, ok := match.NewMatcher().Select(target, market, offers)
	require.True(t, ok)
	assert.Equal(t, "420.00", got.Price.StringFixed(2))
	assert.Equal(t, "b.com", got.SourceDomain)
}

func TestMatcher_Select_WildcardTieBreak(t *testing.T) {
	t.Parallel()

	target := &domain.TargetProduct{Name: "Edge 1050", Brand: "Garmin"}
	offers := []domain.Offer{
		domain.NewOffer("Garmin Edge 1050", "a.com", price("420"), "", domain.OriginSearchStructured, "ua"),
		domain.NewOffer("Garmin Edge 1050", "b.com", price("420"), "", domain.OriginPlatformAPI, "ub"),
		domain.NewOffer("Garmin Edge 1050", "c.com", price("420"), "", domain.OriginPlatformAPI, "uc"),
		domain.NewOffer("Garmin Edge 1050", "ebay.com", price("100"), "", domain.OriginPlatformAPI, "ud"),
	}

	got, ok := match.NewMatcher().Select(target, market, offers)
	require.True(t, ok)
	assert.Equal(t, "b.com", got.SourceDomain)
}

func TestMatcher_Select_SpecificTakesFirstAccepted(t *testing.T) {
	t.Parallel()

	offers := []domain.Offer{
		domain.NewOffer("Garmin Edge 840", "examplestore.com", price("300"), "", domain.OriginSearchStructured, "u1"),
		domain.NewOffer("Garmin Edge 1050 GPS Computer", "examplestore.com", price("549.99"), "", domain.OriginSearchStructured, "u2"),
		domain.NewOffer("Garmin Edge 1050", "examplestore.com", price("499.99"), "", domain.OriginSearchStructured, "u3"),
	}

	got, ok := match.NewMatcher().Select(edge1050(), exampleStore, offers)
	require.True(t, ok)
	assert.Equal(t, "u2", got.EvidenceURL)

	got.Title = "mutated"
	assert.Equal(t, "Garmin Edge 1050 GPS Computer", offers[1].Title)
}

func TestMatcher_Select_None(t *testing.T) {
	t.Parallel()

	got, ok := match.NewMatcher().Select(edge1050(), exampleStore, nil)
	assert.False(t, ok)
	assert.Nil(t, got)
}

// Offers extracted from a page must pass identity gating against a target
// built from the same page's identity fields.
func TestMatcher_ExtractedOffersPassIdentity(t *testing.T) {
	t.Parallel()

	c := extract.Content{
		Kind: extract.KindHTML,
		URL:  "https://www.examplestore.com/products/garmin-edge-1050",
		Body: []byte(`<html><head><title>Garmin Edge 1050</title>
<script type="application/ld+json">{"@type":"Product","name":"Garmin Edge 1050","brand":"Garmin",
"mpn":"010-02890-00","gtin12":"753759315389","offers":{"price":"549.99"}}</script></head></html>`),
	}
	offers := extract.Run(c, extract.ForPlatform(extract.DetectPlatform(c.URL, nil, c.Body))...)
	require.NotEmpty(t, offers)

	target := &domain.TargetProduct{Name: "Edge 1050", Brand: "Garmin", MPN: "010-02890-00", GTIN: "753759315389"}
	m := match.NewMatcher()
	for i := range offers {
		assert.True(t, m.Gate(target, exampleStore, &offers[i]).Accepted, offers[i].Title)
	}
}
