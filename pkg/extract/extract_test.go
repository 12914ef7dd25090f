package extract_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/competitor-price-matcher/pkg/extract"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func htmlContent(t *testing.T, rawURL, fixture string) extract.Content {
	t.Helper()
	return extract.Content{Kind: extract.KindHTML, URL: rawURL, Body: loadFixture(t, fixture)}
}

func offer(domainName, price string, origin domain.Origin, url string) domain.Offer {
	return domain.NewOffer("t", domainName, decimal.RequireFromString(price), "", origin, url)
}

func TestSearchExtractor(t *testing.T) {
	t.Parallel()

	c := extract.Content{Kind: extract.KindSearchResults, Body: loadFixture(t, "search_google.json")}
	offers := extract.SearchExtractor{}.Extract(c)

	require.Len(t, offers, 3)

	assert.Equal(t, "examplestore.com", offers[0].SourceDomain)
	assert.Equal(t, "549.99", offers[0].Price.StringFixed(2))
	assert.Equal(t, domain.OriginSearchStructured, offers[0].Origin)
	assert.Equal(t, "https://www.examplestore.com/products/garmin-edge-1050", offers[0].EvidenceURL)

	assert.Equal(t, "bikeshop.example.net", offers[1].SourceDomain)
	assert.Equal(t, "1299.00", offers[1].Price.StringFixed(2))

	assert.Equal(t, "garmin.com", offers[2].SourceDomain)
	assert.Equal(t, "599.99", offers[2].Price.StringFixed(2))
	assert.Equal(t, "USD", offers[2].Currency)
}

func TestSearchExtractor_UnknownShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    extract.Content
	}{
		{name: "not json", c: extract.Content{Kind: extract.KindSearchResults, Body: []byte("<html>")}},
		{name: "unknown keys", c: extract.Content{Kind: extract.KindSearchResults, Body: []byte(`{"answer_box":{"price":"$5"}}`)}},
		{name: "wrong list type", c: extract.Content{Kind: extract.KindSearchResults, Body: []byte(`{"organic_results":{"a":1}}`)}},
		{name: "empty", c: extract.Content{Kind: extract.KindSearchResults}},
		{name: "wrong kind", c: extract.Content{Kind: extract.KindHTML, Body: loadFixture(t, "search_google.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() {
				assert.Empty(t, extract.SearchExtractor{}.Extract(tt.c))
			})
		})
	}
}

func TestResultLinks(t *testing.T) {
	t.Parallel()

	c := extract.Content{Kind: extract.KindSearchResults, Body: loadFixture(t, "search_google.json")}
	assert.Equal(t, []string{
		"https://www.examplestore.com/products/garmin-edge-1050",
		"https://bikeshop.example.net/edge-1050",
		"https://www.garmin.com/en-US/p/1050",
		"https://reviews.example.org/edge-1050",
	}, extract.ResultLinks(c))
}

func TestSchemaExtractor_JSONLDGraph(t *testing.T) {
	t.Parallel()

	c := htmlContent(t, "https://www.examplestore.com/products/garmin-edge-1050", "page_jsonld.html")
	offers := extract.SchemaExtractor{}.Extract(c)

	require.Len(t, offers, 2)
	first := offers[0]
	assert.Equal(t, "Garmin Edge 1050", first.Title)
	assert.Equal(t, "examplestore.com", first.SourceDomain)
	assert.Equal(t, "549.99", first.Price.StringFixed(2))
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, domain.OriginPageSchema, first.Origin)
	assert.Equal(t, []string{"753759315389", "010-02890-00"}, first.RawIdentifiers)

	assert.Equal(t, "579.99", offers[1].Price.StringFixed(2))
}

func TestSchemaExtractor_AggregateOfferFallsBackToPageTitle(t *testing.T) {
	t.Parallel()

	c := htmlContent(t, "https://shop.example.com/rd-r8100", "page_aggregate.html")
	offers := extract.SchemaExtractor{}.Extract(c)

	require.Len(t, offers, 1)
	assert.Equal(t, "139.99", offers[0].Price.StringFixed(2))
	assert.Equal(t, "Shimano Ultegra RD-R8100 Rear Derailleur", offers[0].Title)
	assert.Equal(t, []string{"IRDR8100SGS"}, offers[0].RawIdentifiers)
}

func TestSchemaExtractor_MicrodataAndMeta(t *testing.T) {
	t.Parallel()

	c := htmlContent(t, "https://wahoo.example.com/roam", "page_microdata.html")

	raw := extract.SchemaExtractor{}.Extract(c)
	assert.Len(t, raw, 3)

	pooled := extract.Run(c, extract.SchemaExtractor{})
	require.Len(t, pooled, 1)
	assert.Equal(t, "Wahoo ELEMNT Roam V2", pooled[0].Title)
	assert.Equal(t, "399.99", pooled[0].Price.StringFixed(2))
	assert.Equal(t, []string{"0850010326709"}, pooled[0].RawIdentifiers)
}

func TestVendorHTMLExtractor(t *testing.T) {
	t.Parallel()

	t.Run("magento", func(t *testing.T) {
		t.Parallel()
		c := htmlContent(t, "https://performance.example.com/sram-force-axs.html", "page_magento.html")

		offers := extract.VendorHTMLExtractor{}.Extract(c)
		require.Len(t, offers, 2)
		for _, o := range offers {
			assert.Equal(t, "459.00", o.Price.StringFixed(2))
			assert.Equal(t, domain.OriginPageSchema, o.Origin)
		}
		assert.Len(t, extract.Run(c, extract.VendorHTMLExtractor{}), 1)
	})

	t.Run("product model attributes", func(t *testing.T) {
		t.Parallel()
		c := htmlContent(t, "https://www.excel.example.com/garmin-edge-1050", "page_excel.html")

		offers := extract.VendorHTMLExtractor{}.Extract(c)
		require.Len(t, offers, 1)
		assert.Equal(t, "Garmin Edge 1050 GPS Computer", offers[0].Title)
		assert.Equal(t, "549.95", offers[0].Price.StringFixed(2))
		assert.Equal(t, []string{"753759315389", "010-02890-00"}, offers[0].RawIdentifiers)
	})
}

func TestRegexExtractor(t *testing.T) {
	t.Parallel()

	c := htmlContent(t, "https://specialized.example.com/levo", "page_regex.html")
	offers := extract.RegexExtractor{}.Extract(c)

	require.Len(t, offers, 1)
	assert.Equal(t, "1249.00", offers[0].Price.StringFixed(2))
	assert.Equal(t, "Specialized Turbo Levo & Co", offers[0].Title)
	assert.Equal(t, domain.OriginRegexFallback, offers[0].Origin)
	assert.Equal(t, []string{"010-02890-00"}, offers[0].RawIdentifiers)
}

func TestExtractors_MalformedInput(t *testing.T) {
	t.Parallel()

	bodies := [][]byte{
		nil,
		[]byte("<html><head><script type=\"application/ld+json\">[[[</script>"),
		[]byte("\x00\xff\xfe garbage"),
		[]byte(`<meta property="og:price:amount" content="Call for price">`),
	}
	extractors := []extract.Extractor{
		extract.SchemaExtractor{}, extract.VendorHTMLExtractor{}, extract.RegexExtractor{}, extract.PlatformExtractor{},
	}

	for _, body := range bodies {
		for _, e := range extractors {
			for _, kind := range []extract.Kind{extract.KindHTML, extract.KindStorefrontJSON} {
				c := extract.Content{Kind: kind, URL: "https://x.example.com/p", Body: body}
				assert.NotPanics(t, func() {
					assert.Empty(t, e.Extract(c))
				})
			}
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		header http.Header
		body   []byte
		want   extract.Platform
	}{
		{
			name: "storefront markers in body",
			url:  "https://mikesbikes.example.com/collections/gps/garmin-edge",
			body: loadFixture(t, "page_shopify.html"),
			want: extract.PlatformStorefrontJSON,
		},
		{
			name:   "storefront header",
			url:    "https://store.example.com/item",
			header: http.Header{"X-Shopid": []string{"123"}},
			body:   []byte("<html></html>"),
			want:   extract.PlatformStorefrontJSON,
		},
		{
			name: "products path",
			url:  "https://store.example.com/products/thing",
			body: []byte("<html></html>"),
			want: extract.PlatformStorefrontJSON,
		},
		{
			name: "json-ld markup",
			url:  "https://www.examplestore.com/p/1",
			body: loadFixture(t, "page_jsonld.html"),
			want: extract.PlatformStructuredMarkup,
		},
		{
			name: "magento vendor markup",
			url:  "https://performance.example.com/sram-force-axs.html",
			body: loadFixture(t, "page_magento.html"),
			want: extract.PlatformVendorHTML,
		},
		{
			name: "unknown",
			url:  "https://specialized.example.com/levo",
			body: loadFixture(t, "page_regex.html"),
			want: extract.PlatformUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extract.DetectPlatform(tt.url, tt.header, tt.body))
		})
	}
}

func TestStorefrontProductURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		body   []byte
		want   string
		wantOK bool
	}{
		{
			name:   "products path",
			url:    "https://store.example.com/products/edge-1050?variant=1",
			want:   "https://store.example.com/products/edge-1050.js",
			wantOK: true,
		},
		{
			name:   "canonical link",
			url:    "https://mikesbikes.example.com/collections/gps/garmin-edge",
			body:   loadFixture(t, "page_shopify.html"),
			want:   "https://mikesbikes.example.com/products/garmin-edge-1050.js",
			wantOK: true,
		},
		{
			name:   "analytics handle",
			url:    "https://store.example.com/c/item",
			body:   []byte(`<script>ShopifyAnalytics.meta.product.handle = "from-analytics";</script>`),
			want:   "https://store.example.com/products/from-analytics.js",
			wantOK: true,
		},
		{
			name:   "data attribute",
			url:    "https://store.example.com/c/item",
			body:   []byte(`<div data-product-handle="from-attr"></div>`),
			want:   "https://store.example.com/products/from-attr.js",
			wantOK: true,
		},
		{
			name:   "last path segment",
			url:    "https://store.example.com/c/last-segment/",
			body:   []byte(`<html></html>`),
			want:   "https://store.example.com/products/last-segment.js",
			wantOK: true,
		},
		{
			name:   "nothing usable",
			url:    "https://store.example.com/index.html",
			body:   []byte(`<html></html>`),
			wantOK: false,
		},
		{
			name:   "not a url",
			url:    "::::",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := extract.StorefrontProductURL(tt.url, tt.body)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlatformExtractor(t *testing.T) {
	t.Parallel()

	c := extract.Content{
		Kind: extract.KindStorefrontJSON,
		URL:  "https://mikesbikes.example.com/products/garmin-edge-1050.js",
		Body: loadFixture(t, "storefront_product.js"),
	}
	offers := extract.PlatformExtractor{}.Extract(c)

	require.Len(t, offers, 1)
	o := offers[0]
	assert.Equal(t, "Garmin Edge 1050", o.Title)
	assert.Equal(t, "549.99", o.Price.StringFixed(2))
	assert.Equal(t, domain.OriginPlatformAPI, o.Origin)
	assert.Equal(t, "mikesbikes.example.com", o.SourceDomain)
	assert.Equal(t, "https://mikesbikes.example.com/products/garmin-edge-1050", o.EvidenceURL)
	assert.Contains(t, o.RawIdentifiers, "753759315389")
	assert.Contains(t, o.RawIdentifiers, "010-02890-00")
}

func TestPlatformExtractor_WrappedStringPrices(t *testing.T) {
	t.Parallel()

	c := extract.Content{
		Kind: extract.KindStorefrontJSON,
		URL:  "https://store.example.com/products/x.js",
		Body: []byte(`{"product":{"title":"Garmin Varia","vendor":"Garmin","variants":[{"price":"199.99"},{"price":"179.99"}]}}`),
	}
	offers := extract.PlatformExtractor{}.Extract(c)

	require.Len(t, offers, 1)
	assert.Equal(t, "179.99", offers[0].Price.StringFixed(2))
	assert.Equal(t, "Garmin Varia", offers[0].Title)
}

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("higher origin wins on duplicate key", func(t *testing.T) {
		t.Parallel()
		got := extract.Pool(
			[]domain.Offer{offer("a.com", "20", domain.OriginPageSchema, "u")},
			[]domain.Offer{offer("a.com", "20.00", domain.OriginPlatformAPI, "u")},
		)
		require.Len(t, got, 1)
		assert.Equal(t, domain.OriginPlatformAPI, got[0].Origin)
	})

	t.Run("regex dropped when better evidence exists", func(t *testing.T) {
		t.Parallel()
		got := extract.Pool(
			[]domain.Offer{offer("a.com", "10", domain.OriginRegexFallback, "u"), offer("a.com", "15", domain.OriginRegexFallback, "u")},
			[]domain.Offer{offer("a.com", "20", domain.OriginPageSchema, "u")},
		)
		require.Len(t, got, 1)
		assert.Equal(t, domain.OriginPageSchema, got[0].Origin)
	})

	t.Run("regex kept when alone", func(t *testing.T) {
		t.Parallel()
		got := extract.Pool([]domain.Offer{offer("a.com", "10", domain.OriginRegexFallback, "u")})
		require.Len(t, got, 1)
	})

	t.Run("distinct urls kept in order", func(t *testing.T) {
		t.Parallel()
		got := extract.Pool([]domain.Offer{
			offer("a.com", "10", domain.OriginSearchStructured, "u1"),
			offer("a.com", "10", domain.OriginSearchStructured, "u2"),
		})
		require.Len(t, got, 2)
		assert.Equal(t, "u1", got[0].EvidenceURL)
	})
}

func TestForPlatform(t *testing.T) {
	t.Parallel()

	assert.Len(t, extract.ForPlatform(extract.PlatformUnknown), 2)
	assert.IsType(t, extract.VendorHTMLExtractor{}, extract.ForPlatform(extract.PlatformVendorHTML)[0])
	assert.IsType(t, extract.SchemaExtractor{}, extract.ForPlatform(extract.PlatformStructuredMarkup)[0])
}
