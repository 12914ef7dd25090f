// Package extract turns fetched evidence (search API responses, product
// pages, storefront product JSON) into candidate offers. Extractors never
// fail: malformed input yields no offers.
package extract

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Kind identifies the shape of a fetched body.
type Kind int

// Content kinds.
const (
	KindSearchResults Kind = iota + 1
	KindHTML
	KindStorefrontJSON
)

// String returns the kind name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindSearchResults:
		return "search_results"
	case KindHTML:
		return "html"
	case KindStorefrontJSON:
		return "storefront_json"
	default:
		return "unknown"
	}
}

// Content is one fetched body with enough context to attribute offers.
type Content struct {
	Kind   Kind
	URL    string
	Header http.Header
	Body   []byte
}

// Domain returns the normalized host the content was fetched from.
func (c Content) Domain() string {
	return normalize.Domain(c.URL)
}

// Extractor pulls offers out of content.
type Extractor interface {
	Extract(c Content) []domain.Offer
}

// ForPlatform returns the page extractors applicable to a sniffed platform,
// in precedence order. Storefront product JSON is fetched separately and
// handled by PlatformExtractor.
func ForPlatform(p Platform) []Extractor {
	switch p {
	case PlatformStorefrontJSON, PlatformStructuredMarkup:
		return []Extractor{SchemaExtractor{}, VendorHTMLExtractor{}, RegexExtractor{}}
	case PlatformVendorHTML:
		return []Extractor{VendorHTMLExtractor{}, SchemaExtractor{}, RegexExtractor{}}
	default:
		return []Extractor{SchemaExtractor{}, RegexExtractor{}}
	}
}

// Run applies every extractor to c and pools the results.
func Run(c Content, extractors ...Extractor) []domain.Offer {
	groups := make([][]domain.Offer, 0, len(extractors))
	for _, e := range extractors {
		groups = append(groups, e.Extract(c))
	}
	return Pool(groups...)
}

// Pool merges offer groups from a single fetch. Offers sharing a
// (domain, price, url) key collapse to the one with the higher origin rank,
// keeping the position of the first sighting. Regex fallback offers are
// dropped whenever anything better was found.
func Pool(groups ...[]domain.Offer) []domain.Offer {
	var out []domain.Offer
	index := make(map[string]int)
	better := false

	for _, g := range groups {
		for _, o := range g {
			if o.Origin.Rank() > domain.OriginRegexFallback.Rank() {
				better = true
			}
			k := o.Key()
			if i, ok := index[k]; ok {
				if o.Origin.Rank() > out[i].Origin.Rank() {
					out[i] = o
				}
				continue
			}
			index[k] = len(out)
			out = append(out, o)
		}
	}

	if !better {
		return out
	}
	kept := out[:0]
	for _, o := range out {
		if o.Origin != domain.OriginRegexFallback {
			kept = append(kept, o)
		}
	}
	return kept
}

// parseDocument parses an HTML body. A nil document means the body could
// not be read at all.
func parseDocument(body []byte) *goquery.Document {
	if len(body) == 0 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return doc
}

// pageTitle returns og:title, falling back to <title>.
func pageTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
