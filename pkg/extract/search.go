package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// SearchExtractor reads offers from search API responses. Only the known
// result shapes are understood; anything else produces nothing.
type SearchExtractor struct{}

// searchResult is one element of a known result list.
type searchResult interface {
	link() string
	offer() (domain.Offer, bool)
}

type searchEnvelope struct {
	OrganicResults        []json.RawMessage `json:"organic_results"`
	ShoppingResults       []json.RawMessage `json:"shopping_results"`
	InlineShoppingResults []json.RawMessage `json:"inline_shopping_results"`
}

type detectedExtensions struct {
	DetectedExtensions map[string]any `json:"detected_extensions"`
	Extensions         []string       `json:"extensions"`
}

type organicResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	RichSnippet struct {
		Top    detectedExtensions `json:"top"`
		Bottom detectedExtensions `json:"bottom"`
	} `json:"rich_snippet"`
}

type shoppingResult struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	ProductLink    string `json:"product_link"`
	Source         string `json:"source"`
	Price          string `json:"price"`
	ExtractedPrice any    `json:"extracted_price"`
}

func (r organicResult) link() string { return r.Link }

func (r organicResult) offer() (domain.Offer, bool) {
	price, ok := snippetPrice(r.RichSnippet.Top)
	if !ok {
		price, ok = snippetPrice(r.RichSnippet.Bottom)
	}
	if !ok || r.Link == "" {
		return domain.Offer{}, false
	}
	return domain.NewOffer(r.Title, normalize.Domain(r.Link), price, "",
		domain.OriginSearchStructured, r.Link), true
}

func snippetPrice(d detectedExtensions) (decimal.Decimal, bool) {
	if v, ok := d.DetectedExtensions["price"]; ok {
		if p, ok := normalize.ParseMoneyValue(v); ok {
			return p, true
		}
	}
	for _, ext := range d.Extensions {
		if strings.Contains(ext, "$") {
			if p, ok := normalize.ParseMoney(ext); ok {
				return p, true
			}
		}
	}
	return decimal.Zero, false
}

func (r shoppingResult) link() string {
	return firstNonEmpty(r.Link, r.ProductLink)
}

func (r shoppingResult) offer() (domain.Offer, bool) {
	link := r.link()
	if link == "" {
		return domain.Offer{}, false
	}
	price, ok := normalize.ParseMoneyValue(r.ExtractedPrice)
	if !ok {
		price, ok = normalize.ParseMoney(r.Price)
	}
	if !ok {
		return domain.Offer{}, false
	}
	return domain.NewOffer(r.Title, normalize.Domain(link), price, "",
		domain.OriginSearchStructured, link), true
}

// decodeResults decodes every known result list. Elements that do not fit
// their shape are skipped.
func decodeResults(body []byte) []searchResult {
	var env searchEnvelope
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil
	}

	var out []searchResult
	for _, raw := range env.ShoppingResults {
		var r shoppingResult
		if json.Unmarshal(raw, &r) == nil {
			out = append(out, r)
		}
	}
	for _, raw := range env.InlineShoppingResults {
		var r shoppingResult
		if json.Unmarshal(raw, &r) == nil {
			out = append(out, r)
		}
	}
	for _, raw := range env.OrganicResults {
		var r organicResult
		if json.Unmarshal(raw, &r) == nil {
			out = append(out, r)
		}
	}
	return out
}

// Extract implements Extractor.
func (SearchExtractor) Extract(c Content) []domain.Offer {
	if c.Kind != KindSearchResults {
		return nil
	}
	var offers []domain.Offer
	for _, r := range decodeResults(c.Body) {
		if o, ok := r.offer(); ok {
			offers = append(offers, o)
		}
	}
	return offers
}

// ResultLinks returns the distinct result links of a search response in
// response order: shopping results first, then organic results.
func ResultLinks(c Content) []string {
	if c.Kind != KindSearchResults {
		return nil
	}
	seen := make(map[string]bool)
	var links []string
	for _, r := range decodeResults(c.Body) {
		l := r.link()
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		links = append(links, l)
	}
	return links
}
