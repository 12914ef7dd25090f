package extract

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

var (
	gtinKeys = []string{"gtin", "gtin13", "gtin14", "gtin12", "gtin8", "barcode"}
	mpnKeys  = []string{"mpn", "sku", "model", "partNumber", "itemModel"}
)

// SchemaExtractor reads schema.org product markup: JSON-LD blocks,
// microdata and product meta tags.
type SchemaExtractor struct{}

// Extract implements Extractor.
func (SchemaExtractor) Extract(c Content) []domain.Offer {
	if c.Kind != KindHTML {
		return nil
	}
	doc := parseDocument(c.Body)
	if doc == nil {
		return nil
	}

	p := schemaPage{url: c.URL, host: c.Domain(), title: pageTitle(doc)}

	var offers []domain.Offer
	offers = append(offers, p.jsonLD(doc)...)
	offers = append(offers, p.microdata(doc)...)
	offers = append(offers, p.meta(doc)...)
	return offers
}

type schemaPage struct {
	url   string
	host  string
	title string
}

func (p schemaPage) offer(name string, price decimal.Decimal, currency string, ids []string) domain.Offer {
	return domain.NewOffer(firstNonEmpty(name, p.title), p.host, price, strings.ToUpper(currency),
		domain.OriginPageSchema, p.url, ids...)
}

func (p schemaPage) jsonLD(doc *goquery.Document) []domain.Offer {
	var offers []domain.Offer
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		walkJSONLD(v, func(node map[string]any) {
			offers = append(offers, p.productNode(node)...)
		})
	})
	return offers
}

// walkJSONLD calls fn for every Product node in v, at any depth.
func walkJSONLD(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			walkJSONLD(e, fn)
		}
	case map[string]any:
		if isProduct(t["@type"]) {
			fn(t)
		}
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if k == "offers" {
				continue
			}
			walkJSONLD(t[k], fn)
		}
	}
}

func isProduct(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product") || strings.HasSuffix(v, "/Product")
	case []any:
		for _, e := range v {
			if isProduct(e) {
				return true
			}
		}
	}
	return false
}

func (p schemaPage) productNode(node map[string]any) []domain.Offer {
	name := scalarString(node["name"])
	ids := identifiers(node)

	var offers []domain.Offer
	for _, o := range asList(node["offers"]) {
		om, ok := o.(map[string]any)
		if !ok {
			continue
		}
		price, ok := offerPrice(om)
		if !ok {
			continue
		}
		currency := scalarString(om["priceCurrency"])
		offers = append(offers, p.offer(name, price, currency, append(ids, identifiers(om)...)))
	}
	if len(offers) > 0 {
		return offers
	}
	if price, ok := offerPrice(node); ok {
		offers = append(offers, p.offer(name, price, scalarString(node["priceCurrency"]), ids))
	}
	return offers
}

// offerPrice reads price, then lowPrice, then highPrice, then a nested
// priceSpecification.
func offerPrice(m map[string]any) (decimal.Decimal, bool) {
	for _, k := range []string{"price", "lowPrice", "highPrice"} {
		if v, ok := m[k]; ok {
			if p, ok := normalize.ParseMoneyValue(v); ok {
				return p, true
			}
		}
	}
	for _, spec := range asList(m["priceSpecification"]) {
		if sm, ok := spec.(map[string]any); ok {
			if p, ok := normalize.ParseMoneyValue(sm["price"]); ok {
				return p, true
			}
		}
	}
	return decimal.Zero, false
}

func identifiers(m map[string]any) []string {
	var ids []string
	for _, k := range gtinKeys {
		if s := scalarString(m[k]); s != "" {
			ids = append(ids, s)
		}
	}
	for _, k := range mpnKeys {
		if s := scalarString(m[k]); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// scalarString renders strings and numbers; anything else is empty.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return decimal.NewFromFloat(t).String()
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func (p schemaPage) microdata(doc *goquery.Document) []domain.Offer {
	var offers []domain.Offer
	currency := attrOrText(doc.Find(`[itemprop="priceCurrency"]`).First())
	name := attrOrText(doc.Find(`[itemtype*="schema.org/Product"] [itemprop="name"]`).First())

	var ids []string
	for _, k := range append(append([]string{}, gtinKeys...), mpnKeys...) {
		if v := attrOrText(doc.Find(`[itemprop="` + k + `"]`).First()); v != "" {
			ids = append(ids, v)
		}
	}

	doc.Find(`[itemprop="price"]`).Each(func(_ int, s *goquery.Selection) {
		if price, ok := normalize.ParseMoney(attrOrText(s)); ok {
			offers = append(offers, p.offer(name, price, currency, ids))
		}
	})
	return offers
}

// attrOrText prefers the content attribute, as microdata on meta tags does.
func attrOrText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Text())
}

func (p schemaPage) meta(doc *goquery.Document) []domain.Offer {
	var offers []domain.Offer
	currency := firstNonEmpty(
		metaContent(doc, `meta[property="product:price:currency"]`),
		metaContent(doc, `meta[property="og:price:currency"]`),
	)
	for _, sel := range []string{`meta[property="product:price:amount"]`, `meta[property="og:price:amount"]`} {
		if price, ok := normalize.ParseMoney(metaContent(doc, sel)); ok {
			offers = append(offers, p.offer("", price, currency, nil))
		}
	}

	label := strings.ToLower(metaContent(doc, `meta[name="twitter:label1"]`))
	if label == "" || strings.Contains(label, "price") {
		if price, ok := normalize.ParseMoney(metaContent(doc, `meta[name="twitter:data1"]`)); ok {
			offers = append(offers, p.offer("", price, currency, nil))
		}
	}
	return offers
}

func metaContent(doc *goquery.Document, sel string) string {
	v, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(v)
}
