package extract

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Platform is the storefront family a page was served by, which decides
// the extraction strategy.
type Platform int

// Platforms.
const (
	PlatformUnknown Platform = iota
	PlatformStorefrontJSON
	PlatformStructuredMarkup
	PlatformVendorHTML
)

// String returns the platform name used in logs and metrics labels.
func (p Platform) String() string {
	switch p {
	case PlatformStorefrontJSON:
		return "storefront_json"
	case PlatformStructuredMarkup:
		return "structured_markup"
	case PlatformVendorHTML:
		return "vendor_html"
	default:
		return "unknown"
	}
}

var (
	storefrontMarkers = [][]byte{
		[]byte("cdn.shopify"),
		[]byte("shopifyanalytics"),
		[]byte("/cart.js"),
		[]byte("window.shopify"),
	}
	structuredMarkers = [][]byte{
		[]byte("application/ld+json"),
		[]byte("itemprop=\"price\""),
		[]byte("itemprop='price'"),
	}
	vendorMarkers = [][]byte{
		[]byte("data-price-amount"),
		[]byte("text/x-magento-init"),
		[]byte("retail-pdp-price"),
		[]byte("id=\"product-model\""),
	}

	reAnalyticsHandle = regexp.MustCompile(`(?i)ShopifyAnalytics\.meta\.product\.handle\s*=\s*["']([^"']+)["']`)
	reDataHandle      = regexp.MustCompile(`(?i)data-product-handle=["']([^"']+)["']`)
	reJSONHandle      = regexp.MustCompile(`(?i)"handle"\s*:\s*"([^"]+)"`)
)

// DetectPlatform sniffs the storefront family from the page URL, response
// headers and body.
func DetectPlatform(pageURL string, header http.Header, body []byte) Platform {
	if header.Get("X-ShopId") != "" || header.Get("X-Shopify-Stage") != "" ||
		strings.Contains(strings.ToLower(header.Get("Powered-By")), "shopify") {
		return PlatformStorefrontJSON
	}
	lower := bytes.ToLower(body)
	if containsAny(lower, storefrontMarkers) {
		return PlatformStorefrontJSON
	}
	if u, err := url.Parse(pageURL); err == nil && strings.Contains(u.Path, "/products/") {
		return PlatformStorefrontJSON
	}
	if containsAny(lower, structuredMarkers) {
		return PlatformStructuredMarkup
	}
	if containsAny(lower, vendorMarkers) {
		return PlatformVendorHTML
	}
	return PlatformUnknown
}

func containsAny(body []byte, markers [][]byte) bool {
	for _, m := range markers {
		if bytes.Contains(body, m) {
			return true
		}
	}
	return false
}

// StorefrontProductURL derives the storefront product JSON endpoint for a
// page. The product handle is taken from the page path, then the canonical
// link, then analytics and theme attributes, then the last path segment.
func StorefrontProductURL(pageURL string, body []byte) (string, bool) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", false
	}

	handle := handleFromPath(u.Path)
	if handle == "" {
		if doc := parseDocument(body); doc != nil {
			if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
				if cu, err := url.Parse(href); err == nil {
					handle = handleFromPath(cu.Path)
				}
			}
		}
	}
	if handle == "" {
		for _, re := range []*regexp.Regexp{reAnalyticsHandle, reDataHandle, reJSONHandle} {
			if m := re.FindSubmatch(body); m != nil {
				handle = strings.TrimSpace(string(m[1]))
				break
			}
		}
	}
	if handle == "" {
		seg := path.Base(strings.TrimRight(u.Path, "/"))
		if seg != "" && seg != "/" && seg != "." && !strings.Contains(seg, ".") {
			handle = seg
		}
	}
	if handle == "" {
		return "", false
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/products/" + url.PathEscape(handle) + ".js", true
}

func handleFromPath(p string) string {
	_, after, ok := strings.Cut(p, "/products/")
	if !ok {
		return ""
	}
	handle, _, _ := strings.Cut(after, "/")
	return strings.TrimSuffix(strings.TrimSuffix(handle, ".js"), ".json")
}

// PlatformExtractor reads storefront product JSON. Variant prices in the
// .js form are integer cents; the lowest variant price wins.
type PlatformExtractor struct{}

type storefrontProduct struct {
	Title    string              `json:"title"`
	Vendor   string              `json:"vendor"`
	Handle   string              `json:"handle"`
	Price    any                 `json:"price"`
	Variants []storefrontVariant `json:"variants"`
}

type storefrontVariant struct {
	Price   any    `json:"price"`
	Barcode string `json:"barcode"`
	SKU     string `json:"sku"`
}

// Extract implements Extractor.
func (PlatformExtractor) Extract(c Content) []domain.Offer {
	if c.Kind != KindStorefrontJSON {
		return nil
	}
	p, ok := decodeStorefrontProduct(c.Body)
	if !ok {
		return nil
	}

	var (
		best  decimal.Decimal
		found bool
		ids   []string
	)
	for _, v := range p.Variants {
		if price, ok := variantPrice(v.Price); ok && (!found || price.LessThan(best)) {
			best, found = price, true
		}
		if v.Barcode != "" {
			ids = append(ids, v.Barcode)
		}
		if v.SKU != "" {
			ids = append(ids, v.SKU)
		}
	}
	if !found {
		best, found = variantPrice(p.Price)
	}
	if !found {
		return nil
	}

	title := p.Title
	if p.Vendor != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(p.Vendor)) {
		title = p.Vendor + " " + title
	}
	return []domain.Offer{
		domain.NewOffer(title, normalize.Domain(c.URL), best, "", domain.OriginPlatformAPI,
			strings.TrimSuffix(c.URL, ".js"), ids...),
	}
}

// decodeStorefrontProduct accepts both the bare product object and the
// {"product": {...}} wrapper some themes serve.
func decodeStorefrontProduct(body []byte) (storefrontProduct, bool) {
	var wrapped struct {
		Product *storefrontProduct `json:"product"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return storefrontProduct{}, false
	}
	if wrapped.Product != nil {
		return *wrapped.Product, true
	}
	var p storefrontProduct
	if err := json.Unmarshal(body, &p); err != nil {
		return storefrontProduct{}, false
	}
	return p, p.Title != "" || len(p.Variants) > 0
}

// variantPrice reads integer cents from numbers and major units from
// strings such as "699.99".
func variantPrice(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case string:
		return normalize.ParseMoney(t)
	default:
		return normalize.ParseCents(t)
	}
}
