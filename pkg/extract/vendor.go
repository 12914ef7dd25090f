package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

var reMagentoFinalPrice = regexp.MustCompile(`"finalPrice"\s*:\s*\{\s*"amount"\s*:\s*"?([\d.,]+)`)

// VendorHTMLExtractor reads prices from storefront themes that carry no
// schema markup but use stable vendor-specific attributes.
type VendorHTMLExtractor struct{}

// Extract implements Extractor.
func (VendorHTMLExtractor) Extract(c Content) []domain.Offer {
	if c.Kind != KindHTML {
		return nil
	}
	doc := parseDocument(c.Body)
	if doc == nil {
		return nil
	}

	title := firstNonEmpty(doc.Find("h1.product-title").First().Text(), pageTitle(doc))
	brand := strings.TrimSpace(doc.Find(".vendor-pdp-link a").First().Text())
	if brand != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(brand)) {
		title = brand + " " + title
	}

	var ids []string
	model := doc.Find("#product-model[data-mansku][data-upc]").First()
	if upc, ok := model.Attr("data-upc"); ok {
		ids = append(ids, strings.TrimSpace(upc))
	}
	if sku, ok := model.Attr("data-mansku"); ok {
		ids = append(ids, strings.TrimSpace(sku))
	}

	var offers []domain.Offer
	add := func(raw string) {
		if price, ok := normalize.ParseMoney(raw); ok {
			offers = append(offers, domain.NewOffer(title, c.Domain(), price, "",
				domain.OriginPageSchema, c.URL, ids...))
		}
	}

	if v, ok := doc.Find("[data-price-amount]").First().Attr("data-price-amount"); ok {
		add(v)
	}
	doc.Find(`script[type="text/x-magento-init"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := reMagentoFinalPrice.FindStringSubmatch(s.Text()); m != nil {
			add(m[1])
			return false
		}
		return true
	})
	add(doc.Find("span.retail-pdp-price").First().Text())

	return offers
}
