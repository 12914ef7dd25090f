package extract

import (
	"html"
	"regexp"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

var (
	reAttrPrices = []*regexp.Regexp{
		regexp.MustCompile(`(?i)itemprop=["']price["'][^>]*content=["']([\d.,]+)["']`),
		regexp.MustCompile(`(?i)data-price(?:-amount)?\s*=\s*["']([\d.,]+)["']`),
	}
	reLabelPrice = regexp.MustCompile(
		`(?is)(?:our price|your price|price|sale)[^$0-9]{0,25}\$?\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{2})?|[0-9]+(?:\.[0-9]{2})?)`,
	)
	reTitleTag = regexp.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`)
	reMPNLike  = regexp.MustCompile(`\b\d{3}-\d{5}-\d{2}\b`)
)

// RegexExtractor is the last-resort extractor: it scans raw page text for
// price attributes and "Price: $N" style labels.
type RegexExtractor struct{}

// Extract implements Extractor.
func (RegexExtractor) Extract(c Content) []domain.Offer {
	if c.Kind != KindHTML || len(c.Body) == 0 {
		return nil
	}
	text := string(c.Body)

	var title string
	if m := reTitleTag.FindStringSubmatch(text); m != nil {
		title = html.UnescapeString(firstNonEmpty(m[1]))
	}
	ids := reMPNLike.FindAllString(text, 3)

	var offers []domain.Offer
	add := func(raw string) {
		if price, ok := normalize.ParseMoney(raw); ok {
			offers = append(offers, domain.NewOffer(title, c.Domain(), price, "",
				domain.OriginRegexFallback, c.URL, ids...))
		}
	}

	for _, re := range reAttrPrices {
		if m := re.FindStringSubmatch(text); m != nil {
			add(m[1])
		}
	}
	if m := reLabelPrice.FindStringSubmatch(text); m != nil {
		add(m[1])
	}
	return offers
}
