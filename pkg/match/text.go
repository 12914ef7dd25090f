package match

import (
	"regexp"
	"strings"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
)

// DefaultStopwords are generic size, color and category words that say
// nothing about which product a title names.
var DefaultStopwords = []string{
	"rear", "front", "tubeless", "disc", "bike", "bikes", "bicycle",
	"wheel", "wheels", "tire", "tires", "black", "white",
	"mens", "men", "women", "womens", "the", "and", "with",
}

var (
	reToken      = regexp.MustCompile(`[a-z0-9]+`)
	reSizeFiller = regexp.MustCompile(`(?i)\b(?:700x\d+\w*|700c|men's|women's)\b`)
)

// tokens splits folded text into lower-case alphanumeric runs.
func tokens(s string) []string {
	return reToken.FindAllString(normalize.FoldText(s), -1)
}

func stopset(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = true
	}
	return m
}

// keywords returns the significant tokens of a product name: stopwords and
// the brand's own tokens removed, order kept.
func keywords(name, brand string, stop map[string]bool) []string {
	brandTokens := make(map[string]bool)
	for _, t := range tokens(brand) {
		brandTokens[t] = true
	}
	var out []string
	for _, t := range tokens(name) {
		if stop[t] || brandTokens[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// cleanName strips filler words from a product name for use in a query and
// drops a leading copy of the brand.
func cleanName(name, brand string, stop map[string]bool) string {
	name = reSizeFiller.ReplaceAllString(name, " ")
	fields := strings.Fields(name)

	if b := strings.Fields(brand); len(b) > 0 && len(fields) >= len(b) {
		lead := true
		for i := range b {
			if normalize.FoldText(fields[i]) != normalize.FoldText(b[i]) {
				lead = false
				break
			}
		}
		if lead {
			fields = fields[len(b):]
		}
	}

	kept := fields[:0]
	for _, f := range fields {
		tt := tokens(f)
		if len(tt) == 1 && stop[tt[0]] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
