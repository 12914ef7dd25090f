// Package normalize turns raw price strings, identifiers and hosts scraped
// from heterogeneous sources into canonical forms.
package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFloor is the absolute price below which an offer that is also far
// under the reference price is considered implausible.
var DefaultFloor = decimal.NewFromInt(40)

var (
	reAmount = regexp.MustCompile(`\d[\d.,]*`)
	reIDJunk = regexp.MustCompile(`[\s\-_/.]+`)

	hundred = decimal.NewFromInt(100)
	four    = decimal.NewFromInt(4)
)

// ParseMoney parses a display price such as "$1,299.00" into a decimal
// rounded to cents. The first numeric run in the string is used; a comma
// with no dot is treated as a thousands separator. A comma after the
// decimal dot ("1.299,00") is ambiguous and rejected. Returns false for
// anything without a usable amount.
func ParseMoney(raw string) (decimal.Decimal, bool) {
	m := reAmount.FindString(raw)
	if m == "" {
		return decimal.Zero, false
	}
	m = strings.TrimRight(m, ".,")
	if dot := strings.LastIndexByte(m, '.'); dot >= 0 && strings.IndexByte(m[dot:], ',') >= 0 {
		return decimal.Zero, false
	}
	m = strings.ReplaceAll(m, ",", "")
	if strings.Count(m, ".") > 1 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// ParseCents converts an integer amount of minor units into a decimal
// price. Storefront product JSON reports variant prices this way.
func ParseCents(v any) (decimal.Decimal, bool) {
	var cents int64
	switch t := v.(type) {
	case int:
		cents = int64(t)
	case int64:
		cents = t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return decimal.Zero, false
		}
		cents = int64(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return decimal.Zero, false
		}
		cents = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return decimal.Zero, false
		}
		cents = n
	default:
		return decimal.Zero, false
	}
	return decimal.NewFromInt(cents).Div(hundred).Round(2), true
}

// ParseMoneyValue parses a decoded JSON value holding a price in major
// units: numbers are taken as-is and strings go through ParseMoney.
func ParseMoneyValue(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t).Round(2), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d.Round(2), true
	case string:
		return ParseMoney(t)
	default:
		return decimal.Zero, false
	}
}

// NormalizeIdentifier canonicalizes a GTIN or MPN for comparison:
// whitespace, hyphens, underscores, slashes and dots are removed and the
// result is upper-cased.
func NormalizeIdentifier(raw string) string {
	return strings.ToUpper(reIDJunk.ReplaceAllString(raw, ""))
}

// FoldText lower-cases s and strips diacritics so "Édge" compares equal to
// "edge".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Domain returns the normalized host of rawURL: lower-cased, port dropped,
// leading "www." stripped. Bare hosts without a scheme are accepted.
func Domain(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Registrable returns the registrable domain (eTLD+1) of host, falling back
// to host itself when the public suffix list has no answer.
func Registrable(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}

// Plausible reports whether price is believable as a competitor offer.
// Non-positive prices never are. With a reference, a price under a quarter
// of it is rejected only when it is also under floor.
func Plausible(price decimal.Decimal, reference *decimal.Decimal, floor decimal.Decimal) bool {
	if !price.IsPositive() {
		return false
	}
	if reference == nil || !reference.IsPositive() {
		return true
	}
	quarter := reference.Div(four)
	return !(price.LessThan(quarter) && price.LessThan(floor))
}
