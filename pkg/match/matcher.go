package match

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Reason names the gate that rejected an offer.
type Reason string

// Rejection reasons, in gate order.
const (
	ReasonDomain   Reason = "domain"
	ReasonIdentity Reason = "identity"
	ReasonPrice    Reason = "price"
)

// Decision is the outcome of gating one offer.
type Decision struct {
	Accepted bool
	Reason   Reason
}

// Matcher gates offers against a target and picks the winner. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	floor       decimal.Decimal
	minKeywords int
	keywordSpan int
	stop        map[string]bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithFloor sets the absolute plausibility floor.
func WithFloor(floor decimal.Decimal) Option {
	return func(m *Matcher) {
		m.floor = floor
	}
}

// WithMinKeywords sets how many of the leading name keywords must appear
// in a title when no identifier matches.
func WithMinKeywords(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.minKeywords = n
		}
	}
}

// WithStopwords replaces the words ignored when picking name keywords. A
// nil slice keeps the defaults.
func WithStopwords(words []string) Option {
	return func(m *Matcher) {
		if words == nil {
			return
		}
		m.stop = stopset(words)
	}
}

// NewMatcher creates a Matcher. Defaults: floor 40, 2 of the first 3
// keywords.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		floor:       normalize.DefaultFloor,
		minKeywords: 2,
		keywordSpan: 3,
		stop:        stopset(DefaultStopwords),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.keywordSpan < m.minKeywords {
		m.keywordSpan = m.minKeywords
	}
	return m
}

// Gate runs the domain, identity and price gates in order and reports the
// first rejection.
func (m *Matcher) Gate(target *domain.TargetProduct, scope *domain.CompetitorScope, offer *domain.Offer) Decision {
	if !scope.Allows(offer.SourceDomain) {
		return Decision{Reason: ReasonDomain}
	}
	if !m.identity(target, offer) {
		return Decision{Reason: ReasonIdentity}
	}
	if !normalize.Plausible(offer.Price, target.ReferencePrice, m.floor) {
		return Decision{Reason: ReasonPrice}
	}
	return Decision{Accepted: true}
}

func (m *Matcher) identity(target *domain.TargetProduct, offer *domain.Offer) bool {
	gtin := normalize.NormalizeIdentifier(target.GTIN)
	mpn := normalize.NormalizeIdentifier(target.MPN)

	ids := make(map[string]bool, len(offer.RawIdentifiers))
	for _, id := range offer.RawIdentifiers {
		ids[normalize.NormalizeIdentifier(id)] = true
	}

	if gtin != "" && (ids[gtin] || ids[strings.TrimLeft(gtin, "0")] || ids["0"+gtin]) {
		return true
	}

	mpnHit := mpn != "" &&
		(strings.Contains(normalize.NormalizeIdentifier(offer.Title), mpn) || ids[mpn])

	brand := normalize.FoldText(strings.TrimSpace(target.Brand))
	if brand == "" {
		return mpnHit
	}
	if !strings.Contains(normalize.FoldText(offer.Title), brand) {
		return false
	}
	return mpnHit || m.keywordHit(target, offer.Title)
}

// keywordHit reports whether enough of the leading significant name
// keywords appear as title tokens. Names with fewer keywords than required
// need all of them.
func (m *Matcher) keywordHit(target *domain.TargetProduct, title string) bool {
	kw := keywords(target.Name, target.Brand, m.stop)
	if len(kw) == 0 {
		return false
	}
	if len(kw) > m.keywordSpan {
		kw = kw[:m.keywordSpan]
	}
	need := min(m.minKeywords, len(kw))

	inTitle := make(map[string]bool)
	for _, t := range tokens(title) {
		inTitle[t] = true
	}
	hits := 0
	for _, k := range kw {
		if inTitle[k] {
			hits++
		}
	}
	return hits >= need
}

// Select returns the winning offer among those that pass every gate. A
// specific scope takes the first accepted offer. A wildcard scope takes the
// lowest price, breaking ties by origin rank and then by input order.
func (m *Matcher) Select(
	target *domain.TargetProduct,
	scope *domain.CompetitorScope,
	offers []domain.Offer,
) (*domain.Offer, bool) {
	var best *domain.Offer
	for i := range offers {
		o := &offers[i]
		if !m.Gate(target, scope, o).Accepted {
			continue
		}
		if !scope.IsWildcard() {
			winner := *o
			return &winner, true
		}
		if best == nil ||
			o.Price.LessThan(best.Price) ||
			(o.Price.Equal(best.Price) && o.Origin.Rank() > best.Origin.Rank()) {
			best = o
		}
	}
	if best == nil {
		return nil, false
	}
	winner := *best
	return &winner, true
}
