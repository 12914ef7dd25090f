// Package domain defines the core business types for the competitor price matcher.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when an offer does not state one.
const DefaultCurrency = "USD"

// TargetProduct is the identity of an item being priced against competitors.
type TargetProduct struct {
	ID    string `json:"id"              db:"id"`
	Name  string `json:"name"            db:"name"`
	Brand string `json:"brand,omitempty" db:"brand"`
	GTIN  string `json:"gtin,omitempty"  db:"gtin"`
	MPN   string `json:"mpn,omitempty"   db:"mpn"`

	// ReferencePrice is the seller's own current price. It is used for
	// plausibility gating and price diffs, never for matching.
	ReferencePrice *decimal.Decimal `json:"reference_price,omitempty" db:"reference_price"`

	Enabled   bool      `json:"enabled"    db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasIdentity reports whether the target carries at least one of GTIN, MPN
// or name. Whitespace-only fields do not count. Targets without identity
// are skipped rather than resolved.
func (t *TargetProduct) HasIdentity() bool {
	return strings.TrimSpace(t.GTIN) != "" ||
		strings.TrimSpace(t.MPN) != "" ||
		strings.TrimSpace(t.Name) != ""
}

// Origin identifies the kind of evidence an offer was extracted from.
type Origin string

// Origin constants.
const (
	OriginSearchStructured Origin = "SEARCH_STRUCTURED"
	OriginPageSchema       Origin = "PAGE_SCHEMA"
	OriginPlatformAPI      Origin = "PLATFORM_API"
	OriginRegexFallback    Origin = "REGEX_FALLBACK"
)

// Rank returns the evidence precedence of the origin. Higher wins.
func (o Origin) Rank() int {
	switch o {
	case OriginPlatformAPI:
		return 4
	case OriginPageSchema:
		return 3
	case OriginSearchStructured:
		return 2
	case OriginRegexFallback:
		return 1
	default:
		return 0
	}
}

// Offer is one candidate price sighting. Offers are values: extractors build
// them with NewOffer and nothing mutates them afterwards.
type Offer struct {
	Title          string          `json:"title"`
	SourceDomain   string          `json:"source_domain"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	RawIdentifiers []string        `json:"raw_identifiers,omitempty"`
	Origin         Origin          `json:"origin"`
	EvidenceURL    string          `json:"evidence_url"`
}

// NewOffer builds an Offer, defaulting the currency and copying identifiers.
func NewOffer(
	title, sourceDomain string,
	price decimal.Decimal,
	currency string,
	origin Origin,
	evidenceURL string,
	ids ...string,
) Offer {
	if currency == "" {
		currency = DefaultCurrency
	}
	var raw []string
	for _, id := range ids {
		if id != "" {
			raw = append(raw, id)
		}
	}
	return Offer{
		Title:          title,
		SourceDomain:   sourceDomain,
		Price:          price,
		Currency:       currency,
		RawIdentifiers: raw,
		Origin:         origin,
		EvidenceURL:    evidenceURL,
	}
}

// Key returns the deduplication key (source domain, price, evidence URL).
func (o *Offer) Key() string {
	return o.SourceDomain + "|" + o.Price.StringFixed(2) + "|" + o.EvidenceURL
}

// ScopeMode selects how a CompetitorScope restricts and ranks candidates.
type ScopeMode string

// Scope mode constants.
const (
	// ScopeSpecific restricts matching to one competitor domain and takes
	// the first candidate that passes gating.
	ScopeSpecific ScopeMode = "specific"
	// ScopeWildcard is open market-wide minus a deny set and takes the
	// lowest plausible price.
	ScopeWildcard ScopeMode = "wildcard"
)

// CompetitorScope is a named restriction of the search space.
type CompetitorScope struct {
	ID      string    `json:"id"                yaml:"id"`
	Name    string    `json:"name"              yaml:"name"`
	Mode    ScopeMode `json:"mode"              yaml:"mode"`
	Domains []string  `json:"domains,omitempty" yaml:"domains"`
	Deny    []string  `json:"deny,omitempty"    yaml:"deny"`
}

// Scope validation errors.
var (
	ErrScopeID       = errors.New("scope id is required")
	ErrScopeMode     = errors.New("scope mode must be specific or wildcard")
	ErrScopeSpecific = errors.New("specific scope requires exactly one domain")
	ErrScopeWildcard = errors.New("wildcard scope must not list allowed domains")
)

// Validate checks the specific/wildcard invariant.
func (s *CompetitorScope) Validate() error {
	if s.ID == "" {
		return ErrScopeID
	}
	switch s.Mode {
	case ScopeSpecific:
		if len(s.Domains) != 1 {
			return fmt.Errorf("scope %s: %w", s.ID, ErrScopeSpecific)
		}
	case ScopeWildcard:
		if len(s.Domains) != 0 {
			return fmt.Errorf("scope %s: %w", s.ID, ErrScopeWildcard)
		}
	default:
		return fmt.Errorf("scope %s: %w (got %q)", s.ID, ErrScopeMode, s.Mode)
	}
	return nil
}

// IsWildcard reports whether the scope is a market-wide scope.
func (s *CompetitorScope) IsWildcard() bool {
	return s.Mode == ScopeWildcard
}

// Allows reports whether an offer from host may be considered in this scope.
// Subdomains of a listed domain count as the domain itself.
func (s *CompetitorScope) Allows(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
	if host == "" {
		return false
	}
	if s.IsWildcard() {
		for _, d := range s.Deny {
			if domainMatches(host, d) {
				return false
			}
		}
		return true
	}
	for _, d := range s.Domains {
		if domainMatches(host, d) {
			return true
		}
	}
	return false
}

func domainMatches(host, d string) bool {
	d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
	if d == "" {
		return false
	}
	return host == d || strings.HasSuffix(host, "."+d)
}

// MatchStatus is the outcome of resolving one target within one scope.
type MatchStatus string

// Match status constants.
const (
	StatusMatched          MatchStatus = "MATCHED"
	StatusNotFound         MatchStatus = "NOT_FOUND"
	StatusAmbiguousSkipped MatchStatus = "AMBIGUOUS_SKIPPED"
	StatusError            MatchStatus = "ERROR"
)

// Tier is the query specificity level that produced a match.
type Tier string

// Tier constants, most specific first.
const (
	TierGTIN      Tier = "GTIN"
	TierBrandMPN  Tier = "BRAND_MPN"
	TierMPN       Tier = "MPN"
	TierBrandName Tier = "BRAND_NAME"
	TierNone      Tier = "NONE"
)

// MatchResult is the final output for one (target, scope) pair.
type MatchResult struct {
	TargetID  string           `json:"target_id"`
	ScopeID   string           `json:"scope_id"`
	Status    MatchStatus      `json:"status"`
	Offer     *Offer           `json:"offer,omitempty"`
	MatchedBy Tier             `json:"matched_by"`
	PriceDiff *decimal.Decimal `json:"price_diff,omitempty"`
	CheckedAt time.Time        `json:"checked_at"`
	Error     string           `json:"error,omitempty"`
}

// NewMatched builds a MATCHED result and computes the price diff against
// the target's reference price when one exists.
func NewMatched(t *TargetProduct, scopeID string, offer Offer, tier Tier, at time.Time) MatchResult {
	r := MatchResult{
		TargetID:  t.ID,
		ScopeID:   scopeID,
		Status:    StatusMatched,
		Offer:     &offer,
		MatchedBy: tier,
		CheckedAt: at,
	}
	if t.ReferencePrice != nil {
		diff := offer.Price.Sub(*t.ReferencePrice).Round(2)
		r.PriceDiff = &diff
	}
	return r
}

// NewUnmatched builds a result without an offer.
func NewUnmatched(t *TargetProduct, scopeID string, status MatchStatus, at time.Time) MatchResult {
	return MatchResult{
		TargetID:  t.ID,
		ScopeID:   scopeID,
		Status:    status,
		MatchedBy: TierNone,
		CheckedAt: at,
	}
}

// ResultRow is a MatchResult flattened with the target identity, the shape
// handed to persistence sinks.
type ResultRow struct {
	ID             string           `json:"id"                        db:"id"`
	RunID          string           `json:"run_id"                    db:"run_id"`
	TargetID       string           `json:"target_id"                 db:"target_id"`
	TargetName     string           `json:"target_name"               db:"target_name"`
	Brand          string           `json:"brand,omitempty"           db:"brand"`
	GTIN           string           `json:"gtin,omitempty"            db:"gtin"`
	MPN            string           `json:"mpn,omitempty"             db:"mpn"`
	ReferencePrice *decimal.Decimal `json:"reference_price,omitempty" db:"reference_price"`
	ScopeID        string           `json:"scope_id"                  db:"scope_id"`
	Status         MatchStatus      `json:"status"                    db:"status"`
	MatchedBy      Tier             `json:"matched_by"                db:"matched_by"`
	MatchSource    string           `json:"match_source,omitempty"    db:"match_source"`
	MatchURL       string           `json:"match_url,omitempty"       db:"match_url"`
	MatchTitle     string           `json:"match_title,omitempty"     db:"match_title"`
	MatchPrice     *decimal.Decimal `json:"match_price,omitempty"     db:"match_price"`
	Origin         Origin           `json:"origin,omitempty"          db:"origin"`
	PriceDiff      *decimal.Decimal `json:"price_diff,omitempty"      db:"price_diff"`
	ErrorText      string           `json:"error_text,omitempty"      db:"error_text"`
	CheckedAt      time.Time        `json:"checked_at"                db:"checked_at"`
}

// NewResultRow flattens a result for the given target.
func NewResultRow(runID string, t *TargetProduct, r *MatchResult) ResultRow {
	row := ResultRow{
		RunID:          runID,
		TargetID:       t.ID,
		TargetName:     t.Name,
		Brand:          t.Brand,
		GTIN:           t.GTIN,
		MPN:            t.MPN,
		ReferencePrice: t.ReferencePrice,
		ScopeID:        r.ScopeID,
		Status:         r.Status,
		MatchedBy:      r.MatchedBy,
		PriceDiff:      r.PriceDiff,
		ErrorText:      r.Error,
		CheckedAt:      r.CheckedAt,
	}
	if r.Offer != nil {
		price := r.Offer.Price
		row.MatchSource = r.Offer.SourceDomain
		row.MatchURL = r.Offer.EvidenceURL
		row.MatchTitle = r.Offer.Title
		row.MatchPrice = &price
		row.Origin = r.Offer.Origin
	}
	return row
}

// ChangedFrom reports whether this row differs from a previous observation
// of the same (target, scope): a status flip or a different matched price.
func (r *ResultRow) ChangedFrom(prev *ResultRow) bool {
	if prev == nil {
		return r.Status == StatusMatched
	}
	if r.Status != prev.Status {
		return true
	}
	switch {
	case r.MatchPrice == nil && prev.MatchPrice == nil:
		return false
	case r.MatchPrice == nil || prev.MatchPrice == nil:
		return true
	default:
		return !r.MatchPrice.Equal(*prev.MatchPrice)
	}
}

// Run status constants.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Run records a single batch resolution.
type Run struct {
	ID          string     `json:"id"                     db:"id"`
	Trigger     string     `json:"trigger"                db:"trigger"`
	Status      string     `json:"status"                 db:"status"`
	StartedAt   time.Time  `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Targets     int        `json:"targets"                db:"targets"`
	Matched     int        `json:"matched"                db:"matched"`
	Changes     int        `json:"changes"                db:"changes"`
	ErrorText   string     `json:"error_text,omitempty"   db:"error_text"`
}

// ChangeSummary is the payload of a "changes detected" notification.
type ChangeSummary struct {
	RunID   string
	Changes int
	Matched int
	Targets int
	Link    string
}
