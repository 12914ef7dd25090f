package store

import (
	"fmt"
	"strings"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const (
	defaultLimit = 100
	maxLimit     = 5000
)

// ResultQuery defines optional filters for latest-result queries.
type ResultQuery struct {
	Status   *domain.MatchStatus
	ScopeID  *string
	TargetID *string
	// ExcludeStatus drops rows with this status before ranking, so the
	// newest row of any other status is returned instead.
	ExcludeStatus *domain.MatchStatus
	Limit         int // default 100
}

const resultColumns = `id, run_id, target_id, target_name, brand, gtin, mpn, reference_price,
	scope_id, status, matched_by, match_source, match_url, match_title, match_price,
	origin, price_diff, error_text, checked_at`

// latestResultsSelect ranks rows per (target, scope) so only the newest
// observation survives the outer filter. inner is an optional WHERE clause
// applied before ranking.
func latestResultsSelect(inner string) string {
	return `SELECT ` + resultColumns + ` FROM (
	SELECT ` + resultColumns + `,
		ROW_NUMBER() OVER (PARTITION BY target_id, scope_id ORDER BY checked_at DESC, id DESC) AS rn
	FROM results` + inner + `
) latest
WHERE rn = 1`
}

// placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// ToSQL builds the latest-results query with Postgres-style placeholders.
func (q *ResultQuery) ToSQL() (string, []any) {
	return q.toSQL(dollarPlaceholder)
}

func (q *ResultQuery) toSQL(ph placeholder) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	add := func(col string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("%s = %s", col, ph(len(args))))
	}

	var inner string
	if q.ExcludeStatus != nil {
		args = append(args, string(*q.ExcludeStatus))
		inner = fmt.Sprintf("\n\tWHERE status <> %s", ph(len(args)))
	}

	if q.Status != nil {
		add("status", string(*q.Status))
	}
	if q.ScopeID != nil {
		add("scope_id", *q.ScopeID)
	}
	if q.TargetID != nil {
		add("target_id", *q.TargetID)
	}

	var where string
	if len(conditions) > 0 {
		where = " AND " + strings.Join(conditions, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return fmt.Sprintf("%s%s ORDER BY target_id, scope_id LIMIT %d",
		latestResultsSelect(inner), where, limit), args
}
