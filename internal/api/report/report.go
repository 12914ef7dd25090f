// Package report renders the latest results as a single HTML page.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Summary counts rows by status.
type Summary struct {
	Total    int
	Matched  int
	NotFound int
	Skipped  int
	Errors   int
}

// Summarize counts rows by status.
func Summarize(rows []domain.ResultRow) Summary {
	s := Summary{Total: len(rows)}
	for i := range rows {
		switch rows[i].Status {
		case domain.StatusMatched:
			s.Matched++
		case domain.StatusNotFound:
			s.NotFound++
		case domain.StatusAmbiguousSkipped:
			s.Skipped++
		case domain.StatusError:
			s.Errors++
		}
	}
	return s
}

// Page renders the report for rows. lastRun may be nil.
func Page(rows []domain.ResultRow, lastRun *domain.Run, generated time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>Competitor prices</title><style>` + styles + `</style></head><body>`)
		p.raw(`<h1>Competitor prices</h1>`)
		p.printf(`<p class="meta">Generated %s`, generated.UTC().Format(time.RFC3339))
		if lastRun != nil {
			p.printf(` &middot; last run %s (%s, %d changes)`,
				lastRun.ID, lastRun.Status, lastRun.Changes)
		}
		p.raw(`</p>`)

		if err := summary(Summarize(rows)).Render(ctx, w); err != nil {
			return err
		}
		if err := table(rows).Render(ctx, w); err != nil {
			return err
		}

		p.raw(`</body></html>`)
		return p.err
	})
}

func summary(s Summary) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<ul class="summary"><li>%d results</li><li class="matched">%d matched</li>`, s.Total, s.Matched)
		p.printf(`<li>%d not found</li><li>%d skipped</li><li class="error">%d errors</li></ul>`,
			s.NotFound, s.Skipped, s.Errors)
		return p.err
	})
}

func table(rows []domain.ResultRow) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		if len(rows) == 0 {
			p.raw(`<p class="empty">No results yet.</p>`)
			return p.err
		}

		p.raw(`<table><thead><tr><th>Target</th><th>Brand</th><th>Scope</th><th>Status</th>`)
		p.raw(`<th>Matched by</th><th>Source</th><th>Price</th><th>Ours</th><th>Diff</th><th>Checked</th></tr></thead><tbody>`)
		for i := range rows {
			r := &rows[i]
			p.printf(`<tr class="%s">`, templ.EscapeString(string(r.Status)))
			p.cell(r.TargetName + " (" + r.TargetID + ")")
			p.cell(r.Brand)
			p.cell(r.ScopeID)
			p.cell(string(r.Status))
			p.cell(string(r.MatchedBy))
			if r.MatchURL != "" {
				p.printf(`<td><a href="%s" rel="nofollow noopener">%s</a></td>`,
					templ.EscapeString(string(templ.URL(r.MatchURL))),
					templ.EscapeString(r.MatchSource))
			} else {
				p.cell(r.MatchSource)
			}
			p.cell(money(r.MatchPrice))
			p.cell(money(r.ReferencePrice))
			p.printf(`<td class="%s">%s</td>`, diffClass(r.PriceDiff), templ.EscapeString(money(r.PriceDiff)))
			p.cell(r.CheckedAt.UTC().Format("2006-01-02 15:04"))
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func diffClass(d *decimal.Decimal) string {
	switch {
	case d == nil:
		return ""
	case d.IsNegative():
		return "cheaper"
	case d.IsPositive():
		return "dearer"
	default:
		return ""
	}
}

// printer remembers the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) cell(s string) {
	p.raw(`<td>` + templ.EscapeString(s) + `</td>`)
}

const styles = `body{font-family:system-ui,sans-serif;margin:2rem}` +
	`table{border-collapse:collapse;width:100%}th,td{border-bottom:1px solid #ddd;padding:.35rem .5rem;text-align:left}` +
	`.summary{display:flex;gap:1.5rem;list-style:none;padding:0}.meta{color:#666}` +
	`.matched{color:#1a7f37}.error,.ERROR{color:#cf222e}.cheaper{color:#cf222e}.dearer{color:#1a7f37}`
