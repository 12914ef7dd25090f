package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printTargetTable(w io.Writer, targets []domain.TargetProduct) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tBRAND\tGTIN\tMPN\tPRICE\tENABLED\n")
	for i := range targets {
		t := &targets[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
			t.ID,
			truncate(t.Name, 40),
			dash(t.Brand),
			dash(t.GTIN),
			dash(t.MPN),
			money(t.ReferencePrice),
			t.Enabled,
		)
	}
	return tw.finish()
}

func printTargetDetail(w io.Writer, t *domain.TargetProduct) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", t.ID)
	tw.writef("Name:\t%s\n", dash(t.Name))
	tw.writef("Brand:\t%s\n", dash(t.Brand))
	tw.writef("GTIN:\t%s\n", dash(t.GTIN))
	tw.writef("MPN:\t%s\n", dash(t.MPN))
	tw.writef("Reference price:\t%s\n", money(t.ReferencePrice))
	tw.writef("Enabled:\t%v\n", t.Enabled)
	return tw.finish()
}

func printResultTable(w io.Writer, rows []domain.ResultRow) error {
	tw := newTabWriter(w)
	tw.writef("TARGET\tSCOPE\tSTATUS\tTIER\tSOURCE\tPRICE\tDIFF\tCHECKED\n")
	for i := range rows {
		r := &rows[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.TargetID,
			r.ScopeID,
			r.Status,
			r.MatchedBy,
			dash(r.MatchSource),
			money(r.MatchPrice),
			money(r.PriceDiff),
			r.CheckedAt.Format(timeLayout),
		)
	}
	return tw.finish()
}

func printRunTable(w io.Writer, runs []domain.Run) error {
	tw := newTabWriter(w)
	tw.writef("ID\tTRIGGER\tSTATUS\tSTARTED\tTARGETS\tMATCHED\tCHANGES\tERROR\n")
	for i := range runs {
		r := &runs[i]
		tw.writef("%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.Trigger,
			r.Status,
			r.StartedAt.Format(timeLayout),
			r.Targets,
			r.Matched,
			r.Changes,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func printRunDetail(w io.Writer, r *domain.Run) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", r.ID)
	tw.writef("Trigger:\t%s\n", r.Trigger)
	tw.writef("Status:\t%s\n", r.Status)
	tw.writef("Started:\t%s\n", r.StartedAt.Format(timeLayout))
	if r.CompletedAt != nil {
		tw.writef("Completed:\t%s (%s)\n", r.CompletedAt.Format(timeLayout), r.CompletedAt.Sub(r.StartedAt).Round(time.Second))
	}
	tw.writef("Targets:\t%d\n", r.Targets)
	tw.writef("Matched:\t%d\n", r.Matched)
	tw.writef("Changes:\t%d\n", r.Changes)
	if r.ErrorText != "" {
		tw.writef("Error:\t%s\n", r.ErrorText)
	}
	return tw.finish()
}

func printResolveTable(w io.Writer, results map[string]domain.MatchResult, order []string) error {
	tw := newTabWriter(w)
	tw.writef("SCOPE\tSTATUS\tTIER\tSOURCE\tPRICE\tDIFF\tEVIDENCE\n")
	for _, id := range order {
		r := results[id]
		source, price, evidence := "-", "-", "-"
		if r.Offer != nil {
			source = r.Offer.SourceDomain
			price = r.Offer.Price.StringFixed(2)
			evidence = r.Offer.EvidenceURL
		}
		if r.Error != "" {
			evidence = r.Error
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			id, r.Status, r.MatchedBy, source, price, money(r.PriceDiff), evidence)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
