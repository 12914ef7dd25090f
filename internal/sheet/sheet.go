// Package sheet reads targets from, and writes results to, delimited
// worksheet exports.
package sheet

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/donaldgifford/competitor-price-matcher/pkg/normalize"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// NoMatch is written to Match_Source when a row has no offer.
const NoMatch = "NO_MATCH"

// LastCheckedLayout formats the Last_Checked column.
const LastCheckedLayout = "2006-01-02 15:04:05 UTC"

// Columns is the output header, in order.
var Columns = []string{
	"ID", "Product_Name", "Brand", "GTIN", "MPN", "My_Price", "Scope",
	"Match_Source", "Match_URL", "Match_Price", "Match_By", "Price_Diff", "Status", "Last_Checked",
}

// ErrNoNameColumn is returned when the header has neither a product name,
// GTIN nor MPN column.
var ErrNoNameColumn = errors.New("worksheet has no Product_Name, Name, GTIN or MPN column")

// SniffDelimiter picks tab when the first line has at least as many tabs as
// commas, comma otherwise.
func SniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	tabs := bytes.Count(line, []byte{'\t'})
	if tabs > 0 && tabs >= bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}

// ReadTargets parses a worksheet. Column names are matched case-insensitively.
// Rows are identified by an ID column when present, else GTIN, else the
// normalized MPN, else their row number.
func ReadTargets(r io.Reader) ([]domain.TargetProduct, error) {
	br := bufio.NewReader(r)
	sample, _ := br.Peek(4096)

	cr := csv.NewReader(br)
	cr.Comma = SniffDelimiter(sample)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := indexHeader(header)
	nameCol := firstCol(idx, "product_name", "name")
	if nameCol < 0 && idx["gtin"] < 0 && idx["mpn"] < 0 {
		return nil, ErrNoNameColumn
	}

	var targets []domain.TargetProduct
	for rowNum := 2; ; rowNum++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", rowNum, err)
		}

		t := domain.TargetProduct{
			Name:    field(rec, nameCol),
			Brand:   field(rec, idx["brand"]),
			GTIN:    field(rec, idx["gtin"]),
			MPN:     field(rec, idx["mpn"]),
			Enabled: true,
		}
		if p, ok := normalize.ParseMoney(field(rec, firstCol(idx, "my_price", "price"))); ok {
			t.ReferencePrice = &p
		}
		if t.Name == "" && t.Brand == "" && t.GTIN == "" && t.MPN == "" {
			continue
		}

		switch {
		case field(rec, idx["id"]) != "":
			t.ID = field(rec, idx["id"])
		case t.GTIN != "":
			t.ID = t.GTIN
		case t.MPN != "":
			t.ID = normalize.NormalizeIdentifier(t.MPN)
		default:
			t.ID = "row-" + strconv.Itoa(rowNum)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// WriteResults writes rows with the output header using delim.
func WriteResults(w io.Writer, delim rune, rows []domain.ResultRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r *domain.ResultRow) []string {
	source := r.MatchSource
	if source == "" {
		source = NoMatch
	}
	matchedBy := string(r.MatchedBy)
	if r.MatchedBy == domain.TierNone {
		matchedBy = ""
	}
	return []string{
		r.TargetID,
		r.TargetName,
		r.Brand,
		r.GTIN,
		r.MPN,
		money(r.ReferencePrice),
		r.ScopeID,
		source,
		r.MatchURL,
		money(r.MatchPrice),
		matchedBy,
		money(r.PriceDiff),
		string(r.Status),
		r.CheckedAt.UTC().Format(LastCheckedLayout),
	}
}

// FileSource reads targets from a worksheet file on every call, so edits
// between runs are picked up.
type FileSource struct {
	Path string
}

// ListTargets implements the batch target source.
func (s FileSource) ListTargets(_ context.Context) ([]domain.TargetProduct, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening worksheet: %w", err)
	}
	defer f.Close()

	targets, err := ReadTargets(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	return targets, nil
}

// FileSink writes each run's results to a worksheet file, replacing the
// previous contents atomically.
type FileSink struct {
	Path string
	// Delimiter defaults to a tab for .tsv paths and a comma otherwise.
	Delimiter rune
}

// SaveResults implements the batch result sink.
func (s FileSink) SaveResults(_ context.Context, rows []domain.ResultRow) error {
	delim := s.Delimiter
	if delim == 0 {
		delim = ','
		if strings.EqualFold(filepath.Ext(s.Path), ".tsv") {
			delim = '\t'
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".results-*")
	if err != nil {
		return fmt.Errorf("creating temp worksheet: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteResults(tmp, delim, rows); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp worksheet: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing worksheet: %w", err)
	}
	return nil
}

func indexHeader(header []string) map[string]int {
	idx := map[string]int{"id": -1, "brand": -1, "gtin": -1, "mpn": -1}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if _, seen := idx[key]; !seen || idx[key] < 0 {
			idx[key] = i
		}
	}
	return idx
}

func firstCol(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok && i >= 0 {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
