// Package provenance records what was done to each calibrated spectrum:
// the append-only parameter ledger, the per-run fit diagnostics, and the
// guard that keeps existing outputs from being overwritten silently.
package provenance

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// TimestampLayout is the ISO-minute layout used in ledger rows and
// diagnostics file names.
const TimestampLayout = "2006-01-02T15:04"

// DefaultLedger is the conventional ledger file name.
const DefaultLedger = "sensitivity_params.txt"

// Record is one ledger row, written per calibrated arm.
type Record struct {
	Source   string
	Time     time.Time
	Standard string
	Catalog  string
	Excluded string
	Order    int
	BinSize  float64
	Output   string
}

// Fields returns the row in ledger column order. Text fields are passed
// through sanitizeField so the written row never needs csv quoting.
func (r Record) Fields() []string {
	return []string{
		sanitizeField(r.Source),
		r.Time.Format(TimestampLayout),
		sanitizeField(r.Standard),
		sanitizeField(r.Catalog),
		sanitizeField(r.Excluded),
		strconv.Itoa(r.Order),
		strconv.FormatFloat(r.BinSize, 'g', -1, 64),
		sanitizeField(r.Output),
	}
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ", `"`, "'")

// sanitizeField keeps a ledger cell plain: separators and line breaks
// become spaces, double quotes become single quotes and leading
// whitespace is dropped.
func sanitizeField(s string) string {
	return strings.TrimLeftFunc(fieldReplacer.Replace(s), unicode.IsSpace)
}

// Ledger appends Records to a tab-separated file. Earlier rows are never
// rewritten. Concurrent runs appending to the same file are not
// coordinated.
type Ledger struct {
	Path string
}

// Append writes records at the end of the ledger, creating it if needed.
func (l Ledger) Append(records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = '\t'
	for _, r := range records {
		if err := w.Write(r.Fields()); err != nil {
			f.Close()
			return fmt.Errorf("append ledger: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append ledger: %w", err)
	}
	return f.Close()
}

// Read returns every ledger row as raw fields.
func (l Ledger) Read() ([][]string, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = len(Record{}.Fields())
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, l.Path, err)
	}
	return rows, nil
}
