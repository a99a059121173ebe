package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"sheet-reconciler/core/reconcile"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DelimitedOptions configures delimited text parsing.
type DelimitedOptions struct {
	// Delimiter separates fields; zero means ','.
	Delimiter rune
	// Charset names the text encoding (e.g. "windows-1252", "iso-8859-1"). Empty means UTF-8.
	Charset string
	// LazyQuotes tolerates stray quotes inside fields.
	LazyQuotes bool
	// SkipRows is the number of records above the header row.
	SkipRows int
}

// ParseDelimiter accepts a single character or one of "tab", "pipe", "semicolon", "comma".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "comma":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, eris.Errorf("csv: invalid delimiter %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Delimited reads a single delimited file as one unit labelled with its base name.
type Delimited struct {
	fetcher  *Fetcher
	location string
	opts     DelimitedOptions
}

// NewDelimited creates a Delimited source.
func NewDelimited(fetcher *Fetcher, location string, opts DelimitedOptions) *Delimited {
	return &Delimited{fetcher: fetcher, location: location, opts: opts}
}

// Name returns the file location.
func (d *Delimited) Name() string {
	return d.location
}

// Units returns the single unit; the file is read when the unit is read.
func (d *Delimited) Units(context.Context) ([]reconcile.Unit, error) {
	return []reconcile.Unit{{
		Label: path.Base(d.location),
		Read: func(ctx context.Context) ([]*reconcile.WideRow, error) {
			data, err := d.fetcher.Fetch(ctx, d.location)
			if err != nil {
				return nil, err
			}
			return parseDelimited(bytes.NewReader(data), d.opts)
		},
	}}, nil
}

// parseDelimited decodes and parses one delimited stream into wide rows.
func parseDelimited(r io.Reader, opts DelimitedOptions) ([]*reconcile.WideRow, error) {
	if cs := strings.TrimSpace(opts.Charset); cs != "" && !strings.EqualFold(cs, "utf-8") && !strings.EqualFold(cs, "utf8") {
		enc, err := htmlindex.Get(cs)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: unknown charset %q", cs)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read row")
	}
	return toWideRows(records, opts.SkipRows), nil
}
