package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"sheet-reconciler/core/reconcile"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// maxSheetRows is the row limit of an xlsx worksheet, header included.
var maxSheetRows = 1 << 20

// Assembler writes results in one format.
type Assembler struct {
	format   Format
	pageSize int
}

// New creates an Assembler. pageSize > 0 splits table output and xlsx sheets into pages.
func New(format Format, pageSize int) *Assembler {
	if format == "" {
		format = FormatTable
	}
	return &Assembler{format: format, pageSize: pageSize}
}

// Format returns the output format.
func (a *Assembler) Format() Format {
	return a.format
}

// Render returns the report bytes.
func (a *Assembler) Render(res *reconcile.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Write(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders res to w.
func (a *Assembler) Write(w io.Writer, res *reconcile.Result) error {
	if res == nil {
		return eris.New("report: no result")
	}
	res = withoutNulls(res)
	var err error
	switch a.format {
	case FormatTable:
		err = a.writeTable(w, res)
	case FormatCSV:
		err = writeCSV(w, res.Records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(res)
	case FormatYAML:
		err = writeYAML(w, res)
	case FormatXLSX:
		err = a.writeXLSX(w, res)
	default:
		err = eris.Errorf("unsupported format %q", a.format)
	}
	if err != nil {
		return eris.Wrapf(err, "report: write %s", a.format)
	}
	return nil
}

func (a *Assembler) writeTable(w io.Writer, res *reconcile.Result) error {
	comments := CommentColumns(res.Records)
	pages := reconcile.Pages(res.Records, a.pageSize)

	for i, page := range pages {
		if len(pages) > 1 {
			if _, err := fmt.Fprintf(w, "Page %d/%d\n", i+1, len(pages)); err != nil {
				return err
			}
		}
		table := tablewriter.NewTable(w)
		table.Header(toAny(Header(comments))...)
		for _, r := range page {
			if err := table.Append(toAny(Row(r, comments))...); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	s := res.Summary
	_, err := fmt.Fprintf(w, "%s: %d records (missing in A: %d, missing in B: %d, matches: %d, suppressed: %d, issues: %d)\n",
		res.Name, s.Records, s.MissingInA, s.MissingInB, s.Matches, s.Suppressed, s.Issues)
	return err
}

func writeCSV(w io.Writer, records []reconcile.DiscrepancyRecord) error {
	comments := CommentColumns(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(comments)); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(Row(r, comments)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeYAML(w io.Writer, res *reconcile.Result) error {
	data, err := yaml.MarshalWithOptions(res,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// sheetPageSize bounds pageSize so a page and its header fit one worksheet.
func sheetPageSize(pageSize int) int {
	limit := maxSheetRows - 1
	if pageSize < 1 || pageSize > limit {
		return limit
	}
	return pageSize
}

func (a *Assembler) writeXLSX(w io.Writer, res *reconcile.Result) error {
	f := xlsx.NewFile()
	comments := CommentColumns(res.Records)
	pages := reconcile.Pages(res.Records, sheetPageSize(a.pageSize))

	for i, page := range pages {
		name := "Records"
		if len(pages) > 1 {
			name = "Records " + strconv.Itoa(i+1)
		}
		sheet, err := f.AddSheet(name)
		if err != nil {
			return err
		}
		addRow(sheet, Header(comments))
		for _, r := range page {
			addRow(sheet, Row(r, comments))
		}
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return err
	}
	s := res.Summary
	for _, kv := range [][]string{
		{"Job", res.Name},
		{"Run", res.RunID},
		{"Entities A", strconv.Itoa(s.EntitiesA)},
		{"Entities B", strconv.Itoa(s.EntitiesB)},
		{"Shared entities", strconv.Itoa(s.SharedEntities)},
		{"Entities with discrepancies", strconv.Itoa(s.EntitiesWithDiscrepancies)},
		{"Missing in A", strconv.Itoa(s.MissingInA)},
		{"Missing in B", strconv.Itoa(s.MissingInB)},
		{"Matches", strconv.Itoa(s.Matches)},
		{"Suppressed", strconv.Itoa(s.Suppressed)},
		{"Records", strconv.Itoa(s.Records)},
	} {
		addRow(summary, kv)
	}

	if len(res.Issues) > 0 {
		issues, err := f.AddSheet("Issues")
		if err != nil {
			return err
		}
		addRow(issues, []string{"Kind", "Source", "Unit", "Field", "Rule", "Message"})
		for _, i := range res.Issues {
			addRow(issues, []string{string(i.Kind), i.Source, i.Unit, i.Field, i.Rule, i.Message})
		}
	}

	return f.Write(w)
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// withoutNulls returns res with empty slices in place of nil ones, so json and
// yaml both render an empty list.
func withoutNulls(res *reconcile.Result) *reconcile.Result {
	if res.Records != nil && res.Issues != nil {
		return res
	}
	out := *res
	if out.Records == nil {
		out.Records = []reconcile.DiscrepancyRecord{}
	}
	if out.Issues == nil {
		out.Issues = []reconcile.Issue{}
	}
	return &out
}
