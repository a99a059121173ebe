package source

import (
	"context"

	"sheet-reconciler/core/reconcile"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WorkbookOptions configures a Workbook.
type WorkbookOptions struct {
	// Sheets selects sheets by name, in order. Empty means every sheet in file order.
	Sheets []string
	// SkipRows is the number of records above the header row.
	SkipRows int
}

// Workbook reads an xlsx file; every selected sheet is one unit labelled with the sheet name.
type Workbook struct {
	fetcher  *Fetcher
	location string
	opts     WorkbookOptions
}

// NewWorkbook creates a Workbook source.
func NewWorkbook(fetcher *Fetcher, location string, opts WorkbookOptions) *Workbook {
	return &Workbook{fetcher: fetcher, location: location, opts: opts}
}

// Name returns the workbook location.
func (w *Workbook) Name() string {
	return w.location
}

// Units opens the workbook once. A named sheet that does not exist becomes a
// unit that fails to read, so the other sheets still contribute.
func (w *Workbook) Units(ctx context.Context) ([]reconcile.Unit, error) {
	data, err := w.fetcher.Fetch(ctx, w.location)
	if err != nil {
		return nil, err
	}
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	if len(w.opts.Sheets) == 0 {
		units := make([]reconcile.Unit, 0, len(f.Sheets))
		for _, sheet := range f.Sheets {
			units = append(units, w.sheetUnit(sheet.Name, sheet))
		}
		return units, nil
	}

	units := make([]reconcile.Unit, 0, len(w.opts.Sheets))
	for _, name := range w.opts.Sheets {
		units = append(units, w.sheetUnit(name, f.Sheet[name]))
	}
	return units, nil
}

func (w *Workbook) sheetUnit(name string, sheet *xlsx.Sheet) reconcile.Unit {
	return reconcile.Unit{
		Label: name,
		Read: func(ctx context.Context) ([]*reconcile.WideRow, error) {
			if sheet == nil {
				return nil, eris.Errorf("xlsx: sheet %q not found", name)
			}
			records := make([][]string, 0, len(sheet.Rows))
			for _, row := range sheet.Rows {
				records = append(records, rowToStrings(row))
			}
			return toWideRows(records, w.opts.SkipRows), nil
		},
	}
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
