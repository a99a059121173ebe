package source

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"sheet-reconciler/core/reconcile"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

type sheetData struct {
	name string
	rows [][]string
}

func createTestXLSX(t *testing.T, sheets ...sheetData) []byte {
	t.Helper()
	f := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := f.AddSheet(s.name)
		require.NoError(t, err)
		for _, rowData := range s.rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func saveTestXLSX(t *testing.T, sheets ...sheetData) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.xlsx")
	require.NoError(t, writeFile(path, createTestXLSX(t, sheets...)))
	return path
}

// readAll reads every unit and flattens its rows into maps, keyed by unit label.
func readAll(t *testing.T, src reconcile.TabularSource) (labels []string, rows map[string][]map[string]string) {
	t.Helper()
	units, err := src.Units(context.Background())
	require.NoError(t, err)

	rows = make(map[string][]map[string]string)
	for _, u := range units {
		labels = append(labels, u.Label)
		read, err := u.Read(context.Background())
		require.NoError(t, err, u.Label)
		rows[u.Label] = flatten(read)
	}
	return labels, rows
}

func flatten(rows []*reconcile.WideRow) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		m := make(map[string]string, r.Len())
		for _, n := range r.Names() {
			m[n], _ = r.Get(n)
		}
		out = append(out, m)
	}
	return out
}

type readCloser struct{ io.Reader }

func (readCloser) Close() error { return nil }

func objectBody(data []byte) io.ReadCloser {
	return readCloser{bytes.NewReader(data)}
}
