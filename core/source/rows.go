package source

import (
	"strconv"
	"strings"

	"sheet-reconciler/core/reconcile"
)

const bom = "\ufeff"

// normalizeHeader trims header cells and makes every name non-empty and unique.
func normalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, c := range cells {
		if i == 0 {
			c = strings.TrimPrefix(c, bom)
		}
		name := strings.TrimSpace(c)
		if name == "" {
			name = "Column " + strconv.Itoa(i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + " (" + strconv.Itoa(n) + ")"
		}
		out[i] = name
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// toWideRows skips skipRows records, takes the next non-blank record as header and
// turns the remaining non-blank records into rows. Cells beyond the header are dropped.
func toWideRows(records [][]string, skipRows int) []*reconcile.WideRow {
	if skipRows > len(records) {
		return nil
	}
	records = records[skipRows:]
	for len(records) > 0 && isBlank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil
	}

	header := normalizeHeader(records[0])
	rows := make([]*reconcile.WideRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, reconcile.RowFromPairs(header, rec))
	}
	return rows
}
